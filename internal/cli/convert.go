package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ppiankov/dii/internal/convert"
	"github.com/ppiankov/dii/internal/model"
	"github.com/ppiankov/dii/internal/pipeline"
)

var convertArchetype string

var convertCmd = &cobra.Command{
	Use:   "convert DIM=VALUE...",
	Short: "Convert raw metrics into dimension scores",
	Long: `Convert turns raw answers into 1-10 dimension scores for an archetype.

Units: TRD hours, AER US dollars, HFP percent, BRI percent, RRG multiplier.

Example:
  dii convert --archetype critical_software TRD=12 HFP=20 RRG=2.5`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := model.ParseArchetypeID(convertArchetype)
		if err != nil {
			return err
		}
		values, err := parseAnswers(args)
		if err != nil {
			return err
		}
		out, err := convert.ConvertBatch(values, id)
		if err != nil {
			return err
		}

		for _, d := range model.AllDimensions() {
			c, ok := out[d]
			if !ok {
				continue
			}
			adjusted := ""
			if c.AdjustmentApplied {
				adjusted = "  (archetype adjusted)"
			}
			fmt.Printf("%s  %-22s %5.2f  %s%s\n", d, pipeline.FormatMetric(d, c.OriginalValue), c.Score, c.Interpretation, adjusted)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(convertCmd)
	convertCmd.Flags().StringVar(&convertArchetype, "archetype", "hybrid_commerce", "archetype id or slug")
}
