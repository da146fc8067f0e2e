package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ppiankov/dii/internal/catalog"
	"github.com/ppiankov/dii/internal/convert"
	"github.com/ppiankov/dii/internal/model"
	"github.com/ppiankov/dii/internal/orchestrate"
	"github.com/ppiankov/dii/internal/score"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "List archetypes, dimensions and improvement actions",
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, a := range catalog.Default().All() {
			fmt.Printf("%d  %-24s %-22s %s\n", a.ID, a.ID.Slug(), a.Name, a.HourlyLoss)
		}
		return nil
	},
}

var catalogShowCmd = &cobra.Command{
	Use:   "show <archetype>",
	Short: "Show one archetype as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := model.ParseArchetypeID(args[0])
		if err != nil {
			return err
		}
		a, err := catalog.Default().Lookup(id)
		if err != nil {
			return err
		}
		return printJSON(a)
	},
}

var catalogDimensionsCmd = &cobra.Command{
	Use:   "dimensions",
	Short: "List the five dimensions and their accepted input ranges",
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, d := range model.AllDimensions() {
			b, err := convert.InputBounds(d)
			if err != nil {
				return err
			}
			direction := "lower is better"
			if d.HigherIsBetter() {
				direction = "higher is better"
			}
			fmt.Printf("%s  %-32s %s .. %s  (%s)\n", d, d.Name(), formatBound(d, b.Min), formatBound(d, b.Max), direction)
		}
		return nil
	},
}

var catalogActionsCmd = &cobra.Command{
	Use:   "actions",
	Short: "List improvement actions usable in scenarios",
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, a := range score.Actions() {
			quick := ""
			if a.QuickWin {
				quick = "  quick win"
			}
			fmt.Printf("%-22s %s  +%.1f  %s  %d months%s\n", a.ID, a.Dimension, a.Improvement, orchestrate.Money(a.Cost), a.Months, quick)
			fmt.Printf("%-22s %s\n", "", a.Title)
		}
		return nil
	},
}

func formatBound(d model.Dimension, v float64) string {
	if d.Unit() == "usd" {
		return orchestrate.Money(v)
	}
	return fmt.Sprintf("%g %s", v, d.Unit())
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func init() {
	rootCmd.AddCommand(catalogCmd)
	catalogCmd.AddCommand(catalogShowCmd)
	catalogCmd.AddCommand(catalogDimensionsCmd)
	catalogCmd.AddCommand(catalogActionsCmd)
}
