package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ppiankov/dii/internal/cache"
	"github.com/ppiankov/dii/internal/model"
	"github.com/ppiankov/dii/internal/orchestrate"
	"github.com/ppiankov/dii/internal/ports"
	"github.com/ppiankov/dii/internal/provider"
	"github.com/ppiankov/dii/internal/util"
	"github.com/ppiankov/dii/internal/worker"
)

var (
	incidentArchetype string
	incidentSize      string
	incidentRegion    string
	incidentScore     float64
	incidentsJSON     bool
)

var incidentsCmd = &cobra.Command{
	Use:   "incidents",
	Short: "Show documented incidents comparable to an organization",
	Long: `Incidents lists real-world incidents for the same business model, ranked by
how closely size and region match. Results are informational and never
affect a score.

The built-in sample is used unless providers.incidents_url is configured.

Example:
  dii incidents --archetype financial_services --size large --region north_america --score 4.2`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		log := newLogger(cfg)

		id, err := model.ParseArchetypeID(incidentArchetype)
		if err != nil {
			return err
		}

		proxy := util.NewProxyFunc(cfg.HTTP.HTTPProxy, cfg.HTTP.HTTPSProxy)
		client := provider.NewClient(
			util.NewHTTPClient(cfg.Providers.Timeout, proxy),
			worker.NewLimiter(cfg.RateLimiting.RequestsPerSecond, cfg.RateLimiting.BurstSize),
			cfg.HTTP.UserAgent,
		)
		incidents := provider.NewIncidentCatalog(client, cfg.Providers.IncidentsURL, cache.New(cfg.Cache))

		ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Providers.Timeout)
		defer cancel()
		matches, err := incidents.Comparable(ctx, ports.IncidentQuery{
			Archetype: id,
			Size:      incidentSize,
			Region:    incidentRegion,
			Score:     incidentScore,
		})
		if err != nil {
			log.Debug().Err(err).Msg("incident lookup failed")
			return fmt.Errorf("incident lookup: %w", err)
		}

		if incidentsJSON {
			return printJSON(matches)
		}
		printIncidents("Exact matches", matches.Exact)
		printIncidents("Similar", matches.Similar)

		in := matches.Insights
		fmt.Printf("\nAverage loss %s, average downtime %.0f hours\n", orchestrate.Money(in.AverageLossUSD), in.AverageDowntimeHours)
		if len(in.CommonVectors) > 0 {
			fmt.Printf("Common vectors: %s\n", strings.Join(in.CommonVectors, ", "))
		}
		if in.PeerComparison != "" {
			fmt.Printf("%s\n", in.PeerComparison)
		}
		return nil
	},
}

func printIncidents(title string, list []ports.Incident) {
	if len(list) == 0 {
		return
	}
	fmt.Printf("%s:\n", title)
	for _, inc := range list {
		fmt.Printf("  %s  %-8s %-6s %-18s %s loss, %.0fh down\n",
			inc.Discovered.Format("2006-01"), inc.Size, inc.Region, inc.Vector,
			orchestrate.Money(inc.LossUSD), inc.DowntimeHours)
	}
}

func init() {
	rootCmd.AddCommand(incidentsCmd)
	incidentsCmd.Flags().StringVar(&incidentArchetype, "archetype", "", "archetype id or slug (required)")
	incidentsCmd.Flags().StringVar(&incidentSize, "size", "", "organization size (small, medium, large, enterprise)")
	incidentsCmd.Flags().StringVar(&incidentRegion, "region", "", "region, e.g. europe or north_america")
	incidentsCmd.Flags().Float64Var(&incidentScore, "score", 0, "immunity index for the peer comparison")
	incidentsCmd.Flags().BoolVar(&incidentsJSON, "json", false, "print the result as JSON")
	_ = incidentsCmd.MarkFlagRequired("archetype")
}
