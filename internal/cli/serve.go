package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/ppiankov/dii/internal/api"
	"github.com/ppiankov/dii/internal/cache"
	"github.com/ppiankov/dii/internal/catalog"
	"github.com/ppiankov/dii/internal/model"
	"github.com/ppiankov/dii/internal/ports"
	"github.com/ppiankov/dii/internal/provider"
	"github.com/ppiankov/dii/internal/store/cachestore"
	"github.com/ppiankov/dii/internal/store/postgres"
	"github.com/ppiankov/dii/internal/util"
	"github.com/ppiankov/dii/internal/worker"
)

const purgeInterval = time.Hour

var (
	serveAddr   string
	envFile     string
	autoMigrate bool
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long: `Serve exposes classification, conversion, assessments and interactive
sessions over HTTP.

Sessions live in memory by default. Set store.driver to "disk" to keep them
in store.dir across restarts, or to "postgres" to share them between
instances and keep a report history.

Example:
  dii serve
  dii serve --addr :9090
  DII_STORE_DRIVER=postgres DATABASE_URL=postgres://... dii serve --migrate`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from server.addr)")
	serveCmd.Flags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before configuration")
	serveCmd.Flags().BoolVar(&autoMigrate, "migrate", false, "apply database migrations on start (postgres store)")
}

// loadEnvFile loads a dotenv file when present. Variables already set win.
func loadEnvFile(path string) {
	if path == "" {
		return
	}
	if err := godotenv.Load(path); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Loaded environment from %s\n", path)
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	loadEnvFile(envFile)

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if serveAddr != "" {
		cfg.Server.Addr = serveAddr
	}
	log := newLogger(cfg)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sessions, reports, closeStore, err := openStores(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeStore()

	proxy := util.NewProxyFunc(cfg.HTTP.HTTPProxy, cfg.HTTP.HTTPSProxy)
	client := provider.NewClient(
		util.NewHTTPClient(cfg.Providers.Timeout, proxy),
		worker.NewLimiter(cfg.RateLimiting.RequestsPerSecond, cfg.RateLimiting.BurstSize),
		cfg.HTTP.UserAgent,
	)

	deps := api.Deps{
		Catalog:   catalog.Default(),
		Pipeline:  newPipeline(cfg, log),
		Sessions:  sessions,
		Questions: provider.NewQuestionProvider(client, cfg.Providers.QuestionsURL, log),
		Incidents: provider.NewIncidentCatalog(client, cfg.Providers.IncidentsURL, cache.New(cfg.Cache)),
		Metrics:   api.NewMetrics("dii"),
	}
	if reports != nil {
		deps.Reports = reports
	}

	log.Info().
		Str("store", cfg.Store.Driver).
		Bool("api_key", cfg.Server.APIKey != "").
		Bool("remote_questions", cfg.Providers.QuestionsURL != "").
		Bool("remote_incidents", cfg.Providers.IncidentsURL != "").
		Msg("dii API configured")

	return api.NewServer(cfg.Server, deps, log).Run(ctx)
}

// openStores picks the session store for cfg.Store.Driver. Report history is
// only available with postgres.
func openStores(ctx context.Context, cfg *model.Config, log zerolog.Logger) (ports.SessionStore, *postgres.DB, func(), error) {
	switch cfg.Store.Driver {
	case "", "memory":
		return cachestore.New(cache.NewMemoryCache(cfg.Store.TTL, 10*time.Minute), cfg.Store.TTL), nil, func() {}, nil

	case "disk":
		if cfg.Store.Dir == "" {
			return nil, nil, nil, fmt.Errorf("store.dir is required for the disk store")
		}
		disk := cache.NewDiskCache(cfg.Store.Dir, cfg.Store.TTL)
		go purgeExpired(ctx, cfg.Store.TTL, log, func(context.Context) (int64, error) { return disk.Sweep() })
		return cachestore.New(disk, cfg.Store.TTL), nil, func() {}, nil

	case "postgres":
		if cfg.Store.DatabaseURL == "" {
			return nil, nil, nil, fmt.Errorf("store.database_url (or DATABASE_URL) is required for the postgres store")
		}
		db, err := postgres.Connect(ctx, cfg.Store.DatabaseURL, log)
		if err != nil {
			return nil, nil, nil, err
		}
		if autoMigrate {
			if err := db.Migrate(ctx, "up"); err != nil {
				db.Close()
				return nil, nil, nil, err
			}
		}
		go purgeExpired(ctx, cfg.Store.TTL, log, func(ctx context.Context) (int64, error) {
			return db.Purge(ctx, cfg.Store.TTL)
		})
		return db, db, db.Close, nil

	default:
		return nil, nil, nil, fmt.Errorf("unknown store driver %q (use memory, disk or postgres)", cfg.Store.Driver)
	}
}

// purgeExpired runs purge every purgeInterval until ctx is done. Stores
// without a ttl keep sessions forever.
func purgeExpired(ctx context.Context, ttl time.Duration, log zerolog.Logger, purge func(context.Context) (int64, error)) {
	if ttl <= 0 {
		return
	}
	ticker := time.NewTicker(purgeInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := purge(ctx)
			if err != nil {
				log.Warn().Err(err).Msg("session purge failed")
				continue
			}
			if n > 0 {
				log.Info().Int64("sessions", n).Msg("purged expired sessions")
			}
		}
	}
}
