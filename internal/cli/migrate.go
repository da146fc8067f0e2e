package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ppiankov/dii/internal/store/postgres"
)

var migrateCmd = &cobra.Command{
	Use:       "migrate [up|down|status|version]",
	Short:     "Apply or inspect postgres schema migrations",
	Long:      `Migrate runs the embedded goose migrations against store.database_url (or DATABASE_URL). The default command is "up".`,
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: []string{"up", "down", "status", "version"},
	RunE: func(cmd *cobra.Command, args []string) error {
		loadEnvFile(envFile)

		command := "up"
		if len(args) == 1 {
			command = args[0]
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cfg.Store.DatabaseURL == "" {
			return fmt.Errorf("store.database_url (or DATABASE_URL) is not set")
		}
		log := newLogger(cfg)

		db, err := postgres.Connect(cmd.Context(), cfg.Store.DatabaseURL, log)
		if err != nil {
			return err
		}
		defer db.Close()

		if err := db.Migrate(cmd.Context(), command); err != nil {
			return err
		}
		fmt.Printf("✓ migrate %s complete\n", command)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	migrateCmd.Flags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before configuration")
}
