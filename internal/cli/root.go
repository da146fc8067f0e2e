package cli

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/ppiankov/dii/internal/logging"
	"github.com/ppiankov/dii/internal/model"
)

// Version is set at build time with -ldflags.
var Version = "v0.3.0"

var (
	cfgFile  string
	verbose  bool
	logLevel string
	jsonLogs bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "dii",
	Short: "dii - Digital Immunity Index assessments",
	Long: `dii measures how well an organization's business survives a cyber incident.

It classifies the business model, turns five plain-language answers into
dimension scores, and combines them into a 0-10 immunity index with a
maturity stage, peer percentile and recommendations.

The score is deterministic. Website enrichment, incident comparisons and
narrative summaries add context and never change it.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("dii %s\n", Version)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.dii/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&jsonLogs, "log-json", false, "emit JSON logs")

	_ = viper.BindPFlag("output.verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	_ = viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("log.json", rootCmd.PersistentFlags().Lookup("log-json"))

	rootCmd.AddCommand(versionCmd)
}

// optionalKeys are left out of the defaults document when empty, so they are
// bound to DII_* variables explicitly.
var optionalKeys = []string{
	"http.http_proxy",
	"http.https_proxy",
	"cache.disk_dir",
	"store.dir",
	"server.allowed_origins",
	"server.api_key",
	"providers.questions_url",
	"providers.incidents_url",
	"llm.provider",
	"llm.model",
	"llm.base_url",
}

// initConfig layers defaults, the config file and DII_* environment variables
func initConfig() {
	viper.SetConfigType("yaml")

	// Defaults are loaded as a config document so every key is known to
	// AutomaticEnv and Unmarshal.
	if defaults, err := yaml.Marshal(model.DefaultConfig()); err == nil {
		_ = viper.ReadConfig(bytes.NewReader(defaults))
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			viper.AddConfigPath(filepath.Join(home, ".dii"))
		} else {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
		}
		viper.SetConfigName("config")
	}

	viper.SetEnvPrefix("DII")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	for _, key := range optionalKeys {
		_ = viper.BindEnv(key)
	}
	_ = viper.BindEnv("llm.api_key", "DII_LLM_API_KEY", "OPENAI_API_KEY", "ANTHROPIC_API_KEY")
	_ = viper.BindEnv("store.database_url", "DII_STORE_DATABASE_URL", "DATABASE_URL")

	if err := viper.MergeInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// loadConfig resolves the effective configuration
func loadConfig() (*model.Config, error) {
	cfg := model.DefaultConfig()
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if verbose {
		cfg.Output.Verbose = true
	}
	if cfg.Output.Verbose && cfg.Log.Level == "info" {
		cfg.Log.Level = "debug"
	}
	return cfg, nil
}

func newLogger(cfg *model.Config) zerolog.Logger {
	return logging.New(cfg.Log.Level, cfg.Log.JSON)
}
