package cli

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/ppiankov/dii/internal/model"
)

var (
	configPath  string
	configForce bool
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect or create the dii config file",
	Long: `Settings are resolved in this order, first match wins:

  1. command-line flags
  2. DII_* environment variables (DII_SERVER_ADDR sets server.addr)
  3. the config file (~/.dii/config.yaml unless --config is given)
  4. built-in defaults

OPENAI_API_KEY, ANTHROPIC_API_KEY and DATABASE_URL are read as fallbacks for
llm.api_key and store.database_url.`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration with secrets masked",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		source := "built-in defaults and environment"
		if used := viper.ConfigFileUsed(); used != "" {
			source = used
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "# source: %s\n", source)

		enc := yaml.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent(2)
		defer func() { _ = enc.Close() }()
		return enc.Encode(masked(*cfg))
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a commented config file with the defaults",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := configPath
		if path == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return fmt.Errorf("home directory: %w", err)
			}
			path = filepath.Join(home, ".dii", "config.yaml")
		}

		if _, err := os.Stat(path); err == nil && !configForce {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return err
		}

		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
		if err != nil {
			return err
		}
		if err := writeDefaultConfig(f); err != nil {
			_ = f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
		return nil
	},
}

const secretMask = "********"

// masked hides credentials before a config is printed.
func masked(cfg model.Config) model.Config {
	if cfg.LLM.APIKey != "" {
		cfg.LLM.APIKey = secretMask
	}
	if cfg.Server.APIKey != "" {
		cfg.Server.APIKey = secretMask
	}
	if u, err := url.Parse(cfg.Store.DatabaseURL); err == nil && u.User != nil {
		if _, hasPassword := u.User.Password(); hasPassword {
			u.User = url.UserPassword(u.User.Username(), secretMask)
			cfg.Store.DatabaseURL = u.String()
		}
	}
	return cfg
}

// sectionNotes become head comments on the top-level keys of a new file.
var sectionNotes = map[string]string{
	"http":          "Website enrichment: fetch timeout, user agent and robots.txt.",
	"cache":         "Classification cache. Set disk_dir to keep entries across runs.",
	"concurrency":   "Parallel assessments in 'dii batch'.",
	"rate_limiting": "Per-host request rate for enrichment and remote providers.",
	"store":         "Session store for 'dii serve': memory, disk or postgres.\nReport history needs postgres.",
	"server":        "HTTP API. api_key is optional; when set, clients send X-API-Key.",
	"providers":     "Remote question and incident catalogs. Empty URLs use the built-in data.",
	"llm":           "Optional narrative (openai, anthropic or ollama). Never changes a score.\nPrefer OPENAI_API_KEY or ANTHROPIC_API_KEY over writing the key here.",
	"log":           "Log level (debug, info, warn, error) and JSON output.",
	"output":        "Report files written by assess and batch.",
}

func writeDefaultConfig(w io.Writer) error {
	var doc yaml.Node
	if err := doc.Encode(model.DefaultConfig()); err != nil {
		return fmt.Errorf("encode defaults: %w", err)
	}
	doc.HeadComment = "dii configuration. Environment variables (DII_*) and flags override it."
	for i := 0; i+1 < len(doc.Content); i += 2 {
		if note, ok := sectionNotes[doc.Content[i].Value]; ok {
			doc.Content[i].HeadComment = note
		}
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(&doc); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return enc.Close()
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd, configInitCmd)
	configInitCmd.Flags().StringVar(&configPath, "path", "", "file to write (default: $HOME/.dii/config.yaml)")
	configInitCmd.Flags().BoolVar(&configForce, "force", false, "overwrite an existing file")
}
