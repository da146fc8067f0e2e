package model

import "time"

// Config is the full runtime configuration. Values come from defaults, the
// config file (~/.dii/config.yaml), DII_* environment variables and flags.
type Config struct {
	HTTP         HTTPConfig         `yaml:"http" mapstructure:"http"`
	Cache        CacheConfig        `yaml:"cache" mapstructure:"cache"`
	Concurrency  ConcurrencyConfig  `yaml:"concurrency" mapstructure:"concurrency"`
	RateLimiting RateLimitingConfig `yaml:"rate_limiting" mapstructure:"rate_limiting"`
	Store        StoreConfig        `yaml:"store" mapstructure:"store"`
	Server       ServerConfig       `yaml:"server" mapstructure:"server"`
	Providers    ProvidersConfig    `yaml:"providers" mapstructure:"providers"`
	LLM          LLMConfig          `yaml:"llm" mapstructure:"llm"`
	Log          LogConfig          `yaml:"log" mapstructure:"log"`
	Output       OutputConfig       `yaml:"output" mapstructure:"output"`
}

// HTTPConfig controls outbound requests used for website enrichment.
type HTTPConfig struct {
	Timeout       time.Duration `yaml:"timeout" mapstructure:"timeout"`
	UserAgent     string        `yaml:"user_agent" mapstructure:"user_agent"`
	MaxBodyBytes  int64         `yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
	RespectRobots bool          `yaml:"respect_robots" mapstructure:"respect_robots"`
	HTTPProxy     string        `yaml:"http_proxy,omitempty" mapstructure:"http_proxy"`
	HTTPSProxy    string        `yaml:"https_proxy,omitempty" mapstructure:"https_proxy"`
}

// CacheConfig controls the classification cache.
type CacheConfig struct {
	Enabled   bool          `yaml:"enabled" mapstructure:"enabled"`
	MemoryTTL time.Duration `yaml:"memory_ttl" mapstructure:"memory_ttl"`
	DiskDir   string        `yaml:"disk_dir,omitempty" mapstructure:"disk_dir"`
	DiskTTL   time.Duration `yaml:"disk_ttl" mapstructure:"disk_ttl"`
}

// ConcurrencyConfig controls batch processing.
type ConcurrencyConfig struct {
	Workers int `yaml:"workers" mapstructure:"workers"`
}

// RateLimitingConfig bounds outbound calls per host.
type RateLimitingConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	BurstSize         int     `yaml:"burst_size" mapstructure:"burst_size"`
}

// StoreConfig selects the session store backend.
type StoreConfig struct {
	Driver      string        `yaml:"driver" mapstructure:"driver"` // memory, disk, postgres
	DatabaseURL string        `yaml:"database_url,omitempty" mapstructure:"database_url"`
	Dir         string        `yaml:"dir,omitempty" mapstructure:"dir"`
	TTL         time.Duration `yaml:"ttl" mapstructure:"ttl"`
}

// ServerConfig controls the HTTP API.
type ServerConfig struct {
	Addr           string   `yaml:"addr" mapstructure:"addr"`
	AllowedOrigins []string `yaml:"allowed_origins,omitempty" mapstructure:"allowed_origins"`
	APIKey         string   `yaml:"api_key,omitempty" mapstructure:"api_key"`
}

// ProvidersConfig points at optional remote collaborators. Empty URLs use the
// built-in static question set and incident catalog.
type ProvidersConfig struct {
	QuestionsURL string        `yaml:"questions_url,omitempty" mapstructure:"questions_url"`
	IncidentsURL string        `yaml:"incidents_url,omitempty" mapstructure:"incidents_url"`
	Timeout      time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// LLMConfig configures the optional narrative summary.
type LLMConfig struct {
	Provider  string `yaml:"provider,omitempty" mapstructure:"provider"` // openai, anthropic, ollama, "" (disabled)
	Model     string `yaml:"model,omitempty" mapstructure:"model"`
	APIKey    string `yaml:"-" mapstructure:"api_key"`
	BaseURL   string `yaml:"base_url,omitempty" mapstructure:"base_url"`
	Timeout   int    `yaml:"timeout" mapstructure:"timeout"` // seconds
	MaxTokens int    `yaml:"max_tokens" mapstructure:"max_tokens"`
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level string `yaml:"level" mapstructure:"level"`
	JSON  bool   `yaml:"json" mapstructure:"json"`
}

// OutputConfig controls CLI output.
type OutputConfig struct {
	Verbose       bool   `yaml:"verbose" mapstructure:"verbose"`
	Dir           string `yaml:"dir" mapstructure:"dir"`
	IncludeFooter bool   `yaml:"include_footer" mapstructure:"include_footer"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Timeout:       15 * time.Second,
			UserAgent:     "dii/0.3 (+https://github.com/ppiankov/dii)",
			MaxBodyBytes:  2_000_000,
			RespectRobots: true,
		},
		Cache: CacheConfig{
			Enabled:   true,
			MemoryTTL: time.Hour,
			DiskTTL:   7 * 24 * time.Hour,
		},
		Concurrency: ConcurrencyConfig{
			Workers: 4,
		},
		RateLimiting: RateLimitingConfig{
			RequestsPerSecond: 2,
			BurstSize:         5,
		},
		Store: StoreConfig{
			Driver: "memory",
			TTL:    30 * 24 * time.Hour,
		},
		Server: ServerConfig{
			Addr: ":8080",
		},
		Providers: ProvidersConfig{
			Timeout: 5 * time.Second,
		},
		LLM: LLMConfig{
			Timeout:   30,
			MaxTokens: 800,
		},
		Log: LogConfig{
			Level: "info",
		},
		Output: OutputConfig{
			Dir:           "./dii-reports",
			IncludeFooter: true,
		},
	}
}
