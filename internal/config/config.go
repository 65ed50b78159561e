package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v2"
)

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	LogLevel   string `yaml:"log_level"`
	LogFile    string `yaml:"log_file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
}

// ScanConfig controls how tickers are launched and how much of each chain is read
type ScanConfig struct {
	LaunchDelaySeconds int `yaml:"-"` // overlaid through yamlScanConfig
	MaxExpirations     int `yaml:"max_expirations"`
	FetchRetries       int `yaml:"fetch_retries"` // 0 = no retries
}

// FetcherConfig represents page fetcher configuration
type FetcherConfig struct {
	Mode                 string `yaml:"mode"` // render, static
	RenderTimeoutSeconds int    `yaml:"render_timeout_seconds"`
	SettleMillis         int    `yaml:"settle_millis"` // wait after DOM ready for scripts to inject tables
	UserAgent            string `yaml:"user_agent"`
	ChromePath           string `yaml:"chrome_path"`
	Headless             bool   `yaml:"-"` // overlaid through yamlFetcherConfig
}

// SelectorConfig holds the CSS selectors used to read the quote site
type SelectorConfig struct {
	Price      string `yaml:"price"`
	CallsTable string `yaml:"calls_table"`
	PutsTable  string `yaml:"puts_table"`
	Row        string `yaml:"row"`
	StrikeLink string `yaml:"strike_link"`
	Bid        string `yaml:"bid"`
	Ask        string `yaml:"ask"`
}

// CSVConfig represents CSV export configuration
type CSVConfig struct {
	Enabled        bool   `yaml:"enabled"`
	Dir            string `yaml:"dir"`
	FilenameFormat string `yaml:"filename_format"`
}

// JSONConfig represents newline-delimited JSON export configuration
type JSONConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// RedisConfig represents the snapshot cache sink
type RedisConfig struct {
	URL        string `yaml:"url"`
	KeyPrefix  string `yaml:"key_prefix"`
	TTLMinutes int    `yaml:"ttl_minutes"`
}

// KafkaConfig represents the snapshot stream sink
type KafkaConfig struct {
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`
}

type Config struct {
	// Server settings
	Port string

	// Quote site
	QuoteHost string

	// Ticker sources
	DefaultTickers []string
	WatchlistFile  string

	Scan      ScanConfig
	Fetcher   FetcherConfig
	Selectors SelectorConfig
	Logging   LoggingConfig
	CSV       CSVConfig
	JSON      JSONConfig
	Redis     RedisConfig
	Kafka     KafkaConfig
}

type YAMLConfig struct {
	Port      string         `yaml:"port"`
	QuoteHost string         `yaml:"quote_host"`
	Logging   LoggingConfig  `yaml:"logging"`
	Fetcher   yamlFetcherConfig `yaml:"fetcher"`
	Selectors SelectorConfig    `yaml:"selectors"`
	Scan      yamlScanConfig    `yaml:"scan"`

	Tickers struct {
		Default   []string `yaml:"default"`
		Watchlist string   `yaml:"watchlist"`
	} `yaml:"tickers"`

	CSV   CSVConfig   `yaml:"csv"`
	JSON  JSONConfig  `yaml:"json"`
	Redis RedisConfig `yaml:"redis"`
	Kafka KafkaConfig `yaml:"kafka"`
}

// Pointer fields tell an explicit zero or false apart from an absent key
type yamlScanConfig struct {
	ScanConfig         `yaml:",inline"`
	LaunchDelaySeconds *int `yaml:"launch_delay_seconds"`
}

type yamlFetcherConfig struct {
	FetcherConfig `yaml:",inline"`
	Headless      *bool `yaml:"headless"`
}

// Selectors matching the quote site's option pages
const (
	DefaultPriceSelector      = `span[class="Trsdu(0.3s) Fw(b) Fz(36px) Mb(-4px) D(ib)"]`
	DefaultCallsTableSelector = `table[class="calls W(100%) Pos(r) Bd(0) Pt(0) list-options"]`
	DefaultPutsTableSelector  = `table[class="puts W(100%) Pos(r) list-options"]`
	DefaultRowSelector        = `tr`
	DefaultStrikeLinkSelector = `a[class="C($linkColor) Fz(s)"]`
	DefaultBidSelector        = `td[class="data-col4 Ta(end) Pstart(7px)"]`
	DefaultAskSelector        = `td[class="data-col5 Ta(end) Pstart(7px)"]`
)

// DefaultSelectors returns the selector set for the quote site
func DefaultSelectors() SelectorConfig {
	return SelectorConfig{
		Price:      DefaultPriceSelector,
		CallsTable: DefaultCallsTableSelector,
		PutsTable:  DefaultPutsTableSelector,
		Row:        DefaultRowSelector,
		StrikeLink: DefaultStrikeLinkSelector,
		Bid:        DefaultBidSelector,
		Ask:        DefaultAskSelector,
	}
}

func Load() *Config {
	return LoadFile(getEnv("CONFIG_FILE", "config.yaml"))
}

// LoadFile builds the config from environment defaults and overlays the YAML file at path
func LoadFile(path string) *Config {
	cfg := &Config{
		Port:           getEnv("PORT", "8080"),
		QuoteHost:      strings.TrimRight(getEnv("QUOTE_HOST", "https://finance.yahoo.com"), "/"),
		DefaultTickers: getEnvStringSlice("DEFAULT_TICKERS", []string{"WISH", "PLTR", "SOFI", "MSFT", "AAPL", "CLOV", "PSFE"}),
		WatchlistFile:  getEnv("WATCHLIST_FILE", ""),

		Scan: ScanConfig{
			LaunchDelaySeconds: getEnvInt("LAUNCH_DELAY_SECONDS", 5),
			MaxExpirations:     getEnvInt("MAX_EXPIRATIONS", 5),
			FetchRetries:       getEnvInt("FETCH_RETRIES", 0),
		},

		Fetcher: FetcherConfig{
			Mode:                 getEnv("FETCHER_MODE", "render"),
			RenderTimeoutSeconds: getEnvInt("RENDER_TIMEOUT_SECONDS", 60),
			SettleMillis:         getEnvInt("RENDER_SETTLE_MILLIS", 1000),
			UserAgent:            getEnv("FETCHER_USER_AGENT", ""),
			ChromePath:           getEnv("CHROME_PATH", ""),
			Headless:             getEnvBool("CHROME_HEADLESS", true),
		},

		Selectors: DefaultSelectors(),

		Logging: LoggingConfig{
			LogLevel:   getEnv("LOG_LEVEL", "info"),
			LogFile:    getEnv("LOG_FILE", "strikescan.log"),
			MaxSizeMB:  getEnvInt("LOG_MAX_SIZE_MB", 50),
			MaxBackups: getEnvInt("LOG_MAX_BACKUPS", 5),
		},

		CSV: CSVConfig{
			Enabled:        getEnvBool("CSV_ENABLED", false),
			Dir:            getEnv("CSV_DIR", "exports"),
			FilenameFormat: getEnv("CSV_FILENAME_FORMAT", "{time}_{ticker}_premiums.csv"),
		},

		JSON: JSONConfig{
			Enabled: getEnvBool("JSON_ENABLED", false),
			Path:    getEnv("JSON_PATH", "snapshots.jsonl"),
		},

		Redis: RedisConfig{
			URL:        getEnv("REDIS_URL", ""),
			KeyPrefix:  getEnv("REDIS_KEY_PREFIX", "strikescan"),
			TTLMinutes: getEnvInt("REDIS_TTL_MINUTES", 60),
		},

		Kafka: KafkaConfig{
			Brokers: getEnvStringSlice("KAFKA_BROKERS", nil),
			Topic:   getEnv("KAFKA_TOPIC", "strikescan.snapshots"),
		},
	}

	// Overlay YAML values that were set
	if yamlCfg := loadYAMLConfig(path); yamlCfg != nil {
		if yamlCfg.Port != "" {
			cfg.Port = yamlCfg.Port
		}
		if yamlCfg.QuoteHost != "" {
			cfg.QuoteHost = strings.TrimRight(yamlCfg.QuoteHost, "/")
		}
		if len(yamlCfg.Tickers.Default) > 0 {
			cfg.DefaultTickers = yamlCfg.Tickers.Default
		}
		if yamlCfg.Tickers.Watchlist != "" {
			cfg.WatchlistFile = yamlCfg.Tickers.Watchlist
		}

		if d := yamlCfg.Scan.LaunchDelaySeconds; d != nil && *d >= 0 {
			cfg.Scan.LaunchDelaySeconds = *d
		}
		if yamlCfg.Scan.MaxExpirations > 0 {
			cfg.Scan.MaxExpirations = yamlCfg.Scan.MaxExpirations
		}
		if yamlCfg.Scan.FetchRetries > 0 {
			cfg.Scan.FetchRetries = yamlCfg.Scan.FetchRetries
		}

		if yamlCfg.Fetcher.Mode != "" {
			cfg.Fetcher.Mode = yamlCfg.Fetcher.Mode
		}
		if yamlCfg.Fetcher.RenderTimeoutSeconds > 0 {
			cfg.Fetcher.RenderTimeoutSeconds = yamlCfg.Fetcher.RenderTimeoutSeconds
		}
		if yamlCfg.Fetcher.SettleMillis > 0 {
			cfg.Fetcher.SettleMillis = yamlCfg.Fetcher.SettleMillis
		}
		if yamlCfg.Fetcher.UserAgent != "" {
			cfg.Fetcher.UserAgent = yamlCfg.Fetcher.UserAgent
		}
		if yamlCfg.Fetcher.ChromePath != "" {
			cfg.Fetcher.ChromePath = yamlCfg.Fetcher.ChromePath
		}
		if yamlCfg.Fetcher.Headless != nil {
			cfg.Fetcher.Headless = *yamlCfg.Fetcher.Headless
		}

		mergeSelectors(&cfg.Selectors, yamlCfg.Selectors)

		// Logging configuration from YAML
		if yamlCfg.Logging.LogLevel != "" {
			cfg.Logging.LogLevel = yamlCfg.Logging.LogLevel
		}
		if yamlCfg.Logging.LogFile != "" {
			cfg.Logging.LogFile = yamlCfg.Logging.LogFile
		}
		if yamlCfg.Logging.MaxSizeMB > 0 {
			cfg.Logging.MaxSizeMB = yamlCfg.Logging.MaxSizeMB
		}
		if yamlCfg.Logging.MaxBackups > 0 {
			cfg.Logging.MaxBackups = yamlCfg.Logging.MaxBackups
		}

		// CSV configuration from YAML
		if yamlCfg.CSV.Enabled {
			cfg.CSV.Enabled = true
		}
		if yamlCfg.CSV.Dir != "" {
			cfg.CSV.Dir = yamlCfg.CSV.Dir
		}
		if yamlCfg.CSV.FilenameFormat != "" {
			cfg.CSV.FilenameFormat = yamlCfg.CSV.FilenameFormat
		}

		if yamlCfg.JSON.Enabled {
			cfg.JSON.Enabled = true
		}
		if yamlCfg.JSON.Path != "" {
			cfg.JSON.Path = yamlCfg.JSON.Path
		}

		if yamlCfg.Redis.URL != "" {
			cfg.Redis.URL = yamlCfg.Redis.URL
		}
		if yamlCfg.Redis.KeyPrefix != "" {
			cfg.Redis.KeyPrefix = yamlCfg.Redis.KeyPrefix
		}
		if yamlCfg.Redis.TTLMinutes > 0 {
			cfg.Redis.TTLMinutes = yamlCfg.Redis.TTLMinutes
		}

		if len(yamlCfg.Kafka.Brokers) > 0 {
			cfg.Kafka.Brokers = yamlCfg.Kafka.Brokers
		}
		if yamlCfg.Kafka.Topic != "" {
			cfg.Kafka.Topic = yamlCfg.Kafka.Topic
		}
	}

	return cfg
}

// LaunchDelay returns the pause between pipeline launches
func (c *Config) LaunchDelay() time.Duration {
	return time.Duration(c.Scan.LaunchDelaySeconds) * time.Second
}

// RenderTimeout returns the per-fetch render bound
func (c *Config) RenderTimeout() time.Duration {
	return time.Duration(c.Fetcher.RenderTimeoutSeconds) * time.Second
}

// RenderSettle returns the pause after DOM ready
func (c *Config) RenderSettle() time.Duration {
	return time.Duration(c.Fetcher.SettleMillis) * time.Millisecond
}

// RedisTTL returns how long a snapshot stays in the cache sink
func (c *Config) RedisTTL() time.Duration {
	return time.Duration(c.Redis.TTLMinutes) * time.Minute
}

func mergeSelectors(dst *SelectorConfig, src SelectorConfig) {
	if src.Price != "" {
		dst.Price = src.Price
	}
	if src.CallsTable != "" {
		dst.CallsTable = src.CallsTable
	}
	if src.PutsTable != "" {
		dst.PutsTable = src.PutsTable
	}
	if src.Row != "" {
		dst.Row = src.Row
	}
	if src.StrikeLink != "" {
		dst.StrikeLink = src.StrikeLink
	}
	if src.Bid != "" {
		dst.Bid = src.Bid
	}
	if src.Ask != "" {
		dst.Ask = src.Ask
	}
}

func loadYAMLConfig(path string) *YAMLConfig {
	data, err := os.ReadFile(path)
	if err != nil {
		// Could not read config file - silently return nil
		return nil
	}

	var yamlCfg YAMLConfig
	if err := yaml.Unmarshal(data, &yamlCfg); err != nil {
		// Could not parse config file - silently return nil
		return nil
	}

	return &yamlCfg
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvStringSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		return strings.Split(value, ",")
	}
	return defaultValue
}

// FormatCSVFilename formats export filenames using the configured template
func FormatCSVFilename(format, ticker, runID, timestamp string) string {
	result := format
	result = strings.ReplaceAll(result, "{ticker}", ticker)
	result = strings.ReplaceAll(result, "{run}", runID)
	result = strings.ReplaceAll(result, "{time}", timestamp)
	return result
}
