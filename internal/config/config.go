package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Harvest  HarvestConfig
	Enrich   EnrichConfig
	Output   OutputConfig
	Browser  BrowserConfig
	Database DatabaseConfig
	Events   EventsConfig
	Server   ServerConfig
	Logging  LoggingConfig
}

// HarvestConfig holds the listing source and the pagination retry policy.
// All delays are policy values; tests run the state machine with a zero-delay
// limiter instead of overriding them.
type HarvestConfig struct {
	ListingURL        string
	APIBase           string
	ListingPath       string
	Origin            string
	Referer           string
	CallerID          string
	PageSize          int
	MaxErrors         int
	PageDelayMin      time.Duration
	PageDelayMax      time.Duration
	RateLimitCooldown time.Duration
	ErrorBackoff      time.Duration
	RefreshSettle     time.Duration
	WarmupSettle      time.Duration
}

type EnrichConfig struct {
	CheckpointEvery int
	SettleDelay     time.Duration
	ReviewSettle    time.Duration
	ItemDelayMin    time.Duration
	ItemDelayMax    time.Duration
}

type OutputConfig struct {
	CatalogPath    string
	RankedPath     string
	CheckpointPath string
}

type BrowserConfig struct {
	Headless       bool
	Timeout        time.Duration
	ViewportWidth  int
	ViewportHeight int
	UserAgent      string
	Locale         string
	TimezoneID     string
}

type DatabaseConfig struct {
	// URL enables the Postgres catalog sink when non-empty.
	URL string
}

type EventsConfig struct {
	// RedisAddr enables run-event publishing when non-empty.
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	Stream        string
}

type ServerConfig struct {
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

type LoggingConfig struct {
	Level  string
	Format string
}

func Load() (*Config, error) {
	cfg := &Config{
		Harvest: HarvestConfig{
			ListingURL:        getEnvOrDefault("LISTING_URL", "https://www.nike.com/ph/w"),
			APIBase:           getEnvOrDefault("CATALOG_API_BASE", "https://api.nike.com/discover/product_wall/v1/marketplace/PH/language/en-GB/consumerChannelId/d9a5bc42-4b9c-4976-858a-f159cf99c647"),
			ListingPath:       getEnvOrDefault("LISTING_PATH", "/ph/w"),
			Origin:            getEnvOrDefault("API_ORIGIN", "https://www.nike.com"),
			Referer:           getEnvOrDefault("API_REFERER", "https://www.nike.com/"),
			CallerID:          getEnvOrDefault("API_CALLER_ID", "com.nike.commerce.nikedotcom.web"),
			PageSize:          getIntOrDefault("HARVEST_PAGE_SIZE", 24),
			MaxErrors:         getIntOrDefault("HARVEST_MAX_ERRORS", 15),
			PageDelayMin:      getDurationOrDefault("HARVEST_PAGE_DELAY_MIN", 800*time.Millisecond),
			PageDelayMax:      getDurationOrDefault("HARVEST_PAGE_DELAY_MAX", 1500*time.Millisecond),
			RateLimitCooldown: getDurationOrDefault("HARVEST_RATE_LIMIT_COOLDOWN", 30*time.Second),
			ErrorBackoff:      getDurationOrDefault("HARVEST_ERROR_BACKOFF", 5*time.Second),
			RefreshSettle:     getDurationOrDefault("HARVEST_REFRESH_SETTLE", 5*time.Second),
			WarmupSettle:      getDurationOrDefault("HARVEST_WARMUP_SETTLE", 4*time.Second),
		},
		Enrich: EnrichConfig{
			CheckpointEvery: getIntOrDefault("ENRICH_CHECKPOINT_EVERY", 25),
			SettleDelay:     getDurationOrDefault("ENRICH_SETTLE_DELAY", 3*time.Second),
			ReviewSettle:    getDurationOrDefault("ENRICH_REVIEW_SETTLE", 2*time.Second),
			ItemDelayMin:    getDurationOrDefault("ENRICH_ITEM_DELAY_MIN", 1500*time.Millisecond),
			ItemDelayMax:    getDurationOrDefault("ENRICH_ITEM_DELAY_MAX", 3500*time.Millisecond),
		},
		Output: OutputConfig{
			CatalogPath:    getEnvOrDefault("OUTPUT_CSV", "nike_products.csv"),
			RankedPath:     getEnvOrDefault("TOP20_CSV", "top_20_rating_review.csv"),
			CheckpointPath: getEnvOrDefault("CHECKPOINT_CSV", "nike_checkpoint.csv"),
		},
		Browser: BrowserConfig{
			Headless:       getBoolOrDefault("BROWSER_HEADLESS", true),
			Timeout:        getDurationOrDefault("BROWSER_TIMEOUT", 30*time.Second),
			ViewportWidth:  getIntOrDefault("BROWSER_VIEWPORT_WIDTH", 1366),
			ViewportHeight: getIntOrDefault("BROWSER_VIEWPORT_HEIGHT", 768),
			UserAgent:      getEnvOrDefault("BROWSER_USER_AGENT", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/122.0.0.0 Safari/537.36"),
			Locale:         getEnvOrDefault("BROWSER_LOCALE", "en-PH"),
			TimezoneID:     getEnvOrDefault("BROWSER_TIMEZONE", "Asia/Manila"),
		},
		Database: DatabaseConfig{
			URL: getEnvOrDefault("DATABASE_URL", ""),
		},
		Events: EventsConfig{
			RedisAddr:     getEnvOrDefault("REDIS_ADDR", ""),
			RedisPassword: getEnvOrDefault("REDIS_PASSWORD", ""),
			RedisDB:       getIntOrDefault("REDIS_DB", 0),
			Stream:        getEnvOrDefault("EVENTS_STREAM", "stream:catalog_runs"),
		},
		Server: ServerConfig{
			Port:            getIntOrDefault("SERVER_PORT", 8080),
			ReadTimeout:     getDurationOrDefault("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:    getDurationOrDefault("SERVER_WRITE_TIMEOUT", 60*time.Second),
			ShutdownTimeout: getDurationOrDefault("SERVER_SHUTDOWN_TIMEOUT", 30*time.Second),
		},
		Logging: LoggingConfig{
			Level:  getEnvOrDefault("LOG_LEVEL", "info"),
			Format: getEnvOrDefault("LOG_FORMAT", "text"),
		},
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Harvest.PageSize < 1 {
		return fmt.Errorf("HARVEST_PAGE_SIZE must be at least 1")
	}

	if c.Harvest.MaxErrors < 1 {
		return fmt.Errorf("HARVEST_MAX_ERRORS must be at least 1")
	}

	if c.Harvest.PageDelayMin > c.Harvest.PageDelayMax {
		return fmt.Errorf("HARVEST_PAGE_DELAY_MIN cannot be greater than HARVEST_PAGE_DELAY_MAX")
	}

	if c.Enrich.CheckpointEvery < 1 {
		return fmt.Errorf("ENRICH_CHECKPOINT_EVERY must be at least 1")
	}

	if c.Enrich.ItemDelayMin > c.Enrich.ItemDelayMax {
		return fmt.Errorf("ENRICH_ITEM_DELAY_MIN cannot be greater than ENRICH_ITEM_DELAY_MAX")
	}

	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
