package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	AppName     = "llm-shop"
	EnvFileName = "config.env"
)

// Config holds the runtime settings read from the environment.
type Config struct {
	Env      string
	LogLevel string

	// HTTP
	ListenAddr     string
	PublicBaseURL  string
	AllowedOrigins []string

	// Storage
	DBPath   string
	ImageDir string
	DataKey  string

	// Catalog
	CatalogFile   string
	OverridesFile string
	MinMatchScore int

	// Pricing
	PriceMarkup  float64
	TaxRate      float64
	ShippingCost float64

	// External APIs
	GeminiAPIKey    string
	PrintfulAPIKey  string
	PrintfulStoreID string
	PrintfulBaseURL string

	// Telegram
	BotToken           string
	AdminTelegramID    int64
	AllowedTelegramIDs []int64
}

// LoadEnvFile loads environment variables from config.env in the user's
// config directory and from .env in the working directory. Variables already
// set in the environment win. Errors are ignored since the files may not exist.
func LoadEnvFile() {
	if configBase, err := os.UserConfigDir(); err == nil {
		_ = godotenv.Load(filepath.Join(configBase, AppName, EnvFileName))
	}
	_ = godotenv.Load()
}

// Load reads the configuration from the environment. It fails on values that
// are set but malformed; missing required values are reported by CheckRequired.
func Load() (*Config, error) {
	cfg := &Config{
		Env:             getEnv("ENV", "development"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		ListenAddr:      getEnv("LISTEN_ADDR", ":8080"),
		PublicBaseURL:   strings.TrimSuffix(getEnv("PUBLIC_BASE_URL", "http://localhost:8080"), "/"),
		AllowedOrigins:  getEnvAsList("ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
		DBPath:          getEnv("DB_PATH", "shop.db"),
		ImageDir:        getEnv("IMAGE_DIR", "images"),
		DataKey:         os.Getenv("SHOP_DATA_KEY"),
		CatalogFile:     os.Getenv("CATALOG_FILE"),
		OverridesFile:   os.Getenv("OVERRIDES_FILE"),
		GeminiAPIKey:    os.Getenv("GEMINI_API_KEY"),
		PrintfulAPIKey:  os.Getenv("PRINTFUL_API_KEY"),
		PrintfulStoreID: os.Getenv("PRINTFUL_STORE_ID"),
		PrintfulBaseURL: getEnv("PRINTFUL_BASE_URL", "https://api.printful.com"),
		BotToken:        os.Getenv("BOT_TOKEN"),
	}

	var err error
	if cfg.MinMatchScore, err = getEnvAsInt("MIN_MATCH_SCORE", 1); err != nil {
		return nil, err
	}
	if cfg.PriceMarkup, err = getEnvAsFloat("PRICE_MARKUP", 1.5); err != nil {
		return nil, err
	}
	if cfg.TaxRate, err = getEnvAsFloat("TAX_RATE", 0); err != nil {
		return nil, err
	}
	if cfg.ShippingCost, err = getEnvAsFloat("SHIPPING_COST", 5.0); err != nil {
		return nil, err
	}
	if cfg.AdminTelegramID, err = getEnvAsInt64("ADMIN_TELEGRAM_ID", 0); err != nil {
		return nil, err
	}
	for _, s := range getEnvAsList("ALLOWED_TELEGRAM_IDS", nil) {
		id, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid ALLOWED_TELEGRAM_IDS entry %q: %w", s, err)
		}
		cfg.AllowedTelegramIDs = append(cfg.AllowedTelegramIDs, id)
	}

	if cfg.MinMatchScore < 0 {
		return nil, fmt.Errorf("MIN_MATCH_SCORE must not be negative, got %d", cfg.MinMatchScore)
	}
	if cfg.PriceMarkup <= 0 {
		return nil, fmt.Errorf("PRICE_MARKUP must be positive, got %v", cfg.PriceMarkup)
	}

	return cfg, nil
}

// CheckRequired returns the names of required variables that are unset.
func (c *Config) CheckRequired() []string {
	var missing []string
	required := []struct {
		name  string
		value string
	}{
		{"GEMINI_API_KEY", c.GeminiAPIKey},
		{"PRINTFUL_API_KEY", c.PrintfulAPIKey},
		{"SHOP_DATA_KEY", c.DataKey},
	}
	for _, r := range required {
		if r.value == "" {
			missing = append(missing, r.name)
		}
	}
	return missing
}

// IsProduction reports whether ENV is "production".
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getEnvAsInt64(key string, defaultValue int64) (int64, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getEnvAsFloat(key string, defaultValue float64) (float64, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return f, nil
}

// getEnvAsList splits a comma separated variable, dropping empty entries.
func getEnvAsList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for part := range strings.SplitSeq(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
