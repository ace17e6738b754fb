package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var allVars = []string{
	"ENV", "LOG_LEVEL", "LISTEN_ADDR", "PUBLIC_BASE_URL", "ALLOWED_ORIGINS",
	"DB_PATH", "IMAGE_DIR", "SHOP_DATA_KEY", "CATALOG_FILE", "OVERRIDES_FILE",
	"MIN_MATCH_SCORE", "PRICE_MARKUP", "TAX_RATE", "SHIPPING_COST",
	"GEMINI_API_KEY", "PRINTFUL_API_KEY", "PRINTFUL_STORE_ID", "PRINTFUL_BASE_URL",
	"BOT_TOKEN", "ADMIN_TELEGRAM_ID", "ALLOWED_TELEGRAM_IDS",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, v := range allVars {
		t.Setenv(v, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.ListenAddr)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.AllowedOrigins)
	assert.Equal(t, 1, cfg.MinMatchScore)
	assert.Equal(t, 1.5, cfg.PriceMarkup)
	assert.Equal(t, 5.0, cfg.ShippingCost)
	assert.Equal(t, "https://api.printful.com", cfg.PrintfulBaseURL)
	assert.False(t, cfg.IsProduction())
	assert.Equal(t, []string{"GEMINI_API_KEY", "PRINTFUL_API_KEY", "SHOP_DATA_KEY"}, cfg.CheckRequired())
}

func TestLoad_FromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("ENV", "production")
	t.Setenv("PUBLIC_BASE_URL", "https://shop.example.com/")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example.com, ,https://b.example.com")
	t.Setenv("MIN_MATCH_SCORE", "3")
	t.Setenv("TAX_RATE", "0.24")
	t.Setenv("ADMIN_TELEGRAM_ID", "42")
	t.Setenv("ALLOWED_TELEGRAM_IDS", "7, 8")
	t.Setenv("GEMINI_API_KEY", "g")
	t.Setenv("PRINTFUL_API_KEY", "p")
	t.Setenv("SHOP_DATA_KEY", "k")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "https://shop.example.com", cfg.PublicBaseURL)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.AllowedOrigins)
	assert.Equal(t, 3, cfg.MinMatchScore)
	assert.Equal(t, 0.24, cfg.TaxRate)
	assert.Equal(t, int64(42), cfg.AdminTelegramID)
	assert.Equal(t, []int64{7, 8}, cfg.AllowedTelegramIDs)
	assert.Empty(t, cfg.CheckRequired())
}

func TestLoad_Invalid(t *testing.T) {
	tests := map[string]string{
		"MIN_MATCH_SCORE":      "abc",
		"PRICE_MARKUP":         "0",
		"TAX_RATE":             "lots",
		"ADMIN_TELEGRAM_ID":    "me",
		"ALLOWED_TELEGRAM_IDS": "1,two",
	}

	for key, value := range tests {
		t.Run(key, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(key, value)

			_, err := Load()
			assert.ErrorContains(t, err, key)
		})
	}
}
