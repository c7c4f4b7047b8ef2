package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDefaults(t *testing.T) {
	cfg, err := Parse()
	require.NoError(t, err)

	assert.Equal(t, "5000", cfg.Port)
	assert.Equal(t, ProviderGemini, cfg.LLMProvider)
	assert.Equal(t, "gemini-1.5-flash", cfg.GeminiModel)
	assert.Equal(t, 3, cfg.GenerationMaxRetries)
	assert.Equal(t, time.Second, cfg.GenerationBaseDelay)
	assert.Equal(t, 60*time.Second, cfg.GenerationMaxDelay)
	assert.Equal(t, 10*time.Minute, cfg.SummaryCacheTTL)
	assert.Equal(t, []string{"*"}, cfg.CORSAllowedOrigins)
	assert.False(t, cfg.NotificationsEnabled())
}

func TestParseOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("LLM_PROVIDER", " OpenAI ")
	t.Setenv("GENERATION_MAX_RETRIES", "5")
	t.Setenv("GENERATION_BASE_DELAY", "250ms")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://a.test,http://b.test")
	t.Setenv("TELEGRAM_BOT_TOKEN", "token")
	t.Setenv("DOCTOR_CHAT_ID", "42")

	cfg, err := Parse()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, ProviderOpenAI, cfg.LLMProvider)
	assert.Equal(t, 5, cfg.GenerationMaxRetries)
	assert.Equal(t, 250*time.Millisecond, cfg.GenerationBaseDelay)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, int64(42), cfg.DoctorChatID)
	assert.True(t, cfg.NotificationsEnabled())
}

func TestParseRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"unknown provider", "LLM_PROVIDER", "deepseek"},
		{"zero retries", "GENERATION_MAX_RETRIES", "0"},
		{"bad duration", "GENERATION_BASE_DELAY", "soon"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.val)
			_, err := Parse()
			assert.Error(t, err)
		})
	}
}
