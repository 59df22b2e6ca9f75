package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGetters(t *testing.T) {
	t.Setenv("WC_STRING", "value")
	t.Setenv("WC_INT", "42")
	t.Setenv("WC_BAD_INT", "forty-two")
	t.Setenv("WC_DURATION", "90s")
	t.Setenv("WC_EMPTY", "")

	assert.Equal(t, "value", GetEnv("WC_STRING", "fallback"))
	assert.Equal(t, "fallback", GetEnv("WC_EMPTY", "fallback"))
	assert.Equal(t, "fallback", GetEnv("WC_MISSING", "fallback"))
	assert.Equal(t, 42, GetIntEnv("WC_INT", 7))
	assert.Equal(t, 7, GetIntEnv("WC_BAD_INT", 7))
	assert.Equal(t, 90*time.Second, GetDurationEnv("WC_DURATION", time.Second))
	assert.Equal(t, time.Second, GetDurationEnv("WC_MISSING", time.Second))
}

func TestLoad(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("DB_NAME", "ledger_test")
	t.Setenv("WORKFLOW_TIMEOUT", "2s")
	t.Setenv("RESUME_BATCH", "5")

	cfg := Load()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "ledger_test", cfg.Database.Name)
	assert.Equal(t, 2*time.Second, cfg.Workflow.Timeout)
	assert.Equal(t, "wallet-topup", cfg.Workflow.TopUpProcess)
	assert.Equal(t, 5, cfg.ResumeBatch)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr error
	}{
		{"production without callback secret", Config{Env: "production"}, ErrCallbackSecretRequired},
		{"production with callback secret", Config{Env: "production", CallbackJWTSecret: "s3cret"}, nil},
		{"development without callback secret", Config{Env: "development"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}
