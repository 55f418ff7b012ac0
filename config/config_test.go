package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("FRONTEND_URL", "https://shop.example.com/")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "mysql", cfg.DBDriver)
	assert.Equal(t, 30*time.Minute, cfg.OrderGraceWindow)
	assert.Equal(t, time.Hour, cfg.UserGraceWindow)
	assert.Equal(t, "https://shop.example.com", cfg.FrontendURL)
	assert.Equal(t, "https://shop.example.com/payment/cancel", cfg.Stripe.CancelURL)
	assert.Equal(t, []string{"http://localhost:4200", "https://www.amexan.store"}, cfg.CORSOrigins)
	assert.Empty(t, cfg.KafkaBrokers)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("ORDER_GRACE_WINDOW", "45m")
	t.Setenv("USER_GRACE_WINDOW", "2h")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092,")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 45*time.Minute, cfg.OrderGraceWindow)
	assert.Equal(t, 2*time.Hour, cfg.UserGraceWindow)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.KafkaBrokers)
}

func TestLoadRequiresJWTSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	_, err := Load()
	assert.ErrorIs(t, err, ErrMissingJWTSecret)
}
