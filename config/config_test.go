package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"CATALOG_REFRESH_SECONDS", "CHECKOUT_TIMEOUT_SECONDS", "SESSION_TTL_SECONDS", "KAFKA_TOPIC_ORDER_EVENTS"} {
		t.Setenv(key, "")
	}

	cfg := Load()

	assert.Equal(t, 30*time.Second, cfg.Chat.CatalogRefresh)
	assert.Equal(t, 10*time.Second, cfg.Chat.CheckoutTimeout)
	assert.Zero(t, cfg.Chat.SessionTTL)
	assert.Equal(t, "order-events", cfg.Kafka.TopicOrder)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("CATALOG_REFRESH_SECONDS", "5")
	t.Setenv("SESSION_TTL_SECONDS", "1800")
	t.Setenv("REPLY_SEED", "42")
	t.Setenv("RATE_LIMIT_RPS", "2.5")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,")
	t.Setenv("REDIS_DB", "not-a-number")

	cfg := Load()

	assert.Equal(t, 5*time.Second, cfg.Chat.CatalogRefresh)
	assert.Equal(t, 30*time.Minute, cfg.Chat.SessionTTL)
	assert.Equal(t, int64(42), cfg.Chat.ReplySeed)
	assert.Equal(t, 2.5, cfg.RateLimit.RPS)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, 0, cfg.Redis.DB)
}
