package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{"APP_NAME", "PORT", "DB_MAX_CONN_LIFETIME", "BCRYPT_COST", "SEARCH_ENABLED", "EVENTS_ENABLED", "RABBITMQ_EVENTS_QUEUE"} {
		t.Setenv(k, "")
	}
	cfg := Load()

	assert.Equal(t, "account-service", cfg.AppName)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, time.Hour, cfg.DBMaxConnLife)
	assert.Equal(t, 10, cfg.BcryptCost)
	assert.False(t, cfg.SearchEnabled)
	assert.False(t, cfg.EventsEnabled)
	assert.Equal(t, "account_events", cfg.RabbitMQEventsQueue)
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("DB_MAX_CONNS", "25")
	t.Setenv("DB_MAX_CONN_LIFETIME", "30m")
	t.Setenv("SEARCH_ENABLED", "true")
	t.Setenv("RATE_LIMIT_PER_MINUTE", "5")

	cfg := Load()

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, int32(25), cfg.DBMaxConns)
	assert.Equal(t, 30*time.Minute, cfg.DBMaxConnLife)
	assert.True(t, cfg.SearchEnabled)
	assert.Equal(t, 5, cfg.RateLimitPerMinute)
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("DB_MAX_CONNS", "many")
	t.Setenv("DEBUG_METRICS_ENABLED", "perhaps")
	t.Setenv("DB_MAX_CONN_LIFETIME", "forever")

	cfg := Load()

	assert.Equal(t, int32(10), cfg.DBMaxConns)
	assert.True(t, cfg.DebugMetricsEnabled)
	assert.Equal(t, time.Hour, cfg.DBMaxConnLife)
}

func TestPostgresDSN(t *testing.T) {
	cfg := &Config{DBUser: "u", DBPassword: "p", DBHost: "db", DBPort: "5433", DBName: "accounts", DBSSLMode: "require"}
	assert.Equal(t, "postgres://u:p@db:5433/accounts?sslmode=require", cfg.PostgresDSN())
}

func TestSplitLists(t *testing.T) {
	cfg := &Config{
		CORSAllowedOrigins: " http://a.test, ,http://b.test ",
		ElasticsearchAddrs: "http://es1:9200,http://es2:9200",
		TrustedProxies:     "10.0.0.0/8, 127.0.0.1",
	}
	assert.Equal(t, []string{"10.0.0.0/8", "127.0.0.1"}, cfg.TrustedProxyList())
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORSOrigins())
	assert.Equal(t, []string{"http://es1:9200", "http://es2:9200"}, cfg.ESAddrs())
	assert.Empty(t, (&Config{}).CORSOrigins())
}
