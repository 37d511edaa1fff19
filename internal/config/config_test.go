package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaults(t *testing.T) {
	cfg := New()

	assert.Equal(t, "8082", cfg.Port)
	assert.Equal(t, StorageMySQL, cfg.Storage)
	assert.Equal(t, 24*time.Hour, cfg.Redis.IdempotencyTTL)
	assert.Equal(t, "order-topic", cfg.Kafka.OrderTopic)
	assert.Equal(t, "storefront-cache", cfg.Kafka.GroupID)
	assert.False(t, cfg.KafkaEnabled())
	assert.NoError(t, cfg.Validate())
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "storefront.yaml")
	yamlConfig := `
port: "9090"
storage: memory
redis:
  addr: redis:6379
  productTTL: 5m
kafka:
  brokers: ["kafka-1:9092", "kafka-2:9092"]
limiter:
  rate: 2.5
`
	require.NoError(t, os.WriteFile(path, []byte(yamlConfig), 0o600))

	cfg := New()
	require.NoError(t, cfg.LoadFile(path))

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, StorageMemory, cfg.Storage)
	assert.Equal(t, "redis:6379", cfg.Redis.Addr)
	assert.Equal(t, 5*time.Minute, cfg.Redis.ProductTTL)
	assert.Equal(t, 24*time.Hour, cfg.Redis.IdempotencyTTL, "keys absent from the file keep defaults")
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.Kafka.Brokers)
	assert.True(t, cfg.KafkaEnabled())
	assert.Equal(t, 2.5, cfg.Limiter.Rate)
	assert.Equal(t, 30, cfg.Limiter.Burst)
}

func TestLoadFileErrors(t *testing.T) {
	cfg := New()
	assert.Error(t, cfg.LoadFile(filepath.Join(t.TempDir(), "missing.yaml")))

	path := filepath.Join(t.TempDir(), "broken.yaml")
	require.NoError(t, os.WriteFile(path, []byte("port: [unterminated"), 0o600))
	assert.Error(t, cfg.LoadFile(path))
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"PORT":           "8000",
		"DB_HOST":        "db.internal",
		"DB_PASS":        "s3cret",
		"REDIS_DB":       "2",
		"KAFKA_BROKERS":  "a:9092, ,b:9092",
		"ORDER_TOPIC":    "orders.v1",
		"KAFKA_GROUP_ID": "cache-2",
		"LOG_LEVEL":      "  ",
	}
	cfg := New()
	cfg.applyEnv(func(key string) string { return env[key] })

	assert.Equal(t, "8000", cfg.Port)
	assert.Equal(t, "db.internal", cfg.MySQL.Host)
	assert.Equal(t, "s3cret", cfg.MySQL.Pass)
	assert.Equal(t, "3306", cfg.MySQL.Port)
	assert.Equal(t, 2, cfg.Redis.DB)
	assert.Equal(t, []string{"a:9092", "b:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, "orders.v1", cfg.Kafka.OrderTopic)
	assert.Equal(t, "cache-2", cfg.Kafka.GroupID)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{name: "unknown storage", mutate: func(c *Config) { c.Storage = "postgres" }},
		{name: "empty port", mutate: func(c *Config) { c.Port = "" }},
		{name: "no connect retries", mutate: func(c *Config) { c.MySQL.ConnectRetries = 0 }},
		{name: "zero rate", mutate: func(c *Config) { c.Limiter.Rate = 0 }},
		{name: "zero burst", mutate: func(c *Config) { c.Limiter.Burst = 0 }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := New()
			tc.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}

	memory := New()
	memory.Storage = StorageMemory
	memory.MySQL.ConnectRetries = 0
	assert.NoError(t, memory.Validate())
}

func TestDSN(t *testing.T) {
	m := New().MySQL
	m.Pass = "pw"

	parsed, err := mysql.ParseDSN(m.DSN())
	require.NoError(t, err)
	assert.Equal(t, "root", parsed.User)
	assert.Equal(t, "pw", parsed.Passwd)
	assert.Equal(t, "127.0.0.1:3306", parsed.Addr)
	assert.Equal(t, "storefront", parsed.DBName)
	assert.True(t, parsed.ParseTime)
	assert.True(t, parsed.ClientFoundRows)
	assert.Equal(t, time.UTC, parsed.Loc)
}

func TestNewKafkaWriter(t *testing.T) {
	cfg := New()
	cfg.Kafka.Brokers = []string{"kafka:9092"}

	w := cfg.NewKafkaWriter("orders")
	defer w.Close()
	assert.Equal(t, "orders", w.Topic)
	assert.Equal(t, "kafka:9092", w.Addr.String())
}
