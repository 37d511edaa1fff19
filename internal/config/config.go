// Package config loads the storefront configuration: defaults, an optional
// YAML file named by CONFIG_FILE, then environment overrides.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	StorageMySQL  = "mysql"
	StorageMemory = "memory"
)

type Config struct {
	Port     string      `yaml:"port"`
	Storage  string      `yaml:"storage"`
	LogLevel string      `yaml:"logLevel"`
	MySQL    MySQLConfig `yaml:"mysql"`
	Redis    RedisConfig `yaml:"redis"`
	Kafka    KafkaConfig `yaml:"kafka"`
	Limiter  Limiter     `yaml:"limiter"`
}

type MySQLConfig struct {
	Host           string `yaml:"host"`
	Port           string `yaml:"port"`
	User           string `yaml:"user"`
	Pass           string `yaml:"pass"`
	Name           string `yaml:"name"`
	ConnectRetries int    `yaml:"connectRetries"`
	MigrateRetries int    `yaml:"migrateRetries"`
}

type RedisConfig struct {
	Addr           string        `yaml:"addr"`
	Password       string        `yaml:"password"`
	DB             int           `yaml:"db"`
	IdempotencyTTL time.Duration `yaml:"idempotencyTTL"`
	ProductTTL     time.Duration `yaml:"productTTL"`
	CartTTL        time.Duration `yaml:"cartTTL"`
}

type KafkaConfig struct {
	Brokers    []string `yaml:"brokers"`
	OrderTopic string   `yaml:"orderTopic"`
	GroupID    string   `yaml:"groupId"`
}

// Limiter mirrors echo's RateLimiterMemoryStoreConfig.
type Limiter struct {
	Rate      float64       `yaml:"rate"`
	Burst     int           `yaml:"burst"`
	ExpiresIn time.Duration `yaml:"expiresIn"`
}

// New returns the defaults used when nothing is configured.
func New() *Config {
	return &Config{
		Port:     "8082",
		Storage:  StorageMySQL,
		LogLevel: "info",
		MySQL: MySQLConfig{
			Host:           "127.0.0.1",
			Port:           "3306",
			User:           "root",
			Name:           "storefront",
			ConnectRetries: 10,
			MigrateRetries: 3,
		},
		Redis: RedisConfig{
			IdempotencyTTL: 24 * time.Hour,
			ProductTTL:     time.Minute,
			CartTTL:        30 * 24 * time.Hour,
		},
		Kafka: KafkaConfig{
			OrderTopic: "order-topic",
			GroupID:    "storefront-cache",
		},
		Limiter: Limiter{
			Rate:      10,
			Burst:     30,
			ExpiresIn: 3 * time.Minute,
		},
	}
}

// Load reads the configuration from CONFIG_FILE (if set) and the environment.
func Load() (*Config, error) {
	cfg := New()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.LoadFile(path); err != nil {
			return nil, err
		}
	}
	cfg.applyEnv(os.Getenv)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile merges a YAML file over the current values. Keys absent from the
// file keep their current value.
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parsing YAML config: %w", err)
	}
	return nil
}

func (c *Config) applyEnv(getenv func(string) string) {
	setString := func(dst *string, key string) {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			*dst = v
		}
	}

	setString(&c.Port, "PORT")
	setString(&c.Storage, "STORAGE")
	setString(&c.LogLevel, "LOG_LEVEL")
	setString(&c.MySQL.Host, "DB_HOST")
	setString(&c.MySQL.Port, "DB_PORT")
	setString(&c.MySQL.User, "DB_USER")
	setString(&c.MySQL.Pass, "DB_PASS")
	setString(&c.MySQL.Name, "DB_NAME")
	setString(&c.Redis.Addr, "REDIS_ADDR")
	setString(&c.Redis.Password, "REDIS_PASSWORD")
	setString(&c.Kafka.OrderTopic, "ORDER_TOPIC")
	setString(&c.Kafka.GroupID, "KAFKA_GROUP_ID")

	if v := getenv("REDIS_DB"); v != "" {
		if db, err := strconv.Atoi(v); err == nil {
			c.Redis.DB = db
		}
	}
	if v := getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = splitBrokers(v)
	}
}

// Validate rejects configurations the server cannot start with.
func (c *Config) Validate() error {
	switch c.Storage {
	case StorageMySQL, StorageMemory:
	default:
		return fmt.Errorf("unknown storage %q (want %q or %q)", c.Storage, StorageMySQL, StorageMemory)
	}
	if c.Port == "" {
		return fmt.Errorf("port is required")
	}
	if c.Storage == StorageMySQL && c.MySQL.ConnectRetries < 1 {
		return fmt.Errorf("mysql connectRetries must be at least 1")
	}
	if c.Limiter.Rate <= 0 || c.Limiter.Burst <= 0 {
		return fmt.Errorf("limiter rate and burst must be positive")
	}
	return nil
}

func splitBrokers(csv string) []string {
	var brokers []string
	for _, b := range strings.Split(csv, ",") {
		b = strings.TrimSpace(b)
		if b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}
