package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Server   ServerConfig
	Logger   LoggerConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
	Elastic  ElasticsearchConfig
	ML       MLServiceConfig
	Reorder  ReorderConfig
}

type ServerConfig struct {
	AppEnv   string
	HTTPPort string
	GRPCPort string
}

type LoggerConfig struct {
	Level             string
	Encoding          string
	DisableCaller     bool
	DisableStacktrace bool
}

type PostgresConfig struct {
	Host            string
	Port            string
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int
	ConnMaxIdleTime int
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type KafkaConfig struct {
	Brokers            []string
	DispenseTopic      string
	AlertTopic         string
	PurchaseOrderTopic string
	GroupID            string
}

type ElasticsearchConfig struct {
	Addresses []string
	Username  string
	Password  string
}

type MLServiceConfig struct {
	BaseURL      string
	APIKey       string
	Timeout      time.Duration
	ForecastDays int
	CacheTTL     time.Duration
}

type ReorderConfig struct {
	// DefaultLevel applies when a drug has no usable reorder level at all.
	DefaultLevel int
	// ZeroIsAbsent keeps a configured level of 0 from winning resolution.
	ZeroIsAbsent    bool
	SafetyDays      int
	UsageWindowDays int
}

func LoadEnv() *Config {
	return &Config{
		Server: ServerConfig{
			AppEnv:   getEnv("APP_ENV", "dev"),
			HTTPPort: getEnv("HTTP_PORT", ":8080"),
			GRPCPort: getEnv("GRPC_PORT", ":8082"),
		},
		Logger: LoggerConfig{
			Level:             getEnv("LOGGER_LEVEL", "debug"),
			Encoding:          getEnv("LOGGER_ENCODING", "console"),
			DisableCaller:     getEnvBool("LOGGER_DISABLE_CALLER", false),
			DisableStacktrace: getEnvBool("LOGGER_DISABLE_STACKTRACE", true),
		},
		Postgres: PostgresConfig{
			Host:            getEnv("POSTGRES_HOST", "localhost"),
			Port:            getEnv("POSTGRES_PORT", "5432"),
			User:            getEnv("POSTGRES_USER", "pharmastock"),
			Password:        getEnv("POSTGRES_PASSWORD", "pharmastock"),
			DBName:          getEnv("POSTGRES_DB", "pharmastock"),
			SSLMode:         getEnv("POSTGRES_SSLMODE", "disable"),
			MaxOpenConns:    getEnvInt("POSTGRES_MAX_OPEN_CONNS", 10),
			MaxIdleConns:    getEnvInt("POSTGRES_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvInt("POSTGRES_CONN_MAX_LIFETIME", 300),
			ConnMaxIdleTime: getEnvInt("POSTGRES_CONN_MAX_IDLE_TIME", 60),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		Kafka: KafkaConfig{
			Brokers:            getEnvSlice("KAFKA_BROKERS", []string{"localhost:9092"}),
			DispenseTopic:      getEnv("KAFKA_TOPIC_DISPENSE", "pharmacy.dispense"),
			AlertTopic:         getEnv("KAFKA_TOPIC_ALERTS", "inventory.alerts"),
			PurchaseOrderTopic: getEnv("KAFKA_TOPIC_PURCHASE_ORDERS", "inventory.purchase-orders"),
			GroupID:            getEnv("KAFKA_GROUP_INVENTORY", "pharmastock-inventory"),
		},
		Elastic: ElasticsearchConfig{
			Addresses: getEnvSlice("ELASTICSEARCH_ADDRESSES", []string{"http://localhost:9200"}),
			Username:  getEnv("ELASTICSEARCH_USERNAME", ""),
			Password:  getEnv("ELASTICSEARCH_PASSWORD", ""),
		},
		ML: MLServiceConfig{
			BaseURL:      getEnv("ML_SERVICE_URL", "http://localhost:8000"),
			APIKey:       getEnv("ML_API_KEY", ""),
			Timeout:      time.Duration(getEnvInt("ML_TIMEOUT_SECONDS", 30)) * time.Second,
			ForecastDays: getEnvInt("ML_FORECAST_DAYS", 7),
			CacheTTL:     time.Duration(getEnvInt("ML_CACHE_TTL_SECONDS", 900)) * time.Second,
		},
		Reorder: ReorderConfig{
			DefaultLevel:    getEnvInt("REORDER_DEFAULT_LEVEL", 100),
			ZeroIsAbsent:    getEnvBool("REORDER_ZERO_IS_ABSENT", true),
			SafetyDays:      getEnvInt("REORDER_SAFETY_DAYS", 3),
			UsageWindowDays: getEnvInt("REORDER_USAGE_WINDOW_DAYS", 30),
		},
	}
}

func (c *Config) Validate() error {
	var errs []error
	if c.Postgres.Host == "" {
		errs = append(errs, errors.New("postgres host is required"))
	}
	if c.Redis.Addr == "" {
		errs = append(errs, errors.New("redis addr is required"))
	}
	if c.ML.BaseURL != "" && c.ML.APIKey == "" {
		errs = append(errs, errors.New("ML_API_KEY is required when ML_SERVICE_URL is set"))
	}
	if c.ML.ForecastDays <= 0 {
		errs = append(errs, fmt.Errorf("ml forecast days must be positive, got %d", c.ML.ForecastDays))
	}
	if c.Reorder.DefaultLevel <= 0 {
		errs = append(errs, fmt.Errorf("reorder default level must be positive, got %d", c.Reorder.DefaultLevel))
	}
	if c.Reorder.UsageWindowDays <= 0 {
		errs = append(errs, fmt.Errorf("reorder usage window must be positive, got %d", c.Reorder.UsageWindowDays))
	}
	return errors.Join(errs...)
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvSlice(key string, fallback []string) []string {
	if value, ok := os.LookupEnv(key); ok {
		parts := strings.Split(value, ",")
		out := parts[:0]
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		return out
	}
	return fallback
}

func (s ServerConfig) IsDevelopment() bool {
	return s.AppEnv == "development" || s.AppEnv == "dev"
}
