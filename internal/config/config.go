package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
	DriverDynamoDB = "dynamodb"
	DriverMemory   = "memory"
)

type MySQL struct {
	User     string
	Password string
	Host     string
	Port     string
	Database string
}

func (m MySQL) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC", m.User, m.Password, m.Host, m.Port, m.Database)
}

type DynamoDB struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	Endpoint        string
	ProductsTable   string
	OrdersTable     string
}

type Config struct {
	AppEnv   string
	LogLevel string
	Port     string
	GinMode  string

	StoreDriver  string
	StoreTimeout time.Duration
	MySQL        MySQL
	PostgresDSN  string
	MaxOpenConns int
	MaxIdleConns int
	DynamoDB     DynamoDB

	RedisAddr     string
	RedisPassword string
	StockCacheTTL time.Duration

	RabbitMQURL      string
	RabbitMQExchange string

	NotifyWebhookURL string
	NotifyTimeout    time.Duration
	CurrencySymbol   string

	StrictTotal       bool
	AdminJWTSecret    string
	CustomerJWTSecret string
	ShutdownTimeout   time.Duration
}

// Load reads the process environment, after merging a .env file when one exists.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		AppEnv:   getenvDefault("APP_ENV", "dev"),
		LogLevel: getenvDefault("LOG_LEVEL", "info"),
		Port:     getenvDefault("PORT", "8080"),
		GinMode:  getenvDefault("GIN_MODE", "release"),

		StoreDriver:  strings.ToLower(getenvDefault("STORE_DRIVER", DriverMySQL)),
		StoreTimeout: getenvDuration("STORE_TIMEOUT", 5*time.Second),
		MySQL: MySQL{
			User:     os.Getenv("MYSQL_USER"),
			Password: os.Getenv("MYSQL_PASSWORD"),
			Host:     getenvDefault("MYSQL_HOST", "localhost"),
			Port:     getenvDefault("MYSQL_PORT", "3306"),
			Database: getenvDefault("MYSQL_DATABASE", "storefront"),
		},
		PostgresDSN:  os.Getenv("DATABASE_URL"),
		MaxOpenConns: getenvInt("DB_MAX_OPEN_CONNS", 100),
		MaxIdleConns: getenvInt("DB_MAX_IDLE_CONNS", 20),
		DynamoDB: DynamoDB{
			Region:          getenvDefault("AWS_REGION", "us-east-1"),
			AccessKeyID:     getenvDefault("AWS_ACCESS_KEY_ID", "local"),
			SecretAccessKey: getenvDefault("AWS_SECRET_ACCESS_KEY", "local"),
			Endpoint:        os.Getenv("DYNAMODB_ENDPOINT"),
			ProductsTable:   getenvDefault("PRODUCTS_TABLE", "products"),
			OrdersTable:     getenvDefault("ORDERS_TABLE", "orders"),
		},

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		StockCacheTTL: getenvDuration("STOCK_CACHE_TTL", 10*time.Second),

		RabbitMQURL:      os.Getenv("RABBITMQ_URL"),
		RabbitMQExchange: getenvDefault("RABBITMQ_EXCHANGE", "order.exchange"),

		NotifyWebhookURL: os.Getenv("NOTIFY_WEBHOOK_URL"),
		NotifyTimeout:    getenvDuration("NOTIFY_TIMEOUT", 5*time.Second),
		CurrencySymbol:   getenvDefault("CURRENCY_SYMBOL", "₦"),

		StrictTotal:       getenvBool("STRICT_TOTAL", false),
		AdminJWTSecret:    os.Getenv("ADMIN_JWT_SECRET"),
		CustomerJWTSecret: os.Getenv("CUSTOMER_JWT_SECRET"),
		ShutdownTimeout:   getenvDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch c.StoreDriver {
	case DriverMySQL:
		if c.MySQL.User == "" {
			return fmt.Errorf("config: MYSQL_USER is required for store driver %q", c.StoreDriver)
		}
	case DriverPostgres:
		if c.PostgresDSN == "" {
			return fmt.Errorf("config: DATABASE_URL is required for store driver %q", c.StoreDriver)
		}
	case DriverDynamoDB, DriverMemory:
	default:
		return fmt.Errorf("config: unknown STORE_DRIVER %q", c.StoreDriver)
	}
	if c.StoreTimeout <= 0 {
		return fmt.Errorf("config: STORE_TIMEOUT must be positive")
	}
	return nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func getenvBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func getenvDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}
