package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("STORE_DRIVER", "memory")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, DriverMemory, cfg.StoreDriver)
	assert.Equal(t, 5*time.Second, cfg.StoreTimeout)
	assert.Equal(t, 10*time.Second, cfg.StockCacheTTL)
	assert.Equal(t, "order.exchange", cfg.RabbitMQExchange)
	assert.False(t, cfg.StrictTotal)
	assert.Empty(t, cfg.CustomerJWTSecret)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("STORE_DRIVER", "MySQL")
	t.Setenv("MYSQL_USER", "shop")
	t.Setenv("MYSQL_PASSWORD", "secret")
	t.Setenv("MYSQL_HOST", "db")
	t.Setenv("STORE_TIMEOUT", "750ms")
	t.Setenv("STRICT_TOTAL", "true")
	t.Setenv("DB_MAX_OPEN_CONNS", "not-a-number")
	t.Setenv("CUSTOMER_JWT_SECRET", "shoppers")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DriverMySQL, cfg.StoreDriver)
	assert.Equal(t, 750*time.Millisecond, cfg.StoreTimeout)
	assert.True(t, cfg.StrictTotal)
	assert.Equal(t, 100, cfg.MaxOpenConns)
	assert.Equal(t, "shoppers", cfg.CustomerJWTSecret)
	assert.Equal(t, "shop:secret@tcp(db:3306)/storefront?charset=utf8mb4&parseTime=True&loc=UTC", cfg.MySQL.DSN())
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"unknown driver", map[string]string{"STORE_DRIVER": "sqlite"}},
		{"mysql without user", map[string]string{"STORE_DRIVER": "mysql", "MYSQL_USER": ""}},
		{"postgres without dsn", map[string]string{"STORE_DRIVER": "postgres", "DATABASE_URL": ""}},
		{"zero timeout", map[string]string{"STORE_DRIVER": "memory", "STORE_TIMEOUT": "0s"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}
