package config_test

import (
	"testing"
	"time"

	"github.com/jhoicas/bodega-api/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.App.Env)
	assert.Equal(t, config.StoreDriverPostgres, cfg.Store.Driver)
	assert.Equal(t, 8080, cfg.HTTP.Port)
	assert.Equal(t, "0.0.0.0:8080", cfg.HTTP.Addr())
	assert.Equal(t, uint32(5), cfg.Breaker.FailureThreshold)
	assert.Equal(t, 30*time.Second, cfg.Breaker.Timeout)
	assert.True(t, cfg.DB.Migrate)
}

func TestLoad_DesdeVariablesDeEntorno(t *testing.T) {
	t.Setenv("STORE_DRIVER", "MongoDB")
	t.Setenv("MONGO_DATABASE", "bodega_qa")
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("BREAKER_FAILURE_THRESHOLD", "3")
	t.Setenv("DB_MIGRATE", "false")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, config.StoreDriverMongoDB, cfg.Store.Driver)
	assert.Equal(t, "bodega_qa", cfg.Mongo.Database)
	assert.Equal(t, 9090, cfg.HTTP.Port)
	assert.Equal(t, uint32(3), cfg.Breaker.FailureThreshold)
	assert.False(t, cfg.DB.Migrate)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_DriverDesconocido(t *testing.T) {
	t.Setenv("STORE_DRIVER", "sqlite")

	_, err := config.Load()
	assert.Error(t, err)
}

func TestLoad_ProduccionExigeSecret(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("JWT_SECRET", "")

	_, err := config.Load()
	assert.Error(t, err)
}

func TestDBConfig_ConnectionString(t *testing.T) {
	c := config.DBConfig{Host: "db", Port: 5432, User: "app", Password: "p@ss:word", DBName: "bodega", SSLMode: "disable"}
	assert.Equal(t, "postgres://app:p%40ss%3Aword@db:5432/bodega?sslmode=disable", c.ConnectionString())

	c.DatabaseURL = "postgres://otro"
	assert.Equal(t, "postgres://otro", c.ConnectionString())
}
