package bootstrap_test

import (
	"context"
	"testing"

	"github.com/jhoicas/bodega-api/internal/infrastructure/bootstrap"
	"github.com/jhoicas/bodega-api/internal/infrastructure/memory"
	"github.com/jhoicas/bodega-api/internal/infrastructure/resilience"
	"github.com/jhoicas/bodega-api/pkg/config"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenStore_Memoria(t *testing.T) {
	cfg := &config.Config{Store: config.StoreConfig{Driver: config.StoreDriverMemory}}

	store, closeFn, err := bootstrap.OpenStore(context.Background(), cfg, zerolog.Nop())
	require.NoError(t, err)
	defer closeFn()

	assert.IsType(t, &memory.Store{}, store)
}

func TestOpenStore_ConBreaker(t *testing.T) {
	cfg := &config.Config{
		Store:   config.StoreConfig{Driver: config.StoreDriverMemory},
		Breaker: config.BreakerConfig{Enabled: true, MaxRequests: 1, FailureThreshold: 3},
	}

	store, closeFn, err := bootstrap.OpenStore(context.Background(), cfg, zerolog.Nop())
	require.NoError(t, err)
	defer closeFn()

	assert.IsType(t, &resilience.BreakerStore{}, store)
}

func TestOpenStore_DriverDesconocido(t *testing.T) {
	cfg := &config.Config{Store: config.StoreConfig{Driver: "sqlite"}}

	_, closeFn, err := bootstrap.OpenStore(context.Background(), cfg, zerolog.Nop())
	assert.Error(t, err)
	assert.NotNil(t, closeFn)
}
