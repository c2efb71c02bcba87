package resilience_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jhoicas/bodega-api/internal/domain"
	"github.com/jhoicas/bodega-api/internal/domain/entity"
	"github.com/jhoicas/bodega-api/internal/domain/repository"
	"github.com/jhoicas/bodega-api/internal/infrastructure/memory"
	"github.com/jhoicas/bodega-api/internal/infrastructure/resilience"
	"github.com/jhoicas/bodega-api/pkg/config"
	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBreaker(t *testing.T, threshold uint32) (*resilience.BreakerStore, *memory.Store) {
	t.Helper()
	mem := memory.NewStore()
	b := resilience.NewBreakerStore(mem, config.BreakerConfig{
		Enabled:          true,
		MaxRequests:      1,
		Timeout:          time.Minute,
		FailureThreshold: threshold,
	}, zerolog.Nop())
	return b, mem
}

func TestBreakerStore_AbreTrasFallasDelAlmacen(t *testing.T) {
	b, mem := newBreaker(t, 2)
	ctx := context.Background()
	mem.FailNextBatches(errors.New("conexión rechazada"), errors.New("conexión rechazada"))

	for i := 0; i < 2; i++ {
		err := b.AtomicBatch(ctx, nil)
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrPersistence)
	}
	assert.Equal(t, gobreaker.StateOpen, b.State())

	// Con el circuito abierto ni siquiera se llega al almacén.
	before := mem.Batches()
	err := b.AtomicBatch(ctx, nil)
	assert.ErrorIs(t, err, resilience.ErrCircuitOpen)
	assert.ErrorIs(t, err, domain.ErrPersistence)
	assert.Equal(t, before, mem.Batches())
}

func TestBreakerStore_ErroresDeDominioNoAbren(t *testing.T) {
	b, _ := newBreaker(t, 1)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		err := b.AtomicBatch(ctx, []repository.BatchOp{repository.IncrementStock("no-existe", -1)})
		assert.ErrorIs(t, err, domain.ErrNotFound)
	}
	assert.Equal(t, gobreaker.StateClosed, b.State())
}

func TestBreakerStore_DelegaLecturas(t *testing.T) {
	b, mem := newBreaker(t, 3)
	ctx := context.Background()
	require.NoError(t, mem.AtomicBatch(ctx, []repository.BatchOp{
		repository.SetStockItem(&entity.StockItem{ID: "a", Name: "Vino", Code: "V1", WarehouseID: "wh", RemainingQuantity: 4}),
	}))

	item, err := b.GetStockItem(ctx, "a")
	require.NoError(t, err)
	require.NotNil(t, item)
	assert.Equal(t, int64(4), item.RemainingQuantity)

	missing, err := b.GetInvoice(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)

	max, err := b.MaxInvoiceNumber(ctx)
	require.NoError(t, err)
	assert.Zero(t, max)
}
