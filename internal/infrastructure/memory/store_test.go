package memory_test

import (
	"context"
	"errors"
	"testing"

	"github.com/jhoicas/bodega-api/internal/domain"
	"github.com/jhoicas/bodega-api/internal/domain/entity"
	"github.com/jhoicas/bodega-api/internal/domain/repository"
	"github.com/jhoicas/bodega-api/internal/infrastructure/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seeded(t *testing.T, items map[string]int64) *memory.Store {
	t.Helper()
	s := memory.NewStore()
	for id, qty := range items {
		item := &entity.StockItem{ID: id, Name: id, Code: "C-" + id, WarehouseID: "wh-1", RemainingQuantity: qty}
		require.NoError(t, s.AtomicBatch(context.Background(), []repository.BatchOp{repository.SetStockItem(item)}))
	}
	return s
}

func remaining(t *testing.T, s *memory.Store, id string) int64 {
	t.Helper()
	it, err := s.GetStockItem(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, it)
	return it.RemainingQuantity
}

func TestAtomicBatch_TodoONada(t *testing.T) {
	ctx := context.Background()
	s := seeded(t, map[string]int64{"a": 5, "b": 5})
	before := s.Batches()

	err := s.AtomicBatch(ctx, []repository.BatchOp{
		repository.IncrementStock("a", -3),
		repository.SetInvoice(&entity.Invoice{ID: "inv-1", InvoiceNumber: 1, Version: 1}, 0),
		repository.IncrementStock("b", -6),
	})
	var insufficient *domain.InsufficientStockError
	require.True(t, errors.As(err, &insufficient))
	assert.Equal(t, int64(6), insufficient.Requested)
	assert.Equal(t, int64(5), insufficient.Available)

	assert.Equal(t, int64(5), remaining(t, s, "a"))
	inv, err := s.GetInvoice(ctx, "inv-1")
	require.NoError(t, err)
	assert.Nil(t, inv)
	assert.Equal(t, before, s.Batches())
}

func TestAtomicBatch_IncrementosDelMismoItemSeAcumulan(t *testing.T) {
	s := seeded(t, map[string]int64{"a": 5})
	err := s.AtomicBatch(context.Background(), []repository.BatchOp{
		repository.IncrementStock("a", -4),
		repository.IncrementStock("a", -2),
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Equal(t, int64(5), remaining(t, s, "a"))
}

func TestAtomicBatch_UpsertConservaRemaining(t *testing.T) {
	s := seeded(t, map[string]int64{"a": 50})
	again := &entity.StockItem{ID: "a", Name: "renombrado", Code: "C-a", WarehouseID: "wh-1", RemainingQuantity: 999}
	require.NoError(t, s.AtomicBatch(context.Background(), []repository.BatchOp{repository.SetStockItem(again)}))

	it, _ := s.GetStockItem(context.Background(), "a")
	assert.Equal(t, int64(50), it.RemainingQuantity)
	assert.Equal(t, "renombrado", it.Name)
}

func TestAtomicBatch_VersionesYNumeros(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStore()
	inv := &entity.Invoice{ID: "x", InvoiceNumber: 1, Version: 1}
	require.NoError(t, s.AtomicBatch(ctx, []repository.BatchOp{repository.SetInvoice(inv, 0)}))

	err := s.AtomicBatch(ctx, []repository.BatchOp{repository.SetInvoice(&entity.Invoice{ID: "y", InvoiceNumber: 1, Version: 1}, 0)})
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	err = s.AtomicBatch(ctx, []repository.BatchOp{repository.SetInvoice(inv, 0)})
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	next := inv.Clone()
	next.Version = 2
	err = s.AtomicBatch(ctx, []repository.BatchOp{repository.SetInvoice(next, 7)})
	assert.ErrorIs(t, err, domain.ErrConflict)
	require.NoError(t, s.AtomicBatch(ctx, []repository.BatchOp{repository.SetInvoice(next, 1)}))

	err = s.AtomicBatch(ctx, []repository.BatchOp{repository.DeleteInvoice("x", 1)})
	assert.ErrorIs(t, err, domain.ErrConflict)

	// borrar y reutilizar el número en el mismo lote
	require.NoError(t, s.AtomicBatch(ctx, []repository.BatchOp{
		repository.DeleteInvoice("x", 2),
		repository.SetInvoice(&entity.Invoice{ID: "z", InvoiceNumber: 1, Version: 1}, 0),
	}))
	max, err := s.MaxInvoiceNumber(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), max)
}

func TestAtomicBatch_FallaInyectada(t *testing.T) {
	s := seeded(t, map[string]int64{"a": 5})
	s.FailNextBatches(errors.New("timeout"))

	err := s.AtomicBatch(context.Background(), []repository.BatchOp{repository.IncrementStock("a", 1)})
	assert.ErrorIs(t, err, domain.ErrPersistence)
	assert.Equal(t, int64(5), remaining(t, s, "a"))

	require.NoError(t, s.AtomicBatch(context.Background(), []repository.BatchOp{repository.IncrementStock("a", 1)}))
	assert.Equal(t, int64(6), remaining(t, s, "a"))
}

func TestListInvoices_FiltrosYPaginas(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStore()
	for i, typ := range []entity.InvoiceType{entity.InvoiceTypeSale, entity.InvoiceTypeFactoryDispatch, entity.InvoiceTypeSale, entity.InvoiceTypeFactoryReturn} {
		inv := &entity.Invoice{ID: string(rune('a' + i)), Type: typ, InvoiceNumber: int64(i + 1), Version: 1}
		if typ == entity.InvoiceTypeFactoryReturn {
			inv.SourceInvoiceID = "b"
		}
		require.NoError(t, s.AtomicBatch(ctx, []repository.BatchOp{repository.SetInvoice(inv, 0)}))
	}

	sales, err := s.ListInvoices(ctx, repository.InvoiceFilter{Type: entity.InvoiceTypeSale})
	require.NoError(t, err)
	require.Len(t, sales, 2)
	assert.Equal(t, int64(3), sales[0].InvoiceNumber)

	returns, _ := s.ListInvoices(ctx, repository.InvoiceFilter{SourceInvoiceID: "b"})
	require.Len(t, returns, 1)
	assert.Equal(t, "d", returns[0].ID)

	page, _ := s.ListInvoices(ctx, repository.InvoiceFilter{Limit: 2, Offset: 1})
	require.Len(t, page, 2)
	assert.Equal(t, int64(3), page[0].InvoiceNumber)

	empty, _ := s.ListInvoices(ctx, repository.InvoiceFilter{Offset: 10})
	assert.Empty(t, empty)
}

func TestLecturasDevuelvenCopias(t *testing.T) {
	s := seeded(t, map[string]int64{"a": 5})
	it, _ := s.GetStockItem(context.Background(), "a")
	it.RemainingQuantity = 1000
	assert.Equal(t, int64(5), remaining(t, s, "a"))

	missing, err := s.GetStockItem(context.Background(), "zz")
	require.NoError(t, err)
	assert.Nil(t, missing)
}
