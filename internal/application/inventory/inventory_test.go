package inventory_test

import (
	"context"
	"errors"
	"testing"

	"github.com/jhoicas/bodega-api/internal/application/inventory"
	"github.com/jhoicas/bodega-api/internal/domain"
	"github.com/jhoicas/bodega-api/internal/domain/entity"
	"github.com/jhoicas/bodega-api/internal/domain/repository"
	"github.com/jhoicas/bodega-api/internal/domain/stock"
	"github.com/jhoicas/bodega-api/internal/infrastructure/memory"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers
// ──────────────────────────────────────────────────────────────────────────────

func putItem(t *testing.T, s *memory.Store, id, warehouse string, added, remaining int64) {
	t.Helper()
	item := &entity.StockItem{
		ID: id, Name: "Vino " + id, Code: "C-" + id, WarehouseID: warehouse,
		AddedQuantity: added, RemainingQuantity: remaining, UnitPrice: decimal.NewFromInt(10),
	}
	require.NoError(t, s.AtomicBatch(context.Background(), []repository.BatchOp{repository.SetStockItem(item)}))
}

func putInvoice(t *testing.T, s *memory.Store, id string, number int64, typ entity.InvoiceType, lines ...entity.InvoiceLine) {
	t.Helper()
	inv := &entity.Invoice{ID: id, Type: typ, InvoiceNumber: number, Lines: lines, Version: 1}
	require.NoError(t, s.AtomicBatch(context.Background(), []repository.BatchOp{repository.SetInvoice(inv, 0)}))
}

func line(id string, qty int64) entity.InvoiceLine {
	return entity.InvoiceLine{StockItemID: id, Quantity: qty}
}

func qty(t *testing.T, s *memory.Store, id string) int64 {
	t.Helper()
	it, err := s.GetStockItem(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, it)
	return it.RemainingQuantity
}

// ──────────────────────────────────────────────────────────────────────────────
// StockAdjustmentEngine
// ──────────────────────────────────────────────────────────────────────────────

func TestEngine_ApplyDisminuyeYAumenta(t *testing.T) {
	s := memory.NewStore()
	putItem(t, s, "a", "wh-1", 100, 100)
	engine := inventory.NewStockAdjustmentEngine(s)

	require.NoError(t, engine.Apply(context.Background(), []entity.InvoiceLine{line("a", 10), line("a", 5)}, stock.Decrease))
	assert.Equal(t, int64(85), qty(t, s, "a"))

	require.NoError(t, engine.Apply(context.Background(), []entity.InvoiceLine{line("a", 15)}, stock.Increase))
	assert.Equal(t, int64(100), qty(t, s, "a"))
}

func TestEngine_StockInsuficienteNoTocaNada(t *testing.T) {
	s := memory.NewStore()
	putItem(t, s, "a", "wh-1", 10, 10)
	putItem(t, s, "b", "wh-1", 2, 2)
	engine := inventory.NewStockAdjustmentEngine(s)
	before := s.Batches()

	err := engine.Apply(context.Background(), []entity.InvoiceLine{line("a", 5), line("b", 3)}, stock.Decrease)
	var insufficient *domain.InsufficientStockError
	require.True(t, errors.As(err, &insufficient))
	assert.Equal(t, "b", insufficient.ItemID)
	assert.Equal(t, int64(3), insufficient.Requested)
	assert.Equal(t, int64(2), insufficient.Available)
	assert.Equal(t, before, s.Batches())
	assert.Equal(t, int64(10), qty(t, s, "a"))
}

func TestEngine_ItemInexistente(t *testing.T) {
	s := memory.NewStore()
	engine := inventory.NewStockAdjustmentEngine(s)
	err := engine.Apply(context.Background(), []entity.InvoiceLine{line("nope", 1)}, stock.Increase)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestEngine_PlanOmiteDeltasCero(t *testing.T) {
	s := memory.NewStore()
	putItem(t, s, "a", "wh-1", 10, 10)
	putItem(t, s, "b", "wh-1", 10, 10)
	engine := inventory.NewStockAdjustmentEngine(s)

	plan, err := engine.Plan(context.Background(), stock.Deltas{"a": 0, "b": -4})
	require.NoError(t, err)
	require.Len(t, plan.Ops, 1)
	assert.Equal(t, "b", plan.Ops[0].ID)
	assert.Equal(t, int64(-4), plan.Ops[0].Delta)
	assert.Contains(t, plan.Items, "a", "los items con delta cero igual se resuelven")

	_, err = engine.Plan(context.Background(), stock.Deltas{"ghost": 0})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ──────────────────────────────────────────────────────────────────────────────
// StockCatalogUseCase
// ──────────────────────────────────────────────────────────────────────────────

func TestCatalog_UpsertInicializaRemainingSoloAlCrear(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStore()
	uc := inventory.NewStockCatalogUseCase(s, zerolog.Nop())

	in := inventory.StockItemInput{ID: "a", Name: "Malbec", Code: "MAL", WarehouseID: "wh-1", AddedQuantity: 24, UnitPrice: decimal.NewFromInt(30)}
	created, err := uc.Upsert(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, int64(24), created.RemainingQuantity)

	require.NoError(t, inventory.NewStockAdjustmentEngine(s).Apply(ctx, []entity.InvoiceLine{line("a", 4)}, stock.Decrease))
	putInvoice(t, s, "v1", 1, entity.InvoiceTypeSale, line("a", 4))

	in.Name = "Malbec Reserva"
	in.AddedQuantity = 48
	updated, err := uc.Upsert(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, "Malbec Reserva", updated.Name)
	assert.Equal(t, int64(24), updated.AddedQuantity, "la cantidad inicial no se reescribe")
	assert.Equal(t, int64(20), updated.RemainingQuantity)

	report, err := inventory.NewReconcileUseCase(s, zerolog.Nop()).Reconcile(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, report.Drift, "editar el item no genera diferencias")
}

func TestCatalog_Validaciones(t *testing.T) {
	uc := inventory.NewStockCatalogUseCase(memory.NewStore(), zerolog.Nop())
	cases := map[string]inventory.StockItemInput{
		"id":             {Name: "x", Code: "x", WarehouseID: "w"},
		"name":           {ID: "x", Code: "x", WarehouseID: "w"},
		"warehouse_id":   {ID: "x", Name: "x", Code: "x"},
		"unit_price":     {ID: "x", Name: "x", Code: "x", WarehouseID: "w", UnitPrice: decimal.NewFromInt(-1)},
		"added_quantity": {ID: "x", Name: "x", Code: "x", WarehouseID: "w", AddedQuantity: -1},
	}
	for field, in := range cases {
		_, err := uc.Upsert(context.Background(), in)
		var ve *domain.ValidationError
		require.True(t, errors.As(err, &ve), field)
		assert.Equal(t, field, ve.Field)
	}
}

func TestCatalog_GetYList(t *testing.T) {
	s := memory.NewStore()
	putItem(t, s, "b", "wh-1", 1, 1)
	putItem(t, s, "a", "wh-1", 1, 1)
	putItem(t, s, "c", "wh-2", 1, 1)
	uc := inventory.NewStockCatalogUseCase(s, zerolog.Nop())

	_, err := uc.Get(context.Background(), "zz")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = uc.Get(context.Background(), " ")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	list, err := uc.List(context.Background(), "wh-1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "C-a", list[0].Code)

	all, _ := uc.List(context.Background(), "")
	assert.Len(t, all, 3)
}

// ──────────────────────────────────────────────────────────────────────────────
// ReconcileUseCase
// ──────────────────────────────────────────────────────────────────────────────

func TestReconcile_SinDiferencias(t *testing.T) {
	s := memory.NewStore()
	putItem(t, s, "a", "wh-1", 100, 80)
	putInvoice(t, s, "v1", 1, entity.InvoiceTypeSale, line("a", 30))
	putInvoice(t, s, "c1", 2, entity.InvoiceTypePurchase, line("a", 20))
	putInvoice(t, s, "d1", 3, entity.InvoiceTypeFactoryDispatch, line("a", 15))
	putInvoice(t, s, "r1", 4, entity.InvoiceTypeFactoryReturn, line("a", 5))

	report, err := inventory.NewReconcileUseCase(s, zerolog.Nop()).Reconcile(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, 1, report.ItemsChecked)
	assert.Equal(t, 4, report.InvoicesScanned)
	assert.Empty(t, report.Drift)
	assert.Empty(t, report.OrphanItemIDs)
}

func TestReconcile_DetectaDiferenciasYHuerfanos(t *testing.T) {
	s := memory.NewStore()
	putItem(t, s, "b", "wh-1", 10, 10)
	putItem(t, s, "a", "wh-1", 10, 7)
	putItem(t, s, "c", "wh-2", 5, 5)
	putInvoice(t, s, "v1", 1, entity.InvoiceTypeSale, line("a", 2), line("borrado", 1))

	uc := inventory.NewReconcileUseCase(s, zerolog.Nop())
	report, err := uc.Reconcile(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, report.Drift, 1)
	row := report.Drift[0]
	assert.Equal(t, "a", row.StockItemID)
	assert.Equal(t, int64(8), row.Expected)
	assert.Equal(t, int64(7), row.Actual)
	assert.Equal(t, int64(-1), row.Difference)
	assert.Equal(t, []string{"borrado"}, report.OrphanItemIDs)

	byWarehouse, err := uc.Reconcile(context.Background(), "wh-2")
	require.NoError(t, err)
	assert.Equal(t, 1, byWarehouse.ItemsChecked)
	assert.Empty(t, byWarehouse.Drift)
	assert.Empty(t, byWarehouse.OrphanItemIDs)
}
