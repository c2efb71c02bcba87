package inventory

import (
	"context"

	"github.com/jhoicas/bodega-api/internal/domain"
	"github.com/jhoicas/bodega-api/internal/domain/entity"
	"github.com/jhoicas/bodega-api/internal/domain/repository"
	"github.com/jhoicas/bodega-api/internal/domain/stock"
)

// Plan resultado de validar un conjunto de deltas: las ops de incremento listas para el lote
// y los items resueltos (incluye los de delta 0).
type Plan struct {
	Ops   []repository.BatchOp
	Items map[string]*entity.StockItem
}

// StockAdjustmentEngine aplica deltas de cantidad a remainingQuantity en un único lote atómico.
// Es el único componente que modifica el stock una vez existen facturas.
type StockAdjustmentEngine struct {
	store repository.TransactionalStore
}

// NewStockAdjustmentEngine construye el motor.
func NewStockAdjustmentEngine(store repository.TransactionalStore) *StockAdjustmentEngine {
	return &StockAdjustmentEngine{store: store}
}

// Apply valida y aplica las líneas en el sentido indicado como un solo lote.
// Item inexistente → NotFoundError; disminución mayor al disponible → InsufficientStockError.
// En ambos casos no se modifica ningún item.
func (e *StockAdjustmentEngine) Apply(ctx context.Context, lines []entity.InvoiceLine, dir stock.Direction) error {
	plan, err := e.Plan(ctx, stock.EffectOf(lines, dir))
	if err != nil {
		return err
	}
	if len(plan.Ops) == 0 {
		return nil
	}
	return e.store.AtomicBatch(ctx, plan.Ops)
}

// Plan resuelve todos los items referenciados, verifica que ningún remaining quede negativo
// contra el último valor leído y arma un incremento por item con delta distinto de cero.
// El almacén vuelve a verificar el mínimo dentro del lote, así una disminución concurrente
// entre la lectura y la escritura aborta el lote completo.
func (e *StockAdjustmentEngine) Plan(ctx context.Context, deltas stock.Deltas) (*Plan, error) {
	ids := deltas.ItemIDs()
	plan := &Plan{Items: map[string]*entity.StockItem{}}
	if len(ids) == 0 {
		return plan, nil
	}
	items, err := e.store.GetStockItems(ctx, ids)
	if err != nil {
		return nil, domain.Persistence("leer items de stock", err)
	}
	for _, id := range ids {
		item := items[id]
		if item == nil {
			return nil, domain.NotFound("stock_item", id)
		}
		plan.Items[id] = item
	}
	for _, id := range ids {
		delta := deltas[id]
		if delta < 0 && plan.Items[id].RemainingQuantity+delta < 0 {
			return nil, &domain.InsufficientStockError{
				ItemID:    id,
				Requested: -delta,
				Available: plan.Items[id].RemainingQuantity,
			}
		}
	}
	for _, id := range ids {
		if deltas[id] != 0 {
			plan.Ops = append(plan.Ops, repository.IncrementStock(id, deltas[id]))
		}
	}
	return plan, nil
}
