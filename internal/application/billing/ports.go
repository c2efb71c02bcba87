package billing

import (
	"context"
	"time"

	"github.com/jhoicas/bodega-api/internal/application/inventory"
	"github.com/jhoicas/bodega-api/internal/domain/stock"
)

// StockPlanner valida deltas de stock y devuelve las ops de incremento para el lote.
// Lo implementa *inventory.StockAdjustmentEngine.
type StockPlanner interface {
	Plan(ctx context.Context, deltas stock.Deltas) (*inventory.Plan, error)
}

// NumberAllocator entrega el siguiente número de factura.
type NumberAllocator interface {
	NextNumber(ctx context.Context) (int64, error)
}

// Observer recibe el resultado de cada operación (métricas).
type Observer interface {
	ObserveInvoiceOp(op, invoiceType string, err error, elapsed time.Duration)
	ObserveStockDeltas(deltas map[string]int64)
}

type nopObserver struct{}

func (nopObserver) ObserveInvoiceOp(string, string, error, time.Duration) {}
func (nopObserver) ObserveStockDeltas(map[string]int64)                   {}
