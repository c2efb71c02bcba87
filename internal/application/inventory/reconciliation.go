package inventory

import (
	"context"
	"sort"

	"github.com/jhoicas/bodega-api/internal/domain"
	"github.com/jhoicas/bodega-api/internal/domain/entity"
	"github.com/jhoicas/bodega-api/internal/domain/repository"
	"github.com/jhoicas/bodega-api/internal/domain/stock"
	"github.com/rs/zerolog"
)

// DriftRow item cuyo remainingQuantity no coincide con el recalculado desde las facturas.
type DriftRow struct {
	StockItemID string
	Code        string
	Name        string
	Expected    int64
	Actual      int64
	Difference  int64 // Actual - Expected
}

// ReconciliationReport resultado de la conciliación.
type ReconciliationReport struct {
	ItemsChecked    int
	InvoicesScanned int
	Drift           []DriftRow
	// OrphanItemIDs items referenciados por facturas que ya no existen en bodega.
	OrphanItemIDs []string
}

// ReconcileUseCase recalcula el stock esperado (addedQuantity + efecto de todas las facturas vivas)
// y lo compara con remainingQuantity. Solo lee; no corrige nada.
type ReconcileUseCase struct {
	store repository.TransactionalStore
	log   zerolog.Logger
}

// NewReconcileUseCase construye el caso de uso.
func NewReconcileUseCase(store repository.TransactionalStore, log zerolog.Logger) *ReconcileUseCase {
	return &ReconcileUseCase{store: store, log: log.With().Str("component", "reconciliation").Logger()}
}

// Reconcile arma el reporte. Las filas con diferencia salen ordenadas por código de item.
func (uc *ReconcileUseCase) Reconcile(ctx context.Context, warehouseID string) (*ReconciliationReport, error) {
	items, err := uc.store.ListStockItems(ctx, warehouseID)
	if err != nil {
		return nil, domain.Persistence("listar items de stock", err)
	}
	invoices, err := uc.store.ListInvoices(ctx, repository.InvoiceFilter{})
	if err != nil {
		return nil, domain.Persistence("listar facturas", err)
	}

	effect := stock.Deltas{}
	for _, inv := range invoices {
		dir, err := stock.DirectionFor(inv.Type)
		if err != nil {
			return nil, err
		}
		effect.Add(inv.Lines, dir)
	}

	report := &ReconciliationReport{ItemsChecked: len(items), InvoicesScanned: len(invoices)}
	known := make(map[string]*entity.StockItem, len(items))
	for _, it := range items {
		known[it.ID] = it
		expected := it.AddedQuantity + effect[it.ID]
		if expected == it.RemainingQuantity {
			continue
		}
		report.Drift = append(report.Drift, DriftRow{
			StockItemID: it.ID,
			Code:        it.Code,
			Name:        it.Name,
			Expected:    expected,
			Actual:      it.RemainingQuantity,
			Difference:  it.RemainingQuantity - expected,
		})
	}
	sort.Slice(report.Drift, func(i, j int) bool {
		if report.Drift[i].Code != report.Drift[j].Code {
			return report.Drift[i].Code < report.Drift[j].Code
		}
		return report.Drift[i].StockItemID < report.Drift[j].StockItemID
	})

	// Con filtro de bodega las facturas pueden referenciar items de otras bodegas.
	if warehouseID == "" {
		for _, id := range effect.ItemIDs() {
			if known[id] == nil {
				report.OrphanItemIDs = append(report.OrphanItemIDs, id)
			}
		}
	}

	if len(report.Drift) > 0 {
		uc.log.Warn().
			Int("drift_items", len(report.Drift)).
			Int("invoices", report.InvoicesScanned).
			Msg("diferencias entre stock y facturas")
	}
	return report, nil
}
