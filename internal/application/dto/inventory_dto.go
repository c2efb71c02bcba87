package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockItemRequest body para PUT /api/stock-items/:id (alta o actualización).
// remaining_quantity no se acepta: un item nuevo arranca con added_quantity, que se ignora
// en un item existente.
type StockItemRequest struct {
	Name             string          `json:"name" validate:"required,max=200"`
	Code             string          `json:"code" validate:"required,max=64"`
	Color            string          `json:"color,omitempty" validate:"max=64"`
	WarehouseID      string          `json:"warehouse_id" validate:"required"`
	UnitPrice        decimal.Decimal `json:"unit_price"`
	AddedQuantity    int64           `json:"added_quantity" validate:"min=0"`
	CartonsCount     int64           `json:"cartons_count" validate:"min=0"`
	BottlesPerCarton int64           `json:"bottles_per_carton" validate:"min=0"`
	SingleBottles    int64           `json:"single_bottles" validate:"min=0"`
}

// StockItemResponse item de bodega.
type StockItemResponse struct {
	ID                string          `json:"id"`
	Name              string          `json:"name"`
	Code              string          `json:"code"`
	Color             string          `json:"color,omitempty"`
	WarehouseID       string          `json:"warehouse_id"`
	RemainingQuantity int64           `json:"remaining_quantity"`
	UnitPrice         decimal.Decimal `json:"unit_price"`
	AddedQuantity     int64           `json:"added_quantity"`
	CartonsCount      int64           `json:"cartons_count"`
	BottlesPerCarton  int64           `json:"bottles_per_carton"`
	SingleBottles     int64           `json:"single_bottles"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// DriftRowResponse item con diferencia entre stock y facturas.
type DriftRowResponse struct {
	StockItemID string `json:"stock_item_id"`
	Code        string `json:"code"`
	Name        string `json:"name"`
	Expected    int64  `json:"expected"`
	Actual      int64  `json:"actual"`
	Difference  int64  `json:"difference"`
}

// ReconciliationResponse resultado de GET /api/stock-items/reconciliation.
type ReconciliationResponse struct {
	ItemsChecked    int                `json:"items_checked"`
	InvoicesScanned int                `json:"invoices_scanned"`
	Drift           []DriftRowResponse `json:"drift"`
	OrphanItemIDs   []string           `json:"orphan_item_ids,omitempty"`
}
