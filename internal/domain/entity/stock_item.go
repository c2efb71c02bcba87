package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockItem representa una posición de inventario de una bodega (colección warehouseItems).
// RemainingQuantity solo cambia a través del motor de ajustes de stock una vez existen facturas.
type StockItem struct {
	ID                string
	Name              string
	Code              string
	Color             string // opcional
	WarehouseID       string
	RemainingQuantity int64 // nunca negativo
	UnitPrice         decimal.Decimal
	// Procedencia: cantidad ingresada por gestión de bodega y su desglose en cajas/unidades.
	AddedQuantity    int64
	CartonsCount     int64
	BottlesPerCarton int64
	SingleBottles    int64
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Clone devuelve una copia independiente.
func (s *StockItem) Clone() *StockItem {
	if s == nil {
		return nil
	}
	c := *s
	return &c
}
