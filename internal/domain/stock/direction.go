package stock

import (
	"sort"

	"github.com/jhoicas/bodega-api/internal/domain"
	"github.com/jhoicas/bodega-api/internal/domain/entity"
)

// Direction sentido del ajuste de stock.
type Direction int64

const (
	Increase Direction = 1
	Decrease Direction = -1
)

// Inverse sentido contrario (compensación).
func (d Direction) Inverse() Direction { return -d }

func (d Direction) String() string {
	if d == Increase {
		return "INCREASE"
	}
	return "DECREASE"
}

// DirectionFor mapea el tipo de factura a su efecto sobre el stock.
// FACTORY_RETURN siempre suma, sin importar lo que compense.
func DirectionFor(t entity.InvoiceType) (Direction, error) {
	switch t {
	case entity.InvoiceTypeSale, entity.InvoiceTypeFactoryDispatch:
		return Decrease, nil
	case entity.InvoiceTypePurchase, entity.InvoiceTypeFactoryReturn:
		return Increase, nil
	}
	return 0, domain.Invalid("type", "tipo de factura desconocido")
}

// Deltas cambio neto de remainingQuantity por stockItemId. Una clave con valor 0 sigue
// indicando que el item es referenciado y debe existir.
type Deltas map[string]int64

// EffectOf efecto de aplicar las líneas en el sentido indicado.
func EffectOf(lines []entity.InvoiceLine, dir Direction) Deltas {
	d := Deltas{}
	d.Add(lines, dir)
	return d
}

// Add acumula el efecto de las líneas; varias líneas del mismo item se suman.
func (d Deltas) Add(lines []entity.InvoiceLine, dir Direction) {
	for _, l := range lines {
		d[l.StockItemID] += int64(dir) * l.Quantity
	}
}

// ItemIDs ids referenciados, ordenados para obtener lotes deterministas.
func (d Deltas) ItemIDs() []string {
	ids := make([]string, 0, len(d))
	for id := range d {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// IsZero indica si ningún item cambia.
func (d Deltas) IsZero() bool {
	for _, v := range d {
		if v != 0 {
			return false
		}
	}
	return true
}
