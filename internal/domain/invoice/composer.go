package invoice

import (
	"github.com/jhoicas/bodega-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// Draft borrador de factura armado antes de llamar a crear/actualizar.
// No tiene efectos sobre el stock hasta que se envía.
type Draft struct {
	Type         entity.InvoiceType
	ClientName   string
	ClientPhone  string
	SupplierName string
	Recipient    string
	Notes        string
	// Version versión leída por el cliente (solo update). 0 = no verificar.
	Version int64

	lines []entity.InvoiceLine
}

// NewDraft crea un borrador vacío del tipo indicado.
func NewDraft(t entity.InvoiceType) *Draft {
	return &Draft{Type: t}
}

// FromInvoice arma un borrador con los datos y líneas de una factura existente.
func FromInvoice(inv *entity.Invoice) *Draft {
	return &Draft{
		Type:         inv.Type,
		ClientName:   inv.ClientName,
		ClientPhone:  inv.ClientPhone,
		SupplierName: inv.SupplierName,
		Recipient:    inv.Recipient,
		Notes:        inv.Notes,
		Version:      inv.Version,
		lines:        entity.CloneLines(inv.Lines),
	}
}

// AddLine agrega una línea. Si ya hay una línea del mismo stockItemId se suman las cantidades
// y el resto de campos toma los valores nuevos.
func (d *Draft) AddLine(line entity.InvoiceLine) {
	for i := range d.lines {
		if d.lines[i].StockItemID != line.StockItemID {
			continue
		}
		qty := d.lines[i].Quantity + line.Quantity
		d.lines[i] = line
		d.lines[i].Quantity = qty
		return
	}
	d.lines = append(d.lines, line)
}

// RemoveLine quita la línea del item. Devuelve false si no existía.
func (d *Draft) RemoveLine(stockItemID string) bool {
	for i := range d.lines {
		if d.lines[i].StockItemID == stockItemID {
			d.lines = append(d.lines[:i], d.lines[i+1:]...)
			return true
		}
	}
	return false
}

// Lines copia de las líneas actuales.
func (d *Draft) Lines() []entity.InvoiceLine {
	return entity.CloneLines(d.lines)
}

// Len cantidad de líneas.
func (d *Draft) Len() int { return len(d.lines) }

// Total Σ cantidad × precio para venta y compra; 0 para despachos y devoluciones.
func (d *Draft) Total() decimal.Decimal {
	return TotalFor(d.Type, d.lines)
}

// TotalFor calcula el total de un conjunto de líneas según el tipo.
func TotalFor(t entity.InvoiceType, lines []entity.InvoiceLine) decimal.Decimal {
	total := decimal.Zero
	if !t.Priced() {
		return total
	}
	for _, l := range lines {
		total = total.Add(l.Subtotal())
	}
	return total
}
