package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// InvoiceType tipo de documento que afecta el stock.
type InvoiceType string

// Tipos de factura.
const (
	InvoiceTypeSale            InvoiceType = "SALE"             // venta, descuenta stock
	InvoiceTypePurchase        InvoiceType = "PURCHASE"         // compra, suma stock
	InvoiceTypeFactoryDispatch InvoiceType = "FACTORY_DISPATCH" // despacho a fábrica, descuenta stock
	InvoiceTypeFactoryReturn   InvoiceType = "FACTORY_RETURN"   // devolución de un despacho, suma stock
)

// Valid indica si el tipo es uno de los conocidos.
func (t InvoiceType) Valid() bool {
	switch t {
	case InvoiceTypeSale, InvoiceTypePurchase, InvoiceTypeFactoryDispatch, InvoiceTypeFactoryReturn:
		return true
	}
	return false
}

// Priced indica si las líneas llevan precio unitario (venta y compra).
func (t InvoiceType) Priced() bool {
	return t == InvoiceTypeSale || t == InvoiceTypePurchase
}

// InvoiceLine línea de una factura. ItemName, ItemCode y Color son una copia tomada al agregar
// la línea; no se sincronizan con el StockItem.
type InvoiceLine struct {
	StockItemID string
	ItemName    string
	ItemCode    string
	Color       string
	Quantity    int64
	UnitPrice   decimal.Decimal // SALE / PURCHASE
	Unit        string          // FACTORY_DISPATCH / FACTORY_RETURN
	Notes       string          // FACTORY_DISPATCH / FACTORY_RETURN
}

// Subtotal cantidad × precio unitario.
func (l InvoiceLine) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(l.Quantity))
}

// Invoice cabecera y líneas de una factura. InvoiceNumber se asigna una sola vez al persistir.
type Invoice struct {
	ID            string
	Type          InvoiceType
	InvoiceNumber int64
	Lines         []InvoiceLine
	ClientName    string // SALE
	ClientPhone   string // SALE
	SupplierName  string // PURCHASE
	Recipient     string // FACTORY_DISPATCH / FACTORY_RETURN
	Notes         string
	TotalAmount   decimal.Decimal

	CreatedByID       string
	CreatedByUsername string

	SourceInvoiceID string // FACTORY_RETURN: despacho compensado
	ReturnType      string // FACTORY_RETURN

	Version   int64 // control de concurrencia optimista, inicia en 1
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Clone devuelve una copia profunda (las líneas no se comparten).
func (inv *Invoice) Clone() *Invoice {
	if inv == nil {
		return nil
	}
	c := *inv
	c.Lines = CloneLines(inv.Lines)
	return &c
}

// CloneLines copia una secuencia de líneas.
func CloneLines(lines []InvoiceLine) []InvoiceLine {
	if lines == nil {
		return nil
	}
	out := make([]InvoiceLine, len(lines))
	copy(out, lines)
	return out
}
