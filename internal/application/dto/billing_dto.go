package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// InvoiceLineRequest línea de factura. UnitPrice aplica a SALE/PURCHASE; Unit y Notes a los despachos.
// ItemName, ItemCode y Color son opcionales: si faltan se copian del item de bodega.
type InvoiceLineRequest struct {
	StockItemID string          `json:"stock_item_id" validate:"required"`
	ItemName    string          `json:"item_name,omitempty"`
	ItemCode    string          `json:"item_code,omitempty"`
	Color       string          `json:"color,omitempty"`
	Quantity    int64           `json:"quantity" validate:"gt=0"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Unit        string          `json:"unit,omitempty" validate:"max=32"`
	Notes       string          `json:"notes,omitempty" validate:"max=500"`
}

// InvoiceRequest body para POST /api/invoices y PUT /api/invoices/:id.
// Version solo se usa en PUT (0 = no verificar).
type InvoiceRequest struct {
	Type         string               `json:"type" validate:"required,oneof=SALE PURCHASE FACTORY_DISPATCH FACTORY_RETURN"`
	ClientName   string               `json:"client_name,omitempty" validate:"max=200"`
	ClientPhone  string               `json:"client_phone,omitempty" validate:"max=32"`
	SupplierName string               `json:"supplier_name,omitempty" validate:"max=200"`
	Recipient    string               `json:"recipient,omitempty" validate:"max=200"`
	Notes        string               `json:"notes,omitempty" validate:"max=1000"`
	Version      int64                `json:"version,omitempty" validate:"min=0"`
	Lines        []InvoiceLineRequest `json:"lines" validate:"required,min=1,dive"`
}

// FactoryReturnRequest body para POST /api/invoices/:id/return.
type FactoryReturnRequest struct {
	ReturnType string `json:"return_type" validate:"max=64"`
	Notes      string `json:"notes,omitempty" validate:"max=1000"`
}

// InvoiceListQuery filtros de GET /api/invoices.
type InvoiceListQuery struct {
	Type string `query:"type" validate:"omitempty,oneof=SALE PURCHASE FACTORY_DISPATCH FACTORY_RETURN"`
	PageRequest
}

// InvoiceLineResponse línea en respuestas.
type InvoiceLineResponse struct {
	StockItemID string          `json:"stock_item_id"`
	ItemName    string          `json:"item_name,omitempty"`
	ItemCode    string          `json:"item_code,omitempty"`
	Color       string          `json:"color,omitempty"`
	Quantity    int64           `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Subtotal    decimal.Decimal `json:"subtotal"`
	Unit        string          `json:"unit,omitempty"`
	Notes       string          `json:"notes,omitempty"`
}

// InvoiceResponse factura completa.
type InvoiceResponse struct {
	ID                string                `json:"id"`
	Type              string                `json:"type"`
	InvoiceNumber     int64                 `json:"invoice_number"`
	Lines             []InvoiceLineResponse `json:"lines"`
	ClientName        string                `json:"client_name,omitempty"`
	ClientPhone       string                `json:"client_phone,omitempty"`
	SupplierName      string                `json:"supplier_name,omitempty"`
	Recipient         string                `json:"recipient,omitempty"`
	Notes             string                `json:"notes,omitempty"`
	TotalAmount       decimal.Decimal       `json:"total_amount"`
	CreatedByID       string                `json:"created_by_id"`
	CreatedByUsername string                `json:"created_by_username"`
	SourceInvoiceID   string                `json:"source_invoice_id,omitempty"`
	ReturnType        string                `json:"return_type,omitempty"`
	Version           int64                 `json:"version"`
	CreatedAt         time.Time             `json:"created_at"`
	UpdatedAt         time.Time             `json:"updated_at"`
}

// InvoiceListResponse página de facturas.
type InvoiceListResponse struct {
	Items []InvoiceResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}
