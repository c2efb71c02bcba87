package mongodb

import (
	"time"

	"github.com/jhoicas/bodega-api/internal/domain/entity"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type stockItemDoc struct {
	ID                string               `bson:"_id"`
	Name              string               `bson:"itemName"`
	Code              string               `bson:"itemCode"`
	Color             string               `bson:"color,omitempty"`
	WarehouseID       string               `bson:"warehouseId"`
	RemainingQuantity int64                `bson:"remainingQuantity"`
	UnitPrice         primitive.Decimal128 `bson:"unitPrice"`
	AddedQuantity     int64                `bson:"addedQuantity"`
	CartonsCount      int64                `bson:"cartonsCount"`
	BottlesPerCarton  int64                `bson:"bottlesPerCarton"`
	SingleBottles     int64                `bson:"singleBottles"`
	CreatedAt         time.Time            `bson:"createdAt"`
	UpdatedAt         time.Time            `bson:"updatedAt"`
}

type lineDoc struct {
	StockItemID string               `bson:"stockItemId"`
	ItemName    string               `bson:"itemName,omitempty"`
	ItemCode    string               `bson:"itemCode,omitempty"`
	Color       string               `bson:"color,omitempty"`
	Quantity    int64                `bson:"quantity"`
	UnitPrice   primitive.Decimal128 `bson:"unitPrice"`
	Unit        string               `bson:"unit,omitempty"`
	Notes       string               `bson:"notes,omitempty"`
}

type invoiceDoc struct {
	ID                string               `bson:"_id"`
	Type              string               `bson:"type"`
	InvoiceNumber     int64                `bson:"invoiceNumber"`
	Details           []lineDoc            `bson:"details"`
	ClientName        string               `bson:"clientName,omitempty"`
	ClientPhone       string               `bson:"clientPhone,omitempty"`
	SupplierName      string               `bson:"supplierName,omitempty"`
	Recipient         string               `bson:"recipient,omitempty"`
	Notes             string               `bson:"notes,omitempty"`
	TotalAmount       primitive.Decimal128 `bson:"totalAmount"`
	CreatedByID       string               `bson:"createdById"`
	CreatedByUsername string               `bson:"createdByUsername"`
	SourceInvoiceID   string               `bson:"sourceInvoiceId,omitempty"`
	ReturnType        string               `bson:"returnType,omitempty"`
	Version           int64                `bson:"version"`
	CreatedAt         time.Time            `bson:"createdAt"`
	UpdatedAt         time.Time            `bson:"updatedAt"`
}

// toDecimal128 no falla con valores que vienen de decimal.Decimal; si falla se guarda 0.
func toDecimal128(d decimal.Decimal) primitive.Decimal128 {
	v, err := primitive.ParseDecimal128(d.String())
	if err != nil {
		return primitive.NewDecimal128(0, 0)
	}
	return v
}

func fromDecimal128(v primitive.Decimal128) decimal.Decimal {
	d, err := decimal.NewFromString(v.String())
	if err != nil {
		return decimal.Zero
	}
	return d
}

func newStockItemDoc(it *entity.StockItem) stockItemDoc {
	return stockItemDoc{
		ID:                it.ID,
		Name:              it.Name,
		Code:              it.Code,
		Color:             it.Color,
		WarehouseID:       it.WarehouseID,
		RemainingQuantity: it.RemainingQuantity,
		UnitPrice:         toDecimal128(it.UnitPrice),
		AddedQuantity:     it.AddedQuantity,
		CartonsCount:      it.CartonsCount,
		BottlesPerCarton:  it.BottlesPerCarton,
		SingleBottles:     it.SingleBottles,
		CreatedAt:         it.CreatedAt,
		UpdatedAt:         it.UpdatedAt,
	}
}

func (d stockItemDoc) toEntity() *entity.StockItem {
	return &entity.StockItem{
		ID:                d.ID,
		Name:              d.Name,
		Code:              d.Code,
		Color:             d.Color,
		WarehouseID:       d.WarehouseID,
		RemainingQuantity: d.RemainingQuantity,
		UnitPrice:         fromDecimal128(d.UnitPrice),
		AddedQuantity:     d.AddedQuantity,
		CartonsCount:      d.CartonsCount,
		BottlesPerCarton:  d.BottlesPerCarton,
		SingleBottles:     d.SingleBottles,
		CreatedAt:         d.CreatedAt.UTC(),
		UpdatedAt:         d.UpdatedAt.UTC(),
	}
}

func newInvoiceDoc(inv *entity.Invoice) invoiceDoc {
	lines := make([]lineDoc, 0, len(inv.Lines))
	for _, l := range inv.Lines {
		lines = append(lines, lineDoc{
			StockItemID: l.StockItemID,
			ItemName:    l.ItemName,
			ItemCode:    l.ItemCode,
			Color:       l.Color,
			Quantity:    l.Quantity,
			UnitPrice:   toDecimal128(l.UnitPrice),
			Unit:        l.Unit,
			Notes:       l.Notes,
		})
	}
	return invoiceDoc{
		ID:                inv.ID,
		Type:              string(inv.Type),
		InvoiceNumber:     inv.InvoiceNumber,
		Details:           lines,
		ClientName:        inv.ClientName,
		ClientPhone:       inv.ClientPhone,
		SupplierName:      inv.SupplierName,
		Recipient:         inv.Recipient,
		Notes:             inv.Notes,
		TotalAmount:       toDecimal128(inv.TotalAmount),
		CreatedByID:       inv.CreatedByID,
		CreatedByUsername: inv.CreatedByUsername,
		SourceInvoiceID:   inv.SourceInvoiceID,
		ReturnType:        inv.ReturnType,
		Version:           inv.Version,
		CreatedAt:         inv.CreatedAt,
		UpdatedAt:         inv.UpdatedAt,
	}
}

func (d invoiceDoc) toEntity() *entity.Invoice {
	lines := make([]entity.InvoiceLine, 0, len(d.Details))
	for _, l := range d.Details {
		lines = append(lines, entity.InvoiceLine{
			StockItemID: l.StockItemID,
			ItemName:    l.ItemName,
			ItemCode:    l.ItemCode,
			Color:       l.Color,
			Quantity:    l.Quantity,
			UnitPrice:   fromDecimal128(l.UnitPrice),
			Unit:        l.Unit,
			Notes:       l.Notes,
		})
	}
	return &entity.Invoice{
		ID:                d.ID,
		Type:              entity.InvoiceType(d.Type),
		InvoiceNumber:     d.InvoiceNumber,
		Lines:             lines,
		ClientName:        d.ClientName,
		ClientPhone:       d.ClientPhone,
		SupplierName:      d.SupplierName,
		Recipient:         d.Recipient,
		Notes:             d.Notes,
		TotalAmount:       fromDecimal128(d.TotalAmount),
		CreatedByID:       d.CreatedByID,
		CreatedByUsername: d.CreatedByUsername,
		SourceInvoiceID:   d.SourceInvoiceID,
		ReturnType:        d.ReturnType,
		Version:           d.Version,
		CreatedAt:         d.CreatedAt.UTC(),
		UpdatedAt:         d.UpdatedAt.UTC(),
	}
}
