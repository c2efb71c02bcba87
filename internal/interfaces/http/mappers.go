package http

import (
	"github.com/jhoicas/bodega-api/internal/application/dto"
	"github.com/jhoicas/bodega-api/internal/application/inventory"
	"github.com/jhoicas/bodega-api/internal/domain/entity"
	"github.com/jhoicas/bodega-api/internal/domain/invoice"
)

func draftFromRequest(in dto.InvoiceRequest) *invoice.Draft {
	d := invoice.NewDraft(entity.InvoiceType(in.Type))
	d.ClientName = in.ClientName
	d.ClientPhone = in.ClientPhone
	d.SupplierName = in.SupplierName
	d.Recipient = in.Recipient
	d.Notes = in.Notes
	d.Version = in.Version
	for _, l := range in.Lines {
		d.AddLine(entity.InvoiceLine{
			StockItemID: l.StockItemID,
			ItemName:    l.ItemName,
			ItemCode:    l.ItemCode,
			Color:       l.Color,
			Quantity:    l.Quantity,
			UnitPrice:   l.UnitPrice,
			Unit:        l.Unit,
			Notes:       l.Notes,
		})
	}
	return d
}

func toInvoiceResponse(inv *entity.Invoice) dto.InvoiceResponse {
	lines := make([]dto.InvoiceLineResponse, 0, len(inv.Lines))
	for _, l := range inv.Lines {
		lines = append(lines, dto.InvoiceLineResponse{
			StockItemID: l.StockItemID,
			ItemName:    l.ItemName,
			ItemCode:    l.ItemCode,
			Color:       l.Color,
			Quantity:    l.Quantity,
			UnitPrice:   l.UnitPrice,
			Subtotal:    l.Subtotal(),
			Unit:        l.Unit,
			Notes:       l.Notes,
		})
	}
	return dto.InvoiceResponse{
		ID:                inv.ID,
		Type:              string(inv.Type),
		InvoiceNumber:     inv.InvoiceNumber,
		Lines:             lines,
		ClientName:        inv.ClientName,
		ClientPhone:       inv.ClientPhone,
		SupplierName:      inv.SupplierName,
		Recipient:         inv.Recipient,
		Notes:             inv.Notes,
		TotalAmount:       inv.TotalAmount,
		CreatedByID:       inv.CreatedByID,
		CreatedByUsername: inv.CreatedByUsername,
		SourceInvoiceID:   inv.SourceInvoiceID,
		ReturnType:        inv.ReturnType,
		Version:           inv.Version,
		CreatedAt:         inv.CreatedAt,
		UpdatedAt:         inv.UpdatedAt,
	}
}

func toStockItemResponse(it *entity.StockItem) dto.StockItemResponse {
	return dto.StockItemResponse{
		ID:                it.ID,
		Name:              it.Name,
		Code:              it.Code,
		Color:             it.Color,
		WarehouseID:       it.WarehouseID,
		RemainingQuantity: it.RemainingQuantity,
		UnitPrice:         it.UnitPrice,
		AddedQuantity:     it.AddedQuantity,
		CartonsCount:      it.CartonsCount,
		BottlesPerCarton:  it.BottlesPerCarton,
		SingleBottles:     it.SingleBottles,
		CreatedAt:         it.CreatedAt,
		UpdatedAt:         it.UpdatedAt,
	}
}

func toReconciliationResponse(r *inventory.ReconciliationReport) dto.ReconciliationResponse {
	out := dto.ReconciliationResponse{
		ItemsChecked:    r.ItemsChecked,
		InvoicesScanned: r.InvoicesScanned,
		Drift:           make([]dto.DriftRowResponse, 0, len(r.Drift)),
		OrphanItemIDs:   r.OrphanItemIDs,
	}
	for _, row := range r.Drift {
		out.Drift = append(out.Drift, dto.DriftRowResponse{
			StockItemID: row.StockItemID,
			Code:        row.Code,
			Name:        row.Name,
			Expected:    row.Expected,
			Actual:      row.Actual,
			Difference:  row.Difference,
		})
	}
	return out
}
