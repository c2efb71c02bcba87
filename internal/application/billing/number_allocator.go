package billing

import (
	"context"

	"github.com/jhoicas/bodega-api/internal/domain"
	"github.com/jhoicas/bodega-api/internal/domain/repository"
)

// InvoiceNumberAllocator calcula el siguiente número como max + 1 (1 si no hay facturas).
// No reserva nada: el índice único sobre invoice_number detecta colisiones al persistir.
type InvoiceNumberAllocator struct {
	invoices repository.InvoiceReader
}

// NewInvoiceNumberAllocator construye el asignador.
func NewInvoiceNumberAllocator(invoices repository.InvoiceReader) *InvoiceNumberAllocator {
	return &InvoiceNumberAllocator{invoices: invoices}
}

// NextNumber lee el máximo asignado y devuelve el siguiente.
func (a *InvoiceNumberAllocator) NextNumber(ctx context.Context) (int64, error) {
	max, err := a.invoices.MaxInvoiceNumber(ctx)
	if err != nil {
		return 0, domain.Persistence("leer último número de factura", err)
	}
	return max + 1, nil
}
