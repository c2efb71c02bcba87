package repository

import (
	"context"

	"github.com/jhoicas/bodega-api/internal/domain/entity"
)

// OpKind tipo de escritura dentro de un lote atómico.
type OpKind int

const (
	// OpSetStockItem inserta o actualiza un item; nunca sobrescribe RemainingQuantity de uno existente.
	OpSetStockItem OpKind = iota + 1
	// OpSetInvoice inserta (ExpectedVersion = 0) o reemplaza la factura si su versión coincide.
	OpSetInvoice
	// OpDeleteInvoice elimina la factura si su versión coincide.
	OpDeleteInvoice
	// OpIncrementStock suma Delta a remaining_quantity de forma atómica; falla si el resultado sería negativo.
	OpIncrementStock
)

// BatchOp una escritura sobre un documento.
type BatchOp struct {
	Kind            OpKind
	StockItem       *entity.StockItem
	Invoice         *entity.Invoice
	ID              string // factura a eliminar o item a incrementar
	Delta           int64
	ExpectedVersion int64
}

// SetStockItem op de upsert de item.
func SetStockItem(item *entity.StockItem) BatchOp {
	return BatchOp{Kind: OpSetStockItem, StockItem: item}
}

// SetInvoice op de escritura de factura. expectedVersion = 0 exige que no exista.
func SetInvoice(inv *entity.Invoice, expectedVersion int64) BatchOp {
	return BatchOp{Kind: OpSetInvoice, Invoice: inv, ExpectedVersion: expectedVersion}
}

// DeleteInvoice op de borrado de factura.
func DeleteInvoice(id string, expectedVersion int64) BatchOp {
	return BatchOp{Kind: OpDeleteInvoice, ID: id, ExpectedVersion: expectedVersion}
}

// IncrementStock op de incremento atómico (delta con signo).
func IncrementStock(itemID string, delta int64) BatchOp {
	return BatchOp{Kind: OpIncrementStock, ID: itemID, Delta: delta}
}

// InvoiceFilter filtros del listado de facturas (orden: invoice_number descendente).
// Limit = 0 devuelve todas.
type InvoiceFilter struct {
	Type            entity.InvoiceType
	SourceInvoiceID string
	Limit           int
	Offset          int
}

// StockItemReader lecturas de warehouseItems. Get devuelve (nil, nil) si no existe.
type StockItemReader interface {
	GetStockItem(ctx context.Context, id string) (*entity.StockItem, error)
	GetStockItems(ctx context.Context, ids []string) (map[string]*entity.StockItem, error)
	ListStockItems(ctx context.Context, warehouseID string) ([]*entity.StockItem, error)
}

// InvoiceReader lecturas de invoices. Get devuelve (nil, nil) si no existe.
type InvoiceReader interface {
	GetInvoice(ctx context.Context, id string) (*entity.Invoice, error)
	ListInvoices(ctx context.Context, filter InvoiceFilter) ([]*entity.Invoice, error)
	// MaxInvoiceNumber mayor número asignado; 0 si no hay facturas.
	MaxInvoiceNumber(ctx context.Context) (int64, error)
}

// BatchWriter escrituras todo-o-nada.
//
// Errores esperados: domain.NotFoundError (item inexistente en un incremento),
// domain.InsufficientStockError (incremento que dejaría el stock negativo),
// domain.ErrConflict (versión distinta), domain.ErrDuplicate (id o número de factura repetido),
// domain.PersistenceError (cualquier falla del almacén). Si hay error no se aplica ninguna op.
type BatchWriter interface {
	AtomicBatch(ctx context.Context, ops []BatchOp) error
}

// TransactionalStore contrato completo del almacén de documentos.
type TransactionalStore interface {
	StockItemReader
	InvoiceReader
	BatchWriter
}
