package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/jhoicas/bodega-api/internal/domain"
	"github.com/jhoicas/bodega-api/internal/domain/entity"
	"github.com/jhoicas/bodega-api/internal/domain/repository"
)

var _ repository.TransactionalStore = (*Store)(nil)

// Store implementación en memoria de TransactionalStore (modo dev y tests).
// Cada lote se aplica sobre una copia y solo se publica si todas las ops son válidas.
type Store struct {
	mu       sync.RWMutex
	items    map[string]*entity.StockItem
	invoices map[string]*entity.Invoice
	batchErr []error
	batches  int
	now      func() time.Time
}

// NewStore construye un almacén vacío.
func NewStore() *Store {
	return &Store{
		items:    make(map[string]*entity.StockItem),
		invoices: make(map[string]*entity.Invoice),
		now:      time.Now,
	}
}

// FailNextBatches hace que los próximos lotes fallen con los errores dados (en orden),
// sin aplicar ninguna op. Útil para simular caídas del almacén.
func (s *Store) FailNextBatches(errs ...error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.batchErr = append(s.batchErr, errs...)
}

// Batches cantidad de lotes confirmados.
func (s *Store) Batches() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.batches
}

// GetStockItem obtiene un item por ID.
func (s *Store) GetStockItem(_ context.Context, id string) (*entity.StockItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.items[id].Clone(), nil
}

// GetStockItems obtiene varios items; los inexistentes no aparecen en el mapa.
func (s *Store) GetStockItems(_ context.Context, ids []string) (map[string]*entity.StockItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]*entity.StockItem, len(ids))
	for _, id := range ids {
		if it, ok := s.items[id]; ok {
			out[id] = it.Clone()
		}
	}
	return out, nil
}

// ListStockItems lista items (de una bodega si warehouseID no es vacío) ordenados por código.
func (s *Store) ListStockItems(_ context.Context, warehouseID string) ([]*entity.StockItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var list []*entity.StockItem
	for _, it := range s.items {
		if warehouseID != "" && it.WarehouseID != warehouseID {
			continue
		}
		list = append(list, it.Clone())
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].Code != list[j].Code {
			return list[i].Code < list[j].Code
		}
		return list[i].ID < list[j].ID
	})
	return list, nil
}

// GetInvoice obtiene una factura por ID.
func (s *Store) GetInvoice(_ context.Context, id string) (*entity.Invoice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.invoices[id].Clone(), nil
}

// ListInvoices lista facturas por número descendente.
func (s *Store) ListInvoices(_ context.Context, f repository.InvoiceFilter) ([]*entity.Invoice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var list []*entity.Invoice
	for _, inv := range s.invoices {
		if f.Type != "" && inv.Type != f.Type {
			continue
		}
		if f.SourceInvoiceID != "" && inv.SourceInvoiceID != f.SourceInvoiceID {
			continue
		}
		list = append(list, inv.Clone())
	}
	sort.Slice(list, func(i, j int) bool { return list[i].InvoiceNumber > list[j].InvoiceNumber })
	if f.Offset > 0 {
		if f.Offset >= len(list) {
			return nil, nil
		}
		list = list[f.Offset:]
	}
	if f.Limit > 0 && len(list) > f.Limit {
		list = list[:f.Limit]
	}
	return list, nil
}

// MaxInvoiceNumber mayor número asignado.
func (s *Store) MaxInvoiceNumber(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var max int64
	for _, inv := range s.invoices {
		if inv.InvoiceNumber > max {
			max = inv.InvoiceNumber
		}
	}
	return max, nil
}

// AtomicBatch aplica todas las ops o ninguna.
func (s *Store) AtomicBatch(ctx context.Context, ops []repository.BatchOp) error {
	if err := ctx.Err(); err != nil {
		return domain.Persistence("memory batch", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.batchErr) > 0 {
		err := s.batchErr[0]
		s.batchErr = s.batchErr[1:]
		return domain.Persistence("memory batch", err)
	}

	tx := &stagedTx{store: s, items: map[string]*entity.StockItem{}, invoices: map[string]*entity.Invoice{}}
	now := s.now()
	for _, op := range ops {
		if err := tx.apply(op, now); err != nil {
			return err
		}
	}
	for id, it := range tx.items {
		s.items[id] = it
	}
	for id, inv := range tx.invoices {
		if inv == nil {
			delete(s.invoices, id)
			continue
		}
		s.invoices[id] = inv
	}
	s.batches++
	return nil
}

// stagedTx cambios pendientes de un lote; una factura nil significa borrada.
type stagedTx struct {
	store    *Store
	items    map[string]*entity.StockItem
	invoices map[string]*entity.Invoice
}

func (tx *stagedTx) item(id string) *entity.StockItem {
	if it, ok := tx.items[id]; ok {
		return it
	}
	if it, ok := tx.store.items[id]; ok {
		c := it.Clone()
		tx.items[id] = c
		return c
	}
	return nil
}

func (tx *stagedTx) invoice(id string) *entity.Invoice {
	if inv, ok := tx.invoices[id]; ok {
		return inv
	}
	return tx.store.invoices[id]
}

func (tx *stagedTx) numberTaken(number int64, exceptID string) bool {
	for id, inv := range tx.invoices {
		if inv != nil && id != exceptID && inv.InvoiceNumber == number {
			return true
		}
	}
	for id, inv := range tx.store.invoices {
		if id == exceptID {
			continue
		}
		if staged, ok := tx.invoices[id]; ok && staged == nil {
			continue
		}
		if inv.InvoiceNumber == number {
			return true
		}
	}
	return false
}

func (tx *stagedTx) apply(op repository.BatchOp, now time.Time) error {
	switch op.Kind {
	case repository.OpSetStockItem:
		if op.StockItem == nil || op.StockItem.ID == "" {
			return domain.Invalid("stock_item", "id requerido")
		}
		next := op.StockItem.Clone()
		if cur := tx.item(next.ID); cur != nil {
			next.RemainingQuantity = cur.RemainingQuantity
			next.CreatedAt = cur.CreatedAt
		}
		if next.CreatedAt.IsZero() {
			next.CreatedAt = now
		}
		next.UpdatedAt = now
		tx.items[next.ID] = next
	case repository.OpIncrementStock:
		it := tx.item(op.ID)
		if it == nil {
			return domain.NotFound("stock_item", op.ID)
		}
		if it.RemainingQuantity+op.Delta < 0 {
			return &domain.InsufficientStockError{ItemID: op.ID, Requested: -op.Delta, Available: it.RemainingQuantity}
		}
		it.RemainingQuantity += op.Delta
		it.UpdatedAt = now
	case repository.OpSetInvoice:
		if op.Invoice == nil || op.Invoice.ID == "" {
			return domain.Invalid("invoice", "id requerido")
		}
		cur := tx.invoice(op.Invoice.ID)
		if op.ExpectedVersion == 0 {
			if cur != nil {
				return fmt.Errorf("%w: factura %q ya existe", domain.ErrDuplicate, op.Invoice.ID)
			}
		} else if cur == nil || cur.Version != op.ExpectedVersion {
			return fmt.Errorf("%w: versión de la factura %q cambió", domain.ErrConflict, op.Invoice.ID)
		}
		if tx.numberTaken(op.Invoice.InvoiceNumber, op.Invoice.ID) {
			return fmt.Errorf("%w: número de factura %d ya asignado", domain.ErrDuplicate, op.Invoice.InvoiceNumber)
		}
		tx.invoices[op.Invoice.ID] = op.Invoice.Clone()
	case repository.OpDeleteInvoice:
		cur := tx.invoice(op.ID)
		if cur == nil || cur.Version != op.ExpectedVersion {
			return fmt.Errorf("%w: versión de la factura %q cambió", domain.ErrConflict, op.ID)
		}
		tx.invoices[op.ID] = nil
	default:
		return domain.Invalid("op", fmt.Sprintf("tipo de op desconocido %d", op.Kind))
	}
	return nil
}
