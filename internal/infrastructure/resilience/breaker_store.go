package resilience

import (
	"context"
	"errors"

	"github.com/jhoicas/bodega-api/internal/domain"
	"github.com/jhoicas/bodega-api/internal/domain/entity"
	"github.com/jhoicas/bodega-api/internal/domain/repository"
	"github.com/jhoicas/bodega-api/pkg/config"
	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"
)

// ErrCircuitOpen el almacén se considera caído y no se intenta la llamada.
var ErrCircuitOpen = errors.New("circuit breaker abierto")

var _ repository.TransactionalStore = (*BreakerStore)(nil)

// BreakerStore decora un TransactionalStore con un circuit breaker. Solo las fallas del almacén
// (errores que no son de dominio) cuentan para abrir el circuito: stock insuficiente, conflictos
// de versión o documentos inexistentes son respuestas válidas.
type BreakerStore struct {
	next repository.TransactionalStore
	cb   *gobreaker.CircuitBreaker
}

// NewBreakerStore construye el decorador con los umbrales de configuración.
func NewBreakerStore(next repository.TransactionalStore, cfg config.BreakerConfig, log zerolog.Logger) *BreakerStore {
	threshold := cfg.FailureThreshold
	if threshold == 0 {
		threshold = 5
	}
	settings := gobreaker.Settings{
		Name:        "document-store",
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		IsSuccessful: func(err error) bool {
			return err == nil || !isStoreFailure(err)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("cambio de estado del circuit breaker")
		},
	}
	return &BreakerStore{next: next, cb: gobreaker.NewCircuitBreaker(settings)}
}

// State estado actual del circuito.
func (b *BreakerStore) State() gobreaker.State {
	return b.cb.State()
}

// isStoreFailure los errores de persistencia y los que no pertenecen al dominio (red, driver).
func isStoreFailure(err error) bool {
	if errors.Is(err, domain.ErrPersistence) {
		return true
	}
	return !domain.IsDomainError(err)
}

func execute[T any](b *BreakerStore, op string, fn func() (T, error)) (T, error) {
	res, err := b.cb.Execute(func() (interface{}, error) {
		return fn()
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		var zero T
		return zero, domain.Persistence(op, errors.Join(ErrCircuitOpen, err))
	}
	if err != nil {
		var zero T
		return zero, err
	}
	if res == nil {
		var zero T
		return zero, nil
	}
	return res.(T), nil
}

func (b *BreakerStore) GetStockItem(ctx context.Context, id string) (*entity.StockItem, error) {
	return execute(b, "leer item de stock", func() (*entity.StockItem, error) {
		return b.next.GetStockItem(ctx, id)
	})
}

func (b *BreakerStore) GetStockItems(ctx context.Context, ids []string) (map[string]*entity.StockItem, error) {
	return execute(b, "leer items de stock", func() (map[string]*entity.StockItem, error) {
		return b.next.GetStockItems(ctx, ids)
	})
}

func (b *BreakerStore) ListStockItems(ctx context.Context, warehouseID string) ([]*entity.StockItem, error) {
	return execute(b, "listar items de stock", func() ([]*entity.StockItem, error) {
		return b.next.ListStockItems(ctx, warehouseID)
	})
}

func (b *BreakerStore) GetInvoice(ctx context.Context, id string) (*entity.Invoice, error) {
	return execute(b, "leer factura", func() (*entity.Invoice, error) {
		return b.next.GetInvoice(ctx, id)
	})
}

func (b *BreakerStore) ListInvoices(ctx context.Context, filter repository.InvoiceFilter) ([]*entity.Invoice, error) {
	return execute(b, "listar facturas", func() ([]*entity.Invoice, error) {
		return b.next.ListInvoices(ctx, filter)
	})
}

func (b *BreakerStore) MaxInvoiceNumber(ctx context.Context) (int64, error) {
	return execute(b, "leer último número de factura", func() (int64, error) {
		return b.next.MaxInvoiceNumber(ctx)
	})
}

func (b *BreakerStore) AtomicBatch(ctx context.Context, ops []repository.BatchOp) error {
	_, err := execute(b, "lote atómico", func() (struct{}, error) {
		return struct{}{}, b.next.AtomicBatch(ctx, ops)
	})
	return err
}
