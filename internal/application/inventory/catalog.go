package inventory

import (
	"context"
	"strings"

	"github.com/jhoicas/bodega-api/internal/domain"
	"github.com/jhoicas/bodega-api/internal/domain/entity"
	"github.com/jhoicas/bodega-api/internal/domain/repository"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// StockItemInput datos de gestión de bodega para crear o actualizar un item.
// RemainingQuantity no se recibe: un item nuevo arranca con AddedQuantity y luego solo lo
// modifica el motor de ajustes. AddedQuantity solo se toma al crear.
type StockItemInput struct {
	ID               string
	Name             string
	Code             string
	Color            string
	WarehouseID      string
	UnitPrice        decimal.Decimal
	AddedQuantity    int64
	CartonsCount     int64
	BottlesPerCarton int64
	SingleBottles    int64
}

// StockCatalogUseCase alta, consulta y listado de items de bodega.
type StockCatalogUseCase struct {
	store repository.TransactionalStore
	log   zerolog.Logger
}

// NewStockCatalogUseCase construye el caso de uso.
func NewStockCatalogUseCase(store repository.TransactionalStore, log zerolog.Logger) *StockCatalogUseCase {
	return &StockCatalogUseCase{store: store, log: log.With().Str("component", "stock_catalog").Logger()}
}

// Upsert crea el item o actualiza sus datos descriptivos. En un item existente no se tocan
// remainingQuantity ni addedQuantity, que es la base de la conciliación.
func (uc *StockCatalogUseCase) Upsert(ctx context.Context, in StockItemInput) (*entity.StockItem, error) {
	item, err := newStockItem(in)
	if err != nil {
		return nil, err
	}
	existing, err := uc.store.GetStockItem(ctx, item.ID)
	if err != nil {
		return nil, domain.Persistence("leer item de stock", err)
	}
	if existing == nil {
		item.RemainingQuantity = item.AddedQuantity
	} else {
		item.AddedQuantity = existing.AddedQuantity
	}
	if err := uc.store.AtomicBatch(ctx, []repository.BatchOp{repository.SetStockItem(item)}); err != nil {
		return nil, err
	}
	saved, err := uc.store.GetStockItem(ctx, item.ID)
	if err != nil {
		return nil, domain.Persistence("leer item de stock", err)
	}
	if saved == nil {
		return nil, domain.NotFound("stock_item", item.ID)
	}
	uc.log.Info().
		Str("stock_item_id", saved.ID).
		Str("code", saved.Code).
		Bool("created", existing == nil).
		Int64("remaining", saved.RemainingQuantity).
		Msg("item de stock guardado")
	return saved, nil
}

// Get obtiene un item por ID.
func (uc *StockCatalogUseCase) Get(ctx context.Context, id string) (*entity.StockItem, error) {
	if strings.TrimSpace(id) == "" {
		return nil, domain.Invalid("id", "requerido")
	}
	item, err := uc.store.GetStockItem(ctx, id)
	if err != nil {
		return nil, domain.Persistence("leer item de stock", err)
	}
	if item == nil {
		return nil, domain.NotFound("stock_item", id)
	}
	return item, nil
}

// List lista los items de una bodega (todas si warehouseID es vacío), ordenados por código.
func (uc *StockCatalogUseCase) List(ctx context.Context, warehouseID string) ([]*entity.StockItem, error) {
	list, err := uc.store.ListStockItems(ctx, strings.TrimSpace(warehouseID))
	if err != nil {
		return nil, domain.Persistence("listar items de stock", err)
	}
	return list, nil
}

func newStockItem(in StockItemInput) (*entity.StockItem, error) {
	item := &entity.StockItem{
		ID:               strings.TrimSpace(in.ID),
		Name:             strings.TrimSpace(in.Name),
		Code:             strings.TrimSpace(in.Code),
		Color:            strings.TrimSpace(in.Color),
		WarehouseID:      strings.TrimSpace(in.WarehouseID),
		UnitPrice:        in.UnitPrice,
		AddedQuantity:    in.AddedQuantity,
		CartonsCount:     in.CartonsCount,
		BottlesPerCarton: in.BottlesPerCarton,
		SingleBottles:    in.SingleBottles,
	}
	switch {
	case item.ID == "":
		return nil, domain.Invalid("id", "requerido")
	case item.Name == "":
		return nil, domain.Invalid("name", "requerido")
	case item.Code == "":
		return nil, domain.Invalid("code", "requerido")
	case item.WarehouseID == "":
		return nil, domain.Invalid("warehouse_id", "requerido")
	case item.UnitPrice.IsNegative():
		return nil, domain.Invalid("unit_price", "no puede ser negativo")
	case item.AddedQuantity < 0:
		return nil, domain.Invalid("added_quantity", "no puede ser negativo")
	case item.CartonsCount < 0 || item.BottlesPerCarton < 0 || item.SingleBottles < 0:
		return nil, domain.Invalid("cartons", "no puede ser negativo")
	}
	return item, nil
}
