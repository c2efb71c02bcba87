package billing

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/bodega-api/internal/domain"
	"github.com/jhoicas/bodega-api/internal/domain/entity"
	"github.com/jhoicas/bodega-api/internal/domain/repository"
	"github.com/jhoicas/bodega-api/internal/domain/stock"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// FactoryReturnProcessor genera una devolución (FACTORY_RETURN) a partir de un despacho a fábrica:
// devuelve al stock las cantidades despachadas sin modificar el documento original.
type FactoryReturnProcessor struct {
	store    repository.TransactionalStore
	planner  StockPlanner
	numbers  NumberAllocator
	log      zerolog.Logger
	observer Observer
}

// NewFactoryReturnProcessor construye el caso de uso. observer puede ser nil.
func NewFactoryReturnProcessor(
	store repository.TransactionalStore,
	planner StockPlanner,
	numbers NumberAllocator,
	log zerolog.Logger,
	observer Observer,
) *FactoryReturnProcessor {
	if observer == nil {
		observer = nopObserver{}
	}
	return &FactoryReturnProcessor{
		store:    store,
		planner:  planner,
		numbers:  numbers,
		log:      log.With().Str("component", "factory_return").Logger(),
		observer: observer,
	}
}

// ProcessReturn carga el despacho, suma sus líneas al stock y persiste la devolución en un solo lote.
// Un despacho solo admite una devolución.
func (p *FactoryReturnProcessor) ProcessReturn(ctx context.Context, actor entity.Actor, dispatchID, returnType, notes string) (ret *entity.Invoice, err error) {
	start := time.Now()
	defer func() {
		p.observer.ObserveInvoiceOp(OpReturn, string(entity.InvoiceTypeFactoryReturn), err, time.Since(start))
	}()

	if err := validateActor(actor); err != nil {
		return nil, err
	}
	if strings.TrimSpace(dispatchID) == "" {
		return nil, domain.Invalid("dispatch_id", "requerido")
	}
	dispatch, err := p.store.GetInvoice(ctx, dispatchID)
	if err != nil {
		return nil, domain.Persistence("leer despacho", err)
	}
	if dispatch == nil {
		return nil, domain.NotFound("invoice", dispatchID)
	}
	if dispatch.Type != entity.InvoiceTypeFactoryDispatch {
		return nil, domain.Invalid("dispatch_id", fmt.Sprintf("la factura %d no es un despacho a fábrica", dispatch.InvoiceNumber))
	}
	existing, err := p.store.ListInvoices(ctx, repository.InvoiceFilter{
		Type:            entity.InvoiceTypeFactoryReturn,
		SourceInvoiceID: dispatch.ID,
		Limit:           1,
	})
	if err != nil {
		return nil, domain.Persistence("buscar devoluciones del despacho", err)
	}
	if len(existing) > 0 {
		return nil, fmt.Errorf("%w: el despacho %d ya tiene la devolución %d",
			domain.ErrConflict, dispatch.InvoiceNumber, existing[0].InvoiceNumber)
	}

	deltas := stock.EffectOf(dispatch.Lines, stock.Increase)
	plan, err := p.planner.Plan(ctx, deltas)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	ret = &entity.Invoice{
		ID:                uuid.New().String(),
		Type:              entity.InvoiceTypeFactoryReturn,
		Lines:             entity.CloneLines(dispatch.Lines),
		ClientName:        dispatch.ClientName,
		SupplierName:      dispatch.SupplierName,
		Recipient:         dispatch.Recipient,
		Notes:             strings.TrimSpace(notes),
		TotalAmount:       decimal.Zero,
		CreatedByID:       actor.ID,
		CreatedByUsername: actor.Username,
		SourceInvoiceID:   dispatch.ID,
		ReturnType:        strings.TrimSpace(returnType),
		Version:           1,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if err := persistNew(ctx, p.store, p.numbers, p.log, ret, plan.Ops); err != nil {
		return nil, err
	}

	p.observer.ObserveStockDeltas(deltas)
	p.log.Info().
		Str("invoice_id", ret.ID).
		Int64("invoice_number", ret.InvoiceNumber).
		Str("source_invoice_id", dispatch.ID).
		Str("return_type", ret.ReturnType).
		Str("actor", actor.Username).
		Msg("devolución de fábrica registrada")
	return ret, nil
}
