package billing

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/bodega-api/internal/domain"
	"github.com/jhoicas/bodega-api/internal/domain/entity"
	"github.com/jhoicas/bodega-api/internal/domain/invoice"
	"github.com/jhoicas/bodega-api/internal/domain/repository"
	"github.com/jhoicas/bodega-api/internal/domain/stock"
	"github.com/rs/zerolog"
)

// maxNumberAttempts intentos de asignar número cuando otro escritor tomó el mismo.
const maxNumberAttempts = 3

// Operaciones reportadas al Observer.
const (
	OpCreate = "create"
	OpUpdate = "update"
	OpDelete = "delete"
	OpReturn = "return"
)

// InvoiceLifecycleManager crea, actualiza y elimina facturas manteniendo remainingQuantity
// consistente. Cada operación termina en un único lote atómico que lleva los incrementos de
// stock y la escritura (o borrado) del documento.
type InvoiceLifecycleManager struct {
	store    repository.TransactionalStore
	planner  StockPlanner
	numbers  NumberAllocator
	log      zerolog.Logger
	observer Observer
}

// NewInvoiceLifecycleManager construye el caso de uso. observer puede ser nil.
func NewInvoiceLifecycleManager(
	store repository.TransactionalStore,
	planner StockPlanner,
	numbers NumberAllocator,
	log zerolog.Logger,
	observer Observer,
) *InvoiceLifecycleManager {
	if observer == nil {
		observer = nopObserver{}
	}
	return &InvoiceLifecycleManager{
		store:    store,
		planner:  planner,
		numbers:  numbers,
		log:      log.With().Str("component", "invoice_lifecycle").Logger(),
		observer: observer,
	}
}

// Create valida el borrador, asigna número, aplica el efecto sobre el stock y persiste la factura.
// Si el stock no alcanza o un item no existe no se crea ningún documento.
func (m *InvoiceLifecycleManager) Create(ctx context.Context, actor entity.Actor, draft *invoice.Draft) (inv *entity.Invoice, err error) {
	start := time.Now()
	defer func() { m.observe(OpCreate, draft, err, start) }()

	if err := validateActor(actor); err != nil {
		return nil, err
	}
	if err := invoice.Validate(draft); err != nil {
		return nil, err
	}
	if draft.Type == entity.InvoiceTypeFactoryReturn {
		return nil, domain.Invalid("type", "las devoluciones se generan desde un despacho")
	}
	dir, err := stock.DirectionFor(draft.Type)
	if err != nil {
		return nil, err
	}
	deltas := stock.EffectOf(draft.Lines(), dir)
	plan, err := m.planner.Plan(ctx, deltas)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	inv = &entity.Invoice{
		ID:                uuid.New().String(),
		Type:              draft.Type,
		Lines:             withSnapshots(draft.Lines(), plan.Items),
		Notes:             strings.TrimSpace(draft.Notes),
		TotalAmount:       draft.Total(),
		CreatedByID:       actor.ID,
		CreatedByUsername: actor.Username,
		Version:           1,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	setParty(inv, draft)

	if err := persistNew(ctx, m.store, m.numbers, m.log, inv, plan.Ops); err != nil {
		return nil, err
	}
	m.observer.ObserveStockDeltas(deltas)
	m.log.Info().
		Str("invoice_id", inv.ID).
		Int64("invoice_number", inv.InvoiceNumber).
		Str("type", string(inv.Type)).
		Str("actor", actor.Username).
		Msg("factura creada")
	return inv, nil
}

// Update reemplaza líneas y datos de la factura conservando su número. La compensación de las
// líneas anteriores y la aplicación de las nuevas se calculan como un único delta neto, de modo
// que la validación de stock usa el disponible después de compensar y no existe un estado
// intermedio persistido.
func (m *InvoiceLifecycleManager) Update(ctx context.Context, actor entity.Actor, id string, draft *invoice.Draft) (inv *entity.Invoice, err error) {
	start := time.Now()
	defer func() { m.observe(OpUpdate, draft, err, start) }()

	if err := validateActor(actor); err != nil {
		return nil, err
	}
	old, err := m.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if old.Type == entity.InvoiceTypeFactoryReturn {
		return nil, domain.Invalid("type", "una devolución no se edita; se elimina y se genera de nuevo desde el despacho")
	}
	if err := m.ensureNoReturn(ctx, old); err != nil {
		return nil, err
	}
	if draft != nil && draft.Version != 0 && draft.Version != old.Version {
		return nil, fmt.Errorf("%w: la factura %d está en la versión %d (se envió %d)",
			domain.ErrConflict, old.InvoiceNumber, old.Version, draft.Version)
	}
	if err := invoice.Validate(draft); err != nil {
		return nil, err
	}
	if draft.Type != old.Type {
		return nil, domain.Invalid("type", "no se puede cambiar el tipo de una factura")
	}

	oldDir, err := stock.DirectionFor(old.Type)
	if err != nil {
		return nil, err
	}
	deltas := stock.EffectOf(old.Lines, oldDir.Inverse())
	deltas.Add(draft.Lines(), oldDir)
	plan, err := m.planner.Plan(ctx, deltas)
	if err != nil {
		return nil, err
	}

	inv = old.Clone()
	inv.Lines = withSnapshots(draft.Lines(), plan.Items)
	inv.Notes = strings.TrimSpace(draft.Notes)
	inv.TotalAmount = draft.Total()
	inv.Version = old.Version + 1
	inv.UpdatedAt = time.Now().UTC()
	setParty(inv, draft)

	ops := append(plan.Ops, repository.SetInvoice(inv, old.Version))
	if err := m.store.AtomicBatch(ctx, ops); err != nil {
		return nil, err
	}
	m.observer.ObserveStockDeltas(deltas)
	m.log.Info().
		Str("invoice_id", inv.ID).
		Int64("invoice_number", inv.InvoiceNumber).
		Int64("version", inv.Version).
		Str("actor", actor.Username).
		Msg("factura actualizada")
	return inv, nil
}

// Delete revierte el efecto de la factura sobre el stock y elimina el documento en el mismo lote.
// Si la reversión falla el documento se conserva.
func (m *InvoiceLifecycleManager) Delete(ctx context.Context, actor entity.Actor, id string) (err error) {
	start := time.Now()
	invoiceType := ""
	defer func() { m.observeType(OpDelete, invoiceType, err, start) }()

	if err := validateActor(actor); err != nil {
		return err
	}
	old, err := m.load(ctx, id)
	if err != nil {
		return err
	}
	invoiceType = string(old.Type)
	if err := m.ensureNoReturn(ctx, old); err != nil {
		return err
	}

	dir, err := stock.DirectionFor(old.Type)
	if err != nil {
		return err
	}
	deltas := stock.EffectOf(old.Lines, dir.Inverse())
	plan, err := m.planner.Plan(ctx, deltas)
	if err != nil {
		return err
	}
	ops := append(plan.Ops, repository.DeleteInvoice(old.ID, old.Version))
	if err := m.store.AtomicBatch(ctx, ops); err != nil {
		return err
	}
	m.observer.ObserveStockDeltas(deltas)
	m.log.Info().
		Str("invoice_id", old.ID).
		Int64("invoice_number", old.InvoiceNumber).
		Str("type", string(old.Type)).
		Str("actor", actor.Username).
		Msg("factura eliminada")
	return nil
}

// Get obtiene una factura por ID.
func (m *InvoiceLifecycleManager) Get(ctx context.Context, id string) (*entity.Invoice, error) {
	return m.load(ctx, id)
}

// List lista facturas por número descendente.
func (m *InvoiceLifecycleManager) List(ctx context.Context, filter repository.InvoiceFilter) ([]*entity.Invoice, error) {
	if filter.Type != "" && !filter.Type.Valid() {
		return nil, domain.Invalid("type", "tipo de factura desconocido")
	}
	list, err := m.store.ListInvoices(ctx, filter)
	if err != nil {
		return nil, domain.Persistence("listar facturas", err)
	}
	return list, nil
}

func (m *InvoiceLifecycleManager) load(ctx context.Context, id string) (*entity.Invoice, error) {
	if strings.TrimSpace(id) == "" {
		return nil, domain.Invalid("id", "requerido")
	}
	inv, err := m.store.GetInvoice(ctx, id)
	if err != nil {
		return nil, domain.Persistence("leer factura", err)
	}
	if inv == nil {
		return nil, domain.NotFound("invoice", id)
	}
	return inv, nil
}

// persistNew asigna número justo antes de escribir. Si otro escritor tomó el mismo número
// (índice único) se vuelve a leer el máximo y se reintenta.
func persistNew(
	ctx context.Context,
	store repository.BatchWriter,
	numbers NumberAllocator,
	log zerolog.Logger,
	inv *entity.Invoice,
	stockOps []repository.BatchOp,
) error {
	for attempt := 1; ; attempt++ {
		number, err := numbers.NextNumber(ctx)
		if err != nil {
			return err
		}
		inv.InvoiceNumber = number
		ops := make([]repository.BatchOp, 0, len(stockOps)+1)
		ops = append(ops, stockOps...)
		ops = append(ops, repository.SetInvoice(inv, 0))
		err = store.AtomicBatch(ctx, ops)
		if err == nil {
			return nil
		}
		if !errors.Is(err, domain.ErrDuplicate) || attempt >= maxNumberAttempts {
			return err
		}
		log.Warn().
			Int64("invoice_number", number).
			Int("attempt", attempt).
			Msg("número de factura tomado por otro escritor, reintentando")
	}
}

func (m *InvoiceLifecycleManager) observe(op string, draft *invoice.Draft, err error, start time.Time) {
	t := ""
	if draft != nil {
		t = string(draft.Type)
	}
	m.observeType(op, t, err, start)
}

func (m *InvoiceLifecycleManager) observeType(op, invoiceType string, err error, start time.Time) {
	m.observer.ObserveInvoiceOp(op, invoiceType, err, time.Since(start))
	if err != nil {
		m.log.Debug().Err(err).Str("op", op).Str("type", invoiceType).Msg("operación de factura rechazada")
	}
}

func validateActor(actor entity.Actor) error {
	if strings.TrimSpace(actor.ID) == "" || strings.TrimSpace(actor.Username) == "" {
		return domain.ErrUnauthorized
	}
	return nil
}

// ensureNoReturn falla con ErrConflict si old es un despacho que ya tiene devolución.
func (m *InvoiceLifecycleManager) ensureNoReturn(ctx context.Context, old *entity.Invoice) error {
	if old.Type != entity.InvoiceTypeFactoryDispatch {
		return nil
	}
	returns, err := m.store.ListInvoices(ctx, repository.InvoiceFilter{
		Type:            entity.InvoiceTypeFactoryReturn,
		SourceInvoiceID: old.ID,
		Limit:           1,
	})
	if err != nil {
		return domain.Persistence("buscar devoluciones del despacho", err)
	}
	if len(returns) > 0 {
		return fmt.Errorf("%w: el despacho %d tiene la devolución %d",
			domain.ErrConflict, old.InvoiceNumber, returns[0].InvoiceNumber)
	}
	return nil
}

// setParty copia solo los campos de parte que corresponden al tipo. Las devoluciones conservan
// las partes copiadas del despacho.
func setParty(inv *entity.Invoice, d *invoice.Draft) {
	if inv.Type == entity.InvoiceTypeFactoryReturn {
		return
	}
	inv.ClientName, inv.ClientPhone, inv.SupplierName, inv.Recipient = "", "", "", ""
	switch inv.Type {
	case entity.InvoiceTypeSale:
		inv.ClientName = strings.TrimSpace(d.ClientName)
		inv.ClientPhone = invoice.NormalizePhone(d.ClientPhone)
	case entity.InvoiceTypePurchase:
		inv.SupplierName = strings.TrimSpace(d.SupplierName)
	case entity.InvoiceTypeFactoryDispatch:
		inv.Recipient = strings.TrimSpace(d.Recipient)
	}
}

// withSnapshots completa nombre, código y color de las líneas que no los traen, tomándolos
// del item resuelto. Las líneas que ya traen la copia la conservan.
func withSnapshots(lines []entity.InvoiceLine, items map[string]*entity.StockItem) []entity.InvoiceLine {
	for i := range lines {
		item := items[lines[i].StockItemID]
		if item == nil {
			continue
		}
		if lines[i].ItemName == "" {
			lines[i].ItemName = item.Name
		}
		if lines[i].ItemCode == "" {
			lines[i].ItemCode = item.Code
		}
		if lines[i].Color == "" {
			lines[i].Color = item.Color
		}
	}
	return lines
}
