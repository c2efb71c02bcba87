package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jhoicas/bodega-api/internal/domain"
	"github.com/jhoicas/bodega-api/internal/domain/entity"
	"github.com/jhoicas/bodega-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

var _ repository.TransactionalStore = (*Store)(nil)

const stockItemColumns = `id, item_name, item_code, color, warehouse_id, remaining_quantity, unit_price,
	added_quantity, cartons_count, bottles_per_carton, single_bottles, created_at, updated_at`

const invoiceColumns = `id, type, invoice_number, details, client_name, client_phone, supplier_name,
	recipient, notes, total_amount, created_by_id, created_by_username, source_invoice_id, return_type,
	version, created_at, updated_at`

// Store implementación de TransactionalStore sobre PostgreSQL. Las lecturas usan el pool;
// cada AtomicBatch corre en una transacción.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore construye el adaptador.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// GetStockItem obtiene un item por ID. (nil, nil) si no existe.
func (s *Store) GetStockItem(ctx context.Context, id string) (*entity.StockItem, error) {
	query := `SELECT ` + stockItemColumns + ` FROM warehouse_items WHERE id = $1`
	item, err := scanStockItem(s.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get stock item: %w", err)
	}
	return item, nil
}

// GetStockItems obtiene varios items en una sola consulta; los inexistentes no aparecen.
func (s *Store) GetStockItems(ctx context.Context, ids []string) (map[string]*entity.StockItem, error) {
	out := make(map[string]*entity.StockItem, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	query := `SELECT ` + stockItemColumns + ` FROM warehouse_items WHERE id = ANY($1)`
	rows, err := s.pool.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("get stock items: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		item, err := scanStockItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan stock item: %w", err)
		}
		out[item.ID] = item
	}
	return out, rows.Err()
}

// ListStockItems lista items (de una bodega si warehouseID no es vacío) ordenados por código.
func (s *Store) ListStockItems(ctx context.Context, warehouseID string) ([]*entity.StockItem, error) {
	query := `SELECT ` + stockItemColumns + ` FROM warehouse_items
		WHERE ($1 = '' OR warehouse_id = $1)
		ORDER BY item_code, id`
	rows, err := s.pool.Query(ctx, query, warehouseID)
	if err != nil {
		return nil, fmt.Errorf("list stock items: %w", err)
	}
	defer rows.Close()
	var list []*entity.StockItem
	for rows.Next() {
		item, err := scanStockItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan stock item: %w", err)
		}
		list = append(list, item)
	}
	return list, rows.Err()
}

// GetInvoice obtiene una factura por ID. (nil, nil) si no existe.
func (s *Store) GetInvoice(ctx context.Context, id string) (*entity.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE id = $1`
	inv, err := scanInvoice(s.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get invoice: %w", err)
	}
	return inv, nil
}

// ListInvoices lista facturas por número descendente.
func (s *Store) ListInvoices(ctx context.Context, f repository.InvoiceFilter) ([]*entity.Invoice, error) {
	var (
		where []string
		args  []any
	)
	if f.Type != "" {
		args = append(args, string(f.Type))
		where = append(where, fmt.Sprintf("type = $%d", len(args)))
	}
	if f.SourceInvoiceID != "" {
		args = append(args, f.SourceInvoiceID)
		where = append(where, fmt.Sprintf("source_invoice_id = $%d", len(args)))
	}
	query := `SELECT ` + invoiceColumns + ` FROM invoices`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY invoice_number DESC`
	if f.Limit > 0 {
		args = append(args, f.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if f.Offset > 0 {
		args = append(args, f.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}
	defer rows.Close()
	var list []*entity.Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, fmt.Errorf("scan invoice: %w", err)
		}
		list = append(list, inv)
	}
	return list, rows.Err()
}

// MaxInvoiceNumber mayor número asignado; 0 si no hay facturas.
func (s *Store) MaxInvoiceNumber(ctx context.Context) (int64, error) {
	var max int64
	err := s.pool.QueryRow(ctx, `SELECT COALESCE(MAX(invoice_number), 0) FROM invoices`).Scan(&max)
	if err != nil {
		return 0, fmt.Errorf("max invoice number: %w", err)
	}
	return max, nil
}

// AtomicBatch ejecuta todas las ops en una transacción; ante cualquier error hace Rollback.
func (s *Store) AtomicBatch(ctx context.Context, ops []repository.BatchOp) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return domain.Persistence("begin transaction", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for _, op := range ops {
		if err := applyOp(ctx, tx, op); err != nil {
			return err
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return domain.Persistence("commit transaction", err)
	}
	return nil
}

func applyOp(ctx context.Context, q Querier, op repository.BatchOp) error {
	switch op.Kind {
	case repository.OpSetStockItem:
		return upsertStockItem(ctx, q, op.StockItem)
	case repository.OpIncrementStock:
		return incrementStock(ctx, q, op.ID, op.Delta)
	case repository.OpSetInvoice:
		return setInvoice(ctx, q, op.Invoice, op.ExpectedVersion)
	case repository.OpDeleteInvoice:
		return deleteInvoice(ctx, q, op.ID, op.ExpectedVersion)
	}
	return domain.Invalid("op", fmt.Sprintf("tipo de op desconocido %d", op.Kind))
}

// upsertStockItem nunca sobrescribe remaining_quantity ni created_at de un item existente.
func upsertStockItem(ctx context.Context, q Querier, item *entity.StockItem) error {
	if item == nil || item.ID == "" {
		return domain.Invalid("stock_item", "id requerido")
	}
	query := `
		INSERT INTO warehouse_items (` + stockItemColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, now(), now())
		ON CONFLICT (id) DO UPDATE SET
		    item_name          = EXCLUDED.item_name,
		    item_code          = EXCLUDED.item_code,
		    color              = EXCLUDED.color,
		    warehouse_id       = EXCLUDED.warehouse_id,
		    unit_price         = EXCLUDED.unit_price,
		    added_quantity     = EXCLUDED.added_quantity,
		    cartons_count      = EXCLUDED.cartons_count,
		    bottles_per_carton = EXCLUDED.bottles_per_carton,
		    single_bottles     = EXCLUDED.single_bottles,
		    updated_at         = now()`
	_, err := q.Exec(ctx, query,
		item.ID, item.Name, item.Code, nullIfEmpty(item.Color), item.WarehouseID,
		item.RemainingQuantity, item.UnitPrice, item.AddedQuantity, item.CartonsCount,
		item.BottlesPerCarton, item.SingleBottles,
	)
	if err != nil {
		if isCheckViolation(err) {
			return domain.Invalid("remaining_quantity", "no puede ser negativo")
		}
		return domain.Persistence("upsert stock item", err)
	}
	return nil
}

// incrementStock suma delta solo si el resultado no queda negativo. Si no se actualizó ninguna
// fila se distingue entre item inexistente y stock insuficiente.
func incrementStock(ctx context.Context, q Querier, id string, delta int64) error {
	tag, err := q.Exec(ctx, `
		UPDATE warehouse_items
		SET remaining_quantity = remaining_quantity + $2, updated_at = now()
		WHERE id = $1 AND remaining_quantity + $2 >= 0`, id, delta)
	if err != nil {
		return domain.Persistence("increment stock", err)
	}
	if tag.RowsAffected() == 1 {
		return nil
	}
	var available int64
	err = q.QueryRow(ctx, `SELECT remaining_quantity FROM warehouse_items WHERE id = $1`, id).Scan(&available)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.NotFound("stock_item", id)
		}
		return domain.Persistence("read stock", err)
	}
	return &domain.InsufficientStockError{ItemID: id, Requested: -delta, Available: available}
}

func setInvoice(ctx context.Context, q Querier, inv *entity.Invoice, expectedVersion int64) error {
	if inv == nil || inv.ID == "" {
		return domain.Invalid("invoice", "id requerido")
	}
	details, err := marshalLines(inv.Lines)
	if err != nil {
		return domain.Persistence("encode invoice details", err)
	}

	if expectedVersion == 0 {
		query := `INSERT INTO invoices (` + invoiceColumns + `)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`
		_, err = q.Exec(ctx, query,
			inv.ID, string(inv.Type), inv.InvoiceNumber, details,
			nullIfEmpty(inv.ClientName), nullIfEmpty(inv.ClientPhone), nullIfEmpty(inv.SupplierName),
			nullIfEmpty(inv.Recipient), nullIfEmpty(inv.Notes), inv.TotalAmount,
			inv.CreatedByID, inv.CreatedByUsername, nullIfEmpty(inv.SourceInvoiceID), nullIfEmpty(inv.ReturnType),
			inv.Version, inv.CreatedAt, inv.UpdatedAt,
		)
		if err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("%w: factura %q o número %d ya existe", domain.ErrDuplicate, inv.ID, inv.InvoiceNumber)
			}
			return domain.Persistence("insert invoice", err)
		}
		return nil
	}

	query := `
		UPDATE invoices
		SET details       = $3,
		    client_name   = $4,
		    client_phone  = $5,
		    supplier_name = $6,
		    recipient     = $7,
		    notes         = $8,
		    total_amount  = $9,
		    return_type   = $10,
		    version       = $11,
		    updated_at    = $12
		WHERE id = $1 AND version = $2`
	tag, err := q.Exec(ctx, query,
		inv.ID, expectedVersion, details,
		nullIfEmpty(inv.ClientName), nullIfEmpty(inv.ClientPhone), nullIfEmpty(inv.SupplierName),
		nullIfEmpty(inv.Recipient), nullIfEmpty(inv.Notes), inv.TotalAmount,
		nullIfEmpty(inv.ReturnType), inv.Version, inv.UpdatedAt,
	)
	if err != nil {
		return domain.Persistence("update invoice", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: versión de la factura %q cambió", domain.ErrConflict, inv.ID)
	}
	return nil
}

func deleteInvoice(ctx context.Context, q Querier, id string, expectedVersion int64) error {
	tag, err := q.Exec(ctx, `DELETE FROM invoices WHERE id = $1 AND version = $2`, id, expectedVersion)
	if err != nil {
		return domain.Persistence("delete invoice", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: versión de la factura %q cambió", domain.ErrConflict, id)
	}
	return nil
}

func scanStockItem(row pgx.Row) (*entity.StockItem, error) {
	var (
		it    entity.StockItem
		color *string
	)
	err := row.Scan(
		&it.ID, &it.Name, &it.Code, &color, &it.WarehouseID, &it.RemainingQuantity, &it.UnitPrice,
		&it.AddedQuantity, &it.CartonsCount, &it.BottlesPerCarton, &it.SingleBottles,
		&it.CreatedAt, &it.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	it.Color = derefStr(color)
	return &it, nil
}

func scanInvoice(row pgx.Row) (*entity.Invoice, error) {
	var inv entity.Invoice
	var invType string
	var details []byte
	var clientName, clientPhone, supplierName, recipient *string
	var notes, sourceInvoiceID, returnType *string
	err := row.Scan(
		&inv.ID, &invType, &inv.InvoiceNumber, &details,
		&clientName, &clientPhone, &supplierName, &recipient, &notes, &inv.TotalAmount,
		&inv.CreatedByID, &inv.CreatedByUsername, &sourceInvoiceID, &returnType,
		&inv.Version, &inv.CreatedAt, &inv.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	inv.Type = entity.InvoiceType(invType)
	inv.ClientName = derefStr(clientName)
	inv.ClientPhone = derefStr(clientPhone)
	inv.SupplierName = derefStr(supplierName)
	inv.Recipient = derefStr(recipient)
	inv.Notes = derefStr(notes)
	inv.SourceInvoiceID = derefStr(sourceInvoiceID)
	inv.ReturnType = derefStr(returnType)
	if inv.Lines, err = unmarshalLines(details); err != nil {
		return nil, fmt.Errorf("decode details: %w", err)
	}
	return &inv, nil
}

// lineRecord forma JSON de una línea en la columna details.
type lineRecord struct {
	StockItemID string          `json:"stockItemId"`
	ItemName    string          `json:"itemName,omitempty"`
	ItemCode    string          `json:"itemCode,omitempty"`
	Color       string          `json:"color,omitempty"`
	Quantity    int64           `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	Unit        string          `json:"unit,omitempty"`
	Notes       string          `json:"notes,omitempty"`
}

func marshalLines(lines []entity.InvoiceLine) ([]byte, error) {
	recs := make([]lineRecord, 0, len(lines))
	for _, l := range lines {
		recs = append(recs, lineRecord(l))
	}
	return json.Marshal(recs)
}

func unmarshalLines(b []byte) ([]entity.InvoiceLine, error) {
	if len(b) == 0 {
		return nil, nil
	}
	var recs []lineRecord
	if err := json.Unmarshal(b, &recs); err != nil {
		return nil, err
	}
	lines := make([]entity.InvoiceLine, 0, len(recs))
	for _, r := range recs {
		lines = append(lines, entity.InvoiceLine(r))
	}
	return lines, nil
}
