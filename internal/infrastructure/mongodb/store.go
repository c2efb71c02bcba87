package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jhoicas/bodega-api/internal/domain"
	"github.com/jhoicas/bodega-api/internal/domain/entity"
	"github.com/jhoicas/bodega-api/internal/domain/repository"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var _ repository.TransactionalStore = (*Store)(nil)

// Store implementación de TransactionalStore sobre MongoDB. Cada AtomicBatch corre en una
// transacción de sesión; los incrementos usan $inc con un filtro que impide quedar en negativo.
type Store struct {
	client   *mongo.Client
	items    *mongo.Collection
	invoices *mongo.Collection
	now      func() time.Time
}

// NewStore construye el adaptador sobre la base indicada.
func NewStore(client *mongo.Client, db *mongo.Database) *Store {
	return &Store{
		client:   client,
		items:    db.Collection(CollectionStockItems),
		invoices: db.Collection(CollectionInvoices),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// GetStockItem obtiene un item por ID. (nil, nil) si no existe.
func (s *Store) GetStockItem(ctx context.Context, id string) (*entity.StockItem, error) {
	var doc stockItemDoc
	err := s.items.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("get stock item: %w", err)
	}
	return doc.toEntity(), nil
}

// GetStockItems obtiene varios items con un $in; los inexistentes no aparecen.
func (s *Store) GetStockItems(ctx context.Context, ids []string) (map[string]*entity.StockItem, error) {
	out := make(map[string]*entity.StockItem, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	cursor, err := s.items.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, fmt.Errorf("get stock items: %w", err)
	}
	var docs []stockItemDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode stock items: %w", err)
	}
	for _, d := range docs {
		out[d.ID] = d.toEntity()
	}
	return out, nil
}

// ListStockItems lista items (de una bodega si warehouseID no es vacío) ordenados por código.
func (s *Store) ListStockItems(ctx context.Context, warehouseID string) ([]*entity.StockItem, error) {
	filter := bson.M{}
	if warehouseID != "" {
		filter["warehouseId"] = warehouseID
	}
	opts := options.Find().SetSort(bson.D{{Key: "itemCode", Value: 1}, {Key: "_id", Value: 1}})
	cursor, err := s.items.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("list stock items: %w", err)
	}
	var docs []stockItemDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode stock items: %w", err)
	}
	list := make([]*entity.StockItem, 0, len(docs))
	for _, d := range docs {
		list = append(list, d.toEntity())
	}
	return list, nil
}

// GetInvoice obtiene una factura por ID. (nil, nil) si no existe.
func (s *Store) GetInvoice(ctx context.Context, id string) (*entity.Invoice, error) {
	var doc invoiceDoc
	err := s.invoices.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("get invoice: %w", err)
	}
	return doc.toEntity(), nil
}

// ListInvoices lista facturas por número descendente.
func (s *Store) ListInvoices(ctx context.Context, f repository.InvoiceFilter) ([]*entity.Invoice, error) {
	filter := bson.M{}
	if f.Type != "" {
		filter["type"] = string(f.Type)
	}
	if f.SourceInvoiceID != "" {
		filter["sourceInvoiceId"] = f.SourceInvoiceID
	}
	opts := options.Find().SetSort(bson.D{{Key: "invoiceNumber", Value: -1}})
	if f.Limit > 0 {
		opts.SetLimit(int64(f.Limit))
	}
	if f.Offset > 0 {
		opts.SetSkip(int64(f.Offset))
	}
	cursor, err := s.invoices.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}
	var docs []invoiceDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode invoices: %w", err)
	}
	list := make([]*entity.Invoice, 0, len(docs))
	for _, d := range docs {
		list = append(list, d.toEntity())
	}
	return list, nil
}

// MaxInvoiceNumber mayor número asignado; 0 si no hay facturas.
func (s *Store) MaxInvoiceNumber(ctx context.Context) (int64, error) {
	opts := options.FindOne().
		SetSort(bson.D{{Key: "invoiceNumber", Value: -1}}).
		SetProjection(bson.M{"invoiceNumber": 1})
	var doc struct {
		InvoiceNumber int64 `bson:"invoiceNumber"`
	}
	err := s.invoices.FindOne(ctx, bson.M{}, opts).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return 0, nil
		}
		return 0, fmt.Errorf("max invoice number: %w", err)
	}
	return doc.InvoiceNumber, nil
}

// AtomicBatch aplica las ops dentro de una transacción de sesión. Un error de dominio aborta
// la transacción y se devuelve tal cual.
func (s *Store) AtomicBatch(ctx context.Context, ops []repository.BatchOp) error {
	session, err := s.client.StartSession()
	if err != nil {
		return domain.Persistence("start session", err)
	}
	defer session.EndSession(ctx)

	now := s.now()
	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		for _, op := range ops {
			if err := s.apply(sc, op, now); err != nil {
				return nil, err
			}
		}
		return nil, nil
	})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: %v", domain.ErrDuplicate, err)
		}
		return domain.Persistence("mongo transaction", err)
	}
	return nil
}

func (s *Store) apply(ctx context.Context, op repository.BatchOp, now time.Time) error {
	switch op.Kind {
	case repository.OpSetStockItem:
		return s.upsertStockItem(ctx, op.StockItem, now)
	case repository.OpIncrementStock:
		return s.incrementStock(ctx, op.ID, op.Delta, now)
	case repository.OpSetInvoice:
		return s.setInvoice(ctx, op.Invoice, op.ExpectedVersion)
	case repository.OpDeleteInvoice:
		return s.deleteInvoice(ctx, op.ID, op.ExpectedVersion)
	}
	return domain.Invalid("op", fmt.Sprintf("tipo de op desconocido %d", op.Kind))
}

// upsertStockItem remainingQuantity y createdAt solo se escriben al insertar.
func (s *Store) upsertStockItem(ctx context.Context, item *entity.StockItem, now time.Time) error {
	if item == nil || item.ID == "" {
		return domain.Invalid("stock_item", "id requerido")
	}
	doc := newStockItemDoc(item)
	update := bson.M{
		"$set": bson.M{
			"itemName":         doc.Name,
			"itemCode":         doc.Code,
			"color":            doc.Color,
			"warehouseId":      doc.WarehouseID,
			"unitPrice":        doc.UnitPrice,
			"addedQuantity":    doc.AddedQuantity,
			"cartonsCount":     doc.CartonsCount,
			"bottlesPerCarton": doc.BottlesPerCarton,
			"singleBottles":    doc.SingleBottles,
			"updatedAt":        now,
		},
		"$setOnInsert": bson.M{
			"remainingQuantity": doc.RemainingQuantity,
			"createdAt":         now,
		},
	}
	_, err := s.items.UpdateOne(ctx, bson.M{"_id": item.ID}, update, options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("upsert stock item: %w", err)
	}
	return nil
}

func (s *Store) incrementStock(ctx context.Context, id string, delta int64, now time.Time) error {
	filter := bson.M{"_id": id, "remainingQuantity": bson.M{"$gte": -delta}}
	update := bson.M{
		"$inc": bson.M{"remainingQuantity": delta},
		"$set": bson.M{"updatedAt": now},
	}
	res, err := s.items.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("increment stock: %w", err)
	}
	if res.MatchedCount == 1 {
		return nil
	}
	var doc stockItemDoc
	err = s.items.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return domain.NotFound("stock_item", id)
		}
		return fmt.Errorf("read stock: %w", err)
	}
	return &domain.InsufficientStockError{ItemID: id, Requested: -delta, Available: doc.RemainingQuantity}
}

func (s *Store) setInvoice(ctx context.Context, inv *entity.Invoice, expectedVersion int64) error {
	if inv == nil || inv.ID == "" {
		return domain.Invalid("invoice", "id requerido")
	}
	doc := newInvoiceDoc(inv)
	if expectedVersion == 0 {
		if _, err := s.invoices.InsertOne(ctx, doc); err != nil {
			if mongo.IsDuplicateKeyError(err) {
				return fmt.Errorf("%w: factura %q o número %d ya existe", domain.ErrDuplicate, inv.ID, inv.InvoiceNumber)
			}
			return fmt.Errorf("insert invoice: %w", err)
		}
		return nil
	}
	res, err := s.invoices.ReplaceOne(ctx, bson.M{"_id": inv.ID, "version": expectedVersion}, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: número %d ya asignado", domain.ErrDuplicate, inv.InvoiceNumber)
		}
		return fmt.Errorf("replace invoice: %w", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("%w: versión de la factura %q cambió", domain.ErrConflict, inv.ID)
	}
	return nil
}

func (s *Store) deleteInvoice(ctx context.Context, id string, expectedVersion int64) error {
	res, err := s.invoices.DeleteOne(ctx, bson.M{"_id": id, "version": expectedVersion})
	if err != nil {
		return fmt.Errorf("delete invoice: %w", err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("%w: versión de la factura %q cambió", domain.ErrConflict, id)
	}
	return nil
}
