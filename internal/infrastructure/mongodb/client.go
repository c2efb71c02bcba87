package mongodb

import (
	"context"
	"fmt"

	"github.com/jhoicas/bodega-api/pkg/config"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Nombres de colecciones.
const (
	CollectionStockItems = "warehouseItems"
	CollectionInvoices   = "invoices"
)

// Connect abre el cliente y verifica la conexión con un ping al primario.
// Las transacciones multi-documento requieren que el servidor sea un replica set.
func Connect(ctx context.Context, cfg config.MongoConfig) (*mongo.Client, error) {
	opts := options.Client().
		ApplyURI(cfg.URI).
		SetConnectTimeout(cfg.ConnectTimeout)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("conectar MongoDB: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping MongoDB: %w", err)
	}
	return client, nil
}

// EnsureIndexes crea los índices que el almacén necesita. El índice único sobre invoiceNumber
// es el que detecta dos facturas creadas con el mismo número.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(CollectionInvoices).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "invoiceNumber", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("ux_invoice_number"),
		},
		{
			Keys:    bson.D{{Key: "type", Value: 1}, {Key: "invoiceNumber", Value: -1}},
			Options: options.Index().SetName("idx_type_number"),
		},
		{
			Keys:    bson.D{{Key: "sourceInvoiceId", Value: 1}},
			Options: options.Index().SetName("idx_source_invoice").SetSparse(true),
		},
	})
	if err != nil {
		return fmt.Errorf("índices de facturas: %w", err)
	}
	_, err = db.Collection(CollectionStockItems).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "warehouseId", Value: 1}, {Key: "itemCode", Value: 1}},
		Options: options.Index().SetName("idx_warehouse_code"),
	})
	if err != nil {
		return fmt.Errorf("índices de items: %w", err)
	}
	return nil
}
