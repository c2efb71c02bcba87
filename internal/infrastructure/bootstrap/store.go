package bootstrap

import (
	"context"
	"fmt"

	"github.com/jhoicas/bodega-api/internal/domain/repository"
	"github.com/jhoicas/bodega-api/internal/infrastructure/memory"
	"github.com/jhoicas/bodega-api/internal/infrastructure/mongodb"
	"github.com/jhoicas/bodega-api/internal/infrastructure/postgres"
	"github.com/jhoicas/bodega-api/internal/infrastructure/resilience"
	"github.com/jhoicas/bodega-api/pkg/config"
	"github.com/rs/zerolog"
)

// OpenStore abre el almacén según STORE_DRIVER y lo envuelve en el circuit breaker si está
// habilitado. closeFn libera conexiones; siempre es distinto de nil.
func OpenStore(ctx context.Context, cfg *config.Config, log zerolog.Logger) (store repository.TransactionalStore, closeFn func(), err error) {
	closeFn = func() {}
	switch cfg.Store.Driver {
	case config.StoreDriverPostgres:
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			return nil, closeFn, fmt.Errorf("postgres: %w", err)
		}
		if cfg.DB.Migrate {
			if err := postgres.Migrate(ctx, pool); err != nil {
				pool.Close()
				return nil, closeFn, fmt.Errorf("postgres: %w", err)
			}
		}
		store, closeFn = postgres.NewStore(pool), pool.Close
	case config.StoreDriverMongoDB:
		client, err := mongodb.Connect(ctx, cfg.Mongo)
		if err != nil {
			return nil, closeFn, fmt.Errorf("mongodb: %w", err)
		}
		db := client.Database(cfg.Mongo.Database)
		if err := mongodb.EnsureIndexes(ctx, db); err != nil {
			_ = client.Disconnect(ctx)
			return nil, closeFn, fmt.Errorf("mongodb: %w", err)
		}
		store = mongodb.NewStore(client, db)
		closeFn = func() { _ = client.Disconnect(context.Background()) }
	case config.StoreDriverMemory:
		store = memory.NewStore()
	default:
		return nil, closeFn, fmt.Errorf("driver de almacén %q no soportado", cfg.Store.Driver)
	}

	log.Info().Str("driver", cfg.Store.Driver).Bool("breaker", cfg.Breaker.Enabled).Msg("almacén de documentos listo")
	if cfg.Breaker.Enabled {
		store = resilience.NewBreakerStore(store, cfg.Breaker, log)
	}
	return store, closeFn, nil
}
