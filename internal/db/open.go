package db

import (
	"context"
	"fmt"

	"github.com/hackgods/appointment-booking/internal/booking"
	"github.com/hackgods/appointment-booking/internal/config"
)

// OpenRepository connects the storage driver selected by cfg.StoreDriver.
// The returned close function releases the connection pool.
func OpenRepository(ctx context.Context, cfg config.Config) (booking.Repository, func(context.Context) error, error) {
	switch cfg.StoreDriver {
	case config.DriverPostgres:
		pool, err := ConnectPostgres(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, nil, err
		}
		if err := MigratePostgres(ctx, pool); err != nil {
			pool.Close()
			return nil, nil, err
		}
		closeFn := func(context.Context) error {
			pool.Close()
			return nil
		}
		return booking.NewPgRepository(pool), closeFn, nil

	case config.DriverMongo:
		client, err := ConnectMongo(ctx, cfg.MongoURI)
		if err != nil {
			return nil, nil, err
		}
		return booking.NewMongoRepository(client.Database(cfg.MongoDatabase)), client.Disconnect, nil

	default:
		return nil, nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
}
