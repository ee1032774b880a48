package credentials

import (
	"context"
	"fmt"
	"io"

	"cv-improver/internal/shared/config"
	"cv-improver/internal/shared/storage/db"
	"cv-improver/internal/shared/telemetry"
)

// Open builds the store selected by CREDENTIAL_STORE, running migrations for
// SQL backends and sealing values when CREDENTIAL_SECRET is set. The returned
// closer releases the backing connection.
func Open(ctx context.Context, cfg config.Config, opts db.Options) (Store, io.Closer, error) {
	var (
		store  Store
		closer io.Closer = nopCloser{}
	)
	switch cfg.CredentialStore {
	case config.StorePostgres:
		database, err := db.GetSingleton(ctx, cfg.DatabaseURL, opts)
		if err != nil {
			return nil, nil, err
		}
		if err := db.RunMigrations(ctx, database, db.DriverPostgres); err != nil {
			return nil, nil, fmt.Errorf("migrate: %w", err)
		}
		store, closer = NewPGStore(database), database
	case config.StoreSQLite:
		database, err := db.OpenSQLite(ctx, cfg.SQLitePath, opts)
		if err != nil {
			return nil, nil, err
		}
		if err := db.RunMigrations(ctx, database, db.DriverSQLite); err != nil {
			database.Close()
			return nil, nil, fmt.Errorf("migrate: %w", err)
		}
		store, closer = NewSQLiteStore(database), database
	case config.StoreRedis:
		client, err := DialRedis(ctx, cfg.RedisURL)
		if err != nil {
			return nil, nil, err
		}
		store, closer = NewRedisStore(client), client
	default:
		store = NewMemoryStore()
	}

	if cfg.CredentialSecret != "" {
		sealed, err := NewSealed(store, cfg.CredentialSecret)
		if err != nil {
			closer.Close()
			return nil, nil, err
		}
		store = sealed
	} else if cfg.CredentialStore != config.StoreMemory {
		telemetry.Warn("credentials.unsealed", map[string]any{"store": cfg.CredentialStore})
	}
	telemetry.Info("credentials.open", map[string]any{
		"store":  cfg.CredentialStore,
		"sealed": cfg.CredentialSecret != "",
	})
	return store, closer, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
