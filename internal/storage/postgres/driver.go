package postgres

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"github.com/Masterminds/squirrel"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/skybi/tenote/internal/storage"
)

//go:embed migrations/*.sql
var migrations embed.FS

// DefaultNamespace is the row namespace used if no other one is configured
const DefaultNamespace = "default"

const table = "session_entries"

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

// Driver represents the PostgreSQL session store driver.
// Several clients may share one database by using different namespaces.
type Driver struct {
	dsn       string
	namespace string
	db        *pgxpool.Pool
}

var _ storage.SessionStore = (*Driver)(nil)

// New creates a new empty PostgreSQL session store driver.
// Use Initialize to open the database connection.
func New(dsn, namespace string) *Driver {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	return &Driver{
		dsn:       dsn,
		namespace: namespace,
	}
}

// Initialize migrates the database and opens the connection pool
func (driver *Driver) Initialize(ctx context.Context) error {
	// Perform SQL migrations
	source, err := iofs.New(migrations, "migrations")
	if err != nil {
		return err
	}
	migrator, err := migrate.NewWithSourceInstance("iofs", source, driver.dsn)
	if err != nil {
		return err
	}
	defer migrator.Close()
	if err := migrator.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}

	// Initialize the database connection pool
	pool, err := pgxpool.Connect(ctx, driver.dsn)
	if err != nil {
		return err
	}
	driver.db = pool
	return nil
}

// Get retrieves the value stored under key
func (driver *Driver) Get(ctx context.Context, key string) (string, bool, error) {
	if driver.db == nil {
		return "", false, storage.ErrNotInitialized
	}

	sql, args, err := psql.Select("value").
		From(table).
		Where(squirrel.Eq{"namespace": driver.namespace, "key": key}).
		ToSql()
	if err != nil {
		return "", false, err
	}

	var value string
	if err := driver.db.QueryRow(ctx, sql, args...).Scan(&value); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("get session key %q: %w", key, err)
	}
	return value, true, nil
}

// Set stores value under key
func (driver *Driver) Set(ctx context.Context, key, value string) error {
	if driver.db == nil {
		return storage.ErrNotInitialized
	}

	sql, args, err := psql.Insert(table).
		Columns("namespace", "key", "value").
		Values(driver.namespace, key, value).
		Suffix("ON CONFLICT (namespace, key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()").
		ToSql()
	if err != nil {
		return err
	}
	if _, err := driver.db.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("set session key %q: %w", key, err)
	}
	return nil
}

// ClearAll deletes every key of the namespace in a single statement
func (driver *Driver) ClearAll(ctx context.Context) error {
	if driver.db == nil {
		return storage.ErrNotInitialized
	}

	sql, args, err := psql.Delete(table).
		Where(squirrel.Eq{"namespace": driver.namespace}).
		ToSql()
	if err != nil {
		return err
	}
	if _, err := driver.db.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// Close closes the database connection
func (driver *Driver) Close() {
	if driver.db != nil {
		driver.db.Close()
		driver.db = nil
	}
}
