// Package database provides the optional database collaborator inspected by
// the diagnostic endpoint.  The collaborator may be absent (no DSN
// configured) or present but uninitialized (the connection failed at
// startup); Handle carries both facts.
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/apex/log"
	"github.com/go-sql-driver/mysql"

	"github.com/iliyamo/care-assistant-api/internal/config"
)

// ErrNotConfigured is returned by Resolve when no DSN is set.
var ErrNotConfigured = errors.New("database not configured")

// Catalog is a named database whose collections can be listed.
type Catalog interface {
	Name() string
	ListCollections(ctx context.Context) ([]string, error)
}

// Handle is the startup-time resolution of the collaborator.  Installed is
// false when database support is not configured at all.  Catalog is nil when
// support is configured but the connection could not be initialized.
type Handle struct {
	Installed bool
	Catalog   Catalog
}

// MySQLCatalog lists the tables of the schema a *sql.DB is connected to.
type MySQLCatalog struct {
	db   *sql.DB
	name string
}

// NewMySQLCatalog wraps db.  name is reported by Name.
func NewMySQLCatalog(db *sql.DB, name string) *MySQLCatalog {
	return &MySQLCatalog{db: db, name: name}
}

func (c *MySQLCatalog) Name() string { return c.name }

// ListCollections returns table names in the order the server reports them.
func (c *MySQLCatalog) ListCollections(ctx context.Context) ([]string, error) {
	rows, err := c.db.QueryContext(ctx, "SHOW TABLES")
	if err != nil {
		return nil, fmt.Errorf("show tables: %w", err)
	}
	defer rows.Close()

	names := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan table name: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tables: %w", err)
	}
	return names, nil
}

// Close releases the underlying pool.
func (c *MySQLCatalog) Close() error { return c.db.Close() }

// Resolve builds the Handle from cfg.  A connection failure is not fatal:
// it yields an installed handle without a catalog together with the error,
// which callers only log.
func Resolve(ctx context.Context, cfg config.Config) (Handle, error) {
	if cfg.DatabaseURL == "" {
		return Handle{}, ErrNotConfigured
	}
	db, err := Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return Handle{Installed: true}, fmt.Errorf("open database: %w", err)
	}
	name := cfg.DatabaseName
	if name == "" {
		name = schemaName(cfg.DatabaseURL)
	}
	log.WithField("database", name).Info("database.connected")
	return Handle{Installed: true, Catalog: NewMySQLCatalog(db, name)}, nil
}

func schemaName(dsn string) string {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return ""
	}
	return cfg.DBName
}
