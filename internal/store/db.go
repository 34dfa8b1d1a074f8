package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"github.com/pawprintslab/pawtrail/internal/common"
)

// Supported database/sql driver names.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "pgx"
)

// IsPostgresDSN reports whether the DSN addresses a Postgres server rather
// than a local sqlite file. The single predicate keeps driver selection and
// "is this file ours to delete" decisions in agreement.
func IsPostgresDSN(dsn string) bool {
	return strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://")
}

// Open connects to the records database. A postgres:// (or postgresql://)
// DSN selects the pgx driver; anything else is treated as a sqlite file path.
func Open(ctx context.Context, dsn string, logger *slog.Logger) (*sql.DB, string, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if strings.TrimSpace(dsn) == "" {
		return nil, "", common.MissingPrerequisite("records DSN")
	}

	driver := DriverSQLite
	if IsPostgresDSN(dsn) {
		driver = DriverPostgres
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		logger.Error("store.open_failed", "driver", driver, "error", err)
		return nil, "", fmt.Errorf("open records db: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		logger.Error("store.ping_failed", "driver", driver, "error", err)
		return nil, "", fmt.Errorf("ping records db: %w", err)
	}

	logger.Info("store.connected", "driver", driver)
	return db, driver, nil
}

// rebind rewrites ? placeholders to $1..$n for the pgx driver. SQLite keeps
// the query as-is.
func rebind(driver, query string) string {
	if driver != DriverPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
