// Package pgmigrate applies embedded goose migrations over a pgx pool.
package pgmigrate

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// ErrMigrate wraps every failure returned by Up.
var ErrMigrate = errors.New("pgmigrate: failed to apply migrations")

// goose keeps dialect, table name and base FS in package globals.
var mu sync.Mutex

// Source is one module's migration set.
type Source struct {
	// FS holds the .sql files.
	FS fs.FS
	// Dir is the directory inside FS.
	Dir string
	// Table records applied versions. Each module keeps its own.
	Table string
}

// Up applies every pending migration of src.
func Up(ctx context.Context, pool *pgxpool.Pool, src Source) error {
	mu.Lock()
	defer mu.Unlock()

	db := stdlib.OpenDBFromPool(pool)
	defer func() {
		if err := db.Close(); err != nil {
			slog.ErrorContext(ctx, "failed to close migration connection", "error", err)
		}
	}()

	goose.SetLogger(slogAdapter{ctx: ctx})
	goose.SetBaseFS(src.FS)
	defer goose.SetBaseFS(nil)

	if src.Table != "" {
		goose.SetTableName(src.Table)
	}

	if err := goose.SetDialect("postgres"); err != nil {
		return errors.Join(ErrMigrate, err)
	}

	if err := goose.UpContext(ctx, db, src.Dir); err != nil {
		return errors.Join(ErrMigrate, err)
	}

	return nil
}

type slogAdapter struct {
	ctx context.Context
}

func (a slogAdapter) Fatalf(format string, v ...any) {
	slog.ErrorContext(a.ctx, fmt.Sprintf(format, v...))
}

func (a slogAdapter) Printf(format string, v ...any) {
	slog.InfoContext(a.ctx, fmt.Sprintf(format, v...))
}
