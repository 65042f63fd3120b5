package main

import (
	"context"
	"fmt"
	"io"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"tablesift/adapters/postgres"
	"tablesift/adapters/postgres/migrations"
	"tablesift/app"
	"tablesift/internal/errors"
)

// openDatabase connects to DATABASE_URL and checks the connection
func (e *env) openDatabase() (*sqlx.DB, error) {
	if err := e.cfg.RequireDatabase(); err != nil {
		return nil, err
	}

	db, err := sqlx.Connect("postgres", e.cfg.Database.URL)
	if err != nil {
		return nil, errors.DatabaseError("failed to connect to database", err)
	}
	return db, nil
}

// storageService opens the database, applies migrations and wires a full
// upload service. The returned func closes the connection.
func (e *env) storageService(ctx context.Context) (*app.UploadService, func(), error) {
	db, err := e.openDatabase()
	if err != nil {
		return nil, nil, err
	}
	if _, err := migrations.NewMigrator(db.DB).Up(ctx); err != nil {
		db.Close()
		return nil, nil, errors.Wrap(err, "database migration failed")
	}

	sink := postgres.NewTableSink(db, e.cfg.Database.Schema, e.cfg.Database.InsertBatchSize, e.logger)
	uploads := postgres.NewUploadRepository(db)
	svc := app.NewUploadService(e.loader(), sink, uploads, e.opts, e.logger)
	return svc, func() { db.Close() }, nil
}

func runMigrations(ctx context.Context, w io.Writer, db *sqlx.DB, statusOnly bool) error {
	m := migrations.NewMigrator(db.DB)
	if !statusOnly {
		applied, err := m.Up(ctx)
		if err != nil {
			return err
		}
		for _, v := range applied {
			fmt.Fprintf(w, "Applied migration: %s\n", v)
		}
	}

	status, err := m.Status(ctx)
	if err != nil {
		return err
	}
	appliedCount := 0
	for _, s := range status {
		state := "pending"
		if s.Applied {
			state = "applied"
			appliedCount++
		}
		fmt.Fprintf(w, "  %s: %s\n", s.Version, state)
	}
	fmt.Fprintf(w, "Summary: %d/%d migrations applied\n", appliedCount, len(status))
	return nil
}
