package postgres

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"tablesift/domain/grid"
	"tablesift/domain/table"
	"tablesift/internal"
	"tablesift/internal/errors"
	"tablesift/internal/ident"
	"tablesift/ports"
)

const (
	TypeNumeric = "DOUBLE PRECISION"
	TypeText    = "TEXT"

	// postgres caps bind parameters per statement at 65535
	maxParams = 65535
)

// tableSink writes clean tables into one schema, one SQL table each
type tableSink struct {
	db        *sqlx.DB
	schema    string
	batchSize int
	logger    *internal.Logger
}

// NewTableSink creates a sink storing tables in schema. Rows are inserted
// batchSize at a time.
func NewTableSink(db *sqlx.DB, schema string, batchSize int, logger *internal.Logger) ports.TableSink {
	if logger == nil {
		logger = internal.Discard
	}
	if batchSize < 1 {
		batchSize = 1
	}
	return &tableSink{db: db, schema: schema, batchSize: batchSize, logger: logger.Named("sink")}
}

// EnsureSchema creates the target schema when missing
func (s *tableSink) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "CREATE SCHEMA IF NOT EXISTS "+pq.QuoteIdentifier(s.schema)); err != nil {
		return errors.DatabaseError("failed to create schema "+s.schema, err)
	}
	return nil
}

// ReplaceAll drops every base table of the schema and writes tables in
// their place, all in one transaction. Any failure rolls the schema back to
// its previous contents. It returns the names of the tables dropped.
func (s *tableSink) ReplaceAll(ctx context.Context, tables []table.CleanTable) ([]string, error) {
	for _, t := range tables {
		if t.IsEmpty() {
			return nil, errors.InvalidInput("table " + t.Name + " has no data")
		}
	}
	start := time.Now()

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, errors.DatabaseError("failed to begin transaction", err)
	}
	defer tx.Rollback()

	dropped, err := s.clearSchema(ctx, tx)
	if err != nil {
		return nil, err
	}
	for _, t := range tables {
		if err := s.writeTable(ctx, tx, t); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, errors.DatabaseError("failed to commit upload tables", err)
	}
	s.logger.Info("replaced %d tables with %d in schema %s (%.2fms)", len(dropped), len(tables), s.schema, internal.Elapsed(start))
	return dropped, nil
}

func (s *tableSink) clearSchema(ctx context.Context, tx *sqlx.Tx) ([]string, error) {
	var names []string
	err := tx.SelectContext(ctx, &names, `SELECT table_name FROM information_schema.tables
		WHERE table_schema = $1 AND table_type = 'BASE TABLE'
		ORDER BY table_name`, s.schema)
	if err != nil {
		return nil, errors.DatabaseError("failed to list tables", err)
	}
	for _, name := range names {
		if _, err := tx.ExecContext(ctx, "DROP TABLE IF EXISTS "+s.qualified(name)+" CASCADE"); err != nil {
			return nil, errors.DatabaseError("failed to drop table "+name, err)
		}
	}
	return names, nil
}

// writeTable creates t from its columns and inserts every row in batches
func (s *tableSink) writeTable(ctx context.Context, tx *sqlx.Tx, t table.CleanTable) error {
	types := ColumnTypes(t)
	columns := columnIdentifiers(t.Columns)

	if _, err := tx.ExecContext(ctx, "DROP TABLE IF EXISTS "+s.qualified(t.Name)); err != nil {
		return errors.DatabaseError("failed to drop table "+t.Name, err)
	}
	if _, err := tx.ExecContext(ctx, createStatement(s.qualified(t.Name), columns, types)); err != nil {
		return errors.DatabaseError("failed to create table "+t.Name, err)
	}

	batch := s.batchSize
	if limit := maxParams / t.ColumnCount(); batch > limit {
		batch = limit
	}
	for lo := 0; lo < t.RowCount(); lo += batch {
		hi := lo + batch
		if hi > t.RowCount() {
			hi = t.RowCount()
		}
		query, args := insertStatement(s.qualified(t.Name), columns, types, t.Rows[lo:hi])
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return errors.DatabaseError(fmt.Sprintf("failed to insert rows %d-%d into %s", lo, hi, t.Name), err)
		}
	}
	s.logger.Debug("stored %s (%d rows, %d columns)", t.Name, t.RowCount(), t.ColumnCount())
	return nil
}

// columnIdentifiers fits column names into the identifier length limit.
// Names that collide once truncated get the smallest unused "_k" suffix,
// shortening the stem so the suffixed name still fits.
func columnIdentifiers(columns []string) []string {
	out := make([]string, len(columns))
	used := make(map[string]bool, len(columns))
	for j, col := range columns {
		name := ident.Truncate(col, ident.MaxLength)
		for k := 1; used[name]; k++ {
			suffix := "_" + strconv.Itoa(k)
			name = ident.Truncate(col, ident.MaxLength-len(suffix)) + suffix
		}
		used[name] = true
		out[j] = name
	}
	return out
}

func (s *tableSink) qualified(name string) string {
	return pq.QuoteIdentifier(s.schema) + "." + pq.QuoteIdentifier(name)
}

// ColumnTypes picks DOUBLE PRECISION for columns whose non-empty cells are
// all numbers and TEXT for everything else
func ColumnTypes(t table.CleanTable) []string {
	types := make([]string, t.ColumnCount())
	for j := range t.Columns {
		types[j] = TypeNumeric
		for _, c := range t.Column(j) {
			if !c.IsEmpty() && c.Kind() != grid.KindNumber {
				types[j] = TypeText
				break
			}
		}
	}
	return types
}

func createStatement(qualified string, columns, types []string) string {
	defs := make([]string, len(columns))
	for j, col := range columns {
		defs[j] = pq.QuoteIdentifier(col) + " " + types[j]
	}
	return "CREATE TABLE " + qualified + " (" + strings.Join(defs, ", ") + ")"
}

func insertStatement(qualified string, columns, types []string, rows [][]grid.Cell) (string, []interface{}) {
	quoted := make([]string, len(columns))
	for j, col := range columns {
		quoted[j] = pq.QuoteIdentifier(col)
	}

	var b strings.Builder
	b.WriteString("INSERT INTO " + qualified + " (" + strings.Join(quoted, ", ") + ") VALUES ")

	args := make([]interface{}, 0, len(rows)*len(columns))
	for i, row := range rows {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteByte('(')
		for j, c := range row {
			if j > 0 {
				b.WriteString(", ")
			}
			args = append(args, sqlValue(c, types[j]))
			fmt.Fprintf(&b, "$%d", len(args))
		}
		b.WriteByte(')')
	}
	return b.String(), args
}

// sqlValue maps a cell to its driver value; empty, absent and non-finite cells become NULL
func sqlValue(c grid.Cell, typ string) interface{} {
	if c.IsEmpty() || c.IsNonFinite() {
		return nil
	}
	if typ == TypeNumeric {
		return c.AsNumber()
	}
	return c.String()
}
