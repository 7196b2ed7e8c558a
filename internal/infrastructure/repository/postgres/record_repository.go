package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/kirillkom/certextract/internal/core/coerce"
	"github.com/kirillkom/certextract/internal/core/domain"
	"github.com/kirillkom/certextract/internal/infrastructure/resilience"
)

// RecordRepository stores typed certificate rows, one table per format.
type RecordRepository struct {
	db       *sql.DB
	executor *resilience.Executor
	logger   *slog.Logger
	now      func() time.Time
}

func NewRecordRepository(db *sql.DB, executor *resilience.Executor, logger *slog.Logger) *RecordRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &RecordRepository{
		db:       db,
		executor: executor,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// EnsureSchema creates the table of every known format.
func (r *RecordRepository) EnsureSchema(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, schemaLockKey); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}
	for _, format := range domain.KnownFormats {
		schema, _ := domain.Schema(format)
		if _, err := tx.ExecContext(ctx, createTableDDL(schema)); err != nil {
			return fmt.Errorf("create table %s: %w", schema.Table, err)
		}
		if _, err := tx.ExecContext(ctx, addDocumentColumnDDL(schema)); err != nil {
			return fmt.Errorf("add document column to %s: %w", schema.Table, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}

// InsertRows writes all rows in one transaction with a shared created_at.
func (r *RecordRepository) InsertRows(ctx context.Context, schema domain.FormatSchema, rows []coerce.Row) (int, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	query := insertQuery(schema)
	createdAt := r.now()

	err := execute(ctx, r.executor, "postgres.records.insert", func(ctx context.Context) error {
		return r.insertTx(ctx, query, createdAt, rows)
	})
	if err != nil {
		return 0, wrapTemporaryIfNeeded("insert "+schema.Table, err)
	}

	r.logger.Debug("records_inserted", "table", schema.Table, "rows", len(rows))
	return len(rows), nil
}

// InsertDocumentRow stores the typed row of an ingested document at most
// once. A repeated call for the same document id reports false.
func (r *RecordRepository) InsertDocumentRow(ctx context.Context, schema domain.FormatSchema, documentID string, row coerce.Row) (bool, error) {
	if strings.TrimSpace(documentID) == "" {
		return false, fmt.Errorf("insert %s: empty document id", schema.Table)
	}
	query := documentInsertQuery(schema)
	args := make([]any, 0, len(row.Values)+2)
	args = append(args, row.Values...)
	args = append(args, documentID, r.now())

	var inserted bool
	err := execute(ctx, r.executor, "postgres.records.insert_document", func(ctx context.Context) error {
		res, err := r.db.ExecContext(ctx, query, args...)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		inserted = n > 0
		return nil
	})
	if err != nil {
		return false, wrapTemporaryIfNeeded("insert "+schema.Table, err)
	}

	if !inserted {
		r.logger.Info("record_already_stored", "table", schema.Table, "document_id", documentID)
	}
	return inserted, nil
}

func (r *RecordRepository) insertTx(ctx context.Context, query string, createdAt time.Time, rows []coerce.Row) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin insert tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, row := range rows {
		args := make([]any, 0, len(row.Values)+1)
		args = append(args, row.Values...)
		args = append(args, createdAt)
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("insert row %d: %w", i+1, err)
		}
	}
	return tx.Commit()
}

func insertQuery(schema domain.FormatSchema) string {
	return buildInsert(schema, "created_at")
}

func documentInsertQuery(schema domain.FormatSchema) string {
	return buildInsert(schema, "document_id", "created_at") + " ON CONFLICT (document_id) DO NOTHING"
}

func buildInsert(schema domain.FormatSchema, trailing ...string) string {
	columns := make([]string, 0, len(schema.Fields)+len(trailing))
	for _, f := range schema.Fields {
		columns = append(columns, pgx.Identifier{f.Column}.Sanitize())
	}
	columns = append(columns, trailing...)

	params := make([]string, len(columns))
	for i := range columns {
		params[i] = fmt.Sprintf("$%d", i+1)
	}

	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		pgx.Identifier{schema.Table}.Sanitize(),
		strings.Join(columns, ", "),
		strings.Join(params, ", "),
	)
}

func createTableDDL(schema domain.FormatSchema) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "CREATE TABLE IF NOT EXISTS %s (\n\tid BIGSERIAL PRIMARY KEY", pgx.Identifier{schema.Table}.Sanitize())
	for _, f := range schema.Fields {
		fmt.Fprintf(&sb, ",\n\t%s %s", pgx.Identifier{f.Column}.Sanitize(), sqlType(f.Type))
	}
	sb.WriteString(",\n\tdocument_id TEXT UNIQUE")
	sb.WriteString(",\n\tcreated_at TIMESTAMPTZ NOT NULL DEFAULT now()\n)")
	return sb.String()
}

// addDocumentColumnDDL upgrades tables created before rows were keyed by
// document. Imported rows leave the column NULL.
func addDocumentColumnDDL(schema domain.FormatSchema) string {
	return fmt.Sprintf("ALTER TABLE %s ADD COLUMN IF NOT EXISTS document_id TEXT UNIQUE", pgx.Identifier{schema.Table}.Sanitize())
}

func sqlType(t domain.ColumnType) string {
	switch t {
	case domain.ColumnDate:
		return "DATE"
	case domain.ColumnInt:
		return "BIGINT"
	case domain.ColumnFloat:
		return "DOUBLE PRECISION"
	case domain.ColumnBit:
		return "BOOLEAN NOT NULL DEFAULT false"
	default:
		return "TEXT"
	}
}
