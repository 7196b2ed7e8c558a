package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/kirillkom/certextract/internal/core/domain"
	"github.com/kirillkom/certextract/internal/infrastructure/resilience"
)

type DocumentRepository struct {
	db       *sql.DB
	executor *resilience.Executor
}

// NewDocumentRepository returns a repository; executor may be nil.
func NewDocumentRepository(db *sql.DB, executor *resilience.Executor) *DocumentRepository {
	return &DocumentRepository{db: db, executor: executor}
}

func OpenDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}

func (r *DocumentRepository) EnsureSchema(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Serialize bootstrap DDL across api/worker startups.
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, schemaLockKey); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	const query = `
CREATE TABLE IF NOT EXISTS documents (
	id TEXT PRIMARY KEY,
	filename TEXT NOT NULL,
	mime_type TEXT NOT NULL,
	storage_path TEXT NOT NULL,
	expected_format TEXT,
	detected_format TEXT,
	fields JSONB NOT NULL DEFAULT '{}'::jsonb,
	status TEXT NOT NULL,
	error_message TEXT,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_documents_status ON documents(status);
CREATE INDEX IF NOT EXISTS idx_documents_created_at ON documents(created_at DESC);
`
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}

func (r *DocumentRepository) Create(ctx context.Context, doc *domain.Document) error {
	fieldsJSON, err := marshalFields(doc.Fields)
	if err != nil {
		return err
	}

	err = execute(ctx, r.executor, "postgres.documents.create", func(ctx context.Context) error {
		_, err := r.db.ExecContext(ctx, `
INSERT INTO documents (
	id, filename, mime_type, storage_path, expected_format, detected_format, fields, status, error_message, created_at, updated_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
`,
			doc.ID, doc.Filename, doc.MimeType, doc.StoragePath, string(doc.ExpectedFormat), string(doc.DetectedFormat),
			fieldsJSON, string(doc.Status), doc.Error, doc.CreatedAt, doc.UpdatedAt,
		)
		return err
	})
	if err != nil {
		return wrapTemporaryIfNeeded("insert document", err)
	}
	return nil
}

func (r *DocumentRepository) GetByID(ctx context.Context, id string) (*domain.Document, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, filename, mime_type, storage_path, expected_format, detected_format, fields, status, error_message, created_at, updated_at
FROM documents
WHERE id = $1
`, id)

	var doc domain.Document
	var expected, detected, errMessage sql.NullString
	var fieldsRaw []byte
	var status string

	err := row.Scan(
		&doc.ID, &doc.Filename, &doc.MimeType, &doc.StoragePath, &expected, &detected,
		&fieldsRaw, &status, &errMessage, &doc.CreatedAt, &doc.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrDocumentNotFound, "get document", fmt.Errorf("id=%s", id))
		}
		return nil, wrapTemporaryIfNeeded("scan document", err)
	}

	if len(fieldsRaw) > 0 {
		if err := json.Unmarshal(fieldsRaw, &doc.Fields); err != nil {
			return nil, fmt.Errorf("unmarshal fields: %w", err)
		}
	}
	doc.ExpectedFormat = domain.DocumentFormat(expected.String)
	doc.DetectedFormat = domain.DocumentFormat(detected.String)
	doc.Error = errMessage.String
	doc.Status = domain.DocumentStatus(status)
	return &doc, nil
}

func (r *DocumentRepository) UpdateStatus(ctx context.Context, id string, status domain.DocumentStatus, errMessage string) error {
	res, err := r.db.ExecContext(ctx, `
UPDATE documents
SET status = $2, error_message = $3, updated_at = $4
WHERE id = $1
`, id, string(status), errMessage, time.Now().UTC())
	if err != nil {
		return wrapTemporaryIfNeeded("update document status", err)
	}
	return requireAffected(res, "update document status", id)
}

func (r *DocumentRepository) SaveExtraction(ctx context.Context, id string, detected domain.DocumentFormat, fields domain.ExtractedRecord) error {
	fieldsJSON, err := marshalFields(fields)
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, `
UPDATE documents
SET detected_format = $2, fields = $3, updated_at = $4
WHERE id = $1
`, id, string(detected), fieldsJSON, time.Now().UTC())
	if err != nil {
		return wrapTemporaryIfNeeded("save extraction", err)
	}
	return requireAffected(res, "save extraction", id)
}

func marshalFields(fields domain.ExtractedRecord) ([]byte, error) {
	if fields == nil {
		fields = domain.ExtractedRecord{}
	}
	raw, err := json.Marshal(fields)
	if err != nil {
		return nil, fmt.Errorf("marshal fields: %w", err)
	}
	return raw, nil
}

func requireAffected(res sql.Result, op, id string) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s rows affected: %w", op, err)
	}
	if affected == 0 {
		return domain.WrapError(domain.ErrDocumentNotFound, op, fmt.Errorf("id=%s", id))
	}
	return nil
}
