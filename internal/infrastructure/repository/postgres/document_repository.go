package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/kirillkom/scadenze/internal/core/domain"
)

// DocumentRepository stores one row per vault document. Timeline and analysis keep the
// same JSON shape as the snapshot blob so records move between backends unchanged.
type DocumentRepository struct {
	db  *sql.DB
	now func() time.Time
}

func NewDocumentRepository(db *sql.DB) *DocumentRepository {
	return &DocumentRepository{
		db:  db,
		now: func() time.Time { return time.Now().UTC() },
	}
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
		return nil, domain.WrapError(domain.ErrStorageUnavailable, "db ping", err)
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
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(2025011501)); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	const query = `
CREATE TABLE IF NOT EXISTS vault_documents (
	id TEXT PRIMARY KEY,
	seq BIGSERIAL,
	name TEXT NOT NULL,
	doc_type TEXT NOT NULL,
	ocr_text TEXT NOT NULL DEFAULT '',
	timeline JSONB NOT NULL DEFAULT '[]'::jsonb,
	tips TEXT NOT NULL DEFAULT '',
	analysis JSONB,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_vault_documents_created_at ON vault_documents(created_at DESC, seq DESC);
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
	timelineJSON, analysisJSON, err := encodeDocumentJSON(doc)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, `
INSERT INTO vault_documents (
	id, name, doc_type, ocr_text, timeline, tips, analysis, created_at, updated_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
`,
		doc.ID, doc.Name, doc.Type, doc.OCRText, timelineJSON, doc.Tips, analysisJSON, doc.CreatedAt, doc.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return domain.WrapError(domain.ErrInvalidInput, "create document", fmt.Errorf("duplicate id %s", doc.ID))
		}
		return fmt.Errorf("insert document: %w", err)
	}
	return nil
}

const uniqueViolation = "23505"

const selectColumns = `id, name, doc_type, ocr_text, timeline, tips, analysis, created_at, updated_at`

func (r *DocumentRepository) GetByID(ctx context.Context, id string) (*domain.Document, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT `+selectColumns+`
FROM vault_documents
WHERE id = $1
`, id)

	doc, err := scanDocument(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrDocumentNotFound, "get document", fmt.Errorf("id %s", id))
		}
		return nil, err
	}
	return doc, nil
}

// List returns newest-first; seq breaks ties between documents created in the same instant.
func (r *DocumentRepository) List(ctx context.Context) ([]domain.Document, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT `+selectColumns+`
FROM vault_documents
ORDER BY created_at DESC, seq DESC
`)
	if err != nil {
		return nil, domain.WrapError(domain.ErrStorageUnavailable, "list documents", err)
	}
	defer rows.Close()

	out := make([]domain.Document, 0)
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate documents: %w", err)
	}
	return out, nil
}

// Update replaces every mutable field and bumps updated_at. id and created_at never change.
func (r *DocumentRepository) Update(ctx context.Context, doc *domain.Document) error {
	timelineJSON, analysisJSON, err := encodeDocumentJSON(doc)
	if err != nil {
		return err
	}
	doc.UpdatedAt = r.now()

	result, err := r.db.ExecContext(ctx, `
UPDATE vault_documents
SET name = $2, doc_type = $3, ocr_text = $4, timeline = $5, tips = $6, analysis = $7, updated_at = $8
WHERE id = $1
`, doc.ID, doc.Name, doc.Type, doc.OCRText, timelineJSON, doc.Tips, analysisJSON, doc.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update document: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update document rows affected: %w", err)
	}
	if affected == 0 {
		return domain.WrapError(domain.ErrDocumentNotFound, "update document", fmt.Errorf("id %s", doc.ID))
	}
	return nil
}

func (r *DocumentRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM vault_documents WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (*domain.Document, error) {
	var doc domain.Document
	var timelineRaw, analysisRaw []byte

	err := row.Scan(
		&doc.ID, &doc.Name, &doc.Type, &doc.OCRText, &timelineRaw, &doc.Tips, &analysisRaw,
		&doc.CreatedAt, &doc.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan document: %w", err)
	}

	if len(timelineRaw) > 0 {
		if err := json.Unmarshal(timelineRaw, &doc.Timeline); err != nil {
			return nil, domain.WrapError(domain.ErrCorruptSnapshot, "unmarshal timeline", err)
		}
	}
	if len(analysisRaw) > 0 && string(analysisRaw) != "null" {
		var analysis domain.Analysis
		if err := json.Unmarshal(analysisRaw, &analysis); err != nil {
			return nil, domain.WrapError(domain.ErrCorruptSnapshot, "unmarshal analysis", err)
		}
		doc.Analysis = &analysis
	}
	return &doc, nil
}

func encodeDocumentJSON(doc *domain.Document) ([]byte, any, error) {
	timeline := doc.Timeline
	if timeline == nil {
		timeline = []domain.TimelineStep{}
	}
	timelineJSON, err := json.Marshal(timeline)
	if err != nil {
		return nil, nil, fmt.Errorf("marshal timeline: %w", err)
	}
	if doc.Analysis == nil {
		return timelineJSON, nil, nil
	}
	analysisJSON, err := json.Marshal(doc.Analysis)
	if err != nil {
		return nil, nil, fmt.Errorf("marshal analysis: %w", err)
	}
	return timelineJSON, analysisJSON, nil
}
