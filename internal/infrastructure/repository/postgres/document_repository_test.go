package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/kirillkom/scadenze/internal/core/domain"
)

var documentColumns = []string{"id", "name", "doc_type", "ocr_text", "timeline", "tips", "analysis", "created_at", "updated_at"}

func newRepoWithMock(t *testing.T) (*DocumentRepository, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	repo := NewDocumentRepository(db)
	repo.now = func() time.Time { return time.Date(2025, 1, 16, 0, 0, 0, 0, time.UTC) }
	return repo, mock, func() { _ = db.Close() }
}

func TestGetByIDReturnsDomainNotFound(t *testing.T) {
	repo, mock, done := newRepoWithMock(t)
	defer done()

	mock.ExpectQuery("SELECT id, name, doc_type").
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), "missing")
	if !domain.IsKind(err, domain.ErrDocumentNotFound) {
		t.Fatalf("expected ErrDocumentNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestGetByIDDecodesJSONColumns(t *testing.T) {
	repo, mock, done := newRepoWithMock(t)
	defer done()

	created := time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC)
	mock.ExpectQuery("SELECT id, name, doc_type").
		WithArgs("doc-1").
		WillReturnRows(sqlmock.NewRows(documentColumns).AddRow(
			"doc-1", "Permesso", "Residence Permit", "testo",
			[]byte(`[{"stage":"Fingerprints","estimatedDate":"March","status":"urgent"}]`),
			"bring photos",
			[]byte(`{"category":"Residence Permit","summary":"s","keyDates":["Scadenza 2025-02-01",{"label":"Rinnovo","date":"2025-02-01","type":"expiry"}],"actionItems":["pay"]}`),
			created, created,
		))

	doc, err := repo.GetByID(context.Background(), "doc-1")
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if len(doc.Timeline) != 1 || doc.Timeline[0].Status != domain.StepUrgent {
		t.Fatalf("unexpected timeline %+v", doc.Timeline)
	}
	if doc.Analysis == nil || len(doc.Analysis.KeyDates) != 2 {
		t.Fatalf("unexpected analysis %+v", doc.Analysis)
	}
	if doc.Analysis.KeyDates[0].Variant != domain.KeyDateLegacy || doc.Analysis.KeyDates[1].Kind != domain.DateExpiry {
		t.Fatalf("unexpected key dates %+v", doc.Analysis.KeyDates)
	}
}

func TestListKeepsNullAnalysisAbsent(t *testing.T) {
	repo, mock, done := newRepoWithMock(t)
	defer done()

	now := time.Now().UTC()
	mock.ExpectQuery("ORDER BY created_at DESC, seq DESC").
		WillReturnRows(sqlmock.NewRows(documentColumns).
			AddRow("b", "Second", "Document", "", []byte(`[]`), "", nil, now, now).
			AddRow("a", "First", "Document", "", []byte(`[]`), "", nil, now, now))

	docs, err := repo.List(context.Background())
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(docs) != 2 || docs[0].ID != "b" {
		t.Fatalf("unexpected docs %+v", docs)
	}
	if docs[0].Analysis != nil {
		t.Fatalf("expected absent analysis, got %+v", docs[0].Analysis)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestUpdateReturnsDomainNotFoundWhenNoRowsAffected(t *testing.T) {
	repo, mock, done := newRepoWithMock(t)
	defer done()

	mock.ExpectExec("UPDATE vault_documents").
		WithArgs("missing", "Name", "Document", "", sqlmock.AnyArg(), "", nil, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Update(context.Background(), &domain.Document{ID: "missing", Name: "Name", Type: "Document"})
	if !domain.IsKind(err, domain.ErrDocumentNotFound) {
		t.Fatalf("expected ErrDocumentNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestUpdateBumpsUpdatedAt(t *testing.T) {
	repo, mock, done := newRepoWithMock(t)
	defer done()

	mock.ExpectExec("UPDATE vault_documents").
		WillReturnResult(sqlmock.NewResult(0, 1))

	created := time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)
	doc := &domain.Document{ID: "doc-1", Name: "Name", CreatedAt: created, UpdatedAt: created, Analysis: &domain.Analysis{Summary: "s"}}
	if err := repo.Update(context.Background(), doc); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if !doc.UpdatedAt.After(doc.CreatedAt) || !doc.CreatedAt.Equal(created) {
		t.Fatalf("expected updatedAt bumped and createdAt preserved, got %v / %v", doc.CreatedAt, doc.UpdatedAt)
	}
}

func TestDeleteMissingIsNoop(t *testing.T) {
	repo, mock, done := newRepoWithMock(t)
	defer done()

	mock.ExpectExec("DELETE FROM vault_documents").
		WithArgs("missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := repo.Delete(context.Background(), "missing"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
}

func TestCreateDuplicateIDIsInvalidInput(t *testing.T) {
	repo, mock, done := newRepoWithMock(t)
	defer done()

	mock.ExpectExec("INSERT INTO vault_documents").
		WillReturnError(&pgconn.PgError{Code: "23505", Message: "duplicate key value violates unique constraint"})

	now := time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)
	err := repo.Create(context.Background(), &domain.Document{ID: "doc-1", Name: "Name", Type: "Document", CreatedAt: now, UpdatedAt: now})
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestCreateOtherFailuresStayInternal(t *testing.T) {
	repo, mock, done := newRepoWithMock(t)
	defer done()

	mock.ExpectExec("INSERT INTO vault_documents").
		WillReturnError(errors.New("connection reset"))

	err := repo.Create(context.Background(), &domain.Document{ID: "doc-1", Name: "Name", Type: "Document"})
	if err == nil || domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected plain insert error, got %v", err)
	}
}
