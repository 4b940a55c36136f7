package snapshot

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/kirillkom/scadenze/internal/core/domain"
	"github.com/kirillkom/scadenze/internal/core/ports"
)

const (
	// DocumentsKey holds the whole collection as one JSON array, newest first.
	DocumentsKey = "documents"
	// CorruptKey receives an undecodable snapshot before it is overwritten.
	CorruptKey = DocumentsKey + ".corrupt"
)

// Repository persists the vault as a single snapshot blob. Reads reload the blob, so
// other processes see committed writes, but writes are read-modify-write under an
// in-process lock: only one process may write to a given store.
type Repository struct {
	kv  ports.KeyValueStore
	now func() time.Time
	mu  sync.Mutex
}

type snapshotState struct {
	docs      []domain.Document
	raw       []byte
	decodeErr error
}

func New(kv ports.KeyValueStore) *Repository {
	return &Repository{
		kv:  kv,
		now: func() time.Time { return time.Now().UTC() },
	}
}

// Open builds a repository and validates the current snapshot. A corrupt snapshot or an
// unreachable store is reported through the error, but the returned repository is
// usable: a corrupt snapshot reads as an empty vault.
func Open(ctx context.Context, kv ports.KeyValueStore) (*Repository, error) {
	repo := New(kv)
	state, err := repo.load(ctx)
	if err != nil {
		return repo, err
	}
	if state.decodeErr != nil {
		return repo, domain.WrapError(domain.ErrCorruptSnapshot, "open snapshot", state.decodeErr)
	}
	return repo, nil
}

func (r *Repository) Create(ctx context.Context, doc *domain.Document) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	docs, err := r.loadForWrite(ctx)
	if err != nil {
		return err
	}
	if slices.ContainsFunc(docs, func(d domain.Document) bool { return d.ID == doc.ID }) {
		return domain.WrapError(domain.ErrInvalidInput, "create document", fmt.Errorf("duplicate id %s", doc.ID))
	}
	docs = slices.Insert(docs, 0, *doc)
	return r.save(ctx, docs)
}

func (r *Repository) GetByID(ctx context.Context, id string) (*domain.Document, error) {
	state, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	for _, doc := range state.docs {
		if doc.ID == id {
			return &doc, nil
		}
	}
	return nil, domain.WrapError(domain.ErrDocumentNotFound, "get document", fmt.Errorf("id %s", id))
}

func (r *Repository) List(ctx context.Context) ([]domain.Document, error) {
	state, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	return state.docs, nil
}

// Update replaces the mutable fields of an existing document in place and bumps updatedAt.
func (r *Repository) Update(ctx context.Context, doc *domain.Document) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	docs, err := r.loadForWrite(ctx)
	if err != nil {
		return err
	}
	idx := slices.IndexFunc(docs, func(d domain.Document) bool { return d.ID == doc.ID })
	if idx < 0 {
		return domain.WrapError(domain.ErrDocumentNotFound, "update document", fmt.Errorf("id %s", doc.ID))
	}

	doc.CreatedAt = docs[idx].CreatedAt
	doc.UpdatedAt = r.now()
	docs[idx] = *doc
	return r.save(ctx, docs)
}

func (r *Repository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	state, err := r.load(ctx)
	if err != nil {
		return err
	}
	if !slices.ContainsFunc(state.docs, func(d domain.Document) bool { return d.ID == id }) {
		return nil
	}
	kept := slices.DeleteFunc(state.docs, func(d domain.Document) bool { return d.ID == id })
	return r.save(ctx, kept)
}

func (r *Repository) load(ctx context.Context) (snapshotState, error) {
	raw, ok, err := r.kv.Get(ctx, DocumentsKey)
	if err != nil {
		return snapshotState{}, domain.WrapError(domain.ErrStorageUnavailable, "load snapshot", err)
	}
	if !ok || len(raw) == 0 {
		return snapshotState{docs: []domain.Document{}}, nil
	}

	var docs []domain.Document
	if err := json.Unmarshal(raw, &docs); err != nil {
		slog.Error("snapshot_corrupt", "key", DocumentsKey, "bytes", len(raw), "error", err)
		return snapshotState{docs: []domain.Document{}, raw: raw, decodeErr: err}, nil
	}
	if docs == nil {
		docs = []domain.Document{}
	}
	return snapshotState{docs: docs, raw: raw}, nil
}

// loadForWrite is load plus a backup of a corrupt blob, taken before a write replaces it.
func (r *Repository) loadForWrite(ctx context.Context) ([]domain.Document, error) {
	state, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	if state.decodeErr == nil {
		return state.docs, nil
	}
	if err := r.kv.Put(ctx, CorruptKey, state.raw); err != nil {
		return nil, domain.WrapError(domain.ErrStorageUnavailable, "backup corrupt snapshot", err)
	}
	slog.Warn("snapshot_backed_up", "key", CorruptKey, "bytes", len(state.raw))
	return state.docs, nil
}

func (r *Repository) save(ctx context.Context, docs []domain.Document) error {
	if docs == nil {
		docs = []domain.Document{}
	}
	raw, err := json.Marshal(docs)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	if err := r.kv.Put(ctx, DocumentsKey, raw); err != nil {
		return domain.WrapError(domain.ErrStorageUnavailable, "save snapshot", err)
	}
	return nil
}
