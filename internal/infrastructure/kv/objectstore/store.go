package objectstore

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"

	"github.com/kirillkom/scadenze/internal/core/domain"
	"github.com/kirillkom/scadenze/internal/core/ports"
)

// Store maps keys onto objects under a prefix of any ObjectStorage backend
// (local filesystem or S3-compatible bucket).
type Store struct {
	objects ports.ObjectStorage
	prefix  string
}

func NewStore(objects ports.ObjectStorage, prefix string) *Store {
	return &Store{objects: objects, prefix: prefix}
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, bool, error) {
	rc, err := s.objects.Open(ctx, s.objectKey(key))
	if err != nil {
		if domain.IsKind(err, domain.ErrObjectNotFound) {
			return nil, false, nil
		}
		return nil, false, domain.WrapError(domain.ErrStorageUnavailable, "kv get "+key, err)
	}
	defer rc.Close()

	value, err := io.ReadAll(rc)
	if err != nil {
		if domain.IsKind(err, domain.ErrObjectNotFound) {
			return nil, false, nil
		}
		return nil, false, domain.WrapError(domain.ErrStorageUnavailable, "kv read "+key, err)
	}
	return value, true, nil
}

func (s *Store) Put(ctx context.Context, key string, value []byte) error {
	if err := s.objects.Save(ctx, s.objectKey(key), bytes.NewReader(value)); err != nil {
		return domain.WrapError(domain.ErrStorageUnavailable, "kv put "+key, err)
	}
	return nil
}

func (s *Store) objectKey(key string) string {
	return path.Join(s.prefix, fmt.Sprintf("%s.json", key))
}
