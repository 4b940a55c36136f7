package domain

import (
	"errors"
	"fmt"
)

var (
	ErrDocumentNotFound    = errors.New("document not found")
	ErrInvalidInput        = errors.New("invalid input")
	ErrUnsupportedContent  = errors.New("unsupported content type")
	ErrTemporary           = errors.New("temporary failure")
	ErrStorageUnavailable  = errors.New("storage unavailable")
	ErrCorruptSnapshot     = errors.New("corrupt snapshot")
	ErrAnalysisUnavailable = errors.New("analysis unavailable")
	ErrObjectNotFound      = errors.New("object not found")
)

// WrapError preserves typed semantic errors with operation context.
func WrapError(kind error, operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", operation, kind, err)
}

func IsKind(err error, kind error) bool {
	return errors.Is(err, kind)
}
