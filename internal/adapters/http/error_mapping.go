package httpadapter

import (
	"net/http"

	"github.com/kirillkom/scadenze/internal/core/domain"
)

func mapErrorToHTTPStatus(err error) int {
	switch {
	case domain.IsKind(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case domain.IsKind(err, domain.ErrDocumentNotFound), domain.IsKind(err, domain.ErrObjectNotFound):
		return http.StatusNotFound
	case domain.IsKind(err, domain.ErrUnsupportedContent):
		return http.StatusUnsupportedMediaType
	case domain.IsKind(err, domain.ErrTemporary),
		domain.IsKind(err, domain.ErrStorageUnavailable),
		domain.IsKind(err, domain.ErrAnalysisUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
