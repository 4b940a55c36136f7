package httpadapter

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/kirillkom/scadenze/internal/config"
	"github.com/kirillkom/scadenze/internal/core/domain"
	"github.com/kirillkom/scadenze/internal/core/ports"
	"github.com/kirillkom/scadenze/internal/core/usecase"
	"github.com/kirillkom/scadenze/internal/observability/metrics"
)

const (
	serviceName        = "api"
	backpressureWait   = 50 * time.Millisecond
	multipartMemory    = 8 << 20
	defaultUploadLimit = 20 << 20
)

type Router struct {
	cfg      config.Config
	vault    ports.DocumentVault
	ingestor ports.DocumentIngestor
	insights ports.InsightsService
	metrics  *metrics.HTTPServerMetrics
}

func NewRouter(
	cfg config.Config,
	vault ports.DocumentVault,
	ingestor ports.DocumentIngestor,
	insights ports.InsightsService,
) *Router {
	return &Router{
		cfg:      cfg,
		vault:    vault,
		ingestor: ingestor,
		insights: insights,
	}
}

func (rt *Router) WithMetrics(m *metrics.HTTPServerMetrics) *Router {
	rt.metrics = m
	return rt
}

func (rt *Router) Handler() http.Handler {
	r := mux.NewRouter()
	if rt.metrics != nil {
		r.Use(func(next http.Handler) http.Handler {
			return rt.metrics.Middleware(serviceName, next)
		})
		r.Handle("/metrics", rt.metrics.Handler()).Methods(http.MethodGet)
	}

	r.HandleFunc("/healthz", rt.healthz).Methods(http.MethodGet)

	r.HandleFunc("/v1/documents", rt.createDocument).Methods(http.MethodPost)
	r.HandleFunc("/v1/documents", rt.listDocuments).Methods(http.MethodGet)
	r.HandleFunc("/v1/documents/upload", rt.uploadDocument).Methods(http.MethodPost)
	r.HandleFunc("/v1/documents/{id}", rt.getDocument).Methods(http.MethodGet)
	r.HandleFunc("/v1/documents/{id}", rt.deleteDocument).Methods(http.MethodDelete)
	r.HandleFunc("/v1/documents/{id}/reanalyze", rt.reanalyzeDocument).Methods(http.MethodPost)

	r.HandleFunc("/v1/deadlines.xlsx", rt.exportDeadlines).Methods(http.MethodGet)
	r.HandleFunc("/v1/deadlines", rt.deadlines).Methods(http.MethodGet)
	r.HandleFunc("/v1/categories", rt.categories).Methods(http.MethodGet)
	r.HandleFunc("/v1/faq", rt.faq).Methods(http.MethodGet)
	r.HandleFunc("/v1/faq/{id}", rt.answer).Methods(http.MethodGet)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
	})

	var handler http.Handler = r
	handler = backpressureMiddleware(handler, rt.cfg.APIMaxInFlight, backpressureWait)
	handler = rateLimitMiddleware(handler, rt.cfg.APIRateLimitRPS, rt.cfg.APIRateLimitBurst)
	handler = accessLogMiddleware(handler)
	return requestIDMiddleware(handler)
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// documentView is a stored document plus the office that usually handles it.
type documentView struct {
	domain.Document
	Office *usecase.Office `json:"office,omitempty"`
}

func newDocumentView(doc domain.Document) documentView {
	view := documentView{Document: doc}
	hint := strings.Join([]string{doc.Name, doc.EffectiveCategory(), doc.Summary()}, " ")
	if office, ok := usecase.SuggestOffice(hint); ok {
		view.Office = &office
	}
	return view
}

func (rt *Router) createDocument(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, rt.uploadLimit())

	var input domain.DocumentInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, map[string]string{"error": "request body too large"})
			return
		}
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	doc, err := rt.vault.Create(r.Context(), input)
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	if rt.metrics != nil {
		rt.metrics.RecordDocumentCreated(serviceName, "json")
	}
	writeJSON(w, http.StatusCreated, newDocumentView(*doc))
}

func (rt *Router) uploadDocument(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, rt.uploadLimit())
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, map[string]string{"error": "upload too large"})
			return
		}
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "multipart field 'file' is required"})
		return
	}

	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "multipart field 'file' is required"})
		return
	}
	defer file.Close()

	doc, err := rt.ingestor.Upload(
		r.Context(),
		fileHeader.Filename,
		fileHeader.Header.Get("Content-Type"),
		file,
	)
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	if rt.metrics != nil {
		rt.metrics.RecordDocumentCreated(serviceName, "upload")
	}
	writeJSON(w, http.StatusCreated, newDocumentView(*doc))
}

func (rt *Router) listDocuments(w http.ResponseWriter, r *http.Request) {
	docs, err := rt.vault.List(r.Context())
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	if rt.metrics != nil {
		rt.metrics.RecordDocumentsStored(len(docs))
	}

	views := make([]documentView, 0, len(docs))
	for _, doc := range docs {
		views = append(views, newDocumentView(doc))
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"documents": views,
		"count":     len(views),
	})
}

func (rt *Router) getDocument(w http.ResponseWriter, r *http.Request) {
	doc, err := rt.vault.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newDocumentView(*doc))
}

func (rt *Router) deleteDocument(w http.ResponseWriter, r *http.Request) {
	if err := rt.vault.Delete(r.Context(), mux.Vars(r)["id"]); err != nil {
		rt.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (rt *Router) reanalyzeDocument(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := rt.vault.Reanalyze(r.Context(), id); err != nil {
		rt.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"id": id, "status": "queued"})
}

func (rt *Router) uploadLimit() int64 {
	if rt.cfg.MaxUploadBytes > 0 {
		return rt.cfg.MaxUploadBytes
	}
	return defaultUploadLimit
}

func (rt *Router) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := mapErrorToHTTPStatus(err)
	if status >= http.StatusInternalServerError {
		slog.Error("http_handler_failed",
			"request_id", requestIDFromContext(r.Context()),
			"path", r.URL.Path,
			"error", err,
		)
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
