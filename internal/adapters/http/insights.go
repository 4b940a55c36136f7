package httpadapter

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/kirillkom/scadenze/internal/core/domain"
	"github.com/kirillkom/scadenze/internal/infrastructure/export/xlsx"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func (rt *Router) deadlines(w http.ResponseWriter, r *http.Request) {
	asOf, windowDays, err := rt.deadlineQuery(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	deadlines, err := rt.insights.Deadlines(r.Context(), asOf, windowDays)
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	if rt.metrics != nil {
		rt.metrics.RecordDeadlines(serviceName, "deadlines", deadlines)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"asOf":       asOf.Format(time.DateOnly),
		"windowDays": windowDays,
		"deadlines":  deadlines,
	})
}

func (rt *Router) exportDeadlines(w http.ResponseWriter, r *http.Request) {
	asOf, windowDays, err := rt.deadlineQuery(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	deadlines, err := rt.insights.Deadlines(r.Context(), asOf, windowDays)
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	docs, err := rt.vault.List(r.Context())
	if err != nil {
		rt.writeError(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := xlsx.Write(&buf, xlsx.Report{
		AsOf:       asOf,
		WindowDays: windowDays,
		Deadlines:  deadlines,
		Documents:  docs,
	}); err != nil {
		rt.writeError(w, r, fmt.Errorf("export deadlines: %w", err))
		return
	}
	if rt.metrics != nil {
		rt.metrics.RecordExport(serviceName, "xlsx")
	}

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="scadenze-%s.xlsx"`, asOf.Format(time.DateOnly)))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

func (rt *Router) categories(w http.ResponseWriter, r *http.Request) {
	groups, err := rt.insights.Categories(r.Context())
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"categories": groups})
}

func (rt *Router) faq(w http.ResponseWriter, r *http.Request) {
	topic := strings.TrimSpace(r.URL.Query().Get("topic"))
	writeJSON(w, http.StatusOK, map[string]any{"items": rt.insights.FAQ(topic)})
}

func (rt *Router) answer(w http.ResponseWriter, r *http.Request) {
	asOf, err := rt.asOf(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	id := mux.Vars(r)["id"]
	answer, err := rt.insights.Answer(r.Context(), id, asOf)
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	if rt.metrics != nil {
		rt.metrics.RecordFAQAnswer(serviceName, answer.ID)
	}
	writeJSON(w, http.StatusOK, answer)
}

// deadlineQuery reads as_of and window_days; a missing window falls back to the configured horizon.
func (rt *Router) deadlineQuery(r *http.Request) (time.Time, int, error) {
	asOf, err := rt.asOf(r)
	if err != nil {
		return time.Time{}, 0, err
	}

	windowDays := rt.cfg.DeadlineWindowDays
	if raw := strings.TrimSpace(r.URL.Query().Get("window_days")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return time.Time{}, 0, fmt.Errorf("window_days must be a positive integer")
		}
		windowDays = n
	}
	if windowDays <= 0 {
		windowDays = domain.DefaultWindowDays
	}
	return asOf, windowDays, nil
}

// asOf accepts a calendar date or an RFC 3339 instant; the default is now in the vault timezone.
func (rt *Router) asOf(r *http.Request) (time.Time, error) {
	now := rt.insights.Now()
	raw := strings.TrimSpace(r.URL.Query().Get("as_of"))
	if raw == "" {
		return now, nil
	}
	if t, err := time.ParseInLocation(time.DateOnly, raw, now.Location()); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.In(now.Location()), nil
	}
	return time.Time{}, fmt.Errorf("as_of must be YYYY-MM-DD or RFC 3339")
}
