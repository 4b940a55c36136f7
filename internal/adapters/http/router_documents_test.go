package httpadapter

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/kirillkom/scadenze/internal/core/domain"
)

func TestHealthzEndpoint(t *testing.T) {
	handler := newTestRouter(nil, nil, nil).Handler()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}
	if res.Header().Get(requestIDHeader) == "" {
		t.Fatalf("expected generated request id header")
	}
}

func TestCreateDocumentReturnsViewWithOffice(t *testing.T) {
	vault := &vaultFake{}
	handler := newTestRouter(vault, nil, nil).Handler()

	payload, _ := json.Marshal(map[string]any{
		"name":    "Permesso di soggiorno",
		"type":    "Residence Permit",
		"ocrText": "scadenza 12/03/2025",
	})
	req := httptest.NewRequest(http.MethodPost, "/v1/documents", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", res.Code, res.Body.String())
	}
	if len(vault.created) != 1 || vault.created[0].OCRText != "scadenza 12/03/2025" {
		t.Fatalf("unexpected vault input %+v", vault.created)
	}

	var view struct {
		ID     string `json:"id"`
		Office *struct {
			ID string `json:"id"`
		} `json:"office"`
	}
	if err := json.NewDecoder(res.Body).Decode(&view); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if view.ID != "doc-1" || view.Office == nil || view.Office.ID != "questura" {
		t.Fatalf("unexpected view %+v", view)
	}
}

func TestCreateDocumentRejectsMalformedJSON(t *testing.T) {
	handler := newTestRouter(nil, nil, nil).Handler()
	req := httptest.NewRequest(http.MethodPost, "/v1/documents", strings.NewReader("{"))
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", res.Code)
	}
}

func TestUploadDocumentSuccess(t *testing.T) {
	ingest := &ingestFake{}
	handler := newTestRouter(nil, ingest, nil).Handler()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", "ricevuta.txt")
	if err != nil {
		t.Fatalf("CreateFormFile() error = %v", err)
	}
	if _, err := part.Write([]byte("hello")); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/v1/documents/upload", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", res.Code, res.Body.String())
	}
	if ingest.filename != "ricevuta.txt" || ingest.body != "hello" {
		t.Fatalf("unexpected upload %+v", ingest)
	}
}

func TestUploadDocumentMissingMultipartField(t *testing.T) {
	handler := newTestRouter(nil, nil, nil).Handler()

	req := httptest.NewRequest(http.MethodPost, "/v1/documents/upload", bytes.NewBufferString("plain-text"))
	req.Header.Set("Content-Type", "text/plain")
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", res.Code)
	}
}

func TestListDocuments(t *testing.T) {
	vault := &vaultFake{docs: []domain.Document{{ID: "b", Name: "Carta d'identità"}, {ID: "a", Name: "Bolletta"}}}
	handler := newTestRouter(vault, nil, nil).Handler()

	req := httptest.NewRequest(http.MethodGet, "/v1/documents", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	var resp struct {
		Documents []domain.Document `json:"documents"`
		Count     int               `json:"count"`
	}
	if err := json.NewDecoder(res.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Count != 2 || resp.Documents[0].ID != "b" {
		t.Fatalf("expected listing order preserved, got %+v", resp)
	}
}

func TestDeleteDocumentReturnsNoContent(t *testing.T) {
	vault := &vaultFake{}
	handler := newTestRouter(vault, nil, nil).Handler()

	req := httptest.NewRequest(http.MethodDelete, "/v1/documents/missing", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", res.Code)
	}
	if len(vault.deleted) != 1 || vault.deleted[0] != "missing" {
		t.Fatalf("unexpected deletes %v", vault.deleted)
	}
}

func TestReanalyzeDocumentQueues(t *testing.T) {
	vault := &vaultFake{}
	handler := newTestRouter(vault, nil, nil).Handler()

	req := httptest.NewRequest(http.MethodPost, "/v1/documents/doc-9/reanalyze", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", res.Code)
	}
	if len(vault.reanalyzed) != 1 || vault.reanalyzed[0] != "doc-9" {
		t.Fatalf("unexpected reanalyze calls %v", vault.reanalyzed)
	}
}

func TestUnsupportedMethodReturns405(t *testing.T) {
	handler := newTestRouter(nil, nil, nil).Handler()

	req := httptest.NewRequest(http.MethodPut, "/v1/documents", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", res.Code)
	}
}
