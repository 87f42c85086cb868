package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cmespinar/docrename/internal/config"
	"github.com/cmespinar/docrename/internal/pdfdoc"
	"github.com/cmespinar/docrename/internal/service"
	"github.com/cmespinar/docrename/internal/session"
)

const reportText = `EXAMEN MEDICO OCUPACIONAL
APELLIDOS Y NOMBRES: QUISPE MAMANI
DNI: 77206347
EMPRESA: MINERA LOS ANDES SAC
TIPO DE EXAMEN: PERIODICO
FECHA: 31.12.25`

type stubAcquirer struct{}

func (stubAcquirer) Acquire(context.Context, *pdfdoc.Document) (string, pdfdoc.TextSource, []string, error) {
	return reportText, pdfdoc.SourceDigital, nil, nil
}

type stubRenderer struct{}

func (stubRenderer) Render(context.Context, *pdfdoc.Document, int, int) (*pdfdoc.RenderedPage, error) {
	return &pdfdoc.RenderedPage{
		JPEG:   []byte("jpeg-bytes"),
		Width:  800,
		Height: 600,
		Words:  []pdfdoc.WordBox{{Text: "77206347", X: 100, Y: 50, W: 80, H: 14}},
	}, nil
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.MaxUploadSize = 1 << 20

	store := session.NewStore(time.Minute)
	t.Cleanup(store.Close)

	opener := func(name string, data []byte) (*pdfdoc.Document, error) {
		if strings.HasPrefix(name, "bad") {
			return nil, fmt.Errorf("%s: failed to read PDF context", name)
		}
		return &pdfdoc.Document{Name: name, Data: data, Pages: 2}, nil
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := service.New(cfg, opener, stubAcquirer{}, stubRenderer{}, store, logger)
	return New(cfg, svc, logger)
}

func multipartBody(t *testing.T, names ...string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for _, name := range names {
		part, err := mw.CreateFormFile("files", name)
		require.NoError(t, err)
		_, err = part.Write([]byte("%PDF-1.4 " + name))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func uploadSession(t *testing.T, srv *Server, names ...string) string {
	t.Helper()
	body, contentType := multipartBody(t, names...)
	req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var batch service.BatchResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &batch))
	require.NotEmpty(t, batch.SessionID)
	return batch.SessionID
}

func TestUploadAnalyzesBatch(t *testing.T) {
	srv := newTestServer(t)
	body, contentType := multipartBody(t, "a.pdf", "bad.pdf")
	req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var batch service.BatchResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &batch))
	require.Len(t, batch.Results, 2)
	assert.True(t, batch.Results[0].Success)
	assert.Equal(t, "77206347", batch.Results[0].Defaults["dni"])
	assert.NotEmpty(t, batch.Results[0].SuggestedName)
	assert.False(t, batch.Results[1].Success)
	assert.NotEmpty(t, batch.Results[1].Error)
}

func TestUploadWithoutFiles(t *testing.T) {
	srv := newTestServer(t)
	body, contentType := multipartBody(t)
	req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid_request")
}

func TestUploadTooLarge(t *testing.T) {
	srv := newTestServer(t)
	srv.cfg.MaxUploadSize = 256

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("files", "a.pdf")
	require.NoError(t, err)
	_, err = part.Write([]byte("%PDF-1.4 " + strings.Repeat("x", 4<<10)))
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	contentType := mw.FormDataContentType()

	req := httptest.NewRequest(http.MethodPost, "/api/upload", &body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Contains(t, rec.Body.String(), "payload too large")
}

func TestPreviewEndpoint(t *testing.T) {
	srv := newTestServer(t)
	id := uploadSession(t, srv, "a.pdf")

	payload := fmt.Sprintf(`{"session_id":%q,"index":0,"page":0,"fields":{"dni":"77206347"}}`, id)
	req := httptest.NewRequest(http.MethodPost, "/api/preview", strings.NewReader(payload))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var result service.PreviewResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.True(t, result.Success)
	assert.Equal(t, 2, result.TotalPages)
	assert.True(t, strings.HasPrefix(result.Page.Image, "data:image/jpeg;base64,"))
	require.Len(t, result.Page.Highlights, 1)
	assert.Equal(t, "dni", string(result.Page.Highlights[0].Field))
}

func TestPreviewExpiredSession(t *testing.T) {
	srv := newTestServer(t)
	req := httptest.NewRequest(http.MethodPost, "/api/preview",
		strings.NewReader(`{"session_id":"gone","index":0,"page":0}`))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusGone, rec.Code)
	assert.Contains(t, rec.Body.String(), "session_expired")
}

func TestPreviewUnknownDocument(t *testing.T) {
	srv := newTestServer(t)
	id := uploadSession(t, srv, "a.pdf")

	payload := fmt.Sprintf(`{"session_id":%q,"index":7,"page":0}`, id)
	req := httptest.NewRequest(http.MethodPost, "/api/preview", strings.NewReader(payload))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "document_not_found")
}

func TestPreviewPageOutOfRange(t *testing.T) {
	srv := newTestServer(t)
	id := uploadSession(t, srv, "a.pdf")

	// The stubbed document has 2 pages.
	payload := fmt.Sprintf(`{"session_id":%q,"index":0,"page":2}`, id)
	req := httptest.NewRequest(http.MethodPost, "/api/preview", strings.NewReader(payload))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid_request")
}

func TestFilenameEndpoint(t *testing.T) {
	srv := newTestServer(t)
	payload := `{"format":"standard","fields":{"dni":"77206347","nombre":"QUISPE MAMANI","empresa":"MINERA SAC","tipo_examen":"PERIODICO","fecha":"31-12-25"}}`
	req := httptest.NewRequest(http.MethodPost, "/api/filename", strings.NewReader(payload))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var result struct {
		Success  bool   `json:"success"`
		Filename string `json:"filename"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.True(t, result.Success)
	assert.Equal(t, "77206347-QUISPE MAMANI-MINERA SAC-EMOA-CMESPINAR-31.12.25.pdf", result.Filename)
}

func TestFilenameNothingToName(t *testing.T) {
	srv := newTestServer(t)
	req := httptest.NewRequest(http.MethodPost, "/api/filename", strings.NewReader(`{"fields":{}}`))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var result struct {
		Success bool   `json:"success"`
		Reason  string `json:"reason"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.False(t, result.Success)
	assert.NotEmpty(t, result.Reason)
}

func TestFilenameBadFormat(t *testing.T) {
	srv := newTestServer(t)
	req := httptest.NewRequest(http.MethodPost, "/api/filename",
		strings.NewReader(`{"format":"fancy","fields":{"dni":"77206347"}}`))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDownloadEndpoint(t *testing.T) {
	srv := newTestServer(t)
	id := uploadSession(t, srv, "informe.pdf")

	req := httptest.NewRequest(http.MethodGet,
		"/api/download?session_id="+id+"&index=0&filename=77206347-QUISPE", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "77206347-QUISPE.pdf")
	assert.Equal(t, "%PDF-1.4 informe.pdf", rec.Body.String())
}

func TestDownloadUnknownDocument(t *testing.T) {
	srv := newTestServer(t)
	id := uploadSession(t, srv, "a.pdf")

	req := httptest.NewRequest(http.MethodGet, "/api/download?session_id="+id+"&index=5", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "document_not_found")
}

func TestDownloadBatchEndpoint(t *testing.T) {
	srv := newTestServer(t)
	id := uploadSession(t, srv, "a.pdf", "b.pdf")

	payload := fmt.Sprintf(`{"session_id":%q,"items":[{"index":0,"filename":"uno.pdf"},{"index":1,"filename":"dos.pdf"}]}`, id)
	req := httptest.NewRequest(http.MethodPost, "/api/download/batch", strings.NewReader(payload))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "application/zip", rec.Header().Get("Content-Type"))
	assert.NotZero(t, rec.Body.Len())
}

func TestCloseSessionEndpoint(t *testing.T) {
	srv := newTestServer(t)
	id := uploadSession(t, srv, "a.pdf")

	req := httptest.NewRequest(http.MethodDelete, "/api/session/"+id, nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	// The session is gone afterwards.
	preview := httptest.NewRequest(http.MethodPost, "/api/preview",
		strings.NewReader(fmt.Sprintf(`{"session_id":%q,"index":0,"page":0}`, id)))
	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, preview)
	assert.Equal(t, http.StatusGone, rec.Code)
}

func TestHealthEndpoint(t *testing.T) {
	srv := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}
