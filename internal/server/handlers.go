package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/cmespinar/docrename/internal/extract"
	"github.com/cmespinar/docrename/internal/rename"
	"github.com/cmespinar/docrename/internal/service"
)

// handleUpload accepts a multipart batch of PDFs, analyzes them and
// returns per-document extraction results plus the session id. The size
// cap is enforced before any parsing, so an oversized body gets a plain
// 413 rather than a JSON decode error.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadSize)

	if err := r.ParseMultipartForm(s.cfg.MaxUploadSize); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			// Plain text on purpose: the body never finished arriving, so the
			// client may not even be reading a JSON-shaped response.
			http.Error(w, fmt.Sprintf("payload too large (limit %d bytes)", maxErr.Limit), http.StatusRequestEntityTooLarge)
			return
		}
		writeError(w, http.StatusBadRequest, codeInvalidRequest, "invalid multipart form: "+err.Error())
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		writeError(w, http.StatusBadRequest, codeInvalidRequest, "no files submitted (expected multipart field 'files')")
		return
	}

	uploads := make([]service.Upload, 0, len(files))
	for _, fh := range files {
		f, err := fh.Open()
		if err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequest, fmt.Sprintf("cannot open upload %s: %v", fh.Filename, err))
			return
		}
		data, err := io.ReadAll(f)
		_ = f.Close()
		if err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequest, fmt.Sprintf("cannot read upload %s: %v", fh.Filename, err))
			return
		}
		uploads = append(uploads, service.Upload{Name: fh.Filename, Data: data})
	}

	result, err := s.svc.AnalyzeBatch(r.Context(), uploads)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

type previewRequest struct {
	SessionID string                       `json:"session_id"`
	Index     int                          `json:"index"`
	Page      int                          `json:"page"`
	DPI       int                          `json:"dpi"`
	Fields    map[extract.FieldKind]string `json:"fields"`
}

// handlePreview renders one page and maps the caller's current field
// values to highlight rectangles on it.
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	var req previewRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidRequest, err.Error())
		return
	}
	if req.SessionID == "" {
		writeError(w, http.StatusBadRequest, codeInvalidRequest, "session_id is required")
		return
	}

	result, err := s.svc.Preview(r.Context(), req.SessionID, req.Index, req.Page, req.DPI, req.Fields)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

type filenameRequest struct {
	Format  string                       `json:"format"`
	Fields  map[extract.FieldKind]string `json:"fields"`
	Include map[extract.FieldKind]bool   `json:"include"`
	Order   []extract.FieldKind          `json:"order"`
}

type filenameResponse struct {
	Success  bool   `json:"success"`
	Filename string `json:"filename,omitempty"`
	Reason   string `json:"reason,omitempty"`
}

// handleFilename synthesizes a filename from edited field values. A
// result with success=false and a reason means "nothing to name yet",
// which is not an error.
func (s *Server) handleFilename(w http.ResponseWriter, r *http.Request) {
	var req filenameRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidRequest, err.Error())
		return
	}

	format := extract.FormatStandard
	if req.Format != "" {
		parsed, err := extract.ParseFormat(req.Format)
		if err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequest, err.Error())
			return
		}
		format = parsed
	}

	spec := rename.DefaultSpec(format)
	if req.Include != nil {
		spec.Include = req.Include
	}
	if len(req.Order) > 0 {
		spec.Order = req.Order
	}

	name, err := s.svc.BuildFilename(req.Fields, spec)
	if err != nil {
		if errors.Is(err, rename.ErrNothingToName) {
			writeJSON(w, http.StatusOK, filenameResponse{Success: false, Reason: err.Error()})
			return
		}
		writeError(w, http.StatusBadRequest, codeInvalidRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, filenameResponse{Success: true, Filename: name})
}

// handleDownload streams one document back under its chosen name.
func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	sessionID := q.Get("session_id")
	if sessionID == "" {
		writeError(w, http.StatusBadRequest, codeInvalidRequest, "session_id is required")
		return
	}
	index, err := queryInt(q.Get("index"))
	if err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidRequest, "index must be an integer")
		return
	}

	name, data, err := s.svc.Download(sessionID, index, q.Get("filename"))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	_, _ = w.Write(data)
}

type batchDownloadRequest struct {
	SessionID string                `json:"session_id"`
	Items     []service.ArchiveItem `json:"items"`
}

// handleDownloadBatch bundles the selected documents into one ZIP.
func (s *Server) handleDownloadBatch(w http.ResponseWriter, r *http.Request) {
	var req batchDownloadRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidRequest, err.Error())
		return
	}
	if req.SessionID == "" {
		writeError(w, http.StatusBadRequest, codeInvalidRequest, "session_id is required")
		return
	}
	if len(req.Items) == 0 {
		writeError(w, http.StatusBadRequest, codeInvalidRequest, "no documents selected")
		return
	}

	archive, err := s.svc.Archive(req.SessionID, req.Items)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", `attachment; filename="documentos.zip"`)
	_, _ = w.Write(archive)
}

// handleCloseSession is the explicit download-completion signal.
func (s *Server) handleCloseSession(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, codeInvalidRequest, "session id is required")
		return
	}
	s.svc.CloseSession(id)
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	return nil
}

func queryInt(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.Atoi(s)
}
