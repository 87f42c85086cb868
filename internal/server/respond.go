package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/cmespinar/docrename/internal/service"
	"github.com/cmespinar/docrename/internal/session"
)

// Error codes surfaced to clients. Stale session references get their
// own codes so the UI can tell "start over" apart from "bad request".
const (
	codeInvalidRequest   = "invalid_request"
	codeSessionExpired   = "session_expired"
	codeDocumentNotFound = "document_not_found"
	codePayloadTooLarge  = "payload_too_large"
	codeInternal         = "internal"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, errorResponse{Error: msg, Code: code})
}

// writeServiceError maps service-level failures onto status and code.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, session.ErrSessionNotFound):
		writeError(w, http.StatusGone, codeSessionExpired, err.Error())
	case errors.Is(err, session.ErrDocumentNotFound):
		writeError(w, http.StatusNotFound, codeDocumentNotFound, err.Error())
	case errors.Is(err, service.ErrPageOutOfRange):
		writeError(w, http.StatusBadRequest, codeInvalidRequest, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, codeInternal, err.Error())
	}
}
