package service

import (
	"archive/zip"
	"bytes"
	"fmt"
	"strings"

	"github.com/cmespinar/docrename/internal/extract"
	"github.com/cmespinar/docrename/internal/rename"
)

// ArchiveItem selects one session document and the final name it should
// carry in the ZIP.
type ArchiveItem struct {
	Index    int    `json:"index"`
	Filename string `json:"filename"`
}

// Download returns the original bytes of one session document together
// with the caller-chosen filename, normalized to end in .pdf.
func (s *Service) Download(sessionID string, docIndex int, filename string) (string, []byte, error) {
	if s.store == nil {
		return "", nil, fmt.Errorf("session store not configured")
	}
	sess, err := s.store.Get(sessionID)
	if err != nil {
		return "", nil, err
	}
	doc, err := sess.Document(docIndex)
	if err != nil {
		return "", nil, err
	}
	return normalizeFilename(filename, doc.Name), doc.Data, nil
}

// Archive bundles the requested documents into a single ZIP, each under
// its chosen name. Duplicate names get a numeric suffix so no entry
// silently overwrites another.
func (s *Service) Archive(sessionID string, items []ArchiveItem) ([]byte, error) {
	if s.store == nil {
		return nil, fmt.Errorf("session store not configured")
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("no documents selected")
	}
	sess, err := s.store.Get(sessionID)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	seen := make(map[string]int)

	for _, item := range items {
		doc, err := sess.Document(item.Index)
		if err != nil {
			return nil, fmt.Errorf("document %d: %w", item.Index, err)
		}
		name := normalizeFilename(item.Filename, doc.Name)
		if n := seen[name]; n > 0 {
			base := strings.TrimSuffix(name, ".pdf")
			name = fmt.Sprintf("%s (%d).pdf", base, n)
		}
		seen[normalizeFilename(item.Filename, doc.Name)]++

		w, err := zw.Create(name)
		if err != nil {
			return nil, fmt.Errorf("archiving %s: %w", name, err)
		}
		if _, err := w.Write(doc.Data); err != nil {
			return nil, fmt.Errorf("archiving %s: %w", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// BuildFilename synthesizes a filename from field values under the given
// spec. It is the server-side counterpart of the UI's live name display.
func (s *Service) BuildFilename(fields map[extract.FieldKind]string, spec rename.Spec) (string, error) {
	return rename.Build(fields, spec)
}

// CloseSession releases a session and everything it holds. Called when
// the user signals the downloads are complete.
func (s *Service) CloseSession(sessionID string) {
	if s.store != nil {
		s.store.Delete(sessionID)
	}
}

// normalizeFilename falls back to the original name when the caller sent
// nothing, and guarantees the .pdf suffix.
func normalizeFilename(name, original string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		name = original
	}
	if !strings.HasSuffix(strings.ToLower(name), ".pdf") {
		name += ".pdf"
	}
	return name
}
