package service

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/cmespinar/docrename/internal/extract"
	"github.com/cmespinar/docrename/internal/pdfdoc"
	"github.com/cmespinar/docrename/internal/rename"
)

// Upload is one raw document handed in by a caller.
type Upload struct {
	Name string
	Data []byte
}

// DocumentResult is the per-document analysis outcome. On hard failure
// only FileIndex, OriginalName and Error are set.
type DocumentResult struct {
	FileIndex      int                            `json:"file_index"`
	OriginalName   string                         `json:"original_name"`
	Success        bool                           `json:"success"`
	DetectedFormat extract.Format                 `json:"detected_format,omitempty"`
	Candidates     map[extract.FieldKind][]string `json:"candidates,omitempty"`
	Defaults       map[extract.FieldKind]string   `json:"defaults,omitempty"`
	Notes          []string                       `json:"notes,omitempty"`
	SuggestedName  string                         `json:"suggested_name,omitempty"`
	Error          string                         `json:"error,omitempty"`
}

// BatchResult couples the per-document results with the session that now
// holds the documents.
type BatchResult struct {
	SessionID string           `json:"session_id"`
	Results   []DocumentResult `json:"results"`
}

// ocrNote is appended whenever field values came out of OCR text, so
// users know to double-check them.
const ocrNote = "Se usó OCR: los valores extraídos pueden contener errores de reconocimiento."

// AnalyzeBatch opens, reads and extracts every upload concurrently,
// bounded by the configured worker count. Results keep upload order and
// a failed document never affects its siblings. The documents are
// registered in a new session for later preview and download.
func (s *Service) AnalyzeBatch(ctx context.Context, uploads []Upload) (*BatchResult, error) {
	if s.store == nil {
		return nil, fmt.Errorf("session store not configured")
	}
	if len(uploads) == 0 {
		return nil, fmt.Errorf("no documents submitted")
	}

	results := make([]DocumentResult, len(uploads))
	docs := make([]*pdfdoc.Document, len(uploads))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers())

	for i, up := range uploads {
		g.Go(func() error {
			doc, res := s.analyzeOne(gctx, i, up)
			results[i] = res
			docs[i] = doc
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sess := s.store.Create(docs)
	s.logger.Info("batch analyzed",
		"session", sess.ID,
		"documents", len(uploads),
	)
	return &BatchResult{SessionID: sess.ID, Results: results}, nil
}

// AnalyzeFile runs the pipeline for a single document without creating a
// session. The CLI and MCP surfaces use this.
func (s *Service) AnalyzeFile(ctx context.Context, name string, data []byte) (*DocumentResult, error) {
	doc, res := s.analyzeOne(ctx, 0, Upload{Name: name, Data: data})
	if doc == nil {
		return &res, fmt.Errorf("%s: %s", name, res.Error)
	}
	return &res, nil
}

func (s *Service) analyzeOne(ctx context.Context, index int, up Upload) (*pdfdoc.Document, DocumentResult) {
	res := DocumentResult{FileIndex: index, OriginalName: up.Name}

	doc, err := s.open(up.Name, up.Data)
	if err != nil {
		s.logger.Warn("document unreadable", "name", up.Name, "error", err)
		res.Error = err.Error()
		return nil, res
	}

	text, source, warnings, err := s.acquirer.Acquire(ctx, doc)
	if err != nil {
		s.logger.Warn("text acquisition failed", "name", up.Name, "error", err)
		res.Error = err.Error()
		return nil, res
	}
	doc.Source = source

	extraction := s.extractor.Extract(text, up.Name)

	res.Success = extraction.Success
	res.DetectedFormat = extraction.DetectedFormat
	res.Candidates = make(map[extract.FieldKind][]string, len(extract.AllFields))
	for _, field := range extract.AllFields {
		res.Candidates[field] = extraction.CandidateValues(field)
	}
	res.Defaults = extraction.Defaults
	res.Notes = append(res.Notes, warnings...)
	if source == pdfdoc.SourceOCR {
		res.Notes = append(res.Notes, ocrNote)
	}
	res.Notes = append(res.Notes, extraction.Notes...)
	res.SuggestedName = s.suggestName(extraction)

	s.logger.Debug("document analyzed",
		"name", up.Name,
		"source", source,
		"success", res.Success,
		"format", res.DetectedFormat,
	)
	return doc, res
}

// suggestName precomputes the default filename so the UI can show it
// before the user edits anything. Empty when no DNI was found.
func (s *Service) suggestName(r *extract.Result) string {
	if r.Defaults[extract.FieldDni] == "" {
		return ""
	}
	name, err := rename.Build(r.Defaults, rename.DefaultSpec(r.DetectedFormat))
	if err != nil {
		return ""
	}
	return name
}

func (s *Service) workers() int {
	if s.cfg != nil && s.cfg.Workers > 0 {
		return s.cfg.Workers
	}
	return 4
}
