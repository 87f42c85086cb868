// Package service wires text acquisition, field extraction, filename
// synthesis and highlight mapping into the operations the HTTP, CLI and
// MCP surfaces expose.
package service

import (
	"context"
	"log/slog"

	"github.com/cmespinar/docrename/internal/config"
	"github.com/cmespinar/docrename/internal/extract"
	"github.com/cmespinar/docrename/internal/pdfdoc"
	"github.com/cmespinar/docrename/internal/session"
)

// TextAcquirer yields the best-effort text for a document.
type TextAcquirer interface {
	Acquire(ctx context.Context, doc *pdfdoc.Document) (string, pdfdoc.TextSource, []string, error)
}

// PageRenderer rasterizes one page with its word boxes.
type PageRenderer interface {
	Render(ctx context.Context, doc *pdfdoc.Document, pageIndex, dpi int) (*pdfdoc.RenderedPage, error)
}

// Opener parses upload bytes into a validated document.
type Opener func(name string, data []byte) (*pdfdoc.Document, error)

// Service implements the document analysis and renaming operations.
type Service struct {
	cfg       *config.Config
	acquirer  TextAcquirer
	renderer  PageRenderer
	extractor *extract.Extractor
	store     *session.Store
	logger    *slog.Logger
	open      Opener
}

// New builds a Service from its collaborators. A nil store disables the
// session operations (Preview, Download, Archive), which is how the CLI
// and MCP binaries run. A nil opener means real PDF parsing.
func New(cfg *config.Config, opener Opener, acquirer TextAcquirer, renderer PageRenderer, store *session.Store, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if opener == nil {
		opener = pdfdoc.Open
	}
	return &Service{
		cfg:       cfg,
		acquirer:  acquirer,
		renderer:  renderer,
		extractor: extract.NewExtractor(),
		store:     store,
		logger:    logger,
		open:      opener,
	}
}

// NewFromConfig assembles the full production stack described by cfg.
func NewFromConfig(cfg *config.Config, store *session.Store, logger *slog.Logger) *Service {
	ocr := pdfdoc.NewOCR(cfg.TesseractPath, cfg.OCRLanguages, logger)
	renderer := pdfdoc.NewRenderer(cfg.PdftoppmPath, ocr, logger)
	acquirer := pdfdoc.NewAcquirer(cfg.TextThreshold, cfg.OCRPages, cfg.OCRDPI, renderer, ocr, logger)
	return New(cfg, nil, acquirer, renderer, store, logger)
}

// Store exposes the session store for lifecycle management by the server.
func (s *Service) Store() *session.Store {
	return s.store
}
