package pdfdoc

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

const (
	// DefaultTextThreshold is the minimum number of embedded-text characters
	// for a document to count as digital-born.
	DefaultTextThreshold = 50

	// DefaultOCRPages caps how many pages are OCR'd per document.
	DefaultOCRPages = 3

	// DefaultOCRDPI is the rasterization resolution used for recognition.
	DefaultOCRDPI = 300
)

// Acquirer obtains a best-effort text representation of a document,
// preferring the embedded text layer and falling back to OCR over the
// first few rendered pages.
type Acquirer struct {
	threshold int
	maxPages  int
	dpi       int
	renderer  *Renderer
	ocr       *OCR
	logger    *slog.Logger

	// digital is swapped out in tests.
	digital func(*Document) (string, error)
}

func NewAcquirer(threshold, maxPages, dpi int, renderer *Renderer, ocr *OCR, logger *slog.Logger) *Acquirer {
	if threshold <= 0 {
		threshold = DefaultTextThreshold
	}
	if maxPages <= 0 {
		maxPages = DefaultOCRPages
	}
	if dpi <= 0 {
		dpi = DefaultOCRDPI
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Acquirer{
		threshold: threshold,
		maxPages:  maxPages,
		dpi:       dpi,
		renderer:  renderer,
		ocr:       ocr,
		logger:    logger,
		digital:   DigitalText,
	}
}

// Acquire returns the document's text and the source that produced it,
// tagging the document with that source. Warnings report soft degradation
// (OCR unavailable, pages skipped); errors are reserved for hard failures.
// When neither path yields text the result is ("", SourceOCR) and callers
// fall back to filename-based extraction.
func (a *Acquirer) Acquire(ctx context.Context, doc *Document) (text string, source TextSource, warnings []string, err error) {
	digital, derr := a.digital(doc)
	if derr != nil {
		warnings = append(warnings, fmt.Sprintf("capa de texto ilegible: %v", derr))
		digital = ""
	}
	if len(strings.TrimSpace(digital)) >= a.threshold {
		doc.Source = SourceDigital
		return digital, SourceDigital, warnings, nil
	}

	last := doc.Pages
	if last > a.maxPages {
		last = a.maxPages
	}

	pngs, cleanup, rerr := a.renderer.renderRange(ctx, doc, 1, last, a.dpi)
	if rerr != nil {
		// OCR backend unavailable: degrade to whatever the text layer gave.
		warnings = append(warnings, fmt.Sprintf("OCR no disponible: %v", rerr))
		doc.Source = SourceOCR
		return digital, SourceOCR, warnings, nil
	}
	defer cleanup()

	var builder strings.Builder
	builder.WriteString(digital)
	for i, pngPath := range pngs {
		pageText, oerr := a.ocr.PageText(ctx, pngPath)
		if oerr != nil {
			warnings = append(warnings, fmt.Sprintf("OCR falló en página %d: %v", i+1, oerr))
			continue
		}
		builder.WriteString(pageText)
		builder.WriteByte('\n')
	}

	doc.Source = SourceOCR
	return builder.String(), SourceOCR, warnings, nil
}
