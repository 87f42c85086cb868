package pdfdoc

import (
	"bytes"
	"context"
	"fmt"
	"image/jpeg"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

const jpegQuality = 75

// Renderer rasterizes PDF pages through pdftoppm and attaches word
// geometry from the matching source for the document.
type Renderer struct {
	pdftoppm string
	runner   Runner
	ocr      *OCR
	logger   *slog.Logger
}

func NewRenderer(pdftoppmPath string, ocr *OCR, logger *slog.Logger) *Renderer {
	if pdftoppmPath == "" {
		pdftoppmPath = "pdftoppm"
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Renderer{
		pdftoppm: pdftoppmPath,
		runner:   execRunner{},
		ocr:      ocr,
		logger:   logger,
	}
}

// renderRange writes the document to a temp file and rasterizes pages
// first..last (1-based, inclusive) to PNG at the given DPI. The caller must
// invoke cleanup once done with the returned paths.
func (r *Renderer) renderRange(ctx context.Context, doc *Document, first, last, dpi int) (pngs []string, cleanup func(), err error) {
	tmpDir, err := os.MkdirTemp("", "docrename-*")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create temp dir: %w", err)
	}
	cleanup = func() {
		if rmErr := os.RemoveAll(tmpDir); rmErr != nil {
			r.logger.Warn("failed to remove temp dir", "dir", tmpDir, "error", rmErr)
		}
	}

	pdfPath := filepath.Join(tmpDir, "doc.pdf")
	if err := os.WriteFile(pdfPath, doc.Data, 0o600); err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("failed to stage document: %w", err)
	}

	prefix := filepath.Join(tmpDir, "page")
	// pdftoppm -r <dpi> -f <first> -l <last> -png <in.pdf> <prefix>
	_, errb, err := r.runner.Run(ctx, r.pdftoppm,
		"-r", fmt.Sprintf("%d", dpi),
		"-f", fmt.Sprintf("%d", first),
		"-l", fmt.Sprintf("%d", last),
		"-png", pdfPath, prefix)
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("pdftoppm: %w: %s", err, truncate(string(errb), 512))
	}

	matches, _ := filepath.Glob(prefix + "-*.png")
	sortByPageNumber(matches)
	if len(matches) == 0 {
		cleanup()
		return nil, nil, fmt.Errorf("pdftoppm produced no images")
	}
	return matches, cleanup, nil
}

// sortByPageNumber orders pdftoppm output by the numeric page suffix
// ("page-2.png" before "page-10.png"), so ordering does not depend on the
// zero padding pdftoppm picks for a given document.
func sortByPageNumber(paths []string) {
	num := func(path string) int {
		base := strings.TrimSuffix(filepath.Base(path), ".png")
		idx := strings.LastIndexByte(base, '-')
		if idx < 0 {
			return 0
		}
		n, err := strconv.Atoi(base[idx+1:])
		if err != nil {
			return 0
		}
		return n
	}
	sort.Slice(paths, func(i, j int) bool { return num(paths[i]) < num(paths[j]) })
}

// Render rasterizes one page (0-based) at the given DPI and attaches word
// geometry: digital documents use the embedded text layer, everything else
// goes through OCR word boxes. Missing word geometry is a degraded preview,
// not an error.
func (r *Renderer) Render(ctx context.Context, doc *Document, pageIndex, dpi int) (*RenderedPage, error) {
	if pageIndex < 0 || pageIndex >= doc.Pages {
		return nil, fmt.Errorf("page %d out of range (document has %d)", pageIndex, doc.Pages)
	}

	pngs, cleanup, err := r.renderRange(ctx, doc, pageIndex+1, pageIndex+1, dpi)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	raw, err := os.ReadFile(pngs[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read rendered page: %w", err)
	}
	img, err := png.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("failed to decode rendered page: %w", err)
	}
	bounds := img.Bounds()

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("failed to encode page raster: %w", err)
	}

	page := &RenderedPage{
		JPEG:   buf.Bytes(),
		Width:  bounds.Dx(),
		Height: bounds.Dy(),
	}

	if doc.Source == SourceDigital {
		words, werr := DigitalWords(doc, pageIndex, dpi, page.Height)
		if werr != nil {
			r.logger.Warn("digital word extraction failed", "doc", doc.Name, "page", pageIndex, "error", werr)
		}
		page.Words = words
	} else if r.ocr != nil {
		words, werr := r.ocr.PageWords(ctx, pngs[0])
		if werr != nil {
			r.logger.Warn("ocr word extraction failed", "doc", doc.Name, "page", pageIndex, "error", werr)
		}
		page.Words = words
		page.OCRWords = true
	}

	return page, nil
}
