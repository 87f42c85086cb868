package pdfdoc

import (
	"context"
	"log/slog"
	"reflect"
	"testing"
)

func TestRenderProducesJPEGRaster(t *testing.T) {
	render := &renderStubRunner{pages: 1}
	r := &Renderer{pdftoppm: "pdftoppm", runner: render, logger: slog.Default()}

	doc := &Document{Name: "x.pdf", Data: []byte("%PDF"), Pages: 3, Source: SourceNone}
	page, err := r.Render(context.Background(), doc, 1, 150)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if page.Width != 40 || page.Height != 60 {
		t.Errorf("raster = %dx%d", page.Width, page.Height)
	}
	if len(page.JPEG) == 0 {
		t.Error("empty JPEG payload")
	}
	if page.OCRWords {
		t.Error("no OCR backend configured, OCRWords must stay false")
	}
}

func TestRenderAttachesOCRWords(t *testing.T) {
	render := &renderStubRunner{pages: 1}
	tsv := "header\n" + tsvLine(5, 10, 20, 60, 14, "95", "HUDBAY")
	ocrRunner := &stubRunner{stdout: map[string]string{"tesseract": tsv}}
	ocr := &OCR{tesseract: "tesseract", languages: "spa+eng", runner: ocrRunner, logger: slog.Default()}
	r := &Renderer{pdftoppm: "pdftoppm", runner: render, ocr: ocr, logger: slog.Default()}

	doc := &Document{Name: "scan.pdf", Data: []byte("%PDF"), Pages: 1, Source: SourceOCR}
	page, err := r.Render(context.Background(), doc, 0, 150)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !page.OCRWords {
		t.Error("scanned document preview must flag OCR geometry")
	}
	if len(page.Words) != 1 || page.Words[0].Text != "HUDBAY" {
		t.Errorf("words = %v", page.Words)
	}
}

func TestRenderDegradedWordsAreNotAnError(t *testing.T) {
	render := &renderStubRunner{pages: 1}
	ocrRunner := &stubRunner{err: context.DeadlineExceeded}
	ocr := &OCR{tesseract: "tesseract", languages: "spa+eng", runner: ocrRunner, logger: slog.Default()}
	r := &Renderer{pdftoppm: "pdftoppm", runner: render, ocr: ocr, logger: slog.Default()}

	doc := &Document{Name: "scan.pdf", Data: []byte("%PDF"), Pages: 1, Source: SourceOCR}
	page, err := r.Render(context.Background(), doc, 0, 150)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if len(page.Words) != 0 {
		t.Errorf("words = %v", page.Words)
	}
	if len(page.JPEG) == 0 {
		t.Error("raster must survive a word-geometry failure")
	}
}

func TestSortByPageNumberIsNumeric(t *testing.T) {
	paths := []string{
		"/tmp/out/page-10.png",
		"/tmp/out/page-2.png",
		"/tmp/out/page-1.png",
	}
	sortByPageNumber(paths)

	want := []string{
		"/tmp/out/page-1.png",
		"/tmp/out/page-2.png",
		"/tmp/out/page-10.png",
	}
	if !reflect.DeepEqual(paths, want) {
		t.Errorf("order = %v, want %v", paths, want)
	}
}

func TestRenderPageOutOfRange(t *testing.T) {
	r := &Renderer{pdftoppm: "pdftoppm", runner: failIfCalled{t}, logger: slog.Default()}
	doc := &Document{Name: "x.pdf", Pages: 2}

	if _, err := r.Render(context.Background(), doc, 2, 150); err == nil {
		t.Error("page index past the end must fail")
	}
	if _, err := r.Render(context.Background(), doc, -1, 150); err == nil {
		t.Error("negative page index must fail")
	}
}
