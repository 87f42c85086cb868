// Package pdfdoc holds the document model and every operation that touches
// raw PDF bytes: validation, text extraction, rasterization and OCR.
package pdfdoc

// TextSource tags which path produced a document's text representation.
type TextSource string

const (
	SourceDigital TextSource = "digital"
	SourceOCR     TextSource = "ocr"
	SourceNone    TextSource = "none"
)

// Document is an uploaded PDF held in memory for the life of its session.
// Data is never mutated after creation; Source is set once by the acquirer.
type Document struct {
	Name   string
	Data   []byte
	Pages  int
	Source TextSource
}

// WordBox is a single recognized word with its bounding box in raster pixel
// space (top-left origin).
type WordBox struct {
	Text string
	X    float64
	Y    float64
	W    float64
	H    float64
}

// RenderedPage is a rasterized page plus the word geometry found on it.
// Words come from the embedded text layer for digital documents and from
// OCR for scanned ones.
type RenderedPage struct {
	JPEG     []byte
	Width    int
	Height   int
	Words    []WordBox
	OCRWords bool
}
