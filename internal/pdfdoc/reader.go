package pdfdoc

import (
	"bytes"
	"fmt"
	"strings"
	"unicode"

	"github.com/ledongthuc/pdf"
)

// DigitalText concatenates the embedded text of every page, in page order.
// Pages that fail to decode are skipped rather than failing the document.
func DigitalText(doc *Document) (string, error) {
	rdr, err := pdf.NewReader(bytes.NewReader(doc.Data), int64(len(doc.Data)))
	if err != nil {
		return "", fmt.Errorf("failed to open PDF text layer: %w", err)
	}

	var builder strings.Builder
	for pageNum := 1; pageNum <= rdr.NumPage(); pageNum++ {
		page := rdr.Page(pageNum)
		if page.V.IsNull() {
			continue
		}
		content, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		builder.WriteString(content)
		builder.WriteByte('\n')
	}
	return builder.String(), nil
}

// DigitalWords extracts word boxes from the embedded text layer of one page
// (0-based), scaled to raster pixel space at the given DPI. rasterHeight is
// the rendered page height in pixels, used to flip the PDF's bottom-left
// origin to the raster's top-left.
func DigitalWords(doc *Document, pageIndex, dpi, rasterHeight int) ([]WordBox, error) {
	rdr, err := pdf.NewReader(bytes.NewReader(doc.Data), int64(len(doc.Data)))
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF text layer: %w", err)
	}
	if pageIndex < 0 || pageIndex >= rdr.NumPage() {
		return nil, fmt.Errorf("page %d out of range (document has %d)", pageIndex, rdr.NumPage())
	}

	page := rdr.Page(pageIndex + 1)
	if page.V.IsNull() {
		return nil, nil
	}
	content := page.Content()

	scale := float64(dpi) / 72.0
	pageHeightPts := float64(rasterHeight) / scale

	return groupWords(content.Text, scale, pageHeightPts), nil
}

// groupWords assembles positioned character runs into words. Runs stay in
// the same word while they share a baseline and the horizontal gap between
// them is smaller than a fraction of the font size.
func groupWords(runs []pdf.Text, scale, pageHeightPts float64) []WordBox {
	var words []WordBox

	var (
		cur      strings.Builder
		minX     float64
		maxX     float64
		baseY    float64
		fontSize float64
		lastEnd  float64
	)

	flush := func() {
		if cur.Len() == 0 {
			return
		}
		h := fontSize
		if h <= 0 {
			h = 10
		}
		words = append(words, WordBox{
			Text: cur.String(),
			X:    minX * scale,
			Y:    (pageHeightPts - baseY - h) * scale,
			W:    (maxX - minX) * scale,
			H:    h * 1.2 * scale,
		})
		cur.Reset()
	}

	for _, run := range runs {
		if isSpaceRun(run.S) {
			flush()
			continue
		}

		sameLine := cur.Len() > 0 && absFloat(run.Y-baseY) < 2.0
		gap := run.X - lastEnd
		maxGap := run.FontSize * 0.35
		if maxGap <= 0 {
			maxGap = 2.0
		}

		if cur.Len() == 0 || !sameLine || gap > maxGap || gap < -1.0 {
			flush()
			minX = run.X
			maxX = run.X + run.W
			baseY = run.Y
			fontSize = run.FontSize
		} else {
			if run.X+run.W > maxX {
				maxX = run.X + run.W
			}
			if run.FontSize > fontSize {
				fontSize = run.FontSize
			}
		}
		cur.WriteString(run.S)
		lastEnd = run.X + run.W
	}
	flush()

	return words
}

func isSpaceRun(s string) bool {
	if s == "" {
		return true
	}
	for _, r := range s {
		if !unicode.IsSpace(r) {
			return false
		}
	}
	return true
}

func absFloat(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
