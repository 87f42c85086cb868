package pdfdoc

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
)

const (
	// DefaultOCRLanguages prefers Spanish for ñ/accents with English as the
	// secondary model.
	DefaultOCRLanguages = "spa+eng"

	tsvColumns   = 12
	tsvWordLevel = "5"
)

// OCR runs the tesseract backend over rendered page images.
type OCR struct {
	tesseract string
	languages string
	runner    Runner
	logger    *slog.Logger
}

func NewOCR(tesseractPath, languages string, logger *slog.Logger) *OCR {
	if tesseractPath == "" {
		tesseractPath = "tesseract"
	}
	if languages == "" {
		languages = DefaultOCRLanguages
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &OCR{
		tesseract: tesseractPath,
		languages: languages,
		runner:    execRunner{},
		logger:    logger,
	}
}

// PageText recognizes the full text of one page image.
func (o *OCR) PageText(ctx context.Context, imagePath string) (string, error) {
	// tesseract <image> stdout -l <langs>
	out, errb, err := o.runner.Run(ctx, o.tesseract, imagePath, "stdout", "-l", o.languages)
	if err != nil {
		return "", fmt.Errorf("tesseract: %w: %s", err, truncate(string(errb), 512))
	}
	return string(out), nil
}

// PageWords recognizes per-word bounding boxes via tesseract's TSV output.
// Boxes are in the pixel space of the input image.
func (o *OCR) PageWords(ctx context.Context, imagePath string) ([]WordBox, error) {
	out, errb, err := o.runner.Run(ctx, o.tesseract, imagePath, "stdout", "-l", o.languages, "tsv")
	if err != nil {
		return nil, fmt.Errorf("tesseract TSV: %w: %s", err, truncate(string(errb), 512))
	}
	return parseTSVWords(string(out)), nil
}

// parseTSVWords reads tesseract's 12-column TSV. Word rows carry level 5
// and a non-negative confidence; everything else (blocks, paragraphs,
// lines, rejected words) is skipped.
func parseTSVWords(data string) []WordBox {
	var words []WordBox
	for i, line := range strings.Split(data, "\n") {
		if i == 0 || line == "" {
			continue
		}
		cols := strings.Split(line, "\t")
		if len(cols) < tsvColumns {
			continue
		}
		if cols[0] != tsvWordLevel {
			continue
		}
		conf := cols[10]
		if conf == "" || conf == "-1" {
			continue
		}
		text := strings.TrimSpace(cols[11])
		if text == "" {
			continue
		}

		left, errL := strconv.ParseFloat(cols[6], 64)
		top, errT := strconv.ParseFloat(cols[7], 64)
		width, errW := strconv.ParseFloat(cols[8], 64)
		height, errH := strconv.ParseFloat(cols[9], 64)
		if errL != nil || errT != nil || errW != nil || errH != nil {
			continue
		}

		words = append(words, WordBox{Text: text, X: left, Y: top, W: width, H: height})
	}
	return words
}
