// Package highlight locates extracted field values on rendered page
// rasters and produces the overlay rectangles the UI uses to confirm an
// extraction visually.
package highlight

import (
	"strings"

	"github.com/cmespinar/docrename/internal/extract"
	"github.com/cmespinar/docrename/internal/pdfdoc"
)

// Colors assigns each field its fixed overlay color.
var Colors = map[extract.FieldKind]string{
	extract.FieldDni:      "#ff6b6b",
	extract.FieldName:     "#4ecdc4",
	extract.FieldCompany:  "#45b7d1",
	extract.FieldExamType: "#f7b731",
	extract.FieldEvalDate: "#5f27cd",
}

// Highlight is one overlay rectangle in raster pixel space. Rects always
// satisfy 0 <= x, 0 <= y, x+w <= page width, y+h <= page height.
type Highlight struct {
	Field extract.FieldKind `json:"field"`
	Color string            `json:"color"`
	X     float64           `json:"x"`
	Y     float64           `json:"y"`
	W     float64           `json:"w"`
	H     float64           `json:"h"`
}

// Window of consecutive words considered when matching a multi-word value.
const maxConcatWindow = 12

// FindAll locates each non-empty field value among the page's word boxes.
// A field whose value does not occur on the page simply yields no
// rectangle; that is a valid outcome, not an error.
func FindAll(words []pdfdoc.WordBox, fields map[extract.FieldKind]string, pageWidth, pageHeight int) []Highlight {
	var out []Highlight
	for _, field := range extract.AllFields {
		value := strings.TrimSpace(fields[field])
		if value == "" {
			continue
		}
		for _, box := range findValue(words, value) {
			if h, ok := clamp(box, field, pageWidth, pageHeight); ok {
				out = append(out, h)
			}
		}
	}
	return out
}

// findValue returns the bounding box of the first occurrence of value in
// the word sequence. Matching is case- and accent-insensitive. Single-word
// values match inside a word; multi-word values are matched by
// concatenating consecutive words from an anchor word that carries the
// value's first word, with a first-word fallback when the full value
// never lines up.
func findValue(words []pdfdoc.WordBox, value string) []pdfdoc.WordBox {
	target := Fold(value)
	targetWords := strings.Fields(target)
	if len(targetWords) == 0 {
		return nil
	}

	if len(targetWords) == 1 {
		for i := range words {
			if strings.Contains(Fold(words[i].Text), target) {
				return []pdfdoc.WordBox{words[i]}
			}
		}
		return nil
	}

	first := targetWords[0]
	for i := range words {
		if !strings.Contains(Fold(words[i].Text), first) {
			continue
		}
		var concat strings.Builder
		var matched []int
		limit := i + maxConcatWindow
		if limit > len(words) {
			limit = len(words)
		}
		for j := i; j < limit; j++ {
			w := strings.TrimSpace(words[j].Text)
			if w == "" {
				continue
			}
			if concat.Len() > 0 {
				concat.WriteByte(' ')
			}
			concat.WriteString(w)
			matched = append(matched, j)
			if strings.Contains(Fold(concat.String()), target) {
				return []pdfdoc.WordBox{boundingBox(words, matched)}
			}
		}
	}

	// Fallback: anchor on the value's first word and span the expected
	// number of words from there.
	for i := range words {
		if Fold(strings.TrimSpace(words[i].Text)) != first {
			continue
		}
		var matched []int
		for j := i; j < len(words) && len(matched) < len(targetWords); j++ {
			if strings.TrimSpace(words[j].Text) != "" {
				matched = append(matched, j)
			}
		}
		if len(matched) > 0 {
			return []pdfdoc.WordBox{boundingBox(words, matched)}
		}
		break
	}
	return nil
}

func boundingBox(words []pdfdoc.WordBox, indices []int) pdfdoc.WordBox {
	x0 := words[indices[0]].X
	y0 := words[indices[0]].Y
	x1 := x0
	y1 := y0
	for _, k := range indices {
		w := words[k]
		if w.X < x0 {
			x0 = w.X
		}
		if w.Y < y0 {
			y0 = w.Y
		}
		if w.X+w.W > x1 {
			x1 = w.X + w.W
		}
		if w.Y+w.H > y1 {
			y1 = w.Y + w.H
		}
	}
	return pdfdoc.WordBox{X: x0, Y: y0, W: x1 - x0, H: y1 - y0}
}

// clamp fits a box inside the raster and rejects degenerate rectangles.
func clamp(box pdfdoc.WordBox, field extract.FieldKind, pageWidth, pageHeight int) (Highlight, bool) {
	x := box.X
	y := box.Y
	w := box.W
	h := box.H

	if x < 0 {
		w += x
		x = 0
	}
	if y < 0 {
		h += y
		y = 0
	}
	if x+w > float64(pageWidth) {
		w = float64(pageWidth) - x
	}
	if y+h > float64(pageHeight) {
		h = float64(pageHeight) - y
	}
	if w <= 2 || h <= 2 {
		return Highlight{}, false
	}
	return Highlight{Field: field, Color: Colors[field], X: x, Y: y, W: w, H: h}, true
}
