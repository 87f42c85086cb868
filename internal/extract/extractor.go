package extract

import (
	"fmt"
	"strings"
)

// Result is the outcome of extracting the five structured fields from one
// document. Candidates per field are kept in rank order (rank 0 first);
// Defaults holds the top-ranked value per field, or "" when a field had no
// candidates. Success is true iff a DNI was found.
type Result struct {
	Candidates     map[FieldKind][]Candidate `json:"candidates"`
	Defaults       map[FieldKind]string      `json:"defaults"`
	DetectedFormat Format                    `json:"detected_format"`
	Notes          []string                  `json:"notes"`
	Success        bool                      `json:"success"`
}

// CandidateValues flattens one field's candidates to plain strings.
func (r *Result) CandidateValues(f FieldKind) []string {
	cands := r.Candidates[f]
	out := make([]string, 0, len(cands))
	for _, c := range cands {
		out = append(out, c.Value)
	}
	return out
}

// Extractor applies the per-field rule cascades over document text, with a
// filename-derived fallback for fields the content yields nothing for.
type Extractor struct {
	rules map[FieldKind][]Rule
}

func NewExtractor() *Extractor {
	return &Extractor{rules: fieldRules()}
}

// Extract runs the full extraction over acquired text and the original
// filename. The text may be empty, in which case every field falls through
// to the filename parsers.
func (e *Extractor) Extract(text, filename string) *Result {
	res := &Result{
		Candidates: make(map[FieldKind][]Candidate, len(AllFields)),
		Defaults:   make(map[FieldKind]string, len(AllFields)),
	}

	var filenameFields map[FieldKind]string
	if filename != "" {
		filenameFields = ParseFilename(filename)
	}

	for _, field := range AllFields {
		values := e.contentValues(field, text)

		cands := make([]Candidate, 0, len(values)+1)
		for _, v := range values {
			cands = append(cands, Candidate{Field: field, Value: v, Origin: OriginContent, Rank: len(cands)})
		}

		// Filename matches always rank below any content match.
		if fb := normalizeFieldValue(field, filenameFields[field]); fb != "" && !containsValue(cands, fb) {
			cands = append(cands, Candidate{Field: field, Value: fb, Origin: OriginFilename, Rank: len(cands)})
		}

		res.Candidates[field] = cands
		if len(cands) > 0 {
			res.Defaults[field] = cands[0].Value
		} else {
			res.Defaults[field] = ""
			res.Notes = append(res.Notes, fmt.Sprintf("no se detectó %s", fieldLabel(field)))
		}
	}

	res.Success = res.Defaults[FieldDni] != ""
	if !res.Success {
		res.Notes = append(res.Notes, "No se detectó DNI (requerido).")
	}

	res.DetectedFormat = detectFormat(text, filename)
	return res
}

// contentValues runs the field's cascade: first rule with matches wins.
func (e *Extractor) contentValues(field FieldKind, text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	for _, rule := range e.rules[field] {
		found := rule.Find(text)
		var values []string
		for _, v := range found {
			if norm := normalizeFieldValue(field, v); norm != "" {
				values = append(values, norm)
			}
		}
		if len(values) > 0 {
			return dedupeKeepOrder(values)
		}
	}
	return nil
}

// detectFormat classifies the document. Content markers outrank filename
// shape; when neither recognizes anything, standard is the documented
// default.
func detectFormat(text, filename string) Format {
	if f := DetectContentFormat(text); f != "" {
		return f
	}
	if f := DetectFilenameFormat(filename); f != "" {
		return f
	}
	return FormatStandard
}

func normalizeFieldValue(field FieldKind, v string) string {
	v = cleanSpaces(v)
	if v == "" {
		return ""
	}
	switch field {
	case FieldExamType:
		if full, ok := CanonicalExamType(v); ok {
			return full
		}
		return strings.ToUpper(v)
	case FieldEvalDate:
		return NormalizeDate(v)
	default:
		return v
	}
}

func dedupeKeepOrder(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := values[:0]
	for _, v := range values {
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

func containsValue(cands []Candidate, v string) bool {
	for _, c := range cands {
		if c.Value == v {
			return true
		}
	}
	return false
}

func fieldLabel(f FieldKind) string {
	switch f {
	case FieldDni:
		return "DNI"
	case FieldName:
		return "nombre"
	case FieldCompany:
		return "empresa"
	case FieldExamType:
		return "tipo de examen"
	case FieldEvalDate:
		return "fecha de evaluación"
	default:
		return string(f)
	}
}
