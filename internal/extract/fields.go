package extract

import (
	"fmt"
	"strings"
)

// FieldKind identifies one of the five structured fields extracted from an
// occupational-exam document.
type FieldKind string

const (
	FieldDni      FieldKind = "dni"
	FieldName     FieldKind = "nombre"
	FieldCompany  FieldKind = "empresa"
	FieldExamType FieldKind = "tipo_examen"
	FieldEvalDate FieldKind = "fecha"
)

// AllFields lists every field kind. The order is the standard-format
// presentation order and is relied on as the default ordering elsewhere.
var AllFields = []FieldKind{FieldDni, FieldName, FieldCompany, FieldExamType, FieldEvalDate}

// IsValid reports whether f is one of the five known field kinds.
func (f FieldKind) IsValid() bool {
	switch f {
	case FieldDni, FieldName, FieldCompany, FieldExamType, FieldEvalDate:
		return true
	}
	return false
}

// Origin tags where a candidate value was found.
type Origin string

const (
	OriginContent  Origin = "content"
	OriginFilename Origin = "filename"
)

// Candidate is a single value found by one extraction rule for one field.
// Rank 0 is the most trusted candidate for its field.
type Candidate struct {
	Field  FieldKind `json:"field"`
	Value  string    `json:"value"`
	Origin Origin    `json:"origin"`
	Rank   int       `json:"rank"`
}

// Format identifies one of the two supported filename conventions.
type Format string

const (
	FormatStandard Format = "standard"
	FormatHudbay   Format = "hudbay"
)

// ParseFormat validates a caller-supplied format name.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case FormatStandard:
		return FormatStandard, nil
	case FormatHudbay:
		return FormatHudbay, nil
	}
	return "", fmt.Errorf("unknown format %q (expected standard or hudbay)", s)
}

// ExamTypes is the closed vocabulary of exam types, most specific first.
var ExamTypes = []string{
	"PREOCUPACIONAL",
	"POSTOCUPACIONAL",
	"PERIODICO",
	"INGRESO",
	"EGRESO",
	"RETIRO",
}

// examLabelMap maps checkbox/form label spellings to the canonical type.
var examLabelMap = map[string]string{
	"PREOCUPACIONAL":   "PREOCUPACIONAL",
	"PRE-OCUPACIONAL":  "PREOCUPACIONAL",
	"PRE OCUPACIONAL":  "PREOCUPACIONAL",
	"POSTOCUPACIONAL":  "POSTOCUPACIONAL",
	"POST-OCUPACIONAL": "POSTOCUPACIONAL",
	"POST OCUPACIONAL": "POSTOCUPACIONAL",
	"PERIODICO":        "PERIODICO",
	"PERIÓDICO":        "PERIODICO",
	"ANUAL":            "PERIODICO",
	"INGRESO":          "INGRESO",
	"EGRESO":           "EGRESO",
	"RETIRO":           "RETIRO",
}

// ExamAbbrev maps canonical exam types to the abbreviation used in
// synthesized filenames. Types without an entry pass through unabbreviated.
var ExamAbbrev = map[string]string{
	"PREOCUPACIONAL":  "EMPO",
	"PERIODICO":       "EMOA",
	"POSTOCUPACIONAL": "EMOR",
}

// abbrevToExam is the reverse of ExamAbbrev, used when parsing legacy
// filenames that carry the abbreviation.
var abbrevToExam = func() map[string]string {
	m := make(map[string]string, len(ExamAbbrev))
	for full, abbr := range ExamAbbrev {
		m[abbr] = full
	}
	return m
}()

// CanonicalExamType resolves a token that may be a full exam type, a label
// variant, or a filename abbreviation to the canonical full name.
func CanonicalExamType(token string) (string, bool) {
	upper := strings.ToUpper(strings.TrimSpace(token))
	if full, ok := examLabelMap[upper]; ok {
		return full, true
	}
	if full, ok := abbrevToExam[upper]; ok {
		return full, true
	}
	return "", false
}

// AbbreviateExamType renders a canonical exam type for filename use.
func AbbreviateExamType(examType string) string {
	upper := strings.ToUpper(strings.TrimSpace(examType))
	if abbr, ok := ExamAbbrev[upper]; ok {
		return abbr
	}
	return upper
}
