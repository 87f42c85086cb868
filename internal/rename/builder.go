// Package rename synthesizes canonical filenames from extracted field
// values under the two supported naming conventions.
package rename

import (
	"errors"
	"regexp"
	"strings"

	"github.com/cmespinar/docrename/internal/extract"
)

// ErrNothingToName is returned when no field survives inclusion and
// emptiness filtering, so no filename can be produced. Callers use it to
// distinguish "nothing to show yet" from a deliberately blank value.
var ErrNothingToName = errors.New("no fields available to build a filename")

// Spec describes how a filename should be assembled: which convention,
// which fields to include, and in what order. Order must be a permutation
// of the five field kinds; DNI is always emitted regardless of Include.
type Spec struct {
	Format  extract.Format             `json:"format"`
	Include map[extract.FieldKind]bool `json:"include"`
	Order   []extract.FieldKind        `json:"order"`
}

// CanonicalOrder returns the default field order for a format. The standard
// format additionally carries the fixed org token after the exam type; that
// token is not a field and is handled by Build.
func CanonicalOrder(f extract.Format) []extract.FieldKind {
	if f == extract.FormatHudbay {
		return []extract.FieldKind{
			extract.FieldEvalDate,
			extract.FieldExamType,
			extract.FieldDni,
			extract.FieldName,
			extract.FieldCompany,
		}
	}
	return []extract.FieldKind{
		extract.FieldDni,
		extract.FieldName,
		extract.FieldCompany,
		extract.FieldExamType,
		extract.FieldEvalDate,
	}
}

// DefaultSpec returns a spec with every field included in the format's
// canonical order.
func DefaultSpec(f extract.Format) Spec {
	include := make(map[extract.FieldKind]bool, len(extract.AllFields))
	for _, field := range extract.AllFields {
		include[field] = true
	}
	return Spec{Format: f, Include: include, Order: CanonicalOrder(f)}
}

// WithFormat switches the spec to another format: the order resets to that
// format's canonical order while each field's include toggle is preserved.
func (s Spec) WithFormat(f extract.Format) Spec {
	include := make(map[extract.FieldKind]bool, len(s.Include))
	for k, v := range s.Include {
		include[k] = v
	}
	return Spec{Format: f, Include: include, Order: CanonicalOrder(f)}
}

// normalizedOrder validates that the spec's order is a permutation of all
// five fields, falling back to the canonical order when it is not.
func (s Spec) normalizedOrder() []extract.FieldKind {
	if len(s.Order) != len(extract.AllFields) {
		return CanonicalOrder(s.Format)
	}
	seen := make(map[extract.FieldKind]bool, len(s.Order))
	for _, f := range s.Order {
		if !f.IsValid() || seen[f] {
			return CanonicalOrder(s.Format)
		}
		seen[f] = true
	}
	return s.Order
}

func (s Spec) included(f extract.FieldKind) bool {
	if f == extract.FieldDni {
		return true
	}
	if s.Include == nil {
		return true
	}
	on, known := s.Include[f]
	return !known || on
}

var reIllegalChars = regexp.MustCompile(`[<>:"/\\|?*]`)

// Build assembles the final filename from field values under the given
// spec. The result always ends in ".pdf"; ErrNothingToName is returned
// instead of an empty name.
func Build(fields map[extract.FieldKind]string, spec Spec) (string, error) {
	rendered := renderFields(fields, spec.Format)
	order := spec.normalizedOrder()

	var name string
	if spec.Format == extract.FormatHudbay {
		name = joinHudbay(rendered, spec, order)
	} else {
		name = joinStandard(rendered, spec, order)
	}

	name = sanitize(name)
	if name == "" {
		return "", ErrNothingToName
	}
	return name + ".pdf", nil
}

// renderFields normalizes raw values into their filename form: names and
// companies upper-cased, exam types abbreviated, dates in DD.MM.YY.
func renderFields(fields map[extract.FieldKind]string, _ extract.Format) map[extract.FieldKind]string {
	out := make(map[extract.FieldKind]string, len(extract.AllFields))
	for _, f := range extract.AllFields {
		v := collapseSpaces(fields[f])
		switch f {
		case extract.FieldName, extract.FieldCompany:
			v = strings.ToUpper(v)
		case extract.FieldExamType:
			if v != "" {
				v = extract.AbbreviateExamType(v)
			}
		case extract.FieldEvalDate:
			v = extract.ShortDate(v)
		}
		out[f] = v
	}
	return out
}

// joinStandard emits hyphen-separated segments. The fixed org token rides
// with the exam-type slot so reordering keeps them adjacent.
func joinStandard(rendered map[extract.FieldKind]string, spec Spec, order []extract.FieldKind) string {
	var parts []string
	fieldCount := 0
	for _, f := range order {
		if spec.included(f) && rendered[f] != "" {
			parts = append(parts, rendered[f])
			fieldCount++
		}
		if f == extract.FieldExamType {
			parts = append(parts, extract.OrgToken)
		}
	}
	// The org token alone is not a name.
	if fieldCount == 0 {
		return ""
	}
	return strings.Join(parts, "-")
}

// joinHudbay emits space-separated segments, with name and company fused
// into a single hyphen-joined segment at the position of whichever of the
// two comes first in the order.
func joinHudbay(rendered map[extract.FieldKind]string, spec Spec, order []extract.FieldKind) string {
	var nameCompany []string
	if spec.included(extract.FieldName) && rendered[extract.FieldName] != "" {
		nameCompany = append(nameCompany, rendered[extract.FieldName])
	}
	if spec.included(extract.FieldCompany) && rendered[extract.FieldCompany] != "" {
		nameCompany = append(nameCompany, rendered[extract.FieldCompany])
	}
	combined := strings.Join(nameCompany, "-")

	var parts []string
	emitted := false
	for _, f := range order {
		switch f {
		case extract.FieldName, extract.FieldCompany:
			if !emitted && combined != "" {
				parts = append(parts, combined)
				emitted = true
			}
		default:
			if spec.included(f) && rendered[f] != "" {
				parts = append(parts, rendered[f])
			}
		}
	}
	return strings.Join(parts, " ")
}

// sanitize strips characters that are illegal in filenames and trims any
// leading or trailing separators left behind by empty segments.
func sanitize(name string) string {
	name = reIllegalChars.ReplaceAllString(name, "")
	name = collapseSpaces(name)
	return strings.Trim(name, "-. ")
}

var reSpaceRuns = regexp.MustCompile(`\s+`)

func collapseSpaces(s string) string {
	return reSpaceRuns.ReplaceAllString(strings.TrimSpace(s), " ")
}
