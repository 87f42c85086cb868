package extract

import (
	"regexp"
	"strings"
	"unicode"
)

// Rule is one pattern in a field's extraction cascade. Rules for a field are
// tried in order; the first rule that produces at least one non-empty match
// wins the field and later rules are not consulted.
type Rule struct {
	Name string
	Find func(text string) []string
}

const examAlternation = `PRE[- ]?OCUPACIONAL|POST[- ]?OCUPACIONAL|PERI[OÓ]DICO|ANUAL|INGRESO|EGRESO|RETIRO`

var (
	reDniLabeled = regexp.MustCompile(`(?i)\bDNI\s*[:\-]?\s*(\d{8})\b`)
	reDniBare    = regexp.MustCompile(`\b(\d{8})\b`)

	reNameLabeled = regexp.MustCompile(`(?i)(?:APELLIDOS?\s+Y\s+NOMBRES?|NOMBRES?\s+Y\s+APELLIDOS?|` +
		`NOMBRE\s+COMPLETO|NOMBRES?)[.\s]*[:\-]\s*([A-ZÁÉÍÓÚÑa-záéíóúñ\s]{5,80})`)
	reNameUppercaseRun = regexp.MustCompile(`([A-ZÁÉÍÓÚÑ]{2,25}(?:\s+[A-ZÁÉÍÓÚÑ]{2,25}){2,4})`)

	reCompanyLabeled = regexp.MustCompile(`(?i)(?:EMPRESA|RAZ[OÓ]N\s+SOCIAL|CONTRATISTA|CLIENTE|` +
		`COMPA[NÑ][IÍ]A|COMPANY)(?:\s*/\s*\w+)*\s*[:\-|]?\s*([A-ZÁÉÍÓÚÑ0-9a-záéíóúñ&\s.]{3,120})`)
	reCompanyUpperWord = regexp.MustCompile(`[A-ZÁÉÍÓÚÑ]{3,}`)

	reExamCheckboxAfter  = regexp.MustCompile(`(?i)(` + examAlternation + `)\s*\|?\s*[xX✓✗☒]`)
	reExamCheckboxBefore = regexp.MustCompile(`(?i)[|]?\s*[xX✓✗☒]\s*\|?\s*(` + examAlternation + `)`)
	reExamLabeled        = regexp.MustCompile(`(?i)TIPO\s+DE\s+(?:EXAMEN|EVALUACI[OÓ]N)\s*[:\-]\s*(` + examAlternation + `)`)
	reExamContextual     = regexp.MustCompile(`(?i)EXAMEN\s+M[EÉ]DICO\s+(?:OCUPACIONAL\s+)?(` + examAlternation + `)`)

	reDateToken   = regexp.MustCompile(`\d{1,2}[/\-.]\d{1,2}[/\-.]\d{2,4}`)
	reDateLabeled = regexp.MustCompile(`(?i)(?:FECHA\s+DE\s+EVALUACI[OÓ]N|FECHA\s+DE\s+EXAMEN(?:\s+INICIAL)?|` +
		`F\.\s*DE\s+EXAMEN|FECHA\s+EXAMEN|FECHA\s+DE\s+ATENCI[OÓ]N|FECHA)\s*[:\-]?\s*` +
		`(\d{1,2}[/\-.]\d{1,2}[/\-.]\d{2,4})`)
	reDateYearFirst = regexp.MustCompile(`\d{4}[/-]\d{1,2}[/-]\d{1,2}`)

	reSpaces       = regexp.MustCompile(`\s+`)
	reLongDigitRun = regexp.MustCompile(`\d{6,}`)
)

// nameNoiseWords are form labels and OCR noise that terminate a person name.
var nameNoiseWords = map[string]struct{}{
	"AREA": {}, "DNI": {}, "CARGO": {}, "PUESTO": {}, "FECHA": {}, "EMPRESA": {}, "RUC": {},
	"TELEFONO": {}, "CELULAR": {}, "CORREO": {}, "EMAIL": {}, "DIRECCION": {},
	"DISTRITO": {}, "PROVINCIA": {}, "DEPARTAMENTO": {}, "PERU": {}, "LIMA": {},
	"CARNET": {}, "EXTRANJERIA": {}, "DOCUMENTO": {}, "IDENTIDAD": {},
	"TRABAJADOR": {}, "PACIENTE": {}, "EVALUADO": {}, "EXAMINADO": {},
	"CONTRATA": {}, "CONTRATISTA": {}, "SAC": {}, "SRL": {}, "EIRL": {},
	"OCUPACIONAL": {}, "MEDICO": {}, "EXAMEN": {}, "RESULTADO": {},
	"INGRESO": {}, "EGRESO": {}, "PERIODICO": {}, "PREOCUPACIONAL": {},
	"POSTOCUPACIONAL": {}, "RETIRO": {},
	"TIPO": {}, "EVALUACION": {}, "FORMATOS": {}, "PARA": {}, "CONSENTIMIENTO": {},
	"INFORMADO": {}, "NUMERO": {}, "PASAPORTE": {}, "SERVICIOS": {},
	"LOGISTICA": {}, "INFORME": {}, "LLENADO": {},
}

// companyKeywords mark an uppercase run as an organization, not a person.
var companyKeywords = []string{
	"CONSORCIO", "EMPRESA", "CONTRATISTA", "SAC", "S.A", "S.A.C", "S.R.L", "CENTRO", "MEDICO",
}

func cleanSpaces(s string) string {
	return reSpaces.ReplaceAllString(strings.TrimSpace(s), " ")
}

func firstLine(s string) string {
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		s = s[:idx]
	}
	return strings.TrimSpace(s)
}

// cleanPersonName trims a raw captured name: stops at the first noise word
// or digit run and caps the result at five words.
func cleanPersonName(raw string) string {
	words := strings.Fields(cleanSpaces(raw))
	var clean []string
	for _, w := range words {
		upper := strings.Trim(strings.ToUpper(w), ".,;:()")
		if _, noise := nameNoiseWords[upper]; noise {
			break
		}
		if len(upper) < 2 {
			continue
		}
		if isDigits(upper) {
			break
		}
		clean = append(clean, upper)
		if len(clean) >= 5 {
			break
		}
	}
	return strings.Join(clean, " ")
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

var (
	reAmpMisread  = regexp.MustCompile(`(\w)\s*á\s+(\w)`)
	reAmpDollar   = regexp.MustCompile(`&\$`)
	reAmpSpacing  = regexp.MustCompile(`\s*&\s*`)
	reCompanyJunk = regexp.MustCompile(`[^\p{L}\p{N}\s&.]`)
)

// cleanCompanyName repairs common OCR misreads of '&', rejects
// mostly-lowercase OCR garbage, and caps the name at five words.
func cleanCompanyName(raw string) string {
	raw = cleanSpaces(raw)
	raw = reAmpMisread.ReplaceAllString(raw, "$1&$2")
	raw = reAmpDollar.ReplaceAllString(raw, "&")
	raw = reAmpSpacing.ReplaceAllString(raw, "&")
	raw = reCompanyJunk.ReplaceAllString(raw, "")
	raw = cleanSpaces(raw)

	words := strings.Fields(raw)
	if len(words) > 3 {
		upperLed := 0
		for _, w := range words {
			r := []rune(w)
			if len(r) > 0 && unicode.IsUpper(r[0]) {
				upperLed++
			}
		}
		if upperLed*2 < len(words) {
			return ""
		}
	}
	if len(words) > 5 {
		words = words[:5]
	}
	return strings.Join(words, " ")
}

func hasCompanyKeyword(s string) bool {
	upper := strings.ToUpper(s)
	for _, kw := range companyKeywords {
		if strings.Contains(upper, kw) {
			return true
		}
	}
	return false
}

// dniRules: labeled token first, bare 8-digit run as fallback.
func dniRules() []Rule {
	return []Rule{
		{
			Name: "dni_labeled",
			Find: func(text string) []string {
				return captureAll(reDniLabeled, text)
			},
		},
		{
			Name: "dni_bare",
			Find: func(text string) []string {
				return captureAll(reDniBare, text)
			},
		},
	}
}

func nameRules() []Rule {
	return []Rule{
		{
			Name: "name_labeled",
			Find: func(text string) []string {
				var out []string
				for _, m := range reNameLabeled.FindAllStringSubmatch(text, -1) {
					cleaned := cleanPersonName(firstLine(m[1]))
					if len(strings.Fields(cleaned)) >= 2 {
						out = append(out, cleaned)
					}
				}
				return out
			},
		},
		{
			Name: "name_uppercase_run",
			Find: func(text string) []string {
				var out []string
				for _, m := range reNameUppercaseRun.FindAllStringSubmatch(text, -1) {
					raw := cleanSpaces(m[1])
					if hasCompanyKeyword(raw) {
						continue
					}
					cleaned := cleanPersonName(raw)
					if len(strings.Fields(cleaned)) >= 2 {
						out = append(out, cleaned)
					}
				}
				return out
			},
		},
	}
}

func companyRules() []Rule {
	return []Rule{
		{
			Name: "company_labeled",
			Find: func(text string) []string {
				var out []string
				for _, m := range reCompanyLabeled.FindAllStringSubmatch(text, -1) {
					cleaned := cleanCompanyName(firstLine(m[1]))
					if len(cleaned) >= 3 {
						out = append(out, cleaned)
					}
				}
				return out
			},
		},
		{
			Name: "company_uppercase_line",
			Find: func(text string) []string {
				var out []string
				lines := strings.Split(text, "\n")
				if len(lines) > 80 {
					lines = lines[:80]
				}
				for _, line := range lines {
					line = cleanSpaces(line)
					if len(line) <= 5 || len(line) >= 80 {
						continue
					}
					if !reCompanyUpperWord.MatchString(line) {
						continue
					}
					if reDateToken.MatchString(line) || reLongDigitRun.MatchString(line) {
						continue
					}
					// Standalone uppercase lines and CONSORCIO rows read as companies.
					if line != strings.ToUpper(line) && !strings.Contains(strings.ToUpper(line), "CONSORCIO") {
						continue
					}
					if cleaned := cleanCompanyName(line); len(cleaned) >= 3 {
						out = append(out, cleaned)
					}
				}
				return out
			},
		},
		{
			Name: "company_after_hyphen",
			Find: func(text string) []string {
				var out []string
				for _, line := range strings.Split(text, "\n") {
					idx := strings.Index(line, " - ")
					if idx < 0 {
						continue
					}
					cleaned := cleanCompanyName(line[idx+3:])
					if len(cleaned) >= 5 {
						out = append(out, cleaned)
					}
				}
				return out
			},
		},
	}
}

func examRules() []Rule {
	canonAll := func(matches []string) []string {
		var out []string
		for _, m := range matches {
			if full, ok := CanonicalExamType(m); ok {
				out = append(out, full)
			}
		}
		return out
	}
	return []Rule{
		{
			// Checkbox marks indicate the selected option, so they outrank labels.
			Name: "exam_checkbox",
			Find: func(text string) []string {
				matches := captureAll(reExamCheckboxAfter, text)
				matches = append(matches, captureAll(reExamCheckboxBefore, text)...)
				return canonAll(matches)
			},
		},
		{
			Name: "exam_labeled",
			Find: func(text string) []string {
				return canonAll(captureAll(reExamLabeled, text))
			},
		},
		{
			Name: "exam_contextual",
			Find: func(text string) []string {
				return canonAll(captureAll(reExamContextual, text))
			},
		},
		{
			Name: "exam_vocabulary",
			Find: func(text string) []string {
				upper := strings.ToUpper(text)
				for _, pair := range [][2]string{
					{"PRE-OCUPACIONAL", "PREOCUPACIONAL"},
					{"PRE OCUPACIONAL", "PREOCUPACIONAL"},
					{"POST-OCUPACIONAL", "POSTOCUPACIONAL"},
					{"POST OCUPACIONAL", "POSTOCUPACIONAL"},
				} {
					upper = strings.ReplaceAll(upper, pair[0], pair[1])
				}
				var out []string
				for _, t := range ExamTypes {
					if strings.Contains(upper, t) {
						out = append(out, t)
					}
				}
				return out
			},
		},
	}
}

func dateRules() []Rule {
	normalizeAll := func(matches []string) []string {
		var out []string
		for _, m := range matches {
			if norm := NormalizeDate(m); norm != "" {
				out = append(out, norm)
			}
		}
		return out
	}
	return []Rule{
		{
			Name: "date_labeled",
			Find: func(text string) []string {
				return normalizeAll(captureAll(reDateLabeled, text))
			},
		},
		{
			Name: "date_token",
			Find: func(text string) []string {
				// Year-first dates are lifted out before the day-first scan so
				// their tails do not double as bogus day-first tokens.
				matches := reDateYearFirst.FindAllString(text, -1)
				remaining := reDateYearFirst.ReplaceAllString(text, " ")
				matches = append(matches, reDateToken.FindAllString(remaining, -1)...)
				return normalizeAll(matches)
			},
		},
		{
			Name: "date_verbose",
			Find: func(text string) []string {
				return normalizeAll(reVerboseDate.FindAllString(text, -1))
			},
		},
	}
}

func captureAll(re *regexp.Regexp, text string) []string {
	var out []string
	for _, m := range re.FindAllStringSubmatch(text, -1) {
		v := strings.TrimSpace(m[1])
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

// fieldRules assembles the full cascade, keyed by field.
func fieldRules() map[FieldKind][]Rule {
	return map[FieldKind][]Rule{
		FieldDni:      dniRules(),
		FieldName:     nameRules(),
		FieldCompany:  companyRules(),
		FieldExamType: examRules(),
		FieldEvalDate: dateRules(),
	}
}
