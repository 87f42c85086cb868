package extract

import (
	"regexp"
	"strings"
)

// OrgToken is the fixed organization segment carried by standard-format
// filenames.
const OrgToken = "CMESPINAR"

var (
	reDni8          = regexp.MustCompile(`^\d{8}$`)
	reDniAnywhere   = regexp.MustCompile(`(\d{8})`)
	reDateAnywhere  = regexp.MustCompile(`(\d{1,2}[.\-/]\d{1,2}[.\-/]\d{2,4})`)
	reStandardStart = regexp.MustCompile(`^\d{8}-`)
	reHudbayStart   = regexp.MustCompile(`^\d{1,2}\.\d{1,2}\.\d{2,4}\s`)

	reGenericNameAfterDni = regexp.MustCompile(`\d{8}\s+([A-ZÁÉÍÓÚÑ][A-ZÁÉÍÓÚÑ\s]{8,50}?)\s*-`)

	// Aliases the hudbay logo tends to OCR into, plus hudbay document ids.
	contentFormatMarkers = []*regexp.Regexp{
		regexp.MustCompile(`H\s*\.?\s*U?\s*D\s*B\s*AY`),
		regexp.MustCompile(`HUDBAY`),
		regexp.MustCompile(`FOR-SS[O0]-\d{3}`),
		regexp.MustCompile(`FORMATOS\s+PARA\s+LA\s+VALORACI[OÓ]N\s+DE\s+LA\s+APTITUD`),
		regexp.MustCompile(`\bHBP\b`),
	}
)

// DetectContentFormat inspects document text for hudbay markers. It returns
// FormatHudbay when one is found and "" when the text is inconclusive.
func DetectContentFormat(text string) Format {
	if text == "" {
		return ""
	}
	upper := strings.ToUpper(text)
	for _, re := range contentFormatMarkers {
		if re.MatchString(upper) {
			return FormatHudbay
		}
	}
	return ""
}

// DetectFilenameFormat classifies a filename by shape: standard names start
// with an 8-digit DNI, use hyphens and carry the org token; hudbay names
// start with a short date and use spaces. Unrecognized shapes return "".
func DetectFilenameFormat(filename string) Format {
	name := stripPDFExt(filename)
	if name == "" {
		return ""
	}
	if reStandardStart.MatchString(name) && strings.Contains(strings.ToUpper(name), OrgToken) {
		return FormatStandard
	}
	if reHudbayStart.MatchString(name) {
		return FormatHudbay
	}
	return ""
}

// ParseFilename extracts field values from a legacy filename, used as a
// fallback when content extraction yields nothing for a field.
func ParseFilename(filename string) map[FieldKind]string {
	name := stripPDFExt(filename)
	if name == "" {
		return nil
	}
	switch DetectFilenameFormat(filename) {
	case FormatHudbay:
		return parseHudbayFilename(name)
	case FormatStandard:
		return parseStandardFilename(name)
	default:
		return parseGenericFilename(name)
	}
}

func stripPDFExt(filename string) string {
	name := strings.TrimSpace(filename)
	lower := strings.ToLower(name)
	if strings.HasSuffix(lower, ".pdf") {
		name = name[:len(name)-len(".pdf")]
	}
	return strings.TrimSpace(name)
}

// parseHudbayFilename handles 'DD.MM.YY TIPO DNI NOMBRE-EMPRESA'.
func parseHudbayFilename(name string) map[FieldKind]string {
	parts := map[FieldKind]string{}

	main := name
	company := ""
	if idx := strings.Index(name, "-"); idx >= 0 {
		main, company = name[:idx], name[idx+1:]
	}

	tokens := strings.Fields(main)
	i := 0
	if i < len(tokens) && looksLikeShortDate(tokens[i]) {
		parts[FieldEvalDate] = tokens[i]
		i++
	}
	if i < len(tokens) {
		if exam, ok := CanonicalExamType(tokens[i]); ok {
			parts[FieldExamType] = exam
			i++
		}
	}
	if i < len(tokens) && reDni8.MatchString(tokens[i]) {
		parts[FieldDni] = tokens[i]
		i++
	}
	if i < len(tokens) {
		person := strings.TrimSpace(strings.Join(tokens[i:], " "))
		if len(strings.Fields(person)) >= 2 {
			parts[FieldName] = person
		}
	}
	if c := strings.TrimSpace(company); c != "" {
		parts[FieldCompany] = c
	}
	return parts
}

// parseStandardFilename handles 'DNI-NOMBRE-EMPRESA-TIPO-CMESPINAR-DD.MM.YY'.
// Known segments are peeled from both ends; what remains in the middle is
// name then company.
func parseStandardFilename(name string) map[FieldKind]string {
	segments := strings.Split(name, "-")
	if len(segments) < 3 {
		return parseGenericFilename(name)
	}
	parts := map[FieldKind]string{}

	start := 0
	end := len(segments) - 1

	if reDni8.MatchString(strings.TrimSpace(segments[0])) {
		parts[FieldDni] = strings.TrimSpace(segments[0])
		start = 1
	}
	if tok := strings.TrimSpace(segments[end]); looksLikeShortDate(tok) {
		parts[FieldEvalDate] = tok
		end--
	}
	if end >= start && strings.EqualFold(strings.TrimSpace(segments[end]), OrgToken) {
		end--
	}
	if end >= start {
		if exam, ok := CanonicalExamType(strings.TrimSpace(segments[end])); ok {
			parts[FieldExamType] = exam
			end--
		}
	}

	middle := segments[start : end+1]
	switch {
	case len(middle) >= 2:
		parts[FieldName] = strings.TrimSpace(middle[0])
		parts[FieldCompany] = strings.TrimSpace(strings.Join(middle[1:], "-"))
	case len(middle) == 1:
		val := strings.TrimSpace(middle[0])
		runes := []rune(val)
		if len(strings.Fields(val)) >= 2 && len(runes) > 0 && !isDigits(string(runes[0])) {
			parts[FieldName] = val
		} else if val != "" {
			parts[FieldCompany] = val
		}
	}
	return parts
}

// parseGenericFilename is the best-effort path for unrecognized shapes.
func parseGenericFilename(name string) map[FieldKind]string {
	parts := map[FieldKind]string{}

	if m := reDateAnywhere.FindStringSubmatch(name); m != nil {
		parts[FieldEvalDate] = m[1]
	}
	if m := reDniAnywhere.FindStringSubmatch(name); m != nil {
		parts[FieldDni] = m[1]
	}

	upper := strings.ToUpper(name)
	examTokens := append([]string{}, ExamTypes...)
	examTokens = append(examTokens, "EMPO", "EMOA", "EMOR")
	for _, token := range examTokens {
		if strings.Contains(upper, token) {
			if exam, ok := CanonicalExamType(token); ok {
				parts[FieldExamType] = exam
				break
			}
		}
	}

	if m := reGenericNameAfterDni.FindStringSubmatch(name); m != nil {
		person := cleanSpaces(m[1])
		if len(strings.Fields(person)) >= 2 && !isDigits(strings.ReplaceAll(person, " ", "")) {
			parts[FieldName] = person
		}
	}

	if idx := strings.Index(name, "-"); idx >= 0 {
		companyWords := strings.Fields(strings.TrimSpace(name[idx+1:]))
		if len(companyWords) > 4 {
			companyWords = companyWords[:4]
		}
		if len(companyWords) > 0 {
			parts[FieldCompany] = strings.Join(companyWords, " ")
		}
	}
	return parts
}
