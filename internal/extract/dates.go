package extract

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var spanishMonths = map[string]int{
	"enero":      1,
	"febrero":    2,
	"marzo":      3,
	"abril":      4,
	"mayo":       5,
	"junio":      6,
	"julio":      7,
	"agosto":     8,
	"septiembre": 9,
	"setiembre":  9,
	"octubre":    10,
	"noviembre":  11,
	"diciembre":  12,
}

var (
	reVerboseDate = regexp.MustCompile(`(?i)\b(\d{1,2})\s+(?:de\s+)?` +
		`(enero|febrero|marzo|abril|mayo|junio|julio|agosto|septiembre|setiembre|octubre|noviembre|diciembre)` +
		`\s+(?:de\s+)?(\d{4})\b`)
	reDateJunk  = regexp.MustCompile(`[^\d./-]`)
	reDashRuns  = regexp.MustCompile(`-{2,}`)
	reShortDate = regexp.MustCompile(`^\d{1,2}\.\d{1,2}\.\d{2,4}$`)
)

// NormalizeDate converts any recognized date spelling to the canonical
// internal form DD-MM-YY (two-digit year). The function is idempotent:
// feeding it an already-normalized date returns it unchanged. Unrecognized
// inputs come back cleaned but otherwise untouched.
func NormalizeDate(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}

	if m := reVerboseDate.FindStringSubmatch(s); m != nil {
		day, _ := strconv.Atoi(m[1])
		month := spanishMonths[strings.ToLower(m[2])]
		year, _ := strconv.Atoi(m[3])
		return fmt.Sprintf("%02d-%02d-%02d", day, month, year%100)
	}

	cleaned := reDateJunk.ReplaceAllString(s, "")
	cleaned = strings.ReplaceAll(cleaned, ".", "-")
	cleaned = strings.ReplaceAll(cleaned, "/", "-")
	cleaned = reDashRuns.ReplaceAllString(cleaned, "-")
	cleaned = strings.Trim(cleaned, "-")

	parts := strings.Split(cleaned, "-")
	if len(parts) != 3 {
		return cleaned
	}

	// Year-first dates (2025-12-31) are flipped to day-first.
	if len(parts[0]) == 4 {
		parts[0], parts[2] = parts[2], parts[0]
	}

	day, errD := strconv.Atoi(parts[0])
	month, errM := strconv.Atoi(parts[1])
	year, errY := strconv.Atoi(parts[2])
	if errD != nil || errM != nil || errY != nil {
		return cleaned
	}
	return fmt.Sprintf("%02d-%02d-%02d", day, month, year%100)
}

// ShortDate renders a date in the period-separated DD.MM.YY display form
// used inside synthesized filenames.
func ShortDate(s string) string {
	norm := NormalizeDate(s)
	if norm == "" {
		return ""
	}
	return strings.ReplaceAll(norm, "-", ".")
}

// looksLikeShortDate reports whether a token has the DD.MM.YY shape used by
// hudbay-style filenames.
func looksLikeShortDate(token string) bool {
	return reShortDate.MatchString(token)
}
