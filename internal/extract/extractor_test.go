package extract

import (
	"strings"
	"testing"
)

const sampleReport = `EXAMEN MEDICO OCUPACIONAL
APELLIDOS Y NOMBRES: QUISPE MAMANI JUAN CARLOS
DNI: 77206347
EMPRESA: MINERA LOS ANDES SAC
TIPO DE EXAMEN: PERIODICO
FECHA DE EVALUACION: 31/12/2025
`

func TestExtractFromContent(t *testing.T) {
	res := NewExtractor().Extract(sampleReport, "scan_001.pdf")

	if !res.Success {
		t.Fatal("expected success with a DNI present")
	}

	expected := map[FieldKind]string{
		FieldDni:      "77206347",
		FieldName:     "QUISPE MAMANI JUAN CARLOS",
		FieldCompany:  "MINERA LOS ANDES SAC",
		FieldExamType: "PERIODICO",
		FieldEvalDate: "31-12-25",
	}
	for field, want := range expected {
		if got := res.Defaults[field]; got != want {
			t.Errorf("default %s = %q, want %q", field, got, want)
		}
	}

	for field, cands := range res.Candidates {
		for i, c := range cands {
			if c.Rank != i {
				t.Errorf("%s candidate %d has rank %d", field, i, c.Rank)
			}
			if c.Field != field {
				t.Errorf("%s candidate carries field %s", field, c.Field)
			}
		}
	}
}

func TestExtractScenarioDates(t *testing.T) {
	text := "DNI: 77206347 algo TIPO DE EXAMEN: PERIODICO algo FECHA: 31/12/2025"
	res := NewExtractor().Extract(text, "")

	if res.Defaults[FieldDni] != "77206347" {
		t.Errorf("dni = %q", res.Defaults[FieldDni])
	}
	if res.Defaults[FieldExamType] != "PERIODICO" {
		t.Errorf("exam = %q", res.Defaults[FieldExamType])
	}
	if AbbreviateExamType(res.Defaults[FieldExamType]) != "EMOA" {
		t.Errorf("abbreviation = %q", AbbreviateExamType(res.Defaults[FieldExamType]))
	}
	if res.Defaults[FieldEvalDate] != "31-12-25" {
		t.Errorf("date = %q", res.Defaults[FieldEvalDate])
	}
}

func TestExtractFilenameFallback(t *testing.T) {
	// No usable content text: every field must come from the filename.
	res := NewExtractor().Extract("", "31.12.25 EMOA 77206347 QUISPE MAMANI-MINERA SAC.pdf")

	if !res.Success {
		t.Fatal("expected success from filename-derived DNI")
	}
	if res.DetectedFormat != FormatHudbay {
		t.Errorf("detected format = %q, want hudbay", res.DetectedFormat)
	}

	cands := res.Candidates[FieldDni]
	if len(cands) != 1 {
		t.Fatalf("dni candidates = %v", cands)
	}
	if cands[0].Origin != OriginFilename {
		t.Errorf("origin = %q, want filename", cands[0].Origin)
	}
	if res.Defaults[FieldEvalDate] != "31-12-25" {
		t.Errorf("filename date not normalized: %q", res.Defaults[FieldEvalDate])
	}
	if res.Defaults[FieldExamType] != "PERIODICO" {
		t.Errorf("exam = %q", res.Defaults[FieldExamType])
	}
}

func TestExtractContentOutranksFilename(t *testing.T) {
	text := "DNI: 11111111"
	res := NewExtractor().Extract(text, "31.12.25 EMOA 22222222 QUISPE MAMANI-MINERA SAC.pdf")

	cands := res.Candidates[FieldDni]
	if len(cands) != 2 {
		t.Fatalf("expected content and filename candidates, got %v", cands)
	}
	if cands[0].Value != "11111111" || cands[0].Origin != OriginContent {
		t.Errorf("top candidate = %+v", cands[0])
	}
	if cands[1].Value != "22222222" || cands[1].Origin != OriginFilename {
		t.Errorf("fallback candidate = %+v", cands[1])
	}
	if res.Defaults[FieldDni] != "11111111" {
		t.Errorf("default = %q", res.Defaults[FieldDni])
	}
}

func TestExtractNoDni(t *testing.T) {
	res := NewExtractor().Extract("documento sin datos utiles", "scan.pdf")

	if res.Success {
		t.Fatal("expected success=false without a DNI")
	}
	if res.Defaults[FieldDni] != "" {
		t.Errorf("dni default = %q", res.Defaults[FieldDni])
	}

	found := false
	for _, note := range res.Notes {
		if strings.Contains(note, "DNI") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a DNI note, got %v", res.Notes)
	}
}

func TestExtractNotesForMissingFields(t *testing.T) {
	res := NewExtractor().Extract("DNI: 77206347", "")

	if !res.Success {
		t.Fatal("DNI alone should still be a success")
	}
	if len(res.Notes) < 4 {
		t.Errorf("expected a note per missing field, got %v", res.Notes)
	}
}

func TestDetectFormatPrecedence(t *testing.T) {
	// Content markers win over filename shape.
	res := NewExtractor().Extract(
		"FOR-SSO-123 DNI: 77206347",
		"77206347-QUISPE-MINERA-EMOA-CMESPINAR-31.12.25.pdf",
	)
	if res.DetectedFormat != FormatHudbay {
		t.Errorf("format = %q, want hudbay from content markers", res.DetectedFormat)
	}

	// Neither content nor filename recognized: standard is the default.
	res = NewExtractor().Extract("DNI: 77206347", "scan.pdf")
	if res.DetectedFormat != FormatStandard {
		t.Errorf("format = %q, want standard default", res.DetectedFormat)
	}
}

func TestExtractFirstRuleWins(t *testing.T) {
	// A labeled DNI suppresses the bare-digit fallback entirely.
	text := "DNI: 77206347\nregistro 99999999"
	res := NewExtractor().Extract(text, "")

	for _, c := range res.Candidates[FieldDni] {
		if c.Value == "99999999" {
			t.Errorf("bare-digit rule ran despite labeled match: %v", res.Candidates[FieldDni])
		}
	}
}
