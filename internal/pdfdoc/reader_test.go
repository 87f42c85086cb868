package pdfdoc

import (
	"testing"

	"github.com/ledongthuc/pdf"
)

func run(s string, x, y, w, size float64) pdf.Text {
	return pdf.Text{S: s, X: x, Y: y, W: w, FontSize: size}
}

func TestGroupWordsAssemblesRuns(t *testing.T) {
	// "DNI 77206347" laid out as character runs on one baseline, with a
	// space run between the words.
	runs := []pdf.Text{
		run("D", 100, 700, 6, 10),
		run("N", 106, 700, 6, 10),
		run("I", 112, 700, 4, 10),
		run(" ", 116, 700, 3, 10),
		run("7", 120, 700, 6, 10),
		run("7", 126, 700, 6, 10),
		run("206347", 132, 700, 36, 10),
	}

	// 1:1 scale, 800pt tall page.
	words := groupWords(runs, 1.0, 800)
	if len(words) != 2 {
		t.Fatalf("got %d words, want 2: %v", len(words), words)
	}

	if words[0].Text != "DNI" {
		t.Errorf("first word = %q", words[0].Text)
	}
	if words[1].Text != "77206347" {
		t.Errorf("second word = %q", words[1].Text)
	}

	// Origin flip: baseline y=700 on an 800pt page lands near the top of
	// the raster.
	if words[0].Y != 800-700-10 {
		t.Errorf("y = %v, want %v", words[0].Y, 800-700-10)
	}
	if words[1].X != 120 || words[1].W != 48 {
		t.Errorf("number box = %+v", words[1])
	}
}

func TestGroupWordsSplitsOnGap(t *testing.T) {
	runs := []pdf.Text{
		run("AB", 10, 100, 12, 10),
		// Gap of 20pt, far beyond FontSize*0.35.
		run("CD", 42, 100, 12, 10),
	}
	words := groupWords(runs, 1.0, 200)
	if len(words) != 2 {
		t.Fatalf("got %d words, want 2: %v", len(words), words)
	}
}

func TestGroupWordsSplitsOnBaselineChange(t *testing.T) {
	runs := []pdf.Text{
		run("AB", 10, 100, 12, 10),
		run("CD", 22, 130, 12, 10),
	}
	words := groupWords(runs, 1.0, 200)
	if len(words) != 2 {
		t.Fatalf("different baselines must split words: %v", words)
	}
}

func TestGroupWordsScales(t *testing.T) {
	runs := []pdf.Text{run("X", 72, 72, 7.2, 10)}

	// 144 DPI doubles every coordinate.
	words := groupWords(runs, 2.0, 400)
	if len(words) != 1 {
		t.Fatalf("words = %v", words)
	}
	w := words[0]
	if w.X != 144 {
		t.Errorf("x = %v", w.X)
	}
	if w.W < 14.39 || w.W > 14.41 {
		t.Errorf("w = %v", w.W)
	}
	if w.Y != (400-72-10)*2 {
		t.Errorf("y = %v", w.Y)
	}
}

func TestIsSpaceRun(t *testing.T) {
	if !isSpaceRun("") || !isSpaceRun("  \t") {
		t.Error("blank runs must count as spaces")
	}
	if isSpaceRun("a ") {
		t.Error("runs with content are not spaces")
	}
}
