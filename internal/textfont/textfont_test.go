package textfont

import (
	"image"
	"image/color"
	"strings"
	"sync"
	"testing"
)

func TestMeasureGrowsWithText(t *testing.T) {
	s := DefaultSpec()
	w1, h1, base := Measure(s, "a")
	w2, h2, _ := Measure(s, "abcdef")
	if w2 <= w1 {
		t.Fatalf("width did not grow: %d vs %d", w1, w2)
	}
	if h1 != h2 || h1 <= 0 {
		t.Fatalf("unexpected heights %d %d", h1, h2)
	}
	if base <= 0 || base > h1 {
		t.Fatalf("baseline %d outside line height %d", base, h1)
	}
	_, h3, _ := Measure(s, "a\nb")
	if h3 != 2*h1 {
		t.Fatalf("two lines should be twice as tall: got %d want %d", h3, 2*h1)
	}
}

func TestWrapPreservesOffsets(t *testing.T) {
	s := Spec{Family: FamilyFixed}
	text := "hello brave new world"
	lines := Wrap(s, text, Advance(s, "hello brave"))
	if len(lines) < 2 {
		t.Fatalf("expected wrapping, got %+v", lines)
	}
	runes := []rune(text)
	for _, l := range lines {
		if got := string(runes[l.Start:l.End]); got != l.Text {
			t.Fatalf("line %+v does not match source slice %q", l, got)
		}
		if strings.HasPrefix(l.Text, " ") {
			t.Fatalf("line starts with the break space: %q", l.Text)
		}
	}
	if lines[0].Text != "hello brave" {
		t.Fatalf("first line = %q", lines[0].Text)
	}
}

func TestWrapSplitsLongWords(t *testing.T) {
	s := Spec{Family: FamilyFixed}
	lines := Wrap(s, "abcdefghij", Advance(s, "abcd"))
	if len(lines) != 3 {
		t.Fatalf("got %d lines: %+v", len(lines), lines)
	}
	if lines[0].Text != "abcd" || lines[2].Text != "ij" {
		t.Fatalf("unexpected split %+v", lines)
	}
}

func TestWrapHardBreaks(t *testing.T) {
	lines := Wrap(DefaultSpec(), "a\n\nb", 0)
	if len(lines) != 3 {
		t.Fatalf("got %d lines", len(lines))
	}
	if lines[1].Text != "" || lines[2].Start != 3 {
		t.Fatalf("unexpected lines %+v", lines)
	}
	if got := Wrap(DefaultSpec(), "", 50); len(got) != 1 || got[0].Text != "" {
		t.Fatalf("empty text should produce one empty line, got %+v", got)
	}
}

func TestParseFamily(t *testing.T) {
	for in, want := range map[string]Family{"": FamilySans, "Mono": FamilyMono, "fixed": FamilyFixed} {
		got, err := ParseFamily(in)
		if err != nil || got != want {
			t.Errorf("ParseFamily(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParseFamily("comic"); err == nil {
		t.Error("expected error for unknown family")
	}
}

func TestDrawMarksPixels(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 60, 30))
	Draw(img, 2, 2, "Hi", color.Black, Spec{Size: 18, Bold: true})
	for _, px := range img.Pix {
		if px != 0 {
			return
		}
	}
	t.Fatal("no pixels drawn")
}

func TestConcurrentDrawAndMeasure(t *testing.T) {
	s := Spec{Family: FamilySans, Size: 32, Bold: true}
	var wg sync.WaitGroup
	for g := 0; g < 2; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			dst := image.NewRGBA(image.Rect(0, 0, 400, 60))
			for i := 0; i < 500; i++ {
				Draw(dst, 0, 0, "export failed 0123", color.Black, s)
				if w, _, _ := Measure(s, "export failed 0123"); w <= 0 {
					t.Errorf("measure returned width %d", w)
					return
				}
			}
		}()
	}
	wg.Wait()
}
