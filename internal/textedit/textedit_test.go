package textedit

import (
	"image"
	"testing"

	"github.com/example/shineymark/internal/annotation"
	"github.com/example/shineymark/internal/textfont"
)

func newText() *annotation.Annotation {
	return annotation.New(annotation.KindText, image.Pt(10, 20), annotation.DefaultStyle())
}

func TestInsertWritesBack(t *testing.T) {
	a := newText()
	e := Begin(a, true)
	e.InsertString("helo")
	e.Left()
	e.Insert('l')
	if a.Text != "hello" {
		t.Fatalf("text = %q", a.Text)
	}
	if e.Cursor() != 4 {
		t.Fatalf("cursor = %d", e.Cursor())
	}
}

func TestBackspaceAndDelete(t *testing.T) {
	a := newText()
	a.Text = "abcd"
	e := Begin(a, false)
	if e.Cursor() != 4 {
		t.Fatalf("cursor should start at the end, got %d", e.Cursor())
	}
	e.Backspace()
	e.Home()
	if e.Backspace() {
		t.Fatal("backspace at start should be a no-op")
	}
	e.Delete()
	if a.Text != "bc" {
		t.Fatalf("text = %q", a.Text)
	}
	e.End()
	if e.Delete() {
		t.Fatal("delete at end should be a no-op")
	}
}

func TestCursorClamped(t *testing.T) {
	e := Begin(newText(), true)
	if e.Left() || e.Right() {
		t.Fatal("cursor moved inside an empty buffer")
	}
	e.InsertString("ü1")
	if e.Len() != 2 || e.Cursor() != 2 {
		t.Fatalf("len %d cursor %d", e.Len(), e.Cursor())
	}
	e.SetCursor(99)
	if e.Cursor() != 2 {
		t.Fatalf("cursor = %d", e.Cursor())
	}
}

func TestCommitBlankRequestsRemoval(t *testing.T) {
	e := Begin(newText(), true)
	e.InsertString("   ")
	if e.Commit() {
		t.Fatal("blank text should not be kept")
	}
	e.InsertString("x")
	if !e.Commit() {
		t.Fatal("non-blank text should be kept")
	}
}

func TestCancelRestoresExisting(t *testing.T) {
	a := newText()
	a.Text = "keep me"
	e := Begin(a, false)
	e.Backspace()
	e.InsertString("!!")
	if !e.Cancel() {
		t.Fatal("existing text should survive cancel")
	}
	if a.Text != "keep me" {
		t.Fatalf("text = %q", a.Text)
	}
}

func TestCancelNewDiscardsEmpty(t *testing.T) {
	e := Begin(newText(), true)
	if e.Cancel() {
		t.Fatal("empty new text should be removed on cancel")
	}
	e2 := Begin(newText(), true)
	e2.InsertString("typed")
	if !e2.Cancel() {
		t.Fatal("typed new text is kept as-is")
	}
}

func TestCaretFollowsMeasuredWidth(t *testing.T) {
	a := newText()
	a.Font = textfont.Spec{Family: textfont.FamilyFixed}
	e := Begin(a, true)
	start := e.Caret()
	if start.Min != a.Anchor || start.Dx() != 1 {
		t.Fatalf("caret %v", start)
	}
	e.InsertString("abc")
	if got, want := e.Caret().Min.X, a.Anchor.X+textfont.Advance(a.Font, "abc"); got != want {
		t.Fatalf("caret x = %d, want %d", got, want)
	}
	e.Home()
	if e.Caret().Min.X != a.Anchor.X {
		t.Fatal("caret should return to the anchor")
	}
}

func TestCaretWrapsInRegion(t *testing.T) {
	a := newText()
	a.Font = textfont.Spec{Family: textfont.FamilyFixed}
	a.IsRegionText = true
	a.Anchor = image.Pt(0, 0)
	a.Opposite = image.Pt(2*annotation.TextInset+textfont.Advance(a.Font, "abcd"), 200)
	e := Begin(a, true)
	e.InsertString("abcd efgh")
	c := e.Caret()
	lh := textfont.LineHeight(a.Font)
	if c.Min.Y != annotation.TextInset+lh {
		t.Fatalf("caret should sit on the second line, got %v", c)
	}
	if want := annotation.TextInset + textfont.Advance(a.Font, "efgh"); c.Min.X != want {
		t.Fatalf("caret x = %d, want %d", c.Min.X, want)
	}
}
