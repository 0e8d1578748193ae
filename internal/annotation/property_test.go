package annotation

import (
	"image"
	"testing"

	"pgregory.net/rapid"
)

func genPoint(t *rapid.T, label string) image.Point {
	return image.Pt(rapid.IntRange(-500, 500).Draw(t, label+"_x"), rapid.IntRange(-500, 500).Draw(t, label+"_y"))
}

func genAnnotation(t *rapid.T) *Annotation {
	kind := Kind(rapid.IntRange(0, NumKinds-1).Draw(t, "kind"))
	style := DefaultStyle()
	style.Thickness = rapid.IntRange(1, 12).Draw(t, "thickness")
	a := New(kind, genPoint(t, "anchor"), style)
	a.Opposite = genPoint(t, "opposite")
	if kind == KindText {
		a.IsRegionText = rapid.Bool().Draw(t, "region")
		a.Text = rapid.StringN(0, 20, -1).Draw(t, "text")
		if !a.IsRegionText {
			a.Opposite = a.Anchor
		}
	}
	return a
}

func TestBoundsNeverNegative(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		a := genAnnotation(t)
		b := a.Bounds()
		if b.Dx() < 0 || b.Dy() < 0 {
			t.Fatalf("negative bounds %v for %v", b, a)
		}
	})
}

func TestContainsPointTotal(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		a := genAnnotation(t)
		if rapid.Bool().Draw(t, "degenerate") {
			a.Opposite = a.Anchor
		}
		p := genPoint(t, "probe")
		tol := rapid.IntRange(-1, 20).Draw(t, "tolerance")
		_ = a.ContainsPoint(p, tol)
		if a.Kind != KindText && !a.ContainsPoint(a.Anchor, tol) {
			t.Fatalf("%v does not contain its own anchor", a)
		}
	})
}

func TestUndoReversesCreate(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		c := NewCollection()
		n := rapid.IntRange(0, 8).Draw(t, "prefill")
		for i := 0; i < n; i++ {
			c.Add(genAnnotation(t))
		}
		before := c.Len()
		c.Add(genAnnotation(t))
		if c.Len() != before+1 {
			t.Fatalf("create did not grow collection")
		}
		c.Undo()
		if c.Len() != before {
			t.Fatalf("undo left %d items, want %d", c.Len(), before)
		}
	})
}

func TestRemapContainedIsTranslation(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		crop := image.Rect(-200, -200, 200, 200)
		a := genAnnotation(t)
		b := a.Bounds()
		if b.Min.X < crop.Min.X || b.Min.Y < crop.Min.Y || b.Max.X > crop.Max.X || b.Max.Y > crop.Max.Y {
			return
		}
		out := RemapForCrop(a, crop)
		if out == nil {
			t.Fatalf("contained %v was dropped", a)
		}
		want := a.Anchor.Sub(crop.Min)
		if out.Anchor != want {
			t.Fatalf("anchor %v, want %v", out.Anchor, want)
		}
	})
}

func TestRemapOutsideIsDropped(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		crop := image.Rect(1000, 1000, 1100, 1100)
		a := genAnnotation(t)
		if out := RemapForCrop(a, crop); out != nil {
			t.Fatalf("annotation %v outside crop survived as %v", a, out)
		}
	})
}
