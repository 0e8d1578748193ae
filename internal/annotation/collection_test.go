package annotation

import (
	"image"
	"testing"
)

func TestUndoReversesLastAdd(t *testing.T) {
	c := NewCollection(rectAnnotation(KindRectangle, 0, 0, 10, 10))
	if c.CanUndo() {
		t.Fatal("initial items must not be undoable")
	}
	a := rectAnnotation(KindLine, 0, 0, 5, 5)
	c.Add(a)
	if c.Len() != 2 {
		t.Fatalf("len = %d", c.Len())
	}
	got, ok := c.Undo()
	if !ok || got != a || c.Len() != 1 {
		t.Fatalf("undo = %v %v len %d", got, ok, c.Len())
	}
	if _, ok := c.Undo(); ok {
		t.Fatal("only one level of undo is kept")
	}
}

func TestUndoIgnoredAfterRemoval(t *testing.T) {
	c := NewCollection()
	a := rectAnnotation(KindRectangle, 0, 0, 10, 10)
	c.Add(a)
	c.Remove(a)
	if _, ok := c.Undo(); ok {
		t.Fatal("undo after removing the last add should be a no-op")
	}
}

func TestSelectIsExclusive(t *testing.T) {
	a := rectAnnotation(KindRectangle, 0, 0, 10, 10)
	b := rectAnnotation(KindRectangle, 20, 20, 30, 30)
	c := NewCollection(a, b)
	c.Select(a)
	c.Select(b)
	if a.Selected || !b.Selected || c.Selected() != b {
		t.Fatalf("selection not exclusive: a=%v b=%v", a.Selected, b.Selected)
	}
	if c.Select(New(KindLine, image.Point{}, DefaultStyle())) {
		t.Fatal("selecting a foreign annotation should fail")
	}
	if !c.Deselect() || c.Selected() != nil {
		t.Fatal("deselect failed")
	}
	if c.Deselect() {
		t.Fatal("second deselect reported a change")
	}
}

func TestHitTestTopmostWins(t *testing.T) {
	bottom := rectAnnotation(KindRectangle, 0, 0, 100, 100)
	top := rectAnnotation(KindHighlight, 40, 40, 60, 60)
	c := NewCollection(bottom, top)
	if got := c.HitTest(image.Pt(50, 50), -1); got != top {
		t.Fatalf("hit = %v, want top", got)
	}
	if got := c.HitTest(image.Pt(10, 10), -1); got != bottom {
		t.Fatalf("hit = %v, want bottom", got)
	}
	if got := c.HitTest(image.Pt(300, 300), -1); got != nil {
		t.Fatalf("hit = %v, want nil", got)
	}
}

func TestCloneIsDeep(t *testing.T) {
	a := rectAnnotation(KindRectangle, 0, 0, 10, 10)
	c := NewCollection()
	c.Add(a)
	d := c.Clone()
	d.At(0).Move(image.Pt(5, 5))
	if a.Anchor != image.Pt(0, 0) {
		t.Fatal("clone shares annotations")
	}
	if !d.CanUndo() {
		t.Fatal("clone should keep the undo target")
	}
}

func TestRemapPartialOverlapIsClipped(t *testing.T) {
	// (10,10,110,60) cropped to (20,20,60,40) as x,y,w,h.
	a := rectAnnotation(KindRectangle, 10, 10, 120, 70)
	c := NewCollection(a)
	out := c.Remap(image.Rect(20, 20, 80, 60))
	if out.Len() != 1 {
		t.Fatalf("len = %d", out.Len())
	}
	if got, want := out.At(0).Bounds(), image.Rect(0, 0, 60, 40); got != want {
		t.Fatalf("bounds = %v, want %v", got, want)
	}
	if a.Bounds() != image.Rect(10, 10, 120, 70) {
		t.Fatal("remap modified the source collection")
	}
	if out.At(0).ID != a.ID {
		t.Fatal("remapped annotation should keep its identity")
	}
}

func TestRemapContainedShiftsByOrigin(t *testing.T) {
	a := rectAnnotation(KindArrow, 30, 30, 50, 40)
	out := NewCollection(a).Remap(image.Rect(20, 20, 80, 60))
	got := out.At(0)
	if got.Anchor != image.Pt(10, 10) || got.Opposite != image.Pt(30, 20) {
		t.Fatalf("remapped to %v -> %v", got.Anchor, got.Opposite)
	}
}

func TestRemapDropsOutside(t *testing.T) {
	c := NewCollection(
		rectAnnotation(KindRectangle, 100, 100, 120, 120),
		rectAnnotation(KindLine, 0, 0, 10, 0),
		rectAnnotation(KindHighlight, 80, 20, 90, 30),
	)
	if out := c.Remap(image.Rect(20, 20, 80, 60)); out.Len() != 0 {
		t.Fatalf("expected everything dropped, got %d", out.Len())
	}
}

func TestRemapClipsSegments(t *testing.T) {
	a := rectAnnotation(KindLine, 0, 30, 100, 30)
	out := NewCollection(a).Remap(image.Rect(20, 20, 80, 60))
	if out.Len() != 1 {
		t.Fatalf("len = %d", out.Len())
	}
	got := out.At(0)
	if got.Anchor != image.Pt(0, 10) || got.Opposite != image.Pt(60, 10) {
		t.Fatalf("clipped to %v -> %v", got.Anchor, got.Opposite)
	}
	diag := rectAnnotation(KindLine, 0, 100, 100, 90)
	if out := NewCollection(diag).Remap(image.Rect(20, 20, 80, 60)); out.Len() != 0 {
		t.Fatal("segment below the crop should be dropped")
	}
}

func TestRemapClampsCounterAnchor(t *testing.T) {
	a := New(KindCounter, image.Pt(15, 40), DefaultStyle())
	a.CounterValue = 4
	out := NewCollection(a).Remap(image.Rect(20, 20, 80, 60))
	if out.Len() != 1 {
		t.Fatalf("len = %d", out.Len())
	}
	if got := out.At(0); got.Anchor != image.Pt(0, 20) || got.CounterValue != 4 {
		t.Fatalf("counter remapped to %v value %d", got.Anchor, got.CounterValue)
	}
}
