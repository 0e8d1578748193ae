package annotation

import "image"

// Collection is the ordered annotation list of one capture. Insertion order
// is z-order, back to front. At most one member is selected at a time and
// only the most recent Add can be undone.
type Collection struct {
	items     []*Annotation
	lastAdded *Annotation
}

// NewCollection returns a collection holding items. The initial items are
// not undoable.
func NewCollection(items ...*Annotation) *Collection {
	c := &Collection{items: make([]*Annotation, 0, len(items))}
	c.items = append(c.items, items...)
	return c
}

// Len returns the number of annotations.
func (c *Collection) Len() int { return len(c.items) }

// At returns the i-th annotation in z-order.
func (c *Collection) At(i int) *Annotation { return c.items[i] }

// Items returns the annotations back to front. The slice is a copy; the
// annotations are shared.
func (c *Collection) Items() []*Annotation {
	out := make([]*Annotation, len(c.items))
	copy(out, c.items)
	return out
}

// Index returns the position of a or -1.
func (c *Collection) Index(a *Annotation) int {
	for i, it := range c.items {
		if it == a {
			return i
		}
	}
	return -1
}

// Contains reports whether a is a member.
func (c *Collection) Contains(a *Annotation) bool { return a != nil && c.Index(a) >= 0 }

// Add appends a on top and makes it the undo target.
func (c *Collection) Add(a *Annotation) {
	if a == nil {
		return
	}
	c.items = append(c.items, a)
	c.lastAdded = a
}

// Remove deletes a and reports whether it was present.
func (c *Collection) Remove(a *Annotation) bool {
	i := c.Index(a)
	if i < 0 {
		return false
	}
	c.items = append(c.items[:i], c.items[i+1:]...)
	if c.lastAdded == a {
		c.lastAdded = nil
	}
	return true
}

// Clear removes every annotation.
func (c *Collection) Clear() {
	c.items = c.items[:0]
	c.lastAdded = nil
}

// CanUndo reports whether the most recent Add is still on top.
func (c *Collection) CanUndo() bool {
	return c.lastAdded != nil && len(c.items) > 0 && c.items[len(c.items)-1] == c.lastAdded
}

// Undo pops the most recent Add. There is a single level of undo.
func (c *Collection) Undo() (*Annotation, bool) {
	if !c.CanUndo() {
		return nil, false
	}
	a := c.items[len(c.items)-1]
	c.items = c.items[:len(c.items)-1]
	c.lastAdded = nil
	a.Selected = false
	return a, true
}

// Select marks a as the only selected annotation.
func (c *Collection) Select(a *Annotation) bool {
	if !c.Contains(a) {
		return false
	}
	for _, it := range c.items {
		it.Selected = it == a
	}
	return true
}

// Deselect clears the selection and reports whether anything was selected.
func (c *Collection) Deselect() bool {
	changed := false
	for _, it := range c.items {
		if it.Selected {
			it.Selected = false
			changed = true
		}
	}
	return changed
}

// Selected returns the selected annotation, if any.
func (c *Collection) Selected() *Annotation {
	for _, it := range c.items {
		if it.Selected {
			return it
		}
	}
	return nil
}

// HitTest returns the topmost annotation containing p. A negative tolerance
// uses each kind's default.
func (c *Collection) HitTest(p image.Point, tolerance int) *Annotation {
	for i := len(c.items) - 1; i >= 0; i-- {
		if c.items[i].ContainsPoint(p, tolerance) {
			return c.items[i]
		}
	}
	return nil
}

// HitTestFunc is HitTest with a per-annotation tolerance.
func (c *Collection) HitTestFunc(p image.Point, tolerance func(*Annotation) int) *Annotation {
	for i := len(c.items) - 1; i >= 0; i-- {
		a := c.items[i]
		if a.ContainsPoint(p, tolerance(a)) {
			return a
		}
	}
	return nil
}

// Clone deep copies the collection including the undo target.
func (c *Collection) Clone() *Collection {
	out := &Collection{items: make([]*Annotation, len(c.items))}
	for i, it := range c.items {
		out.items[i] = it.Clone()
		if it == c.lastAdded {
			out.lastAdded = out.items[i]
		}
	}
	return out
}

// Remap returns a new collection translated into the frame of an image
// cropped to crop. Annotations outside crop are dropped. c is not modified.
func (c *Collection) Remap(crop image.Rectangle) *Collection {
	out := &Collection{}
	for _, it := range c.items {
		if m := RemapForCrop(it, crop); m != nil {
			out.items = append(out.items, m)
		}
	}
	return out
}
