package session

import (
	"crypto/rand"
	"fmt"
	"image"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/example/shineymark/internal/annotation"
	"github.com/example/shineymark/internal/render"
)

// CaptureItem is one captured image with its annotations and the bitmaps
// derived from them. All bitmaps are owned by the item and replaced as a
// whole, never edited in place.
type CaptureItem struct {
	ID         ulid.ULID
	Name       string
	CapturedAt time.Time

	comp        *render.Compositor
	original    *image.RGBA
	working     *image.RGBA
	thumbnail   *image.RGBA
	annotations *annotation.Collection
	stale       bool
}

// NewCaptureItem copies img into an owned buffer and renders its working
// image and thumbnail. Empty images are rejected.
func NewCaptureItem(comp *render.Compositor, img image.Image, name string, at time.Time) (*CaptureItem, error) {
	if img == nil || img.Bounds().Empty() {
		return nil, fmt.Errorf("capture %q: %w", name, render.ErrInvalidGeometry)
	}
	orig, err := comp.Clone(img)
	if err != nil {
		return nil, fmt.Errorf("capture %q: %w", name, err)
	}
	id, err := ulid.New(ulid.Timestamp(at), ulid.Monotonic(rand.Reader, 0))
	if err != nil {
		return nil, fmt.Errorf("capture id: %w", err)
	}
	it := &CaptureItem{
		ID:          id,
		Name:        name,
		CapturedAt:  at,
		comp:        comp,
		original:    orig,
		annotations: annotation.NewCollection(),
		stale:       true,
	}
	if err := it.Refresh(); err != nil {
		return nil, err
	}
	return it, nil
}

// Original returns the base image. It changes only through ApplyCrop.
func (it *CaptureItem) Original() *image.RGBA { return it.original }

// Working returns the last rendered composite.
func (it *CaptureItem) Working() *image.RGBA { return it.working }

// Thumbnail returns the tab preview of the composite.
func (it *CaptureItem) Thumbnail() *image.RGBA { return it.thumbnail }

// Annotations returns the stored collection.
func (it *CaptureItem) Annotations() *annotation.Collection { return it.annotations }

// Size returns the dimensions of the base image.
func (it *CaptureItem) Size() image.Point {
	if it.original == nil {
		return image.Point{}
	}
	return it.original.Bounds().Size()
}

// Released reports whether the item's bitmaps have been dropped.
func (it *CaptureItem) Released() bool { return it.original == nil }

// SetAnnotations stores anns and marks the derived bitmaps stale.
func (it *CaptureItem) SetAnnotations(anns *annotation.Collection) {
	it.annotations = anns
	it.stale = true
}

// Refresh rebuilds the working image and thumbnail when they are stale. On
// failure the previous bitmaps stay in place.
func (it *CaptureItem) Refresh() error {
	if !it.stale {
		return nil
	}
	if it.Released() {
		return ErrClosed
	}
	working, thumb, err := it.derive(it.original, it.annotations)
	if err != nil {
		return fmt.Errorf("render %s: %w", it.Name, err)
	}
	it.working, it.thumbnail = working, thumb
	it.stale = false
	return nil
}

func (it *CaptureItem) derive(orig *image.RGBA, anns *annotation.Collection) (working, thumb *image.RGBA, err error) {
	working, err = it.comp.Flatten(orig, anns.Items())
	if err != nil {
		return nil, nil, err
	}
	thumb, err = it.comp.Thumbnail(working)
	if err != nil {
		return nil, nil, err
	}
	return working, thumb, nil
}

// ApplyCrop crops the base image to rect and remaps annotations into the
// new frame. Every new bitmap is built before anything is replaced, so a
// failed crop leaves the item exactly as it was.
func (it *CaptureItem) ApplyCrop(rect image.Rectangle) error {
	if it.Released() {
		return ErrClosed
	}
	r, err := render.ValidCrop(rect, it.original.Bounds())
	if err != nil {
		return err
	}
	orig, err := it.comp.Crop(it.original, r)
	if err != nil {
		return fmt.Errorf("crop failed: %w", err)
	}
	anns := it.annotations.Remap(r)
	working, thumb, err := it.derive(orig, anns)
	if err != nil {
		return fmt.Errorf("crop failed: %w", err)
	}
	it.original, it.annotations, it.working, it.thumbnail = orig, anns, working, thumb
	it.stale = false
	return nil
}

// Release drops every bitmap the item owns.
func (it *CaptureItem) Release() {
	it.original, it.working, it.thumbnail = nil, nil, nil
	it.annotations = annotation.NewCollection()
	it.stale = false
}
