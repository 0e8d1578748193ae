package session

import (
	"errors"
	"image"
	"image/color"
	"image/draw"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/example/shineymark/internal/annotation"
	"github.com/example/shineymark/internal/render"
)

func capture(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.RGBA{200, 200, 200, 255}), image.Point{}, draw.Src)
	return img
}

func rect(x0, y0, x1, y1 int) *annotation.Annotation {
	a := annotation.New(annotation.KindRectangle, image.Pt(x0, y0), annotation.DefaultStyle())
	a.Opposite = image.Pt(x1, y1)
	return a
}

func fixedClock() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) }

func TestNewCaptureItemOwnsPixels(t *testing.T) {
	src := capture(40, 30)
	it, err := NewCaptureItem(render.New(), src, "one", fixedClock())
	require.NoError(t, err)
	require.NotSame(t, src, it.Original())
	require.Equal(t, image.Pt(40, 30), it.Size())
	require.NotNil(t, it.Working())
	require.NotNil(t, it.Thumbnail())
	require.False(t, it.ID.IsZero())

	src.Set(0, 0, color.RGBA{A: 255})
	require.Equal(t, color.RGBA{200, 200, 200, 255}, it.Original().RGBAAt(0, 0))
}

func TestNewCaptureItemRejectsEmpty(t *testing.T) {
	_, err := NewCaptureItem(render.New(), image.NewRGBA(image.Rectangle{}), "empty", fixedClock())
	require.ErrorIs(t, err, render.ErrInvalidGeometry)
}

func TestApplyCropRemapsAnnotations(t *testing.T) {
	it, err := NewCaptureItem(render.New(), capture(200, 100), "c", fixedClock())
	require.NoError(t, err)
	it.SetAnnotations(annotation.NewCollection(rect(10, 10, 110, 60), rect(150, 80, 190, 95)))

	require.NoError(t, it.ApplyCrop(image.Rect(20, 20, 80, 60)))
	require.Equal(t, image.Pt(60, 40), it.Size())
	require.Equal(t, 1, it.Annotations().Len())
	require.Equal(t, image.Rect(0, 0, 60, 40), it.Annotations().At(0).Bounds())
	require.Equal(t, image.Pt(60, 40), it.Working().Bounds().Size())
	require.LessOrEqual(t, it.Thumbnail().Bounds().Dx(), render.ThumbnailSize)
}

func TestApplyCropRejectsTinyRect(t *testing.T) {
	it, err := NewCaptureItem(render.New(), capture(50, 50), "c", fixedClock())
	require.NoError(t, err)
	orig := it.Original()
	err = it.ApplyCrop(image.Rect(0, 0, 5, 40))
	require.ErrorIs(t, err, render.ErrInvalidGeometry)
	require.Same(t, orig, it.Original())
}

func TestApplyCropAllocationFailureLeavesItemIntact(t *testing.T) {
	fail := false
	alloc := func(r image.Rectangle) (*image.RGBA, error) {
		if fail {
			return nil, errors.New("no memory")
		}
		return render.DefaultAllocator(r)
	}
	it, err := NewCaptureItem(render.New(render.WithAllocator(alloc)), capture(100, 100), "c", fixedClock())
	require.NoError(t, err)
	it.SetAnnotations(annotation.NewCollection(rect(10, 10, 50, 50)))
	require.NoError(t, it.Refresh())

	orig, working, anns := it.Original(), it.Working(), it.Annotations()
	before := append([]byte(nil), working.Pix...)
	fail = true
	err = it.ApplyCrop(image.Rect(20, 20, 80, 80))
	require.ErrorIs(t, err, render.ErrAllocation)
	require.Same(t, orig, it.Original())
	require.Same(t, working, it.Working())
	require.Same(t, anns, it.Annotations())
	require.Equal(t, before, it.Working().Pix)
	require.Equal(t, image.Rect(10, 10, 50, 50), anns.At(0).Bounds())
}

func TestFullBoundsCropIsIdempotent(t *testing.T) {
	it, err := NewCaptureItem(render.New(), capture(80, 60), "c", fixedClock())
	require.NoError(t, err)
	it.SetAnnotations(annotation.NewCollection(rect(10, 10, 40, 30)))
	full := it.Original().Bounds()

	require.NoError(t, it.ApplyCrop(full))
	pix := append([]byte(nil), it.Working().Pix...)
	bounds := it.Annotations().At(0).Bounds()

	require.NoError(t, it.ApplyCrop(it.Original().Bounds()))
	require.Equal(t, full, it.Original().Bounds())
	require.Equal(t, pix, it.Working().Pix)
	require.Equal(t, bounds, it.Annotations().At(0).Bounds())
}

func TestSessionAddMakesCurrent(t *testing.T) {
	s := New(render.New(), WithClock(fixedClock))
	_, err := s.Add(capture(20, 20), "")
	require.NoError(t, err)
	second, err := s.Add(capture(30, 30), "second")
	require.NoError(t, err)
	require.Equal(t, 2, s.Len())
	require.Equal(t, 1, s.CurrentIndex())
	require.Same(t, second, s.Current())
	require.Equal(t, "capture 1", s.Items()[0].Name)
}

func TestSwitchPushesAndPullsLiveState(t *testing.T) {
	s := New(render.New())
	first, err := s.Add(capture(100, 100), "a")
	require.NoError(t, err)
	s.Live().Add(rect(1, 1, 20, 20))
	s.Live().Select(s.Live().At(0))

	_, err = s.Add(capture(100, 100), "b")
	require.NoError(t, err)
	require.Equal(t, 0, s.Live().Len())
	require.Equal(t, 1, first.Annotations().Len())
	require.False(t, first.Annotations().At(0).Selected, "selection must not be stored")

	require.NoError(t, s.SwitchTo(0))
	require.Equal(t, 1, s.Live().Len())
	require.NotSame(t, first.Annotations().At(0), s.Live().At(0))

	require.ErrorIs(t, s.SwitchTo(5), ErrIndex)
}

func TestRemoveLastClosesSession(t *testing.T) {
	s := New(render.New())
	a, err := s.Add(capture(10, 10), "a")
	require.NoError(t, err)
	_, err = s.Add(capture(10, 10), "b")
	require.NoError(t, err)

	require.NoError(t, s.Remove(1))
	require.Equal(t, 0, s.CurrentIndex())
	require.Same(t, a, s.Current())

	require.NoError(t, s.Remove(0))
	require.True(t, s.Closed())
	require.Nil(t, s.Current())
	require.True(t, a.Released())
	_, err = s.Add(capture(10, 10), "late")
	require.ErrorIs(t, err, ErrClosed)
}

func TestRemoveBeforeCurrentKeepsCurrent(t *testing.T) {
	s := New(render.New())
	for _, n := range []string{"a", "b", "c"} {
		_, err := s.Add(capture(10, 10), n)
		require.NoError(t, err)
	}
	require.NoError(t, s.Remove(0))
	require.Equal(t, "c", s.Current().Name)
	require.Equal(t, 1, s.CurrentIndex())
}

func TestCropCurrentReplacesLive(t *testing.T) {
	s := New(render.New())
	_, err := s.Add(capture(200, 100), "a")
	require.NoError(t, err)
	s.Live().Add(rect(10, 10, 110, 60))

	require.NoError(t, s.CropCurrent(image.Rect(20, 20, 80, 60)))
	require.Equal(t, 1, s.Live().Len())
	require.Equal(t, image.Rect(0, 0, 60, 40), s.Live().At(0).Bounds())
	require.False(t, s.Live().CanUndo(), "crop clears the undo target")

	w, err := s.LiveWorking()
	require.NoError(t, err)
	require.Equal(t, image.Pt(60, 40), w.Bounds().Size())
}

func TestCropCurrentFailureKeepsLive(t *testing.T) {
	s := New(render.New())
	_, err := s.Add(capture(50, 50), "a")
	require.NoError(t, err)
	a := rect(5, 5, 30, 30)
	s.Live().Add(a)

	require.Error(t, s.CropCurrent(image.Rect(0, 0, 3, 3)))
	require.Equal(t, 1, s.Live().Len())
	require.Same(t, a, s.Live().At(0))
	require.Equal(t, image.Pt(50, 50), s.Current().Size())
}

func TestSnapshotIsIndependent(t *testing.T) {
	s := New(render.New())
	_, err := s.Add(capture(40, 40), "a")
	require.NoError(t, err)
	snap, err := s.Snapshot()
	require.NoError(t, err)
	live, err := s.LiveWorking()
	require.NoError(t, err)
	require.NotSame(t, live, snap)
	require.NotSame(t, s.Current().Original(), snap)
}
