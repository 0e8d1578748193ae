// Package clipboard moves flattened composites to and from the system
// clipboard as PNG data.
package clipboard

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/png"
	"os"
	"sync"

	_ "golang.org/x/image/bmp"
)

var (
	// ErrNoDisplay is returned on unix systems without an X11 or Wayland
	// display to own the selection.
	ErrNoDisplay = errors.New("clipboard requires DISPLAY or WAYLAND_DISPLAY")
	// ErrEmpty is returned when the clipboard holds no image.
	ErrEmpty = errors.New("clipboard does not contain an image")
	// ErrUnsupported is returned on platforms without a clipboard backend.
	ErrUnsupported = errors.New("clipboard images are not supported on this platform")
)

// backend stores and fetches encoded PNG data.
type backend interface {
	writePNG(data []byte) error
	readPNG() ([]byte, error)
}

var (
	initOnce sync.Once
	initErr  error
	active   backend
)

func ensureInit() (backend, error) {
	initOnce.Do(func() {
		active, initErr = openBackend()
	})
	return active, initErr
}

func hasDisplay() bool {
	return os.Getenv("DISPLAY") != "" || os.Getenv("WAYLAND_DISPLAY") != ""
}

// Copy encodes img as PNG and places it on the clipboard.
func Copy(img image.Image) error {
	if img == nil {
		return fmt.Errorf("copy: nil image")
	}
	b, err := ensureInit()
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return fmt.Errorf("encode clipboard image: %w", err)
	}
	return b.writePNG(buf.Bytes())
}

// Paste decodes the image currently on the clipboard.
func Paste() (image.Image, error) {
	b, err := ensureInit()
	if err != nil {
		return nil, err
	}
	data, err := b.readPNG()
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, ErrEmpty
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode clipboard image: %w", err)
	}
	return img, nil
}
