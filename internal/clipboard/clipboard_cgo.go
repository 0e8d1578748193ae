//go:build (linux || freebsd || openbsd || netbsd || dragonfly || darwin || windows) && cgo

package clipboard

import (
	"runtime"

	"golang.design/x/clipboard"
)

type nativeBackend struct{}

func openBackend() (backend, error) {
	if runtime.GOOS != "darwin" && runtime.GOOS != "windows" && !hasDisplay() {
		return nil, ErrNoDisplay
	}
	if err := clipboard.Init(); err != nil {
		return nil, err
	}
	return nativeBackend{}, nil
}

func (nativeBackend) writePNG(data []byte) error {
	clipboard.Write(clipboard.FmtImage, data)
	return nil
}

func (nativeBackend) readPNG() ([]byte, error) {
	return clipboard.Read(clipboard.FmtImage), nil
}
