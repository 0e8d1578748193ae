//go:build !(linux || freebsd || openbsd || netbsd || dragonfly) && !((darwin || windows) && cgo)

package clipboard

func openBackend() (backend, error) {
	return nil, ErrUnsupported
}
