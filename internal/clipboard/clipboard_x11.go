//go:build (linux || freebsd || openbsd || netbsd || dragonfly) && !cgo

package clipboard

import (
	"fmt"
	"sync"

	"github.com/jezek/xgb"
	"github.com/jezek/xgb/xproto"
)

// x11Backend owns the CLIPBOARD selection from a hidden window and answers
// conversion requests for image/png on a background goroutine.
type x11Backend struct {
	conn   *xgb.Conn
	window xproto.Window

	clipboard xproto.Atom
	targets   xproto.Atom
	png       xproto.Atom
	transfer  xproto.Atom

	mu   sync.RWMutex
	data []byte
}

func openBackend() (backend, error) {
	if !hasDisplay() {
		return nil, ErrNoDisplay
	}
	conn, err := xgb.NewConn()
	if err != nil {
		return nil, fmt.Errorf("x11: %w", err)
	}
	b := &x11Backend{conn: conn}
	if err := b.setup(); err != nil {
		conn.Close()
		return nil, err
	}
	go b.serve()
	return b, nil
}

func (b *x11Backend) setup() error {
	screen := xproto.Setup(b.conn).DefaultScreen(b.conn)
	win, err := hiddenWindow(b.conn, screen, xproto.EventMaskPropertyChange|xproto.EventMaskStructureNotify)
	if err != nil {
		return err
	}
	b.window = win
	for name, dst := range map[string]*xproto.Atom{
		"CLIPBOARD":           &b.clipboard,
		"TARGETS":             &b.targets,
		"image/png":           &b.png,
		"SHINEYMARK_TRANSFER": &b.transfer,
	} {
		atom, err := intern(b.conn, name)
		if err != nil {
			xproto.DestroyWindow(b.conn, win)
			return err
		}
		*dst = atom
	}
	return nil
}

func hiddenWindow(conn *xgb.Conn, screen *xproto.ScreenInfo, mask uint32) (xproto.Window, error) {
	win, err := xproto.NewWindowId(conn)
	if err != nil {
		return 0, err
	}
	err = xproto.CreateWindowChecked(conn, 0, win, screen.Root, 0, 0, 1, 1, 0,
		xproto.WindowClassInputOnly, 0, xproto.CwEventMask, []uint32{mask}).Check()
	if err != nil {
		return 0, fmt.Errorf("create clipboard window: %w", err)
	}
	return win, nil
}

func intern(conn *xgb.Conn, name string) (xproto.Atom, error) {
	reply, err := xproto.InternAtom(conn, false, uint16(len(name)), name).Reply()
	if err != nil {
		return 0, fmt.Errorf("intern %s: %w", name, err)
	}
	return reply.Atom, nil
}

func (b *x11Backend) writePNG(data []byte) error {
	b.mu.Lock()
	b.data = append([]byte(nil), data...)
	b.mu.Unlock()
	return xproto.SetSelectionOwnerChecked(b.conn, b.window, b.clipboard, xproto.TimeCurrentTime).Check()
}

func (b *x11Backend) serve() {
	for {
		ev, err := b.conn.WaitForEvent()
		if err != nil {
			return
		}
		switch e := ev.(type) {
		case xproto.SelectionRequestEvent:
			b.answer(e)
		case xproto.SelectionClearEvent:
			b.mu.Lock()
			b.data = nil
			b.mu.Unlock()
		}
	}
}

// answer replies to a conversion request with either the supported targets
// or the PNG bytes. Anything else is refused.
func (b *x11Backend) answer(e xproto.SelectionRequestEvent) {
	prop := e.Property
	if prop == xproto.AtomNone {
		prop = e.Target
	}
	b.mu.RLock()
	data := b.data
	b.mu.RUnlock()

	switch {
	case e.Target == b.targets:
		list := []xproto.Atom{b.targets}
		if len(data) > 0 {
			list = append(list, b.png)
		}
		buf := make([]byte, 4*len(list))
		for i, a := range list {
			xgb.Put32(buf[4*i:], uint32(a))
		}
		xproto.ChangeProperty(b.conn, xproto.PropModeReplace, e.Requestor, prop, xproto.AtomAtom, 32, uint32(len(list)), buf)
	case e.Target == b.png && len(data) > 0:
		xproto.ChangeProperty(b.conn, xproto.PropModeReplace, e.Requestor, prop, b.png, 8, uint32(len(data)), data)
	default:
		prop = xproto.AtomNone
	}
	reply := xproto.SelectionNotifyEvent{
		Time:      e.Time,
		Requestor: e.Requestor,
		Selection: e.Selection,
		Target:    e.Target,
		Property:  prop,
	}
	xproto.SendEvent(b.conn, false, e.Requestor, 0, string(reply.Bytes()))
}

// readPNG asks the current owner for image/png through a short-lived
// connection so replies do not race with serve.
func (b *x11Backend) readPNG() ([]byte, error) {
	conn, err := xgb.NewConn()
	if err != nil {
		return nil, fmt.Errorf("x11: %w", err)
	}
	defer conn.Close()

	win, err := hiddenWindow(conn, xproto.Setup(conn).DefaultScreen(conn), xproto.EventMaskPropertyChange)
	if err != nil {
		return nil, err
	}
	defer xproto.DestroyWindow(conn, win)

	err = xproto.ConvertSelectionChecked(conn, win, b.clipboard, b.png, b.transfer, xproto.TimeCurrentTime).Check()
	if err != nil {
		return nil, fmt.Errorf("convert selection: %w", err)
	}
	for {
		ev, err := conn.WaitForEvent()
		if err != nil {
			return nil, err
		}
		e, ok := ev.(xproto.SelectionNotifyEvent)
		if !ok {
			continue
		}
		if e.Property == xproto.AtomNone {
			return nil, ErrEmpty
		}
		reply, perr := xproto.GetProperty(conn, true, win, e.Property, xproto.GetPropertyTypeAny, 0, (1<<31)-1).Reply()
		if perr != nil {
			return nil, perr
		}
		return reply.Value, nil
	}
}
