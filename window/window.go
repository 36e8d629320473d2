// Package window locates the game window on the Windows desktop and
// converts between client-area and screen coordinates.
package window

import (
	"fmt"
	"image"
	"sync"
	"unsafe"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sys/windows"
)

// winLog derives the package sublogger at call time so it follows the
// writer installed during startup.
func winLog() *zerolog.Logger {
	l := log.With().Str("module", "window").Logger()
	return &l
}

var (
	user32                  = windows.NewLazySystemDLL("user32.dll")
	procFindWindowW         = user32.NewProc("FindWindowW")
	procGetWindowRect       = user32.NewProc("GetWindowRect")
	procGetClientRect       = user32.NewProc("GetClientRect")
	procClientToScreen      = user32.NewProc("ClientToScreen")
	procScreenToClient      = user32.NewProc("ScreenToClient")
	procSetForegroundWindow = user32.NewProc("SetForegroundWindow")
	procIsIconic            = user32.NewProc("IsIconic")
	procIsWindow            = user32.NewProc("IsWindow")
	procShowWindow          = user32.NewProc("ShowWindow")
)

const swRestore = 9

type point struct{ x, y int32 }

type rect struct{ left, top, right, bottom int32 }

// Tracker caches the window handle for one window title and refreshes
// it when the window is recreated.
type Tracker struct {
	mu    sync.Mutex
	title string
	hwnd  windows.Handle
}

func NewTracker(title string) *Tracker {
	return &Tracker{title: title}
}

func findWindow(title string) (windows.Handle, error) {
	name, err := windows.UTF16PtrFromString(title)
	if err != nil {
		return 0, err
	}
	h, _, _ := procFindWindowW.Call(0, uintptr(unsafe.Pointer(name)))
	if h == 0 {
		return 0, fmt.Errorf("window %q not found", title)
	}
	return windows.Handle(h), nil
}

// handle returns a live window handle, re-finding the window if the
// cached one went stale.
func (t *Tracker) handle() (windows.Handle, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.hwnd != 0 {
		alive, _, _ := procIsWindow.Call(uintptr(t.hwnd))
		if alive != 0 {
			return t.hwnd, nil
		}
		winLog().Warn().Str("title", t.title).Msg("window handle went stale, re-finding")
		t.hwnd = 0
	}

	h, err := findWindow(t.title)
	if err != nil {
		return 0, err
	}
	t.hwnd = h
	winLog().Info().Str("title", t.title).Msg("game window located")
	return h, nil
}

// WindowRect returns the outer window rectangle in desktop coordinates,
// title bar and borders included.
func (t *Tracker) WindowRect() (image.Rectangle, error) {
	h, err := t.handle()
	if err != nil {
		return image.Rectangle{}, err
	}
	var r rect
	ok, _, callErr := procGetWindowRect.Call(uintptr(h), uintptr(unsafe.Pointer(&r)))
	if ok == 0 {
		return image.Rectangle{}, fmt.Errorf("GetWindowRect: %v", callErr)
	}
	return image.Rect(int(r.left), int(r.top), int(r.right), int(r.bottom)), nil
}

// ClientBounds returns the window client area in its own coordinates,
// origin (0, 0).
func (t *Tracker) ClientBounds() (image.Rectangle, error) {
	h, err := t.handle()
	if err != nil {
		return image.Rectangle{}, err
	}
	var r rect
	ok, _, callErr := procGetClientRect.Call(uintptr(h), uintptr(unsafe.Pointer(&r)))
	if ok == 0 {
		return image.Rectangle{}, fmt.Errorf("GetClientRect: %v", callErr)
	}
	return image.Rect(int(r.left), int(r.top), int(r.right), int(r.bottom)), nil
}

// ClientToScreen maps a client-area point to desktop coordinates.
func (t *Tracker) ClientToScreen(p image.Point) (image.Point, error) {
	h, err := t.handle()
	if err != nil {
		return image.Point{}, err
	}
	pt := point{x: int32(p.X), y: int32(p.Y)}
	ok, _, callErr := procClientToScreen.Call(uintptr(h), uintptr(unsafe.Pointer(&pt)))
	if ok == 0 {
		return image.Point{}, fmt.Errorf("ClientToScreen: %v", callErr)
	}
	return image.Pt(int(pt.x), int(pt.y)), nil
}

// ScreenToClient maps a desktop point into the window client area.
func (t *Tracker) ScreenToClient(p image.Point) (image.Point, error) {
	h, err := t.handle()
	if err != nil {
		return image.Point{}, err
	}
	pt := point{x: int32(p.X), y: int32(p.Y)}
	ok, _, callErr := procScreenToClient.Call(uintptr(h), uintptr(unsafe.Pointer(&pt)))
	if ok == 0 {
		return image.Point{}, fmt.Errorf("ScreenToClient: %v", callErr)
	}
	return image.Pt(int(pt.x), int(pt.y)), nil
}

// EnsureForeground restores the window if minimized and brings it to
// the front so input lands where the screenshots came from.
func (t *Tracker) EnsureForeground() error {
	h, err := t.handle()
	if err != nil {
		return err
	}
	if iconic, _, _ := procIsIconic.Call(uintptr(h)); iconic != 0 {
		procShowWindow.Call(uintptr(h), swRestore)
	}
	ok, _, _ := procSetForegroundWindow.Call(uintptr(h))
	if ok == 0 {
		return fmt.Errorf("SetForegroundWindow failed for %q", t.title)
	}
	return nil
}
