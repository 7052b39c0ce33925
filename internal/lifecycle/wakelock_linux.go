//go:build linux

package lifecycle

import (
	"sync"

	"github.com/godbus/dbus/v5"
)

const (
	screenSaverDest = "org.freedesktop.ScreenSaver"
	screenSaverPath = "/org/freedesktop/ScreenSaver"
)

// DBusWakeLock keeps the system awake during background playback via
// the freedesktop ScreenSaver inhibit API. Acquire and Release are
// idempotent.
type DBusWakeLock struct {
	mu     sync.Mutex
	app    string
	reason string
	conn   *dbus.Conn
	cookie uint32
	held   bool
}

// NewDBusWakeLock creates a wake lock identified by app on the session bus.
func NewDBusWakeLock(app, reason string) *DBusWakeLock {
	return &DBusWakeLock{app: app, reason: reason}
}

// Acquire requests a screen saver inhibit. Returns
// ErrWakeLockUnavailable when no session bus is reachable.
func (w *DBusWakeLock) Acquire() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.held {
		return nil
	}

	if w.conn == nil {
		conn, err := dbus.SessionBus()
		if err != nil {
			return ErrWakeLockUnavailable
		}
		w.conn = conn
	}

	obj := w.conn.Object(screenSaverDest, screenSaverPath)
	var cookie uint32
	call := obj.Call(screenSaverDest+".Inhibit", 0, w.app, w.reason)
	if call.Err != nil || call.Store(&cookie) != nil {
		return ErrWakeLockUnavailable
	}
	w.cookie = cookie
	w.held = true
	return nil
}

// Release drops the inhibit if held.
func (w *DBusWakeLock) Release() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.held || w.conn == nil {
		return
	}
	obj := w.conn.Object(screenSaverDest, screenSaverPath)
	_ = obj.Call(screenSaverDest+".UnInhibit", 0, w.cookie).Err
	w.held = false
}

var _ WakeLocker = (*DBusWakeLock)(nil)

// NewWakeLock returns the platform wake lock implementation.
func NewWakeLock(app, reason string) WakeLocker {
	return NewDBusWakeLock(app, reason)
}
