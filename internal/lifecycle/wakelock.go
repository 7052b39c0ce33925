package lifecycle

import "errors"

// ErrWakeLockUnavailable means the platform offers no wake lock.
// Callers log and continue; the screen may sleep during background
// playback.
var ErrWakeLockUnavailable = errors.New("wake lock unavailable")

// WakeLocker prevents device sleep while held. Acquire and Release are
// both idempotent.
type WakeLocker interface {
	Acquire() error
	Release()
}

// NoopWakeLock is the fallback when the platform has no wake lock.
type NoopWakeLock struct{}

// Acquire reports the capability gap; callers degrade gracefully.
func (NoopWakeLock) Acquire() error { return ErrWakeLockUnavailable }

// Release does nothing.
func (NoopWakeLock) Release() {}

// Verify NoopWakeLock implements WakeLocker at compile time.
var _ WakeLocker = NoopWakeLock{}
