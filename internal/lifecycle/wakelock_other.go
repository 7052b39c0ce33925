//go:build !linux

package lifecycle

// NewWakeLock returns the platform wake lock implementation. Platforms
// without an inhibit API get the no-op lock.
func NewWakeLock(_, _ string) WakeLocker {
	return NoopWakeLock{}
}
