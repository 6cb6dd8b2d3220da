package crypto

import (
	"errors"
	"runtime"
)

// SecureWipe overwrites a byte slice holding sensitive material with zeros.
// It returns an error if the slice is nil.
func SecureWipe(data []byte) error {
	if data == nil {
		return errors.New("cannot wipe nil data")
	}
	for i := range data {
		data[i] = 0
	}
	// Keep the slice reachable until after the zeroing so the writes are not
	// elided.
	runtime.KeepAlive(data)
	return nil
}

// ZeroBytes erases the contents of a byte slice containing sensitive data.
// This is a convenience wrapper that ignores the error from SecureWipe.
func ZeroBytes(data []byte) {
	_ = SecureWipe(data)
}
