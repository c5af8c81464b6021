//go:build !windows

package crypto

import "golang.org/x/sys/unix"

// mlock pins the region so password material cannot be swapped to disk.
// Failure, typically RLIMIT_MEMLOCK, is reported, not fatal.
func mlock(data []byte) bool {
	if len(data) == 0 {
		return false
	}
	return unix.Mlock(data) == nil
}

func munlock(data []byte) {
	if len(data) == 0 {
		return
	}
	_ = unix.Munlock(data)
}
