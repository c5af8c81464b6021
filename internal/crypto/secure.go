// Package crypto provides the AEAD and secure-memory primitives consumed by
// the credential and prompting layers. Internal packages may shadow stdlib
// names for domain-specific implementations.
//
//nolint:revive // Internal package name is intentional
package crypto

import (
	"runtime"
	"sync"
)

// SecureBytes holds sensitive material, a prompted password or an opened
// credential payload, in memory that is mlocked when the platform allows
// and zeroed on Destroy.
type SecureBytes struct {
	mu     sync.Mutex
	data   []byte
	locked bool
}

// NewSecureBytes allocates size bytes of secure memory. The mlock is best
// effort: swapping out a password is worse than running without the lock,
// but not worth failing over.
func NewSecureBytes(size int) (*SecureBytes, error) {
	sb := &SecureBytes{data: make([]byte, size)}
	sb.locked = mlock(sb.data)

	// The finalizer catches callers that drop the value without Destroy.
	runtime.SetFinalizer(sb, func(s *SecureBytes) { s.Destroy() })
	return sb, nil
}

// SecureBytesFromSlice copies data into fresh secure memory. The caller
// keeps responsibility for scrubbing its own copy.
func SecureBytesFromSlice(data []byte) (*SecureBytes, error) {
	sb, err := NewSecureBytes(len(data))
	if err != nil {
		return nil, err
	}
	copy(sb.data, data)
	return sb, nil
}

// Bytes returns the underlying slice, or nil after Destroy.
func (s *SecureBytes) Bytes() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data
}

// IsLocked reports whether the memory is actually mlocked.
func (s *SecureBytes) IsLocked() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.locked
}

// Len returns the length of the held data, zero after Destroy.
func (s *SecureBytes) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.data)
}

// Destroy zeros the memory, releases the mlock, and drops the slice. Safe
// to call more than once.
func (s *SecureBytes) Destroy() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.data == nil {
		return
	}

	ZeroBytes(s.data)
	if s.locked {
		munlock(s.data)
		s.locked = false
	}
	s.data = nil
	runtime.SetFinalizer(s, nil)
}

// ZeroBytes zeros a byte slice in place. Callers use it to scrub passwords
// once derivation has consumed them.
func ZeroBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
