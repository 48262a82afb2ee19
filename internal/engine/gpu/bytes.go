package gpu

import "unsafe"

// Bytes returns a byte view of s for buffer uploads. The view shares memory
// with s.
func Bytes[T any](s []T) []byte {
	if len(s) == 0 {
		return nil
	}
	var zero T
	return unsafe.Slice((*byte)(unsafe.Pointer(&s[0])), int(unsafe.Sizeof(zero))*len(s))
}
