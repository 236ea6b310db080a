package utils

import "unsafe"

// Noescape hides a pointer from the escape analyzer; FastFields uses it to
// alias string headers over a caller-owned byte buffer without forcing that
// buffer to the heap.
//go:nosplit
func Noescape(p unsafe.Pointer) unsafe.Pointer {
	x := uintptr(p)
	return unsafe.Pointer(x ^ 0)
}
