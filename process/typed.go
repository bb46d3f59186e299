package process

import (
	"unsafe"
)

// Read is a helper to read a single value of type T from memory.
// T must be a plain value type without pointers.
func Read[T any](h Handle, addr ProcessMemoryAddress) (T, error) {
	var t T
	size := ProcessMemorySize(unsafe.Sizeof(t))
	if size == 0 {
		return t, nil
	}

	data, err := h.ReadMemory(addr, size)
	if err != nil {
		return t, err
	}

	copyTo(&t, data)
	return t, nil
}

// Write is the counterpart of Read: it writes the in-memory bytes of v at addr.
func Write[T any](h Handle, addr ProcessMemoryAddress, v T) error {
	size := int(unsafe.Sizeof(v))
	if size == 0 {
		return nil
	}

	src := unsafe.Slice((*byte)(unsafe.Pointer(&v)), size)
	data := make([]byte, size)
	copy(data, src)
	return h.WriteMemory(addr, data)
}

// copyTo copies bytes to *T without assuming src is aligned for T
func copyTo[T any](dst *T, src []byte) {
	size := int(unsafe.Sizeof(*dst))
	if len(src) < size {
		return
	}

	dstBytes := unsafe.Slice((*byte)(unsafe.Pointer(dst)), size)
	copy(dstBytes, src)
}
