// Package process defines the capability the scanner needs from a target process
// and the types shared by the platform implementations.
package process

import "errors"

var (
	// ErrAddressNotMapped is returned when a memory address is not found within any mapped region of a process.
	ErrAddressNotMapped = errors.New("address not mapped")

	// ErrProcessNotOpen is returned when an operation requiring an open process is attempted
	// before the process has been successfully opened or after it has been closed.
	ErrProcessNotOpen = errors.New("process not open")

	// ErrNotWritable is returned when a write targets a region without write access.
	ErrNotWritable = errors.New("memory region not writable")

	// ErrPartialTransfer is returned when the OS moved fewer bytes than requested.
	ErrPartialTransfer = errors.New("partial transfer")
)
