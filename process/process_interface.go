package process

import (
	"memscan/process/memory_map"
)

// Handle is the borrowed capability the scan engine operates on. Implementations
// own the lifetime of the underlying OS handle; the engine never closes it.
type Handle interface {
	// QueryRegion describes the region containing addr, or the first region
	// after addr when addr falls in an unmapped gap. Gaps are reported as
	// free regions so a caller can walk the whole address space.
	QueryRegion(addr ProcessMemoryAddress) (memory_map.MemoryRegion, error)

	// ReadMemory reads exactly size bytes at addr or fails.
	ReadMemory(addr ProcessMemoryAddress, size ProcessMemorySize) ([]byte, error)

	// WriteMemory writes all of data at addr or fails.
	WriteMemory(addr ProcessMemoryAddress, data []byte) error
}

// MemoryMapUpdater is implemented by handles that cache the region map and can
// refresh it before a walk.
type MemoryMapUpdater interface {
	UpdateMemoryMap() error
}

// Process is a Handle backed by an operating system process
type Process interface {
	Handle

	// Open opens a process with the given PID for memory operations
	Open(pid ProcessID) error

	// Close closes the process and releases resources
	Close() error

	// GetPID returns the process ID
	GetPID() ProcessID
}
