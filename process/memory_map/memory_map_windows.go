//go:build windows

package memory_map

import (
	"golang.org/x/sys/windows"
)

// FromBasicInformation converts a VirtualQueryEx result into a MemoryRegion.
// The protection, state and type constants share their values with Windows.
func FromBasicInformation(mbi *windows.MemoryBasicInformation) MemoryRegion {
	return MemoryRegion{
		BaseAddress: uint64(mbi.BaseAddress),
		Size:        uint64(mbi.RegionSize),
		Protection:  Protection(mbi.Protect),
		State:       State(mbi.State),
		Type:        RegionType(mbi.Type),
	}
}
