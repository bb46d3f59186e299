package memory_map

import (
	"fmt"
	"sort"
	"strings"
)

// Protection is a page protection bitmask. The bit values follow the Windows
// PAGE_* constants so VirtualQueryEx results can be used unchanged; other
// platforms translate into them.
type Protection uint32

const (
	ProtNoAccess         Protection = 0x01
	ProtReadOnly         Protection = 0x02
	ProtReadWrite        Protection = 0x04
	ProtWriteCopy        Protection = 0x08
	ProtExecute          Protection = 0x10
	ProtExecuteRead      Protection = 0x20
	ProtExecuteReadWrite Protection = 0x40
	ProtExecuteWriteCopy Protection = 0x80
	ProtGuard            Protection = 0x100

	protReadable = ProtReadOnly | ProtReadWrite | ProtWriteCopy |
		ProtExecuteRead | ProtExecuteReadWrite | ProtExecuteWriteCopy
	protWritable = ProtReadWrite | ProtWriteCopy | ProtExecuteReadWrite | ProtExecuteWriteCopy
	protExecute  = ProtExecute | ProtExecuteRead | ProtExecuteReadWrite | ProtExecuteWriteCopy
)

// State is the allocation state of a region
type State uint32

const (
	StateCommit  State = 0x1000
	StateReserve State = 0x2000
	StateFree    State = 0x10000
)

// RegionType tags what backs a region
type RegionType uint32

const (
	TypePrivate RegionType = 0x20000
	TypeMapped  RegionType = 0x40000
	TypeImage   RegionType = 0x1000000
)

// MaxApplicationAddress bounds the region walk. It is the top of the 47-bit
// user address space shared by x86-64 Linux and Windows.
const MaxApplicationAddress uint64 = 0x7FFFFFFFFFFF

// MemoryRegion represents a memory region in a process's address space
type MemoryRegion struct {
	BaseAddress uint64     // The starting address of the memory region
	Size        uint64     // The size of the memory region in bytes
	Protection  Protection // Page protection flags
	State       State      // Commit state
	Type        RegionType // Backing type
	Name        string     // Backing file or pseudo name, if known
}

// End returns the first address past the region
func (r MemoryRegion) End() uint64 {
	return r.BaseAddress + r.Size
}

// Contains reports whether addr lies inside the region
func (r MemoryRegion) Contains(addr uint64) bool {
	return addr >= r.BaseAddress && addr < r.End()
}

// String returns a string representation of the memory region
func (r MemoryRegion) String() string {
	s := fmt.Sprintf("0x%016X-0x%016X %10d %s %s", r.BaseAddress, r.End(), r.Size, r.Protection, r.State)
	if r.Name != "" {
		s += " " + r.Name
	}
	return s
}

// IsCommitted reports whether the region is backed by committed memory
func (r MemoryRegion) IsCommitted() bool {
	return r.State == StateCommit
}

// IsReadable applies the scan inclusion rule: committed, not guarded, not
// no-access, and at least one readable protection.
func (r MemoryRegion) IsReadable() bool {
	if !r.IsCommitted() {
		return false
	}
	if r.Protection&(ProtGuard|ProtNoAccess) != 0 {
		return false
	}
	return r.Protection&protReadable != 0
}

func (r MemoryRegion) IsWritable() bool {
	return r.IsReadable() && r.Protection&protWritable != 0
}

func (p Protection) String() string {
	perms := []byte("---")
	if p&protReadable != 0 {
		perms[0] = 'r'
	}
	if p&protWritable != 0 {
		perms[1] = 'w'
	}
	if p&protExecute != 0 {
		perms[2] = 'x'
	}
	s := string(perms)
	if p&ProtGuard != 0 {
		s += "g"
	}
	return s
}

func (s State) String() string {
	switch s {
	case StateCommit:
		return "commit"
	case StateReserve:
		return "reserve"
	case StateFree:
		return "free"
	default:
		return fmt.Sprintf("state(0x%X)", uint32(s))
	}
}

// ProtectionFromPerms converts a /proc/<pid>/maps permission string
// (e.g. "r-xp") into a Protection bitmask.
func ProtectionFromPerms(perms string) Protection {
	has := func(i int, c byte) bool {
		return len(perms) > i && perms[i] == c
	}
	r, w, x := has(0, 'r'), has(1, 'w'), has(2, 'x')

	switch {
	case r && w && x:
		return ProtExecuteReadWrite
	case r && x:
		return ProtExecuteRead
	case r && w:
		return ProtReadWrite
	case r:
		return ProtReadOnly
	case x:
		return ProtExecute
	default:
		// write-only mappings are not readable through the scanner
		return ProtNoAccess
	}
}

// TypeFromName guesses the backing type of a mapping from its pathname
func TypeFromName(name string) RegionType {
	if strings.HasPrefix(name, "/") {
		return TypeMapped
	}
	return TypePrivate
}

// SortRegions orders regions by base address, which the lookup helpers require
func SortRegions(regions []MemoryRegion) {
	sort.Slice(regions, func(i, j int) bool {
		return regions[i].BaseAddress < regions[j].BaseAddress
	})
}

// FindRegion returns the index of the region containing addr, or of the first
// region after addr, in a sorted region list. found reports containment.
func FindRegion(addr uint64, regions []MemoryRegion) (index int, found bool) {
	i := sort.Search(len(regions), func(i int) bool {
		return regions[i].End() > addr
	})
	if i < len(regions) && regions[i].BaseAddress <= addr {
		return i, true
	}
	return i, false
}

// QueryRegion answers a region query against a sorted map the way
// VirtualQueryEx does: the containing region, or a free region covering the
// gap up to the next mapping. ok is false past the last mapping.
func QueryRegion(addr uint64, regions []MemoryRegion) (MemoryRegion, bool) {
	i, found := FindRegion(addr, regions)
	if found {
		return regions[i], true
	}
	if i >= len(regions) {
		return MemoryRegion{}, false
	}
	return MemoryRegion{
		BaseAddress: addr,
		Size:        regions[i].BaseAddress - addr,
		Protection:  ProtNoAccess,
		State:       StateFree,
	}, true
}
