package scanner

import (
	"memscan/process"
	"memscan/process/memory_map"
)

// GetReadableRegions walks the address space from 0 and returns every
// committed region with a readable, unguarded protection. The walk ends when
// a query fails, when it stops making forward progress, or past the top of
// the application address space. A failed first query yields no regions.
func (s *Scanner) GetReadableRegions(h process.Handle) []memory_map.MemoryRegion {
	if updater, ok := h.(process.MemoryMapUpdater); ok {
		if err := updater.UpdateMemoryMap(); err != nil {
			s.log.Warn("Failed to refresh memory map, using cached map: ", err)
		}
	}

	var regions []memory_map.MemoryRegion
	addr := uint64(0)
	for addr <= memory_map.MaxApplicationAddress {
		region, err := h.QueryRegion(process.ProcessMemoryAddress(addr))
		if err != nil {
			break
		}

		if region.IsReadable() {
			regions = append(regions, region)
		}

		next := region.End()
		if next <= addr {
			break
		}
		addr = next
	}

	return regions
}

// GetRegionSizeAtAddress returns the number of bytes from addr to the end of
// the committed region containing it, or 0.
func (s *Scanner) GetRegionSizeAtAddress(h process.Handle, addr process.ProcessMemoryAddress) uint64 {
	region, err := h.QueryRegion(addr)
	if err != nil {
		return 0
	}

	if !region.IsCommitted() || !region.Contains(uint64(addr)) {
		return 0
	}

	return region.End() - uint64(addr)
}
