// Package process_blob holds a process image in local memory. It serves the
// same process.Handle contract as a live process, so offline dumps and tests
// can be scanned without a target.
package process_blob

import (
	"fmt"
	"sync"

	"memscan/process"
	"memscan/process/memory_map"
)

type segment struct {
	region memory_map.MemoryRegion
	data   []byte
}

// ProcessBlob is an address space made of non-overlapping segments
type ProcessBlob struct {
	mu       sync.Mutex
	segments []segment
}

var _ process.Handle = (*ProcessBlob)(nil)

func NewProcessBlob() *ProcessBlob {
	return &ProcessBlob{}
}

// Map adds a committed segment at base backed by a copy of data
func (p *ProcessBlob) Map(base process.ProcessMemoryAddress, data []byte, prot memory_map.Protection) error {
	if len(data) == 0 {
		return fmt.Errorf("empty segment at %s", base.ToString())
	}

	region := memory_map.MemoryRegion{
		BaseAddress: uint64(base),
		Size:        uint64(len(data)),
		Protection:  prot,
		State:       memory_map.StateCommit,
		Type:        memory_map.TypePrivate,
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	for _, s := range p.segments {
		if region.BaseAddress < s.region.End() && s.region.BaseAddress < region.End() {
			return fmt.Errorf("segment at %s overlaps 0x%X", base.ToString(), s.region.BaseAddress)
		}
	}

	buf := make([]byte, len(data))
	copy(buf, data)

	p.segments = append(p.segments, segment{region: region, data: buf})
	p.sortInternal()
	return nil
}

// Unmap removes the segment starting at base
func (p *ProcessBlob) Unmap(base process.ProcessMemoryAddress) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	for i, s := range p.segments {
		if s.region.BaseAddress == uint64(base) {
			p.segments = append(p.segments[:i], p.segments[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: %s", process.ErrAddressNotMapped, base.ToString())
}

// Protect changes the protection of the segment starting at base
func (p *ProcessBlob) Protect(base process.ProcessMemoryAddress, prot memory_map.Protection) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	for i := range p.segments {
		if p.segments[i].region.BaseAddress == uint64(base) {
			p.segments[i].region.Protection = prot
			return nil
		}
	}
	return fmt.Errorf("%w: %s", process.ErrAddressNotMapped, base.ToString())
}

// Regions returns the segment descriptions in address order
func (p *ProcessBlob) Regions() []memory_map.MemoryRegion {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.regionsInternal()
}

func (p *ProcessBlob) regionsInternal() []memory_map.MemoryRegion {
	regions := make([]memory_map.MemoryRegion, len(p.segments))
	for i, s := range p.segments {
		regions[i] = s.region
	}
	return regions
}

func (p *ProcessBlob) sortInternal() {
	regions := p.regionsInternal()
	memory_map.SortRegions(regions)

	byBase := make(map[uint64]segment, len(p.segments))
	for _, s := range p.segments {
		byBase[s.region.BaseAddress] = s
	}
	for i, r := range regions {
		p.segments[i] = byBase[r.BaseAddress]
	}
}

func (p *ProcessBlob) QueryRegion(addr process.ProcessMemoryAddress) (memory_map.MemoryRegion, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	region, ok := memory_map.QueryRegion(uint64(addr), p.regionsInternal())
	if !ok {
		return memory_map.MemoryRegion{}, process.ErrAddressNotMapped
	}
	return region, nil
}

// span returns the segment data for [addr, addr+size) when it lies in one segment
func (p *ProcessBlob) span(addr process.ProcessMemoryAddress, size process.ProcessMemorySize) (*segment, []byte, error) {
	if size == 0 {
		return nil, nil, fmt.Errorf("zero-length access at %s", addr.ToString())
	}

	i, found := memory_map.FindRegion(uint64(addr), p.regionsInternal())
	if !found {
		return nil, nil, fmt.Errorf("%w: %s", process.ErrAddressNotMapped, addr.ToString())
	}

	s := &p.segments[i]
	offset := uint64(addr) - s.region.BaseAddress
	if offset+uint64(size) > uint64(len(s.data)) {
		return nil, nil, fmt.Errorf("%w: %d bytes at %s crosses segment end", process.ErrPartialTransfer, size, addr.ToString())
	}
	return s, s.data[offset : offset+uint64(size)], nil
}

func (p *ProcessBlob) ReadMemory(addr process.ProcessMemoryAddress, size process.ProcessMemorySize) ([]byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	s, window, err := p.span(addr, size)
	if err != nil {
		return nil, err
	}
	if !s.region.IsReadable() {
		return nil, fmt.Errorf("%w: %s is %s", process.ErrAddressNotMapped, addr.ToString(), s.region.Protection)
	}

	out := make([]byte, len(window))
	copy(out, window)
	return out, nil
}

func (p *ProcessBlob) WriteMemory(addr process.ProcessMemoryAddress, data []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	s, window, err := p.span(addr, process.ProcessMemorySize(len(data)))
	if err != nil {
		return err
	}
	if !s.region.IsWritable() {
		return fmt.Errorf("%w: %s", process.ErrNotWritable, addr.ToString())
	}

	copy(window, data)
	return nil
}
