package scanner

import (
	"fmt"

	"memscan/process"
	"memscan/process/memory_map"

	"golang.org/x/sync/errgroup"
)

// regionMatcher emits the matches found in one region's bytes
type regionMatcher func(base uint64, buf []byte) []Match

// ScanForValue finds every byte offset in readable memory whose bytes decode
// to target. Offsets are not aligned: values may sit anywhere in a region.
func (s *Scanner) ScanForValue(h process.Handle, target Value) ([]Match, error) {
	if !target.typ.IsNumeric() {
		if target.typ.unit() == 0 {
			return nil, fmt.Errorf("%w: %v", ErrUnsupportedType, target.typ)
		}
		return s.scanForTerm(h, target)
	}

	width := target.Len()
	return s.scan(h, "value "+target.String(), width, func(base uint64, buf []byte) []Match {
		var matches []Match
		for i := 0; i+width <= len(buf); i++ {
			window := buf[i : i+width]
			if target.matches(window) {
				matches = append(matches, Match{
					Address: process.ProcessMemoryAddress(base + uint64(i)),
					Value:   DecodeValue(target.typ, window),
				})
			}
		}
		return matches
	})
}

// ScanAllValues captures the value of type t at every byte offset of readable
// memory, seeding a candidate list when the initial value is unknown.
func (s *Scanner) ScanAllValues(h process.Handle, t ValueType) ([]Match, error) {
	if !t.IsNumeric() {
		return nil, fmt.Errorf("%w: unknown-value scan needs a fixed-width type, got %v", ErrUnsupportedType, t)
	}

	width := t.Size()
	return s.scan(h, "unknown "+t.String(), width, func(base uint64, buf []byte) []Match {
		if len(buf) < width {
			return nil
		}
		// Captured values share the region buffer; it is never written after the read.
		matches := make([]Match, 0, len(buf)-width+1)
		for i := 0; i+width <= len(buf); i++ {
			matches = append(matches, Match{
				Address: process.ProcessMemoryAddress(base + uint64(i)),
				Value:   Value{typ: t, raw: buf[i : i+width : i+width]},
			})
		}
		return matches
	})
}

// ScanForString finds every occurrence of the bytes of term
func (s *Scanner) ScanForString(h process.Handle, term string) ([]Match, error) {
	return s.scanForTerm(h, NewString(term))
}

// ScanForWideString finds every occurrence of term encoded as UTF-16LE
func (s *Scanner) ScanForWideString(h process.Handle, term string) ([]Match, error) {
	v, err := NewWideString(term)
	if err != nil {
		return nil, err
	}
	return s.scanForTerm(h, v)
}

func (s *Scanner) scanForTerm(h process.Handle, term Value) ([]Match, error) {
	width := term.Len()
	if width == 0 {
		return nil, fmt.Errorf("%w: empty search string", ErrInvalidValue)
	}

	return s.scan(h, fmt.Sprintf("%v %q", term.typ, term.String()), width, func(base uint64, buf []byte) []Match {
		var matches []Match
		for i := 0; i+width <= len(buf); i++ {
			if term.matches(buf[i : i+width]) {
				// the match is the search term by construction
				matches = append(matches, Match{
					Address: process.ProcessMemoryAddress(base + uint64(i)),
					Value:   term,
				})
			}
		}
		return matches
	})
}

// scan plans the regions to read, enforces the byte budget, and runs match
// over each region in address order.
func (s *Scanner) scan(h process.Handle, label string, width int, match regionMatcher) ([]Match, error) {
	var plan []memory_map.MemoryRegion
	var total uint64
	for _, region := range s.GetReadableRegions(h) {
		if region.Size < uint64(width) {
			continue
		}
		plan = append(plan, region)
		total += region.Size
	}

	if s.maxScanBytes > 0 && total > s.maxScanBytes {
		return nil, fmt.Errorf("%w: %d readable bytes, limit %d", ErrScanLimitExceeded, total, s.maxScanBytes)
	}

	s.log.Infoln("Starting scan for", label, "over", len(plan), "regions,", total, "bytes")

	perRegion := make([][]Match, len(plan))
	if s.maxdop > 1 && len(plan) > 1 {
		var g errgroup.Group
		g.SetLimit(s.maxdop)
		for i, region := range plan {
			i, region := i, region
			g.Go(func() error {
				perRegion[i] = s.scanRegion(h, region, match)
				return nil
			})
		}
		_ = g.Wait()
	} else {
		for i, region := range plan {
			perRegion[i] = s.scanRegion(h, region, match)
		}
	}

	count := 0
	for _, m := range perRegion {
		count += len(m)
	}
	results := make([]Match, 0, count)
	for _, m := range perRegion {
		results = append(results, m...)
	}

	s.log.Infoln("Scan complete, found", len(results), "matches")
	return results, nil
}

// scanRegion reads one region whole and matches over it. A region that cannot
// be read is skipped: the target may unmap or reprotect memory mid-scan.
func (s *Scanner) scanRegion(h process.Handle, region memory_map.MemoryRegion, match regionMatcher) []Match {
	buf, err := s.ReadMemory(h, process.ProcessMemoryAddress(region.BaseAddress), process.ProcessMemorySize(region.Size))
	if err != nil {
		s.log.Debugln("Failed to read memory region at", fmt.Sprintf("0x%x", region.BaseAddress), err)
		return nil
	}

	return match(region.BaseAddress, buf)
}
