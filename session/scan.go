package session

import (
	"fmt"

	"memscan/process"
	"memscan/process/memory_map"
	"memscan/scanner"
)

// FirstScan replaces the candidates with every address holding target.
// The active value type follows target.
func (s *Session) FirstScan(target scanner.Value) (int, error) {
	if err := s.requireHandle(); err != nil {
		return 0, err
	}

	matches, err := s.scanner.ScanForValue(s.handle, target)
	if err != nil {
		return 0, err
	}

	s.valueType = target.Type()
	return s.setInitial(matches), nil
}

// FirstScanUnknown captures every value of the active type
func (s *Session) FirstScanUnknown() (int, error) {
	if err := s.requireHandle(); err != nil {
		return 0, err
	}

	matches, err := s.scanner.ScanAllValues(s.handle, s.valueType)
	if err != nil {
		return 0, err
	}

	return s.setInitial(matches), nil
}

// NextScan keeps the candidates whose current value equals target
func (s *Session) NextScan(target scanner.Value) (int, error) {
	if err := s.requireCandidates(); err != nil {
		return 0, err
	}

	if target.Type() != s.valueType {
		return 0, fmt.Errorf("%w: session is %v, value is %v", scanner.ErrTypeMismatch, s.valueType, target.Type())
	}

	matches, err := s.scanner.FilterByValue(s.handle, s.matches, target)
	if err != nil {
		return 0, err
	}

	s.matches = matches
	return len(matches), nil
}

// ChangedScan keeps the candidates whose value changed since the last pass
func (s *Session) ChangedScan() (int, error) {
	if err := s.requireCandidates(); err != nil {
		return 0, err
	}

	s.matches = s.scanner.FilterByChanged(s.handle, s.matches)
	return len(s.matches), nil
}

// UnchangedScan keeps the candidates whose value did not change since the last pass
func (s *Session) UnchangedScan() (int, error) {
	if err := s.requireCandidates(); err != nil {
		return 0, err
	}

	s.matches = s.scanner.FilterByUnchanged(s.handle, s.matches)
	return len(s.matches), nil
}

// ReadValue reads a value of the active type at addr. String types read as
// many characters as the candidate at addr holds.
func (s *Session) ReadValue(addr process.ProcessMemoryAddress) (scanner.Value, error) {
	if err := s.requireHandle(); err != nil {
		return scanner.Value{}, err
	}

	if s.valueType.IsNumeric() {
		return s.scanner.ReadValue(s.handle, addr, s.valueType)
	}

	for _, m := range s.matches {
		if m.Address == addr {
			chars := m.Value.Len()
			if s.valueType == scanner.TypeWideString {
				chars /= 2
			}
			return s.scanner.ReadString(s.handle, addr, s.valueType, chars)
		}
	}
	return scanner.Value{}, fmt.Errorf("%w: %v at %s needs a length, address is not a candidate", scanner.ErrUnsupportedType, s.valueType, addr.ToString())
}

// WriteValue writes v at addr. v must be of the active type.
func (s *Session) WriteValue(addr process.ProcessMemoryAddress, v scanner.Value) error {
	if err := s.requireHandle(); err != nil {
		return err
	}

	if v.Type() != s.valueType {
		return fmt.Errorf("%w: session is %v, value is %v", scanner.ErrTypeMismatch, s.valueType, v.Type())
	}

	return s.scanner.WriteValue(s.handle, addr, v)
}

// Regions lists the readable regions of the attached process
func (s *Session) Regions() ([]memory_map.MemoryRegion, error) {
	if err := s.requireHandle(); err != nil {
		return nil, err
	}
	return s.scanner.GetReadableRegions(s.handle), nil
}

// RegionSizeAt returns the bytes left in the committed region containing addr
func (s *Session) RegionSizeAt(addr process.ProcessMemoryAddress) (uint64, error) {
	if err := s.requireHandle(); err != nil {
		return 0, err
	}
	return s.scanner.GetRegionSizeAtAddress(s.handle, addr), nil
}

// ReadMemory reads raw bytes from the attached process
func (s *Session) ReadMemory(addr process.ProcessMemoryAddress, size process.ProcessMemorySize) ([]byte, error) {
	if err := s.requireHandle(); err != nil {
		return nil, err
	}
	return s.scanner.ReadMemory(s.handle, addr, size)
}
