package scanner

import (
	"fmt"

	"memscan/process"
)

// ReadMemory reads exactly size bytes at addr
func (s *Scanner) ReadMemory(h process.Handle, addr process.ProcessMemoryAddress, size process.ProcessMemorySize) ([]byte, error) {
	if size == 0 {
		return nil, fmt.Errorf("%w: zero-length read at %s", ErrReadFault, addr.ToString())
	}

	data, err := h.ReadMemory(addr, size)
	if err != nil {
		return nil, fmt.Errorf("%w at %s: %w", ErrReadFault, addr.ToString(), err)
	}

	if len(data) != int(size) {
		return nil, fmt.Errorf("%w at %s: got %d of %d bytes", ErrReadFault, addr.ToString(), len(data), size)
	}

	return data, nil
}

// WriteMemory writes all of data at addr
func (s *Scanner) WriteMemory(h process.Handle, addr process.ProcessMemoryAddress, data []byte) error {
	if len(data) == 0 {
		return fmt.Errorf("%w: zero-length write at %s", ErrWriteFault, addr.ToString())
	}

	if err := h.WriteMemory(addr, data); err != nil {
		return fmt.Errorf("%w at %s: %w", ErrWriteFault, addr.ToString(), err)
	}

	return nil
}

// ReadValue reads a fixed-width value of type t at addr
func (s *Scanner) ReadValue(h process.Handle, addr process.ProcessMemoryAddress, t ValueType) (Value, error) {
	if !t.IsNumeric() {
		return Value{}, fmt.Errorf("%w: %v has no fixed width, use ReadString", ErrUnsupportedType, t)
	}

	return s.readLike(h, addr, t, t.Size())
}

// ReadString reads a string of chars characters of type t at addr
func (s *Scanner) ReadString(h process.Handle, addr process.ProcessMemoryAddress, t ValueType, chars int) (Value, error) {
	if t.unit() == 0 {
		return Value{}, fmt.Errorf("%w: %v is not a string type", ErrUnsupportedType, t)
	}
	if chars <= 0 {
		return Value{}, fmt.Errorf("%w: string length %d", ErrInvalidValue, chars)
	}

	return s.readLike(h, addr, t, chars*t.unit())
}

// WriteValue writes the encoded form of v at addr
func (s *Scanner) WriteValue(h process.Handle, addr process.ProcessMemoryAddress, v Value) error {
	return s.WriteMemory(h, addr, v.raw)
}

func (s *Scanner) readLike(h process.Handle, addr process.ProcessMemoryAddress, t ValueType, size int) (Value, error) {
	data, err := s.ReadMemory(h, addr, process.ProcessMemorySize(size))
	if err != nil {
		return Value{}, err
	}
	return Value{typ: t, raw: data}, nil
}

// Read reads a Go number of type T at addr
func Read[T Numeric](h process.Handle, addr process.ProcessMemoryAddress) (T, error) {
	v, err := process.Read[T](h, addr)
	if err != nil {
		return v, fmt.Errorf("%w at %s: %w", ErrReadFault, addr.ToString(), err)
	}
	return v, nil
}

// Write writes a Go number of type T at addr
func Write[T Numeric](h process.Handle, addr process.ProcessMemoryAddress, v T) error {
	if err := process.Write(h, addr, v); err != nil {
		return fmt.Errorf("%w at %s: %w", ErrWriteFault, addr.ToString(), err)
	}
	return nil
}
