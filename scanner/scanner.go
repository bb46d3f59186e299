// Package scanner walks a process's readable memory for typed values and
// narrows candidate lists across successive passes.
//
// Every region is read in one bounded call and scanned from the local copy.
// That costs one extra copy per region but keeps peak memory bounded by the
// largest region in flight and keeps each match a plain byte comparison.
//
// WithMaxScanBytes caps the bytes read, not the size of the result. An
// unknown-value scan keeps one Match (40 bytes on 64-bit targets) per byte of
// readable memory, so its result is about 40 times the bytes scanned; size
// the cap to a fortieth of the memory available for candidates.
package scanner

import (
	"errors"

	"memscan/process"

	"github.com/Moonlight-Companies/gologger/coloransi"
	"github.com/Moonlight-Companies/gologger/logger"
)

var (
	// ErrReadFault is returned when a bounded read fails or comes back short
	ErrReadFault = errors.New("read fault")

	// ErrWriteFault is returned when a bounded write fails or is partial
	ErrWriteFault = errors.New("write fault")

	// ErrTypeMismatch is returned when a value's type does not match the candidates'
	ErrTypeMismatch = errors.New("value type mismatch")

	// ErrUnsupportedType is returned for a ValueType an operation cannot handle
	ErrUnsupportedType = errors.New("unsupported value type")

	// ErrInvalidValue is returned for unparseable or empty search values
	ErrInvalidValue = errors.New("invalid value")

	// ErrScanLimitExceeded is returned when the readable bytes of a scan exceed the configured budget
	ErrScanLimitExceeded = errors.New("scan limit exceeded")
)

// Match is one candidate: an address and the value observed there when it was captured
type Match struct {
	Address process.ProcessMemoryAddress
	Value   Value
}

// Scanner holds scan configuration. It keeps no per-process state; the handle
// is borrowed for the duration of each call.
type Scanner struct {
	log          *logger.Logger
	maxdop       int
	maxScanBytes uint64
}

// Option is a function that configures a Scanner
type Option func(*Scanner)

func WithLogger(log *logger.Logger) Option {
	return func(s *Scanner) {
		s.log = log
	}
}

// WithParallelism scans up to n regions at once. Results keep region order.
// The handle must then tolerate concurrent reads.
func WithParallelism(n int) Option {
	return func(s *Scanner) {
		s.maxdop = n
	}
}

// WithMaxScanBytes rejects scans whose readable regions total more than n bytes. 0 disables the cap.
func WithMaxScanBytes(n uint64) Option {
	return func(s *Scanner) {
		s.maxScanBytes = n
	}
}

func New(options ...Option) *Scanner {
	s := &Scanner{
		maxdop: 1,
	}

	for _, opt := range options {
		opt(s)
	}

	if s.log == nil {
		s.log = logger.NewLogger(coloransi.Color(coloransi.ColorPurple, coloransi.ColorOrange, "scanner"))
	}
	if s.maxdop < 1 {
		s.maxdop = 1
	}

	return s
}
