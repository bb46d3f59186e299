// Package session tracks one scan workflow against one attached process:
// the active value type, the candidate list, and whether a first scan ran.
package session

import (
	"errors"
	"fmt"

	"memscan/process"
	"memscan/scanner"

	"github.com/Moonlight-Companies/gologger/coloransi"
	"github.com/Moonlight-Companies/gologger/logger"
)

var (
	// ErrNotAttached is returned when an operation needs a process handle and none is attached
	ErrNotAttached = errors.New("no process attached")

	// ErrNoInitialScan is returned by narrowing scans before a first scan has run
	ErrNoInitialScan = errors.New("no initial scan")
)

// State is the position of a Session in its lifecycle
type State int

const (
	StateUnattached State = iota
	StateNoScan
	StateHasCandidates
)

func (s State) String() string {
	switch s {
	case StateUnattached:
		return "unattached"
	case StateNoScan:
		return "attached/no-scan"
	case StateHasCandidates:
		return "attached/has-candidates"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Session is not safe for concurrent use.
type Session struct {
	scanner        *scanner.Scanner
	handle         process.Handle
	valueType      scanner.ValueType
	matches        []scanner.Match
	hasInitialScan bool
	log            *logger.Logger
}

// Option is a function that configures a Session
type Option func(*Session)

func WithLogger(log *logger.Logger) Option {
	return func(s *Session) {
		s.log = log
	}
}

func WithValueType(t scanner.ValueType) Option {
	return func(s *Session) {
		s.valueType = t
	}
}

// New creates an unattached session. The value type defaults to int32.
func New(sc *scanner.Scanner, options ...Option) *Session {
	s := &Session{
		scanner:   sc,
		valueType: scanner.TypeInt32,
	}

	for _, opt := range options {
		opt(s)
	}

	if s.log == nil {
		s.log = logger.NewLogger(coloransi.Color(coloransi.ColorPurple, coloransi.ColorOrange, "session"))
	}

	return s
}

func (s *Session) State() State {
	switch {
	case s.handle == nil:
		return StateUnattached
	case !s.hasInitialScan:
		return StateNoScan
	default:
		return StateHasCandidates
	}
}

// Attach borrows h for subsequent operations and discards any candidates.
// The session never closes h.
func (s *Session) Attach(h process.Handle) {
	s.handle = h
	s.clear()
	s.log.Infoln("Attached, state", s.State())
}

// Detach forgets the handle and candidates. Closing the handle is up to its owner.
func (s *Session) Detach() {
	s.handle = nil
	s.clear()
	s.log.Infoln("Detached")
}

// Reset drops the candidates and returns an attached session to StateNoScan
func (s *Session) Reset() {
	s.clear()
	s.log.Infoln("Scan reset")
}

func (s *Session) clear() {
	s.matches = nil
	s.hasInitialScan = false
}

func (s *Session) ValueType() scanner.ValueType {
	return s.valueType
}

// SetValueType switches the active type. Candidates of the old type are discarded.
func (s *Session) SetValueType(t scanner.ValueType) {
	if t == s.valueType {
		return
	}
	s.valueType = t
	s.clear()
	s.log.Infoln("Value type set to", t)
}

// Matches returns a copy of the current candidate list
func (s *Session) Matches() []scanner.Match {
	out := make([]scanner.Match, len(s.matches))
	copy(out, s.matches)
	return out
}

func (s *Session) Count() int {
	return len(s.matches)
}

func (s *Session) requireHandle() error {
	if s.handle == nil {
		return ErrNotAttached
	}
	return nil
}

func (s *Session) requireCandidates() error {
	if err := s.requireHandle(); err != nil {
		return err
	}
	if !s.hasInitialScan {
		return ErrNoInitialScan
	}
	return nil
}

func (s *Session) setInitial(matches []scanner.Match) int {
	s.matches = matches
	s.hasInitialScan = true
	return len(matches)
}
