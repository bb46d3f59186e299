package scanner

import (
	"fmt"

	"memscan/process"
)

// FilterByValue keeps the candidates whose current value equals target
func (s *Scanner) FilterByValue(h process.Handle, previous []Match, target Value) ([]Match, error) {
	if len(previous) > 0 && previous[0].Value.typ != target.typ {
		return nil, fmt.Errorf("%w: candidates are %v, value is %v", ErrTypeMismatch, previous[0].Value.typ, target.typ)
	}

	return s.filter(h, previous, "value "+target.String(), func(_, current Value) bool {
		return current.Equal(target)
	}), nil
}

// FilterByChanged keeps the candidates whose current value differs from the captured one
func (s *Scanner) FilterByChanged(h process.Handle, previous []Match) []Match {
	return s.filter(h, previous, "changed", func(captured, current Value) bool {
		return !current.Equal(captured)
	})
}

// FilterByUnchanged keeps the candidates whose current value equals the captured one
func (s *Scanner) FilterByUnchanged(h process.Handle, previous []Match) []Match {
	return s.filter(h, previous, "unchanged", func(captured, current Value) bool {
		return current.Equal(captured)
	})
}

// filter re-reads each candidate, sized by its captured value so strings keep
// their length, and keeps it with the fresh value when keep approves.
// Candidates that can no longer be read are dropped without error.
func (s *Scanner) filter(h process.Handle, previous []Match, label string, keep func(captured, current Value) bool) []Match {
	results := make([]Match, 0)
	dropped := 0

	for _, m := range previous {
		current, err := s.readLike(h, m.Address, m.Value.typ, m.Value.Len())
		if err != nil {
			dropped++
			continue
		}

		if keep(m.Value, current) {
			results = append(results, Match{Address: m.Address, Value: current})
		}
	}

	if dropped > 0 {
		s.log.Debugln("Filter", label, "dropped", dropped, "unreadable candidates")
	}
	s.log.Infoln("Filter", label, "kept", len(results), "of", len(previous), "candidates")

	return results
}
