// pkg/utils/clock.go

package utils

import "time"

var started = time.Now()

// Clock returns the time elapsed since the process started.
func Clock() time.Duration {
	return time.Since(started)
}

// Stopwatch accumulates named phase durations, e.g. "read" and "compute".
type Stopwatch struct {
	last   time.Duration
	phases []string
	spent  map[string]time.Duration
}

func NewStopwatch() *Stopwatch {
	return &Stopwatch{last: Clock(), spent: make(map[string]time.Duration)}
}

// Lap charges the time since the previous lap to phase.
func (s *Stopwatch) Lap(phase string) time.Duration {
	now := Clock()
	d := now - s.last
	s.last = now
	if _, ok := s.spent[phase]; !ok {
		s.phases = append(s.phases, phase)
	}
	s.spent[phase] += d
	return d
}

func (s *Stopwatch) Get(phase string) time.Duration {
	return s.spent[phase]
}

// Phases returns the phase names in the order they were first charged.
func (s *Stopwatch) Phases() []string {
	return s.phases
}
