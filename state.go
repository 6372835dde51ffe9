package fiscalpanel

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Warning records a non-fatal data-quality finding, such as a country name
// that failed to resolve to an ISO code. Warnings never abort a run.
type Warning struct {
	Source  string
	Message string
}

// State carries one run's data through the pipeline: the normalized frame
// per source, the combined panel built by the merge stage, and the
// warnings accumulated along the way. Each stage consumes and mutates the
// state it is handed; there is no other shared data between stages.
type State struct {
	mu       sync.RWMutex
	runID    string
	started  time.Time
	raw      map[string]*RawTable
	sources  map[string]*Frame
	order    []string
	combined *Frame
	warnings []Warning
}

func NewState() *State {
	return &State{
		runID:   uuid.NewString(),
		started: time.Now(),
		raw:     make(map[string]*RawTable),
		sources: make(map[string]*Frame),
	}
}

// SetRaw stores a loaded table before normalization.
func (s *State) SetRaw(name string, t *RawTable) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.raw[name] = t
}

func (s *State) Raw(name string) (*RawTable, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.raw[name]
	return t, ok
}

func (s *State) RunID() string {
	return s.runID
}

func (s *State) StartedAt() time.Time {
	return s.started
}

// SetSource stores a source frame. First store of a name fixes its
// position in the load order.
func (s *State) SetSource(name string, f *Frame) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sources[name]; !ok {
		s.order = append(s.order, name)
	}
	s.sources[name] = f
}

func (s *State) Source(name string) (*Frame, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	f, ok := s.sources[name]
	return f, ok
}

// SourceOrder returns source names in load order.
func (s *State) SourceOrder() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.order...)
}

func (s *State) SetCombined(f *Frame) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.combined = f
}

func (s *State) Combined() *Frame {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.combined
}

func (s *State) AddWarning(source, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.warnings = append(s.warnings, Warning{Source: source, Message: message})
}

func (s *State) Warnings() []Warning {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Warning(nil), s.warnings...)
}

func (s *State) WarningCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.warnings)
}
