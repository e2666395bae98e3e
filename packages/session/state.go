// Package session holds the identifier chain of the test run being reported:
// launch, root suite, feature, scenario and step.
package session

import (
	"fmt"
	"sync"
)

// EmptyID marks a level that is not currently running
const EmptyID = ""

// Level identifies one position in the launch hierarchy
type Level int

const (
	LevelLaunch Level = iota
	LevelRoot
	LevelFeature
	LevelScenario
	LevelStep
)

var levelNames = map[Level]string{
	LevelLaunch:   "launch",
	LevelRoot:     "root",
	LevelFeature:  "feature",
	LevelScenario: "scenario",
	LevelStep:     "step",
}

func (l Level) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	return fmt.Sprintf("level(%d)", int(l))
}

// Parent returns the level directly above l. The launch level is its own parent.
func (l Level) Parent() Level {
	if l <= LevelLaunch {
		return LevelLaunch
	}
	return l - 1
}

// ParseLevel parses a level name as printed by Level.String
func ParseLevel(name string) (Level, error) {
	for l, n := range levelNames {
		if n == name {
			return l, nil
		}
	}
	return 0, fmt.Errorf("unknown level %q (expected launch, root, feature, scenario or step)", name)
}

// Snapshot is a copy of the identifier chain
type Snapshot struct {
	LaunchID       string `json:"launchId"`
	RootItemID     string `json:"rootItemId"`
	FeatureItemID  string `json:"featureItemId"`
	ScenarioItemID string `json:"scenarioItemId"`
	StepItemID     string `json:"stepItemId"`
}

// State is the identifier chain of one test run. It is safe for concurrent
// use, but one State must only ever describe a single run.
type State struct {
	mu  sync.Mutex
	ids [LevelStep + 1]string
}

// New creates a state with every level empty
func New() *State {
	return &State{}
}

// ID returns the identifier held for level, or EmptyID
func (s *State) ID(level Level) string {
	if !valid(level) {
		return EmptyID
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ids[level]
}

// Set stores the identifier returned by the backend for level
func (s *State) Set(level Level, id string) {
	if !valid(level) {
		return
	}
	s.mu.Lock()
	s.ids[level] = id
	s.mu.Unlock()
}

// Reset marks level as not running
func (s *State) Reset(level Level) {
	s.Set(level, EmptyID)
}

// IsRunning reports whether level holds an identifier
func (s *State) IsRunning(level Level) bool {
	return s.ID(level) != EmptyID
}

func (s *State) LaunchID() string { return s.ID(LevelLaunch) }
func (s *State) RootItemID() string { return s.ID(LevelRoot) }
func (s *State) FeatureItemID() string { return s.ID(LevelFeature) }
func (s *State) ScenarioItemID() string { return s.ID(LevelScenario) }
func (s *State) StepItemID() string { return s.ID(LevelStep) }

func (s *State) IsLaunchRunning() bool { return s.IsRunning(LevelLaunch) }
func (s *State) IsRootRunning() bool { return s.IsRunning(LevelRoot) }
func (s *State) IsFeatureRunning() bool { return s.IsRunning(LevelFeature) }
func (s *State) IsScenarioRunning() bool { return s.IsRunning(LevelScenario) }
func (s *State) IsStepRunning() bool { return s.IsRunning(LevelStep) }

// Snapshot copies the current chain
func (s *State) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		LaunchID:       s.ids[LevelLaunch],
		RootItemID:     s.ids[LevelRoot],
		FeatureItemID:  s.ids[LevelFeature],
		ScenarioItemID: s.ids[LevelScenario],
		StepItemID:     s.ids[LevelStep],
	}
}

// Restore replaces the current chain with snap
func (s *State) Restore(snap Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ids[LevelLaunch] = snap.LaunchID
	s.ids[LevelRoot] = snap.RootItemID
	s.ids[LevelFeature] = snap.FeatureItemID
	s.ids[LevelScenario] = snap.ScenarioItemID
	s.ids[LevelStep] = snap.StepItemID
}

// Clear resets every level
func (s *State) Clear() {
	s.Restore(Snapshot{})
}

// IsEmpty reports whether no level is running
func (snap Snapshot) IsEmpty() bool {
	return snap == Snapshot{}
}

func valid(level Level) bool {
	return level >= LevelLaunch && level <= LevelStep
}
