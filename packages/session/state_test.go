package session

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestState_StartsEmpty(t *testing.T) {
	s := New()

	assert.False(t, s.IsLaunchRunning())
	assert.False(t, s.IsRootRunning())
	assert.False(t, s.IsFeatureRunning())
	assert.False(t, s.IsScenarioRunning())
	assert.False(t, s.IsStepRunning())
	assert.True(t, s.Snapshot().IsEmpty())
}

func TestState_RunningPredicates(t *testing.T) {
	tests := []struct {
		level   Level
		running func(*State) bool
		id      func(*State) string
	}{
		{LevelLaunch, (*State).IsLaunchRunning, (*State).LaunchID},
		{LevelRoot, (*State).IsRootRunning, (*State).RootItemID},
		{LevelFeature, (*State).IsFeatureRunning, (*State).FeatureItemID},
		{LevelScenario, (*State).IsScenarioRunning, (*State).ScenarioItemID},
		{LevelStep, (*State).IsStepRunning, (*State).StepItemID},
	}

	for _, tt := range tests {
		t.Run(tt.level.String(), func(t *testing.T) {
			s := New()
			require.False(t, tt.running(s))

			s.Set(tt.level, "abc-123")
			assert.True(t, tt.running(s))
			assert.Equal(t, "abc-123", tt.id(s))

			s.Reset(tt.level)
			assert.False(t, tt.running(s))
			assert.Equal(t, EmptyID, tt.id(s))
		})
	}
}

func TestState_LevelsAreIndependent(t *testing.T) {
	s := New()
	s.Set(LevelLaunch, "launch")
	s.Set(LevelStep, "step")

	assert.True(t, s.IsLaunchRunning())
	assert.False(t, s.IsRootRunning())
	assert.False(t, s.IsScenarioRunning())
	assert.True(t, s.IsStepRunning())
}

func TestState_SnapshotRestore(t *testing.T) {
	s := New()
	s.Set(LevelLaunch, "l1")
	s.Set(LevelRoot, "r1")
	s.Set(LevelFeature, "f1")

	snap := s.Snapshot()
	assert.Equal(t, Snapshot{LaunchID: "l1", RootItemID: "r1", FeatureItemID: "f1"}, snap)

	other := New()
	other.Restore(snap)
	assert.Equal(t, "r1", other.RootItemID())
	assert.False(t, other.IsStepRunning())

	other.Clear()
	assert.True(t, other.Snapshot().IsEmpty())
	// clearing the copy leaves the original untouched
	assert.Equal(t, "l1", s.LaunchID())
}

func TestState_InvalidLevelIgnored(t *testing.T) {
	s := New()
	s.Set(Level(42), "x")

	assert.Equal(t, EmptyID, s.ID(Level(42)))
	assert.True(t, s.Snapshot().IsEmpty())
}

func TestState_ConcurrentAccess(t *testing.T) {
	s := New()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Set(LevelStep, "step")
			_ = s.IsStepRunning()
			_ = s.Snapshot()
		}()
	}
	wg.Wait()
	assert.Equal(t, "step", s.StepItemID())
}

func TestLevel_ParentAndString(t *testing.T) {
	assert.Equal(t, LevelLaunch, LevelLaunch.Parent())
	assert.Equal(t, LevelLaunch, LevelRoot.Parent())
	assert.Equal(t, LevelRoot, LevelFeature.Parent())
	assert.Equal(t, LevelFeature, LevelScenario.Parent())
	assert.Equal(t, LevelScenario, LevelStep.Parent())

	assert.Equal(t, "scenario", LevelScenario.String())
	assert.Equal(t, "level(9)", Level(9).String())
}

func TestParseLevel(t *testing.T) {
	for _, name := range []string{"launch", "root", "feature", "scenario", "step"} {
		l, err := ParseLevel(name)
		require.NoError(t, err)
		assert.Equal(t, name, l.String())
	}

	_, err := ParseLevel("epic")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unknown level")
}
