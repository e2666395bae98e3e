package reportportal

import (
	"context"
	"net/http"
	"testing"

	"github.com/abdul-hamid-achik/rpreporter/packages/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestService_NestedHierarchy(t *testing.T) {
	b := newFakeBackend(t)
	state := session.New()
	svc := newTestService(b, state)
	ctx := context.Background()

	_, err := svc.StartLaunch(ctx, "launch", "", ModeDefault, nil)
	require.NoError(t, err)
	_, err = svc.StartRootItem(ctx, "suite", "", nil)
	require.NoError(t, err)
	_, err = svc.StartFeature(ctx, "Login", "", ItemTest, nil)
	require.NoError(t, err)
	_, err = svc.StartScenario(ctx, "valid password", "", nil)
	require.NoError(t, err)
	_, err = svc.StartStep(ctx, "submit form", "", nil)
	require.NoError(t, err)

	assert.Equal(t, session.Snapshot{
		LaunchID:       "launch-1",
		RootItemID:     "item-2",
		FeatureItemID:  "item-3",
		ScenarioItemID: "item-4",
		StepItemID:     "item-5",
	}, state.Snapshot())

	reqs := b.Requests()
	assert.Equal(t, "/item/item-2", reqs[2].Path)
	assert.Equal(t, "/item/item-3", reqs[3].Path)
	assert.Equal(t, "SCENARIO", reqs[3].JSON("type").String())
	assert.Equal(t, "/item/item-4", reqs[4].Path)
	assert.Equal(t, "STEP", reqs[4].JSON("type").String())

	_, err = svc.FinishStep(ctx, StatusPassed, "")
	require.NoError(t, err)
	assert.Equal(t, "/item/item-5", b.Last().Path)
	assert.False(t, svc.IsStepRunning())

	_, err = svc.FinishScenario(ctx, StatusFailed, "broken")
	require.NoError(t, err)
	assert.Equal(t, "FAILED", b.Last().JSON("status").String())
	assert.False(t, svc.IsScenarioRunning())

	_, err = svc.FinishFeature(ctx, StatusFailed, "")
	require.NoError(t, err)
	assert.False(t, svc.IsFeatureRunning())
	assert.True(t, svc.IsRootRunning())
}

func TestService_StartNested_RequiresParent(t *testing.T) {
	b := newFakeBackend(t)
	state := session.New()
	state.Set(session.LevelLaunch, "launch-1")
	svc := newTestService(b, state)

	_, err := svc.StartScenario(context.Background(), "orphan", "", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no feature is running")
	assert.Empty(t, b.Requests())
}

func TestService_StartNested_RejectsTopLevels(t *testing.T) {
	b := newFakeBackend(t)
	svc := newTestService(b, session.New())

	_, err := svc.StartNested(context.Background(), session.LevelRoot, "x", "", ItemSuite, nil)
	assert.Error(t, err)
	_, err = svc.FinishNested(context.Background(), session.LevelLaunch, StatusPassed, "")
	assert.Error(t, err)
}

func TestService_FinishNested_NotRunning(t *testing.T) {
	b := newFakeBackend(t)
	svc := newTestService(b, session.New())

	_, err := svc.FinishStep(context.Background(), StatusPassed, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not running")
	assert.Empty(t, b.Requests())
}

func TestService_FinishNested_ResetsOnFailure(t *testing.T) {
	b := newFakeBackend(t)
	b.SetOverride(func(w http.ResponseWriter, r *http.Request) bool {
		w.WriteHeader(http.StatusInternalServerError)
		return true
	})
	state := session.New()
	state.Set(session.LevelStep, "step-1")
	svc := newTestService(b, state)

	resp, err := svc.FinishStep(context.Background(), StatusPassed, "")
	require.NoError(t, err)
	assert.Equal(t, 500, resp.StatusCode)
	assert.False(t, state.IsStepRunning())
}

func TestService_StartNested_MissingID(t *testing.T) {
	b := newFakeBackend(t)
	b.SetOverride(func(w http.ResponseWriter, r *http.Request) bool {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message": "Test Item 'root-1' not found"}`))
		return true
	})
	state := session.New()
	state.Set(session.LevelRoot, "root-1")
	svc := newTestService(b, state)

	resp, err := svc.StartFeature(context.Background(), "f", "", ItemTest, nil)
	require.ErrorIs(t, err, ErrMissingField)
	assert.Equal(t, 404, resp.StatusCode)
	assert.False(t, state.IsFeatureRunning())
}
