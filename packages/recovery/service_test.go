package recovery

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/abdul-hamid-achik/rpreporter/packages/reportportal"
	"github.com/abdul-hamid-achik/rpreporter/packages/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func TestReconcile_WithService(t *testing.T) {
	var mu sync.Mutex
	var calls []string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		path := strings.TrimPrefix(r.URL.Path, "/api/v1/demo")
		mu.Lock()
		calls = append(calls, r.Method+" "+path+" "+gjson.GetBytes(body, "status").String())
		mu.Unlock()

		if path == "/launch/launch-1/finish" {
			w.WriteHeader(http.StatusNotAcceptable)
			_, _ = w.Write([]byte(`{"errorCode": 4031, "message": "Finish launch is not allowed. Please finish items: [item-8,item-9]"}`))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	state := session.New()
	state.Set(session.LevelLaunch, "launch-1")
	svc := reportportal.NewService(reportportal.Config{
		Host:              server.URL,
		Project:           "demo",
		Token:             "token",
		HTTPErrorsAllowed: true,
	}, state)

	ctx := context.Background()
	resp, err := svc.FinishLaunch(ctx, reportportal.StatusPassed)
	require.NoError(t, err)

	ok := New(svc).Reconcile(ctx, resp)
	assert.False(t, ok)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{
		"PUT /launch/launch-1/finish PASSED",
		"PUT /item/item-8 CANCELLED",
		"PUT /item/item-9 CANCELLED",
		"PUT /launch/launch-1/stop CANCELLED",
	}, calls)
}
