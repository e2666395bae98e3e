package reportportal

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/abdul-hamid-achik/rpreporter/packages/session"
	"github.com/benbjohnson/clock"
	"github.com/tidwall/gjson"
)

const apiPrefix = "/api/v1/demo"

var fixedTime = time.Date(2024, time.March, 5, 14, 7, 9, 0, time.Local)

type recordedRequest struct {
	Method string
	Path   string
	Header http.Header
	Body   []byte
}

func (r recordedRequest) JSON(path string) gjson.Result {
	return gjson.GetBytes(r.Body, path)
}

// fakeBackend records every request and answers start calls with generated ids
type fakeBackend struct {
	server   *httptest.Server
	mu       sync.Mutex
	requests []recordedRequest
	nextID   int
	// override, when set, answers instead of the default routes
	override func(w http.ResponseWriter, r *http.Request) bool
}

func newFakeBackend(t *testing.T) *fakeBackend {
	t.Helper()
	b := &fakeBackend{}
	b.server = httptest.NewServer(http.HandlerFunc(b.serve))
	t.Cleanup(b.server.Close)
	return b
}

func (b *fakeBackend) serve(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	b.mu.Lock()
	b.requests = append(b.requests, recordedRequest{
		Method: r.Method,
		Path:   strings.TrimPrefix(r.URL.Path, apiPrefix),
		Header: r.Header.Clone(),
		Body:   body,
	})
	b.nextID++
	id := b.nextID
	override := b.override
	b.mu.Unlock()

	if override != nil && override(w, r) {
		return
	}

	path := strings.TrimPrefix(r.URL.Path, apiPrefix)
	w.Header().Set("Content-Type", "application/json")
	switch {
	case r.Method == http.MethodPost && path == "/launch":
		w.WriteHeader(http.StatusCreated)
		fmt.Fprintf(w, `{"id": "launch-%d"}`, id)
	case r.Method == http.MethodPost && strings.HasPrefix(path, "/item"):
		w.WriteHeader(http.StatusCreated)
		fmt.Fprintf(w, `{"id": "item-%d"}`, id)
	case r.Method == http.MethodPost && path == "/log":
		w.WriteHeader(http.StatusCreated)
		fmt.Fprintf(w, `{"id": "log-%d"}`, id)
	default:
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"msg": "ok"}`))
	}
}

func (b *fakeBackend) Requests() []recordedRequest {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]recordedRequest(nil), b.requests...)
}

func (b *fakeBackend) Last() recordedRequest {
	reqs := b.Requests()
	if len(reqs) == 0 {
		return recordedRequest{}
	}
	return reqs[len(reqs)-1]
}

func (b *fakeBackend) SetOverride(fn func(w http.ResponseWriter, r *http.Request) bool) {
	b.mu.Lock()
	b.override = fn
	b.mu.Unlock()
}

func (b *fakeBackend) config() Config {
	return Config{
		Host:              b.server.URL + "/",
		Project:           "demo",
		Token:             "0b9ad5f4-2d4e-4a43-a5c5-2a8b3d0c9e11",
		TimeZone:          "+03:00",
		HTTPErrorsAllowed: true,
	}
}

func newTestService(b *fakeBackend, state *session.State, opts ...Option) *Service {
	mock := clock.NewMock()
	mock.Set(fixedTime)
	opts = append([]Option{WithClock(mock)}, opts...)
	return NewService(b.config(), state, opts...)
}
