package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aretw0/weaver"
	"github.com/aretw0/weaver/internal/testutils"
	"github.com/aretw0/weaver/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHandler(t *testing.T) http.Handler {
	t.Helper()
	eng := testutils.NewEngine(t, weaver.WithSource(testutils.MapSource{"style.txt": "short lines"}))
	return NewHandler(eng, WithVersion("1.2.3"), WithCapabilities([]string{"task", "writer"}), WithMetricsHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("# metrics\n"))
	})))
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestHealthAndInfo(t *testing.T) {
	h := newTestHandler(t)

	rr := do(t, h, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rr.Code)
	var health map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &health))
	assert.Equal(t, "ok", health["status"])

	rr = do(t, h, http.MethodGet, "/info", "")
	var info InfoResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &info))
	assert.Equal(t, "weaver-http", info.App)
	assert.Equal(t, "1.2.3", info.Version)
	assert.Equal(t, []string{"task", "writer"}, info.Capabilities)

	rr = do(t, h, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "# metrics")
}

func TestProjectLifecycle(t *testing.T) {
	h := newTestHandler(t)

	rr := do(t, h, http.MethodPost, "/projects", `{"name":"poem","goal":"write a poem"}`)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	rr = do(t, h, http.MethodPost, "/projects/poem/ingest", `{"entries":[{"source_id":"style","text":"short lines"}]}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var state domain.ProjectState
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &state))
	assert.Equal(t, domain.StageIngested, state.Stage)
	assert.Len(t, state.Corpus, 1)

	rr = do(t, h, http.MethodPost, "/projects/poem/plan", "")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	rr = do(t, h, http.MethodPost, "/projects/poem/run", `{"human_feedback":false}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var report domain.ExecutionReport
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &report))
	assert.Equal(t, 2, report.Done)
	assert.Equal(t, domain.StageCompleted, report.Stage)

	rr = do(t, h, http.MethodGet, "/projects/poem", "")
	require.Equal(t, http.StatusOK, rr.Code)
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &state))
	assert.Equal(t, "result 1", state.Blueprint[1].Result)

	rr = do(t, h, http.MethodGet, "/projects", "")
	require.Equal(t, http.StatusOK, rr.Code)
	var list map[string][]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &list))
	assert.Equal(t, []string{"poem"}, list["projects"])
}

func TestErrorStatuses(t *testing.T) {
	h := newTestHandler(t)
	require.Equal(t, http.StatusCreated, do(t, h, http.MethodPost, "/projects", `{"name":"p","goal":"g"}`).Code)

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		want   int
	}{
		{"Duplicate project", http.MethodPost, "/projects", `{"name":"p","goal":"g"}`, http.StatusConflict},
		{"Empty goal", http.MethodPost, "/projects", `{"name":"q","goal":"  "}`, http.StatusBadRequest},
		{"Invalid name", http.MethodPost, "/projects", `{"name":"../x","goal":"g"}`, http.StatusBadRequest},
		{"Unknown field", http.MethodPost, "/projects", `{"title":"p"}`, http.StatusBadRequest},
		{"Missing project", http.MethodGet, "/projects/nope", "", http.StatusNotFound},
		{"Run before plan", http.MethodPost, "/projects/p/run", "", http.StatusConflict},
		{"Duplicate source", http.MethodPost, "/projects/p/ingest", `{"entries":[{"source_id":"a","text":"1"},{"source_id":"a","text":"2"}]}`, http.StatusBadRequest},
		{"Server-side file", http.MethodPost, "/projects/p/ingest", `{"sources":["style.txt"]}`, http.StatusBadRequest},
		{"Server-side path", http.MethodPost, "/projects/p/ingest", `{"sources":["/etc/passwd"]}`, http.StatusBadRequest},
		{"Sources and entries", http.MethodPost, "/projects/p/ingest", `{"sources":["a"],"entries":[{"source_id":"b"}]}`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := do(t, h, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.want, rr.Code, rr.Body.String())
			if rr.Code >= 400 {
				var resp ErrorResponse
				require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
				assert.NotEmpty(t, resp.Error)
			}
		})
	}
}

func TestSourcesAreNeverRead(t *testing.T) {
	h := newTestHandler(t)
	require.Equal(t, http.StatusCreated, do(t, h, http.MethodPost, "/projects", `{"name":"p","goal":"g"}`).Code)

	rr := do(t, h, http.MethodPost, "/projects/p/ingest", `{"sources":["style.txt"]}`)
	require.Equal(t, http.StatusBadRequest, rr.Code)

	rr = do(t, h, http.MethodGet, "/projects/p", "")
	require.Equal(t, http.StatusOK, rr.Code)
	var state domain.ProjectState
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &state))
	assert.Empty(t, state.Corpus)
	assert.Equal(t, domain.StageCreated, state.Stage)
}

func TestCORS(t *testing.T) {
	eng := testutils.NewEngine(t)

	closed := NewHandler(eng)
	req := httptest.NewRequest(http.MethodGet, "/projects", nil)
	req.Header.Set("Origin", "https://evil.example")
	rr := httptest.NewRecorder()
	closed.ServeHTTP(rr, req)
	assert.Empty(t, rr.Header().Get("Access-Control-Allow-Origin"))

	open := NewHandler(eng, WithAllowedOrigins("https://ui.example"))
	req = httptest.NewRequest(http.MethodOptions, "/projects", nil)
	req.Header.Set("Origin", "https://ui.example")
	rr = httptest.NewRecorder()
	open.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "https://ui.example", rr.Header().Get("Access-Control-Allow-Origin"))
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{&domain.InvalidStageError{Operation: domain.OpRun}, http.StatusConflict},
		{&domain.AlreadyExistsError{Project: "p"}, http.StatusConflict},
		{&domain.ConcurrentRunError{Project: "p"}, http.StatusLocked},
		{fmt.Errorf("load: %w", domain.ErrProjectNotFound), http.StatusNotFound},
		{&domain.DuplicateSourceError{SourceID: "a"}, http.StatusBadRequest},
		{&domain.BlueprintEditError{Index: 0}, http.StatusBadRequest},
		{domain.ErrInvalidResumeToken, http.StatusBadRequest},
		{domain.ErrInvalidSteps, http.StatusBadRequest},
		{&domain.SourceUnavailableError{Locator: "a"}, http.StatusUnprocessableEntity},
		{&domain.PlanningError{Reason: "empty"}, http.StatusBadGateway},
		{domain.NewUpstreamError("task", errors.New("503")), http.StatusBadGateway},
		{&domain.CorruptStateError{Project: "p"}, http.StatusInternalServerError},
		{errors.New("disk full"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, StatusFor(tt.err), "%v", tt.err)
	}
}
