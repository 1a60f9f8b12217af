package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/agisilaos/annofab-cli/internal/api"
)

// fakeAnnofab serves the subset of the AnnoFab REST API the commands use.
type fakeAnnofab struct {
	mu          sync.Mutex
	role        api.ProjectMemberRole
	tasks       map[string]api.Task
	inspections map[string][]api.Inspection
	inputs      map[string]api.InputData
	jobs        []api.Job
	operations  []api.OperateTaskRequest
	batches     []api.BatchInspectionRequest
	puts        map[string]map[string]any
	logins      int
	clock       int
}

func newFakeAnnofab(t *testing.T) (*fakeAnnofab, *httptest.Server) {
	t.Helper()
	f := &fakeAnnofab{
		role:        api.RoleOwner,
		tasks:       map[string]api.Task{},
		inspections: map[string][]api.Inspection{},
		inputs:      map[string]api.InputData{},
		puts:        map[string]map[string]any{},
	}
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/login", f.login)
	mux.HandleFunc("GET /api/v1/my/projects/{project}/member", f.myMember)
	mux.HandleFunc("GET /api/v1/projects/{project}/tasks", f.listTasks)
	mux.HandleFunc("GET /api/v1/projects/{project}/tasks/{task}", f.getTask)
	mux.HandleFunc("POST /api/v1/projects/{project}/tasks/{task}/operate", f.operateTask)
	mux.HandleFunc("GET /api/v1/projects/{project}/tasks/{task}/inputs/{input}/inspections", f.getInspections)
	mux.HandleFunc("PATCH /api/v1/projects/{project}/tasks/{task}/inputs/{input}/inspections", f.batchInspections)
	mux.HandleFunc("GET /api/v1/projects/{project}/inputs/{input}", f.getInput)
	mux.HandleFunc("PUT /api/v1/projects/{project}/inputs/{input}", f.putInput)
	mux.HandleFunc("GET /api/v1/projects/{project}/jobs", f.listJobs)
	ts := httptest.NewServer(f.authorized(mux))
	t.Cleanup(ts.Close)
	return f, ts
}

func (f *fakeAnnofab) authorized(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/login" && r.Header.Get("Authorization") != "tok" {
			http.Error(w, `{"errors":[{"error_code":"UNAUTHORIZED"}]}`, http.StatusUnauthorized)
			return
		}
		f.mu.Lock()
		defer f.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func (f *fakeAnnofab) login(w http.ResponseWriter, r *http.Request) {
	f.logins++
	writeJSON(w, map[string]any{"token": map[string]string{"id_token": "tok"}})
}

func (f *fakeAnnofab) myMember(w http.ResponseWriter, r *http.Request) {
	if f.role == "" {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, api.ProjectMember{ProjectID: r.PathValue("project"), AccountID: "me", UserID: "alice", MemberRole: f.role})
}

func (f *fakeAnnofab) listTasks(w http.ResponseWriter, r *http.Request) {
	list := make([]api.Task, 0, len(f.tasks))
	for _, t := range f.tasks {
		list = append(list, t)
	}
	writeJSON(w, api.List[api.Task]{List: list, TotalCount: len(list)})
}

func (f *fakeAnnofab) getTask(w http.ResponseWriter, r *http.Request) {
	t, ok := f.tasks[r.PathValue("task")]
	if !ok {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, t)
}

func (f *fakeAnnofab) operateTask(w http.ResponseWriter, r *http.Request) {
	var req api.OperateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	t := f.tasks[r.PathValue("task")]
	if req.LastUpdatedDatetime != t.UpdatedDatetime {
		http.Error(w, "stale", http.StatusConflict)
		return
	}
	f.operations = append(f.operations, req)
	f.clock++
	t.Status = req.Status
	t.AccountID = req.AccountID
	t.UpdatedDatetime = fmt.Sprintf("2024-01-10T10:%02d:00.000+09:00", f.clock)
	f.tasks[t.TaskID] = t
	writeJSON(w, t)
}

func (f *fakeAnnofab) getInspections(w http.ResponseWriter, r *http.Request) {
	list := f.inspections[r.PathValue("input")]
	if list == nil {
		list = []api.Inspection{}
	}
	writeJSON(w, list)
}

func (f *fakeAnnofab) batchInspections(w http.ResponseWriter, r *http.Request) {
	var reqs []api.BatchInspectionRequest
	if err := json.NewDecoder(r.Body).Decode(&reqs); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	f.batches = append(f.batches, reqs...)
	writeJSON(w, []api.Inspection{})
}

func (f *fakeAnnofab) getInput(w http.ResponseWriter, r *http.Request) {
	d, ok := f.inputs[r.PathValue("input")]
	if !ok {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, d)
}

func (f *fakeAnnofab) putInput(w http.ResponseWriter, r *http.Request) {
	var body map[string]any
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	id := r.PathValue("input")
	f.puts[id] = body
	writeJSON(w, f.inputs[id])
}

func (f *fakeAnnofab) listJobs(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, api.List[api.Job]{List: f.jobs, TotalCount: len(f.jobs)})
}

type cliResult struct {
	code   int
	stdout string
	stderr string
}

// runCLI executes the command with isolated config, credentials from env and
// the log file disabled. env may point XDG_CONFIG_HOME at a prepared config.
// stdin is empty, so prompts read EOF.
func runCLI(t *testing.T, env map[string]string, args ...string) cliResult {
	t.Helper()
	dir := t.TempDir()
	configHome := filepath.Join(dir, "config")
	if v, ok := env["XDG_CONFIG_HOME"]; ok {
		configHome = v
	}
	t.Setenv("XDG_CONFIG_HOME", configHome)
	vars := map[string]string{
		"NETRC": filepath.Join(dir, "netrc-missing"),
	}
	for k, v := range env {
		vars[k] = v
	}
	var stdout, stderr bytes.Buffer
	ctx := &Context{
		Stdout: &stdout,
		Stderr: &stderr,
		Stdin:  strings.NewReader(""),
		Getenv: func(k string) string { return vars[k] },
		Now:    func() time.Time { return time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC) },
	}
	code := run(ctx, append([]string{"--disable_log"}, args...))
	return cliResult{code: code, stdout: stdout.String(), stderr: stderr.String()}
}

func credentialsEnv(ts *httptest.Server) map[string]string {
	return map[string]string{
		"ANNOFAB_USER_ID":      "alice",
		"ANNOFAB_PASSWORD":     "secret",
		"ANNOFAB_ENDPOINT_URL": ts.URL,
	}
}
