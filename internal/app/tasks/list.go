package tasks

import (
	"net/url"
	"strconv"

	"github.com/agisilaos/annofab-cli/internal/api"
	"github.com/agisilaos/annofab-cli/internal/annotation"
)

// ListQuery turns a task query into the server-side filters of the task list
// endpoint.
func ListQuery(q *annotation.TaskQuery, accountID string) url.Values {
	v := url.Values{}
	if q != nil {
		if q.TaskID != "" {
			v.Set("task_id", q.TaskID)
		}
		if q.Status != "" {
			v.Set("status", q.Status)
		}
		if q.Phase != "" {
			v.Set("phase", q.Phase)
		}
		if q.PhaseStage != nil {
			v.Set("phase_stage", strconv.Itoa(*q.PhaseStage))
		}
	}
	if accountID != "" {
		v.Set("account_id", accountID)
	}
	return v
}

// FilterTasks keeps tasks whose id is in taskIDs (all when taskIDs is empty)
// and that match q, preserving order.
func FilterTasks(tasks []api.Task, taskIDs []string, q *annotation.TaskQuery) []api.Task {
	f := annotation.NewFilter(taskIDs, nil, q)
	out := []api.Task{}
	for _, t := range tasks {
		h := annotation.Header{
			TaskID:         t.TaskID,
			TaskStatus:     string(t.Status),
			TaskPhase:      string(t.Phase),
			TaskPhaseStage: t.PhaseStage,
		}
		if f.MatchHeader(h) {
			out = append(out, t)
		}
	}
	return out
}
