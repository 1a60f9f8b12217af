package annotation

// TaskQuery matches the task fields embedded in a simple annotation. Unset
// fields match everything.
type TaskQuery struct {
	TaskID     string `json:"task_id,omitempty"`
	Status     string `json:"status,omitempty"`
	Phase      string `json:"phase,omitempty"`
	PhaseStage *int   `json:"phase_stage,omitempty"`
}

func (q TaskQuery) Match(h Header) bool {
	if q.TaskID != "" && q.TaskID != h.TaskID {
		return false
	}
	if q.Status != "" && q.Status != h.TaskStatus {
		return false
	}
	if q.Phase != "" && q.Phase != h.TaskPhase {
		return false
	}
	if q.PhaseStage != nil && *q.PhaseStage != h.TaskPhaseStage {
		return false
	}
	return true
}

// Filter narrows which input data and details are read.
type Filter struct {
	taskIDs    map[string]struct{}
	labelNames map[string]struct{}
	query      *TaskQuery
}

func NewFilter(taskIDs, labelNames []string, query *TaskQuery) Filter {
	return Filter{
		taskIDs:    toSet(taskIDs),
		labelNames: toSet(labelNames),
		query:      query,
	}
}

func toSet(values []string) map[string]struct{} {
	if len(values) == 0 {
		return nil
	}
	out := make(map[string]struct{}, len(values))
	for _, v := range values {
		out[v] = struct{}{}
	}
	return out
}

func (f Filter) MatchTaskID(taskID string) bool {
	if f.taskIDs == nil {
		return true
	}
	_, ok := f.taskIDs[taskID]
	return ok
}

func (f Filter) MatchHeader(h Header) bool {
	if !f.MatchTaskID(h.TaskID) {
		return false
	}
	return f.query == nil || f.query.Match(h)
}

func (f Filter) MatchLabel(label string) bool {
	if f.labelNames == nil {
		return true
	}
	_, ok := f.labelNames[label]
	return ok
}
