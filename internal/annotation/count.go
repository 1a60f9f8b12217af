package annotation

type GroupBy string

const (
	GroupByInputData GroupBy = "input_data_id"
	GroupByTask      GroupBy = "task_id"
)

// LabelCountRecord counts details per label for one input data or one task.
// InputDataID and InputDataName are empty when grouped by task.
type LabelCountRecord struct {
	ProjectID       string         `json:"project_id"`
	TaskID          string         `json:"task_id"`
	TaskStatus      string         `json:"task_status"`
	TaskPhase       string         `json:"task_phase"`
	TaskPhaseStage  int            `json:"task_phase_stage"`
	InputDataID     string         `json:"input_data_id,omitempty"`
	InputDataName   string         `json:"input_data_name,omitempty"`
	AnnotationCount int            `json:"annotation_count"`
	Labels          map[string]int `json:"labels"`
}

func LabelCountColumns(groupBy GroupBy) []string {
	cols := []string{"project_id", "task_id", "task_status", "task_phase", "task_phase_stage"}
	if groupBy != GroupByTask {
		cols = append(cols, "input_data_id", "input_data_name")
	}
	return append(cols, "annotation_count")
}

func countLabels(a SimpleAnnotation, f Filter) LabelCountRecord {
	r := LabelCountRecord{
		ProjectID:      a.ProjectID,
		TaskID:         a.TaskID,
		TaskStatus:     a.TaskStatus,
		TaskPhase:      a.TaskPhase,
		TaskPhaseStage: a.TaskPhaseStage,
		InputDataID:    a.InputDataID,
		InputDataName:  a.InputDataName,
		Labels:         map[string]int{},
	}
	for _, d := range a.Details {
		if !f.MatchLabel(d.Label) {
			continue
		}
		r.Labels[d.Label]++
		r.AnnotationCount++
	}
	return r
}

// CountLabels reads annotationPath and counts details per label, one record
// per input data or, with GroupByTask, one per task in first-seen order.
func CountLabels(annotationPath string, f Filter, groupBy GroupBy) ([]LabelCountRecord, error) {
	out := []LabelCountRecord{}
	byTask := map[string]int{}
	err := Walk(annotationPath, f, func(a SimpleAnnotation) error {
		r := countLabels(a, f)
		if groupBy != GroupByTask {
			out = append(out, r)
			return nil
		}
		r.InputDataID, r.InputDataName = "", ""
		i, ok := byTask[r.TaskID]
		if !ok {
			byTask[r.TaskID] = len(out)
			out = append(out, r)
			return nil
		}
		out[i].AnnotationCount += r.AnnotationCount
		for label, n := range r.Labels {
			out[i].Labels[label] += n
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
