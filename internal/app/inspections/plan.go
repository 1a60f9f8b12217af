package inspections

import (
	"encoding/json"
	"fmt"

	"github.com/agisilaos/annofab-cli/internal/jsonobject"
)

// InputDataPlan is the work for one input data of a task.
type InputDataPlan[T any] struct {
	InputDataID string
	Items       []T
}

// TaskPlan groups the work of one task. Tasks and input data keep the order
// they were written in.
type TaskPlan[T any] struct {
	TaskID    string
	InputData []InputDataPlan[T]
}

type (
	PutPlan    = []TaskPlan[CommentSpec]
	DeletePlan = []TaskPlan[string]
)

// ParsePutPlan decodes {task_id: {input_data_id: [comment, ...]}}.
func ParsePutPlan(raw json.RawMessage) (PutPlan, error) {
	plan, err := parsePlan[CommentSpec](raw)
	if err != nil {
		return nil, err
	}
	for _, tp := range plan {
		for _, ip := range tp.InputData {
			for _, c := range ip.Items {
				if c.Comment == "" {
					return nil, fmt.Errorf("task %s input data %s: comment is required", tp.TaskID, ip.InputDataID)
				}
				if len(c.Data) == 0 {
					return nil, fmt.Errorf("task %s input data %s: data is required", tp.TaskID, ip.InputDataID)
				}
			}
		}
	}
	return plan, nil
}

// ParseDeletePlan decodes {task_id: {input_data_id: [inspection_id, ...]}}.
func ParseDeletePlan(raw json.RawMessage) (DeletePlan, error) {
	return parsePlan[string](raw)
}

func parsePlan[T any](raw json.RawMessage) ([]TaskPlan[T], error) {
	tasks, err := jsonobject.Decode[json.RawMessage](raw)
	if err != nil {
		return nil, fmt.Errorf("invalid json: %w", err)
	}
	out := make([]TaskPlan[T], 0, len(tasks))
	for _, task := range tasks {
		inputs, err := jsonobject.Decode[[]T](task.Value)
		if err != nil {
			return nil, fmt.Errorf("invalid json: task %s: %w", task.Key, err)
		}
		tp := TaskPlan[T]{TaskID: task.Key}
		for _, in := range inputs {
			tp.InputData = append(tp.InputData, InputDataPlan[T]{InputDataID: in.Key, Items: in.Value})
		}
		out = append(out, tp)
	}
	return out, nil
}
