package inspections

import (
	"encoding/json"
	"time"

	"github.com/agisilaos/annofab-cli/internal/api"
	"github.com/google/uuid"
)

const datetimeLayout = "2006-01-02T15:04:05.000Z07:00"

func FormatDatetime(t time.Time) string {
	return t.Format(datetimeLayout)
}

// NewReply builds a reply to root written by accountID in the task's current
// phase. It points at the same annotation and region as root.
func NewReply(root api.Inspection, task api.Task, accountID, comment string, now time.Time) api.Inspection {
	parent := root.InspectionID
	return api.Inspection{
		ProjectID:          task.ProjectID,
		TaskID:             task.TaskID,
		InputDataID:        root.InputDataID,
		InspectionID:       uuid.NewString(),
		Phase:              task.Phase,
		PhaseStage:         task.PhaseStage,
		CommenterAccountID: accountID,
		AnnotationID:       root.AnnotationID,
		Label:              root.Label,
		Data:               root.Data,
		ParentInspectionID: &parent,
		Phrases:            []string{},
		Comment:            comment,
		Status:             root.Status,
		CreatedDatetime:    FormatDatetime(now),
		UpdatedDatetime:    FormatDatetime(now),
	}
}

// CommentSpec is one new root comment as given to inspection_comment put.
type CommentSpec struct {
	Comment      string          `json:"comment"`
	Data         json.RawMessage `json:"data"`
	AnnotationID *string         `json:"annotation_id,omitempty"`
	Phrases      []string        `json:"phrases,omitempty"`
}

func NewRoot(spec CommentSpec, task api.Task, inputDataID, accountID string, now time.Time) api.Inspection {
	phrases := spec.Phrases
	if phrases == nil {
		phrases = []string{}
	}
	return api.Inspection{
		ProjectID:          task.ProjectID,
		TaskID:             task.TaskID,
		InputDataID:        inputDataID,
		InspectionID:       uuid.NewString(),
		Phase:              task.Phase,
		PhaseStage:         task.PhaseStage,
		CommenterAccountID: accountID,
		AnnotationID:       spec.AnnotationID,
		Data:               spec.Data,
		Phrases:            phrases,
		Comment:            spec.Comment,
		Status:             api.InspectionStatusAnnotatorActionRequired,
		CreatedDatetime:    FormatDatetime(now),
		UpdatedDatetime:    FormatDatetime(now),
	}
}

// WithStatus returns copies of comments carrying status.
func WithStatus(comments []api.Inspection, status api.InspectionStatus) []api.Inspection {
	out := make([]api.Inspection, len(comments))
	for i, c := range comments {
		c.Status = status
		out[i] = c
	}
	return out
}

func PutRequests(comments []api.Inspection) []api.BatchInspectionRequest {
	out := make([]api.BatchInspectionRequest, 0, len(comments))
	for i := range comments {
		c := comments[i]
		out = append(out, api.BatchInspectionRequest{
			ProjectID:    c.ProjectID,
			TaskID:       c.TaskID,
			InputDataID:  c.InputDataID,
			InspectionID: c.InspectionID,
			Type:         api.BatchTypePut,
			Inspection:   &c,
		})
	}
	return out
}

func DeleteRequests(projectID, taskID, inputDataID string, inspectionIDs []string) []api.BatchInspectionRequest {
	out := make([]api.BatchInspectionRequest, 0, len(inspectionIDs))
	for _, id := range inspectionIDs {
		out = append(out, api.BatchInspectionRequest{
			ProjectID:    projectID,
			TaskID:       taskID,
			InputDataID:  inputDataID,
			InspectionID: id,
			Type:         api.BatchTypeDelete,
		})
	}
	return out
}
