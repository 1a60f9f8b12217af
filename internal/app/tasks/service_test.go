package tasks

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agisilaos/annofab-cli/internal/api"
	"github.com/agisilaos/annofab-cli/internal/confirm"
)

// fakeAPI keeps one project's tasks and comments in memory and records every
// mutating call.
type fakeAPI struct {
	tasks       map[string]api.Task
	inspections map[string][]api.Inspection // by input data id
	operations  []api.OperateTaskRequest
	batches     map[string][]api.BatchInspectionRequest
	batchErr    error
	clock       int
}

func newFakeAPI(tasks ...api.Task) *fakeAPI {
	f := &fakeAPI{
		tasks:       map[string]api.Task{},
		inspections: map[string][]api.Inspection{},
		batches:     map[string][]api.BatchInspectionRequest{},
	}
	for _, t := range tasks {
		f.tasks[t.TaskID] = t
	}
	return f
}

func (f *fakeAPI) GetTask(_ context.Context, _, taskID string) (api.Task, string, error) {
	t, ok := f.tasks[taskID]
	if !ok {
		return api.Task{}, "req", &api.APIError{Status: 404}
	}
	return t, "req", nil
}

func (f *fakeAPI) OperateTask(_ context.Context, _, taskID string, req api.OperateTaskRequest) (api.Task, string, error) {
	t := f.tasks[taskID]
	if req.LastUpdatedDatetime != t.UpdatedDatetime {
		return api.Task{}, "req", &api.APIError{Status: 409}
	}
	f.operations = append(f.operations, req)
	f.clock++
	t.Status = req.Status
	t.AccountID = req.AccountID
	t.UpdatedDatetime = fmt.Sprintf("2024-01-10T10:%02d:00.000+09:00", f.clock)
	f.tasks[taskID] = t
	return t, "req", nil
}

func (f *fakeAPI) GetInspections(_ context.Context, _, _, inputDataID string) ([]api.Inspection, string, error) {
	return f.inspections[inputDataID], "req", nil
}

func (f *fakeAPI) BatchUpdateInspections(_ context.Context, _, _, inputDataID string, reqs []api.BatchInspectionRequest) (string, error) {
	if f.batchErr != nil {
		return "req", f.batchErr
	}
	f.batches[inputDataID] = append(f.batches[inputDataID], reqs...)
	return "req", nil
}

func (f *fakeAPI) statuses() []api.TaskStatus {
	out := make([]api.TaskStatus, 0, len(f.operations))
	for _, op := range f.operations {
		out = append(out, op.Status)
	}
	return out
}

func annotationTask() api.Task {
	return api.Task{
		ProjectID:       "p1",
		TaskID:          "t1",
		Phase:           api.TaskPhaseAnnotation,
		PhaseStage:      1,
		Status:          api.TaskStatusNotStarted,
		AccountID:       "other",
		InputDataIDList: []string{"i1", "i2"},
		StartedDatetime: "2024-01-10T09:00:00.000+09:00",
		UpdatedDatetime: "2024-01-10T09:00:00.000+09:00",
	}
}

func unansweredRoot() api.Inspection {
	return api.Inspection{
		ProjectID:       "p1",
		TaskID:          "t1",
		InputDataID:     "i1",
		InspectionID:    "r1",
		Phase:           api.TaskPhaseInspection,
		PhaseStage:      1,
		Status:          api.InspectionStatusAnnotatorActionRequired,
		CreatedDatetime: "2024-01-09T12:00:00.000+09:00",
	}
}

func newTestCompleter(f *fakeAPI) *Completer {
	c := NewCompleter(f, "me", confirm.NewPolicy(true, nil, nil))
	c.Now = func() time.Time { return time.Date(2024, 1, 10, 1, 0, 0, 0, time.UTC) }
	return c
}

func TestCompleteAnnotationWithUnansweredCommentAndNoReplySkips(t *testing.T) {
	f := newFakeAPI(annotationTask())
	f.inspections["i1"] = []api.Inspection{unansweredRoot()}
	c := newTestCompleter(f)

	in := CompleteInput{ProjectID: "p1", TaskIDs: []string{"t1"}, Phase: api.TaskPhaseAnnotation}
	summary, err := c.Run(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, 0, summary.Succeeded)
	assert.Equal(t, 1, summary.Skipped)
	assert.Empty(t, f.operations)
	assert.Empty(t, f.batches)
	got := f.tasks["t1"]
	assert.Equal(t, api.TaskPhaseAnnotation, got.Phase)
	assert.Equal(t, api.TaskStatusNotStarted, got.Status)
}

func TestCompleteAnnotationWithReplyRepliesThenCompletesOnce(t *testing.T) {
	f := newFakeAPI(annotationTask())
	f.inspections["i1"] = []api.Inspection{unansweredRoot()}
	c := newTestCompleter(f)

	in := CompleteInput{ProjectID: "p1", TaskIDs: []string{"t1"}, Phase: api.TaskPhaseAnnotation, ReplyComment: "fixed"}
	summary, err := c.Run(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Succeeded)

	replies := f.batches["i1"]
	require.Len(t, replies, 1)
	assert.Equal(t, api.BatchTypePut, replies[0].Type)
	reply := replies[0].Inspection
	require.NotNil(t, reply)
	require.NotNil(t, reply.ParentInspectionID)
	assert.Equal(t, "r1", *reply.ParentInspectionID)
	assert.Equal(t, "fixed", reply.Comment)
	assert.Equal(t, api.TaskPhaseAnnotation, reply.Phase, "reply is written in the task's phase")
	assert.Equal(t, "me", reply.CommenterAccountID)
	assert.NotContains(t, f.batches, "i2", "input data without comments must not be updated")

	want := []api.TaskStatus{api.TaskStatusNotStarted, api.TaskStatusWorking, api.TaskStatusComplete}
	assert.Equal(t, want, f.statuses())
}

func TestCompleteWithoutCommentsSkipsReassignmentForOwnWorkingTask(t *testing.T) {
	task := annotationTask()
	task.Status = api.TaskStatusWorking
	task.AccountID = "me"
	f := newFakeAPI(task)
	c := newTestCompleter(f)

	done, err := c.CompleteTask(context.Background(), CompleteInput{ProjectID: "p1", Phase: api.TaskPhaseAnnotation}, "t1")
	require.NoError(t, err)
	assert.True(t, done)
	assert.Equal(t, []api.TaskStatus{api.TaskStatusComplete}, f.statuses())
}

func TestCompleteInspectionPhaseAppliesStatus(t *testing.T) {
	task := annotationTask()
	task.Phase = api.TaskPhaseInspection
	f := newFakeAPI(task)
	root := unansweredRoot()
	replied := root
	replied.InspectionID = "r2"
	otherStage := root
	otherStage.InspectionID = "r3"
	otherStage.PhaseStage = 2
	f.inspections["i2"] = []api.Inspection{root, replied, otherStage}
	c := newTestCompleter(f)

	in := CompleteInput{ProjectID: "p1", Phase: api.TaskPhaseInspection, InspectionStatus: api.InspectionStatusNoCorrectionRequired}
	done, err := c.CompleteTask(context.Background(), in, "t1")
	require.NoError(t, err)
	assert.True(t, done)
	reqs := f.batches["i2"]
	require.Len(t, reqs, 2)
	for _, r := range reqs {
		assert.Equal(t, api.InspectionStatusNoCorrectionRequired, r.Inspection.Status)
	}
}

func TestCompleteSkipsOutOfScopeTasks(t *testing.T) {
	complete := annotationTask()
	complete.TaskID = "done"
	complete.Status = api.TaskStatusComplete
	stage2 := annotationTask()
	stage2.TaskID = "stage2"
	stage2.PhaseStage = 2
	f := newFakeAPI(complete, stage2)
	c := newTestCompleter(f)

	stage := 1
	in := CompleteInput{ProjectID: "p1", TaskIDs: []string{"done", "stage2", "missing"}, Phase: api.TaskPhaseAnnotation, PhaseStage: &stage}
	summary, err := c.Run(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, 3, summary.Skipped)
	assert.Equal(t, 3, summary.Total)
	assert.Empty(t, f.operations)
}

func TestCompleteFailurePutsTaskOnBreak(t *testing.T) {
	f := newFakeAPI(annotationTask())
	f.inspections["i1"] = []api.Inspection{unansweredRoot()}
	f.batchErr = errors.New("boom")
	c := newTestCompleter(f)

	summary, err := c.Run(context.Background(), CompleteInput{ProjectID: "p1", TaskIDs: []string{"t1"}, Phase: api.TaskPhaseAnnotation, ReplyComment: "x"})
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Failed)
	assert.Equal(t, api.TaskStatusBreak, f.tasks["t1"].Status)
}

func TestCompleteWithoutInteractiveConfirmationAborts(t *testing.T) {
	f := newFakeAPI(annotationTask())
	c := newTestCompleter(f)
	c.Confirm = confirm.NewPolicy(false, nil, nil)

	_, err := c.Run(context.Background(), CompleteInput{ProjectID: "p1", TaskIDs: []string{"t1"}, Phase: api.TaskPhaseAnnotation})
	assert.ErrorIs(t, err, confirm.ErrNotInteractive)
}

func TestValidateCompleteInput(t *testing.T) {
	zero := 0
	cases := []struct {
		name    string
		in      CompleteInput
		wantErr bool
	}{
		{"annotation with reply", CompleteInput{Phase: api.TaskPhaseAnnotation, ReplyComment: "x"}, false},
		{"annotation with status", CompleteInput{Phase: api.TaskPhaseAnnotation, InspectionStatus: api.InspectionStatusErrorCorrected}, true},
		{"inspection with reply", CompleteInput{Phase: api.TaskPhaseInspection, ReplyComment: "x"}, true},
		{"acceptance with status", CompleteInput{Phase: api.TaskPhaseAcceptance, InspectionStatus: api.InspectionStatusNoCorrectionRequired}, false},
		{"bad status", CompleteInput{Phase: api.TaskPhaseAcceptance, InspectionStatus: "done"}, true},
		{"bad phase", CompleteInput{Phase: "review"}, true},
		{"bad stage", CompleteInput{Phase: api.TaskPhaseAnnotation, PhaseStage: &zero}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateCompleteInput(tc.in)
			if !tc.wantErr {
				assert.NoError(t, err)
				return
			}
			var ve *ValidationError
			assert.ErrorAs(t, err, &ve)
		})
	}
}

func TestCancelAcceptance(t *testing.T) {
	accepted := annotationTask()
	accepted.Phase = api.TaskPhaseAcceptance
	accepted.Status = api.TaskStatusComplete
	working := annotationTask()
	working.TaskID = "t2"
	f := newFakeAPI(accepted, working)
	c := AcceptanceCanceler{NewAPI: func() API { return f }, Confirm: confirm.NewPolicy(true, nil, nil)}

	summary := c.Run(context.Background(), CancelAcceptanceInput{ProjectID: "p1", TaskIDs: []string{"t1", "t2"}, AcceptorAccountID: "acc"})
	assert.Equal(t, 1, summary.Succeeded)
	assert.Equal(t, 1, summary.Skipped)
	require.Len(t, f.operations, 1)
	assert.Equal(t, api.TaskStatusNotStarted, f.operations[0].Status)
	assert.Equal(t, "acc", f.operations[0].AccountID)
}
