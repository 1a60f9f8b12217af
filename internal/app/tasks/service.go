// Package tasks drives task status transitions: completing tasks after their
// inspection comments are dealt with, and cancelling acceptance.
package tasks

import (
	"context"

	"github.com/agisilaos/annofab-cli/internal/api"
)

// API is the part of the AnnoFab client the task operations need.
type API interface {
	GetTask(ctx context.Context, projectID, taskID string) (api.Task, string, error)
	OperateTask(ctx context.Context, projectID, taskID string, req api.OperateTaskRequest) (api.Task, string, error)
	GetInspections(ctx context.Context, projectID, taskID, inputDataID string) ([]api.Inspection, string, error)
	BatchUpdateInspections(ctx context.Context, projectID, taskID, inputDataID string, reqs []api.BatchInspectionRequest) (string, error)
}

// Operator changes task status on behalf of one account. Every call passes
// the task's updated_datetime as the precondition and returns the task the
// server sent back.
type Operator struct {
	API       API
	AccountID string
}

func (o Operator) operate(ctx context.Context, task api.Task, status api.TaskStatus, accountID string) (api.Task, error) {
	updated, _, err := o.API.OperateTask(ctx, task.ProjectID, task.TaskID, api.OperateTaskRequest{
		Status:              status,
		AccountID:           accountID,
		LastUpdatedDatetime: task.UpdatedDatetime,
	})
	if err != nil {
		return task, err
	}
	return updated, nil
}

// ChangeToWorking makes task working under the operator's account. A task
// held by someone else is first reassigned to the operator.
func (o Operator) ChangeToWorking(ctx context.Context, task api.Task) (api.Task, error) {
	if task.Status == api.TaskStatusWorking && task.AccountID == o.AccountID {
		return task, nil
	}
	var err error
	if task.AccountID != o.AccountID {
		task, err = o.operate(ctx, task, api.TaskStatusNotStarted, o.AccountID)
		if err != nil {
			return task, err
		}
	}
	return o.operate(ctx, task, api.TaskStatusWorking, o.AccountID)
}

func (o Operator) ChangeToBreak(ctx context.Context, task api.Task) (api.Task, error) {
	return o.operate(ctx, task, api.TaskStatusBreak, o.AccountID)
}

func (o Operator) Complete(ctx context.Context, task api.Task) (api.Task, error) {
	return o.operate(ctx, task, api.TaskStatusComplete, o.AccountID)
}

// BreakIfWorking re-reads the task and moves it to break when it is still
// working under the operator. Errors are returned for logging only.
func (o Operator) BreakIfWorking(ctx context.Context, projectID, taskID string) error {
	task, _, err := o.API.GetTask(ctx, projectID, taskID)
	if err != nil {
		return err
	}
	if task.Status != api.TaskStatusWorking || task.AccountID != o.AccountID {
		return nil
	}
	_, err = o.ChangeToBreak(ctx, task)
	return err
}
