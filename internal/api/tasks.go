package api

import (
	"context"
	"net/url"
)

func taskPath(projectID, taskID string) string {
	return "/projects/" + url.PathEscape(projectID) + "/tasks/" + url.PathEscape(taskID)
}

func (c *Client) GetTask(ctx context.Context, projectID, taskID string) (Task, string, error) {
	var task Task
	reqID, err := c.Get(ctx, taskPath(projectID, taskID), nil, &task)
	if err != nil {
		return Task{}, reqID, err
	}
	return task, reqID, nil
}

// ListTasks returns every task of the project matching the server-side query
// (e.g. phase, status, account_id).
func (c *Client) ListTasks(ctx context.Context, projectID string, query url.Values) ([]Task, error) {
	return listAll[Task](ctx, c, "/projects/"+url.PathEscape(projectID)+"/tasks", query)
}

func (c *Client) OperateTask(ctx context.Context, projectID, taskID string, req OperateTaskRequest) (Task, string, error) {
	var task Task
	reqID, err := c.Post(ctx, taskPath(projectID, taskID)+"/operate", nil, req, &task)
	if err != nil {
		return Task{}, reqID, err
	}
	return task, reqID, nil
}
