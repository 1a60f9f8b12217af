package api

import (
	"context"
	"net/url"
)

func inspectionsPath(projectID, taskID, inputDataID string) string {
	return taskPath(projectID, taskID) + "/inputs/" + url.PathEscape(inputDataID) + "/inspections"
}

func (c *Client) GetInspections(ctx context.Context, projectID, taskID, inputDataID string) ([]Inspection, string, error) {
	var out []Inspection
	reqID, err := c.Get(ctx, inspectionsPath(projectID, taskID, inputDataID), nil, &out)
	if err != nil {
		return nil, reqID, err
	}
	return out, reqID, nil
}

// BatchUpdateInspections applies Put/Delete requests to the comments of one input data.
func (c *Client) BatchUpdateInspections(ctx context.Context, projectID, taskID, inputDataID string, reqs []BatchInspectionRequest) (string, error) {
	var out []Inspection
	return c.Patch(ctx, inspectionsPath(projectID, taskID, inputDataID), nil, reqs, &out)
}
