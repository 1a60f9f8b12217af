package api

import (
	"context"
	"net/url"
)

func inputDataPath(projectID, inputDataID string) string {
	return "/projects/" + url.PathEscape(projectID) + "/inputs/" + url.PathEscape(inputDataID)
}

func (c *Client) GetInputData(ctx context.Context, projectID, inputDataID string) (InputData, string, error) {
	var out InputData
	reqID, err := c.Get(ctx, inputDataPath(projectID, inputDataID), nil, &out)
	if err != nil {
		return InputData{}, reqID, err
	}
	return out, reqID, nil
}

func (c *Client) ListInputData(ctx context.Context, projectID string, query url.Values) ([]InputData, error) {
	return listAll[InputData](ctx, c, "/projects/"+url.PathEscape(projectID)+"/inputs", query)
}

// PutInputData creates or replaces an input data record. Replacing requires
// body["last_updated_datetime"].
func (c *Client) PutInputData(ctx context.Context, projectID, inputDataID string, body map[string]any) (InputData, string, error) {
	var out InputData
	reqID, err := c.Put(ctx, inputDataPath(projectID, inputDataID), nil, body, &out)
	if err != nil {
		return InputData{}, reqID, err
	}
	return out, reqID, nil
}
