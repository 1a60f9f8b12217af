package api

import (
	"context"
	"net/url"
	"strconv"
)

func (c *Client) ListJobs(ctx context.Context, projectID, jobType string, limit int) ([]Job, string, error) {
	query := url.Values{}
	if jobType != "" {
		query.Set("type", jobType)
	}
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}
	var out List[Job]
	reqID, err := c.Get(ctx, "/projects/"+url.PathEscape(projectID)+"/jobs", query, &out)
	if err != nil {
		return nil, reqID, err
	}
	return out.List, reqID, nil
}

// UpdateAnnotationArchive asks the server to regenerate the simple annotation
// archive. The returned job is of type gen-annotation.
func (c *Client) UpdateAnnotationArchive(ctx context.Context, projectID string) (Job, string, error) {
	var out struct {
		Job Job `json:"job"`
	}
	reqID, err := c.Post(ctx, "/projects/"+url.PathEscape(projectID)+"/annotation-archive/update", nil, nil, &out)
	if err != nil {
		return Job{}, reqID, err
	}
	return out.Job, reqID, nil
}
