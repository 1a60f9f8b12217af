package api

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

// DownloadAnnotationArchive streams the simple annotation zip into w. The
// endpoint redirects to a signed storage URL which the HTTP client follows.
func (c *Client) DownloadAnnotationArchive(ctx context.Context, projectID string, w io.Writer) (int64, string, error) {
	resp, reqID, err := c.do(ctx, http.MethodGet, "/projects/"+url.PathEscape(projectID)+"/archive/simple", nil, nil)
	if err != nil {
		return 0, reqID, err
	}
	defer resp.Body.Close()
	n, err := io.Copy(w, resp.Body)
	if err != nil {
		return n, reqID, fmt.Errorf("download annotation archive: %w", err)
	}
	return n, reqID, nil
}
