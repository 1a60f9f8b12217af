package api

import (
	"context"
	"net/url"
	"strconv"
)

const pageLimit = 200

// listAll follows page/limit pagination until total_count items were read or
// an empty page comes back.
func listAll[T any](ctx context.Context, c *Client, path string, query url.Values) ([]T, error) {
	q := cloneQuery(query)
	q.Set("limit", strconv.Itoa(pageLimit))
	var items []T
	for page := 1; ; page++ {
		q.Set("page", strconv.Itoa(page))
		var out List[T]
		if _, err := c.Get(ctx, path, q, &out); err != nil {
			return nil, err
		}
		items = append(items, out.List...)
		if len(out.List) == 0 || len(items) >= out.TotalCount {
			break
		}
	}
	return items, nil
}

func cloneQuery(in url.Values) url.Values {
	if in == nil {
		return url.Values{}
	}
	out := make(url.Values, len(in))
	for k, vs := range in {
		cp := make([]string, len(vs))
		copy(cp, vs)
		out[k] = cp
	}
	return out
}
