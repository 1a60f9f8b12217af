package api

import (
	"context"
	"net/url"
)

func (c *Client) GetMyAccount(ctx context.Context) (MyAccount, string, error) {
	var out MyAccount
	reqID, err := c.Get(ctx, "/my/account", nil, &out)
	if err != nil {
		return MyAccount{}, reqID, err
	}
	return out, reqID, nil
}

// GetMyMember returns the caller's membership in the project; ErrNotFound when
// the caller is not a member.
func (c *Client) GetMyMember(ctx context.Context, projectID string) (ProjectMember, string, error) {
	var out ProjectMember
	reqID, err := c.Get(ctx, "/my/projects/"+url.PathEscape(projectID)+"/member", nil, &out)
	if err != nil {
		return ProjectMember{}, reqID, err
	}
	return out, reqID, nil
}

// GetProjectMember looks a member up by user id; ErrNotFound when absent.
func (c *Client) GetProjectMember(ctx context.Context, projectID, userID string) (ProjectMember, string, error) {
	var out ProjectMember
	path := "/projects/" + url.PathEscape(projectID) + "/members/" + url.PathEscape(userID)
	reqID, err := c.Get(ctx, path, nil, &out)
	if err != nil {
		return ProjectMember{}, reqID, err
	}
	return out, reqID, nil
}
