package api

import (
	"context"
	"net/http"

	"barpos/internal/model"
)

// Login exchanges credentials for a user record and a bearer token.
// No Authorization header is attached since the session does not exist yet.
func (c *Client) Login(ctx context.Context, req model.LoginRequest) (*model.LoginResponse, error) {
	var resp model.LoginResponse
	if err := c.do(ctx, http.MethodPost, "/login", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
