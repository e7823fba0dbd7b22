package garage

import (
	"context"
	"net/http"
	"net/url"
)

// UserLogin is the backend's login view of a user. Password holds the
// bcrypt hash; it never leaves this process.
type UserLogin struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type RegisterUser struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Email    string `json:"email"`
}

// UserForLogin fetches the stored credentials for a username. Runs before a
// session exists, so no bearer credential is attached.
func (c *Client) UserForLogin(ctx context.Context, username string) (UserLogin, error) {
	q := url.Values{"username": {username}}
	var u UserLogin
	if _, err := c.doJSON(ctx, "", http.MethodGet, withQuery(c.Endpoints.UserAPIEndpoint, q), nil, &u); err != nil {
		return UserLogin{}, err
	}
	return u, nil
}

func (c *Client) IsRegistered(ctx context.Context, username string) (bool, error) {
	q := url.Values{"username": {username}}
	var registered bool
	if _, err := c.doJSON(ctx, "", http.MethodGet, withQuery(c.Endpoints.UserAPIEndpoint+"/is-registered", q), nil, &registered); err != nil {
		return false, err
	}
	return registered, nil
}

func (c *Client) Register(ctx context.Context, user RegisterUser) error {
	_, err := c.doJSON(ctx, "", http.MethodPost, c.Endpoints.UserAPIEndpoint, user, nil)
	return err
}
