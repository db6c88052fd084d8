package flyerapi

import "context"

// Login exchanges credentials for a bearer token. The token is the client's
// only persisted credential; callers are responsible for storing it.
func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	if username == "" || password == "" {
		return "", &ValidationError{Msg: "username and password are required"}
	}

	resp, err := c.post(ctx, "/auth/login", map[string]string{
		"username": username,
		"password": password,
	})
	if err != nil {
		return "", err
	}

	var result struct {
		Token string `json:"token"`
	}
	if err := decodeJSON(resp, &result); err != nil {
		return "", err
	}
	if result.Token == "" {
		return "", &APIError{Status: 200, Message: "login response contained no token"}
	}
	return result.Token, nil
}
