package api

import (
	"context"
	"encoding/json"
)

// User identifies the authenticated account.
type User struct {
	ID       json.Number `json:"id"`
	Username string      `json:"username"`
	Email    string      `json:"email"`
}

// CheckAuth asks the backend whether the current session is valid. The
// backend answers 200 either way; a nil error with ok=false means the
// session is simply not logged in.
func (c *Client) CheckAuth(ctx context.Context) (User, bool, error) {
	var resp struct {
		Authenticated bool `json:"authenticated"`
		User          User `json:"user"`
	}
	if err := c.getJSON(ctx, "check auth", "/auth/check-auth", &resp); err != nil {
		return User{}, false, err
	}
	return resp.User, resp.Authenticated, nil
}

// Login exchanges credentials for a session cookie.
func (c *Client) Login(ctx context.Context, username, password string) (User, error) {
	if username == "" || password == "" {
		return User{}, &ValidationError{Msg: "username and password are required"}
	}
	var resp struct {
		Message string `json:"message"`
		User    User   `json:"user"`
	}
	in := map[string]string{"username": username, "password": password}
	if err := c.postJSON(ctx, "login", "/auth/login", in, &resp); err != nil {
		return User{}, err
	}
	return resp.User, nil
}

// Register creates an account and returns the new user id. Registration does
// not log in; call Login afterwards.
func (c *Client) Register(ctx context.Context, username, email, password string) (string, error) {
	if username == "" || email == "" || password == "" {
		return "", &ValidationError{Msg: "username, email and password are required"}
	}
	var resp struct {
		Message string      `json:"message"`
		UserID  json.Number `json:"user_id"`
	}
	in := map[string]string{"username": username, "email": email, "password": password}
	if err := c.postJSON(ctx, "register", "/auth/register", in, &resp); err != nil {
		return "", err
	}
	return resp.UserID.String(), nil
}

// Logout invalidates the session on the backend.
func (c *Client) Logout(ctx context.Context) error {
	return c.postJSON(ctx, "logout", "/auth/logout", nil, nil)
}

// ForgotPassword starts a password reset. The backend returns a confirmation
// message and, for accounts that exist, the reset token ResetPassword needs.
func (c *Client) ForgotPassword(ctx context.Context, email string) (message, resetToken string, err error) {
	if email == "" {
		return "", "", &ValidationError{Msg: "email is required"}
	}
	var resp struct {
		Message    string `json:"message"`
		ResetToken string `json:"reset_token"`
	}
	in := map[string]string{"email": email}
	if err := c.postJSON(ctx, "forgot password", "/auth/forgot-password", in, &resp); err != nil {
		return "", "", err
	}
	return resp.Message, resp.ResetToken, nil
}

// ValidateResetToken checks a reset token without consuming it and returns
// the username it belongs to.
func (c *Client) ValidateResetToken(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", &ValidationError{Msg: "reset token is required"}
	}
	var resp struct {
		Valid    bool   `json:"valid"`
		Username string `json:"username"`
	}
	in := map[string]string{"token": token}
	if err := c.postJSON(ctx, "validate reset token", "/auth/validate-reset-token", in, &resp); err != nil {
		return "", err
	}
	return resp.Username, nil
}

// ResetPassword completes a reset started by ForgotPassword.
func (c *Client) ResetPassword(ctx context.Context, token, newPassword string) error {
	if token == "" {
		return &ValidationError{Msg: "reset token is required"}
	}
	if newPassword == "" {
		return &ValidationError{Msg: "new password is required"}
	}
	in := map[string]string{"token": token, "new_password": newPassword}
	return c.postJSON(ctx, "reset password", "/auth/reset-password", in, nil)
}
