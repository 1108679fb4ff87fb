package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/MrEthical07/goGate/transport"
)

var (
	// ErrInvalidCredentials is returned when sign-in is refused for any reason.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrIncorrectPassword is returned when a password change names the wrong
	// current password.
	ErrIncorrectPassword = errors.New("incorrect current password")
	// ErrMalformedResponse is returned for a 2xx body that cannot be used.
	ErrMalformedResponse = errors.New("malformed backend response")
)

const (
	loginPath          = "/userservice/auth/login"
	logoutPath         = "/userservice/auth/logout"
	changePasswordPath = "/userservice/user/change-password"
	profilePath        = "/userservice/user/profile"

	maxErrorBody = 4 << 10
	maxBody      = 1 << 20
)

// StatusError is a non-2xx answer.
type StatusError struct {
	Op      string
	Status  int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("backend %s: status %d", e.Op, e.Status)
	}
	return fmt.Sprintf("backend %s: status %d: %s", e.Op, e.Status, e.Message)
}

// Client talks to the user service rooted at a base URL.
type Client struct {
	base *url.URL
	http *http.Client
}

// New creates a Client. A nil hc uses http.DefaultClient.
func New(baseURL string, hc *http.Client) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("backend: parse base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("backend: base url %q must be http or https", baseURL)
	}
	if hc == nil {
		hc = http.DefaultClient
	}
	return &Client{base: u, http: hc}, nil
}

// Host is the host the client sends to, with port when present.
func (c *Client) Host() string {
	return c.base.Host
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
}

// Login exchanges email and password for a credential. The request never carries
// an existing credential. Any non-2xx answer is ErrInvalidCredentials.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	var out loginResponse
	err := c.do(transport.Anonymous(ctx), "login", http.MethodPost, loginPath, loginRequest{Email: email, Password: password}, &out)
	var se *StatusError
	if errors.As(err, &se) {
		return "", fmt.Errorf("%w: %v", ErrInvalidCredentials, se)
	}
	if err != nil {
		return "", err
	}
	if out.Token == "" {
		return "", fmt.Errorf("%w: login answer has no token", ErrMalformedResponse)
	}
	return out.Token, nil
}

// Logout asks the backend to revoke the attached credential.
func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, "logout", http.MethodPost, logoutPath, nil, nil)
}

type changePasswordRequest struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

// ChangePassword replaces the current password. 400 means the old password was
// wrong.
func (c *Client) ChangePassword(ctx context.Context, oldPassword, newPassword string) error {
	err := c.do(ctx, "change-password", http.MethodPut, changePasswordPath,
		changePasswordRequest{OldPassword: oldPassword, NewPassword: newPassword}, nil)
	var se *StatusError
	if errors.As(err, &se) && se.Status == http.StatusBadRequest {
		return fmt.Errorf("%w: %v", ErrIncorrectPassword, se)
	}
	return err
}

// Profile reads the signed-in user's profile.
func (c *Client) Profile(ctx context.Context) (Profile, error) {
	var p Profile
	if err := c.do(ctx, "profile", http.MethodGet, profilePath, nil, &p); err != nil {
		return Profile{}, err
	}
	return p, nil
}

func (c *Client) do(ctx context.Context, op, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("backend %s: encode: %w", op, err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base.String()+path, body)
	if err != nil {
		return fmt.Errorf("backend %s: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("backend %s: %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &StatusError{Op: op, Status: resp.StatusCode, Message: errorMessage(raw)}
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBody))
		return nil
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBody)).Decode(out); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrMalformedResponse, op, err)
	}
	return nil
}

// errorMessage pulls {"message": ...} out of an error body, falling back to the
// trimmed text.
func errorMessage(raw []byte) string {
	var m struct {
		Message string `json:"message"`
	}
	if json.Unmarshal(raw, &m) == nil && m.Message != "" {
		return m.Message
	}
	return strings.TrimSpace(string(raw))
}
