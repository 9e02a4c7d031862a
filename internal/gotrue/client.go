// Package gotrue is a minimal HTTP client for a GoTrue-style authentication
// backend (the API surface exposed by Supabase auth). It implements
// session.Provider; only the operations the storefront needs are covered.
package gotrue

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"

	"github.com/mikawa/storefront/internal/session"
)

// Config holds the provider endpoint and the redirect targets embedded in
// the emails it sends.
type Config struct {
	// BaseURL is the auth endpoint root, e.g. "https://x.supabase.co/auth/v1".
	BaseURL string
	// AnonKey is the public API key sent with every request.
	AnonKey string
	// SignUpRedirectURL is where the confirmation email lands the user.
	SignUpRedirectURL string
	// ResetRedirectURL is where the password-reset email lands the user.
	ResetRedirectURL string
}

// Client holds the access token of the active session and notifies
// registered listeners of session changes.
type Client struct {
	cfg    Config
	client *http.Client

	mu          sync.Mutex
	accessToken string
	listeners   []func(event string, user *session.User)
}

var _ session.Provider = (*Client)(nil)

// NewClient creates a Client with no active session.
func NewClient(cfg Config, client *http.Client) *Client {
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &Client{cfg: cfg, client: client}
}

// OnStateChange registers fn for session change notifications.
func (c *Client) OnStateChange(fn func(event string, user *session.User)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, fn)
}

func (c *Client) notify(event string, user *session.User) {
	c.mu.Lock()
	listeners := append([]func(event string, user *session.User){}, c.listeners...)
	c.mu.Unlock()
	for _, fn := range listeners {
		fn(event, user)
	}
}

func (c *Client) token() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.accessToken
}

func (c *Client) setToken(tok string) {
	c.mu.Lock()
	c.accessToken = tok
	c.mu.Unlock()
}

// userJSON mirrors the provider's user representation: the username lives in
// the user metadata.
type userJSON struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Metadata struct {
		Username string `json:"username"`
	} `json:"user_metadata"`
}

func (u *userJSON) toUser() *session.User {
	if u == nil || u.ID == "" {
		return nil
	}
	return &session.User{ID: u.ID, Email: u.Email, UserName: u.Metadata.Username}
}

// SignUp registers a new user; the username is stored as user metadata and
// the confirmation email redirects to the configured URL.
func (c *Client) SignUp(ctx context.Context, req session.SignUpRequest) (*session.User, error) {
	var e jx.Encoder
	e.ObjStart()
	e.FieldStart("email")
	e.Str(req.Email)
	e.FieldStart("password")
	e.Str(req.Password)
	e.FieldStart("data")
	e.ObjStart()
	e.FieldStart("username")
	e.Str(req.UserName)
	e.ObjEnd()
	e.ObjEnd()

	endpoint := c.cfg.BaseURL + "/signup"
	if c.cfg.SignUpRedirectURL != "" {
		endpoint += "?redirect_to=" + url.QueryEscape(c.cfg.SignUpRedirectURL)
	}

	var resp userJSON
	if err := c.do(ctx, http.MethodPost, endpoint, e.Bytes(), &resp); err != nil {
		return nil, err
	}
	user := resp.toUser()
	if user == nil {
		return nil, errors.New("provider returned no user")
	}
	return user, nil
}

// SignIn exchanges credentials for a session and announces SIGNED_IN.
func (c *Client) SignIn(ctx context.Context, email, password string) (*session.User, error) {
	var e jx.Encoder
	e.ObjStart()
	e.FieldStart("email")
	e.Str(email)
	e.FieldStart("password")
	e.Str(password)
	e.ObjEnd()

	var resp struct {
		AccessToken string   `json:"access_token"`
		User        userJSON `json:"user"`
	}
	endpoint := c.cfg.BaseURL + "/token?grant_type=password"
	if err := c.do(ctx, http.MethodPost, endpoint, e.Bytes(), &resp); err != nil {
		return nil, err
	}

	user := resp.User.toUser()
	if user == nil {
		return nil, errors.New("provider returned no user")
	}
	c.setToken(resp.AccessToken)
	c.notify(session.EventSignedIn, user)
	return user, nil
}

// SignOut revokes the session and announces SIGNED_OUT. The local token is
// dropped even if the revocation call fails.
func (c *Client) SignOut(ctx context.Context) error {
	err := c.do(ctx, http.MethodPost, c.cfg.BaseURL+"/logout", nil, nil)
	c.setToken("")
	c.notify(session.EventSignedOut, nil)
	return err
}

// SendResetLink asks the provider to send a password recovery email.
func (c *Client) SendResetLink(ctx context.Context, email string) error {
	var e jx.Encoder
	e.ObjStart()
	e.FieldStart("email")
	e.Str(email)
	e.ObjEnd()

	endpoint := c.cfg.BaseURL + "/recover"
	if c.cfg.ResetRedirectURL != "" {
		endpoint += "?redirect_to=" + url.QueryEscape(c.cfg.ResetRedirectURL)
	}
	return c.do(ctx, http.MethodPost, endpoint, e.Bytes(), nil)
}

// UpdatePassword sets a new password for the active session's user and
// announces USER_UPDATED.
func (c *Client) UpdatePassword(ctx context.Context, newPassword string) (*session.User, error) {
	var e jx.Encoder
	e.ObjStart()
	e.FieldStart("password")
	e.Str(newPassword)
	e.ObjEnd()

	var resp userJSON
	if err := c.do(ctx, http.MethodPut, c.cfg.BaseURL+"/user", e.Bytes(), &resp); err != nil {
		return nil, err
	}
	user := resp.toUser()
	if user == nil {
		return nil, errors.New("provider returned no user")
	}
	c.notify(session.EventUserUpdated, user)
	return user, nil
}

// CurrentUser fetches the user for the active session. Without a token there
// is no session and no round trip is made.
func (c *Client) CurrentUser(ctx context.Context) (*session.User, error) {
	if c.token() == "" {
		return nil, nil
	}

	var resp userJSON
	if err := c.do(ctx, http.MethodGet, c.cfg.BaseURL+"/user", nil, &resp); err != nil {
		var perr *Error
		if errors.As(err, &perr) && perr.Code == http.StatusUnauthorized {
			// Session expired server-side; drop the stale token.
			c.setToken("")
			return nil, nil
		}
		return nil, err
	}
	return resp.toUser(), nil
}

// Error is a provider error with its message preserved verbatim so it can be
// surfaced to the user as-is.
type Error struct {
	Code    int
	Message string
}

func (e *Error) Error() string { return e.Message }

func (c *Client) do(ctx context.Context, method, endpoint string, body []byte, out any) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return errors.Wrap(err, "build request")
	}
	req.Header.Set("apikey", c.cfg.AnonKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if tok := c.token(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrap(err, "decode response")
	}
	return nil
}

// decodeError maps the provider's error body ({"error_description"} or
// {"msg"}) to an Error, falling back to the HTTP status text.
func decodeError(resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	var payload struct {
		ErrorDescription string `json:"error_description"`
		Msg              string `json:"msg"`
	}
	msg := ""
	if err := json.Unmarshal(data, &payload); err == nil {
		if payload.ErrorDescription != "" {
			msg = payload.ErrorDescription
		} else {
			msg = payload.Msg
		}
	}
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}
	return &Error{Code: resp.StatusCode, Message: msg}
}
