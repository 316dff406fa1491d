// Package koola wraps the koola CMS admin API. Client is the single place
// authenticated requests go through: it attaches the bearer token, recovers
// from token expiry with one refresh-and-retry cycle, and normalizes the
// API's error envelope into typed errors.
package koola

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/PhucVu3008/koola-admin/internal/store"
)

const ApiBaseUrl = "https://api.koola.vn"

// SessionRefresher is the slice of the session manager the executor needs:
// obtaining a fresh access token after a 401, and tearing the session down
// when recovery fails.
type SessionRefresher interface {
	Refresh(ctx context.Context) (string, error)
	Logout(ctx context.Context) error
}

// File is one part of a multipart upload.
type File struct {
	// Param is the form field name, Name the filename sent to the server.
	Param string
	Name  string
	Data  []byte
}

// Request describes one API call. Result, when non-nil, receives the decoded
// 2xx response body.
type Request struct {
	Method string
	Path   string
	Query  map[string]string
	Body   any
	Result any

	// Files switches the request to multipart. Form carries additional
	// plain fields alongside the files.
	Files []File
	Form  map[string]string
}

type ClientOpts struct {
	BaseURL string
	Store   store.TokenStore
	Session SessionRefresher

	// OnSessionExpired is invoked after the session has been cleared so the
	// caller can navigate to the login surface. Optional.
	OnSessionExpired func()
}

// Client executes authenticated requests against the admin API.
type Client struct {
	httpClient       *resty.Client
	storeBackend     store.TokenStore
	session          SessionRefresher
	onSessionExpired func()
}

func NewClient(opts ClientOpts) *Client {
	c := &Client{
		storeBackend:     opts.Store,
		session:          opts.Session,
		onSessionExpired: opts.OnSessionExpired,
	}

	baseURL := ApiBaseUrl
	if opts.BaseURL != "" {
		baseURL = opts.BaseURL
	}

	c.httpClient = resty.New().
		SetBaseURL(baseURL).
		SetHeaders(map[string]string{
			"Accept":     "application/json",
			"User-Agent": "koola-admin/1.0",
		})

	return c
}

// Do executes the request with the current access token. On a 401 it asks the
// session manager for a refreshed token and retries the identical request
// exactly once; if the refresh or the retry fails the session is torn down
// and ErrSessionExpired is returned. Any other non-2xx becomes an *APIError
// without touching the session.
func (c *Client) Do(ctx context.Context, req Request) error {
	session, err := c.storeBackend.Get()
	if err != nil {
		return fmt.Errorf("failed to read token store: %w", err)
	}
	if session == nil {
		return ErrNotAuthenticated
	}

	res, err := c.attempt(ctx, req, session.AccessToken)
	if err != nil {
		return fmt.Errorf("request failed: %s %s: %w", req.Method, req.Path, err)
	}

	if res.StatusCode() != http.StatusUnauthorized {
		return c.finish(res)
	}

	log.Debug().Str("path", req.Path).Msg("access token rejected, refreshing session")

	token, err := c.session.Refresh(ctx)
	if err != nil {
		c.expireSession(ctx)
		return fmt.Errorf("%w: refresh failed: %v", ErrSessionExpired, err)
	}

	// Strictly ordered after refresh completion. One retry, never a loop.
	res, err = c.attempt(ctx, req, token)
	if err != nil {
		c.expireSession(ctx)
		return fmt.Errorf("%w: retry failed: %v", ErrSessionExpired, err)
	}
	if res.IsError() {
		c.expireSession(ctx)
		return fmt.Errorf("%w: retry failed with status %d", ErrSessionExpired, res.StatusCode())
	}

	return nil
}

func (c *Client) attempt(ctx context.Context, req Request, token string) (*resty.Response, error) {
	r := c.httpClient.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetHeader("X-Request-Id", uuid.NewString()).
		SetError(&ErrorEnvelope{})

	if len(req.Query) > 0 {
		r.SetQueryParams(req.Query)
	}
	if req.Result != nil {
		r.SetResult(req.Result)
	}

	if len(req.Files) > 0 {
		// No explicit content type: the transport sets multipart/form-data
		// with the correct boundary.
		for _, f := range req.Files {
			r.SetFileReader(f.Param, f.Name, bytes.NewReader(f.Data))
		}
		if len(req.Form) > 0 {
			r.SetMultipartFormData(req.Form)
		}
	} else if req.Body != nil {
		r.SetBody(req.Body)
	}

	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	return r.Execute(method, req.Path)
}

// finish maps a completed first-attempt response to the caller's result.
func (c *Client) finish(res *resty.Response) error {
	if !res.IsError() {
		return nil
	}

	envelope, _ := res.Error().(*ErrorEnvelope)
	if envelope == nil || envelope.Error.Code == "" {
		// Not the structured envelope (proxy error, HTML page). Surface
		// whatever the server sent.
		return &APIError{
			StatusCode: res.StatusCode(),
			Message:    strings.TrimSpace(string(res.Body())),
		}
	}

	return newAPIError(res.StatusCode(), envelope)
}

// expireSession tears the session down after unrecoverable auth failure and
// signals the caller to redirect to login.
func (c *Client) expireSession(ctx context.Context) {
	if err := c.session.Logout(ctx); err != nil {
		log.Warn().Err(err).Msg("failed to clear session after expiry")
	}
	if c.onSessionExpired != nil {
		c.onSessionExpired()
	}
}
