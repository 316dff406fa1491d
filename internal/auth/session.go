package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"

	"github.com/PhucVu3008/koola-admin/internal/koola"
	"github.com/PhucVu3008/koola-admin/internal/store"
)

// State describes session validity as seen from the client.
type State string

const (
	// StateNoSession means the token store is empty.
	StateNoSession State = "no_session"
	// StateActive means the access token is present and unexpired.
	StateActive State = "active"
	// StateAccessExpired means the access token is expired but the refresh
	// token may still be usable.
	StateAccessExpired State = "access_expired"
	// StateRevoked means the refresh token is absent, expired or was
	// rejected. Only a new login leaves this state.
	StateRevoked State = "revoked"
)

// Manager orchestrates login, refresh and logout against the identity
// endpoints. It is the only component that mutates the token store as a
// result of a network call.
type Manager struct {
	storeBackend store.TokenStore
	httpClient   *resty.Client
	skew         time.Duration
	now          func() time.Time

	// refreshGroup deduplicates concurrent refresh calls: callers that race
	// to discover an expired access token share one network refresh and one
	// resulting token.
	refreshGroup singleflight.Group
}

type ManagerOpts struct {
	BaseURL    string
	SkewBuffer time.Duration
	Now        func() time.Time
}

func NewManager(storeBackend store.TokenStore, opts ManagerOpts) *Manager {
	m := &Manager{
		storeBackend: storeBackend,
		skew:         DefaultSkewBuffer,
		now:          time.Now,
	}
	if opts.SkewBuffer > 0 {
		m.skew = opts.SkewBuffer
	}
	if opts.Now != nil {
		m.now = opts.Now
	}

	baseURL := koola.ApiBaseUrl
	if opts.BaseURL != "" {
		baseURL = opts.BaseURL
	}
	m.httpClient = resty.New().
		SetBaseURL(baseURL).
		SetHeaders(map[string]string{
			"Accept":     "application/json",
			"User-Agent": "koola-admin/1.0",
		})

	return m
}

type loginResponse struct {
	AccessToken  string            `json:"accessToken"`
	RefreshToken string            `json:"refreshToken"`
	User         store.UserProfile `json:"user"`
}

// Login exchanges credentials for a session and persists it atomically. On a
// non-2xx response the server's message is surfaced verbatim via
// *LoginRejectedError and the store is left untouched.
func (m *Manager) Login(ctx context.Context, email, password string) (*store.Session, error) {
	result := &loginResponse{}
	res, err := m.httpClient.R().
		SetContext(ctx).
		SetBody(map[string]string{"email": email, "password": password}).
		SetResult(result).
		SetError(&koola.ErrorEnvelope{}).
		Post("/auth/login")
	if err != nil {
		return nil, fmt.Errorf("login request failed: %w", err)
	}
	if res.IsError() {
		return nil, &LoginRejectedError{
			StatusCode: res.StatusCode(),
			Message:    envelopeMessage(res),
		}
	}

	session := store.Session{
		AccessToken:  result.AccessToken,
		RefreshToken: result.RefreshToken,
		Profile:      result.User,
	}
	if err := m.storeBackend.Save(session); err != nil {
		return nil, fmt.Errorf("failed to persist session: %w", err)
	}

	log.Info().Str("email", session.Profile.Email).Msg("logged in")
	return &session, nil
}

// Refresh obtains a new access token using the stored refresh token.
// Concurrent callers share a single in-flight refresh. Preconditions are
// checked locally first: without a usable refresh token the session is
// cleared and no network call is made. A rejected or failed refresh also
// ends the session.
func (m *Manager) Refresh(ctx context.Context) (string, error) {
	token, err, _ := m.refreshGroup.Do("refresh", func() (any, error) {
		return m.refresh(ctx)
	})
	if err != nil {
		return "", err
	}
	return token.(string), nil
}

func (m *Manager) refresh(ctx context.Context) (string, error) {
	session, err := m.storeBackend.Get()
	if err != nil {
		return "", fmt.Errorf("failed to read token store: %w", err)
	}
	if session == nil {
		return "", ErrNoUsableRefreshToken
	}

	claims, err := DecodeClaims(session.RefreshToken)
	if err != nil || IsExpired(claims, m.now(), m.skew) {
		if clearErr := m.storeBackend.Clear(); clearErr != nil {
			log.Warn().Err(clearErr).Msg("failed to clear session")
		}
		log.Info().Msg("refresh token expired, session ended")
		return "", ErrNoUsableRefreshToken
	}

	result := &struct {
		AccessToken string `json:"accessToken"`
	}{}
	res, err := m.httpClient.R().
		SetContext(ctx).
		SetBody(map[string]string{"refreshToken": session.RefreshToken}).
		SetResult(result).
		SetError(&koola.ErrorEnvelope{}).
		Post("/auth/refresh")
	if err != nil || res.IsError() {
		// A failed refresh always ends the session; there is no partial
		// retry of refresh itself.
		if clearErr := m.storeBackend.Clear(); clearErr != nil {
			log.Warn().Err(clearErr).Msg("failed to clear session")
		}
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrRefreshRejected, err)
		}
		return "", fmt.Errorf("%w: status %d", ErrRefreshRejected, res.StatusCode())
	}

	if err := m.storeBackend.SetAccessToken(result.AccessToken); err != nil {
		return "", fmt.Errorf("failed to persist refreshed access token: %w", err)
	}

	log.Debug().Msg("access token refreshed")
	return result.AccessToken, nil
}

// Logout revokes the refresh token remotely on a best-effort basis and
// always clears the local session. Calling it without a session is a no-op.
func (m *Manager) Logout(ctx context.Context) error {
	session, err := m.storeBackend.Get()
	if err != nil {
		return fmt.Errorf("failed to read token store: %w", err)
	}

	if session != nil {
		res, err := m.httpClient.R().
			SetContext(ctx).
			SetBody(map[string]string{"refreshToken": session.RefreshToken}).
			Post("/auth/logout")
		// Remote revocation failures are logged, not propagated: local
		// cleanup must happen regardless.
		if err != nil {
			log.Warn().Err(err).Msg("logout request failed")
		} else if res.IsError() {
			log.Warn().Int("status", res.StatusCode()).Msg("logout rejected by server")
		}
	}

	return m.storeBackend.Clear()
}

// IsAuthenticated reports whether an unexpired access token is stored. This
// is a local check only: the server may still reject the token, in which
// case the executor's refresh path takes over.
func (m *Manager) IsAuthenticated() bool {
	session, err := m.storeBackend.Get()
	if err != nil || session == nil {
		return false
	}
	claims, err := DecodeClaims(session.AccessToken)
	if err != nil {
		return false
	}
	return !IsExpired(claims, m.now(), m.skew)
}

// Profile returns the cached user profile, or nil without a session.
func (m *Manager) Profile() *store.UserProfile {
	session, err := m.storeBackend.Get()
	if err != nil || session == nil {
		return nil
	}
	profile := session.Profile
	return &profile
}

// State classifies the stored session.
func (m *Manager) State() State {
	session, err := m.storeBackend.Get()
	if err != nil || session == nil {
		return StateNoSession
	}

	refreshClaims, err := DecodeClaims(session.RefreshToken)
	if err != nil || IsExpired(refreshClaims, m.now(), m.skew) {
		return StateRevoked
	}

	accessClaims, err := DecodeClaims(session.AccessToken)
	if err != nil || IsExpired(accessClaims, m.now(), m.skew) {
		return StateAccessExpired
	}

	return StateActive
}

// envelopeMessage pulls the server's message out of a failed response,
// falling back to the raw body.
func envelopeMessage(res *resty.Response) string {
	if envelope, ok := res.Error().(*koola.ErrorEnvelope); ok && envelope.Error.Message != "" {
		return envelope.Error.Message
	}
	return string(res.Body())
}
