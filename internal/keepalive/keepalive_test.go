package keepalive

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PhucVu3008/koola-admin/internal/auth"
	"github.com/PhucVu3008/koola-admin/internal/store"
)

func makeToken(t *testing.T, expiresIn time.Duration) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"id":  float64(1),
		"exp": float64(time.Now().Add(expiresIn).Unix()),
	})
	signed, err := token.SignedString([]byte("test-key"))
	require.NoError(t, err)
	return signed
}

type harness struct {
	service      *Service
	store        store.TokenStore
	refreshCalls *atomic.Int32
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	refreshCalls := &atomic.Int32{}
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/refresh":
			refreshCalls.Add(1)
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(map[string]string{
				"accessToken": makeToken(t, time.Hour),
			})
		case "/auth/logout":
			w.WriteHeader(http.StatusNoContent)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(ts.Close)

	tokenStore := store.NewMemoryStore()
	manager := auth.NewManager(tokenStore, auth.ManagerOpts{BaseURL: ts.URL})

	return &harness{
		service:      NewService(manager, tokenStore),
		store:        tokenStore,
		refreshCalls: refreshCalls,
	}
}

func (h *harness) seed(t *testing.T, accessIn, refreshIn time.Duration) {
	t.Helper()
	require.NoError(t, h.store.Save(store.Session{
		AccessToken:  makeToken(t, accessIn),
		RefreshToken: makeToken(t, refreshIn),
		Profile:      store.UserProfile{ID: 1, Email: "admin@koola.vn"},
	}))
}

func TestCheckRefreshesNearExpiry(t *testing.T) {
	h := newHarness(t)
	h.seed(t, 30*time.Second, 24*time.Hour)

	h.service.check(context.Background())

	assert.EqualValues(t, 1, h.refreshCalls.Load())

	session, err := h.store.Get()
	require.NoError(t, err)
	require.NotNil(t, session)

	claims, err := auth.DecodeClaims(session.AccessToken)
	require.NoError(t, err)
	assert.Greater(t, auth.TimeRemaining(claims, time.Now()), RefreshLead)
}

func TestCheckLeavesFreshTokenAlone(t *testing.T) {
	h := newHarness(t)
	h.seed(t, time.Hour, 24*time.Hour)

	h.service.check(context.Background())

	assert.EqualValues(t, 0, h.refreshCalls.Load())
}

func TestCheckIdleWithoutSession(t *testing.T) {
	h := newHarness(t)

	h.service.check(context.Background())

	assert.EqualValues(t, 0, h.refreshCalls.Load())
}

func TestCheckHandlesEndedSession(t *testing.T) {
	h := newHarness(t)
	// Both tokens past expiry: the refresh precondition fails locally and the
	// session is cleared without a network call.
	h.seed(t, -time.Minute, -time.Minute)

	h.service.check(context.Background())

	assert.EqualValues(t, 0, h.refreshCalls.Load())

	session, err := h.store.Get()
	require.NoError(t, err)
	assert.Nil(t, session)
}

func TestRunStopsOnContextCancel(t *testing.T) {
	h := newHarness(t)
	h.service.interval = 10 * time.Millisecond

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := h.service.Run(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
