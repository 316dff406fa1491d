// Package keepalive proactively refreshes the access token shortly before it
// expires, so interactive requests rarely hit the 401 recovery path.
package keepalive

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/PhucVu3008/koola-admin/internal/auth"
	"github.com/PhucVu3008/koola-admin/internal/store"
)

const (
	// CheckInterval is the time between expiry checks.
	CheckInterval = time.Minute

	// RefreshLead is how long before expiry the token is refreshed.
	RefreshLead = 2 * time.Minute
)

// Service is the background refresher. It stops refreshing once the session
// ends and resumes when a new login stores one.
type Service struct {
	manager *auth.Manager
	store   store.TokenStore

	interval time.Duration
	lead     time.Duration
	now      func() time.Time
}

func NewService(manager *auth.Manager, tokenStore store.TokenStore) *Service {
	return &Service{
		manager:  manager,
		store:    tokenStore,
		interval: CheckInterval,
		lead:     RefreshLead,
		now:      time.Now,
	}
}

// Run starts the check loop. It blocks until the context is cancelled.
func (s *Service) Run(ctx context.Context) error {
	log.Info().Dur("interval", s.interval).Msg("starting session keep-alive")

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("stopping session keep-alive")
			return ctx.Err()
		case <-ticker.C:
			s.check(ctx)
		}
	}
}

// check refreshes the access token when its remaining lifetime is below the
// lead time.
func (s *Service) check(ctx context.Context) {
	session, err := s.store.Get()
	if err != nil {
		log.Warn().Err(err).Msg("keep-alive could not read token store")
		return
	}
	if session == nil {
		return
	}

	claims, err := auth.DecodeClaims(session.AccessToken)
	if err != nil {
		// Undecodable token: let the refresh path decide what to do with
		// the session.
		claims = nil
	}

	remaining := auth.TimeRemaining(claims, s.now())
	if remaining > s.lead {
		return
	}

	log.Info().Dur("remaining", remaining).Msg("access token near expiry, refreshing")

	if _, err := s.manager.Refresh(ctx); err != nil {
		if errors.Is(err, auth.ErrNoUsableRefreshToken) || errors.Is(err, auth.ErrRefreshRejected) {
			log.Info().Err(err).Msg("session ended, keep-alive idle until next login")
			return
		}
		log.Warn().Err(err).Msg("keep-alive refresh failed")
	}
}
