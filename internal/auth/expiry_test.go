package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIsExpired(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)

	t.Run("expiry within the skew buffer counts as expired", func(t *testing.T) {
		claims := &Claims{ExpiresAt: now.Unix() + 5}
		assert.True(t, IsExpired(claims, now, DefaultSkewBuffer))
	})

	t.Run("expiry well in the future is usable", func(t *testing.T) {
		claims := &Claims{ExpiresAt: now.Unix() + 3600}
		assert.False(t, IsExpired(claims, now, DefaultSkewBuffer))
	})

	t.Run("already expired", func(t *testing.T) {
		claims := &Claims{ExpiresAt: now.Unix() - 1}
		assert.True(t, IsExpired(claims, now, DefaultSkewBuffer))
	})

	t.Run("nil claims count as expired", func(t *testing.T) {
		assert.True(t, IsExpired(nil, now, DefaultSkewBuffer))
	})
}

func TestTimeRemaining(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)

	assert.Equal(t, 90*time.Second, TimeRemaining(&Claims{ExpiresAt: now.Unix() + 90}, now))
	assert.Equal(t, time.Duration(0), TimeRemaining(&Claims{ExpiresAt: now.Unix() - 90}, now))
	assert.Equal(t, time.Duration(0), TimeRemaining(nil, now))
}

func TestExpiresAt(t *testing.T) {
	claims := &Claims{ExpiresAt: 1_700_000_000}
	assert.Equal(t, time.Unix(1_700_000_000, 0), ExpiresAt(claims))
	assert.True(t, ExpiresAt(nil).IsZero())
}
