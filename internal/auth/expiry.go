package auth

import "time"

// DefaultSkewBuffer is the safety margin applied when deciding whether a
// token is still usable. A token is treated as expired slightly before the
// server would reject it, so a request is not sent with a token that expires
// mid-flight.
const DefaultSkewBuffer = 10 * time.Second

// IsExpired reports whether the token should no longer be used at the given
// instant. Nil claims count as expired.
func IsExpired(claims *Claims, now time.Time, skewBuffer time.Duration) bool {
	if claims == nil {
		return true
	}
	return claims.ExpiresAt < now.Add(skewBuffer).Unix()
}

// TimeRemaining returns the token's remaining lifetime, never negative.
func TimeRemaining(claims *Claims, now time.Time) time.Duration {
	if claims == nil {
		return 0
	}
	remaining := time.Unix(claims.ExpiresAt, 0).Sub(now)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// ExpiresAt returns the token's expiry as an absolute instant.
func ExpiresAt(claims *Claims) time.Time {
	if claims == nil {
		return time.Time{}
	}
	return time.Unix(claims.ExpiresAt, 0)
}
