package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PhucVu3008/koola-admin/internal/store"
)

// makeToken mints a signed token with the given claims. The signature is not
// verified by DecodeClaims, so the signing key is irrelevant.
func makeToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-key"))
	require.NoError(t, err)
	return token
}

func TestDecodeClaims(t *testing.T) {
	now := time.Now().Unix()

	t.Run("decodes identity, roles and timestamps", func(t *testing.T) {
		raw := makeToken(t, jwt.MapClaims{
			"id":    float64(42),
			"email": "admin@koola.vn",
			"roles": []any{
				map[string]any{"id": float64(1), "name": "admin"},
				map[string]any{"id": float64(2), "name": "editor"},
			},
			"iat": now,
			"exp": now + 900,
		})

		claims, err := DecodeClaims(raw)
		require.NoError(t, err)

		assert.Equal(t, int64(42), claims.ID)
		assert.Equal(t, "admin@koola.vn", claims.Email)
		assert.Equal(t, []store.Role{
			{ID: 1, Name: "admin"},
			{ID: 2, Name: "editor"},
		}, claims.Roles)
		assert.Equal(t, now, claims.IssuedAt)
		assert.Equal(t, now+900, claims.ExpiresAt)
	})

	t.Run("roles are optional", func(t *testing.T) {
		raw := makeToken(t, jwt.MapClaims{
			"id":    float64(7),
			"email": "editor@koola.vn",
			"iat":   now,
			"exp":   now + 900,
		})

		claims, err := DecodeClaims(raw)
		require.NoError(t, err)
		assert.Nil(t, claims.Roles)
	})

	t.Run("rejects malformed tokens", func(t *testing.T) {
		for _, raw := range []string{
			"",
			"not-a-token",
			"only.two",
			"!!!.???.###",
		} {
			_, err := DecodeClaims(raw)
			assert.ErrorIs(t, err, ErrMalformedToken, "token %q", raw)
		}
	})
}
