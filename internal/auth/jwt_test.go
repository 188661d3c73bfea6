package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func sign(t *testing.T, secret string, c Claims) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString([]byte(secret))
	require.NoError(t, err)
	return tok
}

func TestVerify_Admin(t *testing.T) {
	v := NewVerifier(testSecret)
	tok := sign(t, testSecret, Claims{UserID: "u-1", Role: "admin"})

	actor, err := v.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, "u-1", actor.UserID)
	assert.True(t, actor.IsAdmin())
}

func TestVerify_UnknownRoleIsCustomer(t *testing.T) {
	v := NewVerifier(testSecret)
	tok := sign(t, testSecret, Claims{UserID: "u-2", Role: "superuser"})

	actor, err := v.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, RoleCustomer, actor.Role)
}

func TestVerify_Rejects(t *testing.T) {
	v := NewVerifier(testSecret)

	tests := map[string]string{
		"wrong secret": sign(t, "other", Claims{UserID: "u-1"}),
		"missing user": sign(t, testSecret, Claims{Role: "admin"}),
		"expired": sign(t, testSecret, Claims{
			UserID:           "u-1",
			RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour))},
		}),
		"garbage": "not-a-token",
	}
	for name, tok := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := v.Verify(tok)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestBearerToken(t *testing.T) {
	tok, ok := BearerToken("Bearer abc.def")
	assert.True(t, ok)
	assert.Equal(t, "abc.def", tok)

	_, ok = BearerToken("Basic abc")
	assert.False(t, ok)
	_, ok = BearerToken("Bearer ")
	assert.False(t, ok)
}

func TestActorContext(t *testing.T) {
	_, ok := FromContext(context.Background())
	assert.False(t, ok)

	ctx := WithActor(context.Background(), Actor{UserID: "u-9", Role: RoleCustomer})
	a, ok := FromContext(ctx)
	require.True(t, ok)
	assert.True(t, a.CanAccess("u-9"))
	assert.False(t, a.CanAccess("u-8"))
	assert.True(t, Actor{UserID: "adm", Role: RoleAdmin}.CanAccess("u-8"))
}
