package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"libraryhub/internal/model"
)

func TestJWTService_RoundTrip(t *testing.T) {
	svc := NewJWTService("secret", time.Hour)
	user := &model.User{ID: 2, Email: "john.doe@email.com", Role: model.RoleUser}

	sessionID, token, err := svc.GenerateSessionToken(user)
	require.NoError(t, err)
	assert.NotEmpty(t, sessionID)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, sessionID, claims.ID)
	assert.Equal(t, uint(2), claims.UserID)
	assert.Equal(t, model.RoleUser, claims.Role)
}

func TestJWTService_RejectsForeignAndExpiredTokens(t *testing.T) {
	user := &model.User{ID: 1, Email: "admin@library.com", Role: model.RoleAdmin}

	_, token, err := NewJWTService("other", time.Hour).GenerateSessionToken(user)
	require.NoError(t, err)
	_, err = NewJWTService("secret", time.Hour).ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	expired := NewJWTService("secret", time.Minute)
	expired.now = func() time.Time { return time.Now().Add(-time.Hour) }
	_, token, err = expired.GenerateSessionToken(user)
	require.NoError(t, err)
	_, err = expired.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = expired.ValidateToken("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestPassword(t *testing.T) {
	hash, err := HashPassword("password")
	require.NoError(t, err)
	assert.True(t, CheckPassword(hash, "password"))
	assert.False(t, CheckPassword(hash, "wrong"))
}
