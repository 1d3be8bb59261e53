package auth

import (
	"testing"
	"time"

	"github.com/nimasrn/debt-ledger/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestJWTManager_RoundTrip(t *testing.T) {
	m := NewJWTManager("secret", "debt-ledger", time.Hour)
	user := &model.User{ID: 7, Username: "sita", Role: model.RoleAdmin}

	token, expiresAt, err := m.GenerateToken(user)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	claims, err := m.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, model.Identity{UserID: 7, Username: "sita", Role: model.RoleAdmin}, claims.Identity())
}

func TestJWTManager_Rejects(t *testing.T) {
	m := NewJWTManager("secret", "debt-ledger", time.Hour)
	token, _, err := m.GenerateToken(&model.User{ID: 1, Username: "a", Role: model.RoleUser})
	require.NoError(t, err)

	t.Run("wrong secret", func(t *testing.T) {
		other := NewJWTManager("other", "debt-ledger", time.Hour)
		_, err := other.ValidateToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("wrong issuer", func(t *testing.T) {
		other := NewJWTManager("secret", "someone-else", time.Hour)
		_, err := other.ValidateToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("expired", func(t *testing.T) {
		late := NewJWTManager("secret", "debt-ledger", time.Hour)
		late.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
		_, err := late.ValidateToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := m.ValidateToken("not-a-token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestPassword(t *testing.T) {
	hash, err := HashPassword("correct horse", bcrypt.MinCost)
	require.NoError(t, err)

	assert.True(t, VerifyPassword(hash, "correct horse"))
	assert.False(t, VerifyPassword(hash, "battery staple"))
}
