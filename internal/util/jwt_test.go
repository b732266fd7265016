package util

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// TestTokenRoundTrip 签发后应能解出同一用户ID
func TestTokenRoundTrip(t *testing.T) {
	m := NewTokenManager("test-secret", time.Hour)

	token, err := m.GenerateToken(42)
	assert.NoError(t, err)
	assert.NotEmpty(t, token)

	claims, err := m.ValidateToken(token)
	assert.NoError(t, err)
	assert.Equal(t, 42, claims.UserID)
	assert.WithinDuration(t, time.Now(), claims.IssuedAt, 5*time.Second)
}

// TestTokenWrongSecret 不同密钥签发的令牌应被拒绝
func TestTokenWrongSecret(t *testing.T) {
	m := NewTokenManager("test-secret", time.Hour)
	other := NewTokenManager("another-secret", time.Hour)

	token, err := other.GenerateToken(1)
	assert.NoError(t, err)

	claims, err := m.ValidateToken(token)
	assert.Error(t, err)
	assert.Nil(t, claims)
}

// TestTokenExpired 过期令牌应被拒绝
func TestTokenExpired(t *testing.T) {
	m := NewTokenManager("test-secret", -time.Minute)

	token, err := m.GenerateToken(1)
	assert.NoError(t, err)

	claims, err := m.ValidateToken(token)
	assert.Error(t, err)
	assert.Nil(t, claims)
}

// TestTokenEmpty 空令牌应被拒绝
func TestTokenEmpty(t *testing.T) {
	m := NewTokenManager("test-secret", time.Hour)

	claims, err := m.ValidateToken("")
	assert.Error(t, err)
	assert.Nil(t, claims)

	claims, err = m.ValidateToken("not-a-jwt")
	assert.Error(t, err)
	assert.Nil(t, claims)
}
