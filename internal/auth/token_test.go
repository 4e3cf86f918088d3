package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenManager_IssueAndVerify(t *testing.T) {
	t.Parallel()

	tm := NewTokenManager("test-secret", 7*24*time.Hour)

	token, expiresAt, err := tm.Issue("user-123")
	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.WithinDuration(t, time.Now().Add(7*24*time.Hour), expiresAt, time.Minute)

	userID, err := tm.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "user-123", userID)
}

func TestTokenManager_ExpiredToken(t *testing.T) {
	t.Parallel()

	tm := NewTokenManager("test-secret", time.Nanosecond)

	token, _, err := tm.Issue("user-123")
	require.NoError(t, err)

	time.Sleep(time.Millisecond)
	_, err = tm.Verify(token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestTokenManager_MalformedToken(t *testing.T) {
	t.Parallel()

	tm := NewTokenManager("test-secret", time.Hour)

	tests := []struct {
		name  string
		token string
	}{
		{name: "garbage", token: "not-a-token"},
		{name: "empty", token: ""},
		{
			name: "wrong signature",
			token: func() string {
				other := NewTokenManager("different-secret", time.Hour)
				token, _, err := other.Issue("user-123")
				require.NoError(t, err)
				return token
			}(),
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := tm.Verify(tt.token)
			assert.ErrorIs(t, err, ErrTokenMalformed)
		})
	}
}

func TestTokenManager_DefaultTTL(t *testing.T) {
	t.Parallel()

	tm := NewTokenManager("test-secret", 0)

	_, expiresAt, err := tm.Issue("user-123")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(7*24*time.Hour), expiresAt, time.Minute)
}
