package auth

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAuthManager(t *testing.T) {
	tests := []struct {
		name           string
		config         AuthConfig
		expectedExpiry time.Duration
	}{
		{
			name: "default configuration",
			config: AuthConfig{
				JWTSecret: "test-secret",
			},
			expectedExpiry: 24 * time.Hour,
		},
		{
			name: "custom configuration",
			config: AuthConfig{
				JWTSecret:     "custom-secret",
				JWTExpiry:     2 * time.Hour,
				SessionExpiry: 48 * time.Hour,
				RateLimit:     200,
			},
			expectedExpiry: 2 * time.Hour,
		},
		{
			name:           "empty configuration uses defaults",
			config:         AuthConfig{},
			expectedExpiry: 24 * time.Hour,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			am := NewTestAuthManager(tt.config)
			require.NotNil(t, am)
			assert.NotEmpty(t, am.config.JWTSecret)
			assert.Equal(t, tt.expectedExpiry, am.config.JWTExpiry)
		})
	}
}

func TestCreateUserWithPassword(t *testing.T) {
	am := NewTestAuthManager(AuthConfig{JWTSecret: "test-secret"})

	user, err := am.CreateUserWithPassword("alice", "alice@example.com", "s3cret", []string{"editor"})
	require.NoError(t, err)
	assert.NotEmpty(t, user.ID)
	assert.Equal(t, "alice", user.Username)
	assert.Contains(t, user.Roles, "editor")
	assert.True(t, user.Active)
	assert.NotEqual(t, "s3cret", user.PasswordHash)

	t.Run("duplicate username rejected", func(t *testing.T) {
		_, err := am.CreateUserWithPassword("alice", "other@example.com", "pw", nil)
		assert.Error(t, err)
	})

	t.Run("lookup by username", func(t *testing.T) {
		found, err := am.GetUserByUsername("alice")
		require.NoError(t, err)
		assert.Equal(t, user.ID, found.ID)
	})

	t.Run("lookup by id", func(t *testing.T) {
		found, err := am.GetUser(user.ID)
		require.NoError(t, err)
		assert.Equal(t, "alice", found.Username)
	})
}

func TestValidatePassword(t *testing.T) {
	am := NewTestAuthManager(AuthConfig{JWTSecret: "test-secret"})

	user, err := am.CreateUserWithPassword("alice", "alice@example.com", "s3cret", nil)
	require.NoError(t, err)

	assert.True(t, am.ValidatePassword(user, "s3cret"))
	assert.False(t, am.ValidatePassword(user, "wrong"))

	t.Run("user without password never validates", func(t *testing.T) {
		noPw, err := am.CreateUserWithPassword("bot", "bot@example.com", "", nil)
		require.NoError(t, err)
		assert.False(t, am.ValidatePassword(noPw, ""))
		assert.False(t, am.ValidatePassword(noPw, "anything"))
	})
}

func TestJWTTokenLifecycle(t *testing.T) {
	am := NewTestAuthManager(AuthConfig{JWTSecret: "test-secret"})

	user, err := am.CreateUserWithPassword("alice", "alice@example.com", "s3cret", []string{"editor"})
	require.NoError(t, err)

	token, err := am.CreateJWTToken(user)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := am.ValidateJWTToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, "alice", claims.Username)
	assert.Contains(t, claims.Roles, "editor")

	t.Run("tampered token rejected", func(t *testing.T) {
		_, err := am.ValidateJWTToken(token + "x")
		assert.Error(t, err)
	})

	t.Run("token from another secret rejected", func(t *testing.T) {
		other := NewTestAuthManager(AuthConfig{JWTSecret: "different-secret"})
		otherUser, err := other.CreateUserWithPassword("alice", "alice@example.com", "pw", nil)
		require.NoError(t, err)
		foreign, err := other.CreateJWTToken(otherUser)
		require.NoError(t, err)

		_, err = am.ValidateJWTToken(foreign)
		assert.Error(t, err)
	})

	t.Run("token for deactivated user rejected", func(t *testing.T) {
		user.Active = false
		defer func() { user.Active = true }()

		_, err := am.ValidateJWTToken(token)
		assert.Error(t, err)
	})
}

func TestAPIKeyLifecycle(t *testing.T) {
	am := NewTestAuthManager(AuthConfig{JWTSecret: "test-secret"})

	user, err := am.CreateUserWithPassword("alice", "alice@example.com", "s3cret", nil)
	require.NoError(t, err)

	apiKey, err := am.CreateAPIKey(user.ID, "ci", 50, time.Hour)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(apiKey.Key, "bga_"))
	assert.Equal(t, 50, apiKey.RateLimit)

	validatedUser, validatedKey, err := am.ValidateAPIKey(apiKey.Key)
	require.NoError(t, err)
	assert.Equal(t, user.ID, validatedUser.ID)
	assert.Equal(t, apiKey.ID, validatedKey.ID)
	assert.False(t, validatedKey.LastUsedAt.IsZero())

	t.Run("unknown key rejected", func(t *testing.T) {
		_, _, err := am.ValidateAPIKey("bga_not_a_real_key")
		assert.Error(t, err)
	})

	t.Run("expired key rejected", func(t *testing.T) {
		expired, err := am.CreateAPIKey(user.ID, "old", 50, -time.Minute)
		require.NoError(t, err)

		_, _, err = am.ValidateAPIKey(expired.Key)
		assert.Error(t, err)
	})

	t.Run("key for unknown user rejected", func(t *testing.T) {
		_, err := am.CreateAPIKey("no-such-user", "orphan", 50, time.Hour)
		assert.Error(t, err)
	})
}

func TestSessionLifecycle(t *testing.T) {
	ctx := context.Background()
	am := NewTestAuthManager(AuthConfig{JWTSecret: "test-secret"})

	user, err := am.CreateUserWithPassword("alice", "alice@example.com", "s3cret", []string{"editor"})
	require.NoError(t, err)

	sessionID, err := am.CreateSession(ctx, user.ID)
	require.NoError(t, err)
	require.NotEmpty(t, sessionID)

	validated, err := am.ValidateSession(ctx, sessionID)
	require.NoError(t, err)
	assert.Equal(t, user.ID, validated.ID)

	require.NoError(t, am.RevokeSession(ctx, sessionID))

	_, err = am.ValidateSession(ctx, sessionID)
	assert.Error(t, err)
}
