// Package auth guards the write surface of the games API: user accounts,
// JWT tokens, API keys and Redis-backed sessions.
package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/aa196883/boardgame-crud/internal/session"
)

// User represents a user in the system
type User struct {
	ID           string            `json:"id"`
	Username     string            `json:"username"`
	Email        string            `json:"email"`
	PasswordHash string            `json:"-"`
	Roles        []string          `json:"roles"`
	Metadata     map[string]string `json:"metadata,omitempty"`
	Active       bool              `json:"active"`
}

// APIKey represents an API key for authentication
type APIKey struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Key        string    `json:"key,omitempty"` // Plaintext, only shown once
	HashedKey  string    `json:"-"`
	UserID     string    `json:"user_id"`
	RateLimit  int       `json:"rate_limit"`
	ExpiresAt  time.Time `json:"expires_at"`
	CreatedAt  time.Time `json:"created_at"`
	LastUsedAt time.Time `json:"last_used_at"`
	Active     bool      `json:"active"`
}

// Claims represents JWT claims
type Claims struct {
	UserID   string   `json:"user_id"`
	Username string   `json:"username"`
	Roles    []string `json:"roles"`
	jwt.RegisteredClaims
}

// AuthConfig holds authentication configuration
type AuthConfig struct {
	JWTSecret     string
	JWTExpiry     time.Duration
	SessionExpiry time.Duration
	RateLimit     int
}

// AuthManager handles authentication and user management
type AuthManager struct {
	config         AuthConfig
	users          map[string]*User   // userID -> User
	apiKeys        map[string]*APIKey // hashedKey -> APIKey
	userByUsername map[string]*User   // username -> User
	sessionManager *session.Manager
	limiter        *RateLimiter
	mu             sync.RWMutex
}

// NewAuthManager creates a new authentication manager. sessionManager may
// be nil when Redis is not configured; session auth is then disabled.
func NewAuthManager(config AuthConfig, sessionManager *session.Manager) *AuthManager {
	if config.JWTExpiry == 0 {
		config.JWTExpiry = 24 * time.Hour
	}
	if config.SessionExpiry == 0 {
		config.SessionExpiry = 7 * 24 * time.Hour
	}
	if config.RateLimit == 0 {
		config.RateLimit = 100
	}
	if config.JWTSecret == "" {
		config.JWTSecret = generateRandomString(32)
	}

	return &AuthManager{
		config:         config,
		users:          make(map[string]*User),
		apiKeys:        make(map[string]*APIKey),
		userByUsername: make(map[string]*User),
		sessionManager: sessionManager,
		limiter:        NewRateLimiter(),
	}
}

// CreateUserWithPassword creates a new user with a password
func (am *AuthManager) CreateUserWithPassword(username, email, password string, roles []string) (*User, error) {
	am.mu.Lock()
	defer am.mu.Unlock()

	if _, exists := am.userByUsername[username]; exists {
		return nil, fmt.Errorf("user already exists: %s", username)
	}

	var passwordHash string
	if password != "" {
		hashedBytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		passwordHash = string(hashedBytes)
	}

	user := &User{
		ID:           uuid.New().String(),
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		Roles:        roles,
		Metadata:     make(map[string]string),
		Active:       true,
	}

	am.users[user.ID] = user
	am.userByUsername[username] = user

	return user, nil
}

// ValidatePassword checks if the provided password matches the user's hash
func (am *AuthManager) ValidatePassword(user *User, password string) bool {
	if user.PasswordHash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) == nil
}

// GetUser retrieves a user by ID
func (am *AuthManager) GetUser(userID string) (*User, error) {
	am.mu.RLock()
	defer am.mu.RUnlock()

	user, exists := am.users[userID]
	if !exists {
		return nil, fmt.Errorf("user not found: %s", userID)
	}
	return user, nil
}

// GetUserByUsername retrieves a user by username
func (am *AuthManager) GetUserByUsername(username string) (*User, error) {
	am.mu.RLock()
	defer am.mu.RUnlock()

	user, exists := am.userByUsername[username]
	if !exists {
		return nil, fmt.Errorf("user not found: %s", username)
	}
	return user, nil
}

// CreateAPIKey creates a new API key for a user
func (am *AuthManager) CreateAPIKey(userID, name string, rateLimit int, expiresIn time.Duration) (*APIKey, error) {
	am.mu.Lock()
	defer am.mu.Unlock()

	if _, exists := am.users[userID]; !exists {
		return nil, fmt.Errorf("user not found: %s", userID)
	}

	key := generateAPIKey()
	hashedKey := hashAPIKey(key)

	apiKey := &APIKey{
		ID:        uuid.New().String(),
		Name:      name,
		Key:       key,
		HashedKey: hashedKey,
		UserID:    userID,
		RateLimit: rateLimit,
		CreatedAt: time.Now(),
		ExpiresAt: time.Now().Add(expiresIn),
		Active:    true,
	}

	am.apiKeys[hashedKey] = apiKey

	return apiKey, nil
}

// ValidateAPIKey validates an API key and returns the associated user
func (am *AuthManager) ValidateAPIKey(key string) (*User, *APIKey, error) {
	am.mu.Lock()
	defer am.mu.Unlock()

	hashedKey := hashAPIKey(key)
	apiKey, exists := am.apiKeys[hashedKey]
	if !exists {
		return nil, nil, fmt.Errorf("invalid API key")
	}

	if !apiKey.Active {
		return nil, nil, fmt.Errorf("API key is inactive")
	}
	if time.Now().After(apiKey.ExpiresAt) {
		return nil, nil, fmt.Errorf("API key has expired")
	}

	user, exists := am.users[apiKey.UserID]
	if !exists {
		return nil, nil, fmt.Errorf("user not found for API key")
	}
	if !user.Active {
		return nil, nil, fmt.Errorf("user is inactive")
	}

	apiKey.LastUsedAt = time.Now()

	return user, apiKey, nil
}

// CreateJWTToken creates a JWT token for a user
func (am *AuthManager) CreateJWTToken(user *User) (string, error) {
	expiresAt := time.Now().Add(am.config.JWTExpiry)

	claims := &Claims{
		UserID:   user.ID,
		Username: user.Username,
		Roles:    user.Roles,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			NotBefore: jwt.NewNumericDate(time.Now()),
			Issuer:    "games-api",
			Subject:   user.ID,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(am.config.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, nil
}

// ValidateJWTToken validates a JWT token and returns the claims
func (am *AuthManager) ValidateJWTToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(am.config.JWTSecret), nil
	})

	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	am.mu.RLock()
	user, exists := am.users[claims.UserID]
	am.mu.RUnlock()

	if !exists {
		return nil, fmt.Errorf("user not found")
	}
	if !user.Active {
		return nil, fmt.Errorf("user is inactive")
	}

	return claims, nil
}

// CreateSession creates a new session for a user in Redis
func (am *AuthManager) CreateSession(ctx context.Context, userID string) (string, error) {
	if am.sessionManager == nil {
		return "", fmt.Errorf("session storage not configured")
	}

	am.mu.RLock()
	user, exists := am.users[userID]
	am.mu.RUnlock()

	if !exists {
		return "", fmt.Errorf("user not found: %s", userID)
	}

	token, err := am.CreateJWTToken(user)
	if err != nil {
		return "", fmt.Errorf("failed to create token: %w", err)
	}

	sessionID, err := am.sessionManager.Create(ctx, session.Session{
		UserID:   user.ID,
		Username: user.Username,
		Roles:    user.Roles,
		Token:    token,
	})
	if err != nil {
		return "", fmt.Errorf("failed to create session: %w", err)
	}

	return sessionID, nil
}

// ValidateSession validates a session and returns the associated user
func (am *AuthManager) ValidateSession(ctx context.Context, sessionID string) (*User, error) {
	if am.sessionManager == nil {
		return nil, fmt.Errorf("session storage not configured")
	}

	sess, err := am.sessionManager.Get(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("invalid session: %w", err)
	}

	am.mu.RLock()
	user, exists := am.users[sess.UserID]
	am.mu.RUnlock()

	if !exists {
		return nil, fmt.Errorf("user not found for session")
	}
	if !user.Active {
		return nil, fmt.Errorf("user is inactive")
	}

	// Best effort sliding expiry
	_ = am.sessionManager.Refresh(ctx, sessionID)

	return user, nil
}

// RevokeSession revokes a session
func (am *AuthManager) RevokeSession(ctx context.Context, sessionID string) error {
	if am.sessionManager == nil {
		return nil
	}
	return am.sessionManager.Delete(ctx, sessionID)
}

// CleanupExpired removes expired API keys. Sessions expire via Redis TTL.
func (am *AuthManager) CleanupExpired() {
	am.mu.Lock()
	defer am.mu.Unlock()

	now := time.Now()
	for hash, apiKey := range am.apiKeys {
		if now.After(apiKey.ExpiresAt) {
			delete(am.apiKeys, hash)
		}
	}
}

func generateRandomString(length int) string {
	bytes := make([]byte, length)
	if _, err := rand.Read(bytes); err != nil {
		panic(err)
	}
	return hex.EncodeToString(bytes)
}

// generateAPIKey generates a new API key with "bga_" prefix
func generateAPIKey() string {
	return "bga_" + generateRandomString(32)
}

func hashAPIKey(key string) string {
	hash := sha256.Sum256([]byte(key))
	return hex.EncodeToString(hash[:])
}
