package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/aa196883/boardgame-crud/internal/errors"
)

// Middleware returns a Gin middleware for authentication. It tries JWT,
// API key and session authentication in that order.
func (am *AuthManager) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		clientID := getClientID(c)
		if !am.limiter.Allow(clientID, am.config.RateLimit) {
			rateErr := errors.New(errors.ErrCodeRateLimited, "Too many requests")
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error": gin.H{"code": rateErr.Code, "message": rateErr.Message},
			})
			c.Abort()
			return
		}

		user, err := am.authenticateRequest(c)
		if err != nil {
			authErr := errors.NewNotAuthenticatedError()
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": gin.H{"code": authErr.Code, "message": authErr.Message},
			})
			c.Abort()
			return
		}

		c.Set("user", user)
		c.Set("user_id", user.ID)
		c.Set("username", user.Username)
		c.Set("roles", user.Roles)

		c.Next()
	}
}

// RequireRole returns a middleware that checks if the user has one of the
// required roles.
func (am *AuthManager) RequireRole(requiredRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, exists := GetCurrentUser(c)
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			c.Abort()
			return
		}

		hasRole := false
		for _, required := range requiredRoles {
			for _, userRole := range user.Roles {
				if userRole == required {
					hasRole = true
					break
				}
			}
			if hasRole {
				break
			}
		}

		if !hasRole {
			c.JSON(http.StatusForbidden, gin.H{"error": "insufficient permissions"})
			c.Abort()
			return
		}

		c.Next()
	}
}

func (am *AuthManager) authenticateRequest(c *gin.Context) (*User, error) {
	if user, err := am.authenticateJWT(c); err == nil {
		return user, nil
	}
	if user, err := am.authenticateAPIKey(c); err == nil {
		return user, nil
	}
	if user, err := am.authenticateSession(c); err == nil {
		return user, nil
	}
	return nil, http.ErrAbortHandler
}

func (am *AuthManager) authenticateJWT(c *gin.Context) (*User, error) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return nil, http.ErrAbortHandler
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return nil, http.ErrAbortHandler
	}

	claims, err := am.ValidateJWTToken(parts[1])
	if err != nil {
		return nil, err
	}

	return am.GetUser(claims.UserID)
}

func (am *AuthManager) authenticateAPIKey(c *gin.Context) (*User, error) {
	apiKey := c.GetHeader("X-API-Key")
	if apiKey == "" {
		apiKey = c.Query("api_key")
	}
	if apiKey == "" {
		return nil, http.ErrAbortHandler
	}

	user, _, err := am.ValidateAPIKey(apiKey)
	return user, err
}

func (am *AuthManager) authenticateSession(c *gin.Context) (*User, error) {
	sessionID, err := c.Cookie("session_id")
	if err != nil {
		return nil, err
	}
	return am.ValidateSession(c.Request.Context(), sessionID)
}

// getClientID gets a unique identifier for rate limiting
func getClientID(c *gin.Context) string {
	if userID, exists := c.Get("user_id"); exists {
		if id, ok := userID.(string); ok {
			return "user:" + id
		}
	}

	if apiKey := c.GetHeader("X-API-Key"); len(apiKey) >= 8 {
		return "key:" + apiKey[:8]
	}

	return "ip:" + c.ClientIP()
}

// GetCurrentUser returns the current authenticated user from context
func GetCurrentUser(c *gin.Context) (*User, bool) {
	value, exists := c.Get("user")
	if !exists {
		return nil, false
	}

	user, ok := value.(*User)
	return user, ok
}
