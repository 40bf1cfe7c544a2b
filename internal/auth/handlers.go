package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/aa196883/boardgame-crud/internal/errors"
)

// LoginRequest is the credentials payload for the login endpoint
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse carries the issued token
type LoginResponse struct {
	Token    string   `json:"token"`
	Username string   `json:"username"`
	Roles    []string `json:"roles"`
}

// RegisterRoutes mounts the auth endpoints on the router.
func (am *AuthManager) RegisterRoutes(r *gin.Engine) {
	authGroup := r.Group("/api/v1/auth")
	{
		authGroup.POST("/login", am.handleLogin)
		authGroup.POST("/logout", am.handleLogout)
		authGroup.GET("/me", am.Middleware(), am.handleMe)
	}
}

func (am *AuthManager) handleLogin(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidErr := errors.NewInvalidInputError("request body", err.Error())
		c.JSON(http.StatusBadRequest, gin.H{
			"error": gin.H{"code": invalidErr.Code, "message": invalidErr.Message},
		})
		return
	}

	user, err := am.GetUserByUsername(req.Username)
	if err != nil || !am.ValidatePassword(user, req.Password) {
		credErr := errors.NewInvalidCredentialsError()
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": gin.H{"code": credErr.Code, "message": credErr.Message},
		})
		return
	}

	token, err := am.CreateJWTToken(user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": gin.H{"code": "INTERNAL_ERROR", "message": "failed to issue token"},
		})
		return
	}

	// Session cookie is best effort; token auth works without it
	if sessionID, err := am.CreateSession(c.Request.Context(), user.ID); err == nil {
		c.SetCookie("session_id", sessionID, int(am.config.SessionExpiry.Seconds()), "/", "", false, true)
	}

	c.JSON(http.StatusOK, LoginResponse{
		Token:    token,
		Username: user.Username,
		Roles:    user.Roles,
	})
}

func (am *AuthManager) handleLogout(c *gin.Context) {
	if sessionID, err := c.Cookie("session_id"); err == nil {
		_ = am.RevokeSession(c.Request.Context(), sessionID)
		c.SetCookie("session_id", "", -1, "/", "", false, true)
	}
	c.JSON(http.StatusOK, gin.H{"logged_out": true})
}

func (am *AuthManager) handleMe(c *gin.Context) {
	user, exists := GetCurrentUser(c)
	if !exists {
		authErr := errors.NewNotAuthenticatedError()
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": gin.H{"code": authErr.Code, "message": authErr.Message},
		})
		return
	}
	c.JSON(http.StatusOK, user)
}
