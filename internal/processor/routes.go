package processor

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/aa196883/boardgame-crud/internal/errors"
	"github.com/aa196883/boardgame-crud/internal/game"
	"github.com/aa196883/boardgame-crud/internal/observability"
)

// AuthMiddleware is an interface for authentication middleware
type AuthMiddleware interface {
	Middleware() gin.HandlerFunc
}

// SetupRoutes configures HTTP routes. Write operations require
// authentication when authMiddleware is non-nil; reads stay public.
func (gp *GamesProcessor) SetupRoutes(authMiddleware AuthMiddleware) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(observability.RequestMiddleware(gp.logger))

	// CORS
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	r.GET("/health", func(c *gin.Context) {
		if gp.healthChecker != nil {
			response := gp.healthChecker.GetHealthResponse(c.Request.Context())
			statusCode := http.StatusOK
			if response.Status == observability.HealthStatusUnhealthy {
				statusCode = http.StatusServiceUnavailable
			}
			c.JSON(statusCode, response)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "games-api",
		})
	})

	r.GET("/metrics", func(c *gin.Context) {
		c.JSON(http.StatusOK, observability.GetGlobalMetrics().Snapshot())
	})

	api := r.Group("/api/v1")
	{
		api.GET("/games", gp.handleListGames)
		api.GET("/games/:name", gp.handleGetGame)
	}

	writes := r.Group("/api/v1")
	if authMiddleware != nil {
		writes.Use(authMiddleware.Middleware())
	}
	{
		writes.POST("/games", gp.handleCreateGame)
		writes.PUT("/games/:name", gp.handleUpdateGame)
		writes.DELETE("/games/:name", gp.handleDeleteGame)
	}

	return r
}

// handleListGames serves GET /api/v1/games. Query parameters: question
// (natural language), sql (explicit query), sort and direction for the
// default listing.
func (gp *GamesProcessor) handleListGames(c *gin.Context) {
	req := ListRequest{
		Question:  c.Query("question"),
		SQL:       c.Query("sql"),
		SortKey:   c.Query("sort"),
		Direction: c.Query("direction"),
	}

	response, err := gp.ListGames(c.Request.Context(), req)
	if err != nil {
		c.JSON(getErrorStatusCode(err), formatErrorResponse(err))
		return
	}

	c.JSON(http.StatusOK, response)
}

func (gp *GamesProcessor) handleGetGame(c *gin.Context) {
	view, err := gp.GetGame(c.Request.Context(), c.Param("name"))
	if err != nil {
		c.JSON(getErrorStatusCode(err), formatErrorResponse(err))
		return
	}
	c.JSON(http.StatusOK, view)
}

func (gp *GamesProcessor) handleCreateGame(c *gin.Context) {
	var payload game.Payload
	if err := c.ShouldBindJSON(&payload); err != nil {
		enhancedErr := errors.NewInvalidInputError("request body", err.Error())
		c.JSON(http.StatusBadRequest, formatErrorResponse(enhancedErr))
		return
	}

	view, err := gp.CreateGame(c.Request.Context(), payload)
	if err != nil {
		c.JSON(getErrorStatusCode(err), formatErrorResponse(err))
		return
	}
	c.JSON(http.StatusCreated, view)
}

func (gp *GamesProcessor) handleUpdateGame(c *gin.Context) {
	var payload game.Payload
	if err := c.ShouldBindJSON(&payload); err != nil {
		enhancedErr := errors.NewInvalidInputError("request body", err.Error())
		c.JSON(http.StatusBadRequest, formatErrorResponse(enhancedErr))
		return
	}

	view, err := gp.UpdateGame(c.Request.Context(), c.Param("name"), payload)
	if err != nil {
		c.JSON(getErrorStatusCode(err), formatErrorResponse(err))
		return
	}
	c.JSON(http.StatusOK, view)
}

func (gp *GamesProcessor) handleDeleteGame(c *gin.Context) {
	if err := gp.DeleteGame(c.Request.Context(), c.Param("name")); err != nil {
		c.JSON(getErrorStatusCode(err), formatErrorResponse(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": c.Param("name")})
}

// formatErrorResponse formats an error into a user-friendly response
func formatErrorResponse(err error) gin.H {
	if enhancedErr, ok := err.(*errors.EnhancedError); ok {
		errorBody := gin.H{
			"code":    enhancedErr.Code,
			"message": enhancedErr.Message,
		}
		if enhancedErr.Details != "" {
			errorBody["details"] = enhancedErr.Details
		}
		if enhancedErr.Suggestion != "" {
			errorBody["suggestion"] = enhancedErr.Suggestion
		}
		if len(enhancedErr.Metadata) > 0 {
			errorBody["metadata"] = enhancedErr.Metadata
		}
		if enhancedErr.Retryable() {
			errorBody["retryable"] = true
		}
		return gin.H{"error": errorBody}
	}

	return gin.H{
		"error": gin.H{
			"code":    "INTERNAL_ERROR",
			"message": err.Error(),
		},
	}
}

// getErrorStatusCode returns the appropriate HTTP status code for an error
func getErrorStatusCode(err error) int {
	if enhancedErr, ok := err.(*errors.EnhancedError); ok {
		switch enhancedErr.Code {
		case errors.ErrCodeInvalidInput, errors.ErrCodeMissingRequired,
			errors.ErrCodeNotASelect, errors.ErrCodeWrongTable,
			errors.ErrCodeForbiddenKeyword, errors.ErrCodeUnknownIdentifier,
			errors.ErrCodeEmptyGenerated, errors.ErrCodeDatabaseExecution:
			return http.StatusBadRequest
		case errors.ErrCodeInvalidCredentials, errors.ErrCodeNotAuthenticated:
			return http.StatusUnauthorized
		case errors.ErrCodeGameNotFound:
			return http.StatusNotFound
		case errors.ErrCodeDuplicateGame:
			return http.StatusConflict
		case errors.ErrCodeRateLimited:
			return http.StatusTooManyRequests
		case errors.ErrCodeUpstreamFailure:
			return http.StatusBadGateway
		default:
			return http.StatusInternalServerError
		}
	}
	return http.StatusInternalServerError
}
