package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/sony/gobreaker"

	"github.com/aa196883/boardgame-crud/internal/auth"
	"github.com/aa196883/boardgame-crud/internal/config"
	"github.com/aa196883/boardgame-crud/internal/llm"
	"github.com/aa196883/boardgame-crud/internal/observability"
	"github.com/aa196883/boardgame-crud/internal/processor"
	"github.com/aa196883/boardgame-crud/internal/session"
	"github.com/aa196883/boardgame-crud/internal/store"
)

func main() {
	ctx := context.Background()
	logger := observability.NewLogger("main")

	cfg := config.NewDefaultLoader().MustLoad(ctx)
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	gin.SetMode(cfg.Server.GinMode)

	// Run migrations before opening the pool
	if err := store.RunMigrations(store.MigrationConfig{
		DatabasePath:   cfg.Database.Path,
		MigrationsPath: cfg.Database.MigrationsPath,
	}); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}

	st, err := store.Open(ctx, cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer st.Close()

	// Redis backs the listing cache and sessions. The service degrades
	// gracefully without it.
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	var cache *redis.Client
	var sessionManager *session.Manager
	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.Warn(ctx, "Redis unavailable, caching and sessions disabled", map[string]interface{}{
			"addr":  cfg.Redis.Addr,
			"error": err.Error(),
		})
	} else {
		cache = rdb
		sessionManager = session.NewManager(rdb, cfg.Auth.SessionExpiry)
	}

	// LLM client, optional. Without a key, natural-language questions
	// are refused but explicit SQL and the default listing still work.
	var generator llm.Client
	var breaker *llm.CircuitBreakerClient
	if cfg.OpenAI.APIKey != "" {
		openaiClient, err := llm.NewOpenAIClient(llm.Config{
			APIKey:  cfg.OpenAI.APIKey,
			Model:   cfg.OpenAI.Model,
			BaseURL: cfg.OpenAI.BaseURL,
			Timeout: cfg.OpenAI.Timeout,
		})
		if err != nil {
			log.Fatalf("Failed to initialize LLM client: %v", err)
		}
		breaker = llm.NewCircuitBreakerClient(openaiClient, "openai", llm.DefaultCircuitBreakerConfig)
		generator = breaker
	} else {
		logger.Warn(ctx, "No OpenAI API key configured, question handling disabled", nil)
	}

	resolver := processor.NewResolver(generator, cfg.Query.Timeout)
	gp := processor.NewGamesProcessor(resolver, st, cache, processor.ProcessorConfig{
		Policy: processor.Policy(cfg.Query.Policy),
	})

	authManager := auth.NewAuthManager(auth.AuthConfig{
		JWTSecret:     cfg.Auth.JWTSecret,
		JWTExpiry:     cfg.Auth.JWTExpiry,
		SessionExpiry: cfg.Auth.SessionExpiry,
		RateLimit:     cfg.Auth.RateLimit,
	}, sessionManager)

	bootstrapAdminUser(authManager, logger)

	go func() {
		ticker := time.NewTicker(1 * time.Hour)
		defer ticker.Stop()
		for range ticker.C {
			authManager.CleanupExpired()
		}
	}()

	healthChecker := observability.NewHealthChecker()
	healthChecker.Register("database", observability.DatabaseHealthCheck(func(ctx context.Context) error {
		return st.Ping(ctx)
	}))
	healthChecker.Register("redis", observability.RedisHealthCheck(func(ctx context.Context) error {
		return rdb.Ping(ctx).Err()
	}))
	healthChecker.Register("llm", observability.LLMHealthCheck(func(ctx context.Context) error {
		if generator == nil {
			return fmt.Errorf("no LLM configured")
		}
		if breaker != nil && breaker.State() == gobreaker.StateOpen {
			return fmt.Errorf("circuit breaker open")
		}
		return nil
	}))
	gp.SetHealthChecker(healthChecker)

	router := gp.SetupRoutes(authManager)
	authManager.RegisterRoutes(router)

	port := cfg.Server.Port
	logger.Info(ctx, "Games API starting", map[string]interface{}{
		"port":     port,
		"database": cfg.Database.Path,
	})
	if err := router.Run(":" + port); err != nil {
		logger.Error(ctx, "Failed to start server", err, nil)
		log.Fatal("Failed to start server:", err)
	}
}

// bootstrapAdminUser creates the initial account from the environment.
// Without it the write endpoints stay locked until a user is provisioned.
func bootstrapAdminUser(am *auth.AuthManager, logger *observability.Logger) {
	username := os.Getenv("ADMIN_USERNAME")
	password := os.Getenv("ADMIN_PASSWORD")
	if username == "" || password == "" {
		return
	}

	if _, err := am.CreateUserWithPassword(username, "", password, []string{"admin"}); err != nil {
		logger.Warn(context.Background(), "Failed to create admin user", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}
	logger.Info(context.Background(), "Admin user created", map[string]interface{}{
		"username": username,
	})
}
