package processor

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/aa196883/boardgame-crud/internal/errors"
	"github.com/aa196883/boardgame-crud/internal/game"
	"github.com/aa196883/boardgame-crud/internal/observability"
	"github.com/aa196883/boardgame-crud/internal/schema"
	"github.com/aa196883/boardgame-crud/internal/sqlguard"
	"github.com/aa196883/boardgame-crud/internal/store"
)

const listCacheTTL = 5 * time.Minute

// GameView is a game record together with its derived display fields.
type GameView struct {
	game.Game
	DurationLabel string   `json:"duration_label"`
	PlayersLabel  string   `json:"players_label"`
	Tags          []string `json:"tags"`
}

// ListResponse is the result of a listing query. Columns and Rows keep
// the order the query produced; Games is only present when the query
// returned the full record shape.
type ListResponse struct {
	Query    string          `json:"query"`
	Origin   Origin          `json:"origin"`
	Count    int             `json:"count"`
	Columns  []string        `json:"columns"`
	Rows     [][]interface{} `json:"rows"`
	Games    []GameView      `json:"games,omitempty"`
	CacheHit bool            `json:"cache_hit"`
}

// GamesProcessor is the main service struct.
type GamesProcessor struct {
	resolver      *Resolver
	validator     *sqlguard.Validator
	store         *store.Store
	cache         *redis.Client
	policy        Policy
	logger        *observability.Logger
	healthChecker *observability.HealthChecker
}

// ProcessorConfig holds configuration for the games processor.
type ProcessorConfig struct {
	// Policy selects the validation treatment for resolved queries.
	// Anything other than PolicyPrefixOnly means the full screen.
	Policy Policy
}

// NewGamesProcessor creates a new processor instance. cache may be nil
// when Redis is not configured.
func NewGamesProcessor(resolver *Resolver, st *store.Store, cache *redis.Client, config ProcessorConfig) *GamesProcessor {
	policy := config.Policy
	if policy != PolicyPrefixOnly {
		policy = PolicyFull
	}

	return &GamesProcessor{
		resolver:  resolver,
		validator: sqlguard.New(),
		store:     st,
		cache:     cache,
		policy:    policy,
		logger:    observability.NewLogger("games-processor"),
	}
}

// SetHealthChecker sets the health checker for the processor.
func (gp *GamesProcessor) SetHealthChecker(healthChecker *observability.HealthChecker) {
	gp.healthChecker = healthChecker
}

// ListGames resolves, screens and executes the listing query for req.
func (gp *GamesProcessor) ListGames(ctx context.Context, req ListRequest) (*ListResponse, error) {
	start := time.Now()

	var errorType string
	var response *ListResponse
	var processingErr error

	defer func() {
		duration := time.Since(start)
		success := processingErr == nil
		cached := response != nil && response.CacheHit
		observability.RecordQueryMetrics(duration, success, cached, errorType)

		if processingErr != nil {
			gp.logger.Error(ctx, "Listing query failed", processingErr, map[string]interface{}{
				"question":    req.Question,
				"duration_ms": duration.Milliseconds(),
				"error_type":  errorType,
			})
		} else {
			gp.logger.Info(ctx, "Listing query processed", map[string]interface{}{
				"origin":      response.Origin,
				"count":       response.Count,
				"duration_ms": duration.Milliseconds(),
				"cache_hit":   cached,
			})
		}
	}()

	cached, cacheErr := gp.getCachedList(ctx, req)
	if cacheErr == nil {
		cached.CacheHit = true
		response = cached
		return cached, nil
	}
	if cacheErr != redis.Nil {
		// A broken cache degrades to a database read.
		gp.logger.Warn(ctx, "Listing cache read failed", map[string]interface{}{
			"error": errors.Wrap(cacheErr, errors.ErrCodeCacheRead, "failed to read cached listing").Error(),
		})
	}

	candidate, err := gp.resolver.Resolve(ctx, req)
	if err != nil {
		errorType = "query_resolution"
		processingErr = err
		return nil, err
	}

	if err := gp.screen(candidate); err != nil {
		errorType = "safety_validation"
		processingErr = err
		observability.GetGlobalMetrics().Inc(observability.MetricQueryRejected, map[string]string{
			"origin": string(candidate.Origin),
		})
		return nil, err
	}

	result, err := gp.store.ExecuteSelect(ctx, candidate.Text)
	if err != nil {
		errorType = "query_execution"
		processingErr = err
		return nil, err
	}

	response = buildListResponse(candidate, result)

	if err := gp.cacheList(ctx, req, response); err != nil {
		gp.logger.Warn(ctx, "Failed to cache listing result", map[string]interface{}{
			"error": err.Error(),
		})
	}

	return response, nil
}

// screen applies the configured validation policy to a candidate.
// Built-in templates are assembled from fixed fragments and never
// contain caller text, so they skip the screen entirely. Model output
// always gets the full check; the prefix-only downgrade covers
// operator-supplied SQL and nothing else.
func (gp *GamesProcessor) screen(candidate CandidateQuery) error {
	if candidate.Origin == OriginDefault {
		return nil
	}
	if gp.policy == PolicyPrefixOnly && candidate.Origin == OriginExplicit {
		return gp.validator.CheckPrefix(candidate.Text)
	}
	return gp.validator.Check(candidate.Text)
}

// GetGame fetches a single game by name.
func (gp *GamesProcessor) GetGame(ctx context.Context, name string) (*GameView, error) {
	g, err := gp.store.GetGame(ctx, name)
	if err != nil {
		return nil, err
	}
	view := newGameView(*g)
	return &view, nil
}

// CreateGame validates the payload and inserts a new game.
func (gp *GamesProcessor) CreateGame(ctx context.Context, payload game.Payload) (*GameView, error) {
	g, err := game.ValidatePayload(payload, nil)
	if err != nil {
		return nil, err
	}
	if err := gp.store.CreateGame(ctx, g); err != nil {
		return nil, err
	}
	gp.invalidateListCache(ctx)

	gp.logger.Info(ctx, "Game created", map[string]interface{}{"name": g.Name})
	view := newGameView(g)
	return &view, nil
}

// UpdateGame merges the payload over the stored record and writes it
// back. The payload may rename the game.
func (gp *GamesProcessor) UpdateGame(ctx context.Context, name string, payload game.Payload) (*GameView, error) {
	existing, err := gp.store.GetGame(ctx, name)
	if err != nil {
		return nil, err
	}

	merged, err := game.ValidatePayload(payload, existing)
	if err != nil {
		return nil, err
	}
	if err := gp.store.UpdateGame(ctx, name, merged); err != nil {
		return nil, err
	}
	gp.invalidateListCache(ctx)

	gp.logger.Info(ctx, "Game updated", map[string]interface{}{"name": merged.Name})
	view := newGameView(merged)
	return &view, nil
}

// DeleteGame removes a game by name.
func (gp *GamesProcessor) DeleteGame(ctx context.Context, name string) error {
	if err := gp.store.DeleteGame(ctx, name); err != nil {
		return err
	}
	gp.invalidateListCache(ctx)

	gp.logger.Info(ctx, "Game deleted", map[string]interface{}{"name": name})
	return nil
}

func newGameView(g game.Game) GameView {
	return GameView{
		Game:          g,
		DurationLabel: game.FormatDuration(g),
		PlayersLabel:  game.FormatPlayers(g),
		Tags:          game.FormatTags(g),
	}
}

// buildListResponse shapes an executed result set. Row values stay in
// SELECT order; the typed view is added when every record column is
// present.
func buildListResponse(candidate CandidateQuery, result *store.ResultSet) *ListResponse {
	response := &ListResponse{
		Query:   candidate.Text,
		Origin:  candidate.Origin,
		Count:   len(result.Rows),
		Columns: result.Columns,
		Rows:    make([][]interface{}, 0, len(result.Rows)),
	}

	for _, row := range result.Rows {
		values := make([]interface{}, len(row))
		for i, cell := range row {
			values[i] = cell.Value
		}
		response.Rows = append(response.Rows, values)
	}

	if hasFullRecordShape(result.Columns) {
		response.Games = make([]GameView, 0, len(result.Rows))
		for _, row := range result.Rows {
			response.Games = append(response.Games, newGameView(game.FromRow(row.Map())))
		}
	}

	return response
}

func hasFullRecordShape(columns []string) bool {
	present := make(map[string]bool, len(columns))
	for _, c := range columns {
		present[c] = true
	}
	for _, col := range schema.Columns {
		if !present[col] {
			return false
		}
	}
	return true
}

// cache generation key; bumped on every write so stale listings expire
// immediately rather than after the TTL.
const listCacheGenKey = "games:list:gen"

func (gp *GamesProcessor) listCacheKey(ctx context.Context, req ListRequest) string {
	gen := "0"
	if gp.cache != nil {
		if v, err := gp.cache.Get(ctx, listCacheGenKey).Result(); err == nil {
			gen = v
		}
	}
	return fmt.Sprintf("games:list:%s:q=%s:sql=%s:sort=%s:dir=%s",
		gen, req.Question, req.SQL, req.SortKey, req.Direction)
}

func (gp *GamesProcessor) getCachedList(ctx context.Context, req ListRequest) (*ListResponse, error) {
	if gp.cache == nil {
		return nil, redis.Nil
	}

	cached, err := gp.cache.Get(ctx, gp.listCacheKey(ctx, req)).Result()
	if err != nil {
		return nil, err
	}

	var response ListResponse
	if err := json.Unmarshal([]byte(cached), &response); err != nil {
		return nil, err
	}
	return &response, nil
}

func (gp *GamesProcessor) cacheList(ctx context.Context, req ListRequest, response *ListResponse) error {
	if gp.cache == nil {
		return nil
	}

	data, err := json.Marshal(response)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeCacheWrite, "failed to encode listing for cache")
	}
	if err := gp.cache.Set(ctx, gp.listCacheKey(ctx, req), data, listCacheTTL).Err(); err != nil {
		return errors.Wrap(err, errors.ErrCodeCacheWrite, "failed to store cached listing")
	}
	return nil
}

func (gp *GamesProcessor) invalidateListCache(ctx context.Context) {
	if gp.cache == nil {
		return
	}
	if err := gp.cache.Incr(ctx, listCacheGenKey).Err(); err != nil {
		gp.logger.Warn(ctx, "Failed to invalidate listing cache", map[string]interface{}{
			"error": err.Error(),
		})
	}
}
