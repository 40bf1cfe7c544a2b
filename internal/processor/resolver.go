// Package processor orchestrates the query pipeline: resolve a candidate
// query from the request, screen it for safety, execute it and shape the
// results. It also exposes the HTTP surface.
package processor

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aa196883/boardgame-crud/internal/errors"
	"github.com/aa196883/boardgame-crud/internal/llm"
	"github.com/aa196883/boardgame-crud/internal/schema"
)

// Origin records where a candidate query came from. The screen keys off
// it: model output always gets the full check, operator SQL may be
// downgraded by policy, and the built-in template skips the screen.
type Origin string

const (
	OriginDefault   Origin = "default"
	OriginExplicit  Origin = "explicit"
	OriginGenerated Origin = "generated"
)

// Policy names the validation treatment applied to a candidate query.
type Policy string

const (
	// PolicyFull runs the complete safety screen on every candidate.
	PolicyFull Policy = "full"
	// PolicyPrefixOnly only checks that operator-supplied SQL starts
	// with SELECT. Model output is never downgraded: it gets the full
	// screen under every policy.
	PolicyPrefixOnly Policy = "prefix-only"
)

// CandidateQuery is a query text together with its origin, not yet
// screened for safety.
type CandidateQuery struct {
	Text   string
	Origin Origin
}

// ListRequest captures the query-shaping parameters of a listing call.
type ListRequest struct {
	Question  string
	SQL       string
	SortKey   string
	Direction string
}

// Resolver picks the candidate query for a listing request. Precedence:
// a natural-language question wins over explicit SQL, which wins over
// the default listing template.
type Resolver struct {
	generator llm.Client
	timeout   time.Duration
}

// NewResolver creates a resolver. generator may be nil when no LLM is
// configured; questions then fail with an upstream error.
func NewResolver(generator llm.Client, timeout time.Duration) *Resolver {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Resolver{generator: generator, timeout: timeout}
}

// Resolve produces the candidate query for req.
func (r *Resolver) Resolve(ctx context.Context, req ListRequest) (CandidateQuery, error) {
	if question := strings.TrimSpace(req.Question); question != "" {
		return r.generate(ctx, question)
	}

	if sql := strings.TrimSpace(req.SQL); sql != "" {
		return CandidateQuery{Text: sql, Origin: OriginExplicit}, nil
	}

	return CandidateQuery{
		Text:   DefaultListQuery(req.SortKey, req.Direction),
		Origin: OriginDefault,
	}, nil
}

func (r *Resolver) generate(ctx context.Context, question string) (CandidateQuery, error) {
	if r.generator == nil {
		return CandidateQuery{}, errors.NewUpstreamFailureError(
			fmt.Errorf("no SQL generator configured"))
	}

	genCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	text, err := r.generator.GenerateSQL(genCtx, question)
	if err != nil {
		return CandidateQuery{}, errors.NewUpstreamFailureError(err)
	}
	if strings.TrimSpace(text) == "" {
		return CandidateQuery{}, errors.NewEmptyGeneratedError()
	}

	return CandidateQuery{Text: text, Origin: OriginGenerated}, nil
}

// DefaultListQuery builds the default listing statement for a sort key
// and direction. Both inputs are normalized to enum values before they
// touch the template, so no request text ever reaches the SQL.
func DefaultListQuery(sortKey, direction string) string {
	clause := buildSortClause(schema.NormalizeSortKey(sortKey), schema.NormalizeDirection(direction))
	return fmt.Sprintf("SELECT * FROM %s %s", schema.TableName, clause)
}

func buildSortClause(sortKey, direction string) string {
	dirSQL := "ASC"
	if direction == schema.DirDesc {
		dirSQL = "DESC"
	}

	switch sortKey {
	case schema.SortByPlayers:
		return fmt.Sprintf(
			"ORDER BY COALESCE(joueurs_min, joueurs_max) %s, COALESCE(joueurs_max, joueurs_min) %s, nom_du_jeu COLLATE NOCASE ASC",
			dirSQL, dirSQL)
	case schema.SortByDuration:
		return fmt.Sprintf(
			"ORDER BY COALESCE(duree_min_minutes, duree_max_minutes) %s, COALESCE(duree_max_minutes, duree_min_minutes) %s, nom_du_jeu COLLATE NOCASE ASC",
			dirSQL, dirSQL)
	case schema.SortByType:
		return fmt.Sprintf(
			"ORDER BY type_de_jeu COLLATE NOCASE %s, nom_du_jeu COLLATE NOCASE ASC", dirSQL)
	case schema.SortByComplexite:
		return fmt.Sprintf(
			"ORDER BY en_equipe COLLATE NOCASE %s, nom_du_jeu COLLATE NOCASE ASC", dirSQL)
	}

	return fmt.Sprintf("ORDER BY nom_du_jeu COLLATE NOCASE %s", dirSQL)
}
