package processor

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aa196883/boardgame-crud/internal/errors"
)

// fakeGenerator is a canned llm.Client for resolver and processor tests.
type fakeGenerator struct {
	sql   string
	err   error
	calls int
}

func (f *fakeGenerator) GenerateSQL(ctx context.Context, question string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.sql, nil
}

func TestResolvePrecedence(t *testing.T) {
	gen := &fakeGenerator{sql: "SELECT nom_du_jeu FROM jeux"}
	resolver := NewResolver(gen, time.Second)

	tests := []struct {
		name       string
		req        ListRequest
		wantOrigin Origin
		wantText   string
	}{
		{
			name:       "question wins over explicit SQL",
			req:        ListRequest{Question: "quels jeux ?", SQL: "SELECT * FROM jeux"},
			wantOrigin: OriginGenerated,
			wantText:   "SELECT nom_du_jeu FROM jeux",
		},
		{
			name:       "explicit SQL wins over default",
			req:        ListRequest{SQL: "SELECT type_de_jeu FROM jeux"},
			wantOrigin: OriginExplicit,
			wantText:   "SELECT type_de_jeu FROM jeux",
		},
		{
			name:       "blank question falls through to SQL",
			req:        ListRequest{Question: "   ", SQL: "SELECT type_de_jeu FROM jeux"},
			wantOrigin: OriginExplicit,
			wantText:   "SELECT type_de_jeu FROM jeux",
		},
		{
			name:       "empty request uses the default template",
			req:        ListRequest{},
			wantOrigin: OriginDefault,
			wantText:   "SELECT * FROM jeux ORDER BY nom_du_jeu COLLATE NOCASE ASC",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			candidate, err := resolver.Resolve(context.Background(), tt.req)
			require.NoError(t, err)
			assert.Equal(t, tt.wantOrigin, candidate.Origin)
			assert.Equal(t, tt.wantText, candidate.Text)
		})
	}
}

func TestResolveWithoutGenerator(t *testing.T) {
	resolver := NewResolver(nil, time.Second)

	_, err := resolver.Resolve(context.Background(), ListRequest{Question: "quels jeux ?"})
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeUpstreamFailure, errors.CodeOf(err))

	// Without a question the resolver never needs the generator.
	candidate, err := resolver.Resolve(context.Background(), ListRequest{})
	require.NoError(t, err)
	assert.Equal(t, OriginDefault, candidate.Origin)
}

func TestResolveGeneratorFailure(t *testing.T) {
	gen := &fakeGenerator{err: fmt.Errorf("api unavailable")}
	resolver := NewResolver(gen, time.Second)

	_, err := resolver.Resolve(context.Background(), ListRequest{Question: "quels jeux ?"})
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeUpstreamFailure, errors.CodeOf(err))
}

func TestResolveEmptyGeneratedSQL(t *testing.T) {
	gen := &fakeGenerator{sql: "   \n"}
	resolver := NewResolver(gen, time.Second)

	_, err := resolver.Resolve(context.Background(), ListRequest{Question: "quels jeux ?"})
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeEmptyGenerated, errors.CodeOf(err))
}

func TestDefaultListQuery(t *testing.T) {
	tests := []struct {
		name      string
		sortKey   string
		direction string
		want      string
	}{
		{
			name: "defaults to name ascending",
			want: "SELECT * FROM jeux ORDER BY nom_du_jeu COLLATE NOCASE ASC",
		},
		{
			name:      "players descending uses both bounds",
			sortKey:   "players",
			direction: "desc",
			want:      "SELECT * FROM jeux ORDER BY COALESCE(joueurs_min, joueurs_max) DESC, COALESCE(joueurs_max, joueurs_min) DESC, nom_du_jeu COLLATE NOCASE ASC",
		},
		{
			name:    "duration uses minute bounds",
			sortKey: "duration",
			want:    "SELECT * FROM jeux ORDER BY COALESCE(duree_min_minutes, duree_max_minutes) ASC, COALESCE(duree_max_minutes, duree_min_minutes) ASC, nom_du_jeu COLLATE NOCASE ASC",
		},
		{
			name:    "type sorts case-insensitively with name tiebreak",
			sortKey: "type",
			want:    "SELECT * FROM jeux ORDER BY type_de_jeu COLLATE NOCASE ASC, nom_du_jeu COLLATE NOCASE ASC",
		},
		{
			name:    "complexite sorts on team play",
			sortKey: "complexite",
			want:    "SELECT * FROM jeux ORDER BY en_equipe COLLATE NOCASE ASC, nom_du_jeu COLLATE NOCASE ASC",
		},
		{
			name:      "unknown inputs fall back to the default",
			sortKey:   "rating",
			direction: "sideways",
			want:      "SELECT * FROM jeux ORDER BY nom_du_jeu COLLATE NOCASE ASC",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DefaultListQuery(tt.sortKey, tt.direction))
		})
	}
}
