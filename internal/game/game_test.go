package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/aa196883/boardgame-crud/internal/errors"
)

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

func TestValidatePayloadCreate(t *testing.T) {
	payload := Payload{
		"name":                 "Citadelles",
		"play_time":            "30-60 min",
		"min_duration_minutes": float64(30),
		"max_duration_minutes": float64(60),
		"min_players":          float64(2),
		"max_players":          float64(8),
		"game_type":            "stratégie",
	}

	g, err := ValidatePayload(payload, nil)
	require.NoError(t, err)

	assert.Equal(t, "Citadelles", g.Name)
	require.NotNil(t, g.MinDurationMinutes)
	assert.Equal(t, 30, *g.MinDurationMinutes)
	require.NotNil(t, g.MaxPlayers)
	assert.Equal(t, 8, *g.MaxPlayers)
	assert.Equal(t, "oui", g.EveryoneCanPlay, "accessibility defaults to oui")
	assert.Nil(t, g.TeamPlay)
}

func TestValidatePayloadRequiresName(t *testing.T) {
	cases := []Payload{
		{},
		{"name": ""},
		{"name": "   "},
	}
	for _, payload := range cases {
		_, err := ValidatePayload(payload, nil)
		require.Error(t, err)
		assert.Equal(t, apperrors.ErrCodeMissingRequired, apperrors.CodeOf(err))
	}
}

func TestValidatePayloadRejectsUnknownFields(t *testing.T) {
	_, err := ValidatePayload(Payload{"name": "Uno", "publisher": "Mattel"}, nil)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeInvalidInput, apperrors.CodeOf(err))
	assert.Contains(t, err.Error(), "publisher")
}

func TestValidatePayloadRejectsBadTypes(t *testing.T) {
	cases := []Payload{
		{"name": "Uno", "min_players": "deux"},
		{"name": "Uno", "min_players": 2.5},
		{"name": "Uno", "game_type": 7},
		{"name": 42},
	}
	for _, payload := range cases {
		_, err := ValidatePayload(payload, nil)
		require.Error(t, err)
		assert.Equal(t, apperrors.ErrCodeInvalidInput, apperrors.CodeOf(err))
	}
}

func TestValidatePayloadMerge(t *testing.T) {
	existing := Game{
		Name:            "Dixit",
		GameType:        strPtr("ambiance"),
		MinPlayers:      intPtr(3),
		MaxPlayers:      intPtr(6),
		EveryoneCanPlay: "oui",
	}

	g, err := ValidatePayload(Payload{
		"max_players": float64(8),
		"game_type":   nil,
	}, &existing)
	require.NoError(t, err)

	assert.Equal(t, "Dixit", g.Name, "absent fields keep the stored value")
	require.NotNil(t, g.MinPlayers)
	assert.Equal(t, 3, *g.MinPlayers)
	require.NotNil(t, g.MaxPlayers)
	assert.Equal(t, 8, *g.MaxPlayers)
	assert.Nil(t, g.GameType, "explicit null clears the field")
}

func TestValidatePayloadNullAccessibilityResets(t *testing.T) {
	existing := Game{Name: "Dixit", EveryoneCanPlay: "non"}
	g, err := ValidatePayload(Payload{"everyone_can_play": nil}, &existing)
	require.NoError(t, err)
	assert.Equal(t, "oui", g.EveryoneCanPlay)
}

func TestRowRoundTrip(t *testing.T) {
	row := map[string]interface{}{
		"nom_du_jeu":               "Les Aventuriers du Rail",
		"temps_de_jeu":             "30-60 min",
		"duree_min_minutes":        int64(30),
		"duree_max_minutes":        int64(60),
		"nombre_de_joueurs":        "2 à 5",
		"joueurs_min":              int64(2),
		"joueurs_max":              int64(5),
		"en_equipe":                nil,
		"support_particulier":      nil,
		"type_de_jeu":              "stratégie",
		"tout_le_monde_peut_jouer": "oui",
	}

	g := FromRow(row)
	assert.Equal(t, "Les Aventuriers du Rail", g.Name)
	require.NotNil(t, g.MinDurationMinutes)
	assert.Equal(t, 30, *g.MinDurationMinutes)
	assert.Nil(t, g.TeamPlay)
	assert.Equal(t, "oui", g.EveryoneCanPlay)

	params := g.ToParams()
	assert.Equal(t, "Les Aventuriers du Rail", params["nom_du_jeu"])
	assert.Equal(t, 30, params["duree_min_minutes"])
	assert.Nil(t, params["en_equipe"])
	assert.Equal(t, "oui", params["tout_le_monde_peut_jouer"])
}

func TestFromRowDefaultsAccessibility(t *testing.T) {
	g := FromRow(map[string]interface{}{"nom_du_jeu": "Uno"})
	assert.Equal(t, "oui", g.EveryoneCanPlay)
}

func TestFormatDuration(t *testing.T) {
	cases := []struct {
		name string
		game Game
		want string
	}{
		{"both bounds", Game{MinDurationMinutes: intPtr(30), MaxDurationMinutes: intPtr(60)}, "30-60 min"},
		{"equal bounds", Game{MinDurationMinutes: intPtr(45), MaxDurationMinutes: intPtr(45)}, "45 min"},
		{"min only", Game{MinDurationMinutes: intPtr(90)}, "90 min et +"},
		{"max only", Game{MaxDurationMinutes: intPtr(20)}, "jusqu'à 20 min"},
		{"free text fallback", Game{PlayTime: strPtr("une soirée")}, "une soirée"},
		{"nothing", Game{}, "Durée inconnue"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, FormatDuration(tc.game))
		})
	}
}

func TestFormatPlayers(t *testing.T) {
	cases := []struct {
		name string
		game Game
		want string
	}{
		{"range", Game{MinPlayers: intPtr(2), MaxPlayers: intPtr(5)}, "2 à 5 joueurs"},
		{"exact", Game{MinPlayers: intPtr(4), MaxPlayers: intPtr(4)}, "4 joueurs"},
		{"open ended", Game{MinPlayers: intPtr(3)}, "3 joueurs et +"},
		{"nothing", Game{}, "Nombre de joueurs inconnu"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, FormatPlayers(tc.game))
		})
	}
}

func TestFormatTags(t *testing.T) {
	g := Game{
		TeamPlay:        strPtr("Oui"),
		SpecialSupport:  strPtr("plateau"),
		EveryoneCanPlay: "oui",
	}
	assert.Equal(t, []string{"en équipe", "plateau", "tout public"}, FormatTags(g))

	assert.Empty(t, FormatTags(Game{EveryoneCanPlay: "non"}))
}
