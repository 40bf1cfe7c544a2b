package importer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanHeader(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"canonical passes through", "Nom du jeu", "Nom du jeu"},
		{"empty header is the name column", "", "Nom du jeu"},
		{"BOM stripped", "\uFEFFNom du jeu", "Nom du jeu"},
		{"newline collapsed", "Tout le monde \npeut jouer ?", "Tout le monde peut jouer ?"},
		{"double spaces collapsed", "Tout le monde  peut jouer ?", "Tout le monde peut jouer ?"},
		{"mis-encoded accent mapped", "En Ǹquipe ?", "En équipe ?"},
		{"accentless variant mapped", "Support particulier supplementaire", "Support particulier supplémentaire"},
		{"unknown header kept as-is", "Éditeur", "Éditeur"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanHeader(tt.input))
		})
	}
}

func TestCleanCell(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		want   string
		wantOK bool
	}{
		{"plain value", "Azul", "Azul", true},
		{"whitespace collapsed", "  Les  Aventuriers\ndu Rail ", "Les Aventuriers du Rail", true},
		{"non-breaking space", "30 min", "30 min", true},
		{"en-dash to hyphen", "30–45 min", "30-45 min", true},
		{"empty is null", "", "", false},
		{"empty-set marker is null", "∅", "", false},
		{"slashed O marker is null", "Ø", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := CleanCell(tt.input)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseDuration(t *testing.T) {
	tests := []struct {
		name  string
		input string
		min   *int
		max   *int
	}{
		{"minute range", "30-45 min", intp(30), intp(45)},
		{"single minutes", "45 min", intp(45), intp(45)},
		{"hours convert", "2h", intp(120), intp(120)},
		{"hour range", "1h-2h", intp(60), intp(120)},
		{"mixed units", "1h - 90 min", intp(60), intp(90)},
		{"french range word", "20 à 30 min", intp(20), intp(30)},
		{"tilde range", "20 ~ 30 min", intp(20), intp(30)},
		{"parenthetical ignored", "30 min (environ)", intp(30), intp(30)},
		{"bare number has no unit", "45", intp(45), intp(45)},
		{"no digits", "variable", nil, nil},
		{"empty", "", nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			min, max := ParseDuration(tt.input)
			assert.Equal(t, tt.min, min)
			assert.Equal(t, tt.max, max)
		})
	}
}

func TestParsePlayers(t *testing.T) {
	tests := []struct {
		name  string
		input string
		min   *int
		max   *int
	}{
		{"french range", "2 à 5 joueurs", intp(2), intp(5)},
		{"single count", "4 joueurs", intp(4), intp(4)},
		{"bare number", "4", intp(4), intp(4)},
		{"hyphen range", "3-6", intp(3), intp(6)},
		{"singular word stripped", "1 joueur", intp(1), intp(1)},
		{"no digits", "beaucoup", nil, nil},
		{"empty", "", nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			min, max := ParsePlayers(tt.input)
			assert.Equal(t, tt.min, min)
			assert.Equal(t, tt.max, max)
		})
	}
}

const sampleCSV = "\uFEFF,Temps de jeu,Nombre de joueurs,En Ǹquipe ?,Support particulier supplementaire,Type de jeu,Tout le monde  peut jouer ?\n" +
	"Azul,30-45 min,2 à 4,non,∅,stratégie,oui\n" +
	"Codenames,15 min,2 à 8 joueurs,oui,,ambiance,\n" +
	"Time's Up,,4-12,oui,sablier,ambiance,Non (lecture)\n"

func TestReadGames(t *testing.T) {
	games, err := ReadGames(strings.NewReader(sampleCSV))
	require.NoError(t, err)
	require.Len(t, games, 3)

	azul := games[0]
	assert.Equal(t, "Azul", azul.Name)
	require.NotNil(t, azul.PlayTime)
	assert.Equal(t, "30-45 min", *azul.PlayTime)
	assert.Equal(t, intp(30), azul.MinDurationMinutes)
	assert.Equal(t, intp(45), azul.MaxDurationMinutes)
	assert.Equal(t, intp(2), azul.MinPlayers)
	assert.Equal(t, intp(4), azul.MaxPlayers)
	assert.Nil(t, azul.SpecialSupport)
	assert.Equal(t, "oui", azul.EveryoneCanPlay)

	codenames := games[1]
	assert.Equal(t, intp(2), codenames.MinPlayers)
	assert.Equal(t, intp(8), codenames.MaxPlayers)
	// Blank accessibility defaults to "oui".
	assert.Equal(t, "oui", codenames.EveryoneCanPlay)

	timesUp := games[2]
	assert.Nil(t, timesUp.PlayTime)
	assert.Nil(t, timesUp.MinDurationMinutes)
	require.NotNil(t, timesUp.SpecialSupport)
	assert.Equal(t, "sablier", *timesUp.SpecialSupport)
	assert.Equal(t, "Non (lecture)", timesUp.EveryoneCanPlay)
}

func TestReadGamesErrors(t *testing.T) {
	t.Run("empty file", func(t *testing.T) {
		_, err := ReadGames(strings.NewReader(""))
		assert.Error(t, err)
	})

	t.Run("missing column", func(t *testing.T) {
		_, err := ReadGames(strings.NewReader("Nom du jeu,Temps de jeu\nAzul,30 min\n"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "missing csv columns")
	})

	t.Run("missing game name", func(t *testing.T) {
		csv := ",Temps de jeu,Nombre de joueurs,En équipe ?,Support particulier supplémentaire,Type de jeu,Tout le monde peut jouer ?\n" +
			",30 min,2,non,,stratégie,oui\n"
		_, err := ReadGames(strings.NewReader(csv))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "line 2")
	})
}

func intp(v int) *int {
	return &v
}
