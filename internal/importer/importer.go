// Package importer loads the board-game CSV export into the database.
// The source spreadsheet is hand-maintained, so headers and cells arrive
// with inconsistent whitespace, broken accents and ad-hoc null markers.
package importer

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/aa196883/boardgame-crud/internal/game"
	"github.com/aa196883/boardgame-crud/internal/observability"
	"github.com/aa196883/boardgame-crud/internal/store"
)

// Canonical CSV header names.
const (
	colName     = "Nom du jeu"
	colPlayTime = "Temps de jeu"
	colPlayers  = "Nombre de joueurs"
	colTeamPlay = "En équipe ?"
	colSupport  = "Support particulier supplémentaire"
	colGameType = "Type de jeu"
	colEveryone = "Tout le monde peut jouer ?"
)

// headerNormalization maps the header spellings seen in real exports to
// their canonical form. Mis-encoded accents included.
var headerNormalization = map[string]string{
	"":                                   colName,
	colName:                              colName,
	colPlayTime:                          colPlayTime,
	colPlayers:                           colPlayers,
	colTeamPlay:                          colTeamPlay,
	"En Ǹquipe ?":                        colTeamPlay,
	colSupport:                           colSupport,
	"Support particulier supplementaire": colSupport,
	"Support particulier supplǸmentaire": colSupport,
	colGameType:                          colGameType,
	colEveryone:                          colEveryone,
}

// nullMarkers are cell values that mean "no data".
var nullMarkers = map[string]bool{
	"":  true,
	"∅": true,
	"Ø": true,
}

var (
	whitespaceRe  = regexp.MustCompile(`\s+`)
	parentheticRe = regexp.MustCompile(`\(.*?\)`)
	digitsRe      = regexp.MustCompile(`(\d+)`)
)

var cellReplacer = strings.NewReplacer(
	" ", " ",
	"\r", " ",
	"\n", " ",
	"–", "-",
)

var headerReplacer = strings.NewReplacer(
	"\uFEFF", "",
	"\r", " ",
	"\n", " ",
)

var rangeReplacer = strings.NewReplacer(
	"–", "-",
	"à", "-",
	"~", "-",
)

// CleanHeader collapses whitespace in a raw header and maps known
// spelling variants to the canonical name.
func CleanHeader(value string) string {
	sanitized := headerReplacer.Replace(value)
	sanitized = strings.TrimSpace(whitespaceRe.ReplaceAllString(sanitized, " "))
	if canonical, ok := headerNormalization[sanitized]; ok {
		return canonical
	}
	return sanitized
}

// CleanCell normalizes a raw cell value. ok is false when the cell is a
// null marker.
func CleanCell(value string) (cleaned string, ok bool) {
	sanitized := cellReplacer.Replace(value)
	sanitized = strings.TrimSpace(whitespaceRe.ReplaceAllString(sanitized, " "))
	if nullMarkers[sanitized] {
		return "", false
	}
	return sanitized, true
}

// ParseDuration extracts duration bounds in minutes from free text like
// "30-45 min", "1h30" or "2h (environ)". A bare number inherits the unit
// mentioned anywhere in the text; hours convert to minutes.
func ParseDuration(value string) (min, max *int) {
	if value == "" {
		return nil, nil
	}

	text := strings.ToLower(value)
	text = parentheticRe.ReplaceAllString(text, "")
	text = rangeReplacer.Replace(text)

	unitHint := ""
	if strings.Contains(text, "min") {
		unitHint = "min"
	} else if strings.Contains(text, "h") {
		unitHint = "h"
	}

	var minutes []int
	for _, token := range strings.Split(text, "-") {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}
		match := digitsRe.FindStringSubmatch(token)
		if match == nil {
			continue
		}
		number, _ := strconv.Atoi(match[1])

		unit := unitHint
		if strings.Contains(token, "h") {
			unit = "h"
		} else if strings.Contains(token, "min") {
			unit = "min"
		}
		if unit == "h" {
			number *= 60
		}
		minutes = append(minutes, number)
	}

	return bounds(minutes)
}

// ParsePlayers extracts player-count bounds from free text like
// "2 à 5 joueurs" or "4".
func ParsePlayers(value string) (min, max *int) {
	if value == "" {
		return nil, nil
	}

	text := strings.ToLower(value)
	text = strings.ReplaceAll(text, "joueurs", "")
	text = strings.ReplaceAll(text, "joueur", "")
	text = rangeReplacer.Replace(text)

	var counts []int
	for _, token := range strings.Split(text, "-") {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}
		match := digitsRe.FindStringSubmatch(token)
		if match == nil {
			continue
		}
		number, _ := strconv.Atoi(match[1])
		counts = append(counts, number)
	}

	return bounds(counts)
}

func bounds(values []int) (*int, *int) {
	if len(values) == 0 {
		return nil, nil
	}
	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return &lo, &hi
}

// ReadGames parses the CSV stream into game records. The header row is
// required; a missing game name is an error rather than a skipped row.
func ReadGames(r io.Reader) ([]game.Game, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	rawHeaders, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("csv file is empty")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read csv header: %w", err)
	}

	index := make(map[string]int, len(rawHeaders))
	for i, raw := range rawHeaders {
		index[CleanHeader(raw)] = i
	}

	expected := []string{colName, colPlayTime, colPlayers, colTeamPlay, colSupport, colGameType, colEveryone}
	var missing []string
	for _, name := range expected {
		if _, ok := index[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing csv columns: %s", strings.Join(missing, ", "))
	}

	cell := func(row []string, column string) string {
		pos := index[column]
		if pos >= len(row) {
			return ""
		}
		return row[pos]
	}

	var games []game.Game
	for line := 2; ; line++ {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		name, ok := CleanCell(cell(row, colName))
		if !ok {
			return nil, fmt.Errorf("line %d: game name is missing", line)
		}

		g := game.Game{Name: name}
		g.PlayTime = optional(CleanCell(cell(row, colPlayTime)))
		g.PlayerCount = optional(CleanCell(cell(row, colPlayers)))
		g.TeamPlay = optional(CleanCell(cell(row, colTeamPlay)))
		g.SpecialSupport = optional(CleanCell(cell(row, colSupport)))
		g.GameType = optional(CleanCell(cell(row, colGameType)))
		g.EveryoneCanPlay = normalizeEveryone(cell(row, colEveryone))

		if g.PlayTime != nil {
			g.MinDurationMinutes, g.MaxDurationMinutes = ParseDuration(*g.PlayTime)
		}
		if g.PlayerCount != nil {
			g.MinPlayers, g.MaxPlayers = ParsePlayers(*g.PlayerCount)
		}

		games = append(games, g)
	}

	return games, nil
}

// normalizeEveryone defaults accessibility to "oui" when unspecified.
func normalizeEveryone(value string) string {
	cleaned, ok := CleanCell(value)
	if !ok {
		return "oui"
	}
	if strings.ToLower(cleaned) == "oui" {
		return "oui"
	}
	return cleaned
}

func optional(value string, ok bool) *string {
	if !ok {
		return nil
	}
	return &value
}

// Import writes the parsed games into the store, one insert per record.
func Import(ctx context.Context, st *store.Store, games []game.Game) (int, error) {
	logger := observability.NewLogger("importer")

	for i, g := range games {
		if err := st.CreateGame(ctx, g); err != nil {
			return i, fmt.Errorf("failed to import %q: %w", g.Name, err)
		}
	}

	logger.Info(ctx, "Import complete", map[string]interface{}{
		"count": len(games),
	})
	return len(games), nil
}
