// Package game holds the typed representation of a board-game record and
// the payload validation shared by the API and the importer.
package game

import (
	"fmt"
	"sort"
	"strings"

	"github.com/aa196883/boardgame-crud/internal/errors"
	"github.com/aa196883/boardgame-crud/internal/schema"
)

// Game is one record of the games table, using API field names.
type Game struct {
	Name               string  `json:"name"`
	PlayTime           *string `json:"play_time"`
	MinDurationMinutes *int    `json:"min_duration_minutes"`
	MaxDurationMinutes *int    `json:"max_duration_minutes"`
	PlayerCount        *string `json:"player_count"`
	MinPlayers         *int    `json:"min_players"`
	MaxPlayers         *int    `json:"max_players"`
	TeamPlay           *string `json:"team_play"`
	SpecialSupport     *string `json:"special_support"`
	GameType           *string `json:"game_type"`
	EveryoneCanPlay    string  `json:"everyone_can_play"`
}

// FromRow builds a Game from a column->value mapping keyed by database
// column names, as produced by the executor.
func FromRow(row map[string]interface{}) Game {
	g := Game{
		Name:               asString(row[schema.ColumnMap["name"]]),
		PlayTime:           asStringPtr(row[schema.ColumnMap["play_time"]]),
		MinDurationMinutes: asIntPtr(row[schema.ColumnMap["min_duration_minutes"]]),
		MaxDurationMinutes: asIntPtr(row[schema.ColumnMap["max_duration_minutes"]]),
		PlayerCount:        asStringPtr(row[schema.ColumnMap["player_count"]]),
		MinPlayers:         asIntPtr(row[schema.ColumnMap["min_players"]]),
		MaxPlayers:         asIntPtr(row[schema.ColumnMap["max_players"]]),
		TeamPlay:           asStringPtr(row[schema.ColumnMap["team_play"]]),
		SpecialSupport:     asStringPtr(row[schema.ColumnMap["special_support"]]),
		GameType:           asStringPtr(row[schema.ColumnMap["game_type"]]),
	}
	if everyone := asStringPtr(row[schema.ColumnMap["everyone_can_play"]]); everyone != nil {
		g.EveryoneCanPlay = *everyone
	} else {
		g.EveryoneCanPlay = "oui"
	}
	return g
}

// ToParams maps the record back to database column names for inserts and
// updates.
func (g Game) ToParams() map[string]interface{} {
	return map[string]interface{}{
		schema.ColumnMap["name"]:                 g.Name,
		schema.ColumnMap["play_time"]:            ptrValue(g.PlayTime),
		schema.ColumnMap["min_duration_minutes"]: intPtrValue(g.MinDurationMinutes),
		schema.ColumnMap["max_duration_minutes"]: intPtrValue(g.MaxDurationMinutes),
		schema.ColumnMap["player_count"]:         ptrValue(g.PlayerCount),
		schema.ColumnMap["min_players"]:          intPtrValue(g.MinPlayers),
		schema.ColumnMap["max_players"]:          intPtrValue(g.MaxPlayers),
		schema.ColumnMap["team_play"]:            ptrValue(g.TeamPlay),
		schema.ColumnMap["special_support"]:      ptrValue(g.SpecialSupport),
		schema.ColumnMap["game_type"]:            ptrValue(g.GameType),
		schema.ColumnMap["everyone_can_play"]:    g.EveryoneCanPlay,
	}
}

// Payload is a partial record as submitted by API clients. Pointer fields
// distinguish "absent" from "explicitly null".
type Payload map[string]interface{}

// ValidatePayload checks an incoming payload and merges it over an optional
// existing record. Unknown fields are rejected, the name is required and
// the accessibility flag defaults to "oui".
func ValidatePayload(payload Payload, existing *Game) (Game, error) {
	var unknown []string
	for key := range payload {
		if _, ok := schema.ColumnMap[key]; !ok {
			unknown = append(unknown, key)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return Game{}, errors.NewInvalidInputError(
			strings.Join(unknown, ", "), "unknown field")
	}

	var g Game
	if existing != nil {
		g = *existing
	}

	if v, ok := payload["name"]; ok {
		name, isString := v.(string)
		if !isString {
			return Game{}, errors.NewInvalidInputError("name", "must be a string")
		}
		g.Name = strings.TrimSpace(name)
	}
	if g.Name == "" {
		return Game{}, errors.New(errors.ErrCodeMissingRequired,
			"Field 'name' is required and must be a non-empty string")
	}

	var err error
	if g.PlayTime, err = mergeString(payload, "play_time", g.PlayTime); err != nil {
		return Game{}, err
	}
	if g.PlayerCount, err = mergeString(payload, "player_count", g.PlayerCount); err != nil {
		return Game{}, err
	}
	if g.TeamPlay, err = mergeString(payload, "team_play", g.TeamPlay); err != nil {
		return Game{}, err
	}
	if g.SpecialSupport, err = mergeString(payload, "special_support", g.SpecialSupport); err != nil {
		return Game{}, err
	}
	if g.GameType, err = mergeString(payload, "game_type", g.GameType); err != nil {
		return Game{}, err
	}
	if g.MinDurationMinutes, err = mergeInt(payload, "min_duration_minutes", g.MinDurationMinutes); err != nil {
		return Game{}, err
	}
	if g.MaxDurationMinutes, err = mergeInt(payload, "max_duration_minutes", g.MaxDurationMinutes); err != nil {
		return Game{}, err
	}
	if g.MinPlayers, err = mergeInt(payload, "min_players", g.MinPlayers); err != nil {
		return Game{}, err
	}
	if g.MaxPlayers, err = mergeInt(payload, "max_players", g.MaxPlayers); err != nil {
		return Game{}, err
	}

	if v, ok := payload["everyone_can_play"]; ok {
		switch val := v.(type) {
		case nil:
			g.EveryoneCanPlay = "oui"
		case string:
			g.EveryoneCanPlay = val
		default:
			return Game{}, errors.NewInvalidInputError("everyone_can_play", "must be a string")
		}
	}
	if g.EveryoneCanPlay == "" {
		g.EveryoneCanPlay = "oui"
	}

	return g, nil
}

func mergeString(payload Payload, key string, current *string) (*string, error) {
	v, ok := payload[key]
	if !ok {
		return current, nil
	}
	switch val := v.(type) {
	case nil:
		return nil, nil
	case string:
		return &val, nil
	default:
		return nil, errors.NewInvalidInputError(key, "must be a string or null")
	}
}

func mergeInt(payload Payload, key string, current *int) (*int, error) {
	v, ok := payload[key]
	if !ok {
		return current, nil
	}
	switch val := v.(type) {
	case nil:
		return nil, nil
	case int:
		return &val, nil
	case float64:
		// JSON numbers decode as float64
		if val != float64(int(val)) {
			return nil, errors.NewInvalidInputError(key, "must be an integer")
		}
		i := int(val)
		return &i, nil
	default:
		return nil, errors.NewInvalidInputError(key, fmt.Sprintf("'%v' is not a valid integer", v))
	}
}

func asString(v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}
	if b, ok := v.([]byte); ok {
		return string(b)
	}
	return ""
}

func asStringPtr(v interface{}) *string {
	switch val := v.(type) {
	case nil:
		return nil
	case string:
		return &val
	case []byte:
		s := string(val)
		return &s
	default:
		s := fmt.Sprintf("%v", val)
		return &s
	}
}

func asIntPtr(v interface{}) *int {
	switch val := v.(type) {
	case nil:
		return nil
	case int64:
		i := int(val)
		return &i
	case int:
		return &val
	case float64:
		i := int(val)
		return &i
	default:
		return nil
	}
}

func ptrValue(p *string) interface{} {
	if p == nil {
		return nil
	}
	return *p
}

func intPtrValue(p *int) interface{} {
	if p == nil {
		return nil
	}
	return *p
}
