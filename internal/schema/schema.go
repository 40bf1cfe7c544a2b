// Package schema holds the fixed shape of the games dataset: the single
// permitted table, its column allowlist, and the sort keys the default
// listing template accepts.
package schema

// TableName is the one table this service is allowed to read.
const TableName = "jeux"

// NameColumn is the unique key API clients address games by.
const NameColumn = "nom_du_jeu"

// Columns lists every column identifier a query may reference, in the
// order they appear in the table definition. The row id is internal and
// deliberately absent.
var Columns = []string{
	"nom_du_jeu",
	"temps_de_jeu",
	"duree_min_minutes",
	"duree_max_minutes",
	"nombre_de_joueurs",
	"joueurs_min",
	"joueurs_max",
	"en_equipe",
	"support_particulier",
	"type_de_jeu",
	"tout_le_monde_peut_jouer",
}

// ColumnMap translates API field names to database column names.
var ColumnMap = map[string]string{
	"name":                 "nom_du_jeu",
	"play_time":            "temps_de_jeu",
	"min_duration_minutes": "duree_min_minutes",
	"max_duration_minutes": "duree_max_minutes",
	"player_count":         "nombre_de_joueurs",
	"min_players":          "joueurs_min",
	"max_players":          "joueurs_max",
	"team_play":            "en_equipe",
	"special_support":      "support_particulier",
	"game_type":            "type_de_jeu",
	"everyone_can_play":    "tout_le_monde_peut_jouer",
}

// AllowedColumns is the column allowlist as a set.
var AllowedColumns = func() map[string]bool {
	set := make(map[string]bool, len(Columns))
	for _, c := range Columns {
		set[c] = true
	}
	return set
}()

// SQLKeywords are the query keywords the validator recognizes and
// discards before checking identifiers against the allowlist.
var SQLKeywords = map[string]bool{
	"select": true, "from": true, "where": true, "and": true, "or": true,
	"order": true, "by": true, "asc": true, "desc": true, "like": true,
	"in": true, "between": true, "is": true, "null": true, "not": true,
	"group": true, "having": true, "limit": true, "case": true,
	"when": true, "then": true, "end": true, "else": true, "as": true,
	"distinct": true, "on": true, "inner": true, "left": true,
	"right": true, "join": true, "outer": true,
}

// ForbiddenKeywords are statement keywords that must never appear in a
// candidate query, whole-word, anywhere outside string literals.
var ForbiddenKeywords = []string{
	"insert", "update", "delete", "drop", "alter", "create",
}

// Sort keys accepted by the default listing template.
const (
	SortByName       = "name"
	SortByPlayers    = "players"
	SortByDuration   = "duration"
	SortByType       = "type"
	SortByComplexite = "complexite"

	DefaultSortKey = SortByName

	DirAsc  = "asc"
	DirDesc = "desc"
)

var validSortKeys = map[string]bool{
	SortByName:       true,
	SortByPlayers:    true,
	SortByDuration:   true,
	SortByType:       true,
	SortByComplexite: true,
}

// NormalizeSortKey maps any unknown sort key to the default instead of
// erroring; only enum values may ever reach the SQL template.
func NormalizeSortKey(key string) string {
	if validSortKeys[key] {
		return key
	}
	return DefaultSortKey
}

// NormalizeDirection maps anything that is not "desc" to "asc".
func NormalizeDirection(dir string) string {
	if dir == DirDesc {
		return DirDesc
	}
	return DirAsc
}
