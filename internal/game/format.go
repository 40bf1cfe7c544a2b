package game

import (
	"fmt"
	"strings"
)

// FormatDuration renders the duration bounds as a short human label,
// falling back to the free-text play time when no bounds are stored.
func FormatDuration(g Game) string {
	min, max := g.MinDurationMinutes, g.MaxDurationMinutes
	switch {
	case min != nil && max != nil && *min == *max:
		return fmt.Sprintf("%d min", *min)
	case min != nil && max != nil:
		return fmt.Sprintf("%d-%d min", *min, *max)
	case min != nil:
		return fmt.Sprintf("%d min et +", *min)
	case max != nil:
		return fmt.Sprintf("jusqu'à %d min", *max)
	}
	if g.PlayTime != nil && strings.TrimSpace(*g.PlayTime) != "" {
		return strings.TrimSpace(*g.PlayTime)
	}
	return "Durée inconnue"
}

// FormatPlayers renders the player-count bounds as a short human label.
func FormatPlayers(g Game) string {
	min, max := g.MinPlayers, g.MaxPlayers
	switch {
	case min != nil && max != nil && *min == *max:
		return fmt.Sprintf("%d joueurs", *min)
	case min != nil && max != nil:
		return fmt.Sprintf("%d à %d joueurs", *min, *max)
	case min != nil:
		return fmt.Sprintf("%d joueurs et +", *min)
	case max != nil:
		return fmt.Sprintf("jusqu'à %d joueurs", *max)
	}
	if g.PlayerCount != nil && strings.TrimSpace(*g.PlayerCount) != "" {
		return strings.TrimSpace(*g.PlayerCount)
	}
	return "Nombre de joueurs inconnu"
}

// FormatTags derives the badge list shown next to a game: team play,
// special support and accessibility.
func FormatTags(g Game) []string {
	tags := []string{}
	if g.TeamPlay != nil && strings.EqualFold(strings.TrimSpace(*g.TeamPlay), "oui") {
		tags = append(tags, "en équipe")
	}
	if g.SpecialSupport != nil && strings.TrimSpace(*g.SpecialSupport) != "" {
		tags = append(tags, strings.TrimSpace(*g.SpecialSupport))
	}
	if strings.EqualFold(strings.TrimSpace(g.EveryoneCanPlay), "oui") {
		tags = append(tags, "tout public")
	}
	return tags
}
