package extract

import (
	"regexp"
	"strings"

	"github.com/ddextract/internal/markup"
)

// RatioPlaceholder is returned for abilities without any description.
const RatioPlaceholder = "Voir description"

var (
	scalingClause = regexp.MustCompile(`(?i)\(\+\s*[\d.,]+\s*%?\s*(?:AP|AD|bonus AD|AD total|PV max|PV manquants|Mana|armor|MR)[^)]*\)`)
	damageClause  = regexp.MustCompile(`(?i)(?:inflige|deals|deal|dégâts|damage)[^.]{0,120}`)
)

const (
	damageClauseMax = 120
	excerptMax      = 100
)

// Ratio extracts a short scaling summary from an ability description.
// It tries, in order: every parenthesized scaling clause joined by " + ",
// the text following the first damage keyword, then a leading excerpt.
// It never fails and never returns an empty string.
func Ratio(description string) string {
	clean := markup.Clean(description)
	if clean == "" {
		return RatioPlaceholder
	}

	if clauses := scalingClause.FindAllString(clean, -1); len(clauses) > 0 {
		return strings.Join(clauses, " + ")
	}

	if m := damageClause.FindString(clean); m != "" {
		s, _ := markup.Truncate(m, damageClauseMax)
		return s
	}

	s, cut := markup.Truncate(clean, excerptMax)
	if cut {
		s += "…"
	}
	return s
}
