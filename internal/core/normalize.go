package core

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/JonMunkholm/talent/internal/extract"
)

// NormalizeName trims s and title-cases each word: the first letter upper
// case, the rest lower case. "  maría JOSÉ " becomes "María José".
func NormalizeName(s string) string {
	// Casers carry state, so each call builds its own.
	return cases.Title(language.Und).String(strings.TrimSpace(s))
}

// coherenceWarnings reports tier and experience combinations that are
// allowed but unusual.
func coherenceWarnings(tier extract.Tier, years int) []string {
	var warnings []string
	if tier == extract.TierJunior && years > 5 {
		warnings = append(warnings, "junior candidate with more than 5 years of experience")
	}
	if tier == extract.TierSenior && years < 2 {
		warnings = append(warnings, "senior candidate with fewer than 2 years of experience")
	}
	return warnings
}
