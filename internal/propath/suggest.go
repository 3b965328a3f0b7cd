package propath

import "github.com/agnivade/levenshtein"

// Suggest returns the candidate closest to name by edit distance, or the
// empty string when nothing is close enough to be a plausible typo.
func Suggest(name string, candidates []string) string {
	limit := len(name) / 3
	if limit < 2 {
		limit = 2
	}

	best, bestDist := "", limit+1
	for _, c := range candidates {
		d := levenshtein.ComputeDistance(name, c)
		if d < bestDist {
			best, bestDist = c, d
		}
	}
	return best
}

// Hint formats a suggestion as an error message suffix.
func Hint(name string, candidates []string) string {
	if s := Suggest(name, candidates); s != "" {
		return " (did you mean \"" + s + "\"?)"
	}
	return ""
}
