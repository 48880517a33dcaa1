package news

import (
	"regexp"
	"strings"
)

var (
	parenthetical = regexp.MustCompile(`\([^)]*\)`)
	nonAlnum      = regexp.MustCompile(`[^a-z0-9\s]`)
	whitespace    = regexp.MustCompile(`\s+`)
)

// NormalizeTitle lowercases title and drops parenthetical segments and
// punctuation, collapsing runs of whitespace. Non-Latin letters are dropped too.
func NormalizeTitle(title string) string {
	s := strings.ToLower(title)
	s = parenthetical.ReplaceAllString(s, " ")
	s = nonAlnum.ReplaceAllString(s, " ")
	s = whitespace.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

func tokenSet(title string) map[string]struct{} {
	fields := strings.Fields(NormalizeTitle(title))
	set := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		set[f] = struct{}{}
	}
	return set
}

// TitleSimilarity is |A∩B| / min(|A|, |B|) over the normalized token sets of
// a and b. It is 0 when either set is empty.
func TitleSimilarity(a, b string) float64 {
	return overlap(tokenSet(a), tokenSet(b))
}

func overlap(a, b map[string]struct{}) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	if len(b) < len(a) {
		a, b = b, a
	}
	shared := 0
	for tok := range a {
		if _, ok := b[tok]; ok {
			shared++
		}
	}
	return float64(shared) / float64(len(a))
}
