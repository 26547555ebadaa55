package matching

import (
	"sort"
	"strings"
	"unicode"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// foldMarks strips combining marks so transliterated names compare equal
// regardless of diacritics ("Ḥaddād" vs "Haddad").
var foldMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Normalize lowercases, removes combining marks and collapses interior
// whitespace.
func Normalize(s string) string {
	folded, _, err := transform.String(foldMarks, s)
	if err != nil {
		folded = s
	}
	return strings.Join(strings.Fields(strings.ToLower(folded)), " ")
}

// TokenSort normalizes and reorders name tokens, making comparison
// insensitive to the order name parts were written in.
func TokenSort(s string) string {
	tokens := strings.Fields(Normalize(s))
	sort.Strings(tokens)
	return strings.Join(tokens, " ")
}

// NormalizeID reduces a national identifier to bare digits. Field devices
// record ids with spaces, dashes and occasionally Eastern Arabic numerals.
func NormalizeID(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r >= '٠' && r <= '٩': // Eastern Arabic digits
			b.WriteRune('0' + (r - '٠'))
		}
	}
	return b.String()
}

// Ratio is the normalized Levenshtein similarity of two strings in [0,100].
// Empty input never matches anything, including another empty string.
func Ratio(a, b string) int {
	if a == "" || b == "" {
		return 0
	}
	if a == b {
		return 100
	}
	longest := len([]rune(a))
	if l := len([]rune(b)); l > longest {
		longest = l
	}
	return (longest - fuzzy.LevenshteinDistance(a, b)) * 100 / longest
}
