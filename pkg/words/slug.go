package words

import "strings"

var slugStrip = strings.NewReplacer("'", "", "(", "", ")", "")

// Slugify derives the URL identifier of a word: lowercased, trimmed, spaces
// replaced by hyphens, apostrophes and parentheses removed. The result is
// trimmed again so that whitespace exposed by stripping cannot survive, which
// keeps Slugify idempotent.
func Slugify(word string) string {
	s := strings.TrimSpace(strings.ToLower(word))
	s = strings.ReplaceAll(s, " ", "-")
	return strings.TrimSpace(slugStrip.Replace(s))
}
