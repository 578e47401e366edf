package knowledge

import (
	"regexp"
	"sort"
	"strings"
)

const maxKeywords = 10

var nonWord = regexp.MustCompile(`[^\p{L}\p{N}_]+`)

var stopWords = map[string]struct{}{
	"the": {}, "and": {}, "for": {}, "are": {}, "but": {}, "not": {}, "you": {},
	"all": {}, "any": {}, "can": {}, "had": {}, "her": {}, "was": {}, "one": {},
	"our": {}, "out": {}, "day": {}, "get": {}, "has": {}, "him": {}, "his": {},
	"how": {}, "its": {}, "may": {}, "new": {}, "now": {}, "old": {}, "see": {},
	"two": {}, "who": {}, "did": {}, "this": {}, "that": {}, "with": {}, "have": {},
	"from": {}, "they": {}, "will": {}, "your": {}, "what": {}, "when": {},
	"make": {}, "like": {}, "time": {}, "just": {}, "know": {}, "take": {},
	"into": {}, "year": {}, "good": {}, "some": {}, "them": {}, "than": {},
	"then": {}, "also": {}, "more": {}, "about": {}, "their": {}, "there": {},
	"which": {}, "would": {}, "other": {}, "were": {}, "been": {}, "only": {},
}

// Keywords returns up to ten frequent content words, most frequent first.
// Ties keep the order in which words first appear.
func Keywords(content string) []string {
	counts := make(map[string]int)
	var order []string
	for _, tok := range strings.Fields(strings.ToLower(content)) {
		w := nonWord.ReplaceAllString(tok, "")
		if len([]rune(w)) <= 3 {
			continue
		}
		if _, stop := stopWords[w]; stop {
			continue
		}
		if counts[w] == 0 {
			order = append(order, w)
		}
		counts[w]++
	}
	sort.SliceStable(order, func(i, j int) bool { return counts[order[i]] > counts[order[j]] })
	if len(order) > maxKeywords {
		order = order[:maxKeywords]
	}
	return order
}
