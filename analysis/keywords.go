// Package analysis contains the lexical core of the policy agent: keyword
// extraction, section segmentation, document metadata extraction, and
// relevance ranking. Everything here is a pure function over in-memory data
// and is safe to call from concurrent requests.
package analysis

import (
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"
)

const maxKeywords = 10

// importantTermBonus is added on every occurrence of an important term, on
// top of the normal increment: one occurrence counts as weight 4.
const importantTermBonus = 3

// stopwords are common Korean function words excluded from keyword counts.
var stopwords = map[string]struct{}{
	"및": {}, "또는": {}, "등": {}, "것": {}, "수": {},
	"그": {}, "이": {}, "저": {}, "때문": {},
	"이런": {}, "저런": {}, "하다": {}, "되다": {},
}

// importantTerms are domain terms that receive extra weight when counting.
var importantTerms = map[string]struct{}{
	"보험금": {}, "보상": {}, "면책": {}, "계약": {},
	"해지": {}, "납입": {}, "사고": {}, "보장": {},
}

var nonWordPattern = regexp.MustCompile(`[^\p{L}\p{N}\s]+`)

// ExtractKeywords returns up to 10 salient terms from the given text, ordered
// by descending weighted frequency. Ties keep first-appearance order.
// Tokens shorter than two characters and stopwords are ignored.
func ExtractKeywords(text string) []string {
	cleaned := nonWordPattern.ReplaceAllString(text, " ")

	counts := make(map[string]int)
	order := make([]string, 0)

	for _, word := range strings.Fields(cleaned) {
		if utf8.RuneCountInString(word) < 2 {
			continue
		}
		if _, stop := stopwords[word]; stop {
			continue
		}

		if _, seen := counts[word]; !seen {
			order = append(order, word)
		}
		counts[word]++
		if _, important := importantTerms[word]; important {
			counts[word] += importantTermBonus
		}
	}

	// Stable sort over first-seen order so equal counts keep their
	// original relative position.
	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})

	if len(order) > maxKeywords {
		order = order[:maxKeywords]
	}
	return order
}
