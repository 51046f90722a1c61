package analysis

import (
	"regexp"
	"sort"
	"strings"
)

const maxMatches = 3

// Match is the result of ranking one section against a query. Index is the
// section's position in the slice given to Rank, so callers can map a match
// back to their own record.
type Match struct {
	Section         Section
	Index           int
	Score           int
	MatchedKeywords []string
}

// keyPhrases are coverage statements whose presence in a section's content
// raises its context relevance, gated on the query mentioning 보상 or 보험금.
var keyPhrases = []string{
	"보험금을 지급하지 않습니다",
	"보상하지 않습니다",
	"보험금을 지급합니다",
	"보상합니다",
	"계약을 해지할 수 있습니다",
}

var amountPattern = regexp.MustCompile(`\d+%|\d+원`)

// Rank scores every section against the query and returns the top 3 by
// descending score. The sort is stable: exact ties keep the input order.
func Rank(query string, sections []Section) []Match {
	queryKeywords := ExtractKeywords(query)

	matches := make([]Match, 0, len(sections))
	for i, section := range sections {
		matches = append(matches, Match{
			Section:         section,
			Index:           i,
			Score:           relevanceScore(section, queryKeywords, query),
			MatchedKeywords: matchedKeywords(section, queryKeywords),
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})

	if len(matches) > maxMatches {
		matches = matches[:maxMatches]
	}
	return matches
}

// relevanceScore sums four independent components: keyword overlap, title
// containment, context relevance, and position weight. All additive, no
// normalization.
func relevanceScore(section Section, queryKeywords []string, query string) int {
	score := 0

	score += len(matchedKeywords(section, queryKeywords)) * 10

	if strings.Contains(section.Title, query) {
		score += 50
	}

	score += contextRelevance(section.Content, query) * 5

	if positionWeight := 10 - section.Order; positionWeight > 0 {
		score += positionWeight
	}

	return score
}

// contextRelevance scores content against the shape of the question: coverage
// key phrases (only when the query mentions 보상 or 보험금), plus bonuses for
// when/how-much/how question forms.
func contextRelevance(content, query string) int {
	score := 0

	if strings.Contains(query, "보상") || strings.Contains(query, "보험금") {
		for _, phrase := range keyPhrases {
			if strings.Contains(content, phrase) {
				score += 15
			}
		}
	}

	if strings.Contains(query, "언제") && strings.Contains(content, "경우") {
		score += 10
	}
	if strings.Contains(query, "얼마") && amountPattern.MatchString(content) {
		score += 10
	}
	if strings.Contains(query, "어떻게") && strings.Contains(content, "절차") {
		score += 10
	}

	return score
}

// matchedKeywords returns the section keywords that also appear in the query
// keywords, preserving section keyword order. Both lists come from
// ExtractKeywords and hold at most 10 deduplicated entries.
func matchedKeywords(section Section, queryKeywords []string) []string {
	matched := make([]string, 0)
	for _, keyword := range section.Keywords {
		for _, queryKeyword := range queryKeywords {
			if keyword == queryKeyword {
				matched = append(matched, keyword)
				break
			}
		}
	}
	return matched
}
