package analysis

import (
	"regexp"
	"strings"
)

// DefaultSectionTitle labels body text that appears before any recognized
// heading.
const DefaultSectionTitle = "일반사항"

// Section is one titled, contiguous span of a policy document. Content keeps
// the heading line itself. Keywords are computed from the complete content
// once the section is closed, never from a partial accumulation.
type Section struct {
	Title    string
	Content  string
	Order    int
	Keywords []string
}

// headingPatterns are tried in priority order for every line; the first match
// wins and no later pattern is consulted. Reordering this list changes
// segmentation results.
var headingPatterns = []*regexp.Regexp{
	// 장/편/부 chapter markers, optional 제 prefix
	regexp.MustCompile(`^[제]?\s*(\d+)\s*[장편부]\s*(.+)`),
	regexp.MustCompile(`(?i)^Chapter\s*(\d+)\s*(.+)`),
	// 절 sub-section marker
	regexp.MustCompile(`^[제]?\s*(\d+)\s*절\s*(.+)`),
	// top-level topic words
	regexp.MustCompile(`^(일반사항|보장종목|보상내용|보험금|계약|보험료|해지|분쟁|기타사항)(.+)?`),
	// explicit full chapter heading with a Korean-script title
	regexp.MustCompile(`^제\s*(\d+)\s*[장편부]\s*([가-힣\s]+)`),
	// unnumbered heading ending in a domain noun
	regexp.MustCompile(`^([가-힣\s]{2,})(보험금|계약|약관|특별약관|배상|보상|지급)$`),
	// 조 article headings, parentheses optional (ASCII or full-width)
	regexp.MustCompile(`^[제]?\s*(\d+)\s*조\s*[\(（]?([^）\)]+)[\)）]?`),
}

var (
	controlChars = regexp.MustCompile("[\x00-\x1f\x7f-\u009f]")
	spaceRuns    = regexp.MustCompile(`\s+`)
)

// sanitizeLine strips NUL and other control characters, collapses whitespace
// runs, and trims the edges.
func sanitizeLine(line string) string {
	line = strings.ReplaceAll(line, "\x00", "")
	line = controlChars.ReplaceAllString(line, "")
	line = spaceRuns.ReplaceAllString(line, " ")
	return strings.TrimSpace(line)
}

// Segment splits raw document text into titled sections. A section opens when
// a heading pattern matches (or, for leading body text, under the default
// title) and closes when the next heading matches or the text ends. Closing a
// section computes its keywords from the full accumulated content. Empty text
// yields no sections.
func Segment(text string) []Section {
	sections := make([]Section, 0)
	var current *Section
	order := 0

	closeCurrent := func() {
		if current == nil {
			return
		}
		current.Keywords = ExtractKeywords(current.Content)
		sections = append(sections, *current)
		current = nil
	}

	for _, raw := range strings.Split(text, "\n") {
		line := sanitizeLine(raw)
		if line == "" {
			continue
		}

		if title, ok := matchHeading(line); ok {
			closeCurrent()
			current = &Section{
				Title:   title,
				Content: line + "\n",
				Order:   order,
			}
			order++
			continue
		}

		if current == nil {
			current = &Section{
				Title:   DefaultSectionTitle,
				Content: "",
				Order:   order,
			}
			order++
		}
		current.Content += line + "\n"
	}

	closeCurrent()
	return sections
}

// matchHeading tries the heading patterns in priority order and returns the
// section title for the first match. The descriptive capture (group 2) is
// preferred over the leading number (group 1); if neither captured, the whole
// line becomes the title.
func matchHeading(line string) (string, bool) {
	for _, pattern := range headingPatterns {
		groups := pattern.FindStringSubmatch(line)
		if groups == nil {
			continue
		}
		title := line
		if len(groups) > 2 && groups[2] != "" {
			title = groups[2]
		} else if len(groups) > 1 && groups[1] != "" {
			title = groups[1]
		}
		return title, true
	}
	return "", false
}
