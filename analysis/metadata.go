package analysis

import (
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"
)

// PolicyMetadata describes one ingested policy document.
type PolicyMetadata struct {
	Title         string
	Version       string
	EffectiveDate time.Time
}

const defaultVersion = "1.0"

var pdfExtPattern = regexp.MustCompile(`(?i)\.pdf$`)

// versionPatterns look for 버전/version/개정 labels next to a dotted numeric
// token. Tried in order; the first capture wins.
var versionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`버전[:\s]*([0-9.]+)`),
	regexp.MustCompile(`(?i)version[:\s]*([0-9.]+)`),
	regexp.MustCompile(`개정[:\s]*([0-9.]+)`),
	regexp.MustCompile(`\(([0-9.]+)\s*개정\)`),
	regexp.MustCompile(`제([0-9.]+)\s*차\s*개정`),
}

// datePatterns look for 시행일/시행/개정일 labels adjacent to a
// YYYY[-/년] M[-/월] D[일] date expression.
var datePatterns = []*regexp.Regexp{
	regexp.MustCompile(`시행일자?[:\s]*(\d{4}[-/년]\s*\d{1,2}[-/월]\s*\d{1,2}일?)`),
	regexp.MustCompile(`시행\s*(\d{4}[-/년]\s*\d{1,2}[-/월]\s*\d{1,2}일?)`),
	regexp.MustCompile(`(\d{4}[-/년]\s*\d{1,2}[-/월]\s*\d{1,2}일?)\s*시행`),
	regexp.MustCompile(`개정일자?[:\s]*(\d{4}[-/년]\s*\d{1,2}[-/월]\s*\d{1,2}일?)`),
}

// ExtractMetadata pulls title, version, and effective date from filename and
// document text. Version defaults to "1.0" and the effective date to the
// current time when no pattern produces a usable value.
func ExtractMetadata(filename, text string) PolicyMetadata {
	meta := PolicyMetadata{
		Title:         pdfExtPattern.ReplaceAllString(filename, ""),
		Version:       defaultVersion,
		EffectiveDate: time.Now(),
	}

	for _, pattern := range versionPatterns {
		if groups := pattern.FindStringSubmatch(text); groups != nil {
			meta.Version = groups[1]
			break
		}
	}

	for _, pattern := range datePatterns {
		groups := pattern.FindStringSubmatch(text)
		if groups == nil {
			continue
		}
		if parsed, ok := ParsePolicyDate(groups[1]); ok {
			meta.EffectiveDate = parsed
			break
		}
		// Matched text did not parse as a valid date; try the next pattern.
	}

	return meta
}

// ParsePolicyDate normalizes a matched date expression (unit markers 년/월/일
// stripped, / treated as -) and parses it as a calendar date. The boolean
// reports whether the expression was a valid date.
func ParsePolicyDate(raw string) (time.Time, bool) {
	cleaned := strings.NewReplacer("년", "", "월", "", "일", "", "/", "-").Replace(raw)

	fields := strings.FieldsFunc(cleaned, func(r rune) bool {
		return r == '-' || unicode.IsSpace(r)
	})
	if len(fields) != 3 {
		return time.Time{}, false
	}

	year, err := strconv.Atoi(fields[0])
	if err != nil {
		return time.Time{}, false
	}
	month, err := strconv.Atoi(fields[1])
	if err != nil {
		return time.Time{}, false
	}
	day, err := strconv.Atoi(fields[2])
	if err != nil {
		return time.Time{}, false
	}
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, false
	}

	date := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	// time.Date normalizes overflow, so February 31st would silently become
	// March; reject anything that moved.
	if date.Day() != day || date.Month() != time.Month(month) {
		return time.Time{}, false
	}
	return date, true
}
