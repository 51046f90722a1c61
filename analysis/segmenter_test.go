package analysis_test

import (
	"testing"

	"github.com/innopdf/policy-agent/analysis"
)

func TestSegmentChapterHeadings(t *testing.T) {
	sections := analysis.Segment("제1장 총칙\n내용1\n제2장 보상\n내용2")

	if len(sections) != 2 {
		t.Fatalf("expected 2 sections, got %d", len(sections))
	}

	first := sections[0]
	if first.Title != "총칙" || first.Order != 0 {
		t.Fatalf("unexpected first section: %+v", first)
	}
	if first.Content != "제1장 총칙\n내용1\n" {
		t.Fatalf("unexpected first content: %q", first.Content)
	}

	second := sections[1]
	if second.Title != "보상" || second.Order != 1 {
		t.Fatalf("unexpected second section: %+v", second)
	}
	if second.Content != "제2장 보상\n내용2\n" {
		t.Fatalf("unexpected second content: %q", second.Content)
	}
}

func TestSegmentLeadingBodyTextOpensDefaultSection(t *testing.T) {
	sections := analysis.Segment("안내문 첫 줄\n안내문 둘째 줄\n제1장 총칙\n본문")

	if len(sections) != 2 {
		t.Fatalf("expected 2 sections, got %d", len(sections))
	}
	if sections[0].Title != analysis.DefaultSectionTitle {
		t.Fatalf("expected default title, got %q", sections[0].Title)
	}
	if sections[0].Content != "안내문 첫 줄\n안내문 둘째 줄\n" {
		t.Fatalf("unexpected default section content: %q", sections[0].Content)
	}
	if sections[1].Title != "총칙" || sections[1].Order != 1 {
		t.Fatalf("unexpected second section: %+v", sections[1])
	}
}

func TestSegmentHeadingVariants(t *testing.T) {
	cases := []struct {
		name  string
		line  string
		title string
	}{
		{"chapter english", "Chapter 3 General Provisions", "General Provisions"},
		{"subsection", "제 2 절 보험금의 지급", "보험금의 지급"},
		{"topic word alone", "보험료", "보험료"},
		{"topic word with trailer", "기타사항 안내", " 안내"},
		{"article with parens", "제15조 (보험금의 청구)", "보험금의 청구"},
		{"article full-width parens", "제3조（계약의 성립）", "계약의 성립"},
		// The greedy Korean-phrase prefix leaves only the shortest domain
		// noun for the suffix group.
		{"domain noun suffix", "무배당 암 특별약관", "약관"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			sections := analysis.Segment(tc.line)
			if len(sections) != 1 {
				t.Fatalf("expected 1 section, got %d", len(sections))
			}
			if sections[0].Title != tc.title {
				t.Fatalf("expected title %q, got %q", tc.title, sections[0].Title)
			}
		})
	}
}

func TestSegmentPatternPriorityIsFixed(t *testing.T) {
	// 보험금 is both a topic word and a valid domain-noun suffix; the topic
	// pattern sits earlier in the list, so it wins and keeps the whole word
	// as the title.
	sections := analysis.Segment("보험금")
	if len(sections) != 1 || sections[0].Title != "보험금" {
		t.Fatalf("expected topic-word match, got %+v", sections)
	}

	// A numbered chapter line also looks like a domain-noun heading; the
	// chapter pattern is tried first and captures the descriptive title.
	sections = analysis.Segment("제1장 보상내용")
	if len(sections) != 1 || sections[0].Title != "보상내용" {
		t.Fatalf("expected chapter match, got %+v", sections)
	}
}

func TestSegmentKeywordsComputedOnClose(t *testing.T) {
	// The body line must not start with a topic word or end with a domain
	// noun, or it would open a section of its own.
	sections := analysis.Segment("제1장 총칙\n지급 절차 안내 보험금 보험금 문서")

	if len(sections) != 1 {
		t.Fatalf("expected 1 section, got %d", len(sections))
	}
	if len(sections[0].Keywords) == 0 {
		t.Fatal("expected keywords to be populated on close")
	}
	if sections[0].Keywords[0] != "보험금" {
		t.Fatalf("expected 보험금 as top keyword, got %v", sections[0].Keywords)
	}
}

func TestSegmentTopicWordLineOpensNewSection(t *testing.T) {
	// A body line that starts with a topic word is a heading, even
	// mid-section.
	sections := analysis.Segment("제1장 총칙\n보험금 지급 안내")

	if len(sections) != 2 {
		t.Fatalf("expected 2 sections, got %d", len(sections))
	}
	if sections[1].Title != " 지급 안내" || sections[1].Order != 1 {
		t.Fatalf("unexpected second section: %+v", sections[1])
	}
}

func TestSegmentSanitizesLines(t *testing.T) {
	sections := analysis.Segment("제1장\x00  총칙\x07\n본문   내용\n")

	if len(sections) != 1 {
		t.Fatalf("expected 1 section, got %d", len(sections))
	}
	if sections[0].Content != "제1장 총칙\n본문 내용\n" {
		t.Fatalf("unexpected sanitized content: %q", sections[0].Content)
	}
}

func TestSegmentEmptyText(t *testing.T) {
	if got := analysis.Segment(""); len(got) != 0 {
		t.Fatalf("expected no sections for empty text, got %+v", got)
	}
	if got := analysis.Segment("\n\n  \n"); len(got) != 0 {
		t.Fatalf("expected no sections for blank text, got %+v", got)
	}
}

func TestSegmentOrderMatchesDiscoveryRank(t *testing.T) {
	text := "제1장 총칙\n제2장 보상\n제3장 해지\n제15조 (보험금의 청구)"
	sections := analysis.Segment(text)

	if len(sections) != 4 {
		t.Fatalf("expected 4 sections, got %d", len(sections))
	}
	for i, section := range sections {
		if section.Order != i {
			t.Fatalf("section %d has order %d", i, section.Order)
		}
	}
}
