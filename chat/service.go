package chat

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/innopdf/policy-agent/analysis"
	"github.com/innopdf/policy-agent/llm"
	"github.com/innopdf/policy-agent/store"
)

const (
	// contextSectionLimit caps how many ranked sections feed the prompt.
	contextSectionLimit = 2
	// historyLimit caps how many recent conversation turns reach the LLM.
	historyLimit = 3

	relatedSectionLimit = 5
	snippetLimit        = 500
)

type Service struct {
	store  store.Store
	graph  GraphStore
	llm    llm.Client
	logger *log.Logger
}

func NewService(st store.Store, graph GraphStore, llmClient llm.Client, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.Default()
	}

	return &Service{
		store:  st,
		graph:  graph,
		llm:    llmClient,
		logger: logger,
	}
}

// Chat answers the latest user message in the conversation, grounding the
// answer in the best-matching stored sections.
func (s *Service) Chat(ctx context.Context, messages []llm.Message) (Response, error) {
	return s.chat(ctx, messages, nil)
}

// ChatStream behaves like Chat but forwards answer fragments to streamFn as
// they arrive. Providers without streaming deliver the full answer once.
func (s *Service) ChatStream(ctx context.Context, messages []llm.Message, streamFn func(string) error) (Response, error) {
	return s.chat(ctx, messages, streamFn)
}

func (s *Service) chat(ctx context.Context, messages []llm.Message, streamFn func(string) error) (Response, error) {
	if s.store == nil {
		return Response{}, fmt.Errorf("store is not configured")
	}
	if s.llm == nil {
		return Response{}, fmt.Errorf("llm client is not configured")
	}
	if len(messages) == 0 {
		return Response{}, fmt.Errorf("conversation is empty")
	}

	question := strings.TrimSpace(messages[len(messages)-1].Content)
	if question == "" {
		return Response{}, fmt.Errorf("question cannot be empty")
	}

	records, err := s.store.AllSections(ctx)
	if err != nil {
		return Response{}, fmt.Errorf("fetch sections: %w", err)
	}

	sections := make([]analysis.Section, len(records))
	for i, record := range records {
		sections[i] = record.Section
	}

	matches := analysis.Rank(question, sections)
	s.logger.Printf("ranked %d sections, %d matches for question", len(sections), len(matches))

	contextMatches := matches
	if len(contextMatches) > contextSectionLimit {
		contextMatches = contextMatches[:contextSectionLimit]
	}

	related := s.relatedSections(ctx, contextMatches)

	recent := messages
	if len(recent) > historyLimit {
		recent = recent[len(recent)-historyLimit:]
	}

	prompt := make([]llm.Message, 0, len(recent)+1)
	prompt = append(prompt, llm.Message{Role: llm.RoleSystem, Content: systemPrompt(contextMatches)})
	prompt = append(prompt, recent...)

	answer, err := s.generate(ctx, prompt, streamFn)
	if err != nil {
		return Response{}, err
	}

	return Response{
		Answer:  strings.TrimSpace(answer),
		Sources: buildSources(matches, records),
		Related: related,
	}, nil
}

func (s *Service) generate(ctx context.Context, prompt []llm.Message, streamFn func(string) error) (string, error) {
	if streamFn != nil {
		if streamClient, ok := s.llm.(llm.StreamClient); ok {
			var builder strings.Builder
			err := streamClient.GenerateStream(ctx, prompt, func(chunk string) error {
				if chunk == "" {
					return nil
				}
				builder.WriteString(chunk)
				return streamFn(chunk)
			})
			if err != nil {
				return "", fmt.Errorf("llm stream generate: %w", err)
			}
			return builder.String(), nil
		}
	}

	answer, err := s.llm.Generate(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("llm generate: %w", err)
	}
	if streamFn != nil {
		if err := streamFn(answer); err != nil {
			return "", err
		}
	}
	return answer, nil
}

func (s *Service) relatedSections(ctx context.Context, matches []analysis.Match) []RelatedSection {
	if s.graph == nil {
		return nil
	}

	keywords := make([]string, 0)
	seen := make(map[string]struct{})
	for _, match := range matches {
		for _, keyword := range match.MatchedKeywords {
			if _, ok := seen[keyword]; ok {
				continue
			}
			seen[keyword] = struct{}{}
			keywords = append(keywords, keyword)
		}
	}
	if len(keywords) == 0 {
		return nil
	}

	related, err := s.graph.RelatedSections(ctx, keywords, relatedSectionLimit)
	if err != nil {
		s.logger.Printf("keyword graph lookup error: %v", err)
		return nil
	}
	return related
}

func buildSources(matches []analysis.Match, records []store.SectionRecord) []Source {
	sources := make([]Source, 0, len(matches))
	for _, match := range matches {
		snippet := strings.TrimSpace(match.Section.Content)
		if runes := []rune(snippet); len(runes) > snippetLimit {
			snippet = string(runes[:snippetLimit]) + "..."
		}

		policyTitle := ""
		if match.Index >= 0 && match.Index < len(records) {
			policyTitle = records[match.Index].PolicyTitle
		}

		sources = append(sources, Source{
			Title:           match.Section.Title,
			PolicyTitle:     policyTitle,
			Score:           match.Score,
			MatchedKeywords: match.MatchedKeywords,
			Snippet:         snippet,
		})
	}
	return sources
}

// systemPrompt frames the model as an insurance expert and inlines the
// selected policy sections with their matched keywords.
func systemPrompt(matches []analysis.Match) string {
	var sb strings.Builder
	sb.WriteString("당신은 보험 전문가입니다. 다음과 같은 방식으로 답변해주세요:\n\n")
	sb.WriteString("1. 보험약관 기반 답변:\n")

	if len(matches) > 0 {
		sb.WriteString("다음 보험약관 내용을 참고하여 답변하세요:\n")
		for _, match := range matches {
			sb.WriteString(fmt.Sprintf("\n[%s]\n%s", match.Section.Title, match.Section.Content))
			if len(match.MatchedKeywords) > 0 {
				sb.WriteString("관련 키워드: " + strings.Join(match.MatchedKeywords, ", ") + "\n")
			}
		}
		sb.WriteString("\n약관 내용이 있는 경우, 이를 우선적으로 참고하여 답변하고 출처를 명시하세요.\n")
	} else {
		sb.WriteString("관련 약관 내용이 없습니다.\n")
	}

	sb.WriteString(`
2. 일반 보험 상식 답변:
- 약관에 없는 내용이더라도 일반적인 보험 상식이나 기본적인 보험 개념에 대해서는 답변해주세요.
- 보험 관련 용어는 쉽게 풀어서 설명해주세요.
- 구체적인 보험사나 상품명은 언급하지 마세요.

3. 답변 제한 사항:
- 보험 사기나 불법적인 내용에 대해서는 답변하지 마세요.
- 답변은 한국어로 작성하세요.

4. 답변 형식:
- 약관 내용 인용 시: "[섹션명] 내용..." 형식으로 출처를 표시하세요.
- 일반 상식 답변 시: "일반적으로..." 또는 "보험 업계에서는..." 등으로 시작하세요.`)

	return sb.String()
}
