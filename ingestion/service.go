// Package ingestion runs the document pipeline: text extraction, metadata and
// section analysis, persistence, and keyword-graph sync.
package ingestion

import (
	"context"
	"fmt"
	"log"

	"github.com/innopdf/policy-agent/analysis"
	"github.com/innopdf/policy-agent/extraction"
	"github.com/innopdf/policy-agent/knowledge"
	"github.com/innopdf/policy-agent/store"
)

// GraphSyncer mirrors an ingested policy into the keyword graph.
type GraphSyncer interface {
	SyncPolicy(ctx context.Context, policy knowledge.Policy) error
}

type Service struct {
	store     store.Store
	extractor extraction.TextExtractor
	graph     GraphSyncer
	logger    *log.Logger
}

// Result summarizes one ingested document.
type Result struct {
	Policy       store.Policy
	SectionCount int
}

func NewService(st store.Store, extractor extraction.TextExtractor, graph GraphSyncer, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.Default()
	}

	return &Service{
		store:     st,
		extractor: extractor,
		graph:     graph,
		logger:    logger,
	}
}

// IngestFile extracts text from the payload, segments it into sections, and
// persists the policy. A failed section insert is logged and skipped; the
// remaining sections are still stored.
func (s *Service) IngestFile(ctx context.Context, filename string, data []byte) (*Result, error) {
	if s.store == nil {
		return nil, fmt.Errorf("store not configured")
	}
	if s.extractor == nil {
		return nil, fmt.Errorf("extractor not configured")
	}

	text, err := s.extractor.Extract(ctx, data, filename)
	if err != nil {
		return nil, fmt.Errorf("extract text: %w", err)
	}
	s.logger.Printf("extracted %d characters from %s", len(text), filename)

	meta := analysis.ExtractMetadata(filename, text)
	sections := analysis.Segment(text)
	s.logger.Printf("segmented %s into %d sections (version %s)", filename, len(sections), meta.Version)

	policy, err := s.store.CreatePolicy(ctx, meta)
	if err != nil {
		return nil, fmt.Errorf("create policy: %w", err)
	}

	graphSections := make([]knowledge.Section, 0, len(sections))
	stored := 0
	for _, section := range sections {
		sectionID, err := s.store.CreateSection(ctx, policy.ID, section)
		if err != nil {
			s.logger.Printf("store section %q: %v", section.Title, err)
			continue
		}
		stored++
		graphSections = append(graphSections, knowledge.Section{
			ID:       sectionID.String(),
			Title:    section.Title,
			Order:    section.Order,
			Keywords: section.Keywords,
		})
	}

	if s.graph != nil {
		if err := s.graph.SyncPolicy(ctx, knowledge.Policy{
			ID:       policy.ID.String(),
			Title:    policy.Title,
			Version:  policy.Version,
			Sections: graphSections,
		}); err != nil {
			return nil, fmt.Errorf("sync keyword graph: %w", err)
		}
	}

	s.logger.Printf("ingested %s (%d of %d sections stored)", filename, stored, len(sections))
	return &Result{Policy: policy, SectionCount: stored}, nil
}
