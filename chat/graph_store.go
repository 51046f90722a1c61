package chat

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

type GraphStore interface {
	RelatedSections(ctx context.Context, keywords []string, limit int) ([]RelatedSection, error)
}

type Neo4jGraphStore struct {
	driver neo4j.DriverWithContext
}

func NewNeo4jGraphStore(driver neo4j.DriverWithContext) *Neo4jGraphStore {
	return &Neo4jGraphStore{driver: driver}
}

// RelatedSections returns sections linked to the given keywords, ordered by
// how many of them they share.
func (s *Neo4jGraphStore) RelatedSections(ctx context.Context, keywords []string, limit int) ([]RelatedSection, error) {
	if s.driver == nil {
		return nil, fmt.Errorf("neo4j driver is nil")
	}
	if len(keywords) == 0 {
		return nil, nil
	}
	if limit <= 0 {
		limit = 5
	}

	session := s.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	result, err := session.Run(ctx, `
		MATCH (p:Policy)-[:HAS_SECTION]->(s:Section)-[:HAS_KEYWORD]->(k:Keyword)
		WHERE k.name IN $keywords
		WITH p, s, count(DISTINCT k) AS shared
		RETURN s.title AS title, p.title AS policyTitle, shared
		ORDER BY shared DESC, s.title
		LIMIT $limit
	`, map[string]any{"keywords": keywords, "limit": limit})
	if err != nil {
		return nil, fmt.Errorf("run related sections query: %w", err)
	}

	related := make([]RelatedSection, 0, limit)
	for result.Next(ctx) {
		record := result.Record()
		title, _ := record.Get("title")
		policyTitle, _ := record.Get("policyTitle")
		shared, _ := record.Get("shared")

		item := RelatedSection{}
		if v, ok := title.(string); ok {
			item.Title = v
		}
		if v, ok := policyTitle.(string); ok {
			item.PolicyTitle = v
		}
		switch v := shared.(type) {
		case int64:
			item.SharedKeywords = int(v)
		case int32:
			item.SharedKeywords = int(v)
		}
		if item.Title == "" {
			continue
		}
		related = append(related, item)
	}

	if err := result.Err(); err != nil {
		return nil, fmt.Errorf("related sections result error: %w", err)
	}

	return related, nil
}

var _ GraphStore = (*Neo4jGraphStore)(nil)
