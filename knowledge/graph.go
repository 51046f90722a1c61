// Package knowledge mirrors ingested policies into a Neo4j keyword graph so
// that sections sharing vocabulary can be surfaced alongside chat answers.
package knowledge

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

type Policy struct {
	ID       string
	Title    string
	Version  string
	Sections []Section
}

type Section struct {
	ID       string
	Title    string
	Order    int
	Keywords []string
}

// SyncPolicy upserts the policy with its sections and keyword links. Existing
// sections of the same policy are replaced wholesale.
func SyncPolicy(ctx context.Context, driver neo4j.DriverWithContext, policy Policy) error {
	if driver == nil {
		return fmt.Errorf("neo4j driver is nil")
	}

	session := driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		if _, err := tx.Run(ctx, `
			MERGE (p:Policy {id: $id})
			SET p.title = $title,
			    p.version = $version,
			    p.updated_at = datetime()
		`, map[string]any{
			"id":      policy.ID,
			"title":   policy.Title,
			"version": policy.Version,
		}); err != nil {
			return nil, fmt.Errorf("upsert policy node: %w", err)
		}

		if _, err := tx.Run(ctx, `
			MATCH (p:Policy {id: $id})-[:HAS_SECTION]->(s:Section)
			DETACH DELETE s
		`, map[string]any{"id": policy.ID}); err != nil {
			return nil, fmt.Errorf("clear existing sections: %w", err)
		}

		for _, section := range policy.Sections {
			if _, err := tx.Run(ctx, `
				MATCH (p:Policy {id: $policy_id})
				MERGE (s:Section {id: $section_id})
				SET s.title = $section_title,
				    s.order = $section_order
				MERGE (p)-[:HAS_SECTION {order: $section_order}]->(s)
			`, map[string]any{
				"policy_id":     policy.ID,
				"section_id":    section.ID,
				"section_title": section.Title,
				"section_order": section.Order,
			}); err != nil {
				return nil, fmt.Errorf("upsert section: %w", err)
			}

			for _, keyword := range section.Keywords {
				if keyword == "" {
					continue
				}
				if _, err := tx.Run(ctx, `
					MATCH (s:Section {id: $section_id})
					MERGE (k:Keyword {name: $keyword})
					MERGE (s)-[:HAS_KEYWORD]->(k)
				`, map[string]any{
					"section_id": section.ID,
					"keyword":    keyword,
				}); err != nil {
					return nil, fmt.Errorf("upsert keyword: %w", err)
				}
			}
		}

		return nil, nil
	})

	if err == nil {
		if _, cleanupErr := session.Run(ctx, `
			MATCH (k:Keyword)
			WHERE NOT (k)<-[:HAS_KEYWORD]-(:Section)
			DELETE k
		`, nil); cleanupErr != nil {
			err = cleanupErr
		}
	}

	return err
}

// PurgeAll removes every policy, section, and keyword node.
func PurgeAll(ctx context.Context, session neo4j.SessionWithContext) error {
	queries := []string{
		"MATCH (p:Policy) DETACH DELETE p",
		"MATCH (s:Section) DETACH DELETE s",
		"MATCH (k:Keyword) DETACH DELETE k",
	}

	for _, query := range queries {
		result, err := session.Run(ctx, query, nil)
		if err != nil {
			return err
		}
		if _, err := result.Consume(ctx); err != nil {
			return err
		}
	}
	return nil
}
