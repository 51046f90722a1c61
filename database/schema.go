package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// EnsurePolicySchema creates the policy tables when they do not exist yet.
func EnsurePolicySchema(ctx context.Context, pool *pgxpool.Pool) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS insurance_policies (
			id UUID PRIMARY KEY,
			title TEXT NOT NULL,
			version TEXT NOT NULL DEFAULT '1.0',
			effective_date TIMESTAMPTZ NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS policy_sections (
			id UUID PRIMARY KEY,
			policy_id UUID NOT NULL REFERENCES insurance_policies(id) ON DELETE CASCADE,
			title TEXT NOT NULL,
			content TEXT NOT NULL,
			section_order INT NOT NULL,
			keywords TEXT[] NOT NULL DEFAULT '{}',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		"CREATE INDEX IF NOT EXISTS idx_policy_sections_policy ON policy_sections(policy_id)",
		"CREATE INDEX IF NOT EXISTS idx_policy_sections_order ON policy_sections(policy_id, section_order)",
		"CREATE INDEX IF NOT EXISTS idx_policy_sections_keywords ON policy_sections USING gin (keywords)",
	}

	for _, stmt := range stmts {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("execute schema statement: %w", err)
		}
	}

	return nil
}
