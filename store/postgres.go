package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/innopdf/policy-agent/analysis"
)

type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) CreatePolicy(ctx context.Context, meta analysis.PolicyMetadata) (Policy, error) {
	if s.pool == nil {
		return Policy{}, fmt.Errorf("postgres pool is nil")
	}

	policy := Policy{
		ID:            uuid.New(),
		Title:         meta.Title,
		Version:       meta.Version,
		EffectiveDate: meta.EffectiveDate,
	}

	err := s.pool.QueryRow(ctx, `
		INSERT INTO insurance_policies (id, title, version, effective_date)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at
	`, policy.ID, policy.Title, policy.Version, policy.EffectiveDate).Scan(&policy.CreatedAt)
	if err != nil {
		return Policy{}, fmt.Errorf("insert policy: %w", err)
	}

	return policy, nil
}

func (s *PostgresStore) CreateSection(ctx context.Context, policyID uuid.UUID, section analysis.Section) (uuid.UUID, error) {
	if s.pool == nil {
		return uuid.Nil, fmt.Errorf("postgres pool is nil")
	}

	sectionID := uuid.New()
	if _, err := s.pool.Exec(ctx, `
		INSERT INTO policy_sections (id, policy_id, title, content, section_order, keywords)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, sectionID, policyID, section.Title, section.Content, section.Order, section.Keywords); err != nil {
		return uuid.Nil, fmt.Errorf("insert section %q: %w", section.Title, err)
	}

	return sectionID, nil
}

func (s *PostgresStore) AllSections(ctx context.Context) ([]SectionRecord, error) {
	if s.pool == nil {
		return nil, fmt.Errorf("postgres pool is nil")
	}

	rows, err := s.pool.Query(ctx, `
		SELECT s.id, s.policy_id, p.title, s.title, s.content, s.section_order, s.keywords
		FROM policy_sections s
		JOIN insurance_policies p ON p.id = s.policy_id
		ORDER BY p.created_at, s.section_order
	`)
	if err != nil {
		return nil, fmt.Errorf("query sections: %w", err)
	}
	defer rows.Close()

	records := make([]SectionRecord, 0)
	for rows.Next() {
		var record SectionRecord
		if err := rows.Scan(
			&record.ID,
			&record.PolicyID,
			&record.PolicyTitle,
			&record.Section.Title,
			&record.Section.Content,
			&record.Section.Order,
			&record.Section.Keywords,
		); err != nil {
			return nil, fmt.Errorf("scan section: %w", err)
		}
		records = append(records, record)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate sections: %w", rows.Err())
	}

	return records, nil
}

func (s *PostgresStore) ListPolicies(ctx context.Context) ([]Policy, error) {
	if s.pool == nil {
		return nil, fmt.Errorf("postgres pool is nil")
	}

	rows, err := s.pool.Query(ctx, `
		SELECT id, title, version, effective_date, created_at
		FROM insurance_policies
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("query policies: %w", err)
	}
	defer rows.Close()

	policies := make([]Policy, 0)
	for rows.Next() {
		var policy Policy
		if err := rows.Scan(&policy.ID, &policy.Title, &policy.Version, &policy.EffectiveDate, &policy.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan policy: %w", err)
		}
		policies = append(policies, policy)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate policies: %w", rows.Err())
	}

	return policies, nil
}

var _ Store = (*PostgresStore)(nil)
