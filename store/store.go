// Package store persists policies and their sections and serves them back
// for ranking.
package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/innopdf/policy-agent/analysis"
)

// Policy is one ingested policy document.
type Policy struct {
	ID            uuid.UUID
	Title         string
	Version       string
	EffectiveDate time.Time
	CreatedAt     time.Time
}

// SectionRecord is a stored section together with its owning policy.
type SectionRecord struct {
	ID          uuid.UUID
	PolicyID    uuid.UUID
	PolicyTitle string
	Section     analysis.Section
}

// Store is the document-store collaborator. Implementations must propagate
// their own errors unchanged; callers do not retry.
type Store interface {
	CreatePolicy(ctx context.Context, meta analysis.PolicyMetadata) (Policy, error)
	CreateSection(ctx context.Context, policyID uuid.UUID, section analysis.Section) (uuid.UUID, error)
	AllSections(ctx context.Context) ([]SectionRecord, error)
	ListPolicies(ctx context.Context) ([]Policy, error)
}
