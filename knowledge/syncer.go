package knowledge

import (
	"context"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// Syncer pushes policies into the keyword graph.
type Syncer struct {
	driver neo4j.DriverWithContext
}

func NewSyncer(driver neo4j.DriverWithContext) *Syncer {
	return &Syncer{driver: driver}
}

func (s *Syncer) SyncPolicy(ctx context.Context, policy Policy) error {
	return SyncPolicy(ctx, s.driver, policy)
}
