package ports

import (
	"context"

	"dispatch-board/internal/features/mapview/domain"
)

// SnapshotRepository persists the latest map snapshot so a freshly loaded
// console can paint the last known state before its first live fetch.
// This is a Secondary Port (Driven Port).
type SnapshotRepository interface {
	// Publish stores the snapshot, replacing any previous one.
	Publish(ctx context.Context, snapshot domain.MapSnapshot) error

	// Load returns the stored snapshot, or (nil, nil) when none exists.
	Load(ctx context.Context) (*domain.MapSnapshot, error)
}
