package stakeholder

import (
	"context"

	"github.com/google/uuid"
)

// StakeholderRepository persists stakeholders
type StakeholderRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Stakeholder, error)
	Create(ctx context.Context, s *Stakeholder) error
	Update(ctx context.Context, s *Stakeholder) error
	// Delete removes the stakeholder together with its requirement and
	// meeting join rows
	Delete(ctx context.Context, id uuid.UUID) error
	ListByProject(ctx context.Context, projectID uuid.UUID) ([]StakeholderView, error)

	// CountInProject returns how many of ids belong to projectID
	CountInProject(ctx context.Context, projectID uuid.UUID, ids []uuid.UUID) (int64, error)
}

// MeetingRepository persists meetings with their join rows
type MeetingRepository interface {
	// Create inserts the meeting, its participants and requirement links
	Create(ctx context.Context, m *Meeting) error
	// FindByID returns shared.ErrNotFound if the meeting does not exist
	FindByID(ctx context.Context, id uuid.UUID) (*MeetingView, error)
	// ListByProject returns meetings ordered by meeting date, newest first
	ListByProject(ctx context.Context, projectID uuid.UUID) ([]MeetingView, error)
}
