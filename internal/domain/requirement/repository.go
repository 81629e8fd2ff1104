package requirement

import (
	"context"

	"github.com/google/uuid"
)

// RequirementRepository persists the requirement aggregate
type RequirementRepository interface {
	// FindByID returns shared.ErrNotFound if the requirement does not exist
	FindByID(ctx context.Context, id uuid.UUID) (*Requirement, error)

	// Create inserts a new requirement
	Create(ctx context.Context, r *Requirement) error

	// UpdateWithVersion writes r only if the stored version equals
	// expectedVersion. Returns shared.ErrConcurrencyConflict when another
	// writer got there first, shared.ErrNotFound when the row is gone.
	UpdateWithVersion(ctx context.Context, r *Requirement, expectedVersion int) error

	// Delete removes the requirement with its history, comments,
	// attachments and link rows
	Delete(ctx context.Context, id uuid.UUID) error
}

// QueryRepository builds read projections
type QueryRepository interface {
	// FindDetail loads the full projection: comments and history newest first
	FindDetail(ctx context.Context, id uuid.UUID) (*Detail, error)

	// ListByProject returns summaries newest first. Each carries at most
	// commentLimit of its most recent comments and no history.
	ListByProject(ctx context.Context, projectID uuid.UUID, filter ListFilter, commentLimit int) ([]Detail, error)

	// ListForMatrix returns the project's requirements oldest first with
	// owner, stakeholders, tasks and meetings populated
	ListForMatrix(ctx context.Context, projectID uuid.UUID) ([]Detail, error)
}

// HistoryRepository is append-only
type HistoryRepository interface {
	Append(ctx context.Context, entry *HistoryEntry) error
	ListByRequirement(ctx context.Context, requirementID uuid.UUID) ([]HistoryEntry, error)
	CountByRequirement(ctx context.Context, requirementID uuid.UUID) (int64, error)
}

// LinkRepository manages requirement join rows
type LinkRepository interface {
	// CreateTaskLink returns shared.ErrAlreadyExists if the pair is linked
	CreateTaskLink(ctx context.Context, link *TaskLink) error
	TaskLinkExists(ctx context.Context, requirementID, taskID uuid.UUID) (bool, error)
	// DeleteTaskLink returns shared.ErrNotFound if the pair is not linked
	DeleteTaskLink(ctx context.Context, requirementID, taskID uuid.UUID) error
	CreateStakeholderLinks(ctx context.Context, links []StakeholderLink) error
}

// CommentRepository stores comments
type CommentRepository interface {
	Create(ctx context.Context, c *Comment) error
}
