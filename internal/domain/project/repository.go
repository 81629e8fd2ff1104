package project

import (
	"context"

	"github.com/google/uuid"
)

// ProjectRepository reads projects and their membership lists
type ProjectRepository interface {
	// FindByID returns shared.ErrNotFound if the project does not exist
	FindByID(ctx context.Context, id uuid.UUID) (*Project, error)

	// FindWorkspaceMember returns shared.ErrNotFound if userID is not a member
	FindWorkspaceMember(ctx context.Context, workspaceID uuid.UUID, userID string) (*WorkspaceMember, error)

	// IsProjectMember reports whether userID is in the project's member list
	IsProjectMember(ctx context.Context, projectID uuid.UUID, userID string) (bool, error)
}

// TaskRepository reads tasks
type TaskRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Task, error)
}

// UserRepository stores principals synchronized from the identity provider
type UserRepository interface {
	FindByID(ctx context.Context, id string) (*User, error)
	FindByIDs(ctx context.Context, ids []string) ([]User, error)

	// Upsert inserts the user or refreshes name, email and image
	Upsert(ctx context.Context, user *User) error
}
