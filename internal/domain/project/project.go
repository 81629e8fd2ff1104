package project

import (
	"github.com/google/uuid"
	"github.com/reqtrace/backend/internal/domain/shared"
)

// Project is a unit of work within a workspace
type Project struct {
	shared.BaseEntity
	WorkspaceID uuid.UUID
	Name        string
	Description string
	TeamLead    *string
}

// IsLead reports whether userID is the designated project lead
func (p *Project) IsLead(userID string) bool {
	return p.TeamLead != nil && *p.TeamLead != "" && *p.TeamLead == userID
}

// ProjectMember links a user to a project
type ProjectMember struct {
	ID        uuid.UUID
	ProjectID uuid.UUID
	UserID    string
}
