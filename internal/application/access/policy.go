package access

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/reqtrace/backend/internal/domain/project"
	"github.com/reqtrace/backend/internal/domain/shared"
)

// ErrProjectNotFound is returned when the project id does not resolve
var ErrProjectNotFound = shared.NewDomainError("PROJECT_NOT_FOUND", "Project not found")

// PolicyResolver computes a principal's capabilities on a project
type PolicyResolver struct {
	projects project.ProjectRepository
}

// NewPolicyResolver creates a new PolicyResolver
func NewPolicyResolver(projects project.ProjectRepository) *PolicyResolver {
	return &PolicyResolver{projects: projects}
}

// Resolve returns the principal's capabilities on projectID, or
// ErrProjectNotFound. It never writes.
func (r *PolicyResolver) Resolve(ctx context.Context, principalID string, projectID uuid.UUID) (*project.Capabilities, error) {
	_, caps, err := r.ResolveProject(ctx, principalID, projectID)
	return caps, err
}

// ResolveProject is Resolve that also hands back the loaded project
func (r *PolicyResolver) ResolveProject(ctx context.Context, principalID string, projectID uuid.UUID) (*project.Project, *project.Capabilities, error) {
	p, err := r.projects.FindByID(ctx, projectID)
	if err != nil {
		if shared.IsNotFound(err) {
			return nil, nil, ErrProjectNotFound
		}
		return nil, nil, err
	}

	caps := &project.Capabilities{
		PrincipalID: principalID,
		ProjectLead: p.IsLead(principalID),
	}

	member, err := r.projects.FindWorkspaceMember(ctx, p.WorkspaceID, principalID)
	switch {
	case err == nil:
		caps.WorkspaceMember = true
		caps.WorkspaceAdmin = member.IsAdmin()
	case errors.Is(err, shared.ErrNotFound):
	default:
		return nil, nil, err
	}

	caps.ProjectMember, err = r.projects.IsProjectMember(ctx, p.ID, principalID)
	if err != nil {
		return nil, nil, err
	}
	return p, caps, nil
}
