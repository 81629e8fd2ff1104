package access

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/reqtrace/backend/internal/domain/project"
	"github.com/reqtrace/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProjects struct {
	project *project.Project
	members map[string]project.MemberRole
	pm      map[string]bool
	err     error
}

func (f *fakeProjects) FindByID(_ context.Context, id uuid.UUID) (*project.Project, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.project == nil || f.project.ID != id {
		return nil, shared.ErrNotFound
	}
	return f.project, nil
}

func (f *fakeProjects) FindWorkspaceMember(_ context.Context, workspaceID uuid.UUID, userID string) (*project.WorkspaceMember, error) {
	role, ok := f.members[userID]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return &project.WorkspaceMember{WorkspaceID: workspaceID, UserID: userID, Role: role}, nil
}

func (f *fakeProjects) IsProjectMember(_ context.Context, _ uuid.UUID, userID string) (bool, error) {
	return f.pm[userID], nil
}

func newFixture() *fakeProjects {
	lead := "lead"
	p := &project.Project{WorkspaceID: uuid.New(), Name: "Apollo", TeamLead: &lead}
	p.ID = uuid.New()
	return &fakeProjects{
		project: p,
		members: map[string]project.MemberRole{
			"admin":  project.MemberRoleAdmin,
			"viewer": project.MemberRoleMember,
		},
		pm: map[string]bool{"dev": true},
	}
}

func TestResolve_Flags(t *testing.T) {
	repo := newFixture()
	r := NewPolicyResolver(repo)
	ctx := context.Background()

	tests := []struct {
		principal string
		want      project.Capabilities
	}{
		{"admin", project.Capabilities{PrincipalID: "admin", WorkspaceMember: true, WorkspaceAdmin: true}},
		{"viewer", project.Capabilities{PrincipalID: "viewer", WorkspaceMember: true}},
		{"dev", project.Capabilities{PrincipalID: "dev", ProjectMember: true}},
		{"lead", project.Capabilities{PrincipalID: "lead", ProjectLead: true}},
		{"stranger", project.Capabilities{PrincipalID: "stranger"}},
	}
	for _, tt := range tests {
		t.Run(tt.principal, func(t *testing.T) {
			caps, err := r.Resolve(ctx, tt.principal, repo.project.ID)
			require.NoError(t, err)
			assert.Equal(t, tt.want, *caps)
		})
	}
}

func TestResolve_ProjectNotFound(t *testing.T) {
	r := NewPolicyResolver(newFixture())

	caps, err := r.Resolve(context.Background(), "admin", uuid.New())
	assert.ErrorIs(t, err, ErrProjectNotFound)
	assert.Nil(t, caps)
}

func TestResolve_RepositoryError(t *testing.T) {
	repo := newFixture()
	repo.err = errors.New("connection refused")

	_, err := NewPolicyResolver(repo).Resolve(context.Background(), "admin", repo.project.ID)
	assert.EqualError(t, err, "connection refused")
}

func TestResolveProject_ReturnsProject(t *testing.T) {
	repo := newFixture()

	p, caps, err := NewPolicyResolver(repo).ResolveProject(context.Background(), "dev", repo.project.ID)
	require.NoError(t, err)
	assert.Equal(t, "Apollo", p.Name)
	assert.True(t, caps.CanContribute())
	assert.False(t, caps.CanDelete())
}
