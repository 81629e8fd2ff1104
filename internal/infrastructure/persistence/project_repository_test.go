package persistence_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/reqtrace/backend/internal/domain/project"
	"github.com/reqtrace/backend/internal/domain/shared"
	"github.com/reqtrace/backend/internal/infrastructure/persistence"
	"github.com/reqtrace/backend/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormProjectRepository_AccessReads(t *testing.T) {
	fx := testutil.SeedFixture(t, testutil.NewSQLiteDB(t))
	repo := persistence.NewGormProjectRepository(fx.DB)
	ctx := context.Background()

	p, err := repo.FindByID(ctx, fx.ProjectID)
	require.NoError(t, err)
	assert.Equal(t, "Project 1", p.Name)
	assert.True(t, p.IsLead(testutil.LeadID))

	_, err = repo.FindByID(ctx, uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)

	wm, err := repo.FindWorkspaceMember(ctx, fx.WorkspaceID, testutil.AdminID)
	require.NoError(t, err)
	assert.Equal(t, project.MemberRoleAdmin, wm.Role)

	_, err = repo.FindWorkspaceMember(ctx, fx.WorkspaceID, testutil.OutsiderID)
	assert.ErrorIs(t, err, shared.ErrNotFound)

	ok, err := repo.IsProjectMember(ctx, fx.ProjectID, testutil.MemberID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.IsProjectMember(ctx, fx.OtherProjectID, testutil.MemberID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestGormTaskRepository_FindByID(t *testing.T) {
	fx := testutil.SeedFixture(t, testutil.NewSQLiteDB(t))
	repo := persistence.NewGormTaskRepository(fx.DB)

	task, err := repo.FindByID(context.Background(), fx.TaskID)
	require.NoError(t, err)
	assert.Equal(t, fx.ProjectID, task.ProjectID)
	require.NotNil(t, task.AssigneeID)
	assert.Equal(t, testutil.MemberID, *task.AssigneeID)

	_, err = repo.FindByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestGormUserRepository_Upsert(t *testing.T) {
	fx := testutil.SeedFixture(t, testutil.NewSQLiteDB(t))
	repo := persistence.NewGormUserRepository(fx.DB)
	ctx := context.Background()

	u, err := project.NewUser("user_new", "Grace Hopper", "grace@example.com", "")
	require.NoError(t, err)
	require.NoError(t, repo.Upsert(ctx, u))

	renamed, err := project.NewUser("user_new", "Rear Admiral Hopper", "grace@example.com", "https://img.example.com/g.png")
	require.NoError(t, err)
	require.NoError(t, repo.Upsert(ctx, renamed))

	got, err := repo.FindByID(ctx, "user_new")
	require.NoError(t, err)
	assert.Equal(t, "Rear Admiral Hopper", got.Name)
	assert.Equal(t, "https://img.example.com/g.png", got.ImageURL)

	users, err := repo.FindByIDs(ctx, []string{"user_new", testutil.LeadID, "missing"})
	require.NoError(t, err)
	assert.Len(t, users, 2)

	users, err = repo.FindByIDs(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, users)

	_, err = repo.FindByID(ctx, "missing")
	assert.ErrorIs(t, err, shared.ErrNotFound)
}
