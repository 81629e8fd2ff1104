// Package testutil provides shared fixtures for repository, service and
// handler tests: an in-memory sqlite database with a seeded workspace,
// a sqlmock-backed postgres connection, and gin request helpers.
package testutil

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/reqtrace/backend/internal/domain/project"
	"github.com/reqtrace/backend/internal/infrastructure/persistence/models"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// Principals seeded by SeedFixture
const (
	AdminID    = "user_admin"    // workspace ADMIN
	LeadID     = "user_lead"     // project team lead and workspace MEMBER
	MemberID   = "user_member"   // project member only
	ViewerID   = "user_viewer"   // workspace MEMBER only
	OutsiderID = "user_outsider" // no relationship
)

// MockDB wraps a GORM database with sqlmock for testing.
type MockDB struct {
	DB    *gorm.DB
	Mock  sqlmock.Sqlmock
	SqlDB *sql.DB
}

// NewMockDB opens a postgres-dialect GORM connection over sqlmock. It is
// closed when the test ends.
func NewMockDB(t *testing.T) *MockDB {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err, "Failed to create sqlmock")

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err, "Failed to open GORM connection")

	t.Cleanup(func() { _ = mockDB.Close() })
	return &MockDB{DB: gormDB, Mock: mock, SqlDB: mockDB}
}

// ExpectationsWereMet verifies that all expectations were met.
func (m *MockDB) ExpectationsWereMet(t *testing.T) {
	t.Helper()
	require.NoError(t, m.Mock.ExpectationsWereMet(), "Unmet database expectations")
}

// NewSQLiteDB opens a private in-memory sqlite database with the full
// schema. A single connection keeps every statement on the same database.
func NewSQLiteDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		SkipDefaultTransaction:                   true,
		DisableForeignKeyConstraintWhenMigrating: true,
		Logger:                                   logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(models.All()...))
	return db
}

// Fixture is a seeded workspace with two projects
type Fixture struct {
	DB             *gorm.DB
	WorkspaceID    uuid.UUID
	ProjectID      uuid.UUID
	OtherProjectID uuid.UUID
	// TaskID belongs to ProjectID and is assigned to MemberID
	TaskID uuid.UUID
	// OtherTaskID belongs to OtherProjectID
	OtherTaskID uuid.UUID
}

// SeedFixture creates users, the workspace with its members, both projects
// and one task in each
func SeedFixture(t *testing.T, db *gorm.DB) *Fixture {
	t.Helper()

	now := time.Now()
	for _, id := range []string{AdminID, LeadID, MemberID, ViewerID, OutsiderID} {
		require.NoError(t, db.Create(&models.UserModel{
			ID:        id,
			Name:      "Name of " + id,
			Email:     id + "@example.com",
			CreatedAt: now,
			UpdatedAt: now,
		}).Error)
	}

	f := &Fixture{DB: db, WorkspaceID: uuid.New(), ProjectID: uuid.New(), OtherProjectID: uuid.New()}

	ws := &models.WorkspaceModel{Name: "Acme", Slug: "acme-" + f.WorkspaceID.String()[:8], OwnerID: AdminID}
	ws.ID, ws.CreatedAt, ws.UpdatedAt = f.WorkspaceID, now, now
	require.NoError(t, db.Create(ws).Error)

	for user, role := range map[string]project.MemberRole{
		AdminID:  project.MemberRoleAdmin,
		LeadID:   project.MemberRoleMember,
		ViewerID: project.MemberRoleMember,
	} {
		require.NoError(t, db.Create(&models.WorkspaceMemberModel{
			ID: uuid.New(), WorkspaceID: f.WorkspaceID, UserID: user, Role: role,
		}).Error)
	}

	lead := LeadID
	for i, id := range []uuid.UUID{f.ProjectID, f.OtherProjectID} {
		p := &models.ProjectModel{WorkspaceID: f.WorkspaceID, Name: fmt.Sprintf("Project %d", i+1), TeamLead: &lead}
		p.ID, p.CreatedAt, p.UpdatedAt = id, now, now
		require.NoError(t, db.Create(p).Error)
	}
	require.NoError(t, db.Create(&models.ProjectMemberModel{
		ID: uuid.New(), ProjectID: f.ProjectID, UserID: MemberID,
	}).Error)

	member := MemberID
	f.TaskID = f.AddTask(t, f.ProjectID, "Implement login", &member)
	f.OtherTaskID = f.AddTask(t, f.OtherProjectID, "Unrelated work", nil)
	return f
}

// AddTask inserts a TODO task
func (f *Fixture) AddTask(t *testing.T, projectID uuid.UUID, title string, assignee *string) uuid.UUID {
	t.Helper()
	now := time.Now()
	m := &models.TaskModel{ProjectID: projectID, Title: title, Status: project.TaskStatusTodo, AssigneeID: assignee}
	m.ID, m.CreatedAt, m.UpdatedAt = uuid.New(), now, now
	require.NoError(t, f.DB.Create(m).Error)
	return m.ID
}

// AddStakeholder inserts a stakeholder
func (f *Fixture) AddStakeholder(t *testing.T, projectID uuid.UUID, name string) uuid.UUID {
	t.Helper()
	now := time.Now()
	m := &models.StakeholderModel{ProjectID: projectID, Name: name, Email: name + "@example.com", Role: "Sponsor"}
	m.ID, m.CreatedAt, m.UpdatedAt = uuid.New(), now, now
	require.NoError(t, f.DB.Create(m).Error)
	return m.ID
}

// ContextWithTimeout returns a context cancelled when the test ends
func ContextWithTimeout(t *testing.T, timeout time.Duration) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	t.Cleanup(cancel)
	return ctx
}
