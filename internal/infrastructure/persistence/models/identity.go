package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/reqtrace/backend/internal/domain/project"
)

// UserModel is the persistence model for principals synced from the
// identity provider. The primary key is the provider subject.
type UserModel struct {
	ID        string    `gorm:"type:varchar(191);primary_key"`
	Name      string    `gorm:"type:varchar(255);not null"`
	Email     string    `gorm:"type:varchar(255);index"`
	ImageURL  string    `gorm:"type:text"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (UserModel) TableName() string {
	return "users"
}

// ToDomain converts the persistence model to a domain User
func (m *UserModel) ToDomain() *project.User {
	return &project.User{
		ID:        m.ID,
		Name:      m.Name,
		Email:     m.Email,
		ImageURL:  m.ImageURL,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

// FromDomain populates the persistence model from a domain User
func (m *UserModel) FromDomain(u *project.User) {
	m.ID = u.ID
	m.Name = u.Name
	m.Email = u.Email
	m.ImageURL = u.ImageURL
	m.CreatedAt = u.CreatedAt
	m.UpdatedAt = u.UpdatedAt
}

// UserModelFromDomain creates a new persistence model from a domain User
func UserModelFromDomain(u *project.User) *UserModel {
	m := &UserModel{}
	m.FromDomain(u)
	return m
}

// WorkspaceModel is the persistence model for workspaces
type WorkspaceModel struct {
	BaseModel
	Name    string `gorm:"type:varchar(255);not null"`
	Slug    string `gorm:"type:varchar(255);not null;uniqueIndex"`
	OwnerID string `gorm:"type:varchar(191);not null"`
}

// TableName returns the table name for GORM
func (WorkspaceModel) TableName() string {
	return "workspaces"
}

// ToDomain converts the persistence model to a domain Workspace
func (m *WorkspaceModel) ToDomain() *project.Workspace {
	return &project.Workspace{
		BaseEntity: m.BaseModel.ToDomain(),
		Name:       m.Name,
		Slug:       m.Slug,
		OwnerID:    m.OwnerID,
	}
}

// WorkspaceMemberModel is the persistence model for workspace membership
type WorkspaceMemberModel struct {
	ID          uuid.UUID          `gorm:"type:uuid;primary_key"`
	WorkspaceID uuid.UUID          `gorm:"type:uuid;not null;uniqueIndex:idx_workspace_member"`
	UserID      string             `gorm:"type:varchar(191);not null;uniqueIndex:idx_workspace_member"`
	Role        project.MemberRole `gorm:"type:varchar(20);not null;default:'MEMBER'"`
}

// TableName returns the table name for GORM
func (WorkspaceMemberModel) TableName() string {
	return "workspace_members"
}

// ToDomain converts the persistence model to a domain WorkspaceMember
func (m *WorkspaceMemberModel) ToDomain() *project.WorkspaceMember {
	return &project.WorkspaceMember{
		ID:          m.ID,
		WorkspaceID: m.WorkspaceID,
		UserID:      m.UserID,
		Role:        m.Role,
	}
}

// ProjectModel is the persistence model for projects
type ProjectModel struct {
	BaseModel
	WorkspaceID uuid.UUID `gorm:"type:uuid;not null;index"`
	Name        string    `gorm:"type:varchar(255);not null"`
	Description string    `gorm:"type:text"`
	TeamLead    *string   `gorm:"type:varchar(191)"`
}

// TableName returns the table name for GORM
func (ProjectModel) TableName() string {
	return "projects"
}

// ToDomain converts the persistence model to a domain Project
func (m *ProjectModel) ToDomain() *project.Project {
	return &project.Project{
		BaseEntity:  m.BaseModel.ToDomain(),
		WorkspaceID: m.WorkspaceID,
		Name:        m.Name,
		Description: m.Description,
		TeamLead:    m.TeamLead,
	}
}

// ProjectMemberModel is the persistence model for project membership
type ProjectMemberModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	ProjectID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_project_member"`
	UserID    string    `gorm:"type:varchar(191);not null;uniqueIndex:idx_project_member"`
}

// TableName returns the table name for GORM
func (ProjectMemberModel) TableName() string {
	return "project_members"
}

// TaskModel is the persistence model for tasks. Tasks are written by a
// sibling service; this one reads them and links requirements to them.
type TaskModel struct {
	BaseModel
	ProjectID  uuid.UUID          `gorm:"type:uuid;not null;index"`
	Title      string             `gorm:"type:varchar(255);not null"`
	Status     project.TaskStatus `gorm:"type:varchar(20);not null;default:'TODO'"`
	AssigneeID *string            `gorm:"type:varchar(191);index"`
	Assignee   *UserModel         `gorm:"foreignKey:AssigneeID"`
}

// TableName returns the table name for GORM
func (TaskModel) TableName() string {
	return "tasks"
}

// ToDomain converts the persistence model to a domain Task
func (m *TaskModel) ToDomain() *project.Task {
	return &project.Task{
		BaseEntity: m.BaseModel.ToDomain(),
		ProjectID:  m.ProjectID,
		Title:      m.Title,
		Status:     m.Status,
		AssigneeID: m.AssigneeID,
	}
}
