package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/reqtrace/backend/internal/domain/requirement"
)

// RequirementModel is the persistence model for the Requirement aggregate.
// Associations are only populated by the query repository.
type RequirementModel struct {
	AggregateModel
	ProjectID   uuid.UUID            `gorm:"type:uuid;not null;index"`
	Title       string               `gorm:"type:varchar(255);not null"`
	Description *string              `gorm:"type:text"`
	Type        requirement.Type     `gorm:"type:varchar(20);not null;default:'FUNCTIONAL'"`
	Priority    requirement.Priority `gorm:"type:varchar(20);not null;default:'MEDIUM'"`
	Status      requirement.Status   `gorm:"type:varchar(20);not null;default:'DRAFT'"`
	OwnerID     string               `gorm:"type:varchar(191);not null;index"`

	Owner        *UserModel                    `gorm:"foreignKey:OwnerID"`
	Stakeholders []StakeholderRequirementModel `gorm:"foreignKey:RequirementID"`
	Tasks        []RequirementTaskModel        `gorm:"foreignKey:RequirementID"`
	Meetings     []MeetingRequirementModel     `gorm:"foreignKey:RequirementID"`
	Comments     []RequirementCommentModel     `gorm:"foreignKey:RequirementID"`
	History      []RequirementHistoryModel     `gorm:"foreignKey:RequirementID"`
	Attachments  []RequirementAttachmentModel  `gorm:"foreignKey:RequirementID"`
}

// TableName returns the table name for GORM
func (RequirementModel) TableName() string {
	return "requirements"
}

// ToDomain converts the persistence model to a domain Requirement
func (m *RequirementModel) ToDomain() *requirement.Requirement {
	return &requirement.Requirement{
		BaseAggregateRoot: m.AggregateModel.ToAggregateRoot(),
		ProjectID:         m.ProjectID,
		Title:             m.Title,
		Description:       m.Description,
		Type:              m.Type,
		Priority:          m.Priority,
		Status:            m.Status,
		OwnerID:           m.OwnerID,
	}
}

// FromDomain populates the persistence model from a domain Requirement
func (m *RequirementModel) FromDomain(r *requirement.Requirement) {
	m.FromDomainAggregateRoot(r.BaseAggregateRoot)
	m.ProjectID = r.ProjectID
	m.Title = r.Title
	m.Description = r.Description
	m.Type = r.Type
	m.Priority = r.Priority
	m.Status = r.Status
	m.OwnerID = r.OwnerID
}

// RequirementModelFromDomain creates a new persistence model from a domain Requirement
func RequirementModelFromDomain(r *requirement.Requirement) *RequirementModel {
	m := &RequirementModel{}
	m.FromDomain(r)
	return m
}

// RequirementHistoryModel is an append-only audit row. Changes is stored as
// a JSON array of {field, old, new}.
type RequirementHistoryModel struct {
	ID            uuid.UUID                 `gorm:"type:uuid;primary_key"`
	RequirementID uuid.UUID                 `gorm:"type:uuid;not null;index"`
	UserID        string                    `gorm:"type:varchar(191);not null"`
	Action        requirement.ActionKind    `gorm:"type:varchar(30);not null"`
	Version       int                       `gorm:"not null"`
	Changes       []requirement.FieldChange `gorm:"type:jsonb;serializer:json;not null"`
	CreatedAt     time.Time                 `gorm:"not null;index"`
	User          *UserModel                `gorm:"foreignKey:UserID"`
}

// TableName returns the table name for GORM
func (RequirementHistoryModel) TableName() string {
	return "requirement_history"
}

// ToDomain converts the persistence model to a domain HistoryEntry
func (m *RequirementHistoryModel) ToDomain() *requirement.HistoryEntry {
	return requirement.RestoreHistoryEntry(m.ID, m.RequirementID, m.UserID, m.Action, m.Version, m.Changes, m.CreatedAt)
}

// HistoryModelFromDomain creates a persistence model from a domain HistoryEntry
func HistoryModelFromDomain(h *requirement.HistoryEntry) *RequirementHistoryModel {
	changes := h.Changes()
	if changes == nil {
		changes = []requirement.FieldChange{}
	}
	return &RequirementHistoryModel{
		ID:            h.ID,
		RequirementID: h.RequirementID,
		UserID:        h.UserID,
		Action:        h.Action,
		Version:       h.Version,
		Changes:       changes,
		CreatedAt:     h.CreatedAt,
	}
}

// RequirementCommentModel is the persistence model for comments
type RequirementCommentModel struct {
	ID            uuid.UUID  `gorm:"type:uuid;primary_key"`
	RequirementID uuid.UUID  `gorm:"type:uuid;not null;index"`
	UserID        string     `gorm:"type:varchar(191);not null"`
	Content       string     `gorm:"type:text;not null"`
	CreatedAt     time.Time  `gorm:"not null;index"`
	User          *UserModel `gorm:"foreignKey:UserID"`
}

// TableName returns the table name for GORM
func (RequirementCommentModel) TableName() string {
	return "requirement_comments"
}

// ToDomain converts the persistence model to a domain Comment
func (m *RequirementCommentModel) ToDomain() requirement.Comment {
	return requirement.Comment{
		ID:            m.ID,
		RequirementID: m.RequirementID,
		UserID:        m.UserID,
		Content:       m.Content,
		CreatedAt:     m.CreatedAt,
	}
}

// CommentModelFromDomain creates a persistence model from a domain Comment
func CommentModelFromDomain(c *requirement.Comment) *RequirementCommentModel {
	return &RequirementCommentModel{
		ID:            c.ID,
		RequirementID: c.RequirementID,
		UserID:        c.UserID,
		Content:       c.Content,
		CreatedAt:     c.CreatedAt,
	}
}

// RequirementAttachmentModel stores attachment metadata
type RequirementAttachmentModel struct {
	ID            uuid.UUID `gorm:"type:uuid;primary_key"`
	RequirementID uuid.UUID `gorm:"type:uuid;not null;index"`
	FileName      string    `gorm:"type:varchar(255);not null"`
	FileURL       string    `gorm:"type:text;not null"`
	FileSize      int64     `gorm:"not null;default:0"`
	MimeType      string    `gorm:"type:varchar(100)"`
	UploadedBy    string    `gorm:"type:varchar(191);not null"`
	CreatedAt     time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (RequirementAttachmentModel) TableName() string {
	return "requirement_attachments"
}

// ToDomain converts the persistence model to a domain Attachment
func (m *RequirementAttachmentModel) ToDomain() requirement.Attachment {
	return requirement.Attachment{
		ID:            m.ID,
		RequirementID: m.RequirementID,
		FileName:      m.FileName,
		FileURL:       m.FileURL,
		FileSize:      m.FileSize,
		MimeType:      m.MimeType,
		UploadedBy:    m.UploadedBy,
		CreatedAt:     m.CreatedAt,
	}
}

// RequirementTaskModel links a requirement to a task
type RequirementTaskModel struct {
	ID            uuid.UUID  `gorm:"type:uuid;primary_key"`
	RequirementID uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_requirement_task"`
	TaskID        uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_requirement_task;index"`
	CreatedAt     time.Time  `gorm:"not null"`
	Task          *TaskModel `gorm:"foreignKey:TaskID"`
}

// TableName returns the table name for GORM
func (RequirementTaskModel) TableName() string {
	return "requirement_tasks"
}

// TaskLinkModelFromDomain creates a persistence model from a domain TaskLink
func TaskLinkModelFromDomain(l *requirement.TaskLink) *RequirementTaskModel {
	return &RequirementTaskModel{
		ID:            l.ID,
		RequirementID: l.RequirementID,
		TaskID:        l.TaskID,
		CreatedAt:     l.CreatedAt,
	}
}

// StakeholderRequirementModel links a stakeholder to a requirement
type StakeholderRequirementModel struct {
	ID            uuid.UUID         `gorm:"type:uuid;primary_key"`
	RequirementID uuid.UUID         `gorm:"type:uuid;not null;uniqueIndex:idx_stakeholder_requirement"`
	StakeholderID uuid.UUID         `gorm:"type:uuid;not null;uniqueIndex:idx_stakeholder_requirement;index"`
	Role          string            `gorm:"type:varchar(50);not null;default:'REVIEWER'"`
	CreatedAt     time.Time         `gorm:"not null"`
	Stakeholder   *StakeholderModel `gorm:"foreignKey:StakeholderID"`
	Requirement   *RequirementModel `gorm:"foreignKey:RequirementID"`
}

// TableName returns the table name for GORM
func (StakeholderRequirementModel) TableName() string {
	return "stakeholder_requirements"
}

// StakeholderLinkModelFromDomain creates a persistence model from a domain StakeholderLink
func StakeholderLinkModelFromDomain(l requirement.StakeholderLink) StakeholderRequirementModel {
	return StakeholderRequirementModel{
		ID:            l.ID,
		RequirementID: l.RequirementID,
		StakeholderID: l.StakeholderID,
		Role:          l.Role,
		CreatedAt:     l.CreatedAt,
	}
}
