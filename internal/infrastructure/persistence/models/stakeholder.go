package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/reqtrace/backend/internal/domain/stakeholder"
)

// StakeholderModel is the persistence model for stakeholders
type StakeholderModel struct {
	BaseModel
	ProjectID  uuid.UUID `gorm:"type:uuid;not null;index"`
	Name       string    `gorm:"type:varchar(255);not null"`
	Email      string    `gorm:"type:varchar(255)"`
	Role       string    `gorm:"type:varchar(100)"`
	Department string    `gorm:"type:varchar(255)"`
	Phone      string    `gorm:"type:varchar(50)"`
	Notes      string    `gorm:"type:text"`

	Requirements []StakeholderRequirementModel `gorm:"foreignKey:StakeholderID"`
	Meetings     []MeetingParticipantModel     `gorm:"foreignKey:StakeholderID"`
}

// TableName returns the table name for GORM
func (StakeholderModel) TableName() string {
	return "stakeholders"
}

// ToDomain converts the persistence model to a domain Stakeholder
func (m *StakeholderModel) ToDomain() *stakeholder.Stakeholder {
	return &stakeholder.Stakeholder{
		BaseEntity: m.BaseModel.ToDomain(),
		ProjectID:  m.ProjectID,
		Name:       m.Name,
		Email:      m.Email,
		Role:       m.Role,
		Department: m.Department,
		Phone:      m.Phone,
		Notes:      m.Notes,
	}
}

// FromDomain populates the persistence model from a domain Stakeholder
func (m *StakeholderModel) FromDomain(s *stakeholder.Stakeholder) {
	m.FromDomainBaseEntity(s.BaseEntity)
	m.ProjectID = s.ProjectID
	m.Name = s.Name
	m.Email = s.Email
	m.Role = s.Role
	m.Department = s.Department
	m.Phone = s.Phone
	m.Notes = s.Notes
}

// StakeholderModelFromDomain creates a new persistence model from a domain Stakeholder
func StakeholderModelFromDomain(s *stakeholder.Stakeholder) *StakeholderModel {
	m := &StakeholderModel{}
	m.FromDomain(s)
	return m
}

// MeetingModel is the persistence model for meetings
type MeetingModel struct {
	BaseModel
	ProjectID   uuid.UUID `gorm:"type:uuid;not null;index"`
	Title       string    `gorm:"type:varchar(255);not null"`
	Description string    `gorm:"type:text"`
	MeetingDate time.Time `gorm:"not null;index"`
	Duration    *int
	Location    string `gorm:"type:varchar(255)"`
	Notes       string `gorm:"type:text"`
	CreatedBy   string `gorm:"type:varchar(191);not null"`

	Participants []MeetingParticipantModel `gorm:"foreignKey:MeetingID"`
	Requirements []MeetingRequirementModel `gorm:"foreignKey:MeetingID"`
}

// TableName returns the table name for GORM
func (MeetingModel) TableName() string {
	return "meetings"
}

// ToDomain converts the persistence model to a domain Meeting. Participant
// and requirement ids are filled from loaded join rows.
func (m *MeetingModel) ToDomain() *stakeholder.Meeting {
	meeting := &stakeholder.Meeting{
		BaseEntity:     m.BaseModel.ToDomain(),
		ProjectID:      m.ProjectID,
		Title:          m.Title,
		Description:    m.Description,
		MeetingDate:    m.MeetingDate,
		Duration:       m.Duration,
		Location:       m.Location,
		Notes:          m.Notes,
		CreatedBy:      m.CreatedBy,
		ParticipantIDs: make([]uuid.UUID, 0, len(m.Participants)),
		RequirementIDs: make([]uuid.UUID, 0, len(m.Requirements)),
	}
	for _, p := range m.Participants {
		meeting.ParticipantIDs = append(meeting.ParticipantIDs, p.StakeholderID)
	}
	for _, r := range m.Requirements {
		meeting.RequirementIDs = append(meeting.RequirementIDs, r.RequirementID)
	}
	return meeting
}

// MeetingModelFromDomain creates a persistence model from a domain Meeting,
// including its join rows
func MeetingModelFromDomain(meeting *stakeholder.Meeting) *MeetingModel {
	m := &MeetingModel{
		ProjectID:   meeting.ProjectID,
		Title:       meeting.Title,
		Description: meeting.Description,
		MeetingDate: meeting.MeetingDate,
		Duration:    meeting.Duration,
		Location:    meeting.Location,
		Notes:       meeting.Notes,
		CreatedBy:   meeting.CreatedBy,
	}
	m.FromDomainBaseEntity(meeting.BaseEntity)
	for _, id := range meeting.ParticipantIDs {
		m.Participants = append(m.Participants, MeetingParticipantModel{
			ID:            uuid.New(),
			MeetingID:     meeting.ID,
			StakeholderID: id,
		})
	}
	for _, id := range meeting.RequirementIDs {
		m.Requirements = append(m.Requirements, MeetingRequirementModel{
			ID:            uuid.New(),
			MeetingID:     meeting.ID,
			RequirementID: id,
		})
	}
	return m
}

// MeetingParticipantModel links a stakeholder to a meeting
type MeetingParticipantModel struct {
	ID            uuid.UUID         `gorm:"type:uuid;primary_key"`
	MeetingID     uuid.UUID         `gorm:"type:uuid;not null;uniqueIndex:idx_meeting_participant"`
	StakeholderID uuid.UUID         `gorm:"type:uuid;not null;uniqueIndex:idx_meeting_participant;index"`
	Stakeholder   *StakeholderModel `gorm:"foreignKey:StakeholderID"`
}

// TableName returns the table name for GORM
func (MeetingParticipantModel) TableName() string {
	return "meeting_participants"
}

// MeetingRequirementModel links a requirement to a meeting
type MeetingRequirementModel struct {
	ID            uuid.UUID         `gorm:"type:uuid;primary_key"`
	MeetingID     uuid.UUID         `gorm:"type:uuid;not null;uniqueIndex:idx_meeting_requirement"`
	RequirementID uuid.UUID         `gorm:"type:uuid;not null;uniqueIndex:idx_meeting_requirement;index"`
	Meeting       *MeetingModel     `gorm:"foreignKey:MeetingID"`
	Requirement   *RequirementModel `gorm:"foreignKey:RequirementID"`
}

// TableName returns the table name for GORM
func (MeetingRequirementModel) TableName() string {
	return "meeting_requirements"
}
