package stakeholder

import (
	"time"

	"github.com/google/uuid"
	"github.com/reqtrace/backend/internal/domain/stakeholder"
)

// CreateStakeholderRequest is the body of POST /api/stakeholders
type CreateStakeholderRequest struct {
	ProjectID  uuid.UUID `json:"projectId" binding:"required"`
	Name       string    `json:"name" binding:"required,max=255"`
	Email      string    `json:"email" binding:"omitempty,email,max=255"`
	Role       string    `json:"role" binding:"max=100"`
	Department string    `json:"department" binding:"max=255"`
	Phone      string    `json:"phone" binding:"max=50"`
	Notes      string    `json:"notes" binding:"max=10000"`
}

// UpdateStakeholderRequest is a partial stakeholder update
type UpdateStakeholderRequest struct {
	Name       *string `json:"name" binding:"omitempty,max=255"`
	Email      *string `json:"email" binding:"omitempty,max=255"`
	Role       *string `json:"role" binding:"omitempty,max=100"`
	Department *string `json:"department" binding:"omitempty,max=255"`
	Phone      *string `json:"phone" binding:"omitempty,max=50"`
	Notes      *string `json:"notes" binding:"omitempty,max=10000"`
}

// CreateMeetingRequest is the body of POST /api/stakeholders/meetings
type CreateMeetingRequest struct {
	ProjectID      uuid.UUID   `json:"projectId" binding:"required"`
	Title          string      `json:"title" binding:"required,max=255"`
	Description    string      `json:"description" binding:"max=10000"`
	MeetingDate    time.Time   `json:"meetingDate" binding:"required"`
	Duration       *int        `json:"duration" binding:"omitempty,min=0,max=1440"`
	Location       string      `json:"location" binding:"max=255"`
	Notes          string      `json:"notes" binding:"max=10000"`
	ParticipantIDs []uuid.UUID `json:"participantIds"`
	RequirementIDs []uuid.UUID `json:"requirementIds"`
}

// LinkedRequirementResponse is a requirement a stakeholder or meeting is
// linked to
type LinkedRequirementResponse struct {
	ID     uuid.UUID `json:"id"`
	Title  string    `json:"title"`
	Status string    `json:"status"`
	Role   string    `json:"role,omitempty"`
}

// StakeholderResponse is a stakeholder with its requirement links
type StakeholderResponse struct {
	ID           uuid.UUID                   `json:"id"`
	ProjectID    uuid.UUID                   `json:"projectId"`
	Name         string                      `json:"name"`
	Email        string                      `json:"email"`
	Role         string                      `json:"role"`
	Department   string                      `json:"department"`
	Phone        string                      `json:"phone"`
	Notes        string                      `json:"notes"`
	Requirements []LinkedRequirementResponse `json:"requirements"`
	MeetingCount int                         `json:"meetingCount"`
	CreatedAt    time.Time                   `json:"createdAt"`
	UpdatedAt    time.Time                   `json:"updatedAt"`
}

// ParticipantResponse is a meeting attendee
type ParticipantResponse struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email,omitempty"`
	Role  string    `json:"role,omitempty"`
}

// MeetingResponse is a meeting with participants and linked requirements
type MeetingResponse struct {
	ID           uuid.UUID                   `json:"id"`
	ProjectID    uuid.UUID                   `json:"projectId"`
	Title        string                      `json:"title"`
	Description  string                      `json:"description"`
	MeetingDate  time.Time                   `json:"meetingDate"`
	Duration     *int                        `json:"duration"`
	Location     string                      `json:"location"`
	Notes        string                      `json:"notes"`
	CreatedBy    string                      `json:"createdBy"`
	Participants []ParticipantResponse       `json:"participants"`
	Requirements []LinkedRequirementResponse `json:"requirements"`
	CreatedAt    time.Time                   `json:"createdAt"`
}

// ToStakeholderResponse converts a stakeholder with its links
func ToStakeholderResponse(v *stakeholder.StakeholderView) StakeholderResponse {
	s := v.Stakeholder
	resp := StakeholderResponse{
		ID:           s.ID,
		ProjectID:    s.ProjectID,
		Name:         s.Name,
		Email:        s.Email,
		Role:         s.Role,
		Department:   s.Department,
		Phone:        s.Phone,
		Notes:        s.Notes,
		Requirements: toLinkedRequirements(v.Requirements),
		MeetingCount: v.MeetingCount,
		CreatedAt:    s.CreatedAt,
		UpdatedAt:    s.UpdatedAt,
	}
	return resp
}

// ToMeetingResponse converts a meeting with its links
func ToMeetingResponse(v *stakeholder.MeetingView) MeetingResponse {
	m := v.Meeting
	resp := MeetingResponse{
		ID:           m.ID,
		ProjectID:    m.ProjectID,
		Title:        m.Title,
		Description:  m.Description,
		MeetingDate:  m.MeetingDate,
		Duration:     m.Duration,
		Location:     m.Location,
		Notes:        m.Notes,
		CreatedBy:    m.CreatedBy,
		Participants: make([]ParticipantResponse, 0, len(v.Participants)),
		Requirements: toLinkedRequirements(v.Requirements),
		CreatedAt:    m.CreatedAt,
	}
	for _, p := range v.Participants {
		resp.Participants = append(resp.Participants, ParticipantResponse{ID: p.ID, Name: p.Name, Email: p.Email, Role: p.Role})
	}
	return resp
}

func toLinkedRequirements(refs []stakeholder.RequirementRef) []LinkedRequirementResponse {
	out := make([]LinkedRequirementResponse, 0, len(refs))
	for _, r := range refs {
		out = append(out, LinkedRequirementResponse{ID: r.ID, Title: r.Title, Status: r.Status, Role: r.Role})
	}
	return out
}
