package stakeholder

import (
	"github.com/google/uuid"
)

// RequirementRef is a requirement a stakeholder or meeting is linked to
type RequirementRef struct {
	ID     uuid.UUID
	Title  string
	Status string
	Role   string
}

// StakeholderView is a stakeholder with its links
type StakeholderView struct {
	Stakeholder  *Stakeholder
	Requirements []RequirementRef
	MeetingCount int
}

// ParticipantRef is a meeting attendee
type ParticipantRef struct {
	ID    uuid.UUID
	Name  string
	Email string
	Role  string
}

// MeetingView is a meeting with its participants and requirements
type MeetingView struct {
	Meeting      *Meeting
	Participants []ParticipantRef
	Requirements []RequirementRef
}
