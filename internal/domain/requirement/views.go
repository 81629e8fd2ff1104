package requirement

import (
	"time"

	"github.com/google/uuid"
)

// Read models assembled by the repository for projections. They are never
// persisted back.

// UserRef is the public face of a principal
type UserRef struct {
	ID       string
	Name     string
	Email    string
	ImageURL string
}

// StakeholderRef is a stakeholder link with the stakeholder it points to
type StakeholderRef struct {
	LinkID          uuid.UUID
	Role            string
	StakeholderID   uuid.UUID
	Name            string
	Email           string
	StakeholderRole string
	Department      string
}

// TaskRef is a task link with the task and its assignee
type TaskRef struct {
	LinkID   uuid.UUID
	TaskID   uuid.UUID
	Title    string
	Status   string
	Assignee *UserRef
	LinkedAt time.Time
}

// ParticipantRef is a stakeholder attending a meeting
type ParticipantRef struct {
	StakeholderID uuid.UUID
	Name          string
}

// MeetingRef is a meeting linked to a requirement
type MeetingRef struct {
	MeetingID    uuid.UUID
	Title        string
	Date         time.Time
	Participants []ParticipantRef
}

// CommentView is a comment with its author
type CommentView struct {
	Comment
	Author UserRef
}

// HistoryView is a history entry with its actor
type HistoryView struct {
	Entry *HistoryEntry
	Actor UserRef
}

// Detail is the joined projection of a requirement
type Detail struct {
	Requirement  *Requirement
	Owner        UserRef
	Stakeholders []StakeholderRef
	Attachments  []Attachment
	Comments     []CommentView
	History      []HistoryView
	Tasks        []TaskRef
	Meetings     []MeetingRef
}

// ListFilter narrows a project listing by exact match
type ListFilter struct {
	Status   *Status
	Priority *Priority
	Type     *Type
}
