package stakeholder

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/reqtrace/backend/internal/domain/shared"
)

// Meeting errors
var (
	ErrMeetingTitleRequired = shared.NewDomainError("TITLE_REQUIRED", "Meeting title is required")
	ErrMeetingDateRequired  = shared.NewDomainError("MEETING_DATE_REQUIRED", "Meeting date is required")
	ErrInvalidDuration      = shared.NewDomainError("INVALID_DURATION", "Meeting duration cannot be negative")
)

// Meeting is a project meeting, optionally linked to requirements and
// attended by stakeholders
type Meeting struct {
	shared.BaseEntity
	ProjectID      uuid.UUID
	Title          string
	Description    string
	MeetingDate    time.Time
	Duration       *int
	Location       string
	Notes          string
	CreatedBy      string
	ParticipantIDs []uuid.UUID
	RequirementIDs []uuid.UUID
}

// MeetingDetails holds the fields supplied when scheduling a meeting
type MeetingDetails struct {
	Title          string
	Description    string
	MeetingDate    time.Time
	Duration       *int
	Location       string
	Notes          string
	ParticipantIDs []uuid.UUID
	RequirementIDs []uuid.UUID
}

// NewMeeting validates details and de-duplicates participant and
// requirement ids
func NewMeeting(projectID uuid.UUID, createdBy string, d MeetingDetails) (*Meeting, error) {
	if projectID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PROJECT", "Project is required")
	}
	title := strings.TrimSpace(d.Title)
	if title == "" {
		return nil, ErrMeetingTitleRequired
	}
	if d.MeetingDate.IsZero() {
		return nil, ErrMeetingDateRequired
	}
	if d.Duration != nil && *d.Duration < 0 {
		return nil, ErrInvalidDuration
	}
	return &Meeting{
		BaseEntity:     shared.NewBaseEntity(),
		ProjectID:      projectID,
		Title:          title,
		Description:    strings.TrimSpace(d.Description),
		MeetingDate:    d.MeetingDate,
		Duration:       d.Duration,
		Location:       strings.TrimSpace(d.Location),
		Notes:          d.Notes,
		CreatedBy:      createdBy,
		ParticipantIDs: DistinctIDs(d.ParticipantIDs),
		RequirementIDs: DistinctIDs(d.RequirementIDs),
	}, nil
}

// DistinctIDs drops nil and repeated ids, keeping first-seen order
func DistinctIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if id == uuid.Nil {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
