package requirement

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/reqtrace/backend/internal/domain/shared"
)

// DefaultStakeholderRole is assigned to stakeholders attached at creation
const DefaultStakeholderRole = "REVIEWER"

// Link errors
var (
	ErrCrossProjectLink = shared.NewDomainError("CROSS_PROJECT_LINK", "Requirement and task must be in the same project")
	ErrDuplicateLink    = shared.NewDomainError("DUPLICATE_LINK", "This requirement is already linked to this task")
)

// TaskLink joins a requirement to a task. (RequirementID, TaskID) is unique.
type TaskLink struct {
	ID            uuid.UUID
	RequirementID uuid.UUID
	TaskID        uuid.UUID
	CreatedAt     time.Time
}

// NewTaskLink links r to a task owned by taskProjectID
func NewTaskLink(r *Requirement, taskID, taskProjectID uuid.UUID) (*TaskLink, error) {
	if r.ProjectID != taskProjectID {
		return nil, ErrCrossProjectLink
	}
	return &TaskLink{
		ID:            uuid.New(),
		RequirementID: r.ID,
		TaskID:        taskID,
		CreatedAt:     time.Now(),
	}, nil
}

// StakeholderLink joins a stakeholder to a requirement with a role label
type StakeholderLink struct {
	ID            uuid.UUID
	RequirementID uuid.UUID
	StakeholderID uuid.UUID
	Role          string
	CreatedAt     time.Time
}

// NewStakeholderLinks builds one link per distinct stakeholder id, in input
// order. An empty role becomes DefaultStakeholderRole.
func NewStakeholderLinks(requirementID uuid.UUID, stakeholderIDs []uuid.UUID, role string) []StakeholderLink {
	role = strings.ToUpper(strings.TrimSpace(role))
	if role == "" {
		role = DefaultStakeholderRole
	}
	seen := make(map[uuid.UUID]struct{}, len(stakeholderIDs))
	links := make([]StakeholderLink, 0, len(stakeholderIDs))
	now := time.Now()
	for _, id := range stakeholderIDs {
		if id == uuid.Nil {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		links = append(links, StakeholderLink{
			ID:            uuid.New(),
			RequirementID: requirementID,
			StakeholderID: id,
			Role:          role,
			CreatedAt:     now,
		})
	}
	return links
}
