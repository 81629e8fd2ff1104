package requirement

import (
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/reqtrace/backend/internal/domain/shared"
)

// Canonical field names used in history diffs
const (
	FieldTitle       = "title"
	FieldDescription = "description"
	FieldType        = "type"
	FieldPriority    = "priority"
	FieldStatus      = "status"
	FieldTaskID      = "taskId"
	FieldTaskTitle   = "taskTitle"
)

// FieldChange is one entry of a history diff. Old is nil for snapshot and
// link entries; nil New means the field was cleared.
type FieldChange struct {
	Field string  `json:"field"`
	Old   *string `json:"old"`
	New   *string `json:"new"`
}

// HistoryEntry is an immutable audit row for one state-changing action on a
// requirement.
type HistoryEntry struct {
	ID            uuid.UUID
	RequirementID uuid.UUID
	UserID        string
	Action        ActionKind
	Version       int
	changes       []FieldChange
	CreatedAt     time.Time
}

// NewHistoryEntry validates and builds a history entry
func NewHistoryEntry(requirementID uuid.UUID, userID string, action ActionKind, version int, changes []FieldChange) (*HistoryEntry, error) {
	if requirementID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_HISTORY", "History entry requires a requirement")
	}
	if userID == "" {
		return nil, shared.NewDomainError("INVALID_HISTORY", "History entry requires an actor")
	}
	if !action.IsValid() {
		return nil, shared.NewDomainError("INVALID_ACTION", "Invalid history action")
	}
	if version < 1 {
		return nil, shared.NewDomainError("INVALID_HISTORY", "History version must be positive")
	}
	return &HistoryEntry{
		ID:            uuid.New(),
		RequirementID: requirementID,
		UserID:        userID,
		Action:        action,
		Version:       version,
		changes:       slices.Clone(changes),
		CreatedAt:     time.Now(),
	}, nil
}

// RestoreHistoryEntry rebuilds an entry loaded from storage
func RestoreHistoryEntry(id, requirementID uuid.UUID, userID string, action ActionKind, version int, changes []FieldChange, createdAt time.Time) *HistoryEntry {
	return &HistoryEntry{
		ID:            id,
		RequirementID: requirementID,
		UserID:        userID,
		Action:        action,
		Version:       version,
		changes:       slices.Clone(changes),
		CreatedAt:     createdAt,
	}
}

// Changes returns a copy of the ordered diff
func (h *HistoryEntry) Changes() []FieldChange {
	return slices.Clone(h.changes)
}

// Change returns the entry for field, if present
func (h *HistoryEntry) Change(field string) (FieldChange, bool) {
	for _, c := range h.changes {
		if c.Field == field {
			return c, true
		}
	}
	return FieldChange{}, false
}

// NewCreatedEntry snapshots the initial field values of r at version 1
func NewCreatedEntry(r *Requirement, userID string) (*HistoryEntry, error) {
	changes := []FieldChange{
		{Field: FieldTitle, New: strPtr(r.Title)},
		{Field: FieldDescription, New: cloneStr(r.Description)},
		{Field: FieldType, New: strPtr(string(r.Type))},
		{Field: FieldPriority, New: strPtr(string(r.Priority))},
		{Field: FieldStatus, New: strPtr(string(r.Status))},
	}
	return NewHistoryEntry(r.ID, userID, ActionCreated, r.Version, changes)
}

// NewTaskLinkedEntry records a task link at the requirement's current
// version. Linking does not bump the version.
func NewTaskLinkedEntry(r *Requirement, userID string, taskID uuid.UUID, taskTitle string) (*HistoryEntry, error) {
	changes := []FieldChange{
		{Field: FieldTaskID, New: strPtr(taskID.String())},
		{Field: FieldTaskTitle, New: strPtr(taskTitle)},
	}
	return NewHistoryEntry(r.ID, userID, ActionTaskLinked, r.Version, changes)
}

// ClassifyChanges picks the action kind for an update diff.
// Precedence is status, then priority, then a generic update.
func ClassifyChanges(changes []FieldChange) ActionKind {
	var priority bool
	for _, c := range changes {
		switch c.Field {
		case FieldStatus:
			return ActionStatusChanged
		case FieldPriority:
			priority = true
		}
	}
	if priority {
		return ActionPriorityChanged
	}
	return ActionUpdated
}

func strPtr(s string) *string {
	return &s
}

func cloneStr(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
