package requirement

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/reqtrace/backend/internal/domain/shared"
	"golang.org/x/text/unicode/norm"
)

// Defaults applied when a requirement is created without explicit values.
const (
	DefaultType     = TypeFunctional
	DefaultPriority = PriorityMedium
	DefaultStatus   = StatusDraft

	MaxTitleLength = 255
)

// Domain error codes raised by the requirement aggregate
var (
	ErrTitleRequired = shared.NewDomainError("TITLE_REQUIRED", "Title is required")
	ErrTitleTooLong  = shared.NewDomainError("TITLE_TOO_LONG", "Title must be at most 255 characters")
	ErrInvalidType   = shared.NewDomainError("INVALID_TYPE", "Invalid requirement type")
	ErrInvalidPrio   = shared.NewDomainError("INVALID_PRIORITY", "Invalid requirement priority")
	ErrInvalidStatus = shared.NewDomainError("INVALID_STATUS", "Invalid requirement status")
	ErrNoChanges     = shared.NewDomainError("NO_CHANGES", "No changes detected")
)

// Requirement is a tracked product need with a lifecycle status and a
// versioned edit history.
type Requirement struct {
	shared.BaseAggregateRoot
	ProjectID   uuid.UUID
	Title       string
	Description *string
	Type        Type
	Priority    Priority
	Status      Status
	OwnerID     string
}

// Attributes holds the optional fields accepted at creation
type Attributes struct {
	Description *string
	Type        Type
	Priority    Priority
	Status      Status
}

// NewRequirement creates a requirement at version 1. Empty Type, Priority
// and Status fall back to DefaultType, DefaultPriority and DefaultStatus.
func NewRequirement(projectID uuid.UUID, ownerID, title string, attrs Attributes) (*Requirement, error) {
	if projectID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PROJECT", "Project is required")
	}
	if strings.TrimSpace(ownerID) == "" {
		return nil, shared.NewDomainError("INVALID_OWNER", "Owner is required")
	}
	title, err := normalizeTitle(title)
	if err != nil {
		return nil, err
	}

	if attrs.Type == "" {
		attrs.Type = DefaultType
	}
	if attrs.Priority == "" {
		attrs.Priority = DefaultPriority
	}
	if attrs.Status == "" {
		attrs.Status = DefaultStatus
	}
	if err := validateEnums(attrs.Type, attrs.Priority, attrs.Status); err != nil {
		return nil, err
	}

	return &Requirement{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		ProjectID:         projectID,
		Title:             title,
		Description:       normalizeDescription(attrs.Description),
		Type:              attrs.Type,
		Priority:          attrs.Priority,
		Status:            attrs.Status,
		OwnerID:           ownerID,
	}, nil
}

// Patch is a partial update. Nil fields are left untouched; an empty
// Description clears it.
type Patch struct {
	Title       *string
	Description *string
	Type        *Type
	Priority    *Priority
	Status      *Status
}

// ApplyUpdate compares the patch against the current state, applies every
// field that differs and bumps the version by one. It returns the ordered
// diff and the action kind to record. An empty diff returns ErrNoChanges
// and leaves the requirement untouched.
func (r *Requirement) ApplyUpdate(p Patch) ([]FieldChange, ActionKind, error) {
	next := *r
	var changes []FieldChange

	if p.Title != nil {
		title, err := normalizeTitle(*p.Title)
		if err != nil {
			return nil, "", err
		}
		if title != r.Title {
			changes = append(changes, FieldChange{Field: FieldTitle, Old: strPtr(r.Title), New: strPtr(title)})
			next.Title = title
		}
	}
	if p.Description != nil {
		desc := normalizeDescription(p.Description)
		if !equalStr(desc, r.Description) {
			changes = append(changes, FieldChange{Field: FieldDescription, Old: cloneStr(r.Description), New: cloneStr(desc)})
			next.Description = desc
		}
	}
	if p.Type != nil {
		if !p.Type.IsValid() {
			return nil, "", ErrInvalidType
		}
		if *p.Type != r.Type {
			changes = append(changes, FieldChange{Field: FieldType, Old: strPtr(string(r.Type)), New: strPtr(string(*p.Type))})
			next.Type = *p.Type
		}
	}
	if p.Priority != nil {
		if !p.Priority.IsValid() {
			return nil, "", ErrInvalidPrio
		}
		if *p.Priority != r.Priority {
			changes = append(changes, FieldChange{Field: FieldPriority, Old: strPtr(string(r.Priority)), New: strPtr(string(*p.Priority))})
			next.Priority = *p.Priority
		}
	}
	if p.Status != nil {
		if !p.Status.IsValid() {
			return nil, "", ErrInvalidStatus
		}
		if *p.Status != r.Status {
			changes = append(changes, FieldChange{Field: FieldStatus, Old: strPtr(string(r.Status)), New: strPtr(string(*p.Status))})
			next.Status = *p.Status
		}
	}

	if len(changes) == 0 {
		return nil, "", ErrNoChanges
	}

	*r = next
	r.IncrementVersion()
	r.UpdatedAt = time.Now()
	return changes, ClassifyChanges(changes), nil
}

func normalizeTitle(title string) (string, error) {
	title = norm.NFC.String(strings.TrimSpace(title))
	if title == "" {
		return "", ErrTitleRequired
	}
	if utf8.RuneCountInString(title) > MaxTitleLength {
		return "", ErrTitleTooLong
	}
	return title, nil
}

func normalizeDescription(desc *string) *string {
	if desc == nil {
		return nil
	}
	v := norm.NFC.String(strings.TrimSpace(*desc))
	if v == "" {
		return nil
	}
	return &v
}

func validateEnums(t Type, p Priority, s Status) error {
	if !t.IsValid() {
		return ErrInvalidType
	}
	if !p.IsValid() {
		return ErrInvalidPrio
	}
	if !s.IsValid() {
		return ErrInvalidStatus
	}
	return nil
}

func equalStr(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
