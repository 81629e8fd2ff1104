package requirement

import (
	"database/sql/driver"
	"fmt"
	"slices"
	"strings"
)

// Type classifies a requirement
type Type string

const (
	TypeFunctional    Type = "FUNCTIONAL"
	TypeNonFunctional Type = "NON_FUNCTIONAL"
	TypeBusiness      Type = "BUSINESS"
	TypeTechnical     Type = "TECHNICAL"
)

// AllTypes returns all valid requirement types
func AllTypes() []Type {
	return []Type{TypeFunctional, TypeNonFunctional, TypeBusiness, TypeTechnical}
}

// IsValid checks if the type is valid
func (t Type) IsValid() bool {
	return slices.Contains(AllTypes(), t)
}

// String returns the string representation
func (t Type) String() string {
	return string(t)
}

// Scan implements the sql.Scanner interface
func (t *Type) Scan(value any) error {
	s, err := scanEnum(value, "Type")
	if err != nil {
		return err
	}
	*t = Type(s)
	return nil
}

// Value implements the driver.Valuer interface
func (t Type) Value() (driver.Value, error) {
	return string(t), nil
}

// Priority is the business priority of a requirement
type Priority string

const (
	PriorityHigh   Priority = "HIGH"
	PriorityMedium Priority = "MEDIUM"
	PriorityLow    Priority = "LOW"
)

// AllPriorities returns all valid priorities
func AllPriorities() []Priority {
	return []Priority{PriorityHigh, PriorityMedium, PriorityLow}
}

// IsValid checks if the priority is valid
func (p Priority) IsValid() bool {
	return slices.Contains(AllPriorities(), p)
}

// String returns the string representation
func (p Priority) String() string {
	return string(p)
}

// Scan implements the sql.Scanner interface
func (p *Priority) Scan(value any) error {
	s, err := scanEnum(value, "Priority")
	if err != nil {
		return err
	}
	*p = Priority(s)
	return nil
}

// Value implements the driver.Valuer interface
func (p Priority) Value() (driver.Value, error) {
	return string(p), nil
}

// Status is the lifecycle state of a requirement
type Status string

const (
	StatusDraft       Status = "DRAFT"
	StatusReview      Status = "REVIEW"
	StatusApproved    Status = "APPROVED"
	StatusImplemented Status = "IMPLEMENTED"
	StatusVerified    Status = "VERIFIED"
	StatusClosed      Status = "CLOSED"
)

// AllStatuses returns all valid statuses
func AllStatuses() []Status {
	return []Status{StatusDraft, StatusReview, StatusApproved, StatusImplemented, StatusVerified, StatusClosed}
}

// IsValid checks if the status is valid
func (s Status) IsValid() bool {
	return slices.Contains(AllStatuses(), s)
}

// String returns the string representation
func (s Status) String() string {
	return string(s)
}

// Scan implements the sql.Scanner interface
func (s *Status) Scan(value any) error {
	v, err := scanEnum(value, "Status")
	if err != nil {
		return err
	}
	*s = Status(v)
	return nil
}

// Value implements the driver.Valuer interface
func (s Status) Value() (driver.Value, error) {
	return string(s), nil
}

// ActionKind tags a history entry
type ActionKind string

const (
	ActionCreated         ActionKind = "CREATED"
	ActionUpdated         ActionKind = "UPDATED"
	ActionStatusChanged   ActionKind = "STATUS_CHANGED"
	ActionPriorityChanged ActionKind = "PRIORITY_CHANGED"
	ActionTaskLinked      ActionKind = "TASK_LINKED"
)

// IsValid checks if the action kind is valid
func (a ActionKind) IsValid() bool {
	switch a {
	case ActionCreated, ActionUpdated, ActionStatusChanged, ActionPriorityChanged, ActionTaskLinked:
		return true
	default:
		return false
	}
}

// String returns the string representation
func (a ActionKind) String() string {
	return string(a)
}

// Scan implements the sql.Scanner interface
func (a *ActionKind) Scan(value any) error {
	s, err := scanEnum(value, "ActionKind")
	if err != nil {
		return err
	}
	*a = ActionKind(s)
	return nil
}

// Value implements the driver.Valuer interface
func (a ActionKind) Value() (driver.Value, error) {
	return string(a), nil
}

func scanEnum(value any, name string) (string, error) {
	switch v := value.(type) {
	case nil:
		return "", nil
	case string:
		return strings.ToUpper(v), nil
	case []byte:
		return strings.ToUpper(string(v)), nil
	default:
		return "", fmt.Errorf("requirement: cannot scan type %T into %s", value, name)
	}
}
