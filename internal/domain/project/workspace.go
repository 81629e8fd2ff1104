package project

import (
	"database/sql/driver"
	"fmt"

	"github.com/google/uuid"
	"github.com/reqtrace/backend/internal/domain/shared"
)

// MemberRole is a principal's role inside a workspace
type MemberRole string

const (
	MemberRoleAdmin  MemberRole = "ADMIN"
	MemberRoleMember MemberRole = "MEMBER"
)

// IsValid returns true if the role is known
func (r MemberRole) IsValid() bool {
	switch r {
	case MemberRoleAdmin, MemberRoleMember:
		return true
	}
	return false
}

// String returns the string representation
func (r MemberRole) String() string {
	return string(r)
}

// Scan implements sql.Scanner
func (r *MemberRole) Scan(value any) error {
	switch v := value.(type) {
	case string:
		*r = MemberRole(v)
	case []byte:
		*r = MemberRole(v)
	case nil:
		*r = ""
	default:
		return fmt.Errorf("cannot scan %T into MemberRole", value)
	}
	return nil
}

// Value implements driver.Valuer
func (r MemberRole) Value() (driver.Value, error) {
	return string(r), nil
}

// Workspace is the top-level tenant container
type Workspace struct {
	shared.BaseEntity
	Name    string
	Slug    string
	OwnerID string
}

// WorkspaceMember links a user to a workspace with a role
type WorkspaceMember struct {
	ID          uuid.UUID
	WorkspaceID uuid.UUID
	UserID      string
	Role        MemberRole
}

// IsAdmin returns true for ADMIN members
func (m *WorkspaceMember) IsAdmin() bool {
	return m != nil && m.Role == MemberRoleAdmin
}
