package stakeholder

import (
	"strings"

	"github.com/google/uuid"
	"github.com/reqtrace/backend/internal/domain/shared"
)

// ErrNameRequired is returned when a stakeholder has no name
var ErrNameRequired = shared.NewDomainError("NAME_REQUIRED", "Stakeholder name is required")

// Stakeholder is a person with an interest in a project's requirements
type Stakeholder struct {
	shared.BaseEntity
	ProjectID  uuid.UUID
	Name       string
	Email      string
	Role       string
	Department string
	Phone      string
	Notes      string
}

// Profile holds the editable stakeholder fields
type Profile struct {
	Name       string
	Email      string
	Role       string
	Department string
	Phone      string
	Notes      string
}

// NewStakeholder creates a stakeholder scoped to projectID
func NewStakeholder(projectID uuid.UUID, p Profile) (*Stakeholder, error) {
	if projectID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PROJECT", "Project is required")
	}
	s := &Stakeholder{
		BaseEntity: shared.NewBaseEntity(),
		ProjectID:  projectID,
	}
	if err := s.apply(p); err != nil {
		return nil, err
	}
	return s, nil
}

// ProfileUpdate is a partial stakeholder update
type ProfileUpdate struct {
	Name       *string
	Email      *string
	Role       *string
	Department *string
	Phone      *string
	Notes      *string
}

// Update applies the provided fields
func (s *Stakeholder) Update(u ProfileUpdate) error {
	p := Profile{
		Name:       s.Name,
		Email:      s.Email,
		Role:       s.Role,
		Department: s.Department,
		Phone:      s.Phone,
		Notes:      s.Notes,
	}
	if u.Name != nil {
		p.Name = *u.Name
	}
	if u.Email != nil {
		p.Email = *u.Email
	}
	if u.Role != nil {
		p.Role = *u.Role
	}
	if u.Department != nil {
		p.Department = *u.Department
	}
	if u.Phone != nil {
		p.Phone = *u.Phone
	}
	if u.Notes != nil {
		p.Notes = *u.Notes
	}
	if err := s.apply(p); err != nil {
		return err
	}
	s.Touch()
	return nil
}

func (s *Stakeholder) apply(p Profile) error {
	name := strings.TrimSpace(p.Name)
	if name == "" {
		return ErrNameRequired
	}
	s.Name = name
	s.Email = strings.TrimSpace(p.Email)
	s.Role = strings.TrimSpace(p.Role)
	s.Department = strings.TrimSpace(p.Department)
	s.Phone = strings.TrimSpace(p.Phone)
	s.Notes = p.Notes
	return nil
}
