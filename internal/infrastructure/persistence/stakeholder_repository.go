package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/reqtrace/backend/internal/domain/shared"
	"github.com/reqtrace/backend/internal/domain/stakeholder"
	"github.com/reqtrace/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStakeholderRepository implements stakeholder.StakeholderRepository using GORM
type GormStakeholderRepository struct {
	db *gorm.DB
}

// NewGormStakeholderRepository creates a new GormStakeholderRepository
func NewGormStakeholderRepository(db *gorm.DB) *GormStakeholderRepository {
	return &GormStakeholderRepository{db: db}
}

// FindByID finds a stakeholder by its ID
func (r *GormStakeholderRepository) FindByID(ctx context.Context, id uuid.UUID) (*stakeholder.Stakeholder, error) {
	var model models.StakeholderModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Create inserts a stakeholder
func (r *GormStakeholderRepository) Create(ctx context.Context, s *stakeholder.Stakeholder) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(models.StakeholderModelFromDomain(s)).Error
}

// Update writes the profile columns of an existing stakeholder
func (r *GormStakeholderRepository) Update(ctx context.Context, s *stakeholder.Stakeholder) error {
	result := r.db.WithContext(ctx).
		Model(&models.StakeholderModel{}).
		Where("id = ?", s.ID).
		Updates(map[string]any{
			"name":       s.Name,
			"email":      s.Email,
			"role":       s.Role,
			"department": s.Department,
			"phone":      s.Phone,
			"notes":      s.Notes,
			"updated_at": s.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Delete removes the stakeholder together with its requirement and meeting links
func (r *GormStakeholderRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("stakeholder_id = ?", id).Delete(&models.StakeholderRequirementModel{}).Error; err != nil {
			return err
		}
		if err := tx.Where("stakeholder_id = ?", id).Delete(&models.MeetingParticipantModel{}).Error; err != nil {
			return err
		}
		result := tx.Where("id = ?", id).Delete(&models.StakeholderModel{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

// ListByProject returns the project's stakeholders newest first with their
// linked requirements and meeting count
func (r *GormStakeholderRepository) ListByProject(ctx context.Context, projectID uuid.UUID) ([]stakeholder.StakeholderView, error) {
	var rows []models.StakeholderModel
	if err := r.db.WithContext(ctx).
		Preload("Requirements", oldestFirst).
		Preload("Requirements.Requirement").
		Preload("Meetings").
		Where("project_id = ?", projectID).
		Order("created_at DESC").Order("id DESC").
		Find(&rows).Error; err != nil {
		return nil, err
	}

	views := make([]stakeholder.StakeholderView, len(rows))
	for i := range rows {
		m := &rows[i]
		view := stakeholder.StakeholderView{
			Stakeholder:  m.ToDomain(),
			Requirements: make([]stakeholder.RequirementRef, 0, len(m.Requirements)),
			MeetingCount: len(m.Meetings),
		}
		for _, link := range m.Requirements {
			ref := stakeholder.RequirementRef{ID: link.RequirementID, Role: link.Role}
			if link.Requirement != nil {
				ref.Title = link.Requirement.Title
				ref.Status = string(link.Requirement.Status)
			}
			view.Requirements = append(view.Requirements, ref)
		}
		views[i] = view
	}
	return views, nil
}

// CountInProject counts how many of ids are stakeholders of projectID
func (r *GormStakeholderRepository) CountInProject(ctx context.Context, projectID uuid.UUID, ids []uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.StakeholderModel{}).
		Where("project_id = ? AND id IN ?", projectID, ids).
		Count(&count).Error
	return count, err
}

// GormMeetingRepository implements stakeholder.MeetingRepository using GORM
type GormMeetingRepository struct {
	db *gorm.DB
}

// NewGormMeetingRepository creates a new GormMeetingRepository
func NewGormMeetingRepository(db *gorm.DB) *GormMeetingRepository {
	return &GormMeetingRepository{db: db}
}

// Create inserts the meeting and its participant and requirement rows
func (r *GormMeetingRepository) Create(ctx context.Context, meeting *stakeholder.Meeting) error {
	model := models.MeetingModelFromDomain(meeting)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(model).Error; err != nil {
			return err
		}
		if len(model.Participants) > 0 {
			if err := tx.Omit(clause.Associations).Create(&model.Participants).Error; err != nil {
				return err
			}
		}
		if len(model.Requirements) > 0 {
			if err := tx.Omit(clause.Associations).Create(&model.Requirements).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func withMeetingLinks(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Participants").
		Preload("Participants.Stakeholder").
		Preload("Requirements").
		Preload("Requirements.Requirement")
}

// FindByID loads one meeting with its participants and requirements
func (r *GormMeetingRepository) FindByID(ctx context.Context, id uuid.UUID) (*stakeholder.MeetingView, error) {
	var model models.MeetingModel
	if err := withMeetingLinks(r.db.WithContext(ctx)).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	view := toMeetingView(&model)
	return &view, nil
}

// ListByProject returns meetings by meeting date, newest first
func (r *GormMeetingRepository) ListByProject(ctx context.Context, projectID uuid.UUID) ([]stakeholder.MeetingView, error) {
	var rows []models.MeetingModel
	if err := withMeetingLinks(r.db.WithContext(ctx)).
		Where("project_id = ?", projectID).
		Order("meeting_date DESC").Order("id DESC").
		Find(&rows).Error; err != nil {
		return nil, err
	}

	views := make([]stakeholder.MeetingView, len(rows))
	for i := range rows {
		views[i] = toMeetingView(&rows[i])
	}
	return views, nil
}

func toMeetingView(m *models.MeetingModel) stakeholder.MeetingView {
	view := stakeholder.MeetingView{
		Meeting:      m.ToDomain(),
		Participants: make([]stakeholder.ParticipantRef, 0, len(m.Participants)),
		Requirements: make([]stakeholder.RequirementRef, 0, len(m.Requirements)),
	}
	for _, p := range m.Participants {
		ref := stakeholder.ParticipantRef{ID: p.StakeholderID}
		if p.Stakeholder != nil {
			ref.Name = p.Stakeholder.Name
			ref.Email = p.Stakeholder.Email
			ref.Role = p.Stakeholder.Role
		}
		view.Participants = append(view.Participants, ref)
	}
	for _, link := range m.Requirements {
		ref := stakeholder.RequirementRef{ID: link.RequirementID}
		if link.Requirement != nil {
			ref.Title = link.Requirement.Title
			ref.Status = string(link.Requirement.Status)
		}
		view.Requirements = append(view.Requirements, ref)
	}
	return view
}

var (
	_ stakeholder.StakeholderRepository = (*GormStakeholderRepository)(nil)
	_ stakeholder.MeetingRepository     = (*GormMeetingRepository)(nil)
)
