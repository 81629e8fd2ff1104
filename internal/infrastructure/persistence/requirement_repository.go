package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/reqtrace/backend/internal/domain/requirement"
	"github.com/reqtrace/backend/internal/domain/shared"
	"github.com/reqtrace/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormRequirementRepository implements requirement.RequirementRepository using GORM
type GormRequirementRepository struct {
	db *gorm.DB
}

// NewGormRequirementRepository creates a new GormRequirementRepository
func NewGormRequirementRepository(db *gorm.DB) *GormRequirementRepository {
	return &GormRequirementRepository{db: db}
}

// FindByID finds a requirement by its ID
func (r *GormRequirementRepository) FindByID(ctx context.Context, id uuid.UUID) (*requirement.Requirement, error) {
	var model models.RequirementModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Create inserts a new requirement row
func (r *GormRequirementRepository) Create(ctx context.Context, req *requirement.Requirement) error {
	model := models.RequirementModelFromDomain(req)
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(model).Error
}

// UpdateWithVersion writes the mutable columns only while the stored version
// still equals expectedVersion
func (r *GormRequirementRepository) UpdateWithVersion(ctx context.Context, req *requirement.Requirement, expectedVersion int) error {
	result := r.db.WithContext(ctx).
		Model(&models.RequirementModel{}).
		Where("id = ? AND version = ?", req.ID, expectedVersion).
		Updates(map[string]any{
			"title":       req.Title,
			"description": req.Description,
			"type":        req.Type,
			"priority":    req.Priority,
			"status":      req.Status,
			"version":     req.Version,
			"updated_at":  req.UpdatedAt,
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		var count int64
		if err := r.db.WithContext(ctx).Model(&models.RequirementModel{}).Where("id = ?", req.ID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return shared.ErrNotFound
		}
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// CountInProject counts how many of ids are requirements of projectID
func (r *GormRequirementRepository) CountInProject(ctx context.Context, projectID uuid.UUID, ids []uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.RequirementModel{}).
		Where("project_id = ? AND id IN ?", projectID, ids).
		Count(&count).Error
	return count, err
}

// requirementChildTables hold rows keyed by requirement_id
var requirementChildTables = []any{
	&models.RequirementHistoryModel{},
	&models.RequirementCommentModel{},
	&models.RequirementAttachmentModel{},
	&models.RequirementTaskModel{},
	&models.StakeholderRequirementModel{},
	&models.MeetingRequirementModel{},
}

// Delete removes the requirement and every row that references it
func (r *GormRequirementRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, child := range requirementChildTables {
			if err := tx.Where("requirement_id = ?", id).Delete(child).Error; err != nil {
				return err
			}
		}
		result := tx.Where("id = ?", id).Delete(&models.RequirementModel{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

// GormHistoryRepository implements requirement.HistoryRepository using GORM
type GormHistoryRepository struct {
	db *gorm.DB
}

// NewGormHistoryRepository creates a new GormHistoryRepository
func NewGormHistoryRepository(db *gorm.DB) *GormHistoryRepository {
	return &GormHistoryRepository{db: db}
}

// Append inserts a history row
func (r *GormHistoryRepository) Append(ctx context.Context, entry *requirement.HistoryEntry) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(models.HistoryModelFromDomain(entry)).Error
}

// ListByRequirement returns history newest first
func (r *GormHistoryRepository) ListByRequirement(ctx context.Context, requirementID uuid.UUID) ([]requirement.HistoryEntry, error) {
	var rows []models.RequirementHistoryModel
	if err := r.db.WithContext(ctx).
		Where("requirement_id = ?", requirementID).
		Order("created_at DESC").Order("version DESC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	entries := make([]requirement.HistoryEntry, len(rows))
	for i := range rows {
		entries[i] = *rows[i].ToDomain()
	}
	return entries, nil
}

// CountByRequirement counts history rows of a requirement
func (r *GormHistoryRepository) CountByRequirement(ctx context.Context, requirementID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.RequirementHistoryModel{}).
		Where("requirement_id = ?", requirementID).
		Count(&count).Error
	return count, err
}

// GormLinkRepository implements requirement.LinkRepository using GORM
type GormLinkRepository struct {
	db *gorm.DB
}

// NewGormLinkRepository creates a new GormLinkRepository
func NewGormLinkRepository(db *gorm.DB) *GormLinkRepository {
	return &GormLinkRepository{db: db}
}

// CreateTaskLink inserts the link. A conflicting pair inserts nothing and
// is reported as shared.ErrAlreadyExists.
func (r *GormLinkRepository) CreateTaskLink(ctx context.Context, link *requirement.TaskLink) error {
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "requirement_id"}, {Name: "task_id"}},
			DoNothing: true,
		}).
		Omit(clause.Associations).
		Create(models.TaskLinkModelFromDomain(link))

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrAlreadyExists
	}
	return nil
}

// TaskLinkExists reports whether the pair is already linked
func (r *GormLinkRepository) TaskLinkExists(ctx context.Context, requirementID, taskID uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.RequirementTaskModel{}).
		Where("requirement_id = ? AND task_id = ?", requirementID, taskID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// DeleteTaskLink removes the pair
func (r *GormLinkRepository) DeleteTaskLink(ctx context.Context, requirementID, taskID uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("requirement_id = ? AND task_id = ?", requirementID, taskID).
		Delete(&models.RequirementTaskModel{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// CreateStakeholderLinks inserts stakeholder links, skipping pairs that
// already exist
func (r *GormLinkRepository) CreateStakeholderLinks(ctx context.Context, links []requirement.StakeholderLink) error {
	if len(links) == 0 {
		return nil
	}
	rows := make([]models.StakeholderRequirementModel, len(links))
	for i, l := range links {
		rows[i] = models.StakeholderLinkModelFromDomain(l)
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "requirement_id"}, {Name: "stakeholder_id"}},
			DoNothing: true,
		}).
		Omit(clause.Associations).
		Create(&rows).Error
}

// GormCommentRepository implements requirement.CommentRepository using GORM
type GormCommentRepository struct {
	db *gorm.DB
}

// NewGormCommentRepository creates a new GormCommentRepository
func NewGormCommentRepository(db *gorm.DB) *GormCommentRepository {
	return &GormCommentRepository{db: db}
}

// Create inserts a comment
func (r *GormCommentRepository) Create(ctx context.Context, c *requirement.Comment) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(models.CommentModelFromDomain(c)).Error
}

var (
	_ requirement.RequirementRepository = (*GormRequirementRepository)(nil)
	_ requirement.HistoryRepository     = (*GormHistoryRepository)(nil)
	_ requirement.LinkRepository        = (*GormLinkRepository)(nil)
	_ requirement.CommentRepository     = (*GormCommentRepository)(nil)
)
