package persistence

import (
	"context"
	"errors"
	"slices"

	"github.com/google/uuid"
	"github.com/reqtrace/backend/internal/domain/requirement"
	"github.com/reqtrace/backend/internal/domain/shared"
	"github.com/reqtrace/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormRequirementQueryRepository implements requirement.QueryRepository.
// Projections are assembled from GORM preloads so each association costs
// one query regardless of the number of requirements.
type GormRequirementQueryRepository struct {
	db *gorm.DB
}

// NewGormRequirementQueryRepository creates a new GormRequirementQueryRepository
func NewGormRequirementQueryRepository(db *gorm.DB) *GormRequirementQueryRepository {
	return &GormRequirementQueryRepository{db: db}
}

func newestFirst(db *gorm.DB) *gorm.DB {
	return db.Order("created_at DESC").Order("id DESC")
}

func oldestFirst(db *gorm.DB) *gorm.DB {
	return db.Order("created_at ASC").Order("id ASC")
}

// withLinks preloads owner, stakeholder, task and meeting associations
func withLinks(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Owner").
		Preload("Stakeholders", oldestFirst).
		Preload("Stakeholders.Stakeholder").
		Preload("Tasks", oldestFirst).
		Preload("Tasks.Task").
		Preload("Tasks.Task.Assignee").
		Preload("Meetings").
		Preload("Meetings.Meeting")
}

// FindDetail loads the full projection of one requirement
func (r *GormRequirementQueryRepository) FindDetail(ctx context.Context, id uuid.UUID) (*requirement.Detail, error) {
	var model models.RequirementModel
	err := withLinks(r.db.WithContext(ctx)).
		Preload("Meetings.Meeting.Participants").
		Preload("Meetings.Meeting.Participants.Stakeholder").
		Preload("Attachments", newestFirst).
		Preload("Comments", newestFirst).
		Preload("Comments.User").
		Preload("History", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at DESC").Order("version DESC")
		}).
		Preload("History.User").
		Where("id = ?", id).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}

	detail := toDetail(&model)
	return &detail, nil
}

// ListByProject returns requirement summaries newest first. Comments are
// fetched in one query and trimmed per requirement, since a preload limit
// would apply to the whole batch.
func (r *GormRequirementQueryRepository) ListByProject(ctx context.Context, projectID uuid.UUID, filter requirement.ListFilter, commentLimit int) ([]requirement.Detail, error) {
	query := r.db.WithContext(ctx).Where("project_id = ?", projectID)
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.Priority != nil {
		query = query.Where("priority = ?", *filter.Priority)
	}
	if filter.Type != nil {
		query = query.Where("type = ?", *filter.Type)
	}

	var rows []models.RequirementModel
	if err := newestFirst(withLinks(query).Preload("Attachments", newestFirst)).Find(&rows).Error; err != nil {
		return nil, err
	}

	details := make([]requirement.Detail, len(rows))
	if len(rows) == 0 {
		return details, nil
	}

	comments := map[uuid.UUID][]requirement.CommentView{}
	if commentLimit > 0 {
		ids := make([]uuid.UUID, len(rows))
		for i := range rows {
			ids[i] = rows[i].ID
		}
		var commentRows []models.RequirementCommentModel
		if err := newestFirst(r.db.WithContext(ctx).Preload("User").Where("requirement_id IN ?", ids)).
			Find(&commentRows).Error; err != nil {
			return nil, err
		}
		for i := range commentRows {
			c := &commentRows[i]
			if len(comments[c.RequirementID]) >= commentLimit {
				continue
			}
			comments[c.RequirementID] = append(comments[c.RequirementID], toCommentView(c))
		}
	}

	for i := range rows {
		details[i] = toDetail(&rows[i])
		if cs, ok := comments[rows[i].ID]; ok {
			details[i].Comments = cs
		}
	}
	return details, nil
}

// ListForMatrix returns the project's requirements oldest first
func (r *GormRequirementQueryRepository) ListForMatrix(ctx context.Context, projectID uuid.UUID) ([]requirement.Detail, error) {
	var rows []models.RequirementModel
	if err := oldestFirst(withLinks(r.db.WithContext(ctx))).
		Where("project_id = ?", projectID).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	details := make([]requirement.Detail, len(rows))
	for i := range rows {
		details[i] = toDetail(&rows[i])
	}
	return details, nil
}

func toUserRef(id string, u *models.UserModel) requirement.UserRef {
	if u == nil {
		return requirement.UserRef{ID: id}
	}
	return requirement.UserRef{ID: u.ID, Name: u.Name, Email: u.Email, ImageURL: u.ImageURL}
}

func toCommentView(c *models.RequirementCommentModel) requirement.CommentView {
	return requirement.CommentView{
		Comment: c.ToDomain(),
		Author:  toUserRef(c.UserID, c.User),
	}
}

// toDetail maps whatever associations were preloaded on m. Slices are never
// nil so they serialize as [].
func toDetail(m *models.RequirementModel) requirement.Detail {
	d := requirement.Detail{
		Requirement:  m.ToDomain(),
		Owner:        toUserRef(m.OwnerID, m.Owner),
		Stakeholders: make([]requirement.StakeholderRef, 0, len(m.Stakeholders)),
		Attachments:  make([]requirement.Attachment, 0, len(m.Attachments)),
		Comments:     make([]requirement.CommentView, 0, len(m.Comments)),
		History:      make([]requirement.HistoryView, 0, len(m.History)),
		Tasks:        make([]requirement.TaskRef, 0, len(m.Tasks)),
		Meetings:     make([]requirement.MeetingRef, 0, len(m.Meetings)),
	}

	for _, link := range m.Stakeholders {
		ref := requirement.StakeholderRef{
			LinkID:        link.ID,
			Role:          link.Role,
			StakeholderID: link.StakeholderID,
		}
		if s := link.Stakeholder; s != nil {
			ref.Name = s.Name
			ref.Email = s.Email
			ref.StakeholderRole = s.Role
			ref.Department = s.Department
		}
		d.Stakeholders = append(d.Stakeholders, ref)
	}

	for i := range m.Attachments {
		d.Attachments = append(d.Attachments, m.Attachments[i].ToDomain())
	}

	for i := range m.Comments {
		d.Comments = append(d.Comments, toCommentView(&m.Comments[i]))
	}

	for i := range m.History {
		h := &m.History[i]
		d.History = append(d.History, requirement.HistoryView{
			Entry: h.ToDomain(),
			Actor: toUserRef(h.UserID, h.User),
		})
	}

	for _, link := range m.Tasks {
		ref := requirement.TaskRef{
			LinkID:   link.ID,
			TaskID:   link.TaskID,
			LinkedAt: link.CreatedAt,
		}
		if t := link.Task; t != nil {
			ref.Title = t.Title
			ref.Status = string(t.Status)
			if t.AssigneeID != nil {
				assignee := toUserRef(*t.AssigneeID, t.Assignee)
				ref.Assignee = &assignee
			}
		}
		d.Tasks = append(d.Tasks, ref)
	}

	for _, link := range m.Meetings {
		ref := requirement.MeetingRef{
			MeetingID:    link.MeetingID,
			Participants: []requirement.ParticipantRef{},
		}
		if mt := link.Meeting; mt != nil {
			ref.Title = mt.Title
			ref.Date = mt.MeetingDate
			for _, p := range mt.Participants {
				pr := requirement.ParticipantRef{StakeholderID: p.StakeholderID}
				if p.Stakeholder != nil {
					pr.Name = p.Stakeholder.Name
				}
				ref.Participants = append(ref.Participants, pr)
			}
		}
		d.Meetings = append(d.Meetings, ref)
	}
	slices.SortStableFunc(d.Meetings, func(a, b requirement.MeetingRef) int {
		return b.Date.Compare(a.Date)
	})

	return d
}

var _ requirement.QueryRepository = (*GormRequirementQueryRepository)(nil)
