package requirement

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/reqtrace/backend/internal/application/access"
	"github.com/reqtrace/backend/internal/domain/project"
	"github.com/reqtrace/backend/internal/domain/requirement"
	"github.com/reqtrace/backend/internal/domain/shared"
	"github.com/reqtrace/backend/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// RecentCommentLimit is how many comments each list row carries
const RecentCommentLimit = 3

// Errors raised by the requirement use cases
var (
	ErrRequirementNotFound       = shared.NewDomainError("REQUIREMENT_NOT_FOUND", "Requirement not found")
	ErrRequirementOrTaskNotFound = shared.NewDomainError("REQUIREMENT_OR_TASK_NOT_FOUND", "Requirement or task not found")
	ErrLinkNotFound              = shared.NewDomainError("LINK_NOT_FOUND", "This requirement is not linked to this task")
	ErrInvalidStakeholders       = shared.NewDomainError("INVALID_STAKEHOLDERS", "Stakeholders must belong to the requirement's project")
)

// AccessResolver resolves a principal's capabilities on a project
type AccessResolver interface {
	ResolveProject(ctx context.Context, principalID string, projectID uuid.UUID) (*project.Project, *project.Capabilities, error)
}

// StakeholderCounter checks that stakeholder ids belong to a project
type StakeholderCounter interface {
	CountInProject(ctx context.Context, projectID uuid.UUID, ids []uuid.UUID) (int64, error)
}

// Service implements the requirement use cases: lifecycle, comments, task
// links and the traceability matrix
type Service struct {
	access       AccessResolver
	requirements requirement.RequirementRepository
	queries      requirement.QueryRepository
	tasks        project.TaskRepository
	users        project.UserRepository
	stakeholders StakeholderCounter
	txScope      TransactionScope
	logger       *zap.Logger
	metrics      *telemetry.RequirementMetrics
	renderer     MatrixRenderer
}

// NewService creates a new requirement Service
func NewService(
	access AccessResolver,
	requirements requirement.RequirementRepository,
	queries requirement.QueryRepository,
	tasks project.TaskRepository,
	users project.UserRepository,
	stakeholders StakeholderCounter,
	txScope TransactionScope,
	logger *zap.Logger,
) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		access:       access,
		requirements: requirements,
		queries:      queries,
		tasks:        tasks,
		users:        users,
		stakeholders: stakeholders,
		txScope:      txScope,
		logger:       logger.Named("requirement"),
	}
}

// SetMetrics enables business metrics
func (s *Service) SetMetrics(m *telemetry.RequirementMetrics) {
	s.metrics = m
}

// SetRenderer enables PDF export of the traceability matrix
func (s *Service) SetRenderer(r MatrixRenderer) {
	s.renderer = r
}

func forbidden(message string) error {
	return shared.NewDomainError(shared.ErrForbidden.Code, message)
}

// fail records err on the span and logs it. Rejections carrying a domain
// code are logged at Warn, anything else at Error.
func (s *Service) fail(span trace.Span, msg string, err error, fields ...zap.Field) error {
	telemetry.RecordError(span, err)
	fields = append(fields, zap.Error(err))
	var de *shared.DomainError
	if errors.As(err, &de) {
		s.logger.Warn(msg, append(fields, zap.String("code", de.Code))...)
	} else {
		s.logger.Error(msg, fields...)
	}
	return err
}

// load fetches a requirement and the principal's capabilities on its project
func (s *Service) load(ctx context.Context, principalID string, id uuid.UUID) (*requirement.Requirement, *project.Capabilities, error) {
	r, err := s.requirements.FindByID(ctx, id)
	if err != nil {
		if shared.IsNotFound(err) {
			return nil, nil, ErrRequirementNotFound
		}
		return nil, nil, err
	}
	_, caps, err := s.access.ResolveProject(ctx, principalID, r.ProjectID)
	if err != nil {
		if errors.Is(err, access.ErrProjectNotFound) {
			return nil, nil, ErrRequirementNotFound
		}
		return nil, nil, err
	}
	return r, caps, nil
}

func (s *Service) detail(ctx context.Context, id uuid.UUID) (*RequirementResponse, error) {
	d, err := s.queries.FindDetail(ctx, id)
	if err != nil {
		if shared.IsNotFound(err) {
			return nil, ErrRequirementNotFound
		}
		return nil, err
	}
	resp := ToRequirementResponse(d)
	return &resp, nil
}

// Create inserts a requirement at version 1 with its CREATED history row and
// stakeholder links in one transaction
func (s *Service) Create(ctx context.Context, principalID string, req CreateRequirementRequest) (*RequirementResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "requirement", "create",
		telemetry.SpanAttrPrincipalID, principalID,
		telemetry.SpanAttrProjectID, req.ProjectID.String(),
	)
	defer span.End()
	log := []zap.Field{zap.String("principal_id", principalID), zap.String("project_id", req.ProjectID.String())}

	_, caps, err := s.access.ResolveProject(ctx, principalID, req.ProjectID)
	if err != nil {
		return nil, s.fail(span, "Create requirement failed", err, log...)
	}
	if !caps.CanContribute() {
		return nil, s.fail(span, "Create requirement rejected",
			forbidden("You don't have permission to create requirements in this project"), log...)
	}

	r, err := requirement.NewRequirement(req.ProjectID, principalID, req.Title, requirement.Attributes{
		Description: req.Description,
		Type:        requirement.Type(req.Type),
		Priority:    requirement.Priority(req.Priority),
		Status:      requirement.Status(req.Status),
	})
	if err != nil {
		return nil, s.fail(span, "Create requirement rejected", err, log...)
	}

	links := requirement.NewStakeholderLinks(r.ID, req.StakeholderIDs, requirement.DefaultStakeholderRole)
	if len(links) > 0 {
		ids := make([]uuid.UUID, 0, len(links))
		for _, l := range links {
			ids = append(ids, l.StakeholderID)
		}
		n, err := s.stakeholders.CountInProject(ctx, r.ProjectID, ids)
		if err != nil {
			return nil, s.fail(span, "Create requirement failed", err, log...)
		}
		if n != int64(len(ids)) {
			return nil, s.fail(span, "Create requirement rejected", ErrInvalidStakeholders, log...)
		}
	}

	entry, err := requirement.NewCreatedEntry(r, principalID)
	if err != nil {
		return nil, s.fail(span, "Create requirement failed", err, log...)
	}

	s.logger.Info("Creating requirement", append(log, zap.String("requirement_id", r.ID.String()))...)
	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		if err := repos.Requirements().Create(ctx, r); err != nil {
			return err
		}
		if err := repos.History().Append(ctx, entry); err != nil {
			return err
		}
		if len(links) > 0 {
			return repos.Links().CreateStakeholderLinks(ctx, links)
		}
		return nil
	})
	if err != nil {
		return nil, s.fail(span, "Create requirement failed", err, log...)
	}
	s.metrics.RecordCreated(ctx, r.ProjectID.String())
	telemetry.SetAttributes(span, telemetry.SpanAttrRequirementID, r.ID.String())

	return s.detail(ctx, r.ID)
}

// ListByProject returns the project's requirements newest first
func (s *Service) ListByProject(ctx context.Context, principalID string, projectID uuid.UUID, filter ListRequirementsFilter) ([]RequirementResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "requirement", "list",
		telemetry.SpanAttrPrincipalID, principalID,
		telemetry.SpanAttrProjectID, projectID.String(),
	)
	defer span.End()
	log := []zap.Field{zap.String("principal_id", principalID), zap.String("project_id", projectID.String())}

	_, caps, err := s.access.ResolveProject(ctx, principalID, projectID)
	if err != nil {
		return nil, s.fail(span, "List requirements failed", err, log...)
	}
	if !caps.CanView() {
		return nil, s.fail(span, "List requirements rejected", forbidden("You don't have access to this project"), log...)
	}

	var f requirement.ListFilter
	if filter.Status != "" {
		v := requirement.Status(filter.Status)
		f.Status = &v
	}
	if filter.Priority != "" {
		v := requirement.Priority(filter.Priority)
		f.Priority = &v
	}
	if filter.Type != "" {
		v := requirement.Type(filter.Type)
		f.Type = &v
	}

	details, err := s.queries.ListByProject(ctx, projectID, f, RecentCommentLimit)
	if err != nil {
		return nil, s.fail(span, "List requirements failed", err, log...)
	}
	out := make([]RequirementResponse, 0, len(details))
	for i := range details {
		out = append(out, ToRequirementResponse(&details[i]))
	}
	telemetry.SetAttributes(span, telemetry.SpanAttrResultCount, len(out))
	return out, nil
}

// Get returns the deep projection of one requirement
func (s *Service) Get(ctx context.Context, principalID string, id uuid.UUID) (*RequirementResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "requirement", "get",
		telemetry.SpanAttrPrincipalID, principalID,
		telemetry.SpanAttrRequirementID, id.String(),
	)
	defer span.End()
	log := []zap.Field{zap.String("principal_id", principalID), zap.String("requirement_id", id.String())}

	_, caps, err := s.load(ctx, principalID, id)
	if err != nil {
		return nil, s.fail(span, "Get requirement failed", err, log...)
	}
	if !caps.CanView() {
		return nil, s.fail(span, "Get requirement rejected", forbidden("You don't have access to this requirement"), log...)
	}

	resp, err := s.detail(ctx, id)
	if err != nil {
		return nil, s.fail(span, "Get requirement failed", err, log...)
	}
	return resp, nil
}

// Update applies a partial update. Inside one transaction it re-reads the
// row, diffs, writes conditionally on the read version and appends one
// history row at the new version.
func (s *Service) Update(ctx context.Context, principalID string, id uuid.UUID, req UpdateRequirementRequest) (*RequirementResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "requirement", "update",
		telemetry.SpanAttrPrincipalID, principalID,
		telemetry.SpanAttrRequirementID, id.String(),
	)
	defer span.End()
	log := []zap.Field{zap.String("principal_id", principalID), zap.String("requirement_id", id.String())}

	r, caps, err := s.load(ctx, principalID, id)
	if err != nil {
		return nil, s.fail(span, "Update requirement failed", err, log...)
	}
	if !caps.CanEdit(r.OwnerID) {
		return nil, s.fail(span, "Update requirement rejected",
			forbidden("You don't have permission to update this requirement"), log...)
	}

	patch := requirement.Patch{Title: req.Title, Description: req.Description}
	if req.Type != nil {
		v := requirement.Type(*req.Type)
		patch.Type = &v
	}
	if req.Priority != nil {
		v := requirement.Priority(*req.Priority)
		patch.Priority = &v
	}
	if req.Status != nil {
		v := requirement.Status(*req.Status)
		patch.Status = &v
	}

	var action requirement.ActionKind
	var version int
	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		current, err := repos.Requirements().FindByID(ctx, id)
		if err != nil {
			if shared.IsNotFound(err) {
				return ErrRequirementNotFound
			}
			return err
		}
		if req.ExpectedVersion != nil && *req.ExpectedVersion != current.Version {
			return shared.ErrConcurrencyConflict
		}

		readVersion := current.Version
		changes, kind, err := current.ApplyUpdate(patch)
		if err != nil {
			return err
		}
		if err := repos.Requirements().UpdateWithVersion(ctx, current, readVersion); err != nil {
			if shared.IsNotFound(err) {
				return ErrRequirementNotFound
			}
			return err
		}

		entry, err := requirement.NewHistoryEntry(current.ID, principalID, kind, current.Version, changes)
		if err != nil {
			return err
		}
		action, version = kind, current.Version
		return repos.History().Append(ctx, entry)
	})
	if err != nil {
		if errors.Is(err, shared.ErrConcurrencyConflict) {
			s.metrics.RecordVersionConflict(ctx)
		}
		return nil, s.fail(span, "Update requirement failed", err, log...)
	}

	s.metrics.RecordChange(ctx, action.String())
	telemetry.SetAttributes(span,
		telemetry.SpanAttrAction, action.String(),
		telemetry.SpanAttrVersion, version,
	)
	s.logger.Info("Requirement updated", append(log,
		zap.String("action", action.String()),
		zap.Int("version", version),
	)...)

	return s.detail(ctx, id)
}

// Delete hard-deletes the requirement and its dependent rows
func (s *Service) Delete(ctx context.Context, principalID string, id uuid.UUID) error {
	ctx, span := telemetry.StartServiceSpan(ctx, "requirement", "delete",
		telemetry.SpanAttrPrincipalID, principalID,
		telemetry.SpanAttrRequirementID, id.String(),
	)
	defer span.End()
	log := []zap.Field{zap.String("principal_id", principalID), zap.String("requirement_id", id.String())}

	_, caps, err := s.load(ctx, principalID, id)
	if err != nil {
		return s.fail(span, "Delete requirement failed", err, log...)
	}
	if !caps.CanDelete() {
		return s.fail(span, "Delete requirement rejected",
			forbidden("You don't have permission to delete this requirement"), log...)
	}

	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		return repos.Requirements().Delete(ctx, id)
	})
	if err != nil {
		if shared.IsNotFound(err) {
			err = ErrRequirementNotFound
		}
		return s.fail(span, "Delete requirement failed", err, log...)
	}
	s.metrics.RecordDeleted(ctx)
	s.logger.Info("Requirement deleted", log...)
	return nil
}

// AddComment appends a comment. Comments are not requirement state, so no
// history row is written and the version is unchanged.
func (s *Service) AddComment(ctx context.Context, principalID string, id uuid.UUID, content string) (*CommentResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "requirement", "add_comment",
		telemetry.SpanAttrPrincipalID, principalID,
		telemetry.SpanAttrRequirementID, id.String(),
	)
	defer span.End()
	log := []zap.Field{zap.String("principal_id", principalID), zap.String("requirement_id", id.String())}

	comment, err := requirement.NewComment(id, principalID, content)
	if err != nil {
		return nil, s.fail(span, "Add comment rejected", err, log...)
	}

	_, caps, err := s.load(ctx, principalID, id)
	if err != nil {
		return nil, s.fail(span, "Add comment failed", err, log...)
	}
	if !caps.CanView() {
		return nil, s.fail(span, "Add comment rejected",
			forbidden("You don't have access to comment on this requirement"), log...)
	}

	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		return repos.Comments().Create(ctx, comment)
	})
	if err != nil {
		return nil, s.fail(span, "Add comment failed", err, log...)
	}
	s.metrics.RecordComment(ctx)

	return &CommentResponse{
		ID:            comment.ID,
		RequirementID: comment.RequirementID,
		Content:       comment.Content,
		User:          s.userRef(ctx, principalID),
		CreatedAt:     comment.CreatedAt,
	}, nil
}

// LinkTask links a task of the same project and records TASK_LINKED at the
// current version
func (s *Service) LinkTask(ctx context.Context, principalID string, id, taskID uuid.UUID) (*TaskLinkResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "requirement", "link_task",
		telemetry.SpanAttrPrincipalID, principalID,
		telemetry.SpanAttrRequirementID, id.String(),
		telemetry.SpanAttrTaskID, taskID.String(),
	)
	defer span.End()
	log := []zap.Field{
		zap.String("principal_id", principalID),
		zap.String("requirement_id", id.String()),
		zap.String("task_id", taskID.String()),
	}

	r, caps, err := s.load(ctx, principalID, id)
	if err != nil {
		if errors.Is(err, ErrRequirementNotFound) {
			err = ErrRequirementOrTaskNotFound
		}
		return nil, s.fail(span, "Link task failed", err, log...)
	}
	task, err := s.tasks.FindByID(ctx, taskID)
	if err != nil {
		if shared.IsNotFound(err) {
			err = ErrRequirementOrTaskNotFound
		}
		return nil, s.fail(span, "Link task failed", err, log...)
	}
	if !caps.CanContribute() {
		return nil, s.fail(span, "Link task rejected",
			forbidden("You don't have permission to link tasks in this project"), log...)
	}

	link, err := requirement.NewTaskLink(r, task.ID, task.ProjectID)
	if err != nil {
		return nil, s.fail(span, "Link task rejected", err, log...)
	}

	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		exists, err := repos.Links().TaskLinkExists(ctx, r.ID, task.ID)
		if err != nil {
			return err
		}
		if exists {
			return requirement.ErrDuplicateLink
		}
		if err := repos.Links().CreateTaskLink(ctx, link); err != nil {
			if errors.Is(err, shared.ErrAlreadyExists) {
				return requirement.ErrDuplicateLink
			}
			return err
		}

		current, err := repos.Requirements().FindByID(ctx, r.ID)
		if err != nil {
			return err
		}
		entry, err := requirement.NewTaskLinkedEntry(current, principalID, task.ID, task.Title)
		if err != nil {
			return err
		}
		return repos.History().Append(ctx, entry)
	})
	if err != nil {
		return nil, s.fail(span, "Link task failed", err, log...)
	}
	s.metrics.RecordTaskLink(ctx, "linked")
	s.logger.Info("Task linked to requirement", log...)

	resp := &TaskLinkResponse{
		ID:            link.ID,
		RequirementID: link.RequirementID,
		Task:          TaskResponse{ID: task.ID, Title: task.Title, Status: string(task.Status)},
		CreatedAt:     link.CreatedAt,
	}
	if task.AssigneeID != nil {
		a := s.userRef(ctx, *task.AssigneeID)
		resp.Task.Assignee = &a
	}
	return resp, nil
}

// UnlinkTask removes a task link. The version is unchanged and no history
// row is written.
func (s *Service) UnlinkTask(ctx context.Context, principalID string, id, taskID uuid.UUID) error {
	ctx, span := telemetry.StartServiceSpan(ctx, "requirement", "unlink_task",
		telemetry.SpanAttrPrincipalID, principalID,
		telemetry.SpanAttrRequirementID, id.String(),
		telemetry.SpanAttrTaskID, taskID.String(),
	)
	defer span.End()
	log := []zap.Field{
		zap.String("principal_id", principalID),
		zap.String("requirement_id", id.String()),
		zap.String("task_id", taskID.String()),
	}

	_, caps, err := s.load(ctx, principalID, id)
	if err != nil {
		return s.fail(span, "Unlink task failed", err, log...)
	}
	if !caps.CanContribute() {
		return s.fail(span, "Unlink task rejected",
			forbidden("You don't have permission to unlink tasks in this project"), log...)
	}

	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		return repos.Links().DeleteTaskLink(ctx, id, taskID)
	})
	if err != nil {
		if shared.IsNotFound(err) {
			err = ErrLinkNotFound
		}
		return s.fail(span, "Unlink task failed", err, log...)
	}
	s.metrics.RecordTaskLink(ctx, "unlinked")
	s.logger.Info("Task unlinked from requirement", log...)
	return nil
}

// userRef returns the stored profile of id, or a bare reference when the
// principal has not been synchronized yet
func (s *Service) userRef(ctx context.Context, id string) UserResponse {
	if s.users != nil {
		if u, err := s.users.FindByID(ctx, id); err == nil {
			return UserResponse{ID: u.ID, Name: u.Name, Email: u.Email, ImageURL: u.ImageURL}
		}
	}
	return UserResponse{ID: id}
}
