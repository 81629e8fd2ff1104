package stakeholder

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/reqtrace/backend/internal/domain/project"
	"github.com/reqtrace/backend/internal/domain/shared"
	"github.com/reqtrace/backend/internal/domain/stakeholder"
	"github.com/reqtrace/backend/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Errors raised by the stakeholder use cases
var (
	ErrStakeholderNotFound = shared.NewDomainError("STAKEHOLDER_NOT_FOUND", "Stakeholder not found")
	ErrInvalidParticipants = shared.NewDomainError("INVALID_PARTICIPANTS", "Participants must be stakeholders of the meeting's project")
	ErrInvalidRequirements = shared.NewDomainError("INVALID_REQUIREMENTS", "Requirements must belong to the meeting's project")
)

// AccessResolver resolves a principal's capabilities on a project
type AccessResolver interface {
	ResolveProject(ctx context.Context, principalID string, projectID uuid.UUID) (*project.Project, *project.Capabilities, error)
}

// RequirementCounter checks that requirement ids belong to a project
type RequirementCounter interface {
	CountInProject(ctx context.Context, projectID uuid.UUID, ids []uuid.UUID) (int64, error)
}

// Service manages project stakeholders and meetings
type Service struct {
	access       AccessResolver
	stakeholders stakeholder.StakeholderRepository
	meetings     stakeholder.MeetingRepository
	requirements RequirementCounter
	logger       *zap.Logger
}

// NewService creates a new stakeholder Service
func NewService(
	access AccessResolver,
	stakeholders stakeholder.StakeholderRepository,
	meetings stakeholder.MeetingRepository,
	requirements RequirementCounter,
	logger *zap.Logger,
) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		access:       access,
		stakeholders: stakeholders,
		meetings:     meetings,
		requirements: requirements,
		logger:       logger.Named("stakeholder"),
	}
}

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

func forbidden(message string) error {
	return shared.NewDomainError(shared.ErrForbidden.Code, message)
}

// loadForManagement fetches a stakeholder and checks the principal may
// change it
func (s *Service) loadForManagement(ctx context.Context, principalID string, id uuid.UUID, denied string) (*stakeholder.Stakeholder, error) {
	st, err := s.stakeholders.FindByID(ctx, id)
	if err != nil {
		if shared.IsNotFound(err) {
			return nil, ErrStakeholderNotFound
		}
		return nil, err
	}
	_, caps, err := s.access.ResolveProject(ctx, principalID, st.ProjectID)
	if err != nil {
		return nil, err
	}
	if !caps.CanManageStakeholders() {
		return nil, forbidden(denied)
	}
	return st, nil
}

// CreateStakeholder adds a stakeholder to a project
func (s *Service) CreateStakeholder(ctx context.Context, principalID string, req CreateStakeholderRequest) (*StakeholderResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "stakeholder", "create",
		telemetry.SpanAttrPrincipalID, principalID,
		telemetry.SpanAttrProjectID, req.ProjectID.String(),
	)
	defer span.End()
	log := []zap.Field{zap.String("principal_id", principalID), zap.String("project_id", req.ProjectID.String())}

	_, caps, err := s.access.ResolveProject(ctx, principalID, req.ProjectID)
	if err != nil {
		return nil, s.fail(span, "Create stakeholder failed", err, log...)
	}
	if !caps.CanManageStakeholders() {
		return nil, s.fail(span, "Create stakeholder rejected",
			forbidden("You don't have permission to create stakeholders in this project"), log...)
	}

	st, err := stakeholder.NewStakeholder(req.ProjectID, stakeholder.Profile{
		Name:       req.Name,
		Email:      req.Email,
		Role:       req.Role,
		Department: req.Department,
		Phone:      req.Phone,
		Notes:      req.Notes,
	})
	if err != nil {
		return nil, s.fail(span, "Create stakeholder rejected", err, log...)
	}
	if err := s.stakeholders.Create(ctx, st); err != nil {
		return nil, s.fail(span, "Create stakeholder failed", err, log...)
	}

	s.logger.Info("Stakeholder created", append(log, zap.String("stakeholder_id", st.ID.String()))...)
	resp := ToStakeholderResponse(&stakeholder.StakeholderView{Stakeholder: st})
	return &resp, nil
}

// ListByProject returns the project's stakeholders newest first
func (s *Service) ListByProject(ctx context.Context, principalID string, projectID uuid.UUID) ([]StakeholderResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "stakeholder", "list",
		telemetry.SpanAttrPrincipalID, principalID,
		telemetry.SpanAttrProjectID, projectID.String(),
	)
	defer span.End()
	log := []zap.Field{zap.String("principal_id", principalID), zap.String("project_id", projectID.String())}

	_, caps, err := s.access.ResolveProject(ctx, principalID, projectID)
	if err != nil {
		return nil, s.fail(span, "List stakeholders failed", err, log...)
	}
	if !caps.CanView() {
		return nil, s.fail(span, "List stakeholders rejected", forbidden("You don't have access to this project"), log...)
	}

	views, err := s.stakeholders.ListByProject(ctx, projectID)
	if err != nil {
		return nil, s.fail(span, "List stakeholders failed", err, log...)
	}
	out := make([]StakeholderResponse, 0, len(views))
	for i := range views {
		out = append(out, ToStakeholderResponse(&views[i]))
	}
	telemetry.SetAttributes(span, telemetry.SpanAttrResultCount, len(out))
	return out, nil
}

// UpdateStakeholder applies a partial profile update
func (s *Service) UpdateStakeholder(ctx context.Context, principalID string, id uuid.UUID, req UpdateStakeholderRequest) (*StakeholderResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "stakeholder", "update",
		telemetry.SpanAttrPrincipalID, principalID,
		telemetry.SpanAttrStakeholderID, id.String(),
	)
	defer span.End()
	log := []zap.Field{zap.String("principal_id", principalID), zap.String("stakeholder_id", id.String())}

	st, err := s.loadForManagement(ctx, principalID, id, "You don't have permission to update this stakeholder")
	if err != nil {
		return nil, s.fail(span, "Update stakeholder failed", err, log...)
	}

	if err := st.Update(stakeholder.ProfileUpdate{
		Name:       req.Name,
		Email:      req.Email,
		Role:       req.Role,
		Department: req.Department,
		Phone:      req.Phone,
		Notes:      req.Notes,
	}); err != nil {
		return nil, s.fail(span, "Update stakeholder rejected", err, log...)
	}
	if err := s.stakeholders.Update(ctx, st); err != nil {
		if shared.IsNotFound(err) {
			err = ErrStakeholderNotFound
		}
		return nil, s.fail(span, "Update stakeholder failed", err, log...)
	}

	s.logger.Info("Stakeholder updated", log...)
	resp := ToStakeholderResponse(&stakeholder.StakeholderView{Stakeholder: st})
	return &resp, nil
}

// DeleteStakeholder removes a stakeholder and its requirement and meeting
// links
func (s *Service) DeleteStakeholder(ctx context.Context, principalID string, id uuid.UUID) error {
	ctx, span := telemetry.StartServiceSpan(ctx, "stakeholder", "delete",
		telemetry.SpanAttrPrincipalID, principalID,
		telemetry.SpanAttrStakeholderID, id.String(),
	)
	defer span.End()
	log := []zap.Field{zap.String("principal_id", principalID), zap.String("stakeholder_id", id.String())}

	if _, err := s.loadForManagement(ctx, principalID, id, "You don't have permission to delete this stakeholder"); err != nil {
		return s.fail(span, "Delete stakeholder failed", err, log...)
	}
	if err := s.stakeholders.Delete(ctx, id); err != nil {
		if shared.IsNotFound(err) {
			err = ErrStakeholderNotFound
		}
		return s.fail(span, "Delete stakeholder failed", err, log...)
	}
	s.logger.Info("Stakeholder deleted", log...)
	return nil
}

// CreateMeeting schedules a meeting. Participants and requirements must
// belong to the same project.
func (s *Service) CreateMeeting(ctx context.Context, principalID string, req CreateMeetingRequest) (*MeetingResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "stakeholder", "create_meeting",
		telemetry.SpanAttrPrincipalID, principalID,
		telemetry.SpanAttrProjectID, req.ProjectID.String(),
	)
	defer span.End()
	log := []zap.Field{zap.String("principal_id", principalID), zap.String("project_id", req.ProjectID.String())}

	_, caps, err := s.access.ResolveProject(ctx, principalID, req.ProjectID)
	if err != nil {
		return nil, s.fail(span, "Create meeting failed", err, log...)
	}
	if !caps.CanContribute() {
		return nil, s.fail(span, "Create meeting rejected",
			forbidden("You don't have permission to create meetings in this project"), log...)
	}

	meeting, err := stakeholder.NewMeeting(req.ProjectID, principalID, stakeholder.MeetingDetails{
		Title:          req.Title,
		Description:    req.Description,
		MeetingDate:    req.MeetingDate,
		Duration:       req.Duration,
		Location:       req.Location,
		Notes:          req.Notes,
		ParticipantIDs: req.ParticipantIDs,
		RequirementIDs: req.RequirementIDs,
	})
	if err != nil {
		return nil, s.fail(span, "Create meeting rejected", err, log...)
	}

	if n := len(meeting.ParticipantIDs); n > 0 {
		count, err := s.stakeholders.CountInProject(ctx, meeting.ProjectID, meeting.ParticipantIDs)
		if err != nil {
			return nil, s.fail(span, "Create meeting failed", err, log...)
		}
		if count != int64(n) {
			return nil, s.fail(span, "Create meeting rejected", ErrInvalidParticipants, log...)
		}
	}
	if n := len(meeting.RequirementIDs); n > 0 {
		count, err := s.requirements.CountInProject(ctx, meeting.ProjectID, meeting.RequirementIDs)
		if err != nil {
			return nil, s.fail(span, "Create meeting failed", err, log...)
		}
		if count != int64(n) {
			return nil, s.fail(span, "Create meeting rejected", ErrInvalidRequirements, log...)
		}
	}

	if err := s.meetings.Create(ctx, meeting); err != nil {
		return nil, s.fail(span, "Create meeting failed", err, log...)
	}
	telemetry.SetAttributes(span, telemetry.SpanAttrMeetingID, meeting.ID.String())
	s.logger.Info("Meeting created", append(log,
		zap.String("meeting_id", meeting.ID.String()),
		zap.Int("participants", len(meeting.ParticipantIDs)),
		zap.Int("requirements", len(meeting.RequirementIDs)),
	)...)

	view, err := s.meetings.FindByID(ctx, meeting.ID)
	if err != nil {
		return nil, s.fail(span, "Create meeting failed", err, log...)
	}
	resp := ToMeetingResponse(view)
	return &resp, nil
}

// ListMeetings returns the project's meetings, most recent meeting date first
func (s *Service) ListMeetings(ctx context.Context, principalID string, projectID uuid.UUID) ([]MeetingResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "stakeholder", "list_meetings",
		telemetry.SpanAttrPrincipalID, principalID,
		telemetry.SpanAttrProjectID, projectID.String(),
	)
	defer span.End()
	log := []zap.Field{zap.String("principal_id", principalID), zap.String("project_id", projectID.String())}

	_, caps, err := s.access.ResolveProject(ctx, principalID, projectID)
	if err != nil {
		return nil, s.fail(span, "List meetings failed", err, log...)
	}
	if !caps.CanView() {
		return nil, s.fail(span, "List meetings rejected", forbidden("You don't have access to this project"), log...)
	}

	views, err := s.meetings.ListByProject(ctx, projectID)
	if err != nil {
		return nil, s.fail(span, "List meetings failed", err, log...)
	}
	out := make([]MeetingResponse, 0, len(views))
	for i := range views {
		out = append(out, ToMeetingResponse(&views[i]))
	}
	return out, nil
}
