package requirement

import (
	"time"

	"github.com/google/uuid"
	"github.com/reqtrace/backend/internal/domain/requirement"
)

// CreateRequirementRequest is the body of POST /api/requirements
type CreateRequirementRequest struct {
	ProjectID      uuid.UUID   `json:"projectId" binding:"required"`
	Title          string      `json:"title" binding:"required,max=1000"`
	Description    *string     `json:"description"`
	Type           string      `json:"type" binding:"omitempty,oneof=FUNCTIONAL NON_FUNCTIONAL BUSINESS TECHNICAL"`
	Priority       string      `json:"priority" binding:"omitempty,oneof=HIGH MEDIUM LOW"`
	Status         string      `json:"status" binding:"omitempty,oneof=DRAFT REVIEW APPROVED IMPLEMENTED VERIFIED CLOSED"`
	StakeholderIDs []uuid.UUID `json:"stakeholderIds"`
}

// UpdateRequirementRequest is a partial update. ExpectedVersion, when set,
// makes the write conditional on the version the client last saw.
type UpdateRequirementRequest struct {
	Title           *string `json:"title" binding:"omitempty,max=1000"`
	Description     *string `json:"description"`
	Type            *string `json:"type" binding:"omitempty,oneof=FUNCTIONAL NON_FUNCTIONAL BUSINESS TECHNICAL"`
	Priority        *string `json:"priority" binding:"omitempty,oneof=HIGH MEDIUM LOW"`
	Status          *string `json:"status" binding:"omitempty,oneof=DRAFT REVIEW APPROVED IMPLEMENTED VERIFIED CLOSED"`
	ExpectedVersion *int    `json:"expectedVersion" binding:"omitempty,min=1"`
}

// ListRequirementsFilter holds the optional exact-match query filters
type ListRequirementsFilter struct {
	Status   string `form:"status" binding:"omitempty,oneof=DRAFT REVIEW APPROVED IMPLEMENTED VERIFIED CLOSED"`
	Priority string `form:"priority" binding:"omitempty,oneof=HIGH MEDIUM LOW"`
	Type     string `form:"type" binding:"omitempty,oneof=FUNCTIONAL NON_FUNCTIONAL BUSINESS TECHNICAL"`
}

// AddCommentRequest is the body of POST /api/requirements/:id/comment
type AddCommentRequest struct {
	Content string `json:"content" binding:"max=10000"`
}

// LinkTaskRequest is the body of POST /api/requirements/:id/link-task
type LinkTaskRequest struct {
	TaskID uuid.UUID `json:"taskId" binding:"required"`
}

// UserResponse is the public profile of a principal
type UserResponse struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email,omitempty"`
	ImageURL string `json:"image,omitempty"`
}

// StakeholderLinkResponse is a stakeholder attached to a requirement
type StakeholderLinkResponse struct {
	ID          uuid.UUID           `json:"id"`
	Role        string              `json:"role"`
	Stakeholder StakeholderResponse `json:"stakeholder"`
}

// StakeholderResponse is the stakeholder side of a link
type StakeholderResponse struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email,omitempty"`
	Role         string    `json:"role,omitempty"`
	Organization string    `json:"organization,omitempty"`
}

// AttachmentResponse is attachment metadata
type AttachmentResponse struct {
	ID         uuid.UUID `json:"id"`
	FileName   string    `json:"fileName"`
	FileURL    string    `json:"fileUrl"`
	FileSize   int64     `json:"fileSize"`
	MimeType   string    `json:"mimeType"`
	UploadedBy string    `json:"uploadedBy"`
	CreatedAt  time.Time `json:"createdAt"`
}

// CommentResponse is a comment with its author
type CommentResponse struct {
	ID            uuid.UUID    `json:"id"`
	RequirementID uuid.UUID    `json:"requirementId"`
	Content       string       `json:"content"`
	User          UserResponse `json:"user"`
	CreatedAt     time.Time    `json:"createdAt"`
}

// FieldChangeResponse is one diff entry
type FieldChangeResponse struct {
	Field string  `json:"field"`
	Old   *string `json:"old"`
	New   *string `json:"new"`
}

// HistoryResponse is one audit row
type HistoryResponse struct {
	ID        uuid.UUID             `json:"id"`
	Action    string                `json:"action"`
	Version   int                   `json:"version"`
	Changes   []FieldChangeResponse `json:"changes"`
	User      UserResponse          `json:"user"`
	CreatedAt time.Time             `json:"createdAt"`
}

// TaskResponse is a linked task
type TaskResponse struct {
	ID       uuid.UUID     `json:"id"`
	Title    string        `json:"title"`
	Status   string        `json:"status"`
	Assignee *UserResponse `json:"assignee"`
}

// TaskLinkResponse is a requirement-task link with its task
type TaskLinkResponse struct {
	ID            uuid.UUID    `json:"id"`
	RequirementID uuid.UUID    `json:"requirementId"`
	Task          TaskResponse `json:"task"`
	CreatedAt     time.Time    `json:"createdAt"`
}

// ParticipantResponse is a meeting attendee
type ParticipantResponse struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// MeetingLinkResponse is a meeting linked to a requirement
type MeetingLinkResponse struct {
	ID           uuid.UUID             `json:"id"`
	Title        string                `json:"title"`
	MeetingDate  time.Time             `json:"meetingDate"`
	Participants []ParticipantResponse `json:"participants"`
}

// RequirementResponse is the requirement projection returned by every
// read. Collections not loaded for an operation are empty, never null.
type RequirementResponse struct {
	ID           uuid.UUID                 `json:"id"`
	ProjectID    uuid.UUID                 `json:"projectId"`
	Title        string                    `json:"title"`
	Description  *string                   `json:"description"`
	Type         string                    `json:"type"`
	Priority     string                    `json:"priority"`
	Status       string                    `json:"status"`
	Version      int                       `json:"version"`
	OwnerID      string                    `json:"ownerId"`
	Owner        UserResponse              `json:"owner"`
	Stakeholders []StakeholderLinkResponse `json:"stakeholders"`
	Attachments  []AttachmentResponse      `json:"attachments"`
	Comments     []CommentResponse         `json:"comments"`
	History      []HistoryResponse         `json:"history"`
	TaskLinks    []TaskLinkResponse        `json:"taskLinks"`
	MeetingLinks []MeetingLinkResponse     `json:"meetingLinks"`
	CreatedAt    time.Time                 `json:"createdAt"`
	UpdatedAt    time.Time                 `json:"updatedAt"`
}

// MatrixProject identifies the project a matrix was built for
type MatrixProject struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// MatrixStakeholder is a stakeholder cell of the matrix
type MatrixStakeholder struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
	Role string    `json:"role"`
}

// MatrixTask is a task cell of the matrix
type MatrixTask struct {
	ID       uuid.UUID `json:"id"`
	Title    string    `json:"title"`
	Status   string    `json:"status"`
	Assignee string    `json:"assignee"`
}

// MatrixMeeting is a meeting cell of the matrix
type MatrixMeeting struct {
	ID    uuid.UUID `json:"id"`
	Title string    `json:"title"`
	Date  time.Time `json:"date"`
}

// MatrixRow is one requirement with its linked artifacts
type MatrixRow struct {
	ID           uuid.UUID           `json:"id"`
	Title        string              `json:"title"`
	Type         string              `json:"type"`
	Status       string              `json:"status"`
	Priority     string              `json:"priority"`
	Owner        string              `json:"owner"`
	Stakeholders []MatrixStakeholder `json:"stakeholders"`
	Tasks        []MatrixTask        `json:"tasks"`
	Meetings     []MatrixMeeting     `json:"meetings"`
}

// MatrixResponse is the traceability matrix, oldest requirement first
type MatrixResponse struct {
	Project     MatrixProject `json:"project"`
	Matrix      []MatrixRow   `json:"matrix"`
	GeneratedAt time.Time     `json:"generatedAt"`
}

func toUserResponse(u requirement.UserRef) UserResponse {
	return UserResponse{ID: u.ID, Name: u.Name, Email: u.Email, ImageURL: u.ImageURL}
}

func toTaskResponse(t requirement.TaskRef) TaskResponse {
	resp := TaskResponse{ID: t.TaskID, Title: t.Title, Status: t.Status}
	if t.Assignee != nil {
		a := toUserResponse(*t.Assignee)
		resp.Assignee = &a
	}
	return resp
}

// ToRequirementResponse converts a projection to its API shape
func ToRequirementResponse(d *requirement.Detail) RequirementResponse {
	r := d.Requirement
	resp := RequirementResponse{
		ID:           r.ID,
		ProjectID:    r.ProjectID,
		Title:        r.Title,
		Description:  r.Description,
		Type:         r.Type.String(),
		Priority:     r.Priority.String(),
		Status:       r.Status.String(),
		Version:      r.Version,
		OwnerID:      r.OwnerID,
		Owner:        toUserResponse(d.Owner),
		Stakeholders: make([]StakeholderLinkResponse, 0, len(d.Stakeholders)),
		Attachments:  make([]AttachmentResponse, 0, len(d.Attachments)),
		Comments:     make([]CommentResponse, 0, len(d.Comments)),
		History:      make([]HistoryResponse, 0, len(d.History)),
		TaskLinks:    make([]TaskLinkResponse, 0, len(d.Tasks)),
		MeetingLinks: make([]MeetingLinkResponse, 0, len(d.Meetings)),
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}

	for _, s := range d.Stakeholders {
		resp.Stakeholders = append(resp.Stakeholders, StakeholderLinkResponse{
			ID:   s.LinkID,
			Role: s.Role,
			Stakeholder: StakeholderResponse{
				ID:           s.StakeholderID,
				Name:         s.Name,
				Email:        s.Email,
				Role:         s.StakeholderRole,
				Organization: s.Department,
			},
		})
	}
	for _, a := range d.Attachments {
		resp.Attachments = append(resp.Attachments, AttachmentResponse{
			ID:         a.ID,
			FileName:   a.FileName,
			FileURL:    a.FileURL,
			FileSize:   a.FileSize,
			MimeType:   a.MimeType,
			UploadedBy: a.UploadedBy,
			CreatedAt:  a.CreatedAt,
		})
	}
	for _, c := range d.Comments {
		resp.Comments = append(resp.Comments, toCommentResponse(c))
	}
	for _, h := range d.History {
		resp.History = append(resp.History, toHistoryResponse(h))
	}
	for _, t := range d.Tasks {
		resp.TaskLinks = append(resp.TaskLinks, TaskLinkResponse{
			ID:            t.LinkID,
			RequirementID: r.ID,
			Task:          toTaskResponse(t),
			CreatedAt:     t.LinkedAt,
		})
	}
	for _, m := range d.Meetings {
		participants := make([]ParticipantResponse, 0, len(m.Participants))
		for _, p := range m.Participants {
			participants = append(participants, ParticipantResponse{ID: p.StakeholderID, Name: p.Name})
		}
		resp.MeetingLinks = append(resp.MeetingLinks, MeetingLinkResponse{
			ID:           m.MeetingID,
			Title:        m.Title,
			MeetingDate:  m.Date,
			Participants: participants,
		})
	}
	return resp
}

func toCommentResponse(c requirement.CommentView) CommentResponse {
	return CommentResponse{
		ID:            c.ID,
		RequirementID: c.RequirementID,
		Content:       c.Content,
		User:          toUserResponse(c.Author),
		CreatedAt:     c.CreatedAt,
	}
}

func toHistoryResponse(h requirement.HistoryView) HistoryResponse {
	changes := h.Entry.Changes()
	out := make([]FieldChangeResponse, 0, len(changes))
	for _, c := range changes {
		out = append(out, FieldChangeResponse{Field: c.Field, Old: c.Old, New: c.New})
	}
	return HistoryResponse{
		ID:        h.Entry.ID,
		Action:    h.Entry.Action.String(),
		Version:   h.Entry.Version,
		Changes:   out,
		User:      toUserResponse(h.Actor),
		CreatedAt: h.Entry.CreatedAt,
	}
}

// ToMatrixRow flattens a projection into a matrix row
func ToMatrixRow(d *requirement.Detail) MatrixRow {
	r := d.Requirement
	row := MatrixRow{
		ID:           r.ID,
		Title:        r.Title,
		Type:         r.Type.String(),
		Status:       r.Status.String(),
		Priority:     r.Priority.String(),
		Owner:        d.Owner.Name,
		Stakeholders: make([]MatrixStakeholder, 0, len(d.Stakeholders)),
		Tasks:        make([]MatrixTask, 0, len(d.Tasks)),
		Meetings:     make([]MatrixMeeting, 0, len(d.Meetings)),
	}
	for _, s := range d.Stakeholders {
		row.Stakeholders = append(row.Stakeholders, MatrixStakeholder{ID: s.StakeholderID, Name: s.Name, Role: s.Role})
	}
	for _, t := range d.Tasks {
		task := MatrixTask{ID: t.TaskID, Title: t.Title, Status: t.Status}
		if t.Assignee != nil {
			task.Assignee = t.Assignee.Name
		}
		row.Tasks = append(row.Tasks, task)
	}
	for _, m := range d.Meetings {
		row.Meetings = append(row.Meetings, MatrixMeeting{ID: m.MeetingID, Title: m.Title, Date: m.Date})
	}
	return row
}
