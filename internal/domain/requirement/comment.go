package requirement

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/reqtrace/backend/internal/domain/shared"
)

// ErrCommentRequired is returned for blank comments
var ErrCommentRequired = shared.NewDomainError("COMMENT_REQUIRED", "Comment content is required")

// Comment is a free-text note on a requirement. Comments are never edited.
type Comment struct {
	ID            uuid.UUID
	RequirementID uuid.UUID
	UserID        string
	Content       string
	CreatedAt     time.Time
}

// NewComment trims content and rejects blank input
func NewComment(requirementID uuid.UUID, userID, content string) (*Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrCommentRequired
	}
	return &Comment{
		ID:            uuid.New(),
		RequirementID: requirementID,
		UserID:        userID,
		Content:       content,
		CreatedAt:     time.Now(),
	}, nil
}

// Attachment is file metadata attached to a requirement. The bytes live in
// external storage.
type Attachment struct {
	ID            uuid.UUID
	RequirementID uuid.UUID
	FileName      string
	FileURL       string
	FileSize      int64
	MimeType      string
	UploadedBy    string
	CreatedAt     time.Time
}
