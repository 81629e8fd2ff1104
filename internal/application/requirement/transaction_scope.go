package requirement

import (
	"context"

	"github.com/reqtrace/backend/internal/domain/requirement"
)

// TransactionScope runs a unit of work against repositories that share one
// database transaction. fn returning an error rolls everything back.
type TransactionScope interface {
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories are the requirement-side repositories bound to
// the current transaction
type TransactionalRepositories interface {
	Requirements() requirement.RequirementRepository
	History() requirement.HistoryRepository
	Links() requirement.LinkRepository
	Comments() requirement.CommentRepository
}
