package persistence

import (
	"context"

	appreq "github.com/reqtrace/backend/internal/application/requirement"
	"github.com/reqtrace/backend/internal/domain/requirement"
	"gorm.io/gorm"
)

// GormTransactionScope implements TransactionScope using GORM transactions
type GormTransactionScope struct {
	db *gorm.DB
}

// NewGormTransactionScope creates a new GormTransactionScope
func NewGormTransactionScope(db *gorm.DB) *GormTransactionScope {
	return &GormTransactionScope{db: db}
}

// Execute runs fn inside one transaction; an error from fn rolls it back
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos appreq.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTransactionalRepositories{tx: tx})
	})
}

type gormTransactionalRepositories struct {
	tx *gorm.DB
}

func (r *gormTransactionalRepositories) Requirements() requirement.RequirementRepository {
	return NewGormRequirementRepository(r.tx)
}

func (r *gormTransactionalRepositories) History() requirement.HistoryRepository {
	return NewGormHistoryRepository(r.tx)
}

func (r *gormTransactionalRepositories) Links() requirement.LinkRepository {
	return NewGormLinkRepository(r.tx)
}

func (r *gormTransactionalRepositories) Comments() requirement.CommentRepository {
	return NewGormCommentRepository(r.tx)
}

var (
	_ appreq.TransactionScope          = (*GormTransactionScope)(nil)
	_ appreq.TransactionalRepositories = (*gormTransactionalRepositories)(nil)
)
