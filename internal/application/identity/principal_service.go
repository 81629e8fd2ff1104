package identity

import (
	"context"
	"sync"
	"time"

	"github.com/reqtrace/backend/internal/domain/project"
	"go.uber.org/zap"
)

// DefaultSyncInterval bounds how often one principal's profile is written
const DefaultSyncInterval = 5 * time.Minute

// PrincipalInput is the verified profile carried by an access token
type PrincipalInput struct {
	ID       string
	Name     string
	Email    string
	ImageURL string
}

// PrincipalService keeps the users table in step with the identity
// provider. Rows are upserted from token claims so requirement owners,
// commenters and assignees can be resolved to names.
type PrincipalService struct {
	users    project.UserRepository
	logger   *zap.Logger
	interval time.Duration
	now      func() time.Time

	mu        sync.Mutex
	lastSeen  map[string]time.Time
	lastSweep time.Time
}

// NewPrincipalService creates a new PrincipalService
func NewPrincipalService(users project.UserRepository, logger *zap.Logger) *PrincipalService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PrincipalService{
		users:    users,
		logger:   logger.Named("identity"),
		interval: DefaultSyncInterval,
		now:      time.Now,
		lastSeen: make(map[string]time.Time),
	}
}

// SetSyncInterval overrides DefaultSyncInterval. Zero syncs on every call.
func (s *PrincipalService) SetSyncInterval(d time.Duration) {
	s.interval = d
}

// Sync upserts the principal unless it was synced within the interval
func (s *PrincipalService) Sync(ctx context.Context, input PrincipalInput) error {
	if !s.due(input.ID) {
		return nil
	}

	user, err := project.NewUser(input.ID, input.Name, input.Email, input.ImageURL)
	if err != nil {
		return err
	}
	if err := s.users.Upsert(ctx, user); err != nil {
		s.logger.Error("Failed to sync principal", zap.String("principal_id", input.ID), zap.Error(err))
		return err
	}

	s.mark(user.ID)

	s.logger.Debug("Principal synced", zap.String("principal_id", user.ID))
	return nil
}

func (s *PrincipalService) due(principalID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	last, ok := s.lastSeen[principalID]
	return !ok || s.now().Sub(last) >= s.interval
}

// mark records a write. Expired marks are swept at most once per interval.
func (s *PrincipalService) mark(principalID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	s.lastSeen[principalID] = now
	if now.Sub(s.lastSweep) < s.interval {
		return
	}
	for id, last := range s.lastSeen {
		if now.Sub(last) >= s.interval {
			delete(s.lastSeen, id)
		}
	}
	s.lastSweep = now
}

func (s *PrincipalService) tracked() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.lastSeen)
}
