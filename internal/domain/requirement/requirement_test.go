package requirement

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRequirement(t *testing.T) *Requirement {
	t.Helper()
	r, err := NewRequirement(uuid.New(), "user_owner", "Login flow", Attributes{})
	require.NoError(t, err)
	return r
}

func ptr[T any](v T) *T {
	return &v
}

func TestNewRequirement(t *testing.T) {
	projectID := uuid.New()

	t.Run("applies defaults", func(t *testing.T) {
		r, err := NewRequirement(projectID, "user_1", "  Login flow  ", Attributes{})

		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, r.ID)
		assert.Equal(t, projectID, r.ProjectID)
		assert.Equal(t, "Login flow", r.Title)
		assert.Equal(t, TypeFunctional, r.Type)
		assert.Equal(t, PriorityMedium, r.Priority)
		assert.Equal(t, StatusDraft, r.Status)
		assert.Equal(t, 1, r.Version)
		assert.Equal(t, "user_1", r.OwnerID)
		assert.Nil(t, r.Description)
	})

	t.Run("keeps explicit values", func(t *testing.T) {
		r, err := NewRequirement(projectID, "user_1", "Audit export", Attributes{
			Description: ptr("CSV and PDF"),
			Type:        TypeBusiness,
			Priority:    PriorityHigh,
			Status:      StatusReview,
		})

		require.NoError(t, err)
		assert.Equal(t, TypeBusiness, r.Type)
		assert.Equal(t, PriorityHigh, r.Priority)
		assert.Equal(t, StatusReview, r.Status)
		require.NotNil(t, r.Description)
		assert.Equal(t, "CSV and PDF", *r.Description)
	})

	t.Run("blank title", func(t *testing.T) {
		_, err := NewRequirement(projectID, "user_1", "   ", Attributes{})
		assert.ErrorIs(t, err, ErrTitleRequired)
	})

	t.Run("title too long", func(t *testing.T) {
		_, err := NewRequirement(projectID, "user_1", strings.Repeat("é", MaxTitleLength+1), Attributes{})
		assert.ErrorIs(t, err, ErrTitleTooLong)
	})

	t.Run("invalid enum", func(t *testing.T) {
		_, err := NewRequirement(projectID, "user_1", "x", Attributes{Status: "DONE"})
		assert.ErrorIs(t, err, ErrInvalidStatus)
	})

	t.Run("missing owner", func(t *testing.T) {
		_, err := NewRequirement(projectID, "", "x", Attributes{})
		assert.Error(t, err)
	})

	t.Run("normalizes title to NFC", func(t *testing.T) {
		r, err := NewRequirement(projectID, "user_1", "Café", Attributes{})
		require.NoError(t, err)
		assert.Equal(t, "Café", r.Title)
	})
}

func TestRequirement_ApplyUpdate(t *testing.T) {
	t.Run("status change bumps version once", func(t *testing.T) {
		r := newTestRequirement(t)

		changes, action, err := r.ApplyUpdate(Patch{Status: ptr(StatusReview)})

		require.NoError(t, err)
		assert.Equal(t, 2, r.Version)
		assert.Equal(t, ActionStatusChanged, action)
		require.Len(t, changes, 1)
		assert.Equal(t, FieldStatus, changes[0].Field)
		assert.Equal(t, "DRAFT", *changes[0].Old)
		assert.Equal(t, "REVIEW", *changes[0].New)
		assert.Equal(t, StatusReview, r.Status)
	})

	t.Run("status wins over priority", func(t *testing.T) {
		r := newTestRequirement(t)

		changes, action, err := r.ApplyUpdate(Patch{Status: ptr(StatusReview), Priority: ptr(PriorityHigh)})

		require.NoError(t, err)
		assert.Equal(t, ActionStatusChanged, action)
		assert.Len(t, changes, 2)
		assert.Equal(t, FieldPriority, changes[0].Field)
		assert.Equal(t, FieldStatus, changes[1].Field)
	})

	t.Run("priority wins over generic", func(t *testing.T) {
		r := newTestRequirement(t)

		_, action, err := r.ApplyUpdate(Patch{Title: ptr("Login flow v2"), Priority: ptr(PriorityLow)})

		require.NoError(t, err)
		assert.Equal(t, ActionPriorityChanged, action)
	})

	t.Run("generic update", func(t *testing.T) {
		r := newTestRequirement(t)

		changes, action, err := r.ApplyUpdate(Patch{Description: ptr("Use OAuth")})

		require.NoError(t, err)
		assert.Equal(t, ActionUpdated, action)
		require.Len(t, changes, 1)
		assert.Nil(t, changes[0].Old)
		assert.Equal(t, "Use OAuth", *changes[0].New)
	})

	t.Run("unchanged fields are excluded", func(t *testing.T) {
		r := newTestRequirement(t)

		changes, _, err := r.ApplyUpdate(Patch{
			Title:  ptr("Login flow"),
			Type:   ptr(TypeFunctional),
			Status: ptr(StatusApproved),
		})

		require.NoError(t, err)
		require.Len(t, changes, 1)
		assert.Equal(t, FieldStatus, changes[0].Field)
	})

	t.Run("no-op update leaves state untouched", func(t *testing.T) {
		r := newTestRequirement(t)
		before := *r

		_, _, err := r.ApplyUpdate(Patch{Title: ptr("Login flow"), Status: ptr(StatusDraft)})

		assert.ErrorIs(t, err, ErrNoChanges)
		assert.Equal(t, before, *r)
	})

	t.Run("empty patch", func(t *testing.T) {
		r := newTestRequirement(t)
		_, _, err := r.ApplyUpdate(Patch{})
		assert.ErrorIs(t, err, ErrNoChanges)
		assert.Equal(t, 1, r.Version)
	})

	t.Run("invalid value does not mutate", func(t *testing.T) {
		r := newTestRequirement(t)

		_, _, err := r.ApplyUpdate(Patch{Title: ptr("New"), Priority: ptr(Priority("URGENT"))})

		assert.ErrorIs(t, err, ErrInvalidPrio)
		assert.Equal(t, "Login flow", r.Title)
		assert.Equal(t, 1, r.Version)
	})

	t.Run("clearing description", func(t *testing.T) {
		r, err := NewRequirement(uuid.New(), "u", "t", Attributes{Description: ptr("old")})
		require.NoError(t, err)

		changes, _, err := r.ApplyUpdate(Patch{Description: ptr("")})

		require.NoError(t, err)
		assert.Nil(t, r.Description)
		require.Len(t, changes, 1)
		assert.Equal(t, "old", *changes[0].Old)
		assert.Nil(t, changes[0].New)
	})

	t.Run("consecutive updates never skip versions", func(t *testing.T) {
		r := newTestRequirement(t)
		for i, s := range []Status{StatusReview, StatusApproved, StatusImplemented} {
			_, _, err := r.ApplyUpdate(Patch{Status: ptr(s)})
			require.NoError(t, err)
			assert.Equal(t, i+2, r.Version)
		}
	})
}
