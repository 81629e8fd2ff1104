package requirement

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCreatedEntry(t *testing.T) {
	r := newTestRequirement(t)

	entry, err := NewCreatedEntry(r, "user_owner")

	require.NoError(t, err)
	assert.Equal(t, ActionCreated, entry.Action)
	assert.Equal(t, 1, entry.Version)
	assert.Equal(t, r.ID, entry.RequirementID)

	changes := entry.Changes()
	require.Len(t, changes, 5)
	for _, c := range changes {
		assert.Nil(t, c.Old, c.Field)
	}
	status, ok := entry.Change(FieldStatus)
	require.True(t, ok)
	assert.Equal(t, "DRAFT", *status.New)
	desc, ok := entry.Change(FieldDescription)
	require.True(t, ok)
	assert.Nil(t, desc.New)
}

func TestNewTaskLinkedEntry(t *testing.T) {
	r := newTestRequirement(t)
	_, _, err := r.ApplyUpdate(Patch{Status: ptr(StatusReview)})
	require.NoError(t, err)
	taskID := uuid.New()

	entry, err := NewTaskLinkedEntry(r, "user_2", taskID, "Build login form")

	require.NoError(t, err)
	assert.Equal(t, ActionTaskLinked, entry.Action)
	assert.Equal(t, 2, entry.Version, "linking reuses the current version")
	assert.Equal(t, 2, r.Version)
	id, ok := entry.Change(FieldTaskID)
	require.True(t, ok)
	assert.Equal(t, taskID.String(), *id.New)
	title, ok := entry.Change(FieldTaskTitle)
	require.True(t, ok)
	assert.Equal(t, "Build login form", *title.New)
}

func TestNewHistoryEntry_Validation(t *testing.T) {
	reqID := uuid.New()

	tests := []struct {
		name    string
		reqID   uuid.UUID
		userID  string
		action  ActionKind
		version int
	}{
		{"nil requirement", uuid.Nil, "u", ActionUpdated, 1},
		{"missing actor", reqID, "", ActionUpdated, 1},
		{"bad action", reqID, "u", ActionKind("DELETED"), 1},
		{"zero version", reqID, "u", ActionUpdated, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewHistoryEntry(tt.reqID, tt.userID, tt.action, tt.version, nil)
			assert.Error(t, err)
		})
	}
}

func TestHistoryEntry_ChangesAreCopied(t *testing.T) {
	entry, err := NewHistoryEntry(uuid.New(), "u", ActionUpdated, 2, []FieldChange{{Field: FieldTitle}})
	require.NoError(t, err)

	changes := entry.Changes()
	changes[0].Field = "mutated"

	assert.Equal(t, FieldTitle, entry.Changes()[0].Field)
}

func TestClassifyChanges(t *testing.T) {
	assert.Equal(t, ActionStatusChanged, ClassifyChanges([]FieldChange{{Field: FieldTitle}, {Field: FieldStatus}}))
	assert.Equal(t, ActionPriorityChanged, ClassifyChanges([]FieldChange{{Field: FieldPriority}, {Field: FieldType}}))
	assert.Equal(t, ActionUpdated, ClassifyChanges([]FieldChange{{Field: FieldDescription}}))
}
