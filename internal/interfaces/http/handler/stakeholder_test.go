package handler

import (
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	appst "github.com/reqtrace/backend/internal/application/stakeholder"
	"github.com/reqtrace/backend/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStakeholderHandler_CRUD(t *testing.T) {
	h := newHandlerHarness(t)

	w := h.do(t, testutil.MemberID, http.MethodPost, "/api/stakeholders", map[string]any{
		"projectId": h.fx.ProjectID, "name": "Grace",
	})
	testutil.AssertErrorResponse(t, w, http.StatusForbidden, "FORBIDDEN")

	w = h.do(t, testutil.LeadID, http.MethodPost, "/api/stakeholders", map[string]any{
		"projectId": h.fx.ProjectID, "name": "Grace", "email": "grace@example.com", "role": "Sponsor",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := testutil.DecodeData[appst.StakeholderResponse](t, w)
	assert.Equal(t, "Grace", created.Name)

	w = h.do(t, testutil.LeadID, http.MethodPost, "/api/stakeholders", map[string]any{
		"projectId": h.fx.ProjectID, "name": "Bad", "email": "not-an-email",
	})
	testutil.AssertErrorResponse(t, w, http.StatusBadRequest, "VALIDATION_ERROR")

	w = h.do(t, testutil.ViewerID, http.MethodGet, "/api/stakeholders/project/"+h.fx.ProjectID.String(), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, testutil.DecodeData[[]appst.StakeholderResponse](t, w), 1)

	path := "/api/stakeholders/" + created.ID.String()
	w = h.do(t, testutil.LeadID, http.MethodPut, path, map[string]any{"role": "Owner"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Owner", testutil.DecodeData[appst.StakeholderResponse](t, w).Role)

	w = h.do(t, testutil.LeadID, http.MethodPut, "/api/stakeholders/"+uuid.NewString(), map[string]any{"role": "Owner"})
	testutil.AssertErrorResponse(t, w, http.StatusNotFound, "STAKEHOLDER_NOT_FOUND")

	w = h.do(t, testutil.LeadID, http.MethodDelete, path, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Stakeholder deleted successfully", testutil.DecodeEnvelope(t, w).Message)

	w = h.do(t, testutil.LeadID, http.MethodDelete, path, nil)
	testutil.AssertErrorResponse(t, w, http.StatusNotFound, "STAKEHOLDER_NOT_FOUND")
}

func TestStakeholderHandler_Meetings(t *testing.T) {
	h := newHandlerHarness(t)
	participant := h.fx.AddStakeholder(t, h.fx.ProjectID, "Linus")
	foreign := h.fx.AddStakeholder(t, h.fx.OtherProjectID, "Ken")
	req := h.createRequirement(t, testutil.LeadID, "Discussed in kickoff", nil)
	date := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

	w := h.do(t, testutil.MemberID, http.MethodPost, "/api/stakeholders/meetings", map[string]any{
		"projectId":      h.fx.ProjectID,
		"title":          "Kickoff",
		"meetingDate":    date,
		"duration":       60,
		"participantIds": []uuid.UUID{participant},
		"requirementIds": []uuid.UUID{req.ID},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	meeting := testutil.DecodeData[appst.MeetingResponse](t, w)
	assert.Equal(t, testutil.MemberID, meeting.CreatedBy)
	require.Len(t, meeting.Participants, 1)
	assert.Equal(t, "Linus", meeting.Participants[0].Name)
	require.Len(t, meeting.Requirements, 1)
	assert.Equal(t, req.ID, meeting.Requirements[0].ID)

	tests := []struct {
		name      string
		principal string
		body      map[string]any
		status    int
		code      string
	}{
		{"missing date", testutil.MemberID, map[string]any{"projectId": h.fx.ProjectID, "title": "x"}, http.StatusBadRequest, "VALIDATION_ERROR"},
		{"negative duration", testutil.MemberID, map[string]any{"projectId": h.fx.ProjectID, "title": "x", "meetingDate": date, "duration": -5}, http.StatusBadRequest, "VALIDATION_ERROR"},
		{"foreign participant", testutil.MemberID, map[string]any{"projectId": h.fx.ProjectID, "title": "x", "meetingDate": date, "participantIds": []uuid.UUID{foreign}}, http.StatusBadRequest, "INVALID_PARTICIPANTS"},
		{"unknown requirement", testutil.MemberID, map[string]any{"projectId": h.fx.ProjectID, "title": "x", "meetingDate": date, "requirementIds": []uuid.UUID{uuid.New()}}, http.StatusBadRequest, "INVALID_REQUIREMENTS"},
		{"viewer", testutil.ViewerID, map[string]any{"projectId": h.fx.ProjectID, "title": "x", "meetingDate": date}, http.StatusForbidden, "FORBIDDEN"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := h.do(t, tt.principal, http.MethodPost, "/api/stakeholders/meetings", tt.body)
			testutil.AssertErrorResponse(t, w, tt.status, tt.code)
		})
	}

	w = h.do(t, testutil.ViewerID, http.MethodGet, "/api/stakeholders/meetings/project/"+h.fx.ProjectID.String(), nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	list := testutil.DecodeData[[]appst.MeetingResponse](t, w)
	require.Len(t, list, 1)
	assert.Equal(t, "Kickoff", list[0].Title)
}
