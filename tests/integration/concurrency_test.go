package integration

import (
	"fmt"
	"net/http"
	"sync"
	"testing"

	appreq "github.com/reqtrace/backend/internal/application/requirement"
	"github.com/reqtrace/backend/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Concurrent writers holding the same version: exactly one wins, the rest
// see VERSION_CONFLICT, and history gains exactly one row.
func TestConcurrentUpdates_OptimisticLock(t *testing.T) {
	s := NewTestServer(t, NewTestDB(t))

	w := s.Do(t, testutil.LeadID, http.MethodPost, "/api/requirements", map[string]any{
		"projectId": s.Fixture.ProjectID, "title": "Contended",
	})
	mustStatus(t, w, http.StatusCreated)
	created := testutil.DecodeData[appreq.RequirementResponse](t, w)
	path := "/api/requirements/" + created.ID.String()

	const writers = 8
	headers := s.As(t, testutil.LeadID)
	codes := make([]int, writers)
	errCodes := make([]string, writers)

	var wg sync.WaitGroup
	start := make(chan struct{})
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			rec := testutil.PerformRequest(t, s.Engine, http.MethodPut, path, map[string]any{
				"title":           fmt.Sprintf("Writer %d", i),
				"expectedVersion": 1,
			}, headers)
			codes[i] = rec.Code
			if rec.Code != http.StatusOK {
				errCodes[i] = testutil.DecodeEnvelope(t, rec).Error.Code
			}
		}(i)
	}
	close(start)
	wg.Wait()

	wins := 0
	for i, code := range codes {
		switch code {
		case http.StatusOK:
			wins++
		case http.StatusConflict:
			assert.Equal(t, "VERSION_CONFLICT", errCodes[i])
		default:
			t.Errorf("writer %d: unexpected status %d", i, code)
		}
	}
	assert.Equal(t, 1, wins)

	assert.Equal(t, int64(2), s.DB.Count("requirement_history", "requirement_id = ?", created.ID))
	var version int
	require.NoError(t, s.DB.DB.Table("requirements").Select("version").Where("id = ?", created.ID).Scan(&version).Error)
	assert.Equal(t, 2, version)
}

// Writers without an expected version retry until they land; every landed
// write takes a distinct version.
func TestConcurrentUpdates_SequentialVersions(t *testing.T) {
	s := NewTestServer(t, NewSharedTestDB(t))

	w := s.Do(t, testutil.LeadID, http.MethodPost, "/api/requirements", map[string]any{
		"projectId": s.Fixture.ProjectID, "title": "Busy",
	})
	mustStatus(t, w, http.StatusCreated)
	created := testutil.DecodeData[appreq.RequirementResponse](t, w)
	path := "/api/requirements/" + created.ID.String()

	const writers = 5
	headers := s.As(t, testutil.LeadID)
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for attempt := 0; attempt < 20; attempt++ {
				rec := testutil.PerformRequest(t, s.Engine, http.MethodPut, path, map[string]any{
					"title": fmt.Sprintf("Busy %d", i),
				}, headers)
				if rec.Code != http.StatusConflict {
					assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
					return
				}
			}
			t.Errorf("writer %d never landed", i)
		}(i)
	}
	wg.Wait()

	var versions []int
	require.NoError(t, s.DB.DB.Table("requirement_history").
		Where("requirement_id = ?", created.ID).
		Order("version").
		Pluck("version", &versions).Error)
	assert.Equal(t, []int{1, 2, 3, 4, 5, 6}, versions)
}
