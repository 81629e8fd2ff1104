package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/reqtrace/backend/internal/application/access"
	appreq "github.com/reqtrace/backend/internal/application/requirement"
	appst "github.com/reqtrace/backend/internal/application/stakeholder"
	"github.com/reqtrace/backend/internal/infrastructure/persistence"
	"github.com/reqtrace/backend/internal/interfaces/http/middleware"
	"github.com/reqtrace/backend/tests/testutil"
	"go.uber.org/zap/zaptest"
)

const testPrincipalHeader = "X-Test-Principal"

type fakeMatrixRenderer struct {
	pdf []byte
	got *appreq.MatrixResponse
}

func (f *fakeMatrixRenderer) RenderMatrixPDF(_ context.Context, m *appreq.MatrixResponse) ([]byte, error) {
	f.got = m
	return f.pdf, nil
}

type handlerHarness struct {
	router *gin.Engine
	fx     *testutil.Fixture
	reqSvc *appreq.Service
	stSvc  *appst.Service
}

// newHandlerHarness wires both handlers over sqlite. The principal comes
// from the X-Test-Principal header instead of a token.
func newHandlerHarness(t *testing.T) *handlerHarness {
	t.Helper()
	middleware.SetupValidator()

	db := testutil.NewSQLiteDB(t)
	fx := testutil.SeedFixture(t, db)
	logger := zaptest.NewLogger(t)
	resolver := access.NewPolicyResolver(persistence.NewGormProjectRepository(db))

	reqSvc := appreq.NewService(
		resolver,
		persistence.NewGormRequirementRepository(db),
		persistence.NewGormRequirementQueryRepository(db),
		persistence.NewGormTaskRepository(db),
		persistence.NewGormUserRepository(db),
		persistence.NewGormStakeholderRepository(db),
		persistence.NewGormTransactionScope(db),
		logger,
	)
	stSvc := appst.NewService(
		resolver,
		persistence.NewGormStakeholderRepository(db),
		persistence.NewGormMeetingRepository(db),
		persistence.NewGormRequirementRepository(db),
		logger,
	)

	router := gin.New()
	router.Use(middleware.RequestID(), func(c *gin.Context) {
		if p := c.GetHeader(testPrincipalHeader); p != "" {
			c.Set(middleware.PrincipalIDKey, p)
		}
		c.Next()
	})

	rh := NewRequirementHandler(reqSvc)
	reqs := router.Group("/api/requirements")
	reqs.POST("", rh.Create)
	reqs.GET("/project/:projectId", rh.ListByProject)
	reqs.GET("/project/:projectId/traceability-matrix", rh.Matrix)
	reqs.GET("/project/:projectId/traceability-matrix/pdf", rh.MatrixPDF)
	reqs.GET("/:requirementId", rh.Get)
	reqs.PUT("/:requirementId", rh.Update)
	reqs.DELETE("/:requirementId", rh.Delete)
	reqs.POST("/:requirementId/comment", rh.AddComment)
	reqs.POST("/:requirementId/link-task", rh.LinkTask)
	reqs.DELETE("/:requirementId/link-task/:taskId", rh.UnlinkTask)

	sh := NewStakeholderHandler(stSvc)
	sts := router.Group("/api/stakeholders")
	sts.POST("", sh.Create)
	sts.GET("/project/:projectId", sh.ListByProject)
	sts.PUT("/:stakeholderId", sh.Update)
	sts.DELETE("/:stakeholderId", sh.Delete)
	sts.POST("/meetings", sh.CreateMeeting)
	sts.GET("/meetings/project/:projectId", sh.ListMeetings)

	return &handlerHarness{router: router, fx: fx, reqSvc: reqSvc, stSvc: stSvc}
}

func (h *handlerHarness) do(t *testing.T, principal, method, path string, body any, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	hdr := map[string]string{}
	if principal != "" {
		hdr[testPrincipalHeader] = principal
	}
	for i := 0; i+1 < len(headers); i += 2 {
		hdr[headers[i]] = headers[i+1]
	}
	return testutil.PerformRequest(t, h.router, method, path, body, hdr)
}

func (h *handlerHarness) createRequirement(t *testing.T, principal, title string, extra map[string]any) appreq.RequirementResponse {
	t.Helper()
	body := map[string]any{"projectId": h.fx.ProjectID, "title": title}
	for k, v := range extra {
		body[k] = v
	}
	w := h.do(t, principal, http.MethodPost, "/api/requirements", body)
	if w.Code != http.StatusCreated {
		t.Fatalf("create requirement: %d %s", w.Code, w.Body.String())
	}
	return testutil.DecodeData[appreq.RequirementResponse](t, w)
}
