package integration

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/reqtrace/backend/internal/application/access"
	"github.com/reqtrace/backend/internal/application/identity"
	appreq "github.com/reqtrace/backend/internal/application/requirement"
	appst "github.com/reqtrace/backend/internal/application/stakeholder"
	"github.com/reqtrace/backend/internal/infrastructure/auth"
	"github.com/reqtrace/backend/internal/infrastructure/config"
	"github.com/reqtrace/backend/internal/infrastructure/persistence"
	"github.com/reqtrace/backend/internal/interfaces/http/handler"
	"github.com/reqtrace/backend/internal/interfaces/http/middleware"
	"github.com/reqtrace/backend/internal/interfaces/http/router"
	"github.com/reqtrace/backend/tests/testutil"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// TestServer is the full HTTP stack over a migrated PostgreSQL database
type TestServer struct {
	DB          *TestDB
	Engine      *gin.Engine
	JWT         *auth.JWTService
	Fixture     *testutil.Fixture
	Requirement *appreq.Service
}

func NewTestServer(t *testing.T, tdb *TestDB) *TestServer {
	t.Helper()
	middleware.SetupValidator()

	fx := testutil.SeedFixture(t, tdb.DB)
	log := zap.NewNop()

	resolver := access.NewPolicyResolver(persistence.NewGormProjectRepository(tdb.DB))
	users := persistence.NewGormUserRepository(tdb.DB)
	requirements := persistence.NewGormRequirementRepository(tdb.DB)
	stakeholders := persistence.NewGormStakeholderRepository(tdb.DB)

	reqSvc := appreq.NewService(resolver, requirements,
		persistence.NewGormRequirementQueryRepository(tdb.DB),
		persistence.NewGormTaskRepository(tdb.DB),
		users, stakeholders,
		persistence.NewGormTransactionScope(tdb.DB),
		log,
	)
	stSvc := appst.NewService(resolver, stakeholders, persistence.NewGormMeetingRepository(tdb.DB), requirements, log)

	jwtSvc := auth.NewJWTService(config.AuthConfig{
		JWTSecret: "integration-secret-at-least-32-characters",
		Issuer:    "https://id.example.com",
		Audience:  "reqtrace",
	})

	engine, err := router.New(router.Config{
		Logger:          log,
		MaxBodySize:     1 << 20,
		CORS:            middleware.DefaultCORSConfig(),
		JWT:             middleware.JWTMiddlewareConfig{JWTService: jwtSvc},
		PrincipalSyncer: identity.NewPrincipalService(users, log),
		Requirements:    handler.NewRequirementHandler(reqSvc),
		Stakeholders:    handler.NewStakeholderHandler(stSvc),
		System: handler.NewSystemHandler("reqtrace-backend", "test", map[string]handler.Pinger{
			"database": handler.PingerFunc(tdb.SqlDB.PingContext),
		}, log),
	})
	require.NoError(t, err)

	return &TestServer{DB: tdb, Engine: engine, JWT: jwtSvc, Fixture: fx, Requirement: reqSvc}
}

// As returns request headers authenticating principal
func (s *TestServer) As(t *testing.T, principal string) map[string]string {
	t.Helper()
	token, err := s.JWT.GenerateToken(auth.GenerateTokenInput{PrincipalID: principal, Name: "Name of " + principal})
	require.NoError(t, err)
	return map[string]string{middleware.AuthHeaderKey: middleware.BearerPrefix + token}
}

// Do performs one request
func (s *TestServer) Do(t *testing.T, principal, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var headers map[string]string
	if principal != "" {
		headers = s.As(t, principal)
	}
	return testutil.PerformRequest(t, s.Engine, method, path, body, headers)
}

func mustStatus(t *testing.T, w *httptest.ResponseRecorder, status int) {
	t.Helper()
	require.Equal(t, status, w.Code, "body: %s", w.Body.String())
}
