package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/reqtrace/backend/internal/infrastructure/logger"
	"github.com/reqtrace/backend/internal/interfaces/http/dto"
	"github.com/reqtrace/backend/internal/interfaces/http/handler"
	"github.com/reqtrace/backend/internal/interfaces/http/middleware"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// APIPrefix is where the authenticated routes are mounted
const APIPrefix = "/api"

// Config holds everything New needs to assemble the HTTP surface. Optional
// pieces are skipped when nil.
type Config struct {
	Logger         *zap.Logger
	TrustedProxies []string
	MaxBodySize    int64
	CORS           middleware.CORSConfig
	Tracing        middleware.TracingConfig
	JWT            middleware.JWTMiddlewareConfig

	Meter           metric.Meter
	PrincipalSyncer middleware.PrincipalSyncer
	Idempotency     *middleware.IdempotencyConfig

	Requirements *handler.RequirementHandler
	Stakeholders *handler.StakeholderHandler
	System       *handler.SystemHandler
}

// New builds the gin engine: global middleware, the unauthenticated probes
// and the authenticated /api groups.
func New(cfg Config) (*gin.Engine, error) {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	engine := gin.New()
	engine.HandleMethodNotAllowed = true
	if len(cfg.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.TrustedProxies); err != nil {
			return nil, err
		}
	}

	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log, logger.WithQuietPaths("/health", "/ready")))
	engine.Use(middleware.Secure())
	engine.Use(middleware.CORSWithConfig(cfg.CORS))
	engine.Use(middleware.Tracing(cfg.Tracing))
	if cfg.Meter != nil {
		metrics, err := middleware.HTTPMetrics(cfg.Meter)
		if err != nil {
			return nil, err
		}
		engine.Use(metrics)
	}
	if cfg.MaxBodySize > 0 {
		engine.Use(middleware.BodyLimit(cfg.MaxBodySize))
	}

	engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, dto.NewErrorResponseWithRequestID(
			dto.ErrCodeRouteNotFound, "Route not found", middleware.GetRequestID(c)))
	})
	engine.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, dto.NewErrorResponseWithRequestID(
			dto.ErrCodeMethodNotAllowed, "Method not allowed", middleware.GetRequestID(c)))
	})

	if cfg.System != nil {
		engine.GET("/health", cfg.System.Health)
		engine.GET("/ready", cfg.System.Ready)
	}

	if cfg.JWT.Logger == nil {
		cfg.JWT.Logger = log
	}
	r := NewRouter(engine, APIPrefix)
	r.Use(middleware.JWTAuthMiddlewareWithConfig(cfg.JWT), middleware.SpanAttributes())
	if cfg.PrincipalSyncer != nil {
		r.Use(middleware.PrincipalSync(cfg.PrincipalSyncer, log))
	}

	var idem gin.HandlerFunc
	if cfg.Idempotency != nil {
		idemCfg := *cfg.Idempotency
		if idemCfg.Logger == nil {
			idemCfg.Logger = log
		}
		idem = middleware.Idempotency(idemCfg)
	}

	if cfg.Requirements != nil {
		r.Register(RequirementRoutes(cfg.Requirements, idem))
	}
	if cfg.Stakeholders != nil {
		r.Register(StakeholderRoutes(cfg.Stakeholders, idem))
	}
	r.Setup()

	return engine, nil
}

// RequirementRoutes mounts /requirements. idem, when set, guards the
// creating POSTs.
func RequirementRoutes(h *handler.RequirementHandler, idem gin.HandlerFunc) *DomainGroup {
	return NewDomainGroup("/requirements").
		POST("", guarded(idem, h.Create)...).
		GET("/project/:projectId", h.ListByProject).
		GET("/project/:projectId/traceability-matrix", h.Matrix).
		GET("/project/:projectId/traceability-matrix/pdf", h.MatrixPDF).
		GET("/:requirementId", h.Get).
		PUT("/:requirementId", h.Update).
		DELETE("/:requirementId", h.Delete).
		POST("/:requirementId/comment", guarded(idem, h.AddComment)...).
		POST("/:requirementId/link-task", guarded(idem, h.LinkTask)...).
		DELETE("/:requirementId/link-task/:taskId", h.UnlinkTask)
}

// StakeholderRoutes mounts /stakeholders and the meeting endpoints
func StakeholderRoutes(h *handler.StakeholderHandler, idem gin.HandlerFunc) *DomainGroup {
	return NewDomainGroup("/stakeholders").
		POST("", guarded(idem, h.Create)...).
		GET("/project/:projectId", h.ListByProject).
		PUT("/:stakeholderId", h.Update).
		DELETE("/:stakeholderId", h.Delete).
		POST("/meetings", guarded(idem, h.CreateMeeting)...).
		GET("/meetings/project/:projectId", h.ListMeetings)
}

func guarded(idem, h gin.HandlerFunc) []gin.HandlerFunc {
	if idem == nil {
		return []gin.HandlerFunc{h}
	}
	return []gin.HandlerFunc{idem, h}
}
