package middleware

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/reqtrace/backend/internal/application/identity"
	"github.com/reqtrace/backend/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// PrincipalSyncer upserts the authenticated principal's profile
type PrincipalSyncer interface {
	Sync(ctx context.Context, input identity.PrincipalInput) error
}

// PrincipalSync writes the token's profile claims to the users table before
// the handler runs. Register it after the JWT middleware.
func PrincipalSync(syncer PrincipalSyncer, logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(c *gin.Context) {
		claims := GetJWTClaims(c)
		if claims == nil {
			c.Next()
			return
		}

		err := syncer.Sync(c.Request.Context(), identity.PrincipalInput{
			ID:       claims.PrincipalID(),
			Name:     claims.Name,
			Email:    claims.Email,
			ImageURL: claims.Picture,
		})
		if err != nil {
			logger.Error("Principal sync failed",
				zap.String("request_id", GetRequestID(c)),
				zap.String("principal_id", claims.PrincipalID()),
				zap.Error(err),
			)
			abortWithError(c, http.StatusInternalServerError, dto.ErrCodeInternal, dto.InternalErrorMessage)
			return
		}
		c.Next()
	}
}
