package middleware

import (
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/reqtrace/backend/internal/domain/shared"
	"github.com/reqtrace/backend/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// IdempotencyKeyHeader carries the client-chosen retry key
const IdempotencyKeyHeader = "Idempotency-Key"

// MaxIdempotencyKeyLength bounds the header value
const MaxIdempotencyKeyLength = 255

// IdempotencyConfig configures the Idempotency middleware
type IdempotencyConfig struct {
	Store  shared.IdempotencyStore
	TTL    time.Duration
	Logger *zap.Logger
}

// Idempotency rejects a request whose Idempotency-Key the same principal
// already used on the same route within the TTL. Requests without the
// header pass through. A key is consumed when the request is admitted and
// released again when the handler answers with a 5xx, so the client may
// retry a failed write with the same key.
func Idempotency(cfg IdempotencyConfig) gin.HandlerFunc {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}

	return func(c *gin.Context) {
		key := strings.TrimSpace(c.GetHeader(IdempotencyKeyHeader))
		if key == "" || cfg.Store == nil {
			c.Next()
			return
		}
		if len(key) > MaxIdempotencyKeyLength {
			abortWithError(c, http.StatusBadRequest, "INVALID_IDEMPOTENCY_KEY",
				"Idempotency-Key must be at most 255 characters")
			return
		}

		scoped := idempotencyScope(GetPrincipalID(c), c.Request.Method, c.Request.URL.Path, key)
		fresh, err := cfg.Store.MarkProcessed(c.Request.Context(), scoped, ttl)
		if err != nil {
			// Store outages must not block writes
			log.Error("Idempotency store unavailable",
				zap.String("request_id", GetRequestID(c)),
				zap.Error(err),
			)
			c.Next()
			return
		}
		if !fresh {
			log.Info("Duplicate request rejected",
				zap.String("request_id", GetRequestID(c)),
				zap.String("principal_id", GetPrincipalID(c)),
				zap.String("path", c.Request.URL.Path),
			)
			abortWithError(c, http.StatusConflict, dto.ErrCodeDuplicateRequest,
				"A request with this Idempotency-Key was already processed")
			return
		}
		c.Next()

		if c.Writer.Status() >= http.StatusInternalServerError {
			if err := cfg.Store.Release(c.Request.Context(), scoped); err != nil {
				log.Warn("Failed to release idempotency key",
					zap.String("request_id", GetRequestID(c)),
					zap.Error(err),
				)
			}
		}
	}
}

// idempotencyScope hashes the key together with who sent it and where
func idempotencyScope(principalID, method, path, key string) string {
	sum := sha256.Sum256([]byte(principalID + "\x00" + method + "\x00" + path + "\x00" + key))
	return hex.EncodeToString(sum[:])
}
