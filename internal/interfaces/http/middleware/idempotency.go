package middleware

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopbill/backend/internal/domain/shared"
	"github.com/shopbill/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// IdempotencyKeyHeader is the header clients use to make a retried
// request safe
const IdempotencyKeyHeader = "Idempotency-Key"

const maxIdempotencyKeyLength = 255

// IdempotencyConfig holds configuration for the idempotency guard
type IdempotencyConfig struct {
	Store shared.IdempotencyStore
	TTL   time.Duration
	// Scope namespaces the keys of one family of endpoints
	Scope string
}

// Idempotency rejects a request whose Idempotency-Key was already used by
// the same shop within TTL. The key is claimed before the handler runs and
// released again if the handler does not succeed, so a failed attempt can
// be retried. Requests without the header pass through untouched. When the
// store is unreachable the request is let through.
func Idempotency(cfg IdempotencyConfig) gin.HandlerFunc {
	if cfg.TTL <= 0 {
		cfg.TTL = shared.DefaultIdempotencyConfig().TTL
	}

	return func(c *gin.Context) {
		key := c.GetHeader(IdempotencyKeyHeader)
		if key == "" || cfg.Store == nil {
			c.Next()
			return
		}
		if len(key) > maxIdempotencyKeyLength {
			abortWithError(c, http.StatusBadRequest, shared.CodeValidation,
				fmt.Sprintf("%s must be at most %d characters", IdempotencyKeyHeader, maxIdempotencyKeyLength))
			return
		}

		actor, ok := GetActor(c)
		if !ok {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		log := logger.FromContext(ctx)
		storeKey := fmt.Sprintf("%s:%s:%s", cfg.Scope, actor.TenantID, key)

		claimed, err := cfg.Store.MarkProcessed(ctx, storeKey, cfg.TTL)
		if err != nil {
			log.Warn("Idempotency store unavailable, processing request anyway",
				zap.String("idempotency_key", key),
				zap.Error(err),
			)
			c.Next()
			return
		}
		if !claimed {
			log.Info("Duplicate request rejected", zap.String("idempotency_key", key))
			abortWithError(c, http.StatusConflict, shared.CodeDuplicateRequest,
				"A request with this Idempotency-Key has already been processed")
			return
		}

		c.Next()

		if status := c.Writer.Status(); status < 200 || status >= 300 {
			if err := cfg.Store.Release(context.WithoutCancel(ctx), storeKey); err != nil {
				log.Warn("Failed to release idempotency key",
					zap.String("idempotency_key", key),
					zap.Error(err),
				)
			}
		}
	}
}
