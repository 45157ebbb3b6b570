package middleware

import (
	"errors"
	"net/http"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopbill/backend/internal/domain/shared"
	"github.com/shopbill/backend/internal/infrastructure/auth"
	"github.com/shopbill/backend/internal/infrastructure/logger"
	"github.com/shopbill/backend/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// Auth context keys and headers
const (
	ActorKey        = "actor"
	AuthHeaderKey   = "Authorization"
	BearerPrefix    = "Bearer "
	TenantHeaderKey = "X-Tenant-ID"
	UserHeaderKey   = "X-User-ID"
	RoleHeaderKey   = "X-User-Role"
)

// Authenticator turns a bearer token into the calling actor
type Authenticator interface {
	Authenticate(token string) (shared.Actor, error)
}

// AuthConfig holds configuration for the auth middleware
type AuthConfig struct {
	// Authenticator verifies bearer tokens. Without one only the header
	// fallback can identify callers.
	Authenticator Authenticator
	// AllowHeaderFallback accepts X-Tenant-ID / X-User-ID when no bearer
	// token is sent. Never enable it in production.
	AllowHeaderFallback bool
	// SkipPaths are paths that don't require an actor
	SkipPaths []string
	Logger    *zap.Logger
}

// Auth resolves the actor of every request and binds it to the request
// context and logger. Requests that cannot be attributed to a shop are
// rejected with 401.
func Auth(cfg AuthConfig) gin.HandlerFunc {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	return func(c *gin.Context) {
		if slices.Contains(cfg.SkipPaths, c.Request.URL.Path) {
			c.Next()
			return
		}

		actor, err := resolveActor(c, cfg)
		if err != nil {
			cfg.Logger.Debug("Request rejected by auth",
				zap.String("request_id", c.GetString(RequestIDKey)),
				zap.String("path", c.Request.URL.Path),
				zap.Error(err),
			)
			abortWithError(c, http.StatusUnauthorized, dto.ErrCodeUnauthorized, authErrorMessage(err))
			return
		}

		c.Set(ActorKey, actor)
		ctx := c.Request.Context()
		ctx, _ = logger.WithActor(ctx, logger.FromContext(ctx), actor)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// GetActor returns the actor resolved by Auth
func GetActor(c *gin.Context) (shared.Actor, bool) {
	v, ok := c.Get(ActorKey)
	if !ok {
		return shared.Actor{}, false
	}
	actor, ok := v.(shared.Actor)
	return actor, ok
}

var (
	errMissingCredentials = errors.New("missing authorization header")
	errMalformedHeader    = errors.New("invalid authorization header format")
	errInvalidTenantID    = errors.New("invalid X-Tenant-ID header")
	errInvalidUserID      = errors.New("invalid X-User-ID header")
)

func resolveActor(c *gin.Context, cfg AuthConfig) (shared.Actor, error) {
	header := c.GetHeader(AuthHeaderKey)
	if header != "" {
		if !strings.HasPrefix(header, BearerPrefix) {
			return shared.Actor{}, errMalformedHeader
		}
		token := strings.TrimSpace(strings.TrimPrefix(header, BearerPrefix))
		if token == "" || cfg.Authenticator == nil {
			return shared.Actor{}, auth.ErrInvalidToken
		}
		return cfg.Authenticator.Authenticate(token)
	}

	if !cfg.AllowHeaderFallback {
		return shared.Actor{}, errMissingCredentials
	}

	rawTenant := c.GetHeader(TenantHeaderKey)
	if rawTenant == "" {
		return shared.Actor{}, errMissingCredentials
	}
	tenantID, err := uuid.Parse(rawTenant)
	if err != nil || tenantID == uuid.Nil {
		return shared.Actor{}, errInvalidTenantID
	}

	var userID uuid.UUID
	if raw := c.GetHeader(UserHeaderKey); raw != "" {
		if userID, err = uuid.Parse(raw); err != nil {
			return shared.Actor{}, errInvalidUserID
		}
	}

	role := shared.Role(c.GetHeader(RoleHeaderKey))
	if !role.IsValid() {
		role = shared.RoleStaff
	}
	return shared.NewActor(tenantID, userID, role), nil
}

func authErrorMessage(err error) string {
	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		return "Token has expired"
	case errors.Is(err, auth.ErrTokenNotYetValid):
		return "Token is not valid yet"
	case errors.Is(err, errMissingCredentials):
		return "Authentication required"
	case errors.Is(err, errMalformedHeader):
		return "Invalid authorization header format"
	case errors.Is(err, errInvalidTenantID), errors.Is(err, errInvalidUserID):
		return "Invalid identity headers"
	default:
		return "Invalid token"
	}
}
