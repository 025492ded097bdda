package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ddd-task-manager/internal/application"
	"github.com/oksasatya/go-ddd-task-manager/internal/domain/entity"
	"github.com/oksasatya/go-ddd-task-manager/pkg/response"
)

const (
	CtxUserKey   = "user"
	CtxUserIDKey = "userID"
)

// Authenticator resolves a bearer token to a user without its password hash.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*entity.User, error)
}

func bearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// Auth requires "Authorization: Bearer <token>" and puts the resolved user on
// the context under CtxUserKey and its id under CtxUserIDKey.
func Auth(auth Authenticator, logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			response.Error(c, http.StatusUnauthorized, "Authentication required")
			return
		}

		u, err := auth.Authenticate(c.Request.Context(), token)
		if err != nil {
			if errors.Is(err, application.ErrUnauthenticated) {
				logger.WithField("request_id", c.GetString(CtxRequestIDKey)).WithError(err).Debug("bearer token rejected")
				response.Error(c, http.StatusUnauthorized, "Invalid or expired token")
				return
			}
			logger.WithField("request_id", c.GetString(CtxRequestIDKey)).WithError(err).Error("authenticate request failed")
			response.Error(c, http.StatusInternalServerError, "Internal server error")
			return
		}

		c.Set(CtxUserKey, u)
		c.Set(CtxUserIDKey, u.ID)
		c.Next()
	}
}

// CurrentUser returns the user stored by Auth.
func CurrentUser(c *gin.Context) (*entity.User, bool) {
	v, ok := c.Get(CtxUserKey)
	if !ok {
		return nil, false
	}
	u, ok := v.(*entity.User)
	return u, ok && u != nil
}
