package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ddd-task-manager/internal/application"
	"github.com/oksasatya/go-ddd-task-manager/internal/domain/repository"
	"github.com/oksasatya/go-ddd-task-manager/internal/interface/middleware"
	"github.com/oksasatya/go-ddd-task-manager/pkg/response"
	"github.com/oksasatya/go-ddd-task-manager/pkg/validation"
)

// respondError maps an error from any layer to its status and client message.
// Unclassified errors are logged and reported as a bare 500.
func respondError(c *gin.Context, logger *logrus.Logger, err error) {
	var verrs validation.Errors
	switch {
	case errors.As(err, &verrs):
		response.Error(c, http.StatusBadRequest, verrs.Error())
	case errors.Is(err, application.ErrDuplicateIdentity):
		response.Error(c, http.StatusBadRequest, "User already exists")
	case errors.Is(err, application.ErrInvalidCredentials):
		response.Error(c, http.StatusUnauthorized, "Invalid credentials")
	case errors.Is(err, application.ErrUnauthenticated):
		response.Error(c, http.StatusUnauthorized, "Invalid or expired token")
	case errors.Is(err, application.ErrTaskNotFound):
		response.Error(c, http.StatusNotFound, "Task not found")
	case errors.Is(err, repository.ErrMalformedID):
		response.Error(c, http.StatusBadRequest, "Invalid ID format")
	case errors.Is(err, application.ErrExportUnavailable):
		response.Error(c, http.StatusServiceUnavailable, "Export is not configured")
	default:
		logger.WithFields(logrus.Fields{
			"request_id": c.GetString(middleware.CtxRequestIDKey),
			"method":     c.Request.Method,
			"path":       c.FullPath(),
		}).WithError(err).Error("request failed")
		response.Error(c, http.StatusInternalServerError, "Internal server error")
	}
}

// bindJSON decodes the body into req and reports binding failures as
// validation errors.
func bindJSON(c *gin.Context, logger *logrus.Logger, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		respondError(c, logger, validation.ToErrors(err))
		return false
	}
	return true
}
