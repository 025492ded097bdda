package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ddd-task-manager/internal/domain/repository"
	"github.com/oksasatya/go-ddd-task-manager/pkg/response"
)

type HealthHandler struct {
	Store  repository.Pinger
	Driver string
	Logger *logrus.Logger
}

func NewHealthHandler(store repository.Pinger, driver string, logger *logrus.Logger) *HealthHandler {
	return &HealthHandler{Store: store, Driver: driver, Logger: logger}
}

// Health GET /api/health
func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()
	if err := h.Store.Ping(ctx); err != nil {
		h.Logger.WithError(err).WithField("store", h.Driver).Warn("health check failed")
		response.Error(c, http.StatusServiceUnavailable, "Store unavailable")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"status": "ok", "store": h.Driver}, "OK")
}
