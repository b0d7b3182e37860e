package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"civicreports/internal/engine"
)

type MetricsHandler interface {
	GetMetrics(c *gin.Context)
}

type metricsHandler struct {
	engine *engine.Engine
	logger *zap.Logger
}

func NewMetricsHandler(eng *engine.Engine, logger *zap.Logger) MetricsHandler {
	return &metricsHandler{engine: eng, logger: logger}
}

// GetMetrics handles GET /api/metrics
func (h *metricsHandler) GetMetrics(c *gin.Context) {
	summary, err := h.engine.Metrics()
	if err != nil {
		h.logger.Error("Failed to compute metrics", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute metrics"})
		return
	}

	c.JSON(http.StatusOK, summary)
}
