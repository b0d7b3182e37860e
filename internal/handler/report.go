package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"civicreports/internal/engine"
)

type ReportHandler interface {
	GetValidationState(c *gin.Context)
	GetHistory(c *gin.Context)
	GetDuplicates(c *gin.Context)
}

type reportHandler struct {
	engine *engine.Engine
	logger *zap.Logger
}

func NewReportHandler(eng *engine.Engine, logger *zap.Logger) ReportHandler {
	return &reportHandler{engine: eng, logger: logger}
}

// GetValidationState handles GET /api/reports/:id/validation
func (h *reportHandler) GetValidationState(c *gin.Context) {
	reportID := c.Param("id")

	report, err := h.engine.GetValidationState(reportID)
	if err != nil {
		if errors.Is(err, engine.ErrReportNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Report not found"})
			return
		}
		h.logger.Error("Failed to get validation state", zap.String("report_id", reportID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve validation state"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"report": report})
}

// GetHistory handles GET /api/reports/:id/history
func (h *reportHandler) GetHistory(c *gin.Context) {
	reportID := c.Param("id")

	entries, err := h.engine.GetHistory(reportID)
	if err != nil {
		h.logger.Error("Failed to get history", zap.String("report_id", reportID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve history"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"history": entries})
}

// GetDuplicates handles GET /api/reports/:id/duplicates
// Query parameters:
// - refresh: when "true", re-run detection instead of serving the cached run
func (h *reportHandler) GetDuplicates(c *gin.Context) {
	reportID := c.Param("id")

	var candidates interface{}
	var err error
	if c.Query("refresh") == "true" {
		candidates, err = h.engine.DetectDuplicates(reportID)
	} else {
		candidates, err = h.engine.GetDuplicateCandidates(reportID)
	}
	if err != nil {
		if errors.Is(err, engine.ErrReportNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Report not found"})
			return
		}
		h.logger.Error("Failed to detect duplicates", zap.String("report_id", reportID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve duplicate candidates"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"candidates": candidates})
}
