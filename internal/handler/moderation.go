package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"civicreports/internal/engine"
	"civicreports/internal/middleware"
	"civicreports/internal/models"
)

type ModerationHandler interface {
	SetStatus(c *gin.Context)
	AddModerator(c *gin.Context)
	ListModerators(c *gin.Context)
}

type moderationHandler struct {
	engine *engine.Engine
	logger *zap.Logger
}

func NewModerationHandler(eng *engine.Engine, logger *zap.Logger) ModerationHandler {
	return &moderationHandler{engine: eng, logger: logger}
}

type SetStatusRequest struct {
	Status      string  `json:"status" binding:"required"`
	Reason      string  `json:"reason" binding:"required"`
	NewSeverity *string `json:"new_severity"`
	DuplicateOf *string `json:"duplicate_of"`
}

// SetStatus handles PUT /api/reports/:id/status. The acting moderator comes
// from the JWT claims; thresholds are bypassed entirely.
func (h *moderationHandler) SetStatus(c *gin.Context) {
	reportID := c.Param("id")
	moderatorID := c.MustGet(middleware.ModeratorKey).(string)

	var req SetStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Failed to bind JSON for status override", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var newSeverity *models.Severity
	if req.NewSeverity != nil {
		severity := models.Severity(*req.NewSeverity)
		newSeverity = &severity
	}

	report, err := h.engine.ModeratorSetStatus(reportID, moderatorID,
		models.ValidationStatus(req.Status), req.Reason, newSeverity, req.DuplicateOf)
	if err != nil {
		switch {
		case errors.Is(err, engine.ErrReportNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Report not found"})
		case errors.Is(err, engine.ErrInvalidPayload):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, engine.ErrUnauthorized):
			c.JSON(http.StatusForbidden, gin.H{"error": "Moderator is inactive or unknown"})
		default:
			h.logger.Error("Failed to override report status",
				zap.String("report_id", reportID),
				zap.String("moderator", moderatorID),
				zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update report status"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"report": report})
}

type AddModeratorRequest struct {
	Identifier string `json:"identifier" binding:"required"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Role       string `json:"role"`
	Active     *bool  `json:"active"`
}

// AddModerator handles POST /api/moderators. Posting an existing identifier
// overwrites its info; setting active=false deactivates without deleting.
func (h *moderationHandler) AddModerator(c *gin.Context) {
	var req AddModeratorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Failed to bind JSON for moderator upsert", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}
	role := req.Role
	if role == "" {
		role = "moderator"
	}

	moderator := &models.Moderator{
		Identifier: req.Identifier,
		Name:       req.Name,
		Email:      req.Email,
		Role:       role,
		Active:     active,
	}

	if err := h.engine.AddModerator(moderator); err != nil {
		if errors.Is(err, engine.ErrInvalidPayload) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.logger.Error("Failed to upsert moderator", zap.String("identifier", req.Identifier), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save moderator"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"moderator": moderator})
}

// ListModerators handles GET /api/moderators
func (h *moderationHandler) ListModerators(c *gin.Context) {
	moderators, err := h.engine.ListModerators()
	if err != nil {
		h.logger.Error("Failed to list moderators", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve moderators"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"moderators": moderators})
}
