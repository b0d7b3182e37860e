package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"civicreports/internal/engine"
	"civicreports/internal/models"
)

type VoteHandler interface {
	SubmitVote(c *gin.Context)
}

type voteHandler struct {
	engine *engine.Engine
	logger *zap.Logger
}

func NewVoteHandler(eng *engine.Engine, logger *zap.Logger) VoteHandler {
	return &voteHandler{engine: eng, logger: logger}
}

type VoteRequest struct {
	ValidationType string  `json:"validation_type" binding:"required"`
	Comment        string  `json:"comment"`
	NewSeverity    *string `json:"new_severity"`
	DuplicateOf    *string `json:"duplicate_of"`
}

// SubmitVote handles POST /api/reports/:id/votes. The raw voter identifier
// comes from the X-User-Identifier header (session id, account id) with the
// client IP as fallback; it is pseudonymized before it ever reaches storage.
func (h *voteHandler) SubmitVote(c *gin.Context) {
	reportID := c.Param("id")

	var req VoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Failed to bind JSON for vote", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rawIdentifier := c.GetHeader("X-User-Identifier")
	if rawIdentifier == "" {
		rawIdentifier = c.ClientIP()
	}

	payload := engine.VotePayload{
		Comment:     req.Comment,
		DuplicateOf: req.DuplicateOf,
	}
	if req.NewSeverity != nil {
		severity := models.Severity(*req.NewSeverity)
		payload.NewSeverity = &severity
	}

	outcome, err := h.engine.SubmitVote(reportID, rawIdentifier, models.ValidationType(req.ValidationType), payload)
	if err != nil {
		switch {
		case errors.Is(err, engine.ErrReportNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Report not found"})
		case errors.Is(err, engine.ErrInvalidPayload):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, engine.ErrEmptyIdentifier):
			c.JSON(http.StatusConflict, gin.H{"error": "A non-empty user identifier is required"})
		default:
			h.logger.Error("Failed to submit vote",
				zap.String("report_id", reportID),
				zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to submit vote"})
		}
		return
	}

	c.JSON(http.StatusOK, outcome)
}
