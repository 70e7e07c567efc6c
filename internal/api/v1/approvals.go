package v1

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"docflow/internal/db/repositories"
	"docflow/internal/services"
)

type decideRequest struct {
	Decision string  `json:"decision" binding:"required"`
	Comment  *string `json:"comment"`
}

// registerApprovalRoutes wires decision submission and the pending queue.
func (h *APIHandlers) registerApprovalRoutes(group *gin.RouterGroup) {
	group.POST("/:approvalId/decide", h.decideApproval)
	group.GET("/pending", h.listPendingApprovals)
}

func (h *APIHandlers) decideApproval(c *gin.Context) {
	var req decideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid decision payload"})
		return
	}

	approval, err := h.instanceService.Decide(c.Request.Context(), c.Param("approvalId"), req.Decision, req.Comment)
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Approval not found"})
	case errors.Is(err, services.ErrInvalidDecision),
		errors.Is(err, services.ErrRejectNotAllowed),
		errors.Is(err, services.ErrCommentNotAllowed):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrInstanceFinalized):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record decision"})
	default:
		c.JSON(http.StatusOK, gin.H{"approval": approval})
	}
}

func (h *APIHandlers) listPendingApprovals(c *gin.Context) {
	approverID, err := strconv.ParseInt(c.Query("approverId"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "approverId query parameter is required"})
		return
	}

	pending, err := h.instanceService.PendingApprovalsFor(c.Request.Context(), approverID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list pending approvals"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"approvals": pending,
		"count":     len(pending),
	})
}
