package v1

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"docflow/internal/db/repositories"
)

type startInstanceRequest struct {
	WorkflowID int64  `json:"workflowId" binding:"required"`
	SubjectID  string `json:"subjectId" binding:"required"`
	StartedBy  int64  `json:"startedBy" binding:"required"`
}

// registerInstanceRoutes wires lifecycle and audit endpoints.
func (h *APIHandlers) registerInstanceRoutes(group *gin.RouterGroup) {
	group.POST("", h.startInstance)
	group.GET("", h.listInstancesForSubject)
	group.GET("/:instanceId", h.getInstanceDetail)
}

func (h *APIHandlers) startInstance(c *gin.Context) {
	var req startInstanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid instance payload"})
		return
	}

	instance, err := h.instanceService.Start(c.Request.Context(), req.WorkflowID, req.SubjectID, req.StartedBy)
	if errors.Is(err, repositories.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Workflow not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to start workflow instance"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"instance": instance})
}

func (h *APIHandlers) listInstancesForSubject(c *gin.Context) {
	subjectID := c.Query("subjectId")
	if subjectID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "subjectId query parameter is required"})
		return
	}

	instances, err := h.instanceService.ListInstancesForSubject(c.Request.Context(), subjectID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list instances"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"instances": instances,
		"count":     len(instances),
	})
}

func (h *APIHandlers) getInstanceDetail(c *gin.Context) {
	detail, err := h.instanceService.InstanceDetail(c.Request.Context(), c.Param("instanceId"))
	if errors.Is(err, repositories.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Instance not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load instance"})
		return
	}

	c.JSON(http.StatusOK, detail)
}
