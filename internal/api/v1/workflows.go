package v1

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"docflow/internal/db/repositories"
	"docflow/internal/workflows"
)

type createWorkflowRequest struct {
	OrganizationID int64                     `json:"organizationId" binding:"required"`
	CreatedBy      int64                     `json:"createdBy" binding:"required"`
	Definition     workflows.DefinitionInput `json:"definition" binding:"required"`
}

type updateWorkflowRequest struct {
	Name        string  `json:"name" binding:"required"`
	Description *string `json:"description"`
	IsDefault   bool    `json:"isDefault"`
}

// registerWorkflowRoutes wires workflow definition CRUD endpoints.
func (h *APIHandlers) registerWorkflowRoutes(group *gin.RouterGroup) {
	group.POST("", h.createWorkflow)
	group.GET("", h.listWorkflows)
	group.GET("/:workflowId", h.getWorkflow)
	group.PUT("/:workflowId", h.updateWorkflow)
	group.DELETE("/:workflowId", h.deleteWorkflow)
	group.POST("/:workflowId/steps", h.addStep)
	group.PUT("/:workflowId/steps/:stepId", h.updateStep)
	group.DELETE("/:workflowId/steps/:stepId", h.deleteStep)
}

func (h *APIHandlers) createWorkflow(c *gin.Context) {
	var req createWorkflowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid workflow payload"})
		return
	}

	workflow, steps, validation, err := h.workflowService.CreateDefinition(c.Request.Context(), req.OrganizationID, req.CreatedBy, req.Definition)
	if errors.Is(err, workflows.ErrValidation) {
		c.JSON(http.StatusBadRequest, gin.H{
			"validation": validation,
			"message":    "Workflow definition failed validation",
		})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create workflow"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"workflow":   workflow,
		"steps":      steps,
		"validation": validation,
	})
}

func (h *APIHandlers) listWorkflows(c *gin.Context) {
	organizationID, err := strconv.ParseInt(c.Query("organizationId"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "organizationId query parameter is required"})
		return
	}

	records, err := h.workflowService.ListDefinitions(c.Request.Context(), organizationID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list workflows"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"workflows": records,
		"count":     len(records),
	})
}

func (h *APIHandlers) getWorkflow(c *gin.Context) {
	id, ok := paramInt64(c, "workflowId")
	if !ok {
		return
	}

	workflow, steps, err := h.workflowService.GetDefinition(c.Request.Context(), id)
	if errors.Is(err, repositories.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Workflow not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load workflow"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"workflow": workflow,
		"steps":    steps,
	})
}

func (h *APIHandlers) updateWorkflow(c *gin.Context) {
	id, ok := paramInt64(c, "workflowId")
	if !ok {
		return
	}

	var req updateWorkflowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid workflow payload"})
		return
	}

	workflow, err := h.workflowService.UpdateDefinition(c.Request.Context(), id, req.Name, req.Description, req.IsDefault)
	if errors.Is(err, repositories.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Workflow not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update workflow"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"workflow": workflow})
}

func (h *APIHandlers) deleteWorkflow(c *gin.Context) {
	id, ok := paramInt64(c, "workflowId")
	if !ok {
		return
	}

	err := h.workflowService.DeleteDefinition(c.Request.Context(), id)
	if errors.Is(err, repositories.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Workflow not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete workflow"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":     "Workflow deleted",
		"workflow_id": id,
	})
}

func (h *APIHandlers) addStep(c *gin.Context) {
	workflowID, ok := paramInt64(c, "workflowId")
	if !ok {
		return
	}

	var req workflows.StepInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid step payload"})
		return
	}

	step, validation, err := h.workflowService.AddStep(c.Request.Context(), workflowID, req)
	if errors.Is(err, workflows.ErrValidation) {
		c.JSON(http.StatusBadRequest, gin.H{
			"validation": validation,
			"message":    "Step failed validation",
		})
		return
	}
	if errors.Is(err, repositories.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Workflow not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add step"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"step":       step,
		"validation": validation,
	})
}

func (h *APIHandlers) updateStep(c *gin.Context) {
	stepID, ok := paramInt64(c, "stepId")
	if !ok {
		return
	}

	var req workflows.StepInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid step payload"})
		return
	}

	step, validation, err := h.workflowService.UpdateStep(c.Request.Context(), stepID, req)
	if errors.Is(err, workflows.ErrValidation) {
		c.JSON(http.StatusBadRequest, gin.H{
			"validation": validation,
			"message":    "Step failed validation",
		})
		return
	}
	if errors.Is(err, repositories.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Step not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update step"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"step":       step,
		"validation": validation,
	})
}

func (h *APIHandlers) deleteStep(c *gin.Context) {
	stepID, ok := paramInt64(c, "stepId")
	if !ok {
		return
	}

	err := h.workflowService.DeleteStep(c.Request.Context(), stepID)
	if errors.Is(err, repositories.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Step not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete step"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Step deleted",
		"step_id": stepID,
	})
}

func paramInt64(c *gin.Context, name string) (int64, bool) {
	value, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + name})
		return 0, false
	}
	return value, true
}
