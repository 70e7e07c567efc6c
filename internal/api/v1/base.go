package v1

import (
	"github.com/gin-gonic/gin"

	"docflow/internal/db/repositories"
	"docflow/internal/services"
)

type APIHandlers struct {
	repos           *repositories.Repositories
	workflowService *services.WorkflowService
	instanceService *services.InstanceService
}

func NewAPIHandlers(repos *repositories.Repositories) *APIHandlers {
	resolver := services.NewApproverResolver(services.NewUserRoleDirectory(repos.Users))

	return &APIHandlers{
		repos:           repos,
		workflowService: services.NewWorkflowService(repos),
		instanceService: services.NewInstanceService(repos, resolver),
	}
}

// RegisterRoutes wires all v1 endpoints.
func (h *APIHandlers) RegisterRoutes(group *gin.RouterGroup) {
	h.registerWorkflowRoutes(group.Group("/workflows"))
	h.registerInstanceRoutes(group.Group("/instances"))
	h.registerApprovalRoutes(group.Group("/approvals"))
}
