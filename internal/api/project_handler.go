package api

import (
	"github.com/gin-gonic/gin"

	"github.com/ericfisherdev/simple-easy-issues/internal/api/middleware"
	"github.com/ericfisherdev/simple-easy-issues/internal/domain"
	"github.com/ericfisherdev/simple-easy-issues/internal/services"
)

// ProjectHandler handles project-related HTTP requests.
type ProjectHandler struct {
	projectService services.ProjectService
}

// NewProjectHandler creates a new project handler.
func NewProjectHandler(projectService services.ProjectService) *ProjectHandler {
	return &ProjectHandler{projectService: projectService}
}

// RegisterRoutes registers project routes with the router.
func (h *ProjectHandler) RegisterRoutes(router *gin.RouterGroup, authMiddleware *middleware.AuthMiddleware) {
	projects := router.Group("/projects")
	projects.Use(authMiddleware.RequireAuth())
	{
		projects.GET("", h.ListProjects)
		projects.POST("", h.CreateProject)
		projects.GET("/:projectId", h.GetProject)
		projects.PUT("/:projectId", h.UpdateProject)
		projects.DELETE("/:projectId", h.DeleteProject)
	}
}

// ListProjects handles GET /api/projects requests.
func (h *ProjectHandler) ListProjects(c *gin.Context) {
	projects, err := h.projectService.ListProjects(c.Request.Context())
	if err != nil {
		SanitizedErrorResponse(c, err)
		return
	}

	SuccessResponse(c, gin.H{
		"projects": projects,
		"meta":     gin.H{"total": len(projects)},
	})
}

// CreateProject handles POST /api/projects requests.
func (h *ProjectHandler) CreateProject(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var req domain.CreateProjectRequest
	if !middleware.BindJSON(c, &req) {
		return
	}

	project, err := h.projectService.CreateProject(c.Request.Context(), req, user.UserID)
	if err != nil {
		SanitizedErrorResponse(c, err)
		return
	}

	CreatedResponse(c, gin.H{"project": project})
}

// GetProject handles GET /api/projects/:projectId requests.
func (h *ProjectHandler) GetProject(c *gin.Context) {
	project, err := h.projectService.GetProject(c.Request.Context(), c.Param("projectId"))
	if err != nil {
		SanitizedErrorResponse(c, err)
		return
	}

	SuccessResponse(c, gin.H{"project": project})
}

// UpdateProject handles PUT /api/projects/:projectId requests.
func (h *ProjectHandler) UpdateProject(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var req domain.UpdateProjectRequest
	if !middleware.BindJSON(c, &req) {
		return
	}

	project, err := h.projectService.UpdateProject(c.Request.Context(), c.Param("projectId"), req, user.UserID)
	if err != nil {
		SanitizedErrorResponse(c, err)
		return
	}

	SuccessResponse(c, gin.H{"project": project})
}

// DeleteProject handles DELETE /api/projects/:projectId requests. Issues under the
// project are left in place.
func (h *ProjectHandler) DeleteProject(c *gin.Context) {
	if err := h.projectService.DeleteProject(c.Request.Context(), c.Param("projectId")); err != nil {
		SanitizedErrorResponse(c, err)
		return
	}

	SuccessResponse(c, gin.H{"message": "Project deleted"})
}
