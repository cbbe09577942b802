package api

import (
	"github.com/gin-gonic/gin"

	"github.com/ericfisherdev/simple-easy-issues/internal/api/middleware"
	"github.com/ericfisherdev/simple-easy-issues/internal/domain"
	"github.com/ericfisherdev/simple-easy-issues/internal/services"
)

// IssueHandler handles issue-related HTTP requests.
type IssueHandler struct {
	issueService services.IssueService
}

// NewIssueHandler creates a new issue handler.
func NewIssueHandler(issueService services.IssueService) *IssueHandler {
	return &IssueHandler{issueService: issueService}
}

// RegisterRoutes registers issue routes with the router.
func (h *IssueHandler) RegisterRoutes(router *gin.RouterGroup, authMiddleware *middleware.AuthMiddleware) {
	requireAuth := authMiddleware.RequireAuth()

	router.GET("/issues", requireAuth, h.ListAllIssues)

	issues := router.Group("/projects/:projectId/issues")
	issues.Use(requireAuth)
	{
		issues.GET("", h.ListProjectIssues)
		issues.POST("", h.CreateIssue)
		issues.GET("/:issueId", h.GetIssue)
		issues.PUT("/:issueId", h.UpdateIssue)
		issues.DELETE("/:issueId", h.DeleteIssue)
	}
}

// ListAllIssues handles GET /api/issues requests.
func (h *IssueHandler) ListAllIssues(c *gin.Context) {
	issues, err := h.issueService.ListAllIssues(c.Request.Context())
	if err != nil {
		SanitizedErrorResponse(c, err)
		return
	}

	SuccessResponse(c, gin.H{
		"issues": issues,
		"meta":   gin.H{"total": len(issues)},
	})
}

// ListProjectIssues handles GET /api/projects/:projectId/issues requests.
func (h *IssueHandler) ListProjectIssues(c *gin.Context) {
	issues, err := h.issueService.ListProjectIssues(c.Request.Context(), c.Param("projectId"))
	if err != nil {
		SanitizedErrorResponse(c, err)
		return
	}

	SuccessResponse(c, gin.H{
		"issues": issues,
		"meta":   gin.H{"total": len(issues)},
	})
}

// CreateIssue handles POST /api/projects/:projectId/issues requests.
func (h *IssueHandler) CreateIssue(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var req domain.CreateIssueRequest
	if !middleware.BindJSON(c, &req) {
		return
	}

	issue, err := h.issueService.CreateIssue(c.Request.Context(), c.Param("projectId"), req, user.UserID)
	if err != nil {
		SanitizedErrorResponse(c, err)
		return
	}

	CreatedResponse(c, gin.H{"issue": issue})
}

// GetIssue handles GET /api/projects/:projectId/issues/:issueId requests.
func (h *IssueHandler) GetIssue(c *gin.Context) {
	issue, err := h.issueService.GetIssue(c.Request.Context(), c.Param("projectId"), c.Param("issueId"))
	if err != nil {
		SanitizedErrorResponse(c, err)
		return
	}

	SuccessResponse(c, gin.H{"issue": issue})
}

// UpdateIssue handles PUT /api/projects/:projectId/issues/:issueId requests.
func (h *IssueHandler) UpdateIssue(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var req domain.UpdateIssueRequest
	if !middleware.BindJSON(c, &req) {
		return
	}

	issue, err := h.issueService.UpdateIssue(
		c.Request.Context(), c.Param("projectId"), c.Param("issueId"), req, user.UserID,
	)
	if err != nil {
		SanitizedErrorResponse(c, err)
		return
	}

	SuccessResponse(c, gin.H{"issue": issue})
}

// DeleteIssue handles DELETE /api/projects/:projectId/issues/:issueId requests.
func (h *IssueHandler) DeleteIssue(c *gin.Context) {
	if err := h.issueService.DeleteIssue(c.Request.Context(), c.Param("projectId"), c.Param("issueId")); err != nil {
		SanitizedErrorResponse(c, err)
		return
	}

	SuccessResponse(c, gin.H{"message": "Issue deleted"})
}
