package api

import (
	"github.com/gin-gonic/gin"

	"github.com/ericfisherdev/simple-easy-issues/internal/api/middleware"
	"github.com/ericfisherdev/simple-easy-issues/internal/domain"
	"github.com/ericfisherdev/simple-easy-issues/internal/services"
)

// CommentHandler handles comment-related HTTP requests.
type CommentHandler struct {
	commentService services.CommentService
}

// NewCommentHandler creates a new comment handler.
func NewCommentHandler(commentService services.CommentService) *CommentHandler {
	return &CommentHandler{commentService: commentService}
}

// RegisterRoutes registers comment routes with the router.
func (h *CommentHandler) RegisterRoutes(router *gin.RouterGroup, authMiddleware *middleware.AuthMiddleware) {
	requireAuth := authMiddleware.RequireAuth()

	router.GET("/comments", requireAuth, h.ListAllComments)

	comments := router.Group("/projects/:projectId/issues/:issueId/comments")
	comments.Use(requireAuth)
	{
		comments.GET("", h.ListIssueComments)
		comments.POST("", h.CreateComment)
		comments.DELETE("/:commentId", h.DeleteComment)
	}
}

// ListAllComments handles GET /api/comments requests.
func (h *CommentHandler) ListAllComments(c *gin.Context) {
	comments, err := h.commentService.ListAllComments(c.Request.Context())
	if err != nil {
		SanitizedErrorResponse(c, err)
		return
	}

	SuccessResponse(c, gin.H{
		"comments": comments,
		"meta":     gin.H{"total": len(comments)},
	})
}

// ListIssueComments handles GET .../issues/:issueId/comments requests, oldest first.
func (h *CommentHandler) ListIssueComments(c *gin.Context) {
	comments, err := h.commentService.ListIssueComments(c.Request.Context(), c.Param("projectId"), c.Param("issueId"))
	if err != nil {
		SanitizedErrorResponse(c, err)
		return
	}

	SuccessResponse(c, gin.H{
		"comments": comments,
		"meta":     gin.H{"total": len(comments)},
	})
}

// CreateComment handles POST .../issues/:issueId/comments requests.
func (h *CommentHandler) CreateComment(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var req domain.CreateCommentRequest
	if !middleware.BindJSON(c, &req) {
		return
	}

	comment, err := h.commentService.CreateComment(
		c.Request.Context(), c.Param("projectId"), c.Param("issueId"), req, user.UserID,
	)
	if err != nil {
		SanitizedErrorResponse(c, err)
		return
	}

	CreatedResponse(c, gin.H{"comment": comment})
}

// DeleteComment handles DELETE .../comments/:commentId requests. Only the author may delete.
func (h *CommentHandler) DeleteComment(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	err := h.commentService.DeleteComment(
		c.Request.Context(), c.Param("projectId"), c.Param("issueId"), c.Param("commentId"), user.UserID,
	)
	if err != nil {
		SanitizedErrorResponse(c, err)
		return
	}

	SuccessResponse(c, gin.H{"message": "Comment deleted"})
}
