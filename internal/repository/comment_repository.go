package repository

import (
	"context"

	"github.com/ericfisherdev/simple-easy-issues/internal/domain"
	"github.com/ericfisherdev/simple-easy-issues/internal/store"
)

// CommentRepository defines the interface for comment data access operations.
// Comments live in the Issues container, in their issue's partition.
type CommentRepository interface {
	// GetByID retrieves a comment, or nil when absent
	GetByID(ctx context.Context, projectID, issueID, commentID string) (*domain.Comment, error)

	// ListByIssue retrieves an issue's comments, oldest first
	ListByIssue(ctx context.Context, projectID, issueID string) ([]*domain.Comment, error)

	// ListAll retrieves every comment, oldest first
	ListAll(ctx context.Context) ([]*domain.Comment, error)

	// Create inserts a new comment
	Create(ctx context.Context, comment *domain.Comment) error

	// Delete deletes a comment
	Delete(ctx context.Context, projectID, issueID, commentID string) error
}

type commentRepository struct {
	docs *Repository[domain.Comment, *domain.Comment]
}

// NewCommentRepository creates a comment repository over the Issues container.
func NewCommentRepository(container store.Container) CommentRepository {
	return &commentRepository{docs: NewRepository[domain.Comment](container, domain.KindComment)}
}

func (r *commentRepository) GetByID(ctx context.Context, projectID, issueID, commentID string) (*domain.Comment, error) {
	return r.docs.GetByID(ctx, domain.CommentIdentity(projectID, issueID, commentID))
}

func (r *commentRepository) ListByIssue(ctx context.Context, projectID, issueID string) ([]*domain.Comment, error) {
	return r.docs.Query(ctx,
		[]store.Filter{store.Eq("projectId", projectID), store.Eq("issueId", issueID)},
		store.Asc("createdOn"))
}

func (r *commentRepository) ListAll(ctx context.Context) ([]*domain.Comment, error) {
	return r.docs.GetAll(ctx, store.Asc("createdOn"))
}

func (r *commentRepository) Create(ctx context.Context, comment *domain.Comment) error {
	return r.docs.Add(ctx, comment)
}

func (r *commentRepository) Delete(ctx context.Context, projectID, issueID, commentID string) error {
	return r.docs.Remove(ctx, domain.CommentIdentity(projectID, issueID, commentID))
}
