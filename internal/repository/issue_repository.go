package repository

import (
	"context"

	"github.com/ericfisherdev/simple-easy-issues/internal/domain"
	"github.com/ericfisherdev/simple-easy-issues/internal/store"
)

// IssueRepository defines the interface for issue data operations.
type IssueRepository interface {
	// GetByID retrieves an issue, or nil when absent.
	GetByID(ctx context.Context, projectID, issueID string) (*domain.Issue, error)

	// ListByProject retrieves a project's issues, newest first.
	ListByProject(ctx context.Context, projectID string) ([]*domain.Issue, error)

	// ListAll retrieves every issue, newest first.
	ListAll(ctx context.Context) ([]*domain.Issue, error)

	// Create inserts a new issue.
	Create(ctx context.Context, issue *domain.Issue) error

	// Replace overwrites an existing issue.
	Replace(ctx context.Context, issue *domain.Issue) error

	// Delete deletes an issue. Its comments are left in place.
	Delete(ctx context.Context, projectID, issueID string) error
}

type issueRepository struct {
	docs *Repository[domain.Issue, *domain.Issue]
}

// NewIssueRepository creates an issue repository over the Issues container.
func NewIssueRepository(container store.Container) IssueRepository {
	return &issueRepository{docs: NewRepository[domain.Issue](container, domain.KindIssue)}
}

func (r *issueRepository) GetByID(ctx context.Context, projectID, issueID string) (*domain.Issue, error) {
	return r.docs.GetByID(ctx, domain.IssueIdentity(projectID, issueID))
}

func (r *issueRepository) ListByProject(ctx context.Context, projectID string) ([]*domain.Issue, error) {
	return r.docs.Query(ctx, []store.Filter{store.Eq("projectId", projectID)}, store.Desc("createdOn"))
}

func (r *issueRepository) ListAll(ctx context.Context) ([]*domain.Issue, error) {
	return r.docs.GetAll(ctx, store.Desc("createdOn"))
}

func (r *issueRepository) Create(ctx context.Context, issue *domain.Issue) error {
	return r.docs.Add(ctx, issue)
}

func (r *issueRepository) Replace(ctx context.Context, issue *domain.Issue) error {
	return r.docs.Replace(ctx, issue)
}

func (r *issueRepository) Delete(ctx context.Context, projectID, issueID string) error {
	return r.docs.Remove(ctx, domain.IssueIdentity(projectID, issueID))
}
