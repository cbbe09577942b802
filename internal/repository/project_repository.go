package repository

import (
	"context"

	"github.com/ericfisherdev/simple-easy-issues/internal/domain"
	"github.com/ericfisherdev/simple-easy-issues/internal/store"
)

// ProjectRepository defines the interface for project data operations.
// Following Interface Segregation Principle.
type ProjectRepository interface {
	ProjectQueryRepository
	ProjectCommandRepository
}

// ProjectQueryRepository defines read-only operations for project queries.
type ProjectQueryRepository interface {
	// GetByID retrieves a project by ID, or nil when absent.
	GetByID(ctx context.Context, projectID string) (*domain.Project, error)

	// List retrieves all projects ordered by title.
	List(ctx context.Context) ([]*domain.Project, error)

	// ListByCreator retrieves the projects created by a user, ordered by title.
	ListByCreator(ctx context.Context, userID string) ([]*domain.Project, error)
}

// ProjectCommandRepository defines write operations for projects.
type ProjectCommandRepository interface {
	// Create inserts a new project.
	Create(ctx context.Context, project *domain.Project) error

	// Replace overwrites an existing project.
	Replace(ctx context.Context, project *domain.Project) error

	// Delete deletes a project by ID.
	Delete(ctx context.Context, projectID string) error
}

type projectRepository struct {
	docs *Repository[domain.Project, *domain.Project]
}

// NewProjectRepository creates a project repository over the Projects container.
func NewProjectRepository(container store.Container) ProjectRepository {
	return &projectRepository{docs: NewRepository[domain.Project](container, domain.KindProject)}
}

func (r *projectRepository) GetByID(ctx context.Context, projectID string) (*domain.Project, error) {
	return r.docs.GetByID(ctx, domain.ProjectIdentity(projectID))
}

func (r *projectRepository) List(ctx context.Context) ([]*domain.Project, error) {
	return r.docs.GetAll(ctx, store.Asc("title"))
}

func (r *projectRepository) ListByCreator(ctx context.Context, userID string) ([]*domain.Project, error) {
	return r.docs.Query(ctx, []store.Filter{store.Eq("createdBy", userID)}, store.Asc("title"))
}

func (r *projectRepository) Create(ctx context.Context, project *domain.Project) error {
	return r.docs.Add(ctx, project)
}

func (r *projectRepository) Replace(ctx context.Context, project *domain.Project) error {
	return r.docs.Replace(ctx, project)
}

func (r *projectRepository) Delete(ctx context.Context, projectID string) error {
	return r.docs.Remove(ctx, domain.ProjectIdentity(projectID))
}
