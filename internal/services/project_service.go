package services

import (
	"context"
	"log/slog"

	"github.com/ericfisherdev/simple-easy-issues/internal/domain"
	"github.com/ericfisherdev/simple-easy-issues/internal/repository"
)

// ProjectService defines the interface for project-related business logic.
type ProjectService interface {
	// CreateProject creates a new project
	CreateProject(ctx context.Context, req domain.CreateProjectRequest, userID string) (*domain.Project, error)

	// GetProject gets a project by ID
	GetProject(ctx context.Context, projectID string) (*domain.Project, error)

	// ListProjects lists all projects ordered by title
	ListProjects(ctx context.Context) ([]*domain.Project, error)

	// UpdateProject merges the provided fields into a project
	UpdateProject(ctx context.Context, projectID string, req domain.UpdateProjectRequest, userID string) (*domain.Project, error)

	// DeleteProject deletes a project; its issues are not removed
	DeleteProject(ctx context.Context, projectID string) error
}

// projectService implements ProjectService interface.
type projectService struct {
	projectRepo repository.ProjectRepository
	logger      *slog.Logger
}

// NewProjectService creates a new project service.
func NewProjectService(projectRepo repository.ProjectRepository, logger *slog.Logger) ProjectService {
	if logger == nil {
		logger = slog.Default()
	}
	return &projectService{
		projectRepo: projectRepo,
		logger:      logger,
	}
}

// CreateProject creates a new project.
func (s *projectService) CreateProject(
	ctx context.Context,
	req domain.CreateProjectRequest,
	userID string,
) (*domain.Project, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	project := domain.NewProject(req, userID)
	if err := project.Validate(); err != nil {
		return nil, err
	}

	if err := s.projectRepo.Create(ctx, project); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "project created", "project_id", project.ProjectID, "user_id", userID)
	return project, nil
}

// GetProject gets a project by ID.
func (s *projectService) GetProject(ctx context.Context, projectID string) (*domain.Project, error) {
	if err := requireID("projectId", projectID); err != nil {
		return nil, err
	}

	project, err := s.projectRepo.GetByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, notFound(domain.KindProject, domain.ProjectIdentity(projectID))
	}
	return project, nil
}

// ListProjects lists all projects.
func (s *projectService) ListProjects(ctx context.Context) ([]*domain.Project, error) {
	return s.projectRepo.List(ctx)
}

// UpdateProject reads the project, merges the request and replaces the whole document.
func (s *projectService) UpdateProject(
	ctx context.Context,
	projectID string,
	req domain.UpdateProjectRequest,
	userID string,
) (*domain.Project, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	project, err := s.GetProject(ctx, projectID)
	if err != nil {
		return nil, err
	}

	project.Apply(req, userID)
	if err := project.Validate(); err != nil {
		return nil, err
	}

	if err := s.projectRepo.Replace(ctx, project); err != nil {
		return nil, err
	}
	return project, nil
}

// DeleteProject deletes a project.
func (s *projectService) DeleteProject(ctx context.Context, projectID string) error {
	if _, err := s.GetProject(ctx, projectID); err != nil {
		return err
	}
	if err := s.projectRepo.Delete(ctx, projectID); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "project deleted", "project_id", projectID)
	return nil
}
