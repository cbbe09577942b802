package services

import (
	"context"
	"log/slog"

	"github.com/ericfisherdev/simple-easy-issues/internal/domain"
	"github.com/ericfisherdev/simple-easy-issues/internal/repository"
)

// IssueService defines the interface for issue-related business logic.
type IssueService interface {
	// CreateIssue creates an issue under an existing project
	CreateIssue(ctx context.Context, projectID string, req domain.CreateIssueRequest, userID string) (*domain.Issue, error)

	// GetIssue gets an issue of a project
	GetIssue(ctx context.Context, projectID, issueID string) (*domain.Issue, error)

	// ListProjectIssues lists a project's issues, newest first
	ListProjectIssues(ctx context.Context, projectID string) ([]*domain.Issue, error)

	// ListAllIssues lists issues across all projects, newest first
	ListAllIssues(ctx context.Context) ([]*domain.Issue, error)

	// UpdateIssue merges the provided fields into an issue
	UpdateIssue(
		ctx context.Context,
		projectID, issueID string,
		req domain.UpdateIssueRequest,
		userID string,
	) (*domain.Issue, error)

	// DeleteIssue deletes an issue; its comments are not removed
	DeleteIssue(ctx context.Context, projectID, issueID string) error
}

type issueService struct {
	issueRepo   repository.IssueRepository
	projectRepo repository.ProjectQueryRepository
	logger      *slog.Logger
}

// NewIssueService creates a new issue service.
func NewIssueService(
	issueRepo repository.IssueRepository,
	projectRepo repository.ProjectQueryRepository,
	logger *slog.Logger,
) IssueService {
	if logger == nil {
		logger = slog.Default()
	}
	return &issueService{
		issueRepo:   issueRepo,
		projectRepo: projectRepo,
		logger:      logger,
	}
}

// CreateIssue point-reads the parent project before inserting. A concurrent delete of
// the project between the two calls is not detected.
func (s *issueService) CreateIssue(
	ctx context.Context,
	projectID string,
	req domain.CreateIssueRequest,
	userID string,
) (*domain.Issue, error) {
	if err := requireID("projectId", projectID); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	project, err := s.projectRepo.GetByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, notFound(domain.KindProject, domain.ProjectIdentity(projectID))
	}

	issue := domain.NewIssue(projectID, req, userID)
	if err := issue.Validate(); err != nil {
		return nil, err
	}

	if err := s.issueRepo.Create(ctx, issue); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "issue created",
		"project_id", projectID,
		"issue_id", issue.IssueID,
		"user_id", userID)
	return issue, nil
}

// GetIssue gets an issue by its composite identity.
func (s *issueService) GetIssue(ctx context.Context, projectID, issueID string) (*domain.Issue, error) {
	if err := requireID("projectId", projectID); err != nil {
		return nil, err
	}
	if err := requireID("issueId", issueID); err != nil {
		return nil, err
	}

	issue, err := s.issueRepo.GetByID(ctx, projectID, issueID)
	if err != nil {
		return nil, err
	}
	if issue == nil {
		return nil, notFound(domain.KindIssue, domain.IssueIdentity(projectID, issueID))
	}
	return issue, nil
}

// ListProjectIssues lists issues by projectId. An unknown project yields an empty list.
func (s *issueService) ListProjectIssues(ctx context.Context, projectID string) ([]*domain.Issue, error) {
	if err := requireID("projectId", projectID); err != nil {
		return nil, err
	}
	return s.issueRepo.ListByProject(ctx, projectID)
}

// ListAllIssues lists every issue.
func (s *issueService) ListAllIssues(ctx context.Context) ([]*domain.Issue, error) {
	return s.issueRepo.ListAll(ctx)
}

// UpdateIssue reads the issue, merges the request and replaces the whole document.
func (s *issueService) UpdateIssue(
	ctx context.Context,
	projectID, issueID string,
	req domain.UpdateIssueRequest,
	userID string,
) (*domain.Issue, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	issue, err := s.GetIssue(ctx, projectID, issueID)
	if err != nil {
		return nil, err
	}

	issue.Apply(req, userID)
	if err := issue.Validate(); err != nil {
		return nil, err
	}

	if err := s.issueRepo.Replace(ctx, issue); err != nil {
		return nil, err
	}
	return issue, nil
}

// DeleteIssue deletes an issue.
func (s *issueService) DeleteIssue(ctx context.Context, projectID, issueID string) error {
	if _, err := s.GetIssue(ctx, projectID, issueID); err != nil {
		return err
	}
	if err := s.issueRepo.Delete(ctx, projectID, issueID); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "issue deleted", "project_id", projectID, "issue_id", issueID)
	return nil
}
