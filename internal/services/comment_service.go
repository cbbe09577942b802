package services

import (
	"context"
	"log/slog"

	"github.com/ericfisherdev/simple-easy-issues/internal/domain"
	"github.com/ericfisherdev/simple-easy-issues/internal/repository"
)

// CommentService defines the interface for comment business logic.
type CommentService interface {
	// CreateComment adds a comment to an existing issue
	CreateComment(
		ctx context.Context,
		projectID, issueID string,
		req domain.CreateCommentRequest,
		userID string,
	) (*domain.Comment, error)

	// ListIssueComments lists an issue's comments, oldest first
	ListIssueComments(ctx context.Context, projectID, issueID string) ([]*domain.Comment, error)

	// ListAllComments lists comments across all issues, oldest first
	ListAllComments(ctx context.Context) ([]*domain.Comment, error)

	// DeleteComment deletes a comment written by userID
	DeleteComment(ctx context.Context, projectID, issueID, commentID, userID string) error
}

type commentService struct {
	commentRepo repository.CommentRepository
	issueRepo   repository.IssueRepository
	logger      *slog.Logger
}

// NewCommentService creates a new comment service.
func NewCommentService(
	commentRepo repository.CommentRepository,
	issueRepo repository.IssueRepository,
	logger *slog.Logger,
) CommentService {
	if logger == nil {
		logger = slog.Default()
	}
	return &commentService{
		commentRepo: commentRepo,
		issueRepo:   issueRepo,
		logger:      logger,
	}
}

// CreateComment requires the parent issue and writes into its partition.
func (s *commentService) CreateComment(
	ctx context.Context,
	projectID, issueID string,
	req domain.CreateCommentRequest,
	userID string,
) (*domain.Comment, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	issue, err := s.loadIssue(ctx, projectID, issueID)
	if err != nil {
		return nil, err
	}

	comment := domain.NewComment(issue, req, userID)
	if err := comment.Validate(); err != nil {
		return nil, err
	}

	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "comment created",
		"project_id", projectID,
		"issue_id", issueID,
		"comment_id", comment.ID)
	return comment, nil
}

// ListIssueComments lists comments of one issue.
func (s *commentService) ListIssueComments(ctx context.Context, projectID, issueID string) ([]*domain.Comment, error) {
	if err := requireID("projectId", projectID); err != nil {
		return nil, err
	}
	if err := requireID("issueId", issueID); err != nil {
		return nil, err
	}
	return s.commentRepo.ListByIssue(ctx, projectID, issueID)
}

// ListAllComments lists every comment.
func (s *commentService) ListAllComments(ctx context.Context) ([]*domain.Comment, error) {
	return s.commentRepo.ListAll(ctx)
}

// DeleteComment deletes a comment. Only its author may delete it.
func (s *commentService) DeleteComment(ctx context.Context, projectID, issueID, commentID, userID string) error {
	if err := requireID("commentId", commentID); err != nil {
		return err
	}
	if err := requireID("projectId", projectID); err != nil {
		return err
	}
	if err := requireID("issueId", issueID); err != nil {
		return err
	}

	comment, err := s.commentRepo.GetByID(ctx, projectID, issueID, commentID)
	if err != nil {
		return err
	}
	if comment == nil {
		return notFound(domain.KindComment, domain.CommentIdentity(projectID, issueID, commentID))
	}
	if !comment.IsAuthor(userID) {
		return domain.NewAuthorizationError("NOT_COMMENT_AUTHOR", "Only the author can delete this comment")
	}

	return s.commentRepo.Delete(ctx, projectID, issueID, commentID)
}

func (s *commentService) loadIssue(ctx context.Context, projectID, issueID string) (*domain.Issue, error) {
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
