package domain

import "strings"

// Comment is the persisted comment document. It shares its issue's partition key
// so an issue and its discussion are read with one partition scan.
type Comment struct {
	ID           string    `json:"id"`
	IssueID      string    `json:"issueId"`
	ProjectID    string    `json:"projectId"`
	Type         Kind      `json:"type"`
	PartitionKey string    `json:"_partitionKey"`
	Text         string    `json:"text"`
	CreatedOn    Timestamp `json:"createdOn"`
	CreatedBy    string    `json:"createdBy"`
}

// NewComment creates a comment document attached to the given issue.
func NewComment(issue *Issue, req CreateCommentRequest, createdBy string) *Comment {
	return &Comment{
		ID:           NewID(),
		IssueID:      issue.IssueID,
		ProjectID:    issue.ProjectID,
		Type:         KindComment,
		PartitionKey: issue.PartitionKey,
		Text:         strings.TrimSpace(req.Text),
		CreatedOn:    Now(),
		CreatedBy:    createdBy,
	}
}

// Identity returns the comment's (id, partitionKey) pair.
func (c *Comment) Identity() Identity {
	return CommentIdentity(c.ProjectID, c.IssueID, c.ID)
}

// IsAuthor reports whether userID wrote the comment.
func (c *Comment) IsAuthor(userID string) bool {
	return c.CreatedBy == userID
}

// Validate validates the comment document.
func (c *Comment) Validate() error {
	if c.ID == "" {
		return NewValidationError("INVALID_COMMENT_ID", "Comment id is required", map[string]interface{}{
			"field": "id",
		})
	}

	if c.PartitionKey != IssuePartitionKey(c.ProjectID, c.IssueID) {
		return NewValidationError("INVALID_PARTITION_KEY", "Comment partition key must match its issue", map[string]interface{}{
			"field": "_partitionKey",
			"value": c.PartitionKey,
		})
	}

	if c.Text == "" {
		return NewValidationError("INVALID_TEXT", "Comment text cannot be empty", map[string]interface{}{
			"field": "text",
		})
	}

	return nil
}

// CreateCommentRequest represents the data needed to create a comment.
type CreateCommentRequest struct {
	Text string `json:"text" binding:"required,min=1,max=10000"`
}

// Validate validates the create request.
func (r CreateCommentRequest) Validate() error {
	if strings.TrimSpace(r.Text) == "" {
		return NewValidationError("INVALID_TEXT", "Comment text cannot be empty", map[string]interface{}{
			"field": "text",
		})
	}
	return validateStruct(r)
}
