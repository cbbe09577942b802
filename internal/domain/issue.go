package domain

import "strings"

// Issue is the persisted issue document. It lives in the shared Issues container
// under the composite partition key projectId;issueId.
type Issue struct {
	ID            string     `json:"id"`
	IssueID       string     `json:"issueId"`
	ProjectID     string     `json:"projectId"`
	Type          Kind       `json:"type"`
	PartitionKey  string     `json:"_partitionKey"`
	Title         string     `json:"title"`
	Description   string     `json:"description"`
	Priority      string     `json:"priority"`
	CreatedOn     Timestamp  `json:"createdOn"`
	CreatedBy     string     `json:"createdBy"`
	LastUpdatedOn *Timestamp `json:"lastUpdatedOn,omitempty"`
	LastUpdatedBy *string    `json:"lastUpdatedBy,omitempty"`
}

// NewIssue creates an issue document under projectID with derived identity fields.
func NewIssue(projectID string, req CreateIssueRequest, createdBy string) *Issue {
	id := NewID()
	return &Issue{
		ID:           id,
		IssueID:      id,
		ProjectID:    projectID,
		Type:         KindIssue,
		PartitionKey: IssuePartitionKey(projectID, id),
		Title:        strings.TrimSpace(req.Title),
		Description:  req.Description,
		Priority:     req.Priority,
		CreatedOn:    Now(),
		CreatedBy:    createdBy,
	}
}

// Identity returns the issue's (id, partitionKey) pair.
func (i *Issue) Identity() Identity {
	return IssueIdentity(i.ProjectID, i.IssueID)
}

// Apply merges the provided fields and stamps the update audit fields.
func (i *Issue) Apply(req UpdateIssueRequest, updatedBy string) {
	if req.Title != nil {
		i.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		i.Description = *req.Description
	}
	if req.Priority != nil {
		i.Priority = *req.Priority
	}
	i.LastUpdatedOn = NowPtr()
	i.LastUpdatedBy = &updatedBy
}

// Validate validates the issue document, including its derived partition key.
func (i *Issue) Validate() error {
	if i.IssueID == "" || i.ID != i.IssueID {
		return NewValidationError("INVALID_ISSUE_ID", "Issue id and issueId must be set and equal", map[string]interface{}{
			"field": "issueId",
		})
	}

	if i.ProjectID == "" {
		return NewValidationError("INVALID_PROJECT_ID", "Issue projectId is required", map[string]interface{}{
			"field": "projectId",
		})
	}

	if i.PartitionKey != IssuePartitionKey(i.ProjectID, i.IssueID) {
		return NewValidationError("INVALID_PARTITION_KEY", "Issue partition key must be projectId;issueId", map[string]interface{}{
			"field": "_partitionKey",
			"value": i.PartitionKey,
		})
	}

	if i.Title == "" {
		return NewValidationError("INVALID_TITLE", "Issue title is required", map[string]interface{}{
			"field": "title",
		})
	}

	return nil
}

// CreateIssueRequest represents the data needed to create a new issue.
type CreateIssueRequest struct {
	Title       string `json:"title" binding:"required,min=1,max=200"`
	Description string `json:"description" binding:"max=10000"`
	Priority    string `json:"priority" binding:"max=50"`
}

// Validate validates the create request.
func (r CreateIssueRequest) Validate() error {
	return validateStruct(r)
}

// UpdateIssueRequest represents the data that can be updated for an issue.
type UpdateIssueRequest struct {
	Title       *string `json:"title,omitempty" binding:"omitempty,min=1,max=200"`
	Description *string `json:"description,omitempty" binding:"omitempty,max=10000"`
	Priority    *string `json:"priority,omitempty" binding:"omitempty,max=50"`
}

// Validate validates the update request.
func (r UpdateIssueRequest) Validate() error {
	return validateStruct(r)
}
