package domain

import "strings"

// Project is the persisted project document.
type Project struct {
	ID            string     `json:"id"`
	ProjectID     string     `json:"projectId"`
	Type          Kind       `json:"type"`
	Title         string     `json:"title"`
	Description   string     `json:"description"`
	Priority      string     `json:"priority"`
	CreatedOn     Timestamp  `json:"createdOn"`
	CreatedBy     string     `json:"createdBy"`
	LastUpdatedOn *Timestamp `json:"lastUpdatedOn,omitempty"`
	LastUpdatedBy *string    `json:"lastUpdatedBy,omitempty"`
}

// NewProject creates a project document with a generated identity.
func NewProject(req CreateProjectRequest, createdBy string) *Project {
	id := NewID()
	return &Project{
		ID:          id,
		ProjectID:   id,
		Type:        KindProject,
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		Priority:    req.Priority,
		CreatedOn:   Now(),
		CreatedBy:   createdBy,
	}
}

// Identity returns the project's (id, partitionKey) pair.
func (p *Project) Identity() Identity {
	return ProjectIdentity(p.ProjectID)
}

// Apply merges the provided fields and stamps the update audit fields.
func (p *Project) Apply(req UpdateProjectRequest, updatedBy string) {
	if req.Title != nil {
		p.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		p.Description = *req.Description
	}
	if req.Priority != nil {
		p.Priority = *req.Priority
	}
	p.LastUpdatedOn = NowPtr()
	p.LastUpdatedBy = &updatedBy
}

// Validate validates the project document.
func (p *Project) Validate() error {
	if p.ProjectID == "" || p.ID != p.ProjectID {
		return NewValidationError("INVALID_PROJECT_ID", "Project id and projectId must be set and equal", map[string]interface{}{
			"field": "projectId",
		})
	}

	if p.Title == "" {
		return NewValidationError("INVALID_TITLE", "Project title is required", map[string]interface{}{
			"field": "title",
		})
	}

	return nil
}

// CreateProjectRequest represents the data needed to create a new project.
type CreateProjectRequest struct {
	Title       string `json:"title" binding:"required,min=1,max=200"`
	Description string `json:"description" binding:"max=5000"`
	Priority    string `json:"priority" binding:"max=50"`
}

// Validate validates the create request.
func (r CreateProjectRequest) Validate() error {
	return validateStruct(r)
}

// UpdateProjectRequest represents the data that can be updated for a project.
type UpdateProjectRequest struct {
	Title       *string `json:"title,omitempty" binding:"omitempty,min=1,max=200"`
	Description *string `json:"description,omitempty" binding:"omitempty,max=5000"`
	Priority    *string `json:"priority,omitempty" binding:"omitempty,max=50"`
}

// Validate validates the update request.
func (r UpdateProjectRequest) Validate() error {
	return validateStruct(r)
}
