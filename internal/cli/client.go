package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/ericfisherdev/simple-easy-issues/internal/domain"
)

// APIClient handles communication with the Simple Easy Issues API
type APIClient struct {
	BaseURL      string
	Token        string
	RefreshToken string
	HTTPClient   *http.Client

	// OnRefresh is called after the client silently replaced an expired token pair.
	OnRefresh func(*domain.TokenPair)
}

// NewAPIClient creates a new API client
func NewAPIClient(baseURL, token string) *APIClient {
	return &APIClient{
		BaseURL: baseURL,
		Token:   token,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// NewAPIClientFromProfile creates an API client from a profile. Refreshed tokens are
// written back to the profile and saved.
func NewAPIClientFromProfile(profile *Profile) *APIClient {
	if profile == nil {
		return nil
	}
	client := NewAPIClient(profile.ServerURL, profile.Token)
	client.RefreshToken = profile.RefreshToken
	client.OnRefresh = func(tokens *domain.TokenPair) {
		profile.Token = tokens.AccessToken
		profile.RefreshToken = tokens.RefreshToken
		_ = AddProfile(*profile)
	}
	return client
}

// APIError represents an API error response
type APIError struct {
	StatusCode    int
	Type          string
	Code          string
	Message       string
	Details       map[string]interface{}
	CorrelationID string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("API error (%d %s): %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("API error (%d): %s", e.StatusCode, e.Message)
}

// IsNotFound reports whether err is a 404 from the API.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

type envelope struct {
	Success       bool            `json:"success"`
	Data          json.RawMessage `json:"data"`
	CorrelationID string          `json:"correlation_id"`
	Error         *struct {
		Type    string                 `json:"type"`
		Code    string                 `json:"code"`
		Message string                 `json:"message"`
		Details map[string]interface{} `json:"details"`
	} `json:"error"`
}

// doRequest performs an HTTP request with authentication
func (c *APIClient) doRequest(ctx context.Context, method, endpoint string, body interface{}) (*http.Response, error) {
	var reqBody io.Reader

	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewBuffer(jsonData)
	}

	baseURL, err := url.Parse(c.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse base URL: %w", err)
	}

	path, rawQuery := endpoint, ""
	if parsed, parseErr := url.Parse(endpoint); parseErr == nil {
		path, rawQuery = parsed.Path, parsed.RawQuery
	}

	fullURL := baseURL.JoinPath(path)
	fullURL.RawQuery = rawQuery

	req, err := http.NewRequestWithContext(ctx, method, fullURL.String(), reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if reqBody != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}

	return resp, nil
}

// handleResponse processes the HTTP response and handles errors. Successful bodies
// are unwrapped from the {"success","data"} envelope when present.
//
//nolint:bodyclose // Response body is closed by this function
func (c *APIClient) handleResponse(resp *http.Response, result interface{}) error {
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	var env envelope
	decoded := json.Unmarshal(body, &env) == nil

	if resp.StatusCode >= 400 {
		apiError := &APIError{StatusCode: resp.StatusCode}
		if decoded && env.Error != nil {
			apiError.Type = env.Error.Type
			apiError.Code = env.Error.Code
			apiError.Message = env.Error.Message
			apiError.Details = env.Error.Details
			apiError.CorrelationID = env.CorrelationID
		}
		if apiError.Message == "" {
			apiError.Message = http.StatusText(resp.StatusCode)
		}
		return apiError
	}

	if result == nil || len(body) == 0 {
		return nil
	}

	payload := body
	if decoded && len(env.Data) > 0 {
		payload = env.Data
	}
	if err := json.Unmarshal(payload, result); err != nil {
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return nil
}

// call sends one request and decodes the result. A 401 with a stored refresh token
// triggers a single refresh and retry.
func (c *APIClient) call(ctx context.Context, method, endpoint string, body, result interface{}) error {
	//nolint:bodyclose // Response body is closed by handleResponse
	resp, err := c.doRequest(ctx, method, endpoint, body)
	if err != nil {
		return err
	}

	if resp.StatusCode == http.StatusUnauthorized && c.RefreshToken != "" {
		_ = resp.Body.Close()
		if _, refreshErr := c.Refresh(ctx); refreshErr != nil {
			return refreshErr
		}
		//nolint:bodyclose // Response body is closed by handleResponse
		resp, err = c.doRequest(ctx, method, endpoint, body)
		if err != nil {
			return err
		}
	}

	return c.handleResponse(resp, result)
}

// Health checks the API health
func (c *APIClient) Health(ctx context.Context) error {
	var healthResp map[string]interface{}
	//nolint:bodyclose // Response body is closed by handleResponse
	resp, err := c.doRequest(ctx, http.MethodGet, "/health/ready", nil)
	if err != nil {
		return err
	}
	return c.handleResponse(resp, &healthResp)
}

// Login authenticates with email and password
func (c *APIClient) Login(ctx context.Context, email, password string) (*domain.LoginResult, error) {
	loginReq := domain.LoginRequest{Email: email, Password: password}

	//nolint:bodyclose // Response body is closed by handleResponse
	resp, err := c.doRequest(ctx, http.MethodPost, "/api/auth/login", loginReq)
	if err != nil {
		return nil, err
	}

	var result domain.LoginResult
	if err := c.handleResponse(resp, &result); err != nil {
		return nil, err
	}
	if result.Tokens == nil {
		return nil, fmt.Errorf("login response carried no tokens")
	}

	c.Token = result.Tokens.AccessToken
	c.RefreshToken = result.Tokens.RefreshToken
	return &result, nil
}

// Refresh exchanges the stored refresh token for a new pair. Refresh tokens are
// single use.
func (c *APIClient) Refresh(ctx context.Context) (*domain.TokenPair, error) {
	if c.RefreshToken == "" {
		return nil, fmt.Errorf("no refresh token stored; run 'auth login'")
	}

	//nolint:bodyclose // Response body is closed by handleResponse
	resp, err := c.doRequest(ctx, http.MethodPost, "/api/auth/refresh", map[string]string{
		"refresh_token": c.RefreshToken,
	})
	if err != nil {
		return nil, err
	}

	var tokens domain.TokenPair
	if err := c.handleResponse(resp, &tokens); err != nil {
		return nil, fmt.Errorf("token refresh failed: %w", err)
	}

	c.Token = tokens.AccessToken
	c.RefreshToken = tokens.RefreshToken
	if c.OnRefresh != nil {
		c.OnRefresh(&tokens)
	}
	return &tokens, nil
}

// Logout revokes the current access token on the server.
func (c *APIClient) Logout(ctx context.Context) error {
	return c.call(ctx, http.MethodPost, "/api/auth/logout", nil, nil)
}

// Me returns the authenticated user's profile.
func (c *APIClient) Me(ctx context.Context) (*domain.UserProfile, error) {
	var data struct {
		User domain.UserProfile `json:"user"`
	}
	if err := c.call(ctx, http.MethodGet, "/api/auth/me", nil, &data); err != nil {
		return nil, err
	}
	return &data.User, nil
}

// GetProjects retrieves all projects ordered by title
func (c *APIClient) GetProjects(ctx context.Context) ([]domain.Project, error) {
	var data struct {
		Projects []domain.Project `json:"projects"`
	}
	err := c.call(ctx, http.MethodGet, "/api/projects", nil, &data)
	return data.Projects, err
}

// GetProject retrieves a specific project
func (c *APIClient) GetProject(ctx context.Context, projectID string) (*domain.Project, error) {
	var data struct {
		Project domain.Project `json:"project"`
	}
	if err := c.call(ctx, http.MethodGet, projectPath(projectID), nil, &data); err != nil {
		return nil, err
	}
	return &data.Project, nil
}

// CreateProject creates a new project
func (c *APIClient) CreateProject(ctx context.Context, req *domain.CreateProjectRequest) (*domain.Project, error) {
	var data struct {
		Project domain.Project `json:"project"`
	}
	if err := c.call(ctx, http.MethodPost, "/api/projects", req, &data); err != nil {
		return nil, err
	}
	return &data.Project, nil
}

// UpdateProject merges the set fields of req into a project
func (c *APIClient) UpdateProject(ctx context.Context, projectID string, req *domain.UpdateProjectRequest) (*domain.Project, error) {
	var data struct {
		Project domain.Project `json:"project"`
	}
	if err := c.call(ctx, http.MethodPut, projectPath(projectID), req, &data); err != nil {
		return nil, err
	}
	return &data.Project, nil
}

// DeleteProject deletes a project. Its issues are left in place.
func (c *APIClient) DeleteProject(ctx context.Context, projectID string) error {
	return c.call(ctx, http.MethodDelete, projectPath(projectID), nil, nil)
}

// GetIssues retrieves the issues of a project, newest first. An empty projectID lists
// every issue.
func (c *APIClient) GetIssues(ctx context.Context, projectID string) ([]domain.Issue, error) {
	endpoint := "/api/issues"
	if projectID != "" {
		endpoint = issuesPath(projectID)
	}

	var data struct {
		Issues []domain.Issue `json:"issues"`
	}
	err := c.call(ctx, http.MethodGet, endpoint, nil, &data)
	return data.Issues, err
}

// GetIssue retrieves a specific issue
func (c *APIClient) GetIssue(ctx context.Context, projectID, issueID string) (*domain.Issue, error) {
	var data struct {
		Issue domain.Issue `json:"issue"`
	}
	if err := c.call(ctx, http.MethodGet, issuePath(projectID, issueID), nil, &data); err != nil {
		return nil, err
	}
	return &data.Issue, nil
}

// CreateIssue creates a new issue
func (c *APIClient) CreateIssue(ctx context.Context, projectID string, req *domain.CreateIssueRequest) (*domain.Issue, error) {
	var data struct {
		Issue domain.Issue `json:"issue"`
	}
	if err := c.call(ctx, http.MethodPost, issuesPath(projectID), req, &data); err != nil {
		return nil, err
	}
	return &data.Issue, nil
}

// UpdateIssue updates an existing issue
func (c *APIClient) UpdateIssue(ctx context.Context, projectID, issueID string, req *domain.UpdateIssueRequest) (*domain.Issue, error) {
	var data struct {
		Issue domain.Issue `json:"issue"`
	}
	if err := c.call(ctx, http.MethodPut, issuePath(projectID, issueID), req, &data); err != nil {
		return nil, err
	}
	return &data.Issue, nil
}

// DeleteIssue deletes an issue
func (c *APIClient) DeleteIssue(ctx context.Context, projectID, issueID string) error {
	return c.call(ctx, http.MethodDelete, issuePath(projectID, issueID), nil, nil)
}

// GetComments retrieves the comments of an issue, oldest first
func (c *APIClient) GetComments(ctx context.Context, projectID, issueID string) ([]domain.Comment, error) {
	var data struct {
		Comments []domain.Comment `json:"comments"`
	}
	err := c.call(ctx, http.MethodGet, issuePath(projectID, issueID)+"/comments", nil, &data)
	return data.Comments, err
}

// AddComment posts a comment on an issue
func (c *APIClient) AddComment(ctx context.Context, projectID, issueID, text string) (*domain.Comment, error) {
	var data struct {
		Comment domain.Comment `json:"comment"`
	}
	req := domain.CreateCommentRequest{Text: text}
	if err := c.call(ctx, http.MethodPost, issuePath(projectID, issueID)+"/comments", req, &data); err != nil {
		return nil, err
	}
	return &data.Comment, nil
}

// DeleteComment deletes a comment written by the current user
func (c *APIClient) DeleteComment(ctx context.Context, projectID, issueID, commentID string) error {
	endpoint := issuePath(projectID, issueID) + "/comments/" + url.PathEscape(commentID)
	return c.call(ctx, http.MethodDelete, endpoint, nil, nil)
}

// TestConnection tests the connection to the API
func (c *APIClient) TestConnection(ctx context.Context) error {
	if err := c.Health(ctx); err != nil {
		return err
	}
	if c.Token == "" {
		return nil
	}
	_, err := c.Me(ctx)
	return err
}

func projectPath(projectID string) string {
	return "/api/projects/" + url.PathEscape(projectID)
}

func issuesPath(projectID string) string {
	return projectPath(projectID) + "/issues"
}

func issuePath(projectID, issueID string) string {
	return issuesPath(projectID) + "/" + url.PathEscape(issueID)
}
