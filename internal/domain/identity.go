package domain

import (
	"strings"

	"github.com/google/uuid"
)

// Kind is the document type discriminator stored in every document's "type" field.
type Kind string

const (
	// KindUser marks user documents.
	KindUser Kind = "User"
	// KindProject marks project documents.
	KindProject Kind = "Project"
	// KindIssue marks issue documents.
	KindIssue Kind = "Issue"
	// KindComment marks comment documents.
	KindComment Kind = "Comment"
)

// PartitionKeySeparator joins the components of a composite partition key.
const PartitionKeySeparator = ";"

// Identity is the (id, partitionKey) pair every point operation is addressed by.
type Identity struct {
	ID           string
	PartitionKey string
}

// Identifiable is implemented by every persisted entity.
type Identifiable interface {
	Identity() Identity
}

// NewID generates a new document identifier.
func NewID() string {
	return uuid.New().String()
}

// UserIdentity returns the identity of a user document.
func UserIdentity(userID string) Identity {
	return Identity{ID: userID, PartitionKey: userID}
}

// ProjectIdentity returns the identity of a project document.
func ProjectIdentity(projectID string) Identity {
	return Identity{ID: projectID, PartitionKey: projectID}
}

// IssuePartitionKey returns the composite partition key shared by an issue and its comments.
func IssuePartitionKey(projectID, issueID string) string {
	return projectID + PartitionKeySeparator + issueID
}

// SplitIssuePartitionKey splits a composite issue partition key into project and issue ids.
func SplitIssuePartitionKey(partitionKey string) (projectID, issueID string, ok bool) {
	projectID, issueID, ok = strings.Cut(partitionKey, PartitionKeySeparator)
	if !ok || projectID == "" || issueID == "" {
		return "", "", false
	}
	return projectID, issueID, true
}

// IssueIdentity returns the identity of an issue document.
func IssueIdentity(projectID, issueID string) Identity {
	return Identity{ID: issueID, PartitionKey: IssuePartitionKey(projectID, issueID)}
}

// CommentIdentity returns the identity of a comment document, co-located with its issue.
func CommentIdentity(projectID, issueID, commentID string) Identity {
	return Identity{ID: commentID, PartitionKey: IssuePartitionKey(projectID, issueID)}
}
