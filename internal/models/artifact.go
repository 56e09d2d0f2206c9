// internal/models/artifact.go
package models

import "time"

// ArtifactStatus is the lifecycle state of a migrated bot artifact.
type ArtifactStatus string

const (
	StatusPending    ArtifactStatus = "pending"
	StatusInProgress ArtifactStatus = "in-progress"
	StatusBuilt      ArtifactStatus = "built"
	StatusSuccess    ArtifactStatus = "success"
	StatusError      ArtifactStatus = "error"
	StatusStopped    ArtifactStatus = "stopped"
)

// DefaultBotVersion is the only version Lex allows edits on.
const DefaultBotVersion = "DRAFT"

// StatusMessage is one entry of the append-only status log.
type StatusMessage struct {
	Status  ArtifactStatus `json:"status" dynamodbav:"status"`
	Message string         `json:"message" dynamodbav:"message"`
}

// Artifact is the persisted record of one bot migration.
type Artifact struct {
	ID             string          `json:"id" dynamodbav:"id"`
	BotID          string          `json:"botId" dynamodbav:"botId"`
	Locale         string          `json:"locale" dynamodbav:"locale"`
	Version        string          `json:"version" dynamodbav:"version"`
	Status         ArtifactStatus  `json:"status" dynamodbav:"status"`
	StatusMessages []StatusMessage `json:"statusMessages" dynamodbav:"statusMessages"`
	BundleLocation string          `json:"bundleLocation,omitempty" dynamodbav:"bundleLocation,omitempty"`
	ExportLocation string          `json:"exportLocation,omitempty" dynamodbav:"exportLocation,omitempty"`
	NotifyEmail    string          `json:"notifyEmail,omitempty" dynamodbav:"notifyEmail,omitempty"`
	UpdatedAt      time.Time       `json:"updatedAt" dynamodbav:"updatedAt"`
}

// BotVersion returns the Lex bot version the artifact targets.
func (a *Artifact) BotVersion() string {
	if a.Version == "" {
		return DefaultBotVersion
	}
	return a.Version
}

// RemoveMessage drops every status entry whose text equals message.
func (a *Artifact) RemoveMessage(message string) {
	kept := a.StatusMessages[:0]
	for _, m := range a.StatusMessages {
		if m.Message != message {
			kept = append(kept, m)
		}
	}
	a.StatusMessages = kept
}

// AppendMessage appends an entry after removing any identical message text,
// so a retried stage never leaves duplicates behind.
func (a *Artifact) AppendMessage(status ArtifactStatus, message string) {
	a.RemoveMessage(message)
	a.StatusMessages = append(a.StatusMessages, StatusMessage{Status: status, Message: message})
}

// CountStatus reports how many log entries carry the given status.
func (a *Artifact) CountStatus(status ArtifactStatus) int {
	n := 0
	for _, m := range a.StatusMessages {
		if m.Status == status {
			n++
		}
	}
	return n
}
