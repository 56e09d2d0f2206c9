// internal/workers/bot-build/fix-resource/models.go
package fixresource

import (
	"context"
	"encoding/json"
	"time"

	"lex-build-workers/internal/common/oracle"
	"lex-build-workers/internal/models"
	"lex-build-workers/pkg/registry"
)

type (
	Input  = models.StageEvent
	Output = models.StageEvent
)

// Fixer attributes failure reasons to resources and proposes rewrites.
type Fixer interface {
	ClassifyFailure(ctx context.Context, reason string, inventory models.Inventory) (oracle.Classification, error)
	ProposeFix(ctx context.Context, reason string, current json.RawMessage, rc oracle.RepairContext) (json.RawMessage, error)
}

var _ Fixer = (*oracle.Client)(nil)

// RepairAuditor stores one audit document per processed failure reason.
type RepairAuditor interface {
	IndexDocument(ctx context.Context, index, id string, doc interface{}) error
}

// RepairAudit is the document indexed for every failure reason.
type RepairAudit struct {
	ArtifactID   string        `json:"artifactId"`
	Reason       string        `json:"reason"`
	ResourceType registry.Kind `json:"resourceType,omitempty"`
	Resources    []string      `json:"resources"`
	Fixed        []string      `json:"fixed"`
	Attempt      int           `json:"attempt"`
	Timestamp    time.Time     `json:"timestamp"`
}
