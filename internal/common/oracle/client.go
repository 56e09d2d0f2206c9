// internal/common/oracle/client.go
package oracle

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"lex-build-workers/internal/common/logger"
	"lex-build-workers/internal/models"
	"lex-build-workers/pkg/registry"
)

var (
	ErrUnparseableReply = errors.New("oracle reply contains no JSON object")
	ErrUnknownKind      = errors.New("oracle named an unknown resource type")
	ErrNoResources      = errors.New("oracle named no resources")
)

// Classification attributes one build failure reason to resources.
type Classification struct {
	Type      registry.Kind `json:"type"`
	Resources []string      `json:"resources"`
}

// RepairContext is everything the oracle sees besides the reason and the
// resource itself.
type RepairContext struct {
	Kind      registry.Kind
	Siblings  []json.RawMessage
	Inventory models.Inventory
}

// Client turns repair questions into prompts for a Model and parses the
// answers.
type Client struct {
	model    Model
	registry *registry.ResourceRegistry
	logger   logger.Logger
}

func NewClient(model Model, reg *registry.ResourceRegistry, log logger.Logger) *Client {
	if reg == nil {
		reg = registry.Default()
	}
	return &Client{
		model:    model,
		registry: reg,
		logger:   log.WithFields(map[string]interface{}{"component": "oracle"}),
	}
}

// SystemPrompt is the guideline a repair conversation for kind starts from.
func (c *Client) SystemPrompt(kind registry.Kind) string {
	spec, _ := c.registry.Lookup(kind)
	var b strings.Builder
	b.WriteString(spec.Guideline)
	if schema := c.registry.SchemaJSON(kind); schema != nil {
		b.WriteString("\n\nThe payload must satisfy this JSON schema:\n")
		b.Write(schema)
	}
	if len(spec.Example) > 0 {
		if ex, err := json.Marshal(spec.Example); err == nil {
			b.WriteString("\n\nExample of a valid payload:\n")
			b.Write(ex)
		}
	}
	return b.String()
}

// ProposeCorrection asks for a payload that fixes a platform rejection.
// The returned conversation includes the question and the reply, even when
// the reply cannot be used.
func (c *Client) ProposeCorrection(ctx context.Context, kind registry.Kind, payload json.RawMessage, errorMessage string, history Conversation) (json.RawMessage, Conversation, error) {
	if history.IsZero() {
		history = NewConversation(c.SystemPrompt(kind))
	}

	var prompt strings.Builder
	prompt.WriteString(c.registry.CorrectionPreamble)
	prompt.WriteString("\n\nError:\n")
	prompt.WriteString(errorMessage)
	prompt.WriteString("\n\nPayload:\n")
	prompt.Write(compact(payload))
	history = history.With(RoleUser, prompt.String())

	reply, err := c.model.Converse(ctx, history.System, history.Messages)
	if err != nil {
		return nil, history, fmt.Errorf("propose correction for %s: %w", kind, err)
	}
	history = history.With(RoleAssistant, reply)

	corrected := extractJSONObject(reply)
	if corrected == nil {
		return nil, history, fmt.Errorf("propose correction for %s: %w", kind, ErrUnparseableReply)
	}

	c.logger.Debug("correction proposed", map[string]interface{}{
		"kind":  string(kind),
		"turns": history.Turns(),
	})
	return corrected, history, nil
}

// ClassifyFailure maps a build failure reason onto a resource type and the
// names of the resources that must change.
func (c *Client) ClassifyFailure(ctx context.Context, reason string, inventory models.Inventory) (Classification, error) {
	inv, err := json.Marshal(inventory)
	if err != nil {
		return Classification{}, fmt.Errorf("encode inventory: %w", err)
	}

	prompt := "Failure reason:\n" + reason + "\n\nInventory:\n" + string(inv)
	reply, err := c.model.Converse(ctx, c.registry.ClassifierGuideline, []Message{{Role: RoleUser, Content: prompt}})
	if err != nil {
		return Classification{}, fmt.Errorf("classify failure: %w", err)
	}

	raw := extractJSONObject(reply)
	if raw == nil {
		return Classification{}, fmt.Errorf("classify failure: %w", ErrUnparseableReply)
	}
	var out Classification
	if err := json.Unmarshal(raw, &out); err != nil {
		return Classification{}, fmt.Errorf("classify failure: %w: %v", ErrUnparseableReply, err)
	}
	if !out.Type.Valid() {
		return Classification{}, fmt.Errorf("classify failure: %w: %q", ErrUnknownKind, out.Type)
	}
	out.Resources = nonBlank(out.Resources)
	if len(out.Resources) == 0 {
		return Classification{}, fmt.Errorf("classify failure: %w", ErrNoResources)
	}
	return out, nil
}

// ProposeFix asks for a rewritten resource that addresses a build failure
// reason.
func (c *Client) ProposeFix(ctx context.Context, reason string, current json.RawMessage, rc RepairContext) (json.RawMessage, error) {
	var prompt strings.Builder
	prompt.WriteString("The bot locale build failed with:\n")
	prompt.WriteString(reason)
	prompt.WriteString("\n\nCurrent ")
	prompt.WriteString(string(rc.Kind))
	prompt.WriteString(":\n")
	prompt.Write(compact(current))
	if len(rc.Siblings) > 0 {
		prompt.WriteString("\n\nRelated resources:\n")
		for _, s := range rc.Siblings {
			prompt.Write(compact(s))
			prompt.WriteString("\n")
		}
	}
	if inv, err := json.Marshal(rc.Inventory); err == nil {
		prompt.WriteString("\n\nInventory:\n")
		prompt.Write(inv)
	}
	prompt.WriteString("\n\nReturn the full corrected resource as one JSON object.")

	reply, err := c.model.Converse(ctx, c.SystemPrompt(rc.Kind), []Message{{Role: RoleUser, Content: prompt.String()}})
	if err != nil {
		return nil, fmt.Errorf("propose fix for %s: %w", rc.Kind, err)
	}
	fixed := extractJSONObject(reply)
	if fixed == nil {
		return nil, fmt.Errorf("propose fix for %s: %w", rc.Kind, ErrUnparseableReply)
	}
	return fixed, nil
}

func compact(raw json.RawMessage) []byte {
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return raw
	}
	return buf.Bytes()
}

func nonBlank(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
