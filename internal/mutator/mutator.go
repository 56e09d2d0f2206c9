// internal/mutator/mutator.go
package mutator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"lex-build-workers/internal/common/lex"
	"lex-build-workers/internal/common/logger"
	"lex-build-workers/internal/common/metrics"
	"lex-build-workers/internal/common/oracle"
	"lex-build-workers/internal/common/validation"
	"lex-build-workers/pkg/registry"
)

// DefaultMaxAttempts bounds platform submissions per Apply.
const DefaultMaxAttempts = 5

var (
	ErrRetriedTooManyTimes = errors.New("retried too many times")
	// ErrOracleFailed wraps a repair oracle that could not be reached.
	ErrOracleFailed = errors.New("repair oracle failed")
)

// Corrector proposes a corrected payload after a platform rejection.
type Corrector interface {
	ProposeCorrection(ctx context.Context, kind registry.Kind, payload json.RawMessage, errorMessage string, history oracle.Conversation) (json.RawMessage, oracle.Conversation, error)
}

var _ Corrector = (*oracle.Client)(nil)

// Target says where a mutation goes.
type Target struct {
	ArtifactID string
	Locale     lex.Locale
}

// Result of a successful Apply.
type Result struct {
	ID         string
	Attempts   int
	Transcript oracle.Conversation
}

// RepairExhaustedError is returned when the attempt budget runs out. It
// unwraps to ErrRetriedTooManyTimes.
type RepairExhaustedError struct {
	Kind       registry.Kind
	Name       string
	Attempts   int
	LastError  string
	Transcript oracle.Conversation
}

func (e *RepairExhaustedError) Error() string {
	return fmt.Sprintf("%s %s %s after %d attempts: %s", e.Kind, e.Name, ErrRetriedTooManyTimes, e.Attempts, e.LastError)
}

func (e *RepairExhaustedError) Unwrap() error { return ErrRetriedTooManyTimes }

// Mutator applies mutations and repairs rejected payloads with the oracle.
type Mutator struct {
	platform    lex.Platform
	corrector   Corrector
	registry    *registry.ResourceRegistry
	validator   *validation.Validator
	transcripts TranscriptStore
	logger      logger.Logger
	maxAttempts int
}

type Option func(*Mutator)

// WithTranscripts persists every repair conversation.
func WithTranscripts(store TranscriptStore) Option {
	return func(m *Mutator) { m.transcripts = store }
}

// WithMaxAttempts overrides DefaultMaxAttempts.
func WithMaxAttempts(n int) Option {
	return func(m *Mutator) {
		if n > 0 {
			m.maxAttempts = n
		}
	}
}

// WithRegistry sets the registry the proposal schemas come from.
func WithRegistry(reg *registry.ResourceRegistry) Option {
	return func(m *Mutator) {
		if reg != nil {
			m.registry = reg
		}
	}
}

func New(platform lex.Platform, corrector Corrector, log logger.Logger, opts ...Option) *Mutator {
	m := &Mutator{
		platform:    platform,
		corrector:   corrector,
		registry:    registry.Default(),
		validator:   validation.NewValidator(),
		logger:      log.WithFields(map[string]interface{}{"component": "mutator"}),
		maxAttempts: DefaultMaxAttempts,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Apply submits mut and, while the platform rejects it with a validation or
// serialization error, asks the oracle for a corrected payload and submits
// again. Every platform submission and every proposal that fails schema
// validation consumes one attempt. Other errors are returned unchanged.
func (m *Mutator) Apply(ctx context.Context, target Target, mut Mutation) (*Result, error) {
	kind := mut.Kind()
	log := m.logger.WithFields(map[string]interface{}{
		"artifactId": target.ArtifactID,
		"kind":       string(kind),
		"resource":   mut.Name(),
	})

	var (
		history  oracle.Conversation
		attempts int
	)
	for {
		attempts++
		id, err := mut.submit(ctx, m.platform, target.Locale)
		if err == nil {
			metrics.RepairAttempts.WithLabelValues(string(kind), metrics.OutcomeSuccess).Inc()
			if attempts > 1 {
				log.Info("resource accepted after repair", map[string]interface{}{"attempts": attempts})
				m.saveTranscript(ctx, target, mut, attempts, metrics.OutcomeSuccess, history)
			}
			return &Result{ID: id, Attempts: attempts, Transcript: history}, nil
		}

		errKind := lex.Classify(err)
		if !errKind.Repairable() {
			metrics.RepairAttempts.WithLabelValues(string(kind), metrics.OutcomeFatal).Inc()
			return nil, err
		}
		metrics.RepairAttempts.WithLabelValues(string(kind), metrics.OutcomeRejected).Inc()
		message := lex.Message(err)
		log.Warn("platform rejected payload", map[string]interface{}{
			"attempt":   attempts,
			"errorKind": errKind.String(),
			"error":     message,
		})

		// Ask until a proposal passes the schema or the budget is gone.
		for {
			if attempts >= m.maxAttempts {
				m.saveTranscript(ctx, target, mut, attempts, metrics.OutcomeExhausted, history)
				return nil, &RepairExhaustedError{
					Kind:       kind,
					Name:       mut.Name(),
					Attempts:   attempts,
					LastError:  message,
					Transcript: history,
				}
			}

			payload, err := mut.Payload()
			if err != nil {
				return nil, fmt.Errorf("encode %s payload: %w", kind, err)
			}
			corrected, next, err := m.corrector.ProposeCorrection(ctx, kind, payload, message, history)
			history = next
			if err != nil && !errors.Is(err, oracle.ErrUnparseableReply) {
				return nil, fmt.Errorf("%w: %w", ErrOracleFailed, err)
			}
			if err == nil {
				message, err = m.accept(mut, corrected)
				if err != nil {
					return nil, err
				}
				if message == "" {
					break
				}
			} else {
				message = "the reply did not contain a JSON object"
			}
			attempts++
			log.Warn("proposal rejected before submission", map[string]interface{}{
				"attempt": attempts,
				"error":   message,
			})
		}
	}
}

// accept validates a proposal and installs it. A non-empty message means
// the proposal was rejected and explains why.
func (m *Mutator) accept(mut Mutation, corrected json.RawMessage) (string, error) {
	res, err := m.validator.Validate(m.registry.SchemaJSON(mut.Kind()), corrected)
	if err != nil {
		return "", fmt.Errorf("validate %s proposal: %w", mut.Kind(), err)
	}
	if !res.Valid {
		return "schema validation failed: " + res.Summary(), nil
	}
	if err := mut.SetPayload(corrected); err != nil {
		return err.Error(), nil
	}
	return "", nil
}

func (m *Mutator) saveTranscript(ctx context.Context, target Target, mut Mutation, attempts int, outcome string, conv oracle.Conversation) {
	if m.transcripts == nil || conv.IsZero() {
		return
	}
	err := m.transcripts.Save(ctx, Transcript{
		ArtifactID:   target.ArtifactID,
		Kind:         mut.Kind(),
		Name:         mut.Name(),
		Attempts:     attempts,
		Outcome:      outcome,
		Conversation: conv,
		SavedAt:      time.Now().UTC(),
	})
	if err != nil {
		m.logger.Warn("failed to save repair transcript", map[string]interface{}{"error": err.Error()})
	}
}
