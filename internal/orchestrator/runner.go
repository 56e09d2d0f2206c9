// internal/orchestrator/runner.go
package orchestrator

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"lex-build-workers/internal/common/logger"
	"lex-build-workers/internal/models"
)

// DefaultMaxSteps bounds a local run. Each step handles one work item.
const DefaultMaxSteps = 1000

var (
	ErrNoStage    = errors.New("no stage registered")
	ErrStepLimit  = errors.New("step limit reached")
	ErrNoArtifact = errors.New("artifact id is required")
)

// Stage executes one step of the process. Every worker's Execute has this
// shape.
type Stage interface {
	Execute(ctx context.Context, ev *models.StageEvent) (*models.StageEvent, error)
}

// StageFunc adapts a function to Stage.
type StageFunc func(ctx context.Context, ev *models.StageEvent) (*models.StageEvent, error)

func (f StageFunc) Execute(ctx context.Context, ev *models.StageEvent) (*models.StageEvent, error) {
	return f(ctx, ev)
}

// FailureRecorder is the local stand-in for the BPMN error boundary.
type FailureRecorder interface {
	RecordFailure(ctx context.Context, artifactID, step string, err error) error
}

// Result is the outcome of a run.
type Result struct {
	State State
	Steps int
	Event *models.StageEvent
}

// Runner drives the stages in-process, one item per step.
type Runner struct {
	stages   map[State]Stage
	recorder FailureRecorder
	logger   logger.Logger
	tracer   trace.Tracer
	maxSteps int
}

type RunnerOption func(*Runner)

func WithMaxSteps(n int) RunnerOption {
	return func(r *Runner) {
		if n > 0 {
			r.maxSteps = n
		}
	}
}

func WithTracer(t trace.Tracer) RunnerOption {
	return func(r *Runner) {
		if t != nil {
			r.tracer = t
		}
	}
}

// NewRunner builds a runner. recorder may be nil.
func NewRunner(stages map[State]Stage, recorder FailureRecorder, log logger.Logger, opts ...RunnerOption) *Runner {
	r := &Runner{
		stages:   stages,
		recorder: recorder,
		logger:   log.WithFields(map[string]interface{}{"component": "runner"}),
		tracer:   otel.Tracer("lex-build-workers/orchestrator"),
		maxSteps: DefaultMaxSteps,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run starts at parameter collection with ev as the first event and steps
// until a terminal state. A stage error is recorded and returned.
func (r *Runner) Run(ctx context.Context, ev *models.StageEvent) (*Result, error) {
	if ev == nil || ev.Bot.ArtifactID == "" {
		return nil, ErrNoArtifact
	}
	artifactID := ev.Bot.ArtifactID
	log := logger.ForArtifact(r.logger, artifactID)

	ctx, runSpan := r.tracer.Start(ctx, "bot-build", trace.WithAttributes(attribute.String("artifact.id", artifactID)))
	defer runSpan.End()

	res := &Result{State: StateParameterCollection, Event: ev}
	for !res.State.Terminal() {
		if res.Steps >= r.maxSteps {
			return r.fail(ctx, log, runSpan, res, fmt.Errorf("%w: %d", ErrStepLimit, r.maxSteps))
		}
		stage, ok := r.stages[res.State]
		if !ok {
			return r.fail(ctx, log, runSpan, res, fmt.Errorf("%w: %s", ErrNoStage, res.State))
		}

		next, out, err := r.step(ctx, stage, res.State, res.Event)
		res.Steps++
		if err != nil {
			return r.fail(ctx, log, runSpan, res, err)
		}
		log.Debug("stage done", map[string]interface{}{
			"stage": string(res.State),
			"next":  string(next),
			"step":  res.Steps,
		})
		res.State, res.Event = next, out
	}

	runSpan.SetAttributes(attribute.Int("steps", res.Steps))
	log.Info("run finished", map[string]interface{}{"state": string(res.State), "steps": res.Steps})
	return res, nil
}

func (r *Runner) step(ctx context.Context, stage Stage, state State, ev *models.StageEvent) (State, *models.StageEvent, error) {
	ctx, span := r.tracer.Start(ctx, string(state))
	defer span.End()

	out, err := stage.Execute(ctx, ev)
	if err == nil && out == nil {
		err = fmt.Errorf("stage %s returned no event", state)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", nil, err
	}

	next := State(out.NextStage)
	if next == "" {
		if next, err = Next(state, out); err != nil {
			return "", nil, err
		}
	}
	if err := Transition(state, next); err != nil {
		return "", nil, err
	}
	span.SetAttributes(attribute.String("next", string(next)))
	return next, out, nil
}

func (r *Runner) fail(ctx context.Context, log logger.Logger, span trace.Span, res *Result, err error) (*Result, error) {
	step := string(res.State)
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	log.Error("run failed", map[string]interface{}{
		"stage": step,
		"steps": res.Steps,
		"error": err.Error(),
	})
	if r.recorder != nil {
		if rerr := r.recorder.RecordFailure(ctx, res.Event.Bot.ArtifactID, step, err); rerr != nil {
			log.Error("failure not recorded", map[string]interface{}{"error": rerr.Error()})
		}
	}
	res.State = StateFailed
	return res, err
}
