// internal/workers/bot-build/workers.go
package botbuild

import (
	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"lex-build-workers/internal/common/artifacts"
	"lex-build-workers/internal/common/aws"
	"lex-build-workers/internal/common/config"
	"lex-build-workers/internal/common/lex"
	"lex-build-workers/internal/common/logger"
	"lex-build-workers/internal/mutator"
	"lex-build-workers/internal/orchestrator"
	buildbot "lex-build-workers/internal/workers/bot-build/build-bot"
	collectparameters "lex-build-workers/internal/workers/bot-build/collect-parameters"
	createintent "lex-build-workers/internal/workers/bot-build/create-intent"
	createslottype "lex-build-workers/internal/workers/bot-build/create-slot-type"
	fixresource "lex-build-workers/internal/workers/bot-build/fix-resource"
	recordfailure "lex-build-workers/internal/workers/bot-build/record-failure"
)

// Deps are the shared clients every stage is built from. Auditor, Alerter
// and Mailer are optional.
type Deps struct {
	Config     *config.Config
	Tracker    *artifacts.Tracker
	Platform   lex.Platform
	Store      aws.ObjectStore
	Fixer      fixresource.Fixer
	Mutator    *mutator.Mutator
	Downloader buildbot.Downloader
	Auditor    fixresource.RepairAuditor
	Alerter    recordfailure.Alerter
	Mailer     recordfailure.Mailer
	Logger     logger.Logger
}

// Workers holds one handler per task type of the bot build process.
type Workers struct {
	Collect  *collectparameters.Handler
	SlotType *createslottype.Handler
	Intent   *createintent.Handler
	Build    *buildbot.Handler
	Fix      *fixresource.Handler
	Failure  *recordfailure.Handler
}

// Job pairs a task type with its Zeebe handler.
type Job struct {
	TaskType string
	Handle   func(worker.JobClient, entities.Job)
}

func New(d Deps) *Workers {
	app := d.Config
	return &Workers{
		Collect:  collectparameters.NewHandler(collectparameters.NewConfig(app), d.Tracker, d.Platform, d.Store, d.Logger),
		SlotType: createslottype.NewHandler(createslottype.NewConfig(app), d.Tracker, d.Platform, d.Mutator, d.Logger),
		Intent:   createintent.NewHandler(createintent.NewConfig(app), d.Tracker, d.Platform, d.Mutator, d.Logger),
		Build:    buildbot.NewHandler(buildbot.NewConfig(app), d.Tracker, d.Platform, d.Store, d.Downloader, d.Logger),
		Fix:      fixresource.NewHandler(fixresource.NewConfig(app), d.Tracker, d.Platform, d.Fixer, d.Mutator, d.Auditor, d.Logger),
		Failure:  recordfailure.NewHandler(recordfailure.NewConfig(app), d.Tracker, d.Alerter, d.Mailer, d.Logger),
	}
}

func (w *Workers) Jobs() []Job {
	return []Job{
		{collectparameters.TaskType, w.Collect.Handle},
		{createslottype.TaskType, w.SlotType.Handle},
		{createintent.TaskType, w.Intent.Handle},
		{buildbot.TaskType, w.Build.Handle},
		{fixresource.TaskType, w.Fix.Handle},
		{recordfailure.TaskType, w.Failure.Handle},
	}
}

// Stages maps every non-terminal state to its executor.
func (w *Workers) Stages() map[orchestrator.State]orchestrator.Stage {
	return map[orchestrator.State]orchestrator.Stage{
		orchestrator.StateParameterCollection: w.Collect,
		orchestrator.StateCreateSlotType:      w.SlotType,
		orchestrator.StateCreateIntent:        w.Intent,
		orchestrator.StateBuildArtifact:       w.Build,
		orchestrator.StateFixResource:         w.Fix,
	}
}

// Runner drives the stages in-process and records failures like the
// process error boundary does.
func (w *Workers) Runner(log logger.Logger, opts ...orchestrator.RunnerOption) *orchestrator.Runner {
	return orchestrator.NewRunner(w.Stages(), w.Failure, log, opts...)
}
