package botbuild_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lex-build-workers/internal/common/config"
	"lex-build-workers/internal/common/errors"
	commonhttp "lex-build-workers/internal/common/http"
	"lex-build-workers/internal/common/lex/lextest"
	"lex-build-workers/internal/common/oracle"
	"lex-build-workers/internal/models"
	"lex-build-workers/internal/mutator"
	"lex-build-workers/internal/orchestrator"
	botbuild "lex-build-workers/internal/workers/bot-build"
	"lex-build-workers/internal/workers/bot-build/stage/stagetest"
)

func testAppConfig() *config.Config {
	app := &config.Config{Build: config.BuildConfig{
		PollInterval:    1,
		WaitTimeout:     500,
		ExportTimeout:   500,
		MaxBuildRetries: 2,
	}}
	app.AWS.S3.ExportBucket = "exports"
	return app
}

func newRunner(t *testing.T, f *stagetest.Fixture) *orchestrator.Runner {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("PK-export"))
	}))
	t.Cleanup(srv.Close)
	f.Platform.DownloadURL = srv.URL + "/export.zip"

	w := botbuild.New(botbuild.Deps{
		Config:     testAppConfig(),
		Tracker:    f.Tracker,
		Platform:   f.Platform,
		Store:      f.Store,
		Fixer:      f.Oracle,
		Mutator:    f.Mutator,
		Downloader: commonhttp.NewClient(time.Second),
		Logger:     f.Logger,
	})
	return w.Runner(f.Logger)
}

func firstEvent(f *stagetest.Fixture) *models.StageEvent {
	ev := f.Event()
	ev.Output = stagetest.SampleBundle()
	return ev
}

func TestRun_RepairsBuildFailureAndBuilds(t *testing.T) {
	f := stagetest.New(t)
	f.Platform.ScriptBuilds(
		lextest.BuildOutcome{Reasons: []string{"Intent BookHotel invalid"}},
		lextest.BuildOutcome{},
	)
	f.Model.Reply(
		`{"type":"intent","resources":["BookHotel"]}`,
		`{"name":"BookHotel","sampleUtterances":["book a hotel","I need a room please"]}`,
	)

	res, err := newRunner(t, f).Run(context.Background(), firstEvent(f))

	require.NoError(t, err)
	assert.Equal(t, orchestrator.StateDone, res.State)
	assert.Equal(t, 0, res.Event.Input.FailureReasonsToFix)
	assert.True(t, res.Event.Input.Built)
	assert.Equal(t, 2, f.Platform.Calls(lextest.OpBuildLocale))
	assert.Equal(t, 2, f.Platform.Calls(lextest.OpCreateSlotType))
	assert.Equal(t, 3, f.Platform.Calls(lextest.OpCreateIntent))

	_, book, ok := f.Platform.IntentByName("BookHotel")
	require.True(t, ok)
	assert.Equal(t, []string{"book a hotel", "I need a room please"}, book.SampleUtterances)
	assert.Len(t, book.SlotPriorities, 2)

	a := f.Artifact(t)
	assert.Equal(t, models.StatusBuilt, a.Status)
	assert.Equal(t, 1, a.CountStatus(models.StatusError))
	seen := map[string]bool{}
	for _, m := range a.StatusMessages {
		assert.False(t, seen[m.Message], "duplicate status message %q", m.Message)
		seen[m.Message] = true
	}
	assert.NotEmpty(t, a.ExportLocation)
	assert.Len(t, f.Store.Keys(), 1)
}

func TestRun_MutationBudgetIsFatal(t *testing.T) {
	f := stagetest.New(t)
	for i := 0; i < 6; i++ {
		f.Platform.Fail(lextest.OpCreateSlotType, lextest.ValidationError(fmt.Sprintf("slot type rejected %d", i)))
	}
	f.Model.Otherwise(func(string, []oracle.Message) (string, error) {
		return `{"name":"City","values":[{"value":"Paris"}]}`, nil
	})

	res, err := newRunner(t, f).Run(context.Background(), firstEvent(f))

	require.Error(t, err)
	assert.ErrorIs(t, err, mutator.ErrRetriedTooManyTimes)
	assert.Equal(t, orchestrator.StateFailed, res.State)
	assert.Equal(t, 5, f.Platform.Calls(lextest.OpCreateSlotType))
	assert.Equal(t, 0, f.Platform.Calls(lextest.OpBuildLocale))

	a := f.Artifact(t)
	assert.Equal(t, models.StatusError, a.Status)
	last := a.StatusMessages[len(a.StatusMessages)-1]
	assert.Equal(t, models.StatusError, last.Status)
	assert.Contains(t, last.Message, "create-slot-type failed")
}

func TestRun_BuildRetriesExhausted(t *testing.T) {
	f := stagetest.New(t)
	f.Platform.Fail(lextest.OpBuildLocale,
		fmt.Errorf("build rejected"), fmt.Errorf("build rejected"), fmt.Errorf("build rejected"))

	res, err := newRunner(t, f).Run(context.Background(), firstEvent(f))

	require.Error(t, err)
	assert.Equal(t, orchestrator.StateFailed, res.State)
	se := errors.Normalize(err)
	assert.Equal(t, errors.ErrCodeBuildRetriesExhausted, se.Code)
	assert.Equal(t, "failed to build after 3 retries", se.Message)
	assert.Equal(t, 3, f.Platform.Calls(lextest.OpBuildLocale))

	a := f.Artifact(t)
	assert.Equal(t, models.StatusError, a.Status)
	assert.Contains(t, a.StatusMessages[len(a.StatusMessages)-1].Message, "failed to build after 3 retries")
}

func TestWorkers_JobsCoverEveryTaskType(t *testing.T) {
	f := stagetest.New(t)
	w := botbuild.New(botbuild.Deps{Config: testAppConfig(), Tracker: f.Tracker, Platform: f.Platform, Store: f.Store,
		Fixer: f.Oracle, Mutator: f.Mutator, Downloader: commonhttp.NewClient(time.Second), Logger: f.Logger})

	var types []string
	for _, j := range w.Jobs() {
		assert.NotNil(t, j.Handle)
		types = append(types, j.TaskType)
	}
	assert.Equal(t, []string{
		"bot-collect-parameters",
		"bot-create-slot-type",
		"bot-create-intent",
		"bot-build-artifact",
		"bot-fix-resource",
		"bot-record-failure",
	}, types)
	assert.Len(t, w.Stages(), 5)
}
