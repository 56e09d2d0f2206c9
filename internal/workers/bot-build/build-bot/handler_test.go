package buildbot

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
	"lex-build-workers/internal/common/lex"
	"lex-build-workers/internal/common/lex/lextest"
	"lex-build-workers/internal/models"
	"lex-build-workers/internal/orchestrator"
	"lex-build-workers/internal/workers/bot-build/stage/stagetest"
)

var fastWait = lex.WaitConfig{Interval: time.Millisecond, Timeout: 500 * time.Millisecond}

func testConfig() *Config {
	return &Config{
		Timeout:         5 * time.Second,
		Build:           fastWait,
		Export:          fastWait,
		ExportBucket:    "exports",
		ExportPrefix:    "lex",
		MaxBuildRetries: 2,
	}
}

func exportServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/zip")
		_, _ = w.Write([]byte("PK-archive"))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newHandler(t *testing.T, f *stagetest.Fixture) *Handler {
	t.Helper()
	f.Platform.DownloadURL = exportServer(t).URL + "/bot.zip"
	h := NewHandler(testConfig(), f.Tracker, f.Platform, f.Store, commonhttp.NewClient(time.Second), f.Logger)
	h.newKey = func() string { return "fixed" }
	return h
}

func TestHandler_Execute_Built(t *testing.T) {
	f := stagetest.New(t)
	in := f.Event()
	in.Input.NumOfRetry = 1
	in.SetFailureReasons([]string{"stale"})

	out, err := newHandler(t, f).Execute(context.Background(), in)

	require.NoError(t, err)
	assert.True(t, out.Input.Built)
	assert.Equal(t, 0, out.Input.FailureReasonsToFix)
	assert.Equal(t, 1, out.Input.NumOfRetry)
	assert.Equal(t, string(orchestrator.StateDone), out.NextStage)

	a := f.Artifact(t)
	assert.Equal(t, models.StatusBuilt, a.Status)
	assert.Equal(t, "s3://exports/lex/artifact-1/fixed.zip", a.ExportLocation)
	assert.Equal(t, []models.StatusMessage{{Status: models.StatusSuccess, Message: statusMessage}}, a.StatusMessages)

	body, err := f.Store.Get(context.Background(), "exports", "lex/artifact-1/fixed.zip")
	require.NoError(t, err)
	assert.Equal(t, "PK-archive", string(body))
}

func TestHandler_Execute_FailureRoutesToFixer(t *testing.T) {
	f := stagetest.New(t)
	f.Platform.SeedIntent(models.IntentDefinition{Name: "X"})
	f.Platform.ScriptBuilds(lextest.BuildOutcome{Reasons: []string{"Intent X invalid"}})

	out, err := newHandler(t, f).Execute(context.Background(), f.Event())

	require.NoError(t, err)
	assert.False(t, out.Input.Built)
	assert.Equal(t, 1, out.Input.NumOfRetry)
	assert.Equal(t, []string{"Intent X invalid"}, out.Input.FailureReasons)
	assert.Equal(t, 1, out.Input.FailureReasonsToFix)
	assert.Equal(t, string(orchestrator.StateFixResource), out.NextStage)
	_, ok := out.Input.Inventory.FindIntent("X")
	assert.True(t, ok)

	a := f.Artifact(t)
	assert.Equal(t, models.StatusError, a.Status)
	assert.Equal(t, 1, a.CountStatus(models.StatusError))
	assert.Contains(t, a.StatusMessages, models.StatusMessage{
		Status:  models.StatusError,
		Message: "Build attempt 1 failed with 1 failure reason(s)",
	})
	assert.Empty(t, f.Store.Keys())
}

func TestHandler_Execute_FailureWithoutReasonsRebuilds(t *testing.T) {
	f := stagetest.New(t)
	f.Platform.Fail(lextest.OpBuildLocale, fmt.Errorf("throttled"))

	out, err := newHandler(t, f).Execute(context.Background(), f.Event())

	require.NoError(t, err)
	assert.Equal(t, 0, out.Input.FailureReasonsToFix)
	assert.Equal(t, string(orchestrator.StateBuildArtifact), out.NextStage)
}

func TestHandler_Execute_RetriesExhausted(t *testing.T) {
	f := stagetest.New(t)
	f.Platform.ScriptBuilds(lextest.BuildOutcome{Reasons: []string{"Intent X invalid"}})
	in := f.Event()
	in.Input.NumOfRetry = 2

	_, err := newHandler(t, f).Execute(context.Background(), in)

	require.Error(t, err)
	var se *errors.StandardError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, errors.ErrCodeBuildRetriesExhausted, se.Code)
	assert.Equal(t, "failed to build after 3 retries", se.Message)
	assert.Contains(t, f.Artifact(t).StatusMessages, models.StatusMessage{
		Status:  models.StatusError,
		Message: "Build attempt 3 failed with 1 failure reason(s)",
	})
}

func TestHandler_Execute_WaitTimeoutIsFatal(t *testing.T) {
	f := stagetest.New(t)
	h := newHandler(t, f)
	h.config.Build = lex.WaitConfig{Interval: time.Millisecond, Timeout: 10 * time.Millisecond}
	f.Platform.ExportStatus = lex.ExportInProgress
	h.config.Export = h.config.Build

	_, err := h.Execute(context.Background(), f.Event())

	var se *errors.StandardError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, errors.ErrCodePlatformWaitTimeout, se.Code)
}

func TestHandler_Execute_DownloadFailureCountsAsBuildFailure(t *testing.T) {
	f := stagetest.New(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "expired", http.StatusForbidden)
	}))
	defer srv.Close()
	h := NewHandler(testConfig(), f.Tracker, f.Platform, f.Store, commonhttp.NewClient(time.Second), f.Logger)
	f.Platform.DownloadURL = srv.URL

	out, err := h.Execute(context.Background(), f.Event())

	require.NoError(t, err)
	assert.Equal(t, 1, out.Input.NumOfRetry)
	assert.Equal(t, string(orchestrator.StateBuildArtifact), out.NextStage)
}

func TestHandler_Execute_MissingArtifact(t *testing.T) {
	f := stagetest.New(t)
	in := f.Event()
	in.Bot.ArtifactID = "nope"

	_, err := newHandler(t, f).Execute(context.Background(), in)

	var se *errors.StandardError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, errors.ErrCodeArtifactNotFound, se.Code)
}

func TestNewConfig(t *testing.T) {
	app := &config.Config{Build: config.BuildConfig{
		PollInterval:    3000,
		WaitTimeout:     60000,
		ExportTimeout:   120000,
		MaxBuildRetries: 4,
	}}
	app.Workers = map[string]config.WorkerConfig{TaskType: {Enabled: true, Timeout: 1200000}}
	app.AWS.S3.ExportBucket = "exports"

	cfg := NewConfig(app)

	assert.Equal(t, 3*time.Second, cfg.Build.Interval)
	assert.Equal(t, 3*time.Second, cfg.Export.Interval)
	assert.Equal(t, time.Minute, cfg.Build.Timeout)
	assert.Equal(t, 2*time.Minute, cfg.Export.Timeout)
	assert.Equal(t, 4, cfg.MaxBuildRetries)
	assert.Equal(t, "exports", cfg.ExportBucket)
	assert.Equal(t, "exports", cfg.ExportPrefix)
	assert.Equal(t, 20*time.Minute, cfg.Timeout)
}
