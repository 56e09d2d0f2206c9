package stage

import (
	"context"
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lex-build-workers/internal/common/artifacts"
	"lex-build-workers/internal/common/errors"
	"lex-build-workers/internal/common/lex"
	"lex-build-workers/internal/models"
	"lex-build-workers/internal/mutator"
	"lex-build-workers/pkg/registry"
)

func TestWrap(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want errors.ErrorCode
	}{
		{"repair exhausted", &mutator.RepairExhaustedError{Kind: registry.KindIntent, Name: "BookHotel", Attempts: 5}, errors.ErrCodeRepairBudgetExhausted},
		{"unknown slot type", &mutator.SlotTypeNotFoundError{SlotType: "City", Slot: "Location"}, errors.ErrCodeResourceNotFound},
		{"oracle down", fmt.Errorf("%w: %w", mutator.ErrOracleFailed, stderrors.New("503")), errors.ErrCodeOracleFailed},
		{"wait timeout", fmt.Errorf("build: %w", lex.ErrWaitTimeout), errors.ErrCodePlatformWaitTimeout},
		{"artifact missing", artifacts.ErrNotFound, errors.ErrCodeArtifactNotFound},
		{"anything else", stderrors.New("throttled"), errors.ErrCodePlatformRequestFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := errors.Normalize(Wrap("op", tt.err))
			assert.Equal(t, tt.want, got.Code)
		})
	}
}

func TestWrap_KeepsStandardErrors(t *testing.T) {
	orig := errors.NewBuildRetriesExhaustedError(3, nil)

	assert.Same(t, orig, Wrap("op", orig))
	assert.NoError(t, Wrap("op", nil))
}

func TestWrap_ExhaustedKeepsMessage(t *testing.T) {
	err := Wrap("create", &mutator.RepairExhaustedError{Kind: registry.KindSlotType, Name: "City", Attempts: 5})

	assert.Contains(t, err.Error(), "retried too many times")
	assert.ErrorIs(t, err, mutator.ErrRetriedTooManyTimes)
}

func TestLoadArtifact(t *testing.T) {
	repo := artifacts.NewMemoryRepository(models.Artifact{ID: "a1", BotID: "BOT1", Locale: "en_US"})

	a, loc, err := LoadArtifact(context.Background(), repo, "a1")
	require.NoError(t, err)
	assert.Equal(t, "a1", a.ID)
	assert.Equal(t, lex.Locale{BotID: "BOT1", BotVersion: models.DefaultBotVersion, LocaleID: "en_US"}, loc)

	_, _, err = LoadArtifact(context.Background(), repo, "missing")
	assert.Equal(t, errors.ErrCodeArtifactNotFound, errors.Normalize(err).Code)

	_, _, err = LoadArtifact(context.Background(), repo, "")
	assert.Equal(t, errors.ErrCodeInputParsingFailed, errors.Normalize(err).Code)
}

func TestTrackerError(t *testing.T) {
	assert.NoError(t, TrackerError(nil))
	assert.Equal(t, errors.ErrCodeArtifactNotFound, errors.Normalize(TrackerError(artifacts.ErrNotFound)).Code)
	assert.Equal(t, errors.ErrCodeArtifactUpdateFailed, errors.Normalize(TrackerError(stderrors.New("disk"))).Code)
}
