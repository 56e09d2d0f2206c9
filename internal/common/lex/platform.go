// Package lex adapts the Amazon Lex V2 models API to the handful of
// operations the bot build workers need.
package lex

import (
	"context"

	"lex-build-workers/internal/models"
)

// Locale addresses one bot locale on the platform.
type Locale struct {
	BotID      string
	BotVersion string
	LocaleID   string
}

// LocaleOf derives the platform address of an artifact.
func LocaleOf(a *models.Artifact) Locale {
	return Locale{BotID: a.BotID, BotVersion: a.BotVersion(), LocaleID: a.Locale}
}

// LocaleStatus values reported by DescribeLocale.
const (
	LocaleBuilt    = "Built"
	LocaleBuilding = "Building"
	LocaleFailed   = "Failed"
	LocaleNotBuilt = "NotBuilt"
)

// ExportStatus values reported by DescribeExport.
const (
	ExportCompleted  = "Completed"
	ExportInProgress = "InProgress"
	ExportFailed     = "Failed"
)

// LocaleState is the build state of a locale.
type LocaleState struct {
	Status         string
	FailureReasons []string
}

// ExportState is the state of an export job.
type ExportState struct {
	Status         string
	DownloadURL    string
	FailureReasons []string
}

// Platform is the slice of the Lex models API the workers use. Every method
// is scoped to a bot locale.
type Platform interface {
	CreateSlotType(ctx context.Context, loc Locale, def models.SlotTypeDefinition) (string, error)
	UpdateSlotType(ctx context.Context, loc Locale, id string, def models.SlotTypeDefinition) error
	DescribeSlotType(ctx context.Context, loc Locale, id string) (models.SlotTypeDefinition, error)
	ListSlotTypes(ctx context.Context, loc Locale) ([]models.ResourceRef, error)
	DeleteSlotType(ctx context.Context, loc Locale, id string) error

	CreateIntent(ctx context.Context, loc Locale, def models.IntentDefinition) (string, error)
	UpdateIntent(ctx context.Context, loc Locale, id string, def models.IntentDefinition) error
	DescribeIntent(ctx context.Context, loc Locale, id string) (models.IntentDefinition, error)
	ListIntents(ctx context.Context, loc Locale) ([]models.ResourceRef, error)
	DeleteIntent(ctx context.Context, loc Locale, id string) error

	CreateSlot(ctx context.Context, loc Locale, intentID string, def models.SlotDefinition) (string, error)
	UpdateSlot(ctx context.Context, loc Locale, intentID, slotID string, def models.SlotDefinition) error
	DescribeSlot(ctx context.Context, loc Locale, intentID, slotID string) (models.SlotDefinition, error)
	ListSlots(ctx context.Context, loc Locale, intentID string) ([]models.ResourceRef, error)

	BuildLocale(ctx context.Context, loc Locale) error
	DescribeLocale(ctx context.Context, loc Locale) (LocaleState, error)
	CreateExport(ctx context.Context, loc Locale) (string, error)
	DescribeExport(ctx context.Context, exportID string) (ExportState, error)
}
