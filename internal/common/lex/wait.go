// internal/common/lex/wait.go
package lex

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/lexmodelsv2"
	"github.com/aws/aws-sdk-go-v2/service/lexmodelsv2/types"
)

// WaitConfig bounds a waiter. Interval is the first delay between attempts;
// the SDK backs off from there up to four times that.
type WaitConfig struct {
	Interval time.Duration
	Timeout  time.Duration
}

func (w WaitConfig) withDefaults() WaitConfig {
	if w.Interval <= 0 {
		w.Interval = 5 * time.Second
	}
	if w.Timeout <= 0 {
		w.Timeout = 10 * time.Minute
	}
	return w
}

func (w WaitConfig) maxDelay() time.Duration {
	return 4 * w.Interval
}

// WaitForBuild waits until the locale is Built. A locale that lands in
// Failed (or NotBuilt) yields a *BuildFailedError carrying the platform's
// failure reasons.
func WaitForBuild(ctx context.Context, p Platform, loc Locale, wc WaitConfig) error {
	wc = wc.withDefaults()
	waiter := lexmodelsv2.NewBotLocaleBuiltWaiter(describerFor(p), func(o *lexmodelsv2.BotLocaleBuiltWaiterOptions) {
		o.MinDelay = wc.Interval
		o.MaxDelay = wc.maxDelay()
	})
	err := waiter.Wait(ctx, &lexmodelsv2.DescribeBotLocaleInput{
		BotId:      aws.String(loc.BotID),
		BotVersion: aws.String(loc.BotVersion),
		LocaleId:   aws.String(loc.LocaleID),
	}, wc.Timeout)
	if err == nil {
		return nil
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if waitExpired(err) {
		return fmt.Errorf("%w: locale build after %s", ErrWaitTimeout, wc.Timeout)
	}

	// The waiter drops the terminal response, so ask once more for the reasons.
	state, derr := p.DescribeLocale(ctx, loc)
	if derr != nil {
		return fmt.Errorf("locale build: %w", err)
	}
	switch state.Status {
	case LocaleFailed, LocaleNotBuilt, string(types.BotLocaleStatusDeleting):
		return &BuildFailedError{Status: state.Status, Reasons: state.FailureReasons}
	}
	return fmt.Errorf("locale build: %w", err)
}

// WaitForExport waits until an export completes and returns its download URL.
func WaitForExport(ctx context.Context, p Platform, exportID string, wc WaitConfig) (string, error) {
	wc = wc.withDefaults()
	waiter := lexmodelsv2.NewBotExportCompletedWaiter(describerFor(p), func(o *lexmodelsv2.BotExportCompletedWaiterOptions) {
		o.MinDelay = wc.Interval
		o.MaxDelay = wc.maxDelay()
	})
	out, err := waiter.WaitForOutput(ctx, &lexmodelsv2.DescribeExportInput{ExportId: aws.String(exportID)}, wc.Timeout)
	if err == nil {
		return aws.ToString(out.DownloadUrl), nil
	}
	if ctx.Err() != nil {
		return "", ctx.Err()
	}
	if waitExpired(err) {
		return "", fmt.Errorf("%w: bot export after %s", ErrWaitTimeout, wc.Timeout)
	}

	state, derr := p.DescribeExport(ctx, exportID)
	if derr != nil {
		return "", fmt.Errorf("export %s: %w", exportID, err)
	}
	return "", fmt.Errorf("export %s failed with status %s: %v", exportID, state.Status, state.FailureReasons)
}

// waitExpired reports whether a waiter gave up because its max wait elapsed.
// The SDK either runs out of budget between attempts or has its own deadline
// fire mid-call.
func waitExpired(err error) bool {
	return errors.Is(err, context.DeadlineExceeded) || strings.Contains(err.Error(), "exceeded max wait time")
}

// describerFor hands the SDK waiters the raw API when p is the real adapter,
// and a translating shim for any other Platform.
func describerFor(p Platform) platformDescriber {
	if c, ok := p.(*Client); ok {
		return c.api
	}
	return shim{p}
}

type platformDescriber interface {
	lexmodelsv2.DescribeBotLocaleAPIClient
	lexmodelsv2.DescribeExportAPIClient
}

type shim struct{ p Platform }

func (s shim) DescribeBotLocale(ctx context.Context, in *lexmodelsv2.DescribeBotLocaleInput, _ ...func(*lexmodelsv2.Options)) (*lexmodelsv2.DescribeBotLocaleOutput, error) {
	state, err := s.p.DescribeLocale(ctx, Locale{
		BotID:      aws.ToString(in.BotId),
		BotVersion: aws.ToString(in.BotVersion),
		LocaleID:   aws.ToString(in.LocaleId),
	})
	if err != nil {
		return nil, err
	}
	return &lexmodelsv2.DescribeBotLocaleOutput{
		BotId:           in.BotId,
		BotVersion:      in.BotVersion,
		LocaleId:        in.LocaleId,
		BotLocaleStatus: types.BotLocaleStatus(state.Status),
		FailureReasons:  state.FailureReasons,
	}, nil
}

func (s shim) DescribeExport(ctx context.Context, in *lexmodelsv2.DescribeExportInput, _ ...func(*lexmodelsv2.Options)) (*lexmodelsv2.DescribeExportOutput, error) {
	state, err := s.p.DescribeExport(ctx, aws.ToString(in.ExportId))
	if err != nil {
		return nil, err
	}
	return &lexmodelsv2.DescribeExportOutput{
		ExportId:       in.ExportId,
		ExportStatus:   types.ExportStatus(state.Status),
		DownloadUrl:    optional(state.DownloadURL),
		FailureReasons: state.FailureReasons,
	}, nil
}
