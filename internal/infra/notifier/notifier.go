// Package notifier delivers operator alerts: model account failures and
// refresh runs that ended with errors.
// The Discord webhook is the only real channel; NoOpNotifier stands in when
// alerts are disabled.
package notifier

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Level is the severity of an alert.
type Level string

const (
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Alert is one operator message.
type Alert struct {
	Title   string
	Message string
	Level   Level
	At      time.Time
}

// Notifier sends alerts. Implementations rate limit and retry internally.
type Notifier interface {
	Notify(ctx context.Context, alert Alert) error
	// AlertAccountFailure reports a billing or authorization failure of the
	// model provider.
	AlertAccountFailure(ctx context.Context, provider string, err error) error
	// AlertRefreshFailure reports a refresh run with failed steps.
	AlertRefreshFailure(ctx context.Context, runID string, errs []string) error
}

func accountFailureAlert(provider string, err error, now time.Time) Alert {
	return Alert{
		Title:   fmt.Sprintf("LLM account failure (%s)", provider),
		Message: fmt.Sprintf("スコアリングAPIが課金または認証エラーを返しました。APIキーと残高を確認してください。\n\n%v", err),
		Level:   LevelError,
		At:      now,
	}
}

func refreshFailureAlert(runID string, errs []string, now time.Time) Alert {
	return Alert{
		Title:   "Refresh finished with errors",
		Message: fmt.Sprintf("run %s\n- %s", runID, strings.Join(errs, "\n- ")),
		Level:   LevelWarning,
		At:      now,
	}
}
