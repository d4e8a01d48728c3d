package reporter

import (
	"context"
	"fmt"
	"time"

	"github.com/getsentry/sentry-go"
)

// SentryReporter はSentryにエラーを送信するReporter。
// グローバルHubは使わず、専用のHubを保持する。
type SentryReporter struct {
	hub *sentry.Hub
}

// NewSentryReporter はdsnに接続するSentryReporterを生成する。
func NewSentryReporter(dsn, environment string) (*SentryReporter, error) {
	client, err := sentry.NewClient(sentry.ClientOptions{
		Dsn:              dsn,
		Environment:      environment,
		AttachStacktrace: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create sentry client: %w", err)
	}
	return &SentryReporter{hub: sentry.NewHub(client, sentry.NewScope())}, nil
}

// Report はinfoをタグとしてエラーを送信する。
func (r *SentryReporter) Report(_ context.Context, err error, info map[string]string) {
	if err == nil {
		return
	}
	r.hub.WithScope(func(scope *sentry.Scope) {
		scope.SetTags(info)
		r.hub.CaptureException(err)
	})
}

// Flush は送信待ちのイベントをtimeoutまで待って送信する。
func (r *SentryReporter) Flush(timeout time.Duration) bool {
	return r.hub.Flush(timeout)
}
