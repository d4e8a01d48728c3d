// Package reporter は予期しない障害をログとエラートラッキングに送る。
package reporter

import (
	"context"
	"log/slog"
	"sort"
)

// Reporter はストレージ障害やpanicなど、利用者が対処できない失敗を報告する。
// バリデーションや認証失敗などの業務上の失敗は報告しない。
type Reporter interface {
	Report(ctx context.Context, err error, info map[string]string)
}

// SlogReporter はslogのERRORレベルに出力するReporter。
type SlogReporter struct {
	logger *slog.Logger
}

// NewSlogReporter はSlogReporterを生成する。loggerがnilの場合はslog.Default()を使う。
func NewSlogReporter(logger *slog.Logger) *SlogReporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &SlogReporter{logger: logger}
}

// Report はエラーと付随情報をERRORログとして出力する。
func (r *SlogReporter) Report(ctx context.Context, err error, info map[string]string) {
	if err == nil {
		return
	}
	attrs := []any{slog.String("error", err.Error())}
	for _, k := range sortedKeys(info) {
		attrs = append(attrs, slog.String(k, info[k]))
	}
	r.logger.ErrorContext(ctx, "unexpected error", attrs...)
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Multi は複数のReporterへ順に報告する。
type Multi []Reporter

// Report は全てのReporterに同じエラーを渡す。
func (m Multi) Report(ctx context.Context, err error, info map[string]string) {
	for _, r := range m {
		r.Report(ctx, err, info)
	}
}
