// Package cleanup はリフレッシュトークンの定期削除ジョブを提供する。
// ユーザー削除時の失効に失敗して残ったトークン（所有ユーザーが存在しないもの）を
// 定期的に削除する。リフレッシュトークンは時間では失効しないため、期限による削除は行わない。
package cleanup

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/VladVes/2022-winter-practice/internal/metrics"
)

// TokenPurger は所有ユーザーのいないリフレッシュトークンを削除する。
// repository.RefreshTokenRepositoryが実装する。
type TokenPurger interface {
	DeleteOrphaned(ctx context.Context) (int64, error)
}

// CleanupJob は孤立したリフレッシュトークンの削除ジョブ。
// 冪等であり、削除対象がなくてもエラーにならない。
type CleanupJob struct {
	purger  TokenPurger
	logger  *slog.Logger
	metrics metrics.MetricsCollector

	RetryBase time.Duration // 失敗後の初回リトライ遅延（デフォルト: 1分）
}

// NewCleanupJob は新しいCleanupJobを生成する。collectorがnilの場合は記録しない。
func NewCleanupJob(purger TokenPurger, logger *slog.Logger, collector metrics.MetricsCollector) *CleanupJob {
	if logger == nil {
		logger = slog.Default()
	}
	if collector == nil {
		collector = metrics.Nop{}
	}
	return &CleanupJob{
		purger:    purger,
		logger:    logger,
		metrics:   collector,
		RetryBase: defaultRetryBase,
	}
}

// Run は孤立したリフレッシュトークンを1回削除する。
func (j *CleanupJob) Run(ctx context.Context) error {
	start := time.Now()

	deleted, err := j.purger.DeleteOrphaned(ctx)
	if err != nil {
		j.logger.Error("リフレッシュトークンのクリーンアップに失敗しました",
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("リフレッシュトークンのクリーンアップに失敗: %w", err)
	}

	j.metrics.RecordRefreshTokensCleaned(deleted)
	j.logger.Info("リフレッシュトークンのクリーンアップが完了しました",
		slog.Int64("deleted_count", deleted),
		slog.Float64("duration_ms", float64(time.Since(start).Milliseconds())),
	)
	return nil
}

// Start は起動直後に1回、その後intervalごとにRunを実行する。
// 失敗した場合はRetryBaseから始まる指数バックオフで再実行し、成功すると通常間隔に戻る。
// ctxがキャンセルされるまでブロックする。
func (j *CleanupJob) Start(ctx context.Context, interval time.Duration) {
	failures := 0
	next := func() time.Duration {
		if err := j.Run(ctx); err != nil {
			failures++
			delay := retryDelay(failures, j.RetryBase, interval)
			j.logger.Warn("クリーンアップを再試行します",
				slog.Int("consecutive_errors", failures),
				slog.Duration("retry_in", delay),
			)
			return delay
		}
		failures = 0
		return interval
	}

	timer := time.NewTimer(next())
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			j.logger.Info("クリーンアップジョブを停止しました")
			return
		case <-timer.C:
			timer.Reset(next())
		}
	}
}
