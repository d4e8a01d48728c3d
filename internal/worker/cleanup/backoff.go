package cleanup

import "time"

// defaultRetryBase は失敗後の初回リトライ遅延。
const defaultRetryBase = time.Minute

// retryDelay は連続失敗回数に基づく指数バックオフ遅延を返す。
// 初回はbase、以降2倍ずつ増加し、通常の実行間隔ceilingを超えない。
func retryDelay(consecutiveErrors int, base, ceiling time.Duration) time.Duration {
	if base <= 0 || base >= ceiling {
		return ceiling
	}
	delay := base
	for i := 1; i < consecutiveErrors; i++ {
		delay *= 2
		if delay >= ceiling {
			return ceiling
		}
	}
	return delay
}
