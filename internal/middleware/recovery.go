package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/VladVes/2022-winter-practice/internal/reporter"
)

// NewRecoveryMiddleware はpanic発生時にプロセスクラッシュを防ぎ、
// エラーを報告して500レスポンスを返すミドルウェアを生成する。
// http.ErrAbortHandlerによるpanicはそのまま再送出する。
func NewRecoveryMiddleware(rep reporter.Reporter) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				slog.Error("panic recovered",
					slog.Any("panic", rec),
					slog.String("method", r.Method),
					slog.String("path", r.URL.Path),
					slog.String("stack", string(debug.Stack())),
				)
				if rep != nil {
					rep.Report(r.Context(), fmt.Errorf("panic: %v", rec), map[string]string{
						"method": r.Method,
						"path":   r.URL.Path,
					})
				}
				WriteInternalServerError(w)
			}()
			next.ServeHTTP(w, r)
		})
	}
}
