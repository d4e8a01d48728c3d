// Package middleware はHTTPミドルウェアを提供する。
package middleware

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/VladVes/2022-winter-practice/internal/model"
	"github.com/VladVes/2022-winter-practice/internal/token"
)

// contextKey はコンテキストに値を格納するための型安全なキー。
type contextKey string

var (
	// userIDContextKey はリクエストコンテキストにユーザーIDを格納するためのキー。
	userIDContextKey = contextKey("user_id")
	// requestInfoContextKey はロギングミドルウェアが用意するリクエスト情報のキー。
	requestInfoContextKey = contextKey("request_info")
)

// requestInfo は内側のミドルウェアで判明した情報を外側のミドルウェアへ渡す。
type requestInfo struct {
	userID string
}

// TokenVerifier はアクセストークンの検証に必要なインターフェース。
// token.Managerが実装する。
type TokenVerifier interface {
	Parse(tokenString string) (*model.Claims, error)
}

// NewAuthMiddleware はAuthorizationヘッダーのBearerトークンを検証するミドルウェアを返す。
// 検証はステートレスでストレージを参照しない。
// 認証済みユーザーIDをリクエストコンテキストに注入する。
// ヘッダーが無ければUNAUTHORIZED、検証に失敗すればTOKEN_INVALIDを401で返す。
func NewAuthMiddleware(verifier TokenVerifier) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := bearerToken(r)
			if !ok {
				WriteAPIError(w, model.NewUnauthorizedError())
				return
			}

			claims, err := verifier.Parse(raw)
			if err != nil {
				reason := "invalid"
				if errors.Is(err, token.ErrTokenExpired) {
					reason = "expired"
				}
				slog.DebugContext(r.Context(), "access token rejected",
					slog.String("reason", reason),
					slog.String("path", r.URL.Path),
				)
				WriteAPIError(w, model.NewTokenInvalidError())
				return
			}

			ctx := ContextWithUserID(r.Context(), claims.UserID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// bearerToken はAuthorization: Bearer <token> からトークンを取り出す。
func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	scheme, raw, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	raw = strings.TrimSpace(raw)
	return raw, raw != ""
}

// UserIDFromContext はリクエストコンテキストからユーザーIDを取得する。
// 認証ミドルウェアを通過したリクエストでのみ有効。
func UserIDFromContext(ctx context.Context) (string, error) {
	userID, ok := ctx.Value(userIDContextKey).(string)
	if !ok || userID == "" {
		return "", fmt.Errorf("user ID not found in context")
	}
	return userID, nil
}

// ContextWithUserID はコンテキストにユーザーIDを注入する。
// ロギングミドルウェアが用意したリクエスト情報があれば、そこにも記録する。
func ContextWithUserID(ctx context.Context, userID string) context.Context {
	if info, ok := ctx.Value(requestInfoContextKey).(*requestInfo); ok {
		info.userID = userID
	}
	return context.WithValue(ctx, userIDContextKey, userID)
}
