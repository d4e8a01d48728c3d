package model

import "fmt"

// APIError はサービス層が返すビジネスルール上の失敗を表す。
// ハンドラー層でHTTPステータスと統一エラーフォーマットに変換される。
// APIError以外のエラーは予期しない障害（ストレージ障害等）として扱う。
type APIError struct {
	Code     string // エラーコード
	Message  string // クライアントに返すメッセージ
	Category string // カテゴリ: auth, validation, resource, system
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeValidation     = "VALIDATION_ERROR"
	ErrCodeConflict       = "CONFLICT"
	ErrCodeForbidden      = "FORBIDDEN"
	ErrCodeNotFound       = "NOT_FOUND"
	ErrCodeTokenInvalid   = "TOKEN_INVALID"
	ErrCodeUnauthorized   = "UNAUTHORIZED"
	ErrCodeInvalidRequest = "INVALID_REQUEST"
	ErrCodeRateLimited    = "RATE_LIMITED"
	ErrCodeInternal       = "INTERNAL_ERROR"
)

// NewValidationError は入力値検証エラーを生成する。
// messageには違反した制約を含める。
func NewValidationError(message string) *APIError {
	return &APIError{
		Code:     ErrCodeValidation,
		Message:  message,
		Category: "validation",
	}
}

// NewConflictError は一意制約違反エラーを生成する。
func NewConflictError(message string) *APIError {
	return &APIError{
		Code:     ErrCodeConflict,
		Message:  message,
		Category: "validation",
	}
}

// NewForbiddenError はログイン失敗エラーを生成する。
// ユーザー不在とパスワード不一致を区別しない。
func NewForbiddenError() *APIError {
	return &APIError{
		Code:     ErrCodeForbidden,
		Message:  "invalid email or password",
		Category: "auth",
	}
}

// NewNotFoundError はリソース未検出エラーを生成する。
func NewNotFoundError(message string) *APIError {
	return &APIError{
		Code:     ErrCodeNotFound,
		Message:  message,
		Category: "resource",
	}
}

// NewTokenInvalidError はアクセストークンの検証失敗エラーを生成する。
// 期限切れと改ざん・不正形式はクライアントに区別して返さない。
func NewTokenInvalidError() *APIError {
	return &APIError{
		Code:     ErrCodeTokenInvalid,
		Message:  "invalid or expired token",
		Category: "auth",
	}
}

// NewUnauthorizedError は認証情報が提示されていない場合のエラーを生成する。
func NewUnauthorizedError() *APIError {
	return &APIError{
		Code:     ErrCodeUnauthorized,
		Message:  "authentication required",
		Category: "auth",
	}
}

// NewInvalidRequestError はリクエストボディの解析失敗エラーを生成する。
func NewInvalidRequestError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidRequest,
		Message:  fmt.Sprintf("invalid request body: %s", reason),
		Category: "validation",
	}
}

// NewInternalError は内部エラーの汎用レスポンスを生成する。
// 詳細はログとエラートラッキングにのみ記録する。
func NewInternalError() *APIError {
	return &APIError{
		Code:     ErrCodeInternal,
		Message:  "internal server error",
		Category: "system",
	}
}
