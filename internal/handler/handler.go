// Package handler はHTTPハンドラーを提供する。
package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/VladVes/2022-winter-practice/internal/middleware"
	"github.com/VladVes/2022-winter-practice/internal/model"
	"github.com/VladVes/2022-winter-practice/internal/reporter"
)

// maxBodyBytes はリクエストボディの上限サイズ。
const maxBodyBytes = 1 << 20

// successResponse は本文を持たない成功レスポンス。
type successResponse struct {
	Success bool `json:"success"`
}

// errorHandler はサービス層のエラーをHTTPレスポンスに変換する。
// 各ハンドラーに埋め込んで使う。
type errorHandler struct {
	reporter reporter.Reporter
}

func newErrorHandler(rep reporter.Reporter) errorHandler {
	if rep == nil {
		rep = reporter.NewSlogReporter(nil)
	}
	return errorHandler{reporter: rep}
}

// handleServiceError はAPIErrorであればコードに応じたステータスで返し、
// それ以外は予期しない障害としてエラートラッキングに報告して500を返す。
func (e errorHandler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		middleware.WriteAPIError(w, apiErr)
		return
	}

	e.reporter.Report(r.Context(), err, map[string]string{
		"method": r.Method,
		"path":   r.URL.Path,
	})
	middleware.WriteInternalServerError(w)
}

// writeJSON はステータスコードとJSONボディを書き込む。
func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("failed to encode response", slog.String("error", err.Error()))
	}
}

// writeSuccess は {"success": true} を200で返す。
func writeSuccess(w http.ResponseWriter) {
	writeJSON(w, http.StatusOK, successResponse{Success: true})
}

// decodeJSON はリクエストボディを厳密にデコードする。
// 未知のフィールドや複数のJSON値を含むボディはINVALID_REQUESTとする。
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return model.NewInvalidRequestError("body is empty")
		}
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return model.NewInvalidRequestError("body too large")
		}
		return model.NewInvalidRequestError(err.Error())
	}
	if dec.More() {
		return model.NewInvalidRequestError("body must contain a single JSON object")
	}
	return nil
}

// pathID はURLパラメータ{id}を取り出し、UUID形式であることを検証する。
func pathID(r *http.Request) (string, error) {
	id := chi.URLParam(r, "id")
	if _, err := uuid.Parse(id); err != nil {
		return "", model.NewValidationError("id must be a valid UUID")
	}
	return id, nil
}

// NotFound は未定義のルートに対する404レスポンスを返す。
func NotFound(w http.ResponseWriter, _ *http.Request) {
	middleware.WriteAPIError(w, model.NewNotFoundError("endpoint not found"))
}

// MethodNotAllowed は許可されていないメソッドに対する405レスポンスを返す。
func MethodNotAllowed(w http.ResponseWriter, _ *http.Request) {
	middleware.WriteErrorResponse(w, http.StatusMethodNotAllowed, &model.APIError{
		Code:     "METHOD_NOT_ALLOWED",
		Message:  "method not allowed",
		Category: "validation",
	})
}
