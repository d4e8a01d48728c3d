package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/VladVes/2022-winter-practice/internal/model"
	"github.com/VladVes/2022-winter-practice/internal/reporter"
	"github.com/VladVes/2022-winter-practice/internal/tracker"
)

// StatusServiceInterface はステータスハンドラーが必要とするサービスインターフェース。
type StatusServiceInterface interface {
	List(ctx context.Context, filter model.StatusFilter) ([]*model.Status, error)
	Get(ctx context.Context, id string) (*model.Status, error)
	Create(ctx context.Context, in tracker.StatusInput) (*model.Status, error)
	Update(ctx context.Context, id string, patch tracker.StatusPatch) (*model.Status, error)
	Delete(ctx context.Context, id string) error
}

// StatusHandler はステータス管理のHTTPハンドラー。
type StatusHandler struct {
	errorHandler
	service StatusServiceInterface
}

// NewStatusHandler はStatusHandlerを生成する。
func NewStatusHandler(service StatusServiceInterface, rep reporter.Reporter) *StatusHandler {
	return &StatusHandler{errorHandler: newErrorHandler(rep), service: service}
}

type createStatusRequest struct {
	Name     string   `json:"name"`
	BoardIDs []string `json:"boardIds"`
}

// updateStatusRequest のboardIdは既存のboardIdsへの追加を意味する。
type updateStatusRequest struct {
	Name    *string `json:"name"`
	BoardID string  `json:"boardId"`
}

type statusResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	BoardIDs  []string  `json:"boardIds"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func toStatusResponse(s *model.Status) statusResponse {
	return statusResponse{
		ID:        s.ID,
		Name:      s.Name,
		BoardIDs:  nonNil(s.BoardIDs),
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
}

// List はステータス一覧を返す。クエリパラメータboardIdで絞り込める。
// GET /statuses
func (h *StatusHandler) List(w http.ResponseWriter, r *http.Request) {
	statuses, err := h.service.List(r.Context(), model.StatusFilter{
		BoardID: r.URL.Query().Get("boardId"),
	})
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	resp := make([]statusResponse, len(statuses))
	for i, s := range statuses {
		resp[i] = toStatusResponse(s)
	}
	writeJSON(w, http.StatusOK, resp)
}

// Get はステータスを1件返す。
// GET /statuses/{id}
func (h *StatusHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	s, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toStatusResponse(s))
}

// Create はステータスを作成する。
// POST /statuses/create
func (h *StatusHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createStatusRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	s, err := h.service.Create(r.Context(), tracker.StatusInput{
		Name:     req.Name,
		BoardIDs: req.BoardIDs,
	})
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toStatusResponse(s))
}

// Update はステータス名を更新し、boardIdをboardIdsに追加する。
// PUT /statuses/update/{id}
func (h *StatusHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	var req updateStatusRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	s, err := h.service.Update(r.Context(), id, tracker.StatusPatch{
		Name:    req.Name,
		BoardID: req.BoardID,
	})
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toStatusResponse(s))
}

// Delete はステータスを削除する。
// DELETE /statuses/delete/{id}
func (h *StatusHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	writeSuccess(w)
}
