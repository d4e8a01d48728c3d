package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/VladVes/2022-winter-practice/internal/model"
	"github.com/VladVes/2022-winter-practice/internal/reporter"
	"github.com/VladVes/2022-winter-practice/internal/tracker"
)

// BoardServiceInterface はボードハンドラーが必要とするサービスインターフェース。
type BoardServiceInterface interface {
	List(ctx context.Context, filter model.BoardFilter) ([]*model.Board, error)
	Get(ctx context.Context, id string) (*model.Board, error)
	Create(ctx context.Context, in tracker.BoardInput) (*model.Board, error)
	Update(ctx context.Context, id string, patch tracker.BoardPatch) (*model.Board, error)
	Delete(ctx context.Context, id string) error
}

// BoardHandler はボード管理のHTTPハンドラー。
type BoardHandler struct {
	errorHandler
	service BoardServiceInterface
}

// NewBoardHandler はBoardHandlerを生成する。
func NewBoardHandler(service BoardServiceInterface, rep reporter.Reporter) *BoardHandler {
	return &BoardHandler{errorHandler: newErrorHandler(rep), service: service}
}

type createBoardRequest struct {
	Name      string `json:"name"`
	ProjectID string `json:"projectId"`
	Color     string `json:"color"`
}

type updateBoardRequest struct {
	Name      *string `json:"name"`
	ProjectID *string `json:"projectId"`
	Color     *string `json:"color"`
}

type boardResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	ProjectID string    `json:"projectId"`
	Color     string    `json:"color"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func toBoardResponse(b *model.Board) boardResponse {
	return boardResponse{
		ID:        b.ID,
		Name:      b.Name,
		ProjectID: b.ProjectID,
		Color:     b.Color,
		CreatedAt: b.CreatedAt,
		UpdatedAt: b.UpdatedAt,
	}
}

// List はボード一覧を返す。クエリパラメータprojectIdで絞り込める。
// GET /boards
func (h *BoardHandler) List(w http.ResponseWriter, r *http.Request) {
	boards, err := h.service.List(r.Context(), model.BoardFilter{
		ProjectID: r.URL.Query().Get("projectId"),
	})
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	resp := make([]boardResponse, len(boards))
	for i, b := range boards {
		resp[i] = toBoardResponse(b)
	}
	writeJSON(w, http.StatusOK, resp)
}

// Get はボードを1件返す。
// GET /boards/{id}
func (h *BoardHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	b, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toBoardResponse(b))
}

// Create はボードを作成する。
// POST /boards/create
func (h *BoardHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createBoardRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	b, err := h.service.Create(r.Context(), tracker.BoardInput{
		Name:      req.Name,
		ProjectID: req.ProjectID,
		Color:     req.Color,
	})
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toBoardResponse(b))
}

// Update はボードを部分更新する。
// PUT /boards/update/{id}
func (h *BoardHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	var req updateBoardRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	b, err := h.service.Update(r.Context(), id, tracker.BoardPatch{
		Name:      req.Name,
		ProjectID: req.ProjectID,
		Color:     req.Color,
	})
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toBoardResponse(b))
}

// Delete はボードを削除する。
// DELETE /boards/delete/{id}
func (h *BoardHandler) Delete(w http.ResponseWriter, r *http.Request) {
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
