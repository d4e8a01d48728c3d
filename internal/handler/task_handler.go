package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/VladVes/2022-winter-practice/internal/middleware"
	"github.com/VladVes/2022-winter-practice/internal/model"
	"github.com/VladVes/2022-winter-practice/internal/reporter"
	"github.com/VladVes/2022-winter-practice/internal/tracker"
)

// TaskServiceInterface はタスクハンドラーが必要とするサービスインターフェース。
type TaskServiceInterface interface {
	// Now は経過時間の計算に使う現在時刻を返す。
	Now() time.Time
	List(ctx context.Context, filter model.TaskFilter) ([]*model.Task, error)
	Get(ctx context.Context, id string) (*model.Task, error)
	Create(ctx context.Context, creator string, in tracker.TaskInput) (*model.Task, error)
	Update(ctx context.Context, id string, patch tracker.TaskPatch) (*model.Task, error)
	Delete(ctx context.Context, id string) error
	DeleteByCreator(ctx context.Context, creator string) (int64, error)
}

// TaskHandler はタスク管理のHTTPハンドラー。
type TaskHandler struct {
	errorHandler
	service TaskServiceInterface
}

// NewTaskHandler はTaskHandlerを生成する。
func NewTaskHandler(service TaskServiceInterface, rep reporter.Reporter) *TaskHandler {
	return &TaskHandler{errorHandler: newErrorHandler(rep), service: service}
}

type createTaskRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	AssignedTo  string `json:"assignedTo"`
	BoardID     string `json:"boardId"`
	StatusID    string `json:"statusId"`
}

type updateTaskRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	AssignedTo  *string `json:"assignedTo"`
	BoardID     *string `json:"boardId"`
	StatusID    *string `json:"statusId"`
}

// taskResponse はタスクのAPIレスポンス。ElapsedTimeは作成からのミリ秒。
type taskResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Creator     string    `json:"creator"`
	AssignedTo  string    `json:"assignedTo"`
	BoardID     string    `json:"boardId"`
	StatusID    string    `json:"statusId"`
	ElapsedTime int64     `json:"elapsedTime"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type deleteTasksResponse struct {
	Success bool  `json:"success"`
	Deleted int64 `json:"deleted"`
}

func toTaskResponse(t *model.Task, now time.Time) taskResponse {
	return taskResponse{
		ID:          t.ID,
		Name:        t.Name,
		Description: t.Description,
		Creator:     t.Creator,
		AssignedTo:  t.AssignedTo,
		BoardID:     t.BoardID,
		StatusID:    t.StatusID,
		ElapsedTime: t.ElapsedTime(now).Milliseconds(),
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

// List はタスク一覧を返す。
// クエリパラメータboardId, statusId, assignedTo, creatorで絞り込める。
// GET /tasks
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	tasks, err := h.service.List(r.Context(), model.TaskFilter{
		BoardID:    q.Get("boardId"),
		StatusID:   q.Get("statusId"),
		AssignedTo: q.Get("assignedTo"),
		Creator:    q.Get("creator"),
	})
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	now := h.service.Now()
	resp := make([]taskResponse, len(tasks))
	for i, t := range tasks {
		resp[i] = toTaskResponse(t, now)
	}
	writeJSON(w, http.StatusOK, resp)
}

// Get はタスクを1件返す。
// GET /tasks/{id}
func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	t, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toTaskResponse(t, h.service.Now()))
}

// Create は認証済みユーザーを作成者としてタスクを作成する。
// POST /tasks/create
func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	creator, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		middleware.WriteAPIError(w, model.NewUnauthorizedError())
		return
	}

	var req createTaskRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	t, err := h.service.Create(r.Context(), creator, tracker.TaskInput{
		Name:        req.Name,
		Description: req.Description,
		AssignedTo:  req.AssignedTo,
		BoardID:     req.BoardID,
		StatusID:    req.StatusID,
	})
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toTaskResponse(t, h.service.Now()))
}

// Update はタスクを部分更新する。
// PUT /tasks/update/{id}
func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	var req updateTaskRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	t, err := h.service.Update(r.Context(), id, tracker.TaskPatch{
		Name:        req.Name,
		Description: req.Description,
		AssignedTo:  req.AssignedTo,
		BoardID:     req.BoardID,
		StatusID:    req.StatusID,
	})
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toTaskResponse(t, h.service.Now()))
}

// Delete はタスクを削除する。
// DELETE /tasks/delete/{id}
func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
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

// DeleteMine は認証済みユーザーが作成した全タスクを削除する。
// DELETE /tasks/delete
func (h *TaskHandler) DeleteMine(w http.ResponseWriter, r *http.Request) {
	creator, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		middleware.WriteAPIError(w, model.NewUnauthorizedError())
		return
	}

	n, err := h.service.DeleteByCreator(r.Context(), creator)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, deleteTasksResponse{Success: true, Deleted: n})
}
