package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/VladVes/2022-winter-practice/internal/auth"
	"github.com/VladVes/2022-winter-practice/internal/model"
	"github.com/VladVes/2022-winter-practice/internal/reporter"
	"github.com/VladVes/2022-winter-practice/internal/user"
)

// UserServiceInterface はユーザーハンドラーが必要とするサービスインターフェース。
type UserServiceInterface interface {
	List(ctx context.Context) ([]*model.User, error)
	Get(ctx context.Context, id string) (*model.User, error)
	Create(ctx context.Context, in auth.SignupInput) (*model.User, error)
	Update(ctx context.Context, id string, in user.UpdateInput) (*model.User, error)
	// Delete はユーザーを削除し、そのユーザーの全リフレッシュトークンを失効させる。
	Delete(ctx context.Context, id string) error
}

// UserHandler はユーザー管理のHTTPハンドラー。
type UserHandler struct {
	errorHandler
	service UserServiceInterface
}

// NewUserHandler はUserHandlerを生成する。
func NewUserHandler(service UserServiceInterface, rep reporter.Reporter) *UserHandler {
	return &UserHandler{
		errorHandler: newErrorHandler(rep),
		service:      service,
	}
}

type updateUserRequest struct {
	Name       *string   `json:"name"`
	Email      *string   `json:"email"`
	AvatarLink *string   `json:"avatarLink"`
	ProjectIDs *[]string `json:"projectIds"`
	BoardIDs   *[]string `json:"boardIds"`
}

// userResponse はユーザー情報のAPIレスポンス。パスワードハッシュは含めない。
type userResponse struct {
	ID         string    `json:"id"`
	Email      string    `json:"email"`
	Name       string    `json:"name"`
	AvatarLink string    `json:"avatarLink"`
	ProjectIDs []string  `json:"projectIds"`
	BoardIDs   []string  `json:"boardIds"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

func toUserResponse(u *model.User) userResponse {
	return userResponse{
		ID:         u.ID,
		Email:      u.Email,
		Name:       u.Name,
		AvatarLink: u.AvatarLink,
		ProjectIDs: nonNil(u.ProjectIDs),
		BoardIDs:   nonNil(u.BoardIDs),
		CreatedAt:  u.CreatedAt,
		UpdatedAt:  u.UpdatedAt,
	}
}

// List はユーザー一覧を返す。
// GET /users
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.List(r.Context())
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	resp := make([]userResponse, len(users))
	for i, u := range users {
		resp[i] = toUserResponse(u)
	}
	writeJSON(w, http.StatusOK, resp)
}

// Get はユーザーを1件返す。
// GET /users/{id}
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	u, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserResponse(u))
}

// Create はサインアップと同じ規則でユーザーを作成する。
// POST /users/create
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	u, err := h.service.Create(r.Context(), req.input())
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toUserResponse(u))
}

// Update はユーザーを部分更新する。
// PUT /users/update/{id}
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	var req updateUserRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	u, err := h.service.Update(r.Context(), id, user.UpdateInput{
		Name:       req.Name,
		Email:      req.Email,
		AvatarLink: req.AvatarLink,
		ProjectIDs: req.ProjectIDs,
		BoardIDs:   req.BoardIDs,
	})
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserResponse(u))
}

// Delete はユーザーを削除する。
// DELETE /users/delete/{id}
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
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

// nonNil はJSONでnullではなく[]を返すためのヘルパー。
func nonNil(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}
