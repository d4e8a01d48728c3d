package handler

import (
	"context"
	"net/http"

	"github.com/VladVes/2022-winter-practice/internal/auth"
	"github.com/VladVes/2022-winter-practice/internal/middleware"
	"github.com/VladVes/2022-winter-practice/internal/model"
	"github.com/VladVes/2022-winter-practice/internal/reporter"
	"github.com/VladVes/2022-winter-practice/internal/validation"
)

// AuthServiceInterface は認証ハンドラーが必要とするサービスインターフェース。
type AuthServiceInterface interface {
	Signup(ctx context.Context, in auth.SignupInput) error
	Login(ctx context.Context, email, password string) (*auth.LoginResult, error)
	Refresh(ctx context.Context, rawRefreshToken string) (*model.TokenPair, error)
	Logout(ctx context.Context, userID string) error
}

// AuthHandler は認証関連のHTTPハンドラー。
type AuthHandler struct {
	errorHandler
	service AuthServiceInterface
}

// NewAuthHandler はAuthHandlerを生成する。
func NewAuthHandler(service AuthServiceInterface, rep reporter.Reporter) *AuthHandler {
	return &AuthHandler{
		errorHandler: newErrorHandler(rep),
		service:      service,
	}
}

// signupRequest はサインアップリクエストのボディ。
type signupRequest struct {
	Email      string   `json:"email"`
	Password   string   `json:"password"`
	Name       string   `json:"name"`
	AvatarLink string   `json:"avatarLink"`
	ProjectIDs []string `json:"projectIds"`
	BoardIDs   []string `json:"boardIds"`
}

func (req signupRequest) input() auth.SignupInput {
	return auth.SignupInput{
		Email:      req.Email,
		Password:   req.Password,
		Name:       req.Name,
		AvatarLink: req.AvatarLink,
		ProjectIDs: req.ProjectIDs,
		BoardIDs:   req.BoardIDs,
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	UserID       string `json:"userId"`
	Token        string `json:"token"`
	RefreshToken string `json:"refreshToken"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type tokenPairResponse struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refreshToken"`
}

// Signup はユーザーを登録する。トークンは発行しない。
// POST /auth/signup
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	if err := h.service.Signup(r.Context(), req.input()); err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	writeSuccess(w)
}

// Login は認証情報を検証し、トークンの組を発行する。
// POST /auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	if err := validation.First(
		validation.Required("email", req.Email),
		validation.Required("password", req.Password),
	); err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	result, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{
		UserID:       result.UserID,
		Token:        result.Tokens.AccessToken,
		RefreshToken: result.Tokens.RefreshToken,
	})
}

// Refresh はリフレッシュトークンを消費し、新しいトークンの組を発行する。
// POST /auth/refresh
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	if err := validation.Required("refreshToken", req.RefreshToken); err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	pair, err := h.service.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, tokenPairResponse{
		Token:        pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	})
}

// Logout は認証済みユーザーの全リフレッシュトークンを失効させる。
// 提示したアクセストークン自体は期限まで有効なままとなる。
// POST /auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	// ユーザーIDが取れない場合は空文字列のままサービスに渡し、NOT_FOUNDとする
	userID, _ := middleware.UserIDFromContext(r.Context())

	if err := h.service.Logout(r.Context(), userID); err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	writeSuccess(w)
}
