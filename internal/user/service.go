// Package user はユーザー管理のドメインロジックを提供する。
package user

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/VladVes/2022-winter-practice/internal/auth"
	"github.com/VladVes/2022-winter-practice/internal/model"
	"github.com/VladVes/2022-winter-practice/internal/repository"
	"github.com/VladVes/2022-winter-practice/internal/security"
	"github.com/VladVes/2022-winter-practice/internal/validation"
)

// Registrar はサインアップと同じ規則でユーザーを作成する。auth.Serviceが実装する。
type Registrar interface {
	Register(ctx context.Context, in auth.SignupInput) (*model.User, error)
}

// RefreshRevoker はユーザーの全リフレッシュトークンを失効させる。
type RefreshRevoker interface {
	RevokeAll(ctx context.Context, userID string) (int64, error)
}

// UpdateInput はユーザーの部分更新の入力。パスワードは変更できない。
type UpdateInput struct {
	Name       *string
	Email      *string
	AvatarLink *string
	ProjectIDs *[]string
	BoardIDs   *[]string
}

// Service はユーザー管理のサービス層。
type Service struct {
	userRepo  repository.UserRepository
	registrar Registrar
	revoker   RefreshRevoker
	sanitizer security.TextSanitizer
	avatar    security.AvatarChecker
	now       func() time.Time
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(
	userRepo repository.UserRepository,
	registrar Registrar,
	revoker RefreshRevoker,
	sanitizer security.TextSanitizer,
	avatar security.AvatarChecker,
) *Service {
	return &Service{
		userRepo:  userRepo,
		registrar: registrar,
		revoker:   revoker,
		sanitizer: sanitizer,
		avatar:    avatar,
		now:       time.Now,
	}
}

// List は全ユーザーを返す。
func (s *Service) List(ctx context.Context) ([]*model.User, error) {
	users, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("ユーザー一覧の取得に失敗しました: %w", err)
	}
	return users, nil
}

// Get はIDでユーザーを取得する。
func (s *Service) Get(ctx context.Context, id string) (*model.User, error) {
	u, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("ユーザーの取得に失敗しました: %w", err)
	}
	if u == nil {
		return nil, model.NewNotFoundError("user not found")
	}
	return u, nil
}

// Create はサインアップと同じ検証・重複チェックでユーザーを作成する。
func (s *Service) Create(ctx context.Context, in auth.SignupInput) (*model.User, error) {
	return s.registrar.Register(ctx, in)
}

// Update はユーザーを部分更新する。
// メールアドレスを変更する場合は他のユーザーとの重複を検査する。
func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (*model.User, error) {
	if err := s.validateUpdate(in); err != nil {
		return nil, err
	}

	u, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Email != nil {
		email, err := validation.NormalizeEmail(*in.Email)
		if err != nil {
			return nil, err
		}
		if email != u.Email {
			other, err := s.userRepo.FindByEmail(ctx, email)
			if err != nil {
				return nil, fmt.Errorf("ユーザーの取得に失敗しました: %w", err)
			}
			if other != nil && other.ID != u.ID {
				return nil, model.NewConflictError("user already exists")
			}
			u.Email = email
		}
	}
	if in.Name != nil {
		u.Name = s.sanitizer.SanitizeName(*in.Name)
		if u.Name == "" {
			u.Name = model.DefaultUserName
		}
	}
	if in.AvatarLink != nil {
		if err := s.avatar.Check(ctx, *in.AvatarLink); err != nil {
			if errors.Is(err, security.ErrInvalidAvatarLink) {
				return nil, model.NewValidationError(err.Error())
			}
			return nil, fmt.Errorf("アバターURLの検証に失敗しました: %w", err)
		}
		u.AvatarLink = *in.AvatarLink
	}
	if in.ProjectIDs != nil {
		u.ProjectIDs = *in.ProjectIDs
	}
	if in.BoardIDs != nil {
		u.BoardIDs = *in.BoardIDs
	}
	u.UpdatedAt = s.now()

	if err := s.userRepo.Update(ctx, u); err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicate):
			return nil, model.NewConflictError("user already exists")
		case errors.Is(err, repository.ErrNotFound):
			return nil, model.NewNotFoundError("user not found")
		}
		return nil, fmt.Errorf("ユーザーの更新に失敗しました: %w", err)
	}
	return u, nil
}

func (s *Service) validateUpdate(in UpdateInput) error {
	errs := []error{}
	if in.Email != nil {
		errs = append(errs,
			validation.Required("email", *in.Email),
			validation.MaxLength("email", *in.Email, validation.MaxEmailLength))
	}
	if in.Name != nil {
		errs = append(errs, validation.MaxLength("name", *in.Name, validation.MaxNameLength))
	}
	if in.ProjectIDs != nil {
		errs = append(errs, validation.IDs("projectIds", *in.ProjectIDs))
	}
	if in.BoardIDs != nil {
		errs = append(errs, validation.IDs("boardIds", *in.BoardIDs))
	}
	return validation.First(errs...)
}

// Delete はユーザーを削除し、そのユーザーのリフレッシュトークンを全て失効させる。
// 作成したタスクはDBのCASCADEで削除され、担当タスクの担当者は空になる。
// 失効に失敗したトークンはクリーンアップワーカーが後で削除する。
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.userRepo.DeleteByID(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.NewNotFoundError("user not found")
		}
		return fmt.Errorf("ユーザーの削除に失敗しました: %w", err)
	}

	revoked, err := s.revoker.RevokeAll(ctx, id)
	if err != nil {
		slog.WarnContext(ctx, "リフレッシュトークンの失効に失敗しました",
			slog.String("user_id", id),
			slog.String("error", err.Error()),
		)
	}

	slog.InfoContext(ctx, "ユーザーを削除しました",
		slog.String("user_id", id),
		slog.Int64("revoked_tokens", revoked),
	)
	return nil
}
