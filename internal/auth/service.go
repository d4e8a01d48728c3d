// Package auth はサインアップ、ログイン、トークンのリフレッシュ、ログアウトを提供する。
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/VladVes/2022-winter-practice/internal/metrics"
	"github.com/VladVes/2022-winter-practice/internal/model"
	"github.com/VladVes/2022-winter-practice/internal/repository"
	"github.com/VladVes/2022-winter-practice/internal/security"
	"github.com/VladVes/2022-winter-practice/internal/token"
	"github.com/VladVes/2022-winter-practice/internal/validation"
)

// UserStore はユーザーの検索・作成に必要なインターフェース。
// repository.UserRepositoryの部分集合として定義する。
type UserStore interface {
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	Create(ctx context.Context, user *model.User) error
}

// PasswordHasher はパスワードのハッシュ化と検証を行う。
type PasswordHasher interface {
	Hash(ctx context.Context, password string) (string, error)
	Verify(ctx context.Context, encoded, password string) (bool, error)
	VerifyDummy(ctx context.Context, password string) error
}

// TokenIssuer はユーザーIDに対してトークンの組を発行する。
type TokenIssuer interface {
	Issue(ctx context.Context, userID string) (*model.TokenPair, error)
}

// RefreshTokens はリフレッシュトークンの消費と一括失効を行う。
type RefreshTokens interface {
	Consume(ctx context.Context, raw string) (string, error)
	RevokeAll(ctx context.Context, userID string) (int64, error)
}

// SignupInput はサインアップ（ユーザー作成）の入力。
type SignupInput struct {
	Email      string
	Password   string
	Name       string
	AvatarLink string
	ProjectIDs []string
	BoardIDs   []string
}

// LoginResult はログイン成功時の結果。
type LoginResult struct {
	UserID string
	Tokens *model.TokenPair
}

// Service は認証に関するビジネスロジックを提供する。
type Service struct {
	users     UserStore
	hasher    PasswordHasher
	issuer    TokenIssuer
	refresh   RefreshTokens
	sanitizer security.TextSanitizer
	avatar    security.AvatarChecker
	metrics   metrics.MetricsCollector
	now       func() time.Time
}

// NewService はServiceを生成する。
func NewService(
	users UserStore,
	hasher PasswordHasher,
	issuer TokenIssuer,
	refresh RefreshTokens,
	sanitizer security.TextSanitizer,
	avatar security.AvatarChecker,
	collector metrics.MetricsCollector,
) *Service {
	if collector == nil {
		collector = metrics.Nop{}
	}
	return &Service{
		users:     users,
		hasher:    hasher,
		issuer:    issuer,
		refresh:   refresh,
		sanitizer: sanitizer,
		avatar:    avatar,
		metrics:   collector,
		now:       time.Now,
	}
}

// Signup はアカウントを作成する。トークンは発行しない。
func (s *Service) Signup(ctx context.Context, in SignupInput) error {
	user, err := s.Register(ctx, in)
	s.metrics.RecordAuth(metrics.OpSignup, outcomeOf(err))
	if err != nil {
		return err
	}
	slog.InfoContext(ctx, "user signed up", slog.String("user_id", user.ID))
	return nil
}

// Register は入力を検証してユーザーを作成し、作成したユーザーを返す。
// メールアドレスの事前重複チェックに加え、DBの一意制約違反もConflictとして扱う。
func (s *Service) Register(ctx context.Context, in SignupInput) (*model.User, error) {
	if err := validation.First(
		validation.Password(in.Password),
		validation.Required("email", in.Email),
		validation.MaxLength("email", in.Email, validation.MaxEmailLength),
		validation.MaxLength("name", in.Name, validation.MaxNameLength),
		validation.IDs("projectIds", in.ProjectIDs),
		validation.IDs("boardIds", in.BoardIDs),
	); err != nil {
		return nil, err
	}
	email, err := validation.NormalizeEmail(in.Email)
	if err != nil {
		return nil, err
	}

	name := s.sanitizer.SanitizeName(in.Name)
	if name == "" {
		name = model.DefaultUserName
	}

	if err := s.avatar.Check(ctx, in.AvatarLink); err != nil {
		if errors.Is(err, security.ErrInvalidAvatarLink) {
			return nil, model.NewValidationError(err.Error())
		}
		return nil, fmt.Errorf("failed to check avatar link: %w", err)
	}

	existing, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to find user by email: %w", err)
	}
	if existing != nil {
		return nil, model.NewConflictError("user already exists")
	}

	start := time.Now()
	hash, err := s.hasher.Hash(ctx, in.Password)
	s.metrics.RecordHashLatency("hash", time.Since(start))
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := s.now()
	user := &model.User{
		ID:           uuid.NewString(),
		Email:        email,
		Name:         name,
		PasswordHash: hash,
		AvatarLink:   in.AvatarLink,
		ProjectIDs:   in.ProjectIDs,
		BoardIDs:     in.BoardIDs,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, model.NewConflictError("user already exists")
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

// Login はメールアドレスとパスワードを検証し、トークンの組を発行する。
// ユーザー不在とパスワード不一致はどちらも同じForbiddenを返す。
func (s *Service) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	result, err := s.login(ctx, email, password)
	s.metrics.RecordAuth(metrics.OpLogin, outcomeOf(err))
	return result, err
}

func (s *Service) login(ctx context.Context, email, password string) (*LoginResult, error) {
	// 正規化できないアドレスはそのまま検索し、不在として扱う
	if normalized, err := validation.NormalizeEmail(email); err == nil {
		email = normalized
	}
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to find user by email: %w", err)
	}

	start := time.Now()
	if user == nil {
		// 応答時間からユーザーの存在が推測されないよう、不在時もハッシュ検証を行う
		err = s.hasher.VerifyDummy(ctx, password)
		s.metrics.RecordHashLatency("verify", time.Since(start))
		if err != nil {
			return nil, fmt.Errorf("failed to verify password: %w", err)
		}
		slog.InfoContext(ctx, "login rejected")
		return nil, model.NewForbiddenError()
	}

	ok, err := s.hasher.Verify(ctx, user.PasswordHash, password)
	s.metrics.RecordHashLatency("verify", time.Since(start))
	if err != nil {
		return nil, fmt.Errorf("failed to verify password: %w", err)
	}
	if !ok {
		slog.InfoContext(ctx, "login rejected")
		return nil, model.NewForbiddenError()
	}

	tokens, err := s.issuer.Issue(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to issue tokens: %w", err)
	}

	slog.InfoContext(ctx, "user logged in", slog.String("user_id", user.ID))
	return &LoginResult{UserID: user.ID, Tokens: tokens}, nil
}

// Refresh はリフレッシュトークンを消費し、新しいトークンの組を発行する。
// 提示されたトークンは有効・無効に関わらず再利用できない。
func (s *Service) Refresh(ctx context.Context, rawRefreshToken string) (*model.TokenPair, error) {
	tokens, err := s.rotate(ctx, rawRefreshToken)
	s.metrics.RecordAuth(metrics.OpRefresh, outcomeOf(err))
	return tokens, err
}

func (s *Service) rotate(ctx context.Context, rawRefreshToken string) (*model.TokenPair, error) {
	userID, err := s.refresh.Consume(ctx, rawRefreshToken)
	if errors.Is(err, token.ErrRefreshNotFound) {
		return nil, model.NewNotFoundError("refresh token not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to consume refresh token: %w", err)
	}

	tokens, err := s.issuer.Issue(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to issue tokens: %w", err)
	}
	return tokens, nil
}

// Logout はユーザーの全リフレッシュトークンを失効させる。
// 発行済みのアクセストークンは有効期限まで使える。
func (s *Service) Logout(ctx context.Context, userID string) error {
	err := s.logout(ctx, userID)
	s.metrics.RecordAuth(metrics.OpLogout, outcomeOf(err))
	return err
}

func (s *Service) logout(ctx context.Context, userID string) error {
	if userID == "" {
		return model.NewNotFoundError("user id not found in token")
	}

	revoked, err := s.refresh.RevokeAll(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to revoke refresh tokens: %w", err)
	}

	slog.InfoContext(ctx, "user logged out",
		slog.String("user_id", userID),
		slog.Int64("revoked_tokens", revoked),
	)
	return nil
}

// outcomeOf はエラーをメトリクスの結果ラベルに変換する。
func outcomeOf(err error) string {
	if err == nil {
		return metrics.OutcomeSuccess
	}
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		return metrics.OutcomeError
	}
	switch apiErr.Code {
	case model.ErrCodeValidation:
		return metrics.OutcomeValidation
	case model.ErrCodeConflict:
		return metrics.OutcomeConflict
	case model.ErrCodeForbidden:
		return metrics.OutcomeForbidden
	case model.ErrCodeNotFound:
		return metrics.OutcomeNotFound
	default:
		return metrics.OutcomeError
	}
}
