package token

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/VladVes/2022-winter-practice/internal/model"
	"github.com/VladVes/2022-winter-practice/internal/repository"
)

// ErrRefreshNotFound は提示されたリフレッシュトークンが存在しないか使用済みであることを表す。
var ErrRefreshNotFound = errors.New("refresh token not found")

// NewRefreshToken は不透明なリフレッシュトークン文字列と、その保存用ダイジェストを返す。
// トークンはUUIDv4(122bitの乱数)。
func NewRefreshToken() (raw string, hash string) {
	raw = uuid.NewString()
	return raw, HashRefreshToken(raw)
}

// HashRefreshToken はリフレッシュトークンのSHA-256ダイジェストをhexで返す。
func HashRefreshToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

// RefreshStore はリフレッシュトークンの作成・一回限りの消費・一括失効を行う。
type RefreshStore struct {
	repo repository.RefreshTokenRepository
	now  func() time.Time
}

// NewRefreshStore はRefreshStoreを生成する。
func NewRefreshStore(repo repository.RefreshTokenRepository) *RefreshStore {
	return &RefreshStore{repo: repo, now: time.Now}
}

// Create はuserIDに紐づく新しいリフレッシュトークンを保存し、生のトークン文字列を返す。
func (s *RefreshStore) Create(ctx context.Context, userID string) (string, error) {
	raw, hash := NewRefreshToken()
	err := s.repo.Create(ctx, &model.RefreshToken{
		ID:        uuid.NewString(),
		TokenHash: hash,
		UserID:    userID,
		CreatedAt: s.now(),
	})
	if err != nil {
		return "", fmt.Errorf("failed to store refresh token: %w", err)
	}
	return raw, nil
}

// Consume はトークンを削除して所有ユーザーIDを返す。
// 一致した時点でトークンは失効し、呼び出し側が再発行に失敗しても戻らない。
func (s *RefreshStore) Consume(ctx context.Context, raw string) (string, error) {
	if raw == "" {
		return "", ErrRefreshNotFound
	}
	userID, err := s.repo.Consume(ctx, HashRefreshToken(raw))
	if errors.Is(err, repository.ErrNotFound) {
		return "", ErrRefreshNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to consume refresh token: %w", err)
	}
	return userID, nil
}

// RevokeAll はuserIDの全リフレッシュトークンを削除する。対象が0件でもエラーにしない。
func (s *RefreshStore) RevokeAll(ctx context.Context, userID string) (int64, error) {
	n, err := s.repo.DeleteByUserID(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to revoke refresh tokens: %w", err)
	}
	return n, nil
}
