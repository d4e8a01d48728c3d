// Package token はアクセストークン(JWT)とリフレッシュトークンの発行・検証を提供する。
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/VladVes/2022-winter-practice/internal/model"
)

var (
	// ErrTokenExpired は署名は正しいが有効期限を過ぎたアクセストークンを表す。
	ErrTokenExpired = errors.New("access token expired")
	// ErrTokenInvalid は署名不一致・形式不正・未対応アルゴリズムのアクセストークンを表す。
	ErrTokenInvalid = errors.New("access token invalid")
)

// accessClaims はアクセストークンのペイロード。
// subとidの両方にユーザーIDを入れる。
type accessClaims struct {
	jwt.RegisteredClaims
	UserID string `json:"id"`
}

// Manager はHS256でアクセストークンを署名・検証する。
// 署名鍵はコンストラクタで受け取り、グローバル状態には置かない。
type Manager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// Option はManagerの設定を変更する。
type Option func(*Manager)

// WithClock は現在時刻の取得関数を差し替える。テスト用。
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// NewManager はManagerを生成する。
func NewManager(secret string, ttl time.Duration, opts ...Option) *Manager {
	m := &Manager{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// TTL はアクセストークンの有効期間を返す。
func (m *Manager) TTL() time.Duration {
	return m.ttl
}

// Issue はuserIDを主体とするアクセストークンを署名して返す。
// exp/iatは秒単位に切り捨てられるため、実際の有効期間はttlより最大1秒短い。
// 1秒未満のttlでは発行時点で期限切れになる。
func (m *Manager) Issue(userID string) (string, error) {
	if userID == "" {
		return "", errors.New("user id is required")
	}
	now := m.now()
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, accessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
		UserID: userID,
	})

	signed, err := t.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign access token: %w", err)
	}
	return signed, nil
}

// Parse はアクセストークンの署名と有効期限を検証し、クレームを返す。
// I/Oは行わない。期限切れはErrTokenExpired、それ以外の失敗はErrTokenInvalidでラップする。
func (m *Manager) Parse(tokenString string) (*model.Claims, error) {
	claims := &accessClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
			}
			return m.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if errors.Is(err, jwt.ErrTokenExpired) {
		return nil, fmt.Errorf("%w: %v", ErrTokenExpired, err)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}

	userID := claims.UserID
	if userID == "" {
		userID = claims.Subject
	}
	return &model.Claims{
		UserID:    userID,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}
