// Package model はドメインモデルを定義する。
package model

import "time"

// DefaultUserName は表示名が未指定の場合に使用するプレースホルダー。
const DefaultUserName = "Anonymous"

// User は登録済みのユーザー（認証主体）を表す。
// PasswordHashはPassword Hasherの出力であり、生のパスワードは保持しない。
type User struct {
	ID           string
	Email        string
	Name         string
	PasswordHash string
	AvatarLink   string
	ProjectIDs   []string
	BoardIDs     []string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// RefreshToken は未使用のリフレッシュトークン1件を表す。
// TokenHashは不透明なトークン文字列のSHA-256ダイジェスト（hex）。
type RefreshToken struct {
	ID        string
	TokenHash string
	UserID    string
	CreatedAt time.Time
}

// TokenPair はログイン・リフレッシュ時に発行されるトークンの組。
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// Claims はアクセストークンの検証後に得られる認証情報。
type Claims struct {
	UserID    string
	ExpiresAt time.Time
}
