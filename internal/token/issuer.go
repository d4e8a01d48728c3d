package token

import (
	"context"

	"github.com/VladVes/2022-winter-practice/internal/model"
)

// Issuer はアクセストークンとリフレッシュトークンの組を発行する。
type Issuer struct {
	access  *Manager
	refresh *RefreshStore
}

// NewIssuer はIssuerを生成する。
func NewIssuer(access *Manager, refresh *RefreshStore) *Issuer {
	return &Issuer{access: access, refresh: refresh}
}

// Issue はuserIDに対してトークンの組を発行する。
// 署名に成功した後にリフレッシュトークンを保存し、保存に失敗した場合はトークンを返さない。
func (i *Issuer) Issue(ctx context.Context, userID string) (*model.TokenPair, error) {
	access, err := i.access.Issue(userID)
	if err != nil {
		return nil, err
	}
	refresh, err := i.refresh.Create(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &model.TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}
