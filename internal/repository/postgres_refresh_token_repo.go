package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/VladVes/2022-winter-practice/internal/model"
)

// PostgresRefreshTokenRepo はPostgreSQLを使用したリフレッシュトークンリポジトリ。
type PostgresRefreshTokenRepo struct {
	db *sql.DB
}

// NewPostgresRefreshTokenRepo はPostgresRefreshTokenRepoを生成する。
func NewPostgresRefreshTokenRepo(db *sql.DB) *PostgresRefreshTokenRepo {
	return &PostgresRefreshTokenRepo{db: db}
}

// Create はリフレッシュトークンを保存する。
func (r *PostgresRefreshTokenRepo) Create(ctx context.Context, token *model.RefreshToken) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO refresh_tokens (id, token_hash, user_id, created_at)
		 VALUES ($1, $2, $3, $4)`,
		token.ID, token.TokenHash, token.UserID, token.CreatedAt,
	)
	if err != nil {
		return wrapError("failed to create refresh token", err)
	}
	return nil
}

// Consume はtokenHashに一致するレコードを削除して所有ユーザーIDを返す。
// 検索と削除を単一のDELETE ... RETURNINGで行うため、
// 同じトークンを同時に消費しても行を受け取れるのは1トランザクションだけである。
func (r *PostgresRefreshTokenRepo) Consume(ctx context.Context, tokenHash string) (string, error) {
	var userID string
	err := r.db.QueryRowContext(ctx,
		`DELETE FROM refresh_tokens WHERE token_hash = $1 RETURNING user_id`,
		tokenHash,
	).Scan(&userID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to consume refresh token: %w", err)
	}
	return userID, nil
}

// DeleteByUserID は指定ユーザーの全リフレッシュトークンを削除する。
func (r *PostgresRefreshTokenRepo) DeleteByUserID(ctx context.Context, userID string) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM refresh_tokens WHERE user_id = $1`,
		userID,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to delete user refresh tokens: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return n, nil
}

// DeleteOrphaned は所有ユーザーが削除済みのトークンを削除する。
func (r *PostgresRefreshTokenRepo) DeleteOrphaned(ctx context.Context) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM refresh_tokens rt
		 WHERE NOT EXISTS (SELECT 1 FROM users u WHERE u.id = rt.user_id)`,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to delete orphaned refresh tokens: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return n, nil
}

// compile-time interface check
var _ RefreshTokenRepository = (*PostgresRefreshTokenRepo)(nil)
