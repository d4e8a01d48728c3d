package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/VladVes/2022-winter-practice/internal/model"
)

// PostgresBoardRepo はPostgreSQLを使用したボードリポジトリ。
type PostgresBoardRepo struct {
	db *sql.DB
}

// NewPostgresBoardRepo はPostgresBoardRepoを生成する。
func NewPostgresBoardRepo(db *sql.DB) *PostgresBoardRepo {
	return &PostgresBoardRepo{db: db}
}

// FindByID は指定IDのボードを取得する。見つからない場合はnilを返す。
func (r *PostgresBoardRepo) FindByID(ctx context.Context, id string) (*model.Board, error) {
	b := &model.Board{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, project_id, color, created_at, updated_at FROM boards WHERE id = $1`,
		id,
	).Scan(&b.ID, &b.Name, &b.ProjectID, &b.Color, &b.CreatedAt, &b.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("ボードの取得に失敗しました: %w", err)
	}
	return b, nil
}

// List はボード一覧を返す。filter.ProjectIDが空でなければそのプロジェクトに絞り込む。
func (r *PostgresBoardRepo) List(ctx context.Context, filter model.BoardFilter) ([]*model.Board, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, project_id, color, created_at, updated_at
		 FROM boards
		 WHERE ($1 = '' OR project_id = NULLIF($1, '')::uuid)
		 ORDER BY created_at, id`,
		filter.ProjectID,
	)
	if err != nil {
		return nil, fmt.Errorf("ボード一覧の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	boards := []*model.Board{}
	for rows.Next() {
		b := &model.Board{}
		if err := rows.Scan(&b.ID, &b.Name, &b.ProjectID, &b.Color, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, fmt.Errorf("ボードのスキャンに失敗しました: %w", err)
		}
		boards = append(boards, b)
	}
	return boards, rows.Err()
}

// Create はボードを作成する。project_idが存在しない場合はErrInvalidReferenceを返す。
func (r *PostgresBoardRepo) Create(ctx context.Context, b *model.Board) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO boards (id, name, project_id, color, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		b.ID, b.Name, b.ProjectID, b.Color, b.CreatedAt, b.UpdatedAt,
	)
	if err != nil {
		return wrapError("ボードの作成に失敗しました", err)
	}
	return nil
}

// Update はボードを上書き更新する。
func (r *PostgresBoardRepo) Update(ctx context.Context, b *model.Board) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE boards SET name = $2, project_id = $3, color = $4, updated_at = $5 WHERE id = $1`,
		b.ID, b.Name, b.ProjectID, b.Color, b.UpdatedAt,
	)
	if err != nil {
		return wrapError("ボードの更新に失敗しました", err)
	}
	return checkAffected("ボードの更新に失敗しました", result)
}

// DeleteByID は指定IDのボードを削除する。
func (r *PostgresBoardRepo) DeleteByID(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM boards WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("ボードの削除に失敗しました: %w", err)
	}
	return checkAffected("ボードの削除に失敗しました", result)
}

var _ BoardRepository = (*PostgresBoardRepo)(nil)
