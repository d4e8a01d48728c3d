package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/VladVes/2022-winter-practice/internal/model"
)

// PostgresStatusRepo はPostgreSQLを使用したステータスリポジトリ。
type PostgresStatusRepo struct {
	db *sql.DB
}

// NewPostgresStatusRepo はPostgresStatusRepoを生成する。
func NewPostgresStatusRepo(db *sql.DB) *PostgresStatusRepo {
	return &PostgresStatusRepo{db: db}
}

func scanStatus(row rowScanner) (*model.Status, error) {
	s := &model.Status{}
	if err := row.Scan(&s.ID, &s.Name, pq.Array(&s.BoardIDs), &s.CreatedAt, &s.UpdatedAt); err != nil {
		return nil, err
	}
	return s, nil
}

// FindByID は指定IDのステータスを取得する。見つからない場合はnilを返す。
func (r *PostgresStatusRepo) FindByID(ctx context.Context, id string) (*model.Status, error) {
	s, err := scanStatus(r.db.QueryRowContext(ctx,
		`SELECT id, name, board_ids, created_at, updated_at FROM statuses WHERE id = $1`,
		id,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("ステータスの取得に失敗しました: %w", err)
	}
	return s, nil
}

// List はステータス一覧を返す。filter.BoardIDが空でなければそのボードを含むものに絞り込む。
func (r *PostgresStatusRepo) List(ctx context.Context, filter model.StatusFilter) ([]*model.Status, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, board_ids, created_at, updated_at
		 FROM statuses
		 WHERE ($1 = '' OR NULLIF($1, '')::uuid = ANY(board_ids))
		 ORDER BY created_at, id`,
		filter.BoardID,
	)
	if err != nil {
		return nil, fmt.Errorf("ステータス一覧の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	statuses := []*model.Status{}
	for rows.Next() {
		s, err := scanStatus(rows)
		if err != nil {
			return nil, fmt.Errorf("ステータスのスキャンに失敗しました: %w", err)
		}
		statuses = append(statuses, s)
	}
	return statuses, rows.Err()
}

// Create はステータスを作成する。
func (r *PostgresStatusRepo) Create(ctx context.Context, s *model.Status) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO statuses (id, name, board_ids, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		s.ID, s.Name, pq.Array(idList(s.BoardIDs)), s.CreatedAt, s.UpdatedAt,
	)
	if err != nil {
		return wrapError("ステータスの作成に失敗しました", err)
	}
	return nil
}

// Update はステータス名を更新し、boardIDを重複なくboard_idsの末尾に追加する。
// 追加は1文のUPDATEで行うため、同時更新でも同じIDが二重に入らない。
func (r *PostgresStatusRepo) Update(ctx context.Context, id, name, boardID string) (*model.Status, error) {
	s, err := scanStatus(r.db.QueryRowContext(ctx,
		`UPDATE statuses
		 SET name = $2,
		     board_ids = CASE
		         WHEN $3 = '' OR NULLIF($3, '')::uuid = ANY(board_ids) THEN board_ids
		         ELSE array_append(board_ids, NULLIF($3, '')::uuid)
		     END,
		     updated_at = now()
		 WHERE id = $1
		 RETURNING id, name, board_ids, created_at, updated_at`,
		id, name, boardID,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("ステータスの更新に失敗しました: %w", ErrNotFound)
	}
	if err != nil {
		return nil, wrapError("ステータスの更新に失敗しました", err)
	}
	return s, nil
}

// DeleteByID は指定IDのステータスを削除する。このステータスのタスクはCASCADE削除される。
func (r *PostgresStatusRepo) DeleteByID(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM statuses WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("ステータスの削除に失敗しました: %w", err)
	}
	return checkAffected("ステータスの削除に失敗しました", result)
}

var _ StatusRepository = (*PostgresStatusRepo)(nil)
