package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/VladVes/2022-winter-practice/internal/model"
)

const taskColumns = `id, name, description, creator, assigned_to, board_id, status_id, created_at, updated_at`

// PostgresTaskRepo はPostgreSQLを使用したタスクリポジトリ。
type PostgresTaskRepo struct {
	db *sql.DB
}

// NewPostgresTaskRepo はPostgresTaskRepoを生成する。
func NewPostgresTaskRepo(db *sql.DB) *PostgresTaskRepo {
	return &PostgresTaskRepo{db: db}
}

func scanTask(row rowScanner) (*model.Task, error) {
	t := &model.Task{}
	var assignedTo sql.NullString
	err := row.Scan(&t.ID, &t.Name, &t.Description, &t.Creator, &assignedTo,
		&t.BoardID, &t.StatusID, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	t.AssignedTo = assignedTo.String
	return t, nil
}

// nullableID は空文字列をNULLとして渡す。
func nullableID(id string) sql.NullString {
	return sql.NullString{String: id, Valid: id != ""}
}

// FindByID は指定IDのタスクを取得する。見つからない場合はnilを返す。
func (r *PostgresTaskRepo) FindByID(ctx context.Context, id string) (*model.Task, error) {
	t, err := scanTask(r.db.QueryRowContext(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE id = $1`,
		id,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("タスクの取得に失敗しました: %w", err)
	}
	return t, nil
}

// List はfilterの空でない項目をAND条件としてタスク一覧を返す。
func (r *PostgresTaskRepo) List(ctx context.Context, filter model.TaskFilter) ([]*model.Task, error) {
	var (
		conds []string
		args  []any
	)
	for _, f := range []struct {
		column string
		value  string
	}{
		{"board_id", filter.BoardID},
		{"status_id", filter.StatusID},
		{"assigned_to", filter.AssignedTo},
		{"creator", filter.Creator},
	} {
		if f.value == "" {
			continue
		}
		args = append(args, f.value)
		conds = append(conds, fmt.Sprintf("%s = $%d", f.column, len(args)))
	}

	query := `SELECT ` + taskColumns + ` FROM tasks`
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, ` AND `)
	}
	query += ` ORDER BY created_at, id`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("タスク一覧の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	tasks := []*model.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("タスクのスキャンに失敗しました: %w", err)
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// Create はタスクを作成する。参照先が存在しない場合はErrInvalidReferenceを返す。
func (r *PostgresTaskRepo) Create(ctx context.Context, t *model.Task) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO tasks (`+taskColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		t.ID, t.Name, t.Description, t.Creator, nullableID(t.AssignedTo),
		t.BoardID, t.StatusID, t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		return wrapError("タスクの作成に失敗しました", err)
	}
	return nil
}

// Update はタスクを上書き更新する。creatorとcreated_atは変更しない。
func (r *PostgresTaskRepo) Update(ctx context.Context, t *model.Task) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE tasks
		 SET name = $2, description = $3, assigned_to = $4, board_id = $5, status_id = $6, updated_at = $7
		 WHERE id = $1`,
		t.ID, t.Name, t.Description, nullableID(t.AssignedTo), t.BoardID, t.StatusID, t.UpdatedAt,
	)
	if err != nil {
		return wrapError("タスクの更新に失敗しました", err)
	}
	return checkAffected("タスクの更新に失敗しました", result)
}

// DeleteByID は指定IDのタスクを削除する。
func (r *PostgresTaskRepo) DeleteByID(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("タスクの削除に失敗しました: %w", err)
	}
	return checkAffected("タスクの削除に失敗しました", result)
}

// DeleteByCreator は指定ユーザーが作成した全タスクを削除する。
func (r *PostgresTaskRepo) DeleteByCreator(ctx context.Context, creator string) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE creator = $1`, creator)
	if err != nil {
		return 0, fmt.Errorf("タスクの一括削除に失敗しました: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return n, nil
}

var _ TaskRepository = (*PostgresTaskRepo)(nil)
