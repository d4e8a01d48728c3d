// Package repository はデータ永続化のインターフェースとPostgreSQL実装を提供する。
package repository

import (
	"context"

	"github.com/VladVes/2022-winter-practice/internal/model"
)

// UserRepository はユーザーデータの永続化インターフェース。
type UserRepository interface {
	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.User, error)

	// FindByEmail はメールアドレスでユーザーを検索する。見つからない場合はnilを返す。
	FindByEmail(ctx context.Context, email string) (*model.User, error)

	// List は全ユーザーを作成日時順に返す。
	List(ctx context.Context) ([]*model.User, error)

	// Create はユーザーを作成する。
	// emailが既に使われている場合はErrDuplicateを返す。
	Create(ctx context.Context, user *model.User) error

	// Update はユーザーのプロフィールを上書き更新する。password_hashは変更しない。
	// 対象が存在しない場合はErrNotFound、email重複の場合はErrDuplicateを返す。
	Update(ctx context.Context, user *model.User) error

	// DeleteByID は指定IDのユーザーを削除する。存在しない場合はErrNotFoundを返す。
	DeleteByID(ctx context.Context, id string) error
}

// RefreshTokenRepository はリフレッシュトークンの永続化インターフェース。
// トークン文字列そのものは保存せず、SHA-256ダイジェストで扱う。
type RefreshTokenRepository interface {
	// Create はリフレッシュトークンを保存する。
	Create(ctx context.Context, token *model.RefreshToken) error

	// Consume はtokenHashに一致するレコードを1文で削除し、所有ユーザーIDを返す。
	// 一致するレコードがない場合はErrNotFoundを返す。
	// 同一トークンへの同時呼び出しのうち成功するのは1つだけである。
	Consume(ctx context.Context, tokenHash string) (string, error)

	// DeleteByUserID は指定ユーザーの全リフレッシュトークンを削除し、削除件数を返す。
	// 0件でもエラーにしない。
	DeleteByUserID(ctx context.Context, userID string) (int64, error)

	// DeleteOrphaned は所有ユーザーが存在しないトークンを削除し、削除件数を返す。
	DeleteOrphaned(ctx context.Context) (int64, error)
}

// ProjectRepository はプロジェクトの永続化インターフェース。
type ProjectRepository interface {
	FindByID(ctx context.Context, id string) (*model.Project, error)
	List(ctx context.Context) ([]*model.Project, error)
	Create(ctx context.Context, project *model.Project) error
	Update(ctx context.Context, project *model.Project) error
	DeleteByID(ctx context.Context, id string) error
}

// BoardRepository はボードの永続化インターフェース。
// project_idが存在しないプロジェクトを指す場合はErrInvalidReferenceを返す。
type BoardRepository interface {
	FindByID(ctx context.Context, id string) (*model.Board, error)
	List(ctx context.Context, filter model.BoardFilter) ([]*model.Board, error)
	Create(ctx context.Context, board *model.Board) error
	Update(ctx context.Context, board *model.Board) error
	DeleteByID(ctx context.Context, id string) error
}

// StatusRepository はステータスの永続化インターフェース。
type StatusRepository interface {
	FindByID(ctx context.Context, id string) (*model.Status, error)
	List(ctx context.Context, filter model.StatusFilter) ([]*model.Status, error)
	Create(ctx context.Context, status *model.Status) error

	// Update はステータス名を更新し、boardIDが空でなく未登録であればboard_idsに追加する。
	// 更新後のステータスを返す。対象が存在しない場合はErrNotFoundを返す。
	Update(ctx context.Context, id, name, boardID string) (*model.Status, error)

	DeleteByID(ctx context.Context, id string) error
}

// TaskRepository はタスクの永続化インターフェース。
type TaskRepository interface {
	FindByID(ctx context.Context, id string) (*model.Task, error)
	List(ctx context.Context, filter model.TaskFilter) ([]*model.Task, error)
	Create(ctx context.Context, task *model.Task) error
	Update(ctx context.Context, task *model.Task) error
	DeleteByID(ctx context.Context, id string) error

	// DeleteByCreator は指定ユーザーが作成した全タスクを削除し、削除件数を返す。
	DeleteByCreator(ctx context.Context, creator string) (int64, error)
}
