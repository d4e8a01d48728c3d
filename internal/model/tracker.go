package model

import "time"

// Project はボードをまとめるプロジェクトを表す。
type Project struct {
	ID          string
	Name        string
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Board はプロジェクトに属するタスクボードを表す。
type Board struct {
	ID        string
	Name      string
	ProjectID string
	Color     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Status はボード上のタスクの状態（列）を表す。
// 同じステータスを複数のボードで共有できる。
type Status struct {
	ID        string
	Name      string
	BoardIDs  []string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Task はボード上のタスクを表す。
type Task struct {
	ID          string
	Name        string
	Description string
	Creator     string
	AssignedTo  string
	BoardID     string
	StatusID    string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ElapsedTime は作成からの経過時間を返す。
func (t *Task) ElapsedTime(now time.Time) time.Duration {
	return now.Sub(t.CreatedAt)
}

// BoardFilter はボード一覧の絞り込み条件。空文字列の項目は条件に含めない。
type BoardFilter struct {
	ProjectID string
}

// StatusFilter はステータス一覧の絞り込み条件。
type StatusFilter struct {
	BoardID string
}

// TaskFilter はタスク一覧の絞り込み条件。
type TaskFilter struct {
	BoardID    string
	StatusID   string
	AssignedTo string
	Creator    string
}
