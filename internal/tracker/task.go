package tracker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/VladVes/2022-winter-practice/internal/model"
	"github.com/VladVes/2022-winter-practice/internal/repository"
	"github.com/VladVes/2022-winter-practice/internal/security"
	"github.com/VladVes/2022-winter-practice/internal/validation"
)

// TaskInput はタスク作成の入力。作成者は認証済みユーザーで、入力からは受け取らない。
type TaskInput struct {
	Name        string
	Description string
	AssignedTo  string
	BoardID     string
	StatusID    string
}

// TaskPatch はタスクの部分更新の入力。作成者は変更できない。
type TaskPatch struct {
	Name        *string
	Description *string
	AssignedTo  *string
	BoardID     *string
	StatusID    *string
}

// TaskService はタスクのCRUDを提供する。
type TaskService struct {
	repo  repository.TaskRepository
	texts texts
	now   clock
}

// NewTaskService はTaskServiceを生成する。
func NewTaskService(repo repository.TaskRepository, sanitizer security.TextSanitizer) *TaskService {
	return &TaskService{repo: repo, texts: texts{sanitizer}, now: time.Now}
}

// Now は経過時間の算出に使う現在時刻を返す。
func (s *TaskService) Now() time.Time {
	return s.now()
}

// List は条件に一致するタスクを作成順に返す。
func (s *TaskService) List(ctx context.Context, filter model.TaskFilter) ([]*model.Task, error) {
	if err := validation.First(
		validation.ID("boardId", filter.BoardID),
		validation.ID("statusId", filter.StatusID),
		validation.ID("assignedTo", filter.AssignedTo),
		validation.ID("creator", filter.Creator),
	); err != nil {
		return nil, err
	}
	tasks, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, translate("タスク一覧の取得に失敗しました", "task", err)
	}
	return tasks, nil
}

// Get はIDでタスクを取得する。
func (s *TaskService) Get(ctx context.Context, id string) (*model.Task, error) {
	t, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, translate("タスクの取得に失敗しました", "task", err)
	}
	if t == nil {
		return nil, notFound("task")
	}
	return t, nil
}

// Create はcreatorを作成者としてタスクを作成する。
func (s *TaskService) Create(ctx context.Context, creator string, in TaskInput) (*model.Task, error) {
	name, err := s.texts.name(in.Name)
	if err != nil {
		return nil, err
	}
	desc, err := s.texts.description(in.Description)
	if err != nil {
		return nil, err
	}
	if err := validation.First(
		requiredID("assignedTo", in.AssignedTo),
		requiredID("boardId", in.BoardID),
		requiredID("statusId", in.StatusID),
	); err != nil {
		return nil, err
	}

	now := s.now()
	t := &model.Task{
		ID:          uuid.NewString(),
		Name:        name,
		Description: desc,
		Creator:     creator,
		AssignedTo:  in.AssignedTo,
		BoardID:     in.BoardID,
		StatusID:    in.StatusID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Create(ctx, t); err != nil {
		return nil, translate("タスクの作成に失敗しました", "task", err)
	}

	slog.InfoContext(ctx, "task created",
		slog.String("task_id", t.ID),
		slog.String("board_id", t.BoardID),
	)
	return t, nil
}

// Update はタスクを部分更新する。
func (s *TaskService) Update(ctx context.Context, id string, patch TaskPatch) (*model.Task, error) {
	t, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if patch.Name != nil {
		if t.Name, err = s.texts.name(*patch.Name); err != nil {
			return nil, err
		}
	}
	if patch.Description != nil {
		if t.Description, err = s.texts.description(*patch.Description); err != nil {
			return nil, err
		}
	}
	for _, f := range []struct {
		field string
		value *string
		dst   *string
	}{
		{"assignedTo", patch.AssignedTo, &t.AssignedTo},
		{"boardId", patch.BoardID, &t.BoardID},
		{"statusId", patch.StatusID, &t.StatusID},
	} {
		if f.value == nil {
			continue
		}
		if err := requiredID(f.field, *f.value); err != nil {
			return nil, err
		}
		*f.dst = *f.value
	}
	t.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, t); err != nil {
		return nil, translate("タスクの更新に失敗しました", "task", err)
	}
	return t, nil
}

// Delete はタスクを1件削除する。
func (s *TaskService) Delete(ctx context.Context, id string) error {
	if err := s.repo.DeleteByID(ctx, id); err != nil {
		return translate("タスクの削除に失敗しました", "task", err)
	}
	slog.InfoContext(ctx, "task deleted", slog.String("task_id", id))
	return nil
}

// DeleteByCreator はcreatorが作成した全タスクを削除し、削除件数を返す。
func (s *TaskService) DeleteByCreator(ctx context.Context, creator string) (int64, error) {
	n, err := s.repo.DeleteByCreator(ctx, creator)
	if err != nil {
		return 0, fmt.Errorf("タスクの一括削除に失敗しました: %w", err)
	}
	slog.InfoContext(ctx, "tasks deleted",
		slog.String("creator", creator),
		slog.Int64("deleted_count", n),
	)
	return n, nil
}

func requiredID(field, value string) error {
	return validation.First(
		validation.Required(field, value),
		validation.ID(field, value),
	)
}
