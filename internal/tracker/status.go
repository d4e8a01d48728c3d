package tracker

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/VladVes/2022-winter-practice/internal/model"
	"github.com/VladVes/2022-winter-practice/internal/repository"
	"github.com/VladVes/2022-winter-practice/internal/security"
	"github.com/VladVes/2022-winter-practice/internal/validation"
)

// StatusInput はステータス作成の入力。
type StatusInput struct {
	Name     string
	BoardIDs []string
}

// StatusPatch はステータスの部分更新の入力。
// BoardIDが空でなければ、そのボードをboardIdsに追加する（重複は追加しない）。
type StatusPatch struct {
	Name    *string
	BoardID string
}

// StatusService はステータスのCRUDを提供する。
type StatusService struct {
	repo  repository.StatusRepository
	texts texts
	now   clock
}

// NewStatusService はStatusServiceを生成する。
func NewStatusService(repo repository.StatusRepository, sanitizer security.TextSanitizer) *StatusService {
	return &StatusService{repo: repo, texts: texts{sanitizer}, now: time.Now}
}

// List は条件に一致するステータスを返す。
func (s *StatusService) List(ctx context.Context, filter model.StatusFilter) ([]*model.Status, error) {
	if err := validation.ID("boardId", filter.BoardID); err != nil {
		return nil, err
	}
	statuses, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, translate("ステータス一覧の取得に失敗しました", "status", err)
	}
	return statuses, nil
}

// Get はIDでステータスを取得する。
func (s *StatusService) Get(ctx context.Context, id string) (*model.Status, error) {
	st, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, translate("ステータスの取得に失敗しました", "status", err)
	}
	if st == nil {
		return nil, notFound("status")
	}
	return st, nil
}

// Create はステータスを作成する。
func (s *StatusService) Create(ctx context.Context, in StatusInput) (*model.Status, error) {
	name, err := s.texts.name(in.Name)
	if err != nil {
		return nil, err
	}
	if err := validation.IDs("boardIds", in.BoardIDs); err != nil {
		return nil, err
	}

	now := s.now()
	st := &model.Status{
		ID:        uuid.NewString(),
		Name:      name,
		BoardIDs:  dedupe(in.BoardIDs),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Create(ctx, st); err != nil {
		return nil, translate("ステータスの作成に失敗しました", "status", err)
	}

	slog.InfoContext(ctx, "status created", slog.String("status_id", st.ID))
	return st, nil
}

// Update は名前を更新し、boardIdを追加する。追加はDB上で1文で行う。
func (s *StatusService) Update(ctx context.Context, id string, patch StatusPatch) (*model.Status, error) {
	if err := validation.ID("boardId", patch.BoardID); err != nil {
		return nil, err
	}

	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	name := current.Name
	if patch.Name != nil {
		if name, err = s.texts.name(*patch.Name); err != nil {
			return nil, err
		}
	}

	st, err := s.repo.Update(ctx, id, name, patch.BoardID)
	if err != nil {
		return nil, translate("ステータスの更新に失敗しました", "status", err)
	}
	return st, nil
}

// Delete はステータスを削除する。
func (s *StatusService) Delete(ctx context.Context, id string) error {
	if err := s.repo.DeleteByID(ctx, id); err != nil {
		return translate("ステータスの削除に失敗しました", "status", err)
	}
	slog.InfoContext(ctx, "status deleted", slog.String("status_id", id))
	return nil
}

// dedupe は順序を保ったまま重複を取り除く。
func dedupe(ids []string) []string {
	if len(ids) == 0 {
		return ids
	}
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
