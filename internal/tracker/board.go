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

// BoardInput はボード作成の入力。
type BoardInput struct {
	Name      string
	ProjectID string
	Color     string
}

// BoardPatch はボードの部分更新の入力。
type BoardPatch struct {
	Name      *string
	ProjectID *string
	Color     *string
}

// BoardService はボードのCRUDを提供する。
type BoardService struct {
	repo  repository.BoardRepository
	texts texts
	now   clock
}

// NewBoardService はBoardServiceを生成する。
func NewBoardService(repo repository.BoardRepository, sanitizer security.TextSanitizer) *BoardService {
	return &BoardService{repo: repo, texts: texts{sanitizer}, now: time.Now}
}

// List は条件に一致するボードを返す。
func (s *BoardService) List(ctx context.Context, filter model.BoardFilter) ([]*model.Board, error) {
	if err := validation.ID("projectId", filter.ProjectID); err != nil {
		return nil, err
	}
	boards, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, translate("ボード一覧の取得に失敗しました", "board", err)
	}
	return boards, nil
}

// Get はIDでボードを取得する。
func (s *BoardService) Get(ctx context.Context, id string) (*model.Board, error) {
	b, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, translate("ボードの取得に失敗しました", "board", err)
	}
	if b == nil {
		return nil, notFound("board")
	}
	return b, nil
}

// Create はボードを作成する。projectIdは必須で、存在しないプロジェクトは検証エラーになる。
func (s *BoardService) Create(ctx context.Context, in BoardInput) (*model.Board, error) {
	name, err := s.texts.name(in.Name)
	if err != nil {
		return nil, err
	}
	color, err := s.color(in.Color)
	if err != nil {
		return nil, err
	}
	if err := requiredID("projectId", in.ProjectID); err != nil {
		return nil, err
	}

	now := s.now()
	b := &model.Board{
		ID:        uuid.NewString(),
		Name:      name,
		ProjectID: in.ProjectID,
		Color:     color,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Create(ctx, b); err != nil {
		return nil, translate("ボードの作成に失敗しました", "board", err)
	}

	slog.InfoContext(ctx, "board created",
		slog.String("board_id", b.ID),
		slog.String("project_id", b.ProjectID),
	)
	return b, nil
}

// Update はボードを部分更新する。
func (s *BoardService) Update(ctx context.Context, id string, patch BoardPatch) (*model.Board, error) {
	b, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if patch.Name != nil {
		if b.Name, err = s.texts.name(*patch.Name); err != nil {
			return nil, err
		}
	}
	if patch.Color != nil {
		if b.Color, err = s.color(*patch.Color); err != nil {
			return nil, err
		}
	}
	if patch.ProjectID != nil {
		if err := requiredID("projectId", *patch.ProjectID); err != nil {
			return nil, err
		}
		b.ProjectID = *patch.ProjectID
	}
	b.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, b); err != nil {
		return nil, translate("ボードの更新に失敗しました", "board", err)
	}
	return b, nil
}

// Delete はボードを削除する。ボード上のタスクはDBのCASCADEで削除される。
func (s *BoardService) Delete(ctx context.Context, id string) error {
	if err := s.repo.DeleteByID(ctx, id); err != nil {
		return translate("ボードの削除に失敗しました", "board", err)
	}
	slog.InfoContext(ctx, "board deleted", slog.String("board_id", id))
	return nil
}

func (s *BoardService) color(raw string) (string, error) {
	if err := validation.MaxLength("color", raw, validation.MaxColorLength); err != nil {
		return "", err
	}
	return s.texts.sanitizer.SanitizeName(raw), nil
}
