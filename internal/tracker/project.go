package tracker

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/VladVes/2022-winter-practice/internal/model"
	"github.com/VladVes/2022-winter-practice/internal/repository"
	"github.com/VladVes/2022-winter-practice/internal/security"
)

// ProjectInput はプロジェクト作成の入力。
type ProjectInput struct {
	Name        string
	Description string
}

// ProjectPatch はプロジェクトの部分更新の入力。
type ProjectPatch struct {
	Name        *string
	Description *string
}

// ProjectService はプロジェクトのCRUDを提供する。
type ProjectService struct {
	repo  repository.ProjectRepository
	texts texts
	now   clock
}

// NewProjectService はProjectServiceを生成する。
func NewProjectService(repo repository.ProjectRepository, sanitizer security.TextSanitizer) *ProjectService {
	return &ProjectService{repo: repo, texts: texts{sanitizer}, now: time.Now}
}

// List は全プロジェクトを返す。
func (s *ProjectService) List(ctx context.Context) ([]*model.Project, error) {
	projects, err := s.repo.List(ctx)
	if err != nil {
		return nil, translate("プロジェクト一覧の取得に失敗しました", "project", err)
	}
	return projects, nil
}

// Get はIDでプロジェクトを取得する。存在しなければNotFoundを返す。
func (s *ProjectService) Get(ctx context.Context, id string) (*model.Project, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, translate("プロジェクトの取得に失敗しました", "project", err)
	}
	if p == nil {
		return nil, notFound("project")
	}
	return p, nil
}

// Create はプロジェクトを作成する。
func (s *ProjectService) Create(ctx context.Context, in ProjectInput) (*model.Project, error) {
	name, err := s.texts.name(in.Name)
	if err != nil {
		return nil, err
	}
	desc, err := s.texts.description(in.Description)
	if err != nil {
		return nil, err
	}

	now := s.now()
	p := &model.Project{
		ID:          uuid.NewString(),
		Name:        name,
		Description: desc,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, translate("プロジェクトの作成に失敗しました", "project", err)
	}

	slog.InfoContext(ctx, "project created", slog.String("project_id", p.ID))
	return p, nil
}

// Update はプロジェクトを部分更新する。
func (s *ProjectService) Update(ctx context.Context, id string, patch ProjectPatch) (*model.Project, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if patch.Name != nil {
		if p.Name, err = s.texts.name(*patch.Name); err != nil {
			return nil, err
		}
	}
	if patch.Description != nil {
		if p.Description, err = s.texts.description(*patch.Description); err != nil {
			return nil, err
		}
	}
	p.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, p); err != nil {
		return nil, translate("プロジェクトの更新に失敗しました", "project", err)
	}
	return p, nil
}

// Delete はプロジェクトを削除する。配下のボードとタスクはDBのCASCADEで削除される。
func (s *ProjectService) Delete(ctx context.Context, id string) error {
	if err := s.repo.DeleteByID(ctx, id); err != nil {
		return translate("プロジェクトの削除に失敗しました", "project", err)
	}
	slog.InfoContext(ctx, "project deleted", slog.String("project_id", id))
	return nil
}
