package tracker

import (
	"context"
	"errors"
	"testing"

	"github.com/VladVes/2022-winter-practice/internal/model"
	"github.com/VladVes/2022-winter-practice/internal/repository"
)

// --- モック定義 ---

type mockProjectRepo struct {
	findByIDFn   func(ctx context.Context, id string) (*model.Project, error)
	listFn       func(ctx context.Context) ([]*model.Project, error)
	createFn     func(ctx context.Context, p *model.Project) error
	updateFn     func(ctx context.Context, p *model.Project) error
	deleteByIDFn func(ctx context.Context, id string) error
}

func (m *mockProjectRepo) FindByID(ctx context.Context, id string) (*model.Project, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return nil, nil
}

func (m *mockProjectRepo) List(ctx context.Context) ([]*model.Project, error) {
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	return nil, nil
}

func (m *mockProjectRepo) Create(ctx context.Context, p *model.Project) error {
	if m.createFn != nil {
		return m.createFn(ctx, p)
	}
	return nil
}

func (m *mockProjectRepo) Update(ctx context.Context, p *model.Project) error {
	if m.updateFn != nil {
		return m.updateFn(ctx, p)
	}
	return nil
}

func (m *mockProjectRepo) DeleteByID(ctx context.Context, id string) error {
	if m.deleteByIDFn != nil {
		return m.deleteByIDFn(ctx, id)
	}
	return nil
}

type mockBoardRepo struct {
	findByIDFn   func(ctx context.Context, id string) (*model.Board, error)
	listFn       func(ctx context.Context, filter model.BoardFilter) ([]*model.Board, error)
	createFn     func(ctx context.Context, b *model.Board) error
	updateFn     func(ctx context.Context, b *model.Board) error
	deleteByIDFn func(ctx context.Context, id string) error
}

func (m *mockBoardRepo) FindByID(ctx context.Context, id string) (*model.Board, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return nil, nil
}

func (m *mockBoardRepo) List(ctx context.Context, filter model.BoardFilter) ([]*model.Board, error) {
	if m.listFn != nil {
		return m.listFn(ctx, filter)
	}
	return nil, nil
}

func (m *mockBoardRepo) Create(ctx context.Context, b *model.Board) error {
	if m.createFn != nil {
		return m.createFn(ctx, b)
	}
	return nil
}

func (m *mockBoardRepo) Update(ctx context.Context, b *model.Board) error {
	if m.updateFn != nil {
		return m.updateFn(ctx, b)
	}
	return nil
}

func (m *mockBoardRepo) DeleteByID(ctx context.Context, id string) error {
	if m.deleteByIDFn != nil {
		return m.deleteByIDFn(ctx, id)
	}
	return nil
}

type mockStatusRepo struct {
	findByIDFn   func(ctx context.Context, id string) (*model.Status, error)
	listFn       func(ctx context.Context, filter model.StatusFilter) ([]*model.Status, error)
	createFn     func(ctx context.Context, s *model.Status) error
	updateFn     func(ctx context.Context, id, name, boardID string) (*model.Status, error)
	deleteByIDFn func(ctx context.Context, id string) error
}

func (m *mockStatusRepo) FindByID(ctx context.Context, id string) (*model.Status, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return nil, nil
}

func (m *mockStatusRepo) List(ctx context.Context, filter model.StatusFilter) ([]*model.Status, error) {
	if m.listFn != nil {
		return m.listFn(ctx, filter)
	}
	return nil, nil
}

func (m *mockStatusRepo) Create(ctx context.Context, s *model.Status) error {
	if m.createFn != nil {
		return m.createFn(ctx, s)
	}
	return nil
}

func (m *mockStatusRepo) Update(ctx context.Context, id, name, boardID string) (*model.Status, error) {
	if m.updateFn != nil {
		return m.updateFn(ctx, id, name, boardID)
	}
	return nil, repository.ErrNotFound
}

func (m *mockStatusRepo) DeleteByID(ctx context.Context, id string) error {
	if m.deleteByIDFn != nil {
		return m.deleteByIDFn(ctx, id)
	}
	return nil
}

type mockTaskRepo struct {
	findByIDFn        func(ctx context.Context, id string) (*model.Task, error)
	listFn            func(ctx context.Context, filter model.TaskFilter) ([]*model.Task, error)
	createFn          func(ctx context.Context, t *model.Task) error
	updateFn          func(ctx context.Context, t *model.Task) error
	deleteByIDFn      func(ctx context.Context, id string) error
	deleteByCreatorFn func(ctx context.Context, creator string) (int64, error)
}

func (m *mockTaskRepo) FindByID(ctx context.Context, id string) (*model.Task, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return nil, nil
}

func (m *mockTaskRepo) List(ctx context.Context, filter model.TaskFilter) ([]*model.Task, error) {
	if m.listFn != nil {
		return m.listFn(ctx, filter)
	}
	return nil, nil
}

func (m *mockTaskRepo) Create(ctx context.Context, t *model.Task) error {
	if m.createFn != nil {
		return m.createFn(ctx, t)
	}
	return nil
}

func (m *mockTaskRepo) Update(ctx context.Context, t *model.Task) error {
	if m.updateFn != nil {
		return m.updateFn(ctx, t)
	}
	return nil
}

func (m *mockTaskRepo) DeleteByID(ctx context.Context, id string) error {
	if m.deleteByIDFn != nil {
		return m.deleteByIDFn(ctx, id)
	}
	return nil
}

func (m *mockTaskRepo) DeleteByCreator(ctx context.Context, creator string) (int64, error) {
	if m.deleteByCreatorFn != nil {
		return m.deleteByCreatorFn(ctx, creator)
	}
	return 0, nil
}

// --- compile-time interface checks ---
var _ repository.ProjectRepository = (*mockProjectRepo)(nil)
var _ repository.BoardRepository = (*mockBoardRepo)(nil)
var _ repository.StatusRepository = (*mockStatusRepo)(nil)
var _ repository.TaskRepository = (*mockTaskRepo)(nil)

// --- ヘルパー ---

const (
	testProjectID = "0b6a2f4e-1c3d-4e5f-8a9b-0c1d2e3f4a5b"
	testBoardID   = "1c7b3a5f-2d4e-4f6a-9b0c-1d2e3f4a5b6c"
	testBoardID2  = "2d8c4b6a-3e5f-4a7b-8c1d-2e3f4a5b6c7d"
	testStatusID  = "3e9d5c7b-4f6a-4b8c-9d2e-3f4a5b6c7d8e"
	testUserID    = "4fae6d8c-5a7b-4c9d-8e3f-4a5b6c7d8e9f"
	testUserID2   = "5abf7e9d-6b8c-4dae-9f4a-5b6c7d8e9fa0"
)

func strPtr(s string) *string { return &s }

func assertAPIErrorCode(t *testing.T, err error, code string) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", code)
	}
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *model.APIError, got %T: %v", err, err)
	}
	if apiErr.Code != code {
		t.Errorf("Code = %q, want %q (message: %s)", apiErr.Code, code, apiErr.Message)
	}
}
