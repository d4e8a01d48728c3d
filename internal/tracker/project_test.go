package tracker

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/VladVes/2022-winter-practice/internal/model"
	"github.com/VladVes/2022-winter-practice/internal/repository"
	"github.com/VladVes/2022-winter-practice/internal/security"
)

func TestProjectService_Create_SanitizesAndStores(t *testing.T) {
	var stored *model.Project
	repo := &mockProjectRepo{
		createFn: func(_ context.Context, p *model.Project) error {
			stored = p
			return nil
		},
	}
	svc := NewProjectService(repo, security.NewTextSanitizer())

	p, err := svc.Create(context.Background(), ProjectInput{
		Name:        "  <i>Tracker</i> ",
		Description: `<p>Plan</p><script>alert(1)</script>`,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.ID == "" {
		t.Error("ID should be generated")
	}
	if p.Name != "Tracker" {
		t.Errorf("Name = %q, want %q", p.Name, "Tracker")
	}
	if p.Description != "<p>Plan</p>" {
		t.Errorf("Description = %q, want %q", p.Description, "<p>Plan</p>")
	}
	if stored != p {
		t.Error("created project should be passed to repository")
	}
}

func TestProjectService_Create_Validation(t *testing.T) {
	tests := []struct {
		name  string
		input ProjectInput
	}{
		{"missing name", ProjectInput{}},
		{"markup only name", ProjectInput{Name: "<b></b>"}},
		{"long name", ProjectInput{Name: strings.Repeat("n", 129)}},
		{"long description", ProjectInput{Name: "ok", Description: strings.Repeat("d", 1025)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mockProjectRepo{
				createFn: func(context.Context, *model.Project) error {
					t.Fatal("Create should not be called")
					return nil
				},
			}
			_, err := NewProjectService(repo, security.NewTextSanitizer()).Create(context.Background(), tt.input)
			assertAPIErrorCode(t, err, model.ErrCodeValidation)
		})
	}
}

func TestProjectService_Get_NotFound(t *testing.T) {
	svc := NewProjectService(&mockProjectRepo{}, security.NewTextSanitizer())

	_, err := svc.Get(context.Background(), testProjectID)
	assertAPIErrorCode(t, err, model.ErrCodeNotFound)
}

func TestProjectService_Update_PartialKeepsAbsentFields(t *testing.T) {
	var updated *model.Project
	repo := &mockProjectRepo{
		findByIDFn: func(_ context.Context, id string) (*model.Project, error) {
			return &model.Project{ID: id, Name: "Old", Description: "keep me"}, nil
		},
		updateFn: func(_ context.Context, p *model.Project) error {
			updated = p
			return nil
		},
	}
	svc := NewProjectService(repo, security.NewTextSanitizer())

	p, err := svc.Update(context.Background(), testProjectID, ProjectPatch{Name: strPtr("New")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Name != "New" || p.Description != "keep me" {
		t.Errorf("project = %+v", p)
	}
	if updated == nil || updated.UpdatedAt.IsZero() {
		t.Error("UpdatedAt should be set on update")
	}
}

func TestProjectService_Update_RowVanished_ReturnsNotFound(t *testing.T) {
	repo := &mockProjectRepo{
		findByIDFn: func(_ context.Context, id string) (*model.Project, error) {
			return &model.Project{ID: id, Name: "Old"}, nil
		},
		updateFn: func(context.Context, *model.Project) error {
			return repository.ErrNotFound
		},
	}
	svc := NewProjectService(repo, security.NewTextSanitizer())

	_, err := svc.Update(context.Background(), testProjectID, ProjectPatch{})
	assertAPIErrorCode(t, err, model.ErrCodeNotFound)
}

func TestProjectService_Delete(t *testing.T) {
	repo := &mockProjectRepo{
		deleteByIDFn: func(_ context.Context, id string) error {
			if id == testProjectID {
				return nil
			}
			return repository.ErrNotFound
		},
	}
	svc := NewProjectService(repo, security.NewTextSanitizer())

	if err := svc.Delete(context.Background(), testProjectID); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	assertAPIErrorCode(t, svc.Delete(context.Background(), testBoardID), model.ErrCodeNotFound)
}

func TestProjectService_List_StorageError(t *testing.T) {
	storageErr := errors.New("connection refused")
	repo := &mockProjectRepo{
		listFn: func(context.Context) ([]*model.Project, error) { return nil, storageErr },
	}
	svc := NewProjectService(repo, security.NewTextSanitizer())

	_, err := svc.List(context.Background())
	if !errors.Is(err, storageErr) {
		t.Errorf("err = %v, want wrapped storage error", err)
	}
}
