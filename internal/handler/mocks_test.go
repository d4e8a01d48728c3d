package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/VladVes/2022-winter-practice/internal/auth"
	"github.com/VladVes/2022-winter-practice/internal/middleware"
	"github.com/VladVes/2022-winter-practice/internal/model"
	"github.com/VladVes/2022-winter-practice/internal/tracker"
	"github.com/VladVes/2022-winter-practice/internal/user"
)

const (
	testUserID    = "8de2a0c1-9ebf-4ad1-8c7d-8e9fa0b1c2d3"
	testProjectID = "3b1f6f0e-6f1d-4c1c-9a55-0f3f2b8c9d11"
	testBoardID   = "1c7b3a5f-2d4e-4f6a-9b0c-1d2e3f4a5b6c"
	testStatusID  = "5e6f7a8b-9c0d-4e1f-8a2b-3c4d5e6f7a8b"
	testTaskID    = "7a8b9c0d-1e2f-4a3b-9c4d-5e6f7a8b9c0d"
	validToken    = "valid-access-token"
)

// --- モック定義 ---

type mockAuthService struct {
	signupFn  func(ctx context.Context, in auth.SignupInput) error
	loginFn   func(ctx context.Context, email, password string) (*auth.LoginResult, error)
	refreshFn func(ctx context.Context, raw string) (*model.TokenPair, error)
	logoutFn  func(ctx context.Context, userID string) error
}

func (m *mockAuthService) Signup(ctx context.Context, in auth.SignupInput) error {
	if m.signupFn != nil {
		return m.signupFn(ctx, in)
	}
	return nil
}

func (m *mockAuthService) Login(ctx context.Context, email, password string) (*auth.LoginResult, error) {
	if m.loginFn != nil {
		return m.loginFn(ctx, email, password)
	}
	return nil, model.NewForbiddenError()
}

func (m *mockAuthService) Refresh(ctx context.Context, raw string) (*model.TokenPair, error) {
	if m.refreshFn != nil {
		return m.refreshFn(ctx, raw)
	}
	return nil, model.NewNotFoundError("refresh token not found")
}

func (m *mockAuthService) Logout(ctx context.Context, userID string) error {
	if m.logoutFn != nil {
		return m.logoutFn(ctx, userID)
	}
	return nil
}

type mockUserService struct {
	listFn   func(ctx context.Context) ([]*model.User, error)
	getFn    func(ctx context.Context, id string) (*model.User, error)
	createFn func(ctx context.Context, in auth.SignupInput) (*model.User, error)
	updateFn func(ctx context.Context, id string, in user.UpdateInput) (*model.User, error)
	deleteFn func(ctx context.Context, id string) error
}

func (m *mockUserService) List(ctx context.Context) ([]*model.User, error) {
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	return nil, nil
}

func (m *mockUserService) Get(ctx context.Context, id string) (*model.User, error) {
	if m.getFn != nil {
		return m.getFn(ctx, id)
	}
	return nil, model.NewNotFoundError("user not found")
}

func (m *mockUserService) Create(ctx context.Context, in auth.SignupInput) (*model.User, error) {
	if m.createFn != nil {
		return m.createFn(ctx, in)
	}
	return nil, errors.New("not implemented")
}

func (m *mockUserService) Update(ctx context.Context, id string, in user.UpdateInput) (*model.User, error) {
	if m.updateFn != nil {
		return m.updateFn(ctx, id, in)
	}
	return nil, errors.New("not implemented")
}

func (m *mockUserService) Delete(ctx context.Context, id string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

type mockProjectService struct {
	listFn   func(ctx context.Context) ([]*model.Project, error)
	getFn    func(ctx context.Context, id string) (*model.Project, error)
	createFn func(ctx context.Context, in tracker.ProjectInput) (*model.Project, error)
	updateFn func(ctx context.Context, id string, patch tracker.ProjectPatch) (*model.Project, error)
	deleteFn func(ctx context.Context, id string) error
}

func (m *mockProjectService) List(ctx context.Context) ([]*model.Project, error) {
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	return nil, nil
}

func (m *mockProjectService) Get(ctx context.Context, id string) (*model.Project, error) {
	if m.getFn != nil {
		return m.getFn(ctx, id)
	}
	return nil, model.NewNotFoundError("project not found")
}

func (m *mockProjectService) Create(ctx context.Context, in tracker.ProjectInput) (*model.Project, error) {
	if m.createFn != nil {
		return m.createFn(ctx, in)
	}
	return nil, errors.New("not implemented")
}

func (m *mockProjectService) Update(ctx context.Context, id string, patch tracker.ProjectPatch) (*model.Project, error) {
	if m.updateFn != nil {
		return m.updateFn(ctx, id, patch)
	}
	return nil, errors.New("not implemented")
}

func (m *mockProjectService) Delete(ctx context.Context, id string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

type mockBoardService struct {
	listFn   func(ctx context.Context, filter model.BoardFilter) ([]*model.Board, error)
	getFn    func(ctx context.Context, id string) (*model.Board, error)
	createFn func(ctx context.Context, in tracker.BoardInput) (*model.Board, error)
	updateFn func(ctx context.Context, id string, patch tracker.BoardPatch) (*model.Board, error)
	deleteFn func(ctx context.Context, id string) error
}

func (m *mockBoardService) List(ctx context.Context, filter model.BoardFilter) ([]*model.Board, error) {
	if m.listFn != nil {
		return m.listFn(ctx, filter)
	}
	return nil, nil
}

func (m *mockBoardService) Get(ctx context.Context, id string) (*model.Board, error) {
	if m.getFn != nil {
		return m.getFn(ctx, id)
	}
	return nil, model.NewNotFoundError("board not found")
}

func (m *mockBoardService) Create(ctx context.Context, in tracker.BoardInput) (*model.Board, error) {
	if m.createFn != nil {
		return m.createFn(ctx, in)
	}
	return nil, errors.New("not implemented")
}

func (m *mockBoardService) Update(ctx context.Context, id string, patch tracker.BoardPatch) (*model.Board, error) {
	if m.updateFn != nil {
		return m.updateFn(ctx, id, patch)
	}
	return nil, errors.New("not implemented")
}

func (m *mockBoardService) Delete(ctx context.Context, id string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

type mockStatusService struct {
	listFn   func(ctx context.Context, filter model.StatusFilter) ([]*model.Status, error)
	getFn    func(ctx context.Context, id string) (*model.Status, error)
	createFn func(ctx context.Context, in tracker.StatusInput) (*model.Status, error)
	updateFn func(ctx context.Context, id string, patch tracker.StatusPatch) (*model.Status, error)
	deleteFn func(ctx context.Context, id string) error
}

func (m *mockStatusService) List(ctx context.Context, filter model.StatusFilter) ([]*model.Status, error) {
	if m.listFn != nil {
		return m.listFn(ctx, filter)
	}
	return nil, nil
}

func (m *mockStatusService) Get(ctx context.Context, id string) (*model.Status, error) {
	if m.getFn != nil {
		return m.getFn(ctx, id)
	}
	return nil, model.NewNotFoundError("status not found")
}

func (m *mockStatusService) Create(ctx context.Context, in tracker.StatusInput) (*model.Status, error) {
	if m.createFn != nil {
		return m.createFn(ctx, in)
	}
	return nil, errors.New("not implemented")
}

func (m *mockStatusService) Update(ctx context.Context, id string, patch tracker.StatusPatch) (*model.Status, error) {
	if m.updateFn != nil {
		return m.updateFn(ctx, id, patch)
	}
	return nil, errors.New("not implemented")
}

func (m *mockStatusService) Delete(ctx context.Context, id string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

type mockTaskService struct {
	now               time.Time
	listFn            func(ctx context.Context, filter model.TaskFilter) ([]*model.Task, error)
	getFn             func(ctx context.Context, id string) (*model.Task, error)
	createFn          func(ctx context.Context, creator string, in tracker.TaskInput) (*model.Task, error)
	updateFn          func(ctx context.Context, id string, patch tracker.TaskPatch) (*model.Task, error)
	deleteFn          func(ctx context.Context, id string) error
	deleteByCreatorFn func(ctx context.Context, creator string) (int64, error)
}

func (m *mockTaskService) Now() time.Time {
	if m.now.IsZero() {
		return time.Now()
	}
	return m.now
}

func (m *mockTaskService) List(ctx context.Context, filter model.TaskFilter) ([]*model.Task, error) {
	if m.listFn != nil {
		return m.listFn(ctx, filter)
	}
	return nil, nil
}

func (m *mockTaskService) Get(ctx context.Context, id string) (*model.Task, error) {
	if m.getFn != nil {
		return m.getFn(ctx, id)
	}
	return nil, model.NewNotFoundError("task not found")
}

func (m *mockTaskService) Create(ctx context.Context, creator string, in tracker.TaskInput) (*model.Task, error) {
	if m.createFn != nil {
		return m.createFn(ctx, creator, in)
	}
	return nil, errors.New("not implemented")
}

func (m *mockTaskService) Update(ctx context.Context, id string, patch tracker.TaskPatch) (*model.Task, error) {
	if m.updateFn != nil {
		return m.updateFn(ctx, id, patch)
	}
	return nil, errors.New("not implemented")
}

func (m *mockTaskService) Delete(ctx context.Context, id string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

func (m *mockTaskService) DeleteByCreator(ctx context.Context, creator string) (int64, error) {
	if m.deleteByCreatorFn != nil {
		return m.deleteByCreatorFn(ctx, creator)
	}
	return 0, nil
}

// mockVerifier はvalidTokenのみを受け付け、testUserIDのクレームを返す。
type mockVerifier struct{}

func (mockVerifier) Parse(tokenString string) (*model.Claims, error) {
	if tokenString != validToken {
		return nil, errors.New("invalid token")
	}
	return &model.Claims{UserID: testUserID, ExpiresAt: time.Now().Add(time.Hour)}, nil
}

// captureReporter は報告されたエラーを記録する。
type captureReporter struct {
	mu   sync.Mutex
	errs []error
	info []map[string]string
}

func (c *captureReporter) Report(_ context.Context, err error, info map[string]string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.errs = append(c.errs, err)
	c.info = append(c.info, info)
}

func (c *captureReporter) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.errs)
}

// pingFunc はHealthCheckerの関数アダプタ。
type pingFunc func(ctx context.Context) error

func (f pingFunc) PingContext(ctx context.Context) error { return f(ctx) }

// --- テストヘルパー ---

var (
	_ AuthServiceInterface    = (*auth.Service)(nil)
	_ UserServiceInterface    = (*user.Service)(nil)
	_ ProjectServiceInterface = (*tracker.ProjectService)(nil)
	_ BoardServiceInterface   = (*tracker.BoardService)(nil)
	_ StatusServiceInterface  = (*tracker.StatusService)(nil)
	_ TaskServiceInterface    = (*tracker.TaskService)(nil)
)

// testDeps は全サービスをモックで埋めたRouterDepsを返す。
func testDeps(t *testing.T) *RouterDeps {
	t.Helper()
	rl := middleware.NewRateLimiter(middleware.NewRateLimiterConfig(6000, 6000))
	t.Cleanup(rl.Stop)

	return &RouterDeps{
		TokenVerifier:     mockVerifier{},
		CORSAllowedOrigin: "http://localhost:3000",
		RateLimiter:       rl,
		Reporter:          &captureReporter{},
		HealthChecker:     pingFunc(func(context.Context) error { return nil }),
		AuthService:       &mockAuthService{},
		UserService:       &mockUserService{},
		ProjectService:    &mockProjectService{},
		BoardService:      &mockBoardService{},
		StatusService:     &mockStatusService{},
		TaskService:       &mockTaskService{},
	}
}

// doRequest はルーターにリクエストを送りレスポンスを返す。
// authedがtrueの場合は有効なBearerトークンを付与する。
func doRequest(t *testing.T, h http.Handler, method, path string, body any, authed bool) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		if err := json.NewEncoder(&buf).Encode(b); err != nil {
			t.Fatalf("failed to encode body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if authed {
		req.Header.Set("Authorization", "Bearer "+validToken)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

// decodeBody はレスポンスボディをJSONとしてデコードする。
func decodeBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(w.Body).Decode(&v); err != nil {
		t.Fatalf("failed to decode response body %q: %v", w.Body.String(), err)
	}
	return v
}

// assertError はステータスコードとエラーコードを検証する。
func assertError(t *testing.T, w *httptest.ResponseRecorder, status int, code string) {
	t.Helper()
	if w.Code != status {
		t.Errorf("status = %d, want %d (body: %s)", w.Code, status, w.Body.String())
	}
	body := decodeBody[middleware.ErrorResponseBody](t, w)
	if body.Code != code {
		t.Errorf("code = %q, want %q", body.Code, code)
	}
	if body.Error == "" {
		t.Error("error message should not be empty")
	}
}

// newRequest はJSONボディ付きのリクエストを生成する。
func newRequest(method, path, body string) *http.Request {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

// serve はハンドラーにリクエストを渡しレスポンスを返す。
func serve(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}
