package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/VladVes/2022-winter-practice/internal/metrics"
	"github.com/VladVes/2022-winter-practice/internal/middleware"
	"github.com/VladVes/2022-winter-practice/internal/reporter"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	TokenVerifier     middleware.TokenVerifier
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter
	Logger            *slog.Logger
	Reporter          reporter.Reporter
	Metrics           metrics.MetricsCollector
	// MetricsHandler が nil の場合 /metrics は公開しない
	MetricsHandler http.Handler
	HealthChecker  HealthChecker

	AuthService    AuthServiceInterface
	UserService    UserServiceInterface
	ProjectService ProjectServiceInterface
	BoardService   BoardServiceInterface
	StatusService  StatusServiceInterface
	TaskService    TaskServiceInterface
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	RequestID → RealIP → Recovery → SecurityHeaders → CORS → Logging → Metrics
//
// /auth/* にはIP単位のレート制限を掛ける。/auth/logoutと各リソースのルートは
// 認証ミドルウェアを通過した後にユーザー単位のレート制限を掛ける。
func NewRouter(deps *RouterDeps) http.Handler {
	if deps.Metrics == nil {
		deps.Metrics = metrics.Nop{}
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.NewRecoveryMiddleware(deps.Reporter))
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	r.Use(middleware.NewLoggingMiddleware(deps.Logger))
	r.Use(middleware.NewMetricsMiddleware(deps.Metrics))

	r.NotFound(NotFound)
	r.MethodNotAllowed(MethodNotAllowed)

	authGate := middleware.NewAuthMiddleware(deps.TokenVerifier)

	authHandler := NewAuthHandler(deps.AuthService, deps.Reporter)
	userHandler := NewUserHandler(deps.UserService, deps.Reporter)
	projectHandler := NewProjectHandler(deps.ProjectService, deps.Reporter)
	boardHandler := NewBoardHandler(deps.BoardService, deps.Reporter)
	statusHandler := NewStatusHandler(deps.StatusService, deps.Reporter)
	taskHandler := NewTaskHandler(deps.TaskService, deps.Reporter)

	// --- 認証不要のルート ---

	if deps.HealthChecker != nil {
		r.Get("/health", NewHealthHandler(deps.HealthChecker))
	}
	if deps.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", deps.MetricsHandler)
	}

	r.Route("/auth", func(r chi.Router) {
		r.Use(deps.RateLimiter.AuthMiddleware())

		r.Post("/signup", authHandler.Signup)
		r.Post("/login", authHandler.Login)
		r.Post("/refresh", authHandler.Refresh)
		r.With(authGate).Post("/logout", authHandler.Logout)
	})

	// --- 認証が必要なルート ---
	// ミドルウェアスタック: Auth → RateLimit(General)
	r.Group(func(r chi.Router) {
		r.Use(authGate)
		r.Use(deps.RateLimiter.GeneralMiddleware())

		r.Route("/users", func(r chi.Router) {
			r.Get("/", userHandler.List)
			r.Get("/{id}", userHandler.Get)
			r.Post("/create", userHandler.Create)
			r.Put("/update/{id}", userHandler.Update)
			r.Delete("/delete/{id}", userHandler.Delete)
		})

		r.Route("/projects", func(r chi.Router) {
			r.Get("/", projectHandler.List)
			r.Get("/{id}", projectHandler.Get)
			r.Post("/create", projectHandler.Create)
			r.Put("/update/{id}", projectHandler.Update)
			r.Delete("/delete/{id}", projectHandler.Delete)
		})

		r.Route("/boards", func(r chi.Router) {
			r.Get("/", boardHandler.List)
			r.Get("/{id}", boardHandler.Get)
			r.Post("/create", boardHandler.Create)
			r.Put("/update/{id}", boardHandler.Update)
			r.Delete("/delete/{id}", boardHandler.Delete)
		})

		r.Route("/statuses", func(r chi.Router) {
			r.Get("/", statusHandler.List)
			r.Get("/{id}", statusHandler.Get)
			r.Post("/create", statusHandler.Create)
			r.Put("/update/{id}", statusHandler.Update)
			r.Delete("/delete/{id}", statusHandler.Delete)
		})

		r.Route("/tasks", func(r chi.Router) {
			r.Get("/", taskHandler.List)
			r.Get("/{id}", taskHandler.Get)
			r.Post("/create", taskHandler.Create)
			r.Put("/update/{id}", taskHandler.Update)
			r.Delete("/delete", taskHandler.DeleteMine)
			r.Delete("/delete/{id}", taskHandler.Delete)
		})
	})

	return r
}
