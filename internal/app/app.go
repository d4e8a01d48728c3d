// Package app はアプリケーションの初期化とサブコマンドの実行を提供する。
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/VladVes/2022-winter-practice/internal/auth"
	"github.com/VladVes/2022-winter-practice/internal/config"
	"github.com/VladVes/2022-winter-practice/internal/database"
	"github.com/VladVes/2022-winter-practice/internal/handler"
	"github.com/VladVes/2022-winter-practice/internal/logger"
	"github.com/VladVes/2022-winter-practice/internal/metrics"
	"github.com/VladVes/2022-winter-practice/internal/middleware"
	"github.com/VladVes/2022-winter-practice/internal/reporter"
	"github.com/VladVes/2022-winter-practice/internal/repository"
	"github.com/VladVes/2022-winter-practice/internal/security"
	"github.com/VladVes/2022-winter-practice/internal/token"
	"github.com/VladVes/2022-winter-practice/internal/tracker"
	"github.com/VladVes/2022-winter-practice/internal/user"
	"github.com/VladVes/2022-winter-practice/internal/worker/cleanup"
)

// Init はアプリケーションの初期化を行う。
// 環境変数からConfigを読み込み、JSON構造化ログをセットアップする。
// writerが指定された場合はログ出力先としてそのwriterを使用する。
func Init(w io.Writer) (*config.Config, error) {
	// 1. ログの初期化（設定読み込み前にログを使えるようにする）
	logger.SetupDefault(w, slog.LevelInfo)

	// 2. 環境変数から設定を読み込む
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// 3. LOG_LEVELを反映する
	logger.SetupDefault(w, cfg.SlogLevel())

	return cfg, nil
}

// Run はアプリケーションのメインエントリーポイント。
// コマンドライン引数からサブコマンドを解析し、対応するモードで起動する。
// argsにはos.Args[1:]を渡す。
func Run(w io.Writer, args []string) error {
	cmd, err := ParseCommand(args)
	if err != nil {
		return err
	}

	// healthcheck は軽量サブコマンドのため、フル初期化をスキップする
	if cmd == CommandHealthcheck {
		port := os.Getenv("SERVER_PORT")
		if port == "" {
			port = "8080"
		}
		return runHealthcheck(port)
	}

	cfg, err := Init(w)
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	slog.Info("starting application",
		slog.String("command", string(cmd)),
		slog.String("port", cfg.ServerPort),
	)

	switch cmd {
	case CommandWorker:
		return runWorker(cfg)
	case CommandMigrate:
		return runMigrate(cfg)
	default:
		return runServe(cfg)
	}
}

// openDatabase はDB接続を開き、疎通を確認する。
func openDatabase(cfg *config.Config) (*sql.DB, error) {
	db, err := database.Open(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := database.Ping(context.Background(), db, 5*time.Second); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

// newReporter はエラートラッキングの送信先を構築する。
// 常にslogに記録し、SENTRY_DSNが設定されていればSentryにも送る。
// 返り値のflushはプロセス終了前に呼び出す。
func newReporter(cfg *config.Config) (reporter.Reporter, func()) {
	slogReporter := reporter.NewSlogReporter(slog.Default())
	if cfg.SentryDSN == "" {
		return slogReporter, func() {}
	}

	sentryReporter, err := reporter.NewSentryReporter(cfg.SentryDSN, cfg.SentryEnvironment)
	if err != nil {
		slog.Warn("Sentryの初期化に失敗しました。slogのみに記録します",
			slog.String("error", err.Error()),
		)
		return slogReporter, func() {}
	}
	return reporter.Multi{slogReporter, sentryReporter}, func() {
		sentryReporter.Flush(2 * time.Second)
	}
}

// newMetrics はプロセス専用のPrometheusレジストリとコレクターを生成する。
func newMetrics() (*prometheus.Registry, *metrics.Collector) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg, metrics.NewCollector(reg)
}

// buildRouter は全依存関係をワイヤリングしたHTTPハンドラーを返す。
// 返り値のstopはレートリミッターのクリーンアップを停止する。
func buildRouter(cfg *config.Config, db *sql.DB, rep reporter.Reporter, reg *prometheus.Registry, collector metrics.MetricsCollector) (http.Handler, func()) {
	// 1. リポジトリの初期化
	userRepo := repository.NewPostgresUserRepo(db)
	refreshRepo := repository.NewPostgresRefreshTokenRepo(db)
	projectRepo := repository.NewPostgresProjectRepo(db)
	boardRepo := repository.NewPostgresBoardRepo(db)
	statusRepo := repository.NewPostgresStatusRepo(db)
	taskRepo := repository.NewPostgresTaskRepo(db)

	// 2. セキュリティ・トークンの初期化
	hasher := security.NewPasswordHasher(security.Argon2Params{
		Time:      cfg.Argon2.Time,
		MemoryKiB: cfg.Argon2.MemoryKiB,
		Threads:   cfg.Argon2.Threads,
	}, cfg.HashMaxConcurrent)
	sanitizer := security.NewTextSanitizer()
	avatar := security.NewAvatarChecker(cfg.AvatarProbeEnabled, cfg.AvatarProbeTimeout)

	accessTokens := token.NewManager(cfg.JWTSecret, cfg.AccessTokenTTL)
	refreshStore := token.NewRefreshStore(refreshRepo)
	issuer := token.NewIssuer(accessTokens, refreshStore)

	// 3. ドメインサービスの初期化
	authService := auth.NewService(userRepo, hasher, issuer, refreshStore, sanitizer, avatar, collector)
	userService := user.NewService(userRepo, authService, refreshStore, sanitizer, avatar)

	// 4. ルーターの構築
	rateLimiter := middleware.NewRateLimiter(
		middleware.NewRateLimiterConfig(cfg.RateLimitGeneral, cfg.RateLimitAuth),
	)

	router := handler.NewRouter(&handler.RouterDeps{
		TokenVerifier:     accessTokens,
		CORSAllowedOrigin: cfg.CORSAllowedOrigin,
		RateLimiter:       rateLimiter,
		Logger:            slog.Default(),
		Reporter:          rep,
		Metrics:           collector,
		MetricsHandler:    metrics.Handler(reg),
		HealthChecker:     db,

		AuthService:    authService,
		UserService:    userService,
		ProjectService: tracker.NewProjectService(projectRepo, sanitizer),
		BoardService:   tracker.NewBoardService(boardRepo, sanitizer),
		StatusService:  tracker.NewStatusService(statusRepo, sanitizer),
		TaskService:    tracker.NewTaskService(taskRepo, sanitizer),
	})

	return router, rateLimiter.Stop
}

// runServe はAPIサーバーモードで起動する。
// DB接続を開き、全依存関係をワイヤリングし、HTTPサーバーを起動する。
// SIGINTまたはSIGTERMシグナルを受信するとグレースフルシャットダウンを行う。
func runServe(cfg *config.Config) error {
	db, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	slog.Info("database connection established")

	rep, flush := newReporter(cfg)
	defer flush()

	reg, collector := newMetrics()
	router, stopLimiter := buildRouter(cfg, db, rep, reg, collector)
	defer stopLimiter()

	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// グレースフルシャットダウンのためのシグナルハンドリング
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("API server starting", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case <-stop:
	case err := <-serverErr:
		return fmt.Errorf("server listen error: %w", err)
	}
	slog.Info("shutting down API server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	slog.Info("API server stopped gracefully")
	return nil
}

// runWorker はワーカーモードで起動する。
// 孤立したリフレッシュトークンの定期削除を実行する。
// SIGINTまたはSIGTERMシグナルを受信するとシャットダウンする。
func runWorker(cfg *config.Config) error {
	db, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	slog.Info("database connection established (worker)")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	_, collector := newMetrics()
	job := cleanup.NewCleanupJob(repository.NewPostgresRefreshTokenRepo(db), slog.Default(), collector)

	slog.Info("worker starting", slog.Duration("cleanup_interval", cfg.CleanupInterval))
	job.Start(ctx, cfg.CleanupInterval)

	slog.Info("worker stopped gracefully")
	return nil
}

// runMigrate はデータベースマイグレーションを実行する。
// すべての未適用マイグレーションを順番に適用する。
func runMigrate(cfg *config.Config) error {
	slog.Info("running database migrations",
		slog.String("database_url", maskDatabaseURL(cfg.DatabaseURL)),
	)

	if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	version, dirty, err := database.MigrationVersion(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to read migration version: %w", err)
	}

	slog.Info("database migrations completed successfully",
		slog.Uint64("version", uint64(version)),
		slog.Bool("dirty", dirty),
	)
	return nil
}

// runHealthcheck はヘルスチェックを実行する。
// distroless環境でのDockerヘルスチェック用サブコマンド。
// /health エンドポイントにHTTPリクエストを送り、結果を返す。
func runHealthcheck(port string) error {
	url := fmt.Sprintf("http://localhost:%s/health", port)
	client := &http.Client{Timeout: 5 * time.Second}

	resp, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned status %d", resp.StatusCode)
	}

	return nil
}

// maskDatabaseURL はデータベースURLのパスワードをマスクする。
// 解析できないURLは全体を伏せる。
func maskDatabaseURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "***"
	}
	return u.Redacted()
}
