package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/usmansyedcoder/Portfolio-Backend/internal/config"
	"github.com/usmansyedcoder/Portfolio-Backend/internal/handler"
	"github.com/usmansyedcoder/Portfolio-Backend/internal/logging"
	"github.com/usmansyedcoder/Portfolio-Backend/internal/metrics"
	"github.com/usmansyedcoder/Portfolio-Backend/internal/notify"
	"github.com/usmansyedcoder/Portfolio-Backend/internal/repository"
	"github.com/usmansyedcoder/Portfolio-Backend/internal/service"
	"github.com/usmansyedcoder/Portfolio-Backend/pkg/ghclient"
	"github.com/usmansyedcoder/Portfolio-Backend/pkg/mailer"
)

const version = "2.0.1"

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	logging.Setup(cfg.LogLevel, cfg.LogFormat)

	ctx := context.Background()

	// プールは遅延接続なので DB が落ちていても起動できる（問い合わせは縮退モードで受け付ける）
	pool, err := repository.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		logging.Fatal("failed to configure database pool", "error", err)
	}
	defer pool.Close()

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	if err := pool.Ping(pingCtx); err != nil {
		slog.Warn("database unreachable at startup; contact messages will not be persisted until it recovers", "error", err)
	} else {
		slog.Info("database connected")
	}
	cancel()

	contactRepo := repository.NewPgContactRepository(pool)
	projectRepo := repository.NewPgProjectRepository(pool)

	dispatcher := notify.NewDispatcher(newSender(cfg), cfg.NotifyTimeout)
	contactService := service.NewContactService(contactRepo, dispatcher)

	gh, err := ghclient.New(cfg.GitHubUsername, cfg.GitHubToken)
	if err != nil {
		logging.Fatal("failed to create github client", "error", err)
	}

	var projectService service.ProjectService
	var upstream handler.Upstream
	switch cfg.ProjectSource {
	case config.ProjectSourceDatabase:
		projectService = service.NewStoredProjectService(projectRepo)
	default:
		projectService = service.NewGitHubProjectService(gh)
		upstream = gh
	}

	h := handler.New(pool, upstream, handler.ServiceInfo{
		Version:        version,
		Environment:    cfg.Environment,
		AllowedOrigins: cfg.AllowedOrigins,
		ProjectSource:  cfg.ProjectSource,
	})
	mux := handler.NewRouter(handler.Routes{
		Health:   h,
		Contact:  handler.NewContactHandler(contactService, cfg.ContactEmail),
		Projects: handler.NewProjectHandler(projectService),
		Metrics:  metrics.Handler(),
	})

	server := &http.Server{
		Addr: cfg.Addr(),
		Handler: handler.Chain(mux,
			handler.RequestLogger,
			handler.Recover(cfg.IsDevelopment()),
			handler.CORS(cfg.AllowedOrigins),
			handler.SecurityHeaders,
			handler.Metrics,
		),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
	}

	go func() {
		slog.Info("server listening",
			"addr", server.Addr,
			"environment", cfg.Environment,
			"project_source", cfg.ProjectSource,
			"allowed_origins", cfg.AllowedOrigins,
			"smtp_enabled", cfg.SMTP.Enabled(),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Fatal("server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "error", err)
	}
	// 送信中の通知メールを待つ
	if err := dispatcher.Wait(shutdownCtx); err != nil {
		slog.Warn("pending notifications abandoned", "error", err)
	}
	slog.Info("server stopped")
}

// newSender returns an SMTP client when mail is configured, otherwise a
// sender that reports ErrNotConfigured for every message.
func newSender(cfg *config.Config) notify.Sender {
	if !cfg.SMTP.Enabled() {
		slog.Warn("SMTP not configured; contact notifications are disabled")
		return mailer.NopSender{}
	}
	client, err := mailer.New(mailer.Config{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		Username: cfg.SMTP.Username,
		Password: cfg.SMTP.Password,
		From:     "Portfolio Contact Form <" + cfg.SMTP.Username + ">",
		To:       []string{cfg.SMTP.To},
	})
	if err != nil {
		slog.Warn("invalid SMTP configuration; contact notifications are disabled", "error", err)
		return mailer.NopSender{}
	}
	return client
}
