package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"project-management/backend/internal/audit"
	audithandler "project-management/backend/internal/audit/handler"
	auditrepo "project-management/backend/internal/audit/repository"
	"project-management/backend/internal/authz"
	commenthandler "project-management/backend/internal/comment/handler"
	commentrepo "project-management/backend/internal/comment/repository"
	commentservice "project-management/backend/internal/comment/service"
	"project-management/backend/internal/config"
	"project-management/backend/internal/db"
	healthhandler "project-management/backend/internal/health/handler"
	identityhandler "project-management/backend/internal/identity/handler"
	identityservice "project-management/backend/internal/identity/service"
	notificationhandler "project-management/backend/internal/notification/handler"
	notificationrepo "project-management/backend/internal/notification/repository"
	notificationservice "project-management/backend/internal/notification/service"
	projecthandler "project-management/backend/internal/project/handler"
	projectrepo "project-management/backend/internal/project/repository"
	projectservice "project-management/backend/internal/project/service"
	"project-management/backend/internal/security"
	"project-management/backend/internal/server"
	taskhandler "project-management/backend/internal/task/handler"
	taskrepo "project-management/backend/internal/task/repository"
	taskservice "project-management/backend/internal/task/service"
	userhandler "project-management/backend/internal/user/handler"
	userrepo "project-management/backend/internal/user/repository"
	userservice "project-management/backend/internal/user/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	sqlDB, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer sqlDB.Close()

	signer, err := security.ParsePrivateKey(cfg.JWTPrivateKey)
	if err != nil {
		log.Fatalf("private key: %v", err)
	}
	pub, err := security.ParsePublicKey(cfg.JWTPublicKey)
	if err != nil {
		log.Fatalf("public key: %v", err)
	}
	tokens := security.NewTokenProvider(signer, pub, cfg.JWTIssuer, cfg.JWTAudience, cfg.AccessTTL())
	hasher := security.NewHasher(cfg.BcryptCost)

	evaluator, err := authz.NewEvaluator()
	if err != nil {
		log.Fatalf("access policy: %v", err)
	}

	users := userrepo.NewPostgresRepository(sqlDB)
	projects := projectrepo.NewPostgresRepository(sqlDB)
	tasks := taskrepo.NewPostgresRepository(sqlDB)
	notifications := notificationrepo.NewPostgresRepository(sqlDB)
	comments := commentrepo.NewPostgresRepository(sqlDB)
	audits := auditrepo.NewPostgresRepository(sqlDB)

	atomic := db.NewAtomic(sqlDB)
	authService := identityservice.NewAuthService(users, hasher, tokens)
	userService := userservice.NewUserService(atomic, users, projects, tasks, notifications, hasher, evaluator)
	projectService := projectservice.NewProjectService(atomic, projects, tasks, notifications, users, evaluator)
	taskService := taskservice.NewTaskService(atomic, tasks, projects, notifications, users, evaluator)
	commentService := commentservice.NewCommentService(comments, tasks, projects, users, evaluator)
	notificationService := notificationservice.NewNotificationService(notifications, users, evaluator)
	auditLogger := audit.NewLogger(audits, audit.IPFromContext)

	router := server.NewRouter(server.Deps{
		Tokens:        tokens,
		AuditLogger:   auditLogger,
		Identity:      identityhandler.New(authService),
		Users:         userhandler.New(userService),
		Projects:      projecthandler.New(projectService),
		Tasks:         taskhandler.New(taskService),
		Comments:      commenthandler.New(commentService),
		Notifications: notificationhandler.New(notificationService),
		Audit:         audithandler.New(audits, users),
		Health:        healthhandler.New(sqlDB, evaluator),
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("HTTP server listening on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("serve: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("shutting down HTTP server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("shutdown: %v", err)
	}
	log.Println("HTTP server stopped")
}
