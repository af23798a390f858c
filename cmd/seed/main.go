// seed inserts development sample data for local testing.
// Idempotent: skips inserts if the dev admin (admin@example.com) already exists.
package main

import (
	"context"
	"log"
	"time"

	"project-management/backend/internal/config"
	"project-management/backend/internal/db"
	projectdomain "project-management/backend/internal/project/domain"
	projectrepo "project-management/backend/internal/project/repository"
	"project-management/backend/internal/security"
	taskdomain "project-management/backend/internal/task/domain"
	taskrepo "project-management/backend/internal/task/repository"
	userdomain "project-management/backend/internal/user/domain"
	userrepo "project-management/backend/internal/user/repository"
)

const (
	adminID     = "dev-admin-001"
	aliceID     = "dev-member-001"
	bobID       = "dev-member-002"
	projectID   = "dev-project-001"
	taskID      = "dev-task-001"
	devPassword = "password123"
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

	ctx := context.Background()
	users := userrepo.NewPostgresRepository(sqlDB)

	existing, err := users.GetByEmail(ctx, "admin@example.com")
	if err != nil {
		log.Fatalf("seed: %v", err)
	}
	if existing != nil {
		log.Println("seed: dev data already present, nothing to do")
		return
	}

	hasher := security.NewHasher(cfg.BcryptCost)
	hash, err := hasher.Hash([]byte(devPassword))
	if err != nil {
		log.Fatalf("seed: %v", err)
	}

	now := time.Now().UTC()
	seedUsers := []*userdomain.User{
		{ID: adminID, Username: "admin", Email: "admin@example.com", Role: userdomain.RoleAdmin, ApprovalState: userdomain.ApprovalApproved},
		{ID: aliceID, Username: "alice", Email: "alice@example.com", Role: userdomain.RoleMember, ApprovalState: userdomain.ApprovalApproved},
		{ID: bobID, Username: "bob", Email: "bob@example.com", Role: userdomain.RoleMember, ApprovalState: userdomain.ApprovalPending},
	}
	for _, u := range seedUsers {
		u.PasswordHash = hash
		u.CreatedAt = now
		u.UpdatedAt = now
		if err := users.Create(ctx, u); err != nil {
			log.Fatalf("seed user %s: %v", u.Username, err)
		}
	}

	projects := projectrepo.NewPostgresRepository(sqlDB)
	p := &projectdomain.Project{
		ID:          projectID,
		Title:       "Sample Website",
		Description: "Dev sample project",
		Status:      projectdomain.StatusInProgress,
		StartDate:   now.AddDate(0, 0, -7),
		Deadline:    now.AddDate(0, 1, 0),
		OwnerID:     adminID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := projects.Create(ctx, p, []string{aliceID}); err != nil {
		log.Fatalf("seed project: %v", err)
	}

	tasks := taskrepo.NewPostgresRepository(sqlDB)
	t := &taskdomain.Task{
		ID:         taskID,
		Title:      "Design landing page",
		ProjectID:  projectID,
		AssignedTo: aliceID,
		Status:     taskdomain.StatusTodo,
		Priority:   taskdomain.PriorityHigh,
		DueDate:    now.AddDate(0, 0, 14),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := tasks.Create(ctx, t); err != nil {
		log.Fatalf("seed task: %v", err)
	}

	log.Println("seed: done (admin / alice / bob, password123)")
}
