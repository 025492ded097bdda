package main

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/joho/godotenv"

	"github.com/oksasatya/go-ddd-task-manager/config"
	"github.com/oksasatya/go-ddd-task-manager/internal/application"
	"github.com/oksasatya/go-ddd-task-manager/internal/container"
	"github.com/oksasatya/go-ddd-task-manager/internal/domain/entity"
	"github.com/oksasatya/go-ddd-task-manager/pkg/helpers"
)

const (
	demoUsername = "demo"
	demoEmail    = "demo@example.com"
	demoPassword = "Demo123!"
)

var demoTasks = []application.CreateTaskInput{
	{Title: "Read the README", Description: "Get the API running locally", Status: entity.TaskStatusCompleted},
	{Title: "Create your first task", Status: entity.TaskStatusInProgress},
	{Title: "Try the search filter", Description: "GET /api/tasks?search=filter"},
}

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	// seeding never sends mail
	cfg.MailSendEnabled = false

	ctx := context.Background()
	c, err := container.Build(ctx, cfg, helpers.NewLogger(cfg.AppName, cfg.Env))
	if err != nil {
		log.Fatalf("failed to initialize dependencies: %v", err)
	}
	defer c.Close()

	auth := c.AuthService()
	res, err := auth.Register(ctx, application.RegisterInput{Username: demoUsername, Email: demoEmail, Password: demoPassword})
	if errors.Is(err, application.ErrDuplicateIdentity) {
		res, err = auth.Login(ctx, demoEmail, demoPassword)
	}
	if err != nil {
		log.Fatalf("failed to seed user: %v", err)
	}
	fmt.Printf("seeded user: id=%s email=%s password=%s\n", res.User.ID, demoEmail, demoPassword)

	tasks := c.TaskService()
	existing, err := tasks.List(ctx, res.User.ID, application.ListTasksQuery{})
	if err != nil {
		log.Fatalf("failed to list tasks: %v", err)
	}
	if len(existing) > 0 {
		fmt.Printf("user already has %d tasks; skipping\n", len(existing))
		return
	}
	for _, in := range demoTasks {
		t, err := tasks.Create(ctx, res.User.ID, in)
		if err != nil {
			log.Fatalf("failed to seed task %q: %v", in.Title, err)
		}
		fmt.Printf("seeded task: id=%s status=%s title=%q\n", t.ID, t.Status, t.Title)
	}
	fmt.Printf("token (valid %s): %s\n", cfg.JWTTTL, res.Token)
}
