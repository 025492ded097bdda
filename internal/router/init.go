package router

import (
	"github.com/oksasatya/go-ddd-task-manager/internal/container"
	handlers "github.com/oksasatya/go-ddd-task-manager/internal/interface/http"
	"github.com/oksasatya/go-ddd-task-manager/internal/interface/middleware"
	"github.com/oksasatya/go-ddd-task-manager/internal/router/modules"
)

// InitModules builds the handlers from c and adds their modules to r.
// Call it once during startup, before RegisterAll.
func InitModules(r *Registry, c *container.Container) {
	authSvc := c.AuthService()
	requireAuth := middleware.Auth(authSvc, c.Logger)

	r.Add(modules.NewHealthModule(handlers.NewHealthHandler(c.Store, c.Config.StoreDriver, c.Logger)))
	r.Add(modules.NewAuthModule(handlers.NewAuthHandler(authSvc, c.Logger), requireAuth))
	r.Add(modules.NewTaskModule(handlers.NewTaskHandler(c.TaskService(), c.Logger), requireAuth))
	if c.Config.DebugMetricsEnabled {
		r.Add(modules.NewDebugModule())
	}
}
