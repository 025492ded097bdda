// Package container holds the components built once at startup and shared by
// the router modules.
package container

import (
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ddd-task-manager/config"
	"github.com/oksasatya/go-ddd-task-manager/internal/application"
	"github.com/oksasatya/go-ddd-task-manager/internal/domain/repository"
	"github.com/oksasatya/go-ddd-task-manager/pkg/helpers"
	tpl "github.com/oksasatya/go-ddd-task-manager/pkg/mailer/templates"
	"github.com/oksasatya/go-ddd-task-manager/pkg/validation"
)

// Container is the application's dependency set. Cache, Mail, Indexer and
// Exports are optional; leave them nil to disable the feature.
type Container struct {
	Config *config.Config
	Logger *logrus.Logger

	Users repository.UserRepository
	Tasks repository.TaskRepository
	Store repository.Pinger
	JWT   *helpers.JWTManager

	Cache   application.UserCache
	Mail    application.EmailPublisher
	Indexer application.TaskIndexer
	Exports application.ObjectUploader

	closers []func()

	authSvc *application.AuthService
	taskSvc *application.TaskService
}

// New wires the required components. Optional ones are assigned on the
// returned value before the first call to AuthService or TaskService.
func New(cfg *config.Config, logger *logrus.Logger, users repository.UserRepository, tasks repository.TaskRepository, store repository.Pinger) *Container {
	validation.Init()
	return &Container{
		Config: cfg,
		Logger: logger,
		Users:  users,
		Tasks:  tasks,
		Store:  store,
		JWT:    helpers.NewJWTManager(cfg.JWTSecret, cfg.JWTTTL),
	}
}

func (c *Container) AuthService() *application.AuthService {
	if c.authSvc == nil {
		s := application.NewAuthService(c.Users, c.JWT, c.Config.BcryptCost, c.Logger)
		s.Cache = c.Cache
		s.Mail = c.Mail
		s.Brand = tpl.BrandFromConfig(c.Config)
		c.authSvc = s
	}
	return c.authSvc
}

func (c *Container) TaskService() *application.TaskService {
	if c.taskSvc == nil {
		s := application.NewTaskService(c.Tasks, c.Logger)
		s.Indexer = c.Indexer
		s.Exports = c.Exports
		c.taskSvc = s
	}
	return c.taskSvc
}

// OnClose registers fn to run on Close, in reverse order.
func (c *Container) OnClose(fn func()) {
	c.closers = append(c.closers, fn)
}

func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	c.closers = nil
}
