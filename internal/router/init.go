package router

import (
	"github.com/taskforge/taskforge/internal/application"
	"github.com/taskforge/taskforge/internal/container"
	pginfra "github.com/taskforge/taskforge/internal/infrastructure/postgres"
	handlers "github.com/taskforge/taskforge/internal/interface/http"
	"github.com/taskforge/taskforge/internal/router/modules"
)

// InitModules initializes all application modules and registers them with the router registry
// This function should be called once during application startup to wire up all modules
func InitModules(r *Registry) {
	cfg := container.GetConfig()

	userRepo := pginfra.NewUserRepository(container.GetPGPool())
	taskRepo := pginfra.NewTaskRepository(container.GetPGPool())

	userSvc := application.NewUserService(
		userRepo,
		container.GetJWT(),
		container.GetRedis(),
		container.GetLogger(),
		container.GetRabbitPub(),
		cfg.MailSendEnabled,
	)
	taskSvc := application.NewTaskService(
		taskRepo,
		container.GetLogger(),
		container.GetES(),
		cfg.ESTasksIndex,
	)

	userHandler := handlers.NewUserHandler(userSvc, container.GetLogger(), cfg.AvatarMaxBytes)
	taskHandler := handlers.NewTaskHandler(taskSvc, container.GetLogger())

	r.Add(modules.NewUserModule(userHandler, userRepo, container.GetJWT()))
	r.Add(modules.NewTaskModule(taskHandler, userRepo, container.GetJWT()))
	if cfg.DebugMetricsEnabled {
		r.Add(modules.NewDebugModule())
	}
}
