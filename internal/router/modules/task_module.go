package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/taskforge/taskforge/internal/container"
	"github.com/taskforge/taskforge/internal/domain/repository"
	handlers "github.com/taskforge/taskforge/internal/interface/http"
	"github.com/taskforge/taskforge/internal/interface/middleware"
	"github.com/taskforge/taskforge/pkg/helpers"
)

// TaskModule wires the owner-scoped task routes. Everything requires auth.

type TaskModule struct {
	Handler *handlers.TaskHandler
	Users   repository.UserRepository
	JWT     *helpers.JWTManager
}

func NewTaskModule(h *handlers.TaskHandler, users repository.UserRepository, jwt *helpers.JWTManager) *TaskModule {
	return &TaskModule{Handler: h, Users: users, JWT: jwt}
}

func (m *TaskModule) Register(rg *gin.RouterGroup) {
	auth := rg.Group("/")
	auth.Use(middleware.Auth(m.Users, m.JWT))
	auth.Use(middleware.RateLimit(container.GetRedis(), 300, time.Minute, middleware.KeyByUserID(), nil))
	{
		auth.POST("/tasks", m.Handler.Create)
		auth.GET("/tasks", m.Handler.List)
		auth.GET("/tasks/search", m.Handler.Search)
		auth.GET("/tasks/:id", m.Handler.Get)
		auth.PATCH("/tasks/:id", m.Handler.Update)
		auth.DELETE("/tasks/:id", m.Handler.Delete)
	}
}
