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

// UserModule wires the account routes.
// Public: POST /users, POST /users/login, GET /users/:id, GET /users/:id/avatar
// Protected: logout, logoutAll, me, avatar management, account delete

type UserModule struct {
	Handler *handlers.UserHandler
	Users   repository.UserRepository
	JWT     *helpers.JWTManager
}

func NewUserModule(h *handlers.UserHandler, users repository.UserRepository, jwt *helpers.JWTManager) *UserModule {
	return &UserModule{Handler: h, Users: users, JWT: jwt}
}

func (m *UserModule) Register(rg *gin.RouterGroup) {
	// Public with per-IP rate limiting
	signupLimiter := middleware.RateLimit(container.GetRedis(), 10, time.Minute, middleware.KeyByIPAndPath(), nil)
	loginLimiter := middleware.RateLimit(container.GetRedis(), 10, time.Minute, middleware.KeyByIPAndPath(), nil)

	rg.POST("/users", signupLimiter, m.Handler.Signup)
	rg.POST("/users/login", loginLimiter, m.Handler.Login)
	rg.GET("/users/:id", m.Handler.GetByID)
	rg.GET("/users/:id/avatar", m.Handler.GetAvatar)

	// Protected
	auth := rg.Group("/")
	auth.Use(middleware.Auth(m.Users, m.JWT))
	auth.Use(middleware.RateLimit(container.GetRedis(), 120, time.Minute, middleware.KeyByUserID(), nil))
	{
		auth.POST("/users/logout", m.Handler.Logout)
		auth.POST("/users/logoutAll", m.Handler.LogoutAll)
		auth.GET("/users/me", m.Handler.Me)
		auth.PATCH("/users/me", m.Handler.UpdateMe)
		auth.DELETE("/users/me", m.Handler.DeleteMe)
		auth.POST("/users/me/avatar", m.Handler.UploadAvatar)
		auth.DELETE("/users/me/avatar", m.Handler.DeleteAvatar)
	}
}
