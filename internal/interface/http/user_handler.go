package handlers

import (
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/taskforge/taskforge/internal/application"
	"github.com/taskforge/taskforge/internal/domain/entity"
	"github.com/taskforge/taskforge/internal/interface/middleware"
	"github.com/taskforge/taskforge/pkg/response"
	"github.com/taskforge/taskforge/pkg/validation"
)

type UserHandler struct {
	Svc            *application.UserService
	Logger         *logrus.Logger
	AvatarMaxBytes int64
}

func NewUserHandler(svc *application.UserService, logger *logrus.Logger, avatarMaxBytes int64) *UserHandler {
	return &UserHandler{Svc: svc, Logger: logger, AvatarMaxBytes: avatarMaxBytes}
}

type signupRequest struct {
	Name     string `json:"name" binding:"required"`
	Age      int    `json:"age" binding:"omitempty,gte=0"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,pwd"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// updateProfileRequest fields are pointers so an omitted field is
// distinguishable from a zero value.
type updateProfileRequest struct {
	Name     *string `json:"name" binding:"omitempty,min=1"`
	Age      *int    `json:"age" binding:"omitempty,gte=0"`
	Email    *string `json:"email" binding:"omitempty,email"`
	Password *string `json:"password" binding:"omitempty,pwd"`
}

var profileAllowList = []string{"name", "age", "email", "password"}

// userJSON is the public projection: password, tokens and avatar bytes are
// never serialized.
func userJSON(u *entity.User) gin.H {
	return gin.H{
		"id":         u.ID,
		"name":       u.Name,
		"age":        u.Age,
		"email":      u.Email,
		"created_at": u.CreatedAt,
		"updated_at": u.UpdatedAt,
	}
}

// Signup POST /users
func (h *UserHandler) Signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	u, token, err := h.Svc.Signup(c.Request.Context(), application.SignupInput{
		Name:     req.Name,
		Age:      req.Age,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		if errors.Is(err, application.ErrEmailTaken) {
			response.Fail(c, http.StatusBadRequest, "email already registered", nil)
			return
		}
		h.Logger.WithError(err).Error("signup failed")
		response.Fail(c, http.StatusInternalServerError, "failed to create account", nil)
		return
	}
	response.JSON(c, http.StatusCreated, gin.H{"user": userJSON(u), "token": token}, "account created", nil)
}

// Login POST /users/login
func (h *UserHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	u, token, err := h.Svc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		// Unknown email and wrong password get the same answer.
		response.Fail(c, http.StatusUnauthorized, "invalid credentials", nil)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"user": userJSON(u), "token": token}, "login successful", nil)
}

// Logout POST /users/logout invalidates only the presented token.
func (h *UserHandler) Logout(c *gin.Context) {
	uid := c.GetString(middleware.CtxUserIDKey)
	token := c.GetString(middleware.CtxTokenKey)
	if err := h.Svc.Logout(c.Request.Context(), uid, token); err != nil {
		h.Logger.WithError(err).Error("logout failed")
		response.Fail(c, http.StatusInternalServerError, "failed to logout", nil)
		return
	}
	response.JSON[any](c, http.StatusOK, gin.H{"logged_out": true}, "logged out", nil)
}

// LogoutAll POST /users/logoutAll empties the active token set.
func (h *UserHandler) LogoutAll(c *gin.Context) {
	uid := c.GetString(middleware.CtxUserIDKey)
	if err := h.Svc.LogoutAll(c.Request.Context(), uid); err != nil {
		h.Logger.WithError(err).Error("logout all failed")
		response.Fail(c, http.StatusInternalServerError, "failed to logout", nil)
		return
	}
	response.JSON[any](c, http.StatusOK, gin.H{"logged_out": true}, "logged out everywhere", nil)
}

// Me GET /users/me
func (h *UserHandler) Me(c *gin.Context) {
	uid := c.GetString(middleware.CtxUserIDKey)
	u, err := h.Svc.GetProfile(c.Request.Context(), uid)
	if err != nil {
		response.Fail(c, http.StatusNotFound, "user not found", nil)
		return
	}
	response.JSON(c, http.StatusOK, userJSON(u), "profile", nil)
}

// GetByID GET /users/:id is the public lookup.
func (h *UserHandler) GetByID(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		response.Fail(c, http.StatusNotFound, "user not found", nil)
		return
	}
	u, err := h.Svc.GetProfile(c.Request.Context(), id)
	if err != nil {
		response.Fail(c, http.StatusNotFound, "user not found", nil)
		return
	}
	response.JSON(c, http.StatusOK, userJSON(u), "user", nil)
}

// UpdateMe PATCH /users/me applies an allow-listed partial update.
func (h *UserHandler) UpdateMe(c *gin.Context) {
	uid := c.GetString(middleware.CtxUserIDKey)
	var req updateProfileRequest
	if details, ok := bindPatch(c, &req, profileAllowList...); !ok {
		response.Fail(c, http.StatusBadRequest, "invalid updates", details)
		return
	}
	u, err := h.Svc.UpdateProfile(c.Request.Context(), uid, application.UpdateProfileInput{
		Name:     req.Name,
		Age:      req.Age,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		switch {
		case errors.Is(err, application.ErrEmailTaken):
			response.Fail(c, http.StatusBadRequest, "email already registered", nil)
		case errors.Is(err, application.ErrUserNotFound):
			response.Fail(c, http.StatusNotFound, "user not found", nil)
		default:
			h.Logger.WithError(err).Error("profile update failed")
			response.Fail(c, http.StatusInternalServerError, "failed to update profile", nil)
		}
		return
	}
	response.JSON(c, http.StatusOK, userJSON(u), "profile updated", nil)
}

// DeleteMe DELETE /users/me removes the account and every owned task.
func (h *UserHandler) DeleteMe(c *gin.Context) {
	uid := c.GetString(middleware.CtxUserIDKey)
	u, err := h.Svc.DeleteAccount(c.Request.Context(), uid)
	if err != nil {
		h.Logger.WithError(err).Error("account delete failed")
		response.Fail(c, http.StatusInternalServerError, "failed to delete account", nil)
		return
	}
	response.JSON(c, http.StatusOK, userJSON(u), "account deleted", nil)
}

var allowedAvatarExts = []string{".jpg", ".jpeg", ".png"}

// UploadAvatar POST /users/me/avatar accepts a multipart image up to
// AvatarMaxBytes with a jpg/jpeg/png extension.
func (h *UserHandler) UploadAvatar(c *gin.Context) {
	uid := c.GetString(middleware.CtxUserIDKey)

	file, err := c.FormFile("avatar")
	if err != nil {
		response.Fail(c, http.StatusBadRequest, "please upload an image", nil)
		return
	}
	if file.Size > h.AvatarMaxBytes {
		response.Fail(c, http.StatusBadRequest, "file too large", nil)
		return
	}
	ext := strings.ToLower(filepath.Ext(file.Filename))
	allowed := false
	for _, e := range allowedAvatarExts {
		if ext == e {
			allowed = true
			break
		}
	}
	if !allowed {
		response.Fail(c, http.StatusBadRequest, "please upload an image", nil)
		return
	}

	f, err := file.Open()
	if err != nil {
		response.Fail(c, http.StatusBadRequest, "please upload an image", nil)
		return
	}
	defer func() { _ = f.Close() }()
	data, err := io.ReadAll(io.LimitReader(f, h.AvatarMaxBytes+1))
	if err != nil || int64(len(data)) > h.AvatarMaxBytes {
		response.Fail(c, http.StatusBadRequest, "file too large", nil)
		return
	}

	if err := h.Svc.UploadAvatar(c.Request.Context(), uid, data); err != nil {
		if errors.Is(err, application.ErrInvalidImage) {
			response.Fail(c, http.StatusBadRequest, "please upload an image", nil)
			return
		}
		h.Logger.WithError(err).Error("avatar upload failed")
		response.Fail(c, http.StatusInternalServerError, "failed to store avatar", nil)
		return
	}
	response.JSON[any](c, http.StatusOK, gin.H{"uploaded": true}, "avatar stored", nil)
}

// GetAvatar GET /users/:id/avatar serves the stored PNG bytes.
func (h *UserHandler) GetAvatar(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		response.Fail(c, http.StatusNotFound, "avatar not found", nil)
		return
	}
	b, err := h.Svc.Avatar(c.Request.Context(), id)
	if err != nil {
		response.Fail(c, http.StatusNotFound, "avatar not found", nil)
		return
	}
	c.Data(http.StatusOK, "image/png", b)
}

// DeleteAvatar DELETE /users/me/avatar
func (h *UserHandler) DeleteAvatar(c *gin.Context) {
	uid := c.GetString(middleware.CtxUserIDKey)
	if err := h.Svc.DeleteAvatar(c.Request.Context(), uid); err != nil {
		h.Logger.WithError(err).Error("avatar delete failed")
		response.Fail(c, http.StatusInternalServerError, "failed to delete avatar", nil)
		return
	}
	response.JSON[any](c, http.StatusOK, gin.H{"deleted": true}, "avatar removed", nil)
}
