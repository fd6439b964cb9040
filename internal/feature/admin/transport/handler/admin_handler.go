// Package handler provides the HTTP handlers for the JSON admin surface.
//
// The admin exposes list/add/change views for the identity model, gated by
// the staff requirement. It speaks JSON rather than HTML: the scaffold has
// no template layer, and a frontend or operator tooling consumes these
// endpoints directly.
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"app_backend/internal/api"
	"app_backend/internal/app/middleware"
	"app_backend/internal/feature/admin/transport/http/dto"
	"app_backend/internal/feature/users/domain"
	"app_backend/internal/feature/users/domain/entity"
	"app_backend/internal/feature/users/usecase"
	userdto "app_backend/internal/feature/users/transport/http/dto"
)

// UserManager defines the identity operations the admin needs.
// Goの慣例に従い、インターフェースはプロバイダー（usecase）ではなくコンシューマー（handler）が定義します。
type UserManager interface {
	CreateUser(ctx context.Context, email, password string, params usecase.CreateParams) (*entity.User, error)
	GetByID(ctx context.Context, id uint) (*entity.User, error)
	List(ctx context.Context) ([]*entity.User, error)
	Update(ctx context.Context, user *entity.User) error
	SetPassword(user *entity.User, password string) error
}

// SessionRevoker invalidates a user's sessions.
type SessionRevoker interface {
	RevokeAllByUserID(ctx context.Context, userID uint) error
}

// AdminHandler handles the admin views for the identity model.
type AdminHandler struct {
	users    UserManager
	sessions SessionRevoker
}

// NewAdminHandler creates a new AdminHandler instance.
func NewAdminHandler(users UserManager, sessions SessionRevoker) *AdminHandler {
	return &AdminHandler{users: users, sessions: sessions}
}

// ListUsers handles the changelist view.
func (h *AdminHandler) ListUsers(c *gin.Context) {
	users, err := h.users.List(c.Request.Context())
	if err != nil {
		slog.Error("admin user list failed", "error", err)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "internal server error"})
		return
	}

	out := make([]userdto.UserRes, 0, len(users))
	for _, u := range users {
		out = append(out, userdto.FromEntity(u))
	}
	c.JSON(http.StatusOK, gin.H{"count": len(out), "users": out})
}

// AddUserForm handles the add view. It describes the creation form so the
// admin frontend can render it.
func (h *AdminHandler) AddUserForm(c *gin.Context) {
	c.JSON(http.StatusOK, dto.AddFormRes{
		Fields: []dto.FormField{
			{Name: "email", Type: "email", Required: true},
			{Name: "password", Type: "password", Required: true},
			{Name: "first_name", Type: "text", Required: false},
			{Name: "last_name", Type: "text", Required: false},
			{Name: "is_staff", Type: "boolean", Required: false},
			{Name: "is_superuser", Type: "boolean", Required: false},
			{Name: "is_active", Type: "boolean", Required: false},
		},
	})
}

// CreateUser handles user creation from the admin.
func (h *AdminHandler) CreateUser(c *gin.Context) {
	var req dto.AdminCreateUserReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid request"})
		return
	}

	user, err := h.users.CreateUser(c.Request.Context(), req.Email, req.Password, usecase.CreateParams{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		IsStaff:     req.IsStaff,
		IsSuperuser: req.IsSuperuser,
		IsActive:    req.IsActive,
	})
	if err != nil {
		if errors.Is(err, domain.ErrEmailAlreadyExists) {
			c.JSON(http.StatusConflict, api.ErrorResponse{Error: err.Error()})
			return
		}
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	slog.Info("admin created user", "email", user.Email, "by", adminEmail(c))
	c.JSON(http.StatusCreated, userdto.FromEntity(user))
}

// ChangeUser handles the change view for a single user.
func (h *AdminHandler) ChangeUser(c *gin.Context) {
	user, ok := h.lookup(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, userdto.FromEntity(user))
}

// UpdateUser persists changes from the admin change view.
func (h *AdminHandler) UpdateUser(c *gin.Context) {
	user, ok := h.lookup(c)
	if !ok {
		return
	}

	var req dto.AdminUpdateUserReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid request"})
		return
	}

	if req.Email != nil {
		user.Email = *req.Email
	}
	if req.FirstName != nil {
		user.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		user.LastName = *req.LastName
	}
	if req.IsStaff != nil {
		user.IsStaff = *req.IsStaff
	}
	if req.IsSuperuser != nil {
		user.IsSuperuser = *req.IsSuperuser
	}
	wasActive := user.IsActive
	if req.IsActive != nil {
		user.IsActive = *req.IsActive
	}
	if req.Password != "" {
		if err := h.users.SetPassword(user, req.Password); err != nil {
			c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
			return
		}
	}

	if err := h.users.Update(c.Request.Context(), user); err != nil {
		if errors.Is(err, domain.ErrEmailAlreadyExists) {
			c.JSON(http.StatusConflict, api.ErrorResponse{Error: err.Error()})
			return
		}
		slog.Error("admin user update failed", "error", err, "user_id", user.ID)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "internal server error"})
		return
	}

	// 無効化されたアカウントの既存ログインを即座に切る
	if wasActive && !user.IsActive {
		if err := h.sessions.RevokeAllByUserID(c.Request.Context(), user.ID); err != nil {
			slog.Error("failed to revoke sessions for deactivated user", "error", err, "user_id", user.ID)
		}
	}

	slog.Info("admin updated user", "email", user.Email, "by", adminEmail(c))
	c.JSON(http.StatusOK, userdto.FromEntity(user))
}

// lookup resolves the :id route parameter to a user, writing the error
// response itself when the parameter is bad or the user is missing.
func (h *AdminHandler) lookup(c *gin.Context) (*entity.User, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid user id"})
		return nil, false
	}

	user, err := h.users.GetByID(c.Request.Context(), uint(id))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "user not found"})
			return nil, false
		}
		slog.Error("admin user lookup failed", "error", err)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "internal server error"})
		return nil, false
	}
	return user, true
}

// adminEmail returns the acting admin's email for audit logging.
func adminEmail(c *gin.Context) string {
	if user := middleware.CurrentUser(c); user != nil {
		return user.Email
	}
	return ""
}
