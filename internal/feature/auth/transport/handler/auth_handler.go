// Package handler はauthフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"app_backend/internal/api"
	"app_backend/internal/config"
	"app_backend/internal/feature/auth/domain/entity"
	"app_backend/internal/feature/auth/transport/http/dto"
	userentity "app_backend/internal/feature/users/domain/entity"
	jwtauth "app_backend/internal/platform/jwt"
)

// Authenticator はユーザー認証のユースケースを定義します。
// Goの慣例に従い、インターフェースはプロバイダー（usecase）ではなくコンシューマー（handler）が定義します。
type Authenticator interface {
	// Authenticate はメールアドレスとパスワードを検証し、成功時にユーザーを返します。
	Authenticate(ctx context.Context, email, password string) (*userentity.User, error)
}

// SessionStore はセッションの永続化層を抽象化します。
type SessionStore interface {
	// Create は新しいセッションをストアに永続化します。
	Create(ctx context.Context, session *entity.Session) error
	// Revoke はセッションを失効させます。
	Revoke(ctx context.Context, id string) error
}

// AuthHandler は認証操作のHTTPリクエストを処理します。
// セッションクッキー（ブラウザ向け）とJWTトークン（APIクライアント向け）の両方を発行します。
type AuthHandler struct {
	auth     Authenticator
	sessions SessionStore
	tokens   jwtauth.Generator
	settings *config.Settings
}

// NewAuthHandler はAuthHandlerの新しいインスタンスを生成します。
func NewAuthHandler(auth Authenticator, sessions SessionStore, tokens jwtauth.Generator, settings *config.Settings) *AuthHandler {
	return &AuthHandler{
		auth:     auth,
		sessions: sessions,
		tokens:   tokens,
		settings: settings,
	}
}

// Login はセッションログインAPIエンドポイントを処理します。
// - リクエストJSONをLoginReqにバインド
// - バリデーションエラー時は400を返却
// - 認証失敗時は401を返却
// - 成功時はセッションを作成しクッキーを設定して200を返却
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("login validation failed", "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid request"})
		return
	}

	user, err := h.auth.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		// ユーザー列挙攻撃を防止するため、実際のエラーを公開しない
		slog.Warn("login failed", "error", err, "email", req.Email, "remote_addr", c.ClientIP())
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "invalid email or password"})
		return
	}

	now := time.Now()
	session := &entity.Session{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		UserAgent: c.Request.UserAgent(),
		IPAddress: c.ClientIP(),
		CreatedAt: now,
		ExpiresAt: now.Add(time.Duration(h.settings.Session.AgeSeconds) * time.Second),
	}
	if err := h.sessions.Create(c.Request.Context(), session); err != nil {
		slog.Error("session creation failed", "error", err, "user_id", user.ID)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "internal server error"})
		return
	}

	c.SetCookie(
		h.settings.Session.CookieName,
		session.ID,
		h.settings.Session.AgeSeconds,
		"/",
		"",
		h.settings.Session.CookieSecure,
		true, // HttpOnly
	)

	slog.Info("user login successful", "email", user.Email, "remote_addr", c.ClientIP())
	c.JSON(http.StatusOK, api.MessageResponse{Message: "ok"})
}

// Logout は現在のセッションを失効させ、クッキーを削除します。
// AuthRequiredミドルウェアの内側で呼ばれることを前提とします。
func (h *AuthHandler) Logout(c *gin.Context) {
	if key, err := c.Cookie(h.settings.Session.CookieName); err == nil && key != "" {
		// 失効失敗でもクッキーは削除する
		if err := h.sessions.Revoke(c.Request.Context(), key); err != nil {
			slog.Warn("session revoke failed", "error", err)
		}
	}

	c.SetCookie(h.settings.Session.CookieName, "", -1, "/", "", h.settings.Session.CookieSecure, true)
	c.JSON(http.StatusOK, api.MessageResponse{Message: "ok"})
}

// Token はAPIクライアント向けのJWT発行エンドポイントを処理します。
// 認証成功時は署名済みJWTトークン付きで200を返却します。
func (h *AuthHandler) Token(c *gin.Context) {
	var req dto.LoginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("token validation failed", "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid request"})
		return
	}

	user, err := h.auth.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		slog.Warn("token auth failed", "error", err, "email", req.Email, "remote_addr", c.ClientIP())
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "invalid email or password"})
		return
	}

	token, err := h.tokens.GenerateToken(user.ID, user.Email)
	if err != nil {
		slog.Error("token generation failed", "error", err, "user_id", user.ID)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "internal server error"})
		return
	}

	c.JSON(http.StatusOK, api.TokenResponse{Token: token})
}
