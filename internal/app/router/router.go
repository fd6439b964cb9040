// Package router assembles the HTTP engine: the ordered middleware chain and
// the route table.
package router

import (
	"strings"

	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"app_backend/internal/app/middleware"
	"app_backend/internal/config"
	adminhandler "app_backend/internal/feature/admin/transport/handler"
	authhandler "app_backend/internal/feature/auth/transport/handler"
	userhandler "app_backend/internal/feature/users/transport/handler"
	"app_backend/internal/platform/http/handler"
)

// New builds the engine for the resolved settings. The middleware chain is
// assembled by name so the production profile can splice entries at a
// validated position instead of relying on slice offsets.
func New(
	settings *config.Settings,
	authHandler *authhandler.AuthHandler,
	userHandler *userhandler.UserHandler,
	adminHandler *adminhandler.AdminHandler,
	sessions middleware.SessionFinder,
	users middleware.UserFinder,
) (*gin.Engine, error) {
	r := gin.New()

	chain, err := buildChain(settings)
	if err != nil {
		return nil, err
	}
	chain.Apply(r)

	authRequired := middleware.AuthRequired(sessions, users, settings.Session.CookieName, settings.SecretKey)

	// 認証不要
	// 導通確認用
	r.GET("/health/", handler.Health)
	r.HEAD("/health/", handler.Health)
	r.OPTIONS("/health/", handler.Health)
	// ログイン（セッション発行）
	r.POST("/auth/login/", authHandler.Login)
	// APIクライアント向けトークン発行
	r.POST("/auth/token/", authHandler.Token)

	// 認証必須のルート
	auth := r.Group("/")
	auth.Use(authRequired)
	{
		auth.POST("/auth/logout/", authHandler.Logout)
		auth.GET("/users/me/", userHandler.Me)
	}

	// 管理画面はスタッフのみ
	admin := r.Group("/" + strings.Trim(settings.AdminURL, "/"))
	admin.Use(authRequired, middleware.StaffRequired())
	{
		admin.GET("/users/", adminHandler.ListUsers)
		admin.GET("/users/add/", adminHandler.AddUserForm)
		admin.POST("/users/", adminHandler.CreateUser)
		admin.GET("/users/:id/", adminHandler.ChangeUser)
		admin.PUT("/users/:id/", adminHandler.UpdateUser)
	}

	return r, nil
}

// buildChain assembles the named middleware chain for the profile.
func buildChain(settings *config.Settings) (middleware.Chain, error) {
	chain := middleware.Chain{
		{Name: "recovery", Handler: gin.Recovery()},
		{Name: "security", Handler: middleware.Security(settings.Security)},
		{Name: "allowedhosts", Handler: middleware.AllowedHosts(settings.AllowedHosts)},
		{Name: "cors", Handler: cors.New(corsConfig(settings))},
		{Name: "requestlog", Handler: middleware.RequestLog()},
	}

	if settings.Profile == config.ProfileProduction {
		var err error
		chain, err = chain.InsertAfter("security", middleware.Named{
			Name:    "static",
			Handler: middleware.Static("/static/", settings.StaticDir),
		})
		if err != nil {
			return nil, err
		}
	}

	if settings.Sentry.DSN != "" {
		chain = append(chain, middleware.Named{
			Name:    "sentry",
			Handler: sentrygin.New(sentrygin.Options{Repanic: true}),
		})
	}

	return chain, nil
}

// corsConfig maps the CORS settings onto gin-contrib/cors. With no explicit
// origins every origin is allowed, which forces credentials off because the
// combination is rejected by browsers anyway.
func corsConfig(settings *config.Settings) cors.Config {
	cfg := cors.DefaultConfig()
	cfg.AllowHeaders = append(cfg.AllowHeaders, "Authorization")
	if len(settings.CORS.AllowedOrigins) == 0 {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = settings.CORS.AllowedOrigins
	cfg.AllowCredentials = settings.CORS.AllowCredentials
	return cfg
}
