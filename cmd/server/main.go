package main

import (
	"log/slog"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/gin-gonic/gin"

	"app_backend/internal/app/router"
	"app_backend/internal/config"
	adminhandler "app_backend/internal/feature/admin/transport/handler"
	authhandler "app_backend/internal/feature/auth/transport/handler"
	"app_backend/internal/feature/users/adapters"
	userhandler "app_backend/internal/feature/users/transport/handler"
	"app_backend/internal/feature/users/usecase"
	"app_backend/internal/platform/db"
	jwtauth "app_backend/internal/platform/jwt"
	"app_backend/internal/platform/logger"
	"app_backend/internal/platform/mailer"
	platformredis "app_backend/internal/platform/redis"
	"app_backend/internal/platform/session"
	"app_backend/internal/platform/taskqueue"
	"app_backend/internal/tasks"
)

func main() {
	// 設定
	settings, err := config.Load()
	if err != nil {
		logger.New(0).Fatal("failed to load settings", "error", err)
	}

	log := logger.New(settings.LogLevel)
	slog.SetDefault(log.Logger)

	if !settings.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	// Sentry（DSN設定時のみ）
	if settings.Sentry.DSN != "" {
		err := sentry.Init(sentry.ClientOptions{
			Dsn:              settings.Sentry.DSN,
			Environment:      settings.Sentry.Environment,
			TracesSampleRate: settings.Sentry.TracesSampleRate,
		})
		if err != nil {
			log.Fatal("failed to init sentry", "error", err)
		}
		defer sentry.Flush(2 * time.Second)
	}

	// db
	gdb, err := db.Open(settings)
	if err != nil {
		log.Fatal("failed to open database", "error", err)
	}

	// Redis（セッションストアとブローカーを兼ねるため必須）
	rdb, err := platformredis.NewClient(settings.Redis.URL)
	if err != nil {
		log.Fatal("failed to connect to Redis", "error", err)
	}
	defer func() {
		if err := rdb.Close(); err != nil {
			log.Error("failed to close Redis client", "error", err)
		}
	}()

	// Repository
	userRepo := adapters.NewUserGorm(gdb)

	// Redisキャッシュでラップ
	cachedUserRepo := adapters.NewCachingUserRepository(rdb, 5*time.Minute, userRepo, "users")

	// Usecase
	userManager := usecase.NewUserManager(cachedUserRepo, settings.BcryptCost)

	// セッションとトークン
	sessions := session.NewSessionRedis(rdb, "session")
	tokens := jwtauth.NewGenerator(settings.SecretKey, time.Duration(settings.JWT.ExpirationSeconds)*time.Second)

	// メール
	mail, err := mailer.New(settings)
	if err != nil {
		log.Fatal("failed to configure email backend", "error", err)
	}

	// タスクキュー
	queueOpts := []taskqueue.Option{}
	if settings.Tasks.Eager {
		queueOpts = append(queueOpts, taskqueue.WithEager())
	}
	queue := taskqueue.New(rdb, settings.Tasks.Queue, queueOpts...)
	tasks.Register(queue, mail, settings.Email)

	// Handler
	authH := authhandler.NewAuthHandler(userManager, sessions, tokens, settings)
	userH := userhandler.NewUserHandler()
	adminH := adminhandler.NewAdminHandler(userManager, sessions)

	// ルータ生成
	engine, err := router.New(settings, authH, userH, adminH, sessions, cachedUserRepo)
	if err != nil {
		log.Fatal("failed to build router", "error", err)
	}

	log.Info("server starting", "profile", settings.Profile, "port", settings.Port)
	if err := engine.Run(":" + settings.Port); err != nil {
		log.Fatal("server exited", "error", err)
	}
}
