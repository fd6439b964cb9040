package main

import (
	"context"
	"log/slog"
	"os/signal"
	"syscall"

	"app_backend/internal/config"
	"app_backend/internal/platform/logger"
	"app_backend/internal/platform/mailer"
	platformredis "app_backend/internal/platform/redis"
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

	// Redis（ワーカーはブローカーなしでは動けない）
	rdb, err := platformredis.NewClient(settings.Redis.URL)
	if err != nil {
		log.Fatal("failed to connect to Redis", "error", err)
	}
	defer func() {
		if err := rdb.Close(); err != nil {
			log.Error("failed to close Redis client", "error", err)
		}
	}()

	// メール
	mail, err := mailer.New(settings)
	if err != nil {
		log.Fatal("failed to configure email backend", "error", err)
	}

	// タスク登録
	queue := taskqueue.New(rdb, settings.Tasks.Queue)
	tasks.Register(queue, mail, settings.Email)

	// SIGINT/SIGTERMで停止
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	worker := taskqueue.NewWorker(queue, log.Logger)
	if err := worker.Run(ctx); err != nil {
		log.Fatal("worker exited", "error", err)
	}
}
