// Package handler はプラットフォームレベルのエンドポイント用HTTPハンドラーを提供します。
package handler

import (
	"github.com/gin-gonic/gin"

	"app_backend/internal/api"
)

// Health はサービスヘルスチェック用の /health/ エンドポイントを処理します。
// 認証不要・副作用なしで、監視用の固定ペイロードを返します。
func Health(c *gin.Context) {
	// 明示的にキャッシュを防止
	c.Header("Cache-Control", "no-store")

	// すべてのGET/HEAD/OPTIONSリクエストに対して200または204を返す
	switch c.Request.Method {
	case "HEAD":
		c.Status(200)
	case "OPTIONS":
		c.Status(204)
	default:
		c.JSON(200, api.HealthResponse{Status: "ok", Message: "API is running"})
	}
}
