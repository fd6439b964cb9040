// Package handler はusersフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"app_backend/internal/api"
	"app_backend/internal/app/middleware"
	"app_backend/internal/feature/users/transport/http/dto"
)

// UserHandler はユーザー情報のHTTPリクエストを処理します。
type UserHandler struct{}

// NewUserHandler はUserHandlerの新しいインスタンスを生成します。
func NewUserHandler() *UserHandler {
	return &UserHandler{}
}

// Me は認証済み呼び出し元自身のユーザー情報を返します。
// 認証はミドルウェアで解決済みのため、コンテキストからユーザーを取得するだけです。
func (h *UserHandler) Me(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		// AuthRequiredミドルウェアの外で呼ばれた場合のみ到達する
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "authentication required"})
		return
	}
	c.JSON(http.StatusOK, dto.FromEntity(user))
}
