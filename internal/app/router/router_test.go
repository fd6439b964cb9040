package router_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"app_backend/internal/testutil"
)

func TestHealthEndpoint(t *testing.T) {
	app := testutil.NewApp(t)

	w := app.Do(t, app.NewRequest(http.MethodGet, "/health/", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok","message":"API is running"}`, w.Body.String())
	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
}

func TestHealthEndpoint_UnknownHostRejected(t *testing.T) {
	app := testutil.NewApp(t)

	req := app.NewRequest(http.MethodGet, "/health/", nil)
	req.Host = "evil.example.com"
	w := app.Do(t, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUsersMe_RequiresAuthentication(t *testing.T) {
	app := testutil.NewApp(t)

	w := app.Do(t, app.NewRequest(http.MethodGet, "/users/me/", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestUsersMe_WithSessionCookie(t *testing.T) {
	app := testutil.NewApp(t)
	user, cookie := app.AuthenticatedUser(t)

	req := app.NewRequest(http.MethodGet, "/users/me/", nil)
	req.AddCookie(cookie)
	w := app.Do(t, req)

	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, user.Email, body["email"])
	assert.Equal(t, false, body["is_staff"])
	_, hasPassword := body["password"]
	assert.False(t, hasPassword)
}

func TestUsersMe_WithBearerToken(t *testing.T) {
	app := testutil.NewApp(t)
	user := app.Factory.Create(t)

	// トークンを発行してから保護ルートへ
	body, _ := json.Marshal(map[string]string{"email": user.Email, "password": testutil.DefaultPassword})
	req := app.NewRequest(http.MethodPost, "/auth/token/", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := app.Do(t, req)
	require.Equal(t, http.StatusOK, w.Code)

	var tokenRes struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &tokenRes))
	require.NotEmpty(t, tokenRes.Token)

	req = app.NewRequest(http.MethodGet, "/users/me/", nil)
	req.Header.Set("Authorization", "Bearer "+tokenRes.Token)
	w = app.Do(t, req)

	require.Equal(t, http.StatusOK, w.Code)

	var me map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &me))
	assert.Equal(t, user.Email, me["email"])
}

func TestLogin_BadCredentials(t *testing.T) {
	app := testutil.NewApp(t)
	user := app.Factory.Create(t)

	body, _ := json.Marshal(map[string]string{"email": user.Email, "password": "wrong-password"})
	req := app.NewRequest(http.MethodPost, "/auth/login/", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := app.Do(t, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLogout_RevokesSession(t *testing.T) {
	app := testutil.NewApp(t)
	_, cookie := app.AuthenticatedUser(t)

	req := app.NewRequest(http.MethodPost, "/auth/logout/", nil)
	req.AddCookie(cookie)
	w := app.Do(t, req)
	require.Equal(t, http.StatusOK, w.Code)

	// 失効後のセッションでは保護ルートに入れない
	req = app.NewRequest(http.MethodGet, "/users/me/", nil)
	req.AddCookie(cookie)
	w = app.Do(t, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAdmin_ForbiddenForNonStaff(t *testing.T) {
	app := testutil.NewApp(t)
	_, cookie := app.AuthenticatedUser(t)

	req := app.NewRequest(http.MethodGet, "/admin/users/", nil)
	req.AddCookie(cookie)
	w := app.Do(t, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestAdmin_ViewsRenderForSuperuser(t *testing.T) {
	app := testutil.NewApp(t)
	admin, cookie := app.AuthenticatedAdmin(t)

	paths := []string{
		"/admin/users/",
		"/admin/users/add/",
		fmt.Sprintf("/admin/users/%d/", admin.ID),
	}
	for _, path := range paths {
		req := app.NewRequest(http.MethodGet, path, nil)
		req.AddCookie(cookie)
		w := app.Do(t, req)
		assert.Equalf(t, http.StatusOK, w.Code, "GET %s: %s", path, w.Body.String())
	}
}

func TestAdmin_UpdateUser_PasswordSurvivesCachedRead(t *testing.T) {
	app := testutil.NewApp(t)
	_, adminCookie := app.AuthenticatedAdmin(t)

	// 認証リクエストでユーザーキャッシュを温めてから管理画面で更新する
	user, userCookie := app.AuthenticatedUser(t)
	req := app.NewRequest(http.MethodGet, "/users/me/", nil)
	req.AddCookie(userCookie)
	require.Equal(t, http.StatusOK, app.Do(t, req).Code)

	body, _ := json.Marshal(map[string]string{"first_name": "Renamed"})
	req = app.NewRequest(http.MethodPut, fmt.Sprintf("/admin/users/%d/", user.ID), bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.AddCookie(adminCookie)
	w := app.Do(t, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// 更新後も元のパスワードでログインできる
	cookie := app.Login(t, user.Email, testutil.DefaultPassword)
	assert.NotEmpty(t, cookie.Value)

	updated, err := app.Users.GetByID(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.FirstName)
}

func TestAdmin_DeactivationRevokesSessions(t *testing.T) {
	app := testutil.NewApp(t)
	_, adminCookie := app.AuthenticatedAdmin(t)
	user, userCookie := app.AuthenticatedUser(t)

	body, _ := json.Marshal(map[string]any{"is_active": false})
	req := app.NewRequest(http.MethodPut, fmt.Sprintf("/admin/users/%d/", user.ID), bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.AddCookie(adminCookie)
	require.Equal(t, http.StatusOK, app.Do(t, req).Code)

	// セッションストア上でも失効している
	sessions, err := app.Sessions.FindByUserID(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Empty(t, sessions)

	// 既存クッキーでは保護ルートに入れない
	req = app.NewRequest(http.MethodGet, "/users/me/", nil)
	req.AddCookie(userCookie)
	assert.Equal(t, http.StatusUnauthorized, app.Do(t, req).Code)
}

func TestAdmin_CreateUser(t *testing.T) {
	app := testutil.NewApp(t)
	_, cookie := app.AuthenticatedAdmin(t)

	body, _ := json.Marshal(map[string]any{
		"email":    "new.user@example.com",
		"password": "a-strong-password",
		"is_staff": true,
	})
	req := app.NewRequest(http.MethodPost, "/admin/users/", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.AddCookie(cookie)
	w := app.Do(t, req)

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	created, err := app.Users.Authenticate(context.Background(), "new.user@example.com", "a-strong-password")
	require.NoError(t, err)
	assert.True(t, created.IsStaff)
}
