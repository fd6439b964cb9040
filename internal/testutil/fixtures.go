package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"app_backend/internal/app/router"
	"app_backend/internal/config"
	adminhandler "app_backend/internal/feature/admin/transport/handler"
	authhandler "app_backend/internal/feature/auth/transport/handler"
	"app_backend/internal/feature/users/adapters"
	"app_backend/internal/feature/users/domain/entity"
	userhandler "app_backend/internal/feature/users/transport/handler"
	"app_backend/internal/feature/users/usecase"
	"app_backend/internal/platform/db"
	jwtauth "app_backend/internal/platform/jwt"
	"app_backend/internal/platform/session"
)

// App is a fully wired application instance on in-memory backends: sqlite for
// the database and miniredis for sessions and the cache.
type App struct {
	Settings *config.Settings
	DB       *gorm.DB
	Redis    *redis.Client
	Users    *usecase.UserManager
	Sessions *session.SessionRedis
	Factory  *UserFactory
	Router   *gin.Engine
}

// NewApp assembles the test stack the way cmd/server wires the real one.
func NewApp(t *testing.T) *App {
	t.Helper()
	gin.SetMode(gin.TestMode)

	settings, err := config.LoadProfile(config.ProfileTest)
	require.NoError(t, err)

	gdb, err := db.Open(settings)
	require.NoError(t, err)

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	repo := adapters.NewCachingUserRepository(client, 5*time.Minute, adapters.NewUserGorm(gdb), "users")
	manager := usecase.NewUserManager(repo, settings.BcryptCost)
	sessions := session.NewSessionRedis(client, "session")
	tokens := jwtauth.NewGenerator(settings.SecretKey, time.Duration(settings.JWT.ExpirationSeconds)*time.Second)

	engine, err := router.New(
		settings,
		authhandler.NewAuthHandler(manager, sessions, tokens, settings),
		userhandler.NewUserHandler(),
		adminhandler.NewAdminHandler(manager, sessions),
		sessions,
		repo,
	)
	require.NoError(t, err)

	return &App{
		Settings: settings,
		DB:       gdb,
		Redis:    client,
		Users:    manager,
		Sessions: sessions,
		Factory:  NewUserFactory(manager),
		Router:   engine,
	}
}

// NewRequest builds a request aimed at the test host. The test profile's
// allowed-hosts list accepts "testserver", mirroring how test clients
// conventionally present themselves.
func (a *App) NewRequest(method, target string, body io.Reader) *http.Request {
	req := httptest.NewRequest(method, target, body)
	req.Host = "testserver"
	return req
}

// Do runs one request through the router and returns the recorder.
func (a *App) Do(t *testing.T, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	a.Router.ServeHTTP(w, req)
	return w
}

// Login authenticates through the login endpoint and returns the session
// cookie the fixture client sends on subsequent requests.
func (a *App) Login(t *testing.T, email, password string) *http.Cookie {
	t.Helper()

	body, err := json.Marshal(map[string]string{"email": email, "password": password})
	require.NoError(t, err)

	req := a.NewRequest(http.MethodPost, "/auth/login/", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := a.Do(t, req)
	require.Equal(t, http.StatusOK, w.Code, "login failed: %s", w.Body.String())

	for _, c := range w.Result().Cookies() {
		if c.Name == a.Settings.Session.CookieName {
			return c
		}
	}
	t.Fatalf("session cookie %q not set by login", a.Settings.Session.CookieName)
	return nil
}

// AuthenticatedUser creates a user and logs it in.
func (a *App) AuthenticatedUser(t *testing.T, opts ...UserOption) (*entity.User, *http.Cookie) {
	t.Helper()
	user := a.Factory.Create(t, opts...)
	return user, a.Login(t, user.Email, DefaultPassword)
}

// AuthenticatedAdmin creates a superuser and logs it in.
func (a *App) AuthenticatedAdmin(t *testing.T) (*entity.User, *http.Cookie) {
	t.Helper()
	admin := a.Factory.CreateSuperuser(t)
	return admin, a.Login(t, admin.Email, DefaultPassword)
}
