// Package testutil provides the shared test fixtures: a user factory, an
// in-memory application stack and a logged-in HTTP client.
package testutil

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"app_backend/internal/feature/users/domain/entity"
	"app_backend/internal/feature/users/usecase"
)

// DefaultPassword is the password every factory-built user authenticates with
// unless a test overrides it.
const DefaultPassword = "testpass123"

var emailSeq atomic.Uint64

// UserFactory persists users with fake but realistic data.
type UserFactory struct {
	users *usecase.UserManager
}

// NewUserFactory builds a factory on top of the given manager.
func NewUserFactory(users *usecase.UserManager) *UserFactory {
	return &UserFactory{users: users}
}

// UserOption customizes one factory-built user.
type UserOption func(*userParams)

type userParams struct {
	email    string
	password string
	opts     usecase.CreateParams
}

func WithEmail(email string) UserOption {
	return func(p *userParams) { p.email = email }
}

func WithPassword(password string) UserOption {
	return func(p *userParams) { p.password = password }
}

func WithName(first, last string) UserOption {
	return func(p *userParams) {
		p.opts.FirstName = first
		p.opts.LastName = last
	}
}

func Staff() UserOption {
	return func(p *userParams) { yes := true; p.opts.IsStaff = &yes }
}

func Superuser() UserOption {
	return func(p *userParams) { yes := true; p.opts.IsSuperuser = &yes }
}

func Inactive() UserOption {
	return func(p *userParams) { no := false; p.opts.IsActive = &no }
}

// Create persists a user and fails the test on error.
func (f *UserFactory) Create(t *testing.T, opts ...UserOption) *entity.User {
	t.Helper()

	p := userParams{
		email:    uniqueEmail(),
		password: DefaultPassword,
		opts: usecase.CreateParams{
			FirstName: gofakeit.FirstName(),
			LastName:  gofakeit.LastName(),
		},
	}
	for _, opt := range opts {
		opt(&p)
	}

	user, err := f.users.CreateUser(context.Background(), p.email, p.password, p.opts)
	require.NoError(t, err)
	return user
}

// CreateSuperuser persists a superuser and fails the test on error.
func (f *UserFactory) CreateSuperuser(t *testing.T, opts ...UserOption) *entity.User {
	t.Helper()

	p := userParams{email: uniqueEmail(), password: DefaultPassword}
	for _, opt := range opts {
		opt(&p)
	}

	user, err := f.users.CreateSuperuser(context.Background(), p.email, p.password, p.opts)
	require.NoError(t, err)
	return user
}

// uniqueEmail produces a fake address that cannot collide within a test run.
// gofakeitのメールは重複し得るため連番を混ぜる。
func uniqueEmail() string {
	n := emailSeq.Add(1)
	local := strings.ToLower(gofakeit.Username())
	return fmt.Sprintf("%s.%d@example.com", local, n)
}

// HashPassword hashes at the minimum cost. Tests never need slow hashes.
func HashPassword(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

// NoopLogger returns a logger that discards everything.
func NoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
