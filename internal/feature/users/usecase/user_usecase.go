// Package usecase はusersフィーチャーのビジネスロジックを実装します。
package usecase

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"app_backend/internal/feature/users/domain"
	"app_backend/internal/feature/users/domain/entity"
)

const (
	// minPasswordLength はパスワードの最低文字数を定義します。
	minPasswordLength = 8
)

// UserRepository はユーザーエンティティの永続化層を抽象化します。
// Goの慣例に従い、インターフェースはプロバイダー（adapters）ではなくコンシューマー（usecase）が定義します。
type UserRepository interface {
	// Create は新しいユーザーをストレージに永続化します。
	// 同じメールアドレスのユーザーが既に存在する場合、エラーを返します。
	Create(ctx context.Context, user *entity.User) error

	// FindByEmail は指定されたメールアドレスに一致するユーザーを取得します。
	FindByEmail(ctx context.Context, email string) (*entity.User, error)

	// FindByID は指定されたIDに一致するユーザーを取得します。
	FindByID(ctx context.Context, id uint) (*entity.User, error)

	// List はすべてのユーザーをID順で取得します。
	List(ctx context.Context) ([]*entity.User, error)

	// Update は既存ユーザーの変更を永続化します。
	Update(ctx context.Context, user *entity.User) error
}

// CreateParams carries the optional fields of user creation. The boolean
// flags are pointers so an explicit false can be told apart from unset.
type CreateParams struct {
	FirstName   string
	LastName    string
	IsStaff     *bool
	IsSuperuser *bool
	IsActive    *bool
}

// UserManager constructs and authenticates identity records.
type UserManager struct {
	users    UserRepository
	hashCost int
}

// NewUserManager はUserManagerの新しいインスタンスを生成します。
// hashCostはbcryptのコストパラメータで、テストプロファイルでは最小値が使われます。
func NewUserManager(users UserRepository, hashCost int) *UserManager {
	if hashCost == 0 {
		hashCost = bcrypt.DefaultCost
	}
	return &UserManager{users: users, hashCost: hashCost}
}

// validatePassword はパスワードがセキュリティ要件を満たしているかチェックします。
func validatePassword(password string) error {
	if len(password) < minPasswordLength {
		return fmt.Errorf("password must be at least %d characters long", minPasswordLength)
	}
	return nil
}

// CreateUser registers a regular user with a normalized email and a hashed
// password. The email must be non-empty and unique.
func (m *UserManager) CreateUser(ctx context.Context, email, password string, params CreateParams) (*entity.User, error) {
	return m.create(ctx, email, password, params)
}

// CreateSuperuser registers a privileged user. The staff and superuser flags
// default to true; an explicit false for either is a configuration error.
func (m *UserManager) CreateSuperuser(ctx context.Context, email, password string, params CreateParams) (*entity.User, error) {
	if params.IsStaff != nil && !*params.IsStaff {
		return nil, domain.ErrSuperuserFlags
	}
	if params.IsSuperuser != nil && !*params.IsSuperuser {
		return nil, domain.ErrSuperuserFlags
	}

	on := true
	params.IsStaff = &on
	params.IsSuperuser = &on
	return m.create(ctx, email, password, params)
}

func (m *UserManager) create(ctx context.Context, email, password string, params CreateParams) (*entity.User, error) {
	email = NormalizeEmail(email)
	if email == "" {
		return nil, domain.ErrEmailRequired
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), m.hashCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &entity.User{
		Email:       email,
		FirstName:   params.FirstName,
		LastName:    params.LastName,
		Password:    string(hashed),
		IsStaff:     params.IsStaff != nil && *params.IsStaff,
		IsSuperuser: params.IsSuperuser != nil && *params.IsSuperuser,
		IsActive:    params.IsActive == nil || *params.IsActive,
	}
	if err := m.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Authenticate はユーザーを認証し、成功時にユーザーを返します。
// タイミング攻撃を防止するため、ユーザーが存在しない場合でもbcrypt比較を実行します。
func (m *UserManager) Authenticate(ctx context.Context, email, password string) (*entity.User, error) {
	user, err := m.users.FindByEmail(ctx, NormalizeEmail(email))

	// ユーザーが存在しない場合のタイミング攻撃緩和用ダミーハッシュ
	// bcrypt.CompareHashAndPasswordが常に呼ばれることを保証する
	passwordHash := "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy" // ダミーハッシュ
	if err == nil {
		passwordHash = user.Password
	}

	compareErr := bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte(password))

	// ユーザー未検出またはパスワード不一致の場合、汎用エラーを返す
	if err != nil || compareErr != nil {
		return nil, domain.ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, domain.ErrInvalidCredentials
	}

	now := time.Now()
	user.LastLogin = &now
	// LastLoginの更新失敗でログインを拒否しない
	_ = m.users.Update(ctx, user)

	return user, nil
}

// GetByID returns the user with the given ID.
func (m *UserManager) GetByID(ctx context.Context, id uint) (*entity.User, error) {
	return m.users.FindByID(ctx, id)
}

// List returns all users ordered by ID.
func (m *UserManager) List(ctx context.Context) ([]*entity.User, error) {
	return m.users.List(ctx)
}

// SetPassword replaces the user's password with a new hash. The change is
// not persisted until Update is called.
func (m *UserManager) SetPassword(user *entity.User, password string) error {
	if err := validatePassword(password); err != nil {
		return err
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), m.hashCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	user.Password = string(hashed)
	return nil
}

// Update persists changes to an existing user.
func (m *UserManager) Update(ctx context.Context, user *entity.User) error {
	user.Email = NormalizeEmail(user.Email)
	if user.Email == "" {
		return domain.ErrEmailRequired
	}
	return m.users.Update(ctx, user)
}
