package adapters

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"app_backend/internal/feature/users/domain/entity"
	"app_backend/internal/feature/users/usecase"
)

// CachingUserRepository decorates a UserRepository with Redis caching of
// ID lookups. It implements the decorator pattern, transparently adding
// caching without modifying the underlying repository.
//
// Only FindByID is cached: the authentication middleware resolves the
// current user by ID on every authenticated request, which is the hot path.
type CachingUserRepository struct {
	inner     usecase.UserRepository
	rdb       *redis.Client
	ttl       time.Duration
	namespace string
}

var _ usecase.UserRepository = (*CachingUserRepository)(nil)

// NewCachingUserRepository decorates a UserRepository with Redis caching.
// If ttl is 0, it defaults to 5 minutes. If namespace is empty, it uses "users".
func NewCachingUserRepository(rdb *redis.Client, ttl time.Duration, inner usecase.UserRepository, namespace string) *CachingUserRepository {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if namespace == "" {
		namespace = "users"
	}
	return &CachingUserRepository{
		inner:     inner,
		rdb:       rdb,
		ttl:       ttl,
		namespace: namespace,
	}
}

func (c *CachingUserRepository) cacheKey(id uint) string {
	return fmt.Sprintf("%s:id:%d", c.namespace, id)
}

// cacheRecord is the cache serialization of a user. The entity excludes its
// Password field from JSON for API responses, so marshaling the entity
// directly would drop the hash and a cache hit would hand back a user that
// can never authenticate again once persisted.
type cacheRecord struct {
	entity.User
	PasswordHash string `json:"password_hash"`
}

func toCacheRecord(u *entity.User) cacheRecord {
	return cacheRecord{User: *u, PasswordHash: u.Password}
}

func (r cacheRecord) toEntity() *entity.User {
	u := r.User
	u.Password = r.PasswordHash
	return &u
}

// Create persists a new user through the underlying repository.
func (c *CachingUserRepository) Create(ctx context.Context, u *entity.User) error {
	return c.inner.Create(ctx, u)
}

// FindByID retrieves a user, checking cache first then falling back to the
// database.
func (c *CachingUserRepository) FindByID(ctx context.Context, id uint) (*entity.User, error) {
	// Bypass cache if Redis is not configured
	if c.rdb == nil {
		return c.inner.FindByID(ctx, id)
	}

	key := c.cacheKey(id)

	// 1) Check cache
	if b, err := c.rdb.Get(ctx, key).Bytes(); err == nil && len(b) > 0 {
		var rec cacheRecord
		if err := json.Unmarshal(b, &rec); err == nil {
			return rec.toEntity(), nil
		}
		// Delete corrupted cache entry
		_ = c.rdb.Del(ctx, key).Err()
	}

	// 2) Fallback to database
	out, err := c.inner.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	// 3) Store in cache (best effort)
	if b, err := json.Marshal(toCacheRecord(out)); err == nil {
		_ = c.rdb.Set(ctx, key, b, c.ttl).Err()
	}

	return out, nil
}

// FindByEmail always hits the underlying repository. Email lookups happen
// only at login time and must see fresh data.
func (c *CachingUserRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	return c.inner.FindByEmail(ctx, email)
}

// List always hits the underlying repository.
func (c *CachingUserRepository) List(ctx context.Context) ([]*entity.User, error) {
	return c.inner.List(ctx)
}

// Update persists changes and invalidates the cached entry for the user.
func (c *CachingUserRepository) Update(ctx context.Context, u *entity.User) error {
	if err := c.inner.Update(ctx, u); err != nil {
		return err
	}
	if c.rdb != nil {
		_ = c.rdb.Del(ctx, c.cacheKey(u.ID)).Err() // Best effort
	}
	return nil
}
