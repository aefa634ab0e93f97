package cache

import (
	"context"
	"sync"
	"time"

	"github.com/ReneKroon/ttlcache"

	"cookinghub/internal/account"
	"cookinghub/internal/common"
)

// Cache serves GetUser from memory for ttl. Listing and search always go
// to the backing store.
//
// Every write bumps the username's generation after it reaches the
// backing store. A read only fills the cache if the generation it saw
// before fetching is still current, so a fetch that overlapped a write
// never outlives it.
type Cache struct {
	db    account.Store
	cache *ttlcache.Cache

	mu          sync.Mutex
	generations map[string]uint64
}

func NewInCache(db account.Store, ttl time.Duration) account.Store {
	cache := ttlcache.NewCache()
	cache.SetTTL(ttl)
	return &Cache{
		db:          db,
		cache:       cache,
		generations: make(map[string]uint64),
	}
}

func (c *Cache) CreateUser(ctx context.Context, user *account.User) (*account.User, error) {
	created, err := c.db.CreateUser(ctx, user)
	c.invalidate(user.Username)
	return created, err
}

func (c *Cache) GetUser(ctx context.Context, username string) (*account.User, error) {
	if cached, ok := c.cache.Get(username); ok {
		return cached.(*account.User).Clone(), nil
	}

	generation := c.generation(username)
	user, err := c.db.GetUser(ctx, username)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	if c.generations[username] == generation {
		c.cache.Set(username, user.Clone())
	}
	c.mu.Unlock()

	return user, nil
}

func (c *Cache) AppendMedia(ctx context.Context, username string, kind common.MediaFileType, item account.MediaItem) error {
	err := c.db.AppendMedia(ctx, username, kind, item)
	c.invalidate(username)
	return err
}

func (c *Cache) generation(username string) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generations[username]
}

func (c *Cache) invalidate(username string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.generations[username]++
	c.cache.Remove(username)
}

func (c *Cache) ListUsers(ctx context.Context) ([]*account.User, error) {
	return c.db.ListUsers(ctx)
}

func (c *Cache) SearchUsers(ctx context.Context, term string) ([]*account.User, error) {
	return c.db.SearchUsers(ctx, term)
}

func (c *Cache) ListCredentials(ctx context.Context) (map[string]string, error) {
	return c.db.ListCredentials(ctx)
}

// Close stops the expiry goroutine.
func (c *Cache) Close() {
	c.cache.Close()
}
