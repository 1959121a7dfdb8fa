package console

import (
	"context"
	"sync"
	"time"

	"github.com/futig/career-console/internal/entity"
	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

// Registry keeps consoles in memory and evicts them after an idle period
type Registry struct {
	deps   Deps
	ttl    time.Duration
	cache  *cache.Cache
	mu     sync.Mutex
	logger *zap.Logger
}

func NewRegistry(deps Deps, ttl, cleanupInterval time.Duration) *Registry {
	r := &Registry{
		deps:   deps,
		ttl:    ttl,
		cache:  cache.New(ttl, cleanupInterval),
		logger: deps.Logger,
	}

	r.cache.OnEvicted(func(id string, v any) {
		c, ok := v.(*Console)
		if !ok {
			return
		}
		r.logger.Info("console evicted", zap.String("console_id", id))
		c.Close(context.Background())
	})

	return r
}

// Create registers a new console with a random id
func (r *Registry) Create(callbackURL string) *Console {
	c := New(uuid.NewString(), callbackURL, r.deps)
	r.cache.Set(c.ID, c, cache.DefaultExpiration)

	r.logger.Info("console created", zap.String("console_id", c.ID))
	return c
}

// Get returns the console and extends its idle deadline
func (r *Registry) Get(id string) (*Console, error) {
	v, ok := r.cache.Get(id)
	if !ok {
		return nil, entity.ErrConsoleNotFound
	}

	c := v.(*Console)
	r.cache.Set(id, c, cache.DefaultExpiration)
	return c, nil
}

// GetOrCreate returns the console with a caller-chosen id, creating it if needed
func (r *Registry) GetOrCreate(id string) *Console {
	r.mu.Lock()
	defer r.mu.Unlock()

	if c, err := r.Get(id); err == nil {
		return c
	}

	// an expired entry may still sit in the cache until the janitor runs; Delete closes it
	r.cache.Delete(id)
	c := New(id, "", r.deps)
	r.cache.Set(id, c, cache.DefaultExpiration)
	r.logger.Info("console created", zap.String("console_id", id))
	return c
}

// Delete closes and removes the console
func (r *Registry) Delete(id string) error {
	if _, ok := r.cache.Get(id); !ok {
		return entity.ErrConsoleNotFound
	}
	r.cache.Delete(id)
	return nil
}

func (r *Registry) Count() int {
	return r.cache.ItemCount()
}

// Close releases every console
func (r *Registry) Close() {
	for id := range r.cache.Items() {
		r.cache.Delete(id)
	}
}
