// Package access decides whether a chat user may use the bot.
package access

import (
	"context"
	"sync"
	"time"

	"itinvent-bot/internal/pkg/logger"

	"github.com/patrickmn/go-cache"
)

// DenialText is shown to every rejected user.
const DenialText = "Access denied. Ask an administrator to add you to the allowed list."

// User is an inbound identity together with the groups the transport reports for it.
type User struct {
	ID     string
	Groups []string
}

// List is an allow-list snapshot.
type List struct {
	Users  []string
	Groups []string
}

// Source loads the current allow-list from durable storage.
type Source interface {
	LoadAccessList(ctx context.Context) (List, error)
}

// Cache answers authorization checks from an in-memory snapshot that is never older than the staleness bound.
type Cache struct {
	source    Source
	staleness time.Duration
	logger    logger.ILogger
	now       func() time.Time

	mu       sync.RWMutex
	users    map[string]bool
	groups   map[string]bool
	loadedAt time.Time
	loaded   bool

	decisions *cache.Cache
}

func NewCache(source Source, staleness time.Duration, log logger.ILogger) *Cache {
	if staleness <= 0 {
		staleness = 5 * time.Minute
	}
	return &Cache{
		source:    source,
		staleness: staleness,
		logger:    log,
		now:       time.Now,
		users:     make(map[string]bool),
		groups:    make(map[string]bool),
		decisions: cache.New(staleness, staleness),
	}
}

// IsAuthorized reports whether user, or any of its groups, is allowed.
func (c *Cache) IsAuthorized(ctx context.Context, user User) bool {
	if user.ID == "" {
		return false
	}
	c.ensureFresh(ctx)

	key := decisionKey(user)
	if v, ok := c.decisions.Get(key); ok {
		return v.(bool)
	}

	c.mu.RLock()
	allowed := c.users[user.ID]
	for _, g := range user.Groups {
		if allowed {
			break
		}
		allowed = c.groups[g]
	}
	c.mu.RUnlock()

	c.decisions.Set(key, allowed, cache.DefaultExpiration)
	if !allowed {
		c.logger.Warn("ACCESS", "Unauthorized user rejected", map[string]interface{}{"user_id": user.ID})
	}
	return allowed
}

func (c *Cache) ensureFresh(ctx context.Context) {
	c.mu.RLock()
	fresh := c.loaded && c.now().Sub(c.loadedAt) < c.staleness
	c.mu.RUnlock()
	if fresh {
		return
	}
	if err := c.Refresh(ctx); err != nil {
		c.logger.Error("ACCESS", "Failed to refresh access list, keeping previous snapshot", map[string]interface{}{"error": err.Error()})
	}
}

// Refresh reloads the allow-list and drops memoised decisions.
func (c *Cache) Refresh(ctx context.Context) error {
	list, err := c.source.LoadAccessList(ctx)
	if err != nil {
		return err
	}

	users := make(map[string]bool, len(list.Users))
	for _, u := range list.Users {
		users[u] = true
	}
	groups := make(map[string]bool, len(list.Groups))
	for _, g := range list.Groups {
		groups[g] = true
	}

	c.mu.Lock()
	c.users = users
	c.groups = groups
	c.loadedAt = c.now()
	c.loaded = true
	c.mu.Unlock()

	c.decisions.Flush()
	c.logger.Debug("ACCESS", "Access list refreshed", map[string]interface{}{"users": len(users), "groups": len(groups)})
	return nil
}

// Run refreshes the list every staleness interval until ctx is done.
func (c *Cache) Run(ctx context.Context) {
	ticker := time.NewTicker(c.staleness)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := c.Refresh(ctx); err != nil {
				c.logger.Error("ACCESS", "Scheduled access refresh failed", map[string]interface{}{"error": err.Error()})
			}
		}
	}
}

func decisionKey(u User) string {
	key := u.ID
	for _, g := range u.Groups {
		key += "|" + g
	}
	return key
}

// StaticSource serves a fixed list.
type StaticSource List

func (s StaticSource) LoadAccessList(ctx context.Context) (List, error) {
	return List(s), nil
}
