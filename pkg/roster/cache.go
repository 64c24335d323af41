package roster

import (
	"errors"
	"sort"
	"sync"

	"github.com/bytedance/sonic"
	jsonpatch "github.com/evanphx/json-patch/v5"
	"github.com/m-mizutani/goerr/v2"
	"go.uber.org/zap"
)

var (
	// ErrInvalidID is returned for identifiers that are not UUIDs.
	ErrInvalidID = errors.New("roster: invalid member id")
	// ErrUnknownMember is returned when a check-in names no cached member.
	ErrUnknownMember = goerr.New("member not in roster")
	// ErrImmutableID is returned when a patch tries to change the member id.
	ErrImmutableID = goerr.New("member id cannot be patched")
)

// Option configures a Cache.
type Option func(*Cache)

// WithLogger attaches a structured logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Cache) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// Cache holds the member records a console session has loaded. It is owned
// by the caller; there is no package-level roster.
type Cache struct {
	mu      sync.RWMutex
	members map[string]Member
	logger  *zap.Logger
}

// NewCache returns an empty cache.
func NewCache(opts ...Option) *Cache {
	c := &Cache{
		members: make(map[string]Member),
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// Put stores a copy of member under its normalised id and returns that id.
func (c *Cache) Put(member Member) (string, error) {
	id, err := NormalizeID(member.ID())
	if err != nil {
		return "", err
	}
	stored := member.clone()
	stored["id"] = id

	c.mu.Lock()
	c.members[id] = stored
	c.mu.Unlock()
	return id, nil
}

// Get returns a copy of the member stored under id. A miss reports false
// instead of a zero member.
func (c *Cache) Get(id string) (Member, bool) {
	key, err := NormalizeID(id)
	if err != nil {
		return nil, false
	}
	c.mu.RLock()
	member, ok := c.members[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	return member.clone(), true
}

// IDs lists cached member ids in sorted order.
func (c *Cache) IDs() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	ids := make([]string, 0, len(c.members))
	for id := range c.members {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Len reports the number of cached members.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.members)
}

// Patch applies an RFC 7386 merge patch to the cached member and returns the
// updated record. Null members of the patch delete keys.
func (c *Cache) Patch(id string, patch []byte) (Member, error) {
	key, err := NormalizeID(id)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	current, ok := c.members[key]
	if !ok {
		return nil, goerr.Wrap(ErrUnknownMember, "patch member", goerr.V("id", key))
	}
	original, err := sonic.Marshal(current)
	if err != nil {
		return nil, goerr.Wrap(err, "encode member", goerr.V("id", key))
	}
	merged, err := jsonpatch.MergePatch(original, patch)
	if err != nil {
		return nil, goerr.Wrap(err, "apply merge patch", goerr.V("id", key))
	}

	var updated Member
	if err := sonic.Unmarshal(merged, &updated); err != nil {
		return nil, goerr.Wrap(err, "decode patched member", goerr.V("id", key))
	}
	if updated.ID() != key {
		return nil, goerr.Wrap(ErrImmutableID, "patch member", goerr.V("id", key))
	}

	c.members[key] = updated
	c.logger.Debug("member patched", zap.String("id", key), zap.Int("bytes", len(patch)))
	return updated.clone(), nil
}

// CheckIn resolves a scanned badge payload to a cached member.
func (c *Cache) CheckIn(raw string) (Member, error) {
	id, err := NormalizeID(raw)
	if err != nil {
		return nil, err
	}
	member, ok := c.Get(id)
	if !ok {
		return nil, goerr.Wrap(ErrUnknownMember, "check in", goerr.V("id", id))
	}
	c.logger.Info("member checked in", zap.String("id", id), zap.String("status", member.Status()))
	return member, nil
}
