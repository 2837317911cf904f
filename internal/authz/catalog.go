package authz

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// grantsVersionKey is the externally observable invalidation signal. Every
// successful matrix save increments it; workers reload when it moves.
const grantsVersionKey = "authz:grants:version"

// Catalog loads and caches the role/permission grant matrix. The cache is
// per process and stamped with the grants version held in redis, never a
// source of truth on its own.
type Catalog struct {
	store  Store
	cache  *redis.Client
	logger *slog.Logger
	group  singleflight.Group

	mu      sync.RWMutex
	matrix  Matrix
	perms   []Permission
	version int64
	loaded  bool
}

// NewCatalog constructs a Catalog. cache may be nil, in which case the
// in-process copy is only refreshed through Invalidate.
func NewCatalog(store Store, cache *redis.Client, logger *slog.Logger) *Catalog {
	if logger == nil {
		logger = slog.Default()
	}
	return &Catalog{store: store, cache: cache, logger: logger}
}

// Can reports whether the principal holds the permission code. Superadmin
// is granted everything without touching the store. Any miss, unknown code
// or load failure reads as false.
func (c *Catalog) Can(ctx context.Context, p Principal, code string) bool {
	if p.Role == RoleSuperadmin {
		return true
	}
	matrix, _ := c.snapshot(ctx)
	return matrix.Granted(p.Role, code)
}

// PermissionsFor returns the set of codes granted to the principal. For
// superadmin that is the whole catalog.
func (c *Catalog) PermissionsFor(ctx context.Context, p Principal) map[string]struct{} {
	matrix, perms := c.snapshot(ctx)
	granted := make(map[string]struct{})
	if p.Role == RoleSuperadmin {
		for _, perm := range perms {
			granted[perm.Code] = struct{}{}
		}
		return granted
	}
	for code, ok := range matrix[p.Role] {
		if ok {
			granted[code] = struct{}{}
		}
	}
	return granted
}

// Matrix returns the full cached matrix together with the catalog, for the
// administrative settings screen.
func (c *Catalog) Matrix(ctx context.Context) (Matrix, []Permission) {
	return c.snapshot(ctx)
}

// KnownCodes returns the codes present in the persisted catalog.
func (c *Catalog) KnownCodes(ctx context.Context) map[string]struct{} {
	_, perms := c.snapshot(ctx)
	known := make(map[string]struct{}, len(perms))
	for _, p := range perms {
		known[p.Code] = struct{}{}
	}
	return known
}

// Invalidate drops the in-process copy and bumps the shared grants version
// so other workers reload as well. It returns once no subsequent read in
// this process can observe the previous matrix.
func (c *Catalog) Invalidate(ctx context.Context) {
	c.mu.Lock()
	c.loaded = false
	c.matrix = nil
	c.perms = nil
	c.mu.Unlock()

	if c.cache == nil {
		return
	}
	if err := c.cache.Incr(ctx, grantsVersionKey).Err(); err != nil {
		c.logger.Warn("authz: bump grants version", slog.Any("error", err))
	}
}

// snapshot returns the current matrix and catalog, loading them when the
// cache is cold or the shared grants version has moved. On store failure it
// returns an empty matrix: the engine fails closed, never open.
func (c *Catalog) snapshot(ctx context.Context) (Matrix, []Permission) {
	version := c.sharedVersion(ctx)

	c.mu.RLock()
	if c.loaded && c.version == version {
		matrix, perms := c.matrix, c.perms
		c.mu.RUnlock()
		return matrix, perms
	}
	c.mu.RUnlock()

	type loaded struct {
		matrix Matrix
		perms  []Permission
	}
	result, err, _ := c.group.Do("matrix", func() (interface{}, error) {
		matrix, perms, err := c.load(ctx)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.matrix = matrix
		c.perms = perms
		c.version = version
		c.loaded = true
		c.mu.Unlock()
		return loaded{matrix: matrix, perms: perms}, nil
	})
	if err != nil {
		c.logger.Error("authz: load permission matrix", slog.Any("error", err))
		return Matrix{}, nil
	}
	l := result.(loaded)
	return l.matrix, l.perms
}

func (c *Catalog) load(ctx context.Context) (Matrix, []Permission, error) {
	perms, err := c.store.ListPermissions(ctx)
	if err != nil {
		return nil, nil, err
	}
	grants, err := c.store.ListGrants(ctx)
	if err != nil {
		return nil, nil, err
	}
	matrix := make(Matrix)
	for _, g := range grants {
		matrix.Set(g.Role, g.Code, g.Granted)
	}
	return matrix, perms, nil
}

// sharedVersion fetches the grants version once per call site. A redis
// failure keeps the local copy in service rather than discarding grants.
func (c *Catalog) sharedVersion(ctx context.Context) int64 {
	if c.cache == nil {
		return 0
	}
	version, err := c.cache.Get(ctx, grantsVersionKey).Int64()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("authz: read grants version", slog.Any("error", err))
			c.mu.RLock()
			defer c.mu.RUnlock()
			return c.version
		}
		return 0
	}
	return version
}
