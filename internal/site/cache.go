// internal/site/cache.go
//
// Lazy per-host site cache.
//
// Context
// -------
// Every request is served in the context of one site (the default domain or
// a branded microsite).  Loading a site costs three queries, so the cache
// loads each host on first hit behind a singleflight barrier, keeps the
// aggregate in a sync.Map, and evicts entries that sit idle past the TTL or
// exceed the entry cap (LRU pressure).  Evictions and loads feed the
// Prometheus site gauges.
package site

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/campushq/campus/internal/metrics"
)

// Static defaults.  Override via the Cache constructor if desired.
const (
	IdleTTL       = 30 * time.Minute
	MaxEntries    = 100
	EvictInterval = 5 * time.Minute
)

// ErrNotFound is returned when a host is not present in the site table.
var ErrNotFound = errors.New("site not found")

type entry struct {
	site     *Site
	lastSeen int64 // UnixNano
}

// Cache lazily loads sites, stores them in a sync.Map, and evicts them on
// idle TTL or LRU pressure.
type Cache struct {
	db          *sqlx.DB
	sfg         singleflight.Group
	m           sync.Map
	evictTicker *time.Ticker
	idleTTL     time.Duration
	maxEntries  int
}

// NewCache constructs a Cache and starts the background evictor.
func NewCache(db *sqlx.DB, idleTTL time.Duration, maxEntries int) *Cache {
	c := &Cache{
		db:         db,
		idleTTL:    idleTTL,
		maxEntries: maxEntries,
	}
	c.evictTicker = time.NewTicker(EvictInterval)
	go c.evictLoop()
	return c
}

// Get returns the Site for host, loading it on demand.
func (c *Cache) Get(host string) (*Site, error) {
	if v, ok := c.m.Load(host); ok {
		ent := v.(*entry)
		atomic.StoreInt64(&ent.lastSeen, time.Now().UnixNano())
		return ent.site, nil
	}

	v, err, _ := c.sfg.Do(host, func() (interface{}, error) {
		// Double-check after singleflight barrier.
		if v, ok := c.m.Load(host); ok {
			ent := v.(*entry)
			atomic.StoreInt64(&ent.lastSeen, time.Now().UnixNano())
			return ent.site, nil
		}
		s, err := load(context.Background(), c.db, host)
		if err != nil {
			metrics.SiteLoadErrorsTotal.Inc()
			return nil, err
		}
		ent := &entry{
			site:     s,
			lastSeen: time.Now().UnixNano(),
		}
		c.m.Store(host, ent)
		metrics.SiteLoadTotal.Inc()
		metrics.ActiveSites.Inc()
		return s, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Site), nil
}

// load turns host → *Site: site row, key-value config, custom profile
// fields.
func load(ctx context.Context, db *sqlx.DB, host string) (*Site, error) {
	rec, err := ByHost(ctx, db, host)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	cfg, err := ConfigBySite(ctx, db, rec.ID)
	if err != nil {
		return nil, err
	}

	fields, err := ProfileFieldsBySite(ctx, db, rec.ID)
	if err != nil {
		return nil, err
	}

	return &Site{
		Meta:                  *rec,
		Config:                cfg,
		ExtendedProfileFields: fields,
	}, nil
}

// evictLoop scans the map every EvictInterval and removes sites idle longer
// than idleTTL, then trims least-recently-used entries past maxEntries.
func (c *Cache) evictLoop() {
	for range c.evictTicker.C {
		now := time.Now().UnixNano()
		var count int

		c.m.Range(func(key, value any) bool {
			count++
			ent := value.(*entry)
			idle := time.Duration(now - atomic.LoadInt64(&ent.lastSeen))
			if idle > c.idleTTL {
				c.m.Delete(key)
				zap.S().Infow("site evicted",
					"host", key, "idle", idle.Truncate(time.Second))
				metrics.SiteEvictTotal.Inc()
				metrics.ActiveSites.Dec()
			}
			return true
		})

		if c.maxEntries > 0 && count > c.maxEntries {
			type kv struct {
				key string
				at  int64
			}
			var all []kv
			c.m.Range(func(key, value any) bool {
				ent := value.(*entry)
				all = append(all, kv{key: key.(string), at: atomic.LoadInt64(&ent.lastSeen)})
				return true
			})
			sort.Slice(all, func(i, j int) bool { return all[i].at < all[j].at })
			for i := 0; i < count-c.maxEntries && i < len(all); i++ {
				if _, ok := c.m.Load(all[i].key); ok {
					c.m.Delete(all[i].key)
					zap.S().Infow("site evicted", "host", all[i].key, "reason", "lru")
					metrics.SiteEvictTotal.Inc()
					metrics.ActiveSites.Dec()
				}
			}
		}
	}
}
