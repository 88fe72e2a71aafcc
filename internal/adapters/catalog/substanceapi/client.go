package substanceapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"dose-timeline/internal/domain/substances"
	"dose-timeline/internal/platform/httpclient"
	"dose-timeline/internal/platform/logger"
	"dose-timeline/internal/ports/catalog"

	"github.com/allegro/bigcache/v3"
	"golang.org/x/sync/singleflight"
)

var ErrNotConfigured = errors.New("substance api client not configured")

const (
	searchLimit     = 100
	defaultCacheTTL = 30 * time.Minute

	// DefaultCacheMaxMB acota la memoria del cache de detalles.
	DefaultCacheMaxMB = 32

	cacheShards       = 16
	cacheEntries      = 1024    // el catálogo completo son unos cientos de sustancias
	cacheMaxEntrySize = 8 << 10 // un registro con roas + interacciones ronda unos KB
)

type Config struct {
	BaseURL    string
	Timeout    time.Duration
	CacheTTL   time.Duration // <= 0 => default; el detalle cambia poco
	CacheMaxMB int           // <= 0 => DefaultCacheMaxMB
}

// Client habla con la API HTTP del catálogo:
//
//	GET /api/substances?search=&limit=   lista liviana ordenada por nombre
//	GET /api/substances/{name}           registro completo (404 si no existe)
//
// Los detalles se cachean en bigcache y los fetch concurrentes del mismo
// nombre se agrupan con singleflight.
type Client struct {
	http  *httpclient.Client
	cache *bigcache.BigCache
	group singleflight.Group
	log   logger.Logger
}

func NewClient(ctx context.Context, cfg Config, log logger.Logger) (*Client, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, ErrNotConfigured
	}
	hc, err := httpclient.NewWithBaseURL(cfg.BaseURL, cfg.Timeout)
	if err != nil {
		return nil, err
	}
	return newClient(ctx, hc, cfg, log)
}

func cacheConfig(cfg Config) bigcache.Config {
	ttl := cfg.CacheTTL
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	maxMB := cfg.CacheMaxMB
	if maxMB <= 0 {
		maxMB = DefaultCacheMaxMB
	}

	cacheCfg := bigcache.DefaultConfig(ttl)
	cacheCfg.Shards = cacheShards
	cacheCfg.MaxEntriesInWindow = cacheEntries
	cacheCfg.MaxEntrySize = cacheMaxEntrySize
	cacheCfg.HardMaxCacheSize = maxMB
	cacheCfg.Verbose = false
	return cacheCfg
}

func newClient(ctx context.Context, hc *httpclient.Client, cfg Config, log logger.Logger) (*Client, error) {
	if log == nil {
		log = logger.Nop()
	}

	cacheCfg := cacheConfig(cfg)

	cache, err := bigcache.New(ctx, cacheCfg)
	if err != nil {
		return nil, fmt.Errorf("substanceapi: init cache: %w", err)
	}

	return &Client{
		http:  hc,
		cache: cache,
		log:   log.With(map[string]any{"component": "substanceapi"}),
	}, nil
}

var _ catalog.Catalog = (*Client)(nil)

func (c *Client) list(ctx context.Context, search string) ([]substances.Item, error) {
	q := url.Values{}
	q.Set("limit", strconv.Itoa(searchLimit))
	if search != "" {
		q.Set("search", search)
	}

	var out []substances.Item
	if err := c.http.GetJSON(ctx, "/api/substances", q, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []substances.Item{}
	}
	return out, nil
}

func (c *Client) SearchByPrefix(ctx context.Context, text string) ([]substances.Item, error) {
	return c.list(ctx, strings.TrimSpace(text))
}

func (c *Client) ListAll(ctx context.Context) ([]substances.Item, error) {
	return c.list(ctx, "")
}

func cacheKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func (c *Client) GetDetail(ctx context.Context, name string) (substances.Substance, error) {
	key := cacheKey(name)
	if key == "" {
		return substances.Substance{}, catalog.ErrNotFound
	}

	if s, ok := c.cached(key); ok {
		return s, nil
	}

	// El fetch compartido no hereda la cancelación de quien lo disparó;
	// cada caller deja de esperar según su propio ctx.
	ch := c.group.DoChan(key, func() (any, error) {
		// otro fetch pudo haber llenado el cache mientras esperábamos
		if s, ok := c.cached(key); ok {
			return s, nil
		}
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.http.HTTP.Timeout)
		defer cancel()
		return c.fetchDetail(fetchCtx, name, key)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return substances.Substance{}, res.Err
		}
		return res.Val.(substances.Substance), nil
	case <-ctx.Done():
		return substances.Substance{}, ctx.Err()
	}
}

func (c *Client) cached(key string) (substances.Substance, bool) {
	raw, err := c.cache.Get(key)
	if err != nil {
		return substances.Substance{}, false
	}
	var s substances.Substance
	if err := json.Unmarshal(raw, &s); err != nil {
		_ = c.cache.Delete(key)
		return substances.Substance{}, false
	}
	return s, true
}

func (c *Client) fetchDetail(ctx context.Context, name, key string) (substances.Substance, error) {
	var s substances.Substance
	err := c.http.GetJSON(ctx, "/api/substances/"+url.PathEscape(strings.TrimSpace(name)), nil, &s)
	if httpclient.IsNotFound(err) {
		return substances.Substance{}, catalog.ErrNotFound
	}
	if err != nil {
		return substances.Substance{}, err
	}

	if raw, err := json.Marshal(s); err == nil {
		if err := c.cache.Set(key, raw); err != nil {
			// entrada muy grande para el shard: seguimos sin cache
			c.log.Debug("detail not cached", map[string]any{"substance": s.Name, "error": err})
		}
	}
	return s, nil
}

// Close libera el cache (goroutine de limpieza).
func (c *Client) Close() error {
	return c.cache.Close()
}
