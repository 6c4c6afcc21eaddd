package middleware

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/apex/log"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/care-assistant-api/internal/config"
)

// CacheStore is the subset of the Redis client used by the response cache.
type CacheStore interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	SetEx(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
}

// cachedResponse is the JSON record stored per key.  Body is base64 in JSON.
type cachedResponse struct {
	Status int         `json:"status"`
	Header http.Header `json:"header"`
	Body   []byte      `json:"body"`
}

func (r cachedResponse) valid() bool {
	return r.Status >= 200 && r.Status < 600
}

// bodyRecorder tees the response body until it exceeds limit; after that
// the response is forwarded but no longer recorded.
type bodyRecorder struct {
	http.ResponseWriter
	status   int
	body     bytes.Buffer
	limit    int
	overflow bool
}

func (br *bodyRecorder) WriteHeader(code int) {
	br.status = code
	br.ResponseWriter.WriteHeader(code)
}

func (br *bodyRecorder) Write(b []byte) (int, error) {
	if !br.overflow {
		if br.limit > 0 && br.body.Len()+len(b) > br.limit {
			br.overflow = true
			br.body.Reset()
		} else {
			br.body.Write(b)
		}
	}
	return br.ResponseWriter.Write(b)
}

// cacheKey returns "<prefix>:<sha1 of the strategy parts>".
func cacheKey(cfg config.CacheConfig, c echo.Context) string {
	r := c.Request()
	var parts []string
	switch strings.ToLower(cfg.KeyStrategy) {
	case "route":
		parts = []string{c.Path()}
	case "method_route":
		parts = []string{r.Method, c.Path()}
	case "method_route_query":
		parts = []string{r.Method, c.Path(), r.URL.RawQuery}
	default: // "route_query"
		parts = []string{c.Path(), r.URL.RawQuery}
	}
	sum := sha1.Sum([]byte(strings.Join(parts, "\x00")))
	return cfg.Prefix + ":" + hex.EncodeToString(sum[:])
}

func loadCached(ctx context.Context, store CacheStore, key string) (cachedResponse, bool) {
	bs, err := store.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.WithError(err).WithField("key", key).Warn("cache.get")
		}
		return cachedResponse{}, false
	}
	var cr cachedResponse
	if err := json.Unmarshal(bs, &cr); err != nil || !cr.valid() {
		log.WithField("key", key).Warn("cache.corrupt_entry")
		return cachedResponse{}, false
	}
	return cr, true
}

func replay(c echo.Context, cr cachedResponse) {
	h := c.Response().Header()
	for k, vals := range cr.Header {
		// Content-Length is recomputed by the server.
		if strings.EqualFold(k, echo.HeaderContentLength) {
			continue
		}
		for _, v := range vals {
			h.Add(k, v)
		}
	}
	h.Set("X-Cache", "HIT")
	c.Response().WriteHeader(cr.Status)
	if len(cr.Body) > 0 {
		_, _ = c.Response().Write(cr.Body)
	}
}

// ResponseCache replays 200 responses of cacheable methods from Redis, with
// headers and body exactly as first served.  With the cache disabled or no
// store it is a pass-through.
func ResponseCache(cfg config.CacheConfig, store CacheStore) echo.MiddlewareFunc {
	if !cfg.Enabled || store == nil {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 30 * time.Second
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !cfg.Methods[strings.ToUpper(c.Request().Method)] {
				return next(c)
			}

			ctx := c.Request().Context()
			key := cacheKey(cfg, c)
			if cr, ok := loadCached(ctx, store, key); ok {
				replay(c, cr)
				return nil
			}

			rec := &bodyRecorder{ResponseWriter: c.Response().Writer, status: http.StatusOK, limit: cfg.MaxBodyBytes}
			c.Response().Writer = rec
			c.Response().Header().Set("X-Cache", "MISS")

			if err := next(c); err != nil {
				return err
			}
			if rec.status != http.StatusOK || rec.overflow {
				return nil
			}

			hdr := c.Response().Header().Clone()
			hdr.Del("X-Cache")
			payload, err := json.Marshal(cachedResponse{Status: rec.status, Header: hdr, Body: rec.body.Bytes()})
			if err != nil {
				return nil
			}
			if err := store.SetEx(context.WithoutCancel(ctx), key, payload, ttl).Err(); err != nil {
				log.WithError(err).WithField("key", key).Warn("cache.set")
			}
			return nil
		}
	}
}
