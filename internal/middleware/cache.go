package middleware

// cache.go implements a per-user response cache for timesheet reads.  Cached
// entries are keyed by the acting user, so one user's responses can never be
// served to another, and mutating handlers drop the whole key space of the
// user they just wrote for.  That keeps the derived totals in cached list and
// detail responses consistent with the task lists behind them.

import (
    "bytes"
    "context"
    "crypto/sha1"
    "encoding/binary"
    "encoding/json"
    "fmt"
    "net/http"
    "strings"
    "time"

    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"

    "github.com/davitp/timesheet-tracker/internal/config"
)

// captureWriter captures response body/status while forwarding to the client.
type captureWriter struct {
    http.ResponseWriter
    status int
    buf    bytes.Buffer
    size   int64
    limit  int64
}

func (cw *captureWriter) WriteHeader(code int) { cw.status = code; cw.ResponseWriter.WriteHeader(code) }
func (cw *captureWriter) Write(b []byte) (int, error) {
    // size counts everything written even after the buffer is full, so the
    // store decision can tell a complete capture from a cut-off one.
    if cw.limit <= 0 {
        cw.buf.Write(b)
    } else if remain := cw.limit - int64(cw.buf.Len()); remain > 0 {
        if int64(len(b)) <= remain {
            cw.buf.Write(b)
        } else {
            cw.buf.Write(b[:remain])
        }
    }
    cw.size += int64(len(b))
    return cw.ResponseWriter.Write(b)
}

// cacheable reports whether a captured response may be stored. Only full 200
// bodies qualify; a body larger than the capture limit was cut off in the
// buffer and must never be served back.
func cacheable(status int, size, limit int64) bool {
    return status == http.StatusOK && (limit <= 0 || size <= limit)
}

// cacheKeyFor builds "prefix:u:<uid>:<sha1(method:route:query)>".  The user id
// segment stays in clear text so invalidation can address a user's entries by
// prefix.
func cacheKeyFor(cfg config.CacheConfig, c echo.Context) string {
    r := c.Request()
    tail := r.Method + ":" + c.Path() + ":" + r.URL.RawQuery
    sum := sha1.Sum([]byte(tail))
    return fmt.Sprintf("%s:u:%s:%x", cfg.Prefix, currentUserID(c), sum[:])
}

// encodePayload packs: [4 bytes status][4 bytes headerLen][headerJSON][body]
func encodePayload(status int, header http.Header, body []byte) ([]byte, error) {
    hdrJSON, err := json.Marshal(header)
    if err != nil {
        return nil, err
    }
    total := 4 + 4 + len(hdrJSON) + len(body)
    out := make([]byte, total)
    binary.BigEndian.PutUint32(out[0:4], uint32(status))
    binary.BigEndian.PutUint32(out[4:8], uint32(len(hdrJSON)))
    copy(out[8:8+len(hdrJSON)], hdrJSON)
    copy(out[8+len(hdrJSON):], body)
    return out, nil
}

func decodePayload(bs []byte) (status int, header http.Header, body []byte, ok bool) {
    if len(bs) < 8 {
        return 0, nil, nil, false
    }
    status = int(binary.BigEndian.Uint32(bs[0:4]))
    hlen := int(binary.BigEndian.Uint32(bs[4:8]))
    if 8+hlen > len(bs) || hlen < 0 {
        return 0, nil, nil, false
    }
    var hdr http.Header
    if hlen > 0 {
        if err := json.Unmarshal(bs[8:8+hlen], &hdr); err != nil {
            return 0, nil, nil, false
        }
    } else {
        hdr = make(http.Header)
    }
    body = bs[8+hlen:]
    return status, hdr, body, true
}

// NewUserCache stores headers + body so clients see identical formatting as
// the original response.  Only configured methods (normally GET) are cached,
// and only 200 responses.  Must be registered behind BearerAuth so the user
// id is present in the context.
func NewUserCache(cfg config.CacheConfig, rdb *redis.Client) echo.MiddlewareFunc {
    if !cfg.Enabled || rdb == nil {
        return func(next echo.HandlerFunc) echo.HandlerFunc { return func(c echo.Context) error { return next(c) } }
    }
    ttl := cfg.TTL
    if ttl <= 0 {
        ttl = 30 * time.Second
    }
    maxBody := int64(cfg.MaxBodyBytes)

    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            if !cfg.Methods[strings.ToUpper(c.Request().Method)] {
                return next(c)
            }

            ctx := c.Request().Context()
            key := cacheKeyFor(cfg, c)

            // Try get from Redis
            if bs, err := rdb.Get(ctx, key).Bytes(); err == nil && len(bs) >= 8 {
                if status, hdr, body, ok := decodePayload(bs); ok {
                    for k, vals := range hdr {
                        if strings.EqualFold(k, "Content-Length") {
                            continue
                        }
                        for _, v := range vals {
                            c.Response().Header().Add(k, v)
                        }
                    }
                    c.Response().Header().Set("X-Cache", "HIT")
                    c.Response().WriteHeader(status)
                    if len(body) > 0 {
                        _, _ = c.Response().Write(body)
                    }
                    return nil
                }
            }

            // Miss: capture
            cw := &captureWriter{ResponseWriter: c.Response().Writer, status: http.StatusOK, limit: maxBody}
            c.Response().Writer = cw
            c.Response().Header().Set("X-Cache", "MISS")

            if err := next(c); err != nil {
                return err
            }

            if cacheable(cw.status, cw.size, maxBody) {
                hdr := make(http.Header, len(c.Response().Header()))
                for k, vals := range c.Response().Header() {
                    vv := make([]string, len(vals))
                    copy(vv, vals)
                    hdr[k] = vv
                }
                if payload, err := encodePayload(cw.status, hdr, cw.buf.Bytes()); err == nil {
                    _ = rdb.SetEx(context.Background(), key, payload, ttl).Err()
                }
            }
            return nil
        }
    }
}

// CacheInvalidator drops a user's cached responses after a write.  A nil
// invalidator (cache disabled, redis down) is safe to call.
type CacheInvalidator struct {
    rdb    *redis.Client
    prefix string
}

// NewCacheInvalidator returns nil when the cache is not in effect.
func NewCacheInvalidator(cfg config.CacheConfig, rdb *redis.Client) *CacheInvalidator {
    if !cfg.Enabled || rdb == nil {
        return nil
    }
    return &CacheInvalidator{rdb: rdb, prefix: cfg.Prefix}
}

// InvalidateUser deletes every cached response belonging to the user.
// Failures are ignored; a stale entry expires by TTL anyway.
func (ci *CacheInvalidator) InvalidateUser(ctx context.Context, userID uint64) {
    if ci == nil || ci.rdb == nil {
        return
    }
    pattern := fmt.Sprintf("%s:u:%d:*", ci.prefix, userID)
    iter := ci.rdb.Scan(ctx, 0, pattern, 100).Iterator()
    for iter.Next(ctx) {
        _ = ci.rdb.Del(ctx, iter.Val()).Err()
    }
}
