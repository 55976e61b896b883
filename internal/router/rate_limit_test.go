package router

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

func TestKeyByIPAndJSONField(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/admin/login", strings.NewReader(`{"username":" Gerente.SP ","password":"x"}`))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Request.RemoteAddr = "1.2.3.4:5678"

	key := KeyByIPAndJSONField("username")(c)
	if key != "gerente.sp|1.2.3.4" {
		t.Fatalf("key want gerente.sp|1.2.3.4 got %s", key)
	}

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		t.Fatalf("read body after key extraction failed: %v", err)
	}
	if !strings.Contains(string(body), "Gerente.SP") {
		t.Fatalf("request body should be restored after reading field")
	}
}

func TestRateLimitMiddlewareWithoutClient(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(RateLimitMiddleware(nil, RateLimitRule{WindowSeconds: 60, MaxRequests: 1}, KeyByIP))
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status want 200 got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"ok":true`) {
		t.Fatalf("expected handler response body, got %s", w.Body.String())
	}
}

func TestKeyByAdmin(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/v1/admin/commission-sync/stream", nil)
	c.Request.RemoteAddr = "10.0.0.7:4000"

	if key := KeyByAdmin(c); key != "10.0.0.7" {
		t.Fatalf("anonymous key want client ip got %s", key)
	}
	c.Set("admin_id", uint(42))
	if key := KeyByAdmin(c); key != "admin:42" {
		t.Fatalf("admin key want admin:42 got %s", key)
	}
}

func newMiniRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestRateLimiterFixedWindow(t *testing.T) {
	mr, client := newMiniRedis(t)
	limiter := NewRateLimiter(client, RateLimitRule{Prefix: "cms:rate:test", WindowSeconds: 30, MaxRequests: 2})
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		allowed, _, err := limiter.Allow(ctx, "admin:1")
		if err != nil || !allowed {
			t.Fatalf("request %d should pass, allowed=%v err=%v", i+1, allowed, err)
		}
	}
	allowed, wait, err := limiter.Allow(ctx, "admin:1")
	if err != nil {
		t.Fatalf("allow failed: %v", err)
	}
	if allowed || wait < 1 || wait > 30 {
		t.Fatalf("third request should be limited, allowed=%v wait=%d", allowed, wait)
	}
	if ttl := mr.TTL("cms:rate:test:admin:1"); ttl <= 0 {
		t.Fatalf("counter key must carry a ttl, got %v", ttl)
	}

	// 其他管理员不受影响
	if allowed, _, _ := limiter.Allow(ctx, "admin:2"); !allowed {
		t.Fatalf("different key should pass")
	}

	mr.FastForward(31 * time.Second)
	if allowed, _, _ := limiter.Allow(ctx, "admin:1"); !allowed {
		t.Fatalf("window expired, request should pass")
	}
}

func TestRateLimitMiddlewareRejectsWithRetryAfter(t *testing.T) {
	gin.SetMode(gin.TestMode)
	_, client := newMiniRedis(t)

	r := gin.New()
	r.Use(RateLimitMiddleware(client, RateLimitRule{Prefix: "cms:rate:stream", WindowSeconds: 60, MaxRequests: 1, MessageKey: "error.stream_too_many"}, KeyByIP))
	r.GET("/stream", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	first := httptest.NewRecorder()
	r.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/stream", nil))
	if !strings.Contains(first.Body.String(), `"ok":true`) {
		t.Fatalf("first request should pass, got %s", first.Body.String())
	}

	second := httptest.NewRecorder()
	r.ServeHTTP(second, httptest.NewRequest(http.MethodGet, "/stream", nil))
	if !strings.Contains(second.Body.String(), `"status_code":429`) {
		t.Fatalf("second request should be limited, got %s", second.Body.String())
	}
	if second.Header().Get("Retry-After") == "" {
		t.Fatalf("expected Retry-After header")
	}
}

func TestRateLimitMiddlewareRedisDown(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mr, client := newMiniRedis(t)
	mr.Close()

	r := gin.New()
	r.Use(RateLimitMiddleware(client, RateLimitRule{WindowSeconds: 60, MaxRequests: 5}, KeyByIP))
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	if !strings.Contains(w.Body.String(), `"status_code":500`) {
		t.Fatalf("expected rate limiter failure response, got %s", w.Body.String())
	}
}
