package utils

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"GoGallery/config"
)

func newTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	config.InitConfig()
	rdb := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", config.AppConfig.RedisHost, config.AppConfig.RedisPort),
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisDB,
	})
	t.Cleanup(func() { rdb.Close() })
	return rdb
}

func TestRateLimitQuotaAndWindowTTL(t *testing.T) {
	rdb := newTestRedis(t)
	gin.SetMode(gin.TestMode)

	scope := fmt.Sprintf("test-%d", time.Now().UnixNano())
	r := gin.New()
	r.GET("/ping", RateLimitMiddleware(rdb, scope, 2, time.Minute), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	do := func() int {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
		return w.Code
	}
	if code := do(); code != http.StatusOK {
		t.Fatalf("request 1 = %d, want 200", code)
	}
	if code := do(); code != http.StatusOK {
		t.Fatalf("request 2 = %d, want 200", code)
	}
	if code := do(); code != http.StatusTooManyRequests {
		t.Fatalf("request 3 = %d, want 429", code)
	}

	ctx := httptest.NewRequest(http.MethodGet, "/", nil).Context()
	keys, err := rdb.Keys(ctx, "ratelimit:"+scope+":*").Result()
	if err != nil || len(keys) != 1 {
		t.Fatalf("expected one counter key, got %v (%v)", keys, err)
	}
	key := keys[0]
	defer rdb.Del(ctx, key)

	if ttl, err := rdb.TTL(ctx, key).Result(); err != nil || ttl <= 0 {
		t.Fatalf("counter TTL = %v (%v), want a positive window", ttl, err)
	}

	// A counter that somehow lost its TTL must get the window re-armed on
	// the next request instead of throttling the client forever.
	if err := rdb.Persist(ctx, key).Err(); err != nil {
		t.Fatal(err)
	}
	if code := do(); code != http.StatusTooManyRequests {
		t.Fatalf("over-quota request = %d, want 429", code)
	}
	if ttl, err := rdb.TTL(ctx, key).Result(); err != nil || ttl <= 0 {
		t.Fatalf("counter TTL after re-arm = %v (%v), want a positive window", ttl, err)
	}
}
