package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"go.uber.org/zap"

	"github.com/barak121-cloud/sim-management-bh/config"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()
	mr := miniredis.RunT(t)
	c, err := NewClient(&config.RedisConfig{Addr: mr.Addr()}, zap.NewNop())
	if err != nil {
		t.Fatalf("NewClient 失败: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func TestClient_KeyValue(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	if _, ok, err := c.Get(ctx, "beit_halohem_logs"); err != nil || ok {
		t.Fatalf("期望不存在，实际 ok=%v err=%v", ok, err)
	}
	if err := c.Set(ctx, "beit_halohem_logs", `[{"id":"1"}]`); err != nil {
		t.Fatalf("Set 失败: %v", err)
	}
	v, ok, err := c.Get(ctx, "beit_halohem_logs")
	if err != nil || !ok || v != `[{"id":"1"}]` {
		t.Fatalf("读取结果不符: %q ok=%v err=%v", v, ok, err)
	}
	if err := c.Remove(ctx, "beit_halohem_logs"); err != nil {
		t.Fatalf("Remove 失败: %v", err)
	}
	if _, ok, _ := c.Get(ctx, "beit_halohem_logs"); ok {
		t.Error("Remove 后仍可读取")
	}
}

func TestClient_CheckRateLimit(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		allowed, err := c.CheckRateLimit(ctx, "1.2.3.4:/login", 3, time.Minute)
		if err != nil {
			t.Fatalf("CheckRateLimit 失败: %v", err)
		}
		if !allowed {
			t.Fatalf("第 %d 次请求应放行", i+1)
		}
	}

	allowed, err := c.CheckRateLimit(ctx, "1.2.3.4:/login", 3, time.Minute)
	if err != nil {
		t.Fatalf("CheckRateLimit 失败: %v", err)
	}
	if allowed {
		t.Error("超过限额后应拒绝")
	}

	// 不同 key 互不影响
	allowed, _ = c.CheckRateLimit(ctx, "5.6.7.8:/login", 3, time.Minute)
	if !allowed {
		t.Error("其他客户端不应被限流")
	}
}

func TestClient_SetWithTTL(t *testing.T) {
	mr := miniredis.RunT(t)
	c, err := NewClient(&config.RedisConfig{Addr: mr.Addr()}, zap.NewNop())
	if err != nil {
		t.Fatalf("NewClient 失败: %v", err)
	}
	defer c.Close()
	ctx := context.Background()

	if err := c.SetWithTTL(ctx, "beit_halohem_session:s1", "{}", time.Hour); err != nil {
		t.Fatalf("SetWithTTL 失败: %v", err)
	}
	if ttl := mr.TTL("beit_halohem_session:s1"); ttl != time.Hour {
		t.Errorf("期望 TTL 1h，实际 %v", ttl)
	}

	mr.FastForward(2 * time.Hour)
	if _, ok, _ := c.Get(ctx, "beit_halohem_session:s1"); ok {
		t.Error("过期后 key 应被淘汰")
	}
}
