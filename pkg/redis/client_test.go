package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

func TestEntryRoundTrip(t *testing.T) {
	ctx := context.Background()
	mock := newMockCmdable()
	written := time.Unix(5000, 0)
	client := &Client{store: mock, now: func() time.Time { return written }}

	payload := map[string]string{"code": "123", "name": "Widget"}
	if err := client.SetEntry(ctx, "od:cache:test", payload, time.Hour); err != nil {
		t.Fatalf("set failed: %v", err)
	}

	entry, err := client.GetEntry(ctx, "od:cache:test")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if entry == nil {
		t.Fatal("expected stored entry")
	}
	if !entry.CachedAt.Equal(written) {
		t.Fatalf("expected cached_at %v, got %v", written, entry.CachedAt)
	}

	var got map[string]string
	if err := json.Unmarshal(entry.Value, &got); err != nil {
		t.Fatalf("unmarshal value: %v", err)
	}
	if got["name"] != "Widget" {
		t.Fatalf("unexpected value %v", got)
	}
}

func TestGetEntryMissIsNilNil(t *testing.T) {
	client := &Client{store: newMockCmdable()}
	entry, err := client.GetEntry(context.Background(), "od:cache:absent")
	if err != nil {
		t.Fatalf("miss should not error: %v", err)
	}
	if entry != nil {
		t.Fatalf("expected nil entry on miss, got %+v", entry)
	}
}

func TestEntryFreshness(t *testing.T) {
	written := time.Unix(1000, 0)
	entry := Entry{CachedAt: written}

	if !entry.Fresh(written.Add(2*time.Minute), 3*time.Minute) {
		t.Fatal("entry younger than TTL should be fresh")
	}
	if entry.Fresh(written.Add(4*time.Minute), 3*time.Minute) {
		t.Fatal("entry older than TTL must not be served")
	}
}

func TestKeyBuilders(t *testing.T) {
	client := &Client{}
	if got := client.LookupCacheKey("10:2", "product", " Cabo Flex "); got != "od:cache:lookup:10:2:product:cabo flex" {
		t.Fatalf("unexpected lookup cache key %s", got)
	}
	if got := client.CooldownKey("scanner-9", "789100000123"); got != "od:cooldown:scan:scanner-9:789100000123" {
		t.Fatalf("unexpected cooldown key %s", got)
	}
}

func TestCooldownSetNX(t *testing.T) {
	ctx := context.Background()
	client := &Client{store: newMockCmdable()}

	ok, err := client.SetNX(ctx, client.CooldownKey("s", "c"), 1, time.Second)
	if err != nil || !ok {
		t.Fatalf("first SetNX should win: ok=%v err=%v", ok, err)
	}
	ok, err = client.SetNX(ctx, client.CooldownKey("s", "c"), 1, time.Second)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatal("second SetNX should be suppressed")
	}
}

type mockCmdable struct {
	data map[string]string
}

func newMockCmdable() *mockCmdable {
	return &mockCmdable{data: make(map[string]string)}
}

func (m *mockCmdable) Ping(context.Context) *redis.StatusCmd {
	return redis.NewStatusResult("PONG", nil)
}

func (m *mockCmdable) Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd {
	m.data[key] = stringify(value)
	return redis.NewStatusResult("OK", nil)
}

func (m *mockCmdable) Get(ctx context.Context, key string) *redis.StringCmd {
	v, ok := m.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (m *mockCmdable) SetNX(ctx context.Context, key string, value any, expiration time.Duration) *redis.BoolCmd {
	if _, exists := m.data[key]; exists {
		return redis.NewBoolResult(false, nil)
	}
	m.data[key] = stringify(value)
	return redis.NewBoolResult(true, nil)
}

func stringify(value any) string {
	if b, ok := value.([]byte); ok {
		return string(b)
	}
	return fmt.Sprint(value)
}
