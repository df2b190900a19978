package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/freshfold/laundry-backend/pkg/config"
)

func TestIncrWithTTLArmsExpiryOnce(t *testing.T) {
	ctx := context.Background()
	mock := newMockCmdable()
	client := &Client{store: mock}
	key := client.RateLimitKey("login", "ip", "203.0.113.7")

	for want := int64(1); want <= 3; want++ {
		got, err := client.IncrWithTTL(ctx, key, time.Minute)
		require.NoError(t, err)
		require.Equal(t, want, got)
	}
	require.Equal(t, []int64{60000}, mock.expiries[key])
	require.Equal(t, 1, mock.evalCalls, "script should be loaded once and reused by sha")
}

func TestIncrWithTTLRejectsMissingTTL(t *testing.T) {
	client := &Client{store: newMockCmdable()}
	if _, err := client.IncrWithTTL(context.Background(), "ff:rl:x", 0); err == nil {
		t.Fatalf("expected error for zero ttl")
	}
}

func TestSetNXOnlyOnce(t *testing.T) {
	ctx := context.Background()
	client := &Client{store: newMockCmdable()}

	ok, err := client.SetNX(ctx, "k", "v1", time.Minute)
	if err != nil || !ok {
		t.Fatalf("expected first setnx to succeed, ok=%v err=%v", ok, err)
	}
	ok, err = client.SetNX(ctx, "k", "v2", time.Minute)
	if err != nil || ok {
		t.Fatalf("expected second setnx to fail, ok=%v err=%v", ok, err)
	}
	got, err := client.Get(ctx, "k")
	if err != nil || got != "v1" {
		t.Fatalf("expected original value, got %q err=%v", got, err)
	}

	if err := client.Del(ctx, "k"); err != nil {
		t.Fatalf("del failed: %v", err)
	}
	if _, err := client.Get(ctx, "k"); !errors.Is(err, redis.Nil) {
		t.Fatalf("expected redis.Nil after delete, got %v", err)
	}
}

func TestDelIfEqualsOnlyRemovesOwnValue(t *testing.T) {
	ctx := context.Background()
	client := &Client{store: newMockCmdable()}
	require.NoError(t, client.Set(ctx, "ff:lock:cron", "worker-a", time.Minute))

	deleted, err := client.DelIfEquals(ctx, "ff:lock:cron", "worker-b")
	require.NoError(t, err)
	require.False(t, deleted)

	deleted, err = client.DelIfEquals(ctx, "ff:lock:cron", "worker-a")
	require.NoError(t, err)
	require.True(t, deleted)
	_, err = client.Get(ctx, "ff:lock:cron")
	require.ErrorIs(t, err, redis.Nil)
}

func TestUninitializedClientErrors(t *testing.T) {
	client := &Client{}
	ctx := context.Background()
	require.ErrorIs(t, client.Ping(ctx), errNotInitialized)
	_, err := client.IncrWithTTL(ctx, "k", time.Second)
	require.ErrorIs(t, err, errNotInitialized)
	require.NoError(t, client.Close())
}

func TestKeyspace(t *testing.T) {
	client := &Client{}
	cases := map[string]string{
		client.IdempotencyKey("user-1|POST|/api/v1/bookings", "abc"): "ff:idempotency:user-1|POST|/api/v1/bookings:abc",
		client.IdempotencyKey("stripe-webhook", ""):                  "ff:idempotency:stripe-webhook",
		client.RateLimitKey("Login", "email", "hash"):                "ff:rl:login:email:hash",
		client.LockKey("cron"):                                       "ff:lock:cron",
		client.AccessSessionKey("jti-1"):                             "ff:session:access:jti-1",
	}
	for got, want := range cases {
		if got != want {
			t.Fatalf("expected %s, got %s", want, got)
		}
	}
}

func TestOptionsFromConfig(t *testing.T) {
	opts, err := optionsFromConfig(config.RedisConfig{URL: "redis://localhost:6379/2", PoolSize: 7})
	require.NoError(t, err)
	require.Equal(t, 2, opts.DB)
	require.Equal(t, 7, opts.PoolSize)

	opts, err = optionsFromConfig(config.RedisConfig{Address: "cache:6379", DB: 3, DialTimeout: time.Second})
	require.NoError(t, err)
	require.Equal(t, "cache:6379", opts.Addr)
	require.Equal(t, 3, opts.DB)
	require.Equal(t, time.Second, opts.DialTimeout)

	_, err = optionsFromConfig(config.RedisConfig{})
	require.Error(t, err)
}

// mockCmdable keeps strings and counters in maps and runs the counter script
// natively. EvalSha misses until Eval has loaded the script, like a fresh
// server would.
type mockCmdable struct {
	data      map[string]string
	counters  map[string]int64
	expiries  map[string][]int64
	scripts   map[string]bool
	evalCalls int
}

func newMockCmdable() *mockCmdable {
	return &mockCmdable{
		data:     map[string]string{},
		counters: map[string]int64{},
		expiries: map[string][]int64{},
		scripts:  map[string]bool{},
	}
}

func (m *mockCmdable) run(script string, keys []string, args []any) *redis.Cmd {
	if script == delIfEquals.Hash() {
		if m.data[keys[0]] == args[0].(string) {
			delete(m.data, keys[0])
			return redis.NewCmdResult(int64(1), nil)
		}
		return redis.NewCmdResult(int64(0), nil)
	}
	return m.runCounter(keys, args)
}

func (m *mockCmdable) runCounter(keys []string, args []any) *redis.Cmd {
	key := keys[0]
	m.counters[key]++
	if m.counters[key] == 1 {
		m.expiries[key] = append(m.expiries[key], args[0].(int64))
	}
	return redis.NewCmdResult(m.counters[key], nil)
}

func (m *mockCmdable) Eval(_ context.Context, script string, keys []string, args ...any) *redis.Cmd {
	m.evalCalls++
	sha := incrWithTTL.Hash()
	if strings.Contains(script, "'DEL'") {
		sha = delIfEquals.Hash()
	}
	m.scripts[sha] = true
	return m.run(sha, keys, args)
}

func (m *mockCmdable) EvalSha(_ context.Context, sha string, keys []string, args ...any) *redis.Cmd {
	if !m.scripts[sha] {
		return redis.NewCmdResult(nil, noScriptError{})
	}
	return m.run(sha, keys, args)
}

func (m *mockCmdable) EvalRO(ctx context.Context, script string, keys []string, args ...any) *redis.Cmd {
	return m.Eval(ctx, script, keys, args...)
}

func (m *mockCmdable) EvalShaRO(ctx context.Context, sha string, keys []string, args ...any) *redis.Cmd {
	return m.EvalSha(ctx, sha, keys, args...)
}

func (m *mockCmdable) ScriptExists(_ context.Context, hashes ...string) *redis.BoolSliceCmd {
	out := make([]bool, len(hashes))
	for i, h := range hashes {
		out[i] = m.scripts[h]
	}
	return redis.NewBoolSliceResult(out, nil)
}

func (m *mockCmdable) ScriptLoad(_ context.Context, script string) *redis.StringCmd {
	return redis.NewStringResult("", errors.New("not supported"))
}

func (m *mockCmdable) Ping(context.Context) *redis.StatusCmd {
	return redis.NewStatusResult("PONG", nil)
}

func (m *mockCmdable) Set(_ context.Context, key string, value any, _ time.Duration) *redis.StatusCmd {
	m.data[key] = fmt.Sprint(value)
	return redis.NewStatusResult("OK", nil)
}

func (m *mockCmdable) Get(_ context.Context, key string) *redis.StringCmd {
	v, ok := m.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (m *mockCmdable) SetNX(_ context.Context, key string, value any, _ time.Duration) *redis.BoolCmd {
	if _, exists := m.data[key]; exists {
		return redis.NewBoolResult(false, nil)
	}
	m.data[key] = fmt.Sprint(value)
	return redis.NewBoolResult(true, nil)
}

func (m *mockCmdable) Del(_ context.Context, keys ...string) *redis.IntCmd {
	for _, key := range keys {
		delete(m.data, key)
	}
	return redis.NewIntResult(int64(len(keys)), nil)
}

type noScriptError struct{}

func (noScriptError) Error() string { return "NOSCRIPT No matching script. Please use EVAL." }

func (noScriptError) RedisError() {}
