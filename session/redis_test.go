package session

import (
	"context"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newRedisStoreTest(t *testing.T) (*Store, *miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis start: %v", err)
	}
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = rdb.Close()
		mr.Close()
	})
	return NewStore(NewRedis(rdb), "vlearn:"), mr, rdb
}

func TestRedisStoreWritesBothKeys(t *testing.T) {
	ctx := context.Background()
	store, mr, _ := newRedisStoreTest(t)
	sess := newTestSession(t, "alice", "ADMIN")

	if err := store.Write(ctx, sess); err != nil {
		t.Fatalf("write: %v", err)
	}
	token, err := mr.Get("vlearn:token")
	if err != nil {
		t.Fatalf("get token key: %v", err)
	}
	if token != sess.Credential {
		t.Fatal("credential key does not hold the raw credential")
	}
	if !mr.Exists("vlearn:user") {
		t.Fatal("expected identity snapshot key")
	}
	if ttl := mr.TTL("vlearn:token"); ttl != 0 {
		t.Fatalf("expected no expiry on session keys, got %v", ttl)
	}

	got, err := store.Read(ctx)
	if err != nil || got == nil || got.Identity.Subject != "alice" {
		t.Fatalf("unexpected read %+v / %v", got, err)
	}
}

func TestRedisStoreClearIdempotent(t *testing.T) {
	ctx := context.Background()
	store, mr, _ := newRedisStoreTest(t)
	if err := store.Write(ctx, newTestSession(t, "bob", "STUDENT")); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := store.Clear(ctx); err != nil {
		t.Fatalf("first clear: %v", err)
	}
	if err := store.Clear(ctx); err != nil {
		t.Fatalf("second clear: %v", err)
	}
	if mr.Exists("vlearn:token") || mr.Exists("vlearn:user") {
		t.Fatal("expected both keys removed")
	}
}

func TestRedisStoreHalfPairIsCorrupt(t *testing.T) {
	ctx := context.Background()
	store, mr, _ := newRedisStoreTest(t)
	if err := store.Write(ctx, newTestSession(t, "carol", "STUDENT")); err != nil {
		t.Fatalf("write: %v", err)
	}
	mr.Del("vlearn:user")

	if _, err := store.Read(ctx); !errors.Is(err, ErrSessionCorrupt) {
		t.Fatalf("expected ErrSessionCorrupt, got %v", err)
	}
	if mr.Exists("vlearn:token") {
		t.Fatal("expected orphaned credential to be cleared")
	}
}

func TestRedisSubstrateUnavailable(t *testing.T) {
	ctx := context.Background()
	store, mr, _ := newRedisStoreTest(t)
	mr.Close()

	if _, err := store.Read(ctx); !errors.Is(err, ErrSubstrateUnavailable) {
		t.Fatalf("expected ErrSubstrateUnavailable on read, got %v", err)
	}
	if err := store.Write(ctx, newTestSession(t, "dave", "STUDENT")); !errors.Is(err, ErrSubstrateUnavailable) {
		t.Fatalf("expected ErrSubstrateUnavailable on write, got %v", err)
	}
}

func TestRedisHashTag(t *testing.T) {
	cases := map[string]string{
		"vlearn:token":   "vlearn:token",
		"{vlearn}:token": "vlearn",
		"a{b}c{d}":       "b",
		"{}:token":       "{}:token",
		"{vlearn:token":  "{vlearn:token",
	}
	for key, want := range cases {
		if got := hashTag(key); got != want {
			t.Fatalf("hashTag(%q) = %q, want %q", key, got, want)
		}
	}
}

func TestRedisClusterRequiresSharedHashTag(t *testing.T) {
	cluster := redis.NewClusterClient(&redis.ClusterOptions{Addrs: []string{"127.0.0.1:1"}})
	t.Cleanup(func() { _ = cluster.Close() })
	sub := NewRedis(cluster)

	untagged := NewStore(sub, "vlearn:")
	if err := sub.CheckKeys(untagged.Keys()); !errors.Is(err, ErrCrossSlot) {
		t.Fatalf("expected ErrCrossSlot for untagged keys, got %v", err)
	}
	if _, err := untagged.Read(context.Background()); !errors.Is(err, ErrCrossSlot) {
		t.Fatalf("expected ErrCrossSlot on read, got %v", err)
	}
	if err := untagged.Clear(context.Background()); !errors.Is(err, ErrCrossSlot) {
		t.Fatalf("expected ErrCrossSlot on clear, got %v", err)
	}

	tagged := NewStore(sub, "{vlearn}:")
	if err := sub.CheckKeys(tagged.Keys()); err != nil {
		t.Fatalf("tagged keys rejected: %v", err)
	}
}

func TestRedisSingleNodeAcceptsTaggedPrefix(t *testing.T) {
	ctx := context.Background()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis start: %v", err)
	}
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = rdb.Close()
		mr.Close()
	})
	store := NewStore(NewRedis(rdb), "{vlearn}:")
	if err := store.Write(ctx, newTestSession(t, "erin", "ADMIN")); err != nil {
		t.Fatalf("write: %v", err)
	}
	if !mr.Exists("{vlearn}:token") || !mr.Exists("{vlearn}:user") {
		t.Fatal("expected tagged keys")
	}
	if got, err := store.Read(ctx); err != nil || got == nil || got.Identity.Subject != "erin" {
		t.Fatalf("unexpected read %+v / %v", got, err)
	}
}
