package persist

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
)

func setupTestRedis(t *testing.T) *Redis {
	s := miniredis.RunT(t)
	store, err := NewRedis("redis://" + s.Addr())
	if err != nil {
		t.Fatalf("failed to create redis store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestNewRedis(t *testing.T) {
	store := setupTestRedis(t)

	if err := store.Ping(context.Background()); err != nil {
		t.Errorf("Ping failed: %v", err)
	}
}

func TestRedisEmptyStateReadsEmpty(t *testing.T) {
	store := setupTestRedis(t)
	ctx := context.Background()

	media, err := store.LoadMediaMap(ctx)
	if err != nil {
		t.Fatalf("LoadMediaMap failed: %v", err)
	}
	if len(media) != 0 {
		t.Errorf("expected empty media map, got %v", media)
	}

	idx, err := store.LoadGroupIndex(ctx)
	if err != nil {
		t.Fatalf("LoadGroupIndex failed: %v", err)
	}
	if len(idx) != 0 {
		t.Errorf("expected empty group index, got %v", idx)
	}
}

func TestRedisRoundTrip(t *testing.T) {
	store := setupTestRedis(t)
	ctx := context.Background()

	media := MediaMap{
		"gid://content/MediaImage/7": "https://cdn.example.com/7.jpg",
		"gid://content/MediaImage/8": "https://cdn.example.com/8.jpg",
	}
	if err := store.SaveMediaMap(ctx, media); err != nil {
		t.Fatalf("SaveMediaMap failed: %v", err)
	}
	loaded, err := store.LoadMediaMap(ctx)
	if err != nil {
		t.Fatalf("LoadMediaMap failed: %v", err)
	}
	if len(loaded) != 2 || loaded["gid://content/MediaImage/7"] != "https://cdn.example.com/7.jpg" {
		t.Errorf("media map did not round-trip: %v", loaded)
	}

	idx := GroupIndex{
		"Retail & Shopping": {{Name: "Bookshops", Handle: "bookshops"}},
		"Others":            {{Name: "Misc", Handle: "misc"}},
	}
	if err := store.SaveGroupIndex(ctx, idx); err != nil {
		t.Fatalf("SaveGroupIndex failed: %v", err)
	}
	gotIdx, err := store.LoadGroupIndex(ctx)
	if err != nil {
		t.Fatalf("LoadGroupIndex failed: %v", err)
	}
	if len(gotIdx) != 2 || gotIdx["Retail & Shopping"][0].Handle != "bookshops" {
		t.Errorf("group index did not round-trip: %v", gotIdx)
	}
}

func TestRedisSaveReplacesWholesale(t *testing.T) {
	store := setupTestRedis(t)
	ctx := context.Background()

	if err := store.SaveGroupIndex(ctx, GroupIndex{"Old": {{Name: "A", Handle: "a"}}}); err != nil {
		t.Fatalf("first save failed: %v", err)
	}
	if err := store.SaveGroupIndex(ctx, GroupIndex{"New": {{Name: "B", Handle: "b"}}}); err != nil {
		t.Fatalf("second save failed: %v", err)
	}

	idx, err := store.LoadGroupIndex(ctx)
	if err != nil {
		t.Fatalf("LoadGroupIndex failed: %v", err)
	}
	if _, stale := idx["Old"]; stale {
		t.Error("stale group survived a wholesale save")
	}
}
