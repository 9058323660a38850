package media

import (
	"context"
	"errors"
	"sync"
	"testing"

	"waypost/api/internal/persist"
)

type fakeLookup struct {
	mu    sync.Mutex
	calls int
	urls  map[string]string
	err   error
}

func (f *fakeLookup) MediaURL(ctx context.Context, ref string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls += 1
	if f.err != nil {
		return "", f.err
	}
	return f.urls[ref], nil
}

type recordingStore struct {
	persist.Store
	saves   int
	lastMap persist.MediaMap
	loadMap persist.MediaMap
	loadErr error
}

func (s *recordingStore) LoadMediaMap(ctx context.Context) (persist.MediaMap, error) {
	if s.loadMap == nil {
		return persist.MediaMap{}, s.loadErr
	}
	return s.loadMap, s.loadErr
}

func (s *recordingStore) SaveMediaMap(ctx context.Context, m persist.MediaMap) error {
	s.saves += 1
	s.lastMap = m
	return nil
}

func TestResolveMemoizes(t *testing.T) {
	lookup := &fakeLookup{urls: map[string]string{
		"gid://content/MediaImage/1": "https://cdn.example.com/1.jpg",
	}}
	store := &recordingStore{}
	r := NewResolver(lookup, store)
	ctx := context.Background()

	first := r.Resolve(ctx, "gid://content/MediaImage/1")
	second := r.Resolve(ctx, "gid://content/MediaImage/1")

	if first != "https://cdn.example.com/1.jpg" || second != first {
		t.Errorf("unexpected resolutions: %q, %q", first, second)
	}
	if lookup.calls != 1 {
		t.Errorf("expected exactly 1 upstream lookup, got %d", lookup.calls)
	}
	if store.saves != 1 {
		t.Errorf("expected exactly 1 persist, got %d", store.saves)
	}
	if store.lastMap["gid://content/MediaImage/1"] != "https://cdn.example.com/1.jpg" {
		t.Errorf("persisted map missing resolution: %v", store.lastMap)
	}
}

func TestResolvePassesThroughAbsoluteURLs(t *testing.T) {
	lookup := &fakeLookup{}
	r := NewResolver(lookup, &recordingStore{})

	url := "https://cdn.example.com/already.png"
	if got := r.Resolve(context.Background(), url); got != url {
		t.Errorf("expected passthrough, got %q", got)
	}
	if lookup.calls != 0 {
		t.Errorf("expected no upstream lookups, got %d", lookup.calls)
	}
}

func TestResolvePassesThroughNonReferences(t *testing.T) {
	lookup := &fakeLookup{}
	r := NewResolver(lookup, &recordingStore{})

	for _, in := range []string{"", "some plain text", "ftp://odd"} {
		if got := r.Resolve(context.Background(), in); got != in {
			t.Errorf("expected %q unchanged, got %q", in, got)
		}
	}
	if lookup.calls != 0 {
		t.Errorf("expected no upstream lookups, got %d", lookup.calls)
	}
}

func TestResolveUnresolvableKeepsReference(t *testing.T) {
	lookup := &fakeLookup{urls: map[string]string{}}
	store := &recordingStore{}
	r := NewResolver(lookup, store)

	ref := "gid://content/MediaImage/404"
	if got := r.Resolve(context.Background(), ref); got != ref {
		t.Errorf("expected original reference back, got %q", got)
	}
	if store.saves != 0 {
		t.Error("empty resolution must not be persisted")
	}

	// Not cached either: a later call tries upstream again.
	r.Resolve(context.Background(), ref)
	if lookup.calls != 2 {
		t.Errorf("expected 2 upstream lookups, got %d", lookup.calls)
	}
}

func TestResolveUpstreamErrorKeepsReference(t *testing.T) {
	lookup := &fakeLookup{err: errors.New("boom")}
	r := NewResolver(lookup, &recordingStore{})

	ref := "gid://content/MediaImage/1"
	if got := r.Resolve(context.Background(), ref); got != ref {
		t.Errorf("expected original reference back, got %q", got)
	}
}

func TestRestoreLoadsPersistedMap(t *testing.T) {
	lookup := &fakeLookup{}
	store := &recordingStore{loadMap: persist.MediaMap{
		"gid://content/MediaImage/9": "https://cdn.example.com/9.jpg",
	}}
	r := NewResolver(lookup, store)

	if err := r.Restore(context.Background()); err != nil {
		t.Fatalf("Restore failed: %v", err)
	}
	if got := r.Resolve(context.Background(), "gid://content/MediaImage/9"); got != "https://cdn.example.com/9.jpg" {
		t.Errorf("restored entry not used, got %q", got)
	}
	if lookup.calls != 0 {
		t.Errorf("expected no upstream lookups after restore, got %d", lookup.calls)
	}
}

func TestRestoreSurvivesLoadFailure(t *testing.T) {
	store := &recordingStore{loadErr: errors.New("corrupt")}
	r := NewResolver(&fakeLookup{}, store)

	if err := r.Restore(context.Background()); err == nil {
		t.Error("expected load error to be reported")
	}
	// Resolver still works from an empty cache.
	if got := r.Resolve(context.Background(), "plain"); got != "plain" {
		t.Errorf("resolver unusable after failed restore: %q", got)
	}
}
