// Package media resolves opaque media references into hosted URLs.
package media

import (
	"context"
	"log"
	"regexp"
	"strings"
	"sync"

	"waypost/api/internal/persist"
)

// refPrefix marks a global ID the content store can resolve. Anything else
// is treated as already final.
const refPrefix = "gid://"

var absoluteURL = regexp.MustCompile(`^https?://`)

// Lookup is the single-reference upstream resolution call.
type Lookup interface {
	MediaURL(ctx context.Context, ref string) (string, error)
}

// Resolver memoizes reference→URL resolutions in memory and persists the
// full map after each new resolution. A resolved entry is immutable, so
// concurrent duplicate resolutions cost an extra upstream call at worst.
type Resolver struct {
	lookup Lookup
	store  persist.Store

	mu   sync.Mutex
	urls persist.MediaMap
}

func NewResolver(lookup Lookup, store persist.Store) *Resolver {
	return &Resolver{
		lookup: lookup,
		store:  store,
		urls:   persist.MediaMap{},
	}
}

// Restore loads the persisted map. On failure the resolver starts empty;
// the caller decides how loudly to log the returned error.
func (r *Resolver) Restore(ctx context.Context) error {
	loaded, err := r.store.LoadMediaMap(ctx)
	if len(loaded) > 0 {
		r.mu.Lock()
		r.urls = loaded
		r.mu.Unlock()
	}
	return err
}

// Resolve turns a media reference into a URL. Absolute URLs and strings
// that are not references pass through unchanged. An unresolvable
// reference is returned as-is; callers treat a reference-shaped value in
// the output as unresolved, not as an error.
func (r *Resolver) Resolve(ctx context.Context, ref string) string {
	if ref == "" || absoluteURL.MatchString(ref) || !strings.HasPrefix(ref, refPrefix) {
		return ref
	}

	r.mu.Lock()
	cached, ok := r.urls[ref]
	r.mu.Unlock()
	if ok {
		return cached
	}

	url, err := r.lookup.MediaURL(ctx, ref)
	if err != nil {
		log.Printf("media: resolve %s: %v", ref, err)
		return ref
	}
	if url == "" {
		log.Printf("media: resolve %s: upstream returned no url", ref)
		return ref
	}

	r.mu.Lock()
	r.urls[ref] = url
	snapshot := make(persist.MediaMap, len(r.urls))
	for k, v := range r.urls {
		snapshot[k] = v
	}
	r.mu.Unlock()

	if err := r.store.SaveMediaMap(ctx, snapshot); err != nil {
		log.Printf("media: persist cache: %v", err)
	}
	return url
}
