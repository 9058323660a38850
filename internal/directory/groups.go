package directory

import (
	"context"
	"fmt"
	"log"
	"sync/atomic"

	"waypost/api/internal/persist"
)

// defaultGroup buckets categories whose records name no group.
const defaultGroup = "Others"

// Index holds the category group index: a read-mostly snapshot rebuilt
// wholesale from upstream and swapped atomically, so readers see either
// the old or the new index, never a partial one.
type Index struct {
	source   entrySource
	store    persist.Store
	snapshot atomic.Pointer[persist.GroupIndex]
}

func NewIndex(source entrySource, store persist.Store) *Index {
	idx := &Index{source: source, store: store}
	empty := persist.GroupIndex{}
	idx.snapshot.Store(&empty)
	return idx
}

// Snapshot returns the current index. The returned map must be treated as
// read-only.
func (x *Index) Snapshot() persist.GroupIndex {
	return *x.snapshot.Load()
}

// Restore installs the persisted index, typically so reads work while the
// first upstream rebuild is still running or failing.
func (x *Index) Restore(ctx context.Context) error {
	loaded, err := x.store.LoadGroupIndex(ctx)
	if err == nil && len(loaded) > 0 {
		x.snapshot.Store(&loaded)
	}
	return err
}

// Rebuild fetches the category records (a single page; the taxonomy is
// small by design), buckets them by group, persists the result, and swaps
// it in. Safe to call repeatedly and concurrently with readers. Returns
// the number of groups.
func (x *Index) Rebuild(ctx context.Context) (int, error) {
	page, err := x.source.Entries(ctx, KindCategory, "")
	if err != nil {
		return 0, fmt.Errorf("fetch categories: %w", err)
	}

	next := persist.GroupIndex{}
	for _, e := range page.Entries {
		bag := flattenFields(e.Fields, 0)
		group := text(bag, "group")
		if group == "" {
			group = text(bag, "category_group")
		}
		if group == "" {
			group = defaultGroup
		}
		name := text(bag, "name")
		if name == "" {
			name = e.Handle
		}
		next[group] = append(next[group], persist.GroupMember{Name: name, Handle: e.Handle})
	}

	if err := x.store.SaveGroupIndex(ctx, next); err != nil {
		log.Printf("groups: persist index: %v", err)
	}
	x.snapshot.Store(&next)
	return len(next), nil
}
