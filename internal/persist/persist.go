// Package persist provides durable storage for the two documents the
// service keeps between restarts: the resolved-media map and the category
// group index. Both documents are small, read once at startup, and
// rewritten wholesale on every update.
package persist

import "context"

// MediaMap maps an opaque media reference to its resolved URL. Entries are
// never updated or expired once written.
type MediaMap map[string]string

// GroupMember is one category inside a group bucket.
type GroupMember struct {
	Name   string `json:"name"`
	Handle string `json:"handle"`
}

// GroupIndex maps a group label to its member categories in first-seen
// order.
type GroupIndex map[string][]GroupMember

// Store is the durable backend. Load methods return an empty document (not
// an error) when no state has been written yet.
type Store interface {
	LoadMediaMap(ctx context.Context) (MediaMap, error)
	SaveMediaMap(ctx context.Context, m MediaMap) error
	LoadGroupIndex(ctx context.Context) (GroupIndex, error)
	SaveGroupIndex(ctx context.Context, idx GroupIndex) error
	Ping(ctx context.Context) error
}

const (
	docMediaMap   = "media_cache"
	docGroupIndex = "category_groups"
)
