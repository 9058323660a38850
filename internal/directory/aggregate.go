package directory

import (
	"context"
	"fmt"

	"waypost/api/internal/upstream"
)

// Entry kinds in the content store.
const (
	KindListing  = "listing"
	KindCategory = "category"
)

// maxPages caps the pagination loop. An upstream that keeps reporting
// more pages gets truncated silently rather than looping forever.
const maxPages = 21

type entrySource interface {
	Entries(ctx context.Context, kind, cursor string) (upstream.Page, error)
}

// Aggregator fetches every listing page from upstream and flattens the
// results. Listings live for one request only; nothing here is cached.
type Aggregator struct {
	source entrySource
	media  MediaResolver
}

func NewAggregator(source entrySource, media MediaResolver) *Aggregator {
	return &Aggregator{source: source, media: media}
}

// FetchAll pages through the listing query until the upstream reports no
// further page or the safety bound is hit, then flattens every entry.
func (a *Aggregator) FetchAll(ctx context.Context) ([]Listing, error) {
	var entries []upstream.Entry
	cursor := ""
	for i := 0; i < maxPages; i++ {
		page, err := a.source.Entries(ctx, KindListing, cursor)
		if err != nil {
			return nil, fmt.Errorf("fetch listings: %w", err)
		}
		entries = append(entries, page.Entries...)
		if !page.HasMore {
			break
		}
		cursor = page.Cursor
	}

	listings := make([]Listing, 0, len(entries))
	for _, e := range entries {
		listings = append(listings, newListing(ctx, e, a.media))
	}
	return listings, nil
}
