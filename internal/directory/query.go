package directory

import (
	"sort"
	"strings"
	"sync"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"waypost/api/internal/persist"
	"waypost/api/internal/slug"
)

const (
	defaultPage    = 1
	defaultPerPage = 12
)

// ListParams are the query inputs. Zero values mean "not supplied".
type ListParams struct {
	Page     int
	PerPage  int
	Group    string
	Category string
	Text     string
}

// ListPage is the response envelope for a listing query.
type ListPage struct {
	Total      int       `json:"total"`
	TotalPages int       `json:"totalPages"`
	Page       int       `json:"page"`
	PerPage    int       `json:"perPage"`
	Items      []Listing `json:"items"`
}

// Query runs the pipeline over an in-memory collection: group resolution,
// filtering, sorting, pagination. Each stage is pure over the previous
// stage's output.
func Query(listings []Listing, index persist.GroupIndex, p ListParams) ListPage {
	if p.Page < defaultPage {
		p.Page = defaultPage
	}
	if p.PerPage < 1 {
		p.PerPage = defaultPerPage
	}

	var handles map[string]struct{}
	if p.Group != "" {
		if matched, ok := ResolveGroup(index, p.Group); ok {
			handles = matched
		}
	}

	filtered := filterListings(listings, handles, p.Category, p.Text)
	sortListings(filtered)

	total := len(filtered)
	totalPages := total / p.PerPage
	if total%p.PerPage != 0 {
		totalPages++
	}
	if totalPages < 1 {
		totalPages = 1
	}

	// (page-1)*perPage can overflow for absurd inputs; anything past the
	// last page is just an empty slice, so divide before multiplying.
	start := total
	if p.Page-1 <= total/p.PerPage {
		start = (p.Page - 1) * p.PerPage
		if start > total {
			start = total
		}
	}
	end := total
	if p.PerPage <= total-start {
		end = start + p.PerPage
	}

	return ListPage{
		Total:      total,
		TotalPages: totalPages,
		Page:       p.Page,
		PerPage:    p.PerPage,
		Items:      filtered[start:end],
	}
}

// ResolveGroup matches a loosely-specified group parameter against the
// index. Rules run in priority order: exact normalized equality, then the
// normalized key being a prefix of the parameter, then the parameter being
// a prefix of the key. Keys are scanned in sorted order and the longest
// normalized key satisfying a rule wins, so ambiguous prefix matches don't
// depend on map iteration order. No match means the group filter is a
// no-op, not an error.
func ResolveGroup(index persist.GroupIndex, raw string) (map[string]struct{}, bool) {
	want := slug.Normalize(raw)
	if want == "" || len(index) == 0 {
		return nil, false
	}

	keys := make([]string, 0, len(index))
	for k := range index {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	rules := []func(key string) bool{
		func(key string) bool { return key == want },
		func(key string) bool { return strings.HasPrefix(want, key) },
		func(key string) bool { return strings.HasPrefix(key, want) },
	}

	for _, rule := range rules {
		bestKey := ""
		bestLen := -1
		for _, k := range keys {
			normalized := slug.Normalize(k)
			if normalized == "" || !rule(normalized) {
				continue
			}
			if len(normalized) > bestLen {
				bestKey, bestLen = k, len(normalized)
			}
		}
		if bestLen >= 0 {
			handles := make(map[string]struct{}, len(index[bestKey]))
			for _, member := range index[bestKey] {
				handles[slug.Normalize(member.Handle)] = struct{}{}
			}
			return handles, true
		}
	}
	return nil, false
}

func filterListings(listings []Listing, handles map[string]struct{}, category, needle string) []Listing {
	category = slug.Normalize(category)
	needle = strings.ToLower(strings.TrimSpace(needle))

	out := make([]Listing, 0, len(listings))
	for _, l := range listings {
		if handles != nil {
			if _, ok := handles[l.Category]; !ok {
				continue
			}
		}
		if category != "" && l.Category != category {
			continue
		}
		if needle != "" {
			haystack := strings.ToLower(strings.Join([]string{
				l.Name, l.Address, l.Website, l.Instagram, l.Facebook,
			}, " "))
			if !strings.Contains(haystack, needle) {
				continue
			}
		}
		out = append(out, l)
	}
	return out
}

// collators pools name collators across requests. A Collator reuses its
// internal iterators during CompareString, so a single shared instance is
// not safe under concurrent queries.
var collators = sync.Pool{
	New: func() any { return collate.New(language.Und, collate.Loose) },
}

// sortListings orders featured listings first, then by name ascending
// using locale-aware collation. Stable for equal keys.
func sortListings(listings []Listing) {
	c := collators.Get().(*collate.Collator)
	defer collators.Put(c)
	sort.SliceStable(listings, func(i, j int) bool {
		if listings[i].Featured != listings[j].Featured {
			return listings[i].Featured
		}
		return c.CompareString(listings[i].Name, listings[j].Name) < 0
	})
}
