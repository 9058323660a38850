// Package directory holds the core of the service: flattening upstream
// entries into listings, aggregating them across pages, bucketing
// categories into groups, and answering filtered, sorted, paginated
// queries.
package directory

import (
	"context"
	"strings"

	"waypost/api/internal/slug"
	"waypost/api/internal/upstream"
)

// Listing is the normalized shape served to clients. Every string field
// defaults to "" — the JSON output never contains null.
type Listing struct {
	ID          string `json:"id"`
	Handle      string `json:"handle"`
	Name        string `json:"name"`
	Category    string `json:"category"`
	Featured    bool   `json:"featured"`
	Image       string `json:"image"`
	Address     string `json:"address"`
	Phone       string `json:"phone"`
	Email       string `json:"email"`
	Website     string `json:"website"`
	Instagram   string `json:"instagram"`
	Facebook    string `json:"facebook"`
	Hours       string `json:"hours"`
	Description string `json:"description"`
}

// MediaResolver fills in image fields during flattening.
type MediaResolver interface {
	Resolve(ctx context.Context, ref string) string
}

// value is the resolved form of one field: either scalar text or a nested
// sub-field map, never both.
type value struct {
	text   string
	nested map[string]value
}

// maxFieldDepth bounds nested-reference recursion; entries referencing
// each other otherwise flatten forever.
const maxFieldDepth = 3

func flattenFields(fields []upstream.Field, depth int) map[string]value {
	bag := make(map[string]value, len(fields))
	for _, f := range fields {
		bag[f.Key] = resolveField(f, depth)
	}
	return bag
}

func resolveField(f upstream.Field, depth int) value {
	switch {
	case f.Value != "":
		return value{text: f.Value}
	case f.Reference == nil:
		return value{}
	case f.Reference.Image != nil && f.Reference.Image.URL != "":
		return value{text: f.Reference.Image.URL}
	case len(f.Reference.Fields) > 0 && depth < maxFieldDepth:
		return value{nested: flattenFields(f.Reference.Fields, depth+1)}
	case f.Reference.Handle != "":
		return value{text: f.Reference.Handle}
	default:
		return value{}
	}
}

func text(bag map[string]value, key string) string {
	return bag[key].text
}

var featuredFlags = map[string]struct{}{
	"true":     {},
	"1":        {},
	"yes":      {},
	"y":        {},
	"featured": {},
}

func isFeatured(raw string) bool {
	_, ok := featuredFlags[strings.ToLower(strings.TrimSpace(raw))]
	return ok
}

// newListing flattens one upstream entry. Category prefers the
// category_handle field over category when both are present.
func newListing(ctx context.Context, e upstream.Entry, media MediaResolver) Listing {
	bag := flattenFields(e.Fields, 0)

	l := Listing{
		ID:        e.ID,
		Handle:    e.Handle,
		Name:      text(bag, "name"),
		Address:   text(bag, "address"),
		Phone:     text(bag, "phone"),
		Email:     text(bag, "email"),
		Website:   text(bag, "website"),
		Instagram: text(bag, "instagram"),
		Facebook:  text(bag, "facebook"),
		Hours:     text(bag, "hours"),
	}

	// Rich-text descriptions arrive as a nested entry with a text field;
	// unwrap one level only.
	if d := bag["description"]; d.nested != nil {
		l.Description = d.nested["text"].text
	} else {
		l.Description = d.text
	}

	l.Image = media.Resolve(ctx, text(bag, "image"))

	category := text(bag, "category_handle")
	if category == "" {
		category = text(bag, "category")
	}
	l.Category = slug.Normalize(category)

	l.Featured = isFeatured(text(bag, "featured"))
	return l
}
