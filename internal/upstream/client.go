// Package upstream is the client for the content store's GraphQL API.
// The store exposes two reads the service cares about: a paginated entry
// query (listings and categories) and a single-node media URL lookup.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// PageSize is the per-request entry limit accepted by the content store.
const PageSize = 250

// Entry is one record returned by the entry query.
type Entry struct {
	ID     string  `json:"id"`
	Handle string  `json:"handle"`
	Fields []Field `json:"fields"`
}

// Field is a single key of an entry. Exactly one of Value or Reference is
// normally populated; both may be empty for unset optional fields.
type Field struct {
	Key       string     `json:"key"`
	Value     string     `json:"value"`
	Reference *Reference `json:"reference"`
}

// Reference is the expansion of a reference field: media assets carry
// Image, nested entries carry Fields, thin references carry only Handle.
type Reference struct {
	Handle string  `json:"handle"`
	Image  *Image  `json:"image"`
	Fields []Field `json:"fields"`
}

type Image struct {
	URL string `json:"url"`
}

// Page is one page of entries plus the continuation state.
type Page struct {
	Entries []Entry
	Cursor  string
	HasMore bool
}

type Client struct {
	endpoint string
	token    string
	http     *http.Client
}

func New(endpoint, token string, timeout time.Duration) *Client {
	return &Client{
		endpoint: endpoint,
		token:    token,
		http:     &http.Client{Timeout: timeout},
	}
}

const entriesQuery = `
query Entries($kind: String!, $first: Int!, $after: String) {
  entries(kind: $kind, first: $first, after: $after) {
    nodes {
      id
      handle
      fields {
        key
        value
        reference {
          handle
          image { url }
          fields {
            key
            value
            reference {
              handle
              image { url }
            }
          }
        }
      }
    }
    pageInfo { hasNextPage endCursor }
  }
}`

const mediaQuery = `
query Media($id: ID!) {
  node(id: $id) {
    ... on MediaImage {
      image { url }
    }
  }
}`

// Entries fetches one page of entries of the given kind. An empty cursor
// starts from the beginning.
func (c *Client) Entries(ctx context.Context, kind, cursor string) (Page, error) {
	vars := map[string]any{"kind": kind, "first": PageSize}
	if cursor != "" {
		vars["after"] = cursor
	}
	var data struct {
		Entries struct {
			Nodes    []Entry `json:"nodes"`
			PageInfo struct {
				HasNextPage bool   `json:"hasNextPage"`
				EndCursor   string `json:"endCursor"`
			} `json:"pageInfo"`
		} `json:"entries"`
	}
	if err := c.query(ctx, entriesQuery, vars, &data); err != nil {
		return Page{}, fmt.Errorf("entries %q: %w", kind, err)
	}
	return Page{
		Entries: data.Entries.Nodes,
		Cursor:  data.Entries.PageInfo.EndCursor,
		HasMore: data.Entries.PageInfo.HasNextPage,
	}, nil
}

// MediaURL resolves a media reference to its hosted URL. Returns "" when
// the node exists but carries no image.
func (c *Client) MediaURL(ctx context.Context, ref string) (string, error) {
	var data struct {
		Node struct {
			Image *Image `json:"image"`
		} `json:"node"`
	}
	if err := c.query(ctx, mediaQuery, map[string]any{"id": ref}, &data); err != nil {
		return "", fmt.Errorf("media %s: %w", ref, err)
	}
	if data.Node.Image == nil {
		return "", nil
	}
	return data.Node.Image.URL, nil
}

func (c *Client) query(ctx context.Context, query string, vars map[string]any, out any) error {
	payload, err := json.Marshal(map[string]any{"query": query, "variables": vars})
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("post: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("status %s", resp.Status)
	}

	var envelope struct {
		Data   json.RawMessage `json:"data"`
		Errors []struct {
			Message string `json:"message"`
		} `json:"errors"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if len(envelope.Errors) > 0 {
		return fmt.Errorf("graphql: %s", envelope.Errors[0].Message)
	}
	if len(envelope.Data) == 0 {
		return fmt.Errorf("empty response")
	}
	if err := json.Unmarshal(envelope.Data, out); err != nil {
		return fmt.Errorf("decode data: %w", err)
	}
	return nil
}
