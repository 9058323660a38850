// Package edge notifies the edge cache that directory content changed.
package edge

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"
)

// Purger issues best-effort purge requests to the edge cache. A nil
// *Purger is valid and does nothing, so callers never need to check
// whether purging is configured.
type Purger struct {
	url    string
	token  string
	client *http.Client
}

func NewPurger(url, token string) *Purger {
	if strings.TrimSpace(url) == "" {
		return nil
	}
	return &Purger{
		url:    url,
		token:  token,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

// PurgeAsync fires the purge in a detached goroutine with its own
// deadline. Failures are logged and never reach the caller; the purge is
// decoupled from the request that triggered it.
func (p *Purger) PurgeAsync() {
	if p == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := p.purge(ctx); err != nil {
			log.Printf("edge: purge failed: %v", err)
		}
	}()
}

func (p *Purger) purge(ctx context.Context) error {
	body := strings.NewReader(`{"purge_everything":true}`)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.url, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if p.token != "" {
		req.Header.Set("Authorization", "Bearer "+p.token)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("post: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("purge endpoint returned %s", resp.Status)
	}
	return nil
}
