package app

import (
	"context"
	"log"
	"net/http"

	"waypost/api/internal/config"
	"waypost/api/internal/directory"
	"waypost/api/internal/edge"
	"waypost/api/internal/persist"
)

// lister aggregates the full listing set from upstream.
type lister interface {
	FetchAll(ctx context.Context) ([]directory.Listing, error)
}

// groupIndexer is the category group index: read snapshot, rebuild, and
// restore from durable storage.
type groupIndexer interface {
	Snapshot() persist.GroupIndex
	Rebuild(ctx context.Context) (int, error)
	Restore(ctx context.Context) error
}

// mediaState restores the persisted media cache at startup.
type mediaState interface {
	Restore(ctx context.Context) error
}

type Service struct {
	cfg    config.Config
	lister lister
	groups groupIndexer
	media  mediaState
	store  persist.Store
	purger *edge.Purger
}

func New(cfg config.Config, lister lister, groups groupIndexer, media mediaState, store persist.Store, purger *edge.Purger) *Service {
	return &Service{
		cfg:    cfg,
		lister: lister,
		groups: groups,
		media:  media,
		store:  store,
		purger: purger,
	}
}

// Bootstrap restores persisted state and builds the first group index.
// Restore failures degrade to empty state with a warning; an upstream
// failure is returned so main can log it, with the restored snapshot left
// serving reads in the meantime.
func (s *Service) Bootstrap(ctx context.Context) error {
	if err := s.media.Restore(ctx); err != nil {
		log.Printf("bootstrap: media cache unreadable, starting empty: %v", err)
	}
	if err := s.groups.Restore(ctx); err != nil {
		log.Printf("bootstrap: group index unreadable, starting empty: %v", err)
	}
	if _, err := s.groups.Rebuild(ctx); err != nil {
		return err
	}
	return nil
}

// Listings aggregates the directory from upstream and runs the query
// pipeline over it.
func (s *Service) Listings(ctx context.Context, params directory.ListParams) (directory.ListPage, error) {
	items, err := s.lister.FetchAll(ctx)
	if err != nil {
		log.Printf("listings: aggregate: %v", err)
		return directory.ListPage{}, domainError(http.StatusBadGateway, "UPSTREAM_ERROR", "Could not load listings", nil)
	}
	return directory.Query(items, s.groups.Snapshot(), params), nil
}

// Groups returns the current group index snapshot.
func (s *Service) Groups() persist.GroupIndex {
	return s.groups.Snapshot()
}

// RebuildGroups rebuilds the group index from upstream and schedules a
// best-effort edge purge. Returns the number of groups.
func (s *Service) RebuildGroups(ctx context.Context) (int, error) {
	n, err := s.groups.Rebuild(ctx)
	if err != nil {
		log.Printf("groups: rebuild: %v", err)
		return 0, domainError(http.StatusBadGateway, "UPSTREAM_ERROR", "Could not rebuild category groups", nil)
	}
	s.purger.PurgeAsync()
	return n, nil
}

// NotifyContentChanged handles the upstream change webhook: rebuild the
// group index and purge the edge cache, both best-effort. The webhook is
// always acknowledged; failures are logged, never returned to the sender.
func (s *Service) NotifyContentChanged(ctx context.Context) {
	if _, err := s.groups.Rebuild(ctx); err != nil {
		log.Printf("webhook: rebuild: %v", err)
		return
	}
	s.purger.PurgeAsync()
}

// Ping reports durable-store health for the readiness probe.
func (s *Service) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

// WebhookToken is the shared secret expected on the content webhook.
func (s *Service) WebhookToken() string {
	return s.cfg.WebhookToken
}
