package gateway

import (
	"context"
	"database/sql"
	"sync"

	"apptrack-engine/internal/domain"
	"apptrack-engine/internal/events"
	"apptrack-engine/internal/store"
)

// Gateway is the single write path to the application records. Every
// mutation goes through here; after each one the full current snapshot
// is pushed to in-process subscribers (metrics recompute) and a typed
// event goes out on the SSE hub so the UI refreshes.
//
// The mutex serializes mutations, so there is exactly one snapshot push
// in flight at a time and subscribers never see interleaved updates.
type Gateway struct {
	db  *sql.DB
	hub *events.Hub

	mu   sync.Mutex
	subs map[int]subscriber
	next int
}

type subscriber struct {
	onChange func([]domain.Application)
	onError  func(error)
}

func New(db *sql.DB, hub *events.Hub) *Gateway {
	return &Gateway{db: db, hub: hub, subs: make(map[int]subscriber)}
}

// Subscribe registers a snapshot listener and immediately delivers the
// current record set. The returned func releases the subscription.
func (g *Gateway) Subscribe(onChange func([]domain.Application), onError func(error)) (unsubscribe func()) {
	g.mu.Lock()
	id := g.next
	g.next++
	g.subs[id] = subscriber{onChange: onChange, onError: onError}

	// initial delivery stays inside the lock so a concurrent mutation's
	// fresher push cannot land before this older snapshot
	recs, err := store.List(context.Background(), g.db, store.ListOpts{})
	if err != nil {
		if onError != nil {
			onError(err)
		}
	} else {
		onChange(recs)
	}
	g.mu.Unlock()

	return func() {
		g.mu.Lock()
		delete(g.subs, id)
		g.mu.Unlock()
	}
}

// Snapshot returns the full current record set.
func (g *Gateway) Snapshot(ctx context.Context) ([]domain.Application, error) {
	return store.List(ctx, g.db, store.ListOpts{})
}

// List is Snapshot with a sort, for the table endpoint.
func (g *Gateway) List(ctx context.Context, opts store.ListOpts) ([]domain.Application, error) {
	return store.List(ctx, g.db, opts)
}

// Add creates a record (id and updatedAt assigned by the store).
func (g *Gateway) Add(ctx context.Context, reqID string, a domain.Application) (domain.Application, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	created, err := store.Insert(ctx, g.db, a)
	if err != nil {
		return domain.Application{}, err
	}
	g.hub.Publish(events.MakeEvent(reqID, events.TypeApplicationCreated, 1, map[string]any{"id": created.ID}))
	g.notifyLocked(ctx)
	return created, nil
}

// AddFromSource creates a record deduped by its source id. Returns
// false without error when the record was already present.
func (g *Gateway) AddFromSource(ctx context.Context, a domain.Application) (added bool, err error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	added, err = store.InsertIgnore(ctx, g.db, a)
	if err != nil || !added {
		return added, err
	}
	g.hub.Publish(events.MakeEvent("", events.TypeApplicationCreated, 1, map[string]any{"source_id": a.SourceID}))
	g.notifyLocked(ctx)
	return true, nil
}

// UpdateStatus moves a record to a new stage.
// Returns store.ErrNotFound when the id does not exist.
func (g *Gateway) UpdateStatus(ctx context.Context, reqID, id string, status domain.Status) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if err := store.UpdateStatus(ctx, g.db, id, status); err != nil {
		return err
	}
	g.hub.Publish(events.MakeEvent(reqID, events.TypeStatusChanged, 1, map[string]any{"id": id, "status": status}))
	g.notifyLocked(ctx)
	return nil
}

// Remove deletes a record.
// Returns store.ErrNotFound when the id does not exist.
func (g *Gateway) Remove(ctx context.Context, reqID, id string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if err := store.Delete(ctx, g.db, id); err != nil {
		return err
	}
	g.hub.Publish(events.MakeEvent(reqID, events.TypeApplicationDeleted, 1, map[string]any{"id": id}))
	g.notifyLocked(ctx)
	return nil
}

// notifyLocked reloads the snapshot and pushes it to every subscriber.
// Caller holds g.mu.
func (g *Gateway) notifyLocked(ctx context.Context) {
	recs, err := store.List(ctx, g.db, store.ListOpts{})
	for _, s := range g.subs {
		if err != nil {
			if s.onError != nil {
				s.onError(err)
			}
			continue
		}
		s.onChange(recs)
	}
}
