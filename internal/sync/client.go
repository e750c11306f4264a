package sync

import (
	"context"

	"github.com/golang/glog"

	"github.com/armankhan8150/taskscape-front/internal/gateway"
	"github.com/armankhan8150/taskscape-front/internal/models"
	"github.com/armankhan8150/taskscape-front/internal/realtime"
)

// Client is one synchronization layer instance: it owns the entity store,
// the query cache, the mutation pipeline, the aggregator, and the change
// feed consumption. Construct one per session; multiple isolated instances
// can coexist (there is no ambient singleton).
type Client struct {
	ctx    context.Context
	cancel context.CancelFunc

	gateway gateway.Gateway
	feed    realtime.Feed

	store      *EntityStore
	cache      *QueryCache
	pipeline   *Pipeline
	aggregator *Aggregator

	// changes coalesces every store/cache transition into a single edge
	// for the rendering loop
	changes chan struct{}

	releases []func()
}

// NewClient wires a client over a gateway and an optional change feed.
// Close releases the feed subscription and all internal watchers.
func NewClient(ctx context.Context, gw gateway.Gateway, feed realtime.Feed) *Client {
	cancelCtx, cancel := context.WithCancel(ctx)

	store := NewEntityStore()
	cache := NewQueryCache(cancelCtx, store, gw)

	c := &Client{
		ctx:        cancelCtx,
		cancel:     cancel,
		gateway:    gw,
		feed:       feed,
		store:      store,
		cache:      cache,
		pipeline:   NewPipeline(cancelCtx, store, cache, gw),
		aggregator: NewAggregator(store),
		changes:    make(chan struct{}, 1),
	}

	c.releases = append(c.releases, cache.OnChange(c.notifyChange))
	for _, kind := range models.Kinds() {
		c.releases = append(c.releases, store.Subscribe(kind, func(StoreEvent) {
			c.notifyChange()
		}))
	}

	if feed != nil {
		go c.consumeFeed()
	}
	return c
}

// Close tears the client down: the feed subscription is released and
// outstanding fetches are cancelled.
func (c *Client) Close() {
	c.cancel()
	if c.feed != nil {
		c.feed.Close()
	}
	c.aggregator.Close()
	for _, release := range c.releases {
		release()
	}
}

func (c *Client) Store() *EntityStore { return c.store }

func (c *Client) Cache() *QueryCache { return c.cache }

func (c *Client) Aggregator() *Aggregator { return c.aggregator }

// SessionUserID is the member id of the authenticated user
func (c *Client) SessionUserID() string {
	return c.gateway.SessionUserID()
}

// Changes yields an edge after any store or cache transition. Edges are
// coalesced; a receive means "something changed since the last receive".
func (c *Client) Changes() <-chan struct{} {
	return c.changes
}

func (c *Client) notifyChange() {
	select {
	case c.changes <- struct{}{}:
	default:
	}
}

// Read returns the cached result for a query, refreshing it in the
// background when stale (stale-while-revalidate)
func (c *Client) Read(key QueryKey) QueryResult {
	return c.cache.Read(key)
}

// Watch registers a mounted view on a query key: invalidations trigger an
// immediate background refetch while watched. The returned func releases
// the watch.
func (c *Client) Watch(key QueryKey) func() {
	return c.cache.Watch(key)
}

// MutateAsync validates and executes the mutation, delivering the confirmed
// entity or a typed failure to the callback
func (c *Client) MutateAsync(m Mutation, callback Callback[models.Entity]) {
	c.pipeline.Run(m, callback)
}

// Mutate executes the mutation and blocks for its outcome
func (c *Client) Mutate(m Mutation) (models.Entity, error) {
	callback, result := NewBlockingCallback[models.Entity]()
	c.pipeline.Run(m, callback)
	select {
	case <-c.ctx.Done():
		return nil, c.ctx.Err()
	case r := <-result:
		return r.Result, r.Error
	}
}

// consumeFeed turns change notifications into cache invalidations. Events
// are hints, not diffs: invalidation is coarse per kind, and a redundant
// hint for a change this client made itself is harmless (the refetch
// confirms the already-applied state).
func (c *Client) consumeFeed() {
	for {
		select {
		case <-c.ctx.Done():
			return
		case event, ok := <-c.feed.Events():
			if !ok {
				return
			}
			switch event.Type {
			case realtime.EventResync:
				// the channel reconnected; anything may have been missed
				glog.Infof("[sync]feed resync, invalidating all queries\n")
				c.cache.InvalidateAll()
			default:
				glog.V(1).Infof("[sync]feed %s %s %s\n", event.Type, event.Kind, event.ID)
				c.cache.InvalidateKind(event.Kind)
			}
		}
	}
}

// Task returns the task by id, or nil if not loaded
func (c *Client) Task(id string) *models.Task {
	if task, ok := c.store.Get(models.KindTask, id).(*models.Task); ok {
		return task
	}
	return nil
}

// Project returns the project by id, or nil if not loaded
func (c *Client) Project(id string) *models.Project {
	if project, ok := c.store.Get(models.KindProject, id).(*models.Project); ok {
		return project
	}
	return nil
}

// Member returns the team member by id, or nil if not loaded
func (c *Client) Member(id string) *models.TeamMember {
	if member, ok := c.store.Get(models.KindMember, id).(*models.TeamMember); ok {
		return member
	}
	return nil
}

// Projects resolves a projects query result to records, in result order
func (c *Client) Projects(ids []string) []*models.Project {
	out := make([]*models.Project, 0, len(ids))
	for _, entity := range c.store.Resolve(models.KindProject, ids) {
		if project, ok := entity.(*models.Project); ok {
			out = append(out, project)
		}
	}
	return out
}

// Tasks resolves a tasks query result to records, in result order
func (c *Client) Tasks(ids []string) []*models.Task {
	out := make([]*models.Task, 0, len(ids))
	for _, entity := range c.store.Resolve(models.KindTask, ids) {
		if task, ok := entity.(*models.Task); ok {
			out = append(out, task)
		}
	}
	return out
}

// Comments resolves a comments query result to records, in result order
func (c *Client) Comments(ids []string) []*models.Comment {
	out := make([]*models.Comment, 0, len(ids))
	for _, entity := range c.store.Resolve(models.KindComment, ids) {
		if comment, ok := entity.(*models.Comment); ok {
			out = append(out, comment)
		}
	}
	return out
}

// Members resolves a members query result to records, in result order
func (c *Client) Members(ids []string) []*models.TeamMember {
	out := make([]*models.TeamMember, 0, len(ids))
	for _, entity := range c.store.Resolve(models.KindMember, ids) {
		if member, ok := entity.(*models.TeamMember); ok {
			out = append(out, member)
		}
	}
	return out
}
