package sync

import (
	"context"
	"strings"
	gosync "sync"

	"github.com/golang/glog"
	"github.com/oklog/ulid/v2"

	"github.com/armankhan8150/taskscape-front/internal/gateway"
	"github.com/armankhan8150/taskscape-front/internal/models"
)

// QueryKey is a logical descriptor of a read request: an entity kind plus
// optional scoping parameters in canonical "k=v" form.
type QueryKey struct {
	Kind  models.Kind
	Scope string
}

func (k QueryKey) String() string {
	if k.Scope == "" {
		return string(k.Kind)
	}
	return string(k.Kind) + "?" + k.Scope
}

func (k QueryKey) params() gateway.Params {
	if k.Scope == "" {
		return nil
	}
	params := gateway.Params{}
	for _, pair := range strings.Split(k.Scope, "&") {
		if name, value, ok := strings.Cut(pair, "="); ok {
			params[name] = value
		}
	}
	return params
}

// ProjectsQuery keys the all-projects list
func ProjectsQuery() QueryKey {
	return QueryKey{Kind: models.KindProject}
}

// TasksQuery keys the all-tasks list
func TasksQuery() QueryKey {
	return QueryKey{Kind: models.KindTask}
}

// CommentsQuery keys the comments of one task, oldest first
func CommentsQuery(taskID string) QueryKey {
	return QueryKey{Kind: models.KindComment, Scope: "task_id=" + taskID}
}

// MembersQuery keys the workspace member list
func MembersQuery() QueryKey {
	return QueryKey{Kind: models.KindMember}
}

// QueryStatus is the freshness of a cached query result
type QueryStatus int

const (
	QueryStale QueryStatus = iota
	QueryFresh
	QueryLoading
	QueryError
)

// QueryResult is a point-in-time view of a cache entry
type QueryResult struct {
	// IDs is the last-known result, in server order. Nil if never fetched.
	IDs []string

	Status QueryStatus

	// Loading reports an in-flight fetch for the key
	Loading bool

	// Err is the last fetch failure, cleared by the next success
	Err error
}

type queryEntry struct {
	ids       []string
	hasResult bool
	status    QueryStatus
	lastError error

	inFlight          bool
	inFlightRequestID string

	// issuedSeq is incremented per issued fetch; a completing fetch whose
	// sequence is below the latest issued one is superseded and discarded
	issuedSeq uint64

	// invalidatedSeq marks the highest fetch sequence already in flight
	// when the entry was last invalidated. A fetch at or below it was
	// issued before the invalidation, so its result is usable but cannot
	// count as fresh.
	invalidatedSeq uint64

	watchers int
}

// QueryCache deduplicates and caches logical queries against the gateway,
// normalizing fetched records into the entity store.
type QueryCache struct {
	ctx context.Context

	store   *EntityStore
	gateway gateway.Gateway

	mu      gosync.Mutex
	entries map[QueryKey]*queryEntry

	onChange *callbackList[func()]
}

func NewQueryCache(ctx context.Context, store *EntityStore, gw gateway.Gateway) *QueryCache {
	return &QueryCache{
		ctx:      ctx,
		store:    store,
		gateway:  gw,
		entries:  map[QueryKey]*queryEntry{},
		onChange: &callbackList[func()]{},
	}
}

// OnChange registers a callback invoked after any entry transition. The
// returned func unsubscribes.
func (c *QueryCache) OnChange(callback func()) func() {
	return c.onChange.add(callback)
}

func (c *QueryCache) entry(key QueryKey) *queryEntry {
	e, ok := c.entries[key]
	if !ok {
		e = &queryEntry{status: QueryStale}
		c.entries[key] = e
	}
	return e
}

// Read returns the cached result for the key, triggering a background fetch
// when the entry is stale, errored, or absent (stale-while-revalidate). The
// last-known result is always returned, even while refreshing.
func (c *QueryCache) Read(key QueryKey) QueryResult {
	c.mu.Lock()
	e := c.entry(key)
	if e.status != QueryFresh && !c.coalesced(e) {
		c.fetchLocked(key, e)
	}
	result := snapshotResult(e)
	c.mu.Unlock()
	return result
}

// Peek returns the entry state without triggering a fetch
func (c *QueryCache) Peek(key QueryKey) QueryResult {
	c.mu.Lock()
	e := c.entry(key)
	result := snapshotResult(e)
	c.mu.Unlock()
	return result
}

// Refresh proactively issues a fetch for the key, regardless of freshness.
// An in-flight fetch for a still-valid entry is reused.
func (c *QueryCache) Refresh(key QueryKey) {
	c.mu.Lock()
	e := c.entry(key)
	if !c.coalesced(e) {
		c.fetchLocked(key, e)
	}
	c.mu.Unlock()
}

// coalesced reports whether an in-flight fetch already covers the entry's
// current needs. An entry invalidated mid-flight is not covered: its status
// was knocked back to stale, so a new fetch (with a higher sequence) is
// issued and the stale one discarded on completion.
func (c *QueryCache) coalesced(e *queryEntry) bool {
	return e.inFlight && e.status == QueryLoading
}

func snapshotResult(e *queryEntry) QueryResult {
	result := QueryResult{
		Status:  e.status,
		Loading: e.inFlight,
		Err:     e.lastError,
	}
	if e.hasResult {
		result.IDs = make([]string, len(e.ids))
		copy(result.IDs, e.ids)
	}
	return result
}

// fetchLocked issues one fetch for the key. Caller holds c.mu.
func (c *QueryCache) fetchLocked(key QueryKey, e *queryEntry) {
	e.issuedSeq += 1
	seq := e.issuedSeq
	e.inFlight = true
	e.inFlightRequestID = ulid.Make().String()
	e.status = QueryLoading

	requestID := e.inFlightRequestID
	glog.V(1).Infof("[qc]fetch %s seq=%d req=%s\n", key, seq, requestID)

	go func() {
		records, err := c.gateway.Fetch(c.ctx, key.Kind, key.params())
		c.complete(key, seq, records, err)
	}()
}

func (c *QueryCache) complete(key QueryKey, seq uint64, records []models.Entity, err error) {
	c.mu.Lock()
	e := c.entry(key)

	if seq < e.issuedSeq {
		// superseded by a later fetch; never apply stale results
		glog.V(1).Infof("[qc]discard %s seq=%d latest=%d\n", key, seq, e.issuedSeq)
		c.mu.Unlock()
		return
	}

	e.inFlight = false
	e.inFlightRequestID = ""

	if err != nil {
		// keep the last-good result; a failed refresh never blanks data
		e.status = QueryError
		e.lastError = err
		c.mu.Unlock()
		glog.Infof("[qc]fetch error %s = %s\n", key, err)
		c.notifyChange()
		return
	}

	ids := make([]string, len(records))
	for i, record := range records {
		ids[i] = record.EntityID()
	}
	e.ids = ids
	e.hasResult = true
	e.lastError = nil
	if seq <= e.invalidatedSeq {
		// invalidated while this fetch was in flight; the result is still
		// the best data available, but the next read must refetch
		glog.V(1).Infof("[qc]stale complete %s seq=%d invalidated=%d\n", key, seq, e.invalidatedSeq)
		e.status = QueryStale
	} else {
		e.status = QueryFresh
	}
	c.mu.Unlock()

	// normalize outside the cache lock; the store is its own critical section
	for _, record := range records {
		c.store.Upsert(record)
	}
	c.notifyChange()
}

// Invalidate marks the entry stale. The data stays readable; the next Read
// refetches. Watched entries refetch immediately.
func (c *QueryCache) Invalidate(key QueryKey) {
	c.mu.Lock()
	e := c.entry(key)
	c.invalidateLocked(key, e)
	c.mu.Unlock()
	c.notifyChange()
}

// InvalidateKind marks every entry of the kind stale
func (c *QueryCache) InvalidateKind(kind models.Kind) {
	c.mu.Lock()
	for key, e := range c.entries {
		if key.Kind == kind {
			c.invalidateLocked(key, e)
		}
	}
	c.mu.Unlock()
	c.notifyChange()
}

// InvalidateAll marks every entry stale, used when the notification channel
// reconnects and the gap cannot be accounted for
func (c *QueryCache) InvalidateAll() {
	c.mu.Lock()
	for key, e := range c.entries {
		c.invalidateLocked(key, e)
	}
	c.mu.Unlock()
	c.notifyChange()
}

func (c *QueryCache) invalidateLocked(key QueryKey, e *queryEntry) {
	if e.status == QueryFresh || e.status == QueryLoading {
		e.status = QueryStale
	}
	// any fetch issued up to now predates the invalidation
	e.invalidatedSeq = e.issuedSeq
	if e.watchers > 0 {
		// a mounted view reads this key; refresh in the background now
		c.fetchLocked(key, e)
	}
}

// Watch marks the key as read by a mounted view, so invalidations trigger an
// immediate background refetch instead of waiting for the next Read. The
// returned func releases the watch.
func (c *QueryCache) Watch(key QueryKey) func() {
	c.mu.Lock()
	e := c.entry(key)
	e.watchers += 1
	if e.status != QueryFresh && !c.coalesced(e) {
		c.fetchLocked(key, e)
	}
	c.mu.Unlock()

	var once gosync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			if e := c.entry(key); e.watchers > 0 {
				e.watchers -= 1
			}
			c.mu.Unlock()
		})
	}
}

func (c *QueryCache) notifyChange() {
	for _, callback := range c.onChange.get() {
		callback()
	}
}
