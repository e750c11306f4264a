package sync

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-playground/assert/v2"

	"github.com/armankhan8150/taskscape-front/internal/models"
)

func newTestCache(gw *fakeGateway) (*QueryCache, *EntityStore) {
	store := NewEntityStore()
	return NewQueryCache(context.Background(), store, gw), store
}

func TestCacheReadFetchesAndNormalizes(t *testing.T) {
	gw := newFakeGateway()
	gw.set(models.KindTask, testTask("t1", "p1", models.StatusTodo), testTask("t2", "p1", models.StatusDone))
	cache, store := newTestCache(gw)

	first := cache.Read(TasksQuery())
	assert.Equal(t, true, first.IDs == nil)
	assert.Equal(t, QueryLoading, first.Status)

	waitFor(t, "fetch to complete", func() bool {
		return cache.Peek(TasksQuery()).Status == QueryFresh
	})

	result := cache.Read(TasksQuery())
	assert.Equal(t, []string{"t1", "t2"}, result.IDs)
	assert.Equal(t, 1, gw.fetchCount(models.KindTask))

	// records were normalized into the store
	task := store.Get(models.KindTask, "t2").(*models.Task)
	assert.Equal(t, models.StatusDone, task.Status)
}

func TestCacheFreshReadDoesNotRefetch(t *testing.T) {
	gw := newFakeGateway()
	gw.set(models.KindTask, testTask("t1", "p1", models.StatusTodo))
	cache, _ := newTestCache(gw)

	cache.Read(TasksQuery())
	waitFor(t, "fetch to complete", func() bool {
		return cache.Peek(TasksQuery()).Status == QueryFresh
	})

	cache.Read(TasksQuery())
	cache.Read(TasksQuery())
	assert.Equal(t, 1, gw.fetchCount(models.KindTask))
}

func TestCacheCoalescesConcurrentReads(t *testing.T) {
	gw := newFakeGateway()
	gw.set(models.KindTask, testTask("t1", "p1", models.StatusTodo))
	gate := make(chan struct{})
	gw.fetchGates = []chan struct{}{gate}
	cache, _ := newTestCache(gw)

	cache.Read(TasksQuery())
	cache.Read(TasksQuery())
	cache.Read(TasksQuery())

	close(gate)
	waitFor(t, "fetch to complete", func() bool {
		return cache.Peek(TasksQuery()).Status == QueryFresh
	})

	// the in-flight fetch covered every read
	assert.Equal(t, 1, gw.fetchCount(models.KindTask))
}

func TestCacheStaleResultDiscarded(t *testing.T) {
	gw := newFakeGateway()
	gw.set(models.KindTask, testTask("old", "p1", models.StatusTodo))
	firstGate := make(chan struct{})
	gw.fetchGates = []chan struct{}{firstGate}
	cache, _ := newTestCache(gw)

	// first fetch holds at the gate
	cache.Read(TasksQuery())
	<-gw.fetchBegan

	// invalidated mid-flight; the entry is stale again so the next read
	// issues a second, newer fetch
	cache.Invalidate(TasksQuery())
	gw.set(models.KindTask, testTask("new", "p1", models.StatusTodo))
	cache.Read(TasksQuery())

	waitFor(t, "second fetch to complete", func() bool {
		return cache.Peek(TasksQuery()).Status == QueryFresh
	})
	assert.Equal(t, []string{"new"}, cache.Peek(TasksQuery()).IDs)

	// the superseded first fetch completes afterwards and must not win
	close(firstGate)
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, []string{"new"}, cache.Peek(TasksQuery()).IDs)
	assert.Equal(t, QueryFresh, cache.Peek(TasksQuery()).Status)
	assert.Equal(t, 2, gw.fetchCount(models.KindTask))
}

func TestCacheInvalidateDuringFlightSurvivesCompletion(t *testing.T) {
	gw := newFakeGateway()
	gw.set(models.KindTask, testTask("old", "p1", models.StatusTodo))
	gate := make(chan struct{})
	gw.fetchGates = []chan struct{}{gate}
	cache, _ := newTestCache(gw)

	// fetch holds at the gate; the entry is unwatched, so the invalidation
	// issues no superseding fetch of its own
	cache.Read(TasksQuery())
	<-gw.fetchBegan
	cache.InvalidateKind(models.KindTask)
	gw.set(models.KindTask, testTask("new", "p1", models.StatusTodo))

	close(gate)
	waitFor(t, "gated fetch to complete", func() bool {
		return !cache.Peek(TasksQuery()).Loading
	})

	// the completed fetch predates the invalidation: its data is served
	// but must not read as fresh
	held := cache.Peek(TasksQuery())
	assert.Equal(t, QueryStale, held.Status)
	assert.Equal(t, []string{"old"}, held.IDs)

	// the next read refetches and picks up the change
	cache.Read(TasksQuery())
	waitFor(t, "refetch to complete", func() bool {
		return cache.Peek(TasksQuery()).Status == QueryFresh
	})
	assert.Equal(t, []string{"new"}, cache.Peek(TasksQuery()).IDs)
	assert.Equal(t, 2, gw.fetchCount(models.KindTask))
}

func TestCacheErrorKeepsLastGoodResult(t *testing.T) {
	gw := newFakeGateway()
	gw.set(models.KindTask, testTask("t1", "p1", models.StatusTodo))
	cache, _ := newTestCache(gw)

	cache.Read(TasksQuery())
	waitFor(t, "fetch to complete", func() bool {
		return cache.Peek(TasksQuery()).Status == QueryFresh
	})

	gw.mu.Lock()
	gw.fetchErr = errors.New("connection refused")
	gw.mu.Unlock()

	cache.Invalidate(TasksQuery())
	cache.Read(TasksQuery())
	waitFor(t, "refresh to fail", func() bool {
		return cache.Peek(TasksQuery()).Status == QueryError
	})

	result := cache.Peek(TasksQuery())
	assert.Equal(t, []string{"t1"}, result.IDs)
	assert.NotEqual(t, nil, result.Err)

	// recovery clears the error
	gw.mu.Lock()
	gw.fetchErr = nil
	gw.mu.Unlock()

	cache.Read(TasksQuery())
	waitFor(t, "refresh to recover", func() bool {
		return cache.Peek(TasksQuery()).Status == QueryFresh
	})
	assert.Equal(t, nil, cache.Peek(TasksQuery()).Err)
}

func TestCacheInvalidateMarksStaleWithoutFetching(t *testing.T) {
	gw := newFakeGateway()
	gw.set(models.KindTask, testTask("t1", "p1", models.StatusTodo))
	cache, _ := newTestCache(gw)

	cache.Read(TasksQuery())
	waitFor(t, "fetch to complete", func() bool {
		return cache.Peek(TasksQuery()).Status == QueryFresh
	})

	// unwatched entries stay lazy: stale data readable, no refetch yet
	cache.InvalidateKind(models.KindTask)
	assert.Equal(t, QueryStale, cache.Peek(TasksQuery()).Status)
	assert.Equal(t, []string{"t1"}, cache.Peek(TasksQuery()).IDs)
	assert.Equal(t, 1, gw.fetchCount(models.KindTask))
}

func TestCacheWatchedKeyRefetchesOnInvalidate(t *testing.T) {
	gw := newFakeGateway()
	gw.set(models.KindTask, testTask("t1", "p1", models.StatusTodo))
	cache, _ := newTestCache(gw)

	release := cache.Watch(TasksQuery())
	defer release()
	waitFor(t, "initial fetch", func() bool {
		return cache.Peek(TasksQuery()).Status == QueryFresh
	})

	gw.set(models.KindTask, testTask("t1", "p1", models.StatusTodo), testTask("t2", "p1", models.StatusTodo))
	cache.InvalidateKind(models.KindTask)

	waitFor(t, "watched refetch", func() bool {
		result := cache.Peek(TasksQuery())
		return result.Status == QueryFresh && len(result.IDs) == 2
	})
	assert.Equal(t, 2, gw.fetchCount(models.KindTask))
}

func TestCacheReleasedWatchStopsRefetching(t *testing.T) {
	gw := newFakeGateway()
	gw.set(models.KindTask, testTask("t1", "p1", models.StatusTodo))
	cache, _ := newTestCache(gw)

	release := cache.Watch(TasksQuery())
	waitFor(t, "initial fetch", func() bool {
		return cache.Peek(TasksQuery()).Status == QueryFresh
	})

	release()
	release() // releasing twice is safe

	cache.InvalidateKind(models.KindTask)
	assert.Equal(t, QueryStale, cache.Peek(TasksQuery()).Status)
	assert.Equal(t, 1, gw.fetchCount(models.KindTask))
}

func TestCacheScopedQueriesAreDistinct(t *testing.T) {
	gw := newFakeGateway()
	gw.set(models.KindComment,
		&models.Comment{ID: "c1", TaskID: "t1", Content: "one"},
		&models.Comment{ID: "c2", TaskID: "t2", Content: "two"},
	)
	cache, _ := newTestCache(gw)

	cache.Read(CommentsQuery("t1"))
	cache.Read(CommentsQuery("t2"))

	waitFor(t, "both fetches", func() bool {
		return cache.Peek(CommentsQuery("t1")).Status == QueryFresh &&
			cache.Peek(CommentsQuery("t2")).Status == QueryFresh
	})

	assert.Equal(t, []string{"c1"}, cache.Peek(CommentsQuery("t1")).IDs)
	assert.Equal(t, []string{"c2"}, cache.Peek(CommentsQuery("t2")).IDs)
	assert.Equal(t, 2, gw.fetchCount(models.KindComment))
}
