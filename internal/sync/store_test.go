package sync

import (
	"testing"

	"github.com/go-playground/assert/v2"

	"github.com/armankhan8150/taskscape-front/internal/models"
)

func TestStoreLastWriteWins(t *testing.T) {
	store := NewEntityStore()

	store.Upsert(testTask("t1", "p1", models.StatusTodo))
	store.Upsert(testTask("t1", "p1", models.StatusDone))

	task := store.Get(models.KindTask, "t1").(*models.Task)
	assert.Equal(t, models.StatusDone, task.Status)
	assert.Equal(t, 1, len(store.List(models.KindTask)))
}

func TestStoreGetReturnsCopy(t *testing.T) {
	store := NewEntityStore()
	store.Upsert(testTask("t1", "p1", models.StatusTodo))

	task := store.Get(models.KindTask, "t1").(*models.Task)
	task.Status = models.StatusDone

	again := store.Get(models.KindTask, "t1").(*models.Task)
	assert.Equal(t, models.StatusTodo, again.Status)
}

func TestStoreListPreservesFirstSeenOrder(t *testing.T) {
	store := NewEntityStore()
	store.Upsert(testTask("a", "p1", models.StatusTodo))
	store.Upsert(testTask("b", "p1", models.StatusTodo))
	store.Upsert(testTask("c", "p1", models.StatusTodo))

	// replacing a record does not move it
	store.Upsert(testTask("a", "p1", models.StatusDone))

	tasks := store.List(models.KindTask)
	assert.Equal(t, 3, len(tasks))
	assert.Equal(t, "a", tasks[0].EntityID())
	assert.Equal(t, "b", tasks[1].EntityID())
	assert.Equal(t, "c", tasks[2].EntityID())
}

func TestStoreResolveSkipsDangling(t *testing.T) {
	store := NewEntityStore()
	store.Upsert(testTask("t1", "p1", models.StatusTodo))

	resolved := store.Resolve(models.KindTask, []string{"t1", "gone", "t1"})
	assert.Equal(t, 2, len(resolved))
	assert.Equal(t, "t1", resolved[0].EntityID())
}

func TestStoreRemove(t *testing.T) {
	store := NewEntityStore()
	store.Upsert(testTask("t1", "p1", models.StatusTodo))
	store.SetPending(models.KindTask, "t1", true)

	store.Remove(models.KindTask, "t1")

	assert.Equal(t, nil, store.Get(models.KindTask, "t1"))
	assert.Equal(t, 0, len(store.List(models.KindTask)))
	assert.Equal(t, false, store.Pending(models.KindTask, "t1"))
}

func TestStoreSubscribeEvents(t *testing.T) {
	store := NewEntityStore()

	var events []StoreEvent
	unsubscribe := store.Subscribe(models.KindTask, func(event StoreEvent) {
		events = append(events, event)
	})

	store.Upsert(testTask("t1", "p1", models.StatusTodo))
	store.Upsert(testTask("t1", "p1", models.StatusDone))
	store.Remove(models.KindTask, "t1")

	assert.Equal(t, 3, len(events))

	assert.Equal(t, nil, events[0].Prev)
	assert.Equal(t, models.StatusTodo, events[0].Curr.(*models.Task).Status)

	assert.Equal(t, models.StatusTodo, events[1].Prev.(*models.Task).Status)
	assert.Equal(t, models.StatusDone, events[1].Curr.(*models.Task).Status)

	assert.Equal(t, true, events[2].Removed)
	assert.Equal(t, models.StatusDone, events[2].Prev.(*models.Task).Status)

	unsubscribe()
	store.Upsert(testTask("t2", "p1", models.StatusTodo))
	assert.Equal(t, 3, len(events))
}

func TestStoreOtherKindEventsNotDelivered(t *testing.T) {
	store := NewEntityStore()

	calls := 0
	store.Subscribe(models.KindProject, func(StoreEvent) { calls++ })

	store.Upsert(testTask("t1", "p1", models.StatusTodo))
	assert.Equal(t, 0, calls)

	store.Upsert(testProject("p1", "Alpha"))
	assert.Equal(t, 1, calls)
}
