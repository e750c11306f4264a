package sync

import (
	gosync "sync"

	"github.com/armankhan8150/taskscape-front/internal/models"
)

// TaskFilter narrows the task list. Empty fields match everything.
type TaskFilter struct {
	ProjectID  string
	AssigneeID string
	Status     models.TaskStatus
}

func (f TaskFilter) matches(task *models.Task) bool {
	if f.ProjectID != "" && task.ProjectID != f.ProjectID {
		return false
	}
	if f.AssigneeID != "" && task.AssigneeID != f.AssigneeID {
		return false
	}
	if f.Status != "" && task.Status != f.Status {
		return false
	}
	return true
}

// Aggregator derives read-only views from current store contents: per-project
// task counts by status and filtered task lists. It never fetches; it tracks
// store task events and recomputes only the projects a change touches.
type Aggregator struct {
	store *EntityStore

	mu     gosync.Mutex
	counts map[string]map[models.TaskStatus]int

	unsubscribe func()
}

func NewAggregator(store *EntityStore) *Aggregator {
	agg := &Aggregator{
		store:  store,
		counts: map[string]map[models.TaskStatus]int{},
	}

	// seed from whatever the store already holds
	for _, entity := range store.List(models.KindTask) {
		if task, ok := entity.(*models.Task); ok {
			agg.add(task)
		}
	}

	agg.unsubscribe = store.Subscribe(models.KindTask, agg.onTaskEvent)
	return agg
}

// Close detaches the aggregator from the store
func (a *Aggregator) Close() {
	if a.unsubscribe != nil {
		a.unsubscribe()
	}
}

func (a *Aggregator) onTaskEvent(event StoreEvent) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if prev, ok := event.Prev.(*models.Task); ok && prev != nil {
		a.subtractLocked(prev)
	}
	if task, ok := event.Curr.(*models.Task); ok && task != nil {
		a.addLocked(task)
	}
}

func (a *Aggregator) add(task *models.Task) {
	a.mu.Lock()
	a.addLocked(task)
	a.mu.Unlock()
}

func (a *Aggregator) addLocked(task *models.Task) {
	byStatus, ok := a.counts[task.ProjectID]
	if !ok {
		byStatus = map[models.TaskStatus]int{}
		a.counts[task.ProjectID] = byStatus
	}
	byStatus[task.Status] += 1
}

func (a *Aggregator) subtractLocked(task *models.Task) {
	if byStatus, ok := a.counts[task.ProjectID]; ok {
		if byStatus[task.Status] > 0 {
			byStatus[task.Status] -= 1
		}
	}
}

// ProjectCounts returns the task count per status for one project, with
// every status present even at zero
func (a *Aggregator) ProjectCounts(projectID string) map[models.TaskStatus]int {
	a.mu.Lock()
	defer a.mu.Unlock()

	out := map[models.TaskStatus]int{}
	for _, status := range models.Statuses() {
		out[status] = a.counts[projectID][status]
	}
	return out
}

// TotalCounts returns workspace-wide task counts by status
func (a *Aggregator) TotalCounts() map[models.TaskStatus]int {
	a.mu.Lock()
	defer a.mu.Unlock()

	out := map[models.TaskStatus]int{}
	for _, status := range models.Statuses() {
		out[status] = 0
	}
	for _, byStatus := range a.counts {
		for status, n := range byStatus {
			out[status] += n
		}
	}
	return out
}

// FilterTaskIDs returns the ids of tasks matching the filter, in store order
func (a *Aggregator) FilterTaskIDs(filter TaskFilter) []string {
	var ids []string
	for _, entity := range a.store.List(models.KindTask) {
		if task, ok := entity.(*models.Task); ok && filter.matches(task) {
			ids = append(ids, task.ID)
		}
	}
	return ids
}

// FilterTasks returns copies of the tasks matching the filter, in store order
func (a *Aggregator) FilterTasks(filter TaskFilter) []*models.Task {
	var tasks []*models.Task
	for _, entity := range a.store.List(models.KindTask) {
		if task, ok := entity.(*models.Task); ok && filter.matches(task) {
			tasks = append(tasks, task)
		}
	}
	return tasks
}
