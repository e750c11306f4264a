package sync

import (
	"context"
	"testing"

	"github.com/go-playground/assert/v2"

	"github.com/armankhan8150/taskscape-front/internal/gateway"
	"github.com/armankhan8150/taskscape-front/internal/models"
	"github.com/armankhan8150/taskscape-front/internal/realtime"
)

func TestClientFeedEventRefreshesWatchedQuery(t *testing.T) {
	gw := newFakeGateway()
	gw.set(models.KindTask, testTask("t1", "p1", models.StatusTodo))
	feed := realtime.NewLocalFeed()
	client := NewClient(context.Background(), gw, feed)
	defer client.Close()

	release := client.Watch(TasksQuery())
	defer release()
	waitFor(t, "initial fetch", func() bool {
		return client.Cache().Peek(TasksQuery()).Status == QueryFresh
	})

	// another client changed a task somewhere
	gw.set(models.KindTask, testTask("t1", "p1", models.StatusDone))
	feed.Publish(realtime.Event{Kind: models.KindTask, Type: realtime.EventUpdate, ID: "t1"})

	waitFor(t, "feed-driven refetch", func() bool {
		task := client.Task("t1")
		return task != nil && task.Status == models.StatusDone
	})
	assert.Equal(t, 2, gw.fetchCount(models.KindTask))
}

func TestClientFeedEventLeavesOtherKindsAlone(t *testing.T) {
	gw := newFakeGateway()
	gw.set(models.KindProject, testProject("p1", "Alpha"))
	gw.set(models.KindTask, testTask("t1", "p1", models.StatusTodo))
	feed := realtime.NewLocalFeed()
	client := NewClient(context.Background(), gw, feed)
	defer client.Close()

	releaseProjects := client.Watch(ProjectsQuery())
	defer releaseProjects()
	releaseTasks := client.Watch(TasksQuery())
	defer releaseTasks()
	waitFor(t, "initial fetches", func() bool {
		return client.Cache().Peek(ProjectsQuery()).Status == QueryFresh &&
			client.Cache().Peek(TasksQuery()).Status == QueryFresh
	})

	feed.Publish(realtime.Event{Kind: models.KindTask, Type: realtime.EventInsert, ID: "t9"})

	waitFor(t, "task refetch", func() bool {
		return gw.fetchCount(models.KindTask) == 2
	})
	assert.Equal(t, 1, gw.fetchCount(models.KindProject))
}

func TestClientResyncRefreshesEverything(t *testing.T) {
	gw := newFakeGateway()
	gw.set(models.KindProject, testProject("p1", "Alpha"))
	gw.set(models.KindTask, testTask("t1", "p1", models.StatusTodo))
	feed := realtime.NewLocalFeed()
	client := NewClient(context.Background(), gw, feed)
	defer client.Close()

	releaseProjects := client.Watch(ProjectsQuery())
	defer releaseProjects()
	releaseTasks := client.Watch(TasksQuery())
	defer releaseTasks()
	waitFor(t, "initial fetches", func() bool {
		return gw.fetchCount(models.KindProject) == 1 && gw.fetchCount(models.KindTask) == 1
	})

	// the notification channel reconnected; nothing can be trusted fresh
	feed.Publish(realtime.Event{Type: realtime.EventResync})

	waitFor(t, "full refetch", func() bool {
		return gw.fetchCount(models.KindProject) == 2 && gw.fetchCount(models.KindTask) == 2
	})
}

func TestClientChangesCoalesce(t *testing.T) {
	gw := newFakeGateway()
	client := NewClient(context.Background(), gw, nil)
	defer client.Close()

	client.Store().Upsert(testTask("t1", "p1", models.StatusTodo))
	client.Store().Upsert(testTask("t2", "p1", models.StatusTodo))
	client.Store().Upsert(testTask("t3", "p1", models.StatusTodo))

	// several transitions, at least one edge, never a blocked writer
	<-client.Changes()
	select {
	case <-client.Changes():
	default:
	}
}

func TestClientWorkflow(t *testing.T) {
	gw := newFakeGateway()
	feed := realtime.NewLocalFeed()
	client := NewClient(context.Background(), gw, feed)
	defer client.Close()

	// create a project, then a task on its board
	confirmedProject, err := client.Mutate(client.CreateProject("Alpha", "first board"))
	assert.Equal(t, nil, err)
	project := confirmedProject.(*models.Project)
	assert.Equal(t, "member-1", project.CreatedBy)

	confirmedTask, err := client.Mutate(client.CreateTask(TaskDraft{
		ProjectID: project.ID,
		Title:     "ship it",
	}))
	assert.Equal(t, nil, err)
	task := confirmedTask.(*models.Task)

	counts := client.Aggregator().ProjectCounts(project.ID)
	assert.Equal(t, 1, counts[models.StatusTodo])
	assert.Equal(t, 0, counts[models.StatusDone])

	// move it across the board
	done := models.StatusDone
	_, err = client.Mutate(client.UpdateTask(task.ID, TaskPatch{Status: &done}))
	assert.Equal(t, nil, err)

	counts = client.Aggregator().ProjectCounts(project.ID)
	assert.Equal(t, 0, counts[models.StatusTodo])
	assert.Equal(t, 1, counts[models.StatusDone])

	// a rejected move leaves the board on the confirmed state
	gw.mu.Lock()
	gw.submitErr = &gateway.ConflictError{Reason: "stale version"}
	gw.mu.Unlock()
	review := models.StatusReview
	_, err = client.Mutate(client.UpdateTask(task.ID, TaskPatch{Status: &review}))
	assert.Equal(t, true, gateway.IsConflict(err))

	assert.Equal(t, models.StatusDone, client.Task(task.ID).Status)
	counts = client.Aggregator().ProjectCounts(project.ID)
	assert.Equal(t, 1, counts[models.StatusDone])
	assert.Equal(t, 0, counts[models.StatusReview])
}
