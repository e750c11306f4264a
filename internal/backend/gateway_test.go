package backend

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-playground/assert/v2"

	"github.com/armankhan8150/taskscape-front/internal/gateway"
	"github.com/armankhan8150/taskscape-front/internal/models"
	"github.com/armankhan8150/taskscape-front/internal/realtime"
)

func testGateway(t *testing.T) (*LocalGateway, *realtime.LocalFeed) {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	feed := realtime.NewLocalFeed()
	gw, err := NewLocalGateway(db, feed, "Tester")
	if err != nil {
		t.Fatalf("build gateway: %v", err)
	}
	return gw, feed
}

func TestSessionMemberCreatedOnFirstRun(t *testing.T) {
	gw, _ := testGateway(t)
	assert.NotEqual(t, "", gw.SessionUserID())

	members, err := gw.Fetch(context.Background(), models.KindMember, nil)
	assert.Equal(t, nil, err)
	assert.Equal(t, 1, len(members))

	member := members[0].(*models.TeamMember)
	assert.Equal(t, gw.SessionUserID(), member.ID)
	assert.Equal(t, "Tester", member.Name)
	assert.Equal(t, models.RoleAdmin, member.Role)
}

func TestSessionMemberSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	db, err := Open(path)
	assert.Equal(t, nil, err)
	first, err := NewLocalGateway(db, nil, "Tester")
	assert.Equal(t, nil, err)
	db.Close()

	db, err = Open(path)
	assert.Equal(t, nil, err)
	defer db.Close()
	second, err := NewLocalGateway(db, nil, "Someone Else")
	assert.Equal(t, nil, err)

	assert.Equal(t, first.SessionUserID(), second.SessionUserID())
}

func TestProjectRoundTrip(t *testing.T) {
	gw, _ := testGateway(t)
	ctx := context.Background()

	confirmed, err := gw.Submit(ctx, models.KindProject, gateway.OpInsert, &models.Project{
		Name:        "Alpha",
		Description: "first",
		CreatedBy:   gw.SessionUserID(),
	})
	assert.Equal(t, nil, err)

	project := confirmed.(*models.Project)
	assert.NotEqual(t, "", project.ID)
	assert.Equal(t, "Alpha", project.Name)
	assert.Equal(t, "#3b82f6", project.Color)

	fetched, err := gw.Fetch(ctx, models.KindProject, nil)
	assert.Equal(t, nil, err)
	assert.Equal(t, 1, len(fetched))
	assert.Equal(t, project.ID, fetched[0].EntityID())
}

func TestTaskRoundTripWithTagsAndDueDate(t *testing.T) {
	gw, _ := testGateway(t)
	ctx := context.Background()

	project, err := gw.Submit(ctx, models.KindProject, gateway.OpInsert, &models.Project{Name: "Alpha"})
	assert.Equal(t, nil, err)

	due := time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC)
	confirmed, err := gw.Submit(ctx, models.KindTask, gateway.OpInsert, &models.Task{
		ProjectID: project.EntityID(),
		Title:     "ship it",
		Status:    models.StatusTodo,
		Priority:  models.PriorityHigh,
		DueDate:   &due,
		Tags:      []string{"release", "urgent"},
	})
	assert.Equal(t, nil, err)

	task := confirmed.(*models.Task)
	assert.Equal(t, []string{"release", "urgent"}, task.Tags)
	assert.NotEqual(t, nil, task.DueDate)
	assert.Equal(t, due.Format("2006-01-02"), task.DueDate.Format("2006-01-02"))

	// update clears the due date and tags
	task.DueDate = nil
	task.Tags = nil
	task.Status = models.StatusDone
	updated, err := gw.Submit(ctx, models.KindTask, gateway.OpUpdate, task)
	assert.Equal(t, nil, err)
	assert.Equal(t, models.StatusDone, updated.(*models.Task).Status)
	assert.Equal(t, true, updated.(*models.Task).DueDate == nil)
	assert.Equal(t, 0, len(updated.(*models.Task).Tags))
}

func TestTaskForUnknownProjectIsValidationError(t *testing.T) {
	gw, _ := testGateway(t)

	_, err := gw.Submit(context.Background(), models.KindTask, gateway.OpInsert, &models.Task{
		ProjectID: "missing",
		Title:     "orphan",
		Status:    models.StatusTodo,
		Priority:  models.PriorityLow,
	})
	assert.Equal(t, true, gateway.IsValidation(err))
}

func TestUpdateMissingRowIsNotFound(t *testing.T) {
	gw, _ := testGateway(t)

	_, err := gw.Submit(context.Background(), models.KindTask, gateway.OpUpdate, &models.Task{
		ID:       "missing",
		Title:    "ghost",
		Status:   models.StatusTodo,
		Priority: models.PriorityLow,
	})
	assert.Equal(t, true, gateway.IsNotFound(err))
}

func TestCommentCountsRollUpToTask(t *testing.T) {
	gw, _ := testGateway(t)
	ctx := context.Background()

	project, _ := gw.Submit(ctx, models.KindProject, gateway.OpInsert, &models.Project{Name: "Alpha"})
	task, _ := gw.Submit(ctx, models.KindTask, gateway.OpInsert, &models.Task{
		ProjectID: project.EntityID(),
		Title:     "discuss",
		Status:    models.StatusTodo,
		Priority:  models.PriorityLow,
	})

	for _, content := range []string{"first", "second"} {
		_, err := gw.Submit(ctx, models.KindComment, gateway.OpInsert, &models.Comment{
			TaskID:   task.EntityID(),
			AuthorID: gw.SessionUserID(),
			Content:  content,
		})
		assert.Equal(t, nil, err)
	}

	comments, err := gw.Fetch(ctx, models.KindComment, gateway.Params{"task_id": task.EntityID()})
	assert.Equal(t, nil, err)
	assert.Equal(t, 2, len(comments))
	assert.Equal(t, "first", comments[0].(*models.Comment).Content)

	tasks, err := gw.Fetch(ctx, models.KindTask, nil)
	assert.Equal(t, nil, err)
	assert.Equal(t, 2, tasks[0].(*models.Task).CommentCount)
}

func TestDeleteMemberDetachesTasksAndComments(t *testing.T) {
	gw, _ := testGateway(t)
	ctx := context.Background()

	member, _ := gw.Submit(ctx, models.KindMember, gateway.OpInsert, &models.TeamMember{
		Name: "Sam", Role: models.RoleEmployee,
	})
	project, _ := gw.Submit(ctx, models.KindProject, gateway.OpInsert, &models.Project{Name: "Alpha"})
	task, _ := gw.Submit(ctx, models.KindTask, gateway.OpInsert, &models.Task{
		ProjectID:  project.EntityID(),
		Title:      "assigned",
		Status:     models.StatusTodo,
		Priority:   models.PriorityLow,
		AssigneeID: member.EntityID(),
	})
	gw.Submit(ctx, models.KindComment, gateway.OpInsert, &models.Comment{
		TaskID:   task.EntityID(),
		AuthorID: member.EntityID(),
		Content:  "by sam",
	})

	_, err := gw.Submit(ctx, models.KindMember, gateway.OpDelete, &models.TeamMember{ID: member.EntityID()})
	assert.Equal(t, nil, err)

	tasks, _ := gw.Fetch(ctx, models.KindTask, nil)
	assert.Equal(t, "", tasks[0].(*models.Task).AssigneeID)

	comments, _ := gw.Fetch(ctx, models.KindComment, nil)
	assert.Equal(t, 1, len(comments))
	assert.Equal(t, "", comments[0].(*models.Comment).AuthorID)
}

func TestWritesPublishFeedEvents(t *testing.T) {
	gw, feed := testGateway(t)

	project, err := gw.Submit(context.Background(), models.KindProject, gateway.OpInsert, &models.Project{Name: "Alpha"})
	assert.Equal(t, nil, err)

	select {
	case event := <-feed.Events():
		assert.Equal(t, models.KindProject, event.Kind)
		assert.Equal(t, realtime.EventInsert, event.Type)
		assert.Equal(t, project.EntityID(), event.ID)
	default:
		t.Fatal("no feed event published")
	}
}

func TestSettingsRoundTrip(t *testing.T) {
	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	assert.Equal(t, nil, err)
	defer db.Close()

	value, err := db.GetSetting("missing")
	assert.Equal(t, nil, err)
	assert.Equal(t, "", value)

	assert.Equal(t, nil, db.SetSetting("key", "one"))
	assert.Equal(t, nil, db.SetSetting("key", "two"))

	value, err = db.GetSetting("key")
	assert.Equal(t, nil, err)
	assert.Equal(t, "two", value)
}
