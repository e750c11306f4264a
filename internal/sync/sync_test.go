package sync

import (
	"context"
	"fmt"
	gosync "sync"
	"testing"
	"time"

	"github.com/armankhan8150/taskscape-front/internal/gateway"
	"github.com/armankhan8150/taskscape-front/internal/models"
)

// fakeGateway serves fetches from in-memory collections and confirms
// submits with server-assigned ids. Gates let tests hold individual
// fetches or submits open to exercise in-flight states.
type fakeGateway struct {
	mu gosync.Mutex

	records map[models.Kind][]models.Entity

	fetchCalls  map[models.Kind]int
	fetchErr    error
	fetchGates  []chan struct{}
	fetchIndex  int
	fetchBegan  chan struct{}
	submitCalls int
	submitErr   error
	submitGates []chan struct{}
	submitIndex int
	submitBegan chan struct{}

	nextID int
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		records:     map[models.Kind][]models.Entity{},
		fetchCalls:  map[models.Kind]int{},
		fetchBegan:  make(chan struct{}, 64),
		submitBegan: make(chan struct{}, 64),
	}
}

func (g *fakeGateway) set(kind models.Kind, entities ...models.Entity) {
	g.mu.Lock()
	g.records[kind] = entities
	g.mu.Unlock()
}

func (g *fakeGateway) fetchCount(kind models.Kind) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.fetchCalls[kind]
}

func (g *fakeGateway) submitCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.submitCalls
}

func (g *fakeGateway) SessionUserID() string { return "member-1" }

func (g *fakeGateway) Fetch(ctx context.Context, kind models.Kind, params gateway.Params) ([]models.Entity, error) {
	// snapshot at call time, so a gated fetch returns what the collection
	// held when it was issued
	g.mu.Lock()
	g.fetchCalls[kind] += 1
	var gate chan struct{}
	if g.fetchIndex < len(g.fetchGates) {
		gate = g.fetchGates[g.fetchIndex]
	}
	g.fetchIndex += 1
	err := g.fetchErr
	out := make([]models.Entity, 0, len(g.records[kind]))
	for _, entity := range g.records[kind] {
		if taskID, ok := params["task_id"]; ok {
			if comment, isComment := entity.(*models.Comment); isComment && comment.TaskID != taskID {
				continue
			}
		}
		out = append(out, entity.CloneEntity())
	}
	g.mu.Unlock()

	select {
	case g.fetchBegan <- struct{}{}:
	default:
	}
	if gate != nil {
		<-gate
	}
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (g *fakeGateway) Submit(ctx context.Context, kind models.Kind, op gateway.Operation, entity models.Entity) (models.Entity, error) {
	g.mu.Lock()
	g.submitCalls += 1
	var gate chan struct{}
	if g.submitIndex < len(g.submitGates) {
		gate = g.submitGates[g.submitIndex]
	}
	g.submitIndex += 1
	err := g.submitErr
	g.mu.Unlock()

	select {
	case g.submitBegan <- struct{}{}:
	default:
	}
	if gate != nil {
		<-gate
	}
	if err != nil {
		return nil, err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	confirmed := entity.CloneEntity()
	switch op {
	case gateway.OpInsert:
		g.nextID += 1
		setEntityID(confirmed, fmt.Sprintf("srv-%d", g.nextID))
		g.records[kind] = append(g.records[kind], confirmed.CloneEntity())
	case gateway.OpUpdate:
		for i, existing := range g.records[kind] {
			if existing.EntityID() == confirmed.EntityID() {
				g.records[kind][i] = confirmed.CloneEntity()
			}
		}
	case gateway.OpDelete:
		kept := g.records[kind][:0]
		for _, existing := range g.records[kind] {
			if existing.EntityID() != entity.EntityID() {
				kept = append(kept, existing)
			}
		}
		g.records[kind] = kept
	}
	return confirmed, nil
}

func setEntityID(entity models.Entity, id string) {
	switch e := entity.(type) {
	case *models.Project:
		e.ID = id
	case *models.Task:
		e.ID = id
	case *models.Comment:
		e.ID = id
	case *models.TeamMember:
		e.ID = id
	}
}

// waitFor polls until the condition holds or the test deadline expires
func waitFor(t *testing.T, description string, condition func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if condition() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", description)
}

func testTask(id, projectID string, status models.TaskStatus) *models.Task {
	return &models.Task{
		ID:        id,
		ProjectID: projectID,
		Title:     "task " + id,
		Status:    status,
		Priority:  models.PriorityMedium,
		CreatedAt: time.Now(),
	}
}

func testProject(id, name string) *models.Project {
	return &models.Project{
		ID:        id,
		Name:      name,
		Color:     defaultProjectColor,
		CreatedAt: time.Now(),
	}
}
