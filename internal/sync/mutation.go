package sync

import (
	"context"
	gosync "sync"

	"github.com/golang/glog"

	"github.com/armankhan8150/taskscape-front/internal/gateway"
	"github.com/armankhan8150/taskscape-front/internal/models"
)

// EntityRef names one entity store record
type EntityRef struct {
	Kind models.Kind
	ID   string
}

// Mutation is one user-intended change, expressed as the single generic
// contract every mutation kind goes through: validate, snapshot, optimistic
// apply, submit, then commit or roll back.
type Mutation struct {
	// Name tags log lines, e.g. "task.update"
	Name string

	Op gateway.Operation

	// Payload builds the record submitted to the gateway. It is evaluated
	// when the mutation starts executing, after the optimistic apply, so a
	// mutation queued behind another on the same entity submits on top of
	// the earlier confirmed state rather than on the state it was built
	// against. A nil payload fails the mutation locally without a network
	// call: the target is gone, typically an insert's placeholder replaced
	// by its confirmed record before a queued update could run.
	Payload func() models.Entity

	// Target is the entity the mutation serializes on. A second mutation on
	// the same target queues behind the first; different targets run
	// concurrently.
	Target EntityRef

	// Touched lists every record the optimistic apply writes, Target
	// included. All of them are snapshotted before apply and restored
	// exactly on failure.
	Touched []EntityRef

	// Validate runs locally before anything else. A failure means no
	// network call and no store change.
	Validate func() error

	// Apply patches the store optimistically
	Apply func(store *EntityStore)

	// Invalidates lists query keys whose result composition the mutation
	// can change; InvalidateKinds widens that to whole kinds
	Invalidates     []QueryKey
	InvalidateKinds []models.Kind
}

type snapshot struct {
	ref  EntityRef
	prev models.Entity // nil if the record did not exist
}

type queuedMutation struct {
	mutation Mutation
	callback Callback[models.Entity]
}

// Pipeline executes mutations with optimistic apply and rollback. At most
// one mutation per target entity is in flight at a time.
type Pipeline struct {
	ctx context.Context

	store   *EntityStore
	cache   *QueryCache
	gateway gateway.Gateway

	mu     gosync.Mutex
	queues map[EntityRef][]*queuedMutation
}

func NewPipeline(ctx context.Context, store *EntityStore, cache *QueryCache, gw gateway.Gateway) *Pipeline {
	return &Pipeline{
		ctx:     ctx,
		store:   store,
		cache:   cache,
		gateway: gw,
		queues:  map[EntityRef][]*queuedMutation{},
	}
}

// Run validates the mutation and, if valid, executes it asynchronously.
// The callback receives the server-confirmed entity or a typed failure; it
// is never dropped silently.
func (p *Pipeline) Run(m Mutation, callback Callback[models.Entity]) {
	if callback == nil {
		callback = NewNoopCallback[models.Entity]()
	}

	// fail fast pre-network, with no store mutation
	if m.Validate != nil {
		if err := m.Validate(); err != nil {
			glog.V(1).Infof("[mut]%s invalid = %s\n", m.Name, err)
			callback.Result(nil, err)
			return
		}
	}

	queued := &queuedMutation{mutation: m, callback: callback}

	p.mu.Lock()
	p.queues[m.Target] = append(p.queues[m.Target], queued)
	first := len(p.queues[m.Target]) == 1
	p.mu.Unlock()

	if first {
		go p.execute(queued)
	} else {
		glog.V(1).Infof("[mut]%s queued behind in-flight mutation on %s/%s\n", m.Name, m.Target.Kind, m.Target.ID)
	}
}

func (p *Pipeline) execute(queued *queuedMutation) {
	m := queued.mutation

	// snapshot everything the patch touches, then apply optimistically.
	// the next read reflects the change before the server has seen it.
	touched := m.Touched
	if len(touched) == 0 {
		touched = []EntityRef{m.Target}
	}
	snapshots := make([]snapshot, len(touched))
	for i, ref := range touched {
		snapshots[i] = snapshot{ref: ref, prev: p.store.Get(ref.Kind, ref.ID)}
	}

	if m.Apply != nil {
		m.Apply(p.store)
	}
	p.store.SetPending(m.Target.Kind, m.Target.ID, true)

	var confirmed models.Entity
	var err error
	if payload := m.Payload(); payload == nil {
		err = &gateway.ValidationError{Reason: "record no longer exists"}
	} else {
		confirmed, err = p.gateway.Submit(p.ctx, payload.EntityKind(), m.Op, payload)
	}

	p.store.SetPending(m.Target.Kind, m.Target.ID, false)

	if err != nil {
		p.rollback(m, snapshots, err)
		queued.callback.Result(nil, err)
	} else {
		p.commit(m, confirmed)
		queued.callback.Result(confirmed, nil)
	}

	p.next(m.Target)
}

// commit replaces the optimistic record with the server-confirmed one; the
// server wins on every field it returns
func (p *Pipeline) commit(m Mutation, confirmed models.Entity) {
	switch m.Op {
	case gateway.OpDelete:
		p.store.Remove(m.Target.Kind, m.Target.ID)
	default:
		if confirmed.EntityID() != m.Target.ID {
			// an insert's client-side placeholder id is replaced wholesale
			p.store.Remove(m.Target.Kind, m.Target.ID)
		}
		p.store.Upsert(confirmed)
	}

	for _, key := range m.Invalidates {
		p.cache.Invalidate(key)
	}
	for _, kind := range m.InvalidateKinds {
		p.cache.InvalidateKind(kind)
	}
	glog.V(1).Infof("[mut]%s ok id=%s\n", m.Name, confirmed.EntityID())
}

// rollback restores every touched record to its pre-mutation snapshot. No
// partial patch survives a failure.
func (p *Pipeline) rollback(m Mutation, snapshots []snapshot, cause error) {
	for _, snap := range snapshots {
		if snap.prev == nil {
			p.store.Remove(snap.ref.Kind, snap.ref.ID)
		} else {
			p.store.Upsert(snap.prev)
		}
	}

	if gateway.IsNotFound(cause) {
		// the entity is gone server-side; evict it and anything scoped to it
		p.store.Remove(m.Target.Kind, m.Target.ID)
		p.cache.InvalidateKind(m.Target.Kind)
	}

	glog.Infof("[mut]%s rolled back = %s\n", m.Name, cause)
}

func (p *Pipeline) next(target EntityRef) {
	p.mu.Lock()
	queue := p.queues[target]
	if len(queue) > 0 {
		queue = queue[1:]
	}
	if len(queue) == 0 {
		delete(p.queues, target)
		p.mu.Unlock()
		return
	}
	p.queues[target] = queue
	following := queue[0]
	p.mu.Unlock()

	go p.execute(following)
}
