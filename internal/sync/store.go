package sync

import (
	gosync "sync"

	"github.com/armankhan8150/taskscape-front/internal/models"
)

// StoreEvent describes a single change to the entity store
type StoreEvent struct {
	Kind    models.Kind
	ID      string
	Removed bool

	// Prev is the record replaced or removed, nil on first insert.
	// Curr is the record as written, nil on remove.
	Prev models.Entity
	Curr models.Entity
}

// StoreFunc receives store events, synchronously after the change applies
type StoreFunc func(event StoreEvent)

// EntityStore is the single in-memory source of truth for all known
// entities, normalized by kind and id. It never touches the network.
type EntityStore struct {
	mu gosync.RWMutex

	entities map[models.Kind]map[string]models.Entity

	// order preserves first-seen order per kind, which is the display order
	// for unsorted views
	order map[models.Kind][]string

	// pending ids carry an unconfirmed optimistic patch
	pending map[models.Kind]map[string]bool

	watchers map[models.Kind]*callbackList[StoreFunc]
}

func NewEntityStore() *EntityStore {
	store := &EntityStore{
		entities: map[models.Kind]map[string]models.Entity{},
		order:    map[models.Kind][]string{},
		pending:  map[models.Kind]map[string]bool{},
		watchers: map[models.Kind]*callbackList[StoreFunc]{},
	}
	for _, kind := range models.Kinds() {
		store.entities[kind] = map[string]models.Entity{}
		store.pending[kind] = map[string]bool{}
		store.watchers[kind] = &callbackList[StoreFunc]{}
	}
	return store
}

// Upsert inserts or replaces the record with the entity's id. The last
// writer for a given key wins; there is no field merging.
func (s *EntityStore) Upsert(entity models.Entity) {
	kind := entity.EntityKind()
	id := entity.EntityID()

	stored := entity.CloneEntity()
	s.mu.Lock()
	prev, existed := s.entities[kind][id]
	s.entities[kind][id] = stored
	if !existed {
		s.order[kind] = append(s.order[kind], id)
	}
	s.mu.Unlock()

	s.notify(StoreEvent{Kind: kind, ID: id, Prev: prev, Curr: stored})
}

// Get returns a copy of the record, or nil if absent
func (s *EntityStore) Get(kind models.Kind, id string) models.Entity {
	s.mu.RLock()
	entity, ok := s.entities[kind][id]
	s.mu.RUnlock()
	if !ok {
		return nil
	}
	return entity.CloneEntity()
}

// List returns copies of every record of a kind in first-seen order
func (s *EntityStore) List(kind models.Kind) []models.Entity {
	s.mu.RLock()
	out := make([]models.Entity, 0, len(s.order[kind]))
	for _, id := range s.order[kind] {
		if entity, ok := s.entities[kind][id]; ok {
			out = append(out, entity.CloneEntity())
		}
	}
	s.mu.RUnlock()
	return out
}

// Resolve returns copies of the records for ids, skipping ids no longer
// present. Dangling references read as not found, they are not an error.
func (s *EntityStore) Resolve(kind models.Kind, ids []string) []models.Entity {
	s.mu.RLock()
	out := make([]models.Entity, 0, len(ids))
	for _, id := range ids {
		if entity, ok := s.entities[kind][id]; ok {
			out = append(out, entity.CloneEntity())
		}
	}
	s.mu.RUnlock()
	return out
}

// Remove hard-deletes the record if present
func (s *EntityStore) Remove(kind models.Kind, id string) {
	s.mu.Lock()
	prev, existed := s.entities[kind][id]
	if existed {
		delete(s.entities[kind], id)
		delete(s.pending[kind], id)
		order := s.order[kind]
		for i, orderedID := range order {
			if orderedID == id {
				s.order[kind] = append(order[:i], order[i+1:]...)
				break
			}
		}
	}
	s.mu.Unlock()

	if existed {
		s.notify(StoreEvent{Kind: kind, ID: id, Removed: true, Prev: prev})
	}
}

// SetPending tags or untags an id as carrying an unconfirmed optimistic
// patch
func (s *EntityStore) SetPending(kind models.Kind, id string, pending bool) {
	s.mu.Lock()
	if pending {
		s.pending[kind][id] = true
	} else {
		delete(s.pending[kind], id)
	}
	s.mu.Unlock()
}

// Pending reports whether the id carries an unconfirmed optimistic patch
func (s *EntityStore) Pending(kind models.Kind, id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pending[kind][id]
}

// Subscribe registers a callback invoked synchronously after every upsert or
// remove of the kind. The returned func unsubscribes.
func (s *EntityStore) Subscribe(kind models.Kind, callback StoreFunc) func() {
	return s.watchers[kind].add(callback)
}

func (s *EntityStore) notify(event StoreEvent) {
	for _, callback := range s.watchers[event.Kind].get() {
		callback(event)
	}
}
