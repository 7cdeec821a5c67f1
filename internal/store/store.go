package store

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/noah-isme/campus-portal/internal/models"
	appErrors "github.com/noah-isme/campus-portal/pkg/errors"
)

// LoadStatus enumerates the load lifecycle of a store.
type LoadStatus string

const (
	NotLoaded LoadStatus = "not_loaded"
	Loading   LoadStatus = "loading"
	Ready     LoadStatus = "ready"
	Failed    LoadStatus = "failed"
)

// LoadState is the status plus the failure reason when Failed.
type LoadState struct {
	Status LoadStatus `json:"status"`
	Reason string     `json:"reason,omitempty"`
}

var errSlotUsed = errors.New("store slot already used")

// Store is the in-memory copy of one resource kind for the lifetime of a page session.
//
// Mutations that were initiated through Reserve are applied in reservation order, so a
// load started before a form submit never overwrites that submit's result.
type Store[E models.Entity] struct {
	kind models.Kind
	seq  *sequence

	mu      sync.RWMutex
	items   map[int64]E
	order   []int64
	pending map[int64]int
	state   LoadState
}

// New constructs an empty store in the NotLoaded state.
func New[E models.Entity](kind models.Kind) *Store[E] {
	return &Store[E]{
		kind:    kind,
		seq:     newSequence(),
		items:   make(map[int64]E),
		pending: make(map[int64]int),
		state:   LoadState{Status: NotLoaded},
	}
}

// Kind returns the resource kind held by the store.
func (s *Store[E]) Kind() models.Kind { return s.kind }

// State returns the current load state.
func (s *Store[E]) State() LoadState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Len returns the number of entities held.
func (s *Store[E]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}

// Get returns the entity stored under id.
func (s *Store[E]) Get(id int64) (E, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.items[id]
	return e, ok
}

// Snapshot returns the entities in load order followed by local inserts.
func (s *Store[E]) Snapshot() []E {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]E, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.items[id])
	}
	return out
}

// PendingIDs lists entities with an unconfirmed removal.
func (s *Store[E]) PendingIDs() []int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]int64, 0, len(s.pending))
	for _, id := range s.order {
		if s.pending[id] > 0 {
			out = append(out, id)
		}
	}
	return out
}

// Load fetches the full collection and replaces the current set atomically.
// A failed fetch leaves the store Failed and empty.
func (s *Store[E]) Load(ctx context.Context, fetch func(context.Context) ([]E, error)) error {
	slot := s.seq.reserve()
	s.mu.Lock()
	s.state = LoadState{Status: Loading}
	s.mu.Unlock()

	items, fetchErr := fetch(ctx)
	runErr := slot.run(ctx, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if fetchErr != nil {
			s.reset()
			s.state = LoadState{Status: Failed, Reason: fetchErr.Error()}
			return
		}
		s.reset()
		for _, e := range items {
			id := e.EntityID()
			if _, dup := s.items[id]; dup {
				continue
			}
			s.items[id] = e
			s.order = append(s.order, id)
		}
		s.state = LoadState{Status: Ready}
	})
	if runErr != nil {
		s.mu.Lock()
		s.state = LoadState{Status: Failed, Reason: runErr.Error()}
		s.mu.Unlock()
		return runErr
	}
	return fetchErr
}

// Insert adds a new entity.
func (s *Store[E]) Insert(e E) error {
	return s.Reserve().Insert(context.Background(), e)
}

// Replace overwrites an existing entity, keeping its position.
func (s *Store[E]) Replace(e E) error {
	return s.Reserve().Replace(context.Background(), e)
}

// Remove deletes the entity under id. Removing an absent id is a no-op.
func (s *Store[E]) Remove(id int64) {
	_ = s.Reserve().Remove(context.Background(), id)
}

// Reserve takes the next position in the apply sequence. The caller must finish the
// returned Slot with exactly one of its methods.
func (s *Store[E]) Reserve() *Slot[E] {
	return &Slot[E]{store: s, slot: s.seq.reserve()}
}

// BeginRemove marks id as pending removal. The entity stays in the store until Commit.
// Marks are counted, so overlapping removals of one id keep it marked until each of them
// has committed or rolled back.
func (s *Store[E]) BeginRemove(id int64) *Pending[E] {
	s.mu.Lock()
	s.pending[id]++
	s.mu.Unlock()
	return &Pending[E]{store: s, id: id, slot: s.Reserve()}
}

// reset drops the entities. Pending marks belong to removals still in flight and survive.
func (s *Store[E]) reset() {
	s.items = make(map[int64]E)
	s.order = s.order[:0]
}

func (s *Store[E]) unmarkLocked(id int64) {
	switch n := s.pending[id]; {
	case n > 1:
		s.pending[id] = n - 1
	case n == 1:
		delete(s.pending, id)
	}
}

func (s *Store[E]) insertLocked(e E) error {
	id := e.EntityID()
	if _, ok := s.items[id]; ok {
		return appErrors.Clone(appErrors.ErrDuplicateKey, fmt.Sprintf("%s %d already present", s.kind, id))
	}
	s.items[id] = e
	s.order = append(s.order, id)
	return nil
}

func (s *Store[E]) replaceLocked(e E) error {
	id := e.EntityID()
	if _, ok := s.items[id]; !ok {
		return appErrors.Clone(appErrors.ErrStoreNotFound, fmt.Sprintf("%s %d not present", s.kind, id))
	}
	s.items[id] = e
	return nil
}

func (s *Store[E]) removeLocked(id int64) {
	if _, ok := s.items[id]; !ok {
		return
	}
	delete(s.items, id)
	for i, existing := range s.order {
		if existing == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

// Slot is a reserved position in a store's apply sequence.
type Slot[E models.Entity] struct {
	store *Store[E]
	slot  *slot
}

// Insert applies an insert once every earlier slot has completed.
func (sl *Slot[E]) Insert(ctx context.Context, e E) error {
	return sl.apply(ctx, func() error { return sl.store.insertLocked(e) })
}

// Replace applies a replace once every earlier slot has completed.
func (sl *Slot[E]) Replace(ctx context.Context, e E) error {
	return sl.apply(ctx, func() error { return sl.store.replaceLocked(e) })
}

// Upsert replaces e when present and inserts it otherwise.
func (sl *Slot[E]) Upsert(ctx context.Context, e E) error {
	return sl.apply(ctx, func() error {
		if _, ok := sl.store.items[e.EntityID()]; ok {
			return sl.store.replaceLocked(e)
		}
		return sl.store.insertLocked(e)
	})
}

// Remove applies an idempotent removal once every earlier slot has completed.
func (sl *Slot[E]) Remove(ctx context.Context, id int64) error {
	return sl.apply(ctx, func() error {
		sl.store.removeLocked(id)
		return nil
	})
}

// Release abandons the slot without touching the store.
func (sl *Slot[E]) Release() {
	sl.slot.release()
}

func (sl *Slot[E]) apply(ctx context.Context, fn func() error) error {
	var applyErr error
	if err := sl.slot.run(ctx, func() {
		sl.store.mu.Lock()
		defer sl.store.mu.Unlock()
		applyErr = fn()
	}); err != nil {
		return err
	}
	return applyErr
}

// Pending is a tentative removal awaiting gateway confirmation.
type Pending[E models.Entity] struct {
	store *Store[E]
	id    int64
	slot  *Slot[E]
}

// Commit removes the entity for good.
func (p *Pending[E]) Commit(ctx context.Context) error {
	err := p.slot.apply(ctx, func() error {
		p.store.unmarkLocked(p.id)
		p.store.removeLocked(p.id)
		return nil
	})
	if err != nil {
		p.store.mu.Lock()
		p.store.unmarkLocked(p.id)
		p.store.mu.Unlock()
	}
	return err
}

// Rollback drops this removal's pending mark and keeps the entity.
func (p *Pending[E]) Rollback(ctx context.Context) error {
	err := p.slot.apply(ctx, func() error {
		p.store.unmarkLocked(p.id)
		return nil
	})
	if err != nil {
		p.store.mu.Lock()
		p.store.unmarkLocked(p.id)
		p.store.mu.Unlock()
	}
	return err
}
