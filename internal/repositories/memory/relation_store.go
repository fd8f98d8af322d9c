package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/mroshb/film_catalog/internal/repositories"
)

var _ repositories.RelationStore = (*RelationStore)(nil)

type directedKey struct {
	subject uint
	object  uint
}

// RelationStore keeps relations in a map. Atomically stages writes and
// applies them in one step when the callback succeeds.
type RelationStore struct {
	mu    sync.RWMutex
	rows  map[directedKey]repositories.Relation
	locks *keyLocks
}

func NewRelationStore() *RelationStore {
	return &RelationStore{
		rows:  make(map[directedKey]repositories.Relation),
		locks: newKeyLocks(defaultStripes),
	}
}

func (s *RelationStore) Upsert(ctx context.Context, rel repositories.Relation) error {
	if err := checkContext(ctx); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.rows[directedKey{rel.SubjectID, rel.ObjectID}] = copyRelation(rel)
	return nil
}

func (s *RelationStore) Find(ctx context.Context, subjectID, objectID uint) (*repositories.Relation, error) {
	if err := checkContext(ctx); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	rel, ok := s.rows[directedKey{subjectID, objectID}]
	if !ok {
		return nil, nil
	}
	rel = copyRelation(rel)
	return &rel, nil
}

func (s *RelationStore) ListWhere(ctx context.Context, filter repositories.RelationFilter) ([]repositories.Relation, error) {
	if err := checkContext(ctx); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []repositories.Relation
	for _, rel := range s.rows {
		if filter.Matches(rel) {
			out = append(out, copyRelation(rel))
		}
	}
	sortRelations(out)
	return out, nil
}

func (s *RelationStore) Delete(ctx context.Context, subjectID, objectID uint) (bool, error) {
	if err := checkContext(ctx); err != nil {
		return false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := directedKey{subjectID, objectID}
	if _, ok := s.rows[key]; !ok {
		return false, nil
	}
	delete(s.rows, key)
	return true, nil
}

func (s *RelationStore) Atomically(ctx context.Context, a, b uint, fn func(store repositories.RelationStore) error) error {
	unlock, err := s.locks.lock(ctx, repositories.PairKey(a, b))
	if err != nil {
		return err
	}
	defer unlock()

	tx := &relationTx{store: s, pending: make(map[directedKey]*repositories.Relation)}
	if err := fn(tx); err != nil {
		return err
	}
	if err := checkContext(ctx); err != nil {
		return err
	}
	tx.commit()
	return nil
}

// relationTx buffers writes made inside Atomically. A nil pending entry
// marks a deletion.
type relationTx struct {
	store   *RelationStore
	pending map[directedKey]*repositories.Relation
}

func (t *relationTx) Upsert(ctx context.Context, rel repositories.Relation) error {
	if err := checkContext(ctx); err != nil {
		return err
	}
	staged := copyRelation(rel)
	t.pending[directedKey{rel.SubjectID, rel.ObjectID}] = &staged
	return nil
}

func (t *relationTx) Find(ctx context.Context, subjectID, objectID uint) (*repositories.Relation, error) {
	if staged, ok := t.pending[directedKey{subjectID, objectID}]; ok {
		if staged == nil {
			return nil, nil
		}
		rel := copyRelation(*staged)
		return &rel, nil
	}
	return t.store.Find(ctx, subjectID, objectID)
}

func (t *relationTx) ListWhere(ctx context.Context, filter repositories.RelationFilter) ([]repositories.Relation, error) {
	base, err := t.store.ListWhere(ctx, filter)
	if err != nil {
		return nil, err
	}

	out := base[:0]
	for _, rel := range base {
		if _, overridden := t.pending[directedKey{rel.SubjectID, rel.ObjectID}]; !overridden {
			out = append(out, rel)
		}
	}
	for _, staged := range t.pending {
		if staged != nil && filter.Matches(*staged) {
			out = append(out, copyRelation(*staged))
		}
	}
	sortRelations(out)
	return out, nil
}

func (t *relationTx) Delete(ctx context.Context, subjectID, objectID uint) (bool, error) {
	existing, err := t.Find(ctx, subjectID, objectID)
	if err != nil {
		return false, err
	}
	t.pending[directedKey{subjectID, objectID}] = nil
	return existing != nil, nil
}

// Atomically on an open transaction joins it; the pair lock is already held.
func (t *relationTx) Atomically(ctx context.Context, a, b uint, fn func(store repositories.RelationStore) error) error {
	return fn(t)
}

func (t *relationTx) commit() {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()

	for key, staged := range t.pending {
		if staged == nil {
			delete(t.store.rows, key)
			continue
		}
		t.store.rows[key] = *staged
	}
}

func copyRelation(rel repositories.Relation) repositories.Relation {
	if rel.AcceptedAt != nil {
		acceptedAt := *rel.AcceptedAt
		rel.AcceptedAt = &acceptedAt
	}
	return rel
}

func sortRelations(rels []repositories.Relation) {
	sort.Slice(rels, func(i, j int) bool {
		if rels[i].SubjectID != rels[j].SubjectID {
			return rels[i].SubjectID < rels[j].SubjectID
		}
		return rels[i].ObjectID < rels[j].ObjectID
	})
}
