package repositories

import (
	"context"
	"time"
)

// Relation is a directed (subject → object) row with a status, e.g. a
// friend request from subject to object.
type Relation struct {
	SubjectID   uint
	ObjectID    uint
	Status      string
	RequestedAt time.Time
	AcceptedAt  *time.Time
}

// RelationFilter selects relations for ListWhere. Nil ids and an empty
// status match anything.
type RelationFilter struct {
	SubjectID *uint
	ObjectID  *uint
	Status    string
}

func FromSubject(id uint) RelationFilter {
	return RelationFilter{SubjectID: &id}
}

func ToObject(id uint) RelationFilter {
	return RelationFilter{ObjectID: &id}
}

func (f RelationFilter) WithStatus(status string) RelationFilter {
	f.Status = status
	return f
}

func (f RelationFilter) Matches(r Relation) bool {
	if f.SubjectID != nil && *f.SubjectID != r.SubjectID {
		return false
	}
	if f.ObjectID != nil && *f.ObjectID != r.ObjectID {
		return false
	}
	if f.Status != "" && f.Status != r.Status {
		return false
	}
	return true
}

// RelationStore persists relations keyed by the ordered (subject, object)
// pair. It holds no business rules. Absent rows are reported as nil/false,
// never as errors; backend failures come back as STORAGE_ERROR.
type RelationStore interface {
	Upsert(ctx context.Context, rel Relation) error
	Find(ctx context.Context, subjectID, objectID uint) (*Relation, error)
	ListWhere(ctx context.Context, filter RelationFilter) ([]Relation, error)
	Delete(ctx context.Context, subjectID, objectID uint) (bool, error)

	// Atomically runs fn with a store whose reads and writes for the
	// unordered pair {a, b} are serialized against every other Atomically
	// call on the same pair. Either all of fn's writes apply or none do.
	Atomically(ctx context.Context, a, b uint, fn func(store RelationStore) error) error
}

// PairKey folds an unordered id pair into one lock key.
func PairKey(a, b uint) uint64 {
	if a > b {
		a, b = b, a
	}
	return uint64(uint32(a))<<32 | uint64(uint32(b))
}
