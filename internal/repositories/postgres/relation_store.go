package postgres

import (
	"context"
	"time"

	"github.com/mroshb/film_catalog/internal/models"
	"github.com/mroshb/film_catalog/internal/repositories"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var _ repositories.RelationStore = (*RelationStore)(nil)

// RelationStore maps relations onto the friendships table, one row per
// ordered (requester, receiver) pair.
type RelationStore struct {
	db *gorm.DB
}

func NewRelationStore(db *gorm.DB) *RelationStore {
	return &RelationStore{db: db}
}

func (s *RelationStore) Upsert(ctx context.Context, rel repositories.Relation) error {
	row := toFriendship(rel)
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "requester_id"}, {Name: "receiver_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"status", "requested_at", "accepted_at", "updated_at"}),
		}).
		Create(&row).Error
	return translate(err, "failed to save relation")
}

func (s *RelationStore) Find(ctx context.Context, subjectID, objectID uint) (*repositories.Relation, error) {
	var rows []models.Friendship
	err := s.db.WithContext(ctx).
		Where("requester_id = ? AND receiver_id = ?", subjectID, objectID).
		Limit(1).
		Find(&rows).Error
	if err != nil {
		return nil, translate(err, "failed to find relation")
	}
	if len(rows) == 0 {
		return nil, nil
	}

	rel := fromFriendship(rows[0])
	return &rel, nil
}

func (s *RelationStore) ListWhere(ctx context.Context, filter repositories.RelationFilter) ([]repositories.Relation, error) {
	query := s.db.WithContext(ctx).Model(&models.Friendship{})
	if filter.SubjectID != nil {
		query = query.Where("requester_id = ?", *filter.SubjectID)
	}
	if filter.ObjectID != nil {
		query = query.Where("receiver_id = ?", *filter.ObjectID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	var rows []models.Friendship
	if err := query.Order("requester_id ASC, receiver_id ASC").Find(&rows).Error; err != nil {
		return nil, translate(err, "failed to list relations")
	}

	out := make([]repositories.Relation, 0, len(rows))
	for _, row := range rows {
		out = append(out, fromFriendship(row))
	}
	return out, nil
}

func (s *RelationStore) Delete(ctx context.Context, subjectID, objectID uint) (bool, error) {
	result := s.db.WithContext(ctx).
		Where("requester_id = ? AND receiver_id = ?", subjectID, objectID).
		Delete(&models.Friendship{})
	if result.Error != nil {
		return false, translate(result.Error, "failed to delete relation")
	}
	return result.RowsAffected > 0, nil
}

// Atomically opens a transaction and takes a transaction-scoped advisory
// lock on the unordered pair before running fn. The lock is released on
// commit or rollback.
func (s *RelationStore) Atomically(ctx context.Context, a, b uint, fn func(store repositories.RelationStore) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("SELECT pg_advisory_xact_lock(?)", int64(repositories.PairKey(a, b))).Error; err != nil {
			return translate(err, "failed to lock relation pair")
		}
		return fn(&RelationStore{db: tx})
	})
}

func toFriendship(rel repositories.Relation) models.Friendship {
	return models.Friendship{
		RequesterID: rel.SubjectID,
		ReceiverID:  rel.ObjectID,
		Status:      rel.Status,
		RequestedAt: rel.RequestedAt,
		AcceptedAt:  rel.AcceptedAt,
		UpdatedAt:   time.Now().UTC(),
	}
}

func fromFriendship(row models.Friendship) repositories.Relation {
	return repositories.Relation{
		SubjectID:   row.RequesterID,
		ObjectID:    row.ReceiverID,
		Status:      row.Status,
		RequestedAt: row.RequestedAt,
		AcceptedAt:  row.AcceptedAt,
	}
}
