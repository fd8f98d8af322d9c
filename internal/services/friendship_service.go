package services

import (
	"context"
	"sort"
	"time"

	"github.com/mroshb/film_catalog/internal/models"
	"github.com/mroshb/film_catalog/internal/repositories"
	"github.com/mroshb/film_catalog/pkg/logger"
)

// FriendshipService implements the friend request protocol:
// NONE -> PENDING -> ACCEPTED, and back to NONE on removal.
//
// A request from A to B is stored as one row A->B. When B asks back, that
// same row flips to accepted and no B->A row is created. Friends of a user
// are the targets of its own rows plus the requesters whose rows toward it
// were accepted.
type FriendshipService struct {
	relations repositories.RelationStore
	catalog   repositories.CatalogStore
	now       func() time.Time
}

func NewFriendshipService(relations repositories.RelationStore, catalog repositories.CatalogStore) *FriendshipService {
	return &FriendshipService{
		relations: relations,
		catalog:   catalog,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// AddFriend sends a friend request from user to target, or accepts the
// pending request target already sent. It returns false when nothing
// changed. Self-requests are not rejected here.
func (s *FriendshipService) AddFriend(ctx context.Context, user, target *models.User) (bool, error) {
	changed := false
	err := s.relations.Atomically(ctx, user.ID, target.ID, func(store repositories.RelationStore) error {
		own, err := store.Find(ctx, user.ID, target.ID)
		if err != nil {
			return err
		}
		if own != nil {
			return nil
		}

		mirror, err := store.Find(ctx, target.ID, user.ID)
		if err != nil {
			return err
		}
		if mirror != nil && mirror.Status == models.FriendshipStatusAccepted {
			return nil
		}

		now := s.now()
		if mirror != nil {
			mirror.Status = models.FriendshipStatusAccepted
			mirror.AcceptedAt = &now
			if err := store.Upsert(ctx, *mirror); err != nil {
				return err
			}
			changed = true
			return nil
		}

		err = store.Upsert(ctx, repositories.Relation{
			SubjectID:   user.ID,
			ObjectID:    target.ID,
			Status:      models.FriendshipStatusPending,
			RequestedAt: now,
		})
		if err != nil {
			return err
		}
		changed = true
		return nil
	})
	if err != nil {
		logger.Error("Failed to add friend", "user_id", user.ID, "target_id", target.ID, "error", err)
		return false, err
	}

	if changed {
		logger.Debug("Friendship changed", "user_id", user.ID, "target_id", target.ID)
	}
	return changed, nil
}

// RemoveFriend deletes the user->target row only. If the friendship is
// stored as target->user (target sent the original request), nothing is
// removed and false is returned.
func (s *FriendshipService) RemoveFriend(ctx context.Context, user, target *models.User) (bool, error) {
	var existed bool
	err := s.relations.Atomically(ctx, user.ID, target.ID, func(store repositories.RelationStore) error {
		var err error
		existed, err = store.Delete(ctx, user.ID, target.ID)
		return err
	})
	if err != nil {
		logger.Error("Failed to remove friend", "user_id", user.ID, "target_id", target.ID, "error", err)
		return false, err
	}
	return existed, nil
}

func (s *FriendshipService) GetFriends(ctx context.Context, user *models.User) ([]models.User, error) {
	ids, err := s.friendIDs(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	return s.catalog.GetUsers(ctx, sortedIDs(ids))
}

func (s *FriendshipService) GetCommonFriends(ctx context.Context, a, b *models.User) ([]models.User, error) {
	first, err := s.friendIDs(ctx, a.ID)
	if err != nil {
		return nil, err
	}
	second, err := s.friendIDs(ctx, b.ID)
	if err != nil {
		return nil, err
	}

	common := make(map[uint]struct{})
	for id := range first {
		if _, ok := second[id]; ok {
			common[id] = struct{}{}
		}
	}
	return s.catalog.GetUsers(ctx, sortedIDs(common))
}

// GetIncomingRequests lists users whose requests toward user are still
// pending.
func (s *FriendshipService) GetIncomingRequests(ctx context.Context, user *models.User) ([]models.User, error) {
	rows, err := s.relations.ListWhere(ctx, repositories.ToObject(user.ID).WithStatus(models.FriendshipStatusPending))
	if err != nil {
		return nil, err
	}

	ids := make(map[uint]struct{}, len(rows))
	for _, row := range rows {
		ids[row.SubjectID] = struct{}{}
	}
	return s.catalog.GetUsers(ctx, sortedIDs(ids))
}

func (s *FriendshipService) friendIDs(ctx context.Context, userID uint) (map[uint]struct{}, error) {
	outgoing, err := s.relations.ListWhere(ctx, repositories.FromSubject(userID))
	if err != nil {
		return nil, err
	}
	incoming, err := s.relations.ListWhere(ctx, repositories.ToObject(userID).WithStatus(models.FriendshipStatusAccepted))
	if err != nil {
		return nil, err
	}

	ids := make(map[uint]struct{}, len(outgoing)+len(incoming))
	for _, row := range outgoing {
		ids[row.ObjectID] = struct{}{}
	}
	for _, row := range incoming {
		ids[row.SubjectID] = struct{}{}
	}
	return ids, nil
}

func sortedIDs(set map[uint]struct{}) []uint {
	ids := make([]uint, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
