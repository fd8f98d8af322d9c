package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/mroshb/film_catalog/internal/models"
	"github.com/mroshb/film_catalog/internal/repositories"
)

var _ repositories.FilmLikeStore = (*LikeStore)(nil)

// LikeStore keeps film likes as a per-film set of user ids and moves the
// film's rate in the catalog under the same per-film lock.
type LikeStore struct {
	catalog *CatalogStore

	mu    sync.RWMutex
	likes map[uint]map[uint]struct{}
	locks *keyLocks
}

func NewLikeStore(catalog *CatalogStore) *LikeStore {
	return &LikeStore{
		catalog: catalog,
		likes:   make(map[uint]map[uint]struct{}),
		locks:   newKeyLocks(defaultStripes),
	}
}

func (s *LikeStore) AddLike(ctx context.Context, filmID, userID uint) (bool, error) {
	unlock, err := s.locks.lock(ctx, uint64(filmID))
	if err != nil {
		return false, err
	}
	defer unlock()

	if s.hasLike(filmID, userID) {
		return false, nil
	}
	if err := s.catalog.adjustRate(filmID, 1); err != nil {
		return false, err
	}

	s.mu.Lock()
	users, ok := s.likes[filmID]
	if !ok {
		users = make(map[uint]struct{})
		s.likes[filmID] = users
	}
	users[userID] = struct{}{}
	s.mu.Unlock()

	return true, nil
}

func (s *LikeStore) RemoveLike(ctx context.Context, filmID, userID uint) (bool, error) {
	unlock, err := s.locks.lock(ctx, uint64(filmID))
	if err != nil {
		return false, err
	}
	defer unlock()

	if !s.hasLike(filmID, userID) {
		return false, nil
	}
	if err := s.catalog.adjustRate(filmID, -1); err != nil {
		return false, err
	}

	s.mu.Lock()
	delete(s.likes[filmID], userID)
	if len(s.likes[filmID]) == 0 {
		delete(s.likes, filmID)
	}
	s.mu.Unlock()

	return true, nil
}

func (s *LikeStore) Popular(ctx context.Context, query repositories.PopularQuery) ([]models.Film, error) {
	if err := checkContext(ctx); err != nil {
		return nil, err
	}

	films := s.catalog.snapshotFilms()
	ranked := films[:0]
	for _, f := range films {
		if query.GenreID != nil && !f.HasGenre(*query.GenreID) {
			continue
		}
		if query.Year != nil && f.ReleaseDate.Year() != *query.Year {
			continue
		}
		ranked = append(ranked, f)
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Rate != ranked[j].Rate {
			return ranked[i].Rate > ranked[j].Rate
		}
		return ranked[i].ID < ranked[j].ID
	})

	if query.Count >= 0 && query.Count < len(ranked) {
		ranked = ranked[:query.Count]
	}
	return ranked, nil
}

func (s *LikeStore) hasLike(filmID, userID uint) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.likes[filmID][userID]
	return ok
}
