package services

import (
	"context"
	"time"

	"github.com/mroshb/film_catalog/internal/models"
	"github.com/mroshb/film_catalog/internal/repositories"
	"github.com/mroshb/film_catalog/pkg/logger"
	"golang.org/x/sync/singleflight"
)

// PopularCache stores popular rankings per query. Implementations may
// drop entries at any time.
type PopularCache interface {
	Get(ctx context.Context, query repositories.PopularQuery) ([]models.Film, bool, error)
	Set(ctx context.Context, query repositories.PopularQuery, films []models.Film) error
	Invalidate(ctx context.Context) error
}

const popularLoadTimeout = 10 * time.Second

// LikeService toggles film likes and ranks films by like count.
type LikeService struct {
	likes repositories.FilmLikeStore
	cache PopularCache // nil disables caching
	group singleflight.Group
}

func NewLikeService(likes repositories.FilmLikeStore, cache PopularCache) *LikeService {
	return &LikeService{likes: likes, cache: cache}
}

// Like records that user likes film. A repeated like returns false and
// leaves the rate alone.
func (s *LikeService) Like(ctx context.Context, film *models.Film, user *models.User) (bool, error) {
	added, err := s.likes.AddLike(ctx, film.ID, user.ID)
	observeToggle(kindFilmLike, added, err)
	if err != nil {
		logger.Error("Failed to like film", "film_id", film.ID, "user_id", user.ID, "error", err)
		return false, err
	}
	if added {
		s.invalidate(ctx)
	}
	return added, nil
}

// Dislike removes the user's like. It is not a negative vote.
func (s *LikeService) Dislike(ctx context.Context, film *models.Film, user *models.User) (bool, error) {
	removed, err := s.likes.RemoveLike(ctx, film.ID, user.ID)
	observeToggle(kindFilmDislike, removed, err)
	if err != nil {
		logger.Error("Failed to remove film like", "film_id", film.ID, "user_id", user.ID, "error", err)
		return false, err
	}
	if removed {
		s.invalidate(ctx)
	}
	return removed, nil
}

// Popular returns up to count films by rate descending, then id ascending,
// after the optional genre and year filters. Callers reject negative
// counts.
func (s *LikeService) Popular(ctx context.Context, count int, genreID *uint, year *int) ([]models.Film, error) {
	query := repositories.PopularQuery{Count: count, GenreID: genreID, Year: year}
	if count == 0 {
		return []models.Film{}, nil
	}
	if s.cache == nil {
		return s.likes.Popular(ctx, query)
	}

	films, ok, err := s.cache.Get(ctx, query)
	switch {
	case err != nil:
		PopularCacheLookups.WithLabelValues("error").Inc()
		logger.Warn("Popular cache read failed", "key", query.Key(), "error", err)
	case ok:
		PopularCacheLookups.WithLabelValues("hit").Inc()
		return films, nil
	default:
		PopularCacheLookups.WithLabelValues("miss").Inc()
	}

	// The load is shared by every caller waiting on the key, so one
	// caller's cancellation must not fail the others.
	loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), popularLoadTimeout)
	defer cancel()
	v, err, _ := s.group.Do(query.Key(), func() (interface{}, error) {
		ranked, err := s.likes.Popular(loadCtx, query)
		if err != nil {
			return nil, err
		}
		if err := s.cache.Set(loadCtx, query, ranked); err != nil {
			logger.Warn("Popular cache write failed", "key", query.Key(), "error", err)
		}
		return ranked, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]models.Film), nil
}

func (s *LikeService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		logger.Warn("Popular cache invalidation failed", "error", err)
	}
}
