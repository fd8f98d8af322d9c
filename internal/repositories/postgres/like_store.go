package postgres

import (
	"context"
	stderrors "errors"
	"fmt"

	"github.com/mroshb/film_catalog/internal/models"
	"github.com/mroshb/film_catalog/internal/repositories"
	"github.com/mroshb/film_catalog/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var _ repositories.FilmLikeStore = (*LikeStore)(nil)

// LikeStore keeps likes in film_likes and moves films.rate in the same
// transaction. The unique (film_id, user_id) index decides which of two
// racing likes counts.
type LikeStore struct {
	db *gorm.DB
}

func NewLikeStore(db *gorm.DB) *LikeStore {
	return &LikeStore{db: db}
}

func (s *LikeStore) AddLike(ctx context.Context, filmID, userID uint) (bool, error) {
	added := false
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var film models.Film
		err := tx.Select("id").First(&film, filmID).Error
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return errors.New(errors.ErrCodeNotFound, fmt.Sprintf("film %d not found", filmID))
		}
		if err != nil {
			return translate(err, "failed to get film")
		}

		like := models.FilmLike{FilmID: filmID, UserID: userID}
		result := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&like)
		if result.Error != nil {
			return translate(result.Error, "failed to add like")
		}
		if result.RowsAffected == 0 {
			return nil
		}

		added = true
		return s.moveRate(tx, filmID, 1)
	})
	if err != nil {
		return false, err
	}
	return added, nil
}

func (s *LikeStore) RemoveLike(ctx context.Context, filmID, userID uint) (bool, error) {
	removed := false
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("film_id = ? AND user_id = ?", filmID, userID).Delete(&models.FilmLike{})
		if result.Error != nil {
			return translate(result.Error, "failed to remove like")
		}
		if result.RowsAffected == 0 {
			return nil
		}

		removed = true
		return s.moveRate(tx, filmID, -1)
	})
	if err != nil {
		return false, err
	}
	return removed, nil
}

// moveRate changes the counter in place with UpdateColumn so that film
// hooks and updated_at stay untouched.
func (s *LikeStore) moveRate(tx *gorm.DB, filmID uint, delta int) error {
	err := tx.Model(&models.Film{}).
		Where("id = ?", filmID).
		UpdateColumn("rate", gorm.Expr("rate + ?", delta)).Error
	return translate(err, "failed to update film rate")
}

func (s *LikeStore) Popular(ctx context.Context, query repositories.PopularQuery) ([]models.Film, error) {
	films := make([]models.Film, 0)
	if query.Count == 0 {
		return films, nil
	}

	q := s.db.WithContext(ctx).Preload("Genres")
	if query.GenreID != nil {
		q = q.Where("EXISTS (SELECT 1 FROM film_genres fg WHERE fg.film_id = films.id AND fg.genre_id = ?)", *query.GenreID)
	}
	if query.Year != nil {
		q = q.Where("EXTRACT(YEAR FROM release_date) = ?", *query.Year)
	}
	if query.Count > 0 {
		q = q.Limit(query.Count)
	}

	if err := q.Order("rate DESC, id ASC").Find(&films).Error; err != nil {
		return nil, translate(err, "failed to rank films")
	}
	return films, nil
}
