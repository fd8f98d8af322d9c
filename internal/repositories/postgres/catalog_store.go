package postgres

import (
	"context"
	stderrors "errors"
	"fmt"

	"github.com/mroshb/film_catalog/internal/models"
	"github.com/mroshb/film_catalog/internal/repositories"
	"github.com/mroshb/film_catalog/pkg/errors"
	"gorm.io/gorm"
)

var _ repositories.CatalogStore = (*CatalogStore)(nil)

type CatalogStore struct {
	db *gorm.DB
}

func NewCatalogStore(db *gorm.DB) *CatalogStore {
	return &CatalogStore{db: db}
}

// CreateUser inserts a user; duplicate email or login is a CONFLICT.
func (s *CatalogStore) CreateUser(ctx context.Context, user *models.User) error {
	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		return translate(err, "failed to create user")
	}
	return nil
}

func (s *CatalogStore) GetUser(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).First(&user, id).Error
	if stderrors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errors.New(errors.ErrCodeNotFound, fmt.Sprintf("user %d not found", id))
	}
	if err != nil {
		return nil, translate(err, "failed to get user")
	}
	return &user, nil
}

func (s *CatalogStore) GetUsers(ctx context.Context, ids []uint) ([]models.User, error) {
	users := make([]models.User, 0, len(ids))
	if len(ids) == 0 {
		return users, nil
	}

	err := s.db.WithContext(ctx).
		Where("id IN ?", ids).
		Order("id ASC").
		Find(&users).Error
	if err != nil {
		return nil, translate(err, "failed to get users")
	}
	return users, nil
}

// CreateFilm inserts a film and links it to existing genres. Unknown genre
// ids are rejected instead of being created on the fly.
func (s *CatalogStore) CreateFilm(ctx context.Context, film *models.Film) error {
	film.Rate = 0

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(film.Genres) > 0 {
			ids := make([]uint, 0, len(film.Genres))
			for _, g := range film.Genres {
				ids = append(ids, g.ID)
			}

			var known []models.Genre
			if err := tx.Where("id IN ?", ids).Find(&known).Error; err != nil {
				return translate(err, "failed to resolve genres")
			}
			if len(known) != len(uniqueIDs(ids)) {
				return errors.New(errors.ErrCodeValidation, "film references unknown genre")
			}
			film.Genres = known
		}

		if err := tx.Omit("Genres.*").Create(film).Error; err != nil {
			return translate(err, "failed to create film")
		}
		return nil
	})
}

func (s *CatalogStore) GetFilm(ctx context.Context, id uint) (*models.Film, error) {
	var film models.Film
	err := s.db.WithContext(ctx).Preload("Genres").First(&film, id).Error
	if stderrors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errors.New(errors.ErrCodeNotFound, fmt.Sprintf("film %d not found", id))
	}
	if err != nil {
		return nil, translate(err, "failed to get film")
	}
	return &film, nil
}

func uniqueIDs(ids []uint) map[uint]struct{} {
	set := make(map[uint]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}
