package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/mroshb/film_catalog/internal/models"
	"github.com/mroshb/film_catalog/internal/repositories"
	"github.com/mroshb/film_catalog/pkg/errors"
)

var _ repositories.CatalogStore = (*CatalogStore)(nil)

type CatalogStore struct {
	mu         sync.RWMutex
	users      map[uint]models.User
	films      map[uint]models.Film
	genres     map[uint]models.Genre
	nextUserID uint
	nextFilmID uint
}

// NewCatalogStore returns an empty catalog that knows the default genres.
func NewCatalogStore() *CatalogStore {
	s := &CatalogStore{
		users:  make(map[uint]models.User),
		films:  make(map[uint]models.Film),
		genres: make(map[uint]models.Genre, len(models.DefaultGenres)),
	}
	for _, g := range models.DefaultGenres {
		s.genres[g.ID] = g
	}
	return s
}

// CreateUser validates and stores a new user, assigning its ID
func (s *CatalogStore) CreateUser(ctx context.Context, user *models.User) error {
	if err := checkContext(ctx); err != nil {
		return err
	}
	if err := user.BeforeSave(nil); err != nil {
		return errors.Wrap(err, errors.ErrCodeValidation, "invalid user")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users {
		if existing.Email == user.Email || existing.Login == user.Login {
			return errors.New(errors.ErrCodeConflict, "user with this email or login already exists")
		}
	}

	s.nextUserID++
	user.ID = s.nextUserID
	s.users[user.ID] = *user
	return nil
}

func (s *CatalogStore) GetUser(ctx context.Context, id uint) (*models.User, error) {
	if err := checkContext(ctx); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[id]
	if !ok {
		return nil, errors.New(errors.ErrCodeNotFound, fmt.Sprintf("user %d not found", id))
	}
	return &user, nil
}

func (s *CatalogStore) GetUsers(ctx context.Context, ids []uint) ([]models.User, error) {
	if err := checkContext(ctx); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[uint]struct{}, len(ids))
	users := make([]models.User, 0, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if user, ok := s.users[id]; ok {
			users = append(users, user)
		}
	}

	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

// CreateFilm validates and stores a new film. The like counter always
// starts at zero.
func (s *CatalogStore) CreateFilm(ctx context.Context, film *models.Film) error {
	if err := checkContext(ctx); err != nil {
		return err
	}
	film.Rate = 0
	if err := film.BeforeSave(nil); err != nil {
		return errors.Wrap(err, errors.ErrCodeValidation, "invalid film")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i, g := range film.Genres {
		known, ok := s.genres[g.ID]
		if !ok {
			return errors.New(errors.ErrCodeValidation, fmt.Sprintf("unknown genre %d", g.ID))
		}
		film.Genres[i] = known
	}

	s.nextFilmID++
	film.ID = s.nextFilmID
	s.films[film.ID] = copyFilm(*film)
	return nil
}

func (s *CatalogStore) GetFilm(ctx context.Context, id uint) (*models.Film, error) {
	if err := checkContext(ctx); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	film, ok := s.films[id]
	if !ok {
		return nil, errors.New(errors.ErrCodeNotFound, fmt.Sprintf("film %d not found", id))
	}
	film = copyFilm(film)
	return &film, nil
}

// adjustRate moves the like counter of a film by delta.
func (s *CatalogStore) adjustRate(filmID uint, delta int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	film, ok := s.films[filmID]
	if !ok {
		return errors.New(errors.ErrCodeNotFound, fmt.Sprintf("film %d not found", filmID))
	}
	film.Rate += delta
	s.films[filmID] = film
	return nil
}

func (s *CatalogStore) snapshotFilms() []models.Film {
	s.mu.RLock()
	defer s.mu.RUnlock()

	films := make([]models.Film, 0, len(s.films))
	for _, f := range s.films {
		films = append(films, copyFilm(f))
	}
	return films
}

func copyFilm(f models.Film) models.Film {
	if f.Genres != nil {
		genres := make([]models.Genre, len(f.Genres))
		copy(genres, f.Genres)
		f.Genres = genres
	}
	return f
}
