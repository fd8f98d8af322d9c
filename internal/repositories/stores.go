package repositories

import (
	"context"
	"fmt"

	"github.com/mroshb/film_catalog/internal/models"
)

// PopularQuery describes a popularity ranking request. Filters are applied
// before ranking.
type PopularQuery struct {
	Count   int
	GenreID *uint
	Year    *int
}

// Key identifies the query for caching, e.g. "c10:g2:y-".
func (q PopularQuery) Key() string {
	genre, year := "-", "-"
	if q.GenreID != nil {
		genre = fmt.Sprint(*q.GenreID)
	}
	if q.Year != nil {
		year = fmt.Sprint(*q.Year)
	}
	return fmt.Sprintf("c%d:g%s:y%s", q.Count, genre, year)
}

// FilmLikeStore owns film likes and the derived films.rate counter. Each
// call checks and writes in one atomic step.
type FilmLikeStore interface {
	// AddLike returns false when the like already existed.
	AddLike(ctx context.Context, filmID, userID uint) (bool, error)
	// RemoveLike returns false when there was nothing to remove.
	RemoveLike(ctx context.Context, filmID, userID uint) (bool, error)
	// Popular orders by rate descending, then id ascending.
	Popular(ctx context.Context, query PopularQuery) ([]models.Film, error)
}

// VoteResult reports what a vote mutation did.
type VoteResult struct {
	Changed    bool
	Usefulness int64
}

// ReviewStore owns reviews, their votes and the derived usefulness score.
type ReviewStore interface {
	CreateReview(ctx context.Context, review *models.Review) error
	// UpdateReview changes content and polarity only.
	UpdateReview(ctx context.Context, review *models.Review) error
	// DeleteReview removes the review and its votes together.
	DeleteReview(ctx context.Context, reviewID uint) (bool, error)
	GetReview(ctx context.Context, reviewID uint) (*models.Review, error)
	// ListReviews orders by usefulness descending, then id ascending.
	// A nil filmID lists reviews of every film.
	ListReviews(ctx context.Context, count int, filmID *uint) ([]models.Review, error)

	// UpsertVote sets the user's vote and recomputes usefulness as the sum
	// of all votes in the same atomic step.
	UpsertVote(ctx context.Context, reviewID, userID uint, rate int) (VoteResult, error)
	RemoveVote(ctx context.Context, reviewID, userID uint) (VoteResult, error)
}

// CatalogStore resolves identifiers to validated films and users. Lookups
// of unknown ids return NOT_FOUND.
type CatalogStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUser(ctx context.Context, id uint) (*models.User, error)
	// GetUsers returns the users that exist among ids, ordered by id.
	GetUsers(ctx context.Context, ids []uint) ([]models.User, error)

	CreateFilm(ctx context.Context, film *models.Film) error
	GetFilm(ctx context.Context, id uint) (*models.Film, error)
}
