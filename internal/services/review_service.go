package services

import (
	"context"
	"fmt"

	"github.com/mroshb/film_catalog/internal/models"
	"github.com/mroshb/film_catalog/internal/repositories"
	"github.com/mroshb/film_catalog/internal/security"
	"github.com/mroshb/film_catalog/pkg/errors"
	"github.com/mroshb/film_catalog/pkg/logger"
)

// ReviewService manages reviews and the signed votes users cast on them.
// A review's usefulness is always the sum of its votes.
type ReviewService struct {
	reviews repositories.ReviewStore
}

func NewReviewService(reviews repositories.ReviewStore) *ReviewService {
	return &ReviewService{reviews: reviews}
}

func (s *ReviewService) CreateReview(ctx context.Context, film *models.Film, author *models.User, content string, positive bool) (*models.Review, error) {
	review := &models.Review{
		FilmID:     film.ID,
		UserID:     author.ID,
		Content:    security.SanitizeReview(content),
		IsPositive: positive,
	}
	if review.Content == "" {
		return nil, errors.New(errors.ErrCodeValidation, "review content must not be empty")
	}

	if err := s.reviews.CreateReview(ctx, review); err != nil {
		logger.Error("Failed to create review", "film_id", film.ID, "user_id", author.ID, "error", err)
		return nil, err
	}
	return review, nil
}

// UpdateReview replaces content and polarity. Film, author and usefulness
// never change.
func (s *ReviewService) UpdateReview(ctx context.Context, reviewID uint, content string, positive bool) (*models.Review, error) {
	review := &models.Review{
		ID:         reviewID,
		Content:    security.SanitizeReview(content),
		IsPositive: positive,
	}
	if review.Content == "" {
		return nil, errors.New(errors.ErrCodeValidation, "review content must not be empty")
	}

	if err := s.reviews.UpdateReview(ctx, review); err != nil {
		return nil, err
	}
	return review, nil
}

// DeleteReview removes the review together with its votes.
func (s *ReviewService) DeleteReview(ctx context.Context, reviewID uint) (bool, error) {
	deleted, err := s.reviews.DeleteReview(ctx, reviewID)
	if err != nil {
		logger.Error("Failed to delete review", "review_id", reviewID, "error", err)
		return false, err
	}
	return deleted, nil
}

func (s *ReviewService) GetReview(ctx context.Context, reviewID uint) (*models.Review, error) {
	return s.reviews.GetReview(ctx, reviewID)
}

// ListReviews returns up to count reviews, most useful first. A nil filmID
// lists reviews of all films.
func (s *ReviewService) ListReviews(ctx context.Context, count int, filmID *uint) ([]models.Review, error) {
	if count < 0 {
		return nil, errors.New(errors.ErrCodeValidation, fmt.Sprintf("count must not be negative, got %d", count))
	}
	return s.reviews.ListReviews(ctx, count, filmID)
}

// UpsertVote sets user's vote on review to rate (+1 or -1). Switching sides
// moves usefulness by two. Repeating the same vote reports no change.
func (s *ReviewService) UpsertVote(ctx context.Context, review *models.Review, user *models.User, rate int) (repositories.VoteResult, error) {
	res, err := s.reviews.UpsertVote(ctx, review.ID, user.ID, rate)
	observeToggle(kindReviewVote, res.Changed, err)
	if err != nil {
		if !errors.HasCode(err, errors.ErrCodeValidation) {
			logger.Error("Failed to vote on review", "review_id", review.ID, "user_id", user.ID, "error", err)
		}
		return repositories.VoteResult{}, err
	}
	return res, nil
}

// RemoveVote deletes whatever vote user has on review. Removing a like and
// removing a dislike are the same operation.
func (s *ReviewService) RemoveVote(ctx context.Context, review *models.Review, user *models.User) (repositories.VoteResult, error) {
	res, err := s.reviews.RemoveVote(ctx, review.ID, user.ID)
	observeToggle(kindReviewClear, res.Changed, err)
	if err != nil {
		logger.Error("Failed to remove review vote", "review_id", review.ID, "user_id", user.ID, "error", err)
		return repositories.VoteResult{}, err
	}
	return res, nil
}
