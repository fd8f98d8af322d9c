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

var _ repositories.ReviewStore = (*ReviewStore)(nil)

// ReviewStore serializes everything that touches one review on a row lock
// of that review, the same way balance changes lock the user row.
type ReviewStore struct {
	db *gorm.DB
}

func NewReviewStore(db *gorm.DB) *ReviewStore {
	return &ReviewStore{db: db}
}

func (s *ReviewStore) CreateReview(ctx context.Context, review *models.Review) error {
	review.Usefulness = 0
	if err := s.db.WithContext(ctx).Create(review).Error; err != nil {
		return translate(err, "failed to create review")
	}
	return nil
}

func (s *ReviewStore) UpdateReview(ctx context.Context, review *models.Review) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := lockReview(tx, review.ID)
		if err != nil {
			return err
		}

		existing.Content = review.Content
		existing.IsPositive = review.IsPositive
		err = tx.Model(existing).
			Select("content", "is_positive").
			Updates(existing).Error
		if err != nil {
			return translate(err, "failed to update review")
		}

		*review = *existing
		return nil
	})
}

func (s *ReviewStore) DeleteReview(ctx context.Context, reviewID uint) (bool, error) {
	deleted := false
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Votes are written under the same row lock, so none can land
		// after the sweep below.
		if _, err := lockReview(tx, reviewID); err != nil {
			if errors.HasCode(err, errors.ErrCodeNotFound) {
				return nil
			}
			return err
		}
		if err := tx.Where("review_id = ?", reviewID).Delete(&models.ReviewVote{}).Error; err != nil {
			return translate(err, "failed to delete review votes")
		}

		result := tx.Delete(&models.Review{}, reviewID)
		if result.Error != nil {
			return translate(result.Error, "failed to delete review")
		}
		deleted = result.RowsAffected > 0
		return nil
	})
	if err != nil {
		return false, err
	}
	return deleted, nil
}

func (s *ReviewStore) GetReview(ctx context.Context, reviewID uint) (*models.Review, error) {
	var review models.Review
	err := s.db.WithContext(ctx).First(&review, reviewID).Error
	if stderrors.Is(err, gorm.ErrRecordNotFound) {
		return nil, reviewNotFound(reviewID)
	}
	if err != nil {
		return nil, translate(err, "failed to get review")
	}
	return &review, nil
}

func (s *ReviewStore) ListReviews(ctx context.Context, count int, filmID *uint) ([]models.Review, error) {
	reviews := make([]models.Review, 0)
	if count == 0 {
		return reviews, nil
	}

	q := s.db.WithContext(ctx)
	if filmID != nil {
		q = q.Where("film_id = ?", *filmID)
	}
	if count > 0 {
		q = q.Limit(count)
	}

	if err := q.Order("usefulness DESC, id ASC").Find(&reviews).Error; err != nil {
		return nil, translate(err, "failed to list reviews")
	}
	return reviews, nil
}

func (s *ReviewStore) UpsertVote(ctx context.Context, reviewID, userID uint, rate int) (repositories.VoteResult, error) {
	if !models.IsValidVote(rate) {
		return repositories.VoteResult{}, errors.New(errors.ErrCodeValidation, fmt.Sprintf("vote must be 1 or -1, got %d", rate))
	}

	var res repositories.VoteResult
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		review, err := lockReview(tx, reviewID)
		if err != nil {
			return err
		}

		prev, err := findVote(tx, reviewID, userID)
		if err != nil {
			return err
		}
		if prev != nil && prev.Rate == rate {
			res = repositories.VoteResult{Changed: false, Usefulness: review.Usefulness}
			return nil
		}

		vote := models.ReviewVote{ReviewID: reviewID, UserID: userID, Rate: rate}
		err = tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "review_id"}, {Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"rate", "updated_at"}),
		}).Create(&vote).Error
		if err != nil {
			return translate(err, "failed to save vote")
		}

		usefulness, err := recomputeUsefulness(tx, reviewID)
		if err != nil {
			return err
		}
		res = repositories.VoteResult{Changed: true, Usefulness: usefulness}
		return nil
	})
	if err != nil {
		return repositories.VoteResult{}, err
	}
	return res, nil
}

func (s *ReviewStore) RemoveVote(ctx context.Context, reviewID, userID uint) (repositories.VoteResult, error) {
	var res repositories.VoteResult
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		review, err := lockReview(tx, reviewID)
		if err != nil {
			return err
		}

		result := tx.Where("review_id = ? AND user_id = ?", reviewID, userID).Delete(&models.ReviewVote{})
		if result.Error != nil {
			return translate(result.Error, "failed to remove vote")
		}
		if result.RowsAffected == 0 {
			res = repositories.VoteResult{Changed: false, Usefulness: review.Usefulness}
			return nil
		}

		usefulness, err := recomputeUsefulness(tx, reviewID)
		if err != nil {
			return err
		}
		res = repositories.VoteResult{Changed: true, Usefulness: usefulness}
		return nil
	})
	if err != nil {
		return repositories.VoteResult{}, err
	}
	return res, nil
}

func lockReview(tx *gorm.DB, reviewID uint) (*models.Review, error) {
	var review models.Review
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&review, reviewID).Error
	if stderrors.Is(err, gorm.ErrRecordNotFound) {
		return nil, reviewNotFound(reviewID)
	}
	if err != nil {
		return nil, translate(err, "failed to lock review")
	}
	return &review, nil
}

func findVote(tx *gorm.DB, reviewID, userID uint) (*models.ReviewVote, error) {
	var votes []models.ReviewVote
	err := tx.Where("review_id = ? AND user_id = ?", reviewID, userID).Limit(1).Find(&votes).Error
	if err != nil {
		return nil, translate(err, "failed to get vote")
	}
	if len(votes) == 0 {
		return nil, nil
	}
	return &votes[0], nil
}

// recomputeUsefulness stores the sum of all votes as the review score.
func recomputeUsefulness(tx *gorm.DB, reviewID uint) (int64, error) {
	var sum int64
	err := tx.Model(&models.ReviewVote{}).
		Select("COALESCE(SUM(rate), 0)").
		Where("review_id = ?", reviewID).
		Scan(&sum).Error
	if err != nil {
		return 0, translate(err, "failed to sum votes")
	}

	err = tx.Model(&models.Review{}).
		Where("id = ?", reviewID).
		UpdateColumn("usefulness", sum).Error
	if err != nil {
		return 0, translate(err, "failed to update usefulness")
	}
	return sum, nil
}

func reviewNotFound(id uint) error {
	return errors.New(errors.ErrCodeNotFound, fmt.Sprintf("review %d not found", id))
}
