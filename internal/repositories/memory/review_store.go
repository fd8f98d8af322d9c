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

var _ repositories.ReviewStore = (*ReviewStore)(nil)

// ReviewStore keeps reviews and their votes. Every mutation of one review
// (votes, edits, deletion) runs under that review's key lock.
type ReviewStore struct {
	mu      sync.RWMutex
	reviews map[uint]models.Review
	votes   map[uint]map[uint]int // review -> user -> rate
	nextID  uint
	locks   *keyLocks
}

func NewReviewStore() *ReviewStore {
	return &ReviewStore{
		reviews: make(map[uint]models.Review),
		votes:   make(map[uint]map[uint]int),
		locks:   newKeyLocks(defaultStripes),
	}
}

func (s *ReviewStore) CreateReview(ctx context.Context, review *models.Review) error {
	if err := checkContext(ctx); err != nil {
		return err
	}
	review.Usefulness = 0
	if err := review.BeforeSave(nil); err != nil {
		return errors.Wrap(err, errors.ErrCodeValidation, "invalid review")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	review.ID = s.nextID
	s.reviews[review.ID] = *review
	return nil
}

func (s *ReviewStore) UpdateReview(ctx context.Context, review *models.Review) error {
	unlock, err := s.locks.lock(ctx, uint64(review.ID))
	if err != nil {
		return err
	}
	defer unlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.reviews[review.ID]
	if !ok {
		return reviewNotFound(review.ID)
	}
	existing.Content = review.Content
	existing.IsPositive = review.IsPositive
	if err := existing.BeforeSave(nil); err != nil {
		return errors.Wrap(err, errors.ErrCodeValidation, "invalid review")
	}

	s.reviews[review.ID] = existing
	*review = existing
	return nil
}

func (s *ReviewStore) DeleteReview(ctx context.Context, reviewID uint) (bool, error) {
	unlock, err := s.locks.lock(ctx, uint64(reviewID))
	if err != nil {
		return false, err
	}
	defer unlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.reviews[reviewID]; !ok {
		return false, nil
	}
	delete(s.reviews, reviewID)
	delete(s.votes, reviewID)
	return true, nil
}

func (s *ReviewStore) GetReview(ctx context.Context, reviewID uint) (*models.Review, error) {
	if err := checkContext(ctx); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	review, ok := s.reviews[reviewID]
	if !ok {
		return nil, reviewNotFound(reviewID)
	}
	return &review, nil
}

func (s *ReviewStore) ListReviews(ctx context.Context, count int, filmID *uint) ([]models.Review, error) {
	if err := checkContext(ctx); err != nil {
		return nil, err
	}

	s.mu.RLock()
	reviews := make([]models.Review, 0, len(s.reviews))
	for _, r := range s.reviews {
		if filmID != nil && r.FilmID != *filmID {
			continue
		}
		reviews = append(reviews, r)
	}
	s.mu.RUnlock()

	sort.Slice(reviews, func(i, j int) bool {
		if reviews[i].Usefulness != reviews[j].Usefulness {
			return reviews[i].Usefulness > reviews[j].Usefulness
		}
		return reviews[i].ID < reviews[j].ID
	})

	if count >= 0 && count < len(reviews) {
		reviews = reviews[:count]
	}
	return reviews, nil
}

func (s *ReviewStore) UpsertVote(ctx context.Context, reviewID, userID uint, rate int) (repositories.VoteResult, error) {
	if !models.IsValidVote(rate) {
		return repositories.VoteResult{}, errors.New(errors.ErrCodeValidation, fmt.Sprintf("vote must be 1 or -1, got %d", rate))
	}

	unlock, err := s.locks.lock(ctx, uint64(reviewID))
	if err != nil {
		return repositories.VoteResult{}, err
	}
	defer unlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	review, ok := s.reviews[reviewID]
	if !ok {
		return repositories.VoteResult{}, reviewNotFound(reviewID)
	}

	votes, ok := s.votes[reviewID]
	if !ok {
		votes = make(map[uint]int)
		s.votes[reviewID] = votes
	}
	if prev, voted := votes[userID]; voted && prev == rate {
		return repositories.VoteResult{Changed: false, Usefulness: review.Usefulness}, nil
	}
	votes[userID] = rate

	review.Usefulness = sumVotes(votes)
	s.reviews[reviewID] = review
	return repositories.VoteResult{Changed: true, Usefulness: review.Usefulness}, nil
}

func (s *ReviewStore) RemoveVote(ctx context.Context, reviewID, userID uint) (repositories.VoteResult, error) {
	unlock, err := s.locks.lock(ctx, uint64(reviewID))
	if err != nil {
		return repositories.VoteResult{}, err
	}
	defer unlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	review, ok := s.reviews[reviewID]
	if !ok {
		return repositories.VoteResult{}, reviewNotFound(reviewID)
	}
	if _, voted := s.votes[reviewID][userID]; !voted {
		return repositories.VoteResult{Changed: false, Usefulness: review.Usefulness}, nil
	}
	delete(s.votes[reviewID], userID)

	review.Usefulness = sumVotes(s.votes[reviewID])
	s.reviews[reviewID] = review
	return repositories.VoteResult{Changed: true, Usefulness: review.Usefulness}, nil
}

func sumVotes(votes map[uint]int) int64 {
	var sum int64
	for _, rate := range votes {
		sum += int64(rate)
	}
	return sum
}

func reviewNotFound(id uint) error {
	return errors.New(errors.ErrCodeNotFound, fmt.Sprintf("review %d not found", id))
}
