package memory

import (
	"context"
	"sync"
	"testing"

	"github.com/mroshb/film_catalog/internal/models"
	"github.com/mroshb/film_catalog/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createReview(t *testing.T, store *ReviewStore, filmID, userID uint) *models.Review {
	t.Helper()
	review := &models.Review{FilmID: filmID, UserID: userID, Content: "worth watching", IsPositive: true}
	require.NoError(t, store.CreateReview(context.Background(), review))
	return review
}

func TestReviewStore_VotesSumToUsefulness(t *testing.T) {
	ctx := context.Background()
	store := NewReviewStore()
	review := createReview(t, store, 1, 1)

	res, err := store.UpsertVote(ctx, review.ID, 1, models.VoteUseful)
	require.NoError(t, err)
	assert.True(t, res.Changed)
	assert.Equal(t, int64(1), res.Usefulness)

	res, err = store.UpsertVote(ctx, review.ID, 2, models.VoteUseless)
	require.NoError(t, err)
	assert.Equal(t, int64(0), res.Usefulness)

	res, err = store.UpsertVote(ctx, review.ID, 3, models.VoteUseful)
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.Usefulness)

	res, err = store.RemoveVote(ctx, review.ID, 2)
	require.NoError(t, err)
	assert.True(t, res.Changed)
	assert.Equal(t, int64(2), res.Usefulness)

	stored, err := store.GetReview(ctx, review.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stored.Usefulness)
}

func TestReviewStore_SwitchingVoteMovesScoreByTwo(t *testing.T) {
	ctx := context.Background()
	store := NewReviewStore()
	review := createReview(t, store, 1, 1)

	res, err := store.UpsertVote(ctx, review.ID, 5, models.VoteUseful)
	require.NoError(t, err)
	require.Equal(t, int64(1), res.Usefulness)

	res, err = store.UpsertVote(ctx, review.ID, 5, models.VoteUseless)
	require.NoError(t, err)
	assert.True(t, res.Changed)
	assert.Equal(t, int64(-1), res.Usefulness)
}

func TestReviewStore_RepeatedVoteIsNoop(t *testing.T) {
	ctx := context.Background()
	store := NewReviewStore()
	review := createReview(t, store, 1, 1)

	_, err := store.UpsertVote(ctx, review.ID, 5, models.VoteUseless)
	require.NoError(t, err)

	res, err := store.UpsertVote(ctx, review.ID, 5, models.VoteUseless)
	require.NoError(t, err)
	assert.False(t, res.Changed)
	assert.Equal(t, int64(-1), res.Usefulness)

	res, err = store.RemoveVote(ctx, review.ID, 6)
	require.NoError(t, err)
	assert.False(t, res.Changed)
}

func TestReviewStore_InvalidVote(t *testing.T) {
	store := NewReviewStore()
	review := createReview(t, store, 1, 1)

	_, err := store.UpsertVote(context.Background(), review.ID, 1, 2)
	assert.True(t, errors.HasCode(err, errors.ErrCodeValidation))
}

func TestReviewStore_DeleteCascadesVotes(t *testing.T) {
	ctx := context.Background()
	store := NewReviewStore()
	review := createReview(t, store, 1, 1)
	_, err := store.UpsertVote(ctx, review.ID, 2, models.VoteUseful)
	require.NoError(t, err)

	deleted, err := store.DeleteReview(ctx, review.ID)
	require.NoError(t, err)
	assert.True(t, deleted)
	assert.Empty(t, store.votes[review.ID])

	_, err = store.GetReview(ctx, review.ID)
	assert.True(t, errors.HasCode(err, errors.ErrCodeNotFound))

	_, err = store.UpsertVote(ctx, review.ID, 2, models.VoteUseful)
	assert.True(t, errors.HasCode(err, errors.ErrCodeNotFound))

	deleted, err = store.DeleteReview(ctx, review.ID)
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestReviewStore_UpdateKeepsUsefulness(t *testing.T) {
	ctx := context.Background()
	store := NewReviewStore()
	review := createReview(t, store, 1, 1)
	_, err := store.UpsertVote(ctx, review.ID, 2, models.VoteUseful)
	require.NoError(t, err)

	update := &models.Review{ID: review.ID, Content: "changed my mind", IsPositive: false, Usefulness: 100}
	require.NoError(t, store.UpdateReview(ctx, update))
	assert.Equal(t, int64(1), update.Usefulness)
	assert.Equal(t, "changed my mind", update.Content)
	assert.Equal(t, uint(1), update.FilmID)

	err = store.UpdateReview(ctx, &models.Review{ID: 999, Content: "x"})
	assert.True(t, errors.HasCode(err, errors.ErrCodeNotFound))
}

func TestReviewStore_ListReviews(t *testing.T) {
	ctx := context.Background()
	store := NewReviewStore()
	r1 := createReview(t, store, 1, 1)
	r2 := createReview(t, store, 1, 2)
	r3 := createReview(t, store, 2, 3)
	r4 := createReview(t, store, 1, 4)

	_, err := store.UpsertVote(ctx, r2.ID, 1, models.VoteUseful)
	require.NoError(t, err)
	_, err = store.UpsertVote(ctx, r4.ID, 1, models.VoteUseless)
	require.NoError(t, err)

	all, err := store.ListReviews(ctx, 10, nil)
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, []uint{r2.ID, r1.ID, r3.ID, r4.ID}, []uint{all[0].ID, all[1].ID, all[2].ID, all[3].ID})

	film := uint(1)
	forFilm, err := store.ListReviews(ctx, 2, &film)
	require.NoError(t, err)
	require.Len(t, forFilm, 2)
	assert.Equal(t, r2.ID, forFilm[0].ID)
	assert.Equal(t, r1.ID, forFilm[1].ID)
}

func TestReviewStore_ConcurrentVotes(t *testing.T) {
	ctx := context.Background()
	store := NewReviewStore()
	review := createReview(t, store, 1, 1)

	var wg sync.WaitGroup
	for u := 1; u <= 100; u++ {
		wg.Add(1)
		go func(userID uint) {
			defer wg.Done()
			rate := models.VoteUseful
			if userID%4 == 0 {
				rate = models.VoteUseless
			}
			_, err := store.UpsertVote(ctx, review.ID, userID, rate)
			assert.NoError(t, err)
		}(uint(u))
	}
	wg.Wait()

	stored, err := store.GetReview(ctx, review.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(75-25), stored.Usefulness)
}
