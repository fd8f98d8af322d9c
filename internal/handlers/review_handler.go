package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mroshb/film_catalog/internal/handlers/response"
	"github.com/mroshb/film_catalog/internal/models"
)

type createReviewRequest struct {
	Content    string `json:"content" binding:"required"`
	IsPositive *bool  `json:"isPositive" binding:"required"`
	UserID     uint   `json:"userId" binding:"required"`
	FilmID     uint   `json:"filmId" binding:"required"`
}

type updateReviewRequest struct {
	Content    string `json:"content" binding:"required"`
	IsPositive *bool  `json:"isPositive" binding:"required"`
}

func (h *HandlerManager) HandleCreateReview(c *gin.Context) {
	var req createReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err))
		return
	}

	ctx := c.Request.Context()
	film, err := h.Catalog.GetFilm(ctx, req.FilmID)
	if err != nil {
		response.Error(c, err)
		return
	}
	author, err := h.Catalog.GetUser(ctx, req.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}

	review, err := h.ReviewSvc.CreateReview(ctx, film, author, req.Content, *req.IsPositive)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, review)
}

// HandleUpdateReview changes content and polarity only
func (h *HandlerManager) HandleUpdateReview(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	var req updateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err))
		return
	}

	review, err := h.ReviewSvc.UpdateReview(c.Request.Context(), id, req.Content, *req.IsPositive)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, review)
}

// HandleDeleteReview removes the review and its votes
func (h *HandlerManager) HandleDeleteReview(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	deleted, err := h.ReviewSvc.DeleteReview(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, response.Result{Result: deleted})
}

func (h *HandlerManager) HandleGetReview(c *gin.Context) {
	review, err := h.resolveReview(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, review)
}

// HandleListReviews serves GET /reviews?filmId&count
func (h *HandlerManager) HandleListReviews(c *gin.Context) {
	count, err := countParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	filmID, err := optionalID(c, "filmId")
	if err != nil {
		response.Error(c, err)
		return
	}

	reviews, err := h.ReviewSvc.ListReviews(c.Request.Context(), count, filmID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, reviews)
}

func (h *HandlerManager) HandleLikeReview(c *gin.Context) {
	h.voteOnReview(c, models.VoteUseful)
}

func (h *HandlerManager) HandleDislikeReview(c *gin.Context) {
	h.voteOnReview(c, models.VoteUseless)
}

// HandleRemoveReviewVote serves both DELETE .../like and .../dislike; each
// removes whatever vote the user has.
func (h *HandlerManager) HandleRemoveReviewVote(c *gin.Context) {
	review, user, ok := h.resolveVote(c)
	if !ok {
		return
	}

	res, err := h.ReviewSvc.RemoveVote(c.Request.Context(), review, user)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, response.VoteResult{Result: res.Changed, Usefulness: res.Usefulness})
}

func (h *HandlerManager) voteOnReview(c *gin.Context, rate int) {
	review, user, ok := h.resolveVote(c)
	if !ok {
		return
	}

	res, err := h.ReviewSvc.UpsertVote(c.Request.Context(), review, user, rate)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, response.VoteResult{Result: res.Changed, Usefulness: res.Usefulness})
}

func (h *HandlerManager) resolveVote(c *gin.Context) (*models.Review, *models.User, bool) {
	review, err := h.resolveReview(c, "id")
	if err != nil {
		response.Error(c, err)
		return nil, nil, false
	}
	user, err := h.resolveUser(c, "userId")
	if err != nil {
		response.Error(c, err)
		return nil, nil, false
	}
	return review, user, true
}
