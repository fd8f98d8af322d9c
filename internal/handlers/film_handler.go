package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mroshb/film_catalog/internal/handlers/response"
	"github.com/mroshb/film_catalog/internal/models"
	"github.com/mroshb/film_catalog/pkg/errors"
)

type genreRef struct {
	ID uint `json:"id" binding:"required"`
}

type createFilmRequest struct {
	Name        string     `json:"name" binding:"required"`
	Description string     `json:"description"`
	ReleaseDate string     `json:"releaseDate" binding:"required"` // YYYY-MM-DD
	Duration    int        `json:"duration" binding:"required"`
	Genres      []genreRef `json:"genres"`
}

// HandleCreateFilm adds a film to the catalog. Its rate starts at zero.
func (h *HandlerManager) HandleCreateFilm(c *gin.Context) {
	var req createFilmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err))
		return
	}

	releaseDate, err := time.Parse("2006-01-02", req.ReleaseDate)
	if err != nil {
		response.Error(c, errors.New(errors.ErrCodeValidation, "releaseDate must be YYYY-MM-DD"))
		return
	}

	film := &models.Film{
		Name:        req.Name,
		Description: req.Description,
		ReleaseDate: releaseDate,
		Duration:    req.Duration,
	}
	for _, g := range req.Genres {
		film.Genres = append(film.Genres, models.Genre{ID: g.ID})
	}

	if err := h.Catalog.CreateFilm(c.Request.Context(), film); err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, film)
}

func (h *HandlerManager) HandleGetFilm(c *gin.Context) {
	film, err := h.resolveFilm(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, film)
}

// HandleLikeFilm records a like; repeats report {result: false}
func (h *HandlerManager) HandleLikeFilm(c *gin.Context) {
	h.toggleFilmLike(c, true)
}

// HandleDislikeFilm removes a like. It is not a negative vote.
func (h *HandlerManager) HandleDislikeFilm(c *gin.Context) {
	h.toggleFilmLike(c, false)
}

func (h *HandlerManager) toggleFilmLike(c *gin.Context, like bool) {
	film, err := h.resolveFilm(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	user, err := h.resolveUser(c, "userId")
	if err != nil {
		response.Error(c, err)
		return
	}

	var changed bool
	if like {
		changed, err = h.LikeSvc.Like(c.Request.Context(), film, user)
	} else {
		changed, err = h.LikeSvc.Dislike(c.Request.Context(), film, user)
	}
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, response.Result{Result: changed})
}

// HandlePopularFilms serves GET /films/popular?count&genreId&year
func (h *HandlerManager) HandlePopularFilms(c *gin.Context) {
	count, err := countParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	genreID, err := optionalID(c, "genreId")
	if err != nil {
		response.Error(c, err)
		return
	}
	year, err := queryInt(c, "year")
	if err != nil {
		response.Error(c, err)
		return
	}

	films, err := h.LikeSvc.Popular(c.Request.Context(), count, genreID, year)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, films)
}
