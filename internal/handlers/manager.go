package handlers

import (
	"context"
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/mroshb/film_catalog/internal/config"
	"github.com/mroshb/film_catalog/internal/models"
	"github.com/mroshb/film_catalog/internal/repositories"
	"github.com/mroshb/film_catalog/internal/services"
	"github.com/mroshb/film_catalog/pkg/errors"
)

// HealthCheck reports whether one dependency is reachable.
type HealthCheck func(ctx context.Context) error

type HandlerManager struct {
	Config        *config.Config
	Catalog       repositories.CatalogStore
	FriendshipSvc *services.FriendshipService
	LikeSvc       *services.LikeService
	ReviewSvc     *services.ReviewService
	HealthChecks  map[string]HealthCheck
}

func NewHandlerManager(
	cfg *config.Config,
	catalog repositories.CatalogStore,
	friendshipSvc *services.FriendshipService,
	likeSvc *services.LikeService,
	reviewSvc *services.ReviewService,
) *HandlerManager {
	return &HandlerManager{
		Config:        cfg,
		Catalog:       catalog,
		FriendshipSvc: friendshipSvc,
		LikeSvc:       likeSvc,
		ReviewSvc:     reviewSvc,
		HealthChecks:  make(map[string]HealthCheck),
	}
}

// pathID parses a positive numeric path parameter.
func pathID(c *gin.Context, name string) (uint, error) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, errors.New(errors.ErrCodeValidation, fmt.Sprintf("%s must be a positive integer, got %q", name, raw))
	}
	return uint(id), nil
}

func (h *HandlerManager) resolveUser(c *gin.Context, param string) (*models.User, error) {
	id, err := pathID(c, param)
	if err != nil {
		return nil, err
	}
	return h.Catalog.GetUser(c.Request.Context(), id)
}

func (h *HandlerManager) resolveFilm(c *gin.Context, param string) (*models.Film, error) {
	id, err := pathID(c, param)
	if err != nil {
		return nil, err
	}
	return h.Catalog.GetFilm(c.Request.Context(), id)
}

func (h *HandlerManager) resolveReview(c *gin.Context, param string) (*models.Review, error) {
	id, err := pathID(c, param)
	if err != nil {
		return nil, err
	}
	return h.ReviewSvc.GetReview(c.Request.Context(), id)
}

// queryInt reads an optional integer query parameter.
func queryInt(c *gin.Context, name string) (*int, error) {
	raw, ok := c.GetQuery(name)
	if !ok || raw == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil, errors.New(errors.ErrCodeValidation, fmt.Sprintf("%s must be an integer, got %q", name, raw))
	}
	return &v, nil
}

// countParam reads the count query parameter, defaulting to 10.
func countParam(c *gin.Context) (int, error) {
	count, err := queryInt(c, "count")
	if err != nil {
		return 0, err
	}
	if count == nil {
		return 10, nil
	}
	if *count < 0 {
		return 0, errors.New(errors.ErrCodeValidation, "count must not be negative")
	}
	return *count, nil
}

func optionalID(c *gin.Context, name string) (*uint, error) {
	v, err := queryInt(c, name)
	if err != nil || v == nil {
		return nil, err
	}
	if *v <= 0 {
		return nil, errors.New(errors.ErrCodeValidation, fmt.Sprintf("%s must be positive", name))
	}
	id := uint(*v)
	return &id, nil
}

func bindError(err error) error {
	return errors.Wrap(err, errors.ErrCodeValidation, "invalid request body: "+err.Error())
}
