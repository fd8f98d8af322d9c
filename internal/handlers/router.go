package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mroshb/film_catalog/internal/middleware"
)

// NewRouter wires every route onto a gin engine. limiter may be nil.
func NewRouter(h *HandlerManager, limiter *middleware.RateLimiter) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestID(), middleware.AccessLog(), middleware.Metrics())

	router.GET("/health", h.HandleHealth)
	router.GET("/metrics", middleware.PrometheusHandler())

	api := router.Group("/")
	if limiter != nil {
		api.Use(limiter.Middleware())
	}

	users := api.Group("/users")
	users.POST("", h.HandleCreateUser)
	users.GET("/:id", h.HandleGetUser)
	users.PUT("/:id/friends/:friendId", h.HandleAddFriend)
	users.DELETE("/:id/friends/:friendId", h.HandleRemoveFriend)
	users.GET("/:id/friends", h.HandleGetFriends)
	users.GET("/:id/friends/common/:otherId", h.HandleGetCommonFriends)
	users.GET("/:id/friends/requests", h.HandleGetFriendRequests)

	films := api.Group("/films")
	films.POST("", h.HandleCreateFilm)
	films.GET("/popular", h.HandlePopularFilms)
	films.GET("/:id", h.HandleGetFilm)
	films.PUT("/:id/like/:userId", h.HandleLikeFilm)
	films.DELETE("/:id/like/:userId", h.HandleDislikeFilm)

	reviews := api.Group("/reviews")
	reviews.POST("", h.HandleCreateReview)
	reviews.GET("", h.HandleListReviews)
	reviews.GET("/:id", h.HandleGetReview)
	reviews.PUT("/:id", h.HandleUpdateReview)
	reviews.DELETE("/:id", h.HandleDeleteReview)
	reviews.PUT("/:id/like/:userId", h.HandleLikeReview)
	reviews.PUT("/:id/dislike/:userId", h.HandleDislikeReview)
	reviews.DELETE("/:id/like/:userId", h.HandleRemoveReviewVote)
	reviews.DELETE("/:id/dislike/:userId", h.HandleRemoveReviewVote)

	return router
}

// HandleHealth runs every registered check with a short timeout.
func (h *HandlerManager) HandleHealth(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	checks := make(map[string]string, len(h.HealthChecks))
	for name, check := range h.HealthChecks {
		if err := check(ctx); err != nil {
			checks[name] = err.Error()
			status = http.StatusServiceUnavailable
			continue
		}
		checks[name] = "ok"
	}

	state := "ok"
	if status != http.StatusOK {
		state = "degraded"
	}
	c.JSON(status, gin.H{"status": state, "checks": checks})
}
