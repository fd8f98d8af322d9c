package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/mroshb/film_catalog/internal/handlers/response"
	"github.com/mroshb/film_catalog/pkg/errors"
)

// HandleAddFriend sends a friend request or accepts the mirror request
func (h *HandlerManager) HandleAddFriend(c *gin.Context) {
	user, err := h.resolveUser(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	target, err := h.resolveUser(c, "friendId")
	if err != nil {
		response.Error(c, err)
		return
	}
	if user.ID == target.ID {
		response.Error(c, errors.New(errors.ErrCodeValidation, "a user cannot befriend themselves"))
		return
	}

	changed, err := h.FriendshipSvc.AddFriend(c.Request.Context(), user, target)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, response.Result{Result: changed})
}

// HandleRemoveFriend deletes the caller's own friendship row
func (h *HandlerManager) HandleRemoveFriend(c *gin.Context) {
	user, err := h.resolveUser(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	target, err := h.resolveUser(c, "friendId")
	if err != nil {
		response.Error(c, err)
		return
	}

	removed, err := h.FriendshipSvc.RemoveFriend(c.Request.Context(), user, target)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, response.Result{Result: removed})
}

func (h *HandlerManager) HandleGetFriends(c *gin.Context) {
	user, err := h.resolveUser(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	friends, err := h.FriendshipSvc.GetFriends(c.Request.Context(), user)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, friends)
}

func (h *HandlerManager) HandleGetCommonFriends(c *gin.Context) {
	user, err := h.resolveUser(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	other, err := h.resolveUser(c, "otherId")
	if err != nil {
		response.Error(c, err)
		return
	}

	common, err := h.FriendshipSvc.GetCommonFriends(c.Request.Context(), user, other)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, common)
}

// HandleGetFriendRequests lists pending requests sent to the user
func (h *HandlerManager) HandleGetFriendRequests(c *gin.Context) {
	user, err := h.resolveUser(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	requests, err := h.FriendshipSvc.GetIncomingRequests(c.Request.Context(), user)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, requests)
}
