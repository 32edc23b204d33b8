package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *Handlers) friends(c *gin.Context) {
	list, err := h.Friendships.Friends(c.Request.Context(), userID(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *Handlers) sentRequests(c *gin.Context) {
	list, err := h.Friendships.SentRequests(c.Request.Context(), userID(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *Handlers) receivedRequests(c *gin.Context) {
	list, err := h.Friendships.ReceivedRequests(c.Request.Context(), userID(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *Handlers) sendFriendRequest(c *gin.Context) {
	f, err := h.Friendships.SendRequest(c.Request.Context(), userID(c), c.Param("userId"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, f)
}

// accept/decline act on a request *received from* :userId.
func (h *Handlers) acceptFriendRequest(c *gin.Context) {
	f, err := h.Friendships.Accept(c.Request.Context(), c.Param("userId"), userID(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, f)
}

func (h *Handlers) declineFriendRequest(c *gin.Context) {
	f, err := h.Friendships.Decline(c.Request.Context(), c.Param("userId"), userID(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, f)
}

func (h *Handlers) cancelFriendRequest(c *gin.Context) {
	if err := h.Friendships.Cancel(c.Request.Context(), userID(c), c.Param("userId")); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handlers) unfriend(c *gin.Context) {
	if err := h.Friendships.Unfriend(c.Request.Context(), userID(c), c.Param("userId")); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
