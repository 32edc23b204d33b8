package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *Handlers) listNotifications(c *gin.Context) {
	list, err := h.Notifications.List(c.Request.Context(), userID(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *Handlers) unreadCount(c *gin.Context) {
	count, err := h.Notifications.UnreadCount(c.Request.Context(), userID(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": count})
}

func (h *Handlers) markNotificationRead(c *gin.Context) {
	n, err := h.Notifications.MarkRead(c.Request.Context(), c.Param("id"), userID(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, n)
}

func (h *Handlers) markAllNotificationsRead(c *gin.Context) {
	if err := h.Notifications.MarkAllRead(c.Request.Context(), userID(c)); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handlers) deleteNotification(c *gin.Context) {
	if err := h.Notifications.Delete(c.Request.Context(), c.Param("id"), userID(c)); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
