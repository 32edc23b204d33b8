package handler

import (
	"net/http"

	"chatline/module/chat/service"

	"github.com/gin-gonic/gin"
)

func (h *Handlers) summaries(c *gin.Context) {
	list, err := h.Messages.Summaries(c.Request.Context(), userID(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *Handlers) summaryFor(c *gin.Context) {
	row, err := h.Messages.SummaryFor(c.Request.Context(), userID(c), c.Param("userId"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, row)
}

func (h *Handlers) conversation(c *gin.Context) {
	list, err := h.Messages.Conversation(c.Request.Context(), userID(c), c.Param("userId"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *Handlers) sendMessage(c *gin.Context) {
	var in service.SendInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "invalid body"})
		return
	}
	msg, err := h.Messages.Send(c.Request.Context(), userID(c), c.Param("userId"), in)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, msg)
}

func (h *Handlers) revokeMessage(c *gin.Context) {
	msg, err := h.Messages.Revoke(c.Request.Context(), c.Param("id"), userID(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, msg)
}

func (h *Handlers) editMessage(c *gin.Context) {
	var in struct {
		Text string `json:"text"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "invalid body"})
		return
	}
	msg, err := h.Messages.Edit(c.Request.Context(), c.Param("id"), userID(c), in.Text)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, msg)
}
