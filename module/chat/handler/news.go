package handler

import (
	"net/http"
	"strconv"

	"chatline/module/chat/service"

	"github.com/gin-gonic/gin"
)

func (h *Handlers) newsFeed(c *gin.Context) {
	list, err := h.News.Feed(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *Handlers) newsByUser(c *gin.Context) {
	page, _ := strconv.ParseInt(c.DefaultQuery("page", "1"), 10, 64)
	perPage, _ := strconv.ParseInt(c.DefaultQuery("perPage", "20"), 10, 64)
	list, err := h.News.ByUser(c.Request.Context(), c.Param("userId"), page, perPage)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *Handlers) createNews(c *gin.Context) {
	var in service.NewsInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "invalid body"})
		return
	}
	n, err := h.News.Create(c.Request.Context(), userID(c), in)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, n)
}

func (h *Handlers) updateNews(c *gin.Context) {
	var in service.NewsInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "invalid body"})
		return
	}
	n, err := h.News.Update(c.Request.Context(), c.Param("id"), userID(c), in)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, n)
}

func (h *Handlers) deleteNews(c *gin.Context) {
	if err := h.News.Delete(c.Request.Context(), c.Param("id"), userID(c)); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handlers) likeNews(c *gin.Context) {
	n, err := h.News.ToggleLike(c.Request.Context(), c.Param("id"), userID(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, n)
}

func (h *Handlers) commentNews(c *gin.Context) {
	var in struct {
		Content string `json:"content"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "invalid body"})
		return
	}
	n, err := h.News.AddComment(c.Request.Context(), c.Param("id"), userID(c), in.Content)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, n)
}
