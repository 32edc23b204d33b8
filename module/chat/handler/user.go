package handler

import (
	"net/http"

	"chatline/module/chat/service"

	"github.com/gin-gonic/gin"
)

func (h *Handlers) signup(c *gin.Context) {
	var in service.SignupInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "invalid body"})
		return
	}
	res, err := h.Users.Signup(c.Request.Context(), in)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, res)
}

func (h *Handlers) login(c *gin.Context) {
	var in struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "invalid body"})
		return
	}
	res, err := h.Users.Login(c.Request.Context(), in.Email, in.Password)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handlers) getUser(c *gin.Context) {
	u, err := h.Users.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

func (h *Handlers) updateProfile(c *gin.Context) {
	var in service.ProfileInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "invalid body"})
		return
	}
	u, err := h.Users.UpdateProfile(c.Request.Context(), userID(c), in)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

func (h *Handlers) updateSettings(c *gin.Context) {
	var in struct {
		AllowStrangerMessage *bool `json:"allowStrangerMessage"`
	}
	if err := c.ShouldBindJSON(&in); err != nil || in.AllowStrangerMessage == nil {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "allowStrangerMessage is required"})
		return
	}
	u, err := h.Users.SetAllowStranger(c.Request.Context(), userID(c), *in.AllowStrangerMessage)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}
