// Package handler exposes the chat domain over gin routes. Handlers stay
// thin: bind, call the service, translate CodeError codes to statuses.
package handler

import (
	"net/http"

	"chatline/middleware"
	"chatline/module/chat/service"
	chatgw "chatline/service/chat"
	"chatline/tools/errs"
	"chatline/tools/security"

	"github.com/gin-gonic/gin"
)

type Handlers struct {
	Users         *service.UserService
	Messages      *service.MessageService
	Friendships   *service.FriendshipService
	Notifications *service.NotificationService
	News          *service.NewsService
	Gateway       *chatgw.Server
	Auth          security.Options
}

// RegisterRoutes mounts every route. The websocket endpoint does its own
// auth during the handshake, everything else goes through the middleware.
func (h *Handlers) RegisterRoutes(r *gin.Engine) {
	r.GET("/ws", h.Gateway.HandleWS)

	api := r.Group("/api")
	api.POST("/auth/signup", h.signup)
	api.POST("/auth/login", h.login)

	auth := api.Group("", middleware.Auth(h.Auth))
	{
		auth.GET("/users/:id", h.getUser)
		auth.PUT("/users/me/profile", h.updateProfile)
		auth.PUT("/users/me/settings", h.updateSettings)

		auth.GET("/messages/summaries", h.summaries)
		auth.GET("/messages/summaries/:userId", h.summaryFor)
		auth.GET("/messages/:userId", h.conversation)
		auth.POST("/messages/:userId", h.sendMessage)
		auth.POST("/messages/revoke/:id", h.revokeMessage)
		auth.PUT("/messages/:id", h.editMessage)

		auth.GET("/friends", h.friends)
		auth.GET("/friends/requests/sent", h.sentRequests)
		auth.GET("/friends/requests/received", h.receivedRequests)
		auth.POST("/friends/requests/:userId", h.sendFriendRequest)
		auth.POST("/friends/requests/:userId/accept", h.acceptFriendRequest)
		auth.POST("/friends/requests/:userId/decline", h.declineFriendRequest)
		auth.DELETE("/friends/requests/:userId", h.cancelFriendRequest)
		auth.DELETE("/friends/:userId", h.unfriend)

		auth.GET("/notifications", h.listNotifications)
		auth.GET("/notifications/unread-count", h.unreadCount)
		auth.PUT("/notifications/read-all", h.markAllNotificationsRead)
		auth.PUT("/notifications/:id/read", h.markNotificationRead)
		auth.DELETE("/notifications/:id", h.deleteNotification)

		auth.GET("/news", h.newsFeed)
		auth.GET("/news/user/:userId", h.newsByUser)
		auth.POST("/news", h.createNews)
		auth.PUT("/news/:id", h.updateNews)
		auth.DELETE("/news/:id", h.deleteNews)
		auth.POST("/news/:id/like", h.likeNews)
		auth.POST("/news/:id/comments", h.commentNews)
	}
}

// fail maps a service error onto an HTTP status and writes the CodeError
// body so clients can branch on the numeric code.
func fail(c *gin.Context, err error) {
	ce, ok := errs.AsCodeError(err)
	if !ok {
		ce = errs.ErrUpstream.WithDetail(err.Error())
	}
	c.JSON(statusOf(ce.Code), ce)
}

func statusOf(code int) int {
	switch code {
	case errs.CodeNotFound:
		return http.StatusNotFound
	case errs.CodeForbidden:
		return http.StatusForbidden
	case errs.CodeEmptyContent, errs.CodeExpired, errs.CodeAlreadyRevoked:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func userID(c *gin.Context) string {
	return middleware.UserID(c)
}
