package main

import (
	"context"
	"time"

	"chatline/data/mongoutil"
	"chatline/global/config"
	"chatline/logger"
	"chatline/media"
	"chatline/module/chat/handler"
	"chatline/module/chat/service"
	"chatline/module/chat/store"
	chatgw "chatline/service/chat"
	"chatline/service/storage"
	"chatline/tools/ids"
	"chatline/tools/security"

	"github.com/gin-gonic/gin"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Errorf("config: %v", err)
		return
	}
	ids.SetNodeID(cfg.NodeID)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	mongoClient, err := mongoutil.NewClient(ctx, &mongoutil.Config{
		URI:         cfg.Mongo.URI,
		Database:    cfg.Mongo.Database,
		MaxPoolSize: cfg.Mongo.MaxPoolSize,
		MaxRetry:    cfg.Mongo.MaxRetry,
	})
	if err != nil {
		logger.Errorf("mongo: %v", err)
		return
	}
	db := mongoClient.DB()
	if err := store.EnsureIndexes(ctx, db); err != nil {
		logger.Errorf("indexes: %v", err)
		return
	}

	if err := storage.InitRedis(storage.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}); err != nil {
		logger.Errorf("redis: %v", err)
		return
	}
	defer storage.CloseRedis()

	auth := security.DefaultOptions([]byte(cfg.Auth.JWTSecret))
	lastSeen := storage.NewLastSeenStore(storage.GetRedis())

	gateway := chatgw.NewServer(chatgw.Config{}, auth, lastSeen)
	pusher := gateway.Router()

	messages := store.NewMessages(db)
	users := store.NewUsers(db)
	friendships := store.NewFriendships(db)
	notifications := store.NewNotifications(db)
	news := store.NewNewsPosts(db)

	uploader := media.NewHTTPUploader(cfg.Media.UploadURL)

	notificationSvc := service.NewNotificationService(notifications, users, pusher, nil)
	h := &handler.Handlers{
		Users:         service.NewUserService(users, auth, uploader, pusher, lastSeen, nil),
		Messages:      service.NewMessageService(messages, users, friendships, pusher, uploader, nil),
		Friendships:   service.NewFriendshipService(friendships, users, notificationSvc, pusher, nil),
		Notifications: notificationSvc,
		News:          service.NewNewsService(news, users, uploader, nil),
		Gateway:       gateway,
		Auth:          auth,
	}

	r := gin.Default()
	h.RegisterRoutes(r)

	logger.Infof("listening on %s", cfg.Server.Addr)
	if err := r.Run(cfg.Server.Addr); err != nil {
		logger.Errorf("server: %v", err)
	}
}
