package service

import (
	"context"
	"testing"

	"chatline/module/chat/model"
	chatgw "chatline/service/chat"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarkAllReadPushesToUser(t *testing.T) {
	store := &memNotifications{}
	users := newMemUsers(user("alice", false), user("bob", false))
	pusher := &recordingPusher{}
	svc := NewNotificationService(store, users, pusher, newFixedClock().Now)
	ctx := context.Background()

	svc.CreateFriendship(ctx, "bob", "alice", model.NotificationFriendRequest, "f1")
	count, err := svc.UnreadCount(ctx, "bob")
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)

	require.NoError(t, svc.MarkAllRead(ctx, "bob"))
	count, err = svc.UnreadCount(ctx, "bob")
	require.NoError(t, err)
	assert.EqualValues(t, 0, count)

	assert.Contains(t, pusher.eventsFor("bob"), chatgw.EventAllNotificationsRead)
}

func TestCreateFriendshipUnknownSenderIsDropped(t *testing.T) {
	store := &memNotifications{}
	users := newMemUsers(user("bob", false))
	svc := NewNotificationService(store, users, &recordingPusher{}, newFixedClock().Now)
	ctx := context.Background()

	svc.CreateFriendship(ctx, "bob", "ghost", model.NotificationFriendRequest, "f1")
	list, err := svc.List(ctx, "bob")
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestDeleteRequiresOwnership(t *testing.T) {
	store := &memNotifications{}
	users := newMemUsers(user("alice", false), user("bob", false))
	svc := NewNotificationService(store, users, &recordingPusher{}, newFixedClock().Now)
	ctx := context.Background()

	svc.CreateFriendship(ctx, "bob", "alice", model.NotificationFriendRequest, "f1")
	list, err := svc.List(ctx, "bob")
	require.NoError(t, err)
	require.Len(t, list, 1)

	assert.Error(t, svc.Delete(ctx, list[0].ID, "alice"))
	assert.NoError(t, svc.Delete(ctx, list[0].ID, "bob"))
}
