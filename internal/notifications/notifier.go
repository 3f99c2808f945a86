// Package notifications publishes post activity to Redis channels.
package notifications

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// PostEventsChannel receives every post activity event.
const PostEventsChannel = "posts:events"

// Event type constants prevent typos in event names.
const (
	EventPostCreated    = "post_created"
	EventPostDeleted    = "post_deleted"
	EventPostLiked      = "post_liked"
	EventPostUnliked    = "post_unliked"
	EventCommentCreated = "comment_created"
	EventCommentDeleted = "comment_deleted"
)

// Event is the message published for post activity.
type Event struct {
	Type    string         `json:"type"`
	Payload map[string]any `json:"payload"`
}

// Notifier provides helpers to publish notifications into Redis channels.
// A Notifier without a client drops every message.
type Notifier struct {
	rdb *redis.Client
}

// NewNotifier creates a new Notifier instance using the provided Redis client.
func NewNotifier(rdb *redis.Client) *Notifier {
	return &Notifier{rdb: rdb}
}

func (n *Notifier) publish(ctx context.Context, channel string, event Event) error {
	if n == nil || n.rdb == nil {
		return nil
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", event.Type, err)
	}
	return n.rdb.Publish(ctx, channel, payload).Err()
}

// PublishPostEvent broadcasts event on PostEventsChannel.
func (n *Notifier) PublishPostEvent(ctx context.Context, event Event) error {
	return n.publish(ctx, PostEventsChannel, event)
}
