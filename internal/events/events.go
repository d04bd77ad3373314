package events

import (
	"context"
	"fmt"
	"time"

	"github.com/bloglist/apiserver/config"
	"github.com/bloglist/apiserver/types"
	"github.com/google/uuid"
)

// Event types emitted on blog registry mutations.
const (
	TypeBlogCreated = "blog.created"
	TypeBlogLiked   = "blog.liked"
	TypeBlogDeleted = "blog.deleted"
)

// BlogEvent describes a single mutation of the blog registry. Events are
// advisory: consumers (activity feeds, analytics) must tolerate loss, and
// a failed publish never fails the originating request.
type BlogEvent struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	BlogID     int       `json:"blog_id"`
	Title      string    `json:"title"`
	Likes      int       `json:"likes"`
	ActorID    int       `json:"actor_id,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// NewBlogEvent builds an event for the given mutation. actorID is zero for
// anonymous actions such as likes.
func NewBlogEvent(eventType string, blog types.Blog, actorID int) BlogEvent {
	return BlogEvent{
		ID:         uuid.NewString(),
		Type:       eventType,
		BlogID:     blog.ID,
		Title:      blog.Title,
		Likes:      blog.Likes,
		ActorID:    actorID,
		OccurredAt: time.Now().UTC(),
	}
}

// Publisher delivers blog mutation events to a broker.
type Publisher interface {
	Publish(ctx context.Context, event BlogEvent) error
	Close() error
}

// New constructs the publisher selected by configuration. An empty driver
// yields a no-op publisher so the rest of the app never branches on
// whether eventing is enabled.
func New(ctx context.Context, cfg config.MQConfig) (Publisher, error) {
	switch cfg.Driver {
	case "rabbitmq":
		return NewRabbitMQPublisher(cfg)
	case "pubsub":
		return NewPubSubPublisher(ctx, cfg)
	case "":
		return NopPublisher{}, nil
	default:
		return nil, fmt.Errorf("unknown mq driver %q", cfg.Driver)
	}
}

// NopPublisher discards all events.
type NopPublisher struct{}

func (NopPublisher) Publish(ctx context.Context, event BlogEvent) error { return nil }

func (NopPublisher) Close() error { return nil }
