package events

import (
	"context"
	"testing"
	"time"

	"github.com/bloglist/apiserver/config"
	"github.com/bloglist/apiserver/types"
)

func TestNewBlogEvent(t *testing.T) {
	blog := types.Blog{ID: 4, Title: "t", Likes: 2}

	event := NewBlogEvent(TypeBlogLiked, blog, 7)
	if event.ID == "" {
		t.Fatal("expected event id to be set")
	}
	if event.Type != TypeBlogLiked {
		t.Fatalf("type %q, want %q", event.Type, TypeBlogLiked)
	}
	if event.BlogID != blog.ID || event.Title != blog.Title || event.Likes != blog.Likes {
		t.Fatalf("event does not match blog: %+v", event)
	}
	if event.ActorID != 7 {
		t.Fatalf("actor %d, want 7", event.ActorID)
	}
	if event.OccurredAt.IsZero() || time.Since(event.OccurredAt) > time.Minute {
		t.Fatalf("unexpected timestamp %v", event.OccurredAt)
	}

	other := NewBlogEvent(TypeBlogLiked, blog, 7)
	if other.ID == event.ID {
		t.Fatal("expected distinct ids for distinct events")
	}
}

func TestNewDefaultsToNopPublisher(t *testing.T) {
	publisher, err := New(context.Background(), config.MQConfig{})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if _, ok := publisher.(NopPublisher); !ok {
		t.Fatalf("expected NopPublisher, got %T", publisher)
	}

	if err := publisher.Publish(context.Background(), NewBlogEvent(TypeBlogCreated, types.Blog{}, 0)); err != nil {
		t.Fatalf("nop publish: %v", err)
	}
	if err := publisher.Close(); err != nil {
		t.Fatalf("nop close: %v", err)
	}
}

func TestNewRejectsUnknownDriver(t *testing.T) {
	if _, err := New(context.Background(), config.MQConfig{Driver: "kafka"}); err == nil {
		t.Fatal("expected error for unknown driver")
	}
}
