package services

import (
	"context"
	"sort"

	"github.com/bloglist/apiserver/internal/events"
	"github.com/bloglist/apiserver/types"
	"github.com/rs/zerolog"
)

// BlogRepository defines persistence operations for blog entries.
type BlogRepository interface {
	List(ctx context.Context) ([]types.Blog, error)
	Get(ctx context.Context, id int) (types.Blog, error)
	Create(ctx context.Context, blog types.Blog) (types.Blog, error)
	Like(ctx context.Context, id int) (types.Blog, error)
	Delete(ctx context.Context, id int) error
}

// BlogService encapsulates blog entry use-cases: creation, liking,
// owner-only deletion, and the like-ranked listing.
type BlogService struct {
	repo      BlogRepository
	publisher events.Publisher
	log       zerolog.Logger
}

func NewBlogService(repo BlogRepository, publisher events.Publisher, log zerolog.Logger) *BlogService {
	return &BlogService{
		repo:      repo,
		publisher: publisher,
		log:       log,
	}
}

// ListRanked returns all entries ordered by likes descending. The order is
// derived from the registry on every call, so it can never drift from the
// actual counters. The sort is stable: entries with equal likes keep their
// creation order.
func (s *BlogService) ListRanked(ctx context.Context) ([]types.Blog, error) {
	blogs, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(blogs, func(i, j int) bool {
		return blogs[i].Likes > blogs[j].Likes
	})

	return blogs, nil
}

func (s *BlogService) Get(ctx context.Context, id int) (types.Blog, error) {
	return s.repo.Get(ctx, id)
}

// Create records a new entry owned by userID with zero likes. The entry is
// visible to listings as soon as Create returns.
func (s *BlogService) Create(ctx context.Context, userID int, blog types.Blog) (types.Blog, error) {
	blog.Likes = 0
	blog.UserID = userID

	created, err := s.repo.Create(ctx, blog)
	if err != nil {
		return types.Blog{}, err
	}

	s.publish(ctx, events.NewBlogEvent(events.TypeBlogCreated, created, userID))
	return created, nil
}

// Like increments the entry's like counter by one. No authentication is
// required; anyone may like any entry, any number of times.
func (s *BlogService) Like(ctx context.Context, id int) (types.Blog, error) {
	liked, err := s.repo.Like(ctx, id)
	if err != nil {
		return types.Blog{}, err
	}

	s.publish(ctx, events.NewBlogEvent(events.TypeBlogLiked, liked, 0))
	return liked, nil
}

// Delete removes the entry if userID owns it. Non-owners get ErrForbidden
// and the entry is left untouched; a missing entry (including one already
// deleted) yields the repository's not-found error.
func (s *BlogService) Delete(ctx context.Context, userID, id int) error {
	blog, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}

	if !canDelete(userID, blog) {
		return ErrForbidden
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.publish(ctx, events.NewBlogEvent(events.TypeBlogDeleted, blog, userID))
	return nil
}

// canDelete is the ownership check: only the creator may delete an entry.
// It is evaluated against the current request's resolved user every time,
// never cached.
func canDelete(userID int, blog types.Blog) bool {
	return userID > 0 && blog.UserID == userID
}

func (s *BlogService) publish(ctx context.Context, event events.BlogEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.log.Error().
			Err(err).
			Str("type", event.Type).
			Int("blog_id", event.BlogID).
			Msg("failed to publish blog event")
	}
}
