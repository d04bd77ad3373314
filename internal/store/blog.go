package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/bloglist/apiserver/types"
)

// BlogRepository handles persistence for blog entries.
type BlogRepository struct {
	db *sql.DB
}

func NewBlogRepository(db *sql.DB) *BlogRepository {
	return &BlogRepository{db: db}
}

// List returns all blog entries in creation order. Ranking by likes is a
// read-time concern of the service layer.
func (r *BlogRepository) List(ctx context.Context) ([]types.Blog, error) {
	const query = `
		SELECT id, title, author, url, likes, user_id, created_at, updated_at
		FROM blogs
		ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	blogs := make([]types.Blog, 0)
	for rows.Next() {
		var blog types.Blog
		if err := rows.Scan(
			&blog.ID,
			&blog.Title,
			&blog.Author,
			&blog.URL,
			&blog.Likes,
			&blog.UserID,
			&blog.CreatedAt,
			&blog.UpdatedAt,
		); err != nil {
			return nil, err
		}
		blogs = append(blogs, blog)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return blogs, nil
}

func (r *BlogRepository) Get(ctx context.Context, id int) (types.Blog, error) {
	const query = `
		SELECT id, title, author, url, likes, user_id, created_at, updated_at
		FROM blogs
		WHERE id = $1`
	var blog types.Blog
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&blog.ID,
		&blog.Title,
		&blog.Author,
		&blog.URL,
		&blog.Likes,
		&blog.UserID,
		&blog.CreatedAt,
		&blog.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Blog{}, ErrNotFound
		}
		return types.Blog{}, err
	}
	return blog, nil
}

func (r *BlogRepository) Create(ctx context.Context, blog types.Blog) (types.Blog, error) {
	now := time.Now()
	blog.CreatedAt = now
	blog.UpdatedAt = now

	const query = `
		INSERT INTO blogs (title, author, url, likes, user_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`
	if err := r.db.QueryRowContext(
		ctx,
		query,
		blog.Title,
		blog.Author,
		blog.URL,
		blog.Likes,
		blog.UserID,
		blog.CreatedAt,
		blog.UpdatedAt,
	).Scan(&blog.ID); err != nil {
		return types.Blog{}, err
	}
	return blog, nil
}

// Like increments the like counter by exactly one and returns the updated
// entry. The increment happens in a single UPDATE so concurrent likes on
// the same row serialize inside Postgres and none are lost.
func (r *BlogRepository) Like(ctx context.Context, id int) (types.Blog, error) {
	const query = `
		UPDATE blogs
		SET likes = likes + 1,
			updated_at = $2
		WHERE id = $1
		RETURNING id, title, author, url, likes, user_id, created_at, updated_at`
	var blog types.Blog
	err := r.db.QueryRowContext(ctx, query, id, time.Now()).Scan(
		&blog.ID,
		&blog.Title,
		&blog.Author,
		&blog.URL,
		&blog.Likes,
		&blog.UserID,
		&blog.CreatedAt,
		&blog.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Blog{}, ErrNotFound
		}
		return types.Blog{}, err
	}
	return blog, nil
}

func (r *BlogRepository) Delete(ctx context.Context, id int) error {
	const query = `DELETE FROM blogs WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
