package types

import "time"

// Blog represents a shared blog entry.
//
// An entry is created by an authenticated user, may be liked by anyone,
// and can only be deleted by its creator. UserID records the creator and
// is never reassigned.
type Blog struct {
	// ID is the unique identifier of the blog entry.
	ID int `json:"id" db:"id"`

	// Title is the human-readable name of the blog entry.
	Title string `json:"title" db:"title"`

	// Author is the name of the blog's author as entered by the
	// submitting user. It is display metadata, not an account reference.
	Author string `json:"author" db:"author"`

	// URL points at the shared blog post.
	URL string `json:"url" db:"url"`

	// Likes counts like actions on this entry. Never negative.
	Likes int `json:"likes" db:"likes"`

	// UserID is the account that created the entry and the only one
	// allowed to delete it.
	UserID int `json:"user_id" db:"user_id"`

	// CreatedAt is the timestamp at which the entry was created.
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// UpdatedAt is the timestamp of the most recent update to the entry.
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
