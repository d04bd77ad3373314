package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/bloglist/apiserver/internal/services"
	"github.com/bloglist/apiserver/internal/store"
	"github.com/bloglist/apiserver/types"
	"github.com/go-chi/chi/v5"
)

// BlogHandler provides HTTP handlers for blog entries.
type BlogHandler struct {
	blogs *services.BlogService
}

// NewBlogHandler constructs a handler with the provided service.
func NewBlogHandler(blogs *services.BlogService) *BlogHandler {
	return &BlogHandler{blogs: blogs}
}

// BlogRouter registers blog routes on the given router. Listing and liking
// are public; creating and deleting require a session.
func BlogRouter(r chi.Router, blogs *services.BlogService, authMiddleware func(http.Handler) http.Handler) {
	handler := NewBlogHandler(blogs)

	r.Get("/", handler.ListBlogs)
	r.With(authMiddleware).Post("/", handler.CreateBlog)
	r.Route("/{blogID}", func(r chi.Router) {
		r.Get("/", handler.GetBlog)
		r.Put("/likes", handler.LikeBlog)
		r.With(authMiddleware).Delete("/", handler.DeleteBlog)
	})
}

// ListBlogs returns all entries ranked by likes, most likes first.
func (h *BlogHandler) ListBlogs(w http.ResponseWriter, r *http.Request) {
	blogs, err := h.blogs.ListRanked(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list blogs")
		return
	}

	writeJSON(w, http.StatusOK, blogs)
}

func (h *BlogHandler) GetBlog(w http.ResponseWriter, r *http.Request) {
	id, err := parseBlogID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	blog, err := h.blogs.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "blog not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to fetch blog")
		return
	}

	writeJSON(w, http.StatusOK, blog)
}

// CreateBlog records a new entry owned by the authenticated user.
func (h *BlogHandler) CreateBlog(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, invalidTokenMessage)
		return
	}

	var req BlogUpsertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	req.Title = strings.TrimSpace(req.Title)
	req.Author = strings.TrimSpace(req.Author)
	req.URL = strings.TrimSpace(req.URL)
	if req.Title == "" || req.URL == "" {
		writeError(w, http.StatusBadRequest, "title and url are required")
		return
	}

	created, err := h.blogs.Create(r.Context(), userID, types.Blog{
		Title:  req.Title,
		Author: req.Author,
		URL:    req.URL,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create blog")
		return
	}

	writeJSON(w, http.StatusCreated, created)
}

// LikeBlog increments the entry's like counter by one and returns the
// updated entry. No authentication is required, and any request body is
// ignored: each call is exactly one like.
func (h *BlogHandler) LikeBlog(w http.ResponseWriter, r *http.Request) {
	id, err := parseBlogID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	blog, err := h.blogs.Like(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "blog not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to like blog")
		return
	}

	writeJSON(w, http.StatusOK, blog)
}

// DeleteBlog removes the entry if the authenticated user created it.
func (h *BlogHandler) DeleteBlog(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, invalidTokenMessage)
		return
	}

	id, err := parseBlogID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.blogs.Delete(r.Context(), userID, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "blog not found")
			return
		}
		if errors.Is(err, services.ErrForbidden) {
			writeError(w, http.StatusForbidden, "only the creator can delete a blog")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to delete blog")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// BlogUpsertRequest is the JSON payload for creating a blog entry.
type BlogUpsertRequest struct {
	Title  string `json:"title"`
	Author string `json:"author"`
	URL    string `json:"url"`
}

func parseBlogID(r *http.Request) (int, error) {
	raw := chi.URLParam(r, "blogID")
	id, err := strconv.Atoi(raw)
	if err != nil || id < 1 {
		return 0, errors.New("invalid blog id")
	}
	return id, nil
}
