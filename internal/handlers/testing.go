package handlers

import (
	"net/http"

	"github.com/bloglist/apiserver/internal/services"
	"github.com/go-chi/chi/v5"
)

// TestingHandler exposes the fixture reset used by the browser test suite.
// The server mounts it only when testing routes are explicitly enabled.
type TestingHandler struct {
	testing *services.TestingService
}

// NewTestingHandler constructs a TestingHandler with the provided service.
func NewTestingHandler(testing *services.TestingService) *TestingHandler {
	return &TestingHandler{testing: testing}
}

// TestingRouter registers testing routes on the given router.
func TestingRouter(r chi.Router, testing *services.TestingService) {
	handler := NewTestingHandler(testing)

	r.Post("/reset", handler.Reset)
}

// Reset wipes all users, sessions, and blog entries.
func (h *TestingHandler) Reset(w http.ResponseWriter, r *http.Request) {
	if err := h.testing.Reset(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to reset state")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
