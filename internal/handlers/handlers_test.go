package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"

	"github.com/bloglist/apiserver/internal/services"
	"github.com/bloglist/apiserver/internal/store"
	"github.com/bloglist/apiserver/types"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// In-memory repositories implementing the service interfaces, so the full
// router can be exercised without a database.

type fakeUserRepo struct {
	mu     sync.Mutex
	nextID int
	users  map[int]types.User
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id int) (types.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[id]
	if !ok {
		return types.User{}, store.ErrNotFound
	}
	return user, nil
}

func (f *fakeUserRepo) GetByUsername(ctx context.Context, username string) (types.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, user := range f.users {
		if user.Username == username {
			return user, nil
		}
	}
	return types.User{}, store.ErrNotFound
}

func (f *fakeUserRepo) Create(ctx context.Context, user types.User) (types.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.users {
		if existing.Username == user.Username {
			return types.User{}, store.ErrConflict
		}
	}
	f.nextID++
	user.ID = f.nextID
	f.users[user.ID] = user
	return user, nil
}

type fakeSessionRepo struct {
	mu       sync.Mutex
	sessions map[string]types.Session
}

func (f *fakeSessionRepo) Create(ctx context.Context, session types.Session) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sessions[session.Token] = session
	return nil
}

func (f *fakeSessionRepo) Get(ctx context.Context, token string) (types.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	session, ok := f.sessions[token]
	if !ok {
		return types.Session{}, store.ErrNotFound
	}
	return session, nil
}

func (f *fakeSessionRepo) Delete(ctx context.Context, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.sessions, token)
	return nil
}

type fakeBlogRepo struct {
	mu     sync.Mutex
	nextID int
	blogs  map[int]types.Blog
}

func (f *fakeBlogRepo) List(ctx context.Context) ([]types.Blog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	blogs := make([]types.Blog, 0, len(f.blogs))
	for _, blog := range f.blogs {
		blogs = append(blogs, blog)
	}
	sort.Slice(blogs, func(i, j int) bool { return blogs[i].ID < blogs[j].ID })
	return blogs, nil
}

func (f *fakeBlogRepo) Get(ctx context.Context, id int) (types.Blog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	blog, ok := f.blogs[id]
	if !ok {
		return types.Blog{}, store.ErrNotFound
	}
	return blog, nil
}

func (f *fakeBlogRepo) Create(ctx context.Context, blog types.Blog) (types.Blog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	blog.ID = f.nextID
	f.blogs[blog.ID] = blog
	return blog, nil
}

func (f *fakeBlogRepo) Like(ctx context.Context, id int) (types.Blog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	blog, ok := f.blogs[id]
	if !ok {
		return types.Blog{}, store.ErrNotFound
	}
	blog.Likes++
	f.blogs[id] = blog
	return blog, nil
}

func (f *fakeBlogRepo) Delete(ctx context.Context, id int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.blogs[id]; !ok {
		return store.ErrNotFound
	}
	delete(f.blogs, id)
	return nil
}

type fakeTestingRepo struct {
	users    *fakeUserRepo
	sessions *fakeSessionRepo
	blogs    *fakeBlogRepo
}

func (f *fakeTestingRepo) Reset(ctx context.Context) error {
	f.users.mu.Lock()
	f.users.users = make(map[int]types.User)
	f.users.nextID = 0
	f.users.mu.Unlock()

	f.sessions.mu.Lock()
	f.sessions.sessions = make(map[string]types.Session)
	f.sessions.mu.Unlock()

	f.blogs.mu.Lock()
	f.blogs.blogs = make(map[int]types.Blog)
	f.blogs.nextID = 0
	f.blogs.mu.Unlock()
	return nil
}

// newTestRouter assembles the API route tree exactly as the server does,
// over in-memory repositories.
func newTestRouter(t *testing.T) *chi.Mux {
	t.Helper()

	userRepo := &fakeUserRepo{users: make(map[int]types.User)}
	sessionRepo := &fakeSessionRepo{sessions: make(map[string]types.Session)}
	blogRepo := &fakeBlogRepo{blogs: make(map[int]types.Blog)}

	userService := services.NewUserService(userRepo)
	authService := services.NewAuthService(userRepo, sessionRepo)
	blogService := services.NewBlogService(blogRepo, nil, zerolog.Nop())
	testingService := services.NewTestingService(&fakeTestingRepo{
		users:    userRepo,
		sessions: sessionRepo,
		blogs:    blogRepo,
	})

	requireSession := RequireSession(authService)

	router := chi.NewRouter()
	router.Get("/healthz", Healthz)
	router.Route("/api", func(r chi.Router) {
		AuthRouter(r, authService)
		r.Route("/users", func(r chi.Router) {
			UserRouter(r, userService)
		})
		r.Route("/blogs", func(r chi.Router) {
			BlogRouter(r, blogService, requireSession)
		})
		r.Route("/testing", func(r chi.Router) {
			TestingRouter(r, testingService)
		})
	})
	return router
}

func doJSON(t *testing.T, router http.Handler, method, path, token string, payload any) *httptest.ResponseRecorder {
	t.Helper()

	var body *bytes.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
		body = bytes.NewReader(data)
	} else {
		body = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()

	var value T
	if err := json.NewDecoder(w.Body).Decode(&value); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return value
}

func register(t *testing.T, router http.Handler, name, username, password string) types.User {
	t.Helper()

	w := doJSON(t, router, http.MethodPost, "/api/users", "", RegisterRequest{
		Name:     name,
		Username: username,
		Password: password,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("register status %d: %s", w.Code, w.Body.String())
	}
	return decode[types.User](t, w)
}

func login(t *testing.T, router http.Handler, username, password string) string {
	t.Helper()

	w := doJSON(t, router, http.MethodPost, "/api/login", "", LoginRequest{
		Username: username,
		Password: password,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("login status %d: %s", w.Code, w.Body.String())
	}
	resp := decode[LoginResponse](t, w)
	if resp.Token == "" {
		t.Fatal("login returned empty token")
	}
	return resp.Token
}

func createBlog(t *testing.T, router http.Handler, token, title, author, url string) types.Blog {
	t.Helper()

	w := doJSON(t, router, http.MethodPost, "/api/blogs", token, BlogUpsertRequest{
		Title:  title,
		Author: author,
		URL:    url,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create blog status %d: %s", w.Code, w.Body.String())
	}
	return decode[types.Blog](t, w)
}

func TestHealthz(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, http.MethodGet, "/healthz", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("healthz status %d", w.Code)
	}
}

func TestRegister(t *testing.T) {
	router := newTestRouter(t)

	user := register(t, router, "John Smith", "john", "smith")
	if user.ID == 0 {
		t.Fatal("expected user id to be set")
	}
	if user.Username != "john" || user.Name != "John Smith" {
		t.Fatalf("unexpected user: %+v", user)
	}
}

func TestRegisterDoesNotLeakPasswordHash(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/users", "", RegisterRequest{
		Name:     "John Smith",
		Username: "john",
		Password: "smith",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("register status %d", w.Code)
	}
	if bytes.Contains(w.Body.Bytes(), []byte("password")) {
		t.Fatalf("response leaks password material: %s", w.Body.String())
	}
}

func TestRegisterValidation(t *testing.T) {
	router := newTestRouter(t)

	tests := []struct {
		name string
		req  RegisterRequest
	}{
		{"missing name", RegisterRequest{Username: "john", Password: "smith"}},
		{"missing username", RegisterRequest{Name: "John", Password: "smith"}},
		{"missing password", RegisterRequest{Name: "John", Username: "john"}},
		{"blank username", RegisterRequest{Name: "John", Username: "   ", Password: "smith"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(t, router, http.MethodPost, "/api/users", "", tt.req)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("status %d, want 400", w.Code)
			}
		})
	}
}

func TestRegisterDuplicateUsername(t *testing.T) {
	router := newTestRouter(t)
	register(t, router, "John Smith", "john", "smith")

	w := doJSON(t, router, http.MethodPost, "/api/users", "", RegisterRequest{
		Name:     "Other John",
		Username: "john",
		Password: "other",
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("duplicate register status %d, want 400", w.Code)
	}
	resp := decode[ErrorResponse](t, w)
	if resp.Error != "username must be unique" {
		t.Fatalf("unexpected error message %q", resp.Error)
	}
}

func TestLoginWrongCredentialsShareOneMessage(t *testing.T) {
	router := newTestRouter(t)
	register(t, router, "John Smith", "john", "smith")

	wrongPassword := doJSON(t, router, http.MethodPost, "/api/login", "", LoginRequest{
		Username: "john",
		Password: "wrong",
	})
	unknownUser := doJSON(t, router, http.MethodPost, "/api/login", "", LoginRequest{
		Username: "nobody",
		Password: "smith",
	})

	if wrongPassword.Code != http.StatusUnauthorized || unknownUser.Code != http.StatusUnauthorized {
		t.Fatalf("statuses %d and %d, want 401 for both", wrongPassword.Code, unknownUser.Code)
	}
	first := decode[ErrorResponse](t, wrongPassword)
	second := decode[ErrorResponse](t, unknownUser)
	if first.Error != "wrong username or password" {
		t.Fatalf("unexpected error message %q", first.Error)
	}
	if first.Error != second.Error {
		t.Fatalf("messages differ: %q vs %q", first.Error, second.Error)
	}
}

func TestCreateBlogRequiresSession(t *testing.T) {
	router := newTestRouter(t)
	register(t, router, "John Smith", "john", "smith")

	payload := BlogUpsertRequest{Title: "t", Author: "a", URL: "http://u"}

	w := doJSON(t, router, http.MethodPost, "/api/blogs", "", payload)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("no token: status %d, want 401", w.Code)
	}

	w = doJSON(t, router, http.MethodPost, "/api/blogs", "bogus-token", payload)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("bogus token: status %d, want 401", w.Code)
	}

	token := login(t, router, "john", "smith")
	blog := createBlog(t, router, token, "a blog created from playwright", "Playwright John", "https://test.playwright.john")
	if blog.Likes != 0 {
		t.Fatalf("new blog has %d likes, want 0", blog.Likes)
	}
	if blog.UserID == 0 {
		t.Fatal("expected blog owner to be recorded")
	}
}

func TestCreateBlogValidation(t *testing.T) {
	router := newTestRouter(t)
	register(t, router, "John Smith", "john", "smith")
	token := login(t, router, "john", "smith")

	tests := []struct {
		name string
		req  BlogUpsertRequest
	}{
		{"missing title", BlogUpsertRequest{Author: "a", URL: "http://u"}},
		{"missing url", BlogUpsertRequest{Title: "t", Author: "a"}},
		{"blank title", BlogUpsertRequest{Title: "  ", Author: "a", URL: "http://u"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(t, router, http.MethodPost, "/api/blogs", token, tt.req)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("status %d, want 400", w.Code)
			}
		})
	}
}

func TestLikeBlog(t *testing.T) {
	router := newTestRouter(t)
	register(t, router, "John Smith", "john", "smith")
	token := login(t, router, "john", "smith")
	blog := createBlog(t, router, token, "t", "a", "http://u")

	// Likes require no authentication, and the request body is ignored:
	// every call adds exactly one like.
	for want := 1; want <= 3; want++ {
		w := doJSON(t, router, http.MethodPut, fmt.Sprintf("/api/blogs/%d/likes", blog.ID), "", map[string]int{"likes": 100})
		if w.Code != http.StatusOK {
			t.Fatalf("like status %d: %s", w.Code, w.Body.String())
		}
		liked := decode[types.Blog](t, w)
		if liked.Likes != want {
			t.Fatalf("likes = %d after %d like calls", liked.Likes, want)
		}
	}
}

func TestLikeUnknownBlog(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, http.MethodPut, "/api/blogs/99/likes", "", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status %d, want 404", w.Code)
	}
}

func TestDeleteBlogLifecycle(t *testing.T) {
	router := newTestRouter(t)
	register(t, router, "John Smith", "john", "smith")
	token := login(t, router, "john", "smith")
	blog := createBlog(t, router, token, "t", "a", "http://u")

	path := fmt.Sprintf("/api/blogs/%d", blog.ID)

	w := doJSON(t, router, http.MethodDelete, path, token, nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("delete status %d: %s", w.Code, w.Body.String())
	}

	w = doJSON(t, router, http.MethodGet, path, "", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("get after delete status %d, want 404", w.Code)
	}

	w = doJSON(t, router, http.MethodDelete, path, token, nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("repeated delete status %d, want 404", w.Code)
	}
}

func TestDeleteForeignBlogForbidden(t *testing.T) {
	router := newTestRouter(t)
	register(t, router, "John Smith", "john", "smith")
	register(t, router, "Mike Denis", "mike", "denis")

	johnToken := login(t, router, "john", "smith")
	blog := createBlog(t, router, johnToken, "t", "a", "http://u")

	mikeToken := login(t, router, "mike", "denis")
	w := doJSON(t, router, http.MethodDelete, fmt.Sprintf("/api/blogs/%d", blog.ID), mikeToken, nil)
	if w.Code != http.StatusForbidden {
		t.Fatalf("foreign delete status %d, want 403", w.Code)
	}

	w = doJSON(t, router, http.MethodGet, fmt.Sprintf("/api/blogs/%d", blog.ID), "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("blog should survive a forbidden delete, got %d", w.Code)
	}
	survivor := decode[types.Blog](t, w)
	if survivor.Likes != blog.Likes || survivor.UserID != blog.UserID {
		t.Fatalf("blog changed by forbidden delete: %+v", survivor)
	}
}

func TestLogoutRevokesSession(t *testing.T) {
	router := newTestRouter(t)
	register(t, router, "John Smith", "john", "smith")
	token := login(t, router, "john", "smith")

	w := doJSON(t, router, http.MethodPost, "/api/logout", token, nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("logout status %d", w.Code)
	}

	w = doJSON(t, router, http.MethodPost, "/api/blogs", token, BlogUpsertRequest{Title: "t", URL: "http://u"})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("create after logout status %d, want 401", w.Code)
	}

	// Logging out twice, or without a token, still succeeds.
	w = doJSON(t, router, http.MethodPost, "/api/logout", token, nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("second logout status %d", w.Code)
	}
	w = doJSON(t, router, http.MethodPost, "/api/logout", "", nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("tokenless logout status %d", w.Code)
	}
}

func TestBlogsAreListedByLikesDescending(t *testing.T) {
	router := newTestRouter(t)
	register(t, router, "John Smith", "john", "smith")
	token := login(t, router, "john", "smith")

	first := createBlog(t, router, token, "This is the first blog", "Playwright John", "https://test.playwright.john")
	second := createBlog(t, router, token, "This is the second blog", "Smith Play", "https://test.playwright.smith")
	third := createBlog(t, router, token, "This is the third blog", "John Wright", "https://test.john.playwright")

	// Like the second blog twice and the third once.
	for i := 0; i < 2; i++ {
		if w := doJSON(t, router, http.MethodPut, fmt.Sprintf("/api/blogs/%d/likes", second.ID), "", nil); w.Code != http.StatusOK {
			t.Fatalf("like status %d", w.Code)
		}
	}
	if w := doJSON(t, router, http.MethodPut, fmt.Sprintf("/api/blogs/%d/likes", third.ID), "", nil); w.Code != http.StatusOK {
		t.Fatalf("like status %d", w.Code)
	}

	w := doJSON(t, router, http.MethodGet, "/api/blogs", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list status %d", w.Code)
	}
	blogs := decode[[]types.Blog](t, w)
	if len(blogs) != 3 {
		t.Fatalf("listed %d blogs, want 3", len(blogs))
	}

	wantIDs := []int{second.ID, third.ID, first.ID}
	wantLikes := []int{2, 1, 0}
	for i, blog := range blogs {
		if blog.ID != wantIDs[i] || blog.Likes != wantLikes[i] {
			t.Fatalf("position %d: got id=%d likes=%d, want id=%d likes=%d",
				i, blog.ID, blog.Likes, wantIDs[i], wantLikes[i])
		}
	}
	for i := 0; i < len(blogs)-1; i++ {
		if blogs[i].Likes < blogs[i+1].Likes {
			t.Fatalf("ranking not non-increasing at %d", i)
		}
	}
}

func TestTestingReset(t *testing.T) {
	router := newTestRouter(t)
	register(t, router, "John Smith", "john", "smith")
	token := login(t, router, "john", "smith")
	createBlog(t, router, token, "t", "a", "http://u")

	w := doJSON(t, router, http.MethodPost, "/api/testing/reset", "", nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("reset status %d", w.Code)
	}

	w = doJSON(t, router, http.MethodGet, "/api/blogs", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list status %d", w.Code)
	}
	blogs := decode[[]types.Blog](t, w)
	if len(blogs) != 0 {
		t.Fatalf("expected empty list after reset, got %d entries", len(blogs))
	}

	w = doJSON(t, router, http.MethodPost, "/api/login", "", LoginRequest{Username: "john", Password: "smith"})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("login after reset status %d, want 401", w.Code)
	}
}
