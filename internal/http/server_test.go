package httpapp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/blogup/blogup/internal/auth"
	"github.com/blogup/blogup/internal/config"
	"github.com/blogup/blogup/internal/model"
	"github.com/blogup/blogup/internal/store/sqlite"

	"github.com/rs/zerolog"
)

const testSecret = "test-secret"

type allowAllLimiter struct{}

func (a allowAllLimiter) Allow(key string, limit int, window time.Duration) (bool, time.Duration) {
	return true, 0
}

var errStoreDown = errors.New("store down")

// failingStore fails every call, as a store with a lost connection would.
type failingStore struct{}

func (failingStore) CreateUser(ctx context.Context, user *model.User) (string, error) {
	return "", errStoreDown
}

func (failingStore) GetUser(ctx context.Context, id string) (model.User, error) {
	return model.User{}, errStoreDown
}

func (failingStore) GetUserByEmail(ctx context.Context, email string) (model.User, error) {
	return model.User{}, errStoreDown
}

func (failingStore) CreatePost(ctx context.Context, post *model.Post) (string, error) {
	return "", errStoreDown
}

func (failingStore) GetPost(ctx context.Context, id string) (model.Post, error) {
	return model.Post{}, errStoreDown
}

func (failingStore) ListPosts(ctx context.Context) ([]model.Post, error) {
	return nil, errStoreDown
}

func (failingStore) UpdatePost(ctx context.Context, id, authorID, title, content string) error {
	return errStoreDown
}

func (failingStore) Ping(ctx context.Context) error { return errStoreDown }

func (failingStore) Close() error { return nil }

func newTestServer(t *testing.T) (*Server, *auth.TokenService) {
	t.Helper()
	name := strings.NewReplacer("/", "_").Replace(t.Name())
	st, err := sqlite.Open(fmt.Sprintf("file:http_%s?mode=memory&cache=shared", name))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })

	cfg := config.Config{JWTSecret: testSecret, TokenTTL: time.Hour, BcryptCost: 4}
	tokens := auth.NewTokenService(cfg.JWTSecret, cfg.TokenTTL)
	authSvc := auth.NewService(st, tokens, cfg.BcryptCost)
	return NewServer(st, authSvc, allowAllLimiter{}, cfg, zerolog.Nop()), tokens
}

func TestRootText(t *testing.T) {
	server, _ := newTestServer(t)

	resp := httptest.NewRecorder()
	server.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if resp.Body.String() != "Hello from blogup!" {
		t.Fatalf("unexpected body: %q", resp.Body.String())
	}
}

func TestRequireAuth(t *testing.T) {
	server, tokens := newTestServer(t)
	valid, err := tokens.Sign("user-1")
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	expired := auth.NewTokenService(testSecret, -time.Minute)
	stale, err := expired.Sign("user-1")
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	forged, err := auth.NewTokenService("other-secret", time.Hour).Sign("user-1")
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	cases := []struct {
		name   string
		header string
		want   int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"scheme only", "Bearer", http.StatusForbidden},
		{"garbage token", "Bearer not-a-jwt", http.StatusForbidden},
		{"wrong secret", "Bearer " + forged, http.StatusForbidden},
		{"expired", "Bearer " + stale, http.StatusForbidden},
		{"valid", "Bearer " + valid, http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/post/blog/bulk", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			resp := httptest.NewRecorder()
			server.ServeHTTP(resp, req)
			if resp.Code != tc.want {
				t.Fatalf("expected %d, got %d: %s", tc.want, resp.Code, resp.Body.String())
			}
			if tc.want == http.StatusOK {
				return
			}
			var payload map[string]string
			if err := json.Unmarshal(resp.Body.Bytes(), &payload); err != nil {
				t.Fatalf("json parse: %v", err)
			}
			if payload["error"] != "Unauthorized" {
				t.Fatalf("unexpected error body: %v", payload)
			}
		})
	}
}

func TestRequireAuthSetsUserID(t *testing.T) {
	server, tokens := newTestServer(t)
	token, err := tokens.Sign("user-42")
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	var seen string
	handler := server.requireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = UserIDFromContext(r.Context())
	}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if seen != "user-42" {
		t.Fatalf("expected user-42 in context, got %q", seen)
	}
}

func TestNotFoundJSON(t *testing.T) {
	server, _ := newTestServer(t)

	resp := httptest.NewRecorder()
	server.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/nope", nil))
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
	if ct := resp.Header().Get("Content-Type"); !strings.Contains(ct, "application/json") {
		t.Fatalf("expected json content-type, got %s", ct)
	}
}

func TestStoreFailures(t *testing.T) {
	cfg := config.Config{JWTSecret: testSecret, TokenTTL: time.Hour, BcryptCost: 4}
	tokens := auth.NewTokenService(cfg.JWTSecret, cfg.TokenTTL)
	authSvc := auth.NewService(failingStore{}, tokens, cfg.BcryptCost)
	server := NewServer(failingStore{}, authSvc, allowAllLimiter{}, cfg, zerolog.Nop())
	token, err := tokens.Sign("user-1")
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	cases := []struct {
		name    string
		method  string
		path    string
		body    string
		token   string
		status  int
		wantErr string
	}{
		{"get post", http.MethodGet, "/post/p1", "", token, http.StatusInternalServerError, "Internal server error"},
		{"list posts", http.MethodGet, "/post/blog/bulk", "", token, http.StatusInternalServerError, "Internal server error"},
		{"create post", http.MethodPost, "/post/blog", `{"title":"t","content":"c"}`, token, http.StatusInternalServerError, "Internal server error"},
		{"update post", http.MethodPut, "/post/blog", `{"id":"p1","title":"t","content":"c"}`, token, http.StatusInternalServerError, "Failed to update post"},
		{"signup", http.MethodPost, "/user/signup", `{"email":"a@x.com","password":"p"}`, "", http.StatusInternalServerError, "Internal server error"},
		{"signin", http.MethodPost, "/user/signin", `{"email":"a@x.com","password":"p"}`, "", http.StatusInternalServerError, "Internal server error"},
		{"healthz", http.MethodGet, "/healthz", "", "", http.StatusServiceUnavailable, "store unavailable"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, tc.path, strings.NewReader(tc.body))
			if tc.token != "" {
				req.Header.Set("Authorization", "Bearer "+tc.token)
			}
			resp := httptest.NewRecorder()
			server.ServeHTTP(resp, req)
			if resp.Code != tc.status {
				t.Fatalf("expected %d, got %d: %s", tc.status, resp.Code, resp.Body.String())
			}
			var payload map[string]string
			if err := json.Unmarshal(resp.Body.Bytes(), &payload); err != nil {
				t.Fatalf("json parse: %v", err)
			}
			if payload["error"] != tc.wantErr {
				t.Fatalf("unexpected error body: %v", payload)
			}
			if strings.Contains(resp.Body.String(), errStoreDown.Error()) {
				t.Fatalf("store error leaked: %s", resp.Body.String())
			}
		})
	}
}
