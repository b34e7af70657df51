package postgres

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/blogup/blogup/internal/model"
	"github.com/blogup/blogup/internal/store"

	"github.com/google/uuid"
)

// newTestStore connects to the database named by BLOGUP_TEST_POSTGRES_URL and
// skips the test when it is unset.
func newTestStore(t *testing.T) *Store {
	t.Helper()
	dsn := os.Getenv("BLOGUP_TEST_POSTGRES_URL")
	if dsn == "" {
		t.Skip("BLOGUP_TEST_POSTGRES_URL not set")
	}
	st, err := Open(context.Background(), dsn)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func uniqueEmail() string {
	return uuid.NewString() + "@example.com"
}

func TestUserAndPostLifecycle(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	owner := model.User{Email: uniqueEmail(), PasswordHash: "hash"}
	if _, err := st.CreateUser(ctx, &owner); err != nil {
		t.Fatalf("create user: %v", err)
	}
	dup := model.User{Email: owner.Email, PasswordHash: "hash"}
	if _, err := st.CreateUser(ctx, &dup); err != store.ErrDuplicateEmail {
		t.Fatalf("expected ErrDuplicateEmail, got %v", err)
	}

	got, err := st.GetUserByEmail(ctx, owner.Email)
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if got.ID != owner.ID {
		t.Fatalf("expected id %s, got %s", owner.ID, got.ID)
	}

	post := model.Post{Title: "t", Content: "c", AuthorID: owner.ID}
	id, err := st.CreatePost(ctx, &post)
	if err != nil {
		t.Fatalf("create post: %v", err)
	}
	if err := st.UpdatePost(ctx, id, uuid.NewString(), "x", "y"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for wrong author, got %v", err)
	}
	if err := st.UpdatePost(ctx, id, owner.ID, "t2", "c2"); err != nil {
		t.Fatalf("update post: %v", err)
	}
	p, err := st.GetPost(ctx, id)
	if err != nil {
		t.Fatalf("get post: %v", err)
	}
	if p.Title != "t2" || p.AuthorID != owner.ID {
		t.Fatalf("unexpected post: %+v", p)
	}

	posts, err := st.ListPosts(ctx)
	if err != nil {
		t.Fatalf("list posts: %v", err)
	}
	if len(posts) == 0 {
		t.Fatalf("expected posts")
	}
}
