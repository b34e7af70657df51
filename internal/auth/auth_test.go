package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/blogup/blogup/internal/input"
	"github.com/blogup/blogup/internal/model"
	"github.com/blogup/blogup/internal/store"
	"github.com/blogup/blogup/internal/store/sqlite"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	name := strings.NewReplacer("/", "_").Replace(t.Name())
	st, err := sqlite.Open(fmt.Sprintf("file:auth_%s?mode=memory&cache=shared", name))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })
	return NewService(st, NewTokenService(testSecret, time.Hour), 4)
}

func TestSignupIssuesVerifiableToken(t *testing.T) {
	svc := newTestService(t)

	token, user, err := svc.Signup(context.Background(), input.SignupInput{Email: "a@x.com", Password: "secret"})
	if err != nil {
		t.Fatalf("signup: %v", err)
	}
	if user.PasswordHash == "secret" || user.PasswordHash == "" {
		t.Fatalf("expected stored hash, got %q", user.PasswordHash)
	}

	verified, err := svc.Authenticate(token)
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if verified.UserID != user.ID {
		t.Fatalf("expected user id %s, got %s", user.ID, verified.UserID)
	}
}

func TestSignupDuplicateEmail(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	if _, _, err := svc.Signup(ctx, input.SignupInput{Email: "a@x.com", Password: "secret"}); err != nil {
		t.Fatalf("signup: %v", err)
	}
	if _, _, err := svc.Signup(ctx, input.SignupInput{Email: "a@x.com", Password: "other-secret"}); !errors.Is(err, ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
}

// racingUsers reports no existing account, then loses the insert to a
// concurrent signup for the same email.
type racingUsers struct {
	created int
}

func (r *racingUsers) CreateUser(ctx context.Context, user *model.User) (string, error) {
	r.created++
	return "", store.ErrDuplicateEmail
}

func (r *racingUsers) GetUser(ctx context.Context, id string) (model.User, error) {
	return model.User{}, store.ErrNotFound
}

func (r *racingUsers) GetUserByEmail(ctx context.Context, email string) (model.User, error) {
	return model.User{}, store.ErrNotFound
}

func TestSignupLosesUniqueRace(t *testing.T) {
	users := &racingUsers{}
	svc := NewService(users, NewTokenService(testSecret, time.Hour), 4)

	token, _, err := svc.Signup(context.Background(), input.SignupInput{Email: "a@x.com", Password: "secret"})
	if !errors.Is(err, ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
	if token != "" {
		t.Fatalf("expected no token, got %q", token)
	}
	if users.created != 1 {
		t.Fatalf("expected one insert attempt, got %d", users.created)
	}
}

func TestSignin(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, created, err := svc.Signup(ctx, input.SignupInput{Email: "a@x.com", Password: "secret"})
	if err != nil {
		t.Fatalf("signup: %v", err)
	}

	token, user, err := svc.Signin(ctx, input.SigninInput{Email: "a@x.com", Password: "secret"})
	if err != nil {
		t.Fatalf("signin: %v", err)
	}
	if user.ID != created.ID {
		t.Fatalf("expected user %s, got %s", created.ID, user.ID)
	}
	if v, err := svc.Authenticate(token); err != nil || v.UserID != created.ID {
		t.Fatalf("expected token for %s, got %+v (%v)", created.ID, v, err)
	}

	if _, _, err := svc.Signin(ctx, input.SigninInput{Email: "a@x.com", Password: "wrong-password"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for wrong password, got %v", err)
	}
	if _, _, err := svc.Signin(ctx, input.SigninInput{Email: "nobody@x.com", Password: "secret"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown email, got %v", err)
	}
}
