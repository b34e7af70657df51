package store

import (
	"context"
	"errors"

	"github.com/blogup/blogup/internal/model"
)

var (
	ErrNotFound       = errors.New("not found")
	ErrDuplicateEmail = errors.New("duplicate email")
)

type Store interface {
	UserStore
	PostStore
	Ping(ctx context.Context) error
	Close() error
}

type UserStore interface {
	CreateUser(ctx context.Context, user *model.User) (string, error)
	GetUser(ctx context.Context, id string) (model.User, error)
	GetUserByEmail(ctx context.Context, email string) (model.User, error)
}

type PostStore interface {
	CreatePost(ctx context.Context, post *model.Post) (string, error)
	GetPost(ctx context.Context, id string) (model.Post, error)
	ListPosts(ctx context.Context) ([]model.Post, error)
	// UpdatePost changes title and content of the post matching both id and
	// authorID. It returns ErrNotFound when no row matches the pair.
	UpdatePost(ctx context.Context, id, authorID, title, content string) error
}
