package httpapp

import (
	"errors"
	"net/http"
	"time"

	"github.com/blogup/blogup/internal/input"
	"github.com/blogup/blogup/internal/model"
	"github.com/blogup/blogup/internal/store"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/hlog"
)

// handleGetPost godoc
//
//	@Summary		Get a post
//	@Description	Returns the post, or null when no post has the id.
//	@Tags			Posts
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id	path		string	true	"Post ID"
//	@Success		200	{object}	model.Post
//	@Failure		401	{object}	map[string]string	"Missing Authorization header"
//	@Failure		403	{object}	map[string]string	"Invalid token"
//	@Router			/post/{id} [get]
func (s *Server) handleGetPost(w http.ResponseWriter, r *http.Request) {
	post, err := s.store.GetPost(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeJSON(w, http.StatusOK, nil)
			return
		}
		s.internalError(w, r, err, "get post failed")
		return
	}
	writeJSON(w, http.StatusOK, post)
}

// handleListPosts godoc
//
//	@Summary		List posts
//	@Description	Every post, oldest first.
//	@Tags			Posts
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{array}		model.Post
//	@Failure		401	{object}	map[string]string	"Missing Authorization header"
//	@Failure		403	{object}	map[string]string	"Invalid token"
//	@Router			/post/blog/bulk [get]
func (s *Server) handleListPosts(w http.ResponseWriter, r *http.Request) {
	posts, err := s.store.ListPosts(r.Context())
	if err != nil {
		s.internalError(w, r, err, "list posts failed")
		return
	}
	writeJSON(w, http.StatusOK, posts)
}

// handleCreatePost godoc
//
//	@Summary		Create a post
//	@Description	Create a post authored by the caller.
//	@Tags			Posts
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			body	body		input.CreateBlogInput	true	"Post"
//	@Success		200		{object}	map[string]string		"id"
//	@Failure		401		{object}	map[string]string		"Missing Authorization header"
//	@Failure		403		{object}	map[string]string		"Invalid token"
//	@Failure		411		{object}	map[string]any			"Invalid input"
//	@Router			/post/blog [post]
func (s *Server) handleCreatePost(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())
	if !s.allowRateLimit(w, r, "write", userID, s.cfg.RateLimits.WritePerMinute) {
		return
	}
	var in input.CreateBlogInput
	if err := input.Decode(r.Body, &in); err != nil {
		writeInvalidInput(w, err)
		return
	}

	post := model.Post{
		Title:     in.Title,
		Content:   in.Content,
		AuthorID:  userID,
		CreatedAt: time.Now().UTC(),
	}
	id, err := s.store.CreatePost(r.Context(), &post)
	if err != nil {
		s.internalError(w, r, err, "create post failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"id": id})
}

// handleUpdatePost godoc
//
//	@Summary		Update a post
//	@Description	Replace title and content of a post the caller authored. A missing post and a post owned by someone else fail the same way.
//	@Tags			Posts
//	@Accept			json
//	@Produce		plain
//	@Security		BearerAuth
//	@Param			body	body		input.UpdateBlogInput	true	"Post"
//	@Success		200		{string}	string					"Updated post"
//	@Failure		401		{object}	map[string]string		"Missing Authorization header"
//	@Failure		403		{object}	map[string]string		"Invalid token"
//	@Failure		411		{object}	map[string]any			"Invalid input"
//	@Failure		500		{object}	map[string]string		"Update failed"
//	@Router			/post/blog [put]
func (s *Server) handleUpdatePost(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())
	if !s.allowRateLimit(w, r, "write", userID, s.cfg.RateLimits.WritePerMinute) {
		return
	}
	var in input.UpdateBlogInput
	if err := input.Decode(r.Body, &in); err != nil {
		writeInvalidInput(w, err)
		return
	}

	if err := s.store.UpdatePost(r.Context(), in.ID, userID, in.Title, in.Content); err != nil {
		hlog.FromRequest(r).Error().Err(err).Str("post_id", in.ID).Msg("update post failed")
		writeErrorText(w, http.StatusInternalServerError, "Failed to update post")
		return
	}
	writeText(w, http.StatusOK, "Updated post")
}
