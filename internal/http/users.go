package httpapp

import (
	"errors"
	"net/http"

	"github.com/blogup/blogup/internal/auth"
	"github.com/blogup/blogup/internal/input"

	"github.com/rs/zerolog/hlog"
)

// handleSignup godoc
//
//	@Summary		Create an account
//	@Description	Register with email and password and receive a bearer token.
//	@Tags			Users
//	@Accept			json
//	@Produce		json
//	@Param			body	body		input.SignupInput	true	"Credentials"
//	@Success		200		{object}	map[string]string	"jwt"
//	@Failure		409		{object}	map[string]string	"User already exists"
//	@Failure		411		{object}	map[string]any		"Invalid input"
//	@Failure		429		{object}	map[string]any		"Rate limited"
//	@Router			/user/signup [post]
func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	if !s.allowRateLimit(w, r, "signup", s.clientIP(r), s.cfg.RateLimits.AuthPerMinute) {
		return
	}
	var in input.SignupInput
	if err := input.Decode(r.Body, &in); err != nil {
		writeInvalidInput(w, err)
		return
	}

	token, user, err := s.auth.Signup(r.Context(), in)
	if err != nil {
		if errors.Is(err, auth.ErrUserExists) {
			writeErrorText(w, http.StatusConflict, "User already exists")
			return
		}
		s.internalError(w, r, err, "signup failed")
		return
	}
	hlog.FromRequest(r).Info().Str("user_id", user.ID).Msg("user signed up")
	writeJSON(w, http.StatusOK, map[string]string{"jwt": token})
}

// handleSignin godoc
//
//	@Summary		Sign in
//	@Description	Exchange email and password for a bearer token.
//	@Tags			Users
//	@Accept			json
//	@Produce		json
//	@Param			body	body		input.SigninInput	true	"Credentials"
//	@Success		200		{object}	map[string]any		"jwt and user"
//	@Failure		403		{object}	map[string]string	"Invalid email or password"
//	@Failure		411		{object}	map[string]any		"Invalid input"
//	@Failure		429		{object}	map[string]any		"Rate limited"
//	@Router			/user/signin [post]
func (s *Server) handleSignin(w http.ResponseWriter, r *http.Request) {
	if !s.allowRateLimit(w, r, "signin", s.clientIP(r), s.cfg.RateLimits.AuthPerMinute) {
		return
	}
	var in input.SigninInput
	if err := input.Decode(r.Body, &in); err != nil {
		writeInvalidInput(w, err)
		return
	}

	token, user, err := s.auth.Signin(r.Context(), in)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			writeErrorText(w, http.StatusForbidden, "Invalid email or password")
			return
		}
		s.internalError(w, r, err, "signin failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"jwt": token, "user": user})
}
