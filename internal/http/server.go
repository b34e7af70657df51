package httpapp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/blogup/blogup/internal/auth"
	"github.com/blogup/blogup/internal/config"
	"github.com/blogup/blogup/internal/input"
	"github.com/blogup/blogup/internal/rate"
	"github.com/blogup/blogup/internal/store"

	_ "github.com/blogup/blogup/docs" // swagger docs

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
	httpSwagger "github.com/swaggo/http-swagger"
	"github.com/swaggo/swag"
	"sigs.k8s.io/yaml"
)

// statusInvalidInput is returned for bodies that fail validation. Existing
// clients key on 411 rather than 400.
const statusInvalidInput = http.StatusLengthRequired

type Server struct {
	store   store.Store
	auth    *auth.Service
	limiter rate.Limiter
	cfg     config.Config
	log     zerolog.Logger
	router  chi.Router
}

func NewServer(store store.Store, authSvc *auth.Service, limiter rate.Limiter, cfg config.Config, logger zerolog.Logger) *Server {
	s := &Server{store: store, auth: authSvc, limiter: limiter, cfg: cfg, log: logger}
	s.router = s.routes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	if s.cfg.TrustProxy {
		r.Use(chimw.RealIP)
	}
	r.Use(hlog.NewHandler(s.log))
	r.Use(hlog.AccessHandler(accessLog))
	r.Use(chimw.Recoverer)

	r.NotFound(notFound)
	r.MethodNotAllowed(methodNotAllowed)

	r.Get("/", s.handleRoot)
	r.Get("/healthz", s.handleHealth)
	r.Get("/openapi.json", s.serveOpenAPIJSON)
	r.Get("/openapi.yaml", s.serveOpenAPIYAML)
	r.Get("/swagger/*", httpSwagger.WrapHandler)

	r.Route("/user", func(r chi.Router) {
		r.Post("/signup", s.handleSignup)
		r.Post("/signin", s.handleSignin)
	})

	r.Route("/post", func(r chi.Router) {
		r.Use(s.requireAuth)
		r.Get("/blog/bulk", s.handleListPosts)
		r.Post("/blog", s.handleCreatePost)
		r.Put("/blog", s.handleUpdatePost)
		r.Get("/{id}", s.handleGetPost)
	})

	return r
}

func accessLog(r *http.Request, status, size int, duration time.Duration) {
	hlog.FromRequest(r).Info().
		Str("request_id", chimw.GetReqID(r.Context())).
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Int("status", status).
		Int("size", size).
		Dur("duration", duration).
		Msg("request")
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeText(w, http.StatusOK, "Hello from blogup!")
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := s.store.Ping(ctx); err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("store ping failed")
		writeErrorText(w, http.StatusServiceUnavailable, "store unavailable")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) serveOpenAPIJSON(w http.ResponseWriter, r *http.Request) {
	doc, err := swag.ReadDoc()
	if err != nil {
		s.internalError(w, r, err, "read openapi doc")
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Write([]byte(doc))
}

func (s *Server) serveOpenAPIYAML(w http.ResponseWriter, r *http.Request) {
	doc, err := swag.ReadDoc()
	if err != nil {
		s.internalError(w, r, err, "read openapi doc")
		return
	}
	out, err := yaml.JSONToYAML([]byte(doc))
	if err != nil {
		s.internalError(w, r, err, "convert openapi doc")
		return
	}
	w.Header().Set("Content-Type", "application/x-yaml; charset=utf-8")
	w.Write(out)
}

type ctxUserKey struct{}

// WithUserID returns a copy of ctx carrying the authenticated user id.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, ctxUserKey{}, userID)
}

// UserIDFromContext returns the id stored by the auth middleware.
func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(ctxUserKey{}).(string)
	return id, ok && id != ""
}

// requireAuth rejects requests without an Authorization header with 401 and
// requests whose bearer token does not verify with 403.
func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			writeErrorText(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		var bearer string
		if fields := strings.Fields(header); len(fields) > 1 {
			bearer = fields[1]
		}
		verified, err := s.auth.Authenticate(bearer)
		if err != nil {
			hlog.FromRequest(r).Debug().Err(err).Msg("bearer token rejected")
			writeErrorText(w, http.StatusForbidden, "Unauthorized")
			return
		}
		next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), verified.UserID)))
	})
}

func (s *Server) allowRateLimit(w http.ResponseWriter, r *http.Request, action, subject string, limit int) bool {
	if limit <= 0 {
		return true
	}
	key := fmt.Sprintf("%s:%s", action, subject)
	if ok, retry := s.limiter.Allow(key, limit, time.Minute); !ok {
		hlog.FromRequest(r).Warn().Str("action", action).Msg("rate limited")
		writeRateLimit(w, retry)
		return false
	}
	return true
}

func (s *Server) clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

// internalError logs err with the request logger and answers with a generic
// 500 body; err's text never reaches the client.
func (s *Server) internalError(w http.ResponseWriter, r *http.Request, err error, msg string) {
	hlog.FromRequest(r).Error().Err(err).Msg(msg)
	writeErrorText(w, http.StatusInternalServerError, "Internal server error")
}

func writeInvalidInput(w http.ResponseWriter, err error) {
	resp := map[string]any{"error": "Invalid input"}
	var verr *input.ValidationError
	if errors.As(err, &verr) && len(verr.Fields) > 0 {
		resp["fields"] = verr.Fields
	}
	writeJSON(w, statusInvalidInput, resp)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeText(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeErrorText(w, status, err.Error())
}

func writeErrorText(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{"error": msg})
}

func writeRateLimit(w http.ResponseWriter, retry time.Duration) {
	seconds := int(retry.Round(time.Second).Seconds())
	w.Header().Set("Retry-After", strconv.Itoa(seconds))
	writeJSON(w, http.StatusTooManyRequests, map[string]any{
		"error":       "rate limit exceeded",
		"retry_after": seconds,
	})
}

func notFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusNotFound, errors.New("not found"))
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusMethodNotAllowed, errors.New("method not allowed"))
}
