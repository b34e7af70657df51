package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/blogup/blogup/internal/auth"
	"github.com/blogup/blogup/internal/config"
	httpapp "github.com/blogup/blogup/internal/http"
	"github.com/blogup/blogup/internal/rate"
	"github.com/blogup/blogup/internal/store"
	"github.com/blogup/blogup/internal/store/postgres"
	"github.com/blogup/blogup/internal/store/sqlite"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"
)

const version = "0.1.0"

func main() {
	app := newApp()
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:    "blogup",
		Usage:   "Blogging backend with bearer-token auth",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "url",
				Usage:   "Blogup server URL for client commands",
				Value:   "http://localhost:8080",
				EnvVars: []string{"BLOGUP_URL"},
			},
			&cli.StringFlag{
				Name:    "token",
				Usage:   "Bearer token for post commands",
				EnvVars: []string{"BLOGUP_TOKEN"},
			},
		},
		Action: runServer,
		Commands: []*cli.Command{
			{
				Name:    "serve",
				Aliases: []string{"server"},
				Usage:   "Start the Blogup server (default if no command)",
				Action:  runServer,
			},
			signupCommand(),
			signinCommand(),
			postCommand(),
			seedCommand(),
		},
	}
}

// ============================================================================
// SERVER
// ============================================================================

func runServer(c *cli.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg, os.Stdout)
	if err != nil {
		return err
	}
	log.Logger = logger

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := openStore(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	limiter := rate.NewMemory()
	tokens := auth.NewTokenService(cfg.JWTSecret, cfg.TokenTTL)
	authSvc := auth.NewService(st, tokens, cfg.BcryptCost)
	server := httpapp.NewServer(st, authSvc, limiter, cfg, logger)

	httpServer := &http.Server{
		Addr:              cfg.Addr,
		Handler:           server,
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info().Str("addr", cfg.Addr).Msg("blogup listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		logger.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// openStore picks the backend from the URL scheme; anything that is not a
// postgres URL is treated as a SQLite path.
func openStore(ctx context.Context, databaseURL string) (store.Store, error) {
	if strings.HasPrefix(databaseURL, "postgres://") || strings.HasPrefix(databaseURL, "postgresql://") {
		st, err := postgres.Open(ctx, databaseURL)
		if err != nil {
			return nil, err
		}
		return st, nil
	}
	st, err := sqlite.Open(databaseURL)
	if err != nil {
		return nil, err
	}
	return st, nil
}

func newLogger(cfg config.Config, out io.Writer) (zerolog.Logger, error) {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		return zerolog.Logger{}, fmt.Errorf("log level %q: %w", cfg.LogLevel, err)
	}
	if level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	switch cfg.LogFormat {
	case "console":
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	case "json", "":
	default:
		return zerolog.Logger{}, fmt.Errorf("unknown log format %q", cfg.LogFormat)
	}
	return zerolog.New(out).Level(level).With().Timestamp().Str("service", "blogup").Logger(), nil
}
