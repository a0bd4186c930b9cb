package server

import (
	"context"
	"io"
	"log/slog"
	"os"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/roach88/accolade/internal/auth"
	"github.com/roach88/accolade/internal/registry"
)

// Server is the HTTP front end of a registry.
type Server struct {
	app      *fiber.App
	reg      *registry.Registry
	tokens   *auth.Tokens
	validate *validator.Validate
	log      *slog.Logger
}

// Option configures a Server.
type Option func(*options)

type options struct {
	accessLog io.Writer
	logger    *slog.Logger
}

// WithAccessLog sets where request lines are written. Default: stderr.
// Pass io.Discard to silence them.
func WithAccessLog(w io.Writer) Option {
	return func(o *options) { o.accessLog = w }
}

// WithLogger sets the logger used for internal errors.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// New builds the fiber app and registers every route.
func New(reg *registry.Registry, tokens *auth.Tokens, opts ...Option) *Server {
	o := options{accessLog: os.Stderr, logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}

	s := &Server{
		reg:      reg,
		tokens:   tokens,
		validate: newValidator(),
		log:      o.logger,
	}
	s.app = fiber.New(fiber.Config{
		AppName:               "accolade",
		DisableStartupMessage: true,
		UnescapePath:          true,
		ErrorHandler:          s.handleError,
	})
	s.app.Use(recover.New())
	s.app.Use(logger.New(logger.Config{Output: o.accessLog}))
	s.routes()
	return s
}

// newValidator reports fields by their JSON names.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func (s *Server) routes() {
	v1 := s.app.Group("/api/v1")

	v1.Get("/achievements/:id", s.getAchievement)
	v1.Get("/owners/:owner/achievements", s.listByOwner)
	v1.Get("/categories/:category/achievements", s.listByCategory)
	v1.Get("/verifiers/:identity", s.isVerifier)

	protected := v1.Group("", s.requireCaller())
	protected.Post("/init", s.init)
	protected.Post("/verifiers", s.addVerifier)
	protected.Delete("/verifiers/:identity", s.removeVerifier)
	protected.Post("/achievements", s.createAchievement)
	protected.Patch("/achievements/:id", s.updateAchievement)
	protected.Post("/achievements/:id/mint", s.mintAchievement)
	protected.Post("/achievements/:id/verify", s.verifyAchievement)
}

// App returns the underlying fiber app, for tests and embedding.
func (s *Server) App() *fiber.App { return s.app }

// Listen serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Listen(ctx context.Context, addr string) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.app.Listen(addr)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		s.log.Info("shutting down", "addr", addr)
		if err := s.app.Shutdown(); err != nil {
			return err
		}
		return <-errCh
	}
}
