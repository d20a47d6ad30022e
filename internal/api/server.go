package api

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"

	apperr "github.com/sudankdk/cee/internal/errors"
	"github.com/sudankdk/cee/internal/languages"
	"github.com/sudankdk/cee/internal/limiter"
	"github.com/sudankdk/cee/internal/logger"
	"github.com/sudankdk/cee/internal/service"
)

// LanguageLister reports the configured language images. *languages.Registry
// satisfies it.
type LanguageLister interface {
	List() []languages.ImageConfig
}

type Config struct {
	Addr      string         `mapstructure:"addr"`
	RateLimit limiter.Config `mapstructure:"rate_limit"`
}

type Server struct {
	svc     *service.CodeExecutionService
	langs   LanguageLister
	limiter *limiter.RateLimiter
	cfg     Config
	app     *fiber.App
}

func NewServer(svc *service.CodeExecutionService, langs LanguageLister, cfg Config) *Server {
	if cfg.Addr == "" {
		cfg.Addr = ":3000"
	}
	s := &Server{
		svc:     svc,
		langs:   langs,
		limiter: limiter.NewRateLimiter(cfg.RateLimit),
		cfg:     cfg,
	}

	app := fiber.New(fiber.Config{
		AppName:               "cee",
		DisableStartupMessage: true,
		ErrorHandler:          errorHandler,
	})
	app.Use(recover.New())
	app.Use(requestContext)
	s.setupRoutes(app)
	s.app = app
	return s
}

// App exposes the router, mainly for tests.
func (s *Server) App() *fiber.App { return s.app }

// StartServer serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) StartServer(ctx context.Context) error {
	s.limiter.StartCleanup(ctx, defaultLimiterCleanup)

	errCh := make(chan error, 1)
	go func() {
		logger.Info(ctx, "http server listening", zap.String("addr", s.cfg.Addr))
		errCh <- s.app.Listen(s.cfg.Addr)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		logger.Info(ctx, "shutting down http server")
		return s.app.ShutdownWithTimeout(shutdownTimeout)
	}
}

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    apperr.ErrorCode `json:"code"`
	Message string           `json:"message"`
}

func errorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code := apperr.InternalServerError
		switch fe.Code {
		case fiber.StatusNotFound:
			code = apperr.NotFound
		case fiber.StatusBadRequest, fiber.StatusUnprocessableEntity:
			code = apperr.InvalidParams
		}
		return c.Status(fe.Code).JSON(errorBody{Error: errorDetail{Code: code, Message: fe.Message}})
	}

	code := apperr.GetCode(err)
	status := code.HTTPStatus()
	msg := err.Error()
	if status >= fiber.StatusInternalServerError && code == apperr.InternalServerError {
		logger.Error(c.UserContext(), "unhandled request error", zap.Error(err))
		msg = code.Message()
	}
	return c.Status(status).JSON(errorBody{Error: errorDetail{Code: code, Message: msg}})
}
