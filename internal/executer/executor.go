package executer

import (
	"context"
	"time"

	"go.uber.org/zap"

	apperr "github.com/sudankdk/cee/internal/errors"
	"github.com/sudankdk/cee/internal/languages"
	"github.com/sudankdk/cee/internal/logger"
	"github.com/sudankdk/cee/internal/metrics"
	"github.com/sudankdk/cee/internal/model"
	"github.com/sudankdk/cee/internal/sandbox"
)

// Runner executes a built request in a fresh container. *docker.Manager
// satisfies it.
type Runner interface {
	Run(ctx context.Context, req *sandbox.ExecutionRequest) (model.ExecutionResult, error)
}

type Executor struct {
	factory *Factory
	runner  Runner
}

func NewExecutor(factory *Factory, runner Runner) *Executor {
	return &Executor{factory: factory, runner: runner}
}

// Execute runs code written in language. Configuration errors (unknown
// language, missing image) are returned before any container exists. A
// program that fails to compile or exits non-zero is a result, not an error.
func (e *Executor) Execute(ctx context.Context, language, code, stdin string) (model.ExecutionResult, error) {
	lang, err := languages.Parse(language)
	if err != nil {
		metrics.ExecutionsTotal.WithLabelValues("unknown", outcomeRejected).Inc()
		return model.ExecutionResult{}, err
	}
	strategy, err := e.factory.Strategy(lang)
	if err != nil {
		metrics.ExecutionsTotal.WithLabelValues(lang.String(), outcomeRejected).Inc()
		return model.ExecutionResult{}, err
	}

	start := time.Now()
	req, early, err := strategy.BuildRequest(ctx, code, stdin)
	if err != nil {
		metrics.ExecutionsTotal.WithLabelValues(lang.String(), outcomeRejected).Inc()
		return model.ExecutionResult{}, err
	}
	if early != nil {
		metrics.ExecutionsTotal.WithLabelValues(lang.String(), outcomeSourceError).Inc()
		return *early, nil
	}

	logger.Info(ctx, "executing code", zap.String("language", lang.String()), zap.String("image", req.ImageName))
	res, err := e.runner.Run(ctx, req)
	metrics.ExecutionDuration.WithLabelValues(lang.String()).Observe(float64(time.Since(start).Milliseconds()))
	if err != nil {
		metrics.ExecutionsTotal.WithLabelValues(lang.String(), failureOutcome(err)).Inc()
		return model.ExecutionResult{}, err
	}

	outcome := outcomeSuccess
	if res.ExitCodeOr(1) != 0 {
		outcome = outcomeNonZero
	}
	metrics.ExecutionsTotal.WithLabelValues(lang.String(), outcome).Inc()
	return res, nil
}

const (
	outcomeSuccess     = "success"
	outcomeNonZero     = "nonzero_exit"
	outcomeSourceError = "source_error"
	outcomeRejected    = "rejected"
	outcomeTimeout     = "timeout"
	outcomeError       = "error"
)

func failureOutcome(err error) string {
	if apperr.Is(err, apperr.ExecutionTimeout) {
		return outcomeTimeout
	}
	return outcomeError
}
