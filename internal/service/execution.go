package service

import (
	"context"
	"io"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	apperr "github.com/sudankdk/cee/internal/errors"
	"github.com/sudankdk/cee/internal/languages"
	"github.com/sudankdk/cee/internal/logger"
	"github.com/sudankdk/cee/internal/model"
	"github.com/sudankdk/cee/internal/store"
)

// CodeRunner runs one submission. *executer.Executor satisfies it.
type CodeRunner interface {
	Execute(ctx context.Context, language, code, stdin string) (model.ExecutionResult, error)
}

type ExecuteInput struct {
	Language string `json:"language"`
	Code     string `json:"code"`
	Stdin    string `json:"stdin,omitempty"`
}

// CodeExecutionService runs submissions and keeps their history.
type CodeExecutionService struct {
	store  store.Store
	runner CodeRunner
}

func NewCodeExecutionService(st store.Store, runner CodeRunner) *CodeExecutionService {
	return &CodeExecutionService{store: st, runner: runner}
}

// Execute validates in, records it as started, runs it and stores the
// outcome. A hard failure marks the record failed and is returned.
func (s *CodeExecutionService) Execute(ctx context.Context, userID *int64, in ExecuteInput) (*model.ExecutionRecord, error) {
	lang, err := languages.Parse(in.Language)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.Code) == "" {
		return nil, apperr.Newf(apperr.InvalidParams, "code is required")
	}
	return s.run(ctx, userID, lang, in.Code, in.Stdin)
}

// ExecuteTemplate runs the stored template with its own stdin.
func (s *CodeExecutionService) ExecuteTemplate(ctx context.Context, userID *int64, templateID int64) (*model.ExecutionRecord, error) {
	tpl, err := s.store.GetTemplate(ctx, templateID)
	if err != nil {
		return nil, err
	}
	lang, err := languages.Parse(tpl.Language)
	if err != nil {
		return nil, err
	}
	return s.run(ctx, userID, lang, tpl.Code, tpl.Stdin)
}

func (s *CodeExecutionService) run(ctx context.Context, userID *int64, lang languages.Language, code, stdin string) (*model.ExecutionRecord, error) {
	if logger.ExecutionID(ctx) == "" {
		ctx = logger.WithExecutionID(ctx, uuid.NewString())
	}
	if userID != nil {
		ctx = logger.WithUserID(ctx, *userID)
	}

	rec := &model.ExecutionRecord{
		UserID:   userID,
		Language: lang.String(),
		Code:     code,
		Stdin:    stdin,
		Status:   model.StatusStarted,
	}
	if err := s.store.CreateExecution(ctx, rec); err != nil {
		return nil, err
	}

	res, runErr := s.runner.Execute(ctx, lang.String(), code, stdin)
	if runErr != nil {
		rec.Status = model.StatusFailed
		rec.Stderr = runErr.Error()
		if err := s.store.UpdateExecution(ctx, rec); err != nil {
			logger.Error(ctx, "failed to mark execution failed", zap.Int64("record_id", rec.ID), zap.Error(err))
		}
		logger.Warn(ctx, "execution failed", zap.Int64("record_id", rec.ID), zap.Error(runErr))
		return rec, runErr
	}

	rec.Apply(res)
	if err := s.store.UpdateExecution(ctx, rec); err != nil {
		return nil, err
	}
	logger.Info(ctx, "execution completed",
		zap.Int64("record_id", rec.ID),
		zap.Int("exit_code", res.ExitCodeOr(-1)),
		zap.Int64("execution_time_ms", res.ExecutionTimeMs))
	return rec, nil
}

func (s *CodeExecutionService) GetExecution(ctx context.Context, id int64) (*model.ExecutionRecord, error) {
	return s.store.GetExecution(ctx, id)
}

func (s *CodeExecutionService) History(ctx context.Context, opts store.ExecutionListOptions) ([]model.ExecutionRecord, error) {
	return s.store.ListExecutions(ctx, opts)
}

func (s *CodeExecutionService) Templates(ctx context.Context) ([]model.Template, error) {
	return s.store.ListTemplates(ctx)
}

// ImportTemplates stores every template in a YAML document and returns them
// with their new ids.
func (s *CodeExecutionService) ImportTemplates(ctx context.Context, r io.Reader) ([]model.Template, error) {
	tpls, err := store.DecodeTemplates(r)
	if err != nil {
		return nil, err
	}
	for i := range tpls {
		if err := s.store.CreateTemplate(ctx, &tpls[i]); err != nil {
			return nil, err
		}
	}
	logger.Info(ctx, "templates imported", zap.Int("count", len(tpls)))
	return tpls, nil
}
