package store

import (
	"context"

	"github.com/sudankdk/cee/internal/model"
)

// ExecutionListOptions controls filtering and pagination for ListExecutions.
type ExecutionListOptions struct {
	UserID   *int64
	Language string
	Limit    int
	Offset   int
}

// Store is the persistence interface for execution history and templates.
type Store interface {
	// CreateExecution inserts rec and sets its ID and timestamps.
	CreateExecution(ctx context.Context, rec *model.ExecutionRecord) error

	// UpdateExecution stores the status and captured output of rec.
	UpdateExecution(ctx context.Context, rec *model.ExecutionRecord) error

	// GetExecution returns an ExecutionNotFound error for unknown ids.
	GetExecution(ctx context.Context, id int64) (*model.ExecutionRecord, error)

	// ListExecutions returns records newest first.
	ListExecutions(ctx context.Context, opts ExecutionListOptions) ([]model.ExecutionRecord, error)

	CreateTemplate(ctx context.Context, tpl *model.Template) error

	// GetTemplate returns a TemplateNotFound error for unknown ids.
	GetTemplate(ctx context.Context, id int64) (*model.Template, error)

	ListTemplates(ctx context.Context) ([]model.Template, error)

	Close() error
}
