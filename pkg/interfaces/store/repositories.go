package store

import (
	"context"
	"errors"
	"time"

	"github.com/goliatone/go-widgets/pkg/domain"
	"github.com/google/uuid"
)

// ErrNotFound is returned when a record cannot be located.
var ErrNotFound = errors.New("store: not found")

// ListOptions capture pagination and filtering knobs common to repositories.
type ListOptions struct {
	Limit              int
	Offset             int
	Since              time.Time
	Until              time.Time
	IncludeSoftDeleted bool
}

// ListResult bundles records and totals.
type ListResult[T any] struct {
	Items []T
	Total int
}

// Repository defines base CRUD helpers reused by entity-specific interfaces.
type Repository[T any] interface {
	Create(ctx context.Context, record *T) error
	Update(ctx context.Context, record *T) error
	GetByID(ctx context.Context, id uuid.UUID) (*T, error)
	List(ctx context.Context, opts ListOptions) (ListResult[T], error)
	SoftDelete(ctx context.Context, id uuid.UUID) error
}

// WidgetRepository stores widget instances placed in sidebars.
type WidgetRepository interface {
	Repository[domain.Widget]
	// GetByWidgetID looks up a live widget by its external id (e.g. "search-2").
	GetByWidgetID(ctx context.Context, widgetID string) (*domain.Widget, error)
	// ListBySidebar returns the live widgets of a sidebar ordered by position.
	ListBySidebar(ctx context.Context, sidebarID string) ([]domain.Widget, error)
	// MaxNumber returns the highest instance number ever used for idBase,
	// soft deleted widgets included, or 0.
	MaxNumber(ctx context.Context, idBase string) (int, error)
}
