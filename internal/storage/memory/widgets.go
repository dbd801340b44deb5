package memory

import (
	"context"
	"sort"

	"github.com/goliatone/go-widgets/pkg/domain"
	"github.com/goliatone/go-widgets/pkg/interfaces/store"
	"github.com/google/uuid"
)

type WidgetRepository struct {
	base baseMemoryRepo[domain.Widget]
}

var _ store.WidgetRepository = (*WidgetRepository)(nil)

func NewWidgetRepository() *WidgetRepository {
	return &WidgetRepository{
		base: newBaseMemoryRepo("widget", func(w *domain.Widget) *domain.RecordMeta { return &w.RecordMeta }),
	}
}

func (r *WidgetRepository) Create(ctx context.Context, widget *domain.Widget) error {
	return r.base.create(ctx, widget)
}

func (r *WidgetRepository) Update(ctx context.Context, widget *domain.Widget) error {
	return r.base.update(ctx, widget)
}

func (r *WidgetRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Widget, error) {
	return r.base.getByID(ctx, id, false)
}

func (r *WidgetRepository) List(ctx context.Context, opts store.ListOptions) (store.ListResult[domain.Widget], error) {
	return r.base.list(ctx, opts)
}

func (r *WidgetRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	return r.base.softDelete(ctx, id)
}

func (r *WidgetRepository) GetByWidgetID(ctx context.Context, widgetID string) (*domain.Widget, error) {
	r.base.mu.RLock()
	defer r.base.mu.RUnlock()

	for _, widget := range r.base.records {
		if widget.WidgetID == widgetID && widget.DeletedAt.IsZero() {
			copy := widget
			return &copy, nil
		}
	}
	return nil, store.ErrNotFound
}

func (r *WidgetRepository) ListBySidebar(ctx context.Context, sidebarID string) ([]domain.Widget, error) {
	r.base.mu.RLock()
	defer r.base.mu.RUnlock()

	var widgets []domain.Widget
	for _, widget := range r.base.records {
		if widget.SidebarID == sidebarID && widget.DeletedAt.IsZero() {
			widgets = append(widgets, widget)
		}
	}
	sort.Slice(widgets, func(i, j int) bool {
		if widgets[i].Position != widgets[j].Position {
			return widgets[i].Position < widgets[j].Position
		}
		return widgets[i].CreatedAt.Before(widgets[j].CreatedAt)
	})
	return widgets, nil
}

func (r *WidgetRepository) MaxNumber(ctx context.Context, idBase string) (int, error) {
	r.base.mu.RLock()
	defer r.base.mu.RUnlock()

	max := 0
	for _, widget := range r.base.records {
		if widget.IDBase == idBase && widget.Number > max {
			max = widget.Number
		}
	}
	return max, nil
}
