package bunrepo

import (
	"context"
	"database/sql"

	"github.com/goliatone/go-widgets/pkg/domain"
	"github.com/goliatone/go-widgets/pkg/interfaces/store"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type WidgetRepository struct {
	base baseRepository[domain.Widget]
}

var _ store.WidgetRepository = (*WidgetRepository)(nil)

func NewWidgetRepository(db *bun.DB) *WidgetRepository {
	handlers := repository.ModelHandlers[*domain.Widget]{
		NewRecord:          func() *domain.Widget { return &domain.Widget{} },
		GetID:              func(w *domain.Widget) uuid.UUID { return w.ID },
		SetID:              func(w *domain.Widget, id uuid.UUID) { w.ID = id },
		GetIdentifier:      func() string { return "widget_id" },
		GetIdentifierValue: func(w *domain.Widget) string { return w.WidgetID },
	}
	return &WidgetRepository{
		base: newBaseRepository[domain.Widget](db, handlers, func(w *domain.Widget) *domain.RecordMeta { return &w.RecordMeta }),
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
	return r.base.get(ctx, withWidgetID(widgetID), withoutDeleted())
}

func (r *WidgetRepository) ListBySidebar(ctx context.Context, sidebarID string) ([]domain.Widget, error) {
	widgets, _, err := r.base.find(ctx, withSidebar(sidebarID), withoutDeleted(), orderByPosition())
	return widgets, err
}

func (r *WidgetRepository) MaxNumber(ctx context.Context, idBase string) (int, error) {
	var max sql.NullInt64
	err := conn(ctx, r.base.db).
		NewSelect().
		Model((*domain.Widget)(nil)).
		ColumnExpr("MAX(number)").
		Where("id_base = ?", idBase).
		WhereAllWithDeleted().
		Scan(ctx, &max)
	if err != nil {
		return 0, mapError(err)
	}
	return int(max.Int64), nil
}
