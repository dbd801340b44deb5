package bunrepo

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/goliatone/go-widgets/pkg/domain"
	"github.com/goliatone/go-widgets/pkg/interfaces/store"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// baseRepository runs through go-repository-bun, switching to the bound
// transaction when ctx carries one.
type baseRepository[T any] struct {
	repo    repository.Repository[*T]
	db      *bun.DB
	extract func(*T) *domain.RecordMeta
}

func newBaseRepository[T any](db *bun.DB, handlers repository.ModelHandlers[*T], extract func(*T) *domain.RecordMeta) baseRepository[T] {
	return baseRepository[T]{
		repo:    repository.MustNewRepository[*T](db, handlers),
		db:      db,
		extract: extract,
	}
}

func (r baseRepository[T]) create(ctx context.Context, record *T) error {
	base := r.extract(record)
	base.EnsureID()
	now := time.Now().UTC()
	if base.CreatedAt.IsZero() {
		base.CreatedAt = now
	}
	base.UpdatedAt = now
	if tx, ok := txFromContext(ctx); ok {
		_, err := tx.NewInsert().Model(record).Exec(ctx)
		return mapError(err)
	}
	_, err := r.repo.Create(ctx, record)
	return mapError(err)
}

func (r baseRepository[T]) update(ctx context.Context, record *T) error {
	base := r.extract(record)
	if base.ID == uuid.Nil {
		return store.ErrNotFound
	}
	base.UpdatedAt = time.Now().UTC()
	if tx, ok := txFromContext(ctx); ok {
		_, err := tx.NewUpdate().Model(record).WherePK().Exec(ctx)
		return mapError(err)
	}
	_, err := r.repo.Update(ctx, record)
	return mapError(err)
}

func (r baseRepository[T]) getByID(ctx context.Context, id uuid.UUID, includeDeleted bool) (*T, error) {
	criteria := []repository.SelectCriteria{withID(id)}
	if includeDeleted {
		criteria = append(criteria, withDeleted())
	} else {
		criteria = append(criteria, withoutDeleted())
	}
	return r.get(ctx, criteria...)
}

func (r baseRepository[T]) get(ctx context.Context, criteria ...repository.SelectCriteria) (*T, error) {
	if tx, ok := txFromContext(ctx); ok {
		record := new(T)
		q := tx.NewSelect().Model(record)
		for _, c := range criteria {
			q = c(q)
		}
		if err := q.Limit(1).Scan(ctx); err != nil {
			return nil, mapError(err)
		}
		return record, nil
	}
	record, err := r.repo.Get(ctx, criteria...)
	if err != nil {
		return nil, mapError(err)
	}
	return record, nil
}

func (r baseRepository[T]) list(ctx context.Context, opts store.ListOptions) (store.ListResult[T], error) {
	items, total, err := r.find(ctx, withListOptions(opts))
	if err != nil {
		return store.ListResult[T]{}, err
	}
	return store.ListResult[T]{Items: items, Total: total}, nil
}

func (r baseRepository[T]) find(ctx context.Context, criteria ...repository.SelectCriteria) ([]T, int, error) {
	var records []*T
	var total int
	if tx, ok := txFromContext(ctx); ok {
		q := tx.NewSelect().Model(&records)
		for _, c := range criteria {
			q = c(q)
		}
		count, err := q.ScanAndCount(ctx)
		if err != nil {
			return nil, 0, mapError(err)
		}
		total = count
	} else {
		found, count, err := r.repo.List(ctx, criteria...)
		if err != nil {
			return nil, 0, mapError(err)
		}
		records, total = found, count
	}
	items := make([]T, len(records))
	for i, rec := range records {
		items[i] = *rec
	}
	return items, total, nil
}

func (r baseRepository[T]) softDelete(ctx context.Context, id uuid.UUID) error {
	record, err := r.getByID(ctx, id, true)
	if err != nil {
		return err
	}
	if !r.extract(record).DeletedAt.IsZero() {
		return nil
	}
	_, err = conn(ctx, r.db).NewDelete().Model(record).WherePK().Exec(ctx)
	return mapError(err)
}

func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) || repository.IsRecordNotFound(err) {
		return store.ErrNotFound
	}
	return err
}
