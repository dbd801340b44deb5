package sidebars

import (
	"context"
	"errors"
	"strings"

	"github.com/goliatone/go-widgets/pkg/activity"
	"github.com/goliatone/go-widgets/pkg/domain"
	"github.com/goliatone/go-widgets/pkg/interfaces/logger"
	"github.com/goliatone/go-widgets/pkg/options"
	opts "github.com/goliatone/go-options"
)

// ErrWidgetRequired is returned when no widget id is supplied.
var ErrWidgetRequired = errors.New("sidebars: widget id is required")

// Import appends a legacy widget record to the end of a sidebar. The record
// keeps its id unless it is empty or already in use.
func (s *Service) Import(ctx context.Context, sidebarID string, record domain.WidgetRecord, actorID string) (domain.WidgetRecord, error) {
	sidebarID = strings.TrimSpace(sidebarID)
	if sidebarID == "" {
		return domain.WidgetRecord{}, ErrSidebarRequired
	}
	if _, err := s.transformer.WidgetToBlock(record); err != nil {
		return domain.WidgetRecord{}, err
	}
	record = record.Clone()
	record.Sidebar = sidebarID
	record.Form = ""
	record.Rendered = ""
	if record.Kind() == domain.WidgetKindBlockBacked && record.IDBase == "" {
		record.IDBase = domain.BlockWidgetIDBase
	}

	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		current, err := s.repo.ListBySidebar(ctx, sidebarID)
		if err != nil {
			return err
		}
		if s.cfg.MaxWidgets > 0 && len(current) >= s.cfg.MaxWidgets {
			return ErrTooManyWidgets
		}
		if record.ID != "" {
			taken, err := s.lookup(ctx, record.ID)
			if err != nil {
				return err
			}
			if taken != nil {
				if record.Kind() == domain.WidgetKindReference {
					return ErrDuplicateWidget
				}
				record.ID = ""
			}
		}
		if record.ID == "" {
			numbers := newNumberAllocator(s.repo, func(ctx context.Context, id string) (bool, error) {
				stored, err := s.lookup(ctx, id)
				return stored != nil, err
			})
			if err := numbers.assign(ctx, &record); err != nil {
				return err
			}
		}
		return s.repo.Create(ctx, domain.NewWidget(record, sidebarID, len(current)))
	})
	if err != nil {
		return domain.WidgetRecord{}, err
	}

	s.record("sidebars.import", map[string]string{"sidebar_id": sidebarID})
	s.logger.Info("widget imported",
		logger.Field{Key: "sidebar_id", Value: sidebarID},
		logger.Field{Key: "widget_id", Value: record.ID},
		logger.Field{Key: "settings", Value: MaskSettings(record.Settings)},
	)
	s.activity.Notify(ctx, activity.Event{
		Verb:       "widgets.widget.imported",
		ActorID:    actorID,
		UserID:     actorID,
		ObjectType: "widget",
		ObjectID:   record.ID,
		Metadata:   map[string]any{"sidebar_id": sidebarID, "kind": record.Kind().String()},
	})
	return record, nil
}

// Delete soft deletes a widget by its external id.
func (s *Service) Delete(ctx context.Context, widgetID, actorID string) error {
	widgetID = strings.TrimSpace(widgetID)
	if widgetID == "" {
		return ErrWidgetRequired
	}
	var sidebarID string
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		stored, err := s.repo.GetByWidgetID(ctx, widgetID)
		if err != nil {
			return err
		}
		sidebarID = stored.SidebarID
		return s.repo.SoftDelete(ctx, stored.ID)
	})
	if err != nil {
		return err
	}
	s.record("sidebars.delete", map[string]string{"sidebar_id": sidebarID})
	s.emit(ctx, TopicWidgetDeleted, map[string]any{"widget_id": widgetID, "sidebar_id": sidebarID})
	s.activity.Notify(ctx, activity.Event{
		Verb:       "widgets.widget.deleted",
		ActorID:    actorID,
		UserID:     actorID,
		ObjectType: "widget",
		ObjectID:   widgetID,
		Metadata:   map[string]any{"sidebar_id": sidebarID},
	})
	return nil
}

// InstanceSettings is the effective settings of a widget after layering its
// type and sidebar defaults underneath its own values.
type InstanceSettings struct {
	WidgetID string                `json:"widget_id"`
	Values   map[string]any        `json:"values"`
	Traces   map[string]opts.Trace `json:"traces,omitempty"`
}

// ResolveInstance layers configured defaults under the stored settings of a widget.
func (s *Service) ResolveInstance(ctx context.Context, widgetID string) (InstanceSettings, error) {
	stored, err := s.widget(ctx, widgetID)
	if err != nil {
		return InstanceSettings{}, err
	}
	resolver, err := options.NewResolver(options.InstanceSnapshots(
		*stored,
		s.cfg.TypeDefaults[stored.IDBase],
		s.cfg.SidebarDefaults[stored.SidebarID],
	)...)
	if err != nil {
		return InstanceSettings{}, err
	}
	values, traces, err := resolver.Flatten()
	if err != nil {
		return InstanceSettings{}, err
	}
	return InstanceSettings{WidgetID: stored.WidgetID, Values: values, Traces: traces}, nil
}

// Preview returns a short plain text rendering of a widget.
func (s *Service) Preview(ctx context.Context, widgetID string) (string, error) {
	stored, err := s.widget(ctx, widgetID)
	if err != nil {
		return "", err
	}
	block, err := s.transformer.WidgetToBlock(stored.Record())
	if err != nil {
		return "", err
	}
	text, err := s.codec.PlainText(block)
	if err != nil {
		return "", err
	}
	if text == "" {
		if title, ok := stored.Settings["title"].(string); ok {
			text = strings.TrimSpace(title)
		}
	}
	return text, nil
}

func (s *Service) widget(ctx context.Context, widgetID string) (*domain.Widget, error) {
	widgetID = strings.TrimSpace(widgetID)
	if widgetID == "" {
		return nil, ErrWidgetRequired
	}
	return s.repo.GetByWidgetID(ctx, widgetID)
}
