package sidebars

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/goliatone/go-widgets/pkg/activity"
	"github.com/goliatone/go-widgets/pkg/blocks"
	"github.com/goliatone/go-widgets/pkg/config"
	"github.com/goliatone/go-widgets/pkg/domain"
	"github.com/goliatone/go-widgets/pkg/interfaces/broadcaster"
	"github.com/goliatone/go-widgets/pkg/interfaces/logger"
	"github.com/goliatone/go-widgets/pkg/interfaces/store"
	"github.com/goliatone/go-widgets/pkg/storage"
	"github.com/goliatone/go-widgets/pkg/transformer"
)

// Topics published on the broadcaster.
const (
	TopicSidebarSaved = "sidebar.saved"
	TopicWidgetDeleted = "widget.deleted"
)

var (
	errRepositoryRequired = errors.New("sidebars: repository is required")
	// ErrSidebarRequired is returned when no sidebar id is supplied.
	ErrSidebarRequired = errors.New("sidebars: sidebar id is required")
	// ErrTooManyWidgets is returned when a save exceeds the configured maximum.
	ErrTooManyWidgets = errors.New("sidebars: too many widgets")
	// ErrUnknownBlockType is returned for unregistered blocks when strict names are on.
	ErrUnknownBlockType = errors.New("sidebars: unknown block type")
	// ErrDuplicateWidget is returned when two blocks resolve to the same widget id.
	ErrDuplicateWidget = errors.New("sidebars: duplicate widget")
)

// Dependencies wires repositories, the transformer and realtime hooks into the service.
type Dependencies struct {
	Repository   store.WidgetRepository
	Transactions store.TransactionManager
	Transformer  *transformer.Transformer
	Codec        *blocks.Codec
	Broadcaster  broadcaster.Broadcaster
	Logger       logger.Logger
	Activity     activity.Hooks
	Metrics      storage.MetricsCollector
	Config       config.SidebarsConfig
	// StrictBlockNames rejects blocks whose type the codec does not know.
	StrictBlockNames bool
}

// Service loads and saves sidebars as block lists.
type Service struct {
	repo        store.WidgetRepository
	tx          store.TransactionManager
	transformer *transformer.Transformer
	codec       *blocks.Codec
	broadcaster broadcaster.Broadcaster
	logger      logger.Logger
	activity    activity.Hooks
	metrics     storage.MetricsCollector
	cfg         config.SidebarsConfig
	strictNames bool
}

// NewService constructs the sidebars service.
func NewService(deps Dependencies) (*Service, error) {
	if deps.Repository == nil {
		return nil, errRepositoryRequired
	}
	if deps.Transactions == nil {
		deps.Transactions = &store.NopTransactionManager{}
	}
	if deps.Codec == nil {
		deps.Codec = blocks.DefaultCodec()
	}
	if deps.Logger == nil {
		deps.Logger = &logger.Nop{}
	}
	if deps.Transformer == nil {
		deps.Transformer = transformer.New(transformer.WithCodec(deps.Codec), transformer.WithLogger(deps.Logger))
	}
	if deps.Broadcaster == nil {
		deps.Broadcaster = &broadcaster.Nop{}
	}
	return &Service{
		repo:        deps.Repository,
		tx:          deps.Transactions,
		transformer: deps.Transformer,
		codec:       deps.Codec,
		broadcaster: deps.Broadcaster,
		logger:      deps.Logger,
		activity:    deps.Activity,
		metrics:     deps.Metrics,
		cfg:         deps.Config,
		strictNames: deps.StrictBlockNames,
	}, nil
}

// Load returns the widgets of a sidebar as blocks, in position order.
func (s *Service) Load(ctx context.Context, sidebarID string) ([]domain.BlockNode, error) {
	sidebarID = strings.TrimSpace(sidebarID)
	if sidebarID == "" {
		return nil, ErrSidebarRequired
	}
	widgets, err := s.repo.ListBySidebar(ctx, sidebarID)
	if err != nil {
		return nil, err
	}
	out := make([]domain.BlockNode, 0, len(widgets))
	for i := range widgets {
		block, err := s.transformer.WidgetToBlock(widgets[i].Record())
		if err != nil {
			return nil, err
		}
		out = append(out, block)
	}
	return out, nil
}

// SaveInput is the edited block list of one sidebar.
type SaveInput struct {
	SidebarID string
	Blocks    []domain.BlockNode
	ActorID   string
}

// SaveResult reports the widgets a save produced.
type SaveResult struct {
	SidebarID string                `json:"sidebar_id"`
	Widgets   []domain.WidgetRecord `json:"widgets"`
	Created   []string              `json:"created,omitempty"`
	Updated   []string              `json:"updated,omitempty"`
	Deleted   []string              `json:"deleted,omitempty"`
}

// Save replaces the contents of a sidebar with the given blocks. Blocks
// tagged with a known widget id update that widget; other blocks create new
// widgets; widgets of the sidebar that no block refers to are deleted.
func (s *Service) Save(ctx context.Context, input SaveInput) (SaveResult, error) {
	sidebarID := strings.TrimSpace(input.SidebarID)
	if sidebarID == "" {
		return SaveResult{}, ErrSidebarRequired
	}
	if err := s.validateBlocks(input.Blocks); err != nil {
		return SaveResult{}, err
	}

	var result SaveResult
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		result = SaveResult{SidebarID: sidebarID}
		existing, err := s.repo.ListBySidebar(ctx, sidebarID)
		if err != nil {
			return err
		}
		planned, seen, err := s.plan(ctx, sidebarID, input.Blocks, existing)
		if err != nil {
			return err
		}

		// writes start only once every block converted
		for position, item := range planned {
			if item.stored != nil {
				item.stored.Apply(item.record, sidebarID, position)
				if err := s.repo.Update(ctx, item.stored); err != nil {
					return err
				}
				result.Updated = append(result.Updated, item.record.ID)
			} else {
				if err := s.repo.Create(ctx, domain.NewWidget(item.record, sidebarID, position)); err != nil {
					return err
				}
				result.Created = append(result.Created, item.record.ID)
			}
			s.logger.Debug("widget saved",
				logger.Field{Key: "sidebar_id", Value: sidebarID},
				logger.Field{Key: "widget_id", Value: item.record.ID},
				logger.Field{Key: "position", Value: position},
				logger.Field{Key: "settings", Value: MaskSettings(item.record.Settings)},
			)
			result.Widgets = append(result.Widgets, item.record)
		}

		for i := range existing {
			if _, kept := seen[existing[i].WidgetID]; kept {
				continue
			}
			if err := s.repo.SoftDelete(ctx, existing[i].ID); err != nil {
				return err
			}
			result.Deleted = append(result.Deleted, existing[i].WidgetID)
		}
		return nil
	})
	if err != nil {
		return SaveResult{}, err
	}

	s.logger.Info("sidebar saved",
		logger.Field{Key: "sidebar_id", Value: sidebarID},
		logger.Field{Key: "created", Value: len(result.Created)},
		logger.Field{Key: "updated", Value: len(result.Updated)},
		logger.Field{Key: "deleted", Value: len(result.Deleted)},
	)
	s.record("sidebars.save", map[string]string{"sidebar_id": sidebarID})
	s.emit(ctx, TopicSidebarSaved, result)
	s.activity.Notify(ctx, activity.Event{
		Verb:       "widgets.sidebar.saved",
		ActorID:    input.ActorID,
		UserID:     input.ActorID,
		ObjectType: "sidebar",
		ObjectID:   sidebarID,
		Metadata: map[string]any{
			"created": append([]string(nil), result.Created...),
			"updated": append([]string(nil), result.Updated...),
			"deleted": append([]string(nil), result.Deleted...),
		},
	})
	return result, nil
}

type plannedWidget struct {
	stored *domain.Widget
	record domain.WidgetRecord
}

// plan converts blocks to widget records and resolves their ids without
// writing anything.
func (s *Service) plan(ctx context.Context, sidebarID string, list []domain.BlockNode, existing []domain.Widget) ([]plannedWidget, map[string]struct{}, error) {
	byID := make(map[string]*domain.Widget, len(existing))
	for i := range existing {
		byID[existing[i].WidgetID] = &existing[i]
	}
	seen := make(map[string]struct{}, len(list))
	numbers := newNumberAllocator(s.repo, func(ctx context.Context, id string) (bool, error) {
		if _, claimed := seen[id]; claimed {
			return true, nil
		}
		stored, err := s.lookup(ctx, id)
		return stored != nil, err
	})

	planned := make([]plannedWidget, 0, len(list))
	for _, block := range list {
		stored, err := s.relatedWidget(ctx, block, byID, seen)
		if err != nil {
			return nil, nil, err
		}
		record, err := s.transformer.BlockToWidget(block, stored.Record())
		if err != nil {
			return nil, nil, err
		}
		if stored == nil && record.ID != "" {
			if stored, err = s.lookup(ctx, record.ID); err != nil {
				return nil, nil, err
			}
		}
		if record.ID == "" {
			if err := numbers.assign(ctx, &record); err != nil {
				return nil, nil, err
			}
		}
		if _, dup := seen[record.ID]; dup {
			return nil, nil, fmt.Errorf("%w: %s", ErrDuplicateWidget, record.ID)
		}
		seen[record.ID] = struct{}{}
		record.Sidebar = sidebarID
		planned = append(planned, plannedWidget{stored: stored, record: record})
	}
	return planned, seen, nil
}

func (s *Service) validateBlocks(list []domain.BlockNode) error {
	if s.cfg.MaxWidgets > 0 && len(list) > s.cfg.MaxWidgets {
		return fmt.Errorf("%w: %d exceeds %d", ErrTooManyWidgets, len(list), s.cfg.MaxWidgets)
	}
	if !s.strictNames {
		return nil
	}
	for _, block := range list {
		if _, ok := s.codec.Registry().Lookup(block.Name); ok {
			continue
		}
		if suggestion, ok := s.codec.Registry().Suggest(block.Name); ok {
			return fmt.Errorf("%w: %q (did you mean %q?)", ErrUnknownBlockType, block.Name, suggestion)
		}
		return fmt.Errorf("%w: %q", ErrUnknownBlockType, block.Name)
	}
	return nil
}

// relatedWidget finds the stored widget a block was loaded from. A widget id
// already claimed earlier in the same save is treated as a copy.
func (s *Service) relatedWidget(ctx context.Context, block domain.BlockNode, byID map[string]*domain.Widget, seen map[string]struct{}) (*domain.Widget, error) {
	id, ok := block.WidgetID()
	if !ok {
		return nil, nil
	}
	if _, claimed := seen[id]; claimed {
		return nil, nil
	}
	if stored, ok := byID[id]; ok {
		return stored, nil
	}
	return s.lookup(ctx, id)
}

func (s *Service) lookup(ctx context.Context, widgetID string) (*domain.Widget, error) {
	stored, err := s.repo.GetByWidgetID(ctx, widgetID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	return stored, err
}

func (s *Service) emit(ctx context.Context, topic string, payload any) {
	if err := s.broadcaster.Broadcast(ctx, broadcaster.Event{Topic: topic, Payload: payload}); err != nil {
		s.logger.Warn("sidebars broadcast failed",
			logger.Field{Key: "topic", Value: topic},
			logger.Field{Key: "error", Value: err},
		)
	}
}

func (s *Service) record(operation string, labels map[string]string) {
	if s.metrics != nil {
		s.metrics.Record(operation, labels)
	}
}

// numberAllocator hands out instance numbers per id_base, starting after the
// highest number ever stored and skipping ids that are already live.
type numberAllocator struct {
	repo  store.WidgetRepository
	taken func(ctx context.Context, id string) (bool, error)
	next  map[string]int
}

func newNumberAllocator(repo store.WidgetRepository, taken func(ctx context.Context, id string) (bool, error)) *numberAllocator {
	return &numberAllocator{repo: repo, taken: taken, next: make(map[string]int)}
}

func (a *numberAllocator) assign(ctx context.Context, record *domain.WidgetRecord) error {
	idBase := strings.TrimSpace(record.IDBase)
	if idBase == "" {
		return &transformer.RecordError{Field: "id_base", Reason: "is required for new widgets"}
	}
	n, ok := a.next[idBase]
	if !ok {
		highest, err := a.repo.MaxNumber(ctx, idBase)
		if err != nil {
			return err
		}
		n = highest + 1
	}
	for {
		id := fmt.Sprintf("%s-%d", idBase, n)
		taken, err := a.taken(ctx, id)
		if err != nil {
			return err
		}
		if !taken {
			a.next[idBase] = n + 1
			number := n
			record.Number = &number
			record.ID = id
			return nil
		}
		n++
	}
}
