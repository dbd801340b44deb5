package commands

import (
	"context"
	"errors"
	"strings"

	command "github.com/goliatone/go-command"
	"github.com/goliatone/go-widgets/pkg/blocks"
	"github.com/goliatone/go-widgets/pkg/domain"
	"github.com/goliatone/go-widgets/pkg/interfaces/logger"
	"github.com/goliatone/go-widgets/pkg/sidebars"
)

// Catalog exposes go-command compatible handlers for host transports.
type Catalog struct {
	SaveSidebar  command.Commander[SaveSidebar]
	ImportWidget command.Commander[ImportWidget]
	DeleteWidget command.Commander[DeleteWidget]
}

type sidebarService interface {
	Save(ctx context.Context, input sidebars.SaveInput) (sidebars.SaveResult, error)
	Import(ctx context.Context, sidebarID string, record domain.WidgetRecord, actorID string) (domain.WidgetRecord, error)
	Delete(ctx context.Context, widgetID, actorID string) error
}

// Dependencies wires services into the command catalog.
type Dependencies struct {
	Sidebars sidebarService
	Codec    *blocks.Codec
	Logger   logger.Logger
}

// NewCatalog builds the command catalog using the supplied dependencies.
func NewCatalog(deps Dependencies) (*Catalog, error) {
	if deps.Sidebars == nil {
		return nil, errors.New("commands: sidebars service is required")
	}
	if deps.Codec == nil {
		deps.Codec = blocks.DefaultCodec()
	}
	if deps.Logger == nil {
		deps.Logger = &logger.Nop{}
	}

	return &Catalog{
		SaveSidebar:  saveSidebarCommand{svc: deps.Sidebars, codec: deps.Codec, logger: deps.Logger},
		ImportWidget: importWidgetCommand{svc: deps.Sidebars},
		DeleteWidget: deleteWidgetCommand{svc: deps.Sidebars},
	}, nil
}

// SaveSidebar replaces a sidebar with either Blocks or, when Blocks is empty,
// the blocks parsed from Markup.
type SaveSidebar struct {
	SidebarID string             `json:"sidebar_id"`
	Blocks    []domain.BlockNode `json:"blocks"`
	Markup    string             `json:"markup"`
	ActorID   string             `json:"actor_id"`
}

type saveSidebarCommand struct {
	svc    sidebarService
	codec  *blocks.Codec
	logger logger.Logger
}

func (c saveSidebarCommand) Execute(ctx context.Context, msg SaveSidebar) error {
	list := msg.Blocks
	if len(list) == 0 && strings.TrimSpace(msg.Markup) != "" {
		list = c.codec.Parse(msg.Markup)
	}
	result, err := c.svc.Save(ctx, sidebars.SaveInput{
		SidebarID: msg.SidebarID,
		Blocks:    list,
		ActorID:   msg.ActorID,
	})
	if err != nil {
		return err
	}
	c.logger.Debug("save sidebar command done",
		logger.Field{Key: "sidebar_id", Value: result.SidebarID},
		logger.Field{Key: "widgets", Value: len(result.Widgets)},
	)
	return nil
}

// ImportWidget appends a legacy widget record to a sidebar.
type ImportWidget struct {
	SidebarID string              `json:"sidebar_id"`
	Widget    domain.WidgetRecord `json:"widget"`
	ActorID   string              `json:"actor_id"`
}

type importWidgetCommand struct {
	svc sidebarService
}

func (c importWidgetCommand) Execute(ctx context.Context, msg ImportWidget) error {
	_, err := c.svc.Import(ctx, msg.SidebarID, msg.Widget, msg.ActorID)
	return err
}

// DeleteWidget removes a widget from its sidebar.
type DeleteWidget struct {
	WidgetID string `json:"widget_id"`
	ActorID  string `json:"actor_id"`
}

type deleteWidgetCommand struct {
	svc sidebarService
}

func (c deleteWidgetCommand) Execute(ctx context.Context, msg DeleteWidget) error {
	return c.svc.Delete(ctx, msg.WidgetID, msg.ActorID)
}
