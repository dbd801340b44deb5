package commands

import (
	command "github.com/goliatone/go-command"
	internalcommands "github.com/goliatone/go-widgets/internal/commands"
	"github.com/goliatone/go-widgets/pkg/blocks"
	"github.com/goliatone/go-widgets/pkg/interfaces/logger"
	"github.com/goliatone/go-widgets/pkg/sidebars"
)

// Re-export request types so consumers need not import internal packages.
type (
	SaveSidebar  = internalcommands.SaveSidebar
	ImportWidget = internalcommands.ImportWidget
	DeleteWidget = internalcommands.DeleteWidget
)

// Registry exposes go-command compatible handlers backed by the module services.
type Registry struct {
	Catalog      *internalcommands.Catalog
	SaveSidebar  command.Commander[SaveSidebar]
	ImportWidget command.Commander[ImportWidget]
	DeleteWidget command.Commander[DeleteWidget]
}

// Dependencies mirror the internal command dependencies but keep them public.
type Dependencies struct {
	Sidebars *sidebars.Service
	Codec    *blocks.Codec
	Logger   logger.Logger
}

// New builds the registry using the provided dependencies.
func New(deps Dependencies) (*Registry, error) {
	internalDeps := internalcommands.Dependencies{
		Codec:  deps.Codec,
		Logger: deps.Logger,
	}
	if deps.Sidebars != nil {
		internalDeps.Sidebars = deps.Sidebars
	}
	catalog, err := internalcommands.NewCatalog(internalDeps)
	if err != nil {
		return nil, err
	}
	return &Registry{
		Catalog:      catalog,
		SaveSidebar:  catalog.SaveSidebar,
		ImportWidget: catalog.ImportWidget,
		DeleteWidget: catalog.DeleteWidget,
	}, nil
}

// Commanders returns every handler so callers can register them with go-command registries.
func (r *Registry) Commanders() []any {
	if r == nil {
		return nil
	}
	return []any{
		r.SaveSidebar,
		r.ImportWidget,
		r.DeleteWidget,
	}
}
