package options

import (
	"github.com/goliatone/go-widgets/pkg/domain"
	opts "github.com/goliatone/go-options"
)

// Scopes used when layering widget settings, lowest priority first.
var (
	WidgetTypeScope = opts.NewScope("widget_type", opts.ScopePrioritySystem, opts.WithScopeLabel("Widget type defaults"))
	SidebarScope    = opts.NewScope("sidebar", opts.ScopePriorityTenant, opts.WithScopeLabel("Sidebar defaults"))
	InstanceScope   = opts.NewScope("instance", opts.ScopePriorityUser, opts.WithScopeLabel("Widget instance"))
)

// InstanceSnapshots builds the layered view of a stored widget's settings:
// defaults for its id_base, then defaults for its sidebar, then the
// widget's own settings. Empty layers are skipped.
func InstanceSnapshots(widget domain.Widget, typeDefaults, sidebarDefaults map[string]any) []Snapshot {
	snapshots := make([]Snapshot, 0, 3)
	if len(typeDefaults) > 0 {
		snapshots = append(snapshots, Snapshot{Scope: WidgetTypeScope, Data: typeDefaults, SnapshotID: widget.IDBase})
	}
	if len(sidebarDefaults) > 0 {
		snapshots = append(snapshots, Snapshot{Scope: SidebarScope, Data: sidebarDefaults, SnapshotID: widget.SidebarID})
	}
	snapshots = append(snapshots, Snapshot{
		Scope:      InstanceScope,
		Data:       map[string]any(widget.Settings),
		SnapshotID: widget.WidgetID,
	})
	return snapshots
}
