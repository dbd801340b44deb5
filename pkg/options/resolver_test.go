package options

import (
	"testing"

	"github.com/goliatone/go-widgets/pkg/domain"
	opts "github.com/goliatone/go-options"
)

func TestNewResolverMergesSnapshots(t *testing.T) {
	t.Helper()
	system := opts.NewScope("system", opts.ScopePrioritySystem, opts.WithScopeLabel("System"))
	user := opts.NewScope("user", opts.ScopePriorityUser, opts.WithScopeLabel("User"))

	resolver, err := NewResolver(
		Snapshot{
			Scope: system,
			Data: map[string]any{
				"show_count": true,
				"categories": []any{"alpha"},
			},
		},
		Snapshot{
			Scope: user,
			Data: map[string]any{
				"show_count": false,
				"categories": []string{"beta"},
				"title":      "Archives",
			},
		},
	)
	if err != nil {
		t.Fatalf("NewResolver: %v", err)
	}

	showCount, trace, err := resolver.ResolveBool("show_count")
	if err != nil {
		t.Fatalf("resolve bool: %v", err)
	}
	if showCount {
		t.Fatalf("expected user override to hide the count")
	}
	if trace.Path != "show_count" || len(trace.Layers) != 2 {
		t.Fatalf("unexpected trace contents: %+v", trace)
	}

	title, _, err := resolver.ResolveString("title")
	if err != nil {
		t.Fatalf("resolve string: %v", err)
	}
	if title != "Archives" {
		t.Fatalf("expected title Archives, got %s", title)
	}

	categories, _, err := resolver.ResolveStringSlice("categories")
	if err != nil {
		t.Fatalf("resolve list: %v", err)
	}
	if len(categories) != 1 || categories[0] != "beta" {
		t.Fatalf("categories merge incorrect: %+v", categories)
	}

	if _, err := resolver.Schema(); err != nil {
		t.Fatalf("schema: %v", err)
	}
}

func TestNewResolverValidation(t *testing.T) {
	_, err := NewResolver()
	if err != ErrNoSnapshots {
		t.Fatalf("expected ErrNoSnapshots, got %v", err)
	}

	_, err = NewResolver(Snapshot{
		Scope: opts.Scope{},
		Data:  map[string]any{},
	})
	if err == nil {
		t.Fatalf("expected error for missing scope name")
	}
}

func TestInstanceSnapshotsLayerSettings(t *testing.T) {
	widget := domain.Widget{
		WidgetID:  "archives-2",
		SidebarID: "footer",
		IDBase:    "archives",
		Settings:  domain.JSONMap{"title": "Old posts"},
	}
	snapshots := InstanceSnapshots(widget,
		map[string]any{"title": "Archives", "dropdown": false, "count": false},
		map[string]any{"count": true},
	)
	if len(snapshots) != 3 {
		t.Fatalf("expected 3 snapshots, got %d", len(snapshots))
	}

	resolver, err := NewResolver(snapshots...)
	if err != nil {
		t.Fatalf("NewResolver: %v", err)
	}
	keys := resolver.Keys()
	if len(keys) != 3 || keys[0] != "count" || keys[1] != "dropdown" || keys[2] != "title" {
		t.Fatalf("unexpected keys %v", keys)
	}

	values, traces, err := resolver.Flatten()
	if err != nil {
		t.Fatalf("flatten: %v", err)
	}
	if values["title"] != "Old posts" || values["count"] != true || values["dropdown"] != false {
		t.Fatalf("unexpected values %#v", values)
	}
	if traces["title"].Path != "title" {
		t.Fatalf("expected trace per key, got %+v", traces["title"])
	}
}

func TestInstanceSnapshotsSkipEmptyDefaults(t *testing.T) {
	snapshots := InstanceSnapshots(domain.Widget{WidgetID: "text-1"}, nil, nil)
	if len(snapshots) != 1 || snapshots[0].Scope.Name != InstanceScope.Name {
		t.Fatalf("expected only the instance snapshot, got %+v", snapshots)
	}
}
