package commands

import (
	"context"
	"errors"
	"testing"

	"github.com/goliatone/go-widgets/pkg/domain"
	"github.com/goliatone/go-widgets/pkg/sidebars"
	"github.com/goliatone/go-widgets/pkg/storage"
)

func newSidebars(t *testing.T) *sidebars.Service {
	t.Helper()
	providers := storage.NewMemoryProviders()
	svc, err := sidebars.NewService(sidebars.Dependencies{
		Repository:   providers.Widgets,
		Transactions: providers.Transaction,
	})
	if err != nil {
		t.Fatalf("sidebars service: %v", err)
	}
	return svc
}

func TestCatalogCommands(t *testing.T) {
	ctx := context.Background()
	svc := newSidebars(t)

	cat, err := NewCatalog(Dependencies{Sidebars: svc})
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}

	markup := "<!-- wp:paragraph --><p>One</p><!-- /wp:paragraph -->\n\n<!-- wp:heading --><h2>Two</h2><!-- /wp:heading -->"
	if err := cat.SaveSidebar.Execute(ctx, SaveSidebar{SidebarID: "sidebar-1", Markup: markup, ActorID: "admin"}); err != nil {
		t.Fatalf("save sidebar: %v", err)
	}
	loaded, err := svc.Load(ctx, "sidebar-1")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(loaded) != 2 || loaded[1].Name != "core/heading" {
		t.Fatalf("unexpected sidebar contents %#v", loaded)
	}

	err = cat.ImportWidget.Execute(ctx, ImportWidget{
		SidebarID: "sidebar-1",
		Widget: domain.WidgetRecord{
			IDBase:      "search",
			WidgetClass: "WP_Widget_Search",
			Settings:    map[string]any{"title": "Find"},
		},
	})
	if err != nil {
		t.Fatalf("import widget: %v", err)
	}
	loaded, _ = svc.Load(ctx, "sidebar-1")
	if len(loaded) != 3 {
		t.Fatalf("expected imported widget appended, got %d", len(loaded))
	}
	if id, _ := loaded[2].WidgetID(); id != "search-1" {
		t.Fatalf("unexpected imported id %s", id)
	}

	if err := cat.DeleteWidget.Execute(ctx, DeleteWidget{WidgetID: "search-1"}); err != nil {
		t.Fatalf("delete widget: %v", err)
	}
	loaded, _ = svc.Load(ctx, "sidebar-1")
	if len(loaded) != 2 {
		t.Fatalf("expected widget removed, got %d", len(loaded))
	}
}

func TestCatalogPropagatesErrors(t *testing.T) {
	cat, err := NewCatalog(Dependencies{Sidebars: newSidebars(t)})
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	err = cat.SaveSidebar.Execute(context.Background(), SaveSidebar{Markup: "<p>x</p>"})
	if !errors.Is(err, sidebars.ErrSidebarRequired) {
		t.Fatalf("expected sidebar required, got %v", err)
	}
	if err := cat.DeleteWidget.Execute(context.Background(), DeleteWidget{}); !errors.Is(err, sidebars.ErrWidgetRequired) {
		t.Fatalf("expected widget required, got %v", err)
	}
}

func TestNewCatalogRequiresSidebars(t *testing.T) {
	if _, err := NewCatalog(Dependencies{}); err == nil {
		t.Fatalf("expected error without sidebars service")
	}
}
