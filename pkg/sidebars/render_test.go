package sidebars

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/goliatone/go-widgets/pkg/config"
	"github.com/goliatone/go-widgets/pkg/domain"
	"github.com/goliatone/go-widgets/pkg/storage"
)

func TestRendererRendersSidebar(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, storage.NewMemoryProviders(), config.SidebarsConfig{}, false)
	if _, err := svc.Save(ctx, SaveInput{SidebarID: "sidebar-1", Blocks: []domain.BlockNode{paragraph("Hi"), searchWidget("Find")}}); err != nil {
		t.Fatalf("save: %v", err)
	}

	renderer, err := NewRenderer(svc, "")
	if err != nil {
		t.Fatalf("renderer: %v", err)
	}
	out, err := renderer.Render(ctx, "sidebar-1")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	for _, want := range []string{`id="block-1"`, "<p>Hi</p>", `id="search-1"`, "Find"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in %s", want, out)
		}
	}
	if strings.Index(out, "block-1") > strings.Index(out, "search-1") {
		t.Fatalf("expected position order: %s", out)
	}
}

func TestRendererCustomTemplate(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, storage.NewMemoryProviders(), config.SidebarsConfig{}, false)
	if _, err := svc.Save(ctx, SaveInput{SidebarID: "footer", Blocks: []domain.BlockNode{searchWidget("Find")}}); err != nil {
		t.Fatalf("save: %v", err)
	}
	renderer, err := NewRenderer(svc, `{{ sidebar_id }}:{% for widget in widgets %}{{ widget.id }}{% endfor %}`)
	if err != nil {
		t.Fatalf("renderer: %v", err)
	}
	out, err := renderer.Render(ctx, "footer")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if out != "footer:search-1" {
		t.Fatalf("unexpected output %q", out)
	}
	if _, err := renderer.Render(ctx, " "); !errors.Is(err, ErrSidebarRequired) {
		t.Fatalf("expected sidebar required, got %v", err)
	}
}
