package sidebars

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	gotemplate "github.com/goliatone/go-template"
	"github.com/goliatone/go-widgets/pkg/domain"
)

// DefaultTemplate wraps every widget of a sidebar in a section element.
const DefaultTemplate = `{% for widget in widgets %}<section id="{{ widget.id }}" class="widget widget_{{ widget.id_base }}">` +
	`{% if widget.title %}<h2 class="widget-title">{{ widget.title }}</h2>{% endif %}` +
	`{{ widget.html|safe }}</section>{% endfor %}`

// Renderer turns stored sidebars into HTML through a go-template layout.
type Renderer struct {
	svc      *Service
	engine   *gotemplate.Engine
	template string
	mu       sync.Mutex
}

// NewRenderer builds a renderer over svc. An empty layout uses DefaultTemplate.
func NewRenderer(svc *Service, layout string) (*Renderer, error) {
	if svc == nil {
		return nil, errors.New("sidebars: service is required")
	}
	engine, err := gotemplate.NewRenderer(gotemplate.WithBaseDir("."))
	if err != nil {
		return nil, fmt.Errorf("sidebars: renderer: %w", err)
	}
	if strings.TrimSpace(layout) == "" {
		layout = DefaultTemplate
	}
	return &Renderer{svc: svc, engine: engine, template: layout}, nil
}

// Render renders the widgets of a sidebar in position order.
func (r *Renderer) Render(ctx context.Context, sidebarID string) (string, error) {
	sidebarID = strings.TrimSpace(sidebarID)
	if sidebarID == "" {
		return "", ErrSidebarRequired
	}
	stored, err := r.svc.repo.ListBySidebar(ctx, sidebarID)
	if err != nil {
		return "", err
	}
	widgets := make([]map[string]any, 0, len(stored))
	for i := range stored {
		view, err := r.widgetView(&stored[i])
		if err != nil {
			return "", err
		}
		widgets = append(widgets, view)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	out, err := r.engine.RenderString(r.template, map[string]any{
		"sidebar_id": sidebarID,
		"widgets":    widgets,
	})
	if err != nil {
		return "", fmt.Errorf("sidebars: render %s: %w", sidebarID, err)
	}
	return out, nil
}

func (r *Renderer) widgetView(widget *domain.Widget) (map[string]any, error) {
	block, err := r.svc.transformer.WidgetToBlock(widget.Record())
	if err != nil {
		return nil, err
	}
	html, err := r.svc.codec.RenderHTML(block)
	if err != nil {
		return nil, err
	}
	title, _ := widget.Settings["title"].(string)
	return map[string]any{
		"id":      widget.WidgetID,
		"id_base": widget.IDBase,
		"title":   title,
		"html":    html,
	}, nil
}
