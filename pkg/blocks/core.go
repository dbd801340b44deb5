package blocks

import (
	"fmt"
	"html"
	"strings"

	"github.com/goliatone/go-widgets/pkg/domain"
)

// Core block names used across the module.
const (
	FreeformBlockName = "core/freeform"
	HeadingBlockName  = "core/heading"
	HTMLBlockName     = "core/html"
	NextPageBlockName = "core/nextpage"
	GroupBlockName    = "core/group"
	// PageBreakMarker separates pages of paginated content.
	PageBreakMarker = "<!--nextpage-->"
)

// CoreBlockTypes returns the block types every registry starts with.
func CoreBlockTypes() []BlockType {
	return []BlockType{
		{
			Name:  domain.ParagraphBlockName,
			Title: "Paragraph",
			Attributes: []Attribute{
				{Name: "content", Source: SourceHTML, Selector: "p"},
				{Name: "dropCap", Default: false},
			},
			Save: func(attrs map[string]any, _ string) string {
				return "<p" + classAttr(attrs) + ">" + stringAttr(attrs, "content") + "</p>"
			},
		},
		{
			Name:  HeadingBlockName,
			Title: "Heading",
			Attributes: []Attribute{
				{Name: "content", Source: SourceHTML, Selector: "h1,h2,h3,h4,h5,h6"},
				{Name: "level", Default: 2},
				{Name: "anchor"},
			},
			Save: func(attrs map[string]any, _ string) string {
				level := intAttr(attrs, "level", 2)
				if anchor := stringAttr(attrs, "anchor"); anchor != "" {
					return fmt.Sprintf(`<h%d id="%s"%s>%s</h%d>`, level, html.EscapeString(anchor), classAttr(attrs), stringAttr(attrs, "content"), level)
				}
				return fmt.Sprintf("<h%d%s>%s</h%d>", level, classAttr(attrs), stringAttr(attrs, "content"), level)
			},
		},
		{
			Name:       HTMLBlockName,
			Title:      "Custom HTML",
			Attributes: []Attribute{{Name: "content", Source: SourceRaw}},
			Save: func(attrs map[string]any, _ string) string {
				return stringAttr(attrs, "content")
			},
		},
		{
			Name:          FreeformBlockName,
			Title:         "Classic",
			Attributes:    []Attribute{{Name: "content", Source: SourceRaw}},
			Delimiterless: true,
			Save: func(attrs map[string]any, _ string) string {
				return stringAttr(attrs, "content")
			},
		},
		{
			Name:  NextPageBlockName,
			Title: "Page Break",
			Save: func(map[string]any, string) string {
				return PageBreakMarker
			},
		},
		{
			Name:  GroupBlockName,
			Title: "Group",
			Attributes: []Attribute{
				{Name: "tagName", Default: "div"},
			},
			Save: func(attrs map[string]any, inner string) string {
				tag := stringAttr(attrs, "tagName")
				if tag == "" {
					tag = "div"
				}
				return fmt.Sprintf(`<%s class="wp-block-group">%s</%s>`, tag, inner, tag)
			},
		},
		{
			Name:  domain.LegacyWidgetBlockName,
			Title: "Legacy Widget",
			Attributes: []Attribute{
				{Name: "id"},
				{Name: "idBase"},
				{Name: "instance"},
				{Name: "name"},
				{Name: "form"},
				{Name: "number"},
				{Name: "referenceWidgetName"},
				{Name: "widgetClass"},
			},
		},
	}
}

func stringAttr(attrs map[string]any, key string) string {
	switch v := attrs[key].(type) {
	case string:
		return v
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}

// classAttr renders the custom className attribute onto the saved element.
func classAttr(attrs map[string]any) string {
	class := strings.TrimSpace(stringAttr(attrs, "className"))
	if class == "" {
		return ""
	}
	return ` class="` + html.EscapeString(class) + `"`
}

func intAttr(attrs map[string]any, key string, fallback int) int {
	if n, ok := toFloat(attrs[key]); ok {
		return int(n)
	}
	return fallback
}

func toFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case float32:
		return float64(v), true
	case float64:
		return v, true
	default:
		return 0, false
	}
}
