package transformer

import (
	"encoding/json"
	"errors"
	"reflect"
	"strings"
	"sync"
	"testing"

	"github.com/goliatone/go-widgets/pkg/blocks"
	"github.com/goliatone/go-widgets/pkg/domain"
)

func intPtr(v int) *int { return &v }

func TestWidgetToBlockReferenceWidget(t *testing.T) {
	block, err := WidgetToBlock(domain.WidgetRecord{
		ID:       "w1",
		IDBase:   "search",
		Settings: map[string]any{"title": "Search"},
	})
	if err != nil {
		t.Fatalf("widget to block: %v", err)
	}
	if block.Name != domain.LegacyWidgetBlockName {
		t.Fatalf("expected legacy widget block, got %s", block.Name)
	}
	want := map[string]any{
		"idBase":                         "search",
		"instance":                       map[string]any{"title": "Search"},
		"referenceWidgetName":            "w1",
		domain.InternalWidgetIDAttribute: "w1",
	}
	if !reflect.DeepEqual(block.Attributes, want) {
		t.Fatalf("unexpected attributes:\n got %#v\nwant %#v", block.Attributes, want)
	}
	if len(block.InnerBlocks) != 0 {
		t.Fatalf("expected no inner blocks")
	}
}

func TestWidgetToBlockClassBasedWidget(t *testing.T) {
	block, err := WidgetToBlock(domain.WidgetRecord{
		ID:          "search-2",
		IDBase:      "search",
		WidgetClass: "WP_Widget_Search",
		Name:        "Search",
		Form:        "<form></form>",
		Number:      intPtr(2),
		Settings:    map[string]any{"title": "Find"},
	})
	if err != nil {
		t.Fatalf("widget to block: %v", err)
	}
	if block.Attributes["widgetClass"] != "WP_Widget_Search" {
		t.Fatalf("expected widgetClass, got %#v", block.Attributes)
	}
	if _, ok := block.Attributes["referenceWidgetName"]; ok {
		t.Fatalf("class based widget must not carry referenceWidgetName")
	}
	if block.Attributes["number"] != 2 || block.Attributes["name"] != "Search" || block.Attributes["form"] != "<form></form>" {
		t.Fatalf("expected name, form and number attributes, got %#v", block.Attributes)
	}
	if id, _ := block.WidgetID(); id != "search-2" {
		t.Fatalf("expected widget id tag, got %q", id)
	}
}

func TestWidgetToBlockBlockBacked(t *testing.T) {
	block, err := WidgetToBlock(domain.WidgetRecord{
		ID:          "block-3",
		IDBase:      domain.BlockWidgetIDBase,
		WidgetClass: domain.BlockBackedWidgetClass,
		Settings:    map[string]any{"content": "<!-- wp:heading {\"level\":3} --><h3>News</h3><!-- /wp:heading -->"},
	})
	if err != nil {
		t.Fatalf("widget to block: %v", err)
	}
	if block.Name != blocks.HeadingBlockName {
		t.Fatalf("expected heading, got %s", block.Name)
	}
	if block.Attributes["content"] != "News" || block.Attributes["level"] != float64(3) {
		t.Fatalf("parsed attributes not preserved: %#v", block.Attributes)
	}
	if id, _ := block.WidgetID(); id != "block-3" {
		t.Fatalf("expected widget id tag, got %q", id)
	}
}

func TestWidgetToBlockFallsBackToParagraph(t *testing.T) {
	for _, content := range []any{"", "   ", nil} {
		settings := map[string]any{}
		if content != nil {
			settings["content"] = content
		}
		block, err := WidgetToBlock(domain.WidgetRecord{
			ID:          "block-9",
			WidgetClass: domain.BlockBackedWidgetClass,
			Settings:    settings,
		})
		if err != nil {
			t.Fatalf("content %#v: %v", content, err)
		}
		if block.Name != domain.ParagraphBlockName {
			t.Fatalf("content %#v: expected paragraph fallback, got %s", content, block.Name)
		}
		if id, _ := block.WidgetID(); id != "block-9" {
			t.Fatalf("content %#v: expected widget id tag, got %q", content, id)
		}
		if len(block.InnerBlocks) != 0 {
			t.Fatalf("expected fallback without inner blocks")
		}
	}
}

func TestWidgetToBlockKeepsFirstParsedBlock(t *testing.T) {
	content := "<!-- wp:paragraph --><p>A</p><!-- /wp:paragraph -->\n\n<!-- wp:paragraph --><p>B</p><!-- /wp:paragraph -->"
	block, err := WidgetToBlock(domain.WidgetRecord{
		ID:          "block-1",
		WidgetClass: domain.BlockBackedWidgetClass,
		Settings:    map[string]any{"content": content},
	})
	if err != nil {
		t.Fatalf("widget to block: %v", err)
	}
	if block.Attributes["content"] != "A" {
		t.Fatalf("expected first block, got %#v", block.Attributes)
	}
}

func TestWidgetToBlockRejectsMalformedRecords(t *testing.T) {
	cases := []struct {
		name  string
		field string
		rec   domain.WidgetRecord
	}{
		{
			name:  "missing settings",
			field: "settings",
			rec:   domain.WidgetRecord{ID: "block-1", WidgetClass: domain.BlockBackedWidgetClass},
		},
		{
			name:  "non string content",
			field: "settings.content",
			rec: domain.WidgetRecord{
				ID:          "block-2",
				WidgetClass: domain.BlockBackedWidgetClass,
				Settings:    map[string]any{"content": 42},
			},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := WidgetToBlock(tc.rec)
			if !errors.Is(err, ErrInvalidWidgetRecord) {
				t.Fatalf("expected ErrInvalidWidgetRecord, got %v", err)
			}
			var recordErr *RecordError
			if !errors.As(err, &recordErr) || recordErr.Field != tc.field || recordErr.WidgetID != tc.rec.ID {
				t.Fatalf("unexpected record error: %#v", err)
			}
		})
	}
}

func TestWidgetToBlockDoesNotShareSettings(t *testing.T) {
	settings := map[string]any{"title": "Search"}
	block, err := WidgetToBlock(domain.WidgetRecord{ID: "w1", IDBase: "search", Settings: settings})
	if err != nil {
		t.Fatalf("widget to block: %v", err)
	}
	block.Attributes["instance"].(map[string]any)["title"] = "changed"
	if settings["title"] != "Search" {
		t.Fatalf("widget settings were mutated")
	}
}

func TestBlockToWidgetGenericBlock(t *testing.T) {
	widget, err := BlockToWidget(domain.BlockNode{
		Name:       domain.ParagraphBlockName,
		Attributes: map[string]any{"content": "Hi"},
	}, domain.WidgetRecord{})
	if err != nil {
		t.Fatalf("block to widget: %v", err)
	}
	want := domain.WidgetRecord{
		IDBase:      domain.BlockWidgetIDBase,
		WidgetClass: domain.BlockBackedWidgetClass,
		Settings:    map[string]any{"content": "<!-- wp:paragraph --><p>Hi</p><!-- /wp:paragraph -->"},
	}
	if !reflect.DeepEqual(widget, want) {
		t.Fatalf("unexpected widget:\n got %#v\nwant %#v", widget, want)
	}
}

func TestBlockToWidgetCarriesRelatedFields(t *testing.T) {
	related := domain.WidgetRecord{
		ID:      "block-4",
		Number:  intPtr(4),
		Sidebar: "sidebar-1",
		Extra:   map[string]any{"custom": "kept"},
	}
	widget, err := BlockToWidget(domain.BlockNode{
		Name:       domain.ParagraphBlockName,
		Attributes: map[string]any{"content": "Hi"},
	}, related)
	if err != nil {
		t.Fatalf("block to widget: %v", err)
	}
	if widget.ID != "block-4" || widget.Number == nil || *widget.Number != 4 || widget.Sidebar != "sidebar-1" {
		t.Fatalf("related fields not carried: %#v", widget)
	}
	if widget.Extra["custom"] != "kept" {
		t.Fatalf("extra fields not carried: %#v", widget.Extra)
	}
	widget.Extra["custom"] = "changed"
	if related.Extra["custom"] != "kept" {
		t.Fatalf("related record was mutated")
	}
}

func TestBlockToWidgetReferenceStripsPresentation(t *testing.T) {
	related := domain.WidgetRecord{
		ID:       "old",
		IDBase:   "search",
		Form:     "<form></form>",
		Rendered: "<div>search</div>",
	}
	block := domain.BlockNode{
		Name: domain.LegacyWidgetBlockName,
		Attributes: map[string]any{
			"referenceWidgetName": "search-1",
			"instance":            map[string]any{"title": "Find"},
			"widgetClass":         "ignored",
		},
	}
	widget, err := BlockToWidget(block, related)
	if err != nil {
		t.Fatalf("block to widget: %v", err)
	}
	if widget.ID != "search-1" || widget.IDBase != "search" || widget.WidgetClass != "" {
		t.Fatalf("unexpected reference widget: %#v", widget)
	}
	if widget.Settings["title"] != "Find" {
		t.Fatalf("expected instance as settings, got %#v", widget.Settings)
	}
	assertNoPresentation(t, widget)
}

func TestBlockToWidgetClassBasedStripsPresentation(t *testing.T) {
	related := domain.WidgetRecord{
		ID:       "text-3",
		Number:   intPtr(3),
		Form:     "<form></form>",
		Rendered: "<p>text</p>",
	}
	block := domain.BlockNode{
		Name: domain.LegacyWidgetBlockName,
		Attributes: map[string]any{
			"widgetClass": "WP_Widget_Text",
			"idBase":      "text",
			"instance":    map[string]any{"text": "hello"},
		},
	}
	widget, err := BlockToWidget(block, related)
	if err != nil {
		t.Fatalf("block to widget: %v", err)
	}
	if widget.ID != "text-3" || widget.WidgetClass != "WP_Widget_Text" || widget.IDBase != "text" {
		t.Fatalf("unexpected class based widget: %#v", widget)
	}
	if widget.Number == nil || *widget.Number != 3 {
		t.Fatalf("expected number carried forward")
	}
	assertNoPresentation(t, widget)

	widget.Settings["text"] = "changed"
	if block.Attributes["instance"].(map[string]any)["text"] != "hello" {
		t.Fatalf("block instance was mutated")
	}
}

func assertNoPresentation(t *testing.T, widget domain.WidgetRecord) {
	t.Helper()
	if widget.Form != "" || widget.Rendered != "" {
		t.Fatalf("presentation fields survived: %#v", widget)
	}
	encoded, err := json.Marshal(widget)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if strings.Contains(string(encoded), `"form"`) || strings.Contains(string(encoded), `"rendered"`) {
		t.Fatalf("presentation keys in JSON: %s", encoded)
	}
}

func TestBlockToWidgetRejectsNonObjectInstance(t *testing.T) {
	_, err := BlockToWidget(domain.BlockNode{
		Name: domain.LegacyWidgetBlockName,
		Attributes: map[string]any{
			"idBase":   "text",
			"instance": "oops",
		},
	}, domain.WidgetRecord{})
	var recordErr *RecordError
	if !errors.As(err, &recordErr) || recordErr.Field != "instance" {
		t.Fatalf("expected instance record error, got %v", err)
	}
}

type failingCodec struct {
	Codec
	err error
}

func (f failingCodec) Serialize(domain.BlockNode) (string, error) {
	return "", f.err
}

func TestBlockToWidgetPropagatesSerializerErrors(t *testing.T) {
	boom := errors.New("boom")
	tr := New(WithCodec(failingCodec{Codec: blocks.DefaultCodec(), err: boom}))
	_, err := tr.BlockToWidget(domain.BlockNode{Name: domain.ParagraphBlockName}, domain.WidgetRecord{})
	if !errors.Is(err, boom) {
		t.Fatalf("expected serializer error, got %v", err)
	}
}

func TestGenericBlockRoundTrip(t *testing.T) {
	inputs := []domain.BlockNode{
		blocks.CreateBlock("core/paragraph", map[string]any{"content": "Hello <em>there</em>"}, nil),
		blocks.CreateBlock("core/heading", map[string]any{"content": "Title", "level": 4}, nil),
		blocks.CreateBlock("core/group", nil, []domain.BlockNode{
			blocks.CreateBlock("core/paragraph", map[string]any{"content": "Inner"}, nil),
		}),
	}
	for _, input := range inputs {
		widget, err := BlockToWidget(input, domain.WidgetRecord{ID: "block-1"})
		if err != nil {
			t.Fatalf("%s: block to widget: %v", input.Name, err)
		}
		back, err := WidgetToBlock(widget)
		if err != nil {
			t.Fatalf("%s: widget to block: %v", input.Name, err)
		}

		markup, err := blocks.Serialize(input)
		if err != nil {
			t.Fatalf("%s: serialize: %v", input.Name, err)
		}
		expected := blocks.Parse(markup)[0]

		attrs := make(map[string]any, len(back.Attributes))
		for k, v := range back.Attributes {
			attrs[k] = v
		}
		if attrs[domain.InternalWidgetIDAttribute] != "block-1" {
			t.Fatalf("%s: expected widget id tag", input.Name)
		}
		delete(attrs, domain.InternalWidgetIDAttribute)
		if !reflect.DeepEqual(attrs, expected.Attributes) {
			t.Fatalf("%s: round trip mismatch:\n got %#v\nwant %#v", input.Name, attrs, expected.Attributes)
		}
		if len(back.InnerBlocks) != len(expected.InnerBlocks) {
			t.Fatalf("%s: inner block count mismatch", input.Name)
		}
	}
}

func TestAddWidgetIDToBlockDoesNotMutateInput(t *testing.T) {
	input := domain.BlockNode{Name: "core/paragraph", Attributes: map[string]any{"content": "x"}}
	tagged := AddWidgetIDToBlock(input, "block-5")
	if _, ok := input.Attributes[domain.InternalWidgetIDAttribute]; ok {
		t.Fatalf("input block was mutated")
	}
	if tagged.Attributes["content"] != "x" || tagged.Attributes[domain.InternalWidgetIDAttribute] != "block-5" {
		t.Fatalf("unexpected tagged attributes: %#v", tagged.Attributes)
	}

	bare := AddWidgetIDToBlock(domain.BlockNode{Name: "core/html"}, "block-6")
	if id, ok := bare.WidgetID(); !ok || id != "block-6" {
		t.Fatalf("expected tag on block without attributes")
	}
}

func TestTransformerIsSafeForConcurrentUse(t *testing.T) {
	tr := New()
	widget := domain.WidgetRecord{
		ID:          "block-1",
		WidgetClass: domain.BlockBackedWidgetClass,
		Settings:    map[string]any{"content": "<!-- wp:paragraph --><p>Hi</p><!-- /wp:paragraph -->"},
	}
	var wg sync.WaitGroup
	errs := make(chan error, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			block, err := tr.WidgetToBlock(widget)
			if err != nil {
				errs <- err
				return
			}
			if _, err := tr.BlockToWidget(block, widget); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("concurrent conversion failed: %v", err)
	}
}
