package domain

import (
	"encoding/json"
	"testing"
)

func TestWidgetRecordKind(t *testing.T) {
	cases := []struct {
		class string
		want  WidgetKind
	}{
		{class: "", want: WidgetKindReference},
		{class: "WP_Widget_Search", want: WidgetKindClassBased},
		{class: BlockBackedWidgetClass, want: WidgetKindBlockBacked},
	}
	for _, tc := range cases {
		got := WidgetRecord{WidgetClass: tc.class}.Kind()
		if got != tc.want {
			t.Fatalf("class %q: expected %s, got %s", tc.class, tc.want, got)
		}
	}
}

func TestWidgetRecordJSONKeepsUnknownFields(t *testing.T) {
	payload := []byte(`{"id":"search-2","id_base":"search","number":2,"settings":{"title":"Find"},"rendered_form":"<p></p>","custom":true}`)

	var record WidgetRecord
	if err := json.Unmarshal(payload, &record); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if record.ID != "search-2" || record.IDBase != "search" {
		t.Fatalf("unexpected known fields: %+v", record)
	}
	if record.Number == nil || *record.Number != 2 {
		t.Fatalf("expected number 2, got %v", record.Number)
	}
	if record.Extra["custom"] != true || record.Extra["rendered_form"] != "<p></p>" {
		t.Fatalf("expected extra fields, got %#v", record.Extra)
	}

	encoded, err := json.Marshal(record)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var out map[string]any
	if err := json.Unmarshal(encoded, &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out["custom"] != true || out["id"] != "search-2" {
		t.Fatalf("expected flattened output, got %s", encoded)
	}
	if _, ok := out["form"]; ok {
		t.Fatalf("expected empty form to be omitted: %s", encoded)
	}
}

func TestWidgetBuilderDoesNotMutateRelated(t *testing.T) {
	number := 3
	related := WidgetRecord{
		ID:       "text-3",
		Form:     "<form></form>",
		Rendered: "<div></div>",
		Settings: map[string]any{"text": "a"},
		Number:   &number,
	}

	built := NewWidgetBuilder(related).
		WithSettings(map[string]any{"text": "b"}).
		WithoutPresentation().
		Build()

	if built.Form != "" || built.Rendered != "" {
		t.Fatalf("expected presentation fields dropped: %+v", built)
	}
	if related.Form == "" || related.Settings["text"] != "a" {
		t.Fatalf("related record mutated: %+v", related)
	}
	*built.Number = 9
	if number != 3 {
		t.Fatalf("number pointer shared with related record")
	}
}

func TestWidgetStoredRoundTrip(t *testing.T) {
	number := 4
	record := WidgetRecord{
		ID:          "text-4",
		IDBase:      "text",
		WidgetClass: "WP_Widget_Text",
		Settings:    map[string]any{"title": "Hi"},
		Number:      &number,
		Form:        "<form/>",
		Extra:       map[string]any{"custom": "x"},
	}
	stored := NewWidget(record, "sidebar-1", 2)
	if stored.SidebarID != "sidebar-1" || stored.Position != 2 || stored.Number != 4 {
		t.Fatalf("unexpected stored widget: %+v", stored)
	}

	back := stored.Record()
	if back.ID != "text-4" || back.Sidebar != "sidebar-1" || back.Form != "" {
		t.Fatalf("unexpected record: %+v", back)
	}
	if back.Number == nil || *back.Number != 4 || back.Extra["custom"] != "x" {
		t.Fatalf("expected number and extra preserved: %+v", back)
	}
}
