package domain

import (
	"encoding/json"
)

const (
	// BlockBackedWidgetClass marks a widget whose settings.content is itself
	// serialized block markup.
	BlockBackedWidgetClass = "WP_Widget_Block"
	// BlockWidgetIDBase is the id_base given to block-backed widgets.
	BlockWidgetIDBase = "block"
)

// WidgetKind is the variant of a widget record, computed once when the record
// crosses into the transformer.
type WidgetKind int

const (
	// WidgetKindClassBased widgets name their implementing class directly.
	WidgetKindClassBased WidgetKind = iota
	// WidgetKindReference widgets have no class; their id names the implementation.
	WidgetKindReference
	// WidgetKindBlockBacked widgets carry serialized block markup in settings.content.
	WidgetKindBlockBacked
)

func (k WidgetKind) String() string {
	switch k {
	case WidgetKindReference:
		return "reference"
	case WidgetKindBlockBacked:
		return "block_backed"
	default:
		return "class_based"
	}
}

// WidgetRecord is the legacy external representation of a widget instance.
// Keys without a dedicated field are preserved in Extra and round-trip
// through JSON, so copying a record carries every field forward.
type WidgetRecord struct {
	ID          string         `json:"id,omitempty"`
	IDBase      string         `json:"id_base,omitempty"`
	WidgetClass string         `json:"widget_class,omitempty"`
	Name        string         `json:"name,omitempty"`
	Form        string         `json:"form,omitempty"`
	Settings    map[string]any `json:"settings,omitempty"`
	Number      *int           `json:"number,omitempty"`
	Rendered    string         `json:"rendered,omitempty"`
	Sidebar     string         `json:"sidebar,omitempty"`
	Extra       map[string]any `json:"-"`
}

var widgetRecordKeys = []string{
	"id", "id_base", "widget_class", "name", "form",
	"settings", "number", "rendered", "sidebar",
}

// Kind reports which variant the record is.
func (w WidgetRecord) Kind() WidgetKind {
	switch {
	case w.WidgetClass == BlockBackedWidgetClass:
		return WidgetKindBlockBacked
	case w.WidgetClass == "":
		return WidgetKindReference
	default:
		return WidgetKindClassBased
	}
}

// Clone returns a copy whose top-level maps are not shared with w.
func (w WidgetRecord) Clone() WidgetRecord {
	out := w
	out.Settings = cloneMap(w.Settings)
	out.Extra = cloneMap(w.Extra)
	if w.Number != nil {
		number := *w.Number
		out.Number = &number
	}
	return out
}

// MarshalJSON flattens Extra next to the known fields.
func (w WidgetRecord) MarshalJSON() ([]byte, error) {
	type alias WidgetRecord
	known, err := json.Marshal(alias(w))
	if err != nil {
		return nil, err
	}
	if len(w.Extra) == 0 {
		return known, nil
	}
	merged := make(map[string]any, len(w.Extra)+len(widgetRecordKeys))
	for k, v := range w.Extra {
		merged[k] = v
	}
	var fields map[string]any
	if err := json.Unmarshal(known, &fields); err != nil {
		return nil, err
	}
	for k, v := range fields {
		merged[k] = v
	}
	return json.Marshal(merged)
}

// UnmarshalJSON decodes the known fields and keeps the rest in Extra.
func (w *WidgetRecord) UnmarshalJSON(data []byte) error {
	type alias WidgetRecord
	var known alias
	if err := json.Unmarshal(data, &known); err != nil {
		return err
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	for _, key := range widgetRecordKeys {
		delete(raw, key)
	}
	if len(raw) > 0 {
		known.Extra = make(map[string]any, len(raw))
		for key, value := range raw {
			var decoded any
			if err := json.Unmarshal(value, &decoded); err != nil {
				return err
			}
			known.Extra[key] = decoded
		}
	}
	*w = WidgetRecord(known)
	return nil
}

// WidgetBuilder derives a new widget record from a related one plus a set of
// named overrides. The related record is never mutated.
type WidgetBuilder struct {
	record WidgetRecord
}

// NewWidgetBuilder seeds the builder with a copy of related.
func NewWidgetBuilder(related WidgetRecord) *WidgetBuilder {
	return &WidgetBuilder{record: related.Clone()}
}

func (b *WidgetBuilder) WithID(id string) *WidgetBuilder {
	b.record.ID = id
	return b
}

func (b *WidgetBuilder) WithIDBase(idBase string) *WidgetBuilder {
	b.record.IDBase = idBase
	return b
}

func (b *WidgetBuilder) WithWidgetClass(class string) *WidgetBuilder {
	b.record.WidgetClass = class
	return b
}

// WithSettings replaces settings with a shallow copy of settings.
func (b *WidgetBuilder) WithSettings(settings map[string]any) *WidgetBuilder {
	b.record.Settings = cloneMap(settings)
	return b
}

// WithoutPresentation drops form and rendered, which must never be persisted.
func (b *WidgetBuilder) WithoutPresentation() *WidgetBuilder {
	b.record.Form = ""
	b.record.Rendered = ""
	return b
}

// Build returns the assembled record.
func (b *WidgetBuilder) Build() WidgetRecord {
	return b.record.Clone()
}
