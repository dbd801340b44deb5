package domain

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// RecordMeta captures identifiers and audit fields shared across entities.
type RecordMeta struct {
	ID        uuid.UUID `bun:",pk,type:uuid" json:"id"`
	CreatedAt time.Time `bun:",nullzero,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt time.Time `bun:",nullzero,notnull,default:current_timestamp" json:"updated_at"`
	DeletedAt time.Time `bun:",soft_delete,nullzero" json:"deleted_at,omitempty"`
}

// EnsureID assigns a UUID when the struct is about to be persisted.
func (m *RecordMeta) EnsureID() {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
}

// JSONMap persists arbitrary settings fields as JSON.
type JSONMap map[string]any

// Value implements driver.Valuer.
func (m JSONMap) Value() (driver.Value, error) {
	if m == nil {
		return []byte("null"), nil
	}
	return json.Marshal(m)
}

// Scan implements sql.Scanner.
func (m *JSONMap) Scan(value any) error {
	if m == nil {
		return errors.New("JSONMap: Scan on nil pointer")
	}
	switch v := value.(type) {
	case nil:
		*m = nil
		return nil
	case []byte:
		return json.Unmarshal(v, m)
	case string:
		return json.Unmarshal([]byte(v), m)
	default:
		return fmt.Errorf("JSONMap: unsupported type %T", value)
	}
}

// Widget is the persisted form of a widget instance placed in a sidebar.
type Widget struct {
	bun.BaseModel `bun:"table:widgets"`
	RecordMeta

	WidgetID    string  `bun:",nullzero,notnull" json:"widget_id"`
	SidebarID   string  `bun:",nullzero" json:"sidebar_id"`
	Position    int     `bun:",notnull" json:"position"`
	IDBase      string  `bun:",nullzero" json:"id_base"`
	WidgetClass string  `bun:",nullzero" json:"widget_class,omitempty"`
	Name        string  `bun:",nullzero" json:"name,omitempty"`
	Number      int     `bun:",nullzero" json:"number,omitempty"`
	Settings    JSONMap `bun:"type:jsonb,nullzero" json:"settings,omitempty"`
	// Extra keeps fields the widget record carried that have no column.
	Extra JSONMap `bun:"type:jsonb,nullzero" json:"extra,omitempty"`
}

// Record converts the stored widget into the transient widget record shape.
func (w *Widget) Record() WidgetRecord {
	if w == nil {
		return WidgetRecord{}
	}
	record := WidgetRecord{
		ID:          w.WidgetID,
		IDBase:      w.IDBase,
		WidgetClass: w.WidgetClass,
		Name:        w.Name,
		Settings:    cloneMap(w.Settings),
		Sidebar:     w.SidebarID,
		Extra:       cloneMap(w.Extra),
	}
	if w.Number > 0 {
		number := w.Number
		record.Number = &number
	}
	return record
}

// Apply copies the persistable fields of record onto the stored widget and
// places it at position inside sidebarID. Presentation fields are ignored.
func (w *Widget) Apply(record WidgetRecord, sidebarID string, position int) {
	w.WidgetID = record.ID
	w.SidebarID = sidebarID
	w.Position = position
	w.IDBase = record.IDBase
	w.WidgetClass = record.WidgetClass
	w.Name = record.Name
	w.Number = 0
	if record.Number != nil {
		w.Number = *record.Number
	}
	w.Settings = JSONMap(cloneMap(record.Settings))
	w.Extra = JSONMap(cloneMap(record.Extra))
}

// NewWidget builds a stored widget from a widget record.
func NewWidget(record WidgetRecord, sidebarID string, position int) *Widget {
	w := &Widget{}
	w.Apply(record, sidebarID, position)
	return w
}

func cloneMap(src map[string]any) map[string]any {
	if src == nil {
		return nil
	}
	out := make(map[string]any, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}
