package transformer

import (
	"fmt"

	"github.com/goliatone/go-widgets/pkg/blocks"
	"github.com/goliatone/go-widgets/pkg/domain"
	"github.com/goliatone/go-widgets/pkg/interfaces/logger"
)

// Codec is the block parser, serializer and constructor the transformer
// depends on. *blocks.Codec satisfies it.
type Codec interface {
	Parse(markup string) []domain.BlockNode
	Serialize(block domain.BlockNode) (string, error)
	CreateBlock(name string, attributes map[string]any, inner []domain.BlockNode) domain.BlockNode
}

var _ Codec = (*blocks.Codec)(nil)

// Option customizes a Transformer.
type Option func(*Transformer)

// WithCodec swaps the block codec.
func WithCodec(codec Codec) Option {
	return func(t *Transformer) {
		if codec != nil {
			t.codec = codec
		}
	}
}

// WithLogger sets the logger used for debug output.
func WithLogger(lgr logger.Logger) Option {
	return func(t *Transformer) {
		if lgr != nil {
			t.logger = lgr
		}
	}
}

// Transformer maps widget records to block nodes and back. It holds no
// mutable state and is safe for concurrent use.
type Transformer struct {
	codec  Codec
	logger logger.Logger
}

// New builds a transformer over the default block codec.
func New(opts ...Option) *Transformer {
	t := &Transformer{
		codec:  blocks.DefaultCodec(),
		logger: &logger.Nop{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(t)
		}
	}
	return t
}

// WidgetToBlock converts a widget record into a block tagged with the
// widget's id.
func (t *Transformer) WidgetToBlock(widget domain.WidgetRecord) (domain.BlockNode, error) {
	switch widget.Kind() {
	case domain.WidgetKindBlockBacked:
		return t.blockBackedToBlock(widget)
	case domain.WidgetKindReference:
		attrs := legacyAttributes(widget)
		attrs["referenceWidgetName"] = widget.ID
		return AddWidgetIDToBlock(t.codec.CreateBlock(domain.LegacyWidgetBlockName, attrs, nil), widget.ID), nil
	default:
		attrs := legacyAttributes(widget)
		attrs["widgetClass"] = widget.WidgetClass
		return AddWidgetIDToBlock(t.codec.CreateBlock(domain.LegacyWidgetBlockName, attrs, nil), widget.ID), nil
	}
}

func (t *Transformer) blockBackedToBlock(widget domain.WidgetRecord) (domain.BlockNode, error) {
	if widget.Settings == nil {
		return domain.BlockNode{}, &RecordError{WidgetID: widget.ID, Field: "settings", Reason: "is missing"}
	}
	content := ""
	if raw, ok := widget.Settings["content"]; ok && raw != nil {
		str, ok := raw.(string)
		if !ok {
			return domain.BlockNode{}, &RecordError{
				WidgetID: widget.ID,
				Field:    "settings.content",
				Reason:   fmt.Sprintf("must be a string, got %T", raw),
			}
		}
		content = str
	}

	parsed := t.codec.Parse(content)
	if len(parsed) == 0 {
		fallback := t.codec.CreateBlock(domain.ParagraphBlockName, map[string]any{}, []domain.BlockNode{})
		return AddWidgetIDToBlock(fallback, widget.ID), nil
	}
	if len(parsed) > 1 {
		t.logger.Debug("block widget holds more than one top level block, keeping the first",
			logger.Field{Key: "widget_id", Value: widget.ID},
			logger.Field{Key: "discarded", Value: len(parsed) - 1},
		)
	}
	return AddWidgetIDToBlock(parsed[0], widget.ID), nil
}

func legacyAttributes(widget domain.WidgetRecord) map[string]any {
	attrs := make(map[string]any, 6)
	if widget.IDBase != "" {
		attrs["idBase"] = widget.IDBase
	}
	if widget.Settings != nil {
		attrs["instance"] = cloneSettings(widget.Settings)
	}
	if widget.Name != "" {
		attrs["name"] = widget.Name
	}
	if widget.Form != "" {
		attrs["form"] = widget.Form
	}
	if widget.Number != nil {
		attrs["number"] = *widget.Number
	}
	return attrs
}

// BlockToWidget converts a block into a widget record. Fields of related that
// are not overridden carry forward; pass the zero record when there is none.
func (t *Transformer) BlockToWidget(block domain.BlockNode, related domain.WidgetRecord) (domain.WidgetRecord, error) {
	if block.Name != domain.LegacyWidgetBlockName {
		content, err := t.codec.Serialize(block)
		if err != nil {
			return domain.WidgetRecord{}, err
		}
		return domain.NewWidgetBuilder(related).
			WithIDBase(domain.BlockWidgetIDBase).
			WithWidgetClass(domain.BlockBackedWidgetClass).
			WithSettings(map[string]any{"content": content}).
			Build(), nil
	}

	instance, err := instanceAttribute(block)
	if err != nil {
		return domain.WidgetRecord{}, err
	}

	builder := domain.NewWidgetBuilder(related)
	if reference, ok := block.Attributes["referenceWidgetName"].(string); ok && reference != "" {
		builder.WithID(reference).WithSettings(instance)
	} else {
		widgetClass, _ := block.Attributes["widgetClass"].(string)
		idBase, _ := block.Attributes["idBase"].(string)
		builder.WithWidgetClass(widgetClass).WithIDBase(idBase).WithSettings(instance)
	}
	return builder.WithoutPresentation().Build(), nil
}

func instanceAttribute(block domain.BlockNode) (map[string]any, error) {
	raw, ok := block.Attributes["instance"]
	if !ok || raw == nil {
		return nil, nil
	}
	instance, ok := raw.(map[string]any)
	if !ok {
		id, _ := block.WidgetID()
		return nil, &RecordError{
			WidgetID: id,
			Field:    "instance",
			Reason:   fmt.Sprintf("must be an object, got %T", raw),
		}
	}
	return instance, nil
}

// AddWidgetIDToBlock returns a copy of block whose attributes also carry the
// widget id join key.
func AddWidgetIDToBlock(block domain.BlockNode, widgetID string) domain.BlockNode {
	out := block.Clone()
	if out.Attributes == nil {
		out.Attributes = make(map[string]any, 1)
	}
	out.Attributes[domain.InternalWidgetIDAttribute] = widgetID
	return out
}

func cloneSettings(settings map[string]any) map[string]any {
	if settings == nil {
		return nil
	}
	out := make(map[string]any, len(settings))
	for k, v := range settings {
		out[k] = v
	}
	return out
}

var defaultTransformer = New()

// WidgetToBlock converts with the default transformer.
func WidgetToBlock(widget domain.WidgetRecord) (domain.BlockNode, error) {
	return defaultTransformer.WidgetToBlock(widget)
}

// BlockToWidget converts with the default transformer.
func BlockToWidget(block domain.BlockNode, related domain.WidgetRecord) (domain.WidgetRecord, error) {
	return defaultTransformer.BlockToWidget(block, related)
}
