package domain

const (
	// LegacyWidgetBlockName is the block that wraps non block-backed widgets.
	LegacyWidgetBlockName = "core/legacy-widget"
	// ParagraphBlockName is the fallback block for empty block-backed widgets.
	ParagraphBlockName = "core/paragraph"
	// InternalWidgetIDAttribute joins a block back to the widget it came from.
	InternalWidgetIDAttribute = "__internalWidgetId"
)

// BlockNode is a node of the editor block tree.
type BlockNode struct {
	Name        string         `json:"name"`
	Attributes  map[string]any `json:"attributes"`
	InnerBlocks []BlockNode    `json:"innerBlocks"`
	// InnerContent holds the raw markup around inner blocks as it was parsed,
	// one more entry than InnerBlocks. Empty for blocks built in code.
	InnerContent []string `json:"innerContent,omitempty"`
}

// WidgetID returns the widget id the block was tagged with, if any.
func (b BlockNode) WidgetID() (string, bool) {
	id, ok := b.Attributes[InternalWidgetIDAttribute].(string)
	if !ok || id == "" {
		return "", false
	}
	return id, true
}

// Clone returns a deep copy of the node structure. Attribute values are
// copied shallowly.
func (b BlockNode) Clone() BlockNode {
	out := BlockNode{
		Name:       b.Name,
		Attributes: cloneMap(b.Attributes),
	}
	if b.InnerBlocks != nil {
		out.InnerBlocks = make([]BlockNode, len(b.InnerBlocks))
		for i, inner := range b.InnerBlocks {
			out.InnerBlocks[i] = inner.Clone()
		}
	}
	if b.InnerContent != nil {
		out.InnerContent = append([]string(nil), b.InnerContent...)
	}
	return out
}
