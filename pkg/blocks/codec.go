package blocks

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/goliatone/go-widgets/pkg/domain"
)

// internalAttributePrefix marks editor-only attributes that are never serialized.
const internalAttributePrefix = "__internal"

// Codec parses, serializes and constructs blocks against a registry.
// It keeps no state besides the registry and is safe for concurrent use.
type Codec struct {
	registry *Registry
}

// NewCodec returns a codec bound to registry. A nil registry uses the core types.
func NewCodec(registry *Registry) *Codec {
	if registry == nil {
		registry = NewCoreRegistry()
	}
	return &Codec{registry: registry}
}

var (
	defaultCodecOnce sync.Once
	defaultCodec     *Codec
)

// DefaultCodec returns the shared codec over the core block types.
func DefaultCodec() *Codec {
	defaultCodecOnce.Do(func() {
		defaultCodec = NewCodec(nil)
	})
	return defaultCodec
}

// Registry exposes the block types the codec knows about.
func (c *Codec) Registry() *Registry {
	return c.registry
}

// CreateBlock builds a new block, filling in registered attribute defaults.
// Neither attributes nor inner are retained.
func (c *Codec) CreateBlock(name string, attributes map[string]any, inner []domain.BlockNode) domain.BlockNode {
	name = NormalizeName(name)
	attrs := make(map[string]any, len(attributes))
	for k, v := range attributes {
		attrs[k] = v
	}
	if bt, ok := c.registry.Lookup(name); ok {
		for _, attr := range bt.Attributes {
			if _, set := attrs[attr.Name]; !set && attr.Default != nil {
				attrs[attr.Name] = attr.Default
			}
		}
	}
	children := make([]domain.BlockNode, len(inner))
	for i, child := range inner {
		children[i] = child.Clone()
	}
	return domain.BlockNode{Name: name, Attributes: attrs, InnerBlocks: children}
}

// Parse reads serialized block markup. It never fails: empty input yields no
// blocks, unreadable attribute JSON is dropped, and stray top-level HTML
// becomes a freeform block.
func (c *Codec) Parse(markup string) []domain.BlockNode {
	p := &parser{codec: c, doc: markup, tokens: tokenize(markup)}
	blocks := p.document()
	if blocks == nil {
		return []domain.BlockNode{}
	}
	return blocks
}

// Serialize renders a block (and its inner blocks) to markup.
func (c *Codec) Serialize(block domain.BlockNode) (string, error) {
	bt, registered := c.registry.Lookup(block.Name)
	content, err := c.saveContent(block, bt, registered)
	if err != nil {
		return "", err
	}
	if registered && bt.Delimiterless {
		return content, nil
	}
	attrs, err := c.commentAttributes(block, bt, registered)
	if err != nil {
		return "", err
	}
	return delimit(block.Name, attrs, content), nil
}

// SerializeAll renders a block list separated by blank lines.
func (c *Codec) SerializeAll(blocks []domain.BlockNode) (string, error) {
	parts := make([]string, 0, len(blocks))
	for _, block := range blocks {
		markup, err := c.Serialize(block)
		if err != nil {
			return "", err
		}
		parts = append(parts, markup)
	}
	return strings.Join(parts, "\n\n"), nil
}

func (c *Codec) saveContent(block domain.BlockNode, bt BlockType, registered bool) (string, error) {
	inner, err := c.innerMarkup(block)
	if err != nil {
		return "", err
	}
	if registered {
		if bt.Save == nil {
			return "", nil
		}
		return bt.Save(block.Attributes, inner), nil
	}
	if len(block.InnerContent) == len(block.InnerBlocks)+1 {
		var b strings.Builder
		for i, fragment := range block.InnerContent {
			b.WriteString(fragment)
			if i < len(block.InnerBlocks) {
				markup, err := c.Serialize(block.InnerBlocks[i])
				if err != nil {
					return "", err
				}
				b.WriteString(markup)
			}
		}
		return b.String(), nil
	}
	return inner, nil
}

func (c *Codec) innerMarkup(block domain.BlockNode) (string, error) {
	var b strings.Builder
	for _, inner := range block.InnerBlocks {
		markup, err := c.Serialize(inner)
		if err != nil {
			return "", err
		}
		b.WriteString(markup)
	}
	return b.String(), nil
}

func (c *Codec) commentAttributes(block domain.BlockNode, bt BlockType, registered bool) (string, error) {
	keep := make(map[string]any, len(block.Attributes))
	for key, value := range block.Attributes {
		if strings.HasPrefix(key, internalAttributePrefix) {
			continue
		}
		if registered {
			if attr, ok := bt.attribute(key); ok {
				if attr.Source != SourceComment {
					continue
				}
				if attr.Default != nil && sameValue(attr.Default, value) {
					continue
				}
			}
		}
		keep[key] = value
	}
	if len(keep) == 0 {
		return "", nil
	}
	encoded, err := json.Marshal(keep)
	if err != nil {
		return "", fmt.Errorf("blocks: encode attributes of %s: %w", block.Name, err)
	}
	return escapeCommentJSON(encoded), nil
}

func delimit(name, attrs, content string) string {
	name = strings.TrimPrefix(name, defaultNamespace)
	opener := "<!-- wp:" + name + " "
	if attrs != "" {
		opener += attrs + " "
	}
	if content == "" {
		return opener + "/-->"
	}
	return opener + "-->" + content + "<!-- /wp:" + name + " -->"
}

// escapeCommentJSON keeps attribute JSON from terminating the HTML comment it
// lives in. json.Marshal already escapes <, > and &.
func escapeCommentJSON(encoded []byte) string {
	var b strings.Builder
	b.Grow(len(encoded))
	for i := 0; i < len(encoded); i++ {
		ch := encoded[i]
		if ch == '\\' && i+1 < len(encoded) {
			if encoded[i+1] == '"' {
				b.WriteString(`\u0022`)
			} else {
				b.WriteByte(ch)
				b.WriteByte(encoded[i+1])
			}
			i++
			continue
		}
		b.WriteByte(ch)
	}
	return strings.ReplaceAll(b.String(), "--", `\u002d\u002d`)
}

func sameValue(a, b any) bool {
	if fa, ok := toFloat(a); ok {
		fb, ok := toFloat(b)
		return ok && fa == fb
	}
	return reflect.DeepEqual(a, b)
}

// Parse reads markup with the default codec.
func Parse(markup string) []domain.BlockNode {
	return DefaultCodec().Parse(markup)
}

// Serialize renders a block with the default codec.
func Serialize(block domain.BlockNode) (string, error) {
	return DefaultCodec().Serialize(block)
}

// CreateBlock builds a block with the default codec.
func CreateBlock(name string, attributes map[string]any, inner []domain.BlockNode) domain.BlockNode {
	return DefaultCodec().CreateBlock(name, attributes, inner)
}
