package blocks

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/agnivade/levenshtein"
)

var (
	// ErrInvalidBlockName is returned when a block type name is not namespace/name.
	ErrInvalidBlockName = errors.New("blocks: block type name must be namespace/name")
	// ErrBlockTypeExists is returned when registering a name twice.
	ErrBlockTypeExists = errors.New("blocks: block type already registered")
)

const (
	defaultNamespace = "core/"
	// suggestDistance caps how far a suggestion may be from the requested name.
	suggestDistance = 3
)

var blockNamePattern = regexp.MustCompile(`^[a-z][a-z0-9_-]*/[a-z][a-z0-9_-]*$`)

// Source tells the parser where an attribute value lives.
type Source int

const (
	// SourceComment attributes are stored in the block comment delimiter.
	SourceComment Source = iota
	// SourceHTML attributes are the inner HTML of the first element matching Selector.
	SourceHTML
	// SourceRaw attributes are the block's inner markup, verbatim.
	SourceRaw
)

// Attribute declares one block attribute.
type Attribute struct {
	Name string
	// Source defaults to SourceComment.
	Source Source
	// Selector is a comma separated list of tag names, used with SourceHTML.
	Selector string
	// Default is applied by CreateBlock and omitted from serialized comments.
	Default any
}

// SaveFunc renders a block's markup from its attributes and the already
// serialized markup of its inner blocks.
type SaveFunc func(attributes map[string]any, inner string) string

// BlockType describes how a block is created, parsed and serialized.
type BlockType struct {
	Name       string
	Title      string
	Attributes []Attribute
	// Save is nil for dynamic blocks, which serialize as void delimiters.
	Save SaveFunc
	// Delimiterless blocks serialize as their bare content.
	Delimiterless bool
}

func (bt BlockType) attribute(name string) (Attribute, bool) {
	for _, attr := range bt.Attributes {
		if attr.Name == name {
			return attr, true
		}
	}
	return Attribute{}, false
}

// Registry stores block types by name. It is safe for concurrent use.
type Registry struct {
	mu    sync.RWMutex
	types map[string]BlockType
}

// NewRegistry builds a registry holding the given types.
func NewRegistry(types ...BlockType) (*Registry, error) {
	r := &Registry{types: make(map[string]BlockType, len(types))}
	for _, bt := range types {
		if err := r.Register(bt); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// NewCoreRegistry returns a registry preloaded with the core block types.
func NewCoreRegistry() *Registry {
	r, err := NewRegistry(CoreBlockTypes()...)
	if err != nil {
		panic(err)
	}
	return r
}

// Register adds a block type. Names without a namespace get core/.
func (r *Registry) Register(bt BlockType) error {
	bt.Name = NormalizeName(bt.Name)
	if !blockNamePattern.MatchString(bt.Name) {
		return fmt.Errorf("%w: %q", ErrInvalidBlockName, bt.Name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.types[bt.Name]; exists {
		return fmt.Errorf("%w: %s", ErrBlockTypeExists, bt.Name)
	}
	r.types[bt.Name] = bt
	return nil
}

// Lookup returns the block type registered under name.
func (r *Registry) Lookup(name string) (BlockType, bool) {
	if r == nil {
		return BlockType{}, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	bt, ok := r.types[NormalizeName(name)]
	return bt, ok
}

// Names lists registered block names in lexical order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.types))
	for name := range r.types {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Suggest returns the closest registered name to an unknown one.
func (r *Registry) Suggest(name string) (string, bool) {
	name = NormalizeName(name)
	best, bestDistance := "", suggestDistance+1
	for _, candidate := range r.Names() {
		distance := levenshtein.ComputeDistance(name, candidate)
		if distance < bestDistance {
			best, bestDistance = candidate, distance
		}
	}
	return best, best != ""
}

// NormalizeName adds the core namespace to bare block names.
func NormalizeName(name string) string {
	name = strings.TrimSpace(name)
	if name != "" && !strings.Contains(name, "/") {
		return defaultNamespace + name
	}
	return name
}
