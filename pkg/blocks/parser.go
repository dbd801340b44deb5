package blocks

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/goliatone/go-widgets/pkg/domain"
)

// delimiterPattern matches block comment delimiters:
//
//	<!-- wp:ns/name {"attr":1} -->   opener
//	<!-- /wp:ns/name -->             closer
//	<!-- wp:name /-->                void
var delimiterPattern = regexp.MustCompile(`<!--\s+(/)?wp:([a-z][a-z0-9_-]*/)?([a-z][a-z0-9_-]*)\s+(\{[\s\S]*?\}\s+)?(/)?-->`)

type tokenKind int

const (
	tokenOpener tokenKind = iota
	tokenCloser
	tokenVoid
)

type token struct {
	kind  tokenKind
	name  string
	attrs map[string]any
	start int
	end   int
}

func tokenize(doc string) []token {
	matches := delimiterPattern.FindAllStringSubmatchIndex(doc, -1)
	tokens := make([]token, 0, len(matches))
	for _, m := range matches {
		namespace := defaultNamespace
		if m[4] >= 0 {
			namespace = doc[m[4]:m[5]]
		}
		tok := token{
			kind:  tokenOpener,
			name:  namespace + doc[m[6]:m[7]],
			start: m[0],
			end:   m[1],
		}
		switch {
		case m[2] >= 0:
			tok.kind = tokenCloser
		case m[10] >= 0:
			tok.kind = tokenVoid
		}
		if m[8] >= 0 && tok.kind != tokenCloser {
			var attrs map[string]any
			if err := json.Unmarshal([]byte(strings.TrimSpace(doc[m[8]:m[9]])), &attrs); err == nil {
				tok.attrs = attrs
			}
		}
		tokens = append(tokens, tok)
	}
	return tokens
}

type parser struct {
	codec  *Codec
	doc    string
	tokens []token
	pos    int
}

func (p *parser) document() []domain.BlockNode {
	var out []domain.BlockNode
	cursor := 0
	for p.pos < len(p.tokens) {
		tok := p.tokens[p.pos]
		if tok.kind == tokenCloser {
			// stray closer, left in the surrounding freeform text
			p.pos++
			continue
		}
		out = p.appendFreeform(out, p.doc[cursor:tok.start])
		block, end := p.block()
		out = append(out, block)
		cursor = end
	}
	return p.appendFreeform(out, p.doc[cursor:])
}

func (p *parser) block() (domain.BlockNode, int) {
	open := p.tokens[p.pos]
	p.pos++
	if open.kind == tokenVoid {
		return p.codec.build(open.name, open.attrs, nil, nil), open.end
	}

	var inner []domain.BlockNode
	var content []string
	cursor := open.end
	for p.pos < len(p.tokens) {
		tok := p.tokens[p.pos]
		if tok.kind == tokenCloser {
			p.pos++
			if tok.name != open.name {
				continue
			}
			content = append(content, p.doc[cursor:tok.start])
			return p.codec.build(open.name, open.attrs, inner, content), tok.end
		}
		content = append(content, p.doc[cursor:tok.start])
		child, end := p.block()
		inner = append(inner, child)
		cursor = end
	}
	// unclosed opener swallows the rest of the document
	content = append(content, p.doc[cursor:])
	return p.codec.build(open.name, open.attrs, inner, content), len(p.doc)
}

func (p *parser) appendFreeform(out []domain.BlockNode, text string) []domain.BlockNode {
	if strings.TrimSpace(text) == "" {
		return out
	}
	return append(out, p.codec.CreateBlock(FreeformBlockName, map[string]any{"content": text}, nil))
}

// build assembles a parsed block, pulling sourced attributes out of its markup.
func (c *Codec) build(name string, commentAttrs map[string]any, inner []domain.BlockNode, content []string) domain.BlockNode {
	attrs := make(map[string]any, len(commentAttrs))
	for k, v := range commentAttrs {
		attrs[k] = v
	}
	if bt, ok := c.registry.Lookup(name); ok && content != nil {
		markup := strings.Join(content, "")
		for _, attr := range bt.Attributes {
			switch attr.Source {
			case SourceHTML:
				if value, found := extractInnerHTML(markup, attr.Selector); found {
					attrs[attr.Name] = value
				}
			case SourceRaw:
				attrs[attr.Name] = markup
			}
		}
	}
	block := c.CreateBlock(name, attrs, nil)
	if len(inner) > 0 {
		block.InnerBlocks = inner
	}
	if content != nil {
		block.InnerContent = content
	}
	return block
}
