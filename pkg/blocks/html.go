package blocks

import (
	"strings"

	"github.com/goliatone/go-widgets/pkg/domain"
	"github.com/jaytaylor/html2text"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// extractInnerHTML returns the inner HTML of the first element whose tag is
// listed in selector (comma separated tag names).
func extractInnerHTML(markup, selector string) (string, bool) {
	tags := make(map[string]struct{})
	for _, tag := range strings.Split(selector, ",") {
		if tag = strings.ToLower(strings.TrimSpace(tag)); tag != "" {
			tags[tag] = struct{}{}
		}
	}
	if len(tags) == 0 {
		return "", false
	}
	nodes, err := html.ParseFragment(strings.NewReader(markup), &html.Node{
		Type:     html.ElementNode,
		Data:     "body",
		DataAtom: atom.Body,
	})
	if err != nil {
		return "", false
	}
	for _, node := range nodes {
		if found := findElement(node, tags); found != nil {
			return InnerHTML(found), true
		}
	}
	return "", false
}

func findElement(node *html.Node, tags map[string]struct{}) *html.Node {
	if node.Type == html.ElementNode {
		if _, ok := tags[node.Data]; ok {
			return node
		}
	}
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		if found := findElement(child, tags); found != nil {
			return found
		}
	}
	return nil
}

// InnerHTML renders the children of node back to markup.
func InnerHTML(node *html.Node) string {
	var b strings.Builder
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		_ = html.Render(&b, child)
	}
	return b.String()
}

// RenderHTML returns the saved markup of block without comment delimiters.
// Dynamic blocks render to an empty string.
func (c *Codec) RenderHTML(block domain.BlockNode) (string, error) {
	bt, registered := c.registry.Lookup(block.Name)
	return c.saveContent(block, bt, registered)
}

// PlainText renders the block's saved markup as readable text.
func (c *Codec) PlainText(block domain.BlockNode) (string, error) {
	markup, err := c.RenderHTML(block)
	if err != nil {
		return "", err
	}
	if markup == "" {
		return "", nil
	}
	text, err := html2text.FromString(markup, html2text.Options{OmitLinks: true})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}
