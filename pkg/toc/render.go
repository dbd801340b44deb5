package toc

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Render writes nodes as a nested ordered list. Headings with an anchor are
// linked.
func Render(nodes []Node) string {
	if len(nodes) == 0 {
		return ""
	}
	var b strings.Builder
	_ = html.Render(&b, list(nodes))
	return b.String()
}

func list(nodes []Node) *html.Node {
	ol := element(atom.Ol)
	for _, node := range nodes {
		li := element(atom.Li)
		text := &html.Node{Type: html.TextNode, Data: node.Heading.Content}
		if node.Heading.Link != "" {
			a := element(atom.A)
			a.Attr = []html.Attribute{{Key: "href", Val: node.Heading.Link}}
			a.AppendChild(text)
			li.AppendChild(a)
		} else {
			li.AppendChild(text)
		}
		if len(node.Children) > 0 {
			li.AppendChild(list(node.Children))
		}
		ol.AppendChild(li)
	}
	return ol
}

func element(a atom.Atom) *html.Node {
	return &html.Node{Type: html.ElementNode, DataAtom: a, Data: a.String()}
}
