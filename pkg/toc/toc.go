// Package toc builds a table of contents from post content.
package toc

import (
	"strings"

	"github.com/goliatone/go-widgets/pkg/blocks"
	"github.com/goliatone/go-widgets/pkg/domain"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Heading is one heading found in post content.
type Heading struct {
	Content string `json:"content"`
	Level   int    `json:"level"`
	// Link is "#<id>" when the heading has an anchor.
	Link string `json:"link,omitempty"`
}

// Node is a heading with the headings nested below it.
type Node struct {
	Heading  Heading `json:"heading"`
	Children []Node  `json:"children,omitempty"`
}

var headingLevels = map[atom.Atom]int{
	atom.H1: 1, atom.H2: 2, atom.H3: 3,
	atom.H4: 4, atom.H5: 5, atom.H6: 6,
}

// PageIndex returns the 1-based page the block at index lands on, counting
// page break blocks and page break markers inside classic blocks before it.
// Markers inside other blocks are not counted.
func PageIndex(list []domain.BlockNode, index int) int {
	page := 1
	if index > len(list) {
		index = len(list)
	}
	for i := 0; i < index; i++ {
		switch list[i].Name {
		case blocks.NextPageBlockName:
			page++
		case blocks.FreeformBlockName:
			content, _ := list[i].Attributes["content"].(string)
			page += strings.Count(content, blocks.PageBreakMarker)
		}
	}
	return page
}

// Headings extracts h1 to h6 elements from markup in document order.
func Headings(markup string) []Heading {
	doc, err := html.Parse(strings.NewReader(markup))
	if err != nil {
		return nil
	}
	var out []Heading
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if level, ok := headingLevels[n.DataAtom]; ok {
				heading := Heading{Content: strings.TrimSpace(textContent(n)), Level: level}
				if id := attr(n, "id"); id != "" {
					heading.Link = "#" + id
				}
				out = append(out, heading)
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return out
}

// Nest turns a flat heading list into a tree. Headings at the level of the
// first heading start new top level entries; deeper headings that follow
// become their children. Empty headings are skipped.
func Nest(headings []Heading) []Node {
	if len(headings) == 0 {
		return nil
	}
	top := headings[0].Level
	var out []Node
	for i, heading := range headings {
		if heading.Content == "" || heading.Level != top {
			continue
		}
		node := Node{Heading: heading}
		if i+1 < len(headings) && headings[i+1].Level > heading.Level {
			end := len(headings)
			for j := i + 1; j < len(headings); j++ {
				if headings[j].Level == heading.Level {
					end = j
					break
				}
			}
			node.Children = Nest(headings[i+1 : end])
		}
		out = append(out, node)
	}
	return out
}

// Build returns the nested headings of content. With onlyCurrentPage set,
// only the headings of the given 1-based page are included.
func Build(content string, onlyCurrentPage bool, page int) []Node {
	if onlyCurrentPage {
		pages := strings.Split(content, blocks.PageBreakMarker)
		if page < 1 || page > len(pages) {
			return nil
		}
		content = pages[page-1]
	}
	return Nest(Headings(content))
}

func textContent(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}
