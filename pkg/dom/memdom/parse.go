package memdom

import (
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Parse builds a document from rendered HTML. Every element under the body
// becomes a connected Element in document order; textarea content and input
// value attributes become form values.
func Parse(r io.Reader) (*Document, error) {
	parsed, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("memdom: parse html: %w", err)
	}

	doc := New()
	var walkErr error
	parsed.Find("body *").Each(func(_ int, sel *goquery.Selection) {
		if walkErr != nil || len(sel.Nodes) == 0 {
			return
		}
		node := sel.Nodes[0]
		attrs := make(map[string]string, len(node.Attr))
		for _, attr := range node.Attr {
			attrs[attr.Key] = attr.Val
		}
		el := doc.Create(node.Data, attrs)

		inner, err := sel.Html()
		if err != nil {
			walkErr = fmt.Errorf("memdom: serialize <%s>: %w", node.Data, err)
			return
		}
		el.inner = inner
		el.text = sel.Text()
		if el.tag == "textarea" {
			el.value = el.text
		}

		el.connected = true
		doc.elements = append(doc.elements, el)
	})
	if walkErr != nil {
		return nil, walkErr
	}
	return doc, nil
}

// ParseString is Parse for a string.
func ParseString(markup string) (*Document, error) {
	return Parse(strings.NewReader(markup))
}

func textContent(markup string) string {
	nodes, err := html.ParseFragment(strings.NewReader(markup), &html.Node{
		Type:     html.ElementNode,
		Data:     "div",
		DataAtom: atom.Div,
	})
	if err != nil {
		return markup
	}
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	for _, node := range nodes {
		walk(node)
	}
	return b.String()
}
