package surface

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/yuin/goldmark"
	gmhtml "github.com/yuin/goldmark/renderer/html"
	"golang.org/x/net/html"

	"github.com/goliatone/go-softlimit/pkg/counter"
	"github.com/goliatone/go-softlimit/pkg/marker"
)

// blockElements separate words when text is extracted for word counting.
var blockElements = map[string]struct{}{
	"address": {}, "article": {}, "aside": {}, "blockquote": {}, "br": {},
	"dd": {}, "div": {}, "dl": {}, "dt": {}, "figcaption": {}, "figure": {},
	"footer": {}, "h1": {}, "h2": {}, "h3": {}, "h4": {}, "h5": {}, "h6": {},
	"header": {}, "hr": {}, "li": {}, "ol": {}, "p": {}, "pre": {},
	"section": {}, "table": {}, "td": {}, "th": {}, "tr": {}, "ul": {},
}

// PlainText sanitizes markup and returns its text. In word mode block-level
// boundaries become spaces so "<p>a</p><p>b</p>" reads as two words; in
// character mode the text matches the browser's textContent.
func PlainText(markup string, mode marker.Mode) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("surface: extract text: %v", r)
		}
	}()

	clean := Sanitize(markup)
	if strings.TrimSpace(clean) == "" {
		return "", nil
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(clean))
	if err != nil {
		return "", fmt.Errorf("surface: parse sanitized markup: %w", err)
	}
	body := doc.Find("body")
	if mode != marker.ModeWords {
		return body.Text(), nil
	}

	var b strings.Builder
	for _, node := range body.Nodes {
		writeSeparated(&b, node)
	}
	return b.String(), nil
}

func writeSeparated(b *strings.Builder, n *html.Node) {
	switch n.Type {
	case html.TextNode:
		b.WriteString(n.Data)
		return
	case html.ElementNode:
		if _, ok := blockElements[n.Data]; ok {
			b.WriteByte(' ')
			defer b.WriteByte(' ')
		}
	}
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		writeSeparated(b, child)
	}
}

// markdownRenderer passes raw HTML through so Sanitize sees whole elements.
var markdownRenderer = goldmark.New(goldmark.WithRendererOptions(gmhtml.WithUnsafe()))

// MarkdownToHTML renders markdown source to HTML. Raw HTML in the source is
// kept verbatim; callers must sanitize the result before using it.
func MarkdownToHTML(source string) (string, error) {
	var buf bytes.Buffer
	if err := markdownRenderer.Convert([]byte(source), &buf); err != nil {
		return "", fmt.Errorf("surface: render markdown: %w", err)
	}
	return strings.TrimSpace(buf.String()), nil
}

// measureMarkup counts the sanitized text of markup, falling back to the raw
// string when extraction fails.
func measureMarkup(markup string, mode marker.Mode, env Env) int {
	text, err := PlainText(markup, mode)
	if err != nil {
		env.logger().Debug("soft-limit extraction failed, counting raw value", "error", err)
		return counter.Count(markup, mode)
	}
	return counter.Count(text, mode)
}
