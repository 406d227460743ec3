package surface

import (
	"strings"
	"testing"

	"github.com/goliatone/go-softlimit/pkg/counter"
	"github.com/goliatone/go-softlimit/pkg/marker"
)

func TestPlainTextExcludesScriptContent(t *testing.T) {
	markup := `<p>Hello <b>world</b></p><script>document.title = "pwned"; steal()</script><style>p{color:red}</style>`
	text, err := PlainText(markup, marker.ModeCharacters)
	if err != nil {
		t.Fatalf("plain text: %v", err)
	}
	if text != "Hello world" {
		t.Fatalf("expected visible text only, got %q", text)
	}
	if n := counter.Count(text, marker.ModeCharacters); n != 11 {
		t.Fatalf("expected 11 characters, got %d", n)
	}
}

func TestPlainTextDoesNotCountMarkupOrEntities(t *testing.T) {
	text, err := PlainText(`<p>Fish &amp; chips</p>`, marker.ModeCharacters)
	if err != nil {
		t.Fatalf("plain text: %v", err)
	}
	if text != "Fish & chips" {
		t.Fatalf("unexpected text %q", text)
	}
}

func TestPlainTextSeparatesBlocksForWords(t *testing.T) {
	markup := "<p>one</p><p>two</p><ul><li>three</li><li>four</li></ul>line<br>break"
	words, err := PlainText(markup, marker.ModeWords)
	if err != nil {
		t.Fatalf("plain text: %v", err)
	}
	if n := counter.Count(words, marker.ModeWords); n != 6 {
		t.Fatalf("expected 6 words, got %d from %q", n, words)
	}

	chars, err := PlainText("<p>one</p><p>two</p>", marker.ModeCharacters)
	if err != nil {
		t.Fatalf("plain text: %v", err)
	}
	if chars != "onetwo" {
		t.Fatalf("expected textContent semantics for characters, got %q", chars)
	}
}

func TestSanitizeStripsHandlersAndScriptURLs(t *testing.T) {
	clean := Sanitize(`<a href="javascript:alert(1)" onclick="steal()">link</a><img src="x" onerror="steal()">`)
	for _, forbidden := range []string{"javascript:", "onclick", "onerror", "steal"} {
		if strings.Contains(clean, forbidden) {
			t.Fatalf("expected %q to be removed, got %q", forbidden, clean)
		}
	}
	if !strings.Contains(clean, "link") {
		t.Fatalf("expected link text to survive, got %q", clean)
	}
}

func TestPlainTextHandlesMalformedMarkup(t *testing.T) {
	inputs := []string{"<p><b>unclosed", "</div></div>", "<<<>>>", "<scr<script>ipt>x</script>", ""}
	for _, input := range inputs {
		if _, err := PlainText(input, marker.ModeWords); err != nil {
			t.Fatalf("PlainText(%q) returned error %v", input, err)
		}
	}
}

func TestMarkdownRawHTMLIsSanitized(t *testing.T) {
	rendered, err := MarkdownToHTML("**bold**\n\n<script>alert(1)</script>")
	if err != nil {
		t.Fatalf("markdown: %v", err)
	}
	text, err := PlainText(rendered, marker.ModeCharacters)
	if err != nil {
		t.Fatalf("plain text: %v", err)
	}
	if strings.Contains(text, "alert") {
		t.Fatalf("expected script to be dropped, got %q", text)
	}
	if !strings.HasPrefix(text, "bold") {
		t.Fatalf("expected rendered text to start with bold, got %q", text)
	}
}
