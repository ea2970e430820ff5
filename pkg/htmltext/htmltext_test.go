package htmltext

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
)

func TestFlattenPlainText(t *testing.T) {
	t.Parallel()

	if got := Flatten("  just plain text  "); got != "just plain text" {
		t.Fatalf("unexpected output: %q", got)
	}
}

func TestFlattenStripsMarkup(t *testing.T) {
	t.Parallel()

	raw := `<div><p>Hello <b>world</b>.</p>
	<script>alert("nope")</script>
	<style>.x { color: red }</style>
	<p>Second   paragraph.</p></div>`

	got := Flatten(raw)
	if got != "Hello world . Second paragraph." {
		t.Fatalf("unexpected output: %q", got)
	}
}

func TestFlattenSelection(t *testing.T) {
	t.Parallel()

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(
		`<div class="content"><p>First</p><p>Second</p><script>x()</script></div>`))
	if err != nil {
		t.Fatalf("new document: %v", err)
	}

	got := FlattenSelection(doc.Find(".content"))
	if got != "First Second" {
		t.Fatalf("unexpected output: %q", got)
	}
}
