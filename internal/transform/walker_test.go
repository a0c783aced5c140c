package transform

import (
	"testing"
)

func TestParseDocumentClassifiesLeaves(t *testing.T) {
	src := `<p>one<a href="#">two</a><h4>three<a>four</a>five</h4>six</p><script>seven</script><a/>eight`
	doc, err := ParseDocument([]byte(src))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := map[string]bool{
		"one":   true,
		"two":   false,
		"three": false,
		"four":  false,
		"five":  false,
		"six":   true,
		"seven": false,
		"eight": false,
	}
	leaves := doc.Leaves()
	if len(leaves) != len(want) {
		t.Fatalf("expected %d leaves, got: %d", len(want), len(leaves))
	}
	for _, leaf := range leaves {
		eligible, ok := want[leaf.Text]
		if !ok {
			t.Fatalf("unexpected leaf %q", leaf.Text)
		}
		if leaf.Eligible != eligible {
			t.Fatalf("leaf %q: expected eligible=%v", leaf.Text, eligible)
		}
	}
}

func TestParseDocumentHeadingsShareCloseTags(t *testing.T) {
	doc, err := ParseDocument([]byte("<h1>x</h2> after <h3>y</h3>z"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := map[string]bool{"x": false, " after ": true, "y": false, "z": true}
	for _, leaf := range doc.Leaves() {
		if eligible, ok := want[leaf.Text]; !ok || leaf.Eligible != eligible {
			t.Fatalf("leaf %q: expected eligible=%v", leaf.Text, want[leaf.Text])
		}
	}
}

func TestParseDocumentAnchorContext(t *testing.T) {
	doc, err := ParseDocument([]byte(`<a href="#">John 3:16</a>Romans<b>x</b>y`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	leaves := doc.Leaves()
	if len(leaves) != 4 {
		t.Fatalf("expected 4 leaves, got: %d", len(leaves))
	}
	if !leaves[0].Anchored || leaves[1].Anchored || leaves[2].Anchored || leaves[3].Anchored {
		t.Fatalf("unexpected anchored flags: %+v", leaves)
	}
	if leaves[1].Before != '6' {
		t.Fatalf("expected text after </a> to continue the anchor, got: %q", leaves[1].Before)
	}
	if leaves[2].Before != 0 || leaves[3].Before != 0 {
		t.Fatalf("expected no context outside </a>, got: %q %q", leaves[2].Before, leaves[3].Before)
	}
}

func TestDocumentRenderRoundTrip(t *testing.T) {
	inputs := []string{
		"",
		"plain text",
		"<!DOCTYPE html><html><head><title>x</title></head><body>y</body></html>",
		"<p class=a>unquoted <b>bold</p></b> & stray",
		"<div\n  id='x'>\x00nul</div>",
		"<a href",
	}
	for _, input := range inputs {
		doc, err := ParseDocument([]byte(input))
		if err != nil {
			t.Fatalf("unexpected error for %q: %v", input, err)
		}
		if got := string(doc.Render()); got != input {
			t.Fatalf("expected round trip of %q, got: %q", input, got)
		}
	}
}

func TestDocumentReplace(t *testing.T) {
	doc, err := ParseDocument([]byte(`<p>a</p><h1>b</h1>`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, leaf := range doc.Leaves() {
		replaced := doc.Replace(leaf.Index, []byte("<i>"+leaf.Text+"</i>"))
		if replaced != leaf.Eligible {
			t.Fatalf("leaf %q: Replace returned %v", leaf.Text, replaced)
		}
	}
	if doc.Replace(0, []byte("x")) {
		t.Fatalf("expected a tag token not to be replaceable")
	}
	if got := string(doc.Render()); got != `<p><i>a</i></p><h1>b</h1>` {
		t.Fatalf("unexpected render: %s", got)
	}
}
