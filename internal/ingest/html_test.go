package ingest

import (
	"strings"
	"testing"
)

func TestHTMLExtractor_BlocksAndSkips(t *testing.T) {
	input := `<html><head><title>T</title><style>p{}</style></head>
<body>
<nav>menu</nav>
<h1>Heading</h1>
<p>First <b>bold</b> paragraph.</p>
<script>alert(1)</script>
<ul><li>one</li><li>two</li></ul>
<p>line<br>break</p>
<footer>foot</footer>
</body></html>`
	p := &HTMLExtractor{}
	got, err := p.Extract(strings.NewReader(input), "page.html")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "Heading\n\nFirst bold paragraph.\n\none\n\ntwo\n\nline\nbreak"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}
