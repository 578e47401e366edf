package website

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func extract(t *testing.T, html string) Extracted {
	t.Helper()
	ex, err := Extract(html)
	require.NoError(t, err)
	return ex
}

func TestExtract_TitleFallbackChain(t *testing.T) {
	assert.Equal(t, "Acme Widgets", extract(t, `<html><head><title> Acme   Widgets </title></head><body><h1>Other</h1></body></html>`).Title)
	assert.Equal(t, "Welcome to Acme", extract(t, `<html><body><h1>Welcome to Acme</h1><h1>Second</h1></body></html>`).Title)
	assert.Equal(t, UntitledTitle, extract(t, `<html><body><p>hello</p></body></html>`).Title)
}

func TestExtract_DescriptionFallbackOrder(t *testing.T) {
	both := `<html><head>
		<meta property="og:description" content="From OG">
		<meta name="description" content="From meta">
	</head><body><p>From paragraph</p></body></html>`
	assert.Equal(t, "From meta", extract(t, both).Description)

	og := `<html><head><meta property="og:description" content="From OG"></head><body><p>From paragraph</p></body></html>`
	assert.Equal(t, "From OG", extract(t, og).Description)

	long := strings.Repeat("word ", 100)
	para := extract(t, `<html><body><p>`+long+`</p><p>second</p></body></html>`).Description
	assert.Len(t, []rune(para), 160)
	assert.True(t, strings.HasPrefix(para, "word word"))

	assert.Equal(t, NoDescription, extract(t, `<html><body><div>no paragraphs</div></body></html>`).Description)
}

func TestExtract_EmptyMetaFallsThrough(t *testing.T) {
	html := `<html><head><meta name="description" content="   "></head><body><p>Para text</p></body></html>`
	assert.Equal(t, "Para text", extract(t, html).Description)
}

func TestExtract_StripsNoise(t *testing.T) {
	html := `<html><body>
		<header>Top banner</header>
		<nav>Home | About</nav>
		<script>var x = 1;</script>
		<style>.a{}</style>
		<main>Real   content
		here</main>
		<footer>Copyright</footer>
	</body></html>`
	ex := extract(t, html)
	assert.Equal(t, "Real content here", ex.Content)
}

func TestExtract_ContentSelectorPriority(t *testing.T) {
	html := `<html><body>
		<div class="container">container text</div>
		<div class="content">content text</div>
		<div class="main">main-class text</div>
	</body></html>`
	assert.Equal(t, "main-class text", extract(t, html).Content)

	body := `<html><body><div>just body</div></body></html>`
	assert.Equal(t, "just body", extract(t, body).Content)
}

func TestExtract_ContentCapped(t *testing.T) {
	html := `<html><body><main>` + strings.Repeat("abcdefghij ", 2000) + `</main></body></html>`
	assert.Len(t, []rune(extract(t, html).Content), maxContentChars)
}

func TestExtract_HeaderH1RemovedBeforeTitleFallback(t *testing.T) {
	html := `<html><body><header><h1>Banner</h1></header><main>text</main></body></html>`
	assert.Equal(t, UntitledTitle, extract(t, html).Title)
}
