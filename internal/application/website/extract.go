package website

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const (
	// UntitledTitle is the title used when a page has neither <title> nor <h1>.
	UntitledTitle = "Untitled"
	// NoDescription is the description used when no signal is found.
	NoDescription = "No description available"

	maxContentChars        = 10000
	paragraphFallbackChars = 160
)

// Noise removed before any text is read.
const noiseSelector = "script, style, nav, footer, header"

// contentSelectors are tried in order; the first one that yields text wins.
var contentSelectors = []string{"main", ".main", ".content", ".container", "body"}

// Extracted is the cleaned signal pulled out of one page.
type Extracted struct {
	Title       string
	Description string
	Content     string
}

// Extract parses rawHTML and applies the title, description and content fallback chains.
// Malformed HTML is tolerated; the parser always produces a document.
func Extract(rawHTML string) (Extracted, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return Extracted{}, err
	}
	doc.Find(noiseSelector).Remove()

	return Extracted{
		Title:       extractTitle(doc),
		Description: extractDescription(doc),
		Content:     extractContent(doc),
	}, nil
}

func extractTitle(doc *goquery.Document) string {
	if t := collapse(doc.Find("title").First().Text()); t != "" {
		return t
	}
	if h := collapse(doc.Find("h1").First().Text()); h != "" {
		return h
	}
	return UntitledTitle
}

func extractDescription(doc *goquery.Document) string {
	for _, sel := range []string{`meta[name="description"]`, `meta[property="og:description"]`} {
		if c, ok := doc.Find(sel).First().Attr("content"); ok {
			if c = collapse(c); c != "" {
				return c
			}
		}
	}
	if p := collapse(doc.Find("p").First().Text()); p != "" {
		return truncate(p, paragraphFallbackChars)
	}
	return NoDescription
}

func extractContent(doc *goquery.Document) string {
	for _, sel := range contentSelectors {
		s := doc.Find(sel)
		if s.Length() == 0 {
			continue
		}
		if text := collapse(s.Text()); text != "" {
			return truncate(text, maxContentChars)
		}
	}
	return ""
}

// collapse trims s and reduces every whitespace run to one space.
func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// truncate keeps at most n runes of s.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
