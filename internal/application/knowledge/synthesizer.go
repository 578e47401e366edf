// Package knowledge builds the assistant instruction and knowledge base for an
// analyzed website. The rules are deterministic string matching.
package knowledge

import (
	"fmt"
	"regexp"
	"strings"
)

const (
	aboutChars   = 2000
	previewChars = 500
	maxOfferings = 5
)

var offeringPattern = regexp.MustCompile(`(?i)(?:services|offer|provide|specializ\w*)\s*:\s*([^.\n]+)`)

// Input is the analyzed page content.
type Input struct {
	Domain      string
	Title       string
	Description string
	Content     string
}

// Result is what the synthesizer derives from one Input.
type Result struct {
	Instruction   string
	KnowledgeBase string
	BusinessType  string
	Keywords      []string
}

// Synthesize derives the instruction and knowledge base for in.
func Synthesize(in Input) Result {
	kind, _ := BusinessType(in.Content)
	return Result{
		Instruction:   Instruction(in),
		KnowledgeBase: KnowledgeBase(in),
		BusinessType:  kind,
		Keywords:      Keywords(in.Content),
	}
}

// Instruction composes the assistant system prompt for in.
func Instruction(in Input) string {
	_, business := BusinessType(in.Content)
	services := servicesSentence(Services(in.Content))
	return fmt.Sprintf("You are an AI assistant for %s. %s %s. Provide helpful information about %s's services, "+
		"answer customer questions, and assist with inquiries related to their business. "+
		"Always be professional, accurate, and helpful.", in.Title, business, services, in.Title)
}

// KnowledgeBase renders the sectioned knowledge document. Section order and
// headings are stable.
func KnowledgeBase(in Input) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s Knowledge Base\n\n", in.Title)

	b.WriteString("## Company Overview\n")
	fmt.Fprintf(&b, "%s\n\n", in.Description)

	b.WriteString("## About Us\n")
	fmt.Fprintf(&b, "%s\n\n", head(in.Content, aboutChars))

	b.WriteString("## Services and Offerings\n")
	offers := Offerings(in.Content)
	if len(offers) == 0 {
		b.WriteString("Contact us to learn more about our services and offerings.\n")
	}
	for _, o := range offers {
		fmt.Fprintf(&b, "- %s\n", o)
	}
	b.WriteString("\n")

	b.WriteString("## Contact Information\n")
	fmt.Fprintf(&b, "Website: %s\n", in.Domain)
	b.WriteString("For more information, please visit our website or contact our team.\n\n")

	b.WriteString("## Key Information\n")
	fmt.Fprintf(&b, "- Company Name: %s\n", in.Title)
	fmt.Fprintf(&b, "- Description: %s\n", in.Description)
	fmt.Fprintf(&b, "- Content Preview: %s\n", head(in.Content, previewChars))
	return b.String()
}

// Offerings returns up to five snippets that follow a services/offer/provide label.
func Offerings(content string) []string {
	var out []string
	for _, m := range offeringPattern.FindAllStringSubmatch(content, maxOfferings) {
		if s := strings.TrimSpace(m[1]); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func head(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
