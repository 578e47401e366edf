// Package pdf renders knowledge documents with the core PDF fonts.
package pdf

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ainager-onboarding/internal/domain"
	"github.com/ainager-onboarding/internal/pkg/clock"
	"github.com/ainager-onboarding/internal/pkg/company"
	"github.com/go-pdf/fpdf"
)

const (
	pageWidth  = 595.28
	pageHeight = 841.89
	margin     = 50.0

	headerSize  = 16.0
	headingSize = 13.0
	bodySize    = 10.0
	// Average Helvetica glyph width relative to font size. Line breaks use
	// this estimate, not measured glyph widths.
	glyphRatio = 0.5
	leading    = 1.4

	contentExcerptChars = 3000
)

// Document is the text placed in one artifact.
type Document struct {
	Domain        string
	Title         string
	Description   string
	Content       string
	KnowledgeBase string
}

// Rendered describes a written artifact.
type Rendered struct {
	Path string
	Name string
	Size int64
}

type Renderer struct {
	dir   string
	clock clock.Clock
}

func NewRenderer(dir string, c clock.Clock) *Renderer {
	return &Renderer{dir: dir, clock: c}
}

// FileName returns the artifact name for d at unix millisecond ms.
func FileName(d string, ms int64) string {
	return fmt.Sprintf("knowledge_%s_%d.pdf", company.Slug(d), ms)
}

// Render lays doc out and writes it into the renderer's directory.
func (r *Renderer) Render(doc Document) (*Rendered, error) {
	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return nil, fmt.Errorf("create artifact dir: %w: %w", domain.ErrArtifact, err)
	}

	var buf bytes.Buffer
	if err := layout(doc).Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w: %w", domain.ErrArtifact, err)
	}

	name := FileName(doc.Domain, r.clock.Now().UnixMilli())
	path := filepath.Join(r.dir, name)
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return nil, fmt.Errorf("write pdf: %w: %w", domain.ErrArtifact, err)
	}
	return &Rendered{Path: path, Name: name, Size: int64(buf.Len())}, nil
}

type writer struct {
	pdf    *fpdf.Fpdf
	tr     func(string) string
	header string
	y      float64
}

func layout(doc Document) *fpdf.Fpdf {
	p := fpdf.NewCustom(&fpdf.InitType{
		UnitStr: "pt",
		Size:    fpdf.SizeType{Wd: pageWidth, Ht: pageHeight},
	})
	p.SetMargins(margin, margin, margin)
	p.SetAutoPageBreak(false, margin)
	p.SetTitle(Sanitize(doc.Title), true)

	w := &writer{
		pdf:    p,
		tr:     p.UnicodeTranslatorFromDescriptor(""),
		header: Sanitize("Knowledge Base: " + doc.Title),
	}
	w.newPage()

	w.section("Domain", doc.Domain)
	w.section("Description", doc.Description)
	w.section("Content", excerpt(doc.Content, contentExcerptChars))
	w.section("Knowledge Base", doc.KnowledgeBase)
	return p
}

func (w *writer) newPage() {
	w.pdf.AddPage()
	w.y = margin
	w.line(w.header, "B", headerSize)
	w.y += headerSize * 0.5
}

func (w *writer) section(heading, body string) {
	w.y += headingSize * 0.5
	w.line(Sanitize(heading), "B", headingSize)
	for _, para := range strings.Split(Sanitize(body), "\n") {
		if para == "" {
			w.y += bodySize * leading * 0.5
			continue
		}
		for _, l := range Wrap(para, charsPerLine(bodySize)) {
			w.line(l, "", bodySize)
		}
	}
}

func (w *writer) line(text, style string, size float64) {
	step := size * leading
	if w.y+step > pageHeight-margin {
		w.newPage()
	}
	w.y += step
	w.pdf.SetFont("Helvetica", style, size)
	w.pdf.Text(margin, w.y, w.tr(text))
}

func charsPerLine(size float64) int {
	return int((pageWidth - 2*margin) / (size * glyphRatio))
}

// Wrap breaks text into lines of at most width runes, splitting on spaces.
// Words longer than width are cut.
func Wrap(text string, width int) []string {
	if width < 1 {
		width = 1
	}
	var lines []string
	var cur []rune
	for _, word := range strings.Fields(text) {
		wr := []rune(word)
		for len(wr) > width {
			if len(cur) > 0 {
				lines = append(lines, string(cur))
				cur = nil
			}
			lines = append(lines, string(wr[:width]))
			wr = wr[width:]
		}
		switch {
		case len(cur) == 0:
			cur = append(cur, wr...)
		case len(cur)+1+len(wr) <= width:
			cur = append(append(cur, ' '), wr...)
		default:
			lines = append(lines, string(cur))
			cur = append([]rune(nil), wr...)
		}
	}
	if len(cur) > 0 {
		lines = append(lines, string(cur))
	}
	return lines
}

func excerpt(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
