// Package artifact renders knowledge documents and optionally mirrors them to object storage.
package artifact

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/ainager-onboarding/internal/infrastructure/pdf"
)

// Renderer writes a document to local storage.
type Renderer interface {
	Render(doc pdf.Document) (*pdf.Rendered, error)
}

// Mirror copies a rendered file to remote storage.
type Mirror interface {
	Upload(ctx context.Context, name string, r io.Reader) (string, error)
}

// Artifact is a generated document on disk, plus its remote copy when mirrored.
type Artifact struct {
	Path      string
	Name      string
	Size      int64
	RemoteURI string
}

type Service struct {
	renderer Renderer
	mirror   Mirror
}

// NewService creates a Service. mirror may be nil.
func NewService(renderer Renderer, mirror Mirror) *Service {
	return &Service{renderer: renderer, mirror: mirror}
}

// Generate renders doc. A failed mirror upload is logged and does not fail generation.
func (s *Service) Generate(ctx context.Context, doc pdf.Document) (*Artifact, error) {
	r, err := s.renderer.Render(doc)
	if err != nil {
		return nil, err
	}
	a := &Artifact{Path: r.Path, Name: r.Name, Size: r.Size}
	if s.mirror == nil {
		return a, nil
	}

	f, err := os.Open(r.Path)
	if err != nil {
		slog.Warn("artifact mirror skipped", "path", r.Path, "error", err)
		return a, nil
	}
	defer f.Close()

	uri, err := s.mirror.Upload(ctx, r.Name, f)
	if err != nil {
		slog.Warn("artifact mirror failed", "name", r.Name, "error", err)
		return a, nil
	}
	a.RemoteURI = uri
	return a, nil
}
