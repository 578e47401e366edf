package artifact

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ainager-onboarding/internal/domain"
	"github.com/ainager-onboarding/internal/infrastructure/pdf"
	"github.com/ainager-onboarding/internal/pkg/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockMirror struct{ mock.Mock }

func (m *mockMirror) Upload(ctx context.Context, name string, r io.Reader) (string, error) {
	body, _ := io.ReadAll(r)
	args := m.Called(ctx, name, body)
	return args.String(0), args.Error(1)
}

type failingRenderer struct{}

func (failingRenderer) Render(pdf.Document) (*pdf.Rendered, error) {
	return nil, domain.ErrArtifact
}

func newRenderer(t *testing.T) *pdf.Renderer {
	return pdf.NewRenderer(t.TempDir(), clock.NewManual(time.UnixMilli(42)))
}

func TestGenerate_NoMirror(t *testing.T) {
	a, err := NewService(newRenderer(t), nil).Generate(context.Background(), pdf.Document{Domain: "acme.com", Title: "Acme"})
	require.NoError(t, err)
	assert.Equal(t, "knowledge_acme-com_42.pdf", a.Name)
	assert.FileExists(t, a.Path)
	assert.Empty(t, a.RemoteURI)
}

func TestGenerate_Mirrors(t *testing.T) {
	m := &mockMirror{}
	m.On("Upload", mock.Anything, "knowledge_acme-com_42.pdf", mock.MatchedBy(func(b []byte) bool {
		return len(b) > 0 && string(b[:5]) == "%PDF-"
	})).Return("s3://bucket/artifacts/knowledge_acme-com_42.pdf", nil)

	a, err := NewService(newRenderer(t), m).Generate(context.Background(), pdf.Document{Domain: "acme.com", Title: "Acme"})
	require.NoError(t, err)
	assert.Equal(t, "s3://bucket/artifacts/knowledge_acme-com_42.pdf", a.RemoteURI)
	m.AssertExpectations(t)
}

func TestGenerate_MirrorFailureIsNotFatal(t *testing.T) {
	m := &mockMirror{}
	m.On("Upload", mock.Anything, mock.Anything, mock.Anything).Return("", errors.New("access denied"))

	a, err := NewService(newRenderer(t), m).Generate(context.Background(), pdf.Document{Domain: "acme.com"})
	require.NoError(t, err)
	assert.Empty(t, a.RemoteURI)
	_, statErr := os.Stat(a.Path)
	assert.NoError(t, statErr)
	assert.Equal(t, filepath.Base(a.Path), a.Name)
}

func TestGenerate_RenderFailure(t *testing.T) {
	_, err := NewService(failingRenderer{}, nil).Generate(context.Background(), pdf.Document{})
	assert.ErrorIs(t, err, domain.ErrArtifact)
}
