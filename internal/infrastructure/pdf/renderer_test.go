package pdf

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ainager-onboarding/internal/pkg/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileName(t *testing.T) {
	assert.Equal(t, "knowledge_acme-widgets-com_1700000000000.pdf", FileName("Acme-Widgets.com", 1700000000000))
}

func TestRender_WritesFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "out")
	now := time.UnixMilli(1700000000123).UTC()
	r := NewRenderer(dir, clock.NewManual(now))

	got, err := r.Render(Document{
		Domain:        "acmewidgets.com",
		Title:         "Acme Widgets 🚀",
		Description:   "Widgets\u2014for everyone",
		Content:       strings.Repeat("Widget content paragraph. ", 500),
		KnowledgeBase: strings.Repeat("## Section\nLine of knowledge.\n\n", 200),
	})
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "knowledge_acmewidgets-com_1700000000123.pdf"), got.Path)
	data, err := os.ReadFile(got.Path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")))
	assert.Equal(t, int64(len(data)), got.Size)
}

func TestRender_Paginates(t *testing.T) {
	short := layout(Document{Domain: "a.com", Title: "A", KnowledgeBase: "tiny"})
	long := layout(Document{Domain: "a.com", Title: "A", KnowledgeBase: strings.Repeat("line\n", 400)})
	assert.Equal(t, 1, short.PageCount())
	assert.Greater(t, long.PageCount(), 1)
}

func TestRender_DirIsFile(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(f, []byte("x"), 0o644))

	_, err := NewRenderer(f, clock.System{}).Render(Document{Domain: "a.com"})
	require.Error(t, err)
}

func TestWrap(t *testing.T) {
	assert.Equal(t, []string{"aaa bb", "cccc"}, Wrap("aaa bb cccc", 6))
	assert.Equal(t, []string{"abcdef", "gh x"}, Wrap("abcdefgh x", 6))
	assert.Empty(t, Wrap("   ", 10))
	for _, l := range Wrap(strings.Repeat("word ", 100), 17) {
		assert.LessOrEqual(t, len([]rune(l)), 17)
	}
}
