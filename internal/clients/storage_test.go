package clients

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetURL_AbsoluteAndRelative(t *testing.T) {
	tmpDir := t.TempDir()

	c, err := NewLocalStorage(tmpDir, "http://example.com:8060/")
	require.NoError(t, err)
	assert.Equal(t, "http://example.com:8060/receipts/a.pdf", c.GetURL("/receipts", "a.pdf"))

	c2, err := NewLocalStorage(tmpDir, "")
	require.NoError(t, err)
	assert.Equal(t, "/receipts/b.pdf", c2.GetURL("receipts/", "b.pdf"))
	assert.Equal(t, "/b.pdf", c2.GetURL("", "b.pdf"))
}

func TestGetURL_EscapesFileName(t *testing.T) {
	c, err := NewLocalStorage(t.TempDir(), "")
	require.NoError(t, err)

	raw := c.GetURL("/sessions/s1/receipts", "123_Document_999_CARTERA #1_2024-03-20_09-30.pdf")
	u, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Empty(t, u.Fragment)
	assert.Equal(t, "/sessions/s1/receipts/123_Document_999_CARTERA #1_2024-03-20_09-30.pdf", u.Path)
}

func TestSave_KeepsNameAndSuffixesCollisions(t *testing.T) {
	c, err := NewLocalStorage(filepath.Join(t.TempDir(), "nested"), "")
	require.NoError(t, err)
	ctx := context.Background()

	first, err := c.Save(ctx, "123_Document_999_A_2024-03-20_09-30.pdf", []byte("one"), "application/pdf")
	require.NoError(t, err)
	assert.Equal(t, "123_Document_999_A_2024-03-20_09-30.pdf", first)

	second, err := c.Save(ctx, "123_Document_999_A_2024-03-20_09-30.pdf", []byte("two"), "application/pdf")
	require.NoError(t, err)
	assert.Equal(t, "123_Document_999_A_2024-03-20_09-30_1.pdf", second)

	got, err := os.ReadFile(filepath.Join(c.BaseDir, first))
	require.NoError(t, err)
	assert.Equal(t, "one", string(got))

	entries, err := os.ReadDir(c.BaseDir)
	require.NoError(t, err)
	assert.Len(t, entries, 2, "temp files are cleaned up")
}

func TestSave_StripsDirectories(t *testing.T) {
	c, err := NewLocalStorage(t.TempDir(), "")
	require.NoError(t, err)

	name, err := c.Save(context.Background(), "../../escape.png", []byte("x"), "image/png")
	require.NoError(t, err)
	assert.Equal(t, "escape.png", name)
}

func TestPath_RejectsTraversal(t *testing.T) {
	c, err := NewLocalStorage(t.TempDir(), "")
	require.NoError(t, err)

	for _, name := range []string{"", "../x.pdf", "a/b.pdf", ".upload-1"} {
		_, err := c.Path(name)
		assert.ErrorIs(t, err, ErrInvalidFileName, name)
	}
}

func TestSaveAndServeFileHandler(t *testing.T) {
	c, err := NewLocalStorage(t.TempDir(), "")
	require.NoError(t, err)

	content := []byte("%PDF-1.4 receipt")
	saved, err := c.Save(context.Background(), "receipt #1.pdf", content, "application/pdf")
	require.NoError(t, err)

	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path, err := c.Path(strings.TrimPrefix(r.URL.Path, "/receipts/"))
		if err != nil {
			http.NotFound(w, r)
			return
		}
		http.ServeFile(w, r, path)
	})

	ts := httptest.NewServer(h)
	defer ts.Close()

	resp, err := http.Get(ts.URL + c.GetURL("/receipts", saved))
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, content, body)
}

func TestDelete_RemovesReceipt(t *testing.T) {
	c, err := NewLocalStorage(t.TempDir(), "")
	require.NoError(t, err)
	ctx := context.Background()

	saved, err := c.Save(ctx, "a.pdf", []byte("x"), "application/pdf")
	require.NoError(t, err)

	require.NoError(t, c.Delete(ctx, saved))
	_, err = os.Stat(filepath.Join(c.BaseDir, saved))
	assert.True(t, os.IsNotExist(err))

	assert.NoError(t, c.Delete(ctx, saved), "missing file")
	assert.ErrorIs(t, c.Delete(ctx, "../a.pdf"), ErrInvalidFileName)
}
