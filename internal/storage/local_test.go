package storage

import (
	"io"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorage_SaveAndOpen(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	at := time.Date(2025, 6, 15, 18, 0, 0, 0, time.UTC)
	rel, err := store.SaveBytes([]byte("%PDF-1.3"), "feuille de caisse amel.pdf", DirSessionReports, at)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(rel, filepath.Join(DirSessionReports, "2025", "06")))
	assert.True(t, strings.HasSuffix(rel, ".pdf"))
	assert.Contains(t, filepath.Base(rel), "feuille_de_caisse_amel_")
	assert.True(t, store.Exists(rel))

	f, err := store.Open(rel)
	require.NoError(t, err)
	data, err := io.ReadAll(f)
	f.Close()
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.3", string(data))

	require.NoError(t, store.Delete(rel))
	assert.False(t, store.Exists(rel))
}

func TestLocalStorage_SaveReader(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	rel, err := store.Save(strings.NewReader("<termes/>"), "juin.XML", DirImports, time.Now())
	require.NoError(t, err)
	assert.Equal(t, ".xml", filepath.Ext(rel))
}

func TestLocalStorage_PathsStayInRoot(t *testing.T) {
	root := t.TempDir()
	store, err := NewLocalStorage(root)
	require.NoError(t, err)

	full := store.GetFullPath("../../etc/passwd")
	assert.True(t, strings.HasPrefix(full, root))
}

func TestImportKind(t *testing.T) {
	assert.Equal(t, ImportKindXLSX, ImportKind("termes_juin.XLSX"))
	assert.Equal(t, ImportKindXML, ImportKind("termes.xml"))
	assert.Equal(t, "", ImportKind("termes.csv"))
}
