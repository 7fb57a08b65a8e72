package mapfile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCommitAndMap(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "mmv")
	content := make([]byte, 4096)
	copy(content, "MMV\x00payload")

	m, err := Commit(dir, "test.client", content)
	require.NoError(t, err)
	defer m.Close()

	require.Equal(t, filepath.Join(dir, "test.client"), m.Path())
	require.Len(t, m.Bytes(), len(content))

	onDisk, err := os.ReadFile(m.Path())
	require.NoError(t, err)
	require.Equal(t, content, onDisk)

	// no temp files left behind
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
}

func TestMappingIsShared(t *testing.T) {
	dir := t.TempDir()

	m, err := Commit(dir, "shared", make([]byte, 4096))
	require.NoError(t, err)
	defer m.Close()

	copy(m.Bytes()[100:], "mutated")
	require.NoError(t, m.Sync())

	onDisk, err := os.ReadFile(m.Path())
	require.NoError(t, err)
	require.Equal(t, []byte("mutated"), onDisk[100:107])
}

func TestCommitOverwritesExisting(t *testing.T) {
	dir := t.TempDir()

	first, err := Commit(dir, "name", []byte("first-first-first"))
	require.NoError(t, err)
	defer first.Close()

	second, err := Commit(dir, "name", []byte("second"))
	require.NoError(t, err)
	defer second.Close()

	onDisk, err := os.ReadFile(second.Path())
	require.NoError(t, err)
	require.Equal(t, []byte("second"), onDisk)
}

func TestCloseIsIdempotent(t *testing.T) {
	m, err := Commit(t.TempDir(), "close", make([]byte, 64))
	require.NoError(t, err)

	require.NoError(t, m.Close())
	require.NoError(t, m.Close())

	// the file survives Close
	_, err = os.Stat(m.Path())
	require.NoError(t, err)
}
