package storage

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExportArchiveSaveAndDelete(t *testing.T) {
	archive, err := NewExportArchive(t.TempDir())
	require.NoError(t, err)

	name, err := archive.Save("timetable-class-10.csv", []byte("Day,Start\n"))
	require.NoError(t, err)
	assert.Equal(t, "timetable-class-10.csv", name)

	data, err := os.ReadFile(archive.Path(name))
	require.NoError(t, err)
	assert.Equal(t, "Day,Start\n", string(data))

	require.NoError(t, archive.Delete(name))
	_, err = os.Stat(archive.Path(name))
	assert.True(t, os.IsNotExist(err))

	// Deleting a missing file is not an error.
	assert.NoError(t, archive.Delete(name))
}

func TestExportArchiveCleanupOlderThan(t *testing.T) {
	dir := t.TempDir()
	archive, err := NewExportArchive(dir)
	require.NoError(t, err)

	_, err = archive.Save("stale.csv", []byte("old"))
	require.NoError(t, err)
	_, err = archive.Save("fresh.csv", []byte("new"))
	require.NoError(t, err)

	stalePath := filepath.Join(dir, "stale.csv")
	old := time.Now().Add(-48 * time.Hour)
	require.NoError(t, os.Chtimes(stalePath, old, old))

	deleted, err := archive.CleanupOlderThan(24 * time.Hour)
	require.NoError(t, err)
	assert.Equal(t, []string{"stale.csv"}, deleted)

	_, err = os.Stat(stalePath)
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Join(dir, "fresh.csv"))
	assert.NoError(t, err)
}
