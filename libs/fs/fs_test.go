package fs_test

import (
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	mbfs "code.meridianbank.io/meridian-go/libs/fs"
	mbrand "code.meridianbank.io/meridian-go/libs/rand"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileSystemHelpers(t *testing.T) {
	t.Run("Ensuring a missing directory creates it", testEnsuringMissingDirectoryCreatesIt)
	t.Run("Ensuring an existing directory succeeds", testEnsuringExistingDirectorySucceeds)
	t.Run("Checking a non-existing path reports absence", testCheckingNonExistingPathReportsAbsence)
	t.Run("Checking an existing path reports presence", testCheckingExistingPathReportsPresence)
	t.Run("Checking file existence on a directory fails", testCheckingFileExistenceOnDirectoryFails)
	t.Run("Writing then reading a file round-trips", testWritingThenReadingFileRoundTrips)
	t.Run("Rewriting a file replaces its content", testRewritingFileReplacesContent)
	t.Run("Written files are owner-only", testWrittenFilesAreOwnerOnly)
	t.Run("Reading a non-existing file fails", testReadingNonExistingFileFails)
}

func testEnsuringMissingDirectoryCreatesIt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a", "b")

	err := mbfs.EnsureDir(path)
	require.NoError(t, err)

	stats, err := os.Stat(path)
	require.NoError(t, err)
	assert.True(t, stats.IsDir())
	if runtime.GOOS != "windows" {
		assert.Equal(t, fs.FileMode(0o700), stats.Mode().Perm())
	}
}

func testEnsuringExistingDirectorySucceeds(t *testing.T) {
	path := t.TempDir()

	require.NoError(t, mbfs.EnsureDir(path))
	require.NoError(t, mbfs.EnsureDir(path))
}

func testCheckingNonExistingPathReportsAbsence(t *testing.T) {
	exists, err := mbfs.PathExists("/" + mbrand.RandomStr(10))
	require.NoError(t, err)
	assert.False(t, exists)

	exists, err = mbfs.FileExists("/" + mbrand.RandomStr(10))
	require.NoError(t, err)
	assert.False(t, exists)
}

func testCheckingExistingPathReportsPresence(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "file.txt")
	require.NoError(t, mbfs.WriteFile(path, []byte("content")))

	exists, err := mbfs.PathExists(dir)
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = mbfs.FileExists(path)
	require.NoError(t, err)
	assert.True(t, exists)
}

func testCheckingFileExistenceOnDirectoryFails(t *testing.T) {
	path := t.TempDir()

	exists, err := mbfs.FileExists(path)
	require.Error(t, err)
	assert.False(t, exists)
}

func testWritingThenReadingFileRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "file.txt")
	data := []byte("some data to keep")

	require.NoError(t, mbfs.WriteFile(path, data))

	readData, err := mbfs.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, data, readData)
}

func testRewritingFileReplacesContent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "file.txt")

	require.NoError(t, mbfs.WriteFile(path, []byte("first version")))
	require.NoError(t, mbfs.WriteFile(path, []byte("second version")))

	readData, err := mbfs.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []byte("second version"), readData)
}

func testWrittenFilesAreOwnerOnly(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("file permissions are not meaningful on windows")
	}
	path := filepath.Join(t.TempDir(), "file.txt")

	require.NoError(t, mbfs.WriteFile(path, []byte("secret")))

	stats, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, fs.FileMode(0o600), stats.Mode().Perm())
}

func testReadingNonExistingFileFails(t *testing.T) {
	readData, err := mbfs.ReadFile(filepath.Join(t.TempDir(), "nope.txt"))
	require.Error(t, err)
	assert.Empty(t, readData)
}
