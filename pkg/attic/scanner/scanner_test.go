package scanner

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jamesainslie/attic/pkg/attic/store"
	"github.com/jamesainslie/attic/pkg/attic/types"
)

// writeFile creates a file with content under root, making parent dirs.
func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

// digestOf returns the hex SHA-256 of a string.
func digestOf(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}

// recordsByPath indexes scan output for assertions.
func recordsByPath(recs []types.FileRecord) map[string]types.FileRecord {
	m := make(map[string]types.FileRecord, len(recs))
	for _, r := range recs {
		m[r.Path] = r
	}
	return m
}

func TestScan_Fingerprints(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, root, "a.txt", "hello")
	writeFile(t, root, "sub/dir/b.txt", "world")

	s := New(Options{Root: root})
	result, err := s.Scan(context.Background())
	require.NoError(t, err)

	require.Len(t, result.Records, 2)
	byPath := recordsByPath(result.Records)

	a, ok := byPath["a.txt"]
	require.True(t, ok)
	assert.Equal(t, digestOf("hello"), a.SHA256)
	assert.Equal(t, int64(5), a.Size)
	assert.NotZero(t, a.Mtime)
	assert.NotZero(t, a.Ctime)

	b, ok := byPath["sub/dir/b.txt"]
	require.True(t, ok)
	assert.Equal(t, digestOf("world"), b.SHA256)

	assert.Equal(t, int64(2), result.FilesScanned)
	assert.Empty(t, result.Warnings)
}

func TestScan_SkipsSidecars(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, root, "a.txt", "data")
	writeFile(t, root, store.SnapshotFilename, "{}")
	writeFile(t, root, store.DeletionsFilename, "{}")
	writeFile(t, root, store.StagingFilename, "{}")
	// A sidecar name in a subdirectory is a user file, not ours.
	writeFile(t, root, "sub/"+store.SnapshotFilename, "{}")

	s := New(Options{Root: root})
	result, err := s.Scan(context.Background())
	require.NoError(t, err)

	byPath := recordsByPath(result.Records)
	assert.Len(t, byPath, 2)
	assert.Contains(t, byPath, "a.txt")
	assert.Contains(t, byPath, "sub/"+store.SnapshotFilename)
	assert.NotContains(t, byPath, store.SnapshotFilename)
}

func TestScan_SkipsSymlinksWithWarning(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, root, "real.txt", "data")
	require.NoError(t, os.Symlink(filepath.Join(root, "real.txt"), filepath.Join(root, "link.txt")))

	s := New(Options{Root: root})
	result, err := s.Scan(context.Background())
	require.NoError(t, err)

	byPath := recordsByPath(result.Records)
	assert.Contains(t, byPath, "real.txt")
	assert.NotContains(t, byPath, "link.txt")
	require.NotEmpty(t, result.Warnings)
	assert.Contains(t, result.Warnings[0], "non-regular")
}

func TestScan_ExcludePatterns(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, root, "keep.txt", "keep")
	writeFile(t, root, ".DS_Store", "junk")
	writeFile(t, root, "sub/.DS_Store", "junk")

	s := New(Options{Root: root, Exclude: []string{".DS_Store", "**/.DS_Store"}})
	result, err := s.Scan(context.Background())
	require.NoError(t, err)

	byPath := recordsByPath(result.Records)
	assert.Len(t, byPath, 1)
	assert.Contains(t, byPath, "keep.txt")
}

func TestScan_RootErrors(t *testing.T) {
	t.Parallel()

	t.Run("missing root", func(t *testing.T) {
		t.Parallel()
		s := New(Options{Root: filepath.Join(t.TempDir(), "nope")})
		_, err := s.Scan(context.Background())
		assert.ErrorIs(t, err, ErrNotDirectory)
	})

	t.Run("root is a file", func(t *testing.T) {
		t.Parallel()
		root := t.TempDir()
		writeFile(t, root, "file.txt", "x")
		s := New(Options{Root: filepath.Join(root, "file.txt")})
		_, err := s.Scan(context.Background())
		assert.ErrorIs(t, err, ErrNotDirectory)
	})
}

func TestScan_EmptyDirectory(t *testing.T) {
	t.Parallel()

	s := New(Options{Root: t.TempDir()})
	result, err := s.Scan(context.Background())
	require.NoError(t, err)
	assert.Empty(t, result.Records)
	assert.Zero(t, result.FilesScanned)
}
