package backup

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ferreteria/internal/core/apperror"
)

// fakeRunner writes a marker file instead of shelling out.
type fakeRunner struct {
	dumped   []string
	restored []string
	fail     bool
	payload  []byte
}

func (f *fakeRunner) Dump(ctx context.Context, dsn, outputPath string) error {
	if f.fail {
		// Simulate pg_dump dying after opening the file.
		_ = os.WriteFile(outputPath, []byte("partial"), 0o640)
		return errors.New("connection refused")
	}
	payload := f.payload
	if payload == nil {
		payload = []byte("dump-data")
	}
	f.dumped = append(f.dumped, outputPath)
	return os.WriteFile(outputPath, payload, 0o640)
}

func (f *fakeRunner) Restore(ctx context.Context, dsn, inputPath string) error {
	if f.fail {
		return errors.New("connection refused")
	}
	f.restored = append(f.restored, inputPath)
	return nil
}

func newManagerFixture(t *testing.T) (*Manager, *fakeRunner, string) {
	t.Helper()
	dir := t.TempDir()
	runner := &fakeRunner{}
	m := NewManager(Config{DSN: "postgres://test", Dir: dir, Retention: 30 * 24 * time.Hour}, runner)
	return m, runner, dir
}

func TestCreateAndList(t *testing.T) {
	m, runner, dir := newManagerFixture(t)

	info, err := m.Create(context.Background())
	require.NoError(t, err)

	assert.Contains(t, info.Name, "ferreteria-")
	assert.Equal(t, int64(len("dump-data")), info.SizeBytes)
	assert.NotEmpty(t, info.Size)
	require.Len(t, runner.dumped, 1)
	assert.Equal(t, filepath.Join(dir, info.Name), runner.dumped[0])

	list, err := m.List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, info.Name, list[0].Name)
}

func TestCreate_FailureRemovesPartialFile(t *testing.T) {
	m, runner, dir := newManagerFixture(t)
	runner.fail = true

	_, err := m.Create(context.Background())
	require.Error(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "partial dump must not linger")
}

func TestList_IgnoresForeignFiles(t *testing.T) {
	m, _, dir := newManagerFixture(t)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o640))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "subdir"), 0o750))

	_, err := m.Create(context.Background())
	require.NoError(t, err)

	list, err := m.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestList_MissingDirIsEmpty(t *testing.T) {
	runner := &fakeRunner{}
	m := NewManager(Config{Dir: filepath.Join(t.TempDir(), "nope")}, runner)

	list, err := m.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestRestore(t *testing.T) {
	m, runner, _ := newManagerFixture(t)

	info, err := m.Create(context.Background())
	require.NoError(t, err)

	require.NoError(t, m.Restore(context.Background(), info.Name))
	require.Len(t, runner.restored, 1)
}

func TestRestore_RejectsTraversal(t *testing.T) {
	m, _, _ := newManagerFixture(t)

	for _, name := range []string{
		"../etc/passwd",
		"/etc/passwd",
		"..",
		".hidden.dump",
		"",
		"backup.tar.gz",
	} {
		err := m.Restore(context.Background(), name)
		appErr, ok := apperror.AsAppError(err)
		require.True(t, ok, "name %q", name)
		assert.Equal(t, apperror.CodeValidation, appErr.Code, "name %q", name)
	}
}

func TestRestore_UnknownBackup(t *testing.T) {
	m, _, _ := newManagerFixture(t)

	err := m.Restore(context.Background(), "ferreteria-19700101-000000.dump")
	assert.True(t, apperror.IsNotFound(err))
}

func TestDelete(t *testing.T) {
	m, _, _ := newManagerFixture(t)

	info, err := m.Create(context.Background())
	require.NoError(t, err)

	require.NoError(t, m.Delete(context.Background(), info.Name))

	list, err := m.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestPrune(t *testing.T) {
	m, _, dir := newManagerFixture(t)

	_, err := m.Create(context.Background())
	require.NoError(t, err)

	old := filepath.Join(dir, "ferreteria-20200101-000000.dump")
	require.NoError(t, os.WriteFile(old, []byte("old"), 0o640))
	stale := time.Now().Add(-60 * 24 * time.Hour)
	require.NoError(t, os.Chtimes(old, stale, stale))

	pruned, err := m.Prune(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, pruned)

	list, err := m.List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.NotEqual(t, "ferreteria-20200101-000000.dump", list[0].Name)
}

func TestPrune_DisabledRetentionKeepsEverything(t *testing.T) {
	runner := &fakeRunner{}
	m := NewManager(Config{DSN: "x", Dir: t.TempDir()}, runner)

	_, err := m.Create(context.Background())
	require.NoError(t, err)

	pruned, err := m.Prune(context.Background())
	require.NoError(t, err)
	assert.Zero(t, pruned)
}
