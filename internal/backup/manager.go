package backup

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"ferreteria/internal/core/apperror"
	"ferreteria/pkg/logger"
)

const dumpExtension = ".dump"

// Info describes one dump file in the backup directory.
type Info struct {
	Name      string    `json:"name"`
	SizeBytes int64     `json:"sizeBytes"`
	Size      string    `json:"size"`
	CreatedAt time.Time `json:"createdAt"`
	Age       string    `json:"age"`
}

// Config for the backup manager.
type Config struct {
	// DSN of the database being dumped and restored.
	DSN string
	// Dir holds the dump files.
	Dir string
	// Retention prunes dumps older than this. Zero disables pruning.
	Retention time.Duration
}

// Manager creates, restores, lists and prunes database dumps.
type Manager struct {
	config Config
	runner Runner

	now func() time.Time
}

// NewManager creates a backup manager. The directory is created on first
// use if missing.
func NewManager(config Config, runner Runner) *Manager {
	return &Manager{
		config: config,
		runner: runner,
		now:    time.Now,
	}
}

// Create produces a new timestamped dump and returns its bookkeeping info.
func (m *Manager) Create(ctx context.Context) (*Info, error) {
	if err := os.MkdirAll(m.config.Dir, 0o750); err != nil {
		return nil, fmt.Errorf("create backup dir: %w", err)
	}

	name := "ferreteria-" + m.now().UTC().Format("20060102-150405") + dumpExtension
	path := filepath.Join(m.config.Dir, name)

	started := m.now()
	if err := m.runner.Dump(ctx, m.config.DSN, path); err != nil {
		// A failed dump must not linger looking like a good one.
		_ = os.Remove(path)
		return nil, fmt.Errorf("dump: %w", err)
	}

	info, err := m.stat(name)
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "backup created",
		"name", name,
		"size", info.Size,
		"took", m.now().Sub(started),
	)
	return info, nil
}

// Restore replays the named dump into the database. The name is resolved
// strictly inside the backup directory.
func (m *Manager) Restore(ctx context.Context, name string) error {
	path, err := m.resolve(name)
	if err != nil {
		return err
	}

	if err := m.runner.Restore(ctx, m.config.DSN, path); err != nil {
		return fmt.Errorf("restore: %w", err)
	}

	logger.Info(ctx, "backup restored", "name", name)
	return nil
}

// List returns dumps newest first.
func (m *Manager) List(ctx context.Context) ([]Info, error) {
	entries, err := os.ReadDir(m.config.Dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []Info{}, nil
		}
		return nil, fmt.Errorf("read backup dir: %w", err)
	}

	infos := make([]Info, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), dumpExtension) {
			continue
		}
		info, err := m.stat(entry.Name())
		if err != nil {
			return nil, err
		}
		infos = append(infos, *info)
	}

	sort.Slice(infos, func(i, j int) bool {
		return infos[i].CreatedAt.After(infos[j].CreatedAt)
	})
	return infos, nil
}

// Delete removes one dump by name.
func (m *Manager) Delete(ctx context.Context, name string) error {
	path, err := m.resolve(name)
	if err != nil {
		return err
	}

	if err := os.Remove(path); err != nil {
		return fmt.Errorf("delete backup: %w", err)
	}

	logger.Info(ctx, "backup deleted", "name", name)
	return nil
}

// Prune removes dumps older than the retention window and reports how many
// were dropped. A zero retention keeps everything.
func (m *Manager) Prune(ctx context.Context) (int, error) {
	if m.config.Retention <= 0 {
		return 0, nil
	}

	infos, err := m.List(ctx)
	if err != nil {
		return 0, err
	}

	cutoff := m.now().Add(-m.config.Retention)
	pruned := 0
	for _, info := range infos {
		if info.CreatedAt.After(cutoff) {
			continue
		}
		if err := m.Delete(ctx, info.Name); err != nil {
			return pruned, err
		}
		pruned++
	}

	if pruned > 0 {
		logger.Info(ctx, "backups pruned", "count", pruned, "retention", m.config.Retention)
	}
	return pruned, nil
}

func (m *Manager) stat(name string) (*Info, error) {
	fi, err := os.Stat(filepath.Join(m.config.Dir, name))
	if err != nil {
		return nil, fmt.Errorf("stat backup: %w", err)
	}

	return &Info{
		Name:      name,
		SizeBytes: fi.Size(),
		Size:      humanize.Bytes(uint64(fi.Size())),
		CreatedAt: fi.ModTime(),
		Age:       humanize.RelTime(fi.ModTime(), m.now(), "old", "from now"),
	}, nil
}

// resolve validates a user-supplied dump name and maps it to a path inside
// the backup directory. Separators and traversal are rejected.
func (m *Manager) resolve(name string) (string, error) {
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return "", apperror.NewValidation("invalid backup name").
			WithDetail("name", name)
	}
	if !strings.HasSuffix(name, dumpExtension) {
		return "", apperror.NewValidation("invalid backup name").
			WithDetail("name", name)
	}

	path := filepath.Join(m.config.Dir, name)
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return "", apperror.NewNotFound("backup", name)
		}
		return "", fmt.Errorf("stat backup: %w", err)
	}
	return path, nil
}
