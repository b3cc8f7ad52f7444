// Package backup manages database dumps: creating and restoring them
// through external tooling, and the filesystem bookkeeping around the dump
// directory (listing, aging, pruning, scheduling).
package backup

import (
	"context"
	"fmt"
	"os"
	"os/exec"
)

// Runner executes the dump and restore commands. The production runner
// shells out to pg_dump/pg_restore; tests substitute a fake.
type Runner interface {
	Dump(ctx context.Context, dsn, outputPath string) error
	Restore(ctx context.Context, dsn, inputPath string) error
}

// PgRunner runs the PostgreSQL client tools.
type PgRunner struct {
	// DumpBin and RestoreBin default to the tools on PATH.
	DumpBin    string
	RestoreBin string
}

func NewPgRunner() *PgRunner {
	return &PgRunner{
		DumpBin:    "pg_dump",
		RestoreBin: "pg_restore",
	}
}

// Dump writes a custom-format archive to outputPath.
func (r *PgRunner) Dump(ctx context.Context, dsn, outputPath string) error {
	cmd := exec.CommandContext(ctx, r.DumpBin,
		"--format=custom",
		"--file="+outputPath,
		"--dbname="+dsn,
	)
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s: %w", r.DumpBin, err)
	}
	return nil
}

// Restore replays a custom-format archive into the database. --clean drops
// existing objects first so the restore is a full replacement.
func (r *PgRunner) Restore(ctx context.Context, dsn, inputPath string) error {
	cmd := exec.CommandContext(ctx, r.RestoreBin,
		"--clean",
		"--if-exists",
		"--dbname="+dsn,
		inputPath,
	)
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s: %w", r.RestoreBin, err)
	}
	return nil
}
