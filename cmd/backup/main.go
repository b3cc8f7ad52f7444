// Package main is a one-shot CLI for database backup management.
//
// Usage:
//
//	backup create
//	backup restore <name>
//	backup list
//	backup prune
package main

import (
	"context"
	"fmt"
	"os"

	"ferreteria/internal/backup"
	"ferreteria/internal/config"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	manager := backup.NewManager(backup.Config{
		DSN:       cfg.DatabaseURL,
		Dir:       cfg.BackupDir,
		Retention: cfg.BackupRetention,
	}, backup.NewPgRunner())

	ctx := context.Background()

	switch os.Args[1] {
	case "create":
		info, err := manager.Create(ctx)
		if err != nil {
			fatal(err)
		}
		fmt.Printf("created %s (%s)\n", info.Name, info.Size)

	case "restore":
		if len(os.Args) < 3 {
			usage()
			os.Exit(2)
		}
		name := os.Args[2]
		if err := manager.Restore(ctx, name); err != nil {
			fatal(err)
		}
		fmt.Printf("restored %s\n", name)

	case "list":
		items, err := manager.List(ctx)
		if err != nil {
			fatal(err)
		}
		if len(items) == 0 {
			fmt.Println("no backups found")
			return
		}
		for _, item := range items {
			fmt.Printf("%-40s %10s  %s\n", item.Name, item.Size, item.Age)
		}

	case "prune":
		removed, err := manager.Prune(ctx)
		if err != nil {
			fatal(err)
		}
		fmt.Printf("pruned %d backup(s)\n", removed)

	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: backup <create|restore <name>|list|prune>")
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
