// docrename analyzes occupational-exam PDFs in a directory and renames
// them to the canonical convention, printing what it did (or would do
// with --dry-run).
package main

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/cmespinar/docrename/internal/config"
	"github.com/cmespinar/docrename/internal/extract"
	"github.com/cmespinar/docrename/internal/rename"
	"github.com/cmespinar/docrename/internal/service"
)

var version = "dev" // This will be set by build flags

func main() {
	dryRun := pflag.Bool("dry-run", false, "Show the new names without renaming anything")
	recursive := pflag.Bool("recursive", false, "Descend into subdirectories")
	formatFlag := pflag.String("format", "", "Force naming format: 'standard' or 'hudbay' (default: detected per document)")

	cfg, err := config.LoadFromFlags()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if version != "dev" {
		cfg.Version = version
	}

	var forced extract.Format
	if *formatFlag != "" {
		forced, err = extract.ParseFormat(*formatFlag)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	}

	logger := config.NewLogger(cfg.LogLevel)
	svc := service.NewFromConfig(cfg, nil, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	paths, err := collectPDFs(cfg.Directory, *recursive)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cannot scan %s: %v\n", cfg.Directory, err)
		os.Exit(1)
	}
	if len(paths) == 0 {
		fmt.Printf("No PDF files found in %s\n", cfg.Directory)
		return
	}

	failures := 0
	for _, path := range paths {
		if ctx.Err() != nil {
			break
		}
		if err := renameOne(ctx, svc, path, forced, *dryRun); err != nil {
			fmt.Fprintf(os.Stderr, "  ERROR %s: %v\n", filepath.Base(path), err)
			failures++
		}
	}
	if failures > 0 {
		fmt.Fprintf(os.Stderr, "\n%d of %d documents could not be renamed\n", failures, len(paths))
		os.Exit(1)
	}
}

func renameOne(ctx context.Context, svc *service.Service, path string, forced extract.Format, dryRun bool) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	result, err := svc.AnalyzeFile(ctx, filepath.Base(path), data)
	if err != nil {
		return err
	}
	if !result.Success {
		return fmt.Errorf("no DNI found; skipping")
	}

	format := result.DetectedFormat
	if forced != "" {
		format = forced
	}
	fields := make(map[extract.FieldKind]string, len(result.Defaults))
	for k, v := range result.Defaults {
		fields[k] = v
	}

	newName, err := rename.Build(fields, rename.DefaultSpec(format))
	if err != nil {
		return err
	}

	if newName == filepath.Base(path) {
		fmt.Printf("  OK    %s (already named correctly)\n", newName)
		return nil
	}

	target := filepath.Join(filepath.Dir(path), newName)
	if dryRun {
		fmt.Printf("  DRY   %s -> %s\n", filepath.Base(path), newName)
		return nil
	}
	if _, err := os.Stat(target); err == nil {
		return fmt.Errorf("target already exists: %s", newName)
	}
	if err := os.Rename(path, target); err != nil {
		return err
	}
	fmt.Printf("  DONE  %s -> %s\n", filepath.Base(path), newName)
	return nil
}

func collectPDFs(dir string, recursive bool) ([]string, error) {
	var paths []string
	if recursive {
		err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && isPDF(path) {
				paths = append(paths, path)
			}
			return nil
		})
		return paths, err
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		if !e.IsDir() && isPDF(e.Name()) {
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}
	return paths, nil
}

func isPDF(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".pdf")
}
