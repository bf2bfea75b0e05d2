package ingest

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// SourceFile represents a resume file found in the intake directory.
type SourceFile struct {
	Filename string // Base name (e.g., "alice.txt"), the identity of the record
	AbsPath  string // Absolute file path
}

// supported resume extensions
var resumeExtensions = map[string]bool{
	".txt": true,
	".md":  true,
}

// ScanSourceDir enumerates the intake directory once and returns the
// resume files in deterministic order. Subdirectories and files with
// unsupported extensions are skipped. Files appearing after the scan are
// picked up by the next run.
func ScanSourceDir(dir string) ([]SourceFile, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read source directory %s: %w", dir, err)
	}

	var files []SourceFile
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if !resumeExtensions[ext] {
			continue
		}

		absPath, err := filepath.Abs(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("failed to resolve path for %s: %w", entry.Name(), err)
		}

		files = append(files, SourceFile{
			Filename: entry.Name(),
			AbsPath:  absPath,
		})
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].Filename < files[j].Filename
	})

	return files, nil
}
