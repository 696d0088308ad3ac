package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirosfoundation/obkit/pkg/codec"
)

// badgeFile is the decoded content of one input file.
type badgeFile struct {
	docs   []any
	format codec.Format
	// array is set when the file held a top-level array, even of a single
	// element, so that outputs can keep that shape.
	array bool
}

// readBadgeFile reads a badge file. A file holding a top-level array yields
// one document per element.
func readBadgeFile(path string) (*badgeFile, error) {
	v, f, err := codec.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if arr, ok := v.([]any); ok {
		return &badgeFile{docs: arr, format: f, array: true}, nil
	}
	return &badgeFile{docs: []any{v}, format: f}, nil
}

// readDocuments returns the documents of a badge file and its format.
func readDocuments(path string) ([]any, codec.Format, error) {
	bf, err := readBadgeFile(path)
	if err != nil {
		return nil, "", err
	}
	return bf.docs, bf.format, nil
}

// outputFormat resolves the --format flag, falling back to fallback.
func outputFormat(name string, fallback codec.Format) (codec.Format, error) {
	if name == "" {
		return fallback, nil
	}
	return codec.ParseFormat(name)
}

// writeOutput encodes v to path, or to w when path is empty or "-".
func writeOutput(w io.Writer, path string, v any, f codec.Format) error {
	if path == "" || path == "-" {
		data, err := codec.Encode(v, f)
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	}
	return codec.WriteFile(path, v, f)
}

// findBadgeFiles finds all badge documents in a directory recursively
func findBadgeFiles(dir string) ([]string, error) {
	var files []string

	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if info.IsDir() {
			// Skip hidden directories (including .well-known) and common
			// non-content directories
			name := info.Name()
			if path != dir && (strings.HasPrefix(name, ".") || name == "node_modules" || name == "vendor") {
				return filepath.SkipDir
			}
			return nil
		}

		if _, err := codec.FormatFromPath(path); err == nil {
			files = append(files, path)
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", dir, err)
	}

	return files, nil
}
