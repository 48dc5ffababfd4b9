package pipeline

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// OutputSuffix replaces the source extension on every output file.
const OutputSuffix = ".b64.txt"

// Source represents a discovered JPEG file.
type Source struct {
	// AbsPath is the path to the file on disk.
	AbsPath string
	// RelPath is the path relative to the input directory, slash-separated.
	RelPath string
	// OutRel is RelPath with its extension replaced by OutputSuffix.
	OutRel string
	// Size is the file size in bytes at scan time.
	Size int64
}

// jpegExtensions lists recognized extensions, compared case-insensitively.
var jpegExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
}

// IsJPEGName reports whether name carries a JPEG extension in any case.
func IsJPEGName(name string) bool {
	return jpegExtensions[strings.ToLower(filepath.Ext(name))]
}

// ScanJPEGs lists JPEG files under inputDir in lexical order. Without
// recurse only the top level is read. Symlinked files are followed;
// symlinked directories are not descended into.
func ScanJPEGs(inputDir string, recurse bool) ([]Source, error) {
	var sources []Source

	add := func(path string, d fs.DirEntry) error {
		if d.IsDir() || !IsJPEGName(d.Name()) {
			return nil
		}
		// Stat, not Lstat: symlinked JPEGs are read through their target.
		info, err := os.Stat(path)
		if err != nil {
			if d.Type()&fs.ModeSymlink != 0 {
				return nil // dangling link
			}
			return err
		}
		if !info.Mode().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(inputDir, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		sources = append(sources, Source{
			AbsPath: path,
			RelPath: rel,
			OutRel:  strings.TrimSuffix(rel, filepath.Ext(rel)) + OutputSuffix,
			Size:    info.Size(),
		})
		return nil
	}

	if !recurse {
		entries, err := os.ReadDir(inputDir)
		if err != nil {
			return nil, err
		}
		for _, e := range entries {
			if err := add(filepath.Join(inputDir, e.Name()), e); err != nil {
				return nil, err
			}
		}
		return sources, nil
	}

	err := filepath.WalkDir(inputDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		return add(path, d)
	})
	return sources, err
}
