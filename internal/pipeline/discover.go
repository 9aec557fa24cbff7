package pipeline

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// List returns the regular files directly inside dir whose extension is in
// exts, sorted lexicographically. Subdirectories are not descended into.
// Extensions are compared case-insensitively and without the leading dot;
// symlinks count when they resolve to a regular file.
func List(dir string, exts []string) ([]string, error) {
	want := make(map[string]bool, len(exts))
	for _, e := range exts {
		want[strings.ToLower(strings.TrimPrefix(e, "."))] = true
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, e := range entries {
		ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(e.Name()), "."))
		if ext == "" || !want[ext] {
			continue
		}
		path := filepath.Join(dir, e.Name())
		switch {
		case e.Type().IsRegular():
		case e.Type()&os.ModeSymlink != 0:
			fi, err := os.Stat(path)
			if err != nil || !fi.Mode().IsRegular() {
				continue
			}
		default:
			continue
		}
		files = append(files, path)
	}
	sort.Strings(files)
	return files, nil
}
