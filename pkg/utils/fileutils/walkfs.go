package fileutils

import (
	"io/fs"
)

// WalkFilesFS walks a filesystem tree and returns the file paths relative to
// root for which keep returns true. A nil keep keeps everything.
func WalkFilesFS(fsys fs.FS, root string, keep func(rel string) bool) ([]string, error) {
	files, _, err := WalkFS(fsys, root)
	if err != nil {
		return nil, err
	}
	if keep == nil {
		return files, nil
	}

	out := files[:0]
	for _, rel := range files {
		if keep(rel) {
			out = append(out, rel)
		}
	}
	return out, nil
}
