package fileutils

import (
	"io/fs"
	"os"
	"path"
	"slices"
)

// Walk walks a directory tree on disk and returns the sets of files and
// directories, relative to root and slash-separated. A missing root yields
// empty results.
func Walk(root string) (files []string, dirs []string, err error) {
	if _, err := os.Stat(root); err != nil {
		if os.IsNotExist(err) {
			return nil, nil, nil
		}
		return nil, nil, err
	}

	return WalkFS(os.DirFS(root), ".")
}

// WalkFS walks fsys below root, returning sorted slash-separated paths
// relative to root. The root itself is not included.
func WalkFS(fsys fs.FS, root string) (files []string, dirs []string, err error) {
	root = path.Clean(root)

	err = fs.WalkDir(fsys, root, func(current string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if current == root {
			return nil
		}

		rel := current
		if root != "." {
			rel = current[len(root)+1:]
		}

		if d.IsDir() {
			dirs = append(dirs, rel)
		} else {
			files = append(files, rel)
		}
		return nil
	})

	slices.Sort(files)
	slices.Sort(dirs)

	return files, dirs, err
}
