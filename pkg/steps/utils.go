package steps

import (
	"fmt"
	"path"
	"path/filepath"
	"strings"
)

// cleanFSPath turns a project relative OS path into a clean slash path that
// stays inside the project.
func cleanFSPath(p string) (string, error) {
	p = path.Clean(filepath.ToSlash(strings.TrimSpace(p)))
	if p == "" {
		p = "."
	}
	if path.IsAbs(p) || p == ".." || strings.HasPrefix(p, "../") {
		return "", fmt.Errorf("%w: %q", ErrUnsafePath, p)
	}
	return p, nil
}

// skipList holds paths relative to the static root that are never copied:
// directories are skipped with their contents.
type skipList struct {
	dirs  []string
	files []string
}

func (s skipList) matches(rel string) bool {
	for _, dir := range s.dirs {
		if rel == dir || strings.HasPrefix(rel, dir+"/") {
			return true
		}
	}
	for _, file := range s.files {
		if rel == file {
			return true
		}
	}
	return false
}

// staticSkips excludes the templates and output directories when they sit
// inside the static root, and the generated data files when the data
// directory is the static root.
func staticSkips(root, templates, output, data string) (skipList, error) {
	var s skipList

	for _, dir := range []string{templates, output} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		clean, err := cleanFSPath(dir)
		if err != nil {
			return s, err
		}
		if rel, ok := within(root, clean); ok {
			s.dirs = append(s.dirs, rel)
		}
	}

	if strings.TrimSpace(data) != "" {
		clean, err := cleanFSPath(data)
		if err != nil {
			return s, err
		}
		if rel, ok := within(root, clean); ok {
			s.files = append(s.files, path.Join(rel, WordsFile), path.Join(rel, HomeWordsFile))
		}
	}

	return s, nil
}

// within reports whether p is root or below it, returning p relative to root.
func within(root, p string) (string, bool) {
	if root == "." {
		return p, true
	}
	if p == root {
		return ".", true
	}
	if rest, ok := strings.CutPrefix(p, root+"/"); ok {
		return rest, true
	}
	return "", false
}
