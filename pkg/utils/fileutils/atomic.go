package fileutils

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// AtomicWrite writes a file atomically, creating parent directories as needed.
func AtomicWrite(path string, gen func(w io.Writer) error) error {
	tmp, err := writeTemp(path, gen)
	if err != nil {
		return err
	}
	defer os.Remove(tmp)

	return commit(tmp, path)
}

// AtomicEdit rewrites a file atomically, leaving it untouched when the
// generated content is identical.
func AtomicEdit(path string, gen func(w io.Writer) error) error {
	tmp, err := writeTemp(path, gen)
	if err != nil {
		return err
	}
	defer os.Remove(tmp)

	if eq, err := sameContent(tmp, path); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return err
		}
	} else if eq {
		return nil
	}

	return commit(tmp, path)
}

func writeTemp(path string, gen func(w io.Writer) error) (string, error) {
	dir, base := filepath.Split(path)
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}

	tmp, err := os.CreateTemp(dir, "."+base+".tmp-*")
	if err != nil {
		return "", err
	}

	if err := gen(tmp); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return "", err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return "", err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return "", err
	}

	return tmp.Name(), nil
}

func commit(tmp, path string) error {
	if err := os.Rename(tmp, path); err != nil {
		return err
	}
	if df, err := os.Open(filepath.Dir(path)); err == nil {
		_ = df.Sync()
		_ = df.Close()
	}
	return nil
}

// sameContent compares two files by size and then content
func sameContent(a, b string) (bool, error) {
	aFi, err := os.Stat(a)
	if err != nil {
		return false, err
	}
	bFi, err := os.Stat(b)
	if err != nil {
		return false, err
	}
	if aFi.IsDir() || bFi.IsDir() {
		return false, fmt.Errorf("cannot compare directories (%s, %s)", a, b)
	}
	if aFi.Size() != bFi.Size() {
		return false, nil
	}

	aF, err := os.Open(a)
	if err != nil {
		return false, err
	}
	defer aF.Close()

	bF, err := os.Open(b)
	if err != nil {
		return false, err
	}
	defer bF.Close()

	const bufSize = 128 * 1024
	aBuf := make([]byte, bufSize)
	bBuf := make([]byte, bufSize)

	for {
		aN, aErr := io.ReadFull(aF, aBuf)
		bN, bErr := io.ReadFull(bF, bBuf)

		if aErr != nil && !errors.Is(aErr, io.EOF) && !errors.Is(aErr, io.ErrUnexpectedEOF) {
			return false, aErr
		}
		if bErr != nil && !errors.Is(bErr, io.EOF) && !errors.Is(bErr, io.ErrUnexpectedEOF) {
			return false, bErr
		}

		if aN == 0 && bN == 0 {
			return true, nil
		}
		if aN != bN || !bytes.Equal(aBuf[:aN], bBuf[:bN]) {
			return false, nil
		}
	}
}
