package docroot

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

var ErrNotFound = errors.New("file not found")

// Root is the directory every served and error document is read from.
//
// Paths are joined to the root by plain concatenation. Nothing stops a
// request path containing ".." from leaving the root.
type Root struct {
	dir string
}

func New(dir string) Root {
	return Root{dir: strings.TrimSuffix(dir, "/")}
}

func (r Root) Dir() string {
	return r.dir
}

// Resolve maps a request path (or a bare file name) to a file system path.
func (r Root) Resolve(p string) string {
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return filepath.FromSlash(r.dir + p)
}

// Open opens the regular file at p. Missing entries and directories both
// report ErrNotFound.
func (r Root) Open(p string) (*os.File, os.FileInfo, error) {
	name := r.Resolve(p)
	f, err := os.Open(name)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %s: %v", ErrNotFound, name, err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, nil, fmt.Errorf("%w: %s: %v", ErrNotFound, name, err)
	}
	if info.IsDir() {
		f.Close()
		return nil, nil, fmt.Errorf("%w: %s is a directory", ErrNotFound, name)
	}
	return f, info, nil
}

func (r Root) ReadFile(name string) ([]byte, error) {
	f, _, err := r.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", name, err)
	}
	return data, nil
}

// Require checks that every named document exists and is readable.
func (r Root) Require(names ...string) error {
	var errs []error
	for _, name := range names {
		f, _, err := r.Open(name)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		f.Close()
	}
	return errors.Join(errs...)
}
