package watchlist

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ErrUnknownList is returned by List for a name with no file behind it.
var ErrUnknownList = errors.New("unknown watchlist")

// Provider supplies named symbol lists.
type Provider interface {
	Names() ([]string, error)
	List(name string) ([]string, error)
}

// Dir reads watchlists from a directory. Every regular, non-hidden file is
// one list named after the file.
type Dir struct {
	path string
}

// NewDir returns a Dir over path. The directory must exist.
func NewDir(path string) (*Dir, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("watchlist dir: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("watchlist dir: %s is not a directory", path)
	}
	return &Dir{path: path}, nil
}

// Path returns the directory being read.
func (d *Dir) Path() string { return d.path }

// Names returns the list names in sorted order. The directory is rescanned
// on every call so edited lists show up without a restart.
func (d *Dir) Names() ([]string, error) {
	entries, err := os.ReadDir(d.path)
	if err != nil {
		return nil, fmt.Errorf("read watchlist dir: %w", err)
	}
	var names []string
	for _, e := range entries {
		if e.Type().IsRegular() && !strings.HasPrefix(e.Name(), ".") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// List returns the symbols of one list in file order.
func (d *Dir) List(name string) ([]string, error) {
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return nil, fmt.Errorf("%w: %q", ErrUnknownList, name)
	}
	f, err := os.Open(filepath.Join(d.path, name))
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownList, name)
	}
	if err != nil {
		return nil, fmt.Errorf("open watchlist: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// Parse reads one symbol per line. Blank lines and lines starting with # are
// skipped; a trailing # comment is stripped.
func Parse(r io.Reader) ([]string, error) {
	var symbols []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := sc.Text()
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		symbols = append(symbols, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read watchlist: %w", err)
	}
	return symbols, nil
}
