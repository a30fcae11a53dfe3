package openingbook

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/multierr"
)

// NoOpening is returned when no catalog entry matches.
const NoOpening = "No Opening"

var (
	ErrCatalogEmpty = errors.New("opening catalog is empty")
	ErrInvalidEntry = errors.New("invalid opening entry")
)

//go:embed catalog.json
var embeddedCatalog []byte

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
	defaultErr     error
)

// Entry is one named opening. Moves is the SAN prefix a game must start with.
type Entry struct {
	ECO   string   `json:"eco"`
	Name  string   `json:"name"`
	Moves []string `json:"moves"`
}

// catalogFileEntry is the on-disk shape: moves as one space-separated string.
type catalogFileEntry struct {
	ECO   string `json:"eco"`
	Name  string `json:"name"`
	Moves string `json:"moves"`
}

// Catalog is an ordered, read-only list of openings. Order decides ties.
type Catalog struct {
	entries []Entry
}

// NewCatalog validates and copies entries, keeping their order.
func NewCatalog(entries []Entry) (*Catalog, error) {
	if len(entries) == 0 {
		return nil, ErrCatalogEmpty
	}
	var errs error
	out := make([]Entry, 0, len(entries))
	for i, e := range entries {
		e.ECO = strings.TrimSpace(e.ECO)
		e.Name = strings.TrimSpace(e.Name)
		if e.Name == "" {
			errs = multierr.Append(errs, fmt.Errorf("%w: entry %d has no name", ErrInvalidEntry, i))
			continue
		}
		if len(e.Moves) == 0 {
			errs = multierr.Append(errs, fmt.Errorf("%w: entry %d (%s) has no moves", ErrInvalidEntry, i, e.Name))
			continue
		}
		e.Moves = append([]string(nil), e.Moves...)
		out = append(out, e)
	}
	if errs != nil {
		return nil, errs
	}
	return &Catalog{entries: out}, nil
}

// Parse reads a JSON array of {eco, name, moves} objects.
func Parse(r io.Reader) (*Catalog, error) {
	var raw []catalogFileEntry
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode opening catalog: %w", err)
	}
	entries := make([]Entry, 0, len(raw))
	for _, fe := range raw {
		entries = append(entries, Entry{ECO: fe.ECO, Name: fe.Name, Moves: strings.Fields(fe.Moves)})
	}
	return NewCatalog(entries)
}

// Load reads a catalog file.
func Load(path string) (*Catalog, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open opening catalog %q: %w", path, err)
	}
	defer file.Close()

	c, err := Parse(file)
	if err != nil {
		return nil, fmt.Errorf("load opening catalog %q: %w", path, err)
	}
	return c, nil
}

// Open loads path, or the embedded catalog when path is empty.
func Open(path string) (*Catalog, error) {
	if strings.TrimSpace(path) == "" {
		return Parse(bytes.NewReader(embeddedCatalog))
	}
	return Load(path)
}

// Default returns the process-wide catalog, loaded once.
func Default() (*Catalog, error) {
	defaultOnce.Do(func() {
		path, err := ResolveCatalogPath()
		if err != nil {
			defaultErr = err
			return
		}
		defaultCatalog, defaultErr = Open(path)
	})
	return defaultCatalog, defaultErr
}

// DetectOpening runs Detect against the default catalog.
func DetectOpening(moves []string) string {
	c, err := Default()
	if err != nil || c == nil {
		return NoOpening
	}
	return c.Detect(moves)
}

// ResolveCatalogPath returns the override catalog path, or "" for the embedded one.
func ResolveCatalogPath() (string, error) {
	if envPath := strings.TrimSpace(os.Getenv("CHESS_OPENING_CATALOG_PATH")); envPath != "" {
		if exists(envPath) {
			return envPath, nil
		}
		return "", fmt.Errorf("env CHESS_OPENING_CATALOG_PATH points to missing file: %s", envPath)
	}
	for _, candidate := range defaultCatalogPaths() {
		if exists(candidate) {
			return candidate, nil
		}
	}
	return "", nil
}

func defaultCatalogPaths() []string {
	return []string{
		filepath.Join("resources", "opening", "catalog.json"),
	}
}

func exists(path string) bool {
	if path == "" {
		return false
	}
	_, err := os.Stat(path)
	return err == nil
}

func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.entries)
}

// Entries returns a copy of the catalog in order.
func (c *Catalog) Entries() []Entry {
	if c == nil {
		return nil
	}
	out := make([]Entry, len(c.entries))
	for i, e := range c.entries {
		e.Moves = append([]string(nil), e.Moves...)
		out[i] = e
	}
	return out
}

// Match returns the first entry, in catalog order, whose moves prefix the given sequence.
// Moves past the prefix are ignored.
func (c *Catalog) Match(moves []string) (Entry, bool) {
	if c == nil || len(moves) == 0 {
		return Entry{}, false
	}
	for _, e := range c.entries {
		if prefixMatches(e.Moves, moves) {
			e.Moves = append([]string(nil), e.Moves...)
			return e, true
		}
	}
	return Entry{}, false
}

// Detect returns the name of the first matching entry or NoOpening.
func (c *Catalog) Detect(moves []string) string {
	if e, ok := c.Match(moves); ok {
		return e.Name
	}
	return NoOpening
}

func prefixMatches(prefix, moves []string) bool {
	if len(prefix) == 0 || len(prefix) > len(moves) {
		return false
	}
	for i, mv := range prefix {
		if moves[i] != mv {
			return false
		}
	}
	return true
}
