package scm

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/rs/zerolog"
)

// OpenOptions are handed to a Factory when a project is opened.
type OpenOptions struct {
	Logger zerolog.Logger
	Author Signature
}

// Factory describes one kind of backend and knows how to open it.
type Factory interface {
	Name() string
	PresentationShortName() string
	PresentationLongName() string
	// MetadataFolder is the folder whose presence marks a working copy
	// of this kind, e.g. ".git".
	MetadataFolder() string
	Open(path string, opts OpenOptions) (Backend, error)
}

var registry = make(map[string]Factory)

// Register makes a backend kind available to Open and Detect.
func Register(f Factory) {
	registry[f.Name()] = f
}

// Lookup returns the factory registered under kind.
func Lookup(kind string) (Factory, error) {
	f, ok := registry[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, kind)
	}
	return f, nil
}

// Kinds returns all registered backend kinds, sorted.
func Kinds() []string {
	kinds := make([]string, 0, len(registry))
	for k := range registry {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}

// Detect returns the kind of working copy rooted at path by looking for
// each registered factory's metadata folder.
func Detect(path string) (string, error) {
	for _, kind := range Kinds() {
		meta := filepath.Join(path, registry[kind].MetadataFolder())
		if _, err := os.Stat(meta); err == nil {
			return kind, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrNotRepository, path)
}

// Open opens path with the backend registered under kind. An empty kind is
// detected from the folder layout.
func Open(kind, path string, opts OpenOptions) (Backend, error) {
	if kind == "" {
		detected, err := Detect(path)
		if err != nil {
			return nil, err
		}
		kind = detected
	}
	f, err := Lookup(kind)
	if err != nil {
		return nil, err
	}
	return f.Open(path, opts)
}
