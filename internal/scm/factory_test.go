package scm

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubFactory struct {
	opened string
}

func (f *stubFactory) Name() string                  { return "stub" }
func (f *stubFactory) PresentationShortName() string { return "Stub" }
func (f *stubFactory) PresentationLongName() string  { return "Stub SCM" }
func (f *stubFactory) MetadataFolder() string        { return ".stub" }
func (f *stubFactory) Open(path string, _ OpenOptions) (Backend, error) {
	f.opened = path
	return nil, nil
}

func TestFactoryRegistry(t *testing.T) {
	f := &stubFactory{}
	Register(f)
	t.Cleanup(func() { delete(registry, "stub") })

	assert.Contains(t, Kinds(), "stub")

	got, err := Lookup("stub")
	require.NoError(t, err)
	assert.Equal(t, "Stub SCM", got.PresentationLongName())

	_, err = Lookup("nope")
	assert.ErrorIs(t, err, ErrUnknownBackend)
}

func TestDetectAndOpen(t *testing.T) {
	f := &stubFactory{}
	Register(f)
	t.Cleanup(func() { delete(registry, "stub") })

	dir := t.TempDir()
	_, err := Detect(dir)
	assert.ErrorIs(t, err, ErrNotRepository)

	require.NoError(t, os.Mkdir(filepath.Join(dir, ".stub"), 0755))

	kind, err := Detect(dir)
	require.NoError(t, err)
	assert.Equal(t, "stub", kind)

	_, err = Open("", dir, OpenOptions{})
	require.NoError(t, err)
	assert.Equal(t, dir, f.opened)
}
