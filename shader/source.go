// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package shader

import (
	"bytes"
	"io/ioutil"
	"os"
	"path/filepath"
	"sort"

	"github.com/gobuffalo/packr"
	"github.com/pkg/errors"
	"golang.org/x/exp/mmap"

	"github.com/devblok/shaderstudio/utility/kar"
)

// Source is somewhere compiled shaders are kept
type Source interface {
	// List returns the names of all compiled shaders of a known kind
	List() ([]string, error)

	// Load reads a shader by a name returned from List
	Load(name string) (*Code, error)
}

// LoadAll loads every shader a Source lists
func LoadAll(src Source) ([]*Code, error) {
	names, err := src.List()
	if err != nil {
		return nil, err
	}
	codes := make([]*Code, 0, len(names))
	for _, name := range names {
		code, err := src.Load(name)
		if err != nil {
			return nil, err
		}
		codes = append(codes, code)
	}
	return codes, nil
}

func filterShaders(names []string) []string {
	var shaders []string
	for _, name := range names {
		if KindFromName(name) != Unknown {
			shaders = append(shaders, name)
		}
	}
	sort.Strings(shaders)
	return shaders
}

// NewDirSource creates a Source over a directory tree
func NewDirSource(dir string) *DirSource {
	return &DirSource{dir: dir}
}

// DirSource finds shaders by walking a directory
type DirSource struct {
	dir string
}

// Dir is the root directory
func (d *DirSource) Dir() string {
	return d.dir
}

// List implements interface. Names are relative to the root
// directory and slash separated.
func (d *DirSource) List() ([]string, error) {
	var names []string
	if err := filepath.Walk(d.dir, func(path string, f os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if f.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(d.dir, path)
		if err != nil {
			return err
		}
		names = append(names, filepath.ToSlash(rel))
		return nil
	}); err != nil {
		return nil, errors.Wrapf(err, "listing shaders in %s", d.dir)
	}
	return filterShaders(names), nil
}

// Load implements interface
func (d *DirSource) Load(name string) (*Code, error) {
	path := filepath.Join(d.dir, filepath.FromSlash(name))
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading shader %s", path)
	}
	return NewCode(name, data)
}

// NewBoxSource creates a Source over shaders packed in the binary
func NewBoxSource(box packr.Box) *BoxSource {
	return &BoxSource{box: box}
}

// BoxSource reads shaders from a packr box
type BoxSource struct {
	box packr.Box
}

// List implements interface
func (b *BoxSource) List() ([]string, error) {
	return filterShaders(b.box.List()), nil
}

// Load implements interface
func (b *BoxSource) Load(name string) (*Code, error) {
	data, err := b.box.Find(name)
	if err != nil {
		return nil, errors.Wrapf(err, "box shader %s", name)
	}
	return NewCode(name, data)
}

// OpenBundle memory maps a kar bundle of shaders.
// The bundle must be closed after use.
func OpenBundle(path string) (*BundleSource, error) {
	r, err := mmap.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "mmap.Open(%s)", path)
	}
	archive, err := kar.Open(r)
	if err != nil {
		r.Close()
		return nil, errors.Wrapf(err, "opening bundle %s", path)
	}
	return &BundleSource{closer: r, archive: archive}, nil
}

// BundleSource reads shaders from a kar archive
type BundleSource struct {
	closer  interface{ Close() error }
	archive *kar.Archive
}

// List implements interface
func (b *BundleSource) List() ([]string, error) {
	return filterShaders(b.archive.Names()), nil
}

// Load implements interface
func (b *BundleSource) Load(name string) (*Code, error) {
	data, err := b.archive.ReadAll(name)
	if err != nil {
		return nil, errors.Wrapf(err, "bundle shader %s", name)
	}
	return NewCode(name, data)
}

// Close unmaps the bundle
func (b *BundleSource) Close() error {
	return b.closer.Close()
}

// Pack writes every shader of src into a kar archive builder
func Pack(src Source, builder *kar.Builder) error {
	codes, err := LoadAll(src)
	if err != nil {
		return err
	}
	for _, code := range codes {
		if err := builder.Add(code.Name, bytes.NewReader(code.Bytes())); err != nil {
			return err
		}
	}
	return nil
}
