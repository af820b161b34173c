// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package kar

import (
	"io"
	"io/ioutil"
	"os"
	"sync"

	"github.com/pierrec/lz4"
	"github.com/pkg/errors"
)

// NewBuilder creates a new Builder. Do not fill the Index in
// the header, it will be overwritten anyway. Close must be
// called to release the temporary storage.
func NewBuilder(header Header) (*Builder, error) {
	temp, err := ioutil.TempDir("", "karBuilder")
	if err != nil {
		return nil, errors.Wrap(ErrTempFail, err.Error())
	}
	return &Builder{
		tempDir: temp,
		header:  header,
		names:   make(map[string]bool),
	}, nil
}

type tempFile struct {

	// Name is the actual name of the file
	Name string

	// TempName is the temporary file holding compressed data
	TempName string

	// Size in uncompressed state
	Size int64

	Compressed int64
}

// Builder is the high level builder for the archive format.
// Arhives are versioned and cannot be appended to, this Builder
// is the way to create an archive. Whenever Add is called, Builder
// stores the compressed file in a temporary dir, then finally
// bundles them together when writing them out with WriteTo.
type Builder struct {
	tempDir string
	header  Header

	mutex sync.Mutex
	files []tempFile
	names map[string]bool
}

// Add appends data to the builder with a given name.
// Will block until lz4 finishes compression. Is safe
// to use concurrently in different goroutines.
func (b *Builder) Add(name string, r io.Reader) error {
	b.mutex.Lock()
	if b.names[name] {
		b.mutex.Unlock()
		return errors.Wrap(ErrDuplicateName, name)
	}
	b.names[name] = true
	b.mutex.Unlock()

	file, err := b.compress(name, r)

	b.mutex.Lock()
	defer b.mutex.Unlock()
	if err != nil {
		delete(b.names, name)
		return err
	}
	b.files = append(b.files, file)
	return nil
}

func (b *Builder) compress(name string, r io.Reader) (tempFile, error) {
	f, err := ioutil.TempFile(b.tempDir, "entry")
	if err != nil {
		return tempFile{}, errors.Wrap(ErrTempFail, err.Error())
	}
	defer f.Close()

	writer := lz4.NewWriter(f)
	written, err := io.Copy(writer, r)
	if err != nil {
		os.Remove(f.Name())
		return tempFile{}, errors.Wrapf(err, "compressing %s", name)
	}
	if err := writer.Close(); err != nil {
		os.Remove(f.Name())
		return tempFile{}, errors.Wrapf(err, "compressing %s", name)
	}
	info, err := f.Stat()
	if err != nil {
		os.Remove(f.Name())
		return tempFile{}, errors.Wrap(ErrTempFail, err.Error())
	}
	return tempFile{
		Name:       name,
		TempName:   f.Name(),
		Size:       written,
		Compressed: info.Size(),
	}, nil
}

// Len returns the number of files added so far
func (b *Builder) Len() int {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	return len(b.files)
}

// WriteTo bundles and writes all of the files added to the Builder
// into a kar archive that is ready to use. The Builder is empty
// afterwards and can be reused.
func (b *Builder) WriteTo(w io.Writer) (int64, error) {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	header := b.header
	header.Index = nil
	var offset int64
	for _, v := range b.files {
		header.Index = append(header.Index, IndexEntry{
			Name:           v.Name,
			Offset:         offset,
			Size:           v.Size,
			CompressedSize: v.Compressed,
		})
		offset += v.Compressed
	}

	rawHeader, err := gobEncode(header)
	if err != nil {
		return 0, errors.Wrap(err, "encoding header")
	}

	var total int64
	for _, chunk := range [][]byte{[]byte(Magic), int64ToBinary(int64(len(rawHeader))), rawHeader} {
		n, err := w.Write(chunk)
		total += int64(n)
		if err != nil {
			return total, err
		}
	}

	for _, v := range b.files {
		n, err := copyFile(w, v.TempName)
		total += n
		if err != nil {
			return total, errors.Wrapf(err, "writing %s", v.Name)
		}
		os.Remove(v.TempName)
	}

	b.files = b.files[:0]
	b.names = make(map[string]bool)
	return total, nil
}

func copyFile(w io.Writer, path string) (int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()
	return io.Copy(w, f)
}

// Close removes the temporary storage of the Builder
func (b *Builder) Close() error {
	return os.RemoveAll(b.tempDir)
}
