// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package shader loads compiled SPIR-V shader code from directories,
// packr boxes and kar bundles, and watches directories for changes.
package shader

import (
	"io/ioutil"
	"path/filepath"
	"strings"
	"unsafe"

	"github.com/pkg/errors"
)

// Suffix is the extension all compiled shaders carry
const Suffix = ".spv"

// Magic is the first word of every SPIR-V module
const Magic uint32 = 0x07230203

// package errors
var (
	ErrCodeSize = errors.New("shader code size is not a multiple of 4")
	ErrNotSPIRV = errors.New("shader code does not start with the SPIR-V magic number")
)

// Kind represents the type of shader thats loaded
type Kind int

// Identifies shader objects with their types
const (
	Vertex Kind = iota
	Fragment
	Unknown
)

func (k Kind) String() string {
	switch k {
	case Vertex:
		return "vertex"
	case Fragment:
		return "fragment"
	default:
		return "unknown"
	}
}

// KindFromName tells the kind of shader from it's file name.
// It is important that the file name does not contain more than two dots,
// the first is always the name of the shader, second is type, and the third one
// ensures that the shader is compiled (only compiled shaders have an .spv extension).
func KindFromName(name string) Kind {
	base := filepath.Base(name)
	if !strings.HasSuffix(base, Suffix) {
		return Unknown
	}
	nodes := strings.Split(strings.TrimSuffix(base, Suffix), ".")
	if len(nodes) != 2 || nodes[0] == "" {
		return Unknown
	}
	switch nodes[1] {
	case "vert":
		return Vertex
	case "frag":
		return Fragment
	default:
		return Unknown
	}
}

// Code is a compiled shader held in memory
type Code struct {
	Name string
	Kind Kind

	data []byte
}

// NewCode validates data as SPIR-V and wraps it.
func NewCode(name string, data []byte) (*Code, error) {
	if len(data) == 0 || len(data)%4 != 0 {
		return nil, errors.Wrapf(ErrCodeSize, "%s: %d bytes", name, len(data))
	}
	code := &Code{
		Name: name,
		Kind: KindFromName(name),
		data: data,
	}
	if code.Words()[0] != Magic {
		return nil, errors.Wrap(ErrNotSPIRV, name)
	}
	return code, nil
}

// LoadCode reads a compiled shader file fully into memory
func LoadCode(path string) (*Code, error) {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading shader %s", path)
	}
	return NewCode(filepath.Base(path), data)
}

// Bytes returns the raw code
func (c *Code) Bytes() []byte {
	return c.data
}

// Size is the code size in bytes, as vulkan wants it
func (c *Code) Size() int {
	return len(c.data)
}

// Words reslices the code into the uint32 words that are
// submitted to vulkan for processing. No copy is made.
func (c *Code) Words() []uint32 {
	if len(c.data) < 4 {
		return nil
	}
	return unsafe.Slice((*uint32)(unsafe.Pointer(&c.data[0])), len(c.data)/4)
}
