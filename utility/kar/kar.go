// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package kar is an api for an lz4 backed file format.
// It's purpose is to be well suited for streaming resources
// from it. It's designed to be memory mapped, so (unlike tar) it knows
// where all the files are located before they're read. The archive
// itself is not compressed, rather every file is individually compressed,
// so it can be read from it's place and decompressed on the fly.
// Space efficiency is not the primary goal of this package, getting
// resources from disk to a usable state fast is. It can be read
// from concurrently.
//
// Layout on disk:
//
//	magic "KAR\x00" | header size (16 bytes, little endian) | gob Header | file data
//
// Index offsets are relative to the start of the file data.
package kar

import (
	"bytes"
	"encoding/binary"
	"encoding/gob"

	"github.com/pkg/errors"
)

// package errors
var (
	ErrFileFormat    = errors.New("corrupted or not a kar archive")
	ErrTempFail      = errors.New("temporary folder or file operation failed")
	ErrNotFound      = errors.New("file not present in archive")
	ErrDuplicateName = errors.New("file already added to archive")
)

// Magic identifies a kar archive
const Magic = "KAR\x00"

// Sizes relevant to the header of file
const (
	MagicLength            = 4
	HeaderSizeNumberLength = 16

	// MaxHeaderSize bounds the header of archives read from sources
	// of unknown size.
	MaxHeaderSize = 64 << 20
)

// IndexEntry is info for one file in the file index.
type IndexEntry struct {
	Name           string
	Offset         int64
	Size           int64
	CompressedSize int64
}

// Header is the file header for kar files.
type Header struct {
	Author      string
	DateCreated int64
	Version     int64
	Index       []IndexEntry
}

func int64ToBinary(num int64) []byte {
	buf := make([]byte, HeaderSizeNumberLength)
	binary.LittleEndian.PutUint64(buf, uint64(num))
	return buf
}

func binaryToint64(bts []byte) (int64, error) {
	if len(bts) < 8 {
		return 0, ErrFileFormat
	}
	num := int64(binary.LittleEndian.Uint64(bts))
	if num <= 0 {
		return 0, ErrFileFormat
	}
	return num, nil
}

func gobEncode(data interface{}) ([]byte, error) {
	var encoded bytes.Buffer
	enc := gob.NewEncoder(&encoded)
	if err := enc.Encode(data); err != nil {
		return nil, err
	}
	return encoded.Bytes(), nil
}

func gobDecode(obj interface{}, bts []byte) error {
	dec := gob.NewDecoder(bytes.NewBuffer(bts))
	if err := dec.Decode(obj); err != nil {
		return err
	}
	return nil
}
