// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package compress compresses stored blobs. The algorithm is chosen
// per store by configuration and recorded per blob as a [Tag], so a
// database written under one setting stays readable under another.
package compress

import (
	"errors"
	"fmt"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Tag identifies the algorithm a blob was compressed with. Tags are
// persisted; the numeric values must not change.
type Tag uint8

const (
	None Tag = 0
	LZ4  Tag = 1
	Zstd Tag = 2
)

func (tag Tag) String() string {
	switch tag {
	case None:
		return "none"
	case LZ4:
		return "lz4"
	case Zstd:
		return "zstd"
	default:
		return fmt.Sprintf("unknown(%d)", tag)
	}
}

// ParseTag parses the configuration spelling of a tag.
func ParseTag(name string) (Tag, error) {
	switch name {
	case "none":
		return None, nil
	case "lz4":
		return LZ4, nil
	case "zstd":
		return Zstd, nil
	default:
		return 0, fmt.Errorf("unknown compression %q (want none, lz4 or zstd)", name)
	}
}

var (
	zstdEncoder *zstd.Encoder
	zstdDecoder *zstd.Decoder
)

func init() {
	var err error
	zstdEncoder, err = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		panic("compress: zstd encoder initialization failed: " + err.Error())
	}
	zstdDecoder, err = zstd.NewReader(nil)
	if err != nil {
		panic("compress: zstd decoder initialization failed: " + err.Error())
	}
}

var errIncompressible = errors.New("data is incompressible")

// Compress compresses data with the preferred algorithm. When the
// result would not be smaller than the input, data is returned as-is
// tagged None. The returned tag is the one to persist.
func Compress(data []byte, preferred Tag) ([]byte, Tag, error) {
	var (
		compressed []byte
		err        error
	)
	switch preferred {
	case None:
		return data, None, nil
	case LZ4:
		compressed, err = compressLZ4(data)
	case Zstd:
		compressed, err = compressZstd(data)
	default:
		return nil, 0, fmt.Errorf("compress: unsupported tag %d", preferred)
	}
	if errors.Is(err, errIncompressible) {
		return data, None, nil
	}
	if err != nil {
		return nil, 0, err
	}
	return compressed, preferred, nil
}

// Decompress reverses Compress. size is the uncompressed length
// recorded alongside the blob and is verified.
func Decompress(data []byte, tag Tag, size int) ([]byte, error) {
	var (
		result []byte
		err    error
	)
	switch tag {
	case None:
		result = data
	case LZ4:
		result = make([]byte, size)
		var read int
		read, err = lz4.UncompressBlock(data, result)
		result = result[:max(read, 0)]
	case Zstd:
		result, err = zstdDecoder.DecodeAll(data, make([]byte, 0, size))
	default:
		return nil, fmt.Errorf("compress: unsupported tag %d", tag)
	}
	if err != nil {
		return nil, fmt.Errorf("%s decompress: %w", tag, err)
	}
	if len(result) != size {
		return nil, fmt.Errorf("%s decompress: got %d bytes, expected %d", tag, len(result), size)
	}
	return result, nil
}

func compressLZ4(data []byte) ([]byte, error) {
	destination := make([]byte, lz4.CompressBlockBound(len(data)))
	written, err := lz4.CompressBlock(data, destination, nil)
	if err != nil {
		return nil, fmt.Errorf("lz4 compress: %w", err)
	}
	// CompressBlock reports 0 for incompressible input.
	if written == 0 || written >= len(data) {
		return nil, errIncompressible
	}
	return destination[:written], nil
}

func compressZstd(data []byte) ([]byte, error) {
	compressed := zstdEncoder.EncodeAll(data, nil)
	if len(compressed) >= len(data) {
		return nil, errIncompressible
	}
	return compressed, nil
}
