package vopl

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/zlib"
)

// Payload encodings. The high bit of the encoding byte marks a zlib
// compressed payload.
const (
	encDense  = 0
	encSparse = 1
	// 2 was run-length, no longer written or read.
	encBitmap = 3
	// 4 was zero run-length, no longer written or read.

	encZlib = 0x80

	// sparse index width: enough for Volume positions.
	sparseIndexBits = 12
	bitmapSize      = Volume / 8

	// maxPayloadSize is the largest valid uncompressed payload: a sparse
	// payload listing every voxel at 8 bits per voxel.
	maxPayloadSize = 2 + (Volume*(sparseIndexBits+8)+7)/8
)

// ErrTooLarge is returned when compressed data inflates past its limit.
var ErrTooLarge = errors.New("decompressed data too large")

// Encode returns grid as a .vopl file with DefaultBPP bits per voxel.
func Encode(g *Grid) []byte {
	return EncodeBPP(g, DefaultBPP)
}

// EncodeBPP returns grid as a .vopl file with bpp bits per voxel (clamped to
// 1..8), using whichever encoding is smallest.
func EncodeBPP(g *Grid, bpp uint8) []byte {
	bpp = min(max(bpp, 1), 8)

	h := DefaultHeader
	h.BPP = bpp
	enc, payload := smallestEncoding(flatten(g), bpp)
	return File{Header: h, Encoding: enc, Payload: payload}.Bytes()
}

// Decode parses a .vopl file.
func Decode(data []byte) (*Grid, error) {
	f, err := ParseFile(data)
	if err != nil {
		return nil, err
	}
	return f.Grid()
}

// Grid decodes the file payload.
func (f File) Grid() (*Grid, error) {
	if f.W != Width || f.H != Height || f.D != Depth {
		return nil, fmt.Errorf("unsupported chunk size %dx%dx%d", f.W, f.H, f.D)
	}
	if f.BPP < 1 || f.BPP > 8 {
		return nil, fmt.Errorf("unsupported bits per voxel %d", f.BPP)
	}

	payload := f.Payload
	if f.Encoding&encZlib != 0 {
		var err error
		if payload, err = inflate(payload, maxPayloadSize); err != nil {
			return nil, fmt.Errorf("inflating payload: %w", err)
		}
	}

	var stream []uint8
	var err error
	switch enc := f.Encoding &^ encZlib; enc {
	case encDense:
		stream, err = decodeDense(payload, f.BPP)
	case encSparse:
		stream, err = decodeSparse(payload, f.BPP)
	case encBitmap:
		stream, err = decodeBitmap(payload, f.BPP)
	default:
		return nil, fmt.Errorf("unknown encoding %d", enc)
	}
	if err != nil {
		return nil, err
	}

	g := new(Grid)
	unflatten(g, stream)
	return g, nil
}

// Load reads a .vopl file from disk.
func Load(filename string) (*Grid, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	g, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return g, nil
}

// Save writes grid to disk with DefaultBPP.
func Save(g *Grid, filename string) error {
	return os.WriteFile(filename, Encode(g), 0o644)
}

func smallestEncoding(stream []uint8, bpp uint8) (uint8, []byte) {
	candidates := [][]byte{
		encDense:  encodeDense(stream, bpp),
		encSparse: encodeSparse(stream, bpp),
		encBitmap: encodeBitmap(stream, bpp),
	}

	best, bestPayload := uint8(encDense), candidates[encDense]
	for enc, payload := range candidates {
		if payload == nil {
			continue
		}
		if len(payload) < len(bestPayload) {
			best, bestPayload = uint8(enc), payload
		}
	}
	for enc, payload := range candidates {
		if payload == nil {
			continue
		}
		if z := deflate(payload); len(z) < len(bestPayload) {
			best, bestPayload = uint8(enc)|encZlib, z
		}
	}
	return best, bestPayload
}

func encodeDense(stream []uint8, bpp uint8) []byte {
	w := newBitWriter(Volume * int(bpp) / 8)
	for _, c := range stream {
		w.write(uint64(c), bpp)
	}
	return w.bytes()
}

func decodeDense(payload []byte, bpp uint8) ([]uint8, error) {
	r := newBitReader(payload)
	stream := make([]uint8, Volume)
	for i := range stream {
		v, err := r.read(bpp)
		if err != nil {
			return nil, fmt.Errorf("dense payload: %w", err)
		}
		stream[i] = uint8(v)
	}
	return stream, nil
}

// encodeSparse writes a 16-bit count followed by (index, colour) pairs.
func encodeSparse(stream []uint8, bpp uint8) []byte {
	w := newBitWriter(64)
	count := 0
	for _, c := range stream {
		if c != 0 {
			count++
		}
	}
	w.write(uint64(count), 16)
	for i, c := range stream {
		if c != 0 {
			w.write(uint64(i), sparseIndexBits)
			w.write(uint64(c), bpp)
		}
	}
	return w.bytes()
}

func decodeSparse(payload []byte, bpp uint8) ([]uint8, error) {
	r := newBitReader(payload)
	count, err := r.read(16)
	if err != nil {
		return nil, fmt.Errorf("sparse payload: %w", err)
	}
	if count > Volume {
		return nil, fmt.Errorf("sparse payload: %d entries for %d voxels", count, Volume)
	}
	stream := make([]uint8, Volume)
	for i := uint64(0); i < count; i++ {
		idx, err := r.read(sparseIndexBits)
		if err != nil {
			return nil, fmt.Errorf("sparse payload: %w", err)
		}
		c, err := r.read(bpp)
		if err != nil {
			return nil, fmt.Errorf("sparse payload: %w", err)
		}
		if idx >= Volume {
			return nil, fmt.Errorf("sparse payload: index %d out of range", idx)
		}
		stream[idx] = uint8(c)
	}
	return stream, nil
}

// encodeBitmap writes a one bit per voxel occupancy bitmap followed by the
// non-empty colours.
func encodeBitmap(stream []uint8, bpp uint8) []byte {
	out := make([]byte, bitmapSize, bitmapSize+Volume)
	w := newBitWriter(0)
	for i, c := range stream {
		if c != 0 {
			out[i>>3] |= 1 << (i & 7)
			w.write(uint64(c), bpp)
		}
	}
	return append(out, w.bytes()...)
}

func decodeBitmap(payload []byte, bpp uint8) ([]uint8, error) {
	if len(payload) < bitmapSize {
		return nil, fmt.Errorf("bitmap payload: %d bytes, want at least %d", len(payload), bitmapSize)
	}
	bitmap := payload[:bitmapSize]
	r := newBitReader(payload[bitmapSize:])
	stream := make([]uint8, Volume)
	for i := range stream {
		if bitmap[i>>3]>>(i&7)&1 == 0 {
			continue
		}
		c, err := r.read(bpp)
		if err != nil {
			return nil, fmt.Errorf("bitmap payload: %w", err)
		}
		stream[i] = uint8(c)
	}
	return stream, nil
}

func deflate(b []byte) []byte {
	var buf bytes.Buffer
	zw, _ := zlib.NewWriterLevel(&buf, zlib.BestCompression)
	_, _ = zw.Write(b)
	_ = zw.Close()
	return buf.Bytes()
}

// inflate decompresses zlib data and fails with ErrTooLarge once the output
// exceeds limit bytes.
func inflate(b []byte, limit int64) ([]byte, error) {
	zr, err := zlib.NewReader(bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	defer zr.Close()
	return readLimited(zr, limit)
}

func readLimited(r io.Reader, limit int64) ([]byte, error) {
	out, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(out)) > limit {
		return nil, fmt.Errorf("%w: over %d bytes", ErrTooLarge, limit)
	}
	return out, nil
}
