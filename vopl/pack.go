package vopl

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math/bits"

	"github.com/cespare/xxhash/v2"
	"github.com/klauspost/compress/zlib"
	"github.com/klauspost/compress/zstd"
)

// Compression is the codec applied to the content section of a pack.
type Compression uint8

const (
	CompressionNone Compression = 0
	CompressionZlib Compression = 1
	CompressionZstd Compression = 2
)

func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionZlib:
		return "zlib"
	case CompressionZstd:
		return "zstd"
	default:
		return fmt.Sprintf("compression(%d)", uint8(c))
	}
}

// ParseCompression maps a name to a Compression.
func ParseCompression(s string) (Compression, error) {
	switch s {
	case "", "none":
		return CompressionNone, nil
	case "zlib":
		return CompressionZlib, nil
	case "zstd":
		return CompressionZstd, nil
	default:
		return 0, fmt.Errorf("unknown compression %q", s)
	}
}

// Layout is how entries are laid out in the content section.
type Layout uint8

const (
	// LayoutRaw stores every payload as is.
	LayoutRaw Layout = 0
	// LayoutCDC splits payloads into content-defined chunks, stores each
	// distinct chunk once and entries as lists of chunk references.
	LayoutCDC Layout = 1
)

const (
	packMagic    = "VOPLPACK"
	packVersion1 = 1 // raw layout, none or zlib
	packVersion2 = 2 // layout byte, any compression

	cdcTarget = 4096
	cdcMin    = 2048
	cdcMax    = 16384

	maxNameLen = 0xFFFF
)

// PackEntry is one chunk file inside a pack.
type PackEntry struct {
	Name     string
	Encoding uint8
	Payload  []byte
}

// File returns the entry as a standalone .vopl file under header h.
func (e PackEntry) File(h Header) File {
	return File{Header: h, Encoding: e.Encoding, Payload: e.Payload}
}

// Pack is a set of chunk files sharing one header.
type Pack struct {
	Header  Header
	Entries []PackEntry
}

// Add appends a parsed chunk file. The file header must match the pack
// header; the first file added to an empty pack sets it.
func (p *Pack) Add(name string, f File) error {
	if len(p.Entries) == 0 && p.Header == (Header{}) {
		p.Header = f.Header
	}
	if !p.Header.Compatible(f.Header) {
		return fmt.Errorf("%s: header %+v does not match pack header %+v", name, f.Header, p.Header)
	}
	p.Entries = append(p.Entries, PackEntry{Name: name, Encoding: f.Encoding, Payload: f.Payload})
	return nil
}

// Marshal encodes the pack. Raw layout with no or zlib compression produces a
// version 1 pack; everything else produces version 2.
func (p *Pack) Marshal(layout Layout, comp Compression) ([]byte, error) {
	if p.Header.Version != Version {
		return nil, fmt.Errorf("unsupported vopl version %d in pack header", p.Header.Version)
	}

	version := uint8(packVersion2)
	if layout == LayoutRaw && (comp == CompressionNone || comp == CompressionZlib) {
		version = packVersion1
	}

	content := []byte{p.Header.Version, p.Header.BPP, p.Header.W, p.Header.H, p.Header.D}
	content = binary.LittleEndian.AppendUint16(content, p.Header.Palette)
	if version >= packVersion2 {
		content = append(content, uint8(layout))
	}

	for _, e := range p.Entries {
		if len(e.Name) > maxNameLen {
			return nil, fmt.Errorf("entry name too long: %d bytes", len(e.Name))
		}
	}

	switch layout {
	case LayoutRaw:
		content = binary.LittleEndian.AppendUint32(content, uint32(len(p.Entries)))
		for _, e := range p.Entries {
			content = appendEntryHead(content, e)
			content = binary.LittleEndian.AppendUint32(content, uint32(len(e.Payload)))
			content = append(content, e.Payload...)
		}

	case LayoutCDC:
		for _, v := range []uint32{cdcTarget, cdcMin, cdcMax} {
			content = binary.LittleEndian.AppendUint32(content, v)
		}
		blocks, seqs := chunkEntries(p.Entries, cdcTarget, cdcMin, cdcMax)
		content = binary.LittleEndian.AppendUint32(content, uint32(len(blocks)))
		for _, b := range blocks {
			content = binary.LittleEndian.AppendUint32(content, uint32(len(b)))
			content = append(content, b...)
		}
		content = binary.LittleEndian.AppendUint32(content, uint32(len(p.Entries)))
		for i, e := range p.Entries {
			content = appendEntryHead(content, e)
			content = binary.LittleEndian.AppendUint32(content, uint32(len(e.Payload)))
			content = binary.LittleEndian.AppendUint32(content, uint32(len(seqs[i])))
			for _, idx := range seqs[i] {
				content = binary.LittleEndian.AppendUint32(content, uint32(idx))
			}
		}

	default:
		return nil, fmt.Errorf("unknown pack layout %d", layout)
	}

	compressed, err := compress(content, comp)
	if err != nil {
		return nil, err
	}

	out := make([]byte, 0, len(packMagic)+2+len(compressed))
	out = append(out, packMagic...)
	out = append(out, version, uint8(comp))
	return append(out, compressed...), nil
}

func appendEntryHead(b []byte, e PackEntry) []byte {
	b = binary.LittleEndian.AppendUint16(b, uint16(len(e.Name)))
	b = append(b, e.Name...)
	return append(b, e.Encoding)
}

// DefaultMaxPackContent bounds the decompressed content UnmarshalPack
// accepts. It holds tens of thousands of dense chunks.
const DefaultMaxPackContent = 256 << 20

// UnmarshalPack parses a .voplpack and reports the compression it used. The
// decompressed content may not exceed DefaultMaxPackContent.
func UnmarshalPack(data []byte) (*Pack, Compression, error) {
	return UnmarshalPackLimit(data, DefaultMaxPackContent)
}

// UnmarshalPackLimit is UnmarshalPack with the decompressed content capped at
// limit bytes. Larger content fails with ErrTooLarge.
func UnmarshalPackLimit(data []byte, limit int64) (*Pack, Compression, error) {
	if len(data) < len(packMagic)+2 || string(data[:len(packMagic)]) != packMagic {
		return nil, 0, fmt.Errorf("not a voplpack file")
	}
	version := data[len(packMagic)]
	comp := Compression(data[len(packMagic)+1])
	if version != packVersion1 && version != packVersion2 {
		return nil, 0, fmt.Errorf("unsupported voplpack version %d", version)
	}

	content, err := decompress(data[len(packMagic)+2:], comp, limit)
	if err != nil {
		return nil, 0, err
	}

	r := &packReader{b: content}
	p := &Pack{}
	p.Header.Version = r.u8()
	p.Header.BPP = r.u8()
	p.Header.W, p.Header.H, p.Header.D = r.u8(), r.u8(), r.u8()
	p.Header.Palette = r.u16()

	layout := LayoutRaw
	if version >= packVersion2 {
		layout = Layout(r.u8())
	}
	if r.err != nil {
		return nil, 0, fmt.Errorf("voplpack header: %w", r.err)
	}

	switch layout {
	case LayoutRaw:
		n := r.count(7)
		p.Entries = make([]PackEntry, 0, n)
		for i := 0; i < n && r.err == nil; i++ {
			e := r.entryHead()
			e.Payload = r.bytes(int(r.u32()))
			p.Entries = append(p.Entries, e)
		}

	case LayoutCDC:
		r.u32() // target
		r.u32() // min
		maxSize := r.u32()
		blocks := make([][]byte, r.count(4))
		for i := range blocks {
			blocks[i] = r.bytes(int(r.u32()))
		}
		n := r.count(11)
		p.Entries = make([]PackEntry, 0, n)
		for i := 0; i < n && r.err == nil; i++ {
			e := r.entryHead()
			rawLen := r.u32()
			refs := r.count(4)
			payload := make([]byte, 0, rawLen)
			for j := 0; j < refs && r.err == nil; j++ {
				idx := r.u32()
				if int(idx) >= len(blocks) {
					return nil, 0, fmt.Errorf("entry %q: chunk %d out of range", e.Name, idx)
				}
				if uint64(len(payload))+uint64(len(blocks[idx])) > uint64(rawLen)+uint64(maxSize) {
					return nil, 0, fmt.Errorf("entry %q: chunks exceed declared size", e.Name)
				}
				payload = append(payload, blocks[idx]...)
			}
			if uint32(len(payload)) != rawLen && r.err == nil {
				return nil, 0, fmt.Errorf("entry %q: %d bytes, want %d", e.Name, len(payload), rawLen)
			}
			e.Payload = payload
			p.Entries = append(p.Entries, e)
		}

	default:
		return nil, 0, fmt.Errorf("unknown pack layout %d", layout)
	}

	if r.err != nil {
		return nil, 0, fmt.Errorf("voplpack content: %w", r.err)
	}
	return p, comp, nil
}

func compress(b []byte, comp Compression) ([]byte, error) {
	switch comp {
	case CompressionNone:
		return b, nil
	case CompressionZlib:
		var buf bytes.Buffer
		zw, err := zlib.NewWriterLevel(&buf, zlib.BestCompression)
		if err != nil {
			return nil, err
		}
		if _, err := zw.Write(b); err != nil {
			return nil, err
		}
		if err := zw.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case CompressionZstd:
		enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
		if err != nil {
			return nil, err
		}
		defer enc.Close()
		return enc.EncodeAll(b, nil), nil
	default:
		return nil, fmt.Errorf("unknown compression %d", comp)
	}
}

func decompress(b []byte, comp Compression, limit int64) ([]byte, error) {
	switch comp {
	case CompressionNone:
		if int64(len(b)) > limit {
			return nil, fmt.Errorf("%w: over %d bytes", ErrTooLarge, limit)
		}
		return b, nil
	case CompressionZlib:
		out, err := inflate(b, limit)
		if err != nil {
			return nil, fmt.Errorf("zlib content: %w", err)
		}
		return out, nil
	case CompressionZstd:
		dec, err := zstd.NewReader(bytes.NewReader(b),
			zstd.WithDecoderConcurrency(1),
			zstd.WithDecoderMaxMemory(uint64(limit)),
		)
		if err != nil {
			return nil, err
		}
		defer dec.Close()
		out, err := readLimited(dec, limit)
		if err != nil {
			return nil, fmt.Errorf("zstd content: %w", err)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unknown compression %d", comp)
	}
}

// packReader reads little-endian fields and keeps the first error. Reads
// after an error return zero values.
type packReader struct {
	b   []byte
	off int
	err error
}

func (r *packReader) take(n int) []byte {
	if r.err != nil {
		return nil
	}
	if n < 0 || len(r.b)-r.off < n {
		r.err = io.ErrUnexpectedEOF
		return nil
	}
	b := r.b[r.off : r.off+n]
	r.off += n
	return b
}

func (r *packReader) u8() uint8 {
	if b := r.take(1); b != nil {
		return b[0]
	}
	return 0
}

func (r *packReader) u16() uint16 {
	if b := r.take(2); b != nil {
		return binary.LittleEndian.Uint16(b)
	}
	return 0
}

func (r *packReader) u32() uint32 {
	if b := r.take(4); b != nil {
		return binary.LittleEndian.Uint32(b)
	}
	return 0
}

// bytes returns a copy so entries do not alias the decompressed content.
func (r *packReader) bytes(n int) []byte {
	b := r.take(n)
	if b == nil {
		return nil
	}
	return append([]byte(nil), b...)
}

// count reads a u32 element count and rejects counts that cannot fit in the
// remaining input given the minimum element size.
func (r *packReader) count(minElem int) int {
	n := r.u32()
	if r.err == nil && uint64(n)*uint64(minElem) > uint64(len(r.b)-r.off) {
		r.err = fmt.Errorf("count %d exceeds remaining %d bytes", n, len(r.b)-r.off)
		return 0
	}
	return int(n)
}

func (r *packReader) entryHead() PackEntry {
	name := r.take(int(r.u16()))
	return PackEntry{Name: string(name), Encoding: r.u8()}
}

// gearTable is the rolling hash table for content-defined chunking, derived
// from xxhash so it is stable across builds.
var gearTable = func() [256]uint64 {
	var gear [256]uint64
	seed := xxhash.Sum64String("vopl-cdc-gear-seed")
	var b [16]byte
	for i := range gear {
		binary.LittleEndian.PutUint64(b[:8], seed+uint64(i)*0x9E3779B185EBCA87)
		binary.LittleEndian.PutUint64(b[8:], ^(seed + uint64(i)*0xC2B2AE3D27D4EB4F))
		v := xxhash.Sum64(b[:])
		if v == 0 {
			v = 0x9E3779B185EBCA87
		}
		gear[i] = v
	}
	return gear
}()

// chunkEntries cuts every payload at content-defined boundaries and returns
// the distinct chunks plus, per entry, the chunk indices that rebuild it.
func chunkEntries(entries []PackEntry, target, minSize, maxSize int) ([][]byte, [][]int) {
	// Round the target up to a power of two; a cut happens when the low bits
	// of the rolling hash are zero.
	mask := uint64(1)<<bits.Len(uint(target-1)) - 1

	var blocks [][]byte
	index := make(map[uint64][]int)
	add := func(b []byte) int {
		h := xxhash.Sum64(b)
		for _, idx := range index[h] {
			if bytes.Equal(blocks[idx], b) {
				return idx
			}
		}
		idx := len(blocks)
		blocks = append(blocks, append([]byte(nil), b...))
		index[h] = append(index[h], idx)
		return idx
	}

	seqs := make([][]int, len(entries))
	for i, e := range entries {
		data := e.Payload
		start := 0
		var h uint64
		for pos := range data {
			h = h<<1 + gearTable[data[pos]]
			size := pos - start + 1
			if size < minSize {
				continue
			}
			if h&mask == 0 || size >= maxSize {
				seqs[i] = append(seqs[i], add(data[start:pos+1]))
				start = pos + 1
				h = 0
			}
		}
		if start < len(data) {
			seqs[i] = append(seqs[i], add(data[start:]))
		}
	}
	return blocks, seqs
}
