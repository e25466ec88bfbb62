package vopl

import (
	"encoding/binary"
	"fmt"
)

const (
	magic = "VOPL"

	// Version is the only file version this package reads and writes.
	Version = 3

	// DefaultBPP stores 64 colours. Every chunk uses it so headers stay equal
	// and chunks can be packed together.
	DefaultBPP = 6

	// PaletteID identifies the built-in 64 colour palette.
	PaletteID = 64

	headerSize = 16
)

// Header holds the fields every chunk of a pack shares. The encoding byte is
// per chunk and lives in File.
type Header struct {
	Version uint8
	BPP     uint8
	W, H, D uint8
	Palette uint16
}

// DefaultHeader is the header Encode writes.
var DefaultHeader = Header{
	Version: Version,
	BPP:     DefaultBPP,
	W:       Width,
	H:       Height,
	D:       Depth,
	Palette: PaletteID,
}

// Compatible reports whether chunks with both headers can share a pack.
func (h Header) Compatible(o Header) bool {
	return h == o
}

// File is a parsed .vopl file whose payload is still encoded.
type File struct {
	Header
	Encoding uint8
	Payload  []byte
}

// ParseFile splits .vopl bytes into header, encoding and payload. The payload
// aliases data.
func ParseFile(data []byte) (File, error) {
	var f File
	if len(data) < headerSize || string(data[:4]) != magic {
		return f, fmt.Errorf("not a vopl file")
	}
	f.Version = data[4]
	if f.Version != Version {
		return f, fmt.Errorf("unsupported vopl version %d", f.Version)
	}
	f.Encoding = data[5]
	f.BPP = data[6]
	f.W, f.H, f.D = data[7], data[8], data[9]
	f.Palette = binary.LittleEndian.Uint16(data[10:12])

	size := binary.LittleEndian.Uint32(data[12:16])
	if uint64(len(data)-headerSize) != uint64(size) {
		return f, fmt.Errorf("payload length %d does not match header (%d)", len(data)-headerSize, size)
	}
	f.Payload = data[headerSize:]
	return f, nil
}

// Bytes returns the complete .vopl file.
func (f File) Bytes() []byte {
	out := make([]byte, 0, headerSize+len(f.Payload))
	out = append(out, magic...)
	out = append(out, f.Version, f.Encoding, f.BPP, f.W, f.H, f.D)
	out = binary.LittleEndian.AppendUint16(out, f.Palette)
	out = binary.LittleEndian.AppendUint32(out, uint32(len(f.Payload)))
	return append(out, f.Payload...)
}
