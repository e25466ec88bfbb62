package vopl

import (
	"fmt"
	"strconv"
)

// PaletteSize is the number of colours a chunk can reference.
const PaletteSize = 64

// Palette is the built-in colour table. Index 0 is empty space; entries with
// an alpha byte below ff are translucent.
var Palette = [PaletteSize]string{
	"#00000000", "#f25454", "#f29854", "#f2db54",
	"#c5f254", "#81f254", "#54f26b", "#54f2ae",
	"#54f2f2", "#54aef2", "#546bf2", "#8154f2",
	"#c554f2", "#f254db", "#f25498", "#bf4242",
	"#bf7842", "#bfad42", "#9bbf42", "#66bf42",
	"#42bf54", "#42bf89", "#42bfbf", "#4289bf",
	"#4254bf", "#6642bf", "#9b42bf", "#bf42ad",
	"#bf4278", "#8c3131", "#8c5831", "#8c7f31",
	"#728c31", "#4b8c31", "#318c3e", "#318c65",
	"#318c8c", "#31658c", "#313e8c", "#4b318c",
	"#72318c", "#8c317f", "#8c3158", "#591f1f",
	"#59381f", "#59501f", "#48591f", "#2f591f",
	"#1f5927", "#1f5940", "#1f5959", "#1f4059",
	"#1f2759", "#2f1f59", "#481f59", "#591f50",
	"#ffffff", "#c8c8c8", "#7f7f7f", "#3c3c3c",
	"#000000", "#3f76e4b0", "#c0e0f080", "#ffffff60",
}

var paletteRGBA = func() [PaletteSize][4]float32 {
	var out [PaletteSize][4]float32
	for i, hex := range Palette {
		c, err := ParseHexColor(hex)
		if err != nil {
			panic(err)
		}
		out[i] = c
	}
	return out
}()

// Color returns the RGBA colour of a palette index, components in 0..1.
// Indices past the palette wrap around.
func Color(index uint8) [4]float32 {
	return paletteRGBA[int(index)%len(paletteRGBA)]
}

// ParseHexColor parses #rrggbb or #rrggbbaa.
func ParseHexColor(hex string) ([4]float32, error) {
	if len(hex) == 0 || hex[0] != '#' {
		return [4]float32{}, fmt.Errorf("invalid hex colour %q", hex)
	}
	h := hex[1:]
	if len(h) != 6 && len(h) != 8 {
		return [4]float32{}, fmt.Errorf("invalid hex colour length %q", hex)
	}

	rgba := [4]float32{1, 1, 1, 1}
	for i := 0; i < len(h)/2; i++ {
		v, err := strconv.ParseUint(h[i*2:i*2+2], 16, 8)
		if err != nil {
			return [4]float32{}, fmt.Errorf("invalid hex colour %q: %w", hex, err)
		}
		rgba[i] = float32(v) / 255
	}
	return rgba, nil
}
