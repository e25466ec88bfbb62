package vopl

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEditsRoundtrip(t *testing.T) {
	g := RandomGrid(rand.New(rand.NewSource(2)), 30, 63)

	stream := EncodeEdits(g.Edits())
	require.Len(t, stream, (g.Filled()*18+7)/8)

	edits, err := DecodeEdits(stream)
	require.NoError(t, err)

	var got Grid
	require.NoError(t, got.Apply(edits))
	require.Equal(t, *g, got)
	require.Equal(t, stream, EncodeEdits(got.Edits()))
}

func TestEditClears(t *testing.T) {
	g := testGrid()
	require.NoError(t, g.Apply([]Edit{NewEdit(0, 0, 0, 0), NewEdit(15, 15, 15, 7)}))
	require.Zero(t, g.At(0, 0, 0))
	require.Equal(t, uint8(7), g.At(15, 15, 15))
}

func TestEditXYZ(t *testing.T) {
	e := NewEdit(3, 5, 7, 1)
	require.Equal(t, uint16(3+5*16+7*256), e.Index)

	x, y, z := e.XYZ()
	require.Equal(t, []int{3, 5, 7}, []int{x, y, z})
}

func TestDecodeEditsIgnoresTrailingBits(t *testing.T) {
	stream := EncodeEdits([]Edit{{Index: 10, Color: 3}})
	require.Len(t, stream, 3)

	edits, err := DecodeEdits(append(stream, 0xff))
	require.NoError(t, err)
	require.Equal(t, []Edit{{Index: 10, Color: 3}}, edits)

	edits, err = DecodeEdits(nil)
	require.NoError(t, err)
	require.Empty(t, edits)
}

func TestApplyRejectsOutOfRange(t *testing.T) {
	g := testGrid()
	before := *g
	require.Error(t, g.Apply([]Edit{NewEdit(1, 1, 1, 0), {Index: 5000, Color: 1}}))
	require.Equal(t, before, *g)
}
