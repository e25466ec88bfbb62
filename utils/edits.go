package utils

import (
	"os"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/voxelsplace/blockmesh/api"
)

// RunVPI2VOPL builds a .vopl file from a VPI18 edit stream.
func RunVPI2VOPL(inPath, outPath string) error {
	stream, err := os.ReadFile(inPath)
	if err != nil {
		return errors.New("reading edits failed").WithTag("path", inPath).Wrap(err)
	}
	out, err := api.EditsToVOPL(stream)
	if err != nil {
		return err
	}
	return writeFile(outPath, out)
}

// RunUpdateVOPL applies a VPI18 edit stream to a .vopl file and writes the
// result to outPath.
func RunUpdateVOPL(inPath, editsPath, outPath string) error {
	data, err := os.ReadFile(inPath)
	if err != nil {
		return errors.New("reading vopl failed").WithTag("path", inPath).Wrap(err)
	}
	stream, err := os.ReadFile(editsPath)
	if err != nil {
		return errors.New("reading edits failed").WithTag("path", editsPath).Wrap(err)
	}
	out, err := api.ApplyEdits(data, stream)
	if err != nil {
		return err
	}
	return writeFile(outPath, out)
}

// RunVOPL2VPI writes the VPI18 edit stream that builds a .vopl file's chunk.
func RunVOPL2VPI(inPath, outPath string) error {
	data, err := os.ReadFile(inPath)
	if err != nil {
		return errors.New("reading vopl failed").WithTag("path", inPath).Wrap(err)
	}
	out, err := api.VOPLToEdits(data)
	if err != nil {
		return err
	}
	return writeFile(outPath, out)
}
