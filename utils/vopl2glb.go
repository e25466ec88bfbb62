package utils

import (
	"os"
	"time"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/go-tooling/pkg/logs"
	"github.com/voxelsplace/blockmesh/api"
)

// RunVOPL2GLB meshes a .vopl file and writes it as binary glTF.
func RunVOPL2GLB(inPath, outPath string, opts api.Options) error {
	data, err := os.ReadFile(inPath)
	if err != nil {
		return errors.New("reading vopl failed").WithTag("path", inPath).Wrap(err)
	}

	start := time.Now()
	out, stats, err := api.VOPLToGLB(data, opts)
	if err != nil {
		return errors.New("converting vopl to glb failed").WithTag("path", inPath).Wrap(err)
	}
	logMeshed(inPath, opts, stats, time.Since(start))

	return writeFile(outPath, out)
}

// RunVOPL2Quads meshes a .vopl file and writes its quads as JSON.
func RunVOPL2Quads(inPath, outPath string, opts api.Options) error {
	data, err := os.ReadFile(inPath)
	if err != nil {
		return errors.New("reading vopl failed").WithTag("path", inPath).Wrap(err)
	}

	start := time.Now()
	quads, err := api.VOPLToQuads(data, opts)
	if err != nil {
		return errors.New("meshing vopl failed").WithTag("path", inPath).Wrap(err)
	}
	logMeshed(inPath, opts, quads.Stats, time.Since(start))

	out, err := quads.JSON()
	if err != nil {
		return err
	}
	return writeFile(outPath, out)
}

func logMeshed(path string, opts api.Options, stats api.Stats, took time.Duration) {
	logs.WithTag("path", path).
		WithTag("algorithm", opts.Algorithm()).
		WithTag("quads", stats.Total).
		WithTag("duration_ms", took.Milliseconds()).
		Info("chunk meshed")
}

func writeFile(path string, data []byte) error {
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.New("writing output failed").WithTag("path", path).Wrap(err)
	}
	logs.WithTag("path", path).
		WithTag("bytes", len(data)).
		Info("output written")
	return nil
}
