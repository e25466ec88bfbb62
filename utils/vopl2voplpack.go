package utils

import (
	"os"
	"path/filepath"
	"time"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/go-tooling/pkg/logs"
	"github.com/voxelsplace/blockmesh/api"
	"github.com/voxelsplace/blockmesh/vopl"
	"golang.org/x/sync/errgroup"
)

// CreatePack reads .vopl files concurrently and writes them as one
// .voplpack. Entries are named after the file base names, which must be
// unique.
func CreatePack(inputFiles []string, outputFile string, layout vopl.Layout, comp vopl.Compression) error {
	if len(inputFiles) == 0 {
		return errors.New("no vopl files provided")
	}

	blobs := make([][]byte, len(inputFiles))
	var g errgroup.Group
	for i, path := range inputFiles {
		g.Go(func() error {
			b, err := os.ReadFile(path)
			if err != nil {
				return errors.New("reading vopl failed").WithTag("path", path).Wrap(err)
			}
			blobs[i] = b
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	files := make(map[string][]byte, len(inputFiles))
	for i, path := range inputFiles {
		name := filepath.Base(path)
		if _, ok := files[name]; ok {
			return errors.New("duplicate entry name").WithTag("name", name)
		}
		files[name] = blobs[i]
	}

	start := time.Now()
	data, err := api.PackVOPLs(files, layout, comp)
	if err != nil {
		return err
	}
	logs.WithTag("entries", len(files)).
		WithTag("compression", comp.String()).
		WithTag("duration_ms", time.Since(start).Milliseconds()).
		Info("voplpack built")

	return writeFile(outputFile, data)
}
