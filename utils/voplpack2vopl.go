package utils

import (
	"os"
	"path/filepath"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/go-tooling/pkg/logs"
	"github.com/voxelsplace/blockmesh/api"
	"golang.org/x/sync/errgroup"
)

// RunVOPLPACK2VOPL extracts every .vopl file of a .voplpack into outDir,
// keeping the entry names.
func RunVOPLPACK2VOPL(inPackPath, outDir string) error {
	data, err := os.ReadFile(inPackPath)
	if err != nil {
		return errors.New("reading voplpack failed").WithTag("path", inPackPath).Wrap(err)
	}
	files, err := api.UnpackVOPLPack(data)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return errors.New("creating output directory failed").WithTag("dir", outDir).Wrap(err)
	}

	var g errgroup.Group
	for name, b := range files {
		g.Go(func() error {
			// Entry names come from the pack; never write outside outDir.
			path := filepath.Join(outDir, filepath.Base(name))
			if err := os.WriteFile(path, b, 0o644); err != nil {
				return errors.New("writing vopl failed").WithTag("path", path).Wrap(err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	logs.WithTag("path", inPackPath).
		WithTag("entries", len(files)).
		WithTag("dir", outDir).
		Info("voplpack extracted")
	return nil
}
