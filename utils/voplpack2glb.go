package utils

import (
	"os"
	"time"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/voxelsplace/blockmesh/api"
)

// RunVOPLPACK2GLB meshes every entry of a .voplpack into one binary glTF
// scene, one node per entry.
func RunVOPLPACK2GLB(inPackPath, outGlbPath string, opts api.Options) error {
	data, err := os.ReadFile(inPackPath)
	if err != nil {
		return errors.New("reading voplpack failed").WithTag("path", inPackPath).Wrap(err)
	}

	start := time.Now()
	out, stats, err := api.PackToGLB(data, opts)
	if err != nil {
		return errors.New("converting voplpack to glb failed").WithTag("path", inPackPath).Wrap(err)
	}
	logMeshed(inPackPath, opts, stats, time.Since(start))

	return writeFile(outGlbPath, out)
}
