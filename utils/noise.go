package utils

import (
	"fmt"
	"math/rand"
	"os"
	"path/filepath"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/go-tooling/pkg/logs"
	"github.com/voxelsplace/blockmesh/vopl"
)

// RunGenerateNoise writes amount random chunks named 0.vopl, 1.vopl, ... to
// outDir. Each chunk's fill percentage is drawn uniformly from
// [percentageMin, percentageMax]. The same seed produces the same files.
func RunGenerateNoise(percentageMin, percentageMax float64, amount int, outDir string, seed int64) error {
	if outDir == "" {
		outDir = "."
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return errors.New("creating output directory failed").WithTag("dir", outDir).Wrap(err)
	}

	percentageMin = min(max(percentageMin, 0), 100)
	percentageMax = min(max(percentageMax, 0), 100)
	if percentageMax < percentageMin {
		percentageMin, percentageMax = percentageMax, percentageMin
	}

	for i := 0; i < amount; i++ {
		// Per-file seeds along a Weyl sequence keep files independent of
		// how many were generated before them.
		const weyl = uint64(0x9e3779b97f4a7c15)
		s := uint64(seed) ^ (uint64(i)+1)*weyl
		r := rand.New(rand.NewSource(int64(s & 0x7fffffffffffffff)))

		perc := percentageMin + r.Float64()*(percentageMax-percentageMin)
		path := filepath.Join(outDir, fmt.Sprintf("%d.vopl", i))
		if err := vopl.Save(vopl.RandomGrid(r, perc, vopl.PaletteSize-1), path); err != nil {
			return errors.New("saving vopl failed").WithTag("path", path).Wrap(err)
		}
	}

	logs.WithTag("amount", amount).
		WithTag("dir", outDir).
		WithTag("seed", seed).
		Info("noise chunks generated")
	return nil
}
