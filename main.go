//go:build !(js && wasm)

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"reflect"
	"strings"
	"syscall"
	"time"

	"github.com/aukilabs/go-tooling/pkg/cli"
	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/go-tooling/pkg/logs"
	"github.com/aukilabs/go-tooling/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/segmentio/encoding/json"
	"github.com/voxelsplace/blockmesh/api"
	"github.com/voxelsplace/blockmesh/server"
	"github.com/voxelsplace/blockmesh/utils"
	"github.com/voxelsplace/blockmesh/vopl"
)

var (
	// The blockmesh version number. Set at build.
	version = "v0.1.0"

	infoGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name:        "blockmesh_info",
		Help:        "Blockmesh information.",
		ConstLabels: prometheus.Labels{"version": version},
	})
)

// Keeps the config field names intact under obfuscating builds so the cli
// package derives the right option names.
var _ = reflect.TypeOf(config{})

type config struct {
	Op          string   `cli:""        env:"BLOCKMESH_OP"          help:"Operation (vopl2glb|voplpack2glb|vopl2quads|vopl2voplpack|voplpack2vopl|vpi2vopl|vopl2vpi|updatevopl|gennoise|serve)."`
	In          string   `cli:""        env:"BLOCKMESH_IN"          help:"Input file."`
	Out         string   `cli:""        env:"BLOCKMESH_OUT"         help:"Output file or directory."`
	Inputs      []string `cli:""        env:"BLOCKMESH_INPUTS"      help:"Comma separated .vopl files to pack."`
	Edits       string   `cli:""        env:"BLOCKMESH_EDITS"       help:"VPI18 edit stream applied by updatevopl."`
	Naive       bool     `cli:""        env:"BLOCKMESH_NAIVE"       help:"Emit one quad per visible face instead of merging."`
	Parallel    bool     `cli:""        env:"BLOCKMESH_PARALLEL"    help:"Mesh the six faces concurrently."`
	Hide        string   `cli:""        env:"BLOCKMESH_HIDE"        help:"Comma separated palette indices to treat as empty."`
	Layout      string   `cli:""        env:"BLOCKMESH_LAYOUT"      help:"Pack layout (raw|cdc)."`
	Compression string   `cli:""        env:"BLOCKMESH_COMPRESSION" help:"Pack compression (none|zlib|zstd)."`
	FillMin     float64  `cli:""        env:"BLOCKMESH_FILL_MIN"    help:"Minimum fill percentage of generated chunks."`
	FillMax     float64  `cli:""        env:"BLOCKMESH_FILL_MAX"    help:"Maximum fill percentage of generated chunks."`
	Amount      int      `cli:""        env:"BLOCKMESH_AMOUNT"      help:"Number of chunks to generate."`
	Seed        int64    `cli:""        env:"BLOCKMESH_SEED"        help:"Random seed of generated chunks. 0 uses the clock."`
	Addr        string   `cli:""        env:"BLOCKMESH_ADDR"        help:"Listening address of the HTTP service."`
	MaxBodySize int64    `cli:",hidden" env:"BLOCKMESH_MAX_BODY_SIZE" help:"Maximum request body size in bytes."`
	LogLevel    string   `cli:""        env:"BLOCKMESH_LOG_LEVEL"   help:"Log level (debug|info|warning|error)."`
	LogIndent   bool     `cli:""        env:"BLOCKMESH_LOG_INDENT"  help:"Indent logs."`
	Version     bool     `cli:""        env:"-"                     help:"Show version."`
	Help        bool     `cli:""        env:"-"                     help:"Show help."`
}

func main() {
	conf := config{
		Layout:      "cdc",
		Compression: "zstd",
		FillMin:     10,
		FillMax:     60,
		Amount:      1,
		Addr:        ":4080",
		MaxBodySize: server.DefaultMaxBodySize,
		LogLevel:    logs.InfoLevel.String(),
	}

	infoGauge.Set(1)

	ctx, cancel := cli.ContextWithSignals(context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
	)
	defer cancel()

	cli.Register().
		Help("Meshes voxel chunks into quads and glTF, and packs chunk files.").
		Options(&conf)
	cli.Load()

	if conf.Version {
		fmt.Println(version)
		os.Exit(0)
	}

	logs.SetLevel(logs.ParseLevel(conf.LogLevel))
	logs.Encoder = json.Marshal
	if conf.LogIndent {
		logs.Encoder = func(v any) ([]byte, error) {
			return json.MarshalIndent(v, "", "  ")
		}
	}

	errors.Encoder = json.Marshal

	if err := run(ctx, conf); err != nil {
		logs.Fatal(err)
	}
}

func run(ctx context.Context, conf config) error {
	opts, err := meshOptions(conf)
	if err != nil {
		return err
	}

	switch conf.Op {
	case "vopl2glb":
		if err := requirePaths(conf); err != nil {
			return err
		}
		return utils.RunVOPL2GLB(conf.In, conf.Out, opts)

	case "voplpack2glb":
		if err := requirePaths(conf); err != nil {
			return err
		}
		return utils.RunVOPLPACK2GLB(conf.In, conf.Out, opts)

	case "vopl2quads":
		if err := requirePaths(conf); err != nil {
			return err
		}
		return utils.RunVOPL2Quads(conf.In, conf.Out, opts)

	case "vopl2voplpack":
		if conf.Out == "" || len(conf.Inputs) == 0 {
			return errors.New("vopl2voplpack needs -out and -inputs")
		}
		layout, comp, err := packOptions(conf)
		if err != nil {
			return err
		}
		return utils.CreatePack(conf.Inputs, conf.Out, layout, comp)

	case "voplpack2vopl":
		if err := requirePaths(conf); err != nil {
			return err
		}
		return utils.RunVOPLPACK2VOPL(conf.In, conf.Out)

	case "vpi2vopl":
		if err := requirePaths(conf); err != nil {
			return err
		}
		return utils.RunVPI2VOPL(conf.In, conf.Out)

	case "vopl2vpi":
		if err := requirePaths(conf); err != nil {
			return err
		}
		return utils.RunVOPL2VPI(conf.In, conf.Out)

	case "updatevopl":
		if err := requirePaths(conf); err != nil {
			return err
		}
		if conf.Edits == "" {
			return errors.New("updatevopl needs -edits")
		}
		return utils.RunUpdateVOPL(conf.In, conf.Edits, conf.Out)

	case "gennoise":
		seed := conf.Seed
		if seed == 0 {
			seed = time.Now().UnixNano()
		}
		return utils.RunGenerateNoise(conf.FillMin, conf.FillMax, conf.Amount, conf.Out, seed)

	case "serve":
		serve(ctx, conf)
		return nil

	default:
		return errors.New("unknown operation").
			WithTag("op", conf.Op).
			WithTag("ops", strings.Join(ops, ","))
	}
}

var ops = []string{
	"vopl2glb",
	"voplpack2glb",
	"vopl2quads",
	"vopl2voplpack",
	"voplpack2vopl",
	"vpi2vopl",
	"vopl2vpi",
	"updatevopl",
	"gennoise",
	"serve",
}

func requirePaths(conf config) error {
	if conf.In == "" || conf.Out == "" {
		return errors.New("operation needs -in and -out").WithTag("op", conf.Op)
	}
	return nil
}

func meshOptions(conf config) (api.Options, error) {
	overrides, err := api.ParseHidden(conf.Hide)
	if err != nil {
		return api.Options{}, err
	}
	return api.Options{
		Naive:     conf.Naive,
		Parallel:  conf.Parallel,
		Overrides: overrides,
	}, nil
}

func packOptions(conf config) (vopl.Layout, vopl.Compression, error) {
	var layout vopl.Layout
	switch conf.Layout {
	case "", "raw":
		layout = vopl.LayoutRaw
	case "cdc":
		layout = vopl.LayoutCDC
	default:
		return 0, 0, errors.New("unknown pack layout").WithTag("layout", conf.Layout)
	}

	comp, err := vopl.ParseCompression(conf.Compression)
	if err != nil {
		return 0, 0, errors.New("invalid compression").Wrap(err)
	}
	return layout, comp, nil
}

func serve(ctx context.Context, conf config) {
	service := server.NewHandler(server.Config{
		Version:     version,
		MaxBodySize: conf.MaxBodySize,
	})

	logs.WithTag("version", version).
		WithTag("log_level", conf.LogLevel).
		WithTag("addr", conf.Addr).
		Info("starting blockmesh server")

	server.ListenAndServe(ctx,
		&http.Server{
			Addr:              conf.Addr,
			Handler:           metrics.HTTPHandler(service, server.MetricsPathFormatter),
			ReadHeaderTimeout: 10 * time.Second,
		},
	)
}
