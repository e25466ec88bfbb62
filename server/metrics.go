package server

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/voxelsplace/blockmesh/api"
	"github.com/voxelsplace/blockmesh/mesh"
)

const (
	algorithmLabel = "algorithm"
	faceLabel      = "face"
)

var (
	quadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "blockmesh_quads_total",
		Help: "The number of quads produced.",
	}, []string{
		algorithmLabel,
		faceLabel,
	})

	meshLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "blockmesh_mesh_latency_seconds",
		Help:    "The time spent decoding, meshing and encoding a request.",
		Buckets: prometheus.ExponentialBuckets(0.0005, 2, 14),
	}, []string{
		algorithmLabel,
	})

	meshErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "blockmesh_mesh_errors_total",
		Help: "The number of requests that could not be meshed.",
	}, []string{
		algorithmLabel,
	})
)

// faceNames label the faces of mesh.RightHandedYUp.
var faceNames = func() [6]string {
	var names [6]string
	for i, f := range mesh.RightHandedYUp.Faces {
		sign := "+"
		if f.NSign < 0 {
			sign = "-"
		}
		names[i] = sign + f.NormalAxis().String()
	}
	return names
}()

func observeMesh(opts api.Options, stats api.Stats, start time.Time) {
	algorithm := opts.Algorithm()
	meshLatency.WithLabelValues(algorithm).Observe(time.Since(start).Seconds())
	for i, n := range stats.Quads {
		quadsTotal.WithLabelValues(algorithm, faceNames[i]).Add(float64(n))
	}
}

func observeError(opts api.Options) {
	meshErrors.WithLabelValues(opts.Algorithm()).Inc()
}
