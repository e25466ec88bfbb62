package server

import (
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/go-tooling/pkg/logs"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/voxelsplace/blockmesh/api"
)

const (
	requestIDHeader = "X-Request-Id"

	contentTypeGLB  = "model/gltf-binary"
	contentTypeJSON = "application/json"

	// DefaultMaxBodySize bounds request bodies. A raw pack of a thousand
	// dense chunks fits well below it.
	DefaultMaxBodySize = 32 << 20
)

// Config configures the service handler.
type Config struct {
	Version     string
	MaxBodySize int64
}

// NewHandler returns the service routes:
//
//	POST /glb      .vopl body, binary glTF response
//	POST /quads    .vopl body, JSON quads response
//	POST /packglb  .voplpack body, binary glTF response
//	GET  /health
//	GET  /version
//	GET  /metrics
//
// Mesh routes accept the query parameters naive and parallel (booleans) and
// hide, a comma separated list of palette indices to treat as empty.
func NewHandler(conf Config) http.Handler {
	if conf.MaxBodySize <= 0 {
		conf.MaxBodySize = DefaultMaxBodySize
	}

	var mux http.ServeMux
	mux.Handle("POST /glb", meshHandler(conf, contentTypeGLB, func(body []byte, opts api.Options) ([]byte, api.Stats, error) {
		return api.VOPLToGLB(body, opts)
	}))
	mux.Handle("POST /quads", meshHandler(conf, contentTypeJSON, func(body []byte, opts api.Options) ([]byte, api.Stats, error) {
		q, err := api.VOPLToQuads(body, opts)
		if err != nil {
			return nil, api.Stats{}, err
		}
		b, err := q.JSON()
		return b, q.Stats, err
	}))
	mux.Handle("POST /packglb", meshHandler(conf, contentTypeGLB, api.PackToGLB))
	mux.HandleFunc("GET /health", HandleHealthCheck)
	mux.HandleFunc("GET /version", HandleVersion(conf.Version))
	mux.Handle("GET /metrics", promhttp.Handler())
	return &mux
}

func HandleHealthCheck(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func HandleVersion(version string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(version))
	}
}

type meshFunc func(body []byte, opts api.Options) ([]byte, api.Stats, error)

func meshHandler(conf Config, contentType string, fn meshFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := uuid.NewString()
		w.Header().Set(requestIDHeader, requestID)

		opts, err := parseOptions(r)
		if err != nil {
			logs.WithTag("request_id", requestID).Debug(err)
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, conf.MaxBodySize))
		if err != nil {
			logs.Warn(errors.New("reading request body failed").
				WithTag("request_id", requestID).
				Wrap(err))
			http.Error(w, "request body too large or unreadable", http.StatusRequestEntityTooLarge)
			return
		}

		out, stats, err := fn(body, opts)
		if err != nil {
			observeError(opts)
			logs.Warn(errors.New("meshing request failed").
				WithTag("request_id", requestID).
				WithTag("path", r.URL.Path).
				Wrap(err))
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		observeMesh(opts, stats, start)

		logs.WithTag("request_id", requestID).
			WithTag("path", r.URL.Path).
			WithTag("algorithm", opts.Algorithm()).
			WithTag("quads", stats.Total).
			WithTag("duration_ms", time.Since(start).Milliseconds()).
			Info("request meshed")

		w.Header().Set("Content-Type", contentType)
		w.Header().Set("Content-Length", strconv.Itoa(len(out)))
		w.WriteHeader(http.StatusOK)
		w.Write(out)
	}
}

func parseOptions(r *http.Request) (api.Options, error) {
	var opts api.Options
	q := r.URL.Query()

	for name, dst := range map[string]*bool{"naive": &opts.Naive, "parallel": &opts.Parallel} {
		v := q.Get(name)
		if v == "" {
			continue
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return opts, errors.New("invalid boolean query parameter").
				WithTag("name", name).
				Wrap(err)
		}
		*dst = b
	}

	overrides, err := api.ParseHidden(q.Get("hide"))
	if err != nil {
		return opts, err
	}
	opts.Overrides = overrides
	return opts, nil
}
