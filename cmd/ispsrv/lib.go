package main

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/adas-eyes/ispcore/generichttp"
	"github.com/adas-eyes/ispcore/imgrec"
	"github.com/adas-eyes/ispcore/isphttp"
	"github.com/adas-eyes/ispcore/params"
	"github.com/adas-eyes/ispcore/pipeline"
	"github.com/adas-eyes/ispcore/server/middleware/locker"
	"github.com/adas-eyes/ispcore/server/middleware/throttle"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RecorderSetup configures the recorder that keeps a copy of every
// processed frame
type RecorderSetup struct {
	// Root is the folder frames are saved under, in yyyy-mm-dd subfolders
	Root string `yaml:"Root" koanf:"Root"`

	// Prefix is prepended to the zero padded frame counter
	Prefix string `yaml:"Prefix" koanf:"Prefix"`

	// Enabled turns recording on at startup; it can be toggled over HTTP
	Enabled bool `yaml:"Enabled" koanf:"Enabled"`
}

// ThrottleSetup limits how fast frames are accepted.  A zero rate disables
// the limit.
type ThrottleSetup struct {
	PerSec float64 `yaml:"PerSec" koanf:"PerSec"`
	Burst  int     `yaml:"Burst" koanf:"Burst"`
}

// Config is a struct that holds the initialization parameters for the
// server.  It is to be populated by a koanf unmarshal call.
type Config struct {
	// Addr is the address to listen at
	Addr string `yaml:"Addr" koanf:"Addr"`

	// Endpoint is the path the ISP routes are mounted under, e.g. "/isp"
	Endpoint string `yaml:"Endpoint" koanf:"Endpoint"`

	// Params is the path to a parameter bundle; empty uses the defaults
	Params string `yaml:"Params" koanf:"Params"`

	// Watch reloads Params whenever the file changes
	Watch bool `yaml:"Watch" koanf:"Watch"`

	// Stages is the stage chain used when a request names none
	Stages []string `yaml:"Stages" koanf:"Stages"`

	// PreviewWidth is the default width of png and jpg replies
	PreviewWidth int `yaml:"PreviewWidth" koanf:"PreviewWidth"`

	// Verbose logs every halted pipeline
	Verbose bool `yaml:"Verbose" koanf:"Verbose"`

	Recorder RecorderSetup `yaml:"Recorder" koanf:"Recorder"`

	Throttle ThrottleSetup `yaml:"Throttle" koanf:"Throttle"`
}

// defaultConfig is the configuration used for keys the file leaves out
func defaultConfig() Config {
	return Config{
		Addr:     ":8000",
		Endpoint: "/isp",
		Stages:   pipeline.Full,
		Recorder: RecorderSetup{Prefix: "isp"},
	}
}

// loadParams returns the bundle named by c, or the defaults
func loadParams(c Config) (params.Prms, error) {
	if c.Params == "" {
		return params.Default(), nil
	}
	return params.Load(c.Params)
}

// NewService builds the ISP service described by c
func NewService(c Config, prm params.Prms) *isphttp.Service {
	rec := &imgrec.Recorder{
		Root:    c.Recorder.Root,
		Prefix:  c.Recorder.Prefix,
		Enabled: c.Recorder.Enabled,
	}
	svc := isphttp.New(prm, rec, c.Stages...)
	svc.PreviewWidth = c.PreviewWidth
	svc.Verbose = c.Verbose
	return svc
}

// BuildMux mounts svc under c.Endpoint behind the lock and throttle
// middleware, and adds /metrics and /endpoints at the root
func BuildMux(c Config, svc *isphttp.Service) chi.Router {
	root := chi.NewRouter()
	root.Use(middleware.Logger)

	var mw []func(http.Handler) http.Handler
	lock := locker.New()
	locker.Inject(svc, lock)
	mw = append(mw, lock.Check)
	if c.Throttle.PerSec > 0 {
		burst := c.Throttle.Burst
		if burst < 1 {
			burst = 1
		}
		th := throttle.New(c.Throttle.PerSec, burst)
		th.Protect = []string{"process"}
		throttle.Inject(svc, th)
		mw = append(mw, th.Check)
	}

	stem := generichttp.SubMuxSanitize(c.Endpoint)
	r := chi.NewRouter()
	r.Use(mw...)
	svc.RT().Bind(r)
	root.Mount(stem, r)
	root.Handle("/metrics", promhttp.Handler())

	supergraph := map[string][]string{stem: svc.RT().Endpoints()}
	root.Get("/endpoints", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		err := json.NewEncoder(w).Encode(supergraph)
		if err != nil {
			log.Println(err)
		}
	})
	return root
}
