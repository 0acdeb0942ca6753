/*Package pipeline sequences ISP stages over a frame.

A Pipeline is an ordered, type-checked list of stages built once by New.
Run hands the frame and parameter bundle to each stage in turn and stops at
the first failure; every stage call is timed into a prometheus histogram.
*/
package pipeline

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/adas-eyes/ispcore/frame"
	"github.com/adas-eyes/ispcore/isp"
	"github.com/adas-eyes/ispcore/params"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// ErrUnknownStage is returned by New for a name that is neither a stage
	// nor a bridge
	ErrUnknownStage = errors.New("unknown stage")

	// ErrIncompatible is returned by New when a stage's output port does not
	// match the next stage's input port
	ErrIncompatible = errors.New("incompatible adjacent stages")

	// ErrEmpty is returned by New when no stage is named
	ErrEmpty = errors.New("pipeline has no stages")
)

var (
	// Raw is the linear raw chain, companded sensor data to balanced raw
	Raw = []string{"depwl", "dpc", "wbgain"}

	// Full runs every stage, bridging between domains
	Full = []string{"depwl", "dpc", "wbgain", "raw2bgr", "rgbgamma", "bgr2y", "sharpen"}
)

var (
	stageSeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "isp",
		Name:      "stage_seconds",
		Help:      "Time spent in one call of an ISP stage.",
		Buckets:   prometheus.ExponentialBuckets(1e-5, 4, 10),
	}, []string{"stage"})

	stageFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "isp",
		Name:      "stage_failures_total",
		Help:      "Number of stage calls that halted the pipeline.",
	}, []string{"stage"})
)

func init() {
	prometheus.MustRegister(stageSeconds, stageFailures)
}

// Pipeline is an ordered list of stages.  Run is safe for concurrent use;
// calls are serialized.
type Pipeline struct {
	sync.Mutex

	stages []isp.Stage

	// Verbose logs the stage that halted a run
	Verbose bool
}

// New builds a pipeline from stage names, checking that each stage's output
// port is the next one's input port
func New(names ...string) (*Pipeline, error) {
	if len(names) == 0 {
		return nil, ErrEmpty
	}
	stages := make([]isp.Stage, 0, len(names))
	for i, name := range names {
		s, ok := Lookup(strings.TrimSpace(name))
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownStage, name)
		}
		if i > 0 {
			prev := stages[i-1]
			if prev.Out() != s.In() {
				return nil, fmt.Errorf("%w: %s produces %s, %s consumes %s",
					ErrIncompatible, prev.Name(), prev.Out(), s.Name(), s.In())
			}
		}
		stages = append(stages, s)
	}
	return &Pipeline{stages: stages}, nil
}

// Names returns the stage names in run order
func (p *Pipeline) Names() []string {
	out := make([]string, len(p.stages))
	for i, s := range p.stages {
		out[i] = s.Name()
	}
	return out
}

// In is the port the first stage reads
func (p *Pipeline) In() frame.Port {
	return p.stages[0].In()
}

// Out is the port the last stage writes
func (p *Pipeline) Out() frame.Port {
	return p.stages[len(p.stages)-1].Out()
}

// Run calls each stage on f in order.  The first failure halts the run and
// comes back as an *isp.StageError naming the stage.
func (p *Pipeline) Run(f *frame.Frame, prm *params.Prms) error {
	p.Lock()
	defer p.Unlock()
	for _, s := range p.stages {
		start := time.Now()
		err := s.Run(f, prm)
		stageSeconds.WithLabelValues(s.Name()).Observe(time.Since(start).Seconds())
		if err != nil {
			stageFailures.WithLabelValues(s.Name()).Inc()
			if p.Verbose {
				log.Printf("pipeline halted at %s: %v", s.Name(), err)
			}
			return &isp.StageError{Stage: s.Name(), Err: err}
		}
	}
	return nil
}
