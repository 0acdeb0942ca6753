/*Package isp implements the numeric image signal processing stages.

Each stage reads one buffer of a frame.Frame, writes the paired output
buffer, and on success swaps the pair so the next stage sees fresh data.
A stage that fails returns before the swap.  Stages never allocate frame
memory, never retain the frame or the parameters after returning, and
never log; reporting is the caller's job.

The set of stages is fixed and registered at init under the names
"depwl", "dpc", "wbgain", "rgbgamma" and "sharpen".
*/
package isp

import (
	"errors"
	"fmt"
	"sort"

	"github.com/adas-eyes/ispcore/frame"
	"github.com/adas-eyes/ispcore/params"
)

var (
	// ErrNilArg is returned when the frame or the parameter bundle is nil
	ErrNilArg = errors.New("input prms is nil")

	// ErrConfig is returned when a stage's parameters cannot be applied,
	// for example a decompanding curve with fewer than two breakpoints
	ErrConfig = errors.New("malformed stage configuration")
)

// Stage is one step of the pipeline
type Stage interface {
	// Name is the key the stage is registered under
	Name() string

	// In is the representation and domain the stage reads
	In() frame.Port

	// Out is the representation and domain the stage writes
	Out() frame.Port

	// Run processes f in place using p.  On success the relevant buffer
	// pair of f has been swapped.
	Run(f *frame.Frame, p *params.Prms) error
}

// StageError ties an error to the stage that produced it
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

// Unwrap returns the underlying error
func (e *StageError) Unwrap() error {
	return e.Err
}

// registry maps names to stages.  It is filled by init and read-only after.
var registry = map[string]Stage{}

func register(s Stage) {
	if _, ok := registry[s.Name()]; ok {
		panic("isp: stage registered twice: " + s.Name())
	}
	registry[s.Name()] = s
}

func init() {
	register(DePwl{})
	register(Dpc{})
	register(WbGain{})
	register(RgbGamma{})
	register(Sharpen{})
}

// Lookup returns the stage registered under name
func Lookup(name string) (Stage, bool) {
	s, ok := registry[name]
	return s, ok
}

// Names returns the registered stage names in lexical order
func Names() []string {
	out := make([]string, 0, len(registry))
	for k := range registry {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func checkArgs(f *frame.Frame, p *params.Prms) error {
	if f == nil || p == nil {
		return ErrNilArg
	}
	return nil
}
