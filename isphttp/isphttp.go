/*Package isphttp exposes an ISP pipeline over HTTP.

A client POSTs a companded raw frame as FITS to /process and receives the
processed frame as FITS, PNG or JPEG.  The parameter bundle can be read and
replaced as a whole (/params) or a few common knobs at a time.  A bundle in
use by a running frame is never modified; updates build a new bundle and
swap it in for the next frame.
*/
package isphttp

import (
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/adas-eyes/ispcore/frame"
	"github.com/adas-eyes/ispcore/frameio"
	"github.com/adas-eyes/ispcore/generichttp"
	"github.com/adas-eyes/ispcore/imgrec"
	"github.com/adas-eyes/ispcore/isp"
	"github.com/adas-eyes/ispcore/params"
	"github.com/adas-eyes/ispcore/pipeline"
	"github.com/adas-eyes/ispcore/server"
	"github.com/adas-eyes/ispcore/util"
	"github.com/astrogo/fitsio"
)

// ErrInput is returned when a pipeline does not start from companded raw data
var ErrInput = errors.New("pipeline must start from raw/u16")

// Service wraps a parameter bundle and a cache of pipelines
type Service struct {
	// mu serializes writers of prm
	mu  sync.Mutex
	prm atomic.Value

	pipeMu sync.Mutex
	pipes  map[string]*pipeline.Pipeline

	// Stages run when a request names none
	Stages []string

	// Recorder, when active, receives a copy of every FITS reply
	Recorder *imgrec.Recorder

	// PreviewWidth is the width PNG and JPEG replies are resized to when the
	// request gives none; zero keeps the frame size
	PreviewWidth int

	// Verbose is passed on to every pipeline
	Verbose bool

	rt generichttp.RouteTable
}

// New returns a service processing frames with p through stages
func New(p params.Prms, rec *imgrec.Recorder, stages ...string) *Service {
	if len(stages) == 0 {
		stages = pipeline.Full
	}
	s := &Service{
		pipes:    map[string]*pipeline.Pipeline{},
		Stages:   stages,
		Recorder: rec,
	}
	s.SetParams(p)
	s.rt = generichttp.RouteTable{
		{Method: http.MethodPost, Path: "/process"}:       s.HTTPProcess,
		{Method: http.MethodGet, Path: "/stages"}:         s.HTTPStages,
		{Method: http.MethodGet, Path: "/params"}:         s.HTTPGetParams,
		{Method: http.MethodPost, Path: "/params"}:        s.HTTPSetParams,
		{Method: http.MethodGet, Path: "/sharpen/ratio"}:  generichttp.GetFloat(s.ratio),
		{Method: http.MethodPost, Path: "/sharpen/ratio"}: generichttp.SetFloat(s.setRatio),
		{Method: http.MethodGet, Path: "/dpc/thres"}:      generichttp.GetInt(s.thres),
		{Method: http.MethodPost, Path: "/dpc/thres"}:     generichttp.SetInt(s.setThres),
		{Method: http.MethodGet, Path: "/dpc/mode"}:       generichttp.GetString(s.mode),
		{Method: http.MethodPost, Path: "/dpc/mode"}:      generichttp.SetString(s.setMode),
		{Method: http.MethodGet, Path: "/cfa"}:            generichttp.GetString(s.cfa),
		{Method: http.MethodPost, Path: "/cfa"}:           generichttp.SetString(s.setCFA),
	}
	if rec != nil {
		imgrec.NewHTTPWrapper(rec).Inject(s)
	}
	return s
}

// RT satisfies generichttp.HTTPer
func (s *Service) RT() generichttp.RouteTable {
	return s.rt
}

// Params returns the bundle in force.  It must not be modified.
func (s *Service) Params() *params.Prms {
	return s.prm.Load().(*params.Prms)
}

// SetParams replaces the bundle for every frame that starts after the call
func (s *Service) SetParams(p params.Prms) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := p.Clone()
	s.prm.Store(&c)
}

// update applies fn to a copy of the bundle and swaps the copy in if fn
// succeeds
func (s *Service) update(fn func(p *params.Prms) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.Params().Clone()
	if err := fn(&c); err != nil {
		return err
	}
	s.prm.Store(&c)
	return nil
}

// maxPipelines bounds the number of stage lists Pipeline keeps built
const maxPipelines = 32

// Pipeline returns the pipeline for names, building it on first use.
// Once maxPipelines lists are cached, new lists are built per call.
func (s *Service) Pipeline(names []string) (*pipeline.Pipeline, error) {
	key := strings.Join(names, ",")
	s.pipeMu.Lock()
	defer s.pipeMu.Unlock()
	if pl, ok := s.pipes[key]; ok {
		return pl, nil
	}
	pl, err := pipeline.New(names...)
	if err != nil {
		return nil, err
	}
	if pl.In() != frameio.RawU16 {
		return nil, fmt.Errorf("%w, %s reads %s", ErrInput, pl.Names()[0], pl.In())
	}
	pl.Verbose = s.Verbose
	if len(s.pipes) < maxPipelines {
		s.pipes[key] = pl
	}
	return pl, nil
}

// Process decodes a raw FITS frame from r and runs it through the named
// stages with the current bundle
func (s *Service) Process(r io.Reader, names []string) (*frame.Frame, *pipeline.Pipeline, error) {
	pl, err := s.Pipeline(names)
	if err != nil {
		return nil, nil, err
	}
	im, err := frameio.Read(r)
	if err != nil {
		return nil, nil, err
	}
	prm := s.Params()
	def, err := frame.ParseCFA(prm.Info.CFA)
	if err != nil {
		return nil, nil, err
	}
	cfa, err := im.CFA(def)
	if err != nil {
		return nil, nil, err
	}
	f, err := frame.Capture(im, cfa)
	if err != nil {
		return nil, nil, err
	}
	return f, pl, pl.Run(f, prm)
}

// HTTPProcess runs the frame in the request body through the pipeline.
//
// Query parameters: stages, a comma separated list (default Stages);
// fmt, one of fits, png or jpg (default fits); width, the preview width
// for png and jpg.
func (s *Service) HTTPProcess(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()
	q := r.URL.Query()
	format := q.Get("fmt")
	if format == "" {
		format = "fits"
	}
	switch format {
	case "fits", "png", "jpg", "jpeg":
	default:
		http.Error(w, fmt.Sprintf("unknown format %q", format), http.StatusBadRequest)
		return
	}
	names := s.Stages
	if str := q.Get("stages"); str != "" {
		names = util.SplitCSV(str)
	}
	width := s.PreviewWidth
	if str := q.Get("width"); str != "" {
		var err error
		if !util.AllElementsNumbers(str) {
			http.Error(w, fmt.Sprintf("width %q is not a non-negative integer", str), http.StatusBadRequest)
			return
		}
		width, err = strconv.Atoi(str)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}

	f, pl, err := s.Process(r.Body, names)
	if err != nil {
		var se *isp.StageError
		code := http.StatusBadRequest
		if errors.As(err, &se) {
			code = http.StatusInternalServerError
		}
		http.Error(w, err.Error(), code)
		return
	}

	if format != "fits" {
		img, err := frameio.Preview(f, pl.Out(), width)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", frameio.ContentType(format))
		w.WriteHeader(http.StatusOK)
		if err = frameio.Encode(w, img, format); err != nil {
			log.Println(err)
		}
		return
	}

	var w2 io.Writer = w
	if s.Recorder != nil && s.Recorder.Active() {
		w2 = io.MultiWriter(w, s.Recorder)
		defer s.Recorder.Incr()
	}
	hdr := w.Header()
	hdr.Set("Content-Type", frameio.ContentType(format))
	hdr.Set("Content-Disposition", "attachment; filename=frame.fits")
	cards := []fitsio.Card{{Name: "STAGES", Value: strings.Join(pl.Names(), ","), Comment: "ISP stages applied"}}
	if err = frameio.WriteFrame(w2, f, pl.Out(), cards...); err != nil {
		log.Println(err)
	}
}

// HTTPStages lists the stages a request may name and the default chain
func (s *Service) HTTPStages(w http.ResponseWriter, r *http.Request) {
	server.ReplyJSON(w, struct {
		Available []string `json:"available"`
		Default   []string `json:"default"`
	}{pipeline.Available(), s.Stages})
}

// HTTPGetParams replies with the bundle in force as yaml
func (s *Service) HTTPGetParams(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/x-yaml")
	w.WriteHeader(http.StatusOK)
	if err := params.WriteYaml(w, *s.Params()); err != nil {
		log.Println(err)
	}
}

// HTTPSetParams replaces the bundle with the yaml document in the body.
// Keys the document leaves out take their default values.
func (s *Service) HTTPSetParams(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()
	p, err := params.DecodeYaml(r.Body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if _, err = frame.ParseCFA(p.Info.CFA); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.SetParams(p)
	w.WriteHeader(http.StatusOK)
}

func (s *Service) ratio() (float64, error) {
	return s.Params().Sharpen.Ratio, nil
}

func (s *Service) setRatio(f float64) error {
	if f < 0 || f >= 1 {
		return fmt.Errorf("sharpen ratio %v outside [0, 1)", f)
	}
	return s.update(func(p *params.Prms) error {
		p.Sharpen.Ratio = f
		return nil
	})
}

func (s *Service) thres() (int, error) {
	return int(s.Params().Dpc.Thres), nil
}

func (s *Service) setThres(i int) error {
	if i < 0 {
		return fmt.Errorf("dpc threshold %d is negative", i)
	}
	return s.update(func(p *params.Prms) error {
		p.Dpc.Thres = int32(i)
		return nil
	})
}

func (s *Service) mode() (string, error) {
	return s.Params().Dpc.Mode.String(), nil
}

func (s *Service) setMode(str string) error {
	var m params.DpcMode
	if err := m.UnmarshalText([]byte(str)); err != nil {
		return err
	}
	return s.update(func(p *params.Prms) error {
		p.Dpc.Mode = m
		return nil
	})
}

func (s *Service) cfa() (string, error) {
	return s.Params().Info.CFA, nil
}

func (s *Service) setCFA(str string) error {
	c, err := frame.ParseCFA(str)
	if err != nil {
		return err
	}
	return s.update(func(p *params.Prms) error {
		p.Info.CFA = c.String()
		return nil
	})
}
