// Package throttle provides an HTTP middleware which rate limits requests,
// returning 429 (too many requests) once the budget is spent
package throttle

import (
	"errors"
	"net/http"
	"strings"

	"github.com/adas-eyes/ispcore/generichttp"
	"golang.org/x/time/rate"
)

// Throttle is a token bucket shared by every protected path
type Throttle struct {
	lim *rate.Limiter

	// Protect is a list of path fragments the limit applies to; empty
	// protects everything
	Protect []string
}

// New returns a throttle admitting perSec requests per second with bursts
// of up to burst
func New(perSec float64, burst int) *Throttle {
	return &Throttle{lim: rate.NewLimiter(rate.Limit(perSec), burst)}
}

// Inject adds GET and POST /throttle routes to an HTTPer which read and
// change the rate, in requests per second
func Inject(other generichttp.HTTPer, t *Throttle) {
	rt := other.RT()
	rt[generichttp.MethodPath{Method: http.MethodGet, Path: "/throttle"}] = generichttp.GetFloat(func() (float64, error) {
		return t.Rate(), nil
	})
	rt[generichttp.MethodPath{Method: http.MethodPost, Path: "/throttle"}] = generichttp.SetFloat(t.SetRate)
}

// Rate returns the current limit in requests per second
func (t *Throttle) Rate() float64 {
	return float64(t.lim.Limit())
}

// SetRate changes the limit; it must be positive
func (t *Throttle) SetRate(perSec float64) error {
	if perSec <= 0 {
		return errors.New("rate must be positive")
	}
	t.lim.SetLimit(rate.Limit(perSec))
	return nil
}

func (t *Throttle) protects(path string) bool {
	if len(t.Protect) == 0 {
		return true
	}
	for _, str := range t.Protect {
		if strings.Contains(path, str) {
			return true
		}
	}
	return false
}

// Check is an HTTP middleware that returns http.StatusTooManyRequests when
// the bucket is empty, otherwise passes down the line
func (t *Throttle) Check(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if t.protects(r.URL.Path) && !t.lim.Allow() {
			w.Header().Set("Retry-After", "1")
			http.Error(w, "frame rate limit exceeded", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}
