// Package generichttp defines the route table services expose and small
// handler generators for getting and setting scalar values over HTTP
package generichttp

import (
	"encoding/json"
	"go/types"
	"net/http"
	"sort"
	"strings"

	"github.com/adas-eyes/ispcore/server"
	"github.com/go-chi/chi"
)

// MethodPath is a struct containing an HTTP method and path
type MethodPath struct {
	Method string
	Path   string
}

// RouteTable maps method/path pairs to handlers
type RouteTable map[MethodPath]http.HandlerFunc

// Endpoints returns the paths in the table, sorted and without duplicates
func (rt RouteTable) Endpoints() []string {
	seen := map[string]struct{}{}
	out := make([]string, 0, len(rt))
	for k := range rt {
		if _, ok := seen[k.Path]; ok {
			continue
		}
		seen[k.Path] = struct{}{}
		out = append(out, k.Path)
	}
	sort.Strings(out)
	return out
}

// Bind registers every route on r
func (rt RouteTable) Bind(r chi.Router) {
	for k, v := range rt {
		r.MethodFunc(k.Method, k.Path, v)
	}
}

// HTTPer is anything that exposes a route table
type HTTPer interface {
	RT() RouteTable
}

// SubMuxSanitize makes a mount point of the form "/a/b", with exactly one
// leading slash and no trailing slash
func SubMuxSanitize(str string) string {
	str = strings.Trim(str, "/*")
	return "/" + str
}

// getter wraps a value-getting function as a handler replying with the
// payload pack builds
func getter[T any](fcn func() (T, error), pack func(T) server.HumanPayload) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		v, err := fcn()
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		pack(v).EncodeAndRespond(w, r)
	}
}

// setter decodes a JSON body into B and calls fcn with the value unpack
// takes from it.  A rejected value is a bad request.
func setter[B any, T any](fcn func(T) error, unpack func(B) T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body B
		err := json.NewDecoder(r.Body).Decode(&body)
		defer r.Body.Close()
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if err = fcn(unpack(body)); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		w.WriteHeader(http.StatusOK)
	}
}

// GetFloat calls a float-getting function and returns the response
// as json {'f64': value}
func GetFloat(fcn func() (float64, error)) http.HandlerFunc {
	return getter(fcn, func(f float64) server.HumanPayload {
		return server.HumanPayload{T: types.Float64, Float: f}
	})
}

// SetFloat parses a JSON input of {'f64': value} and
// calls fcn with it
func SetFloat(fcn func(float64) error) http.HandlerFunc {
	return setter(fcn, func(b server.FloatT) float64 { return b.F64 })
}

// GetInt calls an int-getting function and returns the response
// as json {'int': value}
func GetInt(fcn func() (int, error)) http.HandlerFunc {
	return getter(fcn, func(i int) server.HumanPayload {
		return server.HumanPayload{T: types.Int, Int: i}
	})
}

// SetInt parses a JSON input of {'int': value} and
// calls fcn with it
func SetInt(fcn func(int) error) http.HandlerFunc {
	return setter(fcn, func(b server.IntT) int { return b.Int })
}

// GetString calls a string-getting function and returns the response
// as json {'str': value}
func GetString(fcn func() (string, error)) http.HandlerFunc {
	return getter(fcn, func(s string) server.HumanPayload {
		return server.HumanPayload{T: types.String, String: s}
	})
}

// SetString parses a JSON input of {'str': value} and
// calls fcn with it
func SetString(fcn func(string) error) http.HandlerFunc {
	return setter(fcn, func(b server.StrT) string { return b.Str })
}

// GetBool calls a bool-getting function and returns the response
// as json {'bool': value}
func GetBool(fcn func() (bool, error)) http.HandlerFunc {
	return getter(fcn, func(b bool) server.HumanPayload {
		return server.HumanPayload{T: types.Bool, Bool: b}
	})
}

// SetBool parses a JSON input of {'bool': value} and
// calls fcn with it
func SetBool(fcn func(bool) error) http.HandlerFunc {
	return setter(fcn, func(b server.BoolT) bool { return b.Bool })
}
