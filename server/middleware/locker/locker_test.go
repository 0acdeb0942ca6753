package locker

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/adas-eyes/ispcore/generichttp"
	"github.com/go-chi/chi"
)

type table generichttp.RouteTable

func (t table) RT() generichttp.RouteTable { return generichttp.RouteTable(t) }

func TestLockerBouncesProtected(t *testing.T) {
	rt := table{
		{Method: http.MethodPost, Path: "/process"}: func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		},
	}
	l := New()
	Inject(rt, l)
	r := chi.NewRouter()
	r.Use(l.Check)
	rt.RT().Bind(r)

	do := func(method, path, body string) int {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(method, path, strings.NewReader(body)))
		return rec.Code
	}

	if code := do(http.MethodPost, "/process", ""); code != http.StatusOK {
		t.Errorf("unlocked: expected 200, got %d", code)
	}
	if code := do(http.MethodPost, "/lock", `{"bool": true}`); code != http.StatusOK {
		t.Fatalf("lock: expected 200, got %d", code)
	}
	if !l.Locked() {
		t.Fatal("POST /lock did not lock")
	}
	if code := do(http.MethodPost, "/process", ""); code != http.StatusLocked {
		t.Errorf("locked: expected 423, got %d", code)
	}
	if code := do(http.MethodGet, "/lock", ""); code != http.StatusOK {
		t.Errorf("the lock route must stay reachable, got %d", code)
	}
	if code := do(http.MethodPost, "/lock", `{"bool": false}`); code != http.StatusOK || l.Locked() {
		t.Errorf("unlock failed, code %d", code)
	}
}
