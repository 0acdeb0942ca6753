package imgrec

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/adas-eyes/ispcore/generichttp"
	"github.com/go-chi/chi"
)

func TestRecorderSequence(t *testing.T) {
	rec := &Recorder{Root: t.TempDir(), Prefix: "isp", Enabled: true}
	if _, err := rec.Last(); err != ErrNothingRecorded {
		t.Errorf("expected ErrNothingRecorded, got %v", err)
	}
	rec.Write([]byte("ab"))
	rec.Write([]byte("cd"))
	first, err := rec.Last()
	if err != nil {
		t.Fatal(err)
	}
	rec.Incr()
	rec.Write([]byte("ef"))
	second, _ := rec.Last()

	day := time.Now().Format("2006-01-02")
	if exp := filepath.Join(rec.Root, day, "isp000000.fits"); first != exp {
		t.Errorf("expected %s, got %s", exp, first)
	}
	if exp := filepath.Join(rec.Root, day, "isp000001.fits"); second != exp {
		t.Errorf("expected %s, got %s", exp, second)
	}
	b, _ := os.ReadFile(first)
	if string(b) != "abcd" {
		t.Errorf("expected abcd, got %q", b)
	}
}

func TestRecorderResumesCount(t *testing.T) {
	root := t.TempDir()
	day := filepath.Join(root, time.Now().Format("2006-01-02"))
	os.MkdirAll(day, 0777)
	os.WriteFile(filepath.Join(day, "isp000041.fits"), nil, 0666)
	os.WriteFile(filepath.Join(day, "other000099.fits"), nil, 0666)

	rec := &Recorder{Root: root, Prefix: "isp"}
	rec.updateFolder()
	rec.Incr()
	rec.Write([]byte("x"))
	last, _ := rec.Last()
	if filepath.Base(last) != "isp000042.fits" {
		t.Errorf("expected isp000042.fits, got %s", filepath.Base(last))
	}
}

func TestActive(t *testing.T) {
	rec := &Recorder{Enabled: true}
	if rec.Active() {
		t.Error("a recorder without a root must not be active")
	}
	rec.Root = t.TempDir()
	if !rec.Active() {
		t.Error("expected active")
	}
}

type table generichttp.RouteTable

func (t table) RT() generichttp.RouteTable { return generichttp.RouteTable(t) }

func TestInjectRoutes(t *testing.T) {
	rec := &Recorder{}
	rt := table{}
	NewHTTPWrapper(rec).Inject(rt)
	r := chi.NewRouter()
	rt.RT().Bind(r)

	root := t.TempDir()
	post := func(path, body string) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, path, strings.NewReader(body)))
		if w.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d %s", path, w.Code, w.Body.String())
		}
	}
	post("/autowrite/root", `{"str": "`+root+`"}`)
	post("/autowrite/prefix", `{"str": "frame"}`)
	post("/autowrite/enabled", `{"bool": true}`)
	if !rec.Active() || rec.Prefix != "frame" {
		t.Errorf("routes did not configure the recorder: %+v", rec)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/autowrite/last", nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404 before any frame, got %d", w.Code)
	}
	rec.Write([]byte("SIMPLE"))
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/autowrite/last", nil))
	if w.Code != http.StatusOK || w.Body.String() != "SIMPLE" {
		t.Errorf("expected the last file, got %d %q", w.Code, w.Body.String())
	}
}
