package params

import (
	"io"
	"os"

	"github.com/knadh/koanf"
	kyaml "github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/mitchellh/mapstructure"

	"gopkg.in/yaml.v2"
)

// base is Default without precomputed slopes, so a file that moves the
// breakpoints does not inherit slopes for the old curve
func base() Prms {
	p := Default()
	p.DePwl.Slope = nil
	return p
}

// finish computes slopes when the source did not carry a matching set
func finish(p *Prms) {
	if len(p.DePwl.Slope) != len(p.DePwl.XCood) {
		p.DePwl.ComputeSlopes()
	}
}

// LoadYaml converts a (path to a) yaml file into a Prms struct.
// Keys absent from the file keep their Default values.
func LoadYaml(path string) (Prms, error) {
	f, err := os.Open(path)
	if err != nil {
		return Prms{}, err
	}
	defer f.Close()
	return DecodeYaml(f)
}

// DecodeYaml reads a yaml document from r on top of the defaults
func DecodeYaml(r io.Reader) (Prms, error) {
	p := base()
	err := yaml.NewDecoder(r).Decode(&p)
	if err != nil && err != io.EOF {
		return Prms{}, err
	}
	finish(&p)
	return p, nil
}

// WriteYaml encodes p as yaml to w
func WriteYaml(w io.Writer, p Prms) error {
	enc := yaml.NewEncoder(w)
	defer enc.Close()
	return enc.Encode(p)
}

// Load layers a yaml file at path over the defaults using koanf.
// A missing file is an error; use Default when no file is wanted.
func Load(path string) (Prms, error) {
	k := koanf.New(".")
	if err := k.Load(structs.Provider(base(), "yaml"), nil); err != nil {
		return Prms{}, err
	}
	if err := k.Load(file.Provider(path), kyaml.Parser()); err != nil {
		return Prms{}, err
	}
	p := Prms{}
	conf := koanf.UnmarshalConf{
		Tag: "yaml",
		DecoderConfig: &mapstructure.DecoderConfig{
			// DpcMode is written by name
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.TextUnmarshallerHookFunc(),
				mapstructure.StringToSliceHookFunc(",")),
			WeaklyTypedInput: true,
			Result:           &p,
		},
	}
	if err := k.UnmarshalWithConf("", &p, conf); err != nil {
		return Prms{}, err
	}
	finish(&p)
	return p, nil
}

// Watch reloads the bundle at path whenever the file changes and hands the
// result to cb.  cb runs on the watcher's goroutine.
func Watch(path string, cb func(Prms, error)) error {
	f := file.Provider(path)
	return f.Watch(func(event interface{}, err error) {
		if err != nil {
			cb(Prms{}, err)
			return
		}
		cb(Load(path))
	})
}
